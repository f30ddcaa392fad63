// Package content は記事の派生値（スラッグ・抜粋・タグ・読了時間）の
// 算出と、記事CRUDのアプリケーションサービスを提供する。
package content

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugHyphenRuns   = regexp.MustCompile(`-+`)
	paragraphSplit   = regexp.MustCompile(`\n{2,}`)
	headingLine      = regexp.MustCompile(`(?m)^#{1,6}\s.*$`)
)

// Slugify はタイトルからURLスラッグを生成する。
// 末尾にUnixミリ秒を付与して一意性を確保する。タイトルが空でも
// 有効なスラッグを返す。衝突時の最終防衛線はDBのUNIQUE制約。
func Slugify(title string, now time.Time) string {
	s := strings.ToLower(title)
	s = slugInvalidChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugWhitespace.ReplaceAllString(s, "-")
	s = slugHyphenRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	return s + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// Excerpt は本文の先頭maxParagraphs段落を空行区切りで連結して返す。
// maxParagraphsが0以下の場合は5段落とする。
func Excerpt(content string, maxParagraphs int) string {
	if maxParagraphs <= 0 {
		maxParagraphs = 5
	}
	var paragraphs []string
	for _, p := range paragraphSplit.Split(content, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paragraphs = append(paragraphs, p)
		if len(paragraphs) == maxParagraphs {
			break
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// Truncate は文字列を先頭max文字（rune単位）に切り詰める。
// マルチバイト文字の途中で切らない。切り詰めが発生した場合はtrueを返す。
func Truncate(s string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s, false
	}
	return string([]rune(s)[:max]), true
}

// Teaser は見出しを取り除いた本文をmaxChars文字に切り詰めて返す。
// 切り詰めが発生した場合は末尾に"..."を付与する。
func Teaser(content string, maxChars int) string {
	s := headingLine.ReplaceAllString(content, "")
	s = strings.TrimSpace(slugWhitespace.ReplaceAllString(s, " "))
	truncated, cut := Truncate(s, maxChars)
	if !cut {
		return s
	}
	return strings.TrimSpace(truncated) + "..."
}

// ReadTime は本文の語数から推定読了時間（分）を返す。200語/分、最低1分。
func ReadTime(content string) int {
	words := len(strings.Fields(content))
	minutes := int(math.Ceil(float64(words) / 200.0))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// キーワードとそれが発火させるタグの対応。
var keywordTags = []struct {
	keywords []string
	tag      string
}{
	{[]string{"technology", "tech"}, "technology"},
	{[]string{"ai", "artificial intelligence"}, "ai"},
	{[]string{"business", "startup"}, "business"},
}

// Tags はプロンプトと本文からタグ一覧を導出する。
// プロンプト中の4文字以上の単語、基本タグ{newsletter, insights}、
// 本文中のキーワードで発火するタグの順に挿入し、重複を除いて最大5件を返す。
// 本文が空の場合はキーワード判定もプロンプトに対して行う。
func Tags(prompt, body string) []string {
	promptLower := strings.ToLower(prompt)
	bodyLower := strings.ToLower(body)
	if bodyLower == "" {
		bodyLower = promptLower
	}

	tags := make([]string, 0, 5)
	seen := map[string]bool{}
	add := func(tag string) {
		if len(tags) >= 5 || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	for _, word := range strings.Fields(promptLower) {
		word = strings.Trim(word, ".,!?:;\"'()")
		if len(word) > 3 {
			add(word)
		}
	}
	add("newsletter")
	add("insights")
	for _, kt := range keywordTags {
		for _, kw := range kt.keywords {
			if strings.Contains(bodyLower, kw) {
				add(kt.tag)
				break
			}
		}
	}

	return tags
}
