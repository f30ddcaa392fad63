package ingest

import (
	"fmt"
	"strings"

	"github.com/hitoshi/newsdesk/internal/content"
)

// Extracted はファイルから抽出された記事素材。
type Extracted struct {
	Title       string
	Description string
	Content     string
	Excerpt     string
}

// Extractor はファイル形式ごとの抽出処理のインターフェース。
type Extractor interface {
	// Extract はファイル内容から記事素材を抽出する。
	Extract(filename string, data []byte) (*Extracted, error)
}

// extractorFor はMIMEタイプに対応するExtractorを返す。
// 未対応のタイプにはnilを返す（呼び出し前にAllowedTypeで検証すること）。
func extractorFor(mimeType string) Extractor {
	switch mimeType {
	case mimeText:
		return &TextExtractor{}
	case mimePDF:
		return &PDFExtractor{}
	case mimeDoc, mimeDocx:
		return &WordExtractor{}
	}
	return nil
}

// TextExtractor はプレーンテキストから記事素材を抽出する。
type TextExtractor struct{}

// Extract はテキストからタイトル・説明・本文・抜粋を組み立てる。
func (e *TextExtractor) Extract(filename string, data []byte) (*Extracted, error) {
	text := string(data)
	return &Extracted{
		Title:       extractTitle(text),
		Description: extractDescription(text),
		Content:     formatContent(text),
		Excerpt:     extractExcerpt(text),
	}, nil
}

// extractTitle は先頭10行からタイトルらしい行を探す。
// 10文字超100文字未満で見出し記号で始まらない行を採用し、
// 見つからない場合はプレースホルダを返す。
func extractTitle(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 10 {
		lines = lines[:10]
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 10 && len(trimmed) < 100 && !strings.HasPrefix(trimmed, "#") {
			return trimmed
		}
	}
	return "Uploaded Newsletter"
}

// extractDescription は最初の段落を説明として抽出する。
// 200文字を超える場合は切り詰めて省略記号を付ける。
func extractDescription(text string) string {
	paragraphs := strings.SplitN(text, "\n\n", 2)
	first := strings.TrimSpace(paragraphs[0])
	if len(first) > 20 {
		if truncated, cut := content.Truncate(first, 200); cut {
			return truncated + "..."
		}
		return first
	}
	return "Newsletter content from uploaded file"
}

// extractExcerpt は改行を潰した全文の先頭200文字を抜粋として返す。
func extractExcerpt(text string) string {
	clean := strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	if truncated, cut := content.Truncate(clean, 200); cut {
		return truncated + "..."
	}
	return clean
}

// formatContent はテキストを段落区切りのmarkdownに整形する。
// 句読点を含まない50文字未満の行は見出しとして扱う。
func formatContent(text string) string {
	lines := strings.Split(text, "\n")
	formatted := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			formatted = append(formatted, "")
			continue
		}
		if len(trimmed) < 50 && !strings.Contains(trimmed, ".") && !strings.Contains(trimmed, ",") {
			formatted = append(formatted, "## "+trimmed)
			continue
		}
		formatted = append(formatted, trimmed)
	}
	return strings.Join(formatted, "\n\n")
}

// PDFExtractor はPDFファイルの抽出処理。
// バイナリのパースは外部ライブラリの領分のため、ファイル名を含む
// プレースホルダを返す。
type PDFExtractor struct{}

// Extract はPDF向けのプレースホルダ素材を返す。
func (e *PDFExtractor) Extract(filename string, data []byte) (*Extracted, error) {
	return &Extracted{
		Title:       fmt.Sprintf("PDF Document - %s", filename),
		Description: fmt.Sprintf("Content extracted from PDF: %s", filename),
		Content:     fmt.Sprintf("# PDF Content from %s\n\n*Note: Full PDF processing requires additional libraries*", filename),
		Excerpt:     fmt.Sprintf("PDF content from %s", filename),
	}, nil
}

// WordExtractor はWord文書の抽出処理。
// PDFと同様にプレースホルダを返す。
type WordExtractor struct{}

// Extract はWord文書向けのプレースホルダ素材を返す。
func (e *WordExtractor) Extract(filename string, data []byte) (*Extracted, error) {
	return &Extracted{
		Title:       fmt.Sprintf("Word Document - %s", filename),
		Description: fmt.Sprintf("Content extracted from Word document: %s", filename),
		Content:     fmt.Sprintf("# Word Document Content from %s\n\n*Note: Full Word document processing requires additional libraries*", filename),
		Excerpt:     fmt.Sprintf("Word document content from %s", filename),
	}, nil
}
