package content

import (
	"regexp"
	"strings"
	"testing"
	"time"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]*-\d+$`)

// Slugifyが小文字・ハイフン区切り・タイムスタンプ付きのスラッグを生成することを検証
func TestSlugify(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "simple title",
			title: "Hello World",
			want:  "hello-world-1700000000000",
		},
		{
			name:  "special characters stripped",
			title: "What's New in Go 1.23?!",
			want:  "whats-new-in-go-123-1700000000000",
		},
		{
			name:  "consecutive spaces collapse",
			title: "AI   Weekly    Digest",
			want:  "ai-weekly-digest-1700000000000",
		},
		{
			name:  "leading and trailing noise trimmed",
			title: "  --Breaking News--  ",
			want:  "breaking-news-1700000000000",
		},
		{
			name:  "empty title still valid",
			title: "",
			want:  "-1700000000000",
		},
		{
			name:  "non-ascii stripped",
			title: "週刊ニュース Digest",
			want:  "digest-1700000000000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.title, now)
			if got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
			}
			if !slugPattern.MatchString(got) {
				t.Errorf("Slugify(%q) = %q, does not match %s", tt.title, got, slugPattern)
			}
		})
	}
}

// 異なる時刻で同一タイトルから異なるスラッグが生成されることを検証
func TestSlugify_UniquePerTimestamp(t *testing.T) {
	a := Slugify("Same Title", time.UnixMilli(1000))
	b := Slugify("Same Title", time.UnixMilli(2000))
	if a == b {
		t.Errorf("expected distinct slugs, got %q twice", a)
	}
}

// Excerptが先頭N段落を空行区切りで返すことを検証
func TestExcerpt(t *testing.T) {
	content := "First paragraph.\n\nSecond paragraph.\n\n\nThird paragraph.\n\nFourth.\n\nFifth.\n\nSixth."

	tests := []struct {
		name          string
		content       string
		maxParagraphs int
		want          string
	}{
		{
			name:          "two paragraphs",
			content:       content,
			maxParagraphs: 2,
			want:          "First paragraph.\n\nSecond paragraph.",
		},
		{
			name:          "default five paragraphs",
			content:       content,
			maxParagraphs: 0,
			want:          "First paragraph.\n\nSecond paragraph.\n\nThird paragraph.\n\nFourth.\n\nFifth.",
		},
		{
			name:          "fewer paragraphs than limit",
			content:       "Only one.",
			maxParagraphs: 5,
			want:          "Only one.",
		},
		{
			name:          "blank paragraphs skipped",
			content:       "A.\n\n   \n\nB.",
			maxParagraphs: 2,
			want:          "A.\n\nB.",
		},
		{
			name:          "empty content",
			content:       "",
			maxParagraphs: 5,
			want:          "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Excerpt(tt.content, tt.maxParagraphs)
			if got != tt.want {
				t.Errorf("Excerpt() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Teaserが見出しを除去し文字数上限で切り詰めることを検証
func TestTeaser(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		maxChars int
		want     string
	}{
		{
			name:     "short content unchanged",
			content:  "A short body.",
			maxChars: 150,
			want:     "A short body.",
		},
		{
			name:     "headings removed",
			content:  "# Title\n\nBody text here.\n\n## Section\n\nMore text.",
			maxChars: 150,
			want:     "Body text here. More text.",
		},
		{
			name:     "truncated with ellipsis",
			content:  strings.Repeat("word ", 100),
			maxChars: 20,
			want:     "word word word word...",
		},
		{
			name:     "multibyte truncated on rune boundary",
			content:  strings.Repeat("日本語のテキスト", 10),
			maxChars: 10,
			want:     "日本語のテキスト日本...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Teaser(tt.content, tt.maxChars)
			if got != tt.want {
				t.Errorf("Teaser() = %q, want %q", got, tt.want)
			}
		})
	}
}

// Teaserの切り詰め結果が上限+省略記号を超えないことを検証
func TestTeaser_LengthBound(t *testing.T) {
	got := Teaser(strings.Repeat("lorem ipsum ", 200), 200)
	if len(got) > 200+len("...") {
		t.Errorf("len(Teaser()) = %d, want <= %d", len(got), 200+len("..."))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Teaser() = %q, want ellipsis suffix", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		max     int
		want    string
		wantCut bool
	}{
		{"under limit unchanged", "hello", 10, "hello", false},
		{"ascii cut", "hello world", 5, "hello", true},
		{"multibyte cut on rune boundary", "日本語テキスト", 3, "日本語", true},
		{"zero max unchanged", "hello", 0, "hello", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cut := Truncate(tt.s, tt.max)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
			}
			if cut != tt.wantCut {
				t.Errorf("Truncate(%q, %d) cut = %v, want %v", tt.s, tt.max, cut, tt.wantCut)
			}
		})
	}
}

// ReadTimeが200語/分・最低1分で算出されることを検証
func TestReadTime(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "empty content", content: "", want: 1},
		{name: "few words", content: "just a few words", want: 1},
		{name: "exactly 200 words", content: strings.Repeat("word ", 200), want: 1},
		{name: "201 words rounds up", content: strings.Repeat("word ", 201), want: 2},
		{name: "1000 words", content: strings.Repeat("word ", 1000), want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReadTime(tt.content)
			if got != tt.want {
				t.Errorf("ReadTime() = %d, want %d", got, tt.want)
			}
		})
	}
}

// Tagsがプロンプトの単語・基本タグ・キーワードタグを挿入順で最大5件返すことを検証
func TestTags(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		body   string
		want   []string
	}{
		{
			name:   "short words skipped, baseline appended",
			prompt: "go web dev",
			want:   []string{"newsletter", "insights"},
		},
		{
			name:   "long words first then baseline",
			prompt: "weekly digest",
			want:   []string{"weekly", "digest", "newsletter", "insights"},
		},
		{
			name:   "ai keyword in prompt triggers tag when body empty",
			prompt: "ai news",
			want:   []string{"news", "newsletter", "insights", "ai"},
		},
		{
			name:   "keyword trigger scans body",
			prompt: "morning briefing",
			body:   "Today the technology sector saw major moves.",
			want:   []string{"morning", "briefing", "newsletter", "insights", "technology"},
		},
		{
			name:   "cap at five",
			prompt: "artificial intelligence breakthroughs transforming healthcare industry",
			want:   []string{"artificial", "intelligence", "breakthroughs", "transforming", "healthcare"},
		},
		{
			name:   "duplicates removed",
			prompt: "crypto crypto",
			want:   []string{"crypto", "newsletter", "insights"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tags(tt.prompt, tt.body)
			if len(got) != len(tt.want) {
				t.Fatalf("Tags(%q, %q) = %v, want %v", tt.prompt, tt.body, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Tags(%q, %q)[%d] = %q, want %q", tt.prompt, tt.body, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Tagsが5件を超えないことを検証
func TestTags_NeverExceedsFive(t *testing.T) {
	got := Tags("technology business startup artificial intelligence machine learning analytics platform", "")
	if len(got) > 5 {
		t.Errorf("len(Tags()) = %d, want <= 5", len(got))
	}
}
