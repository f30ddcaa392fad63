package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/hitoshi/newsdesk/internal/content"
	"github.com/hitoshi/newsdesk/internal/metrics"
	"github.com/hitoshi/newsdesk/internal/model"
)

// newsletterSystemPrompt は記事生成の基本指示。
// AIによる生成であることへの言及を禁止し、専門家の一人称で書かせる。
const newsletterSystemPrompt = `You are a professional newsletter writer and content creator. Your task is to create high-quality, engaging newsletter content based on user prompts.

IMPORTANT GUIDELINES:
- Write as a human expert, not as an AI
- Never mention that the content is AI-generated
- Never use meta-referential language about AI or generation
- Focus on providing real value and insights
- Use a professional, engaging tone
- Structure content with clear headings and sections
- Include actionable insights and practical information
- Write in markdown format
- Keep content informative and well-researched
- Avoid generic templates or placeholder content

Your response should be a complete newsletter article that someone would actually want to read and share.`

// enhanceSystemPrompt はプロンプト改善の基本指示。
const enhanceSystemPrompt = `You are an expert content strategist and prompt engineer. Your job is to enhance user prompts to create more engaging, comprehensive, and professional content.

ENHANCEMENT GUIDELINES:
- Add specific details and context to make prompts more actionable
- Suggest relevant multimedia elements (images, videos, infographics)
- Include target audience considerations
- Ensure the enhanced prompt will generate high-quality, engaging content
- Maintain the original intent while expanding scope

Your response should be a JSON object with:
- originalPrompt: the user's original prompt
- enhancedPrompt: your improved version
- mediaSuggestions: { "images": [], "videos": [] }
- reasoning: brief explanation of your enhancements`

// imagePlaceholder はmarkdown画像記法を検出する。
var imagePlaceholder = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)

// titleHeading は本文先頭のh1見出しを検出する。
var titleHeading = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// MediaSuggestions はプロンプト改善で提案されるメディア要素。
type MediaSuggestions struct {
	Images []string `json:"images"`
	Videos []string `json:"videos"`
}

// EnhancedPrompt はプロンプト改善の結果。
type EnhancedPrompt struct {
	OriginalPrompt   string           `json:"originalPrompt"`
	EnhancedPrompt   string           `json:"enhancedPrompt"`
	MediaSuggestions MediaSuggestions `json:"mediaSuggestions"`
	Reasoning        string           `json:"reasoning"`
}

// Service はLLMを使った記事生成のオーケストレーター。
// 生成結果は必ずドラフトとして呼び出し元に返し、自身では永続化しない。
// リトライは行わず、画像生成以外の失敗は単一のエラーとして返す。
type Service struct {
	client  *Client
	logger  *slog.Logger
	metrics metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(client *Client, logger *slog.Logger, collector metrics.MetricsCollector) *Service {
	return &Service{
		client:  client,
		logger:  logger,
		metrics: collector,
	}
}

// GenerateNewsletter はプロンプトから記事ドラフトを生成する。
// customTitleが空の場合はLLMにタイトルを生成させる。
// includeMediaがtrueの場合、本文中の画像プレースホルダを実画像に
// 差し替える。個々の画像生成の失敗はプレースホルダのまま残し、
// 記事全体の生成は失敗させない。
func (s *Service) GenerateNewsletter(ctx context.Context, prompt, customTitle string, includeMedia bool) (*model.ArticleDraft, error) {
	if !s.client.Configured() {
		return nil, model.NewAINotConfiguredError()
	}

	userPrompt := buildNewsletterPrompt(prompt, customTitle, includeMedia)
	generated, err := s.client.ChatCompletion(ctx, []ChatMessage{
		{Role: "system", Content: newsletterSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, 0.7, 2000)
	if err != nil {
		s.metrics.RecordAIGeneration("error")
		return nil, model.NewExternalServiceError(fmt.Sprintf("Failed to generate content: %v", err))
	}
	if strings.TrimSpace(generated) == "" {
		s.metrics.RecordAIGeneration("error")
		return nil, model.NewExternalServiceError("No content generated by AI")
	}

	// タイトルの決定: 本文先頭のh1 → 指定タイトル → プロンプト
	title := customTitle
	if m := titleHeading.FindStringSubmatch(generated); m != nil {
		title = m[1]
	}
	if title == "" {
		title = prompt
	}

	finalContent := generated
	var images []string
	if includeMedia {
		finalContent, images = s.materializeImages(ctx, generated, title)
	}

	draft := &model.ArticleDraft{
		Title:       title,
		Content:     finalContent,
		Description: content.Teaser(finalContent, 150),
		Excerpt:     content.Teaser(finalContent, 200),
		Tags:        content.Tags(prompt, finalContent),
		ReadTime:    content.ReadTime(finalContent),
		Images:      images,
		Prompt:      prompt,
	}

	s.metrics.RecordAIGeneration("success")
	return draft, nil
}

// materializeImages は本文中の画像プレースホルダを1件ずつ順に
// 実画像URLへ差し替える。レート制限を避けるため並行生成はしない。
func (s *Service) materializeImages(ctx context.Context, body, title string) (string, []string) {
	matches := imagePlaceholder.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return body, nil
	}

	s.logger.Info("画像プレースホルダの実体化を開始します", slog.Int("count", len(matches)))

	var images []string
	for _, m := range matches {
		placeholder, description := m[0], strings.TrimSpace(m[1])
		if description == "" {
			continue
		}

		imageURL, err := s.client.GenerateImage(ctx, buildImagePrompt(description, title))
		if err != nil {
			// 失敗した画像はプレースホルダのまま残す
			s.logger.Warn("画像の生成に失敗しました",
				slog.String("description", description),
				slog.String("error", err.Error()),
			)
			s.metrics.RecordAIImageFailure()
			continue
		}

		body = strings.Replace(body, placeholder, fmt.Sprintf("![%s](%s)", m[1], imageURL), 1)
		images = append(images, imageURL)
	}

	return body, images
}

// EnhancePrompt はプロンプトをLLMで改善する。
// LLMの応答がJSONとしてパースできない場合は、応答全文を
// enhancedPromptとして扱うフォールバックを行う。
func (s *Service) EnhancePrompt(ctx context.Context, prompt, contentType string) (*EnhancedPrompt, error) {
	if !s.client.Configured() {
		return nil, model.NewAINotConfiguredError()
	}
	if contentType == "" {
		contentType = "newsletter"
	}

	userPrompt := fmt.Sprintf(`Enhance this %s prompt for better content generation:

Original prompt: %q

Please enhance it to create more engaging, comprehensive content that will generate high-quality articles. Consider:
- Adding specific details and context
- Suggesting relevant images and videos
- Including current trends and insights
- Making it more actionable and valuable`, contentType, prompt)

	response, err := s.client.ChatCompletion(ctx, []ChatMessage{
		{Role: "system", Content: enhanceSystemPrompt},
		{Role: "user", Content: userPrompt},
	}, 0.7, 1000)
	if err != nil {
		return nil, model.NewExternalServiceError(fmt.Sprintf("Failed to enhance prompt: %v", err))
	}
	if strings.TrimSpace(response) == "" {
		return nil, model.NewExternalServiceError("No enhancement generated")
	}

	enhanced := &EnhancedPrompt{}
	if err := json.Unmarshal([]byte(extractJSON(response)), enhanced); err != nil || enhanced.EnhancedPrompt == "" {
		// 非JSON応答は応答全文を改善結果として扱う
		return &EnhancedPrompt{
			OriginalPrompt: prompt,
			EnhancedPrompt: response,
			Reasoning:      "Enhanced prompt generated",
		}, nil
	}

	enhanced.OriginalPrompt = prompt
	return enhanced, nil
}

// buildNewsletterPrompt は記事生成のユーザープロンプトを構築する。
func buildNewsletterPrompt(prompt, customTitle string, includeMedia bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a comprehensive newsletter article about: %q\n\n", prompt)

	if customTitle != "" {
		fmt.Fprintf(&b, "Use this title: %q\n\n", customTitle)
	} else {
		b.WriteString("Generate an engaging title for this topic.\n\n")
	}

	b.WriteString(`The newsletter should:
- Be informative and well-researched
- Include practical insights and actionable advice
- Have a clear structure with headings
- Be engaging and professional
- Be 800-1500 words in length
`)

	if includeMedia {
		b.WriteString("\nInclude 2-3 relevant images in your content using placeholder URLs like ![Detailed image description for AI generation](https://placeholder.com/800x400). Make the image descriptions detailed and specific.\n")
	}

	b.WriteString("\nFormat your response as a complete newsletter article in markdown.")
	return b.String()
}

// buildImagePrompt は画像生成のプロンプトを構築する。
// 記事タイトルを文脈として与え、誌面向けのスタイル指示を付ける。
func buildImagePrompt(description, title string) string {
	return fmt.Sprintf(`Create a stunning, professional image for a tech newsletter article titled %q.

Specific image description: %s

Visual style requirements:
- Modern, sleek, and professional design
- High-quality, magazine-worthy composition
- Clean, minimalist aesthetic
- Vibrant but professional colors
- No text or overlays`, title, description)
}

// extractJSON はmarkdownコードフェンスに包まれたJSONを取り出す。
// フェンスがない場合は入力をそのまま返す。
func extractJSON(s string) string {
	trimmed := strings.TrimSpace(s)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		return strings.TrimSpace(trimmed)
	}
	return trimmed
}
