// Package ai はOpenAI APIを使用したコンテンツ生成機能を提供する。
// チャット補完による記事生成と画像生成APIの呼び出しを含む。
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

const (
	// defaultChatEndpoint はOpenAIチャット補完APIのエンドポイント。
	defaultChatEndpoint = "https://api.openai.com/v1/chat/completions"
	// defaultImageEndpoint はOpenAI画像生成APIのエンドポイント。
	defaultImageEndpoint = "https://api.openai.com/v1/images/generations"
)

// ChatMessage はチャット補完APIに渡すメッセージ。
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest はチャット補完APIのリクエストボディ。
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// chatResponse はチャット補完APIのレスポンスボディ。
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiErrorBody `json:"error"`
}

// imageRequest は画像生成APIのリクエストボディ。
type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

// imageResponse は画像生成APIのレスポンスボディ。
type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *apiErrorBody `json:"error"`
}

// apiErrorBody はOpenAI APIのエラーレスポンス。
type apiErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Client はOpenAI APIのクライアント。
// APIキーによるBearer認証を行う。リトライは行わず、失敗は
// 単一のエラーとして呼び出し元に返す。
type Client struct {
	httpClient    *http.Client
	logger        *slog.Logger
	apiKey        string
	chatModel     string
	imageModel    string
	chatEndpoint  string // テスト用にエンドポイントを差し替え可能
	imageEndpoint string
}

// NewClient はClientの新しいインスタンスを生成する。
// 生成系APIはレスポンスに時間がかかるため、httpClientのタイムアウトは
// 呼び出し元が用途に応じて設定する。
func NewClient(httpClient *http.Client, logger *slog.Logger, apiKey, chatModel, imageModel string) *Client {
	return &Client{
		httpClient:    httpClient,
		logger:        logger,
		apiKey:        apiKey,
		chatModel:     chatModel,
		imageModel:    imageModel,
		chatEndpoint:  defaultChatEndpoint,
		imageEndpoint: defaultImageEndpoint,
	}
}

// Configured はAPIキーが設定されているかどうかを返す。
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// ChatCompletion はチャット補完APIを呼び出し、最初の選択肢の本文を返す。
func (c *Client) ChatCompletion(ctx context.Context, messages []ChatMessage, temperature float64, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var result chatResponse
	if err := c.post(ctx, c.chatEndpoint, reqBody, &result); err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", fmt.Errorf("OpenAI APIがエラーを返しました: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("OpenAI APIのレスポンスに選択肢が含まれていません")
	}

	return result.Choices[0].Message.Content, nil
}

// GenerateImage は画像生成APIを呼び出し、生成された画像のURLを返す。
func (c *Client) GenerateImage(ctx context.Context, prompt string) (string, error) {
	reqBody := imageRequest{
		Model:  c.imageModel,
		Prompt: prompt,
		N:      1,
		Size:   "1024x1024",
	}

	var result imageResponse
	if err := c.post(ctx, c.imageEndpoint, reqBody, &result); err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", fmt.Errorf("OpenAI画像APIがエラーを返しました: %s", result.Error.Message)
	}
	if len(result.Data) == 0 || result.Data[0].URL == "" {
		return "", fmt.Errorf("OpenAI画像APIのレスポンスに画像URLが含まれていません")
	}

	return result.Data[0].URL, nil
}

// post はJSONボディをPOSTし、レスポンスJSONをoutにデコードする。
func (c *Client) post(ctx context.Context, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("リクエストボディのエンコードに失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("OpenAI APIの呼び出しに失敗しました",
			slog.String("endpoint", endpoint),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("OpenAI APIの呼び出しに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("OpenAI APIがエラーステータスを返しました",
			slog.String("endpoint", endpoint),
			slog.Int("http_status", resp.StatusCode),
		)
		// エラーボディにメッセージが含まれる場合はそれを優先する
		var errResp struct {
			Error *apiErrorBody `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != nil {
			return fmt.Errorf("OpenAI APIがステータス %d を返しました: %s", resp.StatusCode, errResp.Error.Message)
		}
		return fmt.Errorf("OpenAI APIがステータス %d を返しました", resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("レスポンスJSONのパースに失敗しました: %w", err)
	}

	return nil
}
