// Package gemini はGoogle Gemini APIを使用したタスク提案クライアントを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"task_backend/internal/feature/tasks/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	// SystemInstruction はモデルに与える役割です。
	SystemInstruction = "You are a helpful task management assistant. Provide brief, actionable advice."

	maxOutputTokens = 150
	temperature     = 0.7
)

// ErrEmptySuggestion はモデルがテキストを返さなかった場合のエラーです。
var ErrEmptySuggestion = errors.New("gemini returned an empty suggestion")

// Config はGeminiSuggesterの設定です。
type Config struct {
	APIKey     string
	Model      string
	HTTPClient *http.Client
	// BaseURL は空の場合、SDKのデフォルトエンドポイントを使用します。
	BaseURL string
}

// GeminiSuggester はGoogle Gemini APIを使用してタスクの優先度提案を生成します。
type GeminiSuggester struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// GeminiSuggesterがSuggesterを実装していることをコンパイル時に検証します。
var _ usecase.Suggester = (*GeminiSuggester)(nil)

// NewGeminiSuggester はAPIキー認証でGeminiSuggesterの新しいインスタンスを生成します。
func NewGeminiSuggester(ctx context.Context, cfg Config) (*GeminiSuggester, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiSuggester{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
			MaxOutputTokens:   maxOutputTokens,
			Temperature:       genai.Ptr[float32](temperature),
		},
	}, nil
}

// Suggest はプロンプトから提案テキストを生成します。
// 空の応答はErrEmptySuggestionとして扱います。
func (g *GeminiSuggester) Suggest(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("gemini API request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptySuggestion
	}
	return text, nil
}
