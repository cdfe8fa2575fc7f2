// Package openai analyses face photos with an OpenAI compatible chat
// completion endpoint.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"lumina-face-analysis/internal/analysis"
	"lumina-face-analysis/pkg/models"
)

const DefaultModel = "gpt-4o-mini"

type Provider struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// New creates a provider. baseURL may be empty to use the public API.
func New(apiKey, model, baseURL string) (*Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing OpenAI API key")
	}
	if model == "" {
		model = DefaultModel
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Provider{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: 2048,
	}, nil
}

func (p *Provider) Name() string { return "openai" }

func (p *Provider) Analyze(ctx context.Context, payload string) (*models.AnalysisResult, error) {
	_, mime, err := analysis.DecodePayload(payload)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: 0.4,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analysis.SystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: analysis.UserPrompt()},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    fmt.Sprintf("data:%s;base64,%s", mime, payload),
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	})
	if err != nil {
		return nil, analysis.Failed(p.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, analysis.Failed(p.Name(), errors.New("no choices in response"))
	}

	result, err := models.ParseAnalysisResult([]byte(resp.Choices[0].Message.Content))
	if err != nil {
		return nil, analysis.Failed(p.Name(), err)
	}
	return result, nil
}
