package model

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Mikele-Kochas/SmartNotebook/internal/config"
	"github.com/Mikele-Kochas/SmartNotebook/internal/utils"
	"github.com/Mikele-Kochas/SmartNotebook/pkg/logger"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
)

// NewChatModel builds the chat model of the configured provider.
func NewChatModel(ctx context.Context, cfg *config.Config) (einoModel.BaseChatModel, error) {
	logger.WithFields(logger.Fields{
		"provider": cfg.Model.Provider,
		"api_key":  maskKey(cfg.APIKey()),
	}).Info("creating chat model")

	switch cfg.Model.Provider {
	case "gemini":
		return NewGeminiChatModel(GeminiConfig{
			APIKey:          cfg.Gemini.APIKey,
			BaseURL:         cfg.Gemini.BaseURL,
			Model:           cfg.Gemini.Model,
			Temperature:     cfg.Model.Temperature,
			TopP:            cfg.Model.TopP,
			TopK:            cfg.Model.TopK,
			MaxOutputTokens: cfg.Model.MaxTokens,
			SafetyThreshold: cfg.Gemini.SafetyThreshold,
			HTTPClient:      newProviderHTTPClient(cfg, "gemini"),
		})
	case "openai":
		return NewOpenAIChatModel(OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Model:       cfg.OpenAI.Model,
			Temperature: cfg.Model.Temperature,
			TopP:        cfg.Model.TopP,
			MaxTokens:   cfg.Model.MaxTokens,
			HTTPClient:  newProviderHTTPClient(cfg, "openai"),
		})
	case "anthropic":
		return NewAnthropicChatModel(AnthropicConfig{
			APIKey:      cfg.Anthropic.APIKey,
			BaseURL:     cfg.Anthropic.BaseURL,
			Model:       cfg.Anthropic.Model,
			Temperature: cfg.Model.Temperature,
			MaxTokens:   cfg.Model.MaxTokens,
			HTTPClient:  newProviderHTTPClient(cfg, "anthropic"),
		})
	case "doubao":
		return createDoubaoModel(ctx, cfg)
	case "qwen":
		return createQwenModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported model provider: %s", cfg.Model.Provider)
	}
}

func createDoubaoModel(ctx context.Context, cfg *config.Config) (einoModel.BaseChatModel, error) {
	temperature := cfg.Model.Temperature
	topP := cfg.Model.TopP
	maxTokens := cfg.Model.MaxTokens

	chatModel, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
		APIKey:      cfg.Doubao.APIKey,
		BaseURL:     cfg.Doubao.BaseURL,
		Model:       cfg.Doubao.Model,
		Temperature: &temperature,
		TopP:        &topP,
		MaxTokens:   &maxTokens,
		CustomHeader: map[string]string{
			"X-Ark-Thinking-Mode": "disable",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create doubao model: %w", err)
	}
	return chatModel, nil
}

func createQwenModel(ctx context.Context, cfg *config.Config) (einoModel.BaseChatModel, error) {
	temperature := cfg.Model.Temperature
	topP := cfg.Model.TopP
	maxTokens := cfg.Model.MaxTokens

	chatModel, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
		BaseURL:     cfg.Qwen.BaseURL,
		APIKey:      cfg.Qwen.APIKey,
		Model:       cfg.Qwen.Model,
		MaxTokens:   &maxTokens,
		Temperature: &temperature,
		TopP:        &topP,
		Timeout:     cfg.Model.Timeout,
		HTTPClient:  newProviderHTTPClient(cfg, "qwen"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qwen model: %w", err)
	}
	return chatModel, nil
}

// The request deadline is enforced by the caller's context, so the client
// itself only gets a generous upper bound.
func newProviderHTTPClient(cfg *config.Config, provider string) *http.Client {
	client := utils.NewHTTPClient(cfg.Model.Timeout * 2)
	client.Transport = NewDebugTransport(client.Transport, provider, cfg.Model.DebugRequest)
	return client
}

func maskKey(key string) string {
	if len(key) > 6 {
		return key[:6] + "..."
	}
	if key == "" {
		return ""
	}
	return "***"
}
