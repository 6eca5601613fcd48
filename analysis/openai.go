/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const defaultOpenAIModel = "gpt-4o"

// settings are the provider-independent completion knobs.
type settings struct {
	model       string
	maxTokens   int64
	temperature float64
	baseURL     string
}

// Option configures an analyzer backend.
type Option func(*settings)

// WithModel overrides the backend's default model.
func WithModel(model string) Option {
	return func(s *settings) { s.model = model }
}

// WithMaxTokens bounds the completion length.
func WithMaxTokens(n int64) Option {
	return func(s *settings) { s.maxTokens = n }
}

// WithTemperature sets the sampling temperature. The default is low; triage
// should be repeatable, not creative.
func WithTemperature(t float64) Option {
	return func(s *settings) { s.temperature = t }
}

// WithBaseURL points the backend at a different API endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

func defaultSettings(model string) settings {
	return settings{
		model:       model,
		maxTokens:   4096,
		temperature: 0.2,
	}
}

// NewOpenAI returns an Analyzer backed by the OpenAI chat completions API.
func NewOpenAI(apiKey string, opts ...Option) (Analyzer, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key cannot be empty")
	}
	s := defaultSettings(defaultOpenAIModel)
	for _, opt := range opts {
		opt(&s)
	}

	ro := []option.RequestOption{option.WithAPIKey(apiKey)}
	if s.baseURL != "" {
		ro = append(ro, option.WithBaseURL(s.baseURL))
	}

	return &analyzer{completer: &openaiCompleter{
		client:   openai.NewClient(ro...),
		settings: s,
		metrics:  newUsageMetrics(),
	}}, nil
}

type openaiCompleter struct {
	client   openai.Client
	settings settings
	metrics  *usageMetrics
}

func (c *openaiCompleter) name() string { return "openai" }

func (c *openaiCompleter) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.settings.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(c.settings.maxTokens),
		Temperature: openai.Float(c.settings.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai completion returned no choices")
	}

	c.metrics.record(ctx, c.name(), c.settings.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	clog.FromContext(ctx).With(
		"model", c.settings.model,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	).Debug("OpenAI completion finished")

	return resp.Choices[0].Message.Content, nil
}
