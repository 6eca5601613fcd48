/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chainguard-dev/clog"
)

const defaultAnthropicModel = "claude-sonnet-4-5"

// NewAnthropic returns an Analyzer backed by the Anthropic messages API.
func NewAnthropic(apiKey string, opts ...Option) (Analyzer, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key cannot be empty")
	}
	s := defaultSettings(defaultAnthropicModel)
	for _, opt := range opts {
		opt(&s)
	}

	ro := []option.RequestOption{option.WithAPIKey(apiKey)}
	if s.baseURL != "" {
		ro = append(ro, option.WithBaseURL(s.baseURL))
	}

	return &analyzer{completer: &anthropicCompleter{
		client:   anthropic.NewClient(ro...),
		settings: s,
		metrics:  newUsageMetrics(),
	}}, nil
}

type anthropicCompleter struct {
	client   anthropic.Client
	settings settings
	metrics  *usageMetrics
}

func (c *anthropicCompleter) name() string { return "anthropic" }

func (c *anthropicCompleter) complete(ctx context.Context, system, user string) (string, error) {
	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.settings.model),
		MaxTokens:   c.settings.maxTokens,
		Temperature: anthropic.Float(c.settings.temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic completion: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic completion returned no text content")
	}

	c.metrics.record(ctx, c.name(), c.settings.model, msg.Usage.InputTokens, msg.Usage.OutputTokens)
	clog.FromContext(ctx).With(
		"model", c.settings.model,
		"input_tokens", msg.Usage.InputTokens,
		"output_tokens", msg.Usage.OutputTokens,
	).Debug("Anthropic completion finished")

	return sb.String(), nil
}
