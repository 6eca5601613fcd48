/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package analysis

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// usageMetrics records LLM token consumption. Counter creation degrades to
// no-ops rather than failing the analyzer: losing metrics should never lose
// an analysis.
type usageMetrics struct {
	promptTokens     metric.Int64Counter
	completionTokens metric.Int64Counter
}

func newUsageMetrics() *usageMetrics {
	meter := otel.Meter("gdev.analysis")

	promptTokens, err := meter.Int64Counter("llm.token.prompt",
		metric.WithDescription("The number of prompt tokens sent to the model"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create prompt token counter, metrics disabled", "error", err)
		promptTokens = noop.Int64Counter{}
	}

	completionTokens, err := meter.Int64Counter("llm.token.completion",
		metric.WithDescription("The number of completion tokens produced by the model"),
		metric.WithUnit("{tokens}"))
	if err != nil {
		slog.Warn("Failed to create completion token counter, metrics disabled", "error", err)
		completionTokens = noop.Int64Counter{}
	}

	return &usageMetrics{
		promptTokens:     promptTokens,
		completionTokens: completionTokens,
	}
}

func (m *usageMetrics) record(ctx context.Context, provider, model string, prompt, completion int64) {
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("model", model),
	)
	m.promptTokens.Add(ctx, prompt, attrs)
	m.completionTokens.Add(ctx, completion, attrs)
}
