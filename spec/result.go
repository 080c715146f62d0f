// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spec

import (
	"time"

	"github.com/specado/specado/lossiness"
)

// TranslationMetadata describes the circumstances of a translation, carried
// alongside the request for observability; the engine never interprets it.
type TranslationMetadata struct {
	Provider   string     `json:"provider"`
	Model      string     `json:"model"`
	Timestamp  time.Time  `json:"timestamp"`
	DurationMs int64      `json:"duration_ms"`
	StrictMode StrictMode `json:"strict_mode"`
}

// ToolCall is a tool invocation the model asked for.
type ToolCall struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
	ID        string         `json:"id,omitempty"`
}

// UniformResponse is a provider's synchronous response projected onto the
// uniform shape.
type UniformResponse struct {
	Model        string           `json:"model"`
	Content      string           `json:"content"`
	FinishReason FinishReason     `json:"finish_reason"`
	ToolCalls    []ToolCall       `json:"tool_calls,omitempty"`
	RawMetadata  map[string]any   `json:"raw_metadata,omitempty"`
	Lossiness    lossiness.Report `json:"lossiness"`
}

// UniformStreamEvent is one provider streaming event projected onto the
// uniform shape. Kind is one of "text_delta", "tool_call_delta", "finish".
type UniformStreamEvent struct {
	Kind      string           `json:"kind"`
	Text      string           `json:"text,omitempty"`
	Name      string           `json:"name,omitempty"`
	Args      map[string]any   `json:"args,omitempty"`
	ID        string           `json:"id,omitempty"`
	Lossiness lossiness.Report `json:"lossiness,omitempty"`
}

// ValidationResult is the outcome of validating an arbitrary JSON value
// against either the PromptSpec or the ProviderSpec schema. Validate never
// fails: every violation it finds is appended to Errors instead.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// TranslationResult is the output of a successful translation: the draft
// provider request body, the lossiness accounting for the translation that
// produced it, and metadata about the circumstances.
type TranslationResult struct {
	Request   map[string]any      `json:"provider_request_json"`
	Lossiness lossiness.Report    `json:"lossiness"`
	Metadata  TranslationMetadata `json:"metadata"`
}

// HasLossiness reports whether the translation that produced this result
// recorded any lossiness item.
func (r *TranslationResult) HasLossiness() bool {
	return r.Lossiness.HasLossiness()
}
