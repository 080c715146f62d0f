// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package specado

import (
	"time"

	"github.com/specado/specado/normalize"
	"github.com/specado/specado/orchestrator"
	"github.com/specado/specado/spec"
	"github.com/specado/specado/validate"
)

// Re-exported data model types, so callers need only import this package
// for the common case.
type (
	PromptSpec            = spec.PromptSpec
	Message               = spec.Message
	Tool                  = spec.Tool
	SamplingParams        = spec.SamplingParams
	Limits                = spec.Limits
	AdvancedParams        = spec.AdvancedParams
	MediaConfig           = spec.MediaConfig
	ProviderSpec          = spec.ProviderSpec
	ProviderInfo          = spec.ProviderInfo
	ModelSpec             = spec.ModelSpec
	Mappings              = spec.Mappings
	ResponseNormalization = spec.ResponseNormalization
	SyncNormalization     = spec.SyncNormalization
	StreamNormalization   = spec.StreamNormalization
	TranslationResult     = spec.TranslationResult
	TranslationMode       = spec.TranslationMode
	UniformResponse       = spec.UniformResponse
	UniformStreamEvent    = spec.UniformStreamEvent
	ValidationResult      = spec.ValidationResult
	Selector              = validate.Selector
)

// Translation modes, re-exported for callers that do not want to import
// package spec directly.
const (
	ModeStandard = spec.TranslationModeStandard
	ModeStrict   = spec.TranslationModeStrict
)

// Validation selectors.
const (
	SelectorPrompt   = validate.SelectorPrompt
	SelectorProvider = validate.SelectorProvider
)

// Translate runs the full translation pipeline (§4.7): it validates prompt
// and provider, resolves modelID, applies the parameter mapper, the
// advanced-parameter handler and the constraint engine in order, and
// returns the resulting TranslationResult. mode, if non-empty, overrides
// prompt.StrictMode.
//
// Translate performs no I/O and is safe to call concurrently: it holds no
// state across calls and provider may be shared across goroutines.
func Translate(prompt *PromptSpec, provider *ProviderSpec, modelID string, mode TranslationMode) (*TranslationResult, error) {
	return orchestrator.Translate(prompt, provider, modelID, mode, time.Now())
}

// Validate checks raw — an arbitrary JSON value already decoded to Go's
// generic any representation — against the PromptSpec or ProviderSpec
// shape. It never fails except when selector is unrecognized.
func Validate(raw any, selector Selector) (ValidationResult, error) {
	return orchestrator.Validate(raw, selector)
}

// NormalizeSyncResponse projects a provider's decoded synchronous response
// body onto the uniform UniformResponse shape, per model's
// response_normalization.sync rules.
func NormalizeSyncResponse(raw map[string]any, model *ModelSpec) UniformResponse {
	return normalize.Sync(raw, model)
}

// NormalizeStreamEvent projects one decoded SSE event onto the uniform
// UniformStreamEvent shape. ok is false when no route in
// model.ResponseNormalization.Stream.EventSelector matched; the event
// should be suppressed.
func NormalizeStreamEvent(rawEvent map[string]any, model *ModelSpec) (UniformStreamEvent, bool) {
	return normalize.StreamEvent(rawEvent, model)
}

// ValidateProviderSpec checks raw — an arbitrary JSON value already decoded
// to Go's generic any representation — against the ProviderSpec shape,
// re-exported so callers exercising only the provider half of validation do
// not need a separate import of package validate.
func ValidateProviderSpec(raw any) ValidationResult {
	return validate.ValidateProvider(raw)
}

// ValidatePromptSpec checks raw against the PromptSpec shape; see
// ValidateProviderSpec.
func ValidatePromptSpec(raw any) ValidationResult {
	return validate.ValidatePrompt(raw)
}
