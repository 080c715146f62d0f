// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package orchestrator implements the translation orchestrator (§4.7): the
// nine-step pipeline that turns a PromptSpec and a ProviderSpec into a
// TranslationResult.
package orchestrator

import (
	"encoding/json"
	"time"

	"github.com/specado/specado/advanced"
	"github.com/specado/specado/constraint"
	"github.com/specado/specado/jsonpath"
	"github.com/specado/specado/lossiness"
	"github.com/specado/specado/mapper"
	"github.com/specado/specado/spec"
	"github.com/specado/specado/validate"
)

// Translate runs the nine-step pipeline of §4.7. mode, if non-empty,
// overrides prompt.StrictMode. now is injected and becomes
// TranslationMetadata.Timestamp, so callers that need a reproducible
// timestamp in tests can pass a fixed value; production callers pass
// time.Now(). DurationMs is always measured on the real clock.
func Translate(prompt *spec.PromptSpec, provider *spec.ProviderSpec, modelID string, mode spec.TranslationMode, now time.Time) (*spec.TranslationResult, error) {
	start := time.Now()

	if err := mode.Validate(); err != nil {
		return nil, spec.NewUsageError(spec.ErrInvalidMode, err.Error())
	}

	promptTree, err := mapper.ToJSONTree(prompt)
	if err != nil {
		return nil, spec.NewTranslationError(spec.ErrPromptInvalid, "", err.Error())
	}
	if res := validate.ValidatePrompt(promptTree); !res.IsValid {
		return nil, spec.NewValidationError(spec.ErrPromptInvalid, res.Errors)
	}

	if err := provider.Validate(); err != nil {
		return nil, spec.NewValidationError(spec.ErrProviderInvalid, []string{err.Error()})
	}
	providerTree, err := toJSONTree(provider)
	if err != nil {
		return nil, spec.NewTranslationError(spec.ErrProviderInvalid, "", err.Error())
	}
	if res := validate.ValidateProvider(providerTree); !res.IsValid {
		return nil, spec.NewValidationError(spec.ErrProviderInvalid, res.Errors)
	}

	model, ok := provider.FindModel(modelID)
	if !ok {
		return nil, spec.NewProviderError(spec.ErrModelNotFound, modelID)
	}

	strictMode := prompt.StrictMode
	if mode != "" {
		strictMode = mode.StrictMode()
	}

	rec := lossiness.New()

	stripUnsupportedModalities(promptTree, model, rec)

	draft, err := mapper.Map(promptTree, model, strictMode, rec)
	if err != nil {
		return nil, err
	}

	draft, err = advanced.Apply(draft, prompt.Advanced, model, strictMode, rec)
	if err != nil {
		return nil, err
	}

	draft, err = constraint.Apply(draft, model, strictMode, rec)
	if err != nil {
		return nil, err
	}

	if strictMode == spec.StrictModeError && rec.MaxSeverity().AtLeast(lossiness.SeverityWarn) {
		return nil, spec.NewTranslationError(spec.ErrStrictLossiness, "", "lossiness severity reached "+string(rec.MaxSeverity())+" under strict mode")
	}

	return &spec.TranslationResult{
		Request:   draft,
		Lossiness: rec.Close(),
		Metadata: spec.TranslationMetadata{
			Provider:   provider.Provider.Name,
			Model:      model.ID,
			Timestamp:  now,
			DurationMs: time.Since(start).Milliseconds(),
			StrictMode: strictMode,
		},
	}, nil
}

// toJSONTree round-trips v through its json tags into the generic
// map[string]any shape package validate operates on. Used for the
// ProviderSpec the same way mapper.ToJSONTree is used for the PromptSpec,
// so both validate calls see exactly the wire shape a caller would submit.
func toJSONTree(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(b, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// stripUnsupportedModalities implements §4.7 step 4: media the model does
// not declare support for is removed from the tree before mapping sees it,
// so it can never leak into a draft request through an incidental mapping
// entry.
func stripUnsupportedModalities(promptTree map[string]any, model *spec.ModelSpec, rec *lossiness.Recorder) {
	if !model.InputModes.Images {
		if v, ok, _ := jsonpath.Get(promptTree, "$.media.input_images"); ok && v != nil {
			if _, err := jsonpath.Set(promptTree, "$.media.input_images", nil); err == nil {
				rec.Record(lossiness.CodeModalityDropped, "$.media.input_images", "model does not declare input_modes.images", lossiness.SeverityWarn)
			}
		}
	}
}

// Validate is the §6 validate(spec, selector) entry point, re-exported here
// so callers of the orchestrator do not need a second import for the
// validation half of the external interface.
func Validate(raw any, selector validate.Selector) (spec.ValidationResult, error) {
	return validate.Validate(raw, selector)
}
