// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package advanced implements the advanced-parameter handler (§4.5):
// capability-gated routing of AdvancedParams fields onto a draft provider
// request.
package advanced

import (
	"github.com/specado/specado/jsonpath"
	"github.com/specado/specado/lossiness"
	"github.com/specado/specado/spec"
)

// field pairs one AdvancedParams member with the capability that must be
// declared for it to route, and the value to route when present.
type field struct {
	name       string
	capability func(spec.CapabilitiesConfig) bool
	value      func(*spec.AdvancedParams) (any, bool)
}

var fields = []field{
	{
		name:       "thinking",
		capability: func(c spec.CapabilitiesConfig) bool { return c.ThinkingMode },
		value: func(a *spec.AdvancedParams) (any, bool) {
			if a.Thinking == nil {
				return nil, false
			}
			return *a.Thinking, true
		},
	},
	{
		name:       "min_thinking_tokens",
		capability: func(c spec.CapabilitiesConfig) bool { return c.ThinkingMode },
		value: func(a *spec.AdvancedParams) (any, bool) {
			if a.MinThinkingTokens == nil {
				return nil, false
			}
			return *a.MinThinkingTokens, true
		},
	},
	{
		name:       "thinking_budget",
		capability: func(c spec.CapabilitiesConfig) bool { return c.ThinkingMode },
		value: func(a *spec.AdvancedParams) (any, bool) {
			if a.ThinkingBudget == nil {
				return nil, false
			}
			return *a.ThinkingBudget, true
		},
	},
	{
		name:       "reasoning_effort",
		capability: func(c spec.CapabilitiesConfig) bool { return c.AdaptiveReasoning },
		value: func(a *spec.AdvancedParams) (any, bool) {
			if a.ReasoningEffort == "" {
				return nil, false
			}
			return string(a.ReasoningEffort), true
		},
	},
	{
		name:       "reasoning_mode",
		capability: func(c spec.CapabilitiesConfig) bool { return c.AdaptiveReasoning },
		value: func(a *spec.AdvancedParams) (any, bool) {
			if a.ReasoningMode == "" {
				return nil, false
			}
			return a.ReasoningMode, true
		},
	},
	{
		name:       "verbosity",
		capability: func(c spec.CapabilitiesConfig) bool { return c.BalancedPerformance },
		value: func(a *spec.AdvancedParams) (any, bool) {
			if a.Verbosity == "" {
				return nil, false
			}
			return a.Verbosity, true
		},
	},
	{
		name:       "seed",
		capability: func(c spec.CapabilitiesConfig) bool { return c.DeterministicSampling },
		value: func(a *spec.AdvancedParams) (any, bool) {
			if a.Seed == nil {
				return nil, false
			}
			return *a.Seed, true
		},
	},
}

// Apply routes every present AdvancedParams field onto draft according to
// model.Capabilities and model.Mappings.Paths (a mapping entry keyed
// "$.advanced.<field>" names the destination). Fields whose capability is
// not declared are dropped and recorded as LOSS_CAPABILITY_UNSUPPORTED,
// except seed, which is still applied best-effort when strictMode is warn
// (§4.5).
func Apply(draft map[string]any, adv *spec.AdvancedParams, model *spec.ModelSpec, strictMode spec.StrictMode, rec *lossiness.Recorder) (map[string]any, error) {
	if adv == nil {
		return draft, nil
	}
	for _, f := range fields {
		v, present := f.value(adv)
		if !present {
			continue
		}
		srcPath := "$.advanced." + f.name
		supported := f.capability(model.Capabilities)
		if !supported {
			if f.name == "seed" && strictMode == spec.StrictModeWarn {
				supported = true
			} else {
				rec.Record(lossiness.CodeCapabilityUnsupported, srcPath, "model does not declare the required capability", lossiness.SeverityWarn)
				continue
			}
		}
		dest, ok := model.Mappings.Paths[srcPath]
		if !ok {
			rec.Record(lossiness.CodeUnmapped, srcPath, "capability supported but no mapping entry", lossiness.SeverityInfo)
			continue
		}
		out, err := jsonpath.Set(draft, dest, v)
		if err != nil {
			rec.Record(lossiness.CodeTypeConflict, dest, err.Error(), lossiness.SeverityError)
			if strictMode == spec.StrictModeError {
				return nil, spec.NewTranslationError(spec.ErrTypeConflict, dest, err.Error())
			}
			continue
		}
		draft, _ = out.(map[string]any)
	}
	return draft, nil
}
