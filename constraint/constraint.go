// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package constraint implements the constraint engine (§4.3): the five
// operations applied to a draft provider request after the parameter mapper
// has produced it, always in the same fixed order.
package constraint

import (
	"encoding/json"
	"sort"

	"github.com/specado/specado/jsonpath"
	"github.com/specado/specado/lossiness"
	"github.com/specado/specado/spec"
)

// Apply runs the five constraint-engine operations against draft, in order,
// mutating and returning the (possibly replaced) draft tree. The system
// prompt, if any, is read from draft itself: a top-level "system" field or
// a leading system-role entry in draft's "messages".
//
// strictMode governs size-limit enforcement: in error mode a breach aborts
// with a *spec.TranslationError wrapping spec.ErrSizeLimit; in warn mode the
// offending value is truncated/dropped and recorded.
func Apply(draft map[string]any, model *spec.ModelSpec, strictMode spec.StrictMode, rec *lossiness.Recorder) (map[string]any, error) {
	draft = resolveMutualExclusion(draft, model, rec)
	draft = dropUnknownFields(draft, model, rec)
	draft = relocateSystemPrompt(draft, model, rec)
	if err := enforceSizeLimits(draft, model, strictMode, rec); err != nil {
		return nil, err
	}
	draft = clampRanges(draft, model, rec)
	return draft, nil
}

// resolveMutualExclusion implements §4.3 step 1. Within each exclusion
// group, the surviving field is the one ranked highest in
// resolution_preferences; a field absent from resolution_preferences ranks
// last. Ties (including "none of the present fields are listed") are broken
// by the field's position in the exclusion group itself, earliest wins.
//
// Ties prefer the earlier position in the exclusion group, not the
// preference list, since a tie by definition means the preference list did
// not distinguish the candidates.
func resolveMutualExclusion(draft map[string]any, model *spec.ModelSpec, rec *lossiness.Recorder) map[string]any {
	dests := paramDestinations(model)
	prefRank := make(map[string]int, len(model.Constraints.ResolutionPreferences))
	for i, f := range model.Constraints.ResolutionPreferences {
		prefRank[f] = i
	}
	for _, group := range model.Constraints.MutuallyExclusive {
		var present []string
		for _, field := range group {
			if _, ok, _ := jsonpath.Get(draft, destinationFor(dests, field)); ok {
				present = append(present, field)
			}
		}
		if len(present) < 2 {
			continue
		}
		best := present[0]
		bestRank, ok := prefRank[best]
		if !ok {
			bestRank = len(prefRank)
		}
		for _, field := range present[1:] {
			rank, ok := prefRank[field]
			if !ok {
				rank = len(prefRank)
			}
			if rank < bestRank {
				best = field
				bestRank = rank
			}
		}
		for _, field := range present {
			if field == best {
				continue
			}
			path := destinationFor(dests, field)
			old, _, _ := jsonpath.Get(draft, path)
			rec.RecordChange(lossiness.CodeMutexResolved, path, "dropped in favor of "+best, lossiness.SeverityWarn, old, nil)
			jsonpath.Delete(draft, path)
		}
	}
	return draft
}

// paramDestinations maps the top-level field name of each mapping
// destination (Paths and Flags) to that full destination path, the same
// lookup advanced.Apply performs against model.Mappings.Paths but inverted:
// keyed by the provider side instead of the uniform source path. A
// parameter whose destination is a top-level key ("$.temperature") is found
// under its own name. A destination nested under another object
// ("$.config.temperature") is keyed by the container name ("config"), so a
// lookup by the parameter's own name does not find it.
func paramDestinations(model *spec.ModelSpec) map[string]string {
	dests := make(map[string]string, len(model.Mappings.Paths)+len(model.Mappings.Flags))
	for _, dest := range model.Mappings.Paths {
		if p, err := jsonpath.Parse(dest); err == nil {
			if f := p.RootField(); len(f) > 2 {
				dests[f[2:]] = dest
			}
		}
	}
	for dest := range model.Mappings.Flags {
		if p, err := jsonpath.Parse(dest); err == nil {
			if f := p.RootField(); len(f) > 2 {
				dests[f[2:]] = dest
			}
		}
	}
	return dests
}

// destinationFor resolves name to its mapped destination path, falling back
// to "$.name" when no mapping entry names it: the common case where a
// parameter's provider-side name is already its own top-level draft key.
func destinationFor(dests map[string]string, name string) string {
	if dest, ok := dests[name]; ok {
		return dest
	}
	return "$." + name
}

// dropUnknownFields implements §4.3 step 2.
func dropUnknownFields(draft map[string]any, model *spec.ModelSpec, rec *lossiness.Recorder) map[string]any {
	if !model.Constraints.ForbidUnknownTopLevelFields {
		return draft
	}
	known := make(map[string]bool, len(model.Parameters)+len(model.Mappings.Paths))
	for name := range model.Parameters {
		known[name] = true
	}
	for name := range paramDestinations(model) {
		known[name] = true
	}

	keys := make([]string, 0, len(draft))
	for k := range draft {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !known[k] {
			rec.RecordChange(lossiness.CodeUnknownFieldDropped, "$."+k, "field not declared in parameters or mappings", lossiness.SeverityWarn, draft[k], nil)
			delete(draft, k)
		}
	}
	return draft
}

// relocateSystemPrompt implements §4.3 step 3. first_message and
// message_role are treated as aliases for "leave the system message where
// the mapper already placed it among messages"; separate_field moves it to
// its own top-level key. "first" is the default layout and needs no
// relocation.
func relocateSystemPrompt(draft map[string]any, model *spec.ModelSpec, rec *lossiness.Recorder) map[string]any {
	if model.Constraints.SystemPromptLocation != spec.SystemPromptSeparateField {
		return draft
	}
	msgsRaw, ok := draft["messages"]
	if !ok {
		return draft
	}
	msgs, ok := msgsRaw.([]any)
	if !ok || len(msgs) == 0 {
		return draft
	}
	first, ok := msgs[0].(map[string]any)
	if !ok || first["role"] != "system" {
		return draft
	}
	content, _ := first["content"].(string)
	draft["system"] = content
	draft["messages"] = msgs[1:]
	rec.Record(lossiness.CodeSystemRelocated, "$.messages[0]", "moved system message to a separate field", lossiness.SeverityInfo)
	return draft
}

// enforceSizeLimits implements §4.3 step 4.
func enforceSizeLimits(draft map[string]any, model *spec.ModelSpec, strictMode spec.StrictMode, rec *lossiness.Recorder) error {
	limits := model.Constraints.Limits

	if limits.MaxToolSchemaBytes > 0 {
		if tools, ok := draft["tools"].([]any); ok {
			total := 0
			for _, t := range tools {
				b, _ := json.Marshal(t)
				total += len(b)
			}
			if int64(total) > limits.MaxToolSchemaBytes {
				if strictMode == spec.StrictModeError {
					return spec.NewTranslationError(spec.ErrSizeLimit, "$.tools", "tool schema size exceeds max_tool_schema_bytes")
				}
				draft["tools"] = []any{}
				rec.RecordChange(lossiness.CodeToolOverflow, "$.tools", "dropped tools to satisfy max_tool_schema_bytes", lossiness.SeverityWarn, total, 0)
			}
		}
	}

	if limits.MaxSystemPromptBytes > 0 {
		sys, path := systemPromptText(draft)
		if sys != "" && int64(len(sys)) > limits.MaxSystemPromptBytes {
			if strictMode == spec.StrictModeError {
				return spec.NewTranslationError(spec.ErrSizeLimit, path, "system prompt exceeds max_system_prompt_bytes")
			}
			truncated := sys[:limits.MaxSystemPromptBytes]
			setSystemPromptText(draft, truncated)
			rec.RecordChange(lossiness.CodeSystemOverflow, path, "truncated system prompt to satisfy max_system_prompt_bytes", lossiness.SeverityWarn, len(sys), len(truncated))
		}
	}
	return nil
}

func systemPromptText(draft map[string]any) (string, string) {
	if s, ok := draft["system"].(string); ok {
		return s, "$.system"
	}
	if msgs, ok := draft["messages"].([]any); ok && len(msgs) > 0 {
		if first, ok := msgs[0].(map[string]any); ok && first["role"] == "system" {
			if s, ok := first["content"].(string); ok {
				return s, "$.messages[0].content"
			}
		}
	}
	return "", ""
}

func setSystemPromptText(draft map[string]any, text string) {
	if _, ok := draft["system"]; ok {
		draft["system"] = text
		return
	}
	if msgs, ok := draft["messages"].([]any); ok && len(msgs) > 0 {
		if first, ok := msgs[0].(map[string]any); ok {
			first["content"] = text
		}
	}
}

// clampRanges implements §4.3 step 5.
func clampRanges(draft map[string]any, model *spec.ModelSpec, rec *lossiness.Recorder) map[string]any {
	dests := paramDestinations(model)
	names := make([]string, 0, len(model.Parameters))
	for name := range model.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		schema := model.Parameters[name]
		if schema.Minimum == nil && schema.Maximum == nil {
			continue
		}
		path := destinationFor(dests, name)
		raw, ok, _ := jsonpath.Get(draft, path)
		if !ok {
			continue
		}
		v, ok := asFloat(raw)
		if !ok {
			continue
		}
		clamped, changed := schema.Clamp(v)
		if !changed {
			continue
		}
		out, err := jsonpath.Set(draft, path, clamped)
		if err != nil {
			continue
		}
		draft, _ = out.(map[string]any)
		rec.RecordChange(lossiness.CodeClamped, path, "clamped to model parameter range", lossiness.SeverityWarn, v, clamped)
	}
	return draft
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
