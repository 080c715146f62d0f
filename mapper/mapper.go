// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mapper implements the parameter mapper (§4.4): projecting a
// PromptSpec's JSON tree onto a draft provider request according to a
// model's declarative path mappings.
package mapper

import (
	"encoding/json"
	"sort"

	"github.com/specado/specado/jsonpath"
	"github.com/specado/specado/lossiness"
	"github.com/specado/specado/spec"
)

// uniformFields are the top-level PromptSpec JSONPaths a mapping table is
// expected to account for, used to detect and record LOSS_UNMAPPED. Nested
// fields (e.g. individual sampling knobs) are intentionally not enumerated
// here: §4.4 only asks that uniform *fields*, not every leaf, be accounted
// for, and AdvancedParams is routed separately by package advanced.
// model_class and strict_mode describe the request rather than feed it, so
// they are not listed.
var uniformFields = []string{
	"$.messages",
	"$.tools",
	"$.tool_choice",
	"$.response_format",
	"$.sampling",
	"$.limits",
	"$.media",
}

// Map runs the parameter mapper: it reads prompt (already decoded to a
// generic JSON tree) through each of model.Mappings.Paths, in source-path
// lexicographic order, and writes into a fresh draft request tree. It
// returns the draft and records every divergence into rec.
//
// strictMode controls whether a LOSS_TYPE_CONFLICT aborts immediately: in
// error mode Map returns a *spec.TranslationError wrapping
// spec.ErrTypeConflict; in warn mode it records the item and skips that one
// mapping entry.
func Map(promptJSON map[string]any, model *spec.ModelSpec, strictMode spec.StrictMode, rec *lossiness.Recorder) (map[string]any, error) {
	draft := map[string]any{}

	sources := make([]string, 0, len(model.Mappings.Paths))
	for src := range model.Mappings.Paths {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	mapped := make(map[string]bool, len(sources))
	for _, src := range sources {
		dest := model.Mappings.Paths[src]
		v, ok, err := jsonpath.Get(promptJSON, src)
		if err != nil {
			return nil, spec.NewTranslationError(spec.ErrPathSyntax, src, err.Error())
		}
		if !ok {
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
		mapped[rootField(src)] = true
	}

	flagDests := make([]string, 0, len(model.Mappings.Flags))
	for dest := range model.Mappings.Flags {
		flagDests = append(flagDests, dest)
	}
	sort.Strings(flagDests)
	for _, dest := range flagDests {
		out, err := jsonpath.Set(draft, dest, model.Mappings.Flags[dest])
		if err != nil {
			rec.Record(lossiness.CodeTypeConflict, dest, err.Error(), lossiness.SeverityError)
			if strictMode == spec.StrictModeError {
				return nil, spec.NewTranslationError(spec.ErrTypeConflict, dest, err.Error())
			}
			continue
		}
		draft, _ = out.(map[string]any)
	}

	for _, field := range uniformFields {
		if mapped[field] {
			continue
		}
		if v, ok, _ := jsonpath.Get(promptJSON, field); ok && v != nil {
			rec.Record(lossiness.CodeUnmapped, field, "no mapping entry for this field", lossiness.SeverityInfo)
		}
	}

	return draft, nil
}

func rootField(path string) string {
	p, err := jsonpath.Parse(path)
	if err != nil {
		return path
	}
	return p.RootField()
}

// ToJSONTree marshals a PromptSpec to the generic map[string]any tree the
// jsonpath package operates on.
func ToJSONTree(p *spec.PromptSpec) (map[string]any, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(b, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
