// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package constraint

import (
	"strings"
	"testing"

	"github.com/specado/specado/lossiness"
	"github.com/specado/specado/spec"
)

func f64(v float64) *float64 { return &v }

func TestApply_mutexResolution(t *testing.T) {
	draft := map[string]any{"temperature": 0.7, "top_p": 0.9}
	model := &spec.ModelSpec{
		Constraints: spec.Constraints{
			MutuallyExclusive:     [][]string{{"temperature", "top_p"}},
			ResolutionPreferences: []string{"temperature", "top_p"},
		},
	}
	rec := lossiness.New()
	out, err := Apply(draft, model, spec.StrictModeWarn, rec)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out["temperature"]; !ok {
		t.Fatal("temperature should survive")
	}
	if _, ok := out["top_p"]; ok {
		t.Fatal("top_p should be dropped")
	}
	rep := rec.Close()
	if rep.Summary.ByCode[lossiness.CodeMutexResolved] != 1 {
		t.Fatalf("expected exactly one LOSS_MUTEX_RESOLVED, got %+v", rep.Summary.ByCode)
	}
}

func TestApply_mutexTieBreaksOnGroupOrder(t *testing.T) {
	draft := map[string]any{"a": 1.0, "b": 2.0}
	model := &spec.ModelSpec{
		Constraints: spec.Constraints{
			MutuallyExclusive: [][]string{{"a", "b"}},
		},
	}
	rec := lossiness.New()
	out, err := Apply(draft, model, spec.StrictModeWarn, rec)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out["a"]; !ok {
		t.Fatal("a should survive the tie: it is earlier in the exclusion group")
	}
}

func TestApply_unknownFieldDropped(t *testing.T) {
	draft := map[string]any{"temperature": 0.5, "mystery": true}
	model := &spec.ModelSpec{
		Parameters: map[string]spec.ParamSchema{"temperature": {}},
		Constraints: spec.Constraints{
			ForbidUnknownTopLevelFields: true,
		},
	}
	rec := lossiness.New()
	out, err := Apply(draft, model, spec.StrictModeWarn, rec)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out["mystery"]; ok {
		t.Fatal("unknown field should be dropped")
	}
	if rec.Len() != 1 {
		t.Fatalf("expected one lossiness item, got %d", rec.Len())
	}
}

func TestApply_unknownFieldKeptWhenNotForbidden(t *testing.T) {
	draft := map[string]any{"mystery": true}
	model := &spec.ModelSpec{}
	rec := lossiness.New()
	out, err := Apply(draft, model, spec.StrictModeWarn, rec)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := out["mystery"]; !ok {
		t.Fatal("field should be kept when ForbidUnknownTopLevelFields is false")
	}
	if rec.Len() != 0 {
		t.Fatalf("expected no lossiness, got %d", rec.Len())
	}
}

func TestApply_systemPromptRelocation(t *testing.T) {
	draft := map[string]any{
		"messages": []any{
			map[string]any{"role": "system", "content": "be nice"},
			map[string]any{"role": "user", "content": "hi"},
		},
	}
	model := &spec.ModelSpec{
		Constraints: spec.Constraints{SystemPromptLocation: spec.SystemPromptSeparateField},
	}
	rec := lossiness.New()
	out, err := Apply(draft, model, spec.StrictModeWarn, rec)
	if err != nil {
		t.Fatal(err)
	}
	if out["system"] != "be nice" {
		t.Fatalf("got %+v", out)
	}
	msgs := out["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected system message removed, got %+v", msgs)
	}
}

func TestApply_clampRecordsOnlyOnChange(t *testing.T) {
	draft := map[string]any{"temperature": 3.5}
	model := &spec.ModelSpec{
		Parameters: map[string]spec.ParamSchema{
			"temperature": {Maximum: f64(2.0)},
		},
	}
	rec := lossiness.New()
	out, err := Apply(draft, model, spec.StrictModeWarn, rec)
	if err != nil {
		t.Fatal(err)
	}
	if out["temperature"] != 2.0 {
		t.Fatalf("got %v", out["temperature"])
	}
	rep := rec.Close()
	if rep.Summary.ByCode[lossiness.CodeClamped] != 1 {
		t.Fatalf("expected one LOSS_CLAMPED, got %+v", rep.Summary.ByCode)
	}

	// Idempotence: clamping an in-range value is a no-op and records nothing.
	draft2 := map[string]any{"temperature": 1.0}
	rec2 := lossiness.New()
	if _, err := Apply(draft2, model, spec.StrictModeWarn, rec2); err != nil {
		t.Fatal(err)
	}
	if rec2.Len() != 0 {
		t.Fatalf("expected no lossiness for an in-range value, got %d", rec2.Len())
	}
}

func TestApply_sizeLimitErrorModeAborts(t *testing.T) {
	draft := map[string]any{"system": strings.Repeat("x", 100)}
	model := &spec.ModelSpec{
		Constraints: spec.Constraints{
			Limits: spec.ConstraintLimits{MaxSystemPromptBytes: 10},
		},
	}
	rec := lossiness.New()
	_, err := Apply(draft, model, spec.StrictModeError, rec)
	if err == nil {
		t.Fatal("expected E_SIZE_LIMIT")
	}
}

func TestApply_sizeLimitWarnModeTruncates(t *testing.T) {
	draft := map[string]any{"system": strings.Repeat("x", 100)}
	model := &spec.ModelSpec{
		Constraints: spec.Constraints{
			Limits: spec.ConstraintLimits{MaxSystemPromptBytes: 10},
		},
	}
	rec := lossiness.New()
	out, err := Apply(draft, model, spec.StrictModeWarn, rec)
	if err != nil {
		t.Fatal(err)
	}
	if len(out["system"].(string)) != 10 {
		t.Fatalf("got length %d", len(out["system"].(string)))
	}
	if rec.Len() != 1 {
		t.Fatalf("expected one lossiness item, got %d", rec.Len())
	}
}
