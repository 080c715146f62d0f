// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package mapper

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/specado/specado/lossiness"
	"github.com/specado/specado/spec"
)

func tempPtr(v float64) *float64 { return &v }

func TestMap_minimalChat(t *testing.T) {
	prompt := map[string]any{
		"model_class": "Chat",
		"messages": []any{
			map[string]any{"role": "user", "content": "Hi"},
		},
		"strict_mode": "warn",
	}
	model := &spec.ModelSpec{
		ID: "m",
		Mappings: spec.Mappings{
			Paths: map[string]string{"$.messages": "$.messages"},
		},
	}
	rec := lossiness.New()
	draft, err := Map(prompt, model, spec.StrictModeWarn, rec)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"messages": []any{map[string]any{"role": "user", "content": "Hi"}},
	}
	if diff := cmp.Diff(want, draft); diff != "" {
		t.Fatalf("draft mismatch (-want +got):\n%s", diff)
	}
	if rec.Len() != 0 {
		t.Fatalf("expected no lossiness, got %d items", rec.Len())
	}
}

func TestMap_unmappedFieldRecorded(t *testing.T) {
	prompt := map[string]any{
		"model_class": "Chat",
		"messages":    []any{map[string]any{"role": "user", "content": "Hi"}},
		"sampling":    map[string]any{"temperature": 0.5},
		"strict_mode": "warn",
	}
	model := &spec.ModelSpec{
		ID: "m",
		Mappings: spec.Mappings{
			Paths: map[string]string{"$.messages": "$.messages"},
		},
	}
	rec := lossiness.New()
	if _, err := Map(prompt, model, spec.StrictModeWarn, rec); err != nil {
		t.Fatal(err)
	}
	rep := rec.Close()
	found := false
	for _, it := range rep.Items {
		if it.Code == lossiness.CodeUnmapped && it.Path == "$.sampling" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected LOSS_UNMAPPED for $.sampling, got %+v", rep.Items)
	}
}

func TestMap_typeConflictWarnMode(t *testing.T) {
	prompt := map[string]any{
		"messages": []any{"a"},
		"tools":    []any{},
	}
	model := &spec.ModelSpec{
		ID: "m",
		Mappings: spec.Mappings{
			Paths: map[string]string{
				"$.messages": "$.x[0]",
				"$.tools":    "$.x.y",
			},
		},
	}
	rec := lossiness.New()
	_, err := Map(prompt, model, spec.StrictModeWarn, rec)
	if err != nil {
		t.Fatalf("warn mode should not abort: %v", err)
	}
	if rec.MaxSeverity() != lossiness.SeverityError {
		t.Fatalf("expected a recorded LOSS_TYPE_CONFLICT, got max severity %v", rec.MaxSeverity())
	}
}

func TestMap_typeConflictErrorModeAborts(t *testing.T) {
	prompt := map[string]any{
		"messages": []any{"a"},
		"tools":    []any{},
	}
	model := &spec.ModelSpec{
		ID: "m",
		Mappings: spec.Mappings{
			Paths: map[string]string{
				"$.messages": "$.x[0]",
				"$.tools":    "$.x.y",
			},
		},
	}
	rec := lossiness.New()
	_, err := Map(prompt, model, spec.StrictModeError, rec)
	if err == nil {
		t.Fatal("expected an error in strict mode")
	}
}

func TestMap_flagsAppliedAfterPaths(t *testing.T) {
	prompt := map[string]any{"messages": []any{}}
	model := &spec.ModelSpec{
		ID: "m",
		Mappings: spec.Mappings{
			Paths: map[string]string{"$.messages": "$.messages"},
			Flags: map[string]any{"$.stream": false},
		},
	}
	rec := lossiness.New()
	draft, err := Map(prompt, model, spec.StrictModeWarn, rec)
	if err != nil {
		t.Fatal(err)
	}
	if draft["stream"] != false {
		t.Fatalf("expected flag applied, got %+v", draft)
	}
}

func TestMap_deterministicOrdering(t *testing.T) {
	prompt := map[string]any{
		"model_class": "Chat",
		"messages":    []any{map[string]any{"role": "user", "content": "Hi"}},
		"sampling":    map[string]any{"temperature": tempPtr(0.5)},
	}
	model := &spec.ModelSpec{
		ID: "m",
		Mappings: spec.Mappings{
			Paths: map[string]string{
				"$.messages":    "$.messages",
				"$.model_class": "$.model",
			},
		},
	}
	rec1, rec2 := lossiness.New(), lossiness.New()
	d1, err1 := Map(prompt, model, spec.StrictModeWarn, rec1)
	d2, err2 := Map(prompt, model, spec.StrictModeWarn, rec2)
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v %v", err1, err2)
	}
	if diff := cmp.Diff(d1, d2); diff != "" {
		t.Fatalf("non-deterministic draft:\n%s", diff)
	}
	if diff := cmp.Diff(rec1.Close().Items, rec2.Close().Items); diff != "" {
		t.Fatalf("non-deterministic lossiness order:\n%s", diff)
	}
}
