// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spec

import (
	"strings"
	"testing"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestPromptSpec_Validate(t *testing.T) {
	p := PromptSpec{
		ModelClass: "Chat",
		Messages:   Messages{{Role: RoleUser, Content: "hi"}},
		StrictMode: StrictModeWarn,
	}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestPromptSpec_Validate_errors(t *testing.T) {
	tests := []struct {
		name   string
		prompt PromptSpec
		errMsg string
	}{
		{
			name:   "empty messages",
			prompt: PromptSpec{ModelClass: "Chat", StrictMode: StrictModeWarn},
			errMsg: "field messages: must be non-empty",
		},
		{
			name: "unknown role",
			prompt: PromptSpec{
				ModelClass: "Chat",
				Messages:   Messages{{Role: "narrator", Content: "hi"}},
				StrictMode: StrictModeWarn,
			},
			errMsg: `role "narrator" is not supported`,
		},
		{
			name: "empty content",
			prompt: PromptSpec{
				ModelClass: "Chat",
				Messages:   Messages{{Role: RoleUser, Content: ""}},
				StrictMode: StrictModeWarn,
			},
			errMsg: "field content: must be non-empty",
		},
		{
			name: "unknown strict mode",
			prompt: PromptSpec{
				ModelClass: "Chat",
				Messages:   Messages{{Role: RoleUser, Content: "hi"}},
				StrictMode: "loud",
			},
			errMsg: `strict_mode "loud" is not supported`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.prompt.Validate()
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestSamplingParams_Validate_temperatureBoundary(t *testing.T) {
	// Exactly 2.0 is accepted; anything past it is not.
	s := SamplingParams{Temperature: f64(2.0)}
	if err := s.Validate(); err != nil {
		t.Fatal(err)
	}
	s = SamplingParams{Temperature: f64(2.000001)}
	if err := s.Validate(); err == nil {
		t.Fatal("expected an error")
	}
}

func TestTools_Validate_duplicateName(t *testing.T) {
	ts := Tools{
		{Name: "lookup", JSONSchema: map[string]any{"type": "object"}},
		{Name: "lookup", JSONSchema: map[string]any{"type": "object"}},
	}
	err := ts.Validate()
	if err == nil || !strings.Contains(err.Error(), "not unique") {
		t.Fatalf("got %v, want a uniqueness error", err)
	}
}

func TestProviderSpec_FindModel(t *testing.T) {
	ps := ProviderSpec{
		SpecVersion: "1.0.0",
		Provider:    ProviderInfo{Name: "acme"},
		Models: []ModelSpec{
			{ID: "gpt-x", Aliases: []string{"gpt-x-latest"}},
		},
	}
	if _, ok := ps.FindModel("gpt-x"); !ok {
		t.Fatal("expected to find model by id")
	}
	if _, ok := ps.FindModel("gpt-x-latest"); !ok {
		t.Fatal("expected to find model by alias")
	}
	if _, ok := ps.FindModel("nope"); ok {
		t.Fatal("expected no match")
	}
}

func TestParamSchema_Clamp(t *testing.T) {
	max := 2.0
	ps := ParamSchema{Maximum: &max}
	if v, clamped := ps.Clamp(3.5); v != 2.0 || !clamped {
		t.Fatalf("got (%v, %v), want (2.0, true)", v, clamped)
	}
	if v, clamped := ps.Clamp(1.0); v != 1.0 || clamped {
		t.Fatalf("got (%v, %v), want (1.0, false)", v, clamped)
	}
}
