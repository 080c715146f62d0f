// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package validate

import (
	"strings"
	"testing"
)

func TestValidatePrompt_valid(t *testing.T) {
	raw := map[string]any{
		"model_class": "Chat",
		"messages": []any{
			map[string]any{"role": "user", "content": "Hi"},
		},
		"strict_mode": "warn",
	}
	res := ValidatePrompt(raw)
	if !res.IsValid {
		t.Fatalf("got errors: %v", res.Errors)
	}
}

func TestValidatePrompt_emptyMessages(t *testing.T) {
	raw := map[string]any{
		"model_class": "Chat",
		"messages":    []any{},
		"strict_mode": "warn",
	}
	res := ValidatePrompt(raw)
	if res.IsValid {
		t.Fatal("expected invalid")
	}
	if !containsSubstring(res.Errors, "messages: must be non-empty") {
		t.Fatalf("got %v", res.Errors)
	}
}

func TestValidatePrompt_unknownRole(t *testing.T) {
	raw := map[string]any{
		"model_class": "Chat",
		"messages": []any{
			map[string]any{"role": "narrator", "content": "Hi"},
		},
		"strict_mode": "warn",
	}
	res := ValidatePrompt(raw)
	if res.IsValid {
		t.Fatal("expected invalid")
	}
	if !containsSubstring(res.Errors, "narrator") {
		t.Fatalf("got %v", res.Errors)
	}
}

func TestValidatePrompt_temperatureBoundary(t *testing.T) {
	base := func(temp float64) map[string]any {
		return map[string]any{
			"model_class": "Chat",
			"messages":    []any{map[string]any{"role": "user", "content": "hi"}},
			"sampling":    map[string]any{"temperature": temp},
			"strict_mode": "warn",
		}
	}
	if res := ValidatePrompt(base(2.0)); !res.IsValid {
		t.Fatalf("2.0 should be accepted, got %v", res.Errors)
	}
	if res := ValidatePrompt(base(2.000001)); res.IsValid {
		t.Fatal("2.000001 should be rejected")
	}
}

func TestValidatePrompt_allViolationsAtOnce(t *testing.T) {
	raw := map[string]any{
		"messages":    []any{},
		"strict_mode": "loud",
	}
	res := ValidatePrompt(raw)
	if res.IsValid {
		t.Fatal("expected invalid")
	}
	// model_class missing, messages empty, strict_mode unknown: at least 3 errors in one pass.
	if len(res.Errors) < 3 {
		t.Fatalf("got %d errors, want at least 3: %v", len(res.Errors), res.Errors)
	}
}

func TestValidateProvider_missingSubObjects(t *testing.T) {
	raw := map[string]any{
		"spec_version": "1.0.0",
		"provider":     map[string]any{"name": "acme"},
		"models": []any{
			map[string]any{"id": "m"},
		},
	}
	res := ValidateProvider(raw)
	if res.IsValid {
		t.Fatal("expected invalid")
	}
	for _, key := range requiredModelSubObjects[1:] {
		if !containsSubstring(res.Errors, key) {
			t.Errorf("expected an error naming %q, got %v", key, res.Errors)
		}
	}
}

func TestValidateProvider_emptyModels(t *testing.T) {
	raw := map[string]any{
		"spec_version": "1.0.0",
		"provider":     map[string]any{"name": "acme"},
		"models":       []any{},
	}
	res := ValidateProvider(raw)
	if res.IsValid || !containsSubstring(res.Errors, "models: must be non-empty") {
		t.Fatalf("got %v", res.Errors)
	}
}

func TestValidate_unknownSelector(t *testing.T) {
	_, err := Validate(map[string]any{}, "bogus")
	if err == nil {
		t.Fatal("expected an error")
	}
}

func containsSubstring(errs []string, needle string) bool {
	for _, e := range errs {
		if strings.Contains(e, needle) {
			return true
		}
	}
	return false
}
