// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package jsonpath

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_valid(t *testing.T) {
	tests := []string{"$", "$.a", "$.a.b", "$.a[0]", "$.a[0].c", "$[0]", "$.messages[0].content"}
	for _, path := range tests {
		if _, err := Parse(path); err != nil {
			t.Errorf("Parse(%q) = %v, want nil", path, err)
		}
	}
}

func TestParse_invalid(t *testing.T) {
	tests := []string{"", "a.b", "$.", "$..a", "$.a[", "$.a[x]", "$.a[-1]", "$.a*"}
	for _, path := range tests {
		if _, err := Parse(path); !errors.Is(err, ErrPathSyntax) {
			t.Errorf("Parse(%q) = %v, want ErrPathSyntax", path, err)
		}
	}
}

func TestGet(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{
			"b": []any{1.0, 2.0, map[string]any{"c": "hi"}},
		},
	}
	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"$.a.b[2].c", "hi", true},
		{"$.a.b[0]", 1.0, true},
		{"$.a.b[9]", nil, false},
		{"$.missing", nil, false},
		{"$.a.b[2].missing", nil, false},
	}
	for _, tt := range tests {
		got, ok, err := Get(root, tt.path)
		if err != nil {
			t.Fatalf("Get(%q): %v", tt.path, err)
		}
		if ok != tt.ok || !cmp.Equal(got, tt.want) {
			t.Errorf("Get(%q) = (%v, %v), want (%v, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSet_createsIntermediates(t *testing.T) {
	got, err := Set(nil, "$.a.b[1].c", "hi")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"a": map[string]any{
			"b": []any{nil, map[string]any{"c": "hi"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestSet_overwritesScalar(t *testing.T) {
	root := map[string]any{"a": "old"}
	got, err := Set(root, "$.a", "new")
	if err != nil {
		t.Fatal(err)
	}
	if got.(map[string]any)["a"] != "new" {
		t.Fatalf("got %v", got)
	}
}

func TestSet_typeConflict(t *testing.T) {
	root := map[string]any{"a": []any{1.0}}
	if _, err := Set(root, "$.a.b", "x"); !errors.Is(err, ErrTypeConflict) {
		t.Fatalf("got %v, want ErrTypeConflict", err)
	}
	root2 := map[string]any{"a": "scalar"}
	if _, err := Set(root2, "$.a[0]", "x"); !errors.Is(err, ErrTypeConflict) {
		t.Fatalf("got %v, want ErrTypeConflict", err)
	}
}

func TestSet_rootReplace(t *testing.T) {
	got, err := Set(map[string]any{"a": 1.0}, "$", "replaced")
	if err != nil {
		t.Fatal(err)
	}
	if got != "replaced" {
		t.Fatalf("got %v", got)
	}
}

func TestDelete(t *testing.T) {
	root := map[string]any{
		"a": map[string]any{
			"b": []any{1.0, 2.0},
			"c": "hi",
		},
	}
	if err := Delete(root, "$.a.c"); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"a": map[string]any{
			"b": []any{1.0, 2.0},
		},
	}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDelete_absentIsNoop(t *testing.T) {
	root := map[string]any{"a": 1.0}
	if err := Delete(root, "$.missing.deeper"); err != nil {
		t.Fatal(err)
	}
	if err := Delete(root, "$.a.b"); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"a": 1.0}
	if diff := cmp.Diff(want, root); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDelete_invalidPath(t *testing.T) {
	if err := Delete(map[string]any{}, "$."); !errors.Is(err, ErrPathSyntax) {
		t.Fatalf("got %v, want ErrPathSyntax", err)
	}
}
