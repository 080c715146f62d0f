// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package jsonpath resolves the small subset of JSONPath that the engine's
// declarative specs actually use: the root "$", dotted field access, and
// bracketed integer indices, chained in any order.
//
// There is no wildcard, filter, or recursive-descent support, by design:
// the declarative provider specs this engine interprets never need more,
// and a bigger grammar would only grow the surface that has to be proven
// correct.
package jsonpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPathSyntax is returned by Parse when path does not conform to the
// supported grammar. It maps to the engine's E_PATH_SYNTAX error kind.
var ErrPathSyntax = errors.New("jsonpath: invalid path syntax")

// ErrTypeConflict is returned by Set when writing to path would require
// overwriting a value of an incompatible type (for example, writing a field
// into something that is currently an array).
var ErrTypeConflict = errors.New("jsonpath: type conflict")

// segment is one step of a parsed path: either a field name or an array
// index.
type segment struct {
	field   string
	index   int
	isIndex bool
}

// Path is a parsed JSONPath, ready to be applied to any number of trees.
type Path struct {
	segments []segment
	raw      string
}

// String returns the original path text.
func (p Path) String() string { return p.raw }

// RootField returns the "$.field" prefix naming the first segment of p, or
// "$" if p has no segments or its first segment is an index. Used to group
// paths by which top-level PromptSpec field they descend from.
func (p Path) RootField() string {
	if len(p.segments) == 0 || p.segments[0].isIndex {
		return "$"
	}
	return "$." + p.segments[0].field
}

// Parse compiles path into a Path. It accepts "$", "$.a.b", "$.a[0].b", and
// rejects anything using wildcards, filters, or recursive descent.
func Parse(path string) (Path, error) {
	if !strings.HasPrefix(path, "$") {
		return Path{}, fmt.Errorf("%w: %q: must start with \"$\"", ErrPathSyntax, path)
	}
	rest := path[1:]
	var segs []segment
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
			end := 0
			for end < len(rest) && rest[end] != '.' && rest[end] != '[' {
				end++
			}
			name := rest[:end]
			if name == "" {
				return Path{}, fmt.Errorf("%w: %q: empty field name", ErrPathSyntax, path)
			}
			if !isValidFieldName(name) {
				return Path{}, fmt.Errorf("%w: %q: invalid field name %q", ErrPathSyntax, path, name)
			}
			segs = append(segs, segment{field: name})
			rest = rest[end:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return Path{}, fmt.Errorf("%w: %q: unterminated \"[\"", ErrPathSyntax, path)
			}
			idxStr := rest[1:end]
			idx, err := strconv.Atoi(idxStr)
			if err != nil || idx < 0 {
				return Path{}, fmt.Errorf("%w: %q: invalid index %q", ErrPathSyntax, path, idxStr)
			}
			segs = append(segs, segment{index: idx, isIndex: true})
			rest = rest[end+1:]
		default:
			return Path{}, fmt.Errorf("%w: %q: unexpected character %q", ErrPathSyntax, path, rest[0])
		}
	}
	return Path{segments: segs, raw: path}, nil
}

// MustParse is like Parse but panics on error. Intended for package-level
// constants derived from literal paths known to be valid at compile time.
func MustParse(path string) Path {
	p, err := Parse(path)
	if err != nil {
		panic(err)
	}
	return p
}

func isValidFieldName(name string) bool {
	for _, r := range name {
		if r == '.' || r == '[' || r == ']' || r == '*' {
			return false
		}
	}
	return true
}

// Get reads the value addressed by path out of root. ok is false if any
// segment of the path does not resolve (an absent field, an out-of-range
// index, or traversing into a non-container) — this is not an error, it is
// the "absent" indicator described in §4.1.
func Get(root any, path string) (any, bool, error) {
	p, err := Parse(path)
	if err != nil {
		return nil, false, err
	}
	v, ok := GetPath(root, p)
	return v, ok, nil
}

// GetPath is Get for an already-parsed Path; use it to avoid re-parsing the
// same literal path in a hot loop.
func GetPath(root any, p Path) (any, bool) {
	cur := root
	for _, seg := range p.segments {
		if seg.isIndex {
			arr, ok := cur.([]any)
			if !ok || seg.index < 0 || seg.index >= len(arr) {
				return nil, false
			}
			cur = arr[seg.index]
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, present := obj[seg.field]
		if !present {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Set writes value at path into root, creating intermediate objects and
// arrays as needed, and returns the (possibly new) root. root may be nil, in
// which case a fresh tree is created.
//
// Set refuses to overwrite a container of the wrong kind: writing a field
// into a value that is currently a non-object, or an index into a value
// that is currently a non-array, returns ErrTypeConflict instead of
// clobbering data silently.
func Set(root any, path string, value any) (any, error) {
	p, err := Parse(path)
	if err != nil {
		return root, err
	}
	return SetPath(root, p, value)
}

// SetPath is Set for an already-parsed Path.
func SetPath(root any, p Path, value any) (any, error) {
	if len(p.segments) == 0 {
		return value, nil
	}
	return setRec(root, p.segments, value)
}

// Delete removes the field or index addressed by path from root, if the
// path fully resolves. Deleting through a path that does not resolve (an
// absent field, an out-of-range index, or traversing into a non-container)
// is a silent no-op, matching Get's "absent is not an error" semantics.
// Deleting "$" itself is also a no-op: there is no container to remove the
// root from.
func Delete(root any, path string) error {
	p, err := Parse(path)
	if err != nil {
		return err
	}
	DeletePath(root, p)
	return nil
}

// DeletePath is Delete for an already-parsed Path.
func DeletePath(root any, p Path) {
	if len(p.segments) == 0 {
		return
	}
	deleteRec(root, p.segments)
}

func deleteRec(cur any, segs []segment) {
	seg := segs[0]
	rest := segs[1:]
	if seg.isIndex {
		arr, ok := cur.([]any)
		if !ok || seg.index < 0 || seg.index >= len(arr) {
			return
		}
		if len(rest) == 0 {
			// The slice header is held by the caller, so the element can only be
			// cleared in place, not removed; callers that need a shorter array
			// must reassign it themselves from the Set return value.
			arr[seg.index] = nil
			return
		}
		deleteRec(arr[seg.index], rest)
		return
	}
	obj, ok := cur.(map[string]any)
	if !ok {
		return
	}
	if len(rest) == 0 {
		delete(obj, seg.field)
		return
	}
	child, present := obj[seg.field]
	if !present {
		return
	}
	deleteRec(child, rest)
}

func setRec(cur any, segs []segment, value any) (any, error) {
	seg := segs[0]
	rest := segs[1:]
	if seg.isIndex {
		var arr []any
		switch v := cur.(type) {
		case nil:
			arr = nil
		case []any:
			arr = v
		default:
			return nil, fmt.Errorf("%w: cannot index into %T", ErrTypeConflict, cur)
		}
		for len(arr) <= seg.index {
			arr = append(arr, nil)
		}
		if len(rest) == 0 {
			arr[seg.index] = value
			return arr, nil
		}
		child, err := setRec(arr[seg.index], rest, value)
		if err != nil {
			return nil, err
		}
		arr[seg.index] = child
		return arr, nil
	}

	var obj map[string]any
	switch v := cur.(type) {
	case nil:
		obj = map[string]any{}
	case map[string]any:
		obj = v
	default:
		return nil, fmt.Errorf("%w: cannot write field %q into %T", ErrTypeConflict, seg.field, cur)
	}
	if len(rest) == 0 {
		obj[seg.field] = value
		return obj, nil
	}
	child, err := setRec(obj[seg.field], rest, value)
	if err != nil {
		return nil, err
	}
	obj[seg.field] = child
	return obj, nil
}
