// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package specfile loads a ProviderSpec from a YAML or JSON file on disk.
// Reading declarative provider files isn't the engine's job (§1); this is a
// thin convenience so a caller doesn't have to decide between json.Unmarshal
// and yaml.Unmarshal by hand.
package specfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/specado/specado/spec"
)

// LoadProvider reads path and decodes it into a ProviderSpec. The format is
// chosen from the file extension: ".yaml" and ".yml" decode as YAML,
// everything else as JSON.
func LoadProvider(path string) (*spec.ProviderSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("specfile: %w", err)
	}
	return ParseProvider(data, formatOf(path))
}

// ParseProvider decodes data as a ProviderSpec. format is "yaml" or "json";
// any other value is treated as JSON.
func ParseProvider(data []byte, format string) (*spec.ProviderSpec, error) {
	var p spec.ProviderSpec
	if err := decode(data, format, &p); err != nil {
		return nil, fmt.Errorf("specfile: %w", err)
	}
	return &p, nil
}

// LoadPrompt reads path and decodes it into a PromptSpec, mirroring
// LoadProvider.
func LoadPrompt(path string) (*spec.PromptSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("specfile: %w", err)
	}
	return ParsePrompt(data, formatOf(path))
}

// ParsePrompt decodes data as a PromptSpec.
func ParsePrompt(data []byte, format string) (*spec.PromptSpec, error) {
	var p spec.PromptSpec
	if err := decode(data, format, &p); err != nil {
		return nil, fmt.Errorf("specfile: %w", err)
	}
	return &p, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

func decode(data []byte, format string, out any) error {
	if format != "yaml" {
		return json.Unmarshal(data, out)
	}
	// yaml.v3 resolves mapping keys to map[string]any directly, so the
	// generic tree it produces round-trips through encoding/json without a
	// map[any]any conversion step the older yaml.v2 needed.
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return err
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return err
	}
	return json.Unmarshal(asJSON, out)
}
