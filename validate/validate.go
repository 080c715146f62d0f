// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package validate implements the schema validator of §4.2: it checks an
// arbitrary JSON value, already decoded to Go's generic any/map[string]any
// representation, against either the PromptSpec or the ProviderSpec shape,
// and reports every violation it finds in one pass instead of failing on
// the first.
package validate

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/specado/specado/spec"
)

// Selector picks which shape to validate against.
type Selector string

// Known selectors.
const (
	SelectorPrompt   Selector = "prompt"
	SelectorProvider Selector = "provider"
)

// Validate dispatches to ValidatePrompt or ValidateProvider. It is the only
// function in this package that can fail: an unknown selector is a caller
// bug, not a data problem, and is reported as E_SCHEMA_SELECTOR.
func Validate(raw any, selector Selector) (spec.ValidationResult, error) {
	switch selector {
	case SelectorPrompt:
		return ValidatePrompt(raw), nil
	case SelectorProvider:
		return ValidateProvider(raw), nil
	default:
		return spec.ValidationResult{}, spec.NewUsageError(spec.ErrSchemaSelector, fmt.Sprintf("unknown selector %q", selector))
	}
}

// ValidatePrompt validates raw against the PromptSpec shape. It never
// raises; every violation is appended to the result's Errors.
func ValidatePrompt(raw any) spec.ValidationResult {
	var errs []string
	obj, ok := asObject(raw)
	if !ok {
		return result(append(errs, "root: must be a JSON object"))
	}

	modelClass, present := obj["model_class"]
	if !present {
		errs = append(errs, "model_class: required")
	} else if s, ok := modelClass.(string); !ok {
		errs = append(errs, "model_class: must be a string")
	} else if s == "" {
		errs = append(errs, "model_class: must be non-empty")
	}

	msgsRaw, present := obj["messages"]
	if !present {
		errs = append(errs, "messages: required")
	} else {
		errs = append(errs, validateMessages(msgsRaw)...)
	}

	if toolsRaw, present := obj["tools"]; present && toolsRaw != nil {
		errs = append(errs, validateTools(toolsRaw)...)
	}

	if samplingRaw, present := obj["sampling"]; present && samplingRaw != nil {
		errs = append(errs, validateSampling(samplingRaw)...)
	}

	if limitsRaw, present := obj["limits"]; present && limitsRaw != nil {
		errs = append(errs, validateLimits(limitsRaw)...)
	}

	strictModeRaw, present := obj["strict_mode"]
	if !present {
		errs = append(errs, "strict_mode: required")
	} else if s, ok := strictModeRaw.(string); !ok {
		errs = append(errs, "strict_mode: must be a string")
	} else if spec.StrictMode(s).Validate() != nil {
		errs = append(errs, fmt.Sprintf("strict_mode: unknown value %q", s))
	}

	return result(errs)
}

func validateMessages(raw any) []string {
	var errs []string
	arr, ok := raw.([]any)
	if !ok {
		return []string{"messages: must be an array"}
	}
	if len(arr) == 0 {
		errs = append(errs, "messages: must be non-empty")
	}
	for i, m := range arr {
		obj, ok := asObject(m)
		if !ok {
			errs = append(errs, fmt.Sprintf("messages[%d]: must be a JSON object", i))
			continue
		}
		roleRaw, present := obj["role"]
		if !present {
			errs = append(errs, fmt.Sprintf("messages[%d].role: required", i))
		} else if s, ok := roleRaw.(string); !ok {
			errs = append(errs, fmt.Sprintf("messages[%d].role: must be a string", i))
		} else if spec.Role(s).Validate() != nil {
			errs = append(errs, fmt.Sprintf("messages[%d].role: unknown role %q", i, s))
		}
		contentRaw, present := obj["content"]
		if !present {
			errs = append(errs, fmt.Sprintf("messages[%d].content: required", i))
		} else if s, ok := contentRaw.(string); !ok {
			errs = append(errs, fmt.Sprintf("messages[%d].content: must be a string", i))
		} else if s == "" {
			errs = append(errs, fmt.Sprintf("messages[%d].content: must be non-empty", i))
		}
	}
	return errs
}

func validateTools(raw any) []string {
	var errs []string
	arr, ok := raw.([]any)
	if !ok {
		return []string{"tools: must be an array"}
	}
	seen := map[string]bool{}
	for i, t := range arr {
		obj, ok := asObject(t)
		if !ok {
			errs = append(errs, fmt.Sprintf("tools[%d]: must be a JSON object", i))
			continue
		}
		name, _ := obj["name"].(string)
		if name == "" {
			errs = append(errs, fmt.Sprintf("tools[%d].name: must be non-empty", i))
		} else if seen[name] {
			errs = append(errs, fmt.Sprintf("tools[%d].name: %q is not unique", i, name))
		} else {
			seen[name] = true
		}
		schemaRaw, present := obj["json_schema"]
		if !present {
			errs = append(errs, fmt.Sprintf("tools[%d].json_schema: required", i))
			continue
		}
		if err := validateJSONSchemaDocument(schemaRaw); err != nil {
			errs = append(errs, fmt.Sprintf("tools[%d].json_schema: %v", i, err))
		}
	}
	return errs
}

// validateJSONSchemaDocument confirms raw is at least syntactically a JSON
// Schema document by round-tripping it through invopop/jsonschema's Schema
// type, which carries the full set of JSON Schema keywords as struct
// fields. This catches malformed schemas (wrong keyword types, for example
// "required" spelled as an object instead of an array) without the engine
// writing its own JSON Schema meta-schema.
func validateJSONSchemaDocument(raw any) error {
	obj, ok := asObject(raw)
	if !ok {
		return fmt.Errorf("must be a JSON object")
	}
	b, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("not serializable: %w", err)
	}
	var s jsonschema.Schema
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("not a valid JSON Schema document: %w", err)
	}
	return nil
}

func validateSampling(raw any) []string {
	var errs []string
	obj, ok := asObject(raw)
	if !ok {
		return []string{"sampling: must be a JSON object"}
	}
	if v, present := numField(obj, "temperature"); present {
		if v < 0 || v > 2 {
			errs = append(errs, fmt.Sprintf("sampling.temperature: %v is not in [0, 2]", v))
		}
	} else if _, present := obj["temperature"]; present {
		errs = append(errs, "sampling.temperature: must be a number")
	}
	if v, present := numField(obj, "top_p"); present {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Sprintf("sampling.top_p: %v is not in [0, 1]", v))
		}
	} else if _, present := obj["top_p"]; present {
		errs = append(errs, "sampling.top_p: must be a number")
	}
	return errs
}

func validateLimits(raw any) []string {
	var errs []string
	obj, ok := asObject(raw)
	if !ok {
		return []string{"limits: must be a JSON object"}
	}
	if v, present := numField(obj, "max_output_tokens"); present && v <= 0 {
		errs = append(errs, fmt.Sprintf("limits.max_output_tokens: %v must be > 0", v))
	}
	return errs
}

// ValidateProvider validates raw against the ProviderSpec shape. It never
// raises; every violation is appended to the result's Errors.
func ValidateProvider(raw any) spec.ValidationResult {
	var errs []string
	obj, ok := asObject(raw)
	if !ok {
		return result(append(errs, "root: must be a JSON object"))
	}

	if v, present := obj["spec_version"]; !present {
		errs = append(errs, "spec_version: required")
	} else if s, ok := v.(string); !ok || s == "" {
		errs = append(errs, "spec_version: must be a non-empty string")
	}

	if v, present := obj["provider"]; !present {
		errs = append(errs, "provider: required")
	} else if pobj, ok := asObject(v); !ok {
		errs = append(errs, "provider: must be a JSON object")
	} else if name, _ := pobj["name"].(string); name == "" {
		errs = append(errs, "provider.name: must be non-empty")
	}

	modelsRaw, present := obj["models"]
	if !present {
		errs = append(errs, "models: required")
	} else {
		arr, ok := modelsRaw.([]any)
		if !ok {
			errs = append(errs, "models: must be an array")
		} else if len(arr) == 0 {
			errs = append(errs, "models: must be non-empty")
		} else {
			for i, m := range arr {
				errs = append(errs, validateModel(i, m)...)
			}
		}
	}

	return result(errs)
}

// requiredModelSubObjects are the ten sub-objects §3/§4.2 require every
// ModelSpec to carry (aliases and capabilities are optional on ModelSpec and
// are deliberately excluded).
var requiredModelSubObjects = []string{
	"id", "family", "endpoints", "input_modes", "tooling",
	"json_output", "parameters", "constraints", "mappings",
	"response_normalization",
}

func validateModel(i int, raw any) []string {
	var errs []string
	obj, ok := asObject(raw)
	if !ok {
		return []string{fmt.Sprintf("models[%d]: must be a JSON object", i)}
	}
	for _, key := range requiredModelSubObjects {
		if _, present := obj[key]; !present {
			errs = append(errs, fmt.Sprintf("models[%d].%s: required", i, key))
		}
	}
	if id, ok := obj["id"].(string); ok && id == "" {
		errs = append(errs, fmt.Sprintf("models[%d].id: must be non-empty", i))
	}
	return errs
}

func result(errs []string) spec.ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	return spec.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

func asObject(v any) (map[string]any, bool) {
	obj, ok := v.(map[string]any)
	return obj, ok
}

// numField reads a numeric field, accepting both float64 (the
// encoding/json default) and json.Number.
func numField(obj map[string]any, key string) (float64, bool) {
	v, present := obj[key]
	if !present {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
