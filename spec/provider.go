// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spec

import (
	"errors"
	"fmt"
)

// ProviderSpec declaratively describes one provider and the models it
// serves: endpoints, supported parameters, path mappings, constraints, and
// response normalization rules. It is interpreted at runtime by the
// translation engine; no provider gets special-cased Go code.
type ProviderSpec struct {
	SpecVersion string       `json:"spec_version"`
	Provider    ProviderInfo `json:"provider"`
	Models      []ModelSpec  `json:"models"`
}

// FindModel resolves a model id against each ModelSpec's ID, then its
// Aliases, in declaration order. The first match wins.
func (p *ProviderSpec) FindModel(modelID string) (*ModelSpec, bool) {
	for i := range p.Models {
		if p.Models[i].ID == modelID {
			return &p.Models[i], true
		}
	}
	for i := range p.Models {
		for _, alias := range p.Models[i].Aliases {
			if alias == modelID {
				return &p.Models[i], true
			}
		}
	}
	return nil, false
}

// Validate checks the struct-level invariants of a ProviderSpec.
func (p *ProviderSpec) Validate() error {
	var errs []error
	if p.SpecVersion == "" {
		errs = append(errs, errors.New("field spec_version: must be non-empty"))
	}
	if p.Provider.Name == "" {
		errs = append(errs, errors.New("field provider.name: must be non-empty"))
	}
	if len(p.Models) == 0 {
		errs = append(errs, errors.New("field models: must be non-empty"))
	}
	seen := make(map[string]bool, len(p.Models))
	for i := range p.Models {
		if err := p.Models[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("model %d (%s): %w", i, p.Models[i].ID, err))
		}
		if seen[p.Models[i].ID] {
			errs = append(errs, fmt.Errorf("model %d: id %q is not unique", i, p.Models[i].ID))
		}
		seen[p.Models[i].ID] = true
	}
	return errors.Join(errs...)
}

// ProviderInfo carries the connection details for a provider.
type ProviderInfo struct {
	Name    string            `json:"name"`
	BaseURL string            `json:"base_url"`
	Headers map[string]string `json:"headers,omitempty"`
	Auth    *AuthConfig       `json:"auth,omitempty"`
}

// AuthConfig describes how to mint the authentication header for a request.
// ValueTemplate may reference an environment variable with "${VAR}"
// placeholder syntax; substitution is the transport collaborator's job, not
// the engine's (§6).
type AuthConfig struct {
	Header        string `json:"header"`
	ValueTemplate string `json:"value_template"`
}

// EndpointConfig is one HTTP endpoint a model can be reached at.
type EndpointConfig struct {
	Method   string            `json:"method"`
	Path     string            `json:"path"`
	Protocol string            `json:"protocol,omitempty"`
	Query    map[string]string `json:"query,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// Endpoints groups the sync and streaming endpoints for chat completion.
type Endpoints struct {
	ChatCompletion          EndpointConfig `json:"chat_completion"`
	StreamingChatCompletion EndpointConfig `json:"streaming_chat_completion"`
}

// InputModes declares which input shapes a model accepts.
type InputModes struct {
	Messages   bool `json:"messages"`
	SingleText bool `json:"single_text"`
	Images     bool `json:"images"`
}

// ToolingConfig declares a model's tool-calling capabilities.
type ToolingConfig struct {
	ToolsSupported              bool           `json:"tools_supported"`
	ParallelToolCallsDefault    bool           `json:"parallel_tool_calls_default"`
	CanDisableParallelToolCalls bool           `json:"can_disable_parallel_tool_calls"`
	DisableSwitch               map[string]any `json:"disable_switch,omitempty"`
}

// JSONOutputConfig declares how a model supports structured JSON output.
type JSONOutputConfig struct {
	NativeParam bool   `json:"native_param"`
	Strategy    string `json:"strategy,omitempty"`
}

// ParamSchema bounds one uniform parameter's legal values for a model.
type ParamSchema struct {
	Minimum *float64 `json:"minimum,omitempty"`
	Maximum *float64 `json:"maximum,omitempty"`
	Type    string   `json:"type,omitempty"`
}

// Clamp returns v adjusted to fit [Minimum, Maximum] and whether it changed.
func (p ParamSchema) Clamp(v float64) (float64, bool) {
	out := v
	if p.Minimum != nil && out < *p.Minimum {
		out = *p.Minimum
	}
	if p.Maximum != nil && out > *p.Maximum {
		out = *p.Maximum
	}
	return out, out != v
}

// CapabilitiesConfig gates the advanced-parameter handler (§4.5).
type CapabilitiesConfig struct {
	ThinkingMode          bool `json:"thinking_mode"`
	AdaptiveReasoning     bool `json:"adaptive_reasoning"`
	DeterministicSampling bool `json:"deterministic_sampling"`
	AdvancedCoding        bool `json:"advanced_coding"`
	BalancedPerformance   bool `json:"balanced_performance"`
	AgenticTasks          bool `json:"agentic_tasks"`
}

// ConstraintLimits are the byte ceilings enforced by the constraint engine.
type ConstraintLimits struct {
	MaxToolSchemaBytes   int64 `json:"max_tool_schema_bytes,omitempty"`
	MaxSystemPromptBytes int64 `json:"max_system_prompt_bytes,omitempty"`
}

// Constraints are the model-level rules the constraint engine enforces.
type Constraints struct {
	SystemPromptLocation        SystemPromptLocation `json:"system_prompt_location"`
	ForbidUnknownTopLevelFields bool                  `json:"forbid_unknown_top_level_fields"`
	MutuallyExclusive           [][]string            `json:"mutually_exclusive,omitempty"`
	ResolutionPreferences       []string              `json:"resolution_preferences,omitempty"`
	Limits                      ConstraintLimits      `json:"limits"`
}

// Mappings describe how uniform fields project onto a provider request.
type Mappings struct {
	// Paths maps a source JSONPath (into the PromptSpec) to a destination
	// JSONPath (into the draft provider request).
	Paths map[string]string `json:"paths,omitempty"`
	// Flags are literal (destPath, value) insertions applied after Paths,
	// used for fixed-protocol parameters that have no uniform source.
	Flags map[string]any `json:"flags,omitempty"`
}

// EventRoute matches one kind of streaming event to a uniform emission.
type EventRoute struct {
	When     string `json:"when"`
	Emit     string `json:"emit"`
	TextPath string `json:"text_path,omitempty"`
	NamePath string `json:"name_path,omitempty"`
	ArgsPath string `json:"args_path,omitempty"`
}

// EventSelector picks the EventRoute for a raw stream event.
type EventSelector struct {
	TypePath string       `json:"type_path"`
	Routes   []EventRoute `json:"routes"`
}

// StreamNormalization describes how to project streaming events.
type StreamNormalization struct {
	Protocol      string        `json:"protocol"`
	EventSelector EventSelector `json:"event_selector"`
}

// SyncNormalization describes how to project a synchronous response.
type SyncNormalization struct {
	ContentPath      string            `json:"content_path"`
	FinishReasonPath string            `json:"finish_reason_path,omitempty"`
	FinishReasonMap  map[string]string `json:"finish_reason_map,omitempty"`
	ToolCallsPath    string            `json:"tool_calls_path,omitempty"`
	ToolNamePath     string            `json:"tool_name_path,omitempty"`
	ToolArgsPath     string            `json:"tool_args_path,omitempty"`
	ToolIDPath       string            `json:"tool_id_path,omitempty"`
}

// ResponseNormalization groups the sync and stream normalization rules.
type ResponseNormalization struct {
	Sync   SyncNormalization   `json:"sync"`
	Stream StreamNormalization `json:"stream"`
}

// ModelSpec is the declarative description of a single model served by a
// provider.
type ModelSpec struct {
	ID                    string                 `json:"id"`
	Aliases               []string               `json:"aliases,omitempty"`
	Family                string                 `json:"family"`
	Endpoints             Endpoints              `json:"endpoints"`
	InputModes            InputModes             `json:"input_modes"`
	Tooling               ToolingConfig          `json:"tooling"`
	JSONOutput            JSONOutputConfig       `json:"json_output"`
	Parameters            map[string]ParamSchema `json:"parameters"`
	Capabilities          CapabilitiesConfig     `json:"capabilities"`
	Constraints           Constraints            `json:"constraints"`
	Mappings              Mappings               `json:"mappings"`
	ResponseNormalization ResponseNormalization  `json:"response_normalization"`
}

// Validate checks the struct-level invariants required by §4.2's "ten
// required sub-objects" rule. Individual sub-objects are not deeply
// validated here: validate.ValidateProvider does that, field by field, against the
// raw JSON so every violation surfaces in one pass.
func (m *ModelSpec) Validate() error {
	if m.ID == "" {
		return errors.New("field id: must be non-empty")
	}
	return nil
}

var (
	_ Validatable = (*ProviderSpec)(nil)
	_ Validatable = (*ModelSpec)(nil)
)
