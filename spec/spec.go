// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package spec holds the provider-agnostic and provider-specific data model
// that the translation engine operates on: PromptSpec, ProviderSpec, and the
// values produced at the end of a translation.
//
// Types in this package are plain data. None of them perform I/O; Validate
// methods only check structural invariants that are cheap to enforce at
// construction time. The authoritative, every-violation-at-once validation
// pass lives in package validate and operates on the JSON form of these
// types, not on the Go structs directly.
package spec

import (
	"errors"
	"fmt"
)

// Validatable is an object that can check its own structural invariants.
type Validatable interface {
	Validate() error
}

// Role is one of the roles a Message can carry.
type Role string

// Known roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Validate reports whether the role is one of the known roles.
func (r Role) Validate() error {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return nil
	case "":
		return errors.New("a role is required")
	default:
		return fmt.Errorf("role %q is not supported", r)
	}
}

// StrictMode governs whether lossiness of severity warn or higher fails a
// translation (error) or is merely reported (warn).
type StrictMode string

// Known strict modes.
const (
	StrictModeWarn  StrictMode = "warn"
	StrictModeError StrictMode = "error"
)

// Validate reports whether the strict mode is known.
func (s StrictMode) Validate() error {
	switch s {
	case StrictModeWarn, StrictModeError:
		return nil
	case "":
		return errors.New("a strict_mode is required")
	default:
		return fmt.Errorf("strict_mode %q is not supported", s)
	}
}

// TranslationMode is the mode passed to the orchestrator, overriding
// PromptSpec.StrictMode when provided.
type TranslationMode string

// Known translation modes.
const (
	TranslationModeStandard TranslationMode = "standard"
	TranslationModeStrict   TranslationMode = "strict"
)

// Validate reports whether the translation mode is known.
func (m TranslationMode) Validate() error {
	switch m {
	case TranslationModeStandard, TranslationModeStrict, "":
		return nil
	default:
		return fmt.Errorf("mode %q is not supported", m)
	}
}

// StrictMode converts a TranslationMode to the StrictMode it implies.
func (m TranslationMode) StrictMode() StrictMode {
	if m == TranslationModeStrict {
		return StrictModeError
	}
	return StrictModeWarn
}

// FinishReason is the uniform reason a generation stopped.
type FinishReason string

// Known finish reasons.
const (
	FinishStop            FinishReason = "stop"
	FinishLength          FinishReason = "length"
	FinishToolCall        FinishReason = "tool_call"
	FinishEndConversation FinishReason = "end_conversation"
	FinishOther           FinishReason = "other"
)

// ReasoningEffort gates how hard a model should think before answering.
type ReasoningEffort string

// Known reasoning efforts.
const (
	ReasoningEffortLow    ReasoningEffort = "low"
	ReasoningEffortMedium ReasoningEffort = "medium"
	ReasoningEffortHigh   ReasoningEffort = "high"
)

// Validate reports whether the reasoning effort is known. An empty value is
// valid: it means the field is unset.
func (r ReasoningEffort) Validate() error {
	switch r {
	case "", ReasoningEffortLow, ReasoningEffortMedium, ReasoningEffortHigh:
		return nil
	default:
		return fmt.Errorf("reasoning_effort %q is not supported", r)
	}
}

// SystemPromptLocation describes where a model expects the system prompt to
// live. first_message and message_role are treated as aliases: the test
// corpus this engine was built against never discriminates between the two
// (see DESIGN.md, "Open design decisions").
type SystemPromptLocation string

// Known system prompt locations.
const (
	SystemPromptFirst         SystemPromptLocation = "first"
	SystemPromptFirstMessage SystemPromptLocation = "first_message"
	SystemPromptMessageRole  SystemPromptLocation = "message_role"
	SystemPromptSeparateField SystemPromptLocation = "separate_field"
)

// Message is one turn in a conversation.
type Message struct {
	Role     Role           `json:"role"`
	Content  string         `json:"content"`
	Name     string         `json:"name,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Validate ensures the message is structurally sound.
func (m *Message) Validate() error {
	if err := m.Role.Validate(); err != nil {
		return fmt.Errorf("field role: %w", err)
	}
	if m.Content == "" {
		return errors.New("field content: must be non-empty")
	}
	return nil
}

// Messages is an ordered sequence of Message.
type Messages []Message

// Validate ensures every message is individually valid and that the
// sequence itself is non-empty.
func (msgs Messages) Validate() error {
	if len(msgs) == 0 {
		return errors.New("field messages: must be non-empty")
	}
	var errs []error
	for i := range msgs {
		if err := msgs[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("message %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Tool describes a function the model may request to call.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// JSONSchema is a raw JSON Schema document describing the tool's
	// arguments. It is kept as a generic tree, not a Go struct, because it is
	// author-supplied and arbitrary.
	JSONSchema map[string]any `json:"json_schema"`
}

// Validate ensures the tool definition is structurally sound. It does not
// check that JSONSchema is a syntactically valid JSON Schema document; that
// check belongs to package validate, which has access to the full
// PromptSpec JSON tree and a reason to report every violation at once.
func (t *Tool) Validate() error {
	if t.Name == "" {
		return errors.New("field name: must be non-empty")
	}
	if t.JSONSchema == nil {
		return errors.New("field json_schema: required")
	}
	return nil
}

// Tools is a set of Tool, unique by Name.
type Tools []Tool

// Validate ensures every tool is valid and names are unique.
func (ts Tools) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(ts))
	for i := range ts {
		if err := ts[i].Validate(); err != nil {
			errs = append(errs, fmt.Errorf("tool %d: %w", i, err))
			continue
		}
		if seen[ts[i].Name] {
			errs = append(errs, fmt.Errorf("tool %d: name %q is not unique", i, ts[i].Name))
		}
		seen[ts[i].Name] = true
	}
	return errors.Join(errs...)
}

// SamplingParams are the uniform sampling knobs. Pointers distinguish unset
// from zero.
type SamplingParams struct {
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	TopK             *int64   `json:"top_k,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
}

// Validate ensures set fields are within their documented ranges.
func (s *SamplingParams) Validate() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.Temperature != nil && (*s.Temperature < 0 || *s.Temperature > 2) {
		errs = append(errs, fmt.Errorf("field temperature: %v is not in [0, 2]", *s.Temperature))
	}
	if s.TopP != nil && (*s.TopP < 0 || *s.TopP > 1) {
		errs = append(errs, fmt.Errorf("field top_p: %v is not in [0, 1]", *s.TopP))
	}
	if s.TopK != nil && *s.TopK < 0 {
		errs = append(errs, fmt.Errorf("field top_k: %v must be a natural number", *s.TopK))
	}
	return errors.Join(errs...)
}

// Limits bound the tokens a translation may consume or produce.
type Limits struct {
	MaxOutputTokens *int64 `json:"max_output_tokens,omitempty"`
	ReasoningTokens *int64 `json:"reasoning_tokens,omitempty"`
	MaxPromptTokens *int64 `json:"max_prompt_tokens,omitempty"`
}

// Validate ensures set fields are positive.
func (l *Limits) Validate() error {
	if l == nil {
		return nil
	}
	if l.MaxOutputTokens != nil && *l.MaxOutputTokens <= 0 {
		return errors.New("field max_output_tokens: must be > 0")
	}
	return nil
}

// AdvancedParams are capability-gated knobs; see package advanced.
type AdvancedParams struct {
	Thinking          *bool           `json:"thinking,omitempty"`
	MinThinkingTokens *int64          `json:"min_thinking_tokens,omitempty"`
	ReasoningEffort   ReasoningEffort `json:"reasoning_effort,omitempty"`
	Seed              *int64          `json:"seed,omitempty"`
	ReasoningMode     string          `json:"reasoning_mode,omitempty"`
	ThinkingBudget    *int64          `json:"thinking_budget,omitempty"`
	Verbosity         string          `json:"verbosity,omitempty"`
}

// Validate ensures set fields are structurally sound.
func (a *AdvancedParams) Validate() error {
	if a == nil {
		return nil
	}
	if err := a.ReasoningEffort.Validate(); err != nil {
		return fmt.Errorf("field reasoning_effort: %w", err)
	}
	if a.Seed != nil && *a.Seed < 0 {
		return errors.New("field seed: must be non-negative")
	}
	return nil
}

// MediaConfig describes which non-text modalities a PromptSpec carries.
type MediaConfig struct {
	InputImages []map[string]any `json:"input_images,omitempty"`
	InputAudio  map[string]any   `json:"input_audio,omitempty"`
	OutputAudio map[string]any   `json:"output_audio,omitempty"`
}

// PromptSpec is the provider-agnostic description of one LLM request.
type PromptSpec struct {
	ModelClass     string          `json:"model_class"`
	Messages       Messages        `json:"messages"`
	Tools          Tools           `json:"tools,omitempty"`
	ToolChoice     any             `json:"tool_choice,omitempty"`
	ResponseFormat any             `json:"response_format,omitempty"`
	Sampling       *SamplingParams `json:"sampling,omitempty"`
	Limits         *Limits         `json:"limits,omitempty"`
	Advanced       *AdvancedParams `json:"advanced,omitempty"`
	Media          *MediaConfig    `json:"media,omitempty"`
	StrictMode     StrictMode      `json:"strict_mode"`
}

// Validate checks the struct-level invariants of a PromptSpec. It is a
// convenience for Go callers that construct a PromptSpec directly; the
// authoritative multi-error validation used by the orchestrator is
// validate.ValidatePrompt, which operates on the JSON form and therefore also
// catches shapes no Go struct could represent (unknown roles spelled wrong,
// wrong JSON types, and so on).
func (p *PromptSpec) Validate() error {
	var errs []error
	if p.ModelClass == "" {
		errs = append(errs, errors.New("field model_class: must be non-empty"))
	}
	if err := p.Messages.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := p.Tools.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := p.Sampling.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := p.Limits.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := p.Advanced.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := p.StrictMode.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("field strict_mode: %w", err))
	}
	return errors.Join(errs...)
}

var (
	_ Validatable = (*Message)(nil)
	_ Validatable = (*Tool)(nil)
	_ Validatable = (*PromptSpec)(nil)
	_ Validatable = (*SamplingParams)(nil)
	_ Validatable = (*Limits)(nil)
	_ Validatable = (*AdvancedParams)(nil)
)
