// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package spec

import (
	"fmt"
	"strings"
)

// ErrorKind is a stable symbol naming one of the engine's fatal error
// conditions (§7). Unlike lossiness codes, an ErrorKind always aborts the
// translation in progress and discards the partial request.
type ErrorKind string

// Known error kinds.
const (
	ErrPromptInvalid   ErrorKind = "E_PROMPT_INVALID"
	ErrProviderInvalid ErrorKind = "E_PROVIDER_INVALID"
	ErrModelNotFound   ErrorKind = "E_MODEL_NOT_FOUND"
	ErrPathSyntax      ErrorKind = "E_PATH_SYNTAX"
	ErrTypeConflict    ErrorKind = "E_TYPE_CONFLICT"
	ErrSizeLimit       ErrorKind = "E_SIZE_LIMIT"
	ErrStrictLossiness ErrorKind = "E_STRICT_LOSSINESS"
	ErrSchemaSelector  ErrorKind = "E_SCHEMA_SELECTOR"
	ErrInvalidMode     ErrorKind = "E_INVALID_MODE"
	ErrTimeout         ErrorKind = "E_TIMEOUT"
	ErrTransport       ErrorKind = "E_TRANSPORT"
)

// SpecadoError is implemented by every error kind the engine raises, so
// callers can do a single errors.As(err, &specadoErr) before switching on
// the more specific kind families below.
type SpecadoError interface {
	error
	Kind() ErrorKind
}

// ValidationError wraps E_PROMPT_INVALID and E_PROVIDER_INVALID: the input
// JSON failed schema validation. Errs holds every violation found, not just
// the first (§4.2 never fails fast).
type ValidationError struct {
	kind ErrorKind
	Errs []string
}

// NewValidationError builds a ValidationError for the given kind, which must
// be ErrPromptInvalid or ErrProviderInvalid.
func NewValidationError(kind ErrorKind, errs []string) *ValidationError {
	return &ValidationError{kind: kind, Errs: errs}
}

func (e *ValidationError) Kind() ErrorKind { return e.kind }

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, strings.Join(e.Errs, "; "))
}

// TranslationError wraps the mid-pipeline failures: E_PATH_SYNTAX,
// E_TYPE_CONFLICT, E_SIZE_LIMIT, E_STRICT_LOSSINESS.
type TranslationError struct {
	kind ErrorKind
	Path string
	Msg  string
}

// NewTranslationError builds a TranslationError.
func NewTranslationError(kind ErrorKind, path, msg string) *TranslationError {
	return &TranslationError{kind: kind, Path: path, Msg: msg}
}

func (e *TranslationError) Kind() ErrorKind { return e.kind }

func (e *TranslationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.kind, e.Path, e.Msg)
}

// ProviderError wraps E_MODEL_NOT_FOUND: the requested model id matched
// neither a ModelSpec.ID nor one of its Aliases.
type ProviderError struct {
	kind    ErrorKind
	ModelID string
}

// NewProviderError builds a ProviderError.
func NewProviderError(kind ErrorKind, modelID string) *ProviderError {
	return &ProviderError{kind: kind, ModelID: modelID}
}

func (e *ProviderError) Kind() ErrorKind { return e.kind }

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: model %q not found", e.kind, e.ModelID)
}

// UsageError wraps caller-misuse conditions that are neither validation nor
// translation failures: E_SCHEMA_SELECTOR, E_INVALID_MODE.
type UsageError struct {
	kind ErrorKind
	Msg  string
}

// NewUsageError builds a UsageError.
func NewUsageError(kind ErrorKind, msg string) *UsageError {
	return &UsageError{kind: kind, Msg: msg}
}

func (e *UsageError) Kind() ErrorKind { return e.kind }

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.Msg)
}

// TransportError wraps E_TRANSPORT and E_TIMEOUT: failures reaching or
// hearing back from a provider. These only ever originate outside the
// engine proper, from a collaborator like package transport that performs
// the actual I/O.
type TransportError struct {
	kind ErrorKind
	Err  error
}

// NewTransportError builds a TransportError wrapping the underlying cause.
func NewTransportError(kind ErrorKind, err error) *TransportError {
	return &TransportError{kind: kind, Err: err}
}

func (e *TransportError) Kind() ErrorKind { return e.kind }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind, e.Err)
}

var (
	_ SpecadoError = (*ValidationError)(nil)
	_ SpecadoError = (*TranslationError)(nil)
	_ SpecadoError = (*ProviderError)(nil)
	_ SpecadoError = (*UsageError)(nil)
	_ SpecadoError = (*TransportError)(nil)
)
