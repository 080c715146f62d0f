// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package specado translates a provider-agnostic PromptSpec into a
// provider-specific HTTP request body, interpreting a declarative
// ProviderSpec at runtime instead of hand-writing a client per provider.
//
// The engine is a pure function: Translate takes a PromptSpec and a
// ProviderSpec and returns a TranslationResult or one of the error kinds
// documented on spec.ErrorKind. It performs no I/O; sending the resulting
// request and feeding the response back through NormalizeSyncResponse or
// NormalizeStreamEvent is the caller's job (see package transport for a
// reference implementation).
package specado
