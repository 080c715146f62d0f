// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sse provides Server-Sent Events (SSE) processing utilities.
package sse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
)

// Process reads Server-Sent Events from body and decodes each "data: " line
// as a generic JSON object, handed to the response normalizer one event at a
// time. Unlike a typed provider client, the translation engine has no Go
// struct to decode into per provider: providers describe their own event
// shape declaratively through ResponseNormalization.Stream, so the raw
// map[string]any is what callers need.
//
// https://developer.mozilla.org/en-US/docs/Web/API/Server-sent%5Fevents/Using%5Fserver-sent%5Fevents
func Process(body io.Reader) (iter.Seq[map[string]any], func() error) {
	var finalErr error
	it := func(yield func(map[string]any) bool) {
		r := bufio.NewReader(body)
		for {
			line, err := r.ReadBytes('\n')
			if line = bytes.TrimSpace(line); errors.Is(err, io.EOF) {
				if len(line) == 0 {
					return
				}
			} else if err != nil {
				finalErr = fmt.Errorf("sse: failed to get server response: %w", err)
				return
			}
			if len(line) == 0 {
				continue
			}

			switch {
			case bytes.HasPrefix(line, dataPrefix):
				suffix := line[len(dataPrefix):]
				if bytes.Equal(suffix, done) {
					return
				}
				var msg map[string]any
				if err := json.Unmarshal(suffix, &msg); err != nil {
					finalErr = fmt.Errorf("sse: failed to decode server response %q: %w", string(line), err)
					return
				}
				if !yield(msg) {
					return
				}
			case bytes.Equal(line, keepAlive):
				// Ignore keep-alive messages. Very few send this.
			case bytes.Equal(line, keepAliveHuggingface):
				// Huggingface...
			case bytes.HasPrefix(line, eventPrefix):
				// Ignore event headers. Very few send this.
			default:
				finalErr = fmt.Errorf("sse: unexpected line. expected \"data: \", got %q", line)
				return
			}
		}
	}
	return it, func() error {
		return finalErr
	}
}

var (
	dataPrefix           = []byte("data: ")
	eventPrefix          = []byte("event:")
	done                 = []byte("[DONE]")
	keepAlive            = []byte(": keep-alive")
	keepAliveHuggingface = []byte(":")
)
