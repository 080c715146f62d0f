// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package internal is awesome sauce.
package internal

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// TransportLog is the lightweight provider-call logger: one line per
// request, one when the response headers arrive and one when the response
// body is closed, the body itself streamed through without buffering. It never holds a full body in memory, so it is the cheap
// default for a Client that only wants activity tracing, not payload
// capture — see LogTransport for that.
type TransportLog struct {
	R http.RoundTripper
}

func (t *TransportLog) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()
	start := time.Now()
	ll := slog.Default().With("id", genID())
	ll.InfoContext(ctx, "provider request", "url", r.URL.String(), "method", r.Method, "auth", redactedAuth(r.Header))
	resp, err := t.R.RoundTrip(r)
	if err != nil {
		ll.ErrorContext(ctx, "provider request", "duration", time.Since(start), "err", err)
	} else {
		ce := resp.Header.Get("Content-Encoding")
		cl := resp.Header.Get("Content-Length")
		ct := resp.Header.Get("Content-Type")
		ll.InfoContext(ctx, "provider response", "duration", time.Since(start), "status", resp.StatusCode, "Content-Encoding", ce, "Content-Length", cl, "Content-Type", ct)
		resp.Body = &loggingBody{r: resp.Body, ctx: ctx, start: start, l: ll}
	}
	return resp, err
}

// redactedAuth reports the scheme of an auth-bearing header without ever
// logging the credential itself: a translated request's headers can carry a
// provider API key verbatim (see spec.AuthConfig), and a log line is not a
// safe place for one.
func redactedAuth(h http.Header) string {
	for _, key := range []string{"Authorization", "X-Api-Key", "Api-Key"} {
		v := h.Get(key)
		if v == "" {
			continue
		}
		if i := strings.IndexByte(v, ' '); i > 0 {
			return v[:i] + " ***"
		}
		return "***"
	}
	return "none"
}

type loggingBody struct {
	r     io.ReadCloser
	ctx   context.Context
	start time.Time
	l     *slog.Logger

	responseSize int64
	err          error
}

func (l *loggingBody) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	if n > 0 {
		l.responseSize += int64(n)
	}
	if err != nil && err != io.EOF && l.err == nil {
		l.err = err
	}
	return n, err
}

func (l *loggingBody) Close() error {
	err := l.r.Close()
	if err != nil && l.err == nil {
		l.err = err
	}
	level := slog.LevelInfo
	if l.err != nil {
		level = slog.LevelError
	}
	l.l.Log(l.ctx, level, "provider response body", "duration", time.Since(l.start), "size", l.responseSize, "err", l.err)
	return err
}

func genID() string {
	var b [12]byte
	rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
