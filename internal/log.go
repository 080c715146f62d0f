// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package internal

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/maruel/roundtrippers"
)

// maxLoggedBody caps how much of a provider request/response body
// LogTransport puts in a log line. Prompts and completions routinely run to
// tens of kilobytes; logging them in full turns one call into a multi-line
// log flood without adding debugging value past the first few hundred
// bytes.
const maxLoggedBody = 2048

// LogTransport logs request/response bodies to help debugging a provider
// integration. Bodies are truncated to maxLoggedBody and the
// Authorization/API-key header is redacted before anything is logged.
func LogTransport(t http.RoundTripper) http.RoundTripper {
	ch := make(chan roundtrippers.Record, 1)
	go func() {
		for r := range ch {
			var reqb, respb []byte
			if r.Request.GetBody != nil {
				if b, _ := r.Request.GetBody(); b != nil {
					reqb, _ = io.ReadAll(b)
				}
			} else if b, ok := r.Request.Body.(io.ReadSeeker); ok {
				_, _ = b.Seek(0, io.SeekStart)
				reqb, _ = io.ReadAll(b)
			}
			if r.Response.Body != nil {
				respb, _ = io.ReadAll(r.Response.Body)
			}
			slog.InfoContext(r.Request.Context(), "provider call",
				"url", r.Request.URL.String(),
				"auth", redactedAuth(r.Request.Header),
				"request_body", truncateBody(reqb),
				"response_body", truncateBody(respb))
		}
	}()
	return &roundtrippers.Capture{Transport: t, C: ch}
}

func truncateBody(b []byte) string {
	if len(b) <= maxLoggedBody {
		return string(b)
	}
	return string(b[:maxLoggedBody]) + "...(truncated)"
}
