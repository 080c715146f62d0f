// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package transport sends a translated request to a provider over HTTP and
// decodes its response back into the raw JSON tree the normalizer consumes.
// It is a reference collaborator, not part of the engine proper (§6): the
// engine itself performs no I/O, so Translate never calls into this
// package.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/maruel/httpjson"
	"github.com/maruel/roundtrippers"
	"golang.org/x/sync/errgroup"

	"github.com/specado/specado/internal"
	"github.com/specado/specado/internal/bb"
	"github.com/specado/specado/internal/sse"
	"github.com/specado/specado/spec"
)

// Client sends a ModelSpec's declared endpoints over HTTP. Unlike a
// hand-written provider client, it never knows a provider's request or
// response shape in advance: both come from the ModelSpec it is given at
// call time.
type Client struct {
	// Transport is the base http.RoundTripper. Defaults to
	// http.DefaultTransport.
	Transport http.RoundTripper
	// Log enables request/response logging through internal.LogTransport,
	// which reads the request and response bodies and logs each truncated to
	// a fixed maximum size.
	Log bool
	// SimpleLog enables lighter-weight logging through internal.TransportLog:
	// method, URL, status and duration, without buffering request bodies.
	// Ignored when Log is set.
	SimpleLog bool
	// Lenient is forwarded to httpjson.Client; see its documentation.
	Lenient bool
}

// HTTPError is returned when a provider answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("transport: http %d from %s: %s", e.StatusCode, e.URL, string(e.Body))
}

func (c *Client) httpjsonClient(provider *spec.ProviderInfo, ep spec.EndpointConfig) httpjson.Client {
	t := c.Transport
	if t == nil {
		t = http.DefaultTransport
	}
	if h := authHeader(provider, ep); len(h) > 0 {
		t = &roundtrippers.Header{Transport: t, Header: h}
	}
	switch {
	case c.Log:
		t = internal.LogTransport(t)
	case c.SimpleLog:
		t = &internal.TransportLog{R: t}
	}
	return httpjson.Client{Client: &http.Client{Transport: t}, Lenient: c.Lenient}
}

func authHeader(provider *spec.ProviderInfo, ep spec.EndpointConfig) http.Header {
	h := http.Header{}
	for k, v := range provider.Headers {
		h.Set(k, expandEnv(v))
	}
	for k, v := range ep.Headers {
		h.Set(k, expandEnv(v))
	}
	if provider.Auth != nil {
		h.Set(provider.Auth.Header, expandEnv(provider.Auth.ValueTemplate))
	}
	return h
}

// expandEnv resolves "${VAR}" placeholders in AuthConfig.ValueTemplate and
// endpoint/provider headers against the process environment, per §6.
func expandEnv(s string) string {
	return os.Expand(s, os.Getenv)
}

func endpoint(model *spec.ModelSpec, streaming bool) (spec.EndpointConfig, error) {
	ep := model.Endpoints.ChatCompletion
	name := "chat_completion"
	if streaming {
		ep = model.Endpoints.StreamingChatCompletion
		name = "streaming_chat_completion"
	}
	if ep.Path == "" || ep.Method == "" {
		return ep, fmt.Errorf("transport: model %q declares no %s endpoint", model.ID, name)
	}
	return ep, nil
}

func buildURL(baseURL string, ep spec.EndpointConfig) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + ep.Path)
	if err != nil {
		return "", fmt.Errorf("transport: %w", err)
	}
	if len(ep.Query) > 0 {
		q := u.Query()
		for k, v := range ep.Query {
			q.Set(k, expandEnv(v))
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// Send issues one HTTP call for body against provider/model's declared
// chat_completion (or streaming_chat_completion, if streaming) endpoint. The
// caller owns closing the returned response body.
func (c *Client) Send(ctx context.Context, provider *spec.ProviderSpec, model *spec.ModelSpec, streaming bool, body map[string]any) (*http.Response, error) {
	ep, err := endpoint(model, streaming)
	if err != nil {
		return nil, err
	}
	u, err := buildURL(provider.Provider.BaseURL, ep)
	if err != nil {
		return nil, err
	}
	hc := c.httpjsonClient(&provider.Provider, ep)
	resp, err := hc.Request(ctx, ep.Method, u, nil, body)
	if err != nil {
		return nil, wrapTransportErr(err)
	}
	return resp, nil
}

// wrapTransportErr classifies a failure from the underlying HTTP round trip
// as spec.ErrTimeout or spec.ErrTransport, so callers that switch on
// spec.SpecadoError see the same taxonomy for network failures as for every
// other stage of the pipeline.
func wrapTransportErr(err error) error {
	kind := spec.ErrTransport
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		kind = spec.ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		kind = spec.ErrTimeout
	}
	return spec.NewTransportError(kind, err)
}

// Do sends body to the model's synchronous endpoint and decodes the
// response into a generic JSON tree, suitable for spec.UniformResponse
// projection by package normalize. On a non-2xx status it returns an
// *HTTPError.
func (c *Client) Do(ctx context.Context, provider *spec.ProviderSpec, model *spec.ModelSpec, body map[string]any) (map[string]any, error) {
	resp, err := c.Send(ctx, provider, model, false, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTransportErr(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: resp.Request.URL.String(), Body: raw}
	}
	return decodeObject(raw)
}

// decodeObject decodes raw as a JSON object. A handful of providers answer a
// bare JSON array at the top level instead of an object; that shape is
// wrapped under the "$items" key so downstream JSONPath lookups still see a
// map to walk.
func decodeObject(raw []byte) (map[string]any, error) {
	buf := bb.NewResponseBuffer(raw)
	d := json.NewDecoder(buf)
	d.UseNumber()
	var out map[string]any
	if err := d.Decode(&out); err == nil {
		return out, nil
	} else if !strings.Contains(err.Error(), "cannot unmarshal array") {
		return nil, fmt.Errorf("transport: failed to decode response: %w", err)
	}
	if _, err := buf.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}
	d = json.NewDecoder(buf)
	d.UseNumber()
	var arr []any
	if err := d.Decode(&arr); err != nil {
		return nil, fmt.Errorf("transport: failed to decode response: %w", err)
	}
	return map[string]any{"$items": arr}, nil
}

// Stream sends body to the model's streaming endpoint and returns an
// iterator of raw SSE events, each ready for normalize.StreamEvent. finish
// reports the terminal error, if any, once the iterator is drained.
func (c *Client) Stream(ctx context.Context, provider *spec.ProviderSpec, model *spec.ModelSpec, body map[string]any) (iter.Seq[map[string]any], func() error, error) {
	resp, err := c.Send(ctx, provider, model, true, body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, nil, &HTTPError{StatusCode: resp.StatusCode, URL: resp.Request.URL.String(), Body: raw}
	}
	it, finish := sse.Process(resp.Body)
	wrapped := func() error {
		err := finish()
		resp.Body.Close()
		return err
	}
	return it, wrapped, nil
}

// DispatchResult pairs a model id with its translated response, or the
// error that occurred reaching it.
type DispatchResult struct {
	ModelID string
	Reply   map[string]any
	Err     error
}

// DispatchAll issues Do concurrently against every (model, body) pair in
// requests, fanning out across models the way a caller might race several
// candidates or query the same prompt against a cheap and a strong model at
// once. It always returns len(requests) results, in no particular order
// (each carries its ModelID), even when some of them carry a non-nil Err;
// the returned error is only non-nil if ctx itself is canceled.
func (c *Client) DispatchAll(ctx context.Context, provider *spec.ProviderSpec, requests map[string]map[string]any) ([]DispatchResult, error) {
	ids := make([]string, 0, len(requests))
	for id := range requests {
		ids = append(ids, id)
	}
	results := make([]DispatchResult, len(ids))
	eg, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			model, ok := provider.FindModel(id)
			if !ok {
				results[i] = DispatchResult{ModelID: id, Err: fmt.Errorf("transport: %w", &modelNotFoundError{id})}
				return nil
			}
			reply, err := c.Do(gctx, provider, model, requests[id])
			results[i] = DispatchResult{ModelID: id, Reply: reply, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

type modelNotFoundError struct{ id string }

func (e *modelNotFoundError) Error() string { return fmt.Sprintf("model %q not found", e.id) }
