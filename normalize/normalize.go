// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package normalize implements the response normalizer (§4.6): projecting a
// provider's raw synchronous response or a single raw SSE event onto the
// uniform UniformResponse / UniformStreamEvent shapes.
package normalize

import (
	"github.com/specado/specado/jsonpath"
	"github.com/specado/specado/lossiness"
	"github.com/specado/specado/spec"
)

// Sync implements the sync half of §4.6. raw is the provider's decoded JSON
// response body.
func Sync(raw map[string]any, model *spec.ModelSpec) spec.UniformResponse {
	rec := lossiness.New()
	n := model.ResponseNormalization.Sync
	resp := spec.UniformResponse{Model: model.ID}

	if v, ok, _ := jsonpath.Get(raw, n.ContentPath); ok {
		if s, ok := v.(string); ok {
			resp.Content = s
		}
	} else {
		rec.Record(lossiness.CodeContentMissing, n.ContentPath, "content_path did not resolve", lossiness.SeverityError)
	}

	resp.FinishReason = spec.FinishOther
	if n.FinishReasonPath != "" {
		if v, ok, _ := jsonpath.Get(raw, n.FinishReasonPath); ok {
			if s, ok := v.(string); ok {
				if uniform, known := n.FinishReasonMap[s]; known {
					resp.FinishReason = spec.FinishReason(uniform)
				} else {
					rec.Record(lossiness.CodeFinishReasonUnknown, n.FinishReasonPath, "no finish_reason_map entry for "+s, lossiness.SeverityInfo)
				}
			}
		}
	}

	if n.ToolCallsPath != "" {
		if v, ok, _ := jsonpath.Get(raw, n.ToolCallsPath); ok {
			if arr, ok := v.([]any); ok {
				for _, item := range arr {
					resp.ToolCalls = append(resp.ToolCalls, extractToolCall(item, n))
				}
			}
		}
	}

	resp.RawMetadata = rawMetadata(raw, n)
	resp.Lossiness = rec.Close()
	return resp
}

func extractToolCall(item any, n spec.SyncNormalization) spec.ToolCall {
	tc := spec.ToolCall{}
	if n.ToolNamePath != "" {
		if v, ok, _ := jsonpath.Get(item, n.ToolNamePath); ok {
			tc.Name, _ = v.(string)
		}
	}
	if n.ToolIDPath != "" {
		if v, ok, _ := jsonpath.Get(item, n.ToolIDPath); ok {
			tc.ID, _ = v.(string)
		}
	}
	if n.ToolArgsPath != "" {
		if v, ok, _ := jsonpath.Get(item, n.ToolArgsPath); ok {
			if m, ok := v.(map[string]any); ok {
				tc.Arguments = m
			}
		}
	}
	return tc
}

// rawMetadata copies every top-level field of raw that was not consulted by
// any of the configured paths, so callers retain provider-specific detail
// the uniform shape does not model.
func rawMetadata(raw map[string]any, n spec.SyncNormalization) map[string]any {
	consumed := map[string]bool{}
	for _, p := range []string{n.ContentPath, n.FinishReasonPath, n.ToolCallsPath} {
		markRoot(p, consumed)
	}
	out := map[string]any{}
	for k, v := range raw {
		if !consumed[k] {
			out[k] = v
		}
	}
	return out
}

func markRoot(path string, consumed map[string]bool) {
	if path == "" {
		return
	}
	p, err := jsonpath.Parse(path)
	if err != nil {
		return
	}
	if f := p.RootField(); len(f) > 2 {
		consumed[f[2:]] = true
	}
}

// StreamEvent implements the stream half of §4.6: routing one raw SSE event
// through the model's EventSelector. The second return is false when no
// route matched (the event is suppressed; LOSS_STREAM_UNKNOWN_EVENT is
// still recorded).
func StreamEvent(rawEvent map[string]any, model *spec.ModelSpec) (spec.UniformStreamEvent, bool) {
	rec := lossiness.New()
	sel := model.ResponseNormalization.Stream.EventSelector
	typeVal, ok, _ := jsonpath.Get(rawEvent, sel.TypePath)
	typeStr, _ := typeVal.(string)

	for _, route := range sel.Routes {
		if !ok || typeStr != route.When {
			continue
		}
		ev := spec.UniformStreamEvent{Kind: route.Emit}
		if route.TextPath != "" {
			if v, ok, _ := jsonpath.Get(rawEvent, route.TextPath); ok {
				ev.Text, _ = v.(string)
			}
		}
		if route.NamePath != "" {
			if v, ok, _ := jsonpath.Get(rawEvent, route.NamePath); ok {
				ev.Name, _ = v.(string)
			}
		}
		if route.ArgsPath != "" {
			if v, ok, _ := jsonpath.Get(rawEvent, route.ArgsPath); ok {
				if m, ok := v.(map[string]any); ok {
					ev.Args = m
				}
			}
		}
		ev.Lossiness = rec.Close()
		return ev, true
	}

	rec.Record(lossiness.CodeStreamUnknownEvent, sel.TypePath, "no route matched event type "+typeStr, lossiness.SeverityInfo)
	return spec.UniformStreamEvent{Lossiness: rec.Close()}, false
}
