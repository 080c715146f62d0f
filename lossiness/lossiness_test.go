// Copyright 2025 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package lossiness

import "testing"

func TestRecorder_empty(t *testing.T) {
	r := New()
	rep := r.Close()
	if rep.HasLossiness() {
		t.Fatal("expected no lossiness")
	}
	if rep.MaxSeverity != SeverityNone {
		t.Fatalf("got %v, want none", rep.MaxSeverity)
	}
	if rep.Summary.TotalItems != 0 {
		t.Fatalf("got %d, want 0", rep.Summary.TotalItems)
	}
}

func TestRecorder_order(t *testing.T) {
	r := New()
	r.Record(CodeUnmapped, "$.a", "a", SeverityInfo)
	r.RecordChange(CodeClamped, "$.b", "b", SeverityWarn, 3.5, 2.0)
	rep := r.Close()
	if len(rep.Items) != 2 {
		t.Fatalf("got %d items", len(rep.Items))
	}
	if rep.Items[0].Code != CodeUnmapped || rep.Items[1].Code != CodeClamped {
		t.Fatalf("items out of pipeline order: %+v", rep.Items)
	}
	if rep.Items[1].Before != 3.5 || rep.Items[1].After != 2.0 {
		t.Fatalf("before/after not recorded: %+v", rep.Items[1])
	}
}

func TestRecorder_maxSeverity(t *testing.T) {
	r := New()
	r.Record(CodeUnmapped, "$.a", "a", SeverityInfo)
	if r.MaxSeverity() != SeverityInfo {
		t.Fatalf("got %v", r.MaxSeverity())
	}
	r.Record(CodeTypeConflict, "$.b", "b", SeverityError)
	if r.MaxSeverity() != SeverityError {
		t.Fatalf("got %v", r.MaxSeverity())
	}
	r.Record(CodeMutexResolved, "$.c", "c", SeverityWarn)
	if r.MaxSeverity() != SeverityError {
		t.Fatalf("got %v, severity should not downgrade", r.MaxSeverity())
	}
}

func TestReport_summary(t *testing.T) {
	r := New()
	r.Record(CodeUnmapped, "$.a", "a", SeverityInfo)
	r.Record(CodeUnmapped, "$.b", "b", SeverityInfo)
	r.Record(CodeClamped, "$.c", "c", SeverityWarn)
	rep := r.Close()
	if rep.Summary.ByCode[CodeUnmapped] != 2 {
		t.Fatalf("got %d", rep.Summary.ByCode[CodeUnmapped])
	}
	if rep.Summary.BySeverity[SeverityInfo] != 2 || rep.Summary.BySeverity[SeverityWarn] != 1 {
		t.Fatalf("got %+v", rep.Summary.BySeverity)
	}
	if rep.MaxSeverity != SeverityWarn {
		t.Fatalf("got %v", rep.MaxSeverity)
	}
}

func TestSeverity_AtLeast(t *testing.T) {
	if !SeverityError.AtLeast(SeverityWarn) {
		t.Fatal("error should be at least warn")
	}
	if SeverityInfo.AtLeast(SeverityWarn) {
		t.Fatal("info should not be at least warn")
	}
	if !SeverityWarn.AtLeast(SeverityWarn) {
		t.Fatal("warn should be at least warn")
	}
}
