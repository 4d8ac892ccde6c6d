package main

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/alfredjeanlab/casos/internal/model"
)

func TestDiffCases_InitialPoll(t *testing.T) {
	seen := make(map[string]model.CaseSummary)
	cases := []model.CaseSummary{
		{CaseID: "a", Status: model.StatusPendiente},
		{CaseID: "b", Status: model.StatusEnRevision},
	}

	changed, removed := diffCases(cases, seen)
	if len(changed) != 2 {
		t.Fatalf("got %d changed, want 2", len(changed))
	}
	if len(removed) != 0 {
		t.Fatalf("removed = %v, want none", removed)
	}
	if len(seen) != 2 {
		t.Fatalf("got %d seen, want 2", len(seen))
	}
}

func TestDiffCases_NoChanges(t *testing.T) {
	a := model.CaseSummary{CaseID: "a", Status: model.StatusPendiente}
	b := model.CaseSummary{CaseID: "b", Status: model.StatusEnRevision}
	seen := map[string]model.CaseSummary{"a": a, "b": b}

	changed, removed := diffCases([]model.CaseSummary{a, b}, seen)
	if len(changed) != 0 || len(removed) != 0 {
		t.Fatalf("changed = %v, removed = %v, want neither", changed, removed)
	}
}

func TestDiffCases_NewCase(t *testing.T) {
	a := model.CaseSummary{CaseID: "a", Status: model.StatusPendiente}
	seen := map[string]model.CaseSummary{"a": a}
	cases := []model.CaseSummary{a, {CaseID: "c", Status: model.StatusPendiente}}

	changed, removed := diffCases(cases, seen)
	if len(changed) != 1 || changed[0].CaseID != "c" {
		t.Fatalf("changed = %+v, want only c", changed)
	}
	if len(removed) != 0 {
		t.Fatalf("removed = %v, want none", removed)
	}
}

func TestDiffCases_Updated(t *testing.T) {
	seen := map[string]model.CaseSummary{
		"a": {CaseID: "a", Status: model.StatusPendiente},
		"b": {CaseID: "b", Status: model.StatusPendiente, MontoDisputa: 1000},
	}
	cases := []model.CaseSummary{
		{CaseID: "a", Status: model.StatusCerrado},
		{CaseID: "b", Status: model.StatusPendiente, MontoDisputa: 2000},
	}

	changed, removed := diffCases(cases, seen)
	if len(changed) != 2 {
		t.Fatalf("got %d changed, want 2", len(changed))
	}
	if seen["a"].Status != model.StatusCerrado {
		t.Errorf("seen not updated: %+v", seen["a"])
	}
	if len(removed) != 0 {
		t.Errorf("removed = %v, want none", removed)
	}
}

func TestDiffCases_Removed(t *testing.T) {
	a := model.CaseSummary{CaseID: "a", Status: model.StatusPendiente}
	seen := map[string]model.CaseSummary{
		"a": a,
		"c": {CaseID: "c", Status: model.StatusPendiente},
		"b": {CaseID: "b", Status: model.StatusEnRevision},
	}

	changed, removed := diffCases([]model.CaseSummary{a}, seen)
	if len(changed) != 0 {
		t.Fatalf("changed = %+v, want none", changed)
	}
	if !slices.Equal(removed, []string{"b", "c"}) {
		t.Fatalf("removed = %v, want [b c]", removed)
	}
	if _, ok := seen["b"]; ok {
		t.Error("removed case still in seen")
	}

	// A removed case that comes back is reported as new.
	changed, removed = diffCases([]model.CaseSummary{a, {CaseID: "b", Status: model.StatusResuelto}}, seen)
	if len(changed) != 1 || changed[0].CaseID != "b" || len(removed) != 0 {
		t.Fatalf("changed = %+v, removed = %v, want only b back", changed, removed)
	}
}

func TestPrintRemoved(t *testing.T) {
	withColorOff(t)
	buf := captureStdout(t)

	if err := printRemoved([]string{"R-001", "R-002"}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "- R-001 (removed)\n- R-002 (removed)\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestPrintRemoved_JSON(t *testing.T) {
	buf := captureStdout(t)
	withJSON(t)

	if err := printRemoved([]string{"R-001"}); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Removed []string `json:"removed"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if !slices.Equal(got.Removed, []string{"R-001"}) {
		t.Errorf("removed = %v", got.Removed)
	}
}
