package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/alfredjeanlab/casos/internal/model"
)

func TestExportJSONL_Empty(t *testing.T) {
	src := newFakeSource()
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), src, &buf, Options{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (header only), got %d", len(lines))
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.Version != "1" || h.Type != "header" || h.CaseCount != 0 {
		t.Fatalf("unexpected header: %+v", h)
	}
	if len(src.requests) != 1 || src.requests[0].Page != 1 || src.requests[0].PageSize != client.DefaultPageSize {
		t.Errorf("requests = %+v", src.requests)
	}
}

func TestExportJSONL_SortedAndPaged(t *testing.T) {
	src := newFakeSource("R-005", "R-001", "R-004", "R-002", "R-003")
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	var buf bytes.Buffer
	err := ExportJSONL(context.Background(), src, &buf, Options{
		Filter:   client.ListCasesRequest{Status: "PENDIENTE", Page: 9},
		PageSize: 2,
		Mode:     "test",
		Now:      func() time.Time { return fixed },
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 5 cases at 2 per page: pages 1, 2, 3 (short page ends the walk).
	if len(src.requests) != 3 {
		t.Fatalf("expected 3 list requests, got %d", len(src.requests))
	}
	for i, req := range src.requests {
		if req.Page != i+1 || req.PageSize != 2 || req.Status != "PENDIENTE" {
			t.Errorf("request %d = %+v", i, req)
		}
	}

	lines := nonEmptyLines(buf.String())
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d:\n%s", len(lines), buf.String())
	}

	var h header
	if err := json.Unmarshal([]byte(lines[0]), &h); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if h.CaseCount != 5 || h.Mode != "test" || !h.Timestamp.Equal(fixed) {
		t.Fatalf("unexpected header: %+v", h)
	}

	for i, want := range []string{"R-001", "R-002", "R-003", "R-004", "R-005"} {
		var rec struct {
			Type string            `json:"type"`
			Data model.CaseSummary `json:"data"`
		}
		if err := json.Unmarshal([]byte(lines[i+1]), &rec); err != nil {
			t.Fatalf("unmarshal line %d: %v", i+1, err)
		}
		if rec.Type != TypeCase || rec.Data.CaseID != want {
			t.Errorf("line %d = %s/%s, want case/%s", i+1, rec.Type, rec.Data.CaseID, want)
		}
	}
}

func TestExportJSONL_ExactPageBoundary(t *testing.T) {
	src := newFakeSource("a", "b", "c", "d")
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), src, &buf, Options{PageSize: 2}); err != nil {
		t.Fatal(err)
	}
	// Two full pages, then an empty third page.
	if len(src.requests) != 3 {
		t.Errorf("expected 3 list requests, got %d", len(src.requests))
	}
	if n := len(nonEmptyLines(buf.String())); n != 5 {
		t.Errorf("expected 5 lines, got %d", n)
	}
}

func TestExportJSONL_BackendIgnoresPaging(t *testing.T) {
	src := newFakeSource("a", "b")
	src.noPaging = true

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), src, &buf, Options{PageSize: 2}); err != nil {
		t.Fatal(err)
	}
	if len(src.requests) != 2 {
		t.Errorf("expected the walk to stop after a page with no new cases, got %d requests", len(src.requests))
	}
	if n := len(nonEmptyLines(buf.String())); n != 3 {
		t.Errorf("expected 3 lines, got %d", n)
	}
}

func TestExportJSONL_Full(t *testing.T) {
	src := newFakeSource("R-2", "R-1")

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), src, &buf, Options{Full: true}); err != nil {
		t.Fatal(err)
	}
	if got := src.sortedGets(); strings.Join(got, ",") != "R-1,R-2" {
		t.Errorf("GetCase calls = %v", got)
	}

	lines := nonEmptyLines(buf.String())
	var rec struct {
		Type string           `json:"type"`
		Data model.Expediente `json:"data"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.Type != TypeExpediente || rec.Data.CaseID() != "R-1" {
		t.Errorf("first record = %s/%s", rec.Type, rec.Data.CaseID())
	}
}

func TestExportJSONL_ListError(t *testing.T) {
	src := newFakeSource()
	src.listErr = errBackendDown

	err := ExportJSONL(context.Background(), src, &bytes.Buffer{}, Options{})
	if !errors.Is(err, errBackendDown) {
		t.Fatalf("error = %v, want errBackendDown", err)
	}
}

func nonEmptyLines(s string) []string {
	var result []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			result = append(result, line)
		}
	}
	return result
}
