package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/alfredjeanlab/casos/internal/model"
)

// newBackend serves the two read endpoints the views use and records the
// last list query.
func newBackend(t *testing.T) (*client.HTTPClient, *url.Values) {
	t.Helper()
	var lastQuery url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("GET /casos", func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.Query()
		json.NewEncoder(w).Encode([]model.CaseSummary{
			{CaseID: "R-001", ClientName: "Ana Pérez", Status: model.StatusPendiente},
		})
	})
	mux.HandleFunc("GET /casos/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "R-001" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Caso no encontrado"})
			return
		}
		json.NewEncoder(w).Encode(model.Expediente{
			CompilationMetadata: model.CompilationMetadata{CaseID: "R-001"},
			UnifiedContext:      model.UnifiedContext{ClientName: "Ana Pérez", Commune: "Maipú"},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return client.NewHTTPClient(srv.URL, client.StaticMode("test")), &lastQuery
}

func TestOpenPath_Dashboard(t *testing.T) {
	withColorOff(t)
	c, lastQuery := newBackend(t)
	buf := captureStdout(t)

	if err := openPath(context.Background(), c, "/?q=ana&estado=PENDIENTE"); err != nil {
		t.Fatal(err)
	}
	if got := lastQuery.Get("q"); got != "ana" {
		t.Errorf("q = %q, want ana", got)
	}
	if got := lastQuery.Get("estado"); got != "PENDIENTE" {
		t.Errorf("estado = %q, want PENDIENTE", got)
	}
	if !strings.Contains(buf.String(), "R-001") || !strings.Contains(buf.String(), "1 casos") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestOpenPath_FullURL(t *testing.T) {
	withColorOff(t)
	c, _ := newBackend(t)
	buf := captureStdout(t)

	if err := openPath(context.Background(), c, "http://localhost:5173/caso/R-001"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Ana Pérez") || !strings.Contains(buf.String(), "Maipú") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestOpenPath_CasoJSON(t *testing.T) {
	c, _ := newBackend(t)
	buf := captureStdout(t)
	withJSON(t)

	if err := openPath(context.Background(), c, "/caso/R-001"); err != nil {
		t.Fatal(err)
	}
	var exp model.Expediente
	if err := json.Unmarshal(buf.Bytes(), &exp); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if exp.CaseID() != "R-001" {
		t.Errorf("CaseID = %q", exp.CaseID())
	}
}

func TestOpenPath_Errors(t *testing.T) {
	c, _ := newBackend(t)
	captureStdout(t)

	for _, tc := range []struct {
		name, path string
	}{
		{"NoRoute", "/reportes"},
		{"NotFound", "/caso/R-999"},
		{"BadQuery", "/?page=0"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if err := openPath(context.Background(), c, tc.path); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
