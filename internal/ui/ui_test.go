package ui

import (
	"strings"
	"testing"

	"github.com/alfredjeanlab/casos/internal/model"
)

func withColor(t *testing.T, enabled bool) {
	t.Helper()
	prev := noColor
	SetColor(enabled)
	t.Cleanup(func() { noColor = prev })
}

func TestRenderStatus_NoColor(t *testing.T) {
	withColor(t, false)
	for _, s := range []model.CaseStatus{model.StatusPendiente, model.StatusCerrado, "OTRO"} {
		if got := RenderStatus(s); got != s.String() {
			t.Errorf("RenderStatus(%q) = %q, want plain text", s, got)
		}
	}
}

func TestRenderStatus_Color(t *testing.T) {
	withColor(t, true)
	got := RenderStatus(model.StatusEnRevision)
	if !strings.HasPrefix(got, "\x1b[38;5;179m") || !strings.Contains(got, "EN_REVISION") {
		t.Errorf("RenderStatus(EN_REVISION) = %q", got)
	}
	if got := RenderStatus("DESCONOCIDO"); got != "DESCONOCIDO" {
		t.Errorf("unknown status should stay plain, got %q", got)
	}
}

func TestRenderChecklist(t *testing.T) {
	withColor(t, true)
	if got := RenderChecklist(model.ChecklistNoCumple); !strings.Contains(got, "\x1b[38;5;203m") {
		t.Errorf("NO_CUMPLE should be red, got %q", got)
	}
}

func TestRenderMode(t *testing.T) {
	withColor(t, false)
	if got := RenderMode(""); got != "validate" {
		t.Errorf("RenderMode(\"\") = %q, want validate", got)
	}
	if got := RenderMode("test"); got != "test" {
		t.Errorf("RenderMode(test) = %q", got)
	}
}

func TestShouldUseColor_Env(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CLICOLOR_FORCE", "1")
	if ShouldUseColor() {
		t.Error("NO_COLOR must win over CLICOLOR_FORCE")
	}

	t.Setenv("NO_COLOR", "")
	if !ShouldUseColor() {
		t.Error("CLICOLOR_FORCE=1 should force color")
	}

	t.Setenv("CLICOLOR_FORCE", "")
	t.Setenv("CLICOLOR", "0")
	if ShouldUseColor() {
		t.Error("CLICOLOR=0 should disable color")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"Santiago", 20, "Santiago"},
		{"Compañía General de Electricidad", 10, "Compañía …"},
		{"abc", 1, "…"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
