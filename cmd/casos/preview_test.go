package main

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/alfredjeanlab/casos/internal/client"
)

func TestPreviewName(t *testing.T) {
	for _, tc := range []struct {
		name     string
		file     client.File
		fallback string
		want     string
	}{
		{"ServerName", client.File{Filename: "resolucion_R-001.pdf", ContentType: "application/pdf"}, "R-001", `^resolucion_R-001-[0-9a-f]{8}\.pdf$`},
		{"PathStripped", client.File{Filename: "../../etc/doc.docx"}, "R-001", `^doc-[0-9a-f]{8}\.docx$`},
		{"FromMime", client.File{ContentType: "application/json"}, "R-001", `^R-001-[0-9a-f]{8}\.json$`},
		{"Unknown", client.File{ContentType: "application/x-unknown-thing"}, "R-001", `^R-001-[0-9a-f]{8}\.bin$`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := previewName(&tc.file, tc.fallback)
			if !regexp.MustCompile(tc.want).MatchString(got) {
				t.Errorf("previewName() = %q, want match %s", got, tc.want)
			}
		})
	}
}

func TestPreviewName_Unique(t *testing.T) {
	f := &client.File{Filename: "r.pdf"}
	if a, b := previewName(f, "x"), previewName(f, "x"); a == b {
		t.Errorf("two previews share the name %q", a)
	}
}

func TestSavePreview(t *testing.T) {
	f := &client.File{Filename: "r.pdf", Data: []byte("%PDF-1.4")}

	out := filepath.Join(t.TempDir(), "out.pdf")
	path, err := savePreview(f, out, "R-001")
	if err != nil {
		t.Fatal(err)
	}
	if path != out {
		t.Errorf("path = %q, want %q", path, out)
	}
	data, _ := os.ReadFile(out)
	if string(data) != "%PDF-1.4" {
		t.Errorf("file content = %q", data)
	}

	buf := captureStdout(t)
	if path, err := savePreview(f, "-", "R-001"); err != nil || path != "" {
		t.Fatalf("savePreview(-) = %q, %v", path, err)
	}
	if buf.String() != "%PDF-1.4" {
		t.Errorf("stdout = %q", buf.String())
	}
}
