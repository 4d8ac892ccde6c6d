package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/google/uuid"
)

// previewName picks a local file name for a downloaded preview. The name the
// backend suggests is kept as the base, with a short random suffix so that
// repeated previews of the same case never overwrite each other.
func previewName(f *client.File, fallback string) string {
	base := fallback
	ext := ""
	if f.Filename != "" {
		name := filepath.Base(f.Filename)
		ext = filepath.Ext(name)
		if b := strings.TrimSuffix(name, ext); b != "" && b != "." {
			base = b
		}
	}
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(f.ContentType); len(exts) > 0 {
			ext = exts[0]
		} else {
			ext = ".bin"
		}
	}
	return fmt.Sprintf("%s-%s%s", base, strings.SplitN(uuid.NewString(), "-", 2)[0], ext)
}

// savePreview writes f to output, to stdout when output is "-", or to a
// generated name in the working directory when output is empty.
func savePreview(f *client.File, output, fallback string) (string, error) {
	if output == "-" {
		_, err := stdout.Write(f.Data)
		return "", err
	}
	if output == "" {
		output = previewName(f, fallback)
	}
	if err := os.WriteFile(output, f.Data, 0o644); err != nil {
		return "", fmt.Errorf("writing preview: %w", err)
	}
	return output, nil
}
