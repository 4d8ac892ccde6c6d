// Package export writes the case list as JSONL and ships it to one or more
// destinations (a local file, an S3 bucket, a git repository).
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/alfredjeanlab/casos/internal/model"
)

// CaseSource is the part of client.CasosClient the exporter needs.
type CaseSource interface {
	ListCases(ctx context.Context, req *client.ListCasesRequest) ([]model.CaseSummary, error)
	GetCase(ctx context.Context, caseID string) (*model.Expediente, error)
}

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version   string    `json:"version"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Mode      string    `json:"mode,omitempty"`
	CaseCount int       `json:"case_count"`
	Full      bool      `json:"full,omitempty"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Record types.
const (
	TypeCase       = "case"
	TypeExpediente = "expediente"
)

// Options controls an export.
type Options struct {
	// Filter narrows the listing; its Page is ignored.
	Filter client.ListCasesRequest
	// PageSize defaults to client.DefaultPageSize.
	PageSize int
	// Full fetches every case file instead of writing list rows.
	Full bool
	// Mode is recorded in the header.
	Mode string
	// Now defaults to time.Now.
	Now func() time.Time
}

// ExportJSONL pages through the case list and writes it as JSONL to w: one
// header line, then one record per case sorted by case ID.
func ExportJSONL(ctx context.Context, src CaseSource, w io.Writer, opts Options) error {
	cases, err := listAll(ctx, src, opts)
	if err != nil {
		return err
	}
	sort.Slice(cases, func(i, j int) bool {
		return cases[i].CaseID < cases[j].CaseID
	})

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:   "1",
		Type:      "header",
		Timestamp: now().UTC(),
		Mode:      opts.Mode,
		CaseCount: len(cases),
		Full:      opts.Full,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, c := range cases {
		rec := record{Type: TypeCase, Data: c}
		if opts.Full {
			exp, err := src.GetCase(ctx, c.CaseID)
			if err != nil {
				return fmt.Errorf("get case %s: %w", c.CaseID, err)
			}
			rec = record{Type: TypeExpediente, Data: exp}
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode case %s: %w", c.CaseID, err)
		}
	}
	return nil
}

// listAll requests pages until one comes back short. A page that adds no
// new case IDs also ends the walk, for backends that ignore paging.
func listAll(ctx context.Context, src CaseSource, opts Options) ([]model.CaseSummary, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = client.DefaultPageSize
	}
	req := opts.Filter
	req.PageSize = pageSize

	seen := map[string]bool{}
	var all []model.CaseSummary
	for page := 1; ; page++ {
		req.Page = page
		batch, err := src.ListCases(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("list cases page %d: %w", page, err)
		}
		added := 0
		for _, c := range batch {
			if seen[c.CaseID] {
				continue
			}
			seen[c.CaseID] = true
			all = append(all, c)
			added++
		}
		if len(batch) < pageSize || added == 0 {
			return all, nil
		}
	}
}
