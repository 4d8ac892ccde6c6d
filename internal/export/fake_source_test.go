package export

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/alfredjeanlab/casos/internal/model"
)

// fakeSource serves cases from memory, honouring page and page_size.
type fakeSource struct {
	mu       sync.Mutex
	cases    []model.CaseSummary
	requests []client.ListCasesRequest
	getCalls []string
	noPaging bool // return every case on every page
	listErr  error
}

func newFakeSource(ids ...string) *fakeSource {
	f := &fakeSource{}
	for _, id := range ids {
		f.cases = append(f.cases, model.CaseSummary{CaseID: id, Status: model.StatusPendiente})
	}
	return f
}

func (f *fakeSource) ListCases(_ context.Context, req *client.ListCasesRequest) ([]model.CaseSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, *req)
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.noPaging {
		return append([]model.CaseSummary(nil), f.cases...), nil
	}
	start := (req.Page - 1) * req.PageSize
	if start >= len(f.cases) {
		return nil, nil
	}
	end := min(start+req.PageSize, len(f.cases))
	return append([]model.CaseSummary(nil), f.cases[start:end]...), nil
}

func (f *fakeSource) GetCase(_ context.Context, caseID string) (*model.Expediente, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, caseID)
	for _, c := range f.cases {
		if c.CaseID == caseID {
			return &model.Expediente{
				CompilationMetadata: model.CompilationMetadata{CaseID: caseID, Status: "COMPLETED"},
				UnifiedContext:      model.UnifiedContext{ClientName: c.ClientName},
			}, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "Caso no encontrado"}
}

func (f *fakeSource) sortedGets() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.getCalls...)
	sort.Strings(out)
	return out
}

var errBackendDown = errors.New("backend down")
