package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/casos/internal/idgen"
	"github.com/alfredjeanlab/casos/internal/model"
)

// Header names set on every request.
const (
	HeaderMode      = "X-App-Mode"
	HeaderRequestID = "X-Request-ID"
)

// timestampLayout matches JavaScript's Date.prototype.toISOString, which is
// what the backend stores as fecha_cierre.
const timestampLayout = "2006-01-02T15:04:05.000Z"

// HTTPClient implements CasosClient using the casos HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	modes      ModeProvider
	token      string
	httpClient *http.Client
	now        func() time.Time
	requestIDs bool
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client (for timeouts or an
// instrumented transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sets an Authorization: Bearer header on every request.
func WithToken(token string) Option {
	return func(c *HTTPClient) { c.token = token }
}

// WithClock sets the clock used for the closure timestamp.
func WithClock(now func() time.Time) Option {
	return func(c *HTTPClient) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRequestIDs adds a fresh X-Request-ID header to every request.
func WithRequestIDs() Option {
	return func(c *HTTPClient) { c.requestIDs = true }
}

// NewHTTPClient creates a new HTTP client targeting the given API base URL
// (e.g. "http://localhost:8000/api"). modes is consulted on every request;
// a nil provider always yields the default mode.
func NewHTTPClient(baseURL string, modes ModeProvider, opts ...Option) *HTTPClient {
	if modes == nil {
		modes = StaticMode("")
	}
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		modes:      modes,
		httpClient: &http.Client{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// --- Cases ---

func (c *HTTPClient) ListCases(ctx context.Context, req *ListCasesRequest) ([]model.CaseSummary, error) {
	r, err := c.newRequest(ctx, http.MethodGet, "/casos", req.values(), nil)
	if err != nil {
		return nil, err
	}
	var cases []model.CaseSummary
	if err := c.doJSON(r, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *HTTPClient) SearchCases(ctx context.Context, query string) ([]model.CaseSummary, error) {
	q := url.Values{}
	q.Set("q", query)
	r, err := c.newRequest(ctx, http.MethodGet, "/casos/search", q, nil)
	if err != nil {
		return nil, err
	}
	var cases []model.CaseSummary
	if err := c.doJSON(r, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

func (c *HTTPClient) GetCase(ctx context.Context, caseID string) (*model.Expediente, error) {
	r, err := c.newRequest(ctx, http.MethodGet, casePath(caseID), nil, nil)
	if err != nil {
		return nil, err
	}
	var exp model.Expediente
	if err := c.doJSON(r, &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

// --- Documents ---

func (c *HTTPClient) UpdateDocument(ctx context.Context, caseID, fileID string, docType model.DocumentType, customName string) (*DocumentUpdateResult, error) {
	body := struct {
		Type       model.DocumentType `json:"type"`
		CustomName string             `json:"custom_name,omitempty"`
	}{Type: docType, CustomName: customName}

	r, err := c.newRequest(ctx, http.MethodPut, casePath(caseID, "documentos", fileID), nil, body)
	if err != nil {
		return nil, err
	}
	var res DocumentUpdateResult
	if err := c.doJSON(r, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) PreviewDocument(ctx context.Context, caseID, fileID, format string) (*File, error) {
	q := url.Values{}
	if f := strings.TrimSpace(format); f != "" {
		q.Set("format", f)
	}
	r, err := c.newRequest(ctx, http.MethodGet, casePath(caseID, "documentos", fileID, "preview"), q, nil)
	if err != nil {
		return nil, err
	}
	return c.doFile(r)
}

// --- Checklist ---

func (c *HTTPClient) UpdateChecklistItem(ctx context.Context, caseID, itemID string, validated bool) (*ChecklistUpdateResult, error) {
	body := map[string]bool{"validated": validated}
	r, err := c.newRequest(ctx, http.MethodPut, casePath(caseID, "checklist", itemID), nil, body)
	if err != nil {
		return nil, err
	}
	var res ChecklistUpdateResult
	if err := c.doJSON(r, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- Resolution ---

func (c *HTTPClient) GenerateResolution(ctx context.Context, caseID string, templateType model.TemplateType, content string) (*model.ResolutionDraft, error) {
	r, err := c.newRequest(ctx, http.MethodPost, casePath(caseID, "resolucion"), nil, resolutionBody{
		TemplateType: templateType,
		Content:      content,
	})
	if err != nil {
		return nil, err
	}
	var draft model.ResolutionDraft
	if err := c.doJSON(r, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// PreviewResolutionPDF renders content as a PDF. The template tag is always
// model.PreviewTemplate, whatever template the case will be resolved with.
func (c *HTTPClient) PreviewResolutionPDF(ctx context.Context, caseID, content string) (*File, error) {
	r, err := c.newRequest(ctx, http.MethodPost, casePath(caseID, "resolucion", "pdf-preview"), nil, resolutionBody{
		TemplateType: model.PreviewTemplate,
		Content:      content,
	})
	if err != nil {
		return nil, err
	}
	r.Header.Set("Accept", "application/pdf")
	return c.doFile(r)
}

func (c *HTTPClient) CleanupResolutionPreviews(ctx context.Context, caseID string) (*MessageResult, error) {
	r, err := c.newRequest(ctx, http.MethodDelete, casePath(caseID, "resolucion", "preview-cleanup"), nil, nil)
	if err != nil {
		return nil, err
	}
	var res MessageResult
	if err := c.doJSON(r, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type resolutionBody struct {
	TemplateType model.TemplateType `json:"template_type"`
	Content      string             `json:"content"`
}

// --- Context and closure ---

// UpdateUnifiedContext sends updates as the request body without inspecting it.
func (c *HTTPClient) UpdateUnifiedContext(ctx context.Context, caseID string, updates any) (*ContextUpdateResult, error) {
	r, err := c.newRequest(ctx, http.MethodPut, casePath(caseID, "contexto"), nil, updates)
	if err != nil {
		return nil, err
	}
	var res ContextUpdateResult
	if err := c.doJSON(r, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CloseCase closes a case with the given resolution content, stamped with
// the current time.
func (c *HTTPClient) CloseCase(ctx context.Context, caseID, content string) (*CloseCaseResult, error) {
	body := struct {
		ResolucionContent string `json:"resolucion_content"`
		FechaCierre       string `json:"fecha_cierre"`
	}{
		ResolucionContent: content,
		FechaCierre:       c.now().UTC().Format(timestampLayout),
	}
	r, err := c.newRequest(ctx, http.MethodPost, casePath(caseID, "cerrar"), nil, body)
	if err != nil {
		return nil, err
	}
	var res CloseCaseResult
	if err := c.doJSON(r, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// --- internal helpers ---

// values assembles the list query. Blank string filters are left out;
// sort_order is only meaningful alongside sort_by.
func (req *ListCasesRequest) values() url.Values {
	if req == nil {
		req = &ListCasesRequest{}
	}
	q := url.Values{}

	page, pageSize := req.Page, req.PageSize
	if page == 0 {
		page = DefaultPage
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	setTrimmed(q, "q", req.Query)
	setTrimmed(q, "tipo_caso", req.CaseType)
	setTrimmed(q, "estado", req.Status)
	if setTrimmed(q, "sort_by", req.SortBy) {
		order := strings.ToLower(strings.TrimSpace(req.SortOrder))
		if order == "" {
			order = "asc"
		}
		q.Set("sort_order", order)
	}
	return q
}

// ErrInvalidRequest is wrapped by the errors of ParseListQuery.
var ErrInvalidRequest = errors.New("invalid request")

// ParseListQuery reads list filters from a query string that uses the same
// keys ListCases sends: q, tipo_caso, estado, sort_by, sort_order, page and
// page_size. Missing keys stay at their zero value.
func ParseListQuery(q url.Values) (*ListCasesRequest, error) {
	req := &ListCasesRequest{
		Query:     q.Get("q"),
		CaseType:  q.Get("tipo_caso"),
		Status:    q.Get("estado"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	var err error
	if req.Page, err = positiveInt(q, "page"); err != nil {
		return nil, err
	}
	if req.PageSize, err = positiveInt(q, "page_size"); err != nil {
		return nil, err
	}
	if o := strings.ToLower(strings.TrimSpace(req.SortOrder)); o != "" && o != "asc" && o != "desc" {
		return nil, fmt.Errorf("%w: sort_order must be asc or desc, got %q", ErrInvalidRequest, req.SortOrder)
	}
	return req, nil
}

func positiveInt(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", ErrInvalidRequest, key, v)
	}
	return n, nil
}

func setTrimmed(q url.Values, key, value string) bool {
	v := strings.TrimSpace(value)
	if v == "" {
		return false
	}
	q.Set(key, v)
	return true
}

// casePath builds /casos/{id}[/segment...], escaping every segment.
func casePath(caseID string, segments ...string) string {
	var b strings.Builder
	b.WriteString("/casos/")
	b.WriteString(url.PathEscape(caseID))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// mode reads the provider once. An empty value means the default mode.
func (c *HTTPClient) mode() string {
	if m := c.modes.Mode(); m != "" {
		return m
	}
	return model.DefaultMode.String()
}

// newRequest builds a request for path with the current mode attached as
// both the X-App-Mode header and the mode query parameter. Every operation
// goes through here.
func (c *HTTPClient) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	mode := c.mode()
	if query == nil {
		query = url.Values{}
	}
	query.Set("mode", mode)

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set(HeaderMode, mode)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.requestIDs {
		id, err := idgen.RequestID()
		if err != nil {
			return nil, err
		}
		req.Header.Set(HeaderRequestID, id)
	}
	return req, nil
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// do performs the request and returns the body of a successful response.
func (c *HTTPClient) do(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, nil, newAPIError(resp.StatusCode, respBody)
	}
	return resp, respBody, nil
}

// doJSON performs the request and decodes the JSON response into result.
// An empty body (e.g. 204) leaves result untouched.
func (c *HTTPClient) doJSON(req *http.Request, result any) error {
	_, body, err := c.do(req)
	if err != nil {
		return err
	}
	if result != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// doFile performs the request and returns the raw response body.
func (c *HTTPClient) doFile(req *http.Request) (*File, error) {
	resp, body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	f := &File{
		ContentType: resp.Header.Get("Content-Type"),
		Data:        body,
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			f.Filename = params["filename"]
		}
	}
	return f, nil
}

// newAPIError extracts the server's message. FastAPI reports errors as
// {"detail": "..."}; validation failures carry a list in detail, which is
// kept verbatim.
func newAPIError(status int, body []byte) *APIError {
	var errResp struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil {
		if len(errResp.Detail) > 0 {
			var s string
			if json.Unmarshal(errResp.Detail, &s) == nil {
				return &APIError{StatusCode: status, Message: s}
			}
			return &APIError{StatusCode: status, Message: string(errResp.Detail)}
		}
		if errResp.Error != "" {
			return &APIError{StatusCode: status, Message: errResp.Error}
		}
	}
	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{StatusCode: status, Message: msg}
}
