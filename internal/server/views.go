package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/alfredjeanlab/casos/internal/model"
	"github.com/alfredjeanlab/casos/internal/router"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageFuncs = template.FuncMap{
	"caseURL": func(id string) string { return "/caso/" + url.PathEscape(id) },
	"money":   func(v float64) string { return "$" + strconv.FormatFloat(v, 'f', 0, 64) },
}

func parsePages() *template.Template {
	return template.Must(template.New("casos").Funcs(pageFuncs).ParseFS(templateFS, "templates/*.html"))
}

// templateError wraps a failed template execution and maps to 500.
type templateError struct {
	name string
	err  error
}

func (e *templateError) Error() string { return fmt.Sprintf("rendering %s: %v", e.name, e.err) }
func (e *templateError) Unwrap() error { return e.err }

// page holds the fields shared by every rendered page.
type page struct {
	Title     string
	Mode      string
	EventsURL string
}

type dashboardPage struct {
	page
	Filter   client.ListCasesRequest
	Statuses []model.CaseStatus
	Page     int
	Cases    []model.CaseSummary
}

type casoPage struct {
	page
	Expediente *model.Expediente
	Documents  []model.Document
	Groups     []model.ChecklistGroup
	Pending    int
	Watching   int // other consoles with this case open
}

type errorPage struct {
	page
	Status  int
	Message string
}

// views binds the route table to the server's renderers.
func (s *Server) views() map[router.View]router.ViewFunc {
	return map[router.View]router.ViewFunc{
		router.Dashboard:   s.viewDashboard,
		router.CasoDetalle: s.viewCaso,
	}
}

func (s *Server) viewDashboard(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	req, err := client.ParseListQuery(r.URL.Query())
	if err == nil {
		var cases []model.CaseSummary
		cases, err = s.client.ListCases(r.Context(), req)
		if err == nil {
			if cases == nil {
				cases = []model.CaseSummary{}
			}
			p := dashboardPage{
				page:     s.newPage("", "/events"),
				Filter:   *req,
				Statuses: []model.CaseStatus{model.StatusPendiente, model.StatusEnRevision, model.StatusResuelto, model.StatusCerrado},
				Page:     max(req.Page, client.DefaultPage),
				Cases:    cases,
			}
			err = s.render(w, r, "dashboard", p, cases)
		}
	}
	s.finish(w, r, router.Dashboard, err)
}

func (s *Server) viewCaso(w http.ResponseWriter, r *http.Request, params map[string]string) {
	id := params["id"]
	exp, err := s.client.GetCase(r.Context(), id)
	if err == nil {
		p := casoPage{
			page:       s.newPage(id, "/events?case="+url.QueryEscape(id)),
			Expediente: exp,
			Documents:  exp.DocumentInventory.All(),
		}
		if exp.Checklist != nil {
			p.Groups = exp.Checklist.Groups()
			p.Pending = exp.Checklist.Pending()
		}
		if s.presence != nil {
			p.Watching = s.presence.Watching(id)
		}
		err = s.render(w, r, "caso", p, exp)
	}
	s.finish(w, r, router.CasoDetalle, err)
}

func (s *Server) newPage(title, events string) page {
	mode := s.modes.Mode()
	if mode == "" {
		mode = model.DefaultMode.String()
	}
	return page{Title: title, Mode: mode, EventsURL: events}
}

// render writes data as JSON when the caller asked for it, otherwise
// executes the named template. The template is rendered to a buffer first so
// a template error still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, p any, data any) error {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, data)
		return nil
	}
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, p); err != nil {
		return &templateError{name: name, err: err}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
	return nil
}

// finish records the render and, when err is set, writes the error page.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, view router.View, err error) {
	if s.metrics != nil {
		s.metrics.RecordViewRender(string(view), err)
	}
	if err == nil {
		return
	}
	if r.Context().Err() != nil {
		return
	}
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("view failed", "view", view, "path", r.URL.Path, "err", err)
	}
	msg := err.Error()
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg = apiErr.Message
	}
	if wantsJSON(r) {
		writeError(w, status, msg)
		return
	}
	var buf bytes.Buffer
	if terr := s.pages.ExecuteTemplate(&buf, "error", errorPage{page: s.newPage(http.StatusText(status), ""), Status: status, Message: msg}); terr != nil {
		http.Error(w, msg, status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// statusFor maps a view error to the status returned to the browser. Client
// errors from the backend pass through; anything else is a bad gateway.
func statusFor(err error) int {
	if errors.Is(err, client.ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	}
	var te *templateError
	if errors.As(err, &te) {
		return http.StatusInternalServerError
	}
	return http.StatusBadGateway
}

// wantsJSON reports whether the caller asked for JSON with ?format=json or an
// Accept header that names JSON but not HTML.
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}
