// Package router binds the casos URL paths to the two views of the
// application: the case dashboard and the case detail page.
//
// The table is consulted two ways. Resolve matches a path without any HTTP
// machinery (the CLI "open" command uses it), and NewHandler registers the
// same routes on an http.ServeMux for the view server.
package router

import (
	"net/http"
	"net/url"
	"strings"
)

// View names a page of the application.
type View string

const (
	Dashboard   View = "Dashboard"
	CasoDetalle View = "CasoDetalle"
)

// Route binds a path pattern to a view. Segments written as {name} capture
// the raw path segment under that name.
type Route struct {
	Pattern string
	View    View
}

// Routes is the route table, in match order.
var Routes = []Route{
	{Pattern: "/", View: Dashboard},
	{Pattern: "/caso/{id}", View: CasoDetalle},
}

// Match is the outcome of resolving a path.
type Match struct {
	View   View
	Params map[string]string
}

// Param returns the named input, or "" when absent.
func (m Match) Param(name string) string {
	return m.Params[name]
}

// Resolve matches path against Routes. The query string and fragment are
// ignored, and one trailing slash is dropped from any path other than "/".
// Captured segments are unescaped but not otherwise interpreted;
// "/caso/abc" yields id "abc". There is no fallback route.
func Resolve(path string) (Match, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, rt := range Routes {
		if params, ok := matchPattern(rt.Pattern, path); ok {
			return Match{View: rt.View, Params: params}, true
		}
	}
	return Match{}, false
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	pSegs := strings.Split(strings.TrimPrefix(pattern, "/"), "/")
	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(pSegs) != len(segs) {
		return nil, false
	}
	params := map[string]string{}
	for i, ps := range pSegs {
		if name, ok := wildcard(ps); ok {
			v, err := url.PathUnescape(segs[i])
			if err != nil || v == "" {
				return nil, false
			}
			params[name] = v
			continue
		}
		if ps != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func wildcard(seg string) (string, bool) {
	if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

// params lists the wildcard names of a pattern.
func (rt Route) params() []string {
	var names []string
	for _, seg := range strings.Split(rt.Pattern, "/") {
		if name, ok := wildcard(seg); ok {
			names = append(names, name)
		}
	}
	return names
}

// muxPatterns converts a route pattern to http.ServeMux syntax. "/" must be
// anchored, otherwise the mux treats it as a catch-all. Other routes also
// accept one trailing slash, as Resolve does.
func (rt Route) muxPatterns() []string {
	if rt.Pattern == "/" {
		return []string{"GET /{$}"}
	}
	return []string{"GET " + rt.Pattern, "GET " + rt.Pattern + "/{$}"}
}

// ViewFunc renders a view with its path inputs.
type ViewFunc func(w http.ResponseWriter, r *http.Request, params map[string]string)

// NewHandler returns a ServeMux with a GET handler for every route whose view
// has an entry in views. Routes without a view are left unregistered and
// answer 404.
func NewHandler(views map[View]ViewFunc) *http.ServeMux {
	mux := http.NewServeMux()
	for _, rt := range Routes {
		render, ok := views[rt.View]
		if !ok {
			continue
		}
		names := rt.params()
		handler := func(w http.ResponseWriter, r *http.Request) {
			params := make(map[string]string, len(names))
			for _, name := range names {
				params[name] = r.PathValue(name)
			}
			render(w, r, params)
		}
		for _, pattern := range rt.muxPatterns() {
			mux.HandleFunc(pattern, handler)
		}
	}
	return mux
}
