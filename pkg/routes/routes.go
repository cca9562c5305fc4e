// Package routes describes handler endpoints as data so domain packages can
// declare their routes without owning a mux.
package routes

import "net/http"

// Route binds a method and a path pattern, relative to its group prefix,
// to a handler. An empty Pattern addresses the prefix itself.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}

// Group is a set of routes sharing a path prefix.
type Group struct {
	Prefix string
	Routes []Route
}

// Patterns returns the ServeMux patterns the group registers, in order.
func (g Group) Patterns() []string {
	patterns := make([]string, len(g.Routes))
	for i, r := range g.Routes {
		patterns[i] = r.Method + " " + g.Prefix + r.Pattern
	}
	return patterns
}

// Register adds every route of the groups to mux and returns the patterns
// registered. Conflicting patterns panic, as with http.ServeMux.
func Register(mux *http.ServeMux, groups ...Group) []string {
	var registered []string
	for _, g := range groups {
		for i, pattern := range g.Patterns() {
			mux.HandleFunc(pattern, g.Routes[i].Handler)
			registered = append(registered, pattern)
		}
	}
	return registered
}
