package ratelimit

import (
	"strings"
	"time"
)

// Route limits requests to one mux pattern. Pattern uses the ServeMux
// wildcard syntax: "{id}" matches one segment. Routes sharing a Group draw
// from one bucket per client; otherwise each route has its own.
type Route struct {
	Method  string
	Pattern string
	Group   string
	// Limit is requests per Window. Zero exempts the route.
	Limit  int
	Window time.Duration
	Burst  int
}

// Exempt reports whether the route is never limited.
func (r *Route) Exempt() bool {
	return r.Limit <= 0 || r.Window <= 0
}

func (r *Route) bucketName() string {
	if r.Group != "" {
		return r.Group
	}
	return r.Method + " " + r.Pattern
}

func (r *Route) matches(method, path string) bool {
	if r.Method != method {
		return false
	}
	want := strings.Split(strings.Trim(r.Pattern, "/"), "/")
	got := strings.Split(strings.Trim(path, "/"), "/")
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}

// Match returns the first route for method and path, or nil.
func Match(routes []Route, method, path string) *Route {
	for i := range routes {
		if routes[i].matches(method, path) {
			return &routes[i]
		}
	}
	return nil
}

// DefaultRoutes covers the expensive and the write routes of the report
// server. Health checks and public report links are exempt.
func DefaultRoutes() []Route {
	const (
		generation = "wizard-generation"
		warRoom    = "war-room"
	)
	return []Route{
		{Method: "GET", Pattern: "/health"},
		{Method: "GET", Pattern: "/report/{code}"},

		{Method: "POST", Pattern: "/wizard/{analysis_id}/generate", Group: generation, Limit: 60, Window: time.Hour, Burst: 5},
		{Method: "POST", Pattern: "/wizard/{analysis_id}/refine", Group: generation, Limit: 60, Window: time.Hour, Burst: 5},
		{Method: "POST", Pattern: "/wizard/{analysis_id}/retry", Group: generation, Limit: 60, Window: time.Hour, Burst: 5},

		{Method: "POST", Pattern: "/submissions/{id}/stage", Limit: 30, Window: time.Minute, Burst: 5},
		{Method: "GET", Pattern: "/submissions/{id}/report.pdf", Limit: 10, Window: time.Minute, Burst: 2},

		{Method: "PUT", Pattern: "/submissions/{id}/frameworks/{key}", Group: warRoom, Limit: 120, Window: time.Minute, Burst: 20},
		{Method: "DELETE", Pattern: "/submissions/{id}/frameworks/{key}", Group: warRoom, Limit: 120, Window: time.Minute, Burst: 20},
		{Method: "POST", Pattern: "/submissions/{id}/swot/{quadrant}/items", Group: warRoom, Limit: 120, Window: time.Minute, Burst: 20},
		{Method: "PUT", Pattern: "/submissions/{id}/swot/{quadrant}/items/{index}", Group: warRoom, Limit: 120, Window: time.Minute, Burst: 20},
		{Method: "DELETE", Pattern: "/submissions/{id}/swot/{quadrant}/items/{index}", Group: warRoom, Limit: 120, Window: time.Minute, Burst: 20},

		{Method: "POST", Pattern: "/analyses/{id}/share", Limit: 30, Window: time.Minute, Burst: 5},
		{Method: "POST", Pattern: "/analyses/{id}/blur", Limit: 30, Window: time.Minute, Burst: 5},
	}
}
