package request

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routePattern returns the matched chi pattern so metrics keep a bounded label set.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
