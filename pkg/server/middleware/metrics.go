package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// RequestObserver receives one observation per completed request.
// Implemented by pkg/metrics.
type RequestObserver interface {
	ObserveRequest(view, status string, elapsed time.Duration)
}

// Metrics records request durations labelled by view and status code.
// Requests outside the view routes are labelled with the route pattern.
func Metrics(observer RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww, ok := w.(chimiddleware.WrapResponseWriter)
			if !ok {
				ww = chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
			}

			start := time.Now()
			next.ServeHTTP(ww, req)

			view := chi.URLParam(req, "view")
			if view == "" {
				if rctx := chi.RouteContext(req.Context()); rctx != nil {
					view = rctx.RoutePattern()
				}
			}
			observer.ObserveRequest(view, strconv.Itoa(ww.Status()), time.Since(start))
		})
	}
}
