package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	savesHandler "saveedit/internal/saves/handler"
	"saveedit/pkg/platform/httputil"
)

// NewRouter wires all public endpoints. Domain handlers register their own
// routes and middleware chains; only cross-cutting endpoints live here.
func NewRouter(saves *savesHandler.Handler) http.Handler {
	r := chi.NewRouter()

	saves.Register(r)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
