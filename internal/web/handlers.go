package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/petclinic-export/internal/export"
	"github.com/JonMunkholm/petclinic-export/internal/logging"
)

// handleExport streams one strategy's CSV. The body is only written once the
// export has fully succeeded, so errors still get a JSON response.
func (s *Server) handleExport(strategy export.Strategy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel, id := s.exportContext(r)
		defer cancel()
		w.Header().Set("X-Export-ID", id)

		if err := s.limiter.Acquire(ctx); err != nil {
			s.respondError(w, r, err)
			return
		}
		defer s.limiter.Release()

		out := &csvResponse{ResponseWriter: w, filename: "pets-" + string(strategy) + ".csv"}
		if _, err := s.exporter.Export(ctx, strategy, out); err != nil {
			if out.wrote {
				logging.FromContext(ctx).Error("export failed after response started",
					"export_id", id,
					"error", err,
				)
				return
			}
			s.respondError(w, r, err)
		}
	}
}

// handleExportByName resolves /export/{strategy}.
func (s *Server) handleExportByName(w http.ResponseWriter, r *http.Request) {
	strategy, err := export.ParseStrategy(chi.URLParam(r, "strategy"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.handleExport(strategy)(w, r)
}

// handleIndex lists the export links.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexPage(s.exporter.Layout(), exportLinks()).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status   string               `json:"status"`
	Database string               `json:"database"`
	Exports  export.LimiterStatus `json:"exports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "ok", Exports: s.limiter.Status()}
	status := http.StatusOK
	if err := s.db.Ping(ctx); err != nil {
		logging.FromContext(ctx).Warn("health check: database ping failed", "error", err)
		resp.Status = "degraded"
		resp.Database = export.MapError(err).Code
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// csvResponse sets the CSV headers on the first write.
type csvResponse struct {
	http.ResponseWriter
	filename string
	wrote    bool
}

func (c *csvResponse) Write(p []byte) (int, error) {
	if !c.wrote {
		c.wrote = true
		h := c.Header()
		h.Set("Content-Type", "text/csv; charset=utf-8")
		h.Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, c.filename))
		c.WriteHeader(http.StatusOK)
	}
	return c.ResponseWriter.Write(p)
}
