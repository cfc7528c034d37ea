package web

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/JonMunkholm/petclinic-export/internal/export"
)

// exportContext assigns a fresh export id to the request and bounds the run
// by the configured request timeout.
func (s *Server) exportContext(r *http.Request) (context.Context, context.CancelFunc, string) {
	id := uuid.NewString()
	ctx := export.ContextWithExportID(r.Context(), id)
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Server.RequestTimeout)
	return ctx, cancel, id
}
