package handler

import (
	"context"
	"net/http"

	"github.com/martin5169/financial-dashboard/internal/adapter/http/dto"
	"github.com/martin5169/financial-dashboard/internal/usecase"
)

// DebugService defines the behavior needed by DebugHandler.
type DebugService interface {
	CheckConnection(ctx context.Context) usecase.ConnectionReport
	Session(ctx context.Context) usecase.SessionReport
}

// DebugHandler serves the session and connection diagnostics.
type DebugHandler struct {
	debugUC DebugService
}

// NewDebugHandler creates a new DebugHandler.
func NewDebugHandler(debugUC DebugService) *DebugHandler {
	return &DebugHandler{debugUC: debugUC}
}

// Session reports the scope the caller's requests resolve to.
func (h *DebugHandler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.SessionFromReport(h.debugUC.Session(r.Context())))
}

// Connection pings the data backend. A failed ping is still a 200: the
// report carries the error.
func (h *DebugHandler) Connection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ConnectionFromReport(h.debugUC.CheckConnection(r.Context())))
}
