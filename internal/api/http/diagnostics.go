package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/realestate-cinematic/cinematic-backend/internal/storage/docstore"
)

const (
	maxDiagnosticCollections = 10
	maxDiagnosticErrorLen    = 50
)

// DiagnosticsResponse summarises store connectivity. It is always returned
// with 200; failures are reported in the Database field.
type DiagnosticsResponse struct {
	Backend          string   `json:"backend"`
	Database         string   `json:"database"`
	DatabaseURL      string   `json:"database_url"`
	DatabaseName     string   `json:"database_name,omitempty"`
	ConnectionStatus string   `json:"connection_status"`
	Collections      []string `json:"collections"`
}

type DiagnosticsHandler struct {
	store          docstore.Store
	databaseURLSet bool
}

func NewDiagnosticsHandler(store docstore.Store, databaseURLSet bool) *DiagnosticsHandler {
	return &DiagnosticsHandler{store: store, databaseURLSet: databaseURLSet}
}

func (h *DiagnosticsHandler) Diagnostics(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	c.JSON(http.StatusOK, h.probe(ctx))
}

func (h *DiagnosticsHandler) probe(ctx context.Context) (resp DiagnosticsResponse) {
	resp = DiagnosticsResponse{
		Backend:          "running",
		Database:         "not available",
		DatabaseURL:      "not set",
		ConnectionStatus: "not connected",
		Collections:      []string{},
	}
	if h.databaseURLSet {
		resp.DatabaseURL = "set"
	}

	defer func() {
		if r := recover(); r != nil {
			resp.Database = truncate("error: "+toString(r), maxDiagnosticErrorLen)
		}
	}()

	if h.store == nil {
		resp.Database = "available but not initialized"
		return resp
	}

	resp.Database = "available"
	resp.DatabaseName = h.store.Name()
	resp.ConnectionStatus = "connected"

	names, err := h.store.Collections(ctx)
	if err != nil {
		resp.Database = "connected but error: " + truncate(err.Error(), maxDiagnosticErrorLen)
		return resp
	}
	if len(names) > maxDiagnosticCollections {
		names = names[:maxDiagnosticCollections]
	}
	resp.Collections = names
	resp.Database = "connected and working"
	return resp
}

func (h *DiagnosticsHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/test", h.Diagnostics)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func toString(v any) string {
	switch t := v.(type) {
	case error:
		return t.Error()
	case string:
		return t
	}
	return "unexpected failure"
}
