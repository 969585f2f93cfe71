package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/assoc-admin/internal/export"
	"github.com/ignite/assoc-admin/internal/pkg/httputil"
)

// Handlers holds the HTTP handlers. Every handler uses the request
// context, so a client disconnect cancels its backend calls.
type Handlers struct {
	svc       Services
	maxUpload int64
	now       func() time.Time
}

func (h *Handlers) clock() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

// decodeOptional decodes a JSON body when one was sent.
func decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return true
	}
	return httputil.Decode(w, r, dst)
}

func idParam(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// writeCSV streams rows as an attachment named after prefix and today.
func writeCSV[T any](h *Handlers, w http.ResponseWriter, prefix string, cols []export.Column[T], rows []T) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(prefix, h.clock())))
	if err := export.Write(w, cols, rows); err != nil {
		log.Error("csv export failed", "export", prefix, "error", err)
	}
}

// GetDashboard returns the admin home page summary.
func (h *Handlers) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard.Get(r.Context())
	if err != nil {
		respondError(w, r, "load the dashboard", err)
		return
	}
	httputil.OK(w, d)
}
