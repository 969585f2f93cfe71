package api

import (
	"net/http"

	"github.com/ignite/assoc-admin/internal/export"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/pkg/httputil"
)

// PublicSpecialists lists visible specialists without contact details.
func (h *Handlers) PublicSpecialists(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Specialists.PublicList(r.Context(), listing.FromRequest(r))
	if err != nil {
		respondError(w, r, "load specialists", err)
		return
	}
	httputil.OK(w, page)
}

func (h *Handlers) ListSpecialists(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Specialists.List(r.Context(), listing.FromRequest(r))
	if err != nil {
		respondError(w, r, "load specialists", err)
		return
	}
	httputil.OK(w, page)
}

func (h *Handlers) ExportSpecialists(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Specialists.Export(r.Context(), listing.FromRequest(r))
	if err != nil {
		respondError(w, r, "export specialists", err)
		return
	}
	writeCSV(h, w, "specialists", export.SpecialistColumns, rows)
}

func (h *Handlers) GetSpecialist(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Specialists.Get(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, "load the specialist", err)
		return
	}
	httputil.OK(w, s)
}

type visibilityRequest struct {
	Visible *bool `json:"visible"`
}

// SetSpecialistVisibility shows or hides a specialist in the public directory.
func (h *Handlers) SetSpecialistVisibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Visible == nil {
		writeError(w, http.StatusBadRequest, "invalid", "visible is required")
		return
	}
	if err := h.svc.Specialists.SetVisibility(r.Context(), idParam(r), *req.Visible); err != nil {
		respondError(w, r, "update the specialist", err)
		return
	}
	if *req.Visible {
		httputil.Success(w, "Specialist is now visible", nil)
		return
	}
	httputil.Success(w, "Specialist is now hidden", nil)
}

func (h *Handlers) DeleteSpecialist(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Specialists.Delete(r.Context(), idParam(r)); err != nil {
		respondError(w, r, "delete the specialist", err)
		return
	}
	httputil.Success(w, "Specialist deleted", nil)
}
