package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/assoc-admin/internal/auth"
	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/export"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/pkg/httputil"
	"github.com/ignite/assoc-admin/internal/service/application"
)

// kindParam reads {kind}. It writes a 404 and returns false for unknown kinds.
func kindParam(w http.ResponseWriter, r *http.Request) (domain.ApplicationKind, bool) {
	kind := domain.ApplicationKind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		respondError(w, r, "load applications", application.ErrInvalidKind)
		return "", false
	}
	return kind, true
}

// ListApplications returns one page of applications of a kind.
func (h *Handlers) ListApplications(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	q := listing.FromRequest(r)
	var (
		page any
		err  error
	)
	switch kind {
	case domain.KindMembership:
		page, err = h.svc.Applications.ListMembership(r.Context(), q)
	case domain.KindSpecialist:
		page, err = h.svc.Applications.ListSpecialist(r.Context(), q)
	}
	if err != nil {
		respondError(w, r, "load applications", err)
		return
	}
	httputil.OK(w, page)
}

// ExportApplications streams every matching application as CSV.
func (h *Handlers) ExportApplications(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	q := listing.FromRequest(r).All()
	switch kind {
	case domain.KindMembership:
		page, err := h.svc.Applications.ListMembership(r.Context(), q)
		if err != nil {
			respondError(w, r, "export applications", err)
			return
		}
		writeCSV(h, w, "membership-applications", export.MembershipApplicationColumns, page.Items)
	case domain.KindSpecialist:
		page, err := h.svc.Applications.ListSpecialist(r.Context(), q)
		if err != nil {
			respondError(w, r, "export applications", err)
			return
		}
		writeCSV(h, w, "specialist-applications", export.SpecialistApplicationColumns, page.Items)
	}
}

// GetApplication returns one application.
func (h *Handlers) GetApplication(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var (
		app any
		err error
	)
	switch kind {
	case domain.KindMembership:
		app, err = h.svc.Applications.GetMembership(r.Context(), idParam(r))
	case domain.KindSpecialist:
		app, err = h.svc.Applications.GetSpecialist(r.Context(), idParam(r))
	}
	if err != nil {
		respondError(w, r, "load the application", err)
		return
	}
	httputil.OK(w, app)
}

// ApplicationCounts returns pending/approved/rejected totals.
func (h *Handlers) ApplicationCounts(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	counts, err := h.svc.Applications.Counts(r.Context(), kind)
	if err != nil {
		respondError(w, r, "count applications", err)
		return
	}
	httputil.OK(w, counts)
}

// ApproveApplication approves a pending application and creates its
// directory row.
func (h *Handlers) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	approval, err := h.svc.Applications.Approve(r.Context(), kind, idParam(r), auth.Actor(r.Context()))
	if err != nil {
		respondError(w, r, "approve the application", err)
		return
	}
	httputil.Success(w, "Application approved", approval)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

// RejectApplication rejects a pending application.
func (h *Handlers) RejectApplication(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	if err := h.svc.Applications.Reject(r.Context(), kind, idParam(r), auth.Actor(r.Context()), req.Reason); err != nil {
		respondError(w, r, "reject the application", err)
		return
	}
	httputil.Success(w, "Application rejected", nil)
}

// DeleteApplication removes an application.
func (h *Handlers) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Applications.Delete(r.Context(), kind, idParam(r)); err != nil {
		respondError(w, r, "delete the application", err)
		return
	}
	httputil.Success(w, "Application deleted", nil)
}
