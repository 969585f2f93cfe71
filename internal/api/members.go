package api

import (
	"net/http"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/export"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/pkg/httputil"
	"github.com/ignite/assoc-admin/internal/service/member"
)

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Members.List(r.Context(), listing.FromRequest(r))
	if err != nil {
		respondError(w, r, "load members", err)
		return
	}
	httputil.OK(w, page)
}

func (h *Handlers) MemberStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Members.Stats(r.Context())
	if err != nil {
		respondError(w, r, "load member statistics", err)
		return
	}
	httputil.OK(w, stats)
}

// ExportMembers streams the filtered directory as CSV.
func (h *Handlers) ExportMembers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Members.Export(r.Context(), listing.FromRequest(r))
	if err != nil {
		respondError(w, r, "export members", err)
		return
	}
	writeCSV(h, w, "members", export.MemberColumns, rows)
}

func (h *Handlers) GetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Members.Get(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, "load the member", err)
		return
	}
	httputil.OK(w, m)
}

func (h *Handlers) ListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.Members.Payments(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, "load payments", err)
		return
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	httputil.OK(w, payments)
}

type paymentResponse struct {
	Payment    *domain.Payment `json:"payment"`
	ExpiryDate time.Time       `json:"expiry_date"`
}

// RecordPayment stores a payment and renews the membership.
func (h *Handlers) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var in member.PaymentInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	p, expiry, err := h.svc.Members.RecordPayment(r.Context(), idParam(r), in)
	if err != nil {
		respondError(w, r, "record the payment", err)
		return
	}
	httputil.Notify(w, http.StatusCreated, httputil.NoticeSuccess,
		"Payment recorded, membership renewed until "+expiry.Format("2006-01-02"),
		paymentResponse{Payment: p, ExpiryDate: expiry})
}
