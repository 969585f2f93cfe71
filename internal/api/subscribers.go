package api

import (
	"net/http"
	"strings"

	"github.com/ignite/assoc-admin/internal/export"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/pkg/httputil"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
)

func (h *Handlers) ListSubscribers(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Subscribers.List(r.Context(), listing.FromRequest(r))
	if err != nil {
		respondError(w, r, "load subscribers", err)
		return
	}
	httputil.OK(w, page)
}

func (h *Handlers) ExportSubscribers(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Subscribers.Export(r.Context(), listing.FromRequest(r))
	if err != nil {
		respondError(w, r, "export subscribers", err)
		return
	}
	writeCSV(h, w, "subscribers", export.SubscriberColumns, rows)
}

func (h *Handlers) DeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Subscribers.Delete(r.Context(), idParam(r)); err != nil {
		respondError(w, r, "delete the subscriber", err)
		return
	}
	httputil.Success(w, "Subscriber deleted", nil)
}

// Subscribe adds an address from the public form. Repeating it is harmless.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	var in subscriber.SubscribeInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	sub, created, err := h.svc.Subscribers.Subscribe(r.Context(), in)
	if err != nil {
		respondError(w, r, "subscribe", err)
		return
	}
	body := map[string]string{"email": sub.Email}
	if created {
		httputil.Notify(w, http.StatusCreated, httputil.NoticeSuccess, "Thanks for subscribing", body)
		return
	}
	httputil.Notify(w, http.StatusOK, httputil.NoticeInfo, "You are subscribed", body)
}

// Unsubscribe deactivates the subscriber owning ?token=.
func (h *Handlers) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "invalid", "token is required")
		return
	}
	if _, err := h.svc.Subscribers.Unsubscribe(r.Context(), token); err != nil {
		respondError(w, r, "unsubscribe", err)
		return
	}
	httputil.Success(w, "You have been unsubscribed", nil)
}
