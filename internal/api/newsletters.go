package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/assoc-admin/internal/auth"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/pkg/httputil"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
)

func (h *Handlers) ListNewsletters(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Newsletters.List(r.Context(), listing.FromRequest(r))
	if err != nil {
		respondError(w, r, "load newsletters", err)
		return
	}
	httputil.OK(w, page)
}

func (h *Handlers) GetNewsletter(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Newsletters.Get(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, "load the newsletter", err)
		return
	}
	httputil.OK(w, n)
}

func (h *Handlers) CreateNewsletter(w http.ResponseWriter, r *http.Request) {
	var in newsletter.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	in.CreatedBy = auth.Actor(r.Context())
	n, err := h.svc.Newsletters.Create(r.Context(), in)
	if err != nil {
		respondError(w, r, "create the newsletter", err)
		return
	}
	httputil.Notify(w, http.StatusCreated, httputil.NoticeSuccess, "Newsletter created", n)
}

func (h *Handlers) UpdateNewsletter(w http.ResponseWriter, r *http.Request) {
	var u newsletter.UpdateFields
	if !httputil.Decode(w, r, &u) {
		return
	}
	if err := h.svc.Newsletters.Update(r.Context(), idParam(r), u); err != nil {
		respondError(w, r, "update the newsletter", err)
		return
	}
	httputil.Success(w, "Newsletter saved", nil)
}

func (h *Handlers) DeleteNewsletter(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Newsletters.Delete(r.Context(), idParam(r)); err != nil {
		respondError(w, r, "delete the newsletter", err)
		return
	}
	httputil.Success(w, "Newsletter deleted", nil)
}

type previewResponse struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// PreviewNewsletter renders the newsletter for a sample recipient.
func (h *Handlers) PreviewNewsletter(w http.ResponseWriter, r *http.Request) {
	subject, body, err := h.svc.Newsletters.Preview(r.Context(), idParam(r))
	if err != nil {
		respondError(w, r, "preview the newsletter", err)
		return
	}
	httputil.OK(w, previewResponse{Subject: subject, HTML: body})
}

type scheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

func (h *Handlers) ScheduleNewsletter(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := h.svc.Newsletters.Schedule(r.Context(), idParam(r), req.ScheduledAt); err != nil {
		respondError(w, r, "schedule the newsletter", err)
		return
	}
	httputil.Success(w, "Newsletter scheduled for "+req.ScheduledAt.UTC().Format("2006-01-02 15:04 UTC"), nil)
}

func (h *Handlers) UnscheduleNewsletter(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Newsletters.Unschedule(r.Context(), idParam(r)); err != nil {
		respondError(w, r, "unschedule the newsletter", err)
		return
	}
	httputil.Success(w, "Newsletter moved back to draft", nil)
}

// SendNewsletter sends to every active subscriber.
func (h *Handlers) SendNewsletter(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Newsletters.Send(r.Context(), idParam(r), newsletter.SendOptions{})
	if err != nil {
		respondError(w, r, "send the newsletter", err)
		return
	}
	if report.Failed > 0 {
		httputil.Notify(w, http.StatusOK, httputil.NoticeInfo,
			fmt.Sprintf("Newsletter sent to %d subscribers, %d failed", report.Sent, report.Failed), report)
		return
	}
	httputil.Success(w, fmt.Sprintf("Newsletter sent to %d subscribers", report.Sent), report)
}

type testSendRequest struct {
	Email string `json:"email"`
}

// SendTestNewsletter delivers one [TEST] copy and leaves the status alone.
func (h *Handlers) SendTestNewsletter(w http.ResponseWriter, r *http.Request) {
	var req testSendRequest
	if !decodeOptional(w, r, &req) {
		return
	}
	if req.Email == "" {
		if s := auth.FromContext(r.Context()); s != nil {
			req.Email = s.Email
		}
	}
	report, err := h.svc.Newsletters.Send(r.Context(), idParam(r), newsletter.SendOptions{TestMode: true, TestEmail: req.Email})
	if err != nil {
		respondError(w, r, "send the test email", err)
		return
	}
	httputil.Success(w, "Test email sent to "+req.Email, report)
}

type sendFunctionRequest struct {
	NewsletterID string `json:"newsletter_id"`
	TestMode     bool   `json:"test_mode"`
	TestEmail    string `json:"test_email"`
}

type sendFunctionResponse struct {
	Success bool   `json:"success"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Error   string `json:"error,omitempty"`
}

// SendNewsletterFunction is the machine endpoint behind
// POST /functions/v1/send-newsletter.
func (h *Handlers) SendNewsletterFunction(w http.ResponseWriter, r *http.Request) {
	var req sendFunctionRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.NewsletterID == "" {
		httputil.JSON(w, http.StatusBadRequest, sendFunctionResponse{Error: "newsletter_id is required"})
		return
	}
	report, err := h.svc.Newsletters.Send(r.Context(), req.NewsletterID, newsletter.SendOptions{
		TestMode:  req.TestMode,
		TestEmail: req.TestEmail,
	})
	if err != nil {
		status, _, msg := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error("send-newsletter function failed", "newsletter_id", req.NewsletterID, "error", err)
			msg = "Could not send the newsletter"
		}
		httputil.JSON(w, status, sendFunctionResponse{Error: msg})
		return
	}
	httputil.OK(w, sendFunctionResponse{Success: true, Sent: report.Sent, Failed: report.Failed})
}
