package api

import (
	"errors"
	"net/http"

	"github.com/ignite/assoc-admin/internal/pkg/httputil"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
	"github.com/ignite/assoc-admin/internal/service/application"
	"github.com/ignite/assoc-admin/internal/service/member"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
	"github.com/ignite/assoc-admin/internal/service/publication"
	"github.com/ignite/assoc-admin/internal/service/specialist"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
)

var log = logger.Named("api")

// errorMapping turns a service sentinel into a public response. An empty
// message exposes the wrapped error text, which for validation errors is
// written for end users.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorTable = []errorMapping{
	{application.ErrNotFound, http.StatusNotFound, "not_found", "Application not found"},
	{application.ErrInvalidKind, http.StatusNotFound, "not_found", "Unknown application type"},
	{application.ErrNotPending, http.StatusConflict, "not_pending", "Application has already been reviewed"},

	{member.ErrNotFound, http.StatusNotFound, "not_found", "Member not found"},
	{member.ErrValidation, http.StatusBadRequest, "invalid", ""},

	{specialist.ErrNotFound, http.StatusNotFound, "not_found", "Specialist not found"},

	{subscriber.ErrNotFound, http.StatusNotFound, "not_found", "Subscriber not found"},
	{subscriber.ErrInvalidEmail, http.StatusBadRequest, "invalid", "Please enter a valid email address"},

	{newsletter.ErrNotFound, http.StatusNotFound, "not_found", "Newsletter not found"},
	{newsletter.ErrValidation, http.StatusBadRequest, "invalid", ""},
	{newsletter.ErrInvalidTransition, http.StatusConflict, "invalid_transition", ""},
	{newsletter.ErrAlreadySent, http.StatusConflict, "already_sent", "Newsletter has already been sent"},
	{newsletter.ErrSendInProgress, http.StatusConflict, "send_in_progress", "Newsletter is already being sent"},
	{newsletter.ErrNoRecipients, http.StatusConflict, "no_recipients", "There are no active subscribers"},

	{publication.ErrNotFound, http.StatusNotFound, "not_found", "Publication not found"},
	{publication.ErrNoFile, http.StatusNotFound, "not_found", "Publication has no file"},
	{publication.ErrValidation, http.StatusBadRequest, "invalid", ""},
	{publication.ErrInvalidTransition, http.StatusConflict, "invalid_transition", ""},
}

// classify returns the status, code and public message for err.
func classify(err error) (int, string, string) {
	for _, m := range errorTable {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			return m.status, m.code, msg
		}
	}
	return http.StatusInternalServerError, "internal", ""
}

// respondError logs err and writes the mapped error notice. action names
// the failed operation for the generic 5xx message.
func respondError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status, code, msg := classify(err)
	if status >= http.StatusInternalServerError {
		log.Error(action+" failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "Could not " + action
	} else {
		log.Debug(action+" rejected", "path", r.URL.Path, "error", err)
	}
	writeError(w, status, code, msg)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	httputil.ErrorCode(w, status, code, message)
}
