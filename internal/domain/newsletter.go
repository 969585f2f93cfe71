package domain

import "time"

// NewsletterStatus enumerates the lifecycle states of a newsletter.
type NewsletterStatus string

const (
	NewsletterDraft     NewsletterStatus = "draft"
	NewsletterScheduled NewsletterStatus = "scheduled"
	NewsletterSent      NewsletterStatus = "sent"
)

// Newsletter is an email issue sent to every active subscriber. Content is
// a Liquid template rendered per recipient.
type Newsletter struct {
	ID             string           `json:"id" db:"id"`
	Title          string           `json:"title" db:"title"`
	Subject        string           `json:"subject" db:"subject"`
	Content        string           `json:"content" db:"content"`
	Status         NewsletterStatus `json:"status" db:"status"`
	ScheduledAt    *time.Time       `json:"scheduled_at,omitempty" db:"scheduled_at"`
	SentAt         *time.Time       `json:"sent_at,omitempty" db:"sent_at"`
	RecipientCount int              `json:"recipient_count" db:"recipient_count"`
	FailedCount    int              `json:"failed_count" db:"failed_count"`
	CreatedBy      string           `json:"created_by" db:"created_by"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// IsEditable reports whether content may still change.
func (n *Newsletter) IsEditable() bool {
	return n.Status == NewsletterDraft
}

// Subscriber is a newsletter recipient.
type Subscriber struct {
	ID               string     `json:"id" db:"id"`
	Email            string     `json:"email" db:"email"`
	FirstName        string     `json:"first_name" db:"first_name"`
	LastName         string     `json:"last_name" db:"last_name"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	UnsubscribeToken string     `json:"-" db:"unsubscribe_token"`
	SubscribedAt     time.Time  `json:"subscribed_at" db:"subscribed_at"`
	UnsubscribedAt   *time.Time `json:"unsubscribed_at,omitempty" db:"unsubscribed_at"`
}

// ActivityStatus maps IsActive onto the status filter vocabulary.
func (s Subscriber) ActivityStatus() string {
	if s.IsActive {
		return "active"
	}
	return "inactive"
}

// SendReport summarises one newsletter fan-out.
type SendReport struct {
	NewsletterID string `json:"newsletter_id"`
	TestMode     bool   `json:"test_mode"`
	Sent         int    `json:"sent"`
	Failed       int    `json:"failed"`
}
