package domain

import "time"

// PublicationStatus enumerates the review lifecycle of a publication.
type PublicationStatus string

const (
	PublicationDraft     PublicationStatus = "draft"
	PublicationSubmitted PublicationStatus = "submitted"
	PublicationApproved  PublicationStatus = "approved"
	PublicationRejected  PublicationStatus = "rejected"
	PublicationPublished PublicationStatus = "published"
	PublicationArchived  PublicationStatus = "archived"
)

// publicationTransitions lists the allowed next states for each state.
var publicationTransitions = map[PublicationStatus][]PublicationStatus{
	PublicationDraft:     {PublicationSubmitted},
	PublicationSubmitted: {PublicationApproved, PublicationRejected},
	PublicationApproved:  {PublicationPublished},
	PublicationRejected:  {PublicationDraft},
	PublicationPublished: {PublicationArchived},
}

// CanTransition reports whether a publication may move from one status to another.
func CanTransition(from, to PublicationStatus) bool {
	for _, next := range publicationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SourcesFor returns every status that may transition into to.
func SourcesFor(to PublicationStatus) []PublicationStatus {
	var out []PublicationStatus
	for _, from := range []PublicationStatus{
		PublicationDraft, PublicationSubmitted, PublicationApproved,
		PublicationRejected, PublicationPublished, PublicationArchived,
	} {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// Publication is an article or paper going through editorial review.
type Publication struct {
	ID          string            `json:"id" db:"id"`
	Title       string            `json:"title" db:"title"`
	Authors     string            `json:"authors" db:"authors"`
	Abstract    string            `json:"abstract" db:"abstract"`
	Category    string            `json:"category" db:"category"`
	FileKey     string            `json:"file_key,omitempty" db:"file_key"`
	SourceURL   string            `json:"source_url,omitempty" db:"source_url"`
	Status      PublicationStatus `json:"status" db:"status"`
	SubmittedBy string            `json:"submitted_by" db:"submitted_by"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty" db:"submitted_at"`
	ReviewedAt  *time.Time        `json:"reviewed_at,omitempty" db:"reviewed_at"`
	PublishedAt *time.Time        `json:"published_at,omitempty" db:"published_at"`
	ArchivedAt  *time.Time        `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// ReviewDecision is the outcome recorded by a reviewer.
type ReviewDecision string

const (
	DecisionComment ReviewDecision = "comment"
	DecisionApprove ReviewDecision = "approve"
	DecisionReject  ReviewDecision = "reject"
)

// Review is one reviewer's note on a publication.
type Review struct {
	ID            string         `json:"id" db:"id"`
	PublicationID string         `json:"publication_id" db:"publication_id"`
	Reviewer      string         `json:"reviewer" db:"reviewer"`
	Decision      ReviewDecision `json:"decision" db:"decision"`
	Comments      string         `json:"comments" db:"comments"`
	CreatedAt     time.Time      `json:"created_at" db:"created_at"`
}
