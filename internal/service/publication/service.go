package publication

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/pkg/logger"
	"github.com/ignite/assoc-admin/internal/storage"
)

// Service implements publication review logic.
type Service struct {
	repo  Repository
	files FileStore
	feeds FeedFetcher
	now   func() time.Time
	log   *logger.Logger
}

// NewService creates a publication service. files and feeds may be nil when
// uploads or imports are not configured.
func NewService(repo Repository, files FileStore, feeds FeedFetcher) *Service {
	return &Service{repo: repo, files: files, feeds: feeds, now: time.Now, log: logger.Named("publication")}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List returns publications matching q.
func (s *Service) List(ctx context.Context, q listing.Query) (listing.Page[domain.Publication], error) {
	return s.repo.List(ctx, q.Normalize())
}

// Get returns a single publication.
func (s *Service) Get(ctx context.Context, id string) (*domain.Publication, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// CreateInput holds the fields for creating a publication draft.
type CreateInput struct {
	Title       string `json:"title"`
	Authors     string `json:"authors"`
	Abstract    string `json:"abstract"`
	Category    string `json:"category"`
	SourceURL   string `json:"source_url"`
	SubmittedBy string `json:"-"`
}

// Create stores a new draft.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Publication, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	now := s.now().UTC()
	p := &domain.Publication{
		ID:          uuid.New().String(),
		Title:       title,
		Authors:     strings.TrimSpace(in.Authors),
		Abstract:    strings.TrimSpace(in.Abstract),
		Category:    strings.TrimSpace(in.Category),
		SourceURL:   strings.TrimSpace(in.SourceURL),
		Status:      domain.PublicationDraft,
		SubmittedBy: in.SubmittedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create publication: %w", err)
	}
	return p, nil
}

// Delete removes a publication and its file.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete publication: %w", err)
	}
	if p.FileKey != "" && s.files != nil {
		if err := s.files.Delete(ctx, p.FileKey); err != nil {
			s.log.Warn("orphaned publication file", "id", id, "key", p.FileKey, "error", err)
		}
	}
	return nil
}

// Transition moves a publication to `to` if the lifecycle allows it.
func (s *Service) Transition(ctx context.Context, id string, to domain.PublicationStatus) error {
	from := domain.SourcesFor(to)
	if len(from) == 0 {
		return fmt.Errorf("%w: nothing moves to %q", ErrInvalidTransition, to)
	}
	if id == "" {
		return ErrNotFound
	}
	if err := s.repo.Transition(ctx, id, from, to, s.now().UTC()); err != nil {
		return fmt.Errorf("move publication to %s: %w", to, err)
	}
	s.log.Info("publication moved", "id", id, "status", to)
	return nil
}

// Submit sends a draft for review.
func (s *Service) Submit(ctx context.Context, id string) error {
	return s.Transition(ctx, id, domain.PublicationSubmitted)
}

// Approve accepts a submitted publication.
func (s *Service) Approve(ctx context.Context, id string) error {
	return s.Transition(ctx, id, domain.PublicationApproved)
}

// Reject declines a submitted publication.
func (s *Service) Reject(ctx context.Context, id string) error {
	return s.Transition(ctx, id, domain.PublicationRejected)
}

// Publish makes an approved publication public.
func (s *Service) Publish(ctx context.Context, id string) error {
	return s.Transition(ctx, id, domain.PublicationPublished)
}

// Archive retires a published publication.
func (s *Service) Archive(ctx context.Context, id string) error {
	return s.Transition(ctx, id, domain.PublicationArchived)
}

// Revise returns a rejected publication to draft for resubmission.
func (s *Service) Revise(ctx context.Context, id string) error {
	return s.Transition(ctx, id, domain.PublicationDraft)
}

// ReviewInput holds one reviewer note.
type ReviewInput struct {
	Reviewer string                `json:"-"`
	Decision domain.ReviewDecision `json:"decision"`
	Comments string                `json:"comments"`
}

// AddReview records a reviewer note. The decision is advisory; status only
// changes through the transition operations.
func (s *Service) AddReview(ctx context.Context, id string, in ReviewInput) (*domain.Review, error) {
	switch in.Decision {
	case "":
		in.Decision = domain.DecisionComment
	case domain.DecisionComment, domain.DecisionApprove, domain.DecisionReject:
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", ErrValidation, in.Decision)
	}
	comments := strings.TrimSpace(in.Comments)
	if comments == "" && in.Decision == domain.DecisionComment {
		return nil, fmt.Errorf("%w: comments are required", ErrValidation)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	r := &domain.Review{
		ID:            uuid.New().String(),
		PublicationID: id,
		Reviewer:      in.Reviewer,
		Decision:      in.Decision,
		Comments:      comments,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.repo.AddReview(ctx, r); err != nil {
		return nil, fmt.Errorf("add review: %w", err)
	}
	return r, nil
}

// Reviews lists the notes on a publication, oldest first.
func (s *Service) Reviews(ctx context.Context, id string) ([]domain.Review, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Reviews(ctx, id)
}

// AttachFile uploads the publication's file, replacing any previous one.
func (s *Service) AttachFile(ctx context.Context, id, filename, contentType string, body io.Reader) (string, error) {
	if s.files == nil {
		return "", fmt.Errorf("%w: file storage is not configured", ErrValidation)
	}
	p, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("%w: file name is required", ErrValidation)
	}
	key := path.Join("publications", id, uuid.New().String()[:8]+"-"+name)
	if err := s.files.Put(ctx, key, body, contentType); err != nil {
		return "", fmt.Errorf("store file: %w", err)
	}
	if err := s.repo.SetFile(ctx, id, key); err != nil {
		_ = s.files.Delete(ctx, key)
		return "", fmt.Errorf("attach file: %w", err)
	}
	if p.FileKey != "" && p.FileKey != key {
		if err := s.files.Delete(ctx, p.FileKey); err != nil {
			s.log.Warn("orphaned publication file", "id", id, "key", p.FileKey, "error", err)
		}
	}
	return key, nil
}

// OpenFile returns the publication's file. The caller closes the body.
func (s *Service) OpenFile(ctx context.Context, id string) (*storage.Object, string, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if p.FileKey == "" || s.files == nil {
		return nil, "", ErrNoFile
	}
	obj, err := s.files.Get(ctx, p.FileKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", ErrNoFile
	}
	if err != nil {
		return nil, "", err
	}
	return obj, path.Base(p.FileKey), nil
}

// ImportResult summarises a feed import.
type ImportResult struct {
	Created []string `json:"created"`
	Skipped int      `json:"skipped"`
}

// Import creates a draft for every feed entry whose link has not been
// imported before.
func (s *Service) Import(ctx context.Context, feedURL, importedBy string) (*ImportResult, error) {
	if s.feeds == nil {
		return nil, fmt.Errorf("%w: feed import is not configured", ErrValidation)
	}
	if !strings.HasPrefix(feedURL, "http://") && !strings.HasPrefix(feedURL, "https://") {
		return nil, fmt.Errorf("%w: feed url must be http or https", ErrValidation)
	}
	items, err := s.feeds.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	res := &ImportResult{Created: []string{}}
	for _, it := range items {
		source := it.Link
		if source == "" {
			source = it.GUID
		}
		if source == "" || strings.TrimSpace(it.Title) == "" {
			res.Skipped++
			continue
		}
		exists, err := s.repo.ExistsBySourceURL(ctx, source)
		if err != nil {
			return res, fmt.Errorf("check duplicate: %w", err)
		}
		if exists {
			res.Skipped++
			continue
		}
		category := ""
		if len(it.Categories) > 0 {
			category = it.Categories[0]
		}
		p, err := s.Create(ctx, CreateInput{
			Title:       it.Title,
			Authors:     strings.Join(it.Authors, ", "),
			Abstract:    it.Summary,
			Category:    category,
			SourceURL:   source,
			SubmittedBy: importedBy,
		})
		if err != nil {
			return res, err
		}
		res.Created = append(res.Created, p.ID)
	}
	s.log.Info("feed imported", "url", feedURL, "created", len(res.Created), "skipped", res.Skipped)
	return res, nil
}

// CountByStatus groups publications by status.
func (s *Service) CountByStatus(ctx context.Context) (map[domain.PublicationStatus]int, error) {
	return s.repo.CountByStatus(ctx)
}
