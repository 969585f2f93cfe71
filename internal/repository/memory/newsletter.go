package memory

import (
	"context"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
)

// NewsletterRepo implements newsletter.Repository in memory.
type NewsletterRepo struct{ s *Store }

func (r *NewsletterRepo) List(_ context.Context, q listing.Query) (listing.Page[domain.Newsletter], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := newestFirst(r.s.newsletters,
		func(n domain.Newsletter) time.Time { return n.CreatedAt },
		func(n domain.Newsletter) string { return n.ID })
	return listing.Apply(rows, q, newsletterFields), nil
}

func (r *NewsletterRepo) Get(_ context.Context, id string) (*domain.Newsletter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.newsletters[id]
	if !ok {
		return nil, newsletter.ErrNotFound
	}
	return &n, nil
}

func (r *NewsletterRepo) Create(_ context.Context, n *domain.Newsletter) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.newsletters[n.ID] = *n
	r.s.changed(tblNewsletters, opInsert, n.ID)
	return nil
}

func (r *NewsletterRepo) Update(_ context.Context, id string, u newsletter.UpdateFields) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.newsletters[id]
	if !ok {
		return newsletter.ErrNotFound
	}
	if n.Status != domain.NewsletterDraft {
		return newsletter.ErrInvalidTransition
	}
	if u.Title != nil {
		n.Title = *u.Title
	}
	if u.Subject != nil {
		n.Subject = *u.Subject
	}
	if u.Content != nil {
		n.Content = *u.Content
	}
	n.UpdatedAt = r.s.now().UTC()
	r.s.newsletters[id] = n
	r.s.changed(tblNewsletters, opUpdate, id)
	return nil
}

func (r *NewsletterRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.newsletters[id]
	if !ok {
		return newsletter.ErrNotFound
	}
	if n.Status == domain.NewsletterSent {
		return newsletter.ErrAlreadySent
	}
	delete(r.s.newsletters, id)
	r.s.changed(tblNewsletters, opDelete, id)
	return nil
}

func (r *NewsletterRepo) Schedule(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.newsletters[id]
	if !ok {
		return newsletter.ErrNotFound
	}
	if n.Status == domain.NewsletterSent {
		return newsletter.ErrAlreadySent
	}
	n.Status = domain.NewsletterScheduled
	n.ScheduledAt = &at
	n.UpdatedAt = r.s.now().UTC()
	r.s.newsletters[id] = n
	r.s.changed(tblNewsletters, opUpdate, id)
	return nil
}

func (r *NewsletterRepo) Unschedule(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.newsletters[id]
	if !ok {
		return newsletter.ErrNotFound
	}
	if n.Status != domain.NewsletterScheduled {
		return newsletter.ErrInvalidTransition
	}
	n.Status = domain.NewsletterDraft
	n.ScheduledAt = nil
	n.UpdatedAt = r.s.now().UTC()
	r.s.newsletters[id] = n
	r.s.changed(tblNewsletters, opUpdate, id)
	return nil
}

func (r *NewsletterRepo) MarkSent(_ context.Context, id string, at time.Time, recipients, failed int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.newsletters[id]
	if !ok {
		return newsletter.ErrNotFound
	}
	if n.Status == domain.NewsletterSent {
		return newsletter.ErrAlreadySent
	}
	n.Status = domain.NewsletterSent
	n.SentAt = &at
	n.RecipientCount = recipients
	n.FailedCount = failed
	n.UpdatedAt = at
	r.s.newsletters[id] = n
	r.s.changed(tblNewsletters, opUpdate, id)
	return nil
}

func (r *NewsletterRepo) Due(_ context.Context, now time.Time) ([]domain.Newsletter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Newsletter{}
	rows := newestFirst(r.s.newsletters,
		func(n domain.Newsletter) time.Time { return n.CreatedAt },
		func(n domain.Newsletter) string { return n.ID })
	for i := len(rows) - 1; i >= 0; i-- {
		n := rows[i]
		if n.Status == domain.NewsletterScheduled && n.ScheduledAt != nil && !n.ScheduledAt.After(now) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *NewsletterRepo) CountByStatus(_ context.Context) (map[domain.NewsletterStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[domain.NewsletterStatus]int{
		domain.NewsletterDraft:     0,
		domain.NewsletterScheduled: 0,
		domain.NewsletterSent:      0,
	}
	for _, n := range r.s.newsletters {
		out[n.Status]++
	}
	return out, nil
}
