package memory

import (
	"context"
	"slices"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/publication"
)

// PublicationRepo implements publication.Repository in memory.
type PublicationRepo struct{ s *Store }

func (r *PublicationRepo) List(_ context.Context, q listing.Query) (listing.Page[domain.Publication], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := newestFirst(r.s.publications,
		func(p domain.Publication) time.Time { return p.CreatedAt },
		func(p domain.Publication) string { return p.ID })
	return listing.Apply(rows, q, publicationFields), nil
}

func (r *PublicationRepo) Get(_ context.Context, id string) (*domain.Publication, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.publications[id]
	if !ok {
		return nil, publication.ErrNotFound
	}
	return &p, nil
}

func (r *PublicationRepo) Create(_ context.Context, p *domain.Publication) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.publications[p.ID] = *p
	r.s.changed(tblPublications, opInsert, p.ID)
	return nil
}

func (r *PublicationRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.publications[id]; !ok {
		return publication.ErrNotFound
	}
	delete(r.s.publications, id)
	kept := r.s.reviews[:0]
	for _, rv := range r.s.reviews {
		if rv.PublicationID != id {
			kept = append(kept, rv)
		}
	}
	r.s.reviews = kept
	r.s.changed(tblPublications, opDelete, id)
	return nil
}

func (r *PublicationRepo) Transition(_ context.Context, id string, from []domain.PublicationStatus, to domain.PublicationStatus, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.publications[id]
	if !ok {
		return publication.ErrNotFound
	}
	if !slices.Contains(from, p.Status) {
		return publication.ErrInvalidTransition
	}
	p.Status = to
	p.UpdatedAt = at
	switch to {
	case domain.PublicationSubmitted:
		p.SubmittedAt = &at
	case domain.PublicationApproved, domain.PublicationRejected:
		p.ReviewedAt = &at
	case domain.PublicationPublished:
		p.PublishedAt = &at
	case domain.PublicationArchived:
		p.ArchivedAt = &at
	}
	r.s.publications[id] = p
	r.s.changed(tblPublications, opUpdate, id)
	return nil
}

func (r *PublicationRepo) SetFile(_ context.Context, id, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.publications[id]
	if !ok {
		return publication.ErrNotFound
	}
	p.FileKey = key
	r.s.publications[id] = p
	r.s.changed(tblPublications, opUpdate, id)
	return nil
}

func (r *PublicationRepo) ExistsBySourceURL(_ context.Context, url string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.publications {
		if p.SourceURL == url {
			return true, nil
		}
	}
	return false, nil
}

func (r *PublicationRepo) CountByStatus(_ context.Context) (map[domain.PublicationStatus]int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := map[domain.PublicationStatus]int{}
	for _, st := range []domain.PublicationStatus{
		domain.PublicationDraft, domain.PublicationSubmitted, domain.PublicationApproved,
		domain.PublicationRejected, domain.PublicationPublished, domain.PublicationArchived,
	} {
		out[st] = 0
	}
	for _, p := range r.s.publications {
		out[p.Status]++
	}
	return out, nil
}

func (r *PublicationRepo) AddReview(_ context.Context, rv *domain.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.publications[rv.PublicationID]; !ok {
		return publication.ErrNotFound
	}
	r.s.reviews = append(r.s.reviews, *rv)
	r.s.changed(tblReviews, opInsert, rv.ID)
	return nil
}

func (r *PublicationRepo) Reviews(_ context.Context, publicationID string) ([]domain.Review, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Review{}
	for _, rv := range r.s.reviews {
		if rv.PublicationID == publicationID {
			out = append(out, rv)
		}
	}
	return out, nil
}
