package memory

import (
	"context"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/specialist"
)

// SpecialistRepo implements specialist.Repository in memory.
type SpecialistRepo struct{ s *Store }

func (r *SpecialistRepo) List(_ context.Context, q listing.Query) (listing.Page[domain.Specialist], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := newestFirst(r.s.specialists,
		func(s domain.Specialist) time.Time { return s.CreatedAt },
		func(s domain.Specialist) string { return s.ID })
	return listing.Apply(rows, q, specialistFields), nil
}

func (r *SpecialistRepo) Get(_ context.Context, id string) (*domain.Specialist, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sp, ok := r.s.specialists[id]
	if !ok {
		return nil, specialist.ErrNotFound
	}
	return &sp, nil
}

func (r *SpecialistRepo) SetVisibility(_ context.Context, id string, visible bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sp, ok := r.s.specialists[id]
	if !ok {
		return specialist.ErrNotFound
	}
	sp.IsVisible = visible
	r.s.specialists[id] = sp
	r.s.changed(tblSpecialists, opUpdate, id)
	return nil
}

func (r *SpecialistRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.specialists[id]; !ok {
		return specialist.ErrNotFound
	}
	delete(r.s.specialists, id)
	r.s.changed(tblSpecialists, opDelete, id)
	return nil
}

func (r *SpecialistRepo) CountVisible(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, sp := range r.s.specialists {
		if sp.IsVisible {
			n++
		}
	}
	return n, nil
}
