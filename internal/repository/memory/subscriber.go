package memory

import (
	"context"
	"strings"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
)

// SubscriberRepo implements subscriber.Repository in memory.
type SubscriberRepo struct{ s *Store }

func (r *SubscriberRepo) List(_ context.Context, q listing.Query) (listing.Page[domain.Subscriber], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := newestFirst(r.s.subscribers,
		func(s domain.Subscriber) time.Time { return s.SubscribedAt },
		func(s domain.Subscriber) string { return s.ID })
	return listing.Apply(rows, q, subscriberFields), nil
}

func (r *SubscriberRepo) Get(_ context.Context, id string) (*domain.Subscriber, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	s, ok := r.s.subscribers[id]
	if !ok {
		return nil, subscriber.ErrNotFound
	}
	return &s, nil
}

func (r *SubscriberRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.subscribers[id]; !ok {
		return subscriber.ErrNotFound
	}
	delete(r.s.subscribers, id)
	r.s.changed(tblSubscribers, opDelete, id)
	return nil
}

func (r *SubscriberRepo) Upsert(_ context.Context, in *domain.Subscriber) (*domain.Subscriber, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, s := range r.s.subscribers {
		if !strings.EqualFold(s.Email, in.Email) {
			continue
		}
		// Anyone can post an address, so stored names are never replaced.
		if s.FirstName == "" {
			s.FirstName = in.FirstName
		}
		if s.LastName == "" {
			s.LastName = in.LastName
		}
		if !s.IsActive {
			s.IsActive = true
			s.SubscribedAt = in.SubscribedAt
			s.UnsubscribedAt = nil
		}
		r.s.subscribers[id] = s
		r.s.changed(tblSubscribers, opUpdate, id)
		return &s, false, nil
	}
	s := *in
	r.s.subscribers[s.ID] = s
	r.s.changed(tblSubscribers, opInsert, s.ID)
	return &s, true, nil
}

func (r *SubscriberRepo) Unsubscribe(_ context.Context, token string, at time.Time) (*domain.Subscriber, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, s := range r.s.subscribers {
		if s.UnsubscribeToken != token {
			continue
		}
		if s.IsActive {
			s.IsActive = false
			s.UnsubscribedAt = &at
			r.s.subscribers[id] = s
			r.s.changed(tblSubscribers, opUpdate, id)
		}
		return &s, nil
	}
	return nil, subscriber.ErrNotFound
}

func (r *SubscriberRepo) Count(_ context.Context, activeOnly bool) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if !activeOnly {
		return len(r.s.subscribers), nil
	}
	n := 0
	for _, s := range r.s.subscribers {
		if s.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *SubscriberRepo) Active(_ context.Context) ([]domain.Subscriber, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Subscriber{}
	for _, s := range newestFirst(r.s.subscribers,
		func(s domain.Subscriber) time.Time { return s.SubscribedAt },
		func(s domain.Subscriber) string { return s.ID }) {
		if s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}
