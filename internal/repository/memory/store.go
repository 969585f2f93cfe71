// Package memory provides in-process implementations of every service
// repository. They back the server when no database is configured and the
// service tests. Lists run through listing.Apply so filtering, sorting and
// paging behave exactly like the Postgres repositories.
package memory

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/service/application"
	"github.com/ignite/assoc-admin/internal/service/member"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
	"github.com/ignite/assoc-admin/internal/service/publication"
	"github.com/ignite/assoc-admin/internal/service/specialist"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
)

var (
	_ application.Repository = (*ApplicationRepo)(nil)
	_ member.Repository      = (*MemberRepo)(nil)
	_ specialist.Repository  = (*SpecialistRepo)(nil)
	_ newsletter.Repository  = (*NewsletterRepo)(nil)
	_ newsletter.Recipients  = (*SubscriberRepo)(nil)
	_ subscriber.Repository  = (*SubscriberRepo)(nil)
	_ publication.Repository = (*PublicationRepo)(nil)
)

// Table and action names match what the table_changes trigger reports.
const (
	tblMembershipApps = "membership_applications"
	tblSpecialistApps = "specialist_applications"
	tblMembers        = "members"
	tblPayments       = "payments"
	tblSpecialists    = "specialists"
	tblNewsletters    = "newsletters"
	tblSubscribers    = "subscribers"
	tblPublications   = "publications"
	tblReviews        = "reviews"

	opInsert = "INSERT"
	opUpdate = "UPDATE"
	opDelete = "DELETE"
)

// Store holds every table. Repositories created from one Store share it, so
// approving an application is visible in the directory immediately.
type Store struct {
	mu     sync.RWMutex
	now    func() time.Time
	notify func(domain.ChangeEvent)

	membershipApps map[string]domain.MembershipApplication
	specialistApps map[string]domain.SpecialistApplication
	members        map[string]domain.Member
	payments       []domain.Payment
	specialists    map[string]domain.Specialist
	newsletters    map[string]domain.Newsletter
	subscribers    map[string]domain.Subscriber
	publications   map[string]domain.Publication
	reviews        []domain.Review
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		now:            time.Now,
		membershipApps: make(map[string]domain.MembershipApplication),
		specialistApps: make(map[string]domain.SpecialistApplication),
		members:        make(map[string]domain.Member),
		specialists:    make(map[string]domain.Specialist),
		newsletters:    make(map[string]domain.Newsletter),
		subscribers:    make(map[string]domain.Subscriber),
		publications:   make(map[string]domain.Publication),
	}
}

// WithClock overrides the time used to derive member status.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// OnChange registers fn to receive a ChangeEvent after every committed
// mutation, mirroring the table_changes notifications Postgres emits. fn is
// called with the store lock held and must not block or call back into the
// store.
func (s *Store) OnChange(fn func(domain.ChangeEvent)) *Store {
	s.notify = fn
	return s
}

func (s *Store) changed(table, action, id string) {
	if s.notify != nil {
		s.notify(domain.ChangeEvent{Table: table, Action: action, ID: id})
	}
}

// Applications returns the application repository.
func (s *Store) Applications() *ApplicationRepo { return &ApplicationRepo{s: s} }

// Members returns the membership directory repository.
func (s *Store) Members() *MemberRepo { return &MemberRepo{s: s} }

// Specialists returns the specialist directory repository.
func (s *Store) Specialists() *SpecialistRepo { return &SpecialistRepo{s: s} }

// Newsletters returns the newsletter repository.
func (s *Store) Newsletters() *NewsletterRepo { return &NewsletterRepo{s: s} }

// Subscribers returns the subscriber repository.
func (s *Store) Subscribers() *SubscriberRepo { return &SubscriberRepo{s: s} }

// Publications returns the publication repository.
func (s *Store) Publications() *PublicationRepo { return &PublicationRepo{s: s} }

// SeedMembershipApplications inserts rows as-is.
func (s *Store) SeedMembershipApplications(rows ...domain.MembershipApplication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.membershipApps[r.ID] = r
	}
}

// SeedSpecialistApplications inserts rows as-is.
func (s *Store) SeedSpecialistApplications(rows ...domain.SpecialistApplication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.specialistApps[r.ID] = r
	}
}

// SeedMembers inserts rows as-is.
func (s *Store) SeedMembers(rows ...domain.Member) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.members[r.ID] = r
	}
}

// SeedPayments appends payments without touching expiry dates.
func (s *Store) SeedPayments(rows ...domain.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, rows...)
}

// SeedSpecialists inserts rows as-is.
func (s *Store) SeedSpecialists(rows ...domain.Specialist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.specialists[r.ID] = r
	}
}

// SeedNewsletters inserts rows as-is.
func (s *Store) SeedNewsletters(rows ...domain.Newsletter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.newsletters[r.ID] = r
	}
}

// SeedSubscribers inserts rows as-is.
func (s *Store) SeedSubscribers(rows ...domain.Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.subscribers[r.ID] = r
	}
}

// SeedPublications inserts rows as-is.
func (s *Store) SeedPublications(rows ...domain.Publication) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range rows {
		s.publications[r.ID] = r
	}
}

// newestFirst returns the map's values ordered by creation time descending,
// then id. This is the default order of every list.
func newestFirst[T any](m map[string]T, created func(T) time.Time, id func(T) string) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b T) int {
		if c := created(b).Compare(created(a)); c != 0 {
			return c
		}
		return cmp.Compare(id(a), id(b))
	})
	return out
}
