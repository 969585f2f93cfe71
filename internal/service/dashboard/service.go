// Package dashboard aggregates the admin home page counters from the other
// services.
package dashboard

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ignite/assoc-admin/internal/domain"
)

// ApplicationCounter counts applications by status.
type ApplicationCounter interface {
	Counts(ctx context.Context, kind domain.ApplicationKind) (domain.ApplicationCounts, error)
}

// MemberStatter aggregates the membership directory.
type MemberStatter interface {
	Stats(ctx context.Context) (domain.MemberStats, error)
}

// SpecialistCounter counts the public directory.
type SpecialistCounter interface {
	CountVisible(ctx context.Context) (int, error)
}

// SubscriberCounter counts the newsletter audience.
type SubscriberCounter interface {
	Count(ctx context.Context) (total, active int, err error)
}

// NewsletterCounter groups newsletters by status.
type NewsletterCounter interface {
	CountByStatus(ctx context.Context) (map[domain.NewsletterStatus]int, error)
}

// PublicationCounter groups publications by status.
type PublicationCounter interface {
	CountByStatus(ctx context.Context) (map[domain.PublicationStatus]int, error)
}

// Sources are the services the dashboard reads from.
type Sources struct {
	Applications ApplicationCounter
	Members      MemberStatter
	Specialists  SpecialistCounter
	Subscribers  SubscriberCounter
	Newsletters  NewsletterCounter
	Publications PublicationCounter
}

// Service builds the dashboard.
type Service struct {
	src Sources
}

// NewService creates a dashboard service.
func NewService(src Sources) *Service {
	return &Service{src: src}
}

// Get loads every counter concurrently; any failure fails the whole page.
func (s *Service) Get(ctx context.Context) (*domain.Dashboard, error) {
	d := &domain.Dashboard{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.MembershipApplications, err = s.src.Applications.Counts(ctx, domain.KindMembership)
		return wrap("membership applications", err)
	})
	g.Go(func() (err error) {
		d.SpecialistApplications, err = s.src.Applications.Counts(ctx, domain.KindSpecialist)
		return wrap("specialist applications", err)
	})
	g.Go(func() (err error) {
		d.Members, err = s.src.Members.Stats(ctx)
		return wrap("members", err)
	})
	g.Go(func() (err error) {
		d.VisibleSpecialists, err = s.src.Specialists.CountVisible(ctx)
		return wrap("specialists", err)
	})
	g.Go(func() (err error) {
		_, d.ActiveSubscribers, err = s.src.Subscribers.Count(ctx)
		return wrap("subscribers", err)
	})
	g.Go(func() (err error) {
		d.Newsletters, err = s.src.Newsletters.CountByStatus(ctx)
		return wrap("newsletters", err)
	})
	g.Go(func() (err error) {
		d.Publications, err = s.src.Publications.CountByStatus(ctx)
		return wrap("publications", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("dashboard %s: %w", what, err)
	}
	return nil
}
