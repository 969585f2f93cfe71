package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/repository/memory"
	"github.com/ignite/assoc-admin/internal/service/application"
	"github.com/ignite/assoc-admin/internal/service/dashboard"
	"github.com/ignite/assoc-admin/internal/service/member"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
	"github.com/ignite/assoc-admin/internal/service/publication"
	"github.com/ignite/assoc-admin/internal/service/specialist"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
)

func sources(store *memory.Store) dashboard.Sources {
	return dashboard.Sources{
		Applications: application.NewService(store.Applications()),
		Members:      member.NewService(store.Members()),
		Specialists:  specialist.NewService(store.Specialists()),
		Subscribers:  subscriber.NewService(store.Subscribers()),
		Newsletters:  newsletter.NewService(store.Newsletters(), store.Subscribers(), nil, nil, newsletter.Options{}),
		Publications: publication.NewService(store.Publications(), nil, nil),
	}
}

func TestGet_AggregatesCounters(t *testing.T) {
	now := time.Now().UTC()
	store := memory.NewStore()
	store.SeedMembershipApplications(
		domain.MembershipApplication{ID: "m1", Status: domain.ApplicationPending, CreatedAt: now},
		domain.MembershipApplication{ID: "m2", Status: domain.ApplicationPending, CreatedAt: now},
		domain.MembershipApplication{ID: "m3", Status: domain.ApplicationRejected, CreatedAt: now},
	)
	store.SeedSpecialistApplications(domain.SpecialistApplication{ID: "s1", Status: domain.ApplicationApproved, CreatedAt: now})
	store.SeedSpecialists(
		domain.Specialist{ID: "sp1", IsVisible: true},
		domain.Specialist{ID: "sp2", IsVisible: false},
	)
	store.SeedSubscribers(
		domain.Subscriber{ID: "a", Email: "a@example.com", IsActive: true},
		domain.Subscriber{ID: "b", Email: "b@example.com", IsActive: false},
	)
	store.SeedNewsletters(domain.Newsletter{ID: "n1", Status: domain.NewsletterSent})
	store.SeedPublications(domain.Publication{ID: "p1", Status: domain.PublicationSubmitted})
	store.SeedMembers(domain.Member{ID: "mem1", ExpiryDate: now.AddDate(1, 0, 0)})

	d, err := dashboard.NewService(sources(store)).Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationCounts{Pending: 2, Rejected: 1}, d.MembershipApplications)
	assert.Equal(t, domain.ApplicationCounts{Approved: 1}, d.SpecialistApplications)
	assert.Equal(t, 1, d.Members.Total)
	assert.Equal(t, 1, d.Members.Active)
	assert.Equal(t, 1, d.VisibleSpecialists)
	assert.Equal(t, 1, d.ActiveSubscribers)
	assert.Equal(t, 1, d.Newsletters[domain.NewsletterSent])
	assert.Equal(t, 0, d.Newsletters[domain.NewsletterDraft])
	assert.Equal(t, 1, d.Publications[domain.PublicationSubmitted])
}

type brokenCounter struct{}

func (brokenCounter) CountVisible(context.Context) (int, error) {
	return 0, errors.New("db down")
}

func TestGet_FailsWhole(t *testing.T) {
	src := sources(memory.NewStore())
	src.Specialists = brokenCounter{}

	_, err := dashboard.NewService(src).Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard specialists")
}
