package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/repository/memory"
	"github.com/ignite/assoc-admin/internal/service/application"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*application.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore().WithClock(func() time.Time { return fixedNow })
	base := fixedNow.Add(-72 * time.Hour)
	store.SeedMembershipApplications(
		domain.MembershipApplication{ID: "m1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Organization: "Analytical", MembershipType: "full", Status: domain.ApplicationPending, CreatedAt: base},
		domain.MembershipApplication{ID: "m2", FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Status: domain.ApplicationApproved, CreatedAt: base.Add(time.Hour)},
		domain.MembershipApplication{ID: "m3", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Status: domain.ApplicationPending, CreatedAt: base.Add(2 * time.Hour)},
	)
	store.SeedSpecialistApplications(
		domain.SpecialistApplication{ID: "s1", FirstName: "Jane", LastName: "Roe", Specialty: "Neurology", Region: "North", Status: domain.ApplicationPending, CreatedAt: base},
	)
	svc := application.NewService(store.Applications()).WithClock(func() time.Time { return fixedNow })
	return svc, store
}

func TestApprove_MembershipCreatesExactlyOneMember(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	res, err := svc.Approve(ctx, domain.KindMembership, "m1", "admin@example.org")
	require.NoError(t, err)
	assert.Equal(t, "m1", res.ApplicationID)
	assert.NotEmpty(t, res.DirectoryID)

	app, err := svc.GetMembership(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationApproved, app.Status)
	assert.Equal(t, "admin@example.org", app.ReviewedBy)
	require.NotNil(t, app.ReviewedAt)

	members, err := store.Members().List(ctx, listing.Query{})
	require.NoError(t, err)
	require.Equal(t, 1, members.Total)
	m := members.Items[0]
	assert.Equal(t, res.DirectoryID, m.ID)
	assert.Equal(t, "m1", m.ApplicationID)
	assert.Equal(t, "ada@example.com", m.Email)
	assert.Equal(t, "Analytical", m.Organization)
	assert.Equal(t, fixedNow.AddDate(1, 0, 0), m.ExpiryDate)
	assert.Equal(t, domain.MemberActive, m.Status)
}

func TestApprove_NotPending(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	_, err := svc.Approve(ctx, domain.KindMembership, "m2", "admin")
	assert.ErrorIs(t, err, application.ErrNotPending)

	_, err = svc.Approve(ctx, domain.KindMembership, "m1", "admin")
	require.NoError(t, err)
	_, err = svc.Approve(ctx, domain.KindMembership, "m1", "admin")
	assert.ErrorIs(t, err, application.ErrNotPending)

	members, _ := store.Members().List(ctx, listing.Query{})
	assert.Equal(t, 1, members.Total)
}

func TestApprove_FailedInsertLeavesApplicationPending(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()
	store.SeedMembers(domain.Member{ID: "existing", ApplicationID: "m3", ExpiryDate: fixedNow.AddDate(0, 6, 0)})

	_, err := svc.Approve(ctx, domain.KindMembership, "m3", "admin")
	require.Error(t, err)

	app, err := svc.GetMembership(ctx, "m3")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationPending, app.Status)

	members, _ := store.Members().List(ctx, listing.Query{})
	assert.Equal(t, 1, members.Total)
}

func TestApprove_SpecialistIsVisible(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	res, err := svc.Approve(ctx, domain.KindSpecialist, "s1", "admin")
	require.NoError(t, err)

	sp, err := store.Specialists().Get(ctx, res.DirectoryID)
	require.NoError(t, err)
	assert.True(t, sp.IsVisible)
	assert.Equal(t, "Neurology", sp.Specialty)
}

func TestApprove_UnknownApplication(t *testing.T) {
	svc, _ := setup(t)
	_, err := svc.Approve(context.Background(), domain.KindMembership, "nope", "admin")
	assert.ErrorIs(t, err, application.ErrNotFound)

	_, err = svc.Approve(context.Background(), "volunteer", "m1", "admin")
	assert.ErrorIs(t, err, application.ErrInvalidKind)
}

func TestReject(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.Reject(ctx, domain.KindMembership, "m3", "admin", "  incomplete  "))
	app, err := svc.GetMembership(ctx, "m3")
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationRejected, app.Status)
	assert.Equal(t, "incomplete", app.RejectionReason)

	assert.ErrorIs(t, svc.Reject(ctx, domain.KindMembership, "m3", "admin", ""), application.ErrNotPending)

	members, _ := store.Members().List(ctx, listing.Query{})
	assert.Equal(t, 0, members.Total)
}

func TestListMembership_FilterAndSort(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	page, err := svc.ListMembership(ctx, listing.Query{Status: "pending", Sort: "name"})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "m3", page.Items[0].ID) // Hopper before Lovelace
	assert.Equal(t, "m1", page.Items[1].ID)

	all, err := svc.ListMembership(ctx, listing.Query{Status: "all"})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Equal(t, "m3", all.Items[0].ID) // newest first by default

	found, err := svc.ListMembership(ctx, listing.Query{Search: "TURING"})
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "m2", found.Items[0].ID)
}

func TestDeleteAndCounts(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	c, err := svc.Counts(ctx, domain.KindMembership)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationCounts{Pending: 2, Approved: 1}, c)

	require.NoError(t, svc.Delete(ctx, domain.KindMembership, "m2"))
	assert.ErrorIs(t, svc.Delete(ctx, domain.KindMembership, "m2"), application.ErrNotFound)

	c, err = svc.Counts(ctx, domain.KindMembership)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationCounts{Pending: 2}, c)
}
