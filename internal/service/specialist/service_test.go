package specialist_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/repository/memory"
	"github.com/ignite/assoc-admin/internal/service/specialist"
)

func setup(t *testing.T) *specialist.Service {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := memory.NewStore()
	store.SeedSpecialists(
		domain.Specialist{ID: "a", FirstName: "Jane", LastName: "Roe", Phone: "+15550001", Specialty: "Neurology", City: "Lyon", IsVisible: true, CreatedAt: base},
		domain.Specialist{ID: "b", FirstName: "John", LastName: "Doe", Specialty: "Cardiology", City: "Paris", IsVisible: false, CreatedAt: base.Add(time.Hour)},
		domain.Specialist{ID: "c", FirstName: "Mia", LastName: "Wong", Specialty: "Neurology", City: "Paris", IsVisible: true, CreatedAt: base.Add(2 * time.Hour)},
	)
	return specialist.NewService(store.Specialists())
}

func TestPublicList_OnlyVisible(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	page, err := svc.PublicList(ctx, listing.Query{Status: "hidden"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	for _, sp := range page.Items {
		assert.NotEqual(t, "b", sp.ID)
	}

	page, err = svc.PublicList(ctx, listing.Query{Search: "paris"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "c", page.Items[0].ID)
}

func TestList_AdminSeesHidden(t *testing.T) {
	svc := setup(t)
	page, err := svc.List(context.Background(), listing.Query{Status: "hidden"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "b", page.Items[0].ID)
}

func TestSetVisibility(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.SetVisibility(ctx, "b", true))
	n, err := svc.CountVisible(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.ErrorIs(t, svc.SetVisibility(ctx, "ghost", true), specialist.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "a"))
	_, err := svc.Get(ctx, "a")
	assert.ErrorIs(t, err, specialist.ErrNotFound)

	rows, err := svc.Export(ctx, listing.Query{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
