package publication_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/feed"
	"github.com/ignite/assoc-admin/internal/repository/memory"
	"github.com/ignite/assoc-admin/internal/service/publication"
	"github.com/ignite/assoc-admin/internal/storage"
)

var fixedNow = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

type stubFeed struct {
	items []feed.Item
	err   error
}

func (s stubFeed) Fetch(context.Context, string) ([]feed.Item, error) {
	return s.items, s.err
}

func newService(t *testing.T, feeds publication.FeedFetcher) (*publication.Service, *storage.LocalStore) {
	t.Helper()
	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	svc := publication.NewService(memory.NewStore().Publications(), files, feeds).
		WithClock(func() time.Time { return fixedNow })
	return svc, files
}

func TestLifecycle(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, publication.CreateInput{Title: "  "})
	assert.ErrorIs(t, err, publication.ErrValidation)

	p, err := svc.Create(ctx, publication.CreateInput{Title: "Field notes", Authors: "A. Author"})
	require.NoError(t, err)
	assert.Equal(t, domain.PublicationDraft, p.Status)

	assert.ErrorIs(t, svc.Publish(ctx, p.ID), publication.ErrInvalidTransition)
	assert.ErrorIs(t, svc.Approve(ctx, p.ID), publication.ErrInvalidTransition)

	require.NoError(t, svc.Submit(ctx, p.ID))
	require.NoError(t, svc.Reject(ctx, p.ID))
	require.NoError(t, svc.Revise(ctx, p.ID))
	require.NoError(t, svc.Submit(ctx, p.ID))
	require.NoError(t, svc.Approve(ctx, p.ID))
	require.NoError(t, svc.Publish(ctx, p.ID))
	require.NoError(t, svc.Archive(ctx, p.ID))
	assert.ErrorIs(t, svc.Submit(ctx, p.ID), publication.ErrInvalidTransition)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PublicationArchived, got.Status)
	require.NotNil(t, got.PublishedAt)
	require.NotNil(t, got.ArchivedAt)
	assert.Equal(t, fixedNow, *got.ArchivedAt)

	assert.ErrorIs(t, svc.Submit(ctx, "missing"), publication.ErrNotFound)

	counts, err := svc.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.PublicationArchived])
	assert.Equal(t, 0, counts[domain.PublicationDraft])
}

func TestReviews(t *testing.T) {
	svc, _ := newService(t, nil)
	ctx := context.Background()
	p, err := svc.Create(ctx, publication.CreateInput{Title: "Draft"})
	require.NoError(t, err)

	_, err = svc.AddReview(ctx, p.ID, publication.ReviewInput{Reviewer: "r@example.org"})
	assert.ErrorIs(t, err, publication.ErrValidation)
	_, err = svc.AddReview(ctx, p.ID, publication.ReviewInput{Decision: "maybe", Comments: "hm"})
	assert.ErrorIs(t, err, publication.ErrValidation)
	_, err = svc.AddReview(ctx, "missing", publication.ReviewInput{Comments: "hm"})
	assert.ErrorIs(t, err, publication.ErrNotFound)

	_, err = svc.AddReview(ctx, p.ID, publication.ReviewInput{Reviewer: "r@example.org", Comments: " tighten intro "})
	require.NoError(t, err)
	_, err = svc.AddReview(ctx, p.ID, publication.ReviewInput{Reviewer: "s@example.org", Decision: domain.DecisionApprove})
	require.NoError(t, err)

	reviews, err := svc.Reviews(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, domain.DecisionComment, reviews[0].Decision)
	assert.Equal(t, "tighten intro", reviews[0].Comments)
	assert.Equal(t, domain.DecisionApprove, reviews[1].Decision)

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PublicationDraft, got.Status)
}

func TestAttachAndOpenFile(t *testing.T) {
	svc, files := newService(t, nil)
	ctx := context.Background()
	p, err := svc.Create(ctx, publication.CreateInput{Title: "With PDF"})
	require.NoError(t, err)

	_, _, err = svc.OpenFile(ctx, p.ID)
	assert.ErrorIs(t, err, publication.ErrNoFile)

	first, err := svc.AttachFile(ctx, p.ID, `C:\docs\paper.pdf`, "application/pdf", strings.NewReader("v1"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "publications/"+p.ID+"/"))
	assert.True(t, strings.HasSuffix(first, "-paper.pdf"))

	second, err := svc.AttachFile(ctx, p.ID, "paper.pdf", "application/pdf", strings.NewReader("v2"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = files.Get(ctx, first)
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	obj, name, err := svc.OpenFile(ctx, p.ID)
	require.NoError(t, err)
	defer obj.Body.Close()
	body, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(body))
	assert.Equal(t, "application/pdf", obj.ContentType)
	assert.True(t, strings.HasSuffix(name, "-paper.pdf"))

	_, err = svc.AttachFile(ctx, p.ID, "", "text/plain", strings.NewReader("x"))
	assert.ErrorIs(t, err, publication.ErrValidation)

	require.NoError(t, svc.Delete(ctx, p.ID))
	_, err = files.Get(ctx, second)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestImport_SkipsDuplicates(t *testing.T) {
	items := []feed.Item{
		{GUID: "1", Title: "First", Link: "https://journal.example.org/1", Authors: []string{"Ann", "Bo"}, Categories: []string{"Ethics"}},
		{GUID: "2", Title: "Second", Link: "https://journal.example.org/2"},
		{GUID: "3", Title: "", Link: "https://journal.example.org/3"},
	}
	svc, _ := newService(t, stubFeed{items: items})
	ctx := context.Background()

	res, err := svc.Import(ctx, "https://journal.example.org/rss", "admin@example.org")
	require.NoError(t, err)
	assert.Len(t, res.Created, 2)
	assert.Equal(t, 1, res.Skipped)

	p, err := svc.Get(ctx, res.Created[0])
	require.NoError(t, err)
	assert.Equal(t, "First", p.Title)
	assert.Equal(t, "Ann, Bo", p.Authors)
	assert.Equal(t, "Ethics", p.Category)
	assert.Equal(t, domain.PublicationDraft, p.Status)

	again, err := svc.Import(ctx, "https://journal.example.org/rss", "admin@example.org")
	require.NoError(t, err)
	assert.Empty(t, again.Created)
	assert.Equal(t, 3, again.Skipped)

	_, err = svc.Import(ctx, "ftp://journal.example.org/rss", "")
	assert.ErrorIs(t, err, publication.ErrValidation)
}

func TestImport_FetchError(t *testing.T) {
	svc, _ := newService(t, stubFeed{err: errors.New("boom")})
	_, err := svc.Import(context.Background(), "https://journal.example.org/rss", "")
	assert.EqualError(t, err, "boom")
}
