package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/listing"
	"github.com/ignite/assoc-admin/internal/service/member"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
	"github.com/ignite/assoc-admin/internal/service/publication"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
)

const otherID = "0d9e8f7a-6b5c-4d3e-2f1a-0b9c8d7e6f5a"

func TestMemberRecordPayment_RenewsInsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewMemberRepo(db)

	expiry := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	paidAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	p := &domain.Payment{ID: otherID, MemberID: memberID, AmountCents: 5000, Currency: "EUR", PaidAt: paidAt}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT expiry_date FROM members WHERE id = $1 FOR UPDATE")).
		WithArgs(memberID).
		WillReturnRows(sqlmock.NewRows([]string{"expiry_date"}).AddRow(expiry))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO payments")).
		WithArgs(otherID, memberID, int64(5000), "EUR", "", "", paidAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE members SET expiry_date = $2 WHERE id = $1")).
		WithArgs(memberID, expiry.AddDate(1, 0, 0)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	renewed, err := repo.RecordPayment(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, expiry.AddDate(1, 0, 0), renewed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRecordPayment_UnknownMember(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows([]string{"expiry_date"}))
	mock.ExpectRollback()

	_, err = NewMemberRepo(db).RecordPayment(context.Background(), &domain.Payment{MemberID: memberID})
	assert.ErrorIs(t, err, member.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberList_FiltersOnDerivedStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM membership_directory WHERE status = $1")).
		WithArgs("expiring").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM membership_directory WHERE status = $1 ORDER BY expiry_date DESC, id LIMIT $2 OFFSET $3")).
		WithArgs("expiring", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	page, err := NewMemberRepo(db).List(context.Background(), listing.Query{Status: "expiring", Sort: "expiry_date", Desc: true})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.TotalPages)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewSubscriberRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subscribers WHERE id = $1")).
		WithArgs(otherID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subscribers WHERE id = $1")).
		WithArgs(otherID).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), otherID))
	assert.ErrorIs(t, repo.Delete(context.Background(), otherID), subscriber.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriberUpsert_ReportsCreation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("first_name      = COALESCE(NULLIF(subscribers.first_name, ''), EXCLUDED.first_name)")).
		WithArgs(otherID, "ada@example.com", "Ada", "", "tok", at).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "first_name", "last_name", "is_active", "unsubscribe_token",
			"subscribed_at", "unsubscribed_at", "inserted",
		}).AddRow(memberID, "ada@example.com", "Ada", "", true, "old-tok", at, nil, false))

	sub, created, err := NewSubscriberRepo(db).Upsert(context.Background(), &domain.Subscriber{
		ID: otherID, Email: "ada@example.com", FirstName: "Ada", UnsubscribeToken: "tok", SubscribedAt: at,
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, memberID, sub.ID)
	assert.Equal(t, "old-tok", sub.UnsubscribeToken)
	assert.Nil(t, sub.UnsubscribedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewPublicationRepo(db)
	at := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	from := []domain.PublicationStatus{domain.PublicationApproved}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE publications SET status = $2, updated_at = $3, published_at = $3 WHERE id = $1 AND status = ANY($4)")).
		WithArgs(otherID, "published", at, pq.Array([]string{"approved"})).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Transition(context.Background(), otherID, from, domain.PublicationPublished, at))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE publications SET")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM publications")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	err = repo.Transition(context.Background(), otherID, from, domain.PublicationPublished, at)
	assert.ErrorIs(t, err, publication.ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublicationAddReview_MissingPublication(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reviews")).
		WillReturnError(&pq.Error{Code: "23503", Message: "violates foreign key constraint"})

	err = NewPublicationRepo(db).AddReview(context.Background(), &domain.Review{ID: memberID, PublicationID: otherID})
	assert.ErrorIs(t, err, publication.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsletterMarkSent_AlreadySent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status <> 'sent'")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM newsletters")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err = NewNewsletterRepo(db).MarkSent(context.Background(), otherID, time.Now(), 3, 0)
	assert.ErrorIs(t, err, newsletter.ErrAlreadySent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewsletterUpdate_BuildsSetList(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	title := "June"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE newsletters SET title = $2, updated_at = NOW() WHERE id = $1 AND status = 'draft'")).
		WithArgs(otherID, "June").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, NewNewsletterRepo(db).Update(context.Background(), otherID, newsletter.UpdateFields{Title: &title}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchPage_CountError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("connection reset"))
	_, err = NewSpecialistRepo(db).List(context.Background(), listing.Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list specialists: count")
	assert.NoError(t, mock.ExpectationsWereMet())
}
