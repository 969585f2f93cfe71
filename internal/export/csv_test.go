package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/assoc-admin/internal/domain"
)

func TestQuote(t *testing.T) {
	assert.Equal(t, `""`, Quote(""))
	assert.Equal(t, `"plain"`, Quote("plain"))
	assert.Equal(t, `"say ""hi"", ok"`, Quote(`say "hi", ok`))
	assert.Equal(t, `"two lines"`, Quote("two\nlines"))
}

func TestWrite_NRecordsGiveNPlusOneLines(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		rows := make([]domain.Subscriber, n)
		for i := range rows {
			rows[i] = domain.Subscriber{Email: "x@example.com", FirstName: "multi\nline", IsActive: i%2 == 0}
		}
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, SubscriberColumns, rows))

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
		assert.Len(t, lines, n+1, "n=%d", n)
		for _, line := range lines {
			for _, field := range strings.Split(line, ",") {
				assert.True(t, strings.HasPrefix(field, `"`) && strings.HasSuffix(field, `"`), "unquoted field %q", field)
			}
		}
	}
}

func TestWrite_MemberRow(t *testing.T) {
	paid := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	m := domain.Member{
		FirstName:      "Ada",
		LastName:       `O"Neil`,
		Email:          "ada@example.com",
		Status:         domain.MemberActive,
		JoinDate:       time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		ExpiryDate:     time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		LastPaymentAt:  &paid,
		TotalPaidCents: 12050,
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, MemberColumns, []domain.Member{m}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"First name","Last name","Email","Phone","Organization","Membership type","Status","Join date","Expiry date","Last payment","Total paid"`, lines[0])
	assert.Equal(t, `"Ada","O""Neil","ada@example.com","","","","active","2024-01-15","2025-01-15","2024-03-01","120.50"`, lines[1])
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "members-2024-09-02.csv", Filename("members", time.Date(2024, 9, 2, 23, 0, 0, 0, time.UTC)))
}
