package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/assoc-admin/internal/auth"
	"github.com/ignite/assoc-admin/internal/config"
	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/mailer"
	"github.com/ignite/assoc-admin/internal/pkg/ratelimit"
	"github.com/ignite/assoc-admin/internal/repository/memory"
	"github.com/ignite/assoc-admin/internal/service/application"
	"github.com/ignite/assoc-admin/internal/service/dashboard"
	"github.com/ignite/assoc-admin/internal/service/member"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
	"github.com/ignite/assoc-admin/internal/service/publication"
	"github.com/ignite/assoc-admin/internal/service/specialist"
	"github.com/ignite/assoc-admin/internal/service/subscriber"
	"github.com/ignite/assoc-admin/internal/storage"
)

const functionsToken = "fn-token"

type fixture struct {
	store   *memory.Store
	handler http.Handler
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	store := memory.NewStore()
	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	sender := mailer.NewLogSender(mailer.From{Email: "news@assoc.example.org", Name: "Association"})
	svc := Services{
		Applications: application.NewService(store.Applications()),
		Members:      member.NewService(store.Members()),
		Specialists:  specialist.NewService(store.Specialists()),
		Subscribers:  subscriber.NewService(store.Subscribers()),
		Newsletters: newsletter.NewService(store.Newsletters(), store.Subscribers(), sender, nil,
			newsletter.Options{BaseURL: "https://assoc.example.org"}),
		Publications: publication.NewService(store.Publications(), files, nil),
	}
	svc.Dashboard = dashboard.NewService(dashboard.Sources{
		Applications: svc.Applications,
		Members:      svc.Members,
		Specialists:  svc.Specialists,
		Subscribers:  svc.Subscribers,
		Newsletters:  svc.Newsletters,
		Publications: svc.Publications,
	})
	if opts.FunctionsToken == "" {
		opts.FunctionsToken = functionsToken
	}
	return &fixture{store: store, handler: NewServer(svc, opts).Handler()}
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

type notice struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Code  string `json:"code"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPublicSpecialists_OnlyVisible(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.SeedSpecialists(
		domain.Specialist{ID: "s1", FirstName: "Ada", LastName: "Lovelace", Phone: "+33 1 23", IsVisible: true},
		domain.Specialist{ID: "s2", FirstName: "Hidden", LastName: "Person", IsVisible: false},
	)

	rec := f.do(t, http.MethodGet, "/api/public/specialists", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Items []map[string]any `json:"items"`
		Total int              `json:"total"`
	}](t, rec)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "s1", page.Items[0]["id"])
	assert.NotContains(t, rec.Body.String(), "+33 1 23")
}

func TestPublicRoutes_RateLimited(t *testing.T) {
	f := newFixture(t, Options{PublicLimiter: ratelimit.NewMemoryLimiter(2)})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/public/specialists", nil).Code)
	}
	rec := f.do(t, http.MethodGet, "/api/public/specialists", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Admin routes are not throttled.
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/admin/dashboard", nil).Code)
}

func TestPublicRoutes_ForwardedHeadersIgnoredByDefault(t *testing.T) {
	f := newFixture(t, Options{PublicLimiter: ratelimit.NewMemoryLimiter(1)})

	assert.Equal(t, http.StatusOK,
		f.do(t, http.MethodGet, "/api/public/specialists", nil, "X-Forwarded-For", "198.51.100.1").Code)
	assert.Equal(t, http.StatusTooManyRequests,
		f.do(t, http.MethodGet, "/api/public/specialists", nil, "X-Forwarded-For", "198.51.100.2").Code,
		"rotating the header must not reset the window")
}

func TestPublicRoutes_TrustProxyKeysOnForwardedAddress(t *testing.T) {
	f := newFixture(t, Options{PublicLimiter: ratelimit.NewMemoryLimiter(1), TrustProxy: true})

	assert.Equal(t, http.StatusOK,
		f.do(t, http.MethodGet, "/api/public/specialists", nil, "X-Forwarded-For", "198.51.100.1").Code)
	assert.Equal(t, http.StatusOK,
		f.do(t, http.MethodGet, "/api/public/specialists", nil, "X-Forwarded-For", "198.51.100.2").Code)
	assert.Equal(t, http.StatusTooManyRequests,
		f.do(t, http.MethodGet, "/api/public/specialists", nil, "X-Forwarded-For", "198.51.100.1").Code)
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/api/public/subscribe", map[string]string{"email": "Reader@Example.org"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "success", decode[notice](t, rec).Kind)

	rec = f.do(t, http.MethodPost, "/api/public/subscribe", map[string]string{"email": "reader@example.org"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "info", decode[notice](t, rec).Kind)

	rec = f.do(t, http.MethodPost, "/api/public/subscribe", map[string]string{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "error", body.Kind)
	assert.Equal(t, "invalid", body.Code)
}

func TestUnsubscribe(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.SeedSubscribers(domain.Subscriber{ID: "a", Email: "a@example.org", IsActive: true, UnsubscribeToken: "tok-a"})

	rec := f.do(t, http.MethodGet, "/api/public/unsubscribe?token=tok-a", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/public/unsubscribe?token=nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/public/unsubscribe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveApplication(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.SeedMembershipApplications(domain.MembershipApplication{
		ID: "app-1", FirstName: "Grace", LastName: "Hopper", Email: "grace@example.org",
		Status: domain.ApplicationPending, CreatedAt: time.Now().Add(-time.Hour),
	})

	rec := f.do(t, http.MethodPost, "/api/admin/applications/membership/app-1/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	n := decode[notice](t, rec)
	assert.Equal(t, "success", n.Kind)
	assert.NotEmpty(t, n.Data["directory_id"])

	members := f.do(t, http.MethodGet, "/api/admin/members/", nil)
	require.Equal(t, http.StatusOK, members.Code)
	assert.Equal(t, 1, decode[struct {
		Total int `json:"total"`
	}](t, members).Total)

	rec = f.do(t, http.MethodPost, "/api/admin/applications/membership/app-1/approve", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "not_pending", decode[errorBody](t, rec).Code)

	rec = f.do(t, http.MethodGet, "/api/admin/applications/volunteer/", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRejectApplication_WithReason(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.SeedSpecialistApplications(domain.SpecialistApplication{
		ID: "sp-1", FirstName: "Alan", LastName: "Turing", Email: "alan@example.org",
		Status: domain.ApplicationPending, CreatedAt: time.Now(),
	})

	rec := f.do(t, http.MethodPost, "/api/admin/applications/specialist/sp-1/reject", map[string]string{"reason": "incomplete"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/admin/applications/specialist/counts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ApplicationCounts{Rejected: 1}, decode[domain.ApplicationCounts](t, rec))
}

func TestExportMembers_CSV(t *testing.T) {
	f := newFixture(t, Options{})
	now := time.Now().UTC()
	for i, name := range []string{"Ada", "Grace", `Mary "Bob"`} {
		f.store.SeedMembers(domain.Member{
			ID: string(rune('a' + i)), FirstName: name, LastName: "Test", Email: "m@example.org",
			JoinDate: now, ExpiryDate: now.AddDate(1, 0, 0), CreatedAt: now,
		})
	}

	rec := f.do(t, http.MethodGet, "/api/admin/members/export.csv?page_size=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), `filename="members-`)

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\r\n"), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, rec.Body.String(), `"Mary ""Bob"""`)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t, Options{})
	now := time.Now().UTC()
	f.store.SeedMembers(domain.Member{ID: "m1", FirstName: "Ada", JoinDate: now, ExpiryDate: now.AddDate(0, 0, 10), CreatedAt: now})

	rec := f.do(t, http.MethodPost, "/api/admin/members/m1/payments", map[string]any{"amount_cents": 5000, "method": "card"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "success", decode[notice](t, rec).Kind)

	rec = f.do(t, http.MethodGet, "/api/admin/members/m1/payments", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Payment](t, rec), 1)

	rec = f.do(t, http.MethodPost, "/api/admin/members/m1/payments", map[string]any{"amount_cents": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/admin/members/ghost/payments", map[string]any{"amount_cents": 100})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSpecialistVisibility(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.SeedSpecialists(domain.Specialist{ID: "s1", IsVisible: false})

	rec := f.do(t, http.MethodPut, "/api/admin/specialists/s1/visibility", map[string]bool{"visible": true})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/public/specialists", nil)
	assert.Contains(t, rec.Body.String(), `"s1"`)

	rec = f.do(t, http.MethodPut, "/api/admin/specialists/s1/visibility", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewsletterFlow(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/api/admin/newsletters/", map[string]string{
		"title": "Spring", "subject": "Hello {{ first_name }}", "content": "<p>Hi {{ first_name }}</p>",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decode[notice](t, rec).Data["id"].(string)
	require.NotEmpty(t, id)

	rec = f.do(t, http.MethodPost, "/api/admin/newsletters/"+id+"/send", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "no_recipients", decode[errorBody](t, rec).Code)

	rec = f.do(t, http.MethodPost, "/api/admin/newsletters/"+id+"/test", map[string]string{"email": "editor@example.org"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/admin/newsletters/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.NewsletterDraft, decode[domain.Newsletter](t, rec).Status)

	f.store.SeedSubscribers(domain.Subscriber{ID: "r1", Email: "r1@example.org", FirstName: "Rita", IsActive: true, UnsubscribeToken: "t1"})
	rec = f.do(t, http.MethodPost, "/api/admin/newsletters/"+id+"/send", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	n := decode[notice](t, rec)
	assert.Equal(t, "success", n.Kind)
	assert.EqualValues(t, 1, n.Data["sent"])

	rec = f.do(t, http.MethodPut, "/api/admin/newsletters/"+id, map[string]string{"title": "Late edit"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestNewsletterPreview(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.SeedNewsletters(domain.Newsletter{ID: "n1", Title: "T", Subject: "Hi {{ email }}", Content: "Body", Status: domain.NewsletterDraft})

	rec := f.do(t, http.MethodGet, "/api/admin/newsletters/n1/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decode[previewResponse](t, rec).Subject, "Hi ")
}

func TestPublicationTransitions(t *testing.T) {
	f := newFixture(t, Options{})

	rec := f.do(t, http.MethodPost, "/api/admin/publications/", map[string]string{"title": "Annual report"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id, _ := decode[notice](t, rec).Data["id"].(string)
	require.NotEmpty(t, id)

	rec = f.do(t, http.MethodPost, "/api/admin/publications/"+id+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/admin/publications/"+id+"/publish", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_transition", decode[errorBody](t, rec).Code)

	rec = f.do(t, http.MethodPost, "/api/admin/publications/"+id+"/teleport", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/admin/publications/"+id+"/reviews", map[string]string{"decision": "approve", "comments": "solid"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/api/admin/publications/"+id+"/reviews", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decode[[]domain.Review](t, rec)
	require.Len(t, reviews, 1)
	assert.Equal(t, "admin@localhost", reviews[0].Reviewer)
}

func TestPublicationFile_UploadAndDownload(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.SeedPublications(domain.Publication{ID: "p1", Title: "Paper", Status: domain.PublicationDraft})

	rec := f.do(t, http.MethodGet, "/api/admin/publications/p1/file", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "paper.pdf")
	require.NoError(t, err)
	_, _ = part.Write([]byte("%PDF-1.4 test"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/api/admin/publications/p1/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	up := httptest.NewRecorder()
	f.handler.ServeHTTP(up, req)
	require.Equal(t, http.StatusOK, up.Code, up.Body.String())

	rec = f.do(t, http.MethodGet, "/api/admin/publications/p1/file", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.4 test", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "paper.pdf")
}

func TestDeleteSubscriber(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.SeedSubscribers(
		domain.Subscriber{ID: "a", Email: "a@example.org", IsActive: true, UnsubscribeToken: "ta"},
		domain.Subscriber{ID: "b", Email: "b@example.org", IsActive: true, UnsubscribeToken: "tb"},
	)

	rec := f.do(t, http.MethodDelete, "/api/admin/subscribers/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/admin/subscribers/", nil)
	assert.Equal(t, 1, decode[struct {
		Total int `json:"total"`
	}](t, rec).Total)

	rec = f.do(t, http.MethodDelete, "/api/admin/subscribers/a", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.SeedSubscribers(domain.Subscriber{ID: "a", Email: "a@example.org", IsActive: true, UnsubscribeToken: "ta"})

	rec := f.do(t, http.MethodGet, "/api/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[domain.Dashboard](t, rec).ActiveSubscribers)
}

func TestSendNewsletterFunction(t *testing.T) {
	f := newFixture(t, Options{})
	f.store.SeedNewsletters(domain.Newsletter{ID: "n1", Title: "T", Subject: "S", Content: "C", Status: domain.NewsletterDraft})
	bearer := []string{"Authorization", "Bearer " + functionsToken}

	rec := f.do(t, http.MethodPost, "/functions/v1/send-newsletter", map[string]any{"newsletter_id": "n1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/functions/v1/send-newsletter", map[string]any{}, bearer...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPost, "/functions/v1/send-newsletter", map[string]any{"newsletter_id": "missing"}, bearer...)
	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode[sendFunctionResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Newsletter not found", resp.Error)

	rec = f.do(t, http.MethodPost, "/functions/v1/send-newsletter",
		map[string]any{"newsletter_id": "n1", "test_mode": true, "test_email": "qa@example.org"}, bearer...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, sendFunctionResponse{Success: true, Sent: 1}, decode[sendFunctionResponse](t, rec))
}

func TestAdminRequiresSession(t *testing.T) {
	cfg := config.AuthConfig{Enabled: true, SessionSecret: "s", CookieName: "assoc_session", CookieMaxAge: 3600}
	f := newFixture(t, Options{Auth: auth.NewManager(cfg, "http://localhost:8080", auth.NewMemoryStore())})

	rec := f.do(t, http.MethodGet, "/api/admin/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/public/specialists", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	files, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	f := newFixture(t, Options{Health: NewHealthChecker(db, rdb, files, "test")})

	mock.ExpectPing()
	rec := f.do(t, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ready := decode[struct {
		Ready  bool                      `json:"ready"`
		Status string                    `json:"status"`
		Checks map[string]ComponentCheck `json:"checks"`
	}](t, rec)
	assert.True(t, ready.Ready)
	assert.Equal(t, "healthy", ready.Status)
	assert.Equal(t, "up", ready.Checks["storage"].Status)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	rec = f.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = f.do(t, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDetermineOverallStatus(t *testing.T) {
	cases := []struct {
		name   string
		checks map[string]ComponentCheck
		want   string
	}{
		{"memory mode", map[string]ComponentCheck{
			"database": {Status: "down", Message: notConfigured},
			"redis":    {Status: "down", Message: notConfigured},
			"storage":  {Status: "up"},
		}, "healthy"},
		{"redis down", map[string]ComponentCheck{
			"database": {Status: "up"},
			"redis":    {Status: "down", Message: "ping failed"},
		}, "degraded"},
		{"database down", map[string]ComponentCheck{
			"database": {Status: "down", Message: "ping failed"},
		}, "unhealthy"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, determineOverallStatus(tc.checks))
		})
	}
}

func TestClassify(t *testing.T) {
	status, code, msg := classify(errors.Join(errors.New("ctx"), newsletter.ErrSendInProgress))
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "send_in_progress", code)
	assert.Equal(t, "Newsletter is already being sent", msg)

	status, _, msg = classify(errors.New("pq: connection reset"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Empty(t, msg)
}
