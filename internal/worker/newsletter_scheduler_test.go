package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ignite/assoc-admin/internal/domain"
	"github.com/ignite/assoc-admin/internal/service/newsletter"
)

type fakeNewsletters struct {
	mu      sync.Mutex
	due     []domain.Newsletter
	dueErr  error
	results map[string]error
	sent    []string
}

func (f *fakeNewsletters) Due(context.Context) ([]domain.Newsletter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.due, f.dueErr
}

func (f *fakeNewsletters) Send(_ context.Context, id string, opts newsletter.SendOptions) (*domain.SendReport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if opts.TestMode {
		return nil, errors.New("scheduler must not send test copies")
	}
	if err := f.results[id]; err != nil {
		return nil, err
	}
	f.sent = append(f.sent, id)
	return &domain.SendReport{NewsletterID: id, Sent: 2}, nil
}

func (f *fakeNewsletters) sentIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func TestNewsletterScheduler_Defaults(t *testing.T) {
	s := NewNewsletterScheduler(&fakeNewsletters{}, 0)
	if s.pollInterval != DefaultSchedulerPollInterval {
		t.Errorf("pollInterval = %v, want %v", s.pollInterval, DefaultSchedulerPollInterval)
	}
}

func TestNewsletterScheduler_RunOnce(t *testing.T) {
	fake := &fakeNewsletters{
		due: []domain.Newsletter{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
		results: map[string]error{
			"b": newsletter.ErrSendInProgress,
			"c": errors.New("smtp down"),
			"d": newsletter.ErrAlreadySent,
		},
	}
	s := NewNewsletterScheduler(fake, time.Hour)
	s.RunOnce(context.Background())

	if got := fake.sentIDs(); len(got) != 1 || got[0] != "a" {
		t.Errorf("sent = %v, want [a]", got)
	}
	sent, skipped, errs := s.Stats()
	if sent != 1 || skipped != 2 || errs != 1 {
		t.Errorf("stats = %d/%d/%d, want 1/2/1", sent, skipped, errs)
	}
}

func TestNewsletterScheduler_DueError(t *testing.T) {
	s := NewNewsletterScheduler(&fakeNewsletters{dueErr: errors.New("db down")}, time.Hour)
	s.RunOnce(context.Background())
	if _, _, errs := s.Stats(); errs != 1 {
		t.Errorf("errors = %d, want 1", errs)
	}
}

func TestNewsletterScheduler_StartStop(t *testing.T) {
	fake := &fakeNewsletters{due: []domain.Newsletter{{ID: "n1"}}}
	s := NewNewsletterScheduler(fake, 10*time.Millisecond)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("double Start() should return error")
	}

	deadline := time.Now().Add(time.Second)
	for len(fake.sentIDs()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()
	s.Stop()

	if len(fake.sentIDs()) == 0 {
		t.Error("scheduler never sent the due newsletter")
	}
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()
	if running {
		t.Error("scheduler should not be running after Stop()")
	}
}
