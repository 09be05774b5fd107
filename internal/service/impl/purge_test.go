package impl

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubPurger struct {
	cutoffs []time.Time
	n       int64
	err     error
}

func (s *stubPurger) PurgeCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return s.n, s.err
}

func TestPurgeExpiredCodesUsesWindowCutoff(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	p := &stubPurger{n: 3}

	if got := PurgeExpiredCodes(context.Background(), p, 5*time.Minute, now); got != 3 {
		t.Fatalf("purged = %d, want 3", got)
	}
	if len(p.cutoffs) != 1 || !p.cutoffs[0].Equal(now.Add(-5*time.Minute)) {
		t.Fatalf("cutoffs = %v", p.cutoffs)
	}

	p.err = errors.New("db down")
	if got := PurgeExpiredCodes(context.Background(), p, 5*time.Minute, now); got != 0 {
		t.Fatalf("purged on error = %d, want 0", got)
	}
}

func TestRunCodePurgeStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		RunCodePurge(ctx, &stubPurger{}, time.Minute, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("RunCodePurge did not return after cancel")
	}
}
