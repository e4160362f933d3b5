package poller

import (
	"context"
	"testing"
	"time"

	"newsagg/internal/fetcher"
	"newsagg/internal/ingest"
	"newsagg/internal/storage"
)

func newTestPoller(t *testing.T, interval time.Duration) *Poller {
	t.Helper()

	st, err := storage.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ingestor := ingest.New(fetcher.New(time.Second), st, nil)
	return New(ingestor, interval)
}

func TestPollerStartStop(t *testing.T) {
	p := newTestPoller(t, time.Hour)

	if p.IsRunning() {
		t.Error("Expected poller idle before Start")
	}

	p.Start()
	if !p.IsRunning() {
		t.Error("Expected poller running after Start")
	}

	// Second Start must be a no-op
	p.Start()

	p.Stop()
	if p.IsRunning() {
		t.Error("Expected poller stopped after Stop")
	}

	// Second Stop must be a no-op
	p.Stop()
}

func TestPollerRunsImmediatelyOnStart(t *testing.T) {
	p := newTestPoller(t, time.Hour)

	p.Start()
	defer p.Stop()

	deadline := time.After(2 * time.Second)
	for p.LastRun().IsZero() {
		select {
		case <-deadline:
			t.Fatal("Expected an ingestion run shortly after Start")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestPollerForceRun(t *testing.T) {
	p := newTestPoller(t, time.Hour)

	if !p.LastRun().IsZero() {
		t.Fatal("Expected no run recorded yet")
	}

	results := p.ForceRun(context.Background())
	if len(results) != 0 {
		t.Errorf("Expected no results with no sources, got %d", len(results))
	}
	if p.LastRun().IsZero() {
		t.Error("Expected ForceRun to record a run time")
	}
}

func TestPollerLastResultsIsACopy(t *testing.T) {
	p := newTestPoller(t, time.Hour)
	p.ForceRun(context.Background())

	first := p.LastResults()
	second := p.LastResults()

	if len(first) != len(second) {
		t.Errorf("Expected stable results, got %d and %d", len(first), len(second))
	}
}
