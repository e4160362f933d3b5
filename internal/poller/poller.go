package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"newsagg/internal/ingest"
	"newsagg/internal/models"
)

// Poller periodically triggers the ingestion pipeline. The pipeline
// itself stays request-triggered; the poller is just the periodic
// invoker in front of it.
type Poller struct {
	ingestor     *ingest.Ingestor
	pollInterval time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	mu           sync.RWMutex
	isRunning    bool
	lastRun      time.Time
	lastResults  []models.SourceResult
}

func New(ingestor *ingest.Ingestor, pollInterval time.Duration) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Poller{
		ingestor:     ingestor,
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (p *Poller) Start() {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = true
	p.mu.Unlock()

	log.Printf("Starting ingestion poller with interval: %v", p.pollInterval)

	p.wg.Add(1)
	go p.pollLoop()
}

func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.isRunning {
		p.mu.Unlock()
		return
	}
	p.isRunning = false
	p.mu.Unlock()

	log.Println("Stopping ingestion poller...")
	p.cancel()
	p.wg.Wait()
	log.Println("Ingestion poller stopped")
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	// Ingest immediately on start
	p.runOnce()

	for {
		select {
		case <-ticker.C:
			p.runOnce()
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Poller) runOnce() {
	log.Println("Starting background ingestion run...")
	results := p.ingestor.Run(p.ctx)

	p.mu.Lock()
	p.lastRun = time.Now()
	p.lastResults = results
	p.mu.Unlock()

	log.Println("Background ingestion run completed")
}

// ForceRun triggers an immediate ingestion run and returns its results.
func (p *Poller) ForceRun(ctx context.Context) []models.SourceResult {
	results := p.ingestor.Run(ctx)

	p.mu.Lock()
	p.lastRun = time.Now()
	p.lastResults = results
	p.mu.Unlock()

	return results
}

func (p *Poller) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isRunning
}

func (p *Poller) LastRun() time.Time {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRun
}

func (p *Poller) LastResults() []models.SourceResult {
	p.mu.RLock()
	defer p.mu.RUnlock()

	results := make([]models.SourceResult, len(p.lastResults))
	copy(results, p.lastResults)
	return results
}
