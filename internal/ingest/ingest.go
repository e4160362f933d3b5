package ingest

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"newsagg/internal/config"
	"newsagg/internal/fetcher"
	"newsagg/internal/models"
	"newsagg/internal/normalize"
	"newsagg/internal/storage"
)

// Ingestor runs the fetch → normalize → upsert pipeline over every
// configured source. Sources are independent: one source failing is
// reported in its result and never aborts the others.
type Ingestor struct {
	fetcher *fetcher.Fetcher
	storage storage.Storage
	sources []config.SourceConfig
}

func New(f *fetcher.Fetcher, st storage.Storage, sources []config.SourceConfig) *Ingestor {
	return &Ingestor{
		fetcher: f,
		storage: st,
		sources: sources,
	}
}

// Run ingests all configured sources in parallel and returns per-source
// counts. Upserted counts only rows that were newly inserted or changed,
// so a second run over unchanged upstream data reports zero.
func (i *Ingestor) Run(ctx context.Context) []models.SourceResult {
	var wg sync.WaitGroup
	results := make(chan models.SourceResult, len(i.sources))

	for _, src := range i.sources {
		wg.Add(1)
		go func(src config.SourceConfig) {
			defer wg.Done()
			results <- i.runSource(ctx, src)
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var all []models.SourceResult
	for result := range results {
		all = append(all, result)
	}

	sort.Slice(all, func(a, b int) bool {
		return all[a].Source < all[b].Source
	})

	return all
}

func (i *Ingestor) runSource(ctx context.Context, src config.SourceConfig) models.SourceResult {
	result := models.SourceResult{Source: src.Name}

	adapter, ok := normalize.ForSource(src.Name)
	if !ok {
		log.Printf("Error: no adapter registered for source %s", src.Name)
		result.Error = "no adapter registered"
		return result
	}

	log.Printf("Fetching articles from source: %s", src.Name)

	raw, err := i.fetcher.Fetch(ctx, src)
	if err != nil {
		log.Printf("Error fetching source %s: %v", src.Name, err)
		result.Error = err.Error()
		return result
	}

	articles := adapter(src, raw, time.Now())
	result.Fetched = len(articles)

	if len(articles) == 0 {
		log.Printf("No articles found for source: %s", src.Name)
		return result
	}

	for idx := range articles {
		changed, err := i.storage.UpsertArticle(&articles[idx])
		if err != nil {
			// Per-record: earlier upserts in this run stay applied
			log.Printf("Error upserting article %s: %v", articles[idx].URL, err)
			continue
		}
		if changed {
			result.Upserted++
		}
	}

	log.Printf("Fetched and stored %d unique articles from %s", result.Upserted, src.Name)
	return result
}
