package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"newsagg/internal/config"
	"newsagg/internal/fetcher"
	"newsagg/internal/models"
	"newsagg/internal/storage"
)

const newsAPIBody = `{
	"articles": [
		{
			"title": "First Story",
			"content": "Content one",
			"author": "Alice",
			"url": "https://example.com/one",
			"publishedAt": "2024-03-15T10:00:00Z",
			"source": {"name": "Example Wire"}
		},
		{
			"title": "Second Story",
			"content": "Content two",
			"author": "Bob",
			"url": "https://example.com/two",
			"publishedAt": "2024-03-15T11:00:00Z",
			"source": {"name": "Example Wire"}
		}
	]
}`

const nyTimesBody = `{
	"results": [
		{
			"title": "Times Story",
			"abstract": "A summary",
			"byline": "By Carol",
			"url": "https://nytimes.com/story",
			"published_date": "2024-03-15T09:00:00-04:00"
		}
	]
}`

func newTestIngestor(t *testing.T, sources []config.SourceConfig) (*Ingestor, storage.Storage) {
	t.Helper()

	st, err := storage.NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return New(fetcher.New(5*time.Second), st, sources), st
}

func serveJSON(t *testing.T, body string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server
}

func resultFor(results []models.SourceResult, source string) *models.SourceResult {
	for i := range results {
		if results[i].Source == source {
			return &results[i]
		}
	}
	return nil
}

func TestIngestor_RunCountsPerSource(t *testing.T) {
	newsServer := serveJSON(t, newsAPIBody)
	timesServer := serveJSON(t, nyTimesBody)

	sources := []config.SourceConfig{
		{Name: config.SourceNewsAPI, BaseURL: newsServer.URL},
		{Name: config.SourceNYTimes, BaseURL: timesServer.URL},
	}
	ingestor, _ := newTestIngestor(t, sources)

	results := ingestor.Run(context.Background())
	if len(results) != 2 {
		t.Fatalf("Expected 2 source results, got %d", len(results))
	}

	news := resultFor(results, config.SourceNewsAPI)
	if news == nil {
		t.Fatal("Missing newsapi result")
	}
	if news.Fetched != 2 || news.Upserted != 2 {
		t.Errorf("Expected newsapi 2 fetched / 2 upserted, got %d / %d", news.Fetched, news.Upserted)
	}

	times := resultFor(results, config.SourceNYTimes)
	if times == nil {
		t.Fatal("Missing newyorktimes result")
	}
	if times.Fetched != 1 || times.Upserted != 1 {
		t.Errorf("Expected nytimes 1 fetched / 1 upserted, got %d / %d", times.Fetched, times.Upserted)
	}
}

func TestIngestor_SecondRunIsIdempotent(t *testing.T) {
	newsServer := serveJSON(t, newsAPIBody)

	sources := []config.SourceConfig{
		{Name: config.SourceNewsAPI, BaseURL: newsServer.URL},
	}
	ingestor, st := newTestIngestor(t, sources)

	first := ingestor.Run(context.Background())
	if first[0].Upserted != 2 {
		t.Fatalf("Expected 2 upserts on first run, got %d", first[0].Upserted)
	}

	// Unchanged upstream data: the second run must count nothing
	second := ingestor.Run(context.Background())
	if second[0].Upserted != 0 {
		t.Errorf("Expected 0 upserts on second run, got %d", second[0].Upserted)
	}

	_, total, err := st.QueryArticles(&models.ArticleQuery{Page: 1})
	if err != nil {
		t.Fatalf("Failed to query articles: %v", err)
	}
	if total != 2 {
		t.Errorf("Expected exactly 2 stored rows, got %d", total)
	}
}

func TestIngestor_ChangedUpstreamCountsAgain(t *testing.T) {
	body := newsAPIBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	sources := []config.SourceConfig{
		{Name: config.SourceNewsAPI, BaseURL: server.URL},
	}
	ingestor, _ := newTestIngestor(t, sources)

	ingestor.Run(context.Background())

	// One article's title changes upstream
	body = `{
		"articles": [
			{
				"title": "First Story Revised",
				"content": "Content one",
				"author": "Alice",
				"url": "https://example.com/one",
				"publishedAt": "2024-03-15T10:00:00Z",
				"source": {"name": "Example Wire"}
			}
		]
	}`

	results := ingestor.Run(context.Background())
	if results[0].Upserted != 1 {
		t.Errorf("Expected 1 upsert for the revised article, got %d", results[0].Upserted)
	}
}

func TestIngestor_FailingSourceDoesNotAbortRun(t *testing.T) {
	newsServer := serveJSON(t, newsAPIBody)
	brokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(brokenServer.Close)

	sources := []config.SourceConfig{
		{Name: config.SourceNewsAPI, BaseURL: newsServer.URL},
		{Name: config.SourceNYTimes, BaseURL: brokenServer.URL},
	}
	ingestor, _ := newTestIngestor(t, sources)

	results := ingestor.Run(context.Background())
	if len(results) != 2 {
		t.Fatalf("Expected results for both sources, got %d", len(results))
	}

	news := resultFor(results, config.SourceNewsAPI)
	if news.Upserted != 2 {
		t.Errorf("Expected healthy source to ingest, got %d upserts", news.Upserted)
	}

	times := resultFor(results, config.SourceNYTimes)
	if times.Error == "" {
		t.Error("Expected failing source to report its error")
	}
	if times.Upserted != 0 {
		t.Errorf("Expected failing source to upsert nothing, got %d", times.Upserted)
	}
}

func TestIngestor_UnknownSourceReported(t *testing.T) {
	sources := []config.SourceConfig{
		{Name: "unconfigured", BaseURL: "http://127.0.0.1:1"},
	}
	ingestor, _ := newTestIngestor(t, sources)

	results := ingestor.Run(context.Background())
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Error == "" {
		t.Error("Expected adapter-less source to report an error")
	}
}
