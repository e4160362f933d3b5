package normalize

import (
	"encoding/json"
	"log"
	"time"

	"newsagg/internal/config"
	"newsagg/internal/models"
)

// Fallback values applied when a provider omits a field.
const (
	defaultContent  = "N/A"
	defaultAuthor   = "Unknown"
	defaultCategory = "General"
)

// Adapter translates one provider's raw JSON body into canonical
// articles. Adapters are pure: no I/O, no shared state. Records without
// a URL are dropped (they cannot be deduplicated), and records whose
// date fails to parse are skipped rather than failing the run.
type Adapter func(src config.SourceConfig, raw []byte, now time.Time) []models.Article

var adapters = map[string]Adapter{
	config.SourceNewsAPI:  normalizeNewsAPI,
	config.SourceNYTimes:  normalizeNYTimes,
	config.SourceGuardian: normalizeGuardian,
}

// ForSource returns the adapter for the given provider name.
func ForSource(name string) (Adapter, bool) {
	a, ok := adapters[name]
	return a, ok
}

// Timestamp layouts the providers are known to emit, tried in order.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp normalizes a provider date into UTC. An empty value
// substitutes the ingestion run's time; an unparseable value reports
// ok=false so the caller can skip the record.
func parseTimestamp(value string, now time.Time) (time.Time, bool) {
	if value == "" {
		return now.UTC(), true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type newsAPIEnvelope struct {
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

func normalizeNewsAPI(src config.SourceConfig, raw []byte, now time.Time) []models.Article {
	var envelope newsAPIEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		// Missing or malformed article list yields no records, not an error
		return nil
	}

	var articles []models.Article
	for _, item := range envelope.Articles {
		if item.URL == "" {
			continue
		}

		publishedAt, ok := parseTimestamp(item.PublishedAt, now)
		if !ok {
			log.Printf("Warning: skipping %s article with unparseable date %q", src.Name, item.PublishedAt)
			continue
		}

		source := item.Source.Name
		if source == "" {
			source = src.Name
		}

		articles = append(articles, models.Article{
			Title:       item.Title,
			Content:     fallback(CleanContent(item.Content), defaultContent),
			Source:      source,
			Author:      fallback(item.Author, defaultAuthor),
			Category:    defaultCategory,
			PublishedAt: publishedAt,
			URL:         item.URL,
		})
	}

	return articles
}

type nyTimesEnvelope struct {
	Results []nyTimesArticle `json:"results"`
}

type nyTimesArticle struct {
	Title         string `json:"title"`
	Abstract      string `json:"abstract"`
	Byline        string `json:"byline"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
}

func normalizeNYTimes(src config.SourceConfig, raw []byte, now time.Time) []models.Article {
	var envelope nyTimesEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}

	var articles []models.Article
	for _, item := range envelope.Results {
		if item.URL == "" {
			continue
		}

		publishedAt, ok := parseTimestamp(item.PublishedDate, now)
		if !ok {
			log.Printf("Warning: skipping %s article with unparseable date %q", src.Name, item.PublishedDate)
			continue
		}

		articles = append(articles, models.Article{
			Title:       item.Title,
			Content:     fallback(item.Abstract, defaultContent),
			Source:      "New York Times",
			Author:      fallback(item.Byline, defaultAuthor),
			Category:    defaultCategory,
			PublishedAt: publishedAt,
			URL:         item.URL,
		})
	}

	return articles
}

type guardianEnvelope struct {
	Results []guardianArticle `json:"results"`
}

type guardianArticle struct {
	Title              string `json:"title"`
	WebURL             string `json:"webUrl"`
	Author             string `json:"author"`
	PillarName         string `json:"pillarName"`
	URL                string `json:"url"`
	WebPublicationDate string `json:"webPublicationDate"`
	Source             struct {
		Name string `json:"name"`
	} `json:"source"`
}

func normalizeGuardian(src config.SourceConfig, raw []byte, now time.Time) []models.Article {
	var envelope guardianEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}

	var articles []models.Article
	for _, item := range envelope.Results {
		if item.URL == "" {
			continue
		}

		publishedAt, ok := parseTimestamp(item.WebPublicationDate, now)
		if !ok {
			log.Printf("Warning: skipping %s article with unparseable date %q", src.Name, item.WebPublicationDate)
			continue
		}

		source := item.Source.Name
		if source == "" {
			source = src.Name
		}

		articles = append(articles, models.Article{
			Title:       item.Title,
			Content:     item.WebURL,
			Source:      source,
			Author:      fallback(item.Author, defaultAuthor),
			Category:    fallback(item.PillarName, defaultCategory),
			PublishedAt: publishedAt,
			URL:         item.URL,
		})
	}

	return articles
}

func fallback(value, def string) string {
	if value == "" {
		return def
	}
	return value
}
