package models

import (
	"time"
)

// PageSize is the fixed number of articles per result page.
const PageSize = 10

// Article is the canonical record every provider response is normalized
// into. URL is the natural key: re-ingesting the same URL updates the
// existing row instead of creating a duplicate.
type Article struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Preference types accepted for user preferences.
const (
	PreferenceSource   = "source"
	PreferenceCategory = "category"
	PreferenceAuthor   = "author"
)

// UserPreference is one stored (type, value) pair for a user. At most one
// row exists per (user_id, preference_type, preference_value) triple.
type UserPreference struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"user_id"`
	PreferenceType  string    `json:"preference_type"`
	PreferenceValue string    `json:"preference_value"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ArticleQuery holds the normalized listing filters. All fields are
// optional and combine with AND semantics; Keyword matches title OR
// content as a single grouped predicate. DateFrom/DateTo are only
// honored together.
type ArticleQuery struct {
	Keyword      string    `json:"keyword"`
	DateFrom     time.Time `json:"date_from"`
	DateTo       time.Time `json:"date_to"`
	HasDateRange bool      `json:"-"`
	Category     string    `json:"category"`
	Source       string    `json:"source"`
	Page         int       `json:"page"`
}

// ArticlePage is a single page of query results with pagination metadata.
type ArticlePage struct {
	Data       []Article `json:"data"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
}

// SourceResult reports one source's ingestion outcome. Fetched is the
// number of records the provider returned, Upserted the number that were
// newly inserted or that changed an existing row.
type SourceResult struct {
	Source   string `json:"source"`
	Fetched  int    `json:"fetched"`
	Upserted int    `json:"upserted"`
	Error    string `json:"error,omitempty"`
}
