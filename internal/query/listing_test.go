package query

import (
	"net/url"
	"testing"
	"time"
)

func TestParseListing_Defaults(t *testing.T) {
	q, err := ParseListing(url.Values{})
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}

	if q.Page != 1 {
		t.Errorf("Expected default page 1, got %d", q.Page)
	}
	if q.Keyword != "" || q.Category != "" || q.Source != "" {
		t.Error("Expected empty filters by default")
	}
	if q.HasDateRange {
		t.Error("Expected no date range by default")
	}
}

func TestParseListing_AllFilters(t *testing.T) {
	values := url.Values{}
	values.Set("keyword", "climate")
	values.Set("date_from", "2024-01-01")
	values.Set("date_to", "2024-01-31")
	values.Set("category", "Science")
	values.Set("source", "New York Times")
	values.Set("page", "3")

	q, err := ParseListing(values)
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}

	if q.Keyword != "climate" {
		t.Errorf("Expected keyword 'climate', got %q", q.Keyword)
	}
	if !q.HasDateRange {
		t.Fatal("Expected date range to be set")
	}
	if q.DateFrom != time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) {
		t.Errorf("Unexpected date_from: %v", q.DateFrom)
	}
	if q.Category != "Science" || q.Source != "New York Times" {
		t.Error("Category/source not parsed")
	}
	if q.Page != 3 {
		t.Errorf("Expected page 3, got %d", q.Page)
	}
}

func TestParseListing_DatePairRequired(t *testing.T) {
	values := url.Values{}
	values.Set("date_from", "2024-01-01")

	if _, err := ParseListing(values); err == nil {
		t.Error("Expected error when date_from is given without date_to")
	}

	values = url.Values{}
	values.Set("date_to", "2024-01-31")

	if _, err := ParseListing(values); err == nil {
		t.Error("Expected error when date_to is given without date_from")
	}
}

func TestParseListing_InvalidDates(t *testing.T) {
	values := url.Values{}
	values.Set("date_from", "not-a-date")
	values.Set("date_to", "2024-01-31")

	if _, err := ParseListing(values); err == nil {
		t.Error("Expected error for unparseable date_from")
	}

	values = url.Values{}
	values.Set("date_from", "2024-02-01")
	values.Set("date_to", "2024-01-01")

	if _, err := ParseListing(values); err == nil {
		t.Error("Expected error for inverted date range")
	}
}

func TestParseListing_InvalidPage(t *testing.T) {
	for _, page := range []string{"0", "-1", "abc"} {
		values := url.Values{}
		values.Set("page", page)

		if _, err := ParseListing(values); err == nil {
			t.Errorf("Expected error for page %q", page)
		}
	}
}

func TestCacheKey_OrderIndependent(t *testing.T) {
	first := url.Values{}
	first.Set("keyword", "ai")
	first.Set("category", "Technology")
	first.Set("source", "newsapi")

	// Same filters declared in a different order
	second := url.Values{}
	second.Set("source", "newsapi")
	second.Set("keyword", "ai")
	second.Set("category", "Technology")

	q1, err := ParseListing(first)
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}
	q2, err := ParseListing(second)
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}

	if CacheKey(q1) != CacheKey(q2) {
		t.Error("Expected identical cache keys regardless of parameter order")
	}
}

func TestCacheKey_DistinguishesQueries(t *testing.T) {
	base := url.Values{}
	base.Set("keyword", "ai")

	other := url.Values{}
	other.Set("keyword", "ai")
	other.Set("page", "2")

	q1, _ := ParseListing(base)
	q2, _ := ParseListing(other)

	if CacheKey(q1) == CacheKey(q2) {
		t.Error("Expected different cache keys for different pages")
	}

	withRange := url.Values{}
	withRange.Set("keyword", "ai")
	withRange.Set("date_from", "2024-01-01")
	withRange.Set("date_to", "2024-01-31")

	q3, err := ParseListing(withRange)
	if err != nil {
		t.Fatalf("ParseListing failed: %v", err)
	}

	if CacheKey(q1) == CacheKey(q3) {
		t.Error("Expected different cache keys with and without date range")
	}
}
