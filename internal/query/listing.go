package query

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"newsagg/internal/models"
)

// Date layouts accepted for date_from/date_to, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseListing builds an ArticleQuery from raw request parameters.
// date_from and date_to must be supplied together; page defaults to 1.
func ParseListing(values url.Values) (*models.ArticleQuery, error) {
	q := &models.ArticleQuery{
		Keyword:  strings.TrimSpace(values.Get("keyword")),
		Category: strings.TrimSpace(values.Get("category")),
		Source:   strings.TrimSpace(values.Get("source")),
		Page:     1,
	}

	from := strings.TrimSpace(values.Get("date_from"))
	to := strings.TrimSpace(values.Get("date_to"))
	if (from == "") != (to == "") {
		return nil, fmt.Errorf("date_from and date_to must be provided together")
	}
	if from != "" {
		dateFrom, err := parseDate(from)
		if err != nil {
			return nil, fmt.Errorf("invalid date_from: %v", err)
		}
		dateTo, err := parseDate(to)
		if err != nil {
			return nil, fmt.Errorf("invalid date_to: %v", err)
		}
		if dateTo.Before(dateFrom) {
			return nil, fmt.Errorf("date_to must not be before date_from")
		}
		q.DateFrom = dateFrom
		q.DateTo = dateTo
		q.HasDateRange = true
	}

	if pageStr := values.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			return nil, fmt.Errorf("invalid page: must be a positive integer")
		}
		q.Page = page
	}

	return q, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// CacheKey derives a deterministic cache key for a listing query. The key
// is a hash over the sorted, normalized parameter set, so two requests
// with the same filters in any parameter order always collide.
func CacheKey(q *models.ArticleQuery) string {
	parts := []string{
		"category=" + q.Category,
		"keyword=" + q.Keyword,
		"page=" + strconv.Itoa(q.Page),
		"source=" + q.Source,
	}
	if q.HasDateRange {
		parts = append(parts,
			"date_from="+q.DateFrom.UTC().Format("2006-01-02 15:04:05"),
			"date_to="+q.DateTo.UTC().Format("2006-01-02 15:04:05"),
		)
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(strings.Join(parts, "&")))
	return "articles:" + hex.EncodeToString(sum[:])
}
