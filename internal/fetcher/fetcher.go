package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"newsagg/internal/config"
)

// FetchError reports a failed provider request. A failing source is
// logged and skipped by the coordinator; it never aborts the run.
type FetchError struct {
	Source     string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.Source, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Fetcher struct {
	client *http.Client
}

func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Fetch issues one GET against the source's base URL with its configured
// query parameters and returns the raw response body. Any transport
// failure or non-2xx status yields a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, src config.SourceConfig) ([]byte, error) {
	reqURL, err := url.Parse(src.BaseURL)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: fmt.Errorf("invalid base URL: %v", err)}
	}

	params := reqURL.Query()
	for key, value := range src.Params {
		params.Set(key, value)
	}
	reqURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Source: src.Name, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: src.Name, Err: fmt.Errorf("reading response: %v", err)}
	}

	return body, nil
}
