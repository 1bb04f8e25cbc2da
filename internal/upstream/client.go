// Package upstream implements the resilient client for the external recipe
// catalog endpoint.
//
// The raw HTTP call is wrapped by an explicit decorator chain:
//
//	cache -> circuit breaker -> timeout -> retry -> status-validated call
//
// Each stage is a plain function from request to result/error so that
// ordering and interaction stay visible and testable in isolation. The
// overall timeout bounds the whole retry loop, and the breaker observes
// timeout failures. A terminal failure of any kind is converted by the
// fallback stage into an empty catalog page, never an error to the caller.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// CatalogPage is one transient response unit from the upstream source: a
// batch of external recipe records plus pagination counters. It is consumed
// once by the ingestion pipeline and discarded.
type CatalogPage struct {
	Recipes []ExternalRecipe `json:"recipes"`
	Total   int              `json:"total"`
	Skip    int              `json:"skip"`
	Limit   int              `json:"limit"`
}

// ExternalRecipe is a recipe record as the upstream source shapes it. Its id
// belongs to the source and is dropped during ingestion.
type ExternalRecipe struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Cuisine         string   `json:"cuisine"`
	Ingredients     []string `json:"ingredients"`
	Instructions    []string `json:"instructions"`
	Tags            []string `json:"tags"`
	CookTimeMinutes *int     `json:"cookTimeMinutes"`
	Image           string   `json:"image"`
}

// ErrKind classifies fetch failures.
type ErrKind string

// Fetch failure kinds.
const (
	KindNetwork     ErrKind = "network"
	KindStatus      ErrKind = "status"
	KindDecode      ErrKind = "decode"
	KindTimeout     ErrKind = "timeout"
	KindBreakerOpen ErrKind = "breaker_open"
)

// FetchError is the typed failure produced by the fetch chain. Status and
// Body are set for KindStatus failures.
type FetchError struct {
	Kind   ErrKind
	Status int
	Body   string
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("upstream: status %d: %s", e.Status, e.Body)
	default:
		return fmt.Sprintf("upstream: %s: %v", e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// retryable reports whether a failed attempt is worth repeating. Transient
// and server-side failures are; malformed-request class statuses are not
// (408 and 429 still count as transient).
func retryable(err error) bool {
	var fe *FetchError
	if !errors.As(err, &fe) {
		return true
	}
	if fe.Kind != KindStatus {
		return true
	}
	if fe.Status == http.StatusRequestTimeout || fe.Status == http.StatusTooManyRequests {
		return true
	}
	return fe.Status < 400 || fe.Status >= 500
}

const maxErrorBody = 4 << 10

// Client performs the raw catalog GET with status validation and decoding.
type Client struct {
	url    string
	hc     *http.Client
	logger *slog.Logger
}

// NewClient creates a catalog client for the given endpoint. Deadlines are
// supplied per call through the context, not the http.Client.
func NewClient(url string, logger *slog.Logger) *Client {
	return &Client{url: url, hc: &http.Client{}, logger: logger}
}

// Fetch performs one catalog request. Any 4xx/5xx response becomes a typed
// failure carrying status and body so the retry and breaker stages can
// evaluate it.
func (c *Client) Fetch(ctx context.Context) (*CatalogPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &FetchError{Kind: KindStatus, Status: resp.StatusCode, Body: string(body)}
	}

	var page CatalogPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, &FetchError{Kind: KindDecode, Err: err}
	}
	if page.Recipes == nil {
		page.Recipes = []ExternalRecipe{}
	}
	return &page, nil
}
