package upstream

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	fn := func(context.Context) (*CatalogPage, error) {
		calls++
		if calls < 3 {
			return nil, &FetchError{Kind: KindStatus, Status: 503}
		}
		return &CatalogPage{}, nil
	}

	page, err := withRetry(fn, 3, time.Millisecond, discardLogger())(context.Background())
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if page == nil {
		t.Fatal("page is nil")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	fn := func(context.Context) (*CatalogPage, error) {
		calls++
		return nil, &FetchError{Kind: KindNetwork}
	}

	_, err := withRetry(fn, 3, time.Millisecond, discardLogger())(context.Background())
	if err == nil {
		t.Fatal("want error after exhausting attempts")
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetrySkipsClientErrors(t *testing.T) {
	calls := 0
	fn := func(context.Context) (*CatalogPage, error) {
		calls++
		return nil, &FetchError{Kind: KindStatus, Status: 400}
	}

	_, err := withRetry(fn, 3, time.Millisecond, discardLogger())(context.Background())
	if err == nil {
		t.Fatal("want error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (400 is not retryable)", calls)
	}
}

func TestRetryableClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"network", &FetchError{Kind: KindNetwork}, true},
		{"decode", &FetchError{Kind: KindDecode}, true},
		{"500", &FetchError{Kind: KindStatus, Status: 500}, true},
		{"503", &FetchError{Kind: KindStatus, Status: 503}, true},
		{"400", &FetchError{Kind: KindStatus, Status: 400}, false},
		{"404", &FetchError{Kind: KindStatus, Status: 404}, false},
		{"408", &FetchError{Kind: KindStatus, Status: 408}, true},
		{"429", &FetchError{Kind: KindStatus, Status: 429}, true},
	}
	for _, tc := range cases {
		if got := retryable(tc.err); got != tc.want {
			t.Errorf("retryable(%s) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestTimeoutBoundsRetries(t *testing.T) {
	fn := func(ctx context.Context) (*CatalogPage, error) {
		<-ctx.Done()
		return nil, &FetchError{Kind: KindNetwork, Err: ctx.Err()}
	}

	chain := withTimeout(withRetry(fn, 5, time.Second, discardLogger()), 20*time.Millisecond)
	start := time.Now()
	_, err := chain(context.Background())
	if err == nil {
		t.Fatal("want timeout error")
	}
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != KindTimeout {
		t.Errorf("err = %v, want KindTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout did not cut the retry loop short: %v", elapsed)
	}
}
