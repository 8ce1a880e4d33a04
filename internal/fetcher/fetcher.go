package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "ai-steward-tracker/1.0 (+https://github.com/Thomas-Amann-IPAustralia/ai-steward-tracker)"

// Error is a failed fetch. Exactly one of Timeout, a non-zero StatusCode,
// or a wrapped network error describes the cause.
type Error struct {
	URL        string
	StatusCode int
	Timeout    bool
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("fetcher: %s: timed out", e.URL)
	case e.StatusCode != 0:
		return fmt.Sprintf("fetcher: %s: unexpected status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetcher: %s: %v", e.URL, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Fetcher retrieves raw document content over HTTP. It follows at most one
// redirect hop; a deeper chain surfaces as the second redirect's status.
// Retry policy belongs to the caller, not here.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

func New(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 2 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		timeout: timeout,
	}
}

// Fetch retrieves the document at url, failing with *Error on any non-2xx
// terminal status, network failure, or timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: url, Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: url, Timeout: errors.Is(err, context.DeadlineExceeded), Err: err}
	}
	return body, nil
}
