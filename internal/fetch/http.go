package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/huangsam/barrace/internal/contract"
)

// defaultDelay is the first backoff step between HTTP attempts.
const defaultDelay = 500 * time.Millisecond

// maxBodyBytes is the default cap on a response body.
const maxBodyBytes = 256 << 20

var (
	// ErrStatus is returned for a non-200 HTTP response.
	ErrStatus = errors.New("unexpected status")

	// ErrBodyTooLarge is returned when a response body exceeds the configured cap.
	ErrBodyTooLarge = errors.New("response body too large")
)

// retryableError marks a transient failure worth another attempt.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func isRetryable(err error) bool {
	return errors.As(err, new(*retryableError))
}

// getWithRetry downloads url with exponential backoff. Network errors,
// 5xx and 429 responses are retried; other statuses fail immediately.
func (f *SourceFetcher) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	logger := contract.LoggerFromContext(ctx)
	delay := f.opts.Delay
	if delay <= 0 {
		delay = defaultDelay
	}

	var body []byte
	err := retry.Do(
		func() error {
			var err error
			body, err = f.get(ctx, url)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(f.opts.Retries)+1),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("Retrying source download", "url", url, "attempt", n+1, "err", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *SourceFetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/csv, text/plain, */*")

	res, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &retryableError{err: err}
	}
	defer func() { _ = res.Body.Close() }()

	if err := checkStatus(res.StatusCode); err != nil {
		return nil, err
	}

	limit := f.opts.MaxBody
	if limit <= 0 {
		limit = maxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, limit+1))
	if err != nil {
		return nil, &retryableError{err: err}
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrBodyTooLarge, limit)
	}
	return body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusTooManyRequests || code >= 500:
		return &retryableError{err: fmt.Errorf("%w: %d", ErrStatus, code)}
	default:
		return fmt.Errorf("%w: %d", ErrStatus, code)
	}
}
