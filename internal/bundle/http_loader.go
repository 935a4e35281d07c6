package bundle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"resty.dev/v3"
)

// HTTPLoader fetches "<baseURL>/<baseName>_<lang>.properties" over HTTP.
// Server errors and transport failures are retried; 404 maps to ErrNotFound.
type HTTPLoader struct {
	httpClient       *resty.Client
	maxRetryAttempts uint
}

func NewHTTPLoader(baseURL string, timeout time.Duration, retryAttempts uint) *HTTPLoader {
	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(baseURL, "/"))
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPLoader{
		httpClient:       client,
		maxRetryAttempts: retryAttempts,
	}
}

func (l *HTTPLoader) Close() error {
	return l.httpClient.Close()
}

type statusError struct {
	statusCode int
	body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("response error %d: %s", e.statusCode, e.body)
}

func (l *HTTPLoader) fetch(ctx context.Context, name string, body *[]byte) error {
	response, err := l.httpClient.R().
		SetContext(ctx).
		Get("/" + name)
	if err != nil {
		return fmt.Errorf("httpClient.Get > %w", err)
	}
	if response.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}
	if response.StatusCode() != http.StatusOK {
		return &statusError{statusCode: response.StatusCode(), body: response.String()}
	}
	*body = response.Bytes()
	return nil
}

// isRetryableError reports transport failures, rate limiting and server errors.
func isRetryableError(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.statusCode >= http.StatusInternalServerError || se.statusCode == http.StatusTooManyRequests
	}
	return !errors.Is(err, ErrNotFound)
}

func (l *HTTPLoader) Load(ctx context.Context, baseName, lang string) (*Bundle, error) {
	name := ResourceName(baseName, lang)

	var body []byte
	// lastErr keeps the attempt error unwrapped from retry.Unrecoverable.
	var lastErr error
	err := retry.Do(
		func() error {
			lastErr = l.fetch(ctx, name, &body)
			if lastErr == nil {
				return nil
			}
			if !isRetryableError(lastErr) {
				return retry.Unrecoverable(lastErr)
			}
			return lastErr
		},
		retry.Context(ctx),
		retry.Attempts(l.maxRetryAttempts+1),
		retry.Delay(100*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			slog.Default().Debug("retrying resource bundle download",
				slog.String("resource", name),
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err),
			)
		}),
	)
	if err != nil {
		if lastErr == nil || ctx.Err() != nil {
			lastErr = err
		}
		return nil, &ResourceLoadError{BaseName: baseName, Lang: lang, Err: lastErr}
	}

	b, err := Parse(body)
	if err != nil {
		return nil, &ResourceLoadError{BaseName: baseName, Lang: lang, Err: err}
	}
	return b, nil
}

var _ Loader = (*HTTPLoader)(nil)
