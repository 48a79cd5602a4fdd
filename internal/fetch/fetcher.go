package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/singleflight"
)

// Default fetch settings.
const (
	// DefaultTimeout bounds each individual request.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxAttempts is the total number of tries per GET.
	DefaultMaxAttempts = 2

	// DefaultBackoff is the backoff unit. The wait before retry n (1-based)
	// is n*DefaultBackoff plus up to one DefaultBackoff of jitter.
	DefaultBackoff = 500 * time.Millisecond

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultUserAgent is a desktop browser User-Agent. Search engines and
	// LinkedIn serve stripped or empty pages to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Fetcher performs GET requests with bounded retries and block detection.
// A Fetcher is safe for concurrent use.
type Fetcher struct {
	client      *retryablehttp.Client
	userAgent   string
	maxBodySize int64
	logger      *slog.Logger
	group       singleflight.Group
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.HTTPClient.Timeout = d
		}
	}
}

// WithMaxAttempts sets the total number of tries per GET.
func WithMaxAttempts(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.client.RetryMax = n - 1
		}
	}
}

// WithBackoff sets the backoff unit.
func WithBackoff(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.RetryWaitMin = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBodySize limits how many bytes of a body are read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithLogger sets the logger. It is also handed to the retry client.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client, e.g. with an
// httptest server's client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			hc := *c
			if hc.Timeout == 0 {
				hc.Timeout = f.client.HTTPClient.Timeout
			}
			f.client.HTTPClient = &hc
		}
	}
}

// New creates a Fetcher with the given options.
func New(opts ...Option) *Fetcher {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Timeout: DefaultTimeout}
	rc.RetryMax = DefaultMaxAttempts - 1
	rc.RetryWaitMin = DefaultBackoff
	rc.RetryWaitMax = 0
	rc.CheckRetry = retryTransportErrors
	rc.Backoff = linearJitterBackoff
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	f := &Fetcher{
		client:      rc,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	if f.logger == nil {
		f.logger = slog.Default()
	}
	f.client.Logger = retryLogger{logger: f.logger}

	return f
}

// retryTransportErrors retries only when no response was received.
// A response of any status is final: GETs are assumed idempotent, but a
// request that reached the server is never repeated.
func retryTransportErrors(ctx context.Context, _ *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return err != nil, nil
}

// linearJitterBackoff waits (attempt+1)*unit plus up to one unit of jitter.
// maxWait caps the wait when positive.
func linearJitterBackoff(unit, maxWait time.Duration, attempt int, _ *http.Response) time.Duration {
	wait := unit * time.Duration(attempt+1)
	if unit > 0 {
		wait += time.Duration(rand.Int64N(int64(unit)))
	}
	if maxWait > 0 && wait > maxWait {
		wait = maxWait
	}
	return wait
}

// Get fetches rawURL with the given extra headers.
// It never returns an error; failures are reported through Result.Status.
func (f *Fetcher) Get(ctx context.Context, rawURL string, header http.Header) Result {
	key := requestKey(rawURL, header)
	v, _, shared := f.group.Do(key, func() (any, error) {
		return f.get(ctx, rawURL, header), nil
	})
	if shared {
		f.logger.Debug("joined in-flight request", "url", rawURL)
	}
	return v.(Result) //nolint:forcetypeassert // group only stores Result
}

func (f *Fetcher) get(ctx context.Context, rawURL string, header http.Header) Result {
	result := Result{URL: rawURL}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		result.Status = StatusFailed
		result.Err = fmt.Errorf("failed to build request: %w", err)
		return result
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, values := range header {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			f.logger.Debug("request cancelled", "url", rawURL, "error", err)
		} else {
			f.logger.Warn("request failed", "url", rawURL, "error", err)
		}
		result.Status = StatusFailed
		result.Err = err
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		f.logger.Debug("failed to read body", "url", rawURL, "error", err)
		result.Status = StatusFailed
		result.Err = fmt.Errorf("failed to read body: %w", err)
		return result
	}

	result.StatusCode = resp.StatusCode
	result.Header = resp.Header
	result.Body = body

	if IsBlocked(body) {
		f.logger.Debug("anti-automation page detected", "url", rawURL, "status", resp.StatusCode)
		result.Status = StatusBlocked
		return result
	}

	result.Status = StatusOK
	return result
}

// requestKey identifies a request for in-flight deduplication.
func requestKey(rawURL string, header http.Header) string {
	if len(header) == 0 {
		return rawURL
	}
	keys := make([]string, 0, len(header))
	for k := range header {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteString(rawURL)
	for _, k := range keys {
		sb.WriteString("\n")
		sb.WriteString(k)
		sb.WriteString(":")
		sb.WriteString(strings.Join(header[k], ","))
	}
	return sb.String()
}
