package fetch

import "net/http"

// Status classifies the outcome of a GET.
type Status int

const (
	// StatusOK means a response was received.
	StatusOK Status = iota

	// StatusBlocked means a response was received but it is an
	// anti-automation challenge.
	StatusBlocked

	// StatusFailed means no response was received after all attempts.
	StatusFailed
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusBlocked:
		return "blocked"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a GET. Body and Header are shared between
// callers that requested the same URL concurrently and must not be modified.
type Result struct {
	URL        string
	Status     Status
	StatusCode int
	Header     http.Header
	Body       []byte

	// Err is the transport error when Status is StatusFailed.
	Err error
}

// OK reports whether a usable response was received.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Blocked reports whether the server answered with a challenge page.
func (r Result) Blocked() bool {
	return r.Status == StatusBlocked
}

// Failed reports whether no response was received.
func (r Result) Failed() bool {
	return r.Status == StatusFailed
}

// Success reports whether a usable response with a 2xx status code was received.
func (r Result) Success() bool {
	return r.OK() && r.StatusCode >= 200 && r.StatusCode < 300
}

// HTTPSuccess reports whether a 2xx response was received, ignoring the
// challenge-phrase classification. Structured API payloads carry user text
// that can contain those phrases.
func (r Result) HTTPSuccess() bool {
	return !r.Failed() && r.StatusCode >= 200 && r.StatusCode < 300
}
