package probe

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/nao1215/harvey/internal/fetch"
)

// fakeGetter serves canned results by URL. Unknown URLs fail like an
// unreachable host.
type fakeGetter struct {
	mu        sync.Mutex
	responses map[string]fetch.Result
	calls     []string
	headers   []http.Header
}

func newFakeGetter(responses map[string]fetch.Result) *fakeGetter {
	return &fakeGetter{responses: responses}
}

func (f *fakeGetter) Get(_ context.Context, rawURL string, header http.Header) fetch.Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, rawURL)
	f.headers = append(f.headers, header.Clone())

	if res, ok := f.responses[rawURL]; ok {
		res.URL = rawURL
		return res
	}
	return fetch.Result{URL: rawURL, Status: fetch.StatusFailed, Err: errors.New("connection refused")}
}

func (f *fakeGetter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func page(body string) fetch.Result {
	return fetch.Result{Status: fetch.StatusOK, StatusCode: http.StatusOK, Body: []byte(body)}
}

func statusPage(code int) fetch.Result {
	return fetch.Result{Status: fetch.StatusOK, StatusCode: code}
}

func challengePage() fetch.Result {
	return fetch.Result{Status: fetch.StatusBlocked, StatusCode: http.StatusOK, Body: []byte("please solve the captcha")}
}
