// Package fetch provides the resilient HTTP GET used by every probe.
//
// A Fetcher retries transport failures a small, fixed number of times with
// a short randomized backoff, then classifies the outcome:
//   - StatusOK: a response was received and looks usable
//   - StatusBlocked: the body contains an anti-automation challenge
//   - StatusFailed: no response could be obtained
//
// Non-2xx responses are returned as StatusOK with their status code; each
// probe decides what a given code means for its source. Concurrent GETs of
// the same URL share a single in-flight request.
package fetch
