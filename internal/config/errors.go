package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no name to investigate was given.
	ErrNoTarget = errors.New("no target specified: provide the name of a person")

	// ErrHintWithMultipleTargets is returned when --github is combined with
	// several names.
	ErrHintWithMultipleTargets = errors.New("a github hint can only be used with a single target")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidMaxResults is returned when a search result limit is not positive.
	ErrInvalidMaxResults = errors.New("invalid max results: must be positive")

	// ErrInvalidMaxRepos is returned when the repository limit is not positive.
	ErrInvalidMaxRepos = errors.New("invalid max repos: must be positive")

	// ErrInvalidFormat is returned for an unknown report format.
	ErrInvalidFormat = errors.New("invalid report format: must be one of text, markdown, json, csv, table, html")

	// ErrInvalidScrapeDelay is returned when the scrape delay is negative.
	ErrInvalidScrapeDelay = errors.New("invalid scrape delay: must be non-negative")
)
