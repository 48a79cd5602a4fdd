package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "harvey"

	// DefaultTimeout bounds each individual HTTP request.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxResults is the number of LinkedIn candidates kept from a
	// footprint search.
	DefaultMaxResults = 3

	// DefaultMaxPeopleResults is the number of links kept from the broad
	// people search.
	DefaultMaxPeopleResults = 5

	// DefaultMaxRepos is the number of top repositories kept on a GitHub
	// profile.
	DefaultMaxRepos = 5

	// DefaultBatchSize is the number of people investigated concurrently.
	// Search engines throttle aggressively, so it is kept small.
	DefaultBatchSize = 2

	// DefaultScrapeDelay is the minimum pause between two LinkedIn profile
	// scrapes. The actual pause is randomized up to twice this value.
	DefaultScrapeDelay = 1 * time.Second

	// DefaultUserAgent is a desktop browser User-Agent. Search engines serve
	// their plain HTML result pages only to browsers.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

	// DatabaseFile is the SQLite file name inside the data directory.
	DatabaseFile = "harvey.db"
)

// Report formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatTable    = "table"
	FormatHTML     = "html"
)

// Formats returns every supported report format.
func Formats() []string {
	return []string{FormatText, FormatMarkdown, FormatJSON, FormatCSV, FormatTable, FormatHTML}
}

// ValidFormat reports whether format is a supported report format.
func ValidFormat(format string) bool {
	return slices.Contains(Formats(), format)
}

// Config holds all configuration options for one harvey run. It is built
// from defaults, the configuration file and CLI flags, in that order, and
// is not modified once the run starts.
type Config struct {
	// Targets are the names of the people to investigate.
	Targets []string

	// GitHubHint is a GitHub username or profile URL that skips the GitHub
	// user search. Only valid with a single target.
	GitHubHint string

	// GitHubToken authenticates GitHub API calls. Empty means anonymous
	// access with the public rate limit.
	GitHubToken string

	// Timeout bounds each individual HTTP request.
	Timeout time.Duration

	// MaxResults is the number of LinkedIn candidates kept per search.
	MaxResults int

	// MaxPeopleResults is the number of links kept by the people search.
	MaxPeopleResults int

	// MaxRepos is the number of top repositories kept on a GitHub profile.
	MaxRepos int

	// BatchSize is the number of concurrent investigations.
	BatchSize int

	// ScrapeDelay is the minimum pause between LinkedIn profile scrapes.
	ScrapeDelay time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// GuessSlug offers https://www.linkedin.com/in/<name-slug> as a
	// candidate when every search engine failed.
	GuessSlug bool

	// SkipProfilePage disables fetching the rendered GitHub profile page.
	SkipProfilePage bool

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit configuration file path.
	ConfigFilePath string

	// Format is the report format written to stdout or ReportFile.
	Format string

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string

	// ReportDir is where timestamped report artifacts are saved.
	ReportDir string

	// SaveReport writes a timestamped artifact to ReportDir.
	SaveReport bool

	// DBDir is the directory holding the SQLite database.
	DBDir string

	// SaveToDB persists investigations for history and diffing.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:          DefaultTimeout,
		MaxResults:       DefaultMaxResults,
		MaxPeopleResults: DefaultMaxPeopleResults,
		MaxRepos:         DefaultMaxRepos,
		BatchSize:        DefaultBatchSize,
		ScrapeDelay:      DefaultScrapeDelay,
		UserAgent:        DefaultUserAgent,
		Format:           FormatText,
		ReportDir:        ReportsDir(),
		DBDir:            XDGDataDir(),
		SaveToDB:         true,
	}
}

// XDGDataDir returns the XDG data directory for harvey.
// On Linux: ~/.local/share/harvey
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for harvey.
// On Linux: ~/.config/harvey
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ReportsDir returns the default directory for report artifacts.
func ReportsDir() string {
	return filepath.Join(XDGDataDir(), "reports")
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	for _, t := range c.Targets {
		if t == "" {
			return ErrNoTarget
		}
	}
	if c.GitHubHint != "" && len(c.Targets) > 1 {
		return ErrHintWithMultipleTargets
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxResults <= 0 || c.MaxPeopleResults <= 0 {
		return ErrInvalidMaxResults
	}
	if c.MaxRepos <= 0 {
		return ErrInvalidMaxRepos
	}
	if !ValidFormat(c.Format) {
		return ErrInvalidFormat
	}
	if c.ScrapeDelay < 0 {
		return ErrInvalidScrapeDelay
	}
	return nil
}
