package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name looked up in the current
// and home directories.
const DefaultConfigFile = ".harvey"

// XDGConfigFile is the configuration file name inside the XDG config directory.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the content of a configuration file. Unset keys leave the
// corresponding Config value untouched.
type File struct {
	GitHubToken      string         `yaml:"github_token,omitempty"`
	UserAgent        string         `yaml:"user_agent,omitempty"`
	Timeout          time.Duration  `yaml:"timeout,omitempty"`
	MaxResults       int            `yaml:"max_results,omitempty"`
	MaxPeopleResults int            `yaml:"max_people_results,omitempty"`
	MaxRepos         int            `yaml:"max_repos,omitempty"`
	BatchSize        int            `yaml:"batch_size,omitempty"`
	ReportDir        string         `yaml:"report_dir,omitempty"`
	Format           string         `yaml:"format,omitempty"`
	GuessSlug        *bool          `yaml:"guess_slug,omitempty"`
	ScrapeDelay      *time.Duration `yaml:"scrape_delay,omitempty"`
}

// LoadConfigFile reads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &f, nil
}

// Apply copies every key set in f onto c.
func (f *File) Apply(c *Config) {
	if f.GitHubToken != "" {
		c.GitHubToken = f.GitHubToken
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Timeout > 0 {
		c.Timeout = f.Timeout
	}
	if f.MaxResults > 0 {
		c.MaxResults = f.MaxResults
	}
	if f.MaxPeopleResults > 0 {
		c.MaxPeopleResults = f.MaxPeopleResults
	}
	if f.MaxRepos > 0 {
		c.MaxRepos = f.MaxRepos
	}
	if f.BatchSize > 0 {
		c.BatchSize = f.BatchSize
	}
	if f.ReportDir != "" {
		c.ReportDir = f.ReportDir
	}
	if f.Format != "" {
		c.Format = f.Format
	}
	if f.GuessSlug != nil {
		c.GuessSlug = *f.GuessSlug
	}
	if f.ScrapeDelay != nil {
		c.ScrapeDelay = *f.ScrapeDelay
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. configPath, if specified
//  2. .harvey in the current directory
//  3. .harvey in the user's home directory
//  4. config.yaml in the XDG config directory
//
// It returns "" when no file exists.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, XDGConfigPath())

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// XDGConfigPath returns the path of the configuration file in the XDG
// config directory. `harvey auth` writes the token there.
func XDGConfigPath() string {
	return filepath.Join(XDGConfigDir(), XDGConfigFile)
}
