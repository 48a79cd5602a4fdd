package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvGitHubToken is the environment variable holding a GitHub token.
const EnvGitHubToken = "GITHUB_TOKEN"

// ErrEmptyToken is returned when an empty token is saved.
var ErrEmptyToken = errors.New("empty github token")

// ResolveToken returns the GitHub token to use: the GITHUB_TOKEN
// environment variable wins over the configuration file. f may be nil.
func ResolveToken(f *File) string {
	if token := strings.TrimSpace(os.Getenv(EnvGitHubToken)); token != "" {
		return token
	}
	if f != nil {
		return strings.TrimSpace(f.GitHubToken)
	}
	return ""
}

// SaveToken stores token in the configuration file at path, keeping every
// other key of an existing file. The file is written with mode 0600.
func SaveToken(path, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}

	f, err := LoadConfigFile(path)
	switch {
	case errors.Is(err, ErrConfigNotFound):
		f = &File{}
	case err != nil:
		return err
	}
	f.GitHubToken = token

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict config permissions: %w", err)
	}
	return nil
}

// MaskToken returns token with everything but its prefix and last four
// characters hidden, for display.
func MaskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	prefix := ""
	for _, p := range []string{"github_pat_", "ghp_", "gho_", "ghu_", "ghs_"} {
		if strings.HasPrefix(token, p) {
			prefix = p
			break
		}
	}
	return prefix + strings.Repeat("*", 8) + token[len(token)-4:]
}
