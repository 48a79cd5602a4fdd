// Package config provides the configuration of a harvey run: lookup limits,
// politeness settings, report output and persistence, plus the optional
// YAML configuration file and GitHub token storage.
package config
