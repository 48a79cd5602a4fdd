// Package main provides the entry point for the harvey CLI.
//
// harvey builds a professional snapshot of a person from public sources:
// LinkedIn profiles found through search engine footprints, the person's
// GitHub account and a portfolio link. GitHub is used to corroborate the
// LinkedIn identity.
//
// Usage:
//
//	harvey investigate "Jane Doe"
//	harvey investigate --github janedoe "Jane Doe"
//	harvey report
//
// See --help for all available options.
package main

func main() {
	Execute()
}
