// Package model defines the data structures shared by every stage of an
// investigation.
//
// This package contains the following main types:
//   - CandidateRecord: one unverified observation about a person from one source
//   - GitHubProfile: the GitHub account data and the contacts derived from it
//   - Snapshot: the reconciled professional snapshot for one target name
//   - Investigation: the raw probe output plus the Snapshot built from it
//
// Types live in their own package so the probe, reconcile, pipeline, report
// and database packages can share them without import cycles. Every type is
// serializable to JSON for reports and database storage.
package model
