// Package reconcile merges the candidate records gathered for one person
// into a model.Snapshot.
//
// Reconciliation runs five steps in a fixed order:
//
//  1. Deduplicate the search candidates by normalized URL and align the
//     scraped records with them.
//  2. Validate against GitHub: a LinkedIn URL found on the GitHub profile
//     that matches a candidate marks the snapshot GitHub-validated. A URL
//     that matches none is scraped; if it resolves to a named profile it
//     replaces every candidate.
//  3. Otherwise the snapshot stays search-based.
//  4. When no candidate is left, a broad people search fills the
//     candidate list with links tagged linkedin_not_found.
//  5. The portfolio URL is the GitHub blog if it is an absolute URL, else
//     the first non-LinkedIn URL embedded in the gathered free text.
//
// The Engine never fails. With every source down it still returns an
// empty search-based Snapshot.
package reconcile
