// Package extract turns raw HTML and JSON into typed partial records.
//
// Every function here is pure: it never performs I/O, and it tolerates
// total failure of its inputs. Page markup of third-party sites changes
// without notice, so each field is recovered through an ordered list of
// independent strategies where the first non-empty result wins.
//
// The package covers:
//   - LinkedIn profile fields (name, headline, job title, about text)
//   - contact links (LinkedIn URL, email) embedded in free text
//   - result links on search engine pages, including redirect unwrapping
//   - GitHub REST API payloads
//   - URL normalization and name folding shared by all of the above
package extract
