// Package pipeline runs an investigation as a sequence of steps.
//
// Each Step receives the *model.Investigation being built and fills in its
// part: the LinkedIn footprint search, the profile scrapes, the GitHub
// lookup, and finally the reconciliation into a Snapshot. Steps with no
// data dependency on each other can be grouped with Parallel, and ordered
// groups with Sequence; the default pipeline runs the LinkedIn branch and
// the GitHub lookup concurrently and joins them before reconciling.
//
// Probe steps degrade instead of failing, so a Step only returns an error
// when the context is cancelled. Run always leaves a Snapshot on the
// Investigation.
//
// BatchProcessor investigates several people concurrently with errgroup,
// giving each one a fresh pipeline.
package pipeline
