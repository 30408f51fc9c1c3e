// Package orchestrator is the run state machine at the center of autopost.
//
// It guarantees at most one publishing run executes at a time, tracks the
// run lifecycle (running flag, last run, next scheduled run, last result),
// and exposes a consistent snapshot for observation. Scheduled and manual
// triggers converge on the same TryStartRun gate; there is no second code
// path around the busy check.
package orchestrator
