// Package runner executes scraping tasks one after another.
//
// Each task is isolated: an error or panic in one task is logged and recorded in
// the Report, and the next task still runs. A cancelled context stops the run
// between tasks and the remaining tasks are reported as skipped.
package runner
