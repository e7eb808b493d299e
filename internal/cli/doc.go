// Package cli implements the command-line interface for du-scraper.
//
// The root command loads configuration, applies flag overrides, builds the
// bulletin, athletics and calendar tasks and runs them through the runner.
// The run summary is printed as a table or as JSON, and the exit code tells
// whether every task succeeded.
package cli
