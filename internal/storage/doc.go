// Package storage writes scrape results to JSON files in an output directory.
//
// The output directory is created on demand and each write replaces the previous
// file of the same name, so every run leaves exactly one copy of each result.
// The default location is ./results.
package storage
