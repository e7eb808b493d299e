// Package fetch issues the plain HTTP GET requests used by every scraping task.
//
// A Client performs one request per call with no retries. Transport failures and
// non-2xx responses are reported as *FetchError so callers can decide whether a
// failure aborts a whole task or only degrades one record.
package fetch
