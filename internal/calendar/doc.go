// Package calendar collects a year of events from the University of Denver calendar.
//
// The listing endpoint is filtered by date, so the year is fetched one month
// window at a time with a fixed pause between windows. Each event card links to
// a detail page holding the description; detail pages are fetched one by one
// before the next window starts, and the result file is written only after every
// window has been processed.
//
// Events whose date text parses can also be exported as an iCalendar file.
package calendar
