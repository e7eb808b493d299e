// Package markup parses HTML and answers read-only CSS selector queries.
//
// A Document wraps a parsed tree. Node values scope further queries, read trimmed
// text and attributes, and test for descendants. A selector that matches nothing
// yields an empty Node rather than an error, so extractors treat an unexpected
// page layout as missing data.
//
// Locators describe a page as a named table of field selectors, so a change in
// site structure means editing one table entry.
package markup
