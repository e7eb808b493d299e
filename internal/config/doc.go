// Package config loads du-scraper settings from JSON5 files.
//
// Settings start from Default. A file such as du-scraper.json5 is merged on top,
// followed by du-scraper.local.json5 if present. Missing files are not an error.
package config
