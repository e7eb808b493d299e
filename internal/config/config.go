package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/pfrederiksen/du-scraper/internal/athletics"
	"github.com/pfrederiksen/du-scraper/internal/bulletin"
	"github.com/pfrederiksen/du-scraper/internal/calendar"
	"github.com/pfrederiksen/du-scraper/internal/logger"
	"github.com/pfrederiksen/du-scraper/internal/markup"
	"github.com/titanous/json5"
)

const DefaultPath = "du-scraper.json5"

// Task names accepted in Config.Tasks
const (
	TaskBulletin  = "bulletin"
	TaskAthletics = "athletics"
	TaskCalendar  = "calendar"
)

// KnownTasks lists every task in default run order
var KnownTasks = []string{TaskBulletin, TaskAthletics, TaskCalendar}

// Config holds every setting of a run
type Config struct {
	OutputDir string   `json:"output_dir"`
	Tasks     []string `json:"tasks"`
	LogLevel  string   `json:"log_level"`

	UserAgent string `json:"user_agent"`
	// TimeoutSeconds bounds each request; 0 keeps the HTTP library default
	TimeoutSeconds int `json:"timeout_seconds"`

	BulletinURL string `json:"bulletin_url"`

	AthleticsURL string `json:"athletics_url"`
	// AthleticsLocators overrides scoreboard selectors by field name
	AthleticsLocators map[string]string `json:"athletics_locators"`

	CalendarURL    string `json:"calendar_url"`
	CalendarOrigin string `json:"calendar_origin"`
	CalendarYear   int    `json:"calendar_year"`
	// PauseMS is the delay between month windows; negative disables it
	PauseMS int  `json:"pause_ms"`
	ICS     bool `json:"ics"`
}

// Default returns the built-in settings
func Default() Config {
	tasks := make([]string, len(KnownTasks))
	copy(tasks, KnownTasks)

	return Config{
		OutputDir:      "results",
		Tasks:          tasks,
		LogLevel:       "info",
		CalendarYear:   calendar.DefaultYear,
		PauseMS:        int(calendar.DefaultPause / time.Millisecond),
		BulletinURL:    bulletin.BulletinURL,
		AthleticsURL:   athletics.AthleticsURL,
		CalendarURL:    calendar.ListingBaseURL,
		CalendarOrigin: calendar.SiteOrigin,
	}
}

// Pause returns the delay between calendar month windows
func (c Config) Pause() time.Duration {
	if c.PauseMS < 0 {
		return -1
	}
	return time.Duration(c.PauseMS) * time.Millisecond
}

// Timeout returns the per-request timeout, zero meaning none
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Locators returns the scoreboard locators with overrides applied
func (c Config) Locators() (markup.Locators, error) {
	locators, err := athletics.DefaultLocators.Override(c.AthleticsLocators)
	if err != nil {
		return nil, fmt.Errorf("athletics_locators: %w", err)
	}
	return locators, nil
}

// CalendarOptions converts the calendar settings
func (c Config) CalendarOptions() calendar.Options {
	return calendar.Options{
		ListingURL: c.CalendarURL,
		Origin:     c.CalendarOrigin,
		Year:       c.CalendarYear,
		Pause:      c.Pause(),
		ICS:        c.ICS,
	}
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("output_dir is required")
	}

	known := make(map[string]bool, len(KnownTasks))
	for _, name := range KnownTasks {
		known[name] = true
	}
	seen := make(map[string]bool, len(c.Tasks))
	for _, name := range c.Tasks {
		if !known[name] {
			return fmt.Errorf("unknown task: %q (must be one of %s)", name, strings.Join(KnownTasks, ", "))
		}
		if seen[name] {
			return fmt.Errorf("task listed twice: %q", name)
		}
		seen[name] = true
	}

	if c.CalendarYear < 1 || c.CalendarYear > 9998 {
		return fmt.Errorf("calendar_year out of range: %d", c.CalendarYear)
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative: %d", c.TimeoutSeconds)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.Locators(); err != nil {
		return err
	}

	urls := []struct{ key, raw string }{
		{"bulletin_url", c.BulletinURL},
		{"athletics_url", c.AthleticsURL},
		{"calendar_url", c.CalendarURL},
		{"calendar_origin", c.CalendarOrigin},
	}
	for _, u := range urls {
		parsed, err := url.Parse(u.raw)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("%s must be an absolute URL: %q", u.key, u.raw)
		}
	}

	return nil
}

// Load merges the file at path and its .local override over Default.
// Neither file needs to exist. A layer only overrides with non-zero values:
// false, 0, "" and empty lists leave the lower layer's setting in place.
func Load(path string) (Config, error) {
	cfg := Default()

	fromFile, err := readConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("No config file found, using defaults", logger.Fields{"path": path})
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := mergo.Merge(&cfg, fromFile, mergo.WithOverride); err != nil {
		return cfg, fmt.Errorf("merging config: %w", err)
	}
	return cfg, nil
}

func splitExt(f string) (string, string) {
	ext := filepath.Ext(f)
	if ext == "" {
		return f, ""
	}
	return strings.TrimSuffix(f, ext), ext[1:]
}

// localPath returns <name>.local.<ext> next to name
func localPath(name string) string {
	prefix, ext := splitExt(filepath.Base(name))
	local := prefix + ".local"
	if ext != "" {
		local += "." + ext
	}
	return filepath.Join(filepath.Dir(name), local)
}

// readConfig reads name and merges <name>.local.<ext> over it.
// It returns os.ErrNotExist when neither file exists.
func readConfig(name string) (Config, error) {
	var out Config
	found := false

	base, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, fmt.Errorf("reading config: %w", err)
	}
	if len(base) > 0 {
		if err := json5.Unmarshal(base, &out); err != nil {
			return out, fmt.Errorf("parsing %s: %w", name, err)
		}
		found = true
	}

	overridePath := localPath(name)
	local, err := os.ReadFile(overridePath)
	if err != nil && !os.IsNotExist(err) {
		return out, fmt.Errorf("reading config: %w", err)
	}
	if len(local) > 0 {
		var override Config
		if err := json5.Unmarshal(local, &override); err != nil {
			return out, fmt.Errorf("parsing %s: %w", overridePath, err)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, fmt.Errorf("merging %s: %w", overridePath, err)
		}
		logger.Info("Merging config with local overrides", logger.Fields{"local": overridePath})
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}
