package calendar

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pfrederiksen/du-scraper/internal/logger"
	"github.com/pfrederiksen/du-scraper/internal/markup"
	"github.com/pfrederiksen/du-scraper/internal/runner"
)

const (
	ListingBaseURL = "https://www.du.edu/calendar"
	SiteOrigin     = "https://www.du.edu"
	OutputFile     = "calendar_events.json"
	ICSFile        = "calendar_events.ics"

	DefaultYear  = 2025
	DefaultPause = 500 * time.Millisecond
)

const (
	itemSelector        = "#events-listing .events-listing__item"
	cardSelector        = "a.event-card"
	timeSelector        = "p:has(span.icon-du-clock)"
	descriptionSelector = `div.description[itemprop="description"]`
)

// Event is one calendar entry. Time and Description are omitted when empty.
type Event struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Time        string `json:"time,omitempty"`
	Description string `json:"description,omitempty"`
}

// Result is the document written to calendar_events.json
type Result struct {
	Events []Event `json:"events"`
}

// Card is an event card from a listing page
type Card struct {
	Title     string
	Date      string
	Time      string
	DetailURL string
}

// ParseListing returns the event cards of a listing page in document order.
// Root-relative links are resolved against origin.
func ParseListing(doc *markup.Document, origin *url.URL) []Card {
	cards := make([]Card, 0)

	for _, item := range doc.All(itemSelector) {
		link := item.Find(cardSelector)
		if !link.Exists() {
			continue
		}

		card := Card{
			Date:  link.First("p").Text(),
			Title: link.Find("h3").Text(),
			Time:  link.Find(timeSelector).Text(),
		}

		if href, ok := link.Attr("href"); ok && href != "" {
			card.DetailURL = resolveLink(origin, href)
		}

		cards = append(cards, card)
	}

	return cards
}

func resolveLink(origin *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		logger.Debug("Ignoring malformed event link", logger.Fields{"href": href})
		return ""
	}
	if ref.IsAbs() || origin == nil {
		return ref.String()
	}
	return origin.ResolveReference(ref).String()
}

// ParseDescription reads the description from an event detail page
func ParseDescription(doc *markup.Document) string {
	return doc.Find(descriptionSelector).Text()
}

// Fetcher retrieves a page body
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Writer persists result files
type Writer interface {
	WriteJSON(name string, v interface{}) (string, error)
	WriteFile(name string, data []byte) (string, error)
}

// Options configures a Task. Zero values select the defaults.
type Options struct {
	ListingURL string
	Origin     string
	Year       int
	// Pause between month windows; negative disables it
	Pause time.Duration
	// ICS also writes calendar_events.ics
	ICS bool
}

// Task scrapes a year of calendar events and writes calendar_events.json
type Task struct {
	fetcher Fetcher
	writer  Writer
	opts    Options
	origin  *url.URL
	now     func() time.Time
}

// NewTask creates the calendar task
func NewTask(fetcher Fetcher, writer Writer, opts Options) (*Task, error) {
	if opts.ListingURL == "" {
		opts.ListingURL = ListingBaseURL
	}
	if opts.Origin == "" {
		opts.Origin = SiteOrigin
	}
	if opts.Year == 0 {
		opts.Year = DefaultYear
	}
	if opts.Pause == 0 {
		opts.Pause = DefaultPause
	}

	origin, err := url.Parse(opts.Origin)
	if err != nil {
		return nil, fmt.Errorf("parsing site origin: %w", err)
	}
	if _, err := url.Parse(opts.ListingURL); err != nil {
		return nil, fmt.Errorf("parsing listing URL: %w", err)
	}

	return &Task{
		fetcher: fetcher,
		writer:  writer,
		opts:    opts,
		origin:  origin,
		now:     time.Now,
	}, nil
}

// Name implements runner.Task
func (t *Task) Name() string {
	return "calendar"
}

// Run implements runner.Task
func (t *Task) Run(ctx context.Context) (runner.Result, error) {
	windows := MonthWindows(t.opts.Year)
	events := make([]Event, 0)
	failed := 0

	for i, w := range windows {
		if i > 0 {
			if err := pause(ctx, t.opts.Pause); err != nil {
				return runner.Result{}, err
			}
		}

		windowEvents, err := t.scrapeWindow(ctx, w)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return runner.Result{}, ctxErr
			}
			failed++
			logger.IncrCounter("calendar.windows_failed")
			logger.Warn("Skipping calendar window", logger.Fields{
				"start": w.Start,
				"end":   w.End,
				"error": err.Error(),
			})
			continue
		}

		logger.Debug("Calendar window processed", logger.Fields{
			"start":  w.Start,
			"end":    w.End,
			"events": len(windowEvents),
		})
		events = append(events, windowEvents...)
	}

	logger.AddCounter("calendar.events", int64(len(events)))

	path, err := t.writer.WriteJSON(OutputFile, Result{Events: events})
	if err != nil {
		return runner.Result{}, fmt.Errorf("saving calendar events: %w", err)
	}

	if t.opts.ICS {
		if err := t.writeICS(events); err != nil {
			return runner.Result{}, err
		}
	}

	res := runner.Result{Records: len(events), Output: path}
	if failed == len(windows) {
		return res, fmt.Errorf("all %d month windows failed", failed)
	}
	return res, nil
}

// scrapeWindow fetches one listing page and the detail page of each card.
// It returns only after every detail fetch has finished.
func (t *Task) scrapeWindow(ctx context.Context, w Window) ([]Event, error) {
	listing, err := ListingURL(t.opts.ListingURL, w)
	if err != nil {
		return nil, err
	}

	body, err := t.fetcher.Fetch(ctx, listing)
	if err != nil {
		return nil, err
	}

	doc, err := markup.ParseBytes(body)
	if err != nil {
		return nil, err
	}

	cards := ParseListing(doc, t.origin)
	events := make([]Event, 0, len(cards))

	for _, card := range cards {
		evt := Event{
			Title: card.Title,
			Date:  card.Date,
			Time:  card.Time,
		}
		if card.DetailURL != "" {
			evt.Description = t.fetchDescription(ctx, card.DetailURL)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}

	return events, nil
}

// fetchDescription returns "" when the detail page cannot be fetched
func (t *Task) fetchDescription(ctx context.Context, detailURL string) string {
	body, err := t.fetcher.Fetch(ctx, detailURL)
	if err != nil {
		logger.IncrCounter("calendar.details_failed")
		logger.Warn("Error fetching event details", logger.Fields{
			"url":   detailURL,
			"error": err.Error(),
		})
		return ""
	}

	doc, err := markup.ParseBytes(body)
	if err != nil {
		logger.IncrCounter("calendar.details_failed")
		logger.Warn("Error parsing event details", logger.Fields{
			"url":   detailURL,
			"error": err.Error(),
		})
		return ""
	}

	return ParseDescription(doc)
}

func (t *Task) writeICS(events []Event) error {
	data, skipped := BuildICS(events, t.opts.Year, t.now())
	if skipped > 0 {
		logger.Info("Events without a parseable date left out of calendar file", logger.Fields{
			"skipped": skipped,
		})
	}

	if _, err := t.writer.WriteFile(ICSFile, data); err != nil {
		return fmt.Errorf("saving calendar file: %w", err)
	}
	return nil
}

// pause waits d unless ctx is cancelled first
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
