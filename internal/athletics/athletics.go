package athletics

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/du-scraper/internal/logger"
	"github.com/pfrederiksen/du-scraper/internal/markup"
	"github.com/pfrederiksen/du-scraper/internal/runner"
)

const (
	AthleticsURL = "https://denverpioneers.com/index.aspx"
	OutputFile   = "athletic_events.json"
)

const (
	FieldDUTeam   = "duTeam"
	FieldOpponent = "opponent"
	FieldDate     = "date"
)

// DefaultLocators finds the featured carousel slide. The date path is
// positional and returns empty text when the carousel layout shifts.
var DefaultLocators = markup.Locators{
	{Field: FieldDUTeam, Selector: ".c-scoreboard__team--away .c-scoreboard__sport"},
	{Field: FieldOpponent, Selector: ".c-scoreboard__team--home .c-scoreboard__team-name"},
	{Field: FieldDate, Selector: "#main-content > section:nth-child(1) > scoreboard-component > div > " +
		"div.c-scoreboard__list.flex-item-1.slick-initialized.slick-slider > div > div > " +
		"div:nth-child(10) > div.c-scoreboard__datetime.flex > div"},
}

// Event is the featured game
type Event struct {
	DUTeam   string `json:"duTeam"`
	Opponent string `json:"opponent"`
	Date     string `json:"date"`
}

// Result is the document written to athletic_events.json
type Result struct {
	Events []Event `json:"events"`
}

// Extract reads the featured game using the locator table.
// Fields whose selector matched nothing are returned as missing.
func Extract(doc *markup.Document, locators markup.Locators) (Event, []string) {
	fields := locators.Extract(doc.Root())
	evt := Event{
		DUTeam:   fields[FieldDUTeam],
		Opponent: fields[FieldOpponent],
		Date:     fields[FieldDate],
	}
	return evt, locators.Missing(doc.Root())
}

// Fetcher retrieves a page body
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Writer persists a result document
type Writer interface {
	WriteJSON(name string, v interface{}) (string, error)
}

// Task scrapes the athletics homepage and writes athletic_events.json
type Task struct {
	fetcher  Fetcher
	writer   Writer
	url      string
	locators markup.Locators
}

// NewTask creates the athletics task. An empty url selects AthleticsURL and
// nil locators select DefaultLocators.
func NewTask(fetcher Fetcher, writer Writer, url string, locators markup.Locators) *Task {
	if url == "" {
		url = AthleticsURL
	}
	if locators == nil {
		locators = DefaultLocators
	}
	return &Task{fetcher: fetcher, writer: writer, url: url, locators: locators}
}

// Name implements runner.Task
func (t *Task) Name() string {
	return "athletics"
}

// Run implements runner.Task
func (t *Task) Run(ctx context.Context) (runner.Result, error) {
	body, err := t.fetcher.Fetch(ctx, t.url)
	if err != nil {
		return runner.Result{}, err
	}

	doc, err := markup.ParseBytes(body)
	if err != nil {
		return runner.Result{}, err
	}

	evt, missing := Extract(doc, t.locators)
	if len(missing) > 0 {
		logger.Warn("Scoreboard fields not found", logger.Fields{
			"url":    t.url,
			"fields": missing,
		})
	}

	path, err := t.writer.WriteJSON(OutputFile, Result{Events: []Event{evt}})
	if err != nil {
		return runner.Result{}, fmt.Errorf("saving athletic events: %w", err)
	}

	return runner.Result{Records: 1, Output: path}, nil
}
