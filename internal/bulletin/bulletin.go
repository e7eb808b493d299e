package bulletin

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/du-scraper/internal/logger"
	"github.com/pfrederiksen/du-scraper/internal/markup"
	"github.com/pfrederiksen/du-scraper/internal/runner"
)

const (
	BulletinURL = "https://bulletin.du.edu/undergraduate/coursedescriptions/comp/"
	OutputFile  = "bulletin.json"

	// MinCourseNumber is the lowest upper-division course number
	MinCourseNumber = 3000
)

const (
	blockSelector  = ".courseblock"
	titleSelector  = "p.courseblocktitle strong"
	prereqSelector = "p.courseblockdesc a"
)

// Expected format: "COMP 3001 Course Title (4 Credits)"
var titlePattern = regexp.MustCompile(`(?i)^COMP\s*(\d{4})\s+(.+?)(\s+\(.*Credits\))?$`)

// Course is one qualifying course
type Course struct {
	Course string `json:"course"`
	Title  string `json:"title"`
}

// Result is the document written to bulletin.json
type Result struct {
	Courses []Course `json:"courses"`
}

// Stats counts why blocks were dropped
type Stats struct {
	Blocks     int
	NoTitle    int
	NoMatch    int
	LowerLevel int
	HasPrereq  int
}

// Extract returns the qualifying courses in document order.
func Extract(doc *markup.Document) ([]Course, Stats) {
	courses := make([]Course, 0)
	var stats Stats

	for _, block := range doc.All(blockSelector) {
		stats.Blocks++

		course, ok := parseTitle(block.Find(titleSelector).Text(), &stats)
		if !ok {
			continue
		}

		if block.Has(prereqSelector) {
			stats.HasPrereq++
			continue
		}

		courses = append(courses, course)
	}

	return courses, stats
}

// parseTitle applies the title pattern and the course number floor
func parseTitle(text string, stats *Stats) (Course, bool) {
	if text == "" {
		stats.NoTitle++
		return Course{}, false
	}

	// The bulletin separates "COMP" and the number with &nbsp;, which \s does not match
	matches := titlePattern.FindStringSubmatch(strings.ReplaceAll(text, "\u00a0", " "))
	if matches == nil {
		stats.NoMatch++
		return Course{}, false
	}

	number, err := strconv.Atoi(matches[1])
	if err != nil {
		stats.NoMatch++
		return Course{}, false
	}
	if number < MinCourseNumber {
		stats.LowerLevel++
		return Course{}, false
	}

	return Course{
		Course: "COMP-" + matches[1],
		Title:  strings.TrimSpace(matches[2]),
	}, true
}

// Fetcher retrieves a page body
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Writer persists a result document
type Writer interface {
	WriteJSON(name string, v interface{}) (string, error)
}

// Task scrapes the bulletin and writes bulletin.json
type Task struct {
	fetcher Fetcher
	writer  Writer
	url     string
}

// NewTask creates the bulletin task. An empty url selects BulletinURL.
func NewTask(fetcher Fetcher, writer Writer, url string) *Task {
	if url == "" {
		url = BulletinURL
	}
	return &Task{fetcher: fetcher, writer: writer, url: url}
}

// Name implements runner.Task
func (t *Task) Name() string {
	return "bulletin"
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

	courses, stats := Extract(doc)
	logger.Debug("Bulletin blocks processed", logger.Fields{
		"blocks":      stats.Blocks,
		"no_title":    stats.NoTitle,
		"no_match":    stats.NoMatch,
		"lower_level": stats.LowerLevel,
		"has_prereq":  stats.HasPrereq,
		"kept":        len(courses),
	})

	path, err := t.writer.WriteJSON(OutputFile, Result{Courses: courses})
	if err != nil {
		return runner.Result{}, fmt.Errorf("saving courses: %w", err)
	}

	return runner.Result{Records: len(courses), Output: path}, nil
}
