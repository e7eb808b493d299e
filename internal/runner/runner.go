package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/du-scraper/internal/logger"
)

// Result describes what a task produced
type Result struct {
	Records int
	Output  string
}

// Task is one independent scraping pipeline
type Task interface {
	Name() string
	Run(ctx context.Context) (Result, error)
}

// Status is the outcome of one task
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// ErrUnknownTask is reported for a task name with no registered task
var ErrUnknownTask = errors.New("unknown task")

// TaskReport records the outcome of one task
type TaskReport struct {
	Task       string        `json:"task"`
	Status     Status        `json:"status"`
	Records    int           `json:"records"`
	Output     string        `json:"output,omitempty"`
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Error      string        `json:"error,omitempty"`
}

// Report is the outcome of a whole run
type Report struct {
	StartedAt time.Time    `json:"started_at"`
	Tasks     []TaskReport `json:"tasks"`
}

// Failed returns the number of tasks that did not succeed
func (r Report) Failed() int {
	n := 0
	for _, t := range r.Tasks {
		if t.Status != StatusOK {
			n++
		}
	}
	return n
}

// Runner holds the registered tasks
type Runner struct {
	tasks map[string]Task
	order []string
}

// New creates a Runner. Tasks are keyed by Name; a later task with the same
// name replaces an earlier one.
func New(tasks ...Task) *Runner {
	r := &Runner{tasks: make(map[string]Task, len(tasks))}
	for _, t := range tasks {
		if _, exists := r.tasks[t.Name()]; !exists {
			r.order = append(r.order, t.Name())
		}
		r.tasks[t.Name()] = t
	}
	return r
}

// Names returns the registered task names in registration order
func (r *Runner) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Run executes the named tasks in order. An empty list runs every registered task.
func (r *Runner) Run(ctx context.Context, names []string) Report {
	if len(names) == 0 {
		names = r.Names()
	}

	report := Report{
		StartedAt: time.Now().UTC(),
		Tasks:     make([]TaskReport, 0, len(names)),
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			logger.Warn("Task skipped", logger.Fields{"task": name, "reason": err.Error()})
			report.Tasks = append(report.Tasks, TaskReport{
				Task:   name,
				Status: StatusSkipped,
				Error:  err.Error(),
			})
			continue
		}

		task, ok := r.tasks[name]
		if !ok {
			err := fmt.Errorf("%w: %s", ErrUnknownTask, name)
			logger.Error("Task failed", logger.Fields{"task": name}, err)
			report.Tasks = append(report.Tasks, TaskReport{
				Task:   name,
				Status: StatusFailed,
				Error:  err.Error(),
			})
			continue
		}

		report.Tasks = append(report.Tasks, r.runOne(ctx, task))
	}

	logger.SetGauge("runner.failed_tasks", float64(report.Failed()))
	return report
}

func (r *Runner) runOne(ctx context.Context, task Task) TaskReport {
	name := task.Name()
	logger.Info("Task started", logger.Fields{"task": name})

	start := time.Now()
	res, err := safeRun(ctx, task)
	elapsed := time.Since(start)
	logger.RecordTiming("task."+name, elapsed)

	tr := TaskReport{
		Task:       name,
		Records:    res.Records,
		Output:     res.Output,
		Duration:   elapsed,
		DurationMS: elapsed.Milliseconds(),
	}

	if err != nil {
		logger.IncrCounter("runner.tasks_failed")
		logger.Error("Task failed", logger.Fields{"task": name, "duration": elapsed.String()}, err)
		tr.Status = StatusFailed
		tr.Error = err.Error()
		return tr
	}

	logger.IncrCounter("runner.tasks_ok")
	logger.Info("Task finished", logger.Fields{
		"task":     name,
		"records":  res.Records,
		"output":   res.Output,
		"duration": elapsed.String(),
	})
	tr.Status = StatusOK
	return tr
}

// safeRun turns a panic inside a task into an error
func safeRun(ctx context.Context, task Task) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{}
			err = fmt.Errorf("task panicked: %v", p)
		}
	}()
	return task.Run(ctx)
}
