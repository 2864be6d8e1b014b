// Package report aggregates the errors and warnings of a reconciliation run
// and renders them as a single end-of-run summary.
package report

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type category struct {
	errors   int
	warnings int
	messages []string
}

// Recorder collects per-category errors and warnings for one run. Warnings
// count toward their category but not toward the run's error total, so a
// warning-only run still reports zero errors while keeping the detail.
// Recorder is safe for concurrent use.
type Recorder struct {
	mu          sync.Mutex
	runID       string
	started     time.Time
	categories  map[string]*category
	order       []string
	totalErrors int
	closeOnce   sync.Once

	now func() time.Time
}

func NewRecorder() *Recorder {
	r := &Recorder{
		runID:      uuid.NewString(),
		categories: make(map[string]*category),
		now:        time.Now,
	}
	r.started = r.now()
	return r
}

// RunID returns the run's unique identifier.
func (r *Recorder) RunID() string {
	return r.runID
}

// Error records an error message under a category.
func (r *Recorder) Error(categoryName, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.category(categoryName)
	c.errors++
	c.messages = append(c.messages, message)
	r.totalErrors++
}

// Warning records a warning message under a category.
func (r *Recorder) Warning(categoryName, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.category(categoryName)
	c.warnings++
	c.messages = append(c.messages, message)
}

func (r *Recorder) category(name string) *category {
	c, ok := r.categories[name]
	if !ok {
		c = &category{}
		r.categories[name] = c
		r.order = append(r.order, name)
	}
	return c
}

// TotalErrors returns the number of errors recorded so far. Warnings are not
// counted.
func (r *Recorder) TotalErrors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalErrors
}

// Counts returns the error and warning counts of one category.
func (r *Recorder) Counts(categoryName string) (errors, warnings int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.categories[categoryName]
	if !ok {
		return 0, 0
	}
	return c.errors, c.warnings
}

// Merge folds another recorder's categories into this one, preserving the
// other's message order. The other recorder's run id is discarded.
func (r *Recorder) Merge(other *Recorder) {
	other.mu.Lock()
	defer other.mu.Unlock()
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range other.order {
		oc := other.categories[name]
		c := r.category(name)
		c.errors += oc.errors
		c.warnings += oc.warnings
		c.messages = append(c.messages, oc.messages...)
		r.totalErrors += oc.errors
	}
}

// Summarize renders the run summary with the given formatter. Categories
// appear in first-recorded order with their messages.
func (r *Recorder) Summarize(f Formatter) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	finished := r.now()
	var b strings.Builder

	b.WriteString(f.Title("Reconciliation Run Summary"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Run %s, started %s, finished %s (%s)\n",
		r.runID,
		r.started.UTC().Format(time.RFC3339),
		finished.UTC().Format(time.RFC3339),
		finished.Sub(r.started).Round(time.Millisecond),
	)
	b.WriteString(f.Highlight(fmt.Sprintf("Total Errors: %d", r.totalErrors)))
	b.WriteString("\n")

	if len(r.order) == 0 {
		b.WriteString("No errors or warnings recorded.\n")
		return b.String()
	}

	for _, name := range r.order {
		c := r.categories[name]
		b.WriteString(f.Subtitle(fmt.Sprintf("%s (%d errors, %d warnings)", name, c.errors, c.warnings)))
		b.WriteString("\n")
		for _, msg := range c.messages {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	return b.String()
}

// Close logs the final summary exactly once. Later calls are no-ops.
func (r *Recorder) Close(logger *slog.Logger) {
	r.closeOnce.Do(func() {
		logger.Info("run finished",
			"run_id", r.runID,
			"total_errors", r.TotalErrors(),
			"summary", r.Summarize(LogFormatter{}),
		)
	})
}
