package report

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func fixedClock() func() time.Time {
	t := time.Date(2023, time.July, 6, 17, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()
	r.now = fixedClock()

	r.Error("orders", "order OAAA-0001 failed")
	r.Error("orders", "order OBBB-0002 failed")
	r.Warning("duplicate_errors", "trade TAAA-1111 already exists")

	if got := r.TotalErrors(); got != 2 {
		t.Errorf("TotalErrors() = %d, want 2 (warnings excluded)", got)
	}

	errs, warns := r.Counts("orders")
	if errs != 2 || warns != 0 {
		t.Errorf("Counts(orders) = %d, %d, want 2, 0", errs, warns)
	}
	errs, warns = r.Counts("duplicate_errors")
	if errs != 0 || warns != 1 {
		t.Errorf("Counts(duplicate_errors) = %d, %d, want 0, 1", errs, warns)
	}
	errs, warns = r.Counts("unknown")
	if errs != 0 || warns != 0 {
		t.Errorf("Counts(unknown) = %d, %d, want 0, 0", errs, warns)
	}
}

func TestSummarize(t *testing.T) {
	r := NewRecorder()
	r.now = fixedClock()

	r.Error("orders", "order OAAA-0001 failed")
	r.Warning("duplicate_errors", "trade TAAA-1111 already exists")

	got := r.Summarize(LogFormatter{})

	if !strings.Contains(got, "Total Errors: 1") {
		t.Errorf("summary missing total: %q", got)
	}
	if !strings.Contains(got, r.RunID()) {
		t.Error("summary missing run id")
	}
	// Warning-only categories still appear with their messages.
	if !strings.Contains(got, "duplicate_errors (0 errors, 1 warnings)") {
		t.Errorf("summary missing warning-only category: %q", got)
	}
	if n := strings.Count(got, "order OAAA-0001 failed"); n != 1 {
		t.Errorf("message appears %d times, want 1", n)
	}
	if n := strings.Count(got, "trade TAAA-1111 already exists"); n != 1 {
		t.Errorf("warning message appears %d times, want 1", n)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	r := NewRecorder()
	r.now = fixedClock()

	got := r.Summarize(LogFormatter{})
	if !strings.Contains(got, "Total Errors: 0") {
		t.Errorf("summary missing zero total: %q", got)
	}
	if !strings.Contains(got, "No errors or warnings recorded.") {
		t.Errorf("empty summary missing placeholder: %q", got)
	}
}

func TestSummarizeFormatters(t *testing.T) {
	r := NewRecorder()
	r.now = fixedClock()
	r.Error("ledgers", "boom")

	logOut := r.Summarize(LogFormatter{})
	if !strings.Contains(logOut, "# Reconciliation Run Summary") {
		t.Errorf("log summary missing markdown title: %q", logOut)
	}
	if !strings.Contains(logOut, "**Total Errors: 1**") {
		t.Errorf("log summary missing markdown highlight: %q", logOut)
	}

	consoleOut := r.Summarize(ConsoleFormatter{})
	if !strings.Contains(consoleOut, "\x1b[1;36mReconciliation Run Summary\x1b[0m") {
		t.Errorf("console summary missing ANSI title: %q", consoleOut)
	}
}

func TestMerge(t *testing.T) {
	root := NewRecorder()
	root.now = fixedClock()
	root.Error("orders", "root error")

	child := NewRecorder()
	child.Error("orders", "child error")
	child.Warning("trades", "child warning")

	root.Merge(child)

	if got := root.TotalErrors(); got != 2 {
		t.Errorf("TotalErrors() = %d, want 2", got)
	}
	errs, _ := root.Counts("orders")
	if errs != 2 {
		t.Errorf("Counts(orders) errors = %d, want 2", errs)
	}
	_, warns := root.Counts("trades")
	if warns != 1 {
		t.Errorf("Counts(trades) warnings = %d, want 1", warns)
	}

	summary := root.Summarize(LogFormatter{})
	if !strings.Contains(summary, "root error") || !strings.Contains(summary, "child error") {
		t.Errorf("merged summary missing messages: %q", summary)
	}
}

func TestCloseLogsOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := NewRecorder()
	r.now = fixedClock()
	r.Error("orders", "boom")

	r.Close(logger)
	r.Close(logger)

	if n := strings.Count(buf.String(), "run finished"); n != 1 {
		t.Errorf("summary logged %d times, want 1", n)
	}
}
