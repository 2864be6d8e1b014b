package report

// Formatter styles the pieces of a run summary for its destination.
type Formatter interface {
	Title(s string) string
	Subtitle(s string) string
	Highlight(s string) string
}

// ConsoleFormatter styles summaries with ANSI escapes for terminal output.
type ConsoleFormatter struct{}

func (ConsoleFormatter) Title(s string) string     { return "\x1b[1;36m" + s + "\x1b[0m" }
func (ConsoleFormatter) Subtitle(s string) string  { return "\x1b[1m" + s + "\x1b[0m" }
func (ConsoleFormatter) Highlight(s string) string { return "\x1b[1;31m" + s + "\x1b[0m" }

// LogFormatter styles summaries as markdown for log files and plain sinks.
type LogFormatter struct{}

func (LogFormatter) Title(s string) string     { return "# " + s }
func (LogFormatter) Subtitle(s string) string  { return "## " + s }
func (LogFormatter) Highlight(s string) string { return "**" + s + "**" }
