// Package util provides low-level helpers shared by all other packages.
package util

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// LogLevel controls output verbosity.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// tagColors maps a level tag to the colour used on a terminal.
var tagColors = map[string]*color.Color{ //nolint:gochecknoglobals
	"INF": color.New(color.FgGreen),
	"WRN": color.New(color.FgYellow),
	"VRB": color.New(color.FgCyan),
	"DBG": color.New(color.FgHiBlack),
	"ERR": color.New(color.FgRed, color.Bold),
}

func init() {
	// Colour is decided per writer in write(), not by the package-wide
	// NoColor switch.
	for _, c := range tagColors {
		c.EnableColor()
	}
}

// Logger writes levelled status lines.  Informational levels go to
// stdout; warnings and errors go to stderr.
type Logger struct {
	level      LogLevel
	output     io.Writer // INF, VRB, DBG
	errOutput  io.Writer // WRN, ERR
	mu         sync.Mutex
	timestamps bool // if true, prepend HH:MM:SS.mmm timestamps
	color      bool // colour level tags when the writer is a terminal
}

// NewLogger returns a Logger that prints messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug).
func NewLogger(verbosity int) *Logger {
	return &Logger{
		level:      LogLevel(verbosity),
		output:     os.Stdout,
		errOutput:  os.Stderr,
		timestamps: verbosity >= 3, // auto-enable timestamps in debug mode
		color:      os.Getenv("NO_COLOR") == "",
	}
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) { l.timestamps = on }

// SetColor enables or disables coloured level tags.  Tags are only
// ever coloured when the destination is a terminal.
func (l *Logger) SetColor(on bool) { l.color = on }

// SetOutput sends every level to w.
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
	l.errOutput = w
}

// SetErrorOutput overrides the writer for warnings and errors
// (default: os.Stderr).
func (l *Logger) SetErrorOutput(w io.Writer) { l.errOutput = w }

// Level returns the current log level.
func (l *Logger) Level() LogLevel { return l.level }

// Info prints when verbosity ≥ 1.  Prefixed with [INF].
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogNormal {
		l.write(l.output, "INF", format, args...)
	}
}

// Warn prints when verbosity ≥ 1.  Prefixed with [WRN].
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LogNormal {
		l.write(l.errOutput, "WRN", format, args...)
	}
}

// Verbose prints when verbosity ≥ 2.  Prefixed with [VRB].
func (l *Logger) Verbose(format string, args ...interface{}) {
	if l.level >= LogVerbose {
		l.write(l.output, "VRB", format, args...)
	}
}

// Debug prints when verbosity ≥ 3.  Prefixed with [DBG].
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LogDebug {
		l.write(l.output, "DBG", format, args...)
	}
}

// Error always prints regardless of verbosity.  Prefixed with [ERR].
func (l *Logger) Error(format string, args ...interface{}) {
	l.write(l.errOutput, "ERR", format, args...)
}

func (l *Logger) write(w io.Writer, level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tag := level
	if l.color && isTerminal(w) {
		tag = tagColors[level].Sprint(level)
	}

	msg := fmt.Sprintf(format, args...)
	if l.timestamps {
		ts := time.Now().Format("15:04:05.000")
		fmt.Fprintf(w, "%s [%s] %s\n", ts, tag, msg)
	} else {
		fmt.Fprintf(w, "[%s] %s\n", tag, msg)
	}
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
