// Package debug holds the zerolog hooks and console logger of the auhtml
// command line tool.
package debug

import (
	"fmt"
	"io"
	"path"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

const defaultTimeFormat = "2006-01-02T15:04:05.0000Z"

// NewLogger returns a console logger writing to w at level, with the time and
// caller hooks installed.
func NewLogger(w io.Writer, level zerolog.Level, colorize bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:     w,
		NoColor: !colorize,
	}
	return zerolog.New(out).
		Level(level).
		Hook(CustomTimeHook{WithColor: colorize}).
		Hook(CustomCallerHook{WithColor: colorize})
}

// skipFrameCount reads the frames the event was asked to skip, so the caller
// hook reports the same frame as zerolog's own Caller().
func skipFrameCount(e *zerolog.Event) int {
	field := reflect.ValueOf(e).Elem().FieldByName("skipFrame")
	if field.IsValid() {
		return int(field.Int())
	}
	return 0
}

// CustomTimeHook stamps events with a millisecond timestamp.
type CustomTimeHook struct {
	WithColor bool
	Format    string
}

func (t CustomTimeHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	format := t.Format
	if format == "" {
		format = defaultTimeFormat
	}
	e.Str(zerolog.TimestampFieldName, time.Now().Format(format))
}

type CustomCallerHook struct {
	WithColor bool
}

func (c CustomCallerHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	pc, file, line, ok := runtime.Caller(skipFrameCount(e) + 3)
	if !ok {
		return
	}

	pkg := "unknown"
	if fn := runtime.FuncForPC(pc); fn != nil {
		pkg, _ = SplitFuncName(fn.Name())
	}

	e.Str(zerolog.CallerFieldName, FormatCaller(pkg, file, line, c.WithColor))
}

// SplitFuncName splits a runtime function name like
// "github.com/walteh/auhtml/pkg/parser.(*treeBuilder).handle" into its package
// path and the function name within it.
func SplitFuncName(name string) (pkg, function string) {
	lastSlash := strings.LastIndexByte(name, '/')
	if lastSlash < 0 {
		lastSlash = 0
	}

	dot := strings.IndexByte(name[lastSlash:], '.')
	if dot < 0 {
		return name, ""
	}
	dot += lastSlash

	return name[:dot], name[dot+1:]
}

// FormatCaller renders pkg:file:line, with the file name in bold and the
// line number in red when colorize is set.
func FormatCaller(pkg, file string, line int, colorize bool) string {
	base := path.Base(file)
	if !colorize {
		return fmt.Sprintf("%s:%s:%d", pkg, base, line)
	}

	sep := color.New(color.Faint).Sprint(":")
	return pkg + sep +
		color.New(color.Bold).Sprint(base) + sep +
		color.New(color.FgHiRed, color.Bold).Sprintf("%d", line)
}
