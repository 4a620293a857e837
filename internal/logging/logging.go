package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/rollbar/rollbar-go"
)

// Options configures Setup.
type Options struct {
	// Level is DEBUG, INFO, WARN or ERROR. Defaults to INFO.
	Level string
	// RollbarToken enables forwarding of ERROR records when non-empty.
	RollbarToken string
	// Environment is reported to Rollbar.
	Environment string
}

// Setup configures the global slog default with a JSON handler on stdout.
// ERROR-level logs automatically include a stack trace and, when a Rollbar
// token is configured, are reported to Rollbar. The returned func flushes
// pending Rollbar items and must be called before exit.
func Setup(opts Options) (flush func()) {
	var h slog.Handler = newJSONHandler(os.Stdout, parseLevel(opts.Level))
	flush = func() {}

	if opts.RollbarToken != "" {
		rollbar.SetToken(opts.RollbarToken)
		rollbar.SetEnvironment(opts.Environment)
		if host, err := os.Hostname(); err == nil {
			rollbar.SetServerHost(host)
		}
		h = &rollbarHandler{Handler: h, report: reportToRollbar}
		flush = rollbar.Wait
	}

	slog.SetDefault(slog.New(h))
	return flush
}

func newJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	json := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	return &stackHandler{Handler: json}
}

func parseLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Fatal logs at Error level and exits with code 1.
func Fatal(msg string, args ...any) {
	slog.Error(msg, args...)
	rollbar.Wait()
	os.Exit(1)
}

// stackHandler wraps a slog.Handler and appends a stack trace for ERROR+.
type stackHandler struct {
	slog.Handler
}

func (h *stackHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		buf := make([]byte, 4096)
		n := runtime.Stack(buf, false)
		r.AddAttrs(slog.String("stacktrace", string(buf[:n])))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *stackHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &stackHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *stackHandler) WithGroup(name string) slog.Handler {
	return &stackHandler{Handler: h.Handler.WithGroup(name)}
}

// rollbarHandler forwards ERROR+ records to report before passing them on.
// Groups are flattened into dotted keys.
type rollbarHandler struct {
	slog.Handler
	attrs  []slog.Attr
	group  string
	report func(msg string, extras map[string]any)
}

func (h *rollbarHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		extras := make(map[string]any, len(h.attrs)+r.NumAttrs())
		for _, a := range h.attrs {
			extras[a.Key] = a.Value.Resolve().Any()
		}
		r.Attrs(func(a slog.Attr) bool {
			extras[h.key(a.Key)] = a.Value.Resolve().Any()
			return true
		})
		h.report(r.Message, extras)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *rollbarHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

func (h *rollbarHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next = append(next, h.attrs...)
	for _, a := range attrs {
		next = append(next, slog.Attr{Key: h.key(a.Key), Value: a.Value})
	}
	return &rollbarHandler{Handler: h.Handler.WithAttrs(attrs), attrs: next, group: h.group, report: h.report}
}

func (h *rollbarHandler) WithGroup(name string) slog.Handler {
	return &rollbarHandler{Handler: h.Handler.WithGroup(name), attrs: h.attrs, group: h.key(name), report: h.report}
}

func reportToRollbar(msg string, extras map[string]any) {
	if err, ok := extras["error"].(error); ok {
		rollbar.Error(err, extras)
		return
	}
	rollbar.Error(msg, extras)
}
