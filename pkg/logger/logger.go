package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gsindri/kaupa-skil-sub004/pkg/env"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options configures the structured logger. Format falls back to
// KAUPA_LOG_FORMAT, then LOG_FORMAT, then json.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	WarnStack   bool
	Output      io.Writer
	Format      string
}

// Logger writes zerolog entries enriched with fields carried on the context.
// A nil *Logger discards everything.
type Logger struct {
	root      zerolog.Logger
	warnStack bool
}

type scopeKey struct{}

// scope is what a context carries: the enriched entry plus the request id so
// responses can echo it.
type scope struct {
	entry     zerolog.Logger
	requestID string
}

var timeFormatOnce sync.Once

func New(opts Options) *Logger {
	timeFormatOnce.Do(func() { zerolog.TimeFieldFormat = time.RFC3339Nano })

	level := opts.Level
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = env.First(FormatJSON, "KAUPA_LOG_FORMAT", "LOG_FORMAT")
	}
	if format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05", NoColor: env.Get("NO_COLOR", "") != ""}
	}

	root := zerolog.New(out).Level(level).With().Timestamp().Str("service", opts.ServiceName).Logger()
	return &Logger{root: root, warnStack: opts.WarnStack}
}

// ParseLevel maps a config string to a level; anything unknown is info.
func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// RequestID returns the id attached by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	if s, ok := scopeFrom(ctx); ok {
		return s.requestID
	}
	return ""
}

func scopeFrom(ctx context.Context) (scope, bool) {
	if ctx == nil {
		return scope{}, false
	}
	s, ok := ctx.Value(scopeKey{}).(scope)
	return s, ok
}

func (l *Logger) current(ctx context.Context) scope {
	if s, ok := scopeFrom(ctx); ok {
		return s
	}
	return scope{entry: l.root}
}

func (l *Logger) with(ctx context.Context, apply func(zerolog.Context) zerolog.Context) context.Context {
	if l == nil {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	s := l.current(ctx)
	s.entry = apply(s.entry.With()).Logger()
	return context.WithValue(ctx, scopeKey{}, s)
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Interface(key, value) })
}

// WithFields attaches fields in key order so repeated entries line up.
func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return l.with(ctx, func(c zerolog.Context) zerolog.Context {
		for _, k := range keys {
			c = c.Interface(k, fields[k])
		}
		return c
	})
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	ctx = l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("request_id", requestID) })
	if s, ok := scopeFrom(ctx); ok {
		s.requestID = requestID
		ctx = context.WithValue(ctx, scopeKey{}, s)
	}
	return ctx
}

func (l *Logger) WithSupplierID(ctx context.Context, supplierID string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("supplier_id", supplierID) })
}

func (l *Logger) WithCartID(ctx context.Context, cartID string) context.Context {
	return l.with(ctx, func(c zerolog.Context) zerolog.Context { return c.Str("cart_id", cartID) })
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	if l == nil {
		return
	}
	entry := l.current(ctx).entry
	entry.Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	if l == nil {
		return
	}
	entry := l.current(ctx).entry
	entry.Info().Msg(msg)
}

// Warn adds a stack trace only when WarnStack is set.
func (l *Logger) Warn(ctx context.Context, msg string) {
	if l == nil {
		return
	}
	entry := l.current(ctx).entry
	event := entry.Warn()
	if l.warnStack {
		event = event.Str("stack", stack())
	}
	event.Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	if l == nil {
		return
	}
	entry := l.current(ctx).entry
	event := entry.Error().Str("stack", stack())
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}

func stack() string {
	return strings.TrimSpace(string(debug.Stack()))
}
