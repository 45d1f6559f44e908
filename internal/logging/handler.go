package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Handler implements slog.Handler for compact terminal output:
//
//	3:04PM INFO  registry loaded documents=42
//
// Levels and keys are colorized only when the writer supports it.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	prefix string // dotted group path applied to record attributes

	useColor bool
	palette  map[slog.Level]*color.Color
	dim      *color.Color
	key      *color.Color
}

// NewHandler creates a new terminal handler writing to out.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	h := &Handler{
		opts:     *opts,
		out:      out,
		mu:       &sync.Mutex{},
		useColor: SupportsColor(out),
	}
	if h.useColor {
		h.palette = map[slog.Level]*color.Color{
			slog.LevelError: color.New(color.FgRed, color.Bold),
			slog.LevelWarn:  color.New(color.FgYellow),
			slog.LevelInfo:  color.New(color.FgGreen),
			slog.LevelDebug: color.New(color.FgMagenta),
			LevelTrace:      color.New(color.FgBlue),
		}
		h.dim = color.New(color.FgHiBlack)
		h.key = color.New(color.FgCyan)
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle writes a single line for r.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder

	if !r.Time.IsZero() {
		ts := r.Time.Format(time.Kitchen)
		if h.useColor {
			ts = h.dim.Sprint(ts)
		}
		sb.WriteString(ts)
		sb.WriteByte(' ')
	}

	fmt.Fprintf(&sb, "%-5s ", h.levelString(r.Level))
	sb.WriteString(r.Message)

	for _, a := range h.attrs {
		h.writeAttr(&sb, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&sb, h.prefix, a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

func (h *Handler) levelString(level slog.Level) string {
	name := level.String()
	bucket := slog.LevelError
	switch {
	case level == LevelTrace:
		name = "TRACE"
		bucket = LevelTrace
	case level >= slog.LevelError:
	case level >= slog.LevelWarn:
		bucket = slog.LevelWarn
	case level >= slog.LevelInfo:
		bucket = slog.LevelInfo
	default:
		bucket = slog.LevelDebug
	}
	if !h.useColor {
		return name
	}
	return h.palette[bucket].Sprint(name)
}

func (h *Handler) writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	key := a.Key
	if prefix != "" {
		key = prefix + "." + key
	}
	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			h.writeAttr(sb, key, ga)
		}
		return
	}
	if h.useColor {
		key = h.key.Sprint(key)
	}
	fmt.Fprintf(sb, " %s=%v", key, a.Value.Any())
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	newH := *h
	newH.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newH.attrs = append(newH.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + "." + a.Key
		}
		newH.attrs = append(newH.attrs, a)
	}
	return &newH
}

// WithGroup returns a new Handler that prefixes later attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newH := *h
	if h.prefix == "" {
		newH.prefix = name
	} else {
		newH.prefix = h.prefix + "." + name
	}
	return &newH
}
