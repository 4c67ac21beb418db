package build

import (
	"context"
	"log/slog"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// fanout sends every record to each of its handlers, so a single logger can
// write to the console and to the rotating log file at once.
type fanout struct {
	level    btclog.Level
	handlers []btclogv2.Handler
}

// newFanout combines handlers at the Info level.
func newFanout(handlers ...btclogv2.Handler) *fanout {
	f := &fanout{handlers: handlers}
	f.SetLevel(btclog.LevelInfo)

	return f
}

// each builds a new fanout by applying op to every handler.
func (f *fanout) each(op func(btclogv2.Handler) btclogv2.Handler) *fanout {
	out := &fanout{
		level:    f.level,
		handlers: make([]btclogv2.Handler, len(f.handlers)),
	}
	for i, h := range f.handlers {
		out.handlers[i] = op(h)
	}

	return out
}

// Enabled is true only if every handler accepts level.
func (f *fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if !h.Enabled(ctx, level) {
			return false
		}
	}

	return true
}

// Handle passes record to each handler, stopping at the first error.
func (f *fanout) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range f.handlers {
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}

	return nil
}

func (f *fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return slogFanout(f.handlers, func(h slog.Handler) slog.Handler {
		return h.WithAttrs(attrs)
	})
}

func (f *fanout) WithGroup(name string) slog.Handler {
	return slogFanout(f.handlers, func(h slog.Handler) slog.Handler {
		return h.WithGroup(name)
	})
}

func (f *fanout) SubSystem(tag string) btclogv2.Handler {
	return f.each(func(h btclogv2.Handler) btclogv2.Handler {
		return h.SubSystem(tag)
	})
}

func (f *fanout) WithPrefix(prefix string) btclogv2.Handler {
	return f.each(func(h btclogv2.Handler) btclogv2.Handler {
		return h.WithPrefix(prefix)
	})
}

// SetLevel changes the level of every handler.
func (f *fanout) SetLevel(level btclog.Level) {
	for _, h := range f.handlers {
		h.SetLevel(level)
	}
	f.level = level
}

func (f *fanout) Level() btclog.Level {
	return f.level
}

var _ btclogv2.Handler = (*fanout)(nil)

// plainFanout is what WithAttrs and WithGroup return: those produce plain
// slog handlers, which no longer carry the btclog extensions.
type plainFanout []slog.Handler

func slogFanout(handlers []btclogv2.Handler,
	op func(slog.Handler) slog.Handler) plainFanout {

	out := make(plainFanout, len(handlers))
	for i, h := range handlers {
		out[i] = op(h)
	}

	return out
}

func (p plainFanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range p {
		if !h.Enabled(ctx, level) {
			return false
		}
	}

	return true
}

func (p plainFanout) Handle(ctx context.Context, record slog.Record) error {
	for _, h := range p {
		if err := h.Handle(ctx, record.Clone()); err != nil {
			return err
		}
	}

	return nil
}

func (p plainFanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(plainFanout, len(p))
	for i, h := range p {
		out[i] = h.WithAttrs(attrs)
	}

	return out
}

func (p plainFanout) WithGroup(name string) slog.Handler {
	out := make(plainFanout, len(p))
	for i, h := range p {
		out[i] = h.WithGroup(name)
	}

	return out
}

var _ slog.Handler = plainFanout(nil)
