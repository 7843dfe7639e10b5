package logging

import (
	"context"
	"log/slog"
	"sync"
)

// fanoutHandler forwards every record to each named handler.
type fanoutHandler struct {
	sync.RWMutex
	handlers map[string]slog.Handler
}

func newFanoutHandler() *fanoutHandler {
	return &fanoutHandler{
		handlers: make(map[string]slog.Handler),
	}
}

func (m *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (m *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}

	return nil
}

func (m *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	m.RLock()
	defer m.RUnlock()

	derived := newFanoutHandler()
	for name, h := range m.handlers {
		derived.handlers[name] = h.WithAttrs(attrs)
	}

	return derived
}

func (m *fanoutHandler) WithGroup(name string) slog.Handler {
	m.RLock()
	defer m.RUnlock()

	derived := newFanoutHandler()
	for handlerName, h := range m.handlers {
		derived.handlers[handlerName] = h.WithGroup(name)
	}

	return derived
}

func (m *fanoutHandler) AddHandler(name string, handler slog.Handler) {
	m.Lock()
	defer m.Unlock()

	m.handlers[name] = handler
}
