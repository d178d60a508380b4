// Package dispatch routes decoded MIDI events to at most one handler per kind.
package dispatch

import (
	"sync/atomic"

	"github.com/leandrodaf/picoadk/sdk/contracts"
)

type slot struct {
	h contracts.Handler
}

// Registry is a fixed table from event kind to handler. Register and
// Dispatch may run concurrently; lookups are a single atomic load.
type Registry struct {
	slots [contracts.KindCount]atomic.Pointer[slot]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register installs h for kind, replacing any previous handler. A nil h
// clears the slot. Unknown kinds are ignored.
func (r *Registry) Register(kind contracts.EventKind, h contracts.Handler) {
	if kind >= contracts.KindCount {
		return
	}
	if h == nil {
		r.slots[kind].Store(nil)
		return
	}
	r.slots[kind].Store(&slot{h: h})
}

// Unregister clears the handler for kind.
func (r *Registry) Unregister(kind contracts.EventKind) {
	r.Register(kind, nil)
}

// Handler returns the handler installed for kind, if any.
func (r *Registry) Handler(kind contracts.EventKind) (contracts.Handler, bool) {
	if kind >= contracts.KindCount {
		return nil, false
	}
	s := r.slots[kind].Load()
	if s == nil {
		return nil, false
	}
	return s.h, true
}

// Dispatch calls the handler for ev.Kind on the caller's goroutine. Events
// with no handler are dropped; it reports whether a handler ran.
func (r *Registry) Dispatch(ev contracts.Event) bool {
	h, ok := r.Handler(ev.Kind)
	if !ok {
		return false
	}
	h.HandleEvent(ev)
	return true
}
