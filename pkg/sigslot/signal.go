package sigslot

import (
	"reflect"
)

// Slot is a context-free callback. Slots produce no result; the registry
// discards nothing because there is nothing to discard.
type Slot[T any] func(T)

// BoundSlot is a context-bound callback. The handle passed to ConnectBound
// is forwarded unchanged as ctx on every emission. The registry never
// inspects the handle; downcasting it correctly is the caller's job.
type BoundSlot[T any] func(ctx any, v T)

// plainEntry is a connected context-free slot.
type plainEntry[T any] struct {
	key uintptr
	fn  Slot[T]
}

// boundEntry is a connected context-bound slot with its handle.
type boundEntry[T any] struct {
	key uintptr
	fn  BoundSlot[T]
	ctx any
}

// Signal is a typed observer registry. It owns two ordered sequences of
// slots: context-free and context-bound. The zero value is not usable;
// create signals with New.
//
// Signal is not safe for concurrent use. See the package documentation.
type Signal[T any] struct {
	name   string
	logger logger

	plain []plainEntry[T]
	bound []boundEntry[T]
}

// New creates an empty signal. Both slot sequences start empty and grow
// on first connect.
func New[T any](opts ...Option) *Signal[T] {
	options := applyOptions(opts)
	return &Signal[T]{
		name:   options.name,
		logger: options.logger,
	}
}

// Name returns the signal's name, or the empty string if none was set.
func (s *Signal[T]) Name() string {
	return s.name
}

// Connect registers a context-free slot. Connecting an already-connected
// slot is a silent no-op; the slot keeps its original position. A nil
// slot is ignored.
func (s *Signal[T]) Connect(fn Slot[T]) {
	if fn == nil {
		return
	}

	key := entryPoint(fn)
	for _, e := range s.plain {
		if e.key == key {
			return
		}
	}

	s.plain = append(s.plain, plainEntry[T]{key: key, fn: fn})
	s.logger.Debug("slot connected", "signal", s.name, "kind", "plain", "slots", s.Len())
}

// ConnectBound registers a context-bound slot paired with an opaque
// context handle. Deduplication is keyed on the function alone: a second
// ConnectBound with the same function and a different context is a silent
// no-op, and the original context and position are retained. ctx may be
// nil. A nil slot is ignored.
func (s *Signal[T]) ConnectBound(fn BoundSlot[T], ctx any) {
	if fn == nil {
		return
	}

	key := entryPoint(fn)
	for _, e := range s.bound {
		if e.key == key {
			return
		}
	}

	s.bound = append(s.bound, boundEntry[T]{key: key, fn: fn, ctx: ctx})
	s.logger.Debug("slot connected", "signal", s.name, "kind", "bound", "slots", s.Len())
}

// Disconnect removes a context-free slot. Removal swaps the entry with
// the last one, so the order of the remaining slots is not preserved.
// Disconnecting a slot that is not connected is a silent no-op. The
// context-bound sequence is not searched.
func (s *Signal[T]) Disconnect(fn Slot[T]) {
	if fn == nil {
		return
	}

	key := entryPoint(fn)
	for i, e := range s.plain {
		if e.key == key {
			last := len(s.plain) - 1
			s.plain[i] = s.plain[last]
			s.plain[last] = plainEntry[T]{}
			s.plain = s.plain[:last]
			s.logger.Debug("slot disconnected", "signal", s.name, "kind", "plain", "slots", s.Len())
			return
		}
	}
}

// DisconnectBound removes a context-bound slot, identified by its
// function alone. Same removal semantics as Disconnect.
func (s *Signal[T]) DisconnectBound(fn BoundSlot[T]) {
	if fn == nil {
		return
	}

	key := entryPoint(fn)
	for i, e := range s.bound {
		if e.key == key {
			last := len(s.bound) - 1
			s.bound[i] = s.bound[last]
			s.bound[last] = boundEntry[T]{}
			s.bound = s.bound[:last]
			s.logger.Debug("slot disconnected", "signal", s.name, "kind", "bound", "slots", s.Len())
			return
		}
	}
}

// DisconnectAll removes every slot of both kinds, dropping the registry's
// references to the callables and context handles. Backing capacity is
// retained for reuse.
func (s *Signal[T]) DisconnectAll() {
	clear(s.plain)
	clear(s.bound)
	s.plain = s.plain[:0]
	s.bound = s.bound[:0]
}

// Emit invokes every connected slot with v: first the context-free slots
// in sequence order, then the context-bound slots in sequence order, each
// with its context handle. Slots run synchronously on the calling
// goroutine; the next slot starts only after the previous one returns,
// and no slot can abort the remaining dispatch.
//
// Emit snapshots both sequences before invoking anything. A slot that
// connects or disconnects slots during emission changes later emissions
// only; every slot connected when Emit began is still invoked, including
// ones disconnected mid-emission.
func (s *Signal[T]) Emit(v T) {
	if len(s.plain) == 0 && len(s.bound) == 0 {
		return
	}

	// Snapshot before invoking so re-entrant mutation cannot shift the
	// working set under us.
	plain := make([]plainEntry[T], len(s.plain))
	copy(plain, s.plain)
	bound := make([]boundEntry[T], len(s.bound))
	copy(bound, s.bound)

	s.logger.Debug("emit", "signal", s.name, "slots", len(plain)+len(bound))

	for _, e := range plain {
		e.fn(v)
	}
	for _, e := range bound {
		e.fn(e.ctx, v)
	}
}

// Len returns the number of connected slots of both kinds.
func (s *Signal[T]) Len() int {
	return len(s.plain) + len(s.bound)
}

// entryPoint returns a slot's identity key: its function entry point.
// Closures created from the same function literal share an entry point
// and therefore compare equal.
func entryPoint(fn any) uintptr {
	return reflect.ValueOf(fn).Pointer()
}
