// Package sigslot provides a typed signal/slot registry.
//
// A Signal[T] holds an ordered collection of slots (callbacks) and invokes
// all of them with a single Emit call, passing the same payload to each.
// Producers emit without knowing who consumes; consumers connect and
// disconnect independently.
//
// # Core Type
//
// Signal[T] is the registry, parameterized by the payload type:
//
//	sig := sigslot.New[int]()
//	sig.Connect(func(v int) { fmt.Println("got", v) })
//	sig.Emit(42)
//
// Slots come in two kinds. Context-free slots take just the payload.
// Context-bound slots additionally receive an opaque context handle,
// supplied at connect time and forwarded unchanged on every emission:
//
//	sig.ConnectBound(func(ctx any, v int) {
//	    ctx.(*Counter).Add(v)
//	}, counter)
//
// Context-free slots always run before context-bound slots. Within each
// kind, slots run in connection order, except that disconnecting a slot
// may reorder the remaining ones (removal swaps with the last entry).
//
// # Identity
//
// A slot's identity is its function entry point. Connecting the same
// function twice is a silent no-op, as is disconnecting a function that
// was never connected. Two closures created from the same function
// literal share an entry point and are therefore the same slot. For
// context-bound slots the context is not part of the identity: a second
// ConnectBound with the same function and a different context is ignored
// and the original context is retained.
//
// # Ownership and Concurrency
//
// The registry borrows slots and contexts; it never owns them. A
// connected slot must remain valid until it is disconnected — the
// registry performs no liveness tracking and will call through a stale
// reference.
//
// Signal is not safe for concurrent use. Callers sharing a Signal across
// goroutines must serialize every Connect, Disconnect, and Emit with
// their own mutex. Re-entrant Emit from inside a slot is allowed; each
// emission snapshots the connected slots before invoking any of them, so
// mutations made by a slot affect later emissions, never the in-flight
// one.
package sigslot
