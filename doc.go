// Package hooks associates persistent, typed state with positions in a call
// graph that is re-executed once per pass by an outer driver, without the
// caller allocating, threading, or freeing storage. A position is identified
// implicitly by where the request occurs (see pkg/callid); state belonging
// to positions that were not revisited is reclaimed by the next Sweep.
//
// The engine is a generational, double-buffered, type-erased store: touching
// an entry moves it into the current generation, and Sweep drops the stale
// generation in one step and swaps the buffers. There is no per-entry
// liveness bit; sweep cost is proportional to the entries discarded.
//
// Two front ends sit on the store. UseState binds a value to the caller's
// position and returns a copyable State handle. CreateContext shares one
// value between the position that set it and any descendant reader through
// a fixed root-scoped identity.
//
// A typical driver loop:
//
//	for running {
//		hooks.Root(func() {
//			render()
//		})
//		hooks.Sweep()
//	}
//
// The store is process-wide ambient state for a single logical goroutine of
// the driver; nothing in this package is safe for concurrent use against
// the same store.
//
// Known limitation: the identity-to-slot index is never pruned, so its size
// is bounded by the distinct positions ever seen. Slot keys derived from
// unboundedly-varying dynamic data will grow it without bound in a
// long-lived process.
package hooks
