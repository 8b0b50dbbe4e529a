package hooks

import (
	"strconv"
	"sync/atomic"

	"github.com/nicksenger/easy-hooks/pkg/callid"
)

// Each CreateContext call site gets its own serial, independent of passes,
// so context identities never collide with positional ones.
var contextSerial atomic.Uint64

// Context shares one value between the position that set it and any
// descendant position that reads it, without explicit parameter threading.
// The store entry is keyed by a fixed root-scoped identity rather than the
// reader's own position.
type Context[T any] struct {
	id ID
}

// ID exposes the context's identity for diagnostics.
func (c Context[T]) ID() ID {
	return c.id
}

// CreateContext allocates a context bound to a fresh root-scoped identity.
// The serial slot carries a reserved prefix so it can never collide with a
// caller's own root-scoped slot key.
func CreateContext[T any]() Context[T] {
	serial := strconv.FormatUint(contextSerial.Add(1), 10)
	var id ID
	callid.Root(func() {
		callid.CallInSlot("ctx/"+serial, func() {
			id = ID{call: callid.Current()}
		})
	})
	return Context[T]{id: id}
}

// Set stores value in a fresh shared cell under the context's identity.
// Readers in the same and later passes observe this cell until the next Set.
func (c Context[T]) Set(value T) {
	Put(defaultStore, c.id, &value)
}

// Get returns the shared cell, marking the entry live for this pass. The
// cell is jointly owned: many descendant positions may hold it at once, and
// mutations through it are visible to every holder. Panics with a
// *ContractError when the context was never set.
func (c Context[T]) Get() *T {
	s := defaultStore
	if !Exists[*T](s, c.id) {
		panic(newContractError("context.get", typeKey[*T](), c.id, "context was never set"))
	}
	if !Marked[*T](s, c.id) {
		Mark[*T](s, c.id)
	}
	value, ok := Take[*T](s, c.id)
	if !ok {
		panic(newContractError("context.get", typeKey[*T](), c.id, "context value missing from current generation"))
	}
	Put(s, c.id, value)
	return value
}

// ReadContext applies fn to the shared cell and returns fn's result.
func ReadContext[T, R any](c Context[T], fn func(*T) R) R {
	return fn(c.Get())
}
