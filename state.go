package hooks

import "github.com/nicksenger/easy-hooks/pkg/callid"

// State is a copyable handle to local state owned by one call-graph
// position. It holds only the identity; every access re-enters the store.
type State[T any] struct {
	id ID
}

// ID exposes the handle's identity, mainly for diagnostics and store-level
// queries such as Exists.
func (st State[T]) ID() ID {
	return st.id
}

// UseState creates local state with factory, or revives the existing state
// for the caller's position. The factory runs only the first time a position
// is seen; on later passes the surviving value is moved into the current
// generation instead of being recomputed.
func UseState[T any](factory func() T) State[T] {
	id := ID{call: callid.FromSite(callid.Callsite(1))}
	s := defaultStore
	if !Exists[T](s, id) {
		Put(s, id, factory())
	} else if !Marked[T](s, id) {
		Mark[T](s, id)
	}
	return State[T]{id: id}
}

// Get returns a copy of the current value.
func (st State[T]) Get() T {
	return ReadState(st, func(value T) T { return value })
}

// Update mutates the value in place via fn.
func (st State[T]) Update(fn func(*T)) {
	UpdateState(st, func(value *T) struct{} {
		fn(value)
		return struct{}{}
	})
}

// ReadState applies fn to the handle's value and returns fn's result. The
// value is taken out of the store for the duration of fn and reinserted
// afterwards, so fn must not re-enter the same handle. Panics with a
// *ContractError if the value no longer exists, which cannot happen for a
// handle obtained through UseState within the same pass.
func ReadState[T, R any](st State[T], fn func(T) R) R {
	s := defaultStore
	value, ok := Take[T](s, st.id)
	if !ok {
		panic(newContractError("state.get", typeKey[T](), st.id, "state does not exist"))
	}
	result := fn(value)
	Put(s, st.id, value)
	return result
}

// UpdateState applies fn to the handle's value with exclusive mutable access
// and returns fn's result. Same take/reinsert discipline as ReadState.
func UpdateState[T, U any](st State[T], fn func(*T) U) U {
	s := defaultStore
	value, ok := Take[T](s, st.id)
	if !ok {
		panic(newContractError("state.update", typeKey[T](), st.id, "state does not exist"))
	}
	result := fn(&value)
	Put(s, st.id, value)
	return result
}
