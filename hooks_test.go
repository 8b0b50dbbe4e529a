package hooks

import "testing"

// Each test installs a fresh process-wide store; tests in this package run
// on a single goroutine so the swap is safe.
func freshStore(opts ...StoreOption) *Store {
	s := NewStore(opts...)
	SetDefault(s)
	return s
}

func TestUseStateScenarioAcrossPasses(t *testing.T) {
	s := freshStore()

	factoryCalls := 0
	pass := func() State[int] {
		var handle State[int]
		Root(func() {
			handle = UseState(func() int {
				factoryCalls++
				return 0
			})
		})
		return handle
	}

	// Pass 1: create and increment.
	h := pass()
	h.Update(func(v *int) { *v++ })
	if got := h.Get(); got != 1 {
		t.Fatalf("expected 1 after increment, got %d", got)
	}
	Sweep()

	// Pass 2: revisit; the factory must not run again.
	h2 := pass()
	if factoryCalls != 1 {
		t.Fatalf("factory ran %d times, want 1", factoryCalls)
	}
	if got := h2.Get(); got != 1 {
		t.Fatalf("revisited state must keep its value, got %d", got)
	}
	Sweep()

	// Pass 3: the position is not revisited.
	Root(func() {})
	Sweep()

	if Exists[int](s, h.ID()) {
		t.Fatalf("state must be reclaimed after a pass without a visit plus a sweep")
	}
}

func TestUseStateSameIdentityTwicePerPass(t *testing.T) {
	freshStore()

	factoryCalls := 0
	use := func() State[int] {
		return UseState(func() int {
			factoryCalls++
			return 10
		})
	}

	var h1, h2 State[int]
	runPass := func() {
		Root(func() {
			CallInSlot("shared", func() { h1 = use() })
			CallInSlot("shared", func() { h2 = use() })
		})
	}

	runPass()
	if factoryCalls != 1 {
		t.Fatalf("factory ran %d times for one identity, want 1", factoryCalls)
	}
	if h1.ID() != h2.ID() {
		t.Fatalf("same slot must resolve to the same identity")
	}

	h1.Update(func(v *int) { *v += 5 })
	if got := h2.Get(); got != 15 {
		t.Fatalf("handles to one identity must observe one value, got %d", got)
	}

	// Re-entering the creation path for an already-marked entry is a no-op.
	Sweep()
	runPass()
	if factoryCalls != 1 {
		t.Fatalf("factory must not run for surviving state, ran %d times", factoryCalls)
	}
	if got := h1.Get(); got != 15 {
		t.Fatalf("idempotent marking must not disturb the value, got %d", got)
	}
}

func TestUseStateLoopSlots(t *testing.T) {
	s := freshStore()

	values := map[string]int{"red": 1, "green": 2, "blue": 3}
	handles := make(map[string]State[int])

	runPass := func(keys []string) {
		Root(func() {
			for _, key := range keys {
				key := key
				CallInSlot(key, func() {
					handles[key] = UseState(func() int { return values[key] })
				})
			}
		})
	}

	runPass([]string{"red", "green", "blue"})
	Sweep()

	// Drop "green" from the graph; its state dies two sweeps later.
	runPass([]string{"blue", "red"})
	if got := handles["blue"].Get(); got != 3 {
		t.Fatalf("slot state must keep its value across passes, got %d", got)
	}
	Sweep()

	if !Exists[int](s, handles["red"].ID()) || !Exists[int](s, handles["blue"].ID()) {
		t.Fatalf("revisited slots must survive")
	}
	if Exists[int](s, handles["green"].ID()) {
		t.Fatalf("removed slot's state must be reclaimed")
	}
}

// The pass closure is reached through two distinct wrapper closures, so
// the compiler may inline a separate copy of its body per caller. The
// identity must key on the source position, not on whichever copy ran.
func TestUseStateIdentityStableAcrossDistinctCallers(t *testing.T) {
	freshStore()

	factoryCalls := 0
	pass := func() State[int] {
		var handle State[int]
		Root(func() {
			handle = UseState(func() int {
				factoryCalls++
				return 7
			})
		})
		return handle
	}
	fromFirstSite := func() State[int] { return pass() }
	fromSecondSite := func() State[int] { return pass() }

	first := fromFirstSite()
	Sweep()
	second := fromSecondSite()
	Sweep()

	if first.ID() != second.ID() {
		t.Fatalf("one source position must keep one identity: %v vs %v", first.ID(), second.ID())
	}
	if factoryCalls != 1 {
		t.Fatalf("factory ran %d times for one position, want 1", factoryCalls)
	}
}

func TestReadAndUpdateStateReturnResults(t *testing.T) {
	freshStore()

	var handle State[[]string]
	Root(func() {
		handle = UseState(func() []string { return []string{"a"} })
	})

	length := UpdateState(handle, func(v *[]string) int {
		*v = append(*v, "b")
		return len(*v)
	})
	if length != 2 {
		t.Fatalf("UpdateState must return fn's result, got %d", length)
	}

	joined := ReadState(handle, func(v []string) string {
		return v[0] + v[1]
	})
	if joined != "ab" {
		t.Fatalf("ReadState must return fn's result, got %q", joined)
	}
}

func TestStateAccessAfterReclamationPanics(t *testing.T) {
	freshStore()

	var handle State[int]
	Root(func() {
		handle = UseState(func() int { return 1 })
	})
	Sweep()
	Sweep()

	violation := mustContractPanic(t, func() {
		handle.Get()
	})
	if violation.Op != "state.get" {
		t.Fatalf("unexpected violation op %q", violation.Op)
	}
}

func TestAbandonedPassLeavesStoreValid(t *testing.T) {
	s := freshStore()

	factoryCalls := 0
	pass := func() State[int] {
		var handle State[int]
		Root(func() {
			handle = UseState(func() int {
				factoryCalls++
				return 9
			})
		})
		return handle
	}

	first := pass()
	first.Update(func(v *int) { *v += 1 })
	// Pass abandoned: no sweep. The next full pass re-touches as usual.
	second := pass()
	if factoryCalls != 1 {
		t.Fatalf("factory ran %d times across an abandoned pass, want 1", factoryCalls)
	}
	if got := second.Get(); got != 10 {
		t.Fatalf("expected surviving value 10, got %d", got)
	}
	Sweep()

	if !Exists[int](s, second.ID()) {
		t.Fatalf("state must survive an abandoned pass followed by a full one")
	}
}
