package callid_test

import (
	"strings"
	"testing"

	"github.com/nicksenger/easy-hooks/pkg/callid"
)

func TestHereStableAcrossRootEntries(t *testing.T) {
	read := func() callid.CallID { return callid.Here() }

	var first, second callid.CallID
	callid.Root(func() { first = read() })
	callid.Root(func() { second = read() })

	if first != second {
		t.Fatalf("expected identical identity across passes, got %v vs %v", first, second)
	}
}

// Reaching the same pass closure through two different wrappers gives the
// compiler a chance to inline one body copy per caller; the identity must
// not depend on which copy executed.
func TestHereStableAcrossDistinctCallers(t *testing.T) {
	read := func() callid.CallID { return callid.Here() }
	pass := func() callid.CallID {
		var id callid.CallID
		callid.Root(func() { id = read() })
		return id
	}
	fromFirstSite := func() callid.CallID { return pass() }
	fromSecondSite := func() callid.CallID { return pass() }

	if a, b := fromFirstSite(), fromSecondSite(); a != b {
		t.Fatalf("one source position must keep one identity: %v vs %v", a, b)
	}
}

func TestDistinctSitesGetDistinctIdentities(t *testing.T) {
	var a, b callid.CallID
	callid.Root(func() {
		a = callid.Here()
		b = callid.Here()
	})
	if a == b {
		t.Fatalf("distinct call sites must produce distinct identities")
	}
}

func TestRepeatedSiteCountsWithinScope(t *testing.T) {
	read := func() callid.CallID { return callid.Here() }

	collect := func() []callid.CallID {
		var ids []callid.CallID
		callid.Root(func() {
			for i := 0; i < 3; i++ {
				ids = append(ids, read())
			}
		})
		return ids
	}

	first := collect()
	if first[0] == first[1] || first[1] == first[2] || first[0] == first[2] {
		t.Fatalf("loop iterations must receive distinct identities: %v", first)
	}

	second := collect()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("iteration %d identity changed across passes: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestCallInSlotIsOrderIndependent(t *testing.T) {
	read := func() callid.CallID { return callid.Here() }

	collect := func(slots []string) map[string]callid.CallID {
		out := make(map[string]callid.CallID)
		callid.Root(func() {
			for _, slot := range slots {
				callid.CallInSlot(slot, func() {
					out[slot] = read()
				})
			}
		})
		return out
	}

	first := collect([]string{"a", "b"})
	second := collect([]string{"b", "a"})

	if first["a"] != second["a"] || first["b"] != second["b"] {
		t.Fatalf("slot-keyed identities must not depend on iteration order")
	}
	if first["a"] == first["b"] {
		t.Fatalf("distinct slots must produce distinct identities")
	}
}

func TestCallEntersAndLeavesChildScope(t *testing.T) {
	var outer, inner, after callid.CallID
	callid.Root(func() {
		outer = callid.Current()
		callid.Call(func() {
			inner = callid.Current()
		})
		after = callid.Current()
	})

	if inner == outer {
		t.Fatalf("Call must run fn under a child scope")
	}
	if after != outer {
		t.Fatalf("Call must restore the enclosing scope, got %v want %v", after, outer)
	}
}

func TestNestedCallsChainIdentity(t *testing.T) {
	run := func() (mid, leaf callid.CallID) {
		callid.Root(func() {
			callid.Call(func() {
				mid = callid.Current()
				callid.Call(func() {
					leaf = callid.Current()
				})
			})
		})
		return mid, leaf
	}

	mid1, leaf1 := run()
	mid2, leaf2 := run()
	if mid1 != mid2 || leaf1 != leaf2 {
		t.Fatalf("nested scope identities must be stable across passes")
	}
	if mid1 == leaf1 {
		t.Fatalf("nesting levels must produce distinct identities")
	}
}

func TestStringRendering(t *testing.T) {
	id := callid.Current()
	if !strings.HasPrefix(id.String(), "callid:") {
		t.Fatalf("unexpected rendering %q", id.String())
	}
}
