package hooks

import "github.com/nicksenger/easy-hooks/pkg/callid"

// Identity scoping helpers re-exported from pkg/callid. Drivers wrap each
// pass in Root so call-site identities stay stable from one pass to the
// next; CallInSlot disambiguates repeated calls inside loops.
var (
	Root       = callid.Root
	Call       = callid.Call
	CallInSlot = callid.CallInSlot
)

// The identity-based API carries no explicit store parameter, so one
// process-wide store backs UseState, contexts, and Sweep. It is constructed
// before the first pass and never destroyed.
var defaultStore = NewStore()

// Default returns the process-wide store.
func Default() *Store {
	return defaultStore
}

// SetDefault replaces the process-wide store. Call it before the first pass,
// typically to install a configured store (sweep logger, lifecycle hooks,
// filter engine). A nil store is ignored.
func SetDefault(s *Store) {
	if s != nil {
		defaultStore = s
	}
}

// Sweep clears any state which was not accessed since the last sweep. The
// driver calls it exactly once per completed pass.
func Sweep() {
	defaultStore.Sweep()
}
