package callid

import (
	"fmt"
	"runtime"
)

// CallID names one position in the call graph. It is comparable and hashable
// and carries no other observable structure.
type CallID struct {
	digest uint64
}

// String renders the identity digest for diagnostics.
func (id CallID) String() string {
	return fmt.Sprintf("callid:%016x", id.digest)
}

// Site identifies a syntactic call site by its source coordinates. Raw
// program counters are not usable here: the compiler duplicates inlined
// bodies per caller, so one source position can resolve to many PCs.
// Function name, file, and line survive inlining unchanged.
type Site struct {
	function string
	file     string
	line     int
}

// Callsite captures the source position skip levels above the caller.
// skip = 0 is the caller of Callsite itself.
func Callsite(skip int) Site {
	var pcs [1]uintptr
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return Site{}
	}
	fr, _ := runtime.CallersFrames(pcs[:]).Next()
	return Site{function: fr.Function, file: fr.File, line: fr.Line}
}

// FNV-1a parameters; the digest chain only needs process-lifetime stability.
const (
	fnvOffset = 0xcbf29ce484222325
	fnvPrime  = 0x100000001b3
)

var rootID = CallID{digest: fnvOffset}

type countKey struct {
	site Site
	slot string
}

type frame struct {
	id     CallID
	counts map[countKey]uint32
}

// The ambient stack always holds at least the base frame.
var frames = []frame{{id: rootID}}

func top() *frame {
	return &frames[len(frames)-1]
}

func push(id CallID) {
	frames = append(frames, frame{id: id})
}

func pop() {
	frames[len(frames)-1] = frame{}
	frames = frames[:len(frames)-1]
}

// Current returns the identity of the innermost active scope.
func Current() CallID {
	return top().id
}

// Root runs fn under a fresh top-level scope, discarding ambient nesting.
// Invocation counters start over on every entry, which is what keeps
// identities stable when a driver wraps each pass in Root.
func Root(fn func()) {
	push(rootID)
	defer pop()
	fn()
}

// Call runs fn in a child scope keyed by the caller's call site and the
// number of times that site has already executed within the current scope.
func Call(fn func()) {
	push(childID(Callsite(1), "", true))
	defer pop()
	fn()
}

// CallInSlot runs fn in a child scope disambiguated by an explicit slot key
// instead of an invocation counter. Use it when one syntactic call site
// executes multiple logical instances per pass and iteration order may
// change between passes.
func CallInSlot(slot string, fn func()) {
	push(childID(Site{}, slot, false))
	defer pop()
	fn()
}

// Here returns the identity for the caller's call site under the current
// scope, advancing the site's invocation counter without entering a scope.
func Here() CallID {
	return FromSite(Callsite(1))
}

// FromSite is Here for callers that capture the site themselves, typically
// wrappers that need the identity of their own caller.
func FromSite(site Site) CallID {
	return childID(site, "", true)
}

func childID(site Site, slot string, counted bool) CallID {
	fr := top()
	var count uint32
	if counted {
		if fr.counts == nil {
			fr.counts = make(map[countKey]uint32)
		}
		key := countKey{site: site, slot: slot}
		count = fr.counts[key]
		fr.counts[key] = count + 1
	}
	return CallID{digest: mix(fr.id.digest, site, slot, count)}
}

func mix(parent uint64, site Site, slot string, count uint32) uint64 {
	h := parent
	h = mixString(h, site.function)
	h = mixString(h, site.file)
	h = mixUint64(h, uint64(site.line))
	h = mixString(h, slot)
	return mixUint64(h, uint64(count))
}

// A terminator byte keeps adjacent fields from running together.
func mixString(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= fnvPrime
	}
	h ^= 0xff
	h *= fnvPrime
	return h
}

func mixUint64(h, v uint64) uint64 {
	for i := 0; i < 8; i++ {
		h ^= v & 0xff
		h *= fnvPrime
		v >>= 8
	}
	return h
}
