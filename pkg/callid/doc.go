// Package callid derives stable identities for positions in a repeatedly
// re-executed call graph. An identity is a digest chain over the scopes
// entered on the way to a call site, the call site's source position, and a
// per-scope invocation counter, so the same position observed on successive
// passes resolves to the same CallID while distinct positions never collide
// in practice.
//
// Scope counters reset every time a frame is entered. Drivers should wrap
// each pass in Root so top-level call sites see a fresh counter sequence and
// keep their identities from one pass to the next. Repeated calls at the same
// syntactic site (loops) are disambiguated either implicitly by the
// invocation counter or explicitly via CallInSlot.
//
// The ambient scope stack is package-level state intended for a single
// logical goroutine; callid is not safe for concurrent use.
package callid
