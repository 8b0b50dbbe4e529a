package hooks

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/nicksenger/easy-hooks/pkg/callid"
	"github.com/nicksenger/easy-hooks/pkg/lifecycle"
)

// ID is the opaque token the store keys its entries by. It wraps a call-graph
// identity and exposes only equality and a diagnostic rendering.
type ID struct {
	call callid.CallID
}

// String renders the identity for diagnostics and inspection reports.
func (id ID) String() string {
	return id.call.String()
}

// slotKey names one storage slot for an identity, independent of generation.
// The version field mirrors the handle layout of versioned slot allocators;
// because the identity index is never pruned (see the package doc's known
// limitation), slot indices are never recycled and versions stay at 1.
type slotKey struct {
	index   uint32
	version uint32
}

// slotIndex maps identities to slot keys and back. It is shared across both
// generations and is never swept: its cardinality is bounded by the number of
// distinct positions ever seen during the process lifetime.
type slotIndex struct {
	byID   map[ID]slotKey
	owners []ID
}

func newSlotIndex() *slotIndex {
	return &slotIndex{byID: make(map[ID]slotKey)}
}

func (x *slotIndex) lookup(id ID) (slotKey, bool) {
	key, ok := x.byID[id]
	return key, ok
}

func (x *slotIndex) allocate(id ID) slotKey {
	key := slotKey{index: uint32(len(x.owners)), version: 1}
	x.owners = append(x.owners, id)
	x.byID[id] = key
	return key
}

func (x *slotIndex) owner(key slotKey) (ID, bool) {
	if int(key.index) >= len(x.owners) || key.version != 1 {
		return ID{}, false
	}
	return x.owners[key.index], true
}

func (x *slotIndex) size() int {
	return len(x.owners)
}

// table is the type-erased view of one typed table, sufficient for sweeping
// and inspection. Typed access goes through a checked downcast to
// *typedTable[T] keyed by the same reflect.Type used at insertion.
type table interface {
	size() int
	each(fn func(key slotKey, value any))
}

type typedTable[T any] struct {
	entries map[slotKey]T
}

func (t *typedTable[T]) contains(key slotKey) bool {
	_, ok := t.entries[key]
	return ok
}

func (t *typedTable[T]) take(key slotKey) (T, bool) {
	value, ok := t.entries[key]
	if ok {
		delete(t.entries, key)
	}
	return value, ok
}

func (t *typedTable[T]) size() int {
	return len(t.entries)
}

func (t *typedTable[T]) each(fn func(key slotKey, value any)) {
	for key, value := range t.entries {
		fn(key, value)
	}
}

// generation is one of the two alternating storage buffers: a collection of
// typed tables, one per distinct value type in use.
type generation struct {
	tables map[reflect.Type]table
}

func (g *generation) size() int {
	total := 0
	for _, tbl := range g.tables {
		total += tbl.size()
	}
	return total
}

func (g *generation) reset() {
	g.tables = nil
}

type bufferMode uint8

const (
	bufferA bufferMode = iota
	bufferB
)

func (m bufferMode) flip() bufferMode {
	if m == bufferA {
		return bufferB
	}
	return bufferA
}

// Store is the positional state store: a generational, double-buffered,
// type-erased table with touch-based reclamation. Exactly one generation is
// current at any time; Sweep clears the stale one and swaps the roles, so an
// entry survives a pass only if something moved or wrote it into the current
// generation before the sweep.
//
// A Store is bound to one logical goroutine of the re-execution driver and
// must not be shared across goroutines.
type Store struct {
	cfg     storeConfig
	emitter *lifecycle.Emitter
	gens    [2]generation
	mode    bufferMode
	slots   *slotIndex
	sweeps  uint64
}

// NewStore builds a store with the supplied configuration.
func NewStore(opts ...StoreOption) *Store {
	cfg := applyStoreOptions(opts)
	return &Store{
		cfg:     cfg,
		emitter: lifecycle.NewEmitter(cfg.hooks, lifecycle.Config{Enabled: len(cfg.hooks) > 0, Channel: "hooks"}),
		slots:   newSlotIndex(),
	}
}

func (s *Store) current() *generation {
	return &s.gens[s.mode]
}

func (s *Store) stale() *generation {
	return &s.gens[s.mode.flip()]
}

// Sweep clears everything that was not touched since the previous sweep and
// prepares the store for the next pass: the stale generation is dropped in
// one step and the roles swap, leaving all surviving entries pending a
// re-touch. Valid with zero entries.
func (s *Store) Sweep() {
	start := time.Now()
	stale := s.stale()
	reclaimed := stale.size()
	stale.reset()
	s.mode = s.mode.flip()
	s.sweeps++

	event := SweepEvent{
		SweepID:   uuid.NewString(),
		Pass:      s.sweeps,
		Reclaimed: reclaimed,
		Retained:  s.stale().size(),
		Duration:  time.Since(start),
	}
	s.cfg.sweepLogger().LogSweep(event)
	s.emit(lifecycle.Event{
		Verb:     "store.sweep",
		Identity: event.SweepID,
		Metadata: map[string]any{
			"pass":      event.Pass,
			"reclaimed": event.Reclaimed,
			"retained":  event.Retained,
		},
	})
}

// Sweeps reports how many sweeps have completed on this store.
func (s *Store) Sweeps() uint64 {
	return s.sweeps
}

// Identities reports how many distinct identities the store has ever
// allocated a slot for. The identity index is never pruned, so this value
// only grows (a known limitation for unboundedly-varying slot keys).
func (s *Store) Identities() int {
	return s.slots.size()
}

// Lifecycle hooks are observability-only; their errors are discarded here.
func (s *Store) emit(event lifecycle.Event) {
	if s.emitter.Enabled() {
		_ = s.emitter.Emit(context.Background(), event)
	}
}

func typeKey[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

func tableFor[T any](g *generation) (*typedTable[T], bool) {
	existing, ok := g.tables[typeKey[T]()]
	if !ok {
		return nil, false
	}
	return existing.(*typedTable[T]), true
}

func ensureTable[T any](g *generation) *typedTable[T] {
	key := typeKey[T]()
	if existing, ok := g.tables[key]; ok {
		return existing.(*typedTable[T])
	}
	if g.tables == nil {
		g.tables = make(map[reflect.Type]table)
	}
	created := &typedTable[T]{entries: make(map[slotKey]T)}
	g.tables[key] = created
	return created
}

func tableContains[T any](g *generation, key slotKey) bool {
	tbl, ok := tableFor[T](g)
	return ok && tbl.contains(key)
}

// Exists reports whether a value of type T exists for id in either
// generation. It does not mutate the store.
func Exists[T any](s *Store, id ID) bool {
	key, ok := s.slots.lookup(id)
	if !ok {
		return false
	}
	return tableContains[T](s.current(), key) || tableContains[T](s.stale(), key)
}

// Marked reports whether id's entry of type T is already live for this pass:
// either a value sits in the current generation, or no value exists in the
// stale generation either (a brand-new identity has nothing to move forward,
// so it is trivially marked). It does not mutate the store.
func Marked[T any](s *Store, id ID) bool {
	key, ok := s.slots.lookup(id)
	if !ok {
		return true
	}
	return tableContains[T](s.current(), key) || !tableContains[T](s.stale(), key)
}

// Mark moves id's value of type T from the stale generation into the current
// one, recording it as live for this pass. The caller must have observed
// Marked as false; violating that precondition is a usage contract violation
// and panics with a *ContractError.
func Mark[T any](s *Store, id ID) {
	key, ok := s.slots.lookup(id)
	if !ok {
		panic(newContractError("mark", typeKey[T](), id, "identity has no storage slot"))
	}
	if tableContains[T](s.current(), key) {
		panic(newContractError("mark", typeKey[T](), id, "entry is already marked for this pass"))
	}
	staleTbl, ok := tableFor[T](s.stale())
	if !ok {
		panic(newContractError("mark", typeKey[T](), id, "no stale value to move"))
	}
	value, ok := staleTbl.take(key)
	if !ok {
		panic(newContractError("mark", typeKey[T](), id, "no stale value to move"))
	}
	ensureTable[T](s.current()).entries[key] = value
	s.emit(lifecycle.Event{
		Verb:      "state.marked",
		StateType: typeKey[T]().String(),
		Identity:  id.String(),
	})
}

// Put inserts or overwrites id's value of type T in the current generation,
// allocating a slot key on first write. Idempotent within a pass.
func Put[T any](s *Store, id ID, value T) {
	key, ok := s.slots.lookup(id)
	if !ok {
		key = s.slots.allocate(id)
	}
	ensureTable[T](s.current()).entries[key] = value
	s.emit(lifecycle.Event{
		Verb:      "state.set",
		StateType: typeKey[T]().String(),
		Identity:  id.String(),
	})
}

// Take removes and returns id's value of type T from the current generation.
// Together with Put it forms the read/modify discipline: values are handed
// out exclusively rather than borrowed in place from type-erased storage.
func Take[T any](s *Store, id ID) (T, bool) {
	var zero T
	key, ok := s.slots.lookup(id)
	if !ok {
		return zero, false
	}
	tbl, ok := tableFor[T](s.current())
	if !ok {
		return zero, false
	}
	return tbl.take(key)
}
