package hooks

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// EntryInfo describes one stored entry for debugging and reporting.
type EntryInfo struct {
	Identity   string `json:"identity"`
	Kind       string `json:"kind"`
	Generation string `json:"generation"`
	Value      any    `json:"value,omitempty"`
}

// Report wraps an entry listing with provenance for logging or transport.
type Report struct {
	ReportID string      `json:"report_id"`
	TakenAt  time.Time   `json:"taken_at"`
	Sweeps   uint64      `json:"sweeps"`
	Entries  []EntryInfo `json:"entries"`
}

// ToJSON serialises the report.
func (r Report) ToJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(alias(r))
}

// ReportFromJSON deserialises a payload previously generated via ToJSON.
func ReportFromJSON(payload []byte) (Report, error) {
	type alias Report
	var report alias
	if err := json.Unmarshal(payload, &report); err != nil {
		return Report{}, err
	}
	return Report(report), nil
}

// Entries lists every stored entry across both generations in a
// deterministic order: current generation first, then by kind and identity.
// It does not mutate the store.
func (s *Store) Entries() []EntryInfo {
	var out []EntryInfo
	collect := func(g *generation, label string) {
		for kind, tbl := range g.tables {
			kindName := kind.String()
			tbl.each(func(key slotKey, value any) {
				owner, ok := s.slots.owner(key)
				if !ok {
					return
				}
				out = append(out, EntryInfo{
					Identity:   owner.String(),
					Kind:       kindName,
					Generation: label,
					Value:      value,
				})
			})
		}
	}
	collect(s.current(), "current")
	collect(s.stale(), "stale")
	sort.Slice(out, func(i, j int) bool {
		if out[i].Generation != out[j].Generation {
			return out[i].Generation == "current"
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].Identity < out[j].Identity
	})
	return out
}

// Inspect captures a point-in-time report of the store's contents.
func (s *Store) Inspect() Report {
	return Report{
		ReportID: uuid.NewString(),
		TakenAt:  time.Now(),
		Sweeps:   s.sweeps,
		Entries:  s.Entries(),
	}
}

// FilterEntries returns the entries for which the filter expression
// evaluates to true. The expression sees the bindings id, kind, generation,
// and value, plus any registered custom functions. A non-boolean result is
// an error.
func (s *Store) FilterEntries(expression string) ([]EntryInfo, error) {
	engine := s.filterEngine()
	program, err := engine.Compile(expression)
	if err != nil {
		return nil, err
	}
	var out []EntryInfo
	for _, entry := range s.Entries() {
		result, err := program.Evaluate(FilterContext{Entry: entry})
		if err != nil {
			return nil, err
		}
		keep, ok := result.(bool)
		if !ok {
			return nil, &FilterError{
				Expr: expression,
				Err:  fmt.Errorf("filter must evaluate to a boolean, got %T", result),
			}
		}
		if keep {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *Store) filterEngine() FilterEngine {
	if s.cfg.filter == nil {
		s.cfg.filter = NewExprFilter(
			ExprWithProgramCache(s.cfg.cache),
			ExprWithFunctionRegistry(s.cfg.functions),
		)
	}
	return s.cfg.filter
}

// FilterContext carries the inputs visible to a filter expression.
type FilterContext struct {
	Entry EntryInfo
	Args  map[string]any
}

func (ctx FilterContext) withDefaultArgs() FilterContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	return ctx
}

func (ctx FilterContext) bindings() map[string]any {
	return map[string]any{
		"id":         ctx.Entry.Identity,
		"kind":       ctx.Entry.Kind,
		"generation": ctx.Entry.Generation,
		"value":      ctx.Entry.Value,
		"args":       ctx.Args,
	}
}

// FilterEngine evaluates filter expressions against store entries.
type FilterEngine interface {
	Evaluate(ctx FilterContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledFilter, error)
}

// CompiledFilter represents a reusable filter program.
type CompiledFilter interface {
	Evaluate(ctx FilterContext) (any, error)
}

// CompileOption configures engine compile behaviour.
type CompileOption func(*compileConfig)

type compileConfig struct{}
