package hooks

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELFilterOption configures the CEL filter.
type CELFilterOption func(*celFilter)

// CELWithProgramCache wires a ProgramCache into the CEL filter.
func CELWithProgramCache(cache ProgramCache) CELFilterOption {
	return func(e *celFilter) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL filter.
func CELWithFunctionRegistry(registry *FunctionRegistry) CELFilterOption {
	return func(e *celFilter) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celFilter struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELFilter constructs a FilterEngine backed by cel-go.
func NewCELFilter(opts ...CELFilterOption) FilterEngine {
	e := &celFilter{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celFilter) Evaluate(ctx FilterContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapFilterEngineError("cel", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaultArgs()
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	out, _, err := program.program.Eval(e.activation(ctx))
	if err != nil {
		return nil, wrapFilterError("cel", expression, err)
	}
	return out.Value(), nil
}

func (e *celFilter) Compile(expression string, _ ...CompileOption) (CompiledFilter, error) {
	if expression == "" {
		return nil, wrapFilterEngineError("cel", fmt.Errorf("expression must not be empty"))
	}
	return &celCompiledFilter{
		engine:     e,
		expression: expression,
	}, nil
}

func (e *celFilter) loadOrCompile(expression string) (*celProgram, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv()
	if err != nil {
		return nil, wrapFilterError("cel", expression, err)
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapFilterError("cel", expression, issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, wrapFilterError("cel", expression, issues.Err())
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, wrapFilterError("cel", expression, err)
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(expression, bundle)
	}
	return bundle, nil
}

func (e *celFilter) buildEnv() (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("id", celgo.StringType),
		celgo.Variable("kind", celgo.StringType),
		celgo.Variable("generation", celgo.StringType),
		celgo.Variable("value", celgo.DynType),
		celgo.Variable("args", celgo.DynType),
	}
	if e.registry != nil {
		// CEL overloads are fixed-arity, so call is declared once per
		// argument count up to three forwarded arguments.
		binding := e.callBinding()
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.FunctionBinding(binding)),
			celgo.Overload("call_string_dyn",
				[]*celgo.Type{celgo.StringType, celgo.DynType},
				celgo.DynType,
				celgo.FunctionBinding(binding)),
			celgo.Overload("call_string_dyn_dyn",
				[]*celgo.Type{celgo.StringType, celgo.DynType, celgo.DynType},
				celgo.DynType,
				celgo.FunctionBinding(binding)),
			celgo.Overload("call_string_dyn_dyn_dyn",
				[]*celgo.Type{celgo.StringType, celgo.DynType, celgo.DynType, celgo.DynType},
				celgo.DynType,
				celgo.FunctionBinding(binding)),
		))
	}
	return celgo.NewEnv(opts...)
}

func (e *celFilter) activation(ctx FilterContext) map[string]any {
	activation := ctx.bindings()
	if activation["value"] == nil {
		activation["value"] = map[string]any{}
	}
	if e.registry != nil {
		activation["call"] = func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		}
	}
	return activation
}

type celCompiledFilter struct {
	engine     *celFilter
	expression string
}

func (f *celCompiledFilter) Evaluate(ctx FilterContext) (any, error) {
	if f.engine == nil {
		return nil, wrapFilterEngineError("cel", fmt.Errorf("compiled filter missing engine"))
	}
	ctx = ctx.withDefaultArgs()
	program, err := f.engine.loadOrCompile(f.expression)
	if err != nil {
		return nil, err
	}
	out, _, err := program.program.Eval(f.engine.activation(ctx))
	if err != nil {
		return nil, wrapFilterError("cel", f.expression, err)
	}
	return out.Value(), nil
}

func (e *celFilter) callBinding() func(values ...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if e.registry == nil {
			return types.NewErr("hooks: function registry not configured")
		}
		if len(values) == 0 {
			return types.NewErr("hooks: call requires function name")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("hooks: call name must be string")
		}
		args := make([]any, 0, len(values)-1)
		for _, val := range values[1:] {
			args = append(args, val.Value())
		}
		result, err := e.registry.Call(name, args...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
