//go:build js_eval

package hooks

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsFilter struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSFilter constructs a FilterEngine backed by goja.
func NewJSFilter(opts ...JSFilterOption) FilterEngine {
	cfg := applyJSFilterOptions(opts)
	return &jsFilter{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

func (e *jsFilter) Evaluate(ctx FilterContext, expression string) (any, error) {
	if expression == "" {
		return nil, wrapFilterEngineError("js", fmt.Errorf("expression must not be empty"))
	}
	ctx = ctx.withDefaultArgs()
	if e.cache == nil {
		return e.run(ctx, expression, nil)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, expression, program)
}

func (e *jsFilter) Compile(expression string, _ ...CompileOption) (CompiledFilter, error) {
	if expression == "" {
		return nil, wrapFilterEngineError("js", fmt.Errorf("expression must not be empty"))
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiledFilter{
		engine:     e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *jsFilter) loadOrCompile(expression string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", e.wrapExpression(expression), false)
	if err != nil {
		return nil, wrapFilterError("js", expression, err)
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *jsFilter) run(ctx FilterContext, expression string, program *goja.Program) (any, error) {
	vm := goja.New()
	e.injectContext(vm, ctx)
	if program != nil {
		value, err := vm.RunProgram(program)
		if err != nil {
			return nil, wrapFilterError("js", expression, err)
		}
		return value.Export(), nil
	}
	value, err := vm.RunString(e.wrapExpression(expression))
	if err != nil {
		return nil, wrapFilterError("js", expression, err)
	}
	return value.Export(), nil
}

func (e *jsFilter) injectContext(vm *goja.Runtime, ctx FilterContext) {
	for key, value := range ctx.bindings() {
		vm.Set(key, value)
	}
	if e.registry != nil {
		vm.Set("call", func(name string, arguments ...any) (any, error) {
			return e.registry.Call(name, arguments...)
		})
		for _, name := range e.registry.Names() {
			fn := name
			vm.Set(fn, func(arguments ...any) (any, error) {
				return e.registry.Call(fn, arguments...)
			})
		}
	}
}

func (e *jsFilter) wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledFilter struct {
	engine     *jsFilter
	expression string
	program    *goja.Program
}

func (f *jsCompiledFilter) Evaluate(ctx FilterContext) (any, error) {
	if f.engine == nil {
		return nil, wrapFilterEngineError("js", fmt.Errorf("compiled filter missing engine"))
	}
	return f.engine.run(ctx.withDefaultArgs(), f.expression, f.program)
}

func jsFilterAvailable() bool {
	return true
}
