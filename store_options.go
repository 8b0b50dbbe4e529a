package hooks

import "github.com/nicksenger/easy-hooks/pkg/lifecycle"

// StoreOption configures a Store at construction time.
type StoreOption func(*storeConfig)

type storeConfig struct {
	logger    SweepLogger
	hooks     lifecycle.Hooks
	filter    FilterEngine
	cache     ProgramCache
	functions *FunctionRegistry
}

func applyStoreOptions(opts []StoreOption) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg storeConfig) sweepLogger() SweepLogger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopSweepLogger{}
}

// WithLifecycleHooks attaches lifecycle hooks to the store. Hooks are cloned
// and nil entries dropped; hook errors are discarded by the store, so hooks
// needing error handling must handle it internally.
func WithLifecycleHooks(hooks lifecycle.Hooks) StoreOption {
	normalized := cloneLifecycleHooks(hooks)
	return func(cfg *storeConfig) {
		cfg.hooks = normalized
	}
}

// WithFilterEngine configures the engine used by FilterEntries. When unset,
// an expr-backed engine is built from the store's cache and registry.
func WithFilterEngine(engine FilterEngine) StoreOption {
	return func(cfg *storeConfig) {
		cfg.filter = engine
	}
}

func cloneLifecycleHooks(hooks lifecycle.Hooks) lifecycle.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]lifecycle.Hook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return lifecycle.Hooks(normalized)
}
