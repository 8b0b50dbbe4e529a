package hooks

// ProgramCache stores compiled filter programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache on the store; it is handed to
// the default filter engine.
func WithProgramCache(cache ProgramCache) StoreOption {
	return func(cfg *storeConfig) {
		cfg.cache = cache
	}
}
