//go:build !js_eval

package hooks

// NewJSFilter is unavailable without the js_eval build tag.
func NewJSFilter(opts ...JSFilterOption) FilterEngine {
	_ = applyJSFilterOptions(opts)
	return nil
}

func jsFilterAvailable() bool {
	return false
}
