// Package lifecycle fans out store activity events (state writes, marks,
// sweeps) to consumer-supplied hooks, for audit trails and debugging
// overlays. Emission is disabled unless hooks are configured, keeping the
// store's hot path free of observability cost.
package lifecycle
