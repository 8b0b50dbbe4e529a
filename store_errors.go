package hooks

import (
	"fmt"
	"reflect"
)

// ContractError is the payload carried by panics raised on usage contract
// violations: reading a context that was never set, marking an entry whose
// precondition does not hold, or accessing a handle whose value is gone.
// These are programmer errors, not recoverable conditions, so they surface
// as panics rather than error returns.
type ContractError struct {
	Op       string
	Type     string
	Identity string
	Msg      string
}

func (e *ContractError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("hooks: %s type=%s id=%s: %s", e.Op, e.Type, e.Identity, e.Msg)
}

func newContractError(op string, t reflect.Type, id ID, msg string) *ContractError {
	return &ContractError{
		Op:       op,
		Type:     t.String(),
		Identity: id.String(),
		Msg:      msg,
	}
}
