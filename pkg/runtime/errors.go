package runtime

import (
	"errors"
	"fmt"
)

// Aggregate run failures. A failed validation pass or run surfaces one
// of these composed messages, never a raw internal error.
var (
	ErrSettings       = errors.New("pipeline settings contain error(s)")
	ErrRequiredParams = errors.New("required parameter(s) not specified")
	ErrParamFormat    = errors.New("parameter value(s) failed validation")
	ErrStageFailure   = errors.New("stage execution finished with failure")
)

// AbortError terminates the whole run: an action flagged stop_on_fail
// failed. Remaining actions and stages are not traversed.
type AbortError struct {
	Stage  string
	Action string
	Reason string
}

func (e *AbortError) Error() string {
	msg := fmt.Sprintf("stage %q action %q failed with stop_on_fail set", e.Stage, e.Action)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}
