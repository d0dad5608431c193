package ds

import (
	"fmt"
)

type (
	ErrUnreachableCode struct {
		Caller string
		Value  any
	}
)

func (r ErrUnreachableCode) Error() string {
	if r.Value == nil {
		return fmt.Sprintf("%s: unreachable code", r.Caller)
	}
	return fmt.Sprintf(`%s: unreachable code with value "%v"`, r.Caller, r.Value)
}
