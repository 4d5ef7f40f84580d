package dispatch

import (
	"fmt"
	"strings"
)

// MethodNotFoundError is returned when a dispatch finds no method for any
// class in the value's vector and no default is registered.
type MethodNotFoundError struct {
	Generic string
	Classes []string
}

func (e *MethodNotFoundError) Error() string {
	if len(e.Classes) == 0 {
		return fmt.Sprintf("no applicable method for %q applied to an untagged value", e.Generic)
	}
	quoted := make([]string, len(e.Classes))
	for i, c := range e.Classes {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return fmt.Sprintf("no applicable method for %q applied to an object of class %s",
		e.Generic, strings.Join(quoted, ", "))
}

// NoNextMethodError is returned by Proceed when the class walk is exhausted
// and no default method exists.
type NoNextMethodError struct {
	Generic string
}

func (e *NoNextMethodError) Error() string {
	return fmt.Sprintf("no more methods for %q", e.Generic)
}

// GenericNotSpecifiedError is returned when Proceed is called outside any
// active dispatch, so there is no frame to continue from.
type GenericNotSpecifiedError struct{}

func (e *GenericNotSpecifiedError) Error() string {
	return "proceed called from outside a method dispatch"
}

// ValueNotSpecifiedError is returned when dispatch is invoked without a
// value to dispatch on.
type ValueNotSpecifiedError struct{}

func (e *ValueNotSpecifiedError) Error() string {
	return "no value to dispatch on"
}
