package mask

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrCyclicStructure is returned when a payload references itself.
	ErrCyclicStructure = errors.New("cyclic structure")

	// ErrMaxDepth is returned when a payload nests deeper than the policy allows.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")
)

// FromError flattens err into an ErrorInfo value. A nil error, including a
// typed nil pointer, becomes Null.
func FromError(err error) Value {
	if err == nil {
		return Null()
	}
	if rv := reflect.ValueOf(err); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return Null()
	}
	return Error(ErrorInfo{
		Message: err.Error(),
		Name:    errorName(err),
		Stack:   errorStack(err),
	})
}

func errorName(err error) string {
	if n, ok := err.(interface{ Name() string }); ok {
		return n.Name()
	}
	return reflect.TypeOf(err).String()
}

// errorStack returns a stack if the error carries one, either through a
// Stack() method or a "%+v" rendering that differs from Error().
func errorStack(err error) string {
	if s, ok := err.(interface{ Stack() string }); ok {
		return s.Stack()
	}
	if _, ok := err.(fmt.Formatter); ok {
		if verbose := fmt.Sprintf("%+v", err); verbose != err.Error() {
			return verbose
		}
	}
	return ""
}
