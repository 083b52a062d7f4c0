package step

import (
	"fmt"
	"reflect"

	"github.com/ib-77/stepper/pkg/step/core"
)

// invoke calls fn with args when fn is a function and reports whether it
// did. Missing or nil arguments become zero values and surplus arguments of
// a non-variadic function are dropped.
func invoke(fn any, args []any) bool {
	if core.IsNil(fn) {
		return false
	}

	switch f := fn.(type) {
	case Callback:
		f(args...)
		return true
	case func(...any):
		f(args...)
		return true
	case func():
		f()
		return true
	}

	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return false
	}

	t := v.Type()
	fixed := t.NumIn()
	if t.IsVariadic() {
		fixed--
	}

	in := make([]reflect.Value, 0, max(fixed, len(args)))
	for i := range fixed {
		in = append(in, argValue(t.In(i), args, i))
	}
	if t.IsVariadic() {
		elem := t.In(fixed).Elem()
		for i := fixed; i < len(args); i++ {
			in = append(in, argValue(elem, args, i))
		}
	}

	v.Call(in)
	return true
}

func argValue(t reflect.Type, args []any, i int) reflect.Value {
	if i >= len(args) || args[i] == nil {
		return reflect.Zero(t)
	}
	v := reflect.ValueOf(args[i])
	if !v.Type().AssignableTo(t) {
		panic(fmt.Errorf("%w: argument %d is %s, want %s",
			ErrCallbackArgs, i, v.Type(), t))
	}
	return v
}
