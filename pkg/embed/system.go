// Package genfun is the public embedding API: a System bundles a method
// table with a marshaller, so host applications can tag ordinary Go
// values, register methods and dispatch without touching the internal
// packages directly.
package genfun

import (
	"github.com/funvibe/genfun/internal/dispatch"
	"github.com/funvibe/genfun/internal/object"
	"github.com/funvibe/genfun/internal/trace"
)

// Method is re-exported so embedders can write methods without importing
// internal packages.
type Method = dispatch.Method

// Object is the runtime value representation.
type Object = object.Object

// Frame carries dispatch state into methods; pass it to Proceed to
// delegate to the next method.
type Frame = dispatch.Frame

// Table is re-exported for generated registration files, which take the
// table to register against.
type Table = dispatch.Table

type System struct {
	table      *dispatch.Table
	marshaller *Marshaller
}

func New() *System {
	return &System{
		table:      dispatch.NewTable(),
		marshaller: NewMarshaller(),
	}
}

// Table exposes the underlying method table, for wiring done by the
// manifest, remote and generated-registration packages.
func (s *System) Table() *dispatch.Table { return s.table }

// SetSink installs a trace sink on the table.
func (s *System) SetSink(sink trace.Sink) { s.table.SetSink(sink) }

// DefineGeneric declares a generic entry point; primitive-style generics
// fall back to the value's mode after the class walk.
func (s *System) DefineGeneric(name string, primitive bool) {
	s.table.DefineGeneric(name, primitive)
}

// RegisterMethod binds fn to the (generic, class) pair, overwriting any
// previous binding.
func (s *System) RegisterMethod(generic, class string, fn Method) {
	s.table.RegisterMethod(generic, class, fn)
}

// RegisterDefault binds the generic's fallback method.
func (s *System) RegisterDefault(generic string, fn Method) {
	s.table.RegisterDefault(generic, fn)
}

// ListMethods returns the sorted classes with a method for the generic.
func (s *System) ListMethods(generic string) []string {
	return s.table.ListMethods(generic)
}

// Tag converts a Go value and attaches a class vector to it.
func (s *System) Tag(value interface{}, classes ...string) (*object.Tagged, error) {
	obj, err := s.marshaller.ToValue(value)
	if err != nil {
		return nil, err
	}
	return object.Tag(obj, classes), nil
}

// Dispatch resolves and invokes the method for generic applied to value.
func (s *System) Dispatch(generic string, value Object, args ...Object) (Object, error) {
	return s.table.Dispatch(generic, value, args...)
}

// Proceed delegates to the next method in the frame's class walk.
func Proceed(fr *Frame) (Object, error) {
	return dispatch.Proceed(fr)
}

// Call is the convenience round trip: marshal the Go value and arguments,
// dispatch, and unmarshal the result back to a plain Go value.
func (s *System) Call(generic string, value interface{}, classes []string, args ...interface{}) (interface{}, error) {
	tagged, err := s.Tag(value, classes...)
	if err != nil {
		return nil, err
	}
	objArgs := make([]Object, len(args))
	for i, a := range args {
		if objArgs[i], err = s.marshaller.ToValue(a); err != nil {
			return nil, err
		}
	}
	result, err := s.table.Dispatch(generic, tagged, objArgs...)
	if err != nil {
		return nil, err
	}
	return s.marshaller.FromValue(result), nil
}
