package genfun

import (
	"fmt"
	"reflect"

	"github.com/funvibe/genfun/internal/object"
)

// Marshaller handles conversion between Go and dispatch values.
type Marshaller struct{}

func NewMarshaller() *Marshaller {
	return &Marshaller{}
}

// ToValue converts a Go value to an Object. Objects pass through
// unchanged, so methods can hand back runtime values directly.
func (m *Marshaller) ToValue(val interface{}) (object.Object, error) {
	if val == nil {
		return object.NIL, nil
	}
	if obj, ok := val.(object.Object); ok {
		return obj, nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &object.Integer{Value: v.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &object.Integer{Value: int64(v.Uint())}, nil
	case reflect.Float32, reflect.Float64:
		return &object.Float{Value: v.Float()}, nil
	case reflect.Bool:
		if v.Bool() {
			return object.TRUE, nil
		}
		return object.FALSE, nil
	case reflect.String:
		return &object.String{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return &object.Bytes{Data: v.Bytes()}, nil
		}
		return m.sliceToList(v)
	case reflect.Map:
		return m.mapToRecord(v)
	case reflect.Struct:
		return m.structToRecord(v)
	case reflect.Ptr:
		if v.IsNil() {
			return object.NIL, nil
		}
		return m.ToValue(v.Elem().Interface())
	default:
		return nil, fmt.Errorf("cannot convert %T to a dispatch value", val)
	}
}

func (m *Marshaller) sliceToList(v reflect.Value) (object.Object, error) {
	elements := make([]object.Object, v.Len())
	for i := 0; i < v.Len(); i++ {
		obj, err := m.ToValue(v.Index(i).Interface())
		if err != nil {
			return nil, err
		}
		elements[i] = obj
	}
	return object.NewList(elements), nil
}

func (m *Marshaller) mapToRecord(v reflect.Value) (object.Object, error) {
	if v.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("cannot convert map with %s keys, need string keys", v.Type().Key())
	}
	fields := make(map[string]object.Object, v.Len())
	for _, key := range v.MapKeys() {
		obj, err := m.ToValue(v.MapIndex(key).Interface())
		if err != nil {
			return nil, err
		}
		fields[key.String()] = obj
	}
	return object.NewRecord(fields), nil
}

func (m *Marshaller) structToRecord(v reflect.Value) (object.Object, error) {
	t := v.Type()
	fields := make(map[string]object.Object)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag := f.Tag.Get("genfun"); tag != "" {
			if tag == "-" {
				continue
			}
			name = tag
		}
		obj, err := m.ToValue(v.Field(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		fields[name] = obj
	}
	return object.NewRecord(fields), nil
}

// FromValue converts an Object back to a plain Go value. Class tagging is
// dropped; embedders that need the vector read it with ClassesOf before
// converting.
func (m *Marshaller) FromValue(obj object.Object) interface{} {
	switch o := object.Unwrap(obj).(type) {
	case *object.Integer:
		return o.Value
	case *object.Float:
		return o.Value
	case *object.Boolean:
		return o.Value
	case *object.String:
		return o.Value
	case *object.Bytes:
		return o.Data
	case *object.Nil:
		return nil
	case *object.List:
		out := make([]interface{}, len(o.Elements))
		for i, el := range o.Elements {
			out[i] = m.FromValue(el)
		}
		return out
	case *object.Record:
		out := make(map[string]interface{}, len(o.Fields))
		for _, f := range o.Fields {
			out[f.Key] = m.FromValue(f.Value)
		}
		return out
	default:
		return o
	}
}

// ClassesOf reports the class vector of a tagged value.
func ClassesOf(obj object.Object) []string {
	return object.ClassesOf(obj)
}
