package genfun

import (
	"reflect"
	"testing"

	"github.com/funvibe/genfun/internal/object"
)

func TestSystemRoundTrip(t *testing.T) {
	sys := New()
	sys.RegisterMethod("area", "rect", func(fr *Frame, value Object, args []Object) (Object, error) {
		rec := object.Unwrap(value).(*object.Record)
		w := rec.Get("W").(*object.Integer).Value
		h := rec.Get("H").(*object.Integer).Value
		return &object.Integer{Value: w * h}, nil
	})
	sys.RegisterDefault("area", func(fr *Frame, value Object, args []Object) (Object, error) {
		return &object.Integer{Value: 0}, nil
	})

	type Shape struct {
		W, H int
	}
	got, err := sys.Call("area", Shape{W: 3, H: 4}, []string{"rect"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != int64(12) {
		t.Errorf("Call = %v, want 12", got)
	}

	// untagged value lands on the default
	got, err = sys.Call("area", Shape{W: 3, H: 4}, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != int64(0) {
		t.Errorf("Call without classes = %v, want the default's 0", got)
	}
}

func TestSystemProceed(t *testing.T) {
	sys := New()
	sys.RegisterMethod("describe", "base", func(fr *Frame, value Object, args []Object) (Object, error) {
		return &object.String{Value: "base"}, nil
	})
	sys.RegisterMethod("describe", "derived", func(fr *Frame, value Object, args []Object) (Object, error) {
		rest, err := Proceed(fr)
		if err != nil {
			return nil, err
		}
		return &object.String{Value: "derived+" + object.Unwrap(rest).(*object.String).Value}, nil
	})

	got, err := sys.Call("describe", map[string]interface{}{}, []string{"derived", "base"})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if got != "derived+base" {
		t.Errorf("Call = %v", got)
	}
}

func TestMarshallerToValue(t *testing.T) {
	m := NewMarshaller()
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"int", 42, "42"},
		{"float", 1.5, "1.5"},
		{"bool", true, "true"},
		{"string", "hi", `"hi"`},
		{"bytes", []byte{0xab}, "0xab"},
		{"slice", []int{1, 2}, "[1, 2]"},
		{"map", map[string]int{"a": 1}, "{a: 1}"},
		{"nil", nil, "nil"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := m.ToValue(tt.in)
			if err != nil {
				t.Fatalf("ToValue: %v", err)
			}
			if got := obj.Inspect(); got != tt.want {
				t.Errorf("ToValue(%v).Inspect() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMarshallerStructTags(t *testing.T) {
	type Fit struct {
		Name     string `genfun:"name"`
		RSquared float64
		secret   int
		Skipped  string `genfun:"-"`
	}
	m := NewMarshaller()
	obj, err := m.ToValue(Fit{Name: "fit1", RSquared: 0.9, secret: 1, Skipped: "x"})
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	rec := obj.(*object.Record)
	if rec.Get("name") == nil || rec.Get("RSquared") == nil {
		t.Errorf("record = %s", rec.Inspect())
	}
	if rec.Get("secret") != nil || rec.Get("Skipped") != nil {
		t.Errorf("unexported or skipped fields leaked: %s", rec.Inspect())
	}
}

func TestMarshallerObjectsPassThrough(t *testing.T) {
	m := NewMarshaller()
	v := &object.Integer{Value: 7}
	obj, err := m.ToValue(v)
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	if obj != v {
		t.Error("Object did not pass through unchanged")
	}
}

func TestMarshallerFromValue(t *testing.T) {
	m := NewMarshaller()
	obj := object.Tag(object.NewRecord(map[string]object.Object{
		"xs": object.NewList([]object.Object{&object.Integer{Value: 1}, &object.Float{Value: 2.5}}),
		"ok": object.TRUE,
	}), []string{"fit"})

	got := m.FromValue(obj)
	want := map[string]interface{}{
		"xs": []interface{}{int64(1), 2.5},
		"ok": true,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FromValue = %#v, want %#v", got, want)
	}
	if !reflect.DeepEqual(ClassesOf(obj), []string{"fit"}) {
		t.Errorf("ClassesOf = %v", ClassesOf(obj))
	}
}
