package object

import (
	"strings"
	"sync"
)

// Tagged pairs a value with an ordered class vector. The vector defines a
// strict left-to-right precedence order for dispatch; no subtype or
// interface relationship between class names is implied. Duplicates are
// allowed and order is significant.
//
// Tagging is metadata: a Tagged value reports the underlying value's type
// and mode, so host code that does not care about classes can stay unaware
// of them.
type Tagged struct {
	Value Object

	mu      sync.RWMutex
	classes []string
}

// Tag attaches a class vector to a value. Tagging an already tagged value
// replaces the previous vector (most recent tagging wins, no merging).
// Class name content is not validated.
func Tag(v Object, classes []string) *Tagged {
	if t, ok := v.(*Tagged); ok {
		v = t.Value
	}
	return &Tagged{Value: v, classes: copyClasses(classes)}
}

// ClassesOf returns a copy of the value's class vector, or an empty vector
// for untagged values.
func ClassesOf(v Object) []string {
	if t, ok := v.(*Tagged); ok {
		return t.Classes()
	}
	return nil
}

// Unwrap strips class tagging, returning the underlying value.
func Unwrap(v Object) Object {
	if t, ok := v.(*Tagged); ok {
		return t.Value
	}
	return v
}

// Classes returns a copy of the class vector.
func (t *Tagged) Classes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return copyClasses(t.classes)
}

// SetClasses replaces the class vector. Only future dispatches observe the
// change: an in-flight dispatch walks the snapshot taken when it started.
func (t *Tagged) SetClasses(classes []string) {
	t.mu.Lock()
	t.classes = copyClasses(classes)
	t.mu.Unlock()
}

func (t *Tagged) Type() ObjectType { return t.Value.Type() }
func (t *Tagged) Inspect() string {
	classes := t.Classes()
	if len(classes) == 0 {
		return t.Value.Inspect()
	}
	return t.Value.Inspect() + " <" + strings.Join(classes, ",") + ">"
}
func (t *Tagged) Mode() string { return t.Value.Mode() }
func (t *Tagged) Hash() uint32 { return t.Value.Hash() }

func copyClasses(classes []string) []string {
	if len(classes) == 0 {
		return nil
	}
	out := make([]string, len(classes))
	copy(out, classes)
	return out
}
