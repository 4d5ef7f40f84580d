// Package dispatch implements class-vector generic dispatch: a method table
// keyed by (generic, class) pairs, a resolver that walks a value's class
// vector left to right, and an explicit continuation for delegating to the
// next method in the walk.
//
// Dispatch is a convention layer, not enforcement. Methods are ordinary
// callables and can be invoked directly without going through the resolver;
// nothing about a value's classes is checked at registration time.
package dispatch

import (
	"sort"
	"sync"

	"github.com/funvibe/genfun/internal/config"
	"github.com/funvibe/genfun/internal/trace"
)

// Method is a callable registered for a (generic, class) pair or as a
// default. The frame argument carries dispatch state for Proceed; a method
// called directly may receive nil.
type Method func(fr *Frame, value Object, args []Object) (Object, error)

type methodKey struct {
	generic string
	class   string
}

type genericEntry struct {
	primitive bool
}

// Table holds the method table and the generic registry. Reads are
// concurrent, writes are serialized: registration is rare, dispatch is
// frequent.
type Table struct {
	mu       sync.RWMutex
	methods  map[methodKey]Method
	generics map[string]genericEntry
	sink     trace.Sink
}

func NewTable() *Table {
	return &Table{
		methods:  make(map[methodKey]Method),
		generics: make(map[string]genericEntry),
	}
}

// SetSink installs a trace sink. Pass nil to disable tracing.
func (t *Table) SetSink(s trace.Sink) {
	t.mu.Lock()
	t.sink = s
	t.mu.Unlock()
}

func (t *Table) emit(ev trace.Event) {
	t.mu.RLock()
	sink := t.sink
	t.mu.RUnlock()
	if sink != nil {
		sink.Emit(ev)
	}
}

// DefineGeneric registers a generic entry point. Primitive-style generics
// get one extra lookup keyed by the value's mode, after the class walk and
// before the default fallback. Redefining overwrites silently.
func (t *Table) DefineGeneric(name string, primitive bool) {
	t.mu.Lock()
	t.generics[name] = genericEntry{primitive: primitive}
	t.mu.Unlock()
}

// IsPrimitive reports whether the generic was defined primitive-style.
func (t *Table) IsPrimitive(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.generics[name].primitive
}

// RegisterMethod binds fn to the (generic, class) pair. Re-registering the
// same pair overwrites silently; the generic is defined on first use.
func (t *Table) RegisterMethod(generic, class string, fn Method) {
	t.mu.Lock()
	if _, ok := t.generics[generic]; !ok {
		t.generics[generic] = genericEntry{}
	}
	t.methods[methodKey{generic, class}] = fn
	t.mu.Unlock()
}

// RegisterDefault binds the fallback method for a generic, stored under the
// sentinel class.
func (t *Table) RegisterDefault(generic string, fn Method) {
	t.RegisterMethod(generic, config.DefaultClassName, fn)
}

// Lookup finds the method for an exact (generic, class) key.
func (t *Table) Lookup(generic, class string) (Method, bool) {
	t.mu.RLock()
	fn, ok := t.methods[methodKey{generic, class}]
	t.mu.RUnlock()
	return fn, ok
}

// ListMethods returns the sorted class names with a method registered for
// the generic, including the sentinel default class when present.
func (t *Table) ListMethods(generic string) []string {
	t.mu.RLock()
	var classes []string
	for key := range t.methods {
		if key.generic == generic {
			classes = append(classes, key.class)
		}
	}
	t.mu.RUnlock()
	sort.Strings(classes)
	return classes
}

// Generics returns the sorted names of all defined generics.
func (t *Table) Generics() []string {
	t.mu.RLock()
	names := make([]string, 0, len(t.generics))
	for name := range t.generics {
		names = append(names, name)
	}
	t.mu.RUnlock()
	sort.Strings(names)
	return names
}
