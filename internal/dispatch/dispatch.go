package dispatch

import (
	"time"

	"github.com/funvibe/genfun/internal/config"
	"github.com/funvibe/genfun/internal/object"
	"github.com/funvibe/genfun/internal/trace"
)

// Object is the runtime value representation dispatched on.
type Object = object.Object

// Frame is the per-call dispatch state handed to every invoked method. It
// snapshots the value's class vector at dispatch start, so mutating the
// value's classes inside a method body never affects the in-flight walk,
// only future dispatches. A frame is owned by one in-flight dispatch and is
// never retained beyond it; nested dispatch creates an independent frame.
type Frame struct {
	table        *Table
	callID       string
	generic      string
	classes      []string
	cursor       int
	modeTried    bool
	defaultTried bool
	value        Object
	args         []Object
}

// Generic returns the name of the generic being resolved.
func (fr *Frame) Generic() string { return fr.generic }

// CallID returns the trace ID of the top-level dispatch this frame belongs
// to. Continuations share the ID.
func (fr *Frame) CallID() string { return fr.callID }

// Table returns the table that produced this frame, for methods that need
// to start a nested dispatch.
func (fr *Frame) Table() *Table { return fr.table }

// Classes returns a copy of the snapshot the walk runs against.
func (fr *Frame) Classes() []string {
	out := make([]string, len(fr.classes))
	copy(out, fr.classes)
	return out
}

// next clones the frame with the cursor advanced past position i.
func (fr *Frame) next(i int) *Frame {
	cl := *fr
	cl.cursor = i + 1
	return &cl
}

// Dispatch resolves and invokes the method for generic applied to value.
// The walk is first-match-wins over the value's class vector; primitive-
// style generics then try the value's mode, then the default fallback.
func (t *Table) Dispatch(generic string, value Object, args ...Object) (Object, error) {
	if value == nil {
		return nil, &ValueNotSpecifiedError{}
	}
	fr := &Frame{
		table:   t,
		callID:  trace.NewCallID(),
		generic: generic,
		classes: object.ClassesOf(value),
		value:   value,
		args:    args,
	}
	t.emit(trace.Event{
		CallID: fr.callID, Kind: trace.KindDispatch,
		Generic: generic, Time: time.Now(),
	})
	return t.resolveFrom(fr, false)
}

// Proceed continues the class walk from where the current method was
// matched, forwarding the same value and argument values the method
// received. On exhaustion it falls back to the mode step (primitive-style
// generics) and the default method, exactly as the initial walk does.
func Proceed(fr *Frame) (Object, error) {
	if fr == nil || fr.table == nil {
		return nil, &GenericNotSpecifiedError{}
	}
	if fr.value == nil {
		return nil, &ValueNotSpecifiedError{}
	}
	fr.table.emit(trace.Event{
		CallID: fr.callID, Kind: trace.KindProceed,
		Generic: fr.generic, Time: time.Now(),
	})
	return fr.table.resolveFrom(fr, true)
}

// resolveFrom walks the frame's class snapshot from its cursor. The same
// walk serves the initial dispatch and every continuation; only the failure
// kind differs. Duplicate class names are matched by position, so a
// continuation can reach the second occurrence of a name the initial walk
// already matched.
func (t *Table) resolveFrom(fr *Frame, viaProceed bool) (Object, error) {
	for i := fr.cursor; i < len(fr.classes); i++ {
		class := fr.classes[i]
		fn, ok := t.Lookup(fr.generic, class)
		if !ok {
			t.emit(trace.Event{
				CallID: fr.callID, Kind: trace.KindProbe,
				Generic: fr.generic, Class: class, Time: time.Now(),
			})
			continue
		}
		t.emit(trace.Event{
			CallID: fr.callID, Kind: trace.KindMatch,
			Generic: fr.generic, Class: class, Time: time.Now(),
		})
		return fn(fr.next(i), fr.value, fr.args)
	}

	if !fr.modeTried {
		fr.modeTried = true
		if t.IsPrimitive(fr.generic) {
			mode := object.ModeOf(fr.value)
			if fn, ok := t.Lookup(fr.generic, mode); ok {
				t.emit(trace.Event{
					CallID: fr.callID, Kind: trace.KindMode,
					Generic: fr.generic, Class: mode, Time: time.Now(),
				})
				return fn(fr.next(len(fr.classes)-1), fr.value, fr.args)
			}
		}
	}

	if !fr.defaultTried {
		fr.defaultTried = true
		if fn, ok := t.Lookup(fr.generic, config.DefaultClassName); ok {
			t.emit(trace.Event{
				CallID: fr.callID, Kind: trace.KindDefault,
				Generic: fr.generic, Class: config.DefaultClassName, Time: time.Now(),
			})
			return fn(fr.next(len(fr.classes)-1), fr.value, fr.args)
		}
	}

	var err error
	if viaProceed {
		err = &NoNextMethodError{Generic: fr.generic}
	} else {
		err = &MethodNotFoundError{Generic: fr.generic, Classes: fr.Classes()}
	}
	t.emit(trace.Event{
		CallID: fr.callID, Kind: trace.KindFail,
		Generic: fr.generic, Detail: err.Error(), Time: time.Now(),
	})
	return nil, err
}
