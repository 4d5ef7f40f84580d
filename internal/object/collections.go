package object

import (
	"sort"
	"strings"

	"github.com/funvibe/genfun/internal/config"
)

// List represents an ordered collection. Runtime allows heterogeneous
// elements; dispatch only cares that its mode is "list".
type List struct {
	Elements []Object
}

func NewList(elements []Object) *List {
	return &List{Elements: elements}
}

func (l *List) Type() ObjectType { return LIST_OBJ }
func (l *List) Inspect() string {
	var out strings.Builder
	out.WriteString("[")
	for i, el := range l.Elements {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(el.Inspect())
	}
	out.WriteString("]")
	return out.String()
}
func (l *List) Mode() string { return config.ModeList }
func (l *List) Hash() uint32 {
	h := uint32(1)
	for _, el := range l.Elements {
		h = 31*h + el.Hash()
	}
	return h
}

// RecordField keeps insertion order stable for Inspect output.
type RecordField struct {
	Key   string
	Value Object
}

// Record is a named-field collection, the usual carrier for class-tagged
// data (a data frame row, a model fit, and so on).
type Record struct {
	Fields []RecordField
	index  map[string]int
}

// NewRecord builds a record from a field map with deterministic (sorted)
// field order.
func NewRecord(fields map[string]Object) *Record {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	r := &Record{index: make(map[string]int, len(fields))}
	for _, k := range keys {
		r.index[k] = len(r.Fields)
		r.Fields = append(r.Fields, RecordField{Key: k, Value: fields[k]})
	}
	return r
}

// Get returns the field value or nil when absent.
func (r *Record) Get(name string) Object {
	if i, ok := r.index[name]; ok {
		return r.Fields[i].Value
	}
	return nil
}

// Set adds or replaces a field.
func (r *Record) Set(name string, val Object) {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.Fields[i].Value = val
		return
	}
	r.index[name] = len(r.Fields)
	r.Fields = append(r.Fields, RecordField{Key: name, Value: val})
}

func (r *Record) Type() ObjectType { return RECORD_OBJ }
func (r *Record) Inspect() string {
	var out strings.Builder
	out.WriteString("{")
	for i, f := range r.Fields {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(f.Key)
		out.WriteString(": ")
		out.WriteString(f.Value.Inspect())
	}
	out.WriteString("}")
	return out.String()
}
func (r *Record) Mode() string { return config.ModeList }
func (r *Record) Hash() uint32 {
	h := uint32(1)
	for _, f := range r.Fields {
		h = 31*h + hashString(f.Key)
		h = 31*h + f.Value.Hash()
	}
	return h
}
