package object

import (
	"hash/fnv"

	"github.com/funvibe/genfun/internal/config"
)

type ObjectType string

const (
	INTEGER_OBJ = "INTEGER"
	FLOAT_OBJ   = "FLOAT"
	BOOLEAN_OBJ = "BOOLEAN"
	STRING_OBJ  = "STRING"
	LIST_OBJ    = "LIST"
	RECORD_OBJ  = "RECORD"
	BYTES_OBJ   = "BYTES"
	NIL_OBJ     = "NIL"
	BUILTIN_OBJ = "BUILTIN"
)

// Object is the runtime value representation. Mode reports the value's
// intrinsic category (the dispatch fallback key for primitive-style
// generics); it is independent of any class tagging.
type Object interface {
	Type() ObjectType
	Inspect() string
	Mode() string
	Hash() uint32
}

// Helper for hashing strings
func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

var (
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
	NIL   = &Nil{}
)

// ModeOf returns the mode of a value, unwrapping any class tagging.
// A nil value reports the NULL mode.
func ModeOf(obj Object) string {
	if obj == nil {
		return config.ModeNull
	}
	return obj.Mode()
}
