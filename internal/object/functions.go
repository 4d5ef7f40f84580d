package object

import "github.com/funvibe/genfun/internal/config"

// BuiltinFunction is the signature of host callables carried as values.
type BuiltinFunction func(args ...Object) (Object, error)

// Builtin wraps a host function as a first-class value.
type Builtin struct {
	Name string
	Fn   BuiltinFunction
}

func (b *Builtin) Type() ObjectType { return BUILTIN_OBJ }
func (b *Builtin) Inspect() string {
	if b.Name != "" {
		return "builtin " + b.Name
	}
	return "builtin function"
}
func (b *Builtin) Mode() string { return config.ModeFunction }
func (b *Builtin) Hash() uint32 { return hashString(b.Name) }
