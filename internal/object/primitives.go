package object

import (
	"encoding/hex"
	"fmt"
	"math"

	"github.com/funvibe/genfun/internal/config"
)

// Boolean
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }
func (b *Boolean) Mode() string     { return config.ModeLogical }
func (b *Boolean) Hash() uint32 {
	if b.Value {
		return 1
	}
	return 0
}

// Integer
type Integer struct {
	Value int64
}

func (i *Integer) Type() ObjectType { return INTEGER_OBJ }
func (i *Integer) Inspect() string  { return fmt.Sprintf("%d", i.Value) }
func (i *Integer) Mode() string     { return config.ModeNumeric }
func (i *Integer) Hash() uint32 {
	return uint32(i.Value ^ (i.Value >> 32))
}

// Float
type Float struct {
	Value float64
}

func (f *Float) Type() ObjectType { return FLOAT_OBJ }
func (f *Float) Inspect() string  { return fmt.Sprintf("%g", f.Value) }
func (f *Float) Mode() string     { return config.ModeNumeric }
func (f *Float) Hash() uint32 {
	bits := math.Float64bits(f.Value)
	return uint32(bits ^ (bits >> 32))
}

// String
type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return fmt.Sprintf("%q", s.Value) }
func (s *String) Mode() string     { return config.ModeCharacter }
func (s *String) Hash() uint32     { return hashString(s.Value) }

// Bytes
type Bytes struct {
	Data []byte
}

func (b *Bytes) Type() ObjectType { return BYTES_OBJ }
func (b *Bytes) Inspect() string  { return "0x" + hex.EncodeToString(b.Data) }
func (b *Bytes) Mode() string     { return config.ModeRaw }
func (b *Bytes) Hash() uint32 {
	h := uint32(1)
	for _, c := range b.Data {
		h = 31*h + uint32(c)
	}
	return h
}

// Nil
type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }
func (n *Nil) Mode() string     { return config.ModeNull }
func (n *Nil) Hash() uint32     { return 0 }
