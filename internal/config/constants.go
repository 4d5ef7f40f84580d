package config

// DefaultClassName is the sentinel class under which fallback methods are
// stored in the method table. It never appears in a value's class vector.
const DefaultClassName = "default"

// Value modes. A mode is a value's intrinsic runtime category, reported by
// every object regardless of tagging. Primitive-style generics use it as an
// extra dispatch key after the class walk.
const (
	ModeNumeric   = "numeric"
	ModeCharacter = "character"
	ModeLogical   = "logical"
	ModeList      = "list"
	ModeFunction  = "function"
	ModeRaw       = "raw"
	ModeNull      = "NULL"
)

// ManifestFileName is the default registration manifest looked up by the CLI
// when no path is given.
const ManifestFileName = "genfun.yaml"

// ClassFieldName is the request field remote servers read the class vector
// from when a caller wants class-directed dispatch over the wire.
const ClassFieldName = "class"
