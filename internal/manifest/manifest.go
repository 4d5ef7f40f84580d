// Package manifest implements the genfun.yaml registration manifest.
//
// A manifest declares the dispatch surface of a deployment up front:
// which generics exist (and which are primitive-style), which methods come
// from remote gRPC endpoints, and which Go functions a generated binding
// file registers. Parsing and validation live here; applying the remote
// section is wired up by the caller so this package stays free of
// transport dependencies.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/genfun/internal/dispatch"
)

// Manifest represents the top-level genfun.yaml configuration.
type Manifest struct {
	// Generics lists the generic entry points to define before any
	// registration happens.
	Generics []Generic `yaml:"generics"`

	// Protos lists .proto files to load for remote methods.
	Protos []string `yaml:"protos,omitempty"`

	// Remote lists methods backed by gRPC endpoints.
	Remote []RemoteMethod `yaml:"remote,omitempty"`

	// Services lists proto services the serve command exposes, mapping
	// each unary RPC name to the generic of the same name.
	Services []string `yaml:"services,omitempty"`

	// Bind lists Go functions a generated registrations file wires in.
	Bind []BindSpec `yaml:"bind,omitempty"`
}

// Generic declares a generic entry point.
type Generic struct {
	// Name is the generic function name (e.g. "summary").
	Name string `yaml:"name"`

	// Primitive marks the generic primitive-style: after the class walk
	// and before the default fallback, one extra lookup is tried keyed by
	// the value's mode.
	Primitive bool `yaml:"primitive,omitempty"`
}

// RemoteMethod binds a (generic, class) pair to a gRPC endpoint.
type RemoteMethod struct {
	// Generic is the generic function name.
	Generic string `yaml:"generic"`

	// Class is the class name the method is registered under, or
	// "default" for the fallback.
	Class string `yaml:"class"`

	// Target is the gRPC dial target (e.g. "localhost:50051").
	Target string `yaml:"target"`

	// Method is the full RPC path (e.g. "stats.Models/Summarize").
	Method string `yaml:"method"`
}

// BindSpec names a Go function to register as a method. The spec string
// uses the "generic.class" form; bindgen resolves Func against the package
// and emits the registration call.
type BindSpec struct {
	// Pkg is the Go import path of the package holding the function.
	Pkg string `yaml:"pkg"`

	// Func is the exported Go function name.
	Func string `yaml:"func"`

	// As is the "generic.class" registration spec (e.g. "summary.lm").
	As string `yaml:"as"`
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse parses manifest bytes and validates them.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks manifest consistency. Class name content is deliberately
// not validated; dispatch treats class names as opaque strings.
func (m *Manifest) Validate() error {
	seen := make(map[string]bool)
	for i, g := range m.Generics {
		if g.Name == "" {
			return fmt.Errorf("generics[%d]: name is required", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("generics[%d]: duplicate generic %q", i, g.Name)
		}
		seen[g.Name] = true
	}
	for i, r := range m.Remote {
		switch {
		case r.Generic == "":
			return fmt.Errorf("remote[%d]: generic is required", i)
		case r.Class == "":
			return fmt.Errorf("remote[%d]: class is required", i)
		case r.Target == "":
			return fmt.Errorf("remote[%d]: target is required", i)
		case !strings.Contains(r.Method, "/"):
			return fmt.Errorf("remote[%d]: method %q must have the form \"package.Service/Method\"", i, r.Method)
		}
	}
	for i, b := range m.Bind {
		if b.Pkg == "" || b.Func == "" {
			return fmt.Errorf("bind[%d]: pkg and func are required", i)
		}
		if _, _, err := SplitSpec(b.As); err != nil {
			return fmt.Errorf("bind[%d]: %v", i, err)
		}
	}
	return nil
}

// Apply defines the manifest's generics on a table. Remote and bind
// sections are handled by their own packages.
func (m *Manifest) Apply(tbl *dispatch.Table) {
	for _, g := range m.Generics {
		tbl.DefineGeneric(g.Name, g.Primitive)
	}
}

// SplitSpec splits a "generic.class" registration spec at the first dot, so
// class names may themselves contain dots: "summary.data.frame" is generic
// "summary" with class "data.frame". "summary.default" registers the
// fallback, since the sentinel is an ordinary table key.
func SplitSpec(spec string) (generic, class string, err error) {
	i := strings.Index(spec, ".")
	if i <= 0 || i == len(spec)-1 {
		return "", "", fmt.Errorf("invalid method spec %q, want \"generic.class\"", spec)
	}
	return spec[:i], spec[i+1:], nil
}
