// Package ext resolves the bind section of a manifest against real Go
// packages and generates the registration file that wires the named
// functions into a dispatch table.
//
// A bound function must already have the dispatch.Method shape; ext only
// verifies that and emits the registration calls, it does not wrap
// arbitrary signatures.
package ext

import (
	"fmt"
	"go/types"

	"golang.org/x/tools/go/packages"

	"github.com/funvibe/genfun/internal/manifest"
)

// ResolvedBinding is one bind spec checked against its Go package.
type ResolvedBinding struct {
	// Spec is the original entry from the manifest.
	Spec manifest.BindSpec

	// Generic and Class come from splitting Spec.As.
	Generic string
	Class   string

	// PkgPath is the resolved Go import path.
	PkgPath string

	// PkgName is the package's declared name, used for the import alias.
	PkgName string
}

// InspectResult holds all resolved bindings, in manifest order.
type InspectResult struct {
	Bindings []*ResolvedBinding
}

// Inspect loads the packages named by the bind specs and verifies each
// function exists, is exported, and has the dispatch.Method signature.
func Inspect(specs []manifest.BindSpec) (*InspectResult, error) {
	if len(specs) == 0 {
		return &InspectResult{}, nil
	}

	paths := make([]string, 0, len(specs))
	seen := make(map[string]bool)
	for _, s := range specs {
		if !seen[s.Pkg] {
			seen[s.Pkg] = true
			paths = append(paths, s.Pkg)
		}
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedTypes}
	pkgs, err := packages.Load(cfg, paths...)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	byPath := make(map[string]*packages.Package, len(pkgs))
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s: %v", pkg.PkgPath, pkg.Errors[0])
		}
		byPath[pkg.PkgPath] = pkg
	}

	result := &InspectResult{}
	for _, spec := range specs {
		pkg, ok := byPath[spec.Pkg]
		if !ok {
			return nil, fmt.Errorf("package %s not found", spec.Pkg)
		}
		rb, err := resolveBinding(spec, pkg)
		if err != nil {
			return nil, err
		}
		result.Bindings = append(result.Bindings, rb)
	}
	return result, nil
}

func resolveBinding(spec manifest.BindSpec, pkg *packages.Package) (*ResolvedBinding, error) {
	generic, class, err := manifest.SplitSpec(spec.As)
	if err != nil {
		return nil, fmt.Errorf("bind %s.%s: %w", spec.Pkg, spec.Func, err)
	}

	obj := pkg.Types.Scope().Lookup(spec.Func)
	if obj == nil {
		return nil, fmt.Errorf("bind %s: function %s not found", spec.Pkg, spec.Func)
	}
	fn, ok := obj.(*types.Func)
	if !ok {
		return nil, fmt.Errorf("bind %s: %s is not a function", spec.Pkg, spec.Func)
	}
	if !fn.Exported() {
		return nil, fmt.Errorf("bind %s: function %s is not exported", spec.Pkg, spec.Func)
	}
	if reason := methodShapeMismatch(fn.Type().(*types.Signature)); reason != "" {
		return nil, fmt.Errorf("bind %s.%s: %s", spec.Pkg, spec.Func, reason)
	}

	return &ResolvedBinding{
		Spec:    spec,
		Generic: generic,
		Class:   class,
		PkgPath: pkg.PkgPath,
		PkgName: pkg.Types.Name(),
	}, nil
}

// methodShapeMismatch checks a signature against the dispatch.Method shape:
//
//	func(*dispatch.Frame, object.Object, []object.Object) (object.Object, error)
//
// It returns an empty string when the signature fits, else a description of
// what is off. Types are compared by their qualified strings, which is
// enough to reject wrong shapes without importing the checked package's
// dependency graph.
func methodShapeMismatch(sig *types.Signature) string {
	if sig.Recv() != nil {
		return "bound functions must not be methods"
	}
	if sig.Params().Len() != 3 {
		return fmt.Sprintf("want 3 parameters, got %d", sig.Params().Len())
	}
	if sig.Results().Len() != 2 {
		return fmt.Sprintf("want 2 results, got %d", sig.Results().Len())
	}

	checks := []struct {
		got  types.Type
		want string
	}{
		{sig.Params().At(0).Type(), "*" + modDispatch + ".Frame"},
		{sig.Params().At(1).Type(), modObject + ".Object"},
		{sig.Params().At(2).Type(), "[]" + modObject + ".Object"},
		{sig.Results().At(0).Type(), modObject + ".Object"},
		{sig.Results().At(1).Type(), "error"},
	}
	for i, c := range checks {
		if !typeMatches(c.got, c.want) {
			return fmt.Sprintf("position %d has type %s, want %s", i, c.got.String(), c.want)
		}
	}
	return ""
}

const (
	modDispatch = "github.com/funvibe/genfun/internal/dispatch"
	modObject   = "github.com/funvibe/genfun/internal/object"
)

// typeMatches compares a type against its fully qualified string, with
// aliases resolved. A bound function may spell the types as
// dispatch.Object or via the pkg/embed re-exports (genfun.Frame,
// genfun.Object); all of those resolve to the same internal types.
func typeMatches(t types.Type, want string) bool {
	return typeString(t) == want
}

// typeString renders a type with aliases resolved, including under
// pointer and slice composites: *genfun.Frame and []genfun.Object print
// with the embed package path unless the element is unaliased first.
func typeString(t types.Type) string {
	switch u := types.Unalias(t).(type) {
	case *types.Pointer:
		return "*" + typeString(u.Elem())
	case *types.Slice:
		return "[]" + typeString(u.Elem())
	default:
		return u.String()
	}
}
