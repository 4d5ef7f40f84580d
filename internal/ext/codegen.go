package ext

import (
	"fmt"
	"sort"
	"strings"
	"text/template"
)

// CodeGenerator produces the registrations file for resolved bindings.
type CodeGenerator struct {
	// modulePath is the genfun import path, overridable for local
	// development checkouts.
	modulePath string
}

func NewCodeGenerator(modulePath string) *CodeGenerator {
	if modulePath == "" {
		modulePath = "github.com/funvibe/genfun"
	}
	return &CodeGenerator{modulePath: modulePath}
}

var registrationsTemplate = template.Must(template.New("registrations").Parse(
	`// Code generated by genfun bindgen. DO NOT EDIT.

package registrations

import (
	genfun "{{.ModulePath}}/pkg/embed"
{{if .Imports}}
{{- range .Imports}}
	{{.Alias}} "{{.Path}}"
{{- end}}
{{end -}}
)

// Register wires every bound function into the table.
func Register(tbl *genfun.Table) {
{{- range .Bindings}}
	tbl.RegisterMethod({{printf "%q" .Generic}}, {{printf "%q" .Class}}, genfun.Method({{.PkgAlias}}.{{.Func}}))
{{- end}}
}
`))

type templateImport struct {
	Alias string
	Path  string
}

type templateBinding struct {
	Generic  string
	Class    string
	PkgAlias string
	Func     string
}

// Generate renders the registrations file content.
func (cg *CodeGenerator) Generate(result *InspectResult) (string, error) {
	// import path -> alias; the embed package is seeded so no bound
	// package claims the genfun alias.
	aliases := map[string]string{cg.modulePath + "/pkg/embed": "genfun"}
	var imports []templateImport
	for _, b := range result.Bindings {
		if _, ok := aliases[b.PkgPath]; ok {
			continue
		}
		alias := uniqueAlias(b.PkgName, aliases)
		aliases[b.PkgPath] = alias
		imports = append(imports, templateImport{Alias: alias, Path: b.PkgPath})
	}
	sort.Slice(imports, func(i, j int) bool { return imports[i].Path < imports[j].Path })

	bindings := make([]templateBinding, 0, len(result.Bindings))
	for _, b := range result.Bindings {
		bindings = append(bindings, templateBinding{
			Generic:  b.Generic,
			Class:    b.Class,
			PkgAlias: aliases[b.PkgPath],
			Func:     b.Spec.Func,
		})
	}

	var out strings.Builder
	err := registrationsTemplate.Execute(&out, struct {
		ModulePath string
		Imports    []templateImport
		Bindings   []templateBinding
	}{cg.modulePath, imports, bindings})
	if err != nil {
		return "", fmt.Errorf("render registrations: %w", err)
	}
	return out.String(), nil
}

// uniqueAlias disambiguates clashing package names (two packages both named
// "stats" become stats and stats2).
func uniqueAlias(name string, taken map[string]string) string {
	used := make(map[string]bool, len(taken))
	for _, a := range taken {
		used[a] = true
	}
	if !used[name] {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", name, i)
		if !used[candidate] {
			return candidate
		}
	}
}
