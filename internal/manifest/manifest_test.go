package manifest

import (
	"strings"
	"testing"

	"github.com/funvibe/genfun/internal/dispatch"
)

const sample = `
generics:
  - name: print
    primitive: true
  - name: summary
protos:
  - models.proto
remote:
  - generic: summary
    class: lm
    target: localhost:50051
    method: stats.Models/Summarize
bind:
  - pkg: example.com/stats
    func: SummaryDefault
    as: summary.default
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(m.Generics) != 2 {
		t.Fatalf("got %d generics, want 2", len(m.Generics))
	}
	if !m.Generics[0].Primitive || m.Generics[1].Primitive {
		t.Error("primitive flags parsed wrong")
	}
	if len(m.Remote) != 1 || m.Remote[0].Method != "stats.Models/Summarize" {
		t.Errorf("remote section parsed wrong: %+v", m.Remote)
	}
	if len(m.Bind) != 1 || m.Bind[0].As != "summary.default" {
		t.Errorf("bind section parsed wrong: %+v", m.Bind)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unnamed generic", "generics:\n  - primitive: true\n", "name is required"},
		{"duplicate generic", "generics:\n  - name: f\n  - name: f\n", "duplicate generic"},
		{"remote missing class", "remote:\n  - generic: f\n    target: x\n    method: a.B/C\n", "class is required"},
		{"remote bad method", "remote:\n  - generic: f\n    class: c\n    target: x\n    method: nopath\n", "package.Service/Method"},
		{"bind bad spec", "bind:\n  - pkg: p\n    func: F\n    as: nodot\n", "invalid method spec"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got error %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestApplyDefinesGenerics(t *testing.T) {
	m, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tbl := dispatch.NewTable()
	m.Apply(tbl)

	if !tbl.IsPrimitive("print") {
		t.Error("print should be primitive-style after Apply")
	}
	if tbl.IsPrimitive("summary") {
		t.Error("summary should not be primitive-style")
	}
	got := tbl.Generics()
	if len(got) != 2 {
		t.Errorf("Generics = %v", got)
	}
}

func TestSplitSpec(t *testing.T) {
	tests := []struct {
		spec    string
		generic string
		class   string
		wantErr bool
	}{
		{"summary.lm", "summary", "lm", false},
		{"summary.default", "summary", "default", false},
		{"summary.data.frame", "summary", "data.frame", false},
		{"nodot", "", "", true},
		{".class", "", "", true},
		{"generic.", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			g, c, err := SplitSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitSpec(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if g != tt.generic || c != tt.class {
				t.Errorf("SplitSpec(%q) = (%q, %q), want (%q, %q)", tt.spec, g, c, tt.generic, tt.class)
			}
		})
	}
}
