package remote

import (
	"reflect"
	"testing"

	"github.com/jhump/protoreflect/dynamic"

	"github.com/funvibe/genfun/internal/config"
	"github.com/funvibe/genfun/internal/object"
)

const testProto = `
syntax = "proto3";
package stats;

message Model {
  string name = 1;
  repeated string class = 2;
  double r_squared = 3;
  int64 n = 4;
  repeated double residuals = 5;
  Meta meta = 6;
  bool converged = 7;
  bytes seed = 8;
}

message Meta {
  string fitted_by = 1;
}

message Summary {
  string text = 1;
  double r_squared = 2;
}

service Models {
  rpc Summarize(Model) returns (Summary);
}
`

func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	if err := reg.LoadProtoSource(map[string]string{"models.proto": testProto}); err != nil {
		t.Fatalf("LoadProtoSource: %v", err)
	}
	return reg
}

func TestRecordToMessageRoundtrip(t *testing.T) {
	reg := testRegistry(t)
	md, err := reg.FindMethod("stats.Models/Summarize")
	if err != nil {
		t.Fatalf("FindMethod: %v", err)
	}

	rec := object.NewRecord(map[string]object.Object{
		"name":      &object.String{Value: "fit1"},
		"r_squared": &object.Float{Value: 0.93},
		"n":         &object.Integer{Value: 120},
		"residuals": object.NewList([]object.Object{
			&object.Float{Value: 0.1}, &object.Float{Value: -0.2},
		}),
		"meta":      object.NewRecord(map[string]object.Object{"fitted_by": &object.String{Value: "ols"}}),
		"converged": object.TRUE,
		"seed":      &object.Bytes{Data: []byte{1, 2}},
		"ignored":   &object.String{Value: "not in schema"},
	})

	msg := dynamic.NewMessage(md.GetInputType())
	if err := recordToMessage(rec, msg); err != nil {
		t.Fatalf("recordToMessage: %v", err)
	}

	back := messageToRecord(msg)
	if got := back.Get("name").(*object.String).Value; got != "fit1" {
		t.Errorf("name = %q", got)
	}
	if got := back.Get("r_squared").(*object.Float).Value; got != 0.93 {
		t.Errorf("r_squared = %v", got)
	}
	if got := back.Get("n").(*object.Integer).Value; got != 120 {
		t.Errorf("n = %v", got)
	}
	res := back.Get("residuals").(*object.List)
	if len(res.Elements) != 2 || res.Elements[1].(*object.Float).Value != -0.2 {
		t.Errorf("residuals = %v", res.Inspect())
	}
	meta := back.Get("meta").(*object.Record)
	if meta.Get("fitted_by").(*object.String).Value != "ols" {
		t.Errorf("meta = %v", meta.Inspect())
	}
	if back.Get("converged") != object.TRUE {
		t.Errorf("converged = %v", back.Get("converged"))
	}
	if !reflect.DeepEqual(back.Get("seed").(*object.Bytes).Data, []byte{1, 2}) {
		t.Errorf("seed = %v", back.Get("seed").Inspect())
	}
	// unknown fields are dropped, not errors
	if back.Get("ignored") != nil {
		t.Error("field outside the schema survived the roundtrip")
	}
}

func TestRecordToMessageRejectsNonRecords(t *testing.T) {
	reg := testRegistry(t)
	md, _ := reg.FindMethod("stats.Models/Summarize")
	msg := dynamic.NewMessage(md.GetInputType())
	if err := recordToMessage(&object.Integer{Value: 1}, msg); err == nil {
		t.Error("expected an error for a non-record value")
	}
}

func TestClassFieldHandling(t *testing.T) {
	reg := testRegistry(t)
	md, _ := reg.FindMethod("stats.Models/Summarize")

	msg := dynamic.NewMessage(md.GetInputType())
	setClassesOnMessage(msg, config.ClassFieldName, []string{"lm", "model"})
	got := classesFromMessage(msg, config.ClassFieldName)
	if !reflect.DeepEqual(got, []string{"lm", "model"}) {
		t.Errorf("classes = %v", got)
	}

	// the Summary message has no class field; both directions are no-ops
	out := dynamic.NewMessage(md.GetOutputType())
	setClassesOnMessage(out, config.ClassFieldName, []string{"lm"})
	if got := classesFromMessage(out, config.ClassFieldName); got != nil {
		t.Errorf("classes from schema without class field = %v", got)
	}
}

func TestSplitMethodPath(t *testing.T) {
	tests := []struct {
		path    string
		service string
		method  string
		ok      bool
	}{
		{"stats.Models/Summarize", "stats.Models", "Summarize", true},
		{"Models/Do", "Models", "Do", true},
		{"nopath", "", "", false},
		{"/leading", "", "", false},
		{"trailing/", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			svc, m, ok := splitMethodPath(tt.path)
			if ok != tt.ok || svc != tt.service || m != tt.method {
				t.Errorf("splitMethodPath(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.path, svc, m, ok, tt.service, tt.method, tt.ok)
			}
		})
	}
}
