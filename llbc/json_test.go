package llbc_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pierrevial/candy-for-charon/ir"
	"github.com/pierrevial/candy-for-charon/llbc"
)

func TestEncodeBody(t *testing.T) {
	body := &llbc.Body{
		Locals: []llbc.Var{
			{ID: 0, Name: "ret", Ty: ir.TyInt{Int: ir.I32}},
			{ID: 1, Name: "cond", Ty: ir.TyBool{}},
		},
		ArgCount: 1,
		Stmt: llbc.NewSequence(
			llbc.If{
				Cond: ir.Copy{Place: ir.PlaceOf(1)},
				Then: llbc.Assign{
					Dest:   ir.PlaceOf(0),
					Source: ir.Use{Operand: ir.Const{Ty: ir.TyInt{Int: ir.I32}, Value: ir.ConstScalar{Value: ir.ScalarFromInt(ir.I32, -7)}}},
				},
				Else: llbc.Nop{},
			},
			llbc.Return{},
		),
	}

	var buf bytes.Buffer
	if err := llbc.EncodeBody(&buf, body); err != nil {
		t.Fatalf("EncodeBody: %v", err)
	}

	var doc struct {
		Locals   []map[string]any `json:"locals"`
		ArgCount int              `json:"arg_count"`
		Stmt     struct {
			Kind  string          `json:"kind"`
			First json.RawMessage `json:"first"`
			Rest  json.RawMessage `json:"rest"`
		} `json:"stmt"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if doc.ArgCount != 1 || len(doc.Locals) != 2 {
		t.Errorf("header: args=%d locals=%d", doc.ArgCount, len(doc.Locals))
	}
	if doc.Stmt.Kind != "sequence" {
		t.Fatalf("top statement kind = %q, want %q", doc.Stmt.Kind, "sequence")
	}

	var first struct {
		Kind string `json:"kind"`
		Then struct {
			Kind   string `json:"kind"`
			Source struct {
				Kind    string `json:"kind"`
				Operand struct {
					Value struct {
						Scalar struct {
							Value string `json:"value"`
						} `json:"scalar"`
					} `json:"value"`
				} `json:"operand"`
			} `json:"source"`
		} `json:"then"`
		Else struct {
			Kind string `json:"kind"`
		} `json:"else"`
	}
	if err := json.Unmarshal(doc.Stmt.First, &first); err != nil {
		t.Fatalf("Unmarshal first: %v", err)
	}
	if first.Kind != "if" || first.Then.Kind != "assign" || first.Else.Kind != "nop" {
		t.Errorf("if shape: %q/%q/%q", first.Kind, first.Then.Kind, first.Else.Kind)
	}
	if first.Then.Source.Kind != "use" {
		t.Errorf("assign source kind = %q", first.Then.Source.Kind)
	}
	if got := first.Then.Source.Operand.Value.Scalar.Value; got != "-7" {
		t.Errorf("scalar value = %q, want %q", got, "-7")
	}

	var rest struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(doc.Stmt.Rest, &rest); err != nil {
		t.Fatalf("Unmarshal rest: %v", err)
	}
	if rest.Kind != "return" {
		t.Errorf("rest kind = %q, want %q", rest.Kind, "return")
	}
}
