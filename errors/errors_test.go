package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseReconstruct,
				Kind:     KindIrreducible,
				Decl:     "fun @3",
				Block:    7,
				HasBlock: true,
				Detail:   "re-entry from independent paths",
			},
			contains: []string{"[reconstruct]", "irreducible_cfg", "fun @3", "block 7", "re-entry"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseValidate,
				Kind:  KindDanglingBlock,
			},
			contains: []string{"[validate]", "dangling_block"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseTranslate,
				Kind:   KindInternal,
				Detail: "lost body",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[translate]", "internal", "lost body", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := AmbiguousJoin("fun @1", 4, []uint32{5, 6})

	if !errors.Is(err, &Error{Phase: PhaseReconstruct, Kind: KindAmbiguousJoin}) {
		t.Error("errors.Is did not match on phase+kind")
	}
	if errors.Is(err, &Error{Phase: PhaseReconstruct, Kind: KindIrreducible}) {
		t.Error("errors.Is matched a different kind")
	}
	if errors.Is(err, &Error{Phase: PhaseSimplify, Kind: KindAmbiguousJoin}) {
		t.Error("errors.Is matched a different phase")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("inner")
	err := New(PhaseSimplify, KindMalformedGuard).
		Decl("fun @2").
		Block(9).
		Detail("assert checks %s", "tmp.0").
		Cause(cause).
		Build()

	if err.Phase != PhaseSimplify || err.Kind != KindMalformedGuard {
		t.Error("builder lost phase or kind")
	}
	if err.Decl != "fun @2" || !err.HasBlock || err.Block != 9 {
		t.Error("builder lost location")
	}
	if err.Detail != "assert checks tmp.0" {
		t.Errorf("builder detail = %q", err.Detail)
	}
	if !errors.Is(err, cause) {
		t.Error("builder lost cause")
	}
}

func TestConvenienceConstructors(t *testing.T) {
	if msg := DanglingBlock("fun @0", 2, 9).Error(); !strings.Contains(msg, "undefined block 9") {
		t.Errorf("DanglingBlock message = %q", msg)
	}
	if msg := UncheckedBinop("fun @0", "+").Error(); !strings.Contains(msg, `"+"`) {
		t.Errorf("UncheckedBinop message = %q", msg)
	}
	if err := Internal(PhaseReconstruct, "block %d revisited", 3); err.Detail != "block 3 revisited" {
		t.Errorf("Internal detail = %q", err.Detail)
	}
}
