package schema

import "testing"

// TestImpliedKind covers the two structural inferences.
func TestImpliedKind(t *testing.T) {
	d := ParamDecl{Raw: Mapping{"name": "env", "choices": Sequence{"dev", "prod"}}}
	if kind, key := d.ImpliedKind(); kind != KindChoice || key != "choices" {
		t.Errorf("ImpliedKind = (%s, %s), want (choice, choices)", kind, key)
	}

	d = ParamDecl{Raw: Mapping{"name": "dry", "default": false}}
	if kind, key := d.ImpliedKind(); kind != KindBoolean || key != "default" {
		t.Errorf("ImpliedKind = (%s, %s), want (boolean, default)", kind, key)
	}

	// a string default implies nothing
	d = ParamDecl{Raw: Mapping{"name": "region", "default": "westus"}}
	if kind, _ := d.ImpliedKind(); kind != KindUnset {
		t.Errorf("ImpliedKind = %s, want unset", kind)
	}

	// an empty choices sequence implies nothing
	d = ParamDecl{Raw: Mapping{"name": "env", "choices": Sequence{}}}
	if kind, _ := d.ImpliedKind(); kind != KindUnset {
		t.Errorf("ImpliedKind = %s, want unset", kind)
	}
}

// TestKindUnknownValue checks that an unknown kind string reads as unset.
func TestKindUnknownValue(t *testing.T) {
	d := ParamDecl{Raw: Mapping{"name": "x", "kind": "enum"}}
	if d.Kind() != KindUnset {
		t.Errorf("Kind() = %s, want unset", d.Kind())
	}
}

func TestBuildParameterChoice(t *testing.T) {
	d := ParamDecl{Raw: Mapping{
		"name":        "env",
		"kind":        "choice",
		"choices":     Sequence{"dev", "staging", "prod"},
		"description": "target environment",
	}}
	p, ok := BuildParameter(d)
	if !ok {
		t.Fatal("expected a built parameter")
	}
	if p.Kind != KindChoice || len(p.Choices) != 3 || p.Choices[0] != "dev" {
		t.Errorf("unexpected parameter: %+v", p)
	}
	if p.Description != "target environment" {
		t.Errorf("description = %q", p.Description)
	}
}

func TestBuildParameterBooleanDefault(t *testing.T) {
	d := ParamDecl{Raw: Mapping{"name": "dry", "kind": "boolean", "default": true}}
	p, ok := BuildParameter(d)
	if !ok || p.Kind != KindBoolean || !p.DefaultBool {
		t.Fatalf("unexpected parameter: %+v ok=%t", p, ok)
	}
}

// TestBuildParameterInferredKind checks that the builder accepts a
// declaration with an inferable kind even though the validator flags it.
func TestBuildParameterInferredKind(t *testing.T) {
	d := ParamDecl{Raw: Mapping{"name": "env", "choices": Sequence{"a", "b"}}}
	p, ok := BuildParameter(d)
	if !ok || p.Kind != KindChoice {
		t.Fatalf("unexpected parameter: %+v ok=%t", p, ok)
	}
}

// TestBuildParameterTrimStringOnly checks trim is carried for plain
// strings and dropped for text.
func TestBuildParameterTrimStringOnly(t *testing.T) {
	d := ParamDecl{Raw: Mapping{"name": "a", "kind": "string", "trim": true}}
	p, ok := BuildParameter(d)
	if !ok || !p.Trim {
		t.Fatalf("expected trimmed string parameter, got %+v ok=%t", p, ok)
	}

	d = ParamDecl{Raw: Mapping{"name": "b", "kind": "text", "trim": true}}
	p, ok = BuildParameter(d)
	if !ok || p.Trim {
		t.Fatalf("trim should not apply to text, got %+v ok=%t", p, ok)
	}
}

func TestBuildParameterRejectsUnresolvable(t *testing.T) {
	// invalid name
	if _, ok := BuildParameter(ParamDecl{Raw: Mapping{"name": "bad-name", "kind": "string"}}); ok {
		t.Error("invalid name should not build")
	}
	// no kind, nothing to infer
	if _, ok := BuildParameter(ParamDecl{Raw: Mapping{"name": "x", "default": "s"}}); ok {
		t.Error("unresolvable kind should not build")
	}
	// choice with an empty choices sequence
	if _, ok := BuildParameter(ParamDecl{Raw: Mapping{"name": "x", "kind": "choice", "choices": Sequence{}}}); ok {
		t.Error("empty choices should not build")
	}
}
