package schema

import "testing"

func TestAsString(t *testing.T) {
	if s, ok := AsString("hello"); !ok || s != "hello" {
		t.Errorf("AsString(string) = (%q, %t)", s, ok)
	}
	if s, ok := AsString(42); !ok || s != "42" {
		t.Errorf("AsString(int) = (%q, %t)", s, ok)
	}
	if s, ok := AsString(true); !ok || s != "true" {
		t.Errorf("AsString(bool) = (%q, %t)", s, ok)
	}
	if _, ok := AsString(nil); ok {
		t.Error("AsString(nil) should fail")
	}
	if _, ok := AsString(Mapping{}); ok {
		t.Error("AsString(mapping) should fail")
	}
	if _, ok := AsString(Sequence{}); ok {
		t.Error("AsString(sequence) should fail")
	}
}

func TestAsBool(t *testing.T) {
	if b, ok := AsBool(true); !ok || !b {
		t.Errorf("AsBool(true) = (%t, %t)", b, ok)
	}
	if b, ok := AsBool("true"); !ok || !b {
		t.Errorf("AsBool(\"true\") = (%t, %t)", b, ok)
	}
	if _, ok := AsBool("sideways"); ok {
		t.Error("AsBool(non-boolean string) should fail")
	}
	if _, ok := AsBool(nil); ok {
		t.Error("AsBool(nil) should fail")
	}
}

// TestIsBooleanStrict distinguishes an actual bool from a
// boolean-convertible value.
func TestIsBooleanStrict(t *testing.T) {
	if !IsBoolean(false) {
		t.Error("IsBoolean(false) should be true")
	}
	if IsBoolean("true") {
		t.Error("IsBoolean(\"true\") should be false")
	}
	if IsBoolean(1) {
		t.Error("IsBoolean(1) should be false")
	}
}

// TestAsStringSliceTotal checks that one bad item fails the whole slice.
func TestAsStringSliceTotal(t *testing.T) {
	out, ok := AsStringSlice(Sequence{"a", 2, true})
	if !ok {
		t.Fatal("expected convertible slice")
	}
	if len(out) != 3 || out[0] != "a" || out[1] != "2" || out[2] != "true" {
		t.Errorf("unexpected slice: %v", out)
	}
	if _, ok := AsStringSlice(Sequence{"a", Mapping{}}); ok {
		t.Error("slice with mapping item should fail")
	}
	if _, ok := AsStringSlice("not a sequence"); ok {
		t.Error("non-sequence should fail")
	}
}

func TestValidName(t *testing.T) {
	for _, good := range []string{"a", "_x", "NAME_1", "CamelCase"} {
		if !ValidName(good) {
			t.Errorf("ValidName(%q) should be true", good)
		}
	}
	for _, bad := range []string{"", "1a", "has-dash", "has space", "$x"} {
		if ValidName(bad) {
			t.Errorf("ValidName(%q) should be false", bad)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("") || !IsBlank("  \t\n") {
		t.Error("whitespace-only strings are blank")
	}
	if IsBlank(" x ") {
		t.Error("non-empty strings are not blank")
	}
}

func TestTypeName(t *testing.T) {
	cases := map[string]any{
		"null":     nil,
		"boolean":  true,
		"string":   "s",
		"integer":  7,
		"float":    1.5,
		"sequence": Sequence{},
		"mapping":  Mapping{},
	}
	for want, v := range cases {
		if got := TypeName(v); got != want {
			t.Errorf("TypeName(%v) = %q, want %q", v, got, want)
		}
	}
}
