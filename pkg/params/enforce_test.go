package params

import (
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/ormasoftchile/conveyor/pkg/schema"
)

func decl(raw schema.Mapping) schema.ParamDecl {
	return schema.ParamDecl{Raw: raw}
}

func TestEnforceRequiredSatisfied(t *testing.T) {
	decls := []schema.ParamDecl{decl(schema.Mapping{
		"name": "region", "kind": "string", "required": true,
	})}
	env := Environment{"region": "westus"}
	ok, errs := EnforceRequired(decls, env, hclog.NewNullLogger())
	if !ok || len(errs) != 0 {
		t.Errorf("set parameter should satisfy, got ok=%t errs=%v", ok, errs)
	}
}

func TestEnforceRequiredMissingFails(t *testing.T) {
	decls := []schema.ParamDecl{decl(schema.Mapping{
		"name": "region", "kind": "string", "required": true,
	})}
	env := Environment{}
	ok, errs := EnforceRequired(decls, env, hclog.NewNullLogger())
	if ok {
		t.Fatal("missing required parameter must fail")
	}
	if !schema.HasErrors(errs) || !strings.Contains(errs[0].Message, "region") {
		t.Errorf("expected error naming the parameter, got: %v", errs)
	}
}

// TestEnforceBlankValueNotSatisfying checks that a whitespace-only
// value does not count as specified.
func TestEnforceBlankValueNotSatisfying(t *testing.T) {
	decls := []schema.ParamDecl{decl(schema.Mapping{
		"name": "region", "kind": "string", "required": true,
	})}
	env := Environment{"region": "   "}
	if ok, _ := EnforceRequired(decls, env, hclog.NewNullLogger()); ok {
		t.Error("blank value must not satisfy a required parameter")
	}
}

// TestEnforceAssignFromVariable checks assignment resolution through a
// $NAME reference, which satisfies regardless of the fail flag.
func TestEnforceAssignFromVariable(t *testing.T) {
	decls := []schema.ParamDecl{decl(schema.Mapping{
		"name": "target", "kind": "string", "required": true,
		"on_empty": schema.Mapping{"assign": "$FALLBACK", "fail": true},
	})}
	env := Environment{"FALLBACK": "backup-host"}
	ok, errs := EnforceRequired(decls, env, hclog.NewNullLogger())
	if !ok || len(errs) != 0 {
		t.Fatalf("assignment should satisfy, got ok=%t errs=%v", ok, errs)
	}
	if env["target"] != "backup-host" {
		t.Errorf("env[target] = %q, want backup-host", env["target"])
	}
}

func TestEnforceAssignLiteral(t *testing.T) {
	decls := []schema.ParamDecl{decl(schema.Mapping{
		"name": "target", "kind": "string", "required": true,
		"on_empty": schema.Mapping{"assign": "default-host"},
	})}
	env := Environment{}
	ok, _ := EnforceRequired(decls, env, hclog.NewNullLogger())
	if !ok || env["target"] != "default-host" {
		t.Errorf("literal assignment failed: ok=%t env=%v", ok, env)
	}
}

// TestEnforceBlankAssignmentFails checks that an assignment resolving
// blank falls through to the fail flag (default true).
func TestEnforceBlankAssignmentFails(t *testing.T) {
	decls := []schema.ParamDecl{decl(schema.Mapping{
		"name": "target", "kind": "string", "required": true,
		"on_empty": schema.Mapping{"assign": "$MISSING"},
	})}
	env := Environment{}
	ok, errs := EnforceRequired(decls, env, hclog.NewNullLogger())
	if ok {
		t.Fatal("blank assignment with default policy must fail")
	}
	if !strings.Contains(errs[len(errs)-1].Message, "blank") {
		t.Errorf("expected blank-assignment message, got: %v", errs)
	}
}

// TestEnforceWarnWithoutFail checks that fail:false warn:true records a
// warning but does not lower the verdict.
func TestEnforceWarnWithoutFail(t *testing.T) {
	decls := []schema.ParamDecl{decl(schema.Mapping{
		"name": "target", "kind": "string", "required": true,
		"on_empty": schema.Mapping{"fail": false, "warn": true},
	})}
	ok, errs := EnforceRequired(decls, Environment{}, hclog.NewNullLogger())
	if !ok {
		t.Fatal("fail:false must not lower the verdict")
	}
	if schema.HasErrors(errs) {
		t.Errorf("expected warnings only, got: %v", errs)
	}
	if len(errs) == 0 || errs[0].Severity != "warning" {
		t.Errorf("expected a warning finding, got: %v", errs)
	}
}

// TestEnforceAggregatesAcrossParameters checks the AND across several
// required declarations.
func TestEnforceAggregatesAcrossParameters(t *testing.T) {
	decls := []schema.ParamDecl{
		decl(schema.Mapping{"name": "a", "kind": "string", "required": true}),
		decl(schema.Mapping{"name": "b", "kind": "string", "required": true}),
		decl(schema.Mapping{"name": "c", "kind": "string"}),
	}
	env := Environment{"a": "set"}
	ok, errs := EnforceRequired(decls, env, hclog.NewNullLogger())
	if ok {
		t.Fatal("one unsatisfied parameter fails the set")
	}
	if len(errs) != 1 || !strings.Contains(errs[0].Message, `"b"`) {
		t.Errorf("expected one error for b, got: %v", errs)
	}
}

// TestEnvironmentClone checks the copy is independent of the original.
func TestEnvironmentClone(t *testing.T) {
	env := Environment{"a": "1", "b": "2"}
	snap := env.Clone()
	env["a"] = "changed"
	env["c"] = "3"
	if snap["a"] != "1" || len(snap) != 2 {
		t.Errorf("clone must not track later mutation, got %v", snap)
	}
}

func TestEnvironmentResolve(t *testing.T) {
	env := Environment{"OTHER": "value"}
	if v, src := env.Resolve("$OTHER"); v != "value" || src != "variable OTHER" {
		t.Errorf("Resolve($OTHER) = (%q, %q)", v, src)
	}
	if v, src := env.Resolve("plain"); v != "plain" || src != "literal" {
		t.Errorf("Resolve(plain) = (%q, %q)", v, src)
	}
}
