package params

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/ormasoftchile/conveyor/pkg/schema"
)

type fakeStore struct {
	applied [][]*schema.Parameter
	err     error
}

func (f *fakeStore) Apply(parameters []*schema.Parameter) error {
	f.applied = append(f.applied, parameters)
	return f.err
}

func TestReconcileAllPresent(t *testing.T) {
	store := &fakeStore{}
	rec := &Reconciler{Store: store, Log: hclog.NewNullLogger()}
	decls := []schema.ParamDecl{decl(schema.Mapping{"name": "region", "kind": "string"})}

	updateRequired, allValid, err := rec.Reconcile(decls, Environment{"region": "westus"}, false)
	if err != nil || updateRequired || !allValid {
		t.Errorf("got update=%t valid=%t err=%v", updateRequired, allValid, err)
	}
	if len(store.applied) != 0 {
		t.Error("store must not be touched when nothing is missing")
	}
}

// TestReconcileMissingInjects checks the inject-and-halt path.
func TestReconcileMissingInjects(t *testing.T) {
	store := &fakeStore{}
	rec := &Reconciler{Store: store, Log: hclog.NewNullLogger()}
	decls := []schema.ParamDecl{
		decl(schema.Mapping{"name": "region", "kind": "string", "default": "westus"}),
		decl(schema.Mapping{"name": "dry", "kind": "boolean", "default": false}),
	}

	updateRequired, _, err := rec.Reconcile(decls, Environment{"region": "westus"}, false)
	if !updateRequired {
		t.Fatal("missing parameter must require an update")
	}
	if !errors.Is(err, ErrUpdateRequired) {
		t.Fatalf("expected ErrUpdateRequired, got %v", err)
	}
	if len(store.applied) != 1 || len(store.applied[0]) != 2 {
		t.Errorf("store should receive the full rebuilt set, got %v", store.applied)
	}
}

// TestReconcileDryRunSuppresses checks dry run reports without writing.
func TestReconcileDryRunSuppresses(t *testing.T) {
	store := &fakeStore{}
	rec := &Reconciler{Store: store, Log: hclog.NewNullLogger()}
	decls := []schema.ParamDecl{decl(schema.Mapping{"name": "region", "kind": "string"})}

	updateRequired, _, err := rec.Reconcile(decls, Environment{}, true)
	if !updateRequired || err != nil {
		t.Errorf("got update=%t err=%v, want update with nil error", updateRequired, err)
	}
	if len(store.applied) != 0 {
		t.Error("dry run must not write the store")
	}
}

// TestReconcileSkipsUnresolvable checks that an undecidable declaration
// is skipped, never counted as missing, and lowers allValid.
func TestReconcileSkipsUnresolvable(t *testing.T) {
	store := &fakeStore{}
	rec := &Reconciler{Store: store, Log: hclog.NewNullLogger()}
	decls := []schema.ParamDecl{
		decl(schema.Mapping{"name": "bad-name", "kind": "string"}),
		decl(schema.Mapping{"name": "nokind"}),
	}

	updateRequired, allValid, err := rec.Reconcile(decls, Environment{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updateRequired {
		t.Error("skipped declarations must not trigger an update")
	}
	if allValid {
		t.Error("skipped declarations must lower allValid")
	}
}

func TestReconcileStoreFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	rec := &Reconciler{Store: store, Log: hclog.NewNullLogger()}
	decls := []schema.ParamDecl{decl(schema.Mapping{"name": "region", "kind": "string"})}

	_, _, err := rec.Reconcile(decls, Environment{}, false)
	if err == nil || errors.Is(err, ErrUpdateRequired) {
		t.Errorf("store failure must surface as a real error, got %v", err)
	}
}
