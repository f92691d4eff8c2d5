// Package providers holds the opaque collaborators the engine consumes:
// the action invoker that performs real domain work, the parameter
// store, the configuration loader and the node broker.
package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ormasoftchile/conveyor/pkg/params"
	"github.com/ormasoftchile/conveyor/pkg/schema"
	"gopkg.in/yaml.v3"
)

// ActionResult is the outcome the invoker reports for one action.
type ActionResult struct {
	OK          bool
	Description string
	Link        string // informational link to logs or host output, may be empty
}

// ActionInvoker performs the real work behind an opaque action
// reference. The engine treats it as a black box: success or failure
// plus a description. Timeouts, if any, are the invoker's concern.
type ActionInvoker interface {
	Invoke(ctx context.Context, ref string, node schema.NodeSelector, env params.Environment) ActionResult
}

// NodeBroker acquires an execution host matching a selector. Label
// selection, name selection and "any host" semantics live behind this
// boundary.
type NodeBroker interface {
	Acquire(sel schema.NodeSelector) (string, error)
}

// LocalBroker satisfies every selector with the local host.
type LocalBroker struct{}

func (LocalBroker) Acquire(sel schema.NodeSelector) (string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "local", nil
	}
	return host, nil
}

// ConfigLoader retrieves and parses a pipeline document by locator.
// Loader failure is a fatal, unrecoverable input error.
type ConfigLoader interface {
	Load(locator string) (*schema.Document, error)
}

// FileLoader loads pipeline documents from the local filesystem.
type FileLoader struct{}

func (FileLoader) Load(locator string) (*schema.Document, error) {
	return schema.LoadFile(locator)
}

// FileStore persists the active parameter set as a YAML file. It is the
// local stand-in for a host parameter store: Reconcile writes defaults
// here, and subsequent runs read them back as the active set.
type FileStore struct {
	Path string
}

// Apply writes the parameter set, creating parent directories.
func (s *FileStore) Apply(parameters []*schema.Parameter) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return fmt.Errorf("create parameter store dir: %w", err)
	}
	data, err := yaml.Marshal(parameters)
	if err != nil {
		return fmt.Errorf("marshal parameter set: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0644); err != nil {
		return fmt.Errorf("write parameter store: %w", err)
	}
	return nil
}

// Active loads the stored parameter set as an environment of current
// values. A missing store file yields an empty environment.
func (s *FileStore) Active() (params.Environment, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return params.Environment{}, nil
		}
		return nil, fmt.Errorf("read parameter store: %w", err)
	}
	var stored []*schema.Parameter
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("parse parameter store: %w", err)
	}
	env := make(params.Environment, len(stored))
	for _, p := range stored {
		switch p.Kind {
		case schema.KindBoolean:
			env[p.Name] = fmt.Sprintf("%t", p.DefaultBool)
		case schema.KindChoice:
			if len(p.Choices) > 0 {
				env[p.Name] = p.Choices[0]
			} else {
				env[p.Name] = ""
			}
		default:
			env[p.Name] = p.Default
		}
	}
	return env, nil
}
