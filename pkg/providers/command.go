package providers

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"github.com/ormasoftchile/conveyor/pkg/params"
	"github.com/ormasoftchile/conveyor/pkg/schema"
)

// CommandInvoker treats the opaque action reference as a command line:
// it is shell-split, executed via os/exec with the resolved environment
// exported on top of the process environment, and succeeds on exit 0.
type CommandInvoker struct {
	Broker NodeBroker
}

// Invoke runs the action command. The description carries the failure
// reason (split error, launch error, first stderr line or exit status).
func (c *CommandInvoker) Invoke(ctx context.Context, ref string, node schema.NodeSelector, env params.Environment) ActionResult {
	argv, err := shlex.Split(ref)
	if err != nil {
		return ActionResult{Description: fmt.Sprintf("parse action %q: %v", ref, err)}
	}
	if len(argv) == 0 {
		return ActionResult{Description: "action reference is empty"}
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), env.Strings()...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return ActionResult{Description: fmt.Sprintf("start %q: %v", argv[0], err)}
		}
		desc := firstLine(stderr.String())
		if desc == "" {
			desc = err.Error()
		}
		return ActionResult{Description: desc}
	}

	return ActionResult{OK: true, Description: firstLine(stdout.String())}
}

// firstLine returns the first non-blank line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if !schema.IsBlank(line) {
			return strings.TrimSpace(line)
		}
	}
	return ""
}
