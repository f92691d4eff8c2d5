package providers

import (
	"context"
	"fmt"

	"github.com/ormasoftchile/conveyor/pkg/params"
	"github.com/ormasoftchile/conveyor/pkg/schema"
)

// DryRunInvoker reports success without performing any work, so a dry
// run can traverse the full stage tree and produce a status report as
// if executed.
type DryRunInvoker struct{}

func (DryRunInvoker) Invoke(ctx context.Context, ref string, node schema.NodeSelector, env params.Environment) ActionResult {
	return ActionResult{OK: true, Description: fmt.Sprintf("would execute %q", ref)}
}
