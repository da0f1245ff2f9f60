package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/klarsikt/agentcore/pkg/tool"
)

// Execution names one tool invocation for ExecuteParallel.
type Execution struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ExecuteParallel fans the executions out to ExecuteTool concurrently and
// joins on all of them. Any orchestration-level error cancels the
// remaining executions and fails the whole batch; there are no partial
// results. Tool-level failures resolve into their slot as usual.
func (o *Orchestrator) ExecuteParallel(ctx context.Context, execs []Execution, userID, language string) ([]tool.Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	results := make([]tool.Result, len(execs))

	for i, e := range execs {
		i, e := i, e
		g.Go(func() error {
			res, err := o.ExecuteTool(gctx, e.Tool, e.Params, userID, language)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
