package pipeline

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/forgeworks/relay/internal/trigger"
)

// Graph coordinates the verification job set. The jobs have no edges between
// them: all run in parallel and all run to completion regardless of earlier
// failures.
type Graph struct {
	jobs   []Job
	runner JobRunner
	log    *zap.Logger
}

// NewGraph returns a graph over jobs executed by runner.
func NewGraph(jobs []Job, runner JobRunner, log *zap.Logger) *Graph {
	return &Graph{jobs: jobs, runner: runner, log: log}
}

// Jobs returns the static job list in declaration order.
func (g *Graph) Jobs() []Job {
	return g.jobs
}

// Execute runs every job in parallel against the event's branch and
// aggregates the run status: failure iff at least one blocking job failed.
// Advisory (continue-on-error) failures are recorded but never fail the run.
func (g *Graph) Execute(ctx context.Context, ev trigger.Event) *Run {
	outcomes := make([]Outcome, len(g.jobs))

	var wg sync.WaitGroup
	for i, job := range g.jobs {
		wg.Add(1)
		go func(i int, job Job) {
			defer wg.Done()
			outcomes[i] = g.runner.RunJob(ctx, job, ev.Branch)
		}(i, job)
	}
	wg.Wait()

	status := StatusSuccess
	for i, o := range outcomes {
		if o.Failed() && !g.jobs[i].ContinueOnError {
			status = StatusFailure
		}
	}

	g.log.Info("verification run complete",
		zap.String("branch", ev.Branch),
		zap.String("status", string(status)),
	)
	return &Run{Event: ev, Outcomes: outcomes, Status: status}
}
