package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/forgeworks/relay/internal/executor"
	"github.com/forgeworks/relay/internal/workspace"
)

// JobRunner executes a single job and reports its outcome.
type JobRunner interface {
	RunJob(ctx context.Context, job Job, branch string) Outcome
}

// CheckoutRunner runs each job inside a fresh checkout of the triggering
// branch. The checkout, the setup commands, and the main command are all
// exclusive to the job; nothing is shared with other jobs.
type CheckoutRunner struct {
	source workspace.Source
	exec   executor.Runner
	log    *zap.Logger
}

// NewCheckoutRunner returns a JobRunner backed by source and exec.
func NewCheckoutRunner(source workspace.Source, exec executor.Runner, log *zap.Logger) *CheckoutRunner {
	return &CheckoutRunner{source: source, exec: exec, log: log}
}

// RunJob implements JobRunner. Setup failure is indistinguishable from job
// failure: both yield a failed outcome for the job.
func (r *CheckoutRunner) RunJob(ctx context.Context, job Job, branch string) Outcome {
	start := time.Now()
	log := r.log.With(zap.String("job", job.Name), zap.String("branch", branch))

	ws, err := r.source.Checkout(ctx, branch)
	if err != nil {
		log.Error("checkout failed", zap.Error(err))
		return Outcome{
			Job:      job.Name,
			Status:   StatusFailure,
			ExitCode: -1,
			Duration: time.Since(start),
			Err:      err,
		}
	}
	defer func() {
		if err := ws.Remove(); err != nil {
			log.Warn("workspace cleanup failed", zap.Error(err))
		}
	}()

	for _, cmd := range append(append([]Command{}, job.Setup...), job.Main) {
		result, err := r.exec.Run(ctx, cmd.Program, cmd.Args, executor.WithWorkingDir(ws.Dir))
		if err != nil {
			log.Warn("job command failed",
				zap.String("program", cmd.Program),
				zap.Int("exit_code", result.ExitCode),
			)
			return Outcome{
				Job:      job.Name,
				Status:   StatusFailure,
				ExitCode: result.ExitCode,
				Duration: time.Since(start),
				Err:      err,
			}
		}
	}

	log.Info("job succeeded", zap.Duration("duration", time.Since(start)))
	return Outcome{
		Job:      job.Name,
		Status:   StatusSuccess,
		Duration: time.Since(start),
	}
}
