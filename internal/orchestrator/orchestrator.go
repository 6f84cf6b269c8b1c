// Package orchestrator wires trigger evaluation, verification, delivery, and
// alerting into the single entry point the relay binary calls.
package orchestrator

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/forgeworks/relay/internal/pipeline"
	"github.com/forgeworks/relay/internal/publish"
	"github.com/forgeworks/relay/internal/trigger"
)

// ErrRunFailed indicates at least one scheduled pipeline failed. The binary
// maps it to a non-zero exit so the invoking platform reports the failure
// even when no alert fires.
var ErrRunFailed = errors.New("pipeline run failed")

// Verifier runs the verification job set.
type Verifier interface {
	Jobs() []pipeline.Job
	Execute(ctx context.Context, ev trigger.Event) *pipeline.Run
}

// Publisher runs the delivery pipeline.
type Publisher interface {
	Run(ctx context.Context, tagRelease bool) (*publish.Artifact, error)
}

// Notifier dispatches a branch-gated failure alert.
type Notifier interface {
	Dispatch(ctx context.Context, ev trigger.Event, failed string) bool
}

// Orchestrator drives one event through every pipeline it schedules.
type Orchestrator struct {
	eval      *trigger.Evaluator
	verifier  Verifier
	publisher Publisher
	notifier  Notifier
	log       *zap.Logger
}

// New returns an orchestrator.
func New(eval *trigger.Evaluator, verifier Verifier, publisher Publisher, notifier Notifier, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		eval:      eval,
		verifier:  verifier,
		publisher: publisher,
		notifier:  notifier,
		log:       log,
	}
}

// Run evaluates the event and executes the scheduled pipelines. Verification
// and delivery are independent: a verification failure does not cancel
// delivery, and each failed pipeline produces at most one alert. Returns
// ErrRunFailed when any scheduled pipeline failed.
func (o *Orchestrator) Run(ctx context.Context, ev trigger.Event) error {
	plan := o.eval.Evaluate(ev)
	log := o.log.With(
		zap.String("event", string(ev.Kind)),
		zap.String("branch", ev.Branch),
	)

	if plan.None() {
		log.Info("event scheduled no pipelines")
		return nil
	}

	failed := false

	if plan.Verify {
		run := o.verifier.Execute(ctx, ev)
		if run.Failed() {
			failed = true
			name, ok := run.FirstBlockingFailure(o.verifier.Jobs())
			if !ok {
				// Unreachable for a failed run, but never alert blind.
				name = "test"
			}
			log.Error("verification failed", zap.String("job", name))
			o.notifier.Dispatch(ctx, ev, name)
		}
	}

	if plan.Publish {
		if _, err := o.publisher.Run(ctx, plan.TagRelease); err != nil {
			failed = true
			log.Error("publish failed", zap.Error(err))
			o.notifier.Dispatch(ctx, ev, "publish")
		}
	}

	if failed {
		return ErrRunFailed
	}
	log.Info("all scheduled pipelines succeeded")
	return nil
}
