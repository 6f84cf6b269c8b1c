// Package pipeline runs the verification job set for a change event. Jobs
// are mutually independent: each runs in parallel against its own checkout,
// and the run's overall status is aggregated from individual outcomes under
// each job's continue-on-error policy.
package pipeline

import (
	"time"

	"github.com/forgeworks/relay/internal/trigger"
)

// Status is the binary outcome of a job or a whole run.
type Status string

const (
	// StatusSuccess indicates the command exited zero.
	StatusSuccess Status = "success"
	// StatusFailure indicates the command (or its setup) exited non-zero
	// or could not be started.
	StatusFailure Status = "failure"
)

// Command is one external collaborator invocation. Relay treats the program
// as a black box and interprets only its exit status.
type Command struct {
	Program string
	Args    []string
}

// Job is a single named verification job. Jobs are defined statically; see
// VerificationJobs.
type Job struct {
	// Name identifies the job in outcomes and notifications.
	Name string

	// Setup commands run in the job's checkout before the main command.
	// A setup failure is recorded as a failure of the job itself.
	Setup []Command

	// Main is the job's command.
	Main Command

	// ContinueOnError marks a job whose failure is recorded but must not
	// fail the overall run.
	ContinueOnError bool
}

// Outcome records how one job finished.
type Outcome struct {
	Job      string
	Status   Status
	ExitCode int
	Duration time.Duration
	// Err carries the failure cause for logs. Nil on success.
	Err error
}

// Failed reports whether the job failed.
func (o Outcome) Failed() bool {
	return o.Status == StatusFailure
}

// Run is a completed verification run: the triggering event, every job's
// outcome in declaration order, and the aggregated status.
type Run struct {
	Event    trigger.Event
	Outcomes []Outcome
	Status   Status
}

// Failed reports whether the run failed overall.
func (r *Run) Failed() bool {
	return r.Status == StatusFailure
}

// FirstBlockingFailure returns the first failed job, in declaration order,
// whose policy is blocking. Ok is false when the run succeeded.
func (r *Run) FirstBlockingFailure(jobs []Job) (string, bool) {
	blocking := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		blocking[j.Name] = !j.ContinueOnError
	}
	for _, o := range r.Outcomes {
		if o.Failed() && blocking[o.Job] {
			return o.Job, true
		}
	}
	return "", false
}

// VerificationJobs is the static job set run for every verification trigger.
// The security audit is advisory: its failure is recorded but never fails
// the run.
func VerificationJobs() []Job {
	return []Job{
		{
			Name: "format",
			Main: Command{Program: "format-check"},
		},
		{
			Name: "lint",
			Main: Command{Program: "lint"},
		},
		{
			Name:            "audit",
			Main:            Command{Program: "security-audit"},
			ContinueOnError: true,
		},
		{
			Name: "test",
			Setup: []Command{
				{Program: "install-tool", Args: []string{"xmllint"}},
			},
			Main: Command{Program: "test"},
		},
	}
}
