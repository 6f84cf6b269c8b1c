// Package trigger maps incoming platform events to the pipelines relay runs.
package trigger

// Kind identifies the type of an incoming event.
type Kind string

// Event kinds recognized by the evaluator. Anything else runs nothing.
const (
	KindPush        Kind = "push"
	KindPullRequest Kind = "pull_request"
	KindRelease     Kind = "release"
)

// ActionPublished is the release action that enables version tagging.
const ActionPublished = "published"

// Event is a single change event from the invoking CI platform. Constructed
// once per invocation and never mutated.
type Event struct {
	Kind   Kind
	Branch string
	// Action qualifies release events (e.g. "published"). Empty otherwise.
	Action string
}

// Plan is the set of pipelines an event schedules.
type Plan struct {
	// Verify schedules the parallel verification job set.
	Verify bool
	// Publish schedules the sequential publish pipeline.
	Publish bool
	// TagRelease enables the version tagging step of the publish pipeline.
	// Only ever true when Publish is true.
	TagRelease bool
}

// None reports whether the plan schedules nothing.
func (p Plan) None() bool {
	return !p.Verify && !p.Publish
}

// Evaluator decides which pipelines run for an event.
type Evaluator struct {
	protectedBranch string
}

// NewEvaluator returns an evaluator gated on the given protected branch.
func NewEvaluator(protectedBranch string) *Evaluator {
	return &Evaluator{protectedBranch: protectedBranch}
}

// ProtectedBranch returns the branch whose pushes trigger delivery.
func (e *Evaluator) ProtectedBranch() string {
	return e.protectedBranch
}

// OnProtectedBranch reports whether the event targets the protected branch.
func (e *Evaluator) OnProtectedBranch(ev Event) bool {
	return ev.Branch == e.protectedBranch
}

// Evaluate applies the trigger decision table. Unrecognized events, and
// pushes to branches other than the protected one, schedule nothing: the
// evaluator fails closed.
func (e *Evaluator) Evaluate(ev Event) Plan {
	switch ev.Kind {
	case KindPush:
		if ev.Branch != e.protectedBranch {
			return Plan{}
		}
		return Plan{Verify: true, Publish: true}
	case KindPullRequest:
		return Plan{Verify: true}
	case KindRelease:
		if ev.Action != ActionPublished {
			return Plan{}
		}
		return Plan{Publish: true, TagRelease: true}
	default:
		return Plan{}
	}
}
