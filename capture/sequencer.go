package capture

// Step defines a public type used by avfacePay APIs.
//
// Step is one required head pose in an enrollment or verification sequence.
// Completed flags are monotonic within a session: they only revert through a
// full sequencer reset.
type Step struct {
	Angle       string
	Instruction string
	Icon        string
	Completed   bool
}

// RegistrationSteps describes the registrationsteps operation and its observable behavior.
//
// RegistrationSteps returns the five-pose enrollment sequence.
func RegistrationSteps() []Step {
	return []Step{
		{Angle: "Center", Instruction: "Look straight at the camera", Icon: "pose-center"},
		{Angle: "Left Turn", Instruction: "Turn your head slightly to the left", Icon: "pose-left"},
		{Angle: "Right Turn", Instruction: "Turn your head slightly to the right", Icon: "pose-right"},
		{Angle: "Tilt Up", Instruction: "Tilt your head slightly upward", Icon: "pose-up"},
		{Angle: "Tilt Down", Instruction: "Tilt your head slightly downward", Icon: "pose-down"},
	}
}

// SingleShotSteps describes the singleshotsteps operation and its observable behavior.
//
// SingleShotSteps returns the one-pose sequence used by login, identify, and
// verify modes.
func SingleShotSteps() []Step {
	return []Step{
		{Angle: "Center", Instruction: "Look straight at the camera", Icon: "pose-center"},
	}
}

// Sequencer defines a public type used by avfacePay APIs.
//
// Sequencer walks an ordered list of required pose steps, advancing past
// completed ones and reporting completion once every step has been captured.
type Sequencer struct {
	steps     []Step
	current   int
	completed int
}

// NewSequencer describes the newsequencer operation and its observable behavior.
func NewSequencer(steps []Step) *Sequencer {
	owned := make([]Step, len(steps))
	copy(owned, steps)
	return &Sequencer{steps: owned}
}

// Len describes the len operation and its observable behavior.
func (q *Sequencer) Len() int { return len(q.steps) }

// CompletedCount describes the completedcount operation and its observable behavior.
func (q *Sequencer) CompletedCount() int { return q.completed }

// Current returns the active step, or nil for an empty sequence.
func (q *Sequencer) Current() *Step {
	if len(q.steps) == 0 {
		return nil
	}
	return &q.steps[q.current]
}

// Steps returns a copy of the sequence for progress rendering.
func (q *Sequencer) Steps() []Step {
	out := make([]Step, len(q.steps))
	copy(out, q.steps)
	return out
}

// Advance moves to the first incomplete step and returns it. When every step
// is complete it stays on the last step and reports allComplete.
func (q *Sequencer) Advance() (step *Step, allComplete bool) {
	for i := range q.steps {
		if !q.steps[i].Completed {
			q.current = i
			return &q.steps[i], false
		}
	}
	if len(q.steps) > 0 {
		q.current = len(q.steps) - 1
	}
	return nil, true
}

// MarkCurrentComplete sets the active step's completed flag, bumps the
// completed counter, and immediately advances.
func (q *Sequencer) MarkCurrentComplete() *Step {
	cur := q.Current()
	if cur == nil || cur.Completed {
		return cur
	}
	cur.Completed = true
	q.completed++
	q.Advance()
	return cur
}

// Complete describes the complete operation and its observable behavior.
func (q *Sequencer) Complete() bool {
	return q.completed >= len(q.steps)
}

// Reset clears every completed flag and returns to the first step. This is
// the only path by which a completed flag reverts.
func (q *Sequencer) Reset() {
	for i := range q.steps {
		q.steps[i].Completed = false
	}
	q.current = 0
	q.completed = 0
}
