package domain

// Status tracks the lifecycle of the timer engine.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusFinished
)

// String returns a human-readable status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON payloads.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// EngineState is the mutable countdown state. All values are whole seconds.
type EngineState struct {
	Status           Status
	CurrentStepIndex int
	RemainingSec     int
	ElapsedInStepSec int
	TotalElapsedSec  int
}

// Snapshot is the observable engine state handed to presentation layers.
type Snapshot struct {
	Status           Status  `json:"status"`
	CurrentStepIndex int     `json:"currentStepIndex"`
	StepCount        int     `json:"stepCount"`
	CurrentStep      *Step   `json:"currentStep,omitempty"`
	NextStep         *Step   `json:"nextStep,omitempty"`
	RemainingSec     int     `json:"remainingSec"`
	ElapsedInStepSec int     `json:"elapsedInStepSec"`
	TotalElapsedSec  int     `json:"totalElapsedSec"`
	TotalSec         int     `json:"totalSec"`
	ProgressInStep   float64 `json:"progressInStep"`
	ProgramProgress  float64 `json:"programProgress"`
}

// TransitionKind classifies an engine state change.
type TransitionKind int

const (
	TransitionStarted TransitionKind = iota
	TransitionPaused
	TransitionResumed
	// TransitionAdvanced is a forward step change driven by Tick.
	TransitionAdvanced
	// TransitionNavigated is a manual jump (next, prev, skip).
	TransitionNavigated
	TransitionFinished
	TransitionReset
	TransitionEdited
)

// String returns a human-readable transition kind.
func (k TransitionKind) String() string {
	switch k {
	case TransitionStarted:
		return "started"
	case TransitionPaused:
		return "paused"
	case TransitionResumed:
		return "resumed"
	case TransitionAdvanced:
		return "advanced"
	case TransitionNavigated:
		return "navigated"
	case TransitionFinished:
		return "finished"
	case TransitionReset:
		return "reset"
	case TransitionEdited:
		return "edited"
	default:
		return "unknown"
	}
}

// Transition is emitted by the engine after every state change.
type Transition struct {
	Kind       TransitionKind
	PrevStatus Status
	Status     Status
	FromIndex  int
	ToIndex    int
	// Step is the step active after the transition. For TransitionFinished
	// it is the step that just expired.
	Step Step
	// HadNext reports whether a following step existed before the change.
	HadNext bool
}
