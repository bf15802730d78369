package acquire

import "time"

// Stage is where the pipeline currently is. Stages advance strictly forward
// within an attempt; SolvingChallenge is a conditional interstitial entered
// only when a challenge is detected, after navigation and after selection.
type Stage int

const (
	StageIdle Stage = iota
	StageAuthenticating
	StageSelectingInventory
	StageSolvingChallenge
	StagePaying
	StageVerifyingConfirmation
	StageSucceeded
	StageFailed
)

var stageNames = map[Stage]string{
	StageIdle:                  "idle",
	StageAuthenticating:        "authenticating",
	StageSelectingInventory:    "selecting_inventory",
	StageSolvingChallenge:      "solving_challenge",
	StagePaying:                "paying",
	StageVerifyingConfirmation: "verifying_confirmation",
	StageSucceeded:             "succeeded",
	StageFailed:                "failed",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

// Outcome is the terminal state of an attempt or a whole acquisition.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSuccess
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Attempt is one run through the pipeline. Ephemeral: it exists only while
// the orchestrator holds it and is summarized into the target record and the
// acquisition result at the end.
type Attempt struct {
	TargetID      string
	Number        int
	Stage         Stage
	StartedAt     time.Time
	Outcome       Outcome
	FailureReason string
	// Artifacts is the ordered diagnostic trail, one capture per stage
	// entry and exit.
	Artifacts []string
}
