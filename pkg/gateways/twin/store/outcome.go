package store

// OutcomeKind classifies the registry response to an update.
type OutcomeKind int

const (
	// Applied means the registry accepted the operation.
	Applied OutcomeKind = iota
	// NotFound means the twin does not exist yet.
	NotFound
	// UninitializedField means the twin exists but has no lastKnownValue
	// record to replace into.
	UninitializedField
	// Failed covers every other registry error.
	Failed
)

// Outcome is the registry response as an explicit variant, so callers
// branch on the kind instead of inspecting transport errors.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

func AppliedOutcome() Outcome {
	return Outcome{Kind: Applied}
}

func NotFoundOutcome() Outcome {
	return Outcome{Kind: NotFound}
}

func UninitializedFieldOutcome() Outcome {
	return Outcome{Kind: UninitializedField}
}

func FailedOutcome(err error) Outcome {
	return Outcome{Kind: Failed, Err: err}
}
