package flows

import "fmt"

// FailureKind classifies lifecycle failures for root-level mapping.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureNotFound
	FailureRetrieval
	FailureClear
	FailureRefresh
)

func (k FailureKind) String() string {
	switch k {
	case FailureNotFound:
		return "not_found"
	case FailureRetrieval:
		return "retrieval"
	case FailureClear:
		return "clear"
	case FailureRefresh:
		return "refresh"
	default:
		return "none"
	}
}

// Failure is a classified lifecycle error carrying the collaborator's cause.
type Failure struct {
	Kind      FailureKind
	SessionID string
	Err       error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("session %q: %s", f.SessionID, f.Kind)
	}
	return fmt.Sprintf("session %q: %s: %v", f.SessionID, f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func notFound(sessionID string) *Failure {
	return &Failure{Kind: FailureNotFound, SessionID: sessionID}
}
