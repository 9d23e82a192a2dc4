// Package session implements the controller for one interview attempt:
// load the interview, buffer answer drafts, page through questions,
// submit once, and hand the resulting report off.
package session

// State is a phase of the session lifecycle.
//
//	Idle -> Loading -> Ready <-> SubmitFailed
//	           |         |           |
//	           v         v           v
//	      LoadFailed  Submitting -> Completed
type State int

const (
	// StateIdle means the controller was built but Load has not been called.
	StateIdle State = iota

	// StateLoading means the interview fetch is in flight.
	StateLoading

	// StateReady means the interview is loaded and answers can be edited.
	StateReady

	// StateSubmitting means the submission is in flight.
	StateSubmitting

	// StateSubmitFailed means the last submission failed. Drafts are intact
	// and editing and resubmission are allowed, exactly as in StateReady.
	StateSubmitFailed

	// StateLoadFailed is absorbing: the interview could not be fetched.
	StateLoadFailed

	// StateCompleted is terminal: the report exists.
	StateCompleted
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateSubmitFailed:
		return "submit_failed"
	case StateLoadFailed:
		return "load_failed"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Editable reports whether drafts and the cursor may change in this state.
func (s State) Editable() bool {
	return s == StateReady || s == StateSubmitFailed
}
