package reservation

// DecisionResult is the outcome of a pure Decide function.
//
// Build it only through IdempotentDecision, SuccessDecision or RejectedDecision.
type DecisionResult struct {
	Outcome     string      // "idempotent", "success", or "rejected"
	Reservation Reservation // the state to persist on success, the unchanged state when idempotent
	Err         error       // a *Rejection when rejected
}

const (
	idempotentOutcome = "idempotent"
	successOutcome    = "success"
	rejectedOutcome   = "rejected"
)

// IdempotentDecision reports that the command asks for the state r already has.
func IdempotentDecision(r Reservation) DecisionResult {
	return DecisionResult{
		Outcome:     idempotentOutcome,
		Reservation: r,
	}
}

// SuccessDecision reports that r must be written.
func SuccessDecision(r Reservation) DecisionResult {
	return DecisionResult{
		Outcome:     successOutcome,
		Reservation: r,
	}
}

// RejectedDecision reports a refusal. err should be built with Reject.
func RejectedDecision(err error) DecisionResult {
	return DecisionResult{
		Outcome: rejectedOutcome,
		Err:     err,
	}
}

// HasChangeToWrite returns true if the decision must be persisted.
func (r DecisionResult) HasChangeToWrite() bool {
	return r.Outcome == successOutcome
}

// IsIdempotent returns true if nothing needs to change.
func (r DecisionResult) IsIdempotent() bool {
	return r.Outcome == idempotentOutcome
}

// HasError returns the rejection if there is one, otherwise nil.
func (r DecisionResult) HasError() error {
	if r.Outcome == rejectedOutcome {
		return r.Err
	}

	return nil
}
