package domain

import (
	"fmt"
	"time"
)

// AttemptResult is the outcome of a boulder attempt. The zero value means the
// attempt has not been logged yet.
type AttemptResult string

const (
	ResultNone  AttemptResult = ""
	ResultFlash AttemptResult = "flash" // Sent first try
	ResultDone  AttemptResult = "done"  // Sent eventually
	ResultFail  AttemptResult = "fail"
)

// ValidAttemptResults returns the loggable results.
func ValidAttemptResults() []AttemptResult {
	return []AttemptResult{ResultFlash, ResultDone, ResultFail}
}

// IsValid returns true if r is a loggable result (not ResultNone).
func (r AttemptResult) IsValid() bool {
	for _, valid := range ValidAttemptResults() {
		if r == valid {
			return true
		}
	}
	return false
}

// BoulderAttempt is one boulder of a volume session.
// Result and Timestamp are either both set or both absent.
type BoulderAttempt struct {
	ID        string
	Order     int // 1-indexed, fixed at creation
	Result    AttemptResult
	Comment   string
	Timestamp *time.Time
}

// IsLogged reports whether a result has been recorded.
func (a BoulderAttempt) IsLogged() bool {
	return a.Result != ResultNone
}

// Log records result on the attempt, replacing whatever was logged before.
func (a *BoulderAttempt) Log(result AttemptResult, comment string, at time.Time) {
	a.Result = result
	a.Comment = comment
	a.Timestamp = &at
}

func (a BoulderAttempt) validate() error {
	if a.ID == "" {
		return invalid("attempt missing id")
	}
	if a.Result != ResultNone && !a.Result.IsValid() {
		return invalid(fmt.Sprintf("attempt %s has unknown result %q", a.ID, a.Result))
	}
	if a.IsLogged() != (a.Timestamp != nil) {
		return invalid(fmt.Sprintf("attempt %s: result and timestamp must be set together", a.ID))
	}
	return nil
}
