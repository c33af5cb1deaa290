package domain

import (
	"errors"
	"fmt"
	"time"
)

// SessionType discriminates the two session variants.
type SessionType string

const (
	SessionVolume   SessionType = "volume"   // Bouldering attempts at a target level
	SessionTraining SessionType = "training" // Strength sets with timed rest
)

// ValidSessionTypes returns all known session types.
func ValidSessionTypes() []SessionType {
	return []SessionType{SessionVolume, SessionTraining}
}

// IsValid returns true if the type is a known value.
func (t SessionType) IsValid() bool {
	for _, valid := range ValidSessionTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// ErrInvalidSession is wrapped by every error returned from Session.Validate.
var ErrInvalidSession = errors.New("invalid session")

// Session is one climbing session. It is a tagged union: Type selects which of
// Volume or Training carries the variant data, and exactly that one is non-nil.
type Session struct {
	ID         string      // Generated at creation, never changes
	Type       SessionType // Discriminant
	Date       time.Time   // Creation time, used for sorting and time decay
	StartTime  time.Time
	EndTime    *time.Time // Set only once the session is finished
	IsFinished bool

	// --- Volume-specific ---
	Volume *VolumeDetails

	// --- Training-specific ---
	Training *TrainingData
}

// VolumeDetails holds the attempts of a volume session.
// len(Attempts) == BoulderCount for the whole life of the session.
type VolumeDetails struct {
	TargetLevel  int
	BoulderCount int
	Attempts     []BoulderAttempt
}

// IsActive reports whether the session can still be mutated.
func (s *Session) IsActive() bool {
	return !s.IsFinished
}

// IsVolume reports whether s is a volume session.
func (s *Session) IsVolume() bool {
	return s.Type == SessionVolume
}

// IsTraining reports whether s is a training session.
func (s *Session) IsTraining() bool {
	return s.Type == SessionTraining
}

// Validate checks the structural invariants of a session.
func (s *Session) Validate() error {
	if s.ID == "" {
		return invalid("missing id")
	}
	if (s.EndTime != nil) != s.IsFinished {
		return invalid("endTime must be set if and only if the session is finished")
	}

	switch s.Type {
	case SessionVolume:
		if s.Volume == nil || s.Training != nil {
			return invalid("volume session must carry volume data only")
		}
		return s.Volume.validate()
	case SessionTraining:
		if s.Training == nil || s.Volume != nil {
			return invalid("training session must carry training data only")
		}
		return s.Training.validate()
	default:
		return invalid(fmt.Sprintf("unknown session type %q", s.Type))
	}
}

func (v *VolumeDetails) validate() error {
	if v.TargetLevel < 1 {
		return invalid("targetLevel must be at least 1")
	}
	if v.BoulderCount < 0 {
		return invalid("boulderCount must not be negative")
	}
	if len(v.Attempts) != v.BoulderCount {
		return invalid(fmt.Sprintf("expected %d attempts, got %d", v.BoulderCount, len(v.Attempts)))
	}
	seen := make(map[int]bool, len(v.Attempts))
	for _, a := range v.Attempts {
		if a.Order < 1 || a.Order > v.BoulderCount || seen[a.Order] {
			return invalid(fmt.Sprintf("attempt %s has invalid order %d", a.ID, a.Order))
		}
		seen[a.Order] = true
		if err := a.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.EndTime = cloneTime(s.EndTime)
	if s.Volume != nil {
		v := *s.Volume
		v.Attempts = make([]BoulderAttempt, len(s.Volume.Attempts))
		for i, a := range s.Volume.Attempts {
			a.Timestamp = cloneTime(a.Timestamp)
			v.Attempts[i] = a
		}
		out.Volume = &v
	}
	if s.Training != nil {
		t := *s.Training
		t.HangSets = cloneSets(s.Training.HangSets)
		t.PullupSets = cloneSets(s.Training.PullupSets)
		t.BenchSets = cloneSets(s.Training.BenchSets)
		t.TrapBarSets = cloneSets(s.Training.TrapBarSets)
		out.Training = &t
	}
	return &out
}

func cloneSets(in []TrainingSet) []TrainingSet {
	if in == nil {
		return nil
	}
	out := make([]TrainingSet, len(in))
	for i, set := range in {
		set.Timestamp = cloneTime(set.Timestamp)
		out[i] = set
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidSession, msg)
}
