package domain

import (
	"fmt"
	"time"
)

// AttemptCounts tallies the attempts of a volume session by result.
type AttemptCounts struct {
	Flash    int
	Done     int
	Fail     int
	Unlogged int
}

// Failures counts failed and unlogged attempts together; an attempt nobody
// logged is treated as a failure.
func (c AttemptCounts) Failures() int {
	return c.Fail + c.Unlogged
}

// AttemptCounts returns the attempt tally. It is zero for training sessions.
func (s *Session) AttemptCounts() AttemptCounts {
	var c AttemptCounts
	if s.Volume == nil {
		return c
	}
	for _, a := range s.Volume.Attempts {
		switch a.Result {
		case ResultFlash:
			c.Flash++
		case ResultDone:
			c.Done++
		case ResultFail:
			c.Fail++
		default:
			c.Unlogged++
		}
	}
	return c
}

// FailRate returns the percentage (0-100) of attempts counted as failures.
// A session with no boulders has a fail rate of 0.
func (s *Session) FailRate() float64 {
	if s.Volume == nil || s.Volume.BoulderCount == 0 {
		return 0
	}
	return float64(s.AttemptCounts().Failures()) / float64(s.Volume.BoulderCount) * 100
}

// SetCounts tallies the sets of a training session.
type SetCounts struct {
	Completed int
	Total     int
}

// SetCounts returns completed/total sets across all exercises.
func (s *Session) SetCounts() SetCounts {
	var c SetCounts
	if s.Training == nil {
		return c
	}
	for _, e := range Exercises() {
		ec := s.ExerciseSetCounts(e)
		c.Completed += ec.Completed
		c.Total += ec.Total
	}
	return c
}

// ExerciseSetCounts returns completed/total sets for one exercise.
func (s *Session) ExerciseSetCounts(e Exercise) SetCounts {
	var c SetCounts
	if s.Training == nil {
		return c
	}
	for _, set := range s.Training.Sets(e) {
		c.Total++
		if set.Completed {
			c.Completed++
		}
	}
	return c
}

// DurationInProgress is the display string for a session still running.
const DurationInProgress = "in progress"

// Duration returns how long a finished session lasted. ok is false while the
// session is active.
func (s *Session) Duration() (d time.Duration, ok bool) {
	if !s.IsFinished || s.EndTime == nil {
		return 0, false
	}
	d = s.EndTime.Sub(s.StartTime)
	if d < 0 {
		d = 0
	}
	return d, true
}

// FormattedDuration renders the duration as "1h 5m", "42m" or "in progress".
func (s *Session) FormattedDuration() string {
	d, ok := s.Duration()
	if !ok {
		return DurationInProgress
	}
	return FormatDuration(d)
}

// FormatDuration renders d as "{h}h {m}m", or "{m}m" under one hour.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalMinutes := int64(d / time.Minute)
	hours := totalMinutes / 60
	minutes := totalMinutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
