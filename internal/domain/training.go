package domain

import (
	"fmt"
	"time"
)

// Exercise identifies one of the four training exercises.
type Exercise string

const (
	ExerciseHang    Exercise = "hang"
	ExercisePullup  Exercise = "pullup"
	ExerciseBench   Exercise = "bench"
	ExerciseTrapBar Exercise = "trapbar"
)

// SetsPerExercise is the fixed number of sets per exercise in a session.
const SetsPerExercise = 5

// Default weights in kg. Zero means bodyweight only.
const (
	DefaultHangWeight    = 0.0
	DefaultPullupWeight  = 0.0
	DefaultBenchWeight   = 10.0
	DefaultTrapBarWeight = 20.0
)

// Exercises returns all exercises in session order.
func Exercises() []Exercise {
	return []Exercise{ExerciseHang, ExercisePullup, ExerciseBench, ExerciseTrapBar}
}

// IsValid returns true if e is a known exercise.
func (e Exercise) IsValid() bool {
	for _, valid := range Exercises() {
		if e == valid {
			return true
		}
	}
	return false
}

// DisplayName returns the human-readable exercise name.
func (e Exercise) DisplayName() string {
	switch e {
	case ExerciseHang:
		return "Hang"
	case ExercisePullup:
		return "Pullup"
	case ExerciseBench:
		return "Bench"
	case ExerciseTrapBar:
		return "TrapBar"
	default:
		return string(e)
	}
}

// DefaultWeight returns the starting weight for e.
func DefaultWeight(e Exercise) float64 {
	switch e {
	case ExerciseBench:
		return DefaultBenchWeight
	case ExerciseTrapBar:
		return DefaultTrapBarWeight
	case ExercisePullup:
		return DefaultPullupWeight
	default:
		return DefaultHangWeight
	}
}

// TrainingSet is one set of one exercise.
// Completed is true if and only if Timestamp is set.
type TrainingSet struct {
	ID        string
	Order     int // 1..SetsPerExercise within its exercise
	Exercise  Exercise
	Completed bool
	Timestamp *time.Time
	Notes     string
}

// Complete marks the set done at the given time.
func (s *TrainingSet) Complete(at time.Time) {
	s.Completed = true
	s.Timestamp = &at
}

// Reset marks the set not done.
func (s *TrainingSet) Reset() {
	s.Completed = false
	s.Timestamp = nil
}

// TrainingData holds the weights and sets of a training session. Bench and
// TrapBar sets may be nil for sessions recorded before those exercises
// existed; readers treat nil as empty.
type TrainingData struct {
	HangWeight    float64
	PullupWeight  float64
	BenchWeight   float64
	TrapBarWeight float64

	HangSets    []TrainingSet
	PullupSets  []TrainingSet
	BenchSets   []TrainingSet
	TrapBarSets []TrainingSet
}

// Weights is a per-exercise weight selection, used for starting sessions and
// for recommendations.
type Weights struct {
	Hang    float64
	Pullup  float64
	Bench   float64
	TrapBar float64
}

// DefaultWeights returns the starting weights for a first session.
func DefaultWeights() Weights {
	return Weights{
		Hang:    DefaultHangWeight,
		Pullup:  DefaultPullupWeight,
		Bench:   DefaultBenchWeight,
		TrapBar: DefaultTrapBarWeight,
	}
}

// Of returns the weight for e.
func (w Weights) Of(e Exercise) float64 {
	switch e {
	case ExerciseHang:
		return w.Hang
	case ExercisePullup:
		return w.Pullup
	case ExerciseBench:
		return w.Bench
	case ExerciseTrapBar:
		return w.TrapBar
	}
	return 0
}

// Sets returns the sets recorded for e.
func (d *TrainingData) Sets(e Exercise) []TrainingSet {
	if ref := d.setsRef(e); ref != nil {
		return *ref
	}
	return nil
}

// Weight returns the weight used for e.
func (d *TrainingData) Weight(e Exercise) float64 {
	switch e {
	case ExerciseHang:
		return d.HangWeight
	case ExercisePullup:
		return d.PullupWeight
	case ExerciseBench:
		return d.BenchWeight
	case ExerciseTrapBar:
		return d.TrapBarWeight
	}
	return 0
}

// Weights returns all four weights.
func (d *TrainingData) Weights() Weights {
	return Weights{
		Hang:    d.HangWeight,
		Pullup:  d.PullupWeight,
		Bench:   d.BenchWeight,
		TrapBar: d.TrapBarWeight,
	}
}

// FindSet returns a pointer to the set with the given id, so callers can
// mutate it in place.
func (d *TrainingData) FindSet(id string) (*TrainingSet, bool) {
	for _, e := range Exercises() {
		ref := d.setsRef(e)
		for i := range *ref {
			if (*ref)[i].ID == id {
				return &(*ref)[i], true
			}
		}
	}
	return nil, false
}

// NextIncompleteSet returns the first incomplete set of e in order.
func (d *TrainingData) NextIncompleteSet(e Exercise) (*TrainingSet, bool) {
	ref := d.setsRef(e)
	if ref == nil {
		return nil, false
	}
	for i := range *ref {
		if !(*ref)[i].Completed {
			return &(*ref)[i], true
		}
	}
	return nil, false
}

// IsExerciseComplete reports whether e has at least one set and all of its
// sets are completed.
func (d *TrainingData) IsExerciseComplete(e Exercise) bool {
	sets := d.Sets(e)
	if len(sets) == 0 {
		return false
	}
	for _, s := range sets {
		if !s.Completed {
			return false
		}
	}
	return true
}

func (d *TrainingData) setsRef(e Exercise) *[]TrainingSet {
	switch e {
	case ExerciseHang:
		return &d.HangSets
	case ExercisePullup:
		return &d.PullupSets
	case ExerciseBench:
		return &d.BenchSets
	case ExerciseTrapBar:
		return &d.TrapBarSets
	}
	return nil
}

func (d *TrainingData) validate() error {
	for _, e := range Exercises() {
		if d.Weight(e) < 0 {
			return invalid(fmt.Sprintf("%s weight must not be negative", e))
		}
		sets := d.Sets(e)
		if len(sets) > SetsPerExercise {
			return invalid(fmt.Sprintf("%s has %d sets, at most %d allowed", e, len(sets), SetsPerExercise))
		}
		seen := make(map[int]bool, len(sets))
		for _, s := range sets {
			if s.ID == "" {
				return invalid(fmt.Sprintf("%s set missing id", e))
			}
			if s.Exercise != e {
				return invalid(fmt.Sprintf("set %s listed under %s but is %s", s.ID, e, s.Exercise))
			}
			if s.Order < 1 || s.Order > SetsPerExercise || seen[s.Order] {
				return invalid(fmt.Sprintf("set %s has invalid order %d", s.ID, s.Order))
			}
			seen[s.Order] = true
			if s.Completed != (s.Timestamp != nil) {
				return invalid(fmt.Sprintf("set %s: completed and timestamp must be set together", s.ID))
			}
		}
	}
	return nil
}
