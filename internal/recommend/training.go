package recommend

import (
	"alcyxob/climb-tracker/internal/domain"
	"fmt"
	"strings"
)

// WeightIncrement is added to an exercise's weight after a session in which
// every set of it was completed.
const WeightIncrement = 2.5

// TrainingRecommendation is the suggested weights for the next training session.
type TrainingRecommendation struct {
	Weights    domain.Weights    `json:"weights"`
	Progressed []domain.Exercise `json:"progressed"`
	Reason     string            `json:"reason"`
}

// RecommendTraining returns the next training weights. last is the most recent
// finished training session, or nil.
func RecommendTraining(last *domain.Session) TrainingRecommendation {
	if last == nil || last.Type != domain.SessionTraining || last.Training == nil {
		return firstTraining()
	}

	data := last.Training
	rec := TrainingRecommendation{Progressed: []domain.Exercise{}}
	for _, e := range domain.Exercises() {
		weight := previousWeight(data, e)
		if data.IsExerciseComplete(e) {
			weight += WeightIncrement
			rec.Progressed = append(rec.Progressed, e)
		}
		setWeight(&rec.Weights, e, weight)
	}
	rec.Reason = progressReason(rec.Progressed)
	return rec
}

func firstTraining() TrainingRecommendation {
	return TrainingRecommendation{
		Weights:    domain.DefaultWeights(),
		Progressed: []domain.Exercise{},
		Reason:     "first session",
	}
}

// previousWeight is the weight last used for e. Sessions recorded before Bench
// and TrapBar existed start those exercises from their defaults.
func previousWeight(data *domain.TrainingData, e domain.Exercise) float64 {
	switch e {
	case domain.ExerciseBench, domain.ExerciseTrapBar:
		if len(data.Sets(e)) == 0 {
			return domain.DefaultWeight(e)
		}
	}
	return data.Weight(e)
}

func setWeight(w *domain.Weights, e domain.Exercise, v float64) {
	switch e {
	case domain.ExerciseHang:
		w.Hang = v
	case domain.ExercisePullup:
		w.Pullup = v
	case domain.ExerciseBench:
		w.Bench = v
	case domain.ExerciseTrapBar:
		w.TrapBar = v
	}
}

func progressReason(progressed []domain.Exercise) string {
	total := len(domain.Exercises())
	switch len(progressed) {
	case 0:
		return fmt.Sprintf("0 of %d exercises completed, weights unchanged", total)
	case total:
		return fmt.Sprintf("all %d exercises completed, +%.1f kg each", total, WeightIncrement)
	}
	names := make([]string, len(progressed))
	for i, e := range progressed {
		names[i] = e.DisplayName()
	}
	return fmt.Sprintf("%d of %d exercises completed, +%.1f kg for %s", len(progressed), total, WeightIncrement, strings.Join(names, ", "))
}
