package recommend

import (
	"alcyxob/climb-tracker/internal/domain"
	"fmt"
	"reflect"
	"testing"
)

func sets(e domain.Exercise, completed int) []domain.TrainingSet {
	out := make([]domain.TrainingSet, domain.SetsPerExercise)
	for i := range out {
		out[i] = domain.TrainingSet{ID: fmt.Sprintf("%s%d", e, i+1), Order: i + 1, Exercise: e}
		if i < completed {
			out[i].Complete(now)
		}
	}
	return out
}

func lastTraining(data domain.TrainingData) *domain.Session {
	end := now
	return &domain.Session{
		ID:         "last",
		Type:       domain.SessionTraining,
		Date:       now,
		StartTime:  now,
		EndTime:    &end,
		IsFinished: true,
		Training:   &data,
	}
}

func TestRecommendTrainingFirstSession(t *testing.T) {
	got := RecommendTraining(nil)
	want := domain.Weights{Hang: 0, Pullup: 0, Bench: 10, TrapBar: 20}
	if got.Weights != want || got.Reason != "first session" {
		t.Fatalf("unexpected first-session recommendation %+v", got)
	}
}

func TestRecommendTrainingProgressesCompletedExercises(t *testing.T) {
	tests := []struct {
		name           string
		data           domain.TrainingData
		wantWeights    domain.Weights
		wantProgressed []domain.Exercise
		wantReason     string
	}{
		{
			name: "only hang complete",
			data: domain.TrainingData{
				HangWeight: 4, PullupWeight: 7.5, BenchWeight: 30, TrapBarWeight: 60,
				HangSets:    sets(domain.ExerciseHang, 5),
				PullupSets:  sets(domain.ExercisePullup, 0),
				BenchSets:   sets(domain.ExerciseBench, 0),
				TrapBarSets: sets(domain.ExerciseTrapBar, 0),
			},
			wantWeights:    domain.Weights{Hang: 6.5, Pullup: 7.5, Bench: 30, TrapBar: 60},
			wantProgressed: []domain.Exercise{domain.ExerciseHang},
			wantReason:     "1 of 4 exercises completed, +2.5 kg for Hang",
		},
		{
			name: "nothing complete",
			data: domain.TrainingData{
				HangWeight: 4, PullupWeight: 7.5, BenchWeight: 30, TrapBarWeight: 60,
				HangSets:    sets(domain.ExerciseHang, 4),
				PullupSets:  sets(domain.ExercisePullup, 1),
				BenchSets:   sets(domain.ExerciseBench, 0),
				TrapBarSets: sets(domain.ExerciseTrapBar, 3),
			},
			wantWeights:    domain.Weights{Hang: 4, Pullup: 7.5, Bench: 30, TrapBar: 60},
			wantProgressed: []domain.Exercise{},
			wantReason:     "0 of 4 exercises completed, weights unchanged",
		},
		{
			name: "everything complete",
			data: domain.TrainingData{
				HangWeight: 0, PullupWeight: 0, BenchWeight: 10, TrapBarWeight: 20,
				HangSets:    sets(domain.ExerciseHang, 5),
				PullupSets:  sets(domain.ExercisePullup, 5),
				BenchSets:   sets(domain.ExerciseBench, 5),
				TrapBarSets: sets(domain.ExerciseTrapBar, 5),
			},
			wantWeights: domain.Weights{Hang: 2.5, Pullup: 2.5, Bench: 12.5, TrapBar: 22.5},
			wantProgressed: []domain.Exercise{
				domain.ExerciseHang, domain.ExercisePullup, domain.ExerciseBench, domain.ExerciseTrapBar,
			},
			wantReason: "all 4 exercises completed, +2.5 kg each",
		},
		{
			name: "session from before bench and trap bar",
			data: domain.TrainingData{
				HangWeight: 2.5, PullupWeight: 5,
				HangSets:   sets(domain.ExerciseHang, 5),
				PullupSets: sets(domain.ExercisePullup, 5),
			},
			wantWeights:    domain.Weights{Hang: 5, Pullup: 7.5, Bench: 10, TrapBar: 20},
			wantProgressed: []domain.Exercise{domain.ExerciseHang, domain.ExercisePullup},
			wantReason:     "2 of 4 exercises completed, +2.5 kg for Hang, Pullup",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecommendTraining(lastTraining(tt.data))
			if got.Weights != tt.wantWeights {
				t.Fatalf("expected weights %+v, got %+v", tt.wantWeights, got.Weights)
			}
			if !reflect.DeepEqual(got.Progressed, tt.wantProgressed) {
				t.Fatalf("expected progressed %v, got %v", tt.wantProgressed, got.Progressed)
			}
			if got.Reason != tt.wantReason {
				t.Fatalf("reason mismatch\n got: %q\nwant: %q", got.Reason, tt.wantReason)
			}
		})
	}
}
