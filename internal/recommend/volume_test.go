package recommend

import (
	"alcyxob/climb-tracker/internal/domain"
	"fmt"
	"testing"
	"time"
)

var now = time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)

// lastVolume builds a finished session at level with count boulders, fails of
// which failed, held the given number of days before now.
func lastVolume(level, count, fails int, daysAgo float64) *domain.Session {
	date := now.Add(-time.Duration(daysAgo * float64(24*time.Hour)))
	end := date.Add(time.Hour)
	attempts := make([]domain.BoulderAttempt, count)
	for i := range attempts {
		attempts[i] = domain.BoulderAttempt{ID: fmt.Sprintf("a%d", i+1), Order: i + 1}
		result := domain.ResultDone
		if i < fails {
			result = domain.ResultFail
		}
		attempts[i].Log(result, "", date)
	}
	return &domain.Session{
		ID:         "last",
		Type:       domain.SessionVolume,
		Date:       date,
		StartTime:  date,
		EndTime:    &end,
		IsFinished: true,
		Volume:     &domain.VolumeDetails{TargetLevel: level, BoulderCount: count, Attempts: attempts},
	}
}

func TestRecommendVolumeScenarios(t *testing.T) {
	tests := []struct {
		name       string
		last       *domain.Session
		wantLevel  int
		wantCount  int
		wantReason string
	}{
		{
			name:       "no prior session",
			last:       nil,
			wantLevel:  5,
			wantCount:  20,
			wantReason: "default",
		},
		{
			name:       "low fail rate, recent",
			last:       lastVolume(10, 20, 2, 3),
			wantLevel:  11,
			wantCount:  20,
			wantReason: "fail rate 10% below 25%: level +1",
		},
		{
			name:       "high fail rate, long break",
			last:       lastVolume(10, 20, 16, 20),
			wantLevel:  7,
			wantCount:  20,
			wantReason: "fail rate 80% above 75%: level -1; 20 days since last session: level -2",
		},
		{
			name:       "clamps to minimum",
			last:       lastVolume(1, 10, 9, 30),
			wantLevel:  1,
			wantCount:  10,
			wantReason: "fail rate 90% above 75%: level -1; 30 days since last session: level -2; raised to minimum level 1",
		},
		{
			name:       "middle band keeps level",
			last:       lastVolume(6, 12, 6, 1),
			wantLevel:  6,
			wantCount:  12,
			wantReason: "fail rate 50% within 25-75%: level unchanged",
		},
		{
			name:       "zero boulders count as zero fail rate",
			last:       lastVolume(4, 0, 0, 0),
			wantLevel:  5,
			wantCount:  0,
			wantReason: "fail rate 0% below 25%: level +1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecommendVolume(tt.last, now)
			if got.Level != tt.wantLevel || got.BoulderCount != tt.wantCount {
				t.Fatalf("expected level %d count %d, got %+v", tt.wantLevel, tt.wantCount, got)
			}
			if got.Reason != tt.wantReason {
				t.Fatalf("reason mismatch\n got: %q\nwant: %q", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestRecommendVolumeFailRateBoundaries(t *testing.T) {
	// 25% and 75% sit inside the no-change band.
	for _, fails := range []int{5, 15} {
		got := RecommendVolume(lastVolume(6, 20, fails, 0), now)
		if got.Level != 6 {
			t.Errorf("fails=%d: expected unchanged level 6, got %d", fails, got.Level)
		}
	}
}

func TestRecommendVolumeDecayBoundaries(t *testing.T) {
	tests := []struct {
		daysAgo float64
		want    int
	}{
		{7.9, 6},
		{8, 5},
		{14, 5},
		{14.5, 5},
		{15, 4},
	}
	for _, tt := range tests {
		// 50% fail rate leaves the level alone so only decay applies.
		got := RecommendVolume(lastVolume(6, 10, 5, tt.daysAgo), now)
		if got.Level != tt.want {
			t.Errorf("%.1f days ago: expected level %d, got %d (%s)", tt.daysAgo, tt.want, got.Level, got.Reason)
		}
	}
}

func TestRecommendVolumeUnloggedCountAsFailures(t *testing.T) {
	last := lastVolume(8, 4, 0, 1)
	for i := range last.Volume.Attempts {
		last.Volume.Attempts[i] = domain.BoulderAttempt{ID: last.Volume.Attempts[i].ID, Order: i + 1}
	}
	got := RecommendVolume(last, now)
	if got.Level != 7 {
		t.Fatalf("expected unlogged attempts to lower the level to 7, got %d", got.Level)
	}
}

func TestRecommendVolumeMaxLevel(t *testing.T) {
	last := lastVolume(12, 10, 0, 1)

	if got := RecommendVolume(last, now); got.Level != 13 {
		t.Fatalf("expected unbounded level 13, got %d", got.Level)
	}

	got := VolumeRecommender{MaxLevel: 12}.Recommend(last, now)
	if got.Level != 12 {
		t.Fatalf("expected capped level 12, got %d", got.Level)
	}
	want := "fail rate 0% below 25%: level +1; capped at maximum level 12"
	if got.Reason != want {
		t.Fatalf("reason mismatch\n got: %q\nwant: %q", got.Reason, want)
	}
}

func TestRecommendVolumeIgnoresTrainingSession(t *testing.T) {
	training := &domain.Session{ID: "t", Type: domain.SessionTraining, Date: now, StartTime: now, Training: &domain.TrainingData{}}
	if got := RecommendVolume(training, now); got.Reason != "default" {
		t.Fatalf("expected default recommendation, got %+v", got)
	}
}
