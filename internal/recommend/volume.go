// Package recommend computes the parameters of the next session from the last
// finished one. Everything here is pure: the same inputs give the same output.
package recommend

import (
	"alcyxob/climb-tracker/internal/domain"
	"fmt"
	"math"
	"strings"
	"time"
)

// Starting point when there is no finished volume session.
const (
	DefaultLevel        = 5
	DefaultBoulderCount = 20
	MinLevel            = 1
)

// Fail-rate thresholds, in percent.
const (
	lowFailRate  = 25.0
	highFailRate = 75.0
)

// Days since the last session after which the level decays.
const (
	shortBreakDays = 8
	longBreakDays  = 14
)

// VolumeRecommendation is the suggested setup for the next volume session.
type VolumeRecommendation struct {
	Level        int    `json:"level"`
	BoulderCount int    `json:"boulderCount"`
	Reason       string `json:"reason"`
}

// VolumeRecommender adjusts the level of the last finished volume session by
// its fail rate and the time since it happened.
type VolumeRecommender struct {
	// MaxLevel caps the recommended level. Zero leaves it unbounded.
	MaxLevel int
}

// RecommendVolume uses a recommender without an upper level bound.
func RecommendVolume(last *domain.Session, now time.Time) VolumeRecommendation {
	return VolumeRecommender{}.Recommend(last, now)
}

// Recommend returns the next volume session setup. last is the most recent
// finished volume session, or nil.
func (r VolumeRecommender) Recommend(last *domain.Session, now time.Time) VolumeRecommendation {
	if last == nil || last.Type != domain.SessionVolume || last.Volume == nil {
		return defaultVolume()
	}

	level := last.Volume.TargetLevel
	var reasons []string

	failRate := last.FailRate()
	switch {
	case failRate < lowFailRate:
		level++
		reasons = append(reasons, fmt.Sprintf("fail rate %s below %.0f%%: level +1", formatPercent(failRate), lowFailRate))
	case failRate > highFailRate:
		level--
		reasons = append(reasons, fmt.Sprintf("fail rate %s above %.0f%%: level -1", formatPercent(failRate), highFailRate))
	default:
		reasons = append(reasons, fmt.Sprintf("fail rate %s within %.0f-%.0f%%: level unchanged", formatPercent(failRate), lowFailRate, highFailRate))
	}

	days := DaysSince(last.Date, now)
	switch {
	case days > longBreakDays:
		level -= 2
		reasons = append(reasons, fmt.Sprintf("%d days since last session: level -2", days))
	case days >= shortBreakDays:
		level--
		reasons = append(reasons, fmt.Sprintf("%d days since last session: level -1", days))
	}

	if level < MinLevel {
		level = MinLevel
		reasons = append(reasons, fmt.Sprintf("raised to minimum level %d", MinLevel))
	} else if r.MaxLevel > 0 && level > r.MaxLevel {
		level = r.MaxLevel
		reasons = append(reasons, fmt.Sprintf("capped at maximum level %d", r.MaxLevel))
	}

	return VolumeRecommendation{
		Level:        level,
		BoulderCount: last.Volume.BoulderCount,
		Reason:       strings.Join(reasons, "; "),
	}
}

func defaultVolume() VolumeRecommendation {
	return VolumeRecommendation{Level: DefaultLevel, BoulderCount: DefaultBoulderCount, Reason: "default"}
}

// DaysSince returns the number of whole days from then to now, rounded down.
func DaysSince(then, now time.Time) int {
	return int(math.Floor(now.Sub(then).Hours() / 24))
}

func formatPercent(p float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.1f", p), "0"), ".") + "%"
}
