// Package aggregate holds the pure computations the screens derive from
// fetched collections. Nothing here validates its inputs; callers check
// rubric bounds before calling.
package aggregate

import (
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// ReminderLead is how long before an event its reminder fires.
const ReminderLead = 2 * time.Hour

// TotalScore sums the eight rubric dimensions.
func TotalScore(ga [8]int) int {
	total := 0
	for _, v := range ga {
		total += v
	}
	return total
}

// RemainingCapacity is capacity minus registered. Negative when overbooked.
func RemainingCapacity(capacity, registered int) int {
	return capacity - registered
}

// DisplayRemaining clamps RemainingCapacity at zero for display.
func DisplayRemaining(capacity, registered int) int {
	return max(0, RemainingCapacity(capacity, registered))
}

// IsFull reports whether no spots remain.
func IsFull(capacity, registered int) bool {
	return registered >= capacity
}

// FillRatio is the share of capacity taken, clamped to [0, 1].
func FillRatio(capacity, registered int) float64 {
	if capacity <= 0 {
		return 0
	}
	r := float64(registered) / float64(capacity)
	return min(1, max(0, r))
}

// SummarizeScores totals a participant's scores. An empty list yields the
// zero summary.
func SummarizeScores(scores []model.ActivityScore) model.ScoreSummary {
	if len(scores) == 0 {
		return model.ScoreSummary{}
	}
	s := model.ScoreSummary{
		TotalEvents:  len(scores),
		HighestScore: scores[0].TotalScore,
		LowestScore:  scores[0].TotalScore,
	}
	for _, sc := range scores {
		s.TotalScore += sc.TotalScore
		s.HighestScore = max(s.HighestScore, sc.TotalScore)
		s.LowestScore = min(s.LowestScore, sc.TotalScore)
	}
	s.AverageScore = float64(s.TotalScore) / float64(s.TotalEvents)
	return s
}

// GATotals sums each rubric dimension across scores.
func GATotals(scores []model.ActivityScore) [8]int {
	var out [8]int
	for _, sc := range scores {
		for i, v := range sc.GA {
			out[i] += v
		}
	}
	return out
}

// ReminderTime is when a reminder for an event starting at start should fire.
func ReminderTime(start time.Time) time.Time {
	return start.Add(-ReminderLead)
}
