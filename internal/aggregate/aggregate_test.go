package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

func TestTotalScore(t *testing.T) {
	tests := []struct {
		name string
		ga   [8]int
		want int
	}{
		{name: "all zero", ga: [8]int{}, want: 0},
		{name: "all max", ga: [8]int{3, 3, 3, 3, 3, 3, 3, 3}, want: 24},
		{name: "mixed", ga: [8]int{2, 1, 0, 0, 0, 0, 2, 0}, want: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TotalScore(tt.ga))
		})
	}
}

// Every vector in [0,3]^8 sums exactly and stays inside [0,24].
func TestTotalScoreExhaustive(t *testing.T) {
	var ga [8]int
	var walk func(i, sum int)
	walk = func(i, sum int) {
		if i == len(ga) {
			got := TotalScore(ga)
			if got != sum || got < 0 || got > 24 {
				t.Fatalf("TotalScore(%v) = %d, want %d", ga, got, sum)
			}
			return
		}
		for v := model.MinGAScore; v <= model.MaxGAScore; v++ {
			ga[i] = v
			walk(i+1, sum+v)
		}
	}
	walk(0, 0)
}

func TestRemainingCapacity(t *testing.T) {
	assert.Equal(t, 20, RemainingCapacity(50, 30))
	assert.Equal(t, -10, RemainingCapacity(50, 60))
	assert.Equal(t, 20, DisplayRemaining(50, 30))
	assert.Equal(t, 0, DisplayRemaining(50, 60))
	assert.Equal(t, 0, DisplayRemaining(50, 50))
}

func TestIsFullAndFillRatio(t *testing.T) {
	assert.False(t, IsFull(50, 49))
	assert.True(t, IsFull(50, 50))
	assert.True(t, IsFull(50, 51))

	assert.Equal(t, 0.5, FillRatio(50, 25))
	assert.Equal(t, 1.0, FillRatio(50, 60))
	assert.Equal(t, 0.0, FillRatio(0, 5))
}

func TestSummarizeScores(t *testing.T) {
	assert.Equal(t, model.ScoreSummary{}, SummarizeScores(nil))
	assert.Equal(t, model.ScoreSummary{}, SummarizeScores([]model.ActivityScore{}))

	got := SummarizeScores([]model.ActivityScore{{TotalScore: 10}, {TotalScore: 20}})
	assert.Equal(t, model.ScoreSummary{
		TotalEvents:  2,
		TotalScore:   30,
		AverageScore: 15,
		HighestScore: 20,
		LowestScore:  10,
	}, got)

	got = SummarizeScores([]model.ActivityScore{{TotalScore: 0}})
	assert.Equal(t, 0, got.LowestScore)
	assert.Equal(t, 1, got.TotalEvents)
}

func TestGATotals(t *testing.T) {
	got := GATotals([]model.ActivityScore{
		{GA: [8]int{1, 0, 0, 0, 0, 0, 0, 3}},
		{GA: [8]int{2, 1, 0, 0, 0, 0, 0, 0}},
	})
	assert.Equal(t, [8]int{3, 1, 0, 0, 0, 0, 0, 3}, got)
}

func TestReminderTime(t *testing.T) {
	start := time.Date(2024, 12, 20, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 12, 20, 12, 0, 0, 0, time.UTC), ReminderTime(start))
}
