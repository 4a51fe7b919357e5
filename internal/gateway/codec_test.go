package gateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

func TestScoreCodec(t *testing.T) {
	awarded := time.Date(2024, 12, 27, 8, 0, 0, 0, time.UTC)
	in := model.ActivityScore{
		EventID:     "e1",
		EventTitle:  "Career Fair",
		AccountID:   "a1",
		StudentID:   "S1",
		Role:        "Participant",
		GA:          [8]int{2, 1, 0, 0, 0, 0, 2, 0},
		Level:       3,
		TotalScore:  5,
		DateAwarded: awarded,
	}
	f := ScoreFields(in)
	assert.Equal(t, 2, f["ga1"])
	assert.Equal(t, 2, f["ga7"])
	assert.Equal(t, "2024-12-27T08:00:00.000Z", f["dateAwarded"])

	out := DecodeScore(Document{ID: "s1", Fields: f})
	in.ID = "s1"
	assert.Equal(t, in, out)
}

func TestDecodeBookingDefaults(t *testing.T) {
	created := time.Date(2024, 12, 19, 0, 0, 0, 0, time.UTC)
	b := DecodeBooking(Document{ID: "b1", CreatedAt: created, Fields: Fields{"eventId": "e1", "userId": "a1"}})
	assert.Equal(t, model.BookingStatusConfirmed, b.Status)
	assert.Equal(t, created, b.EventDate)
}
