// Package model defines the core domain types for the campus event app.
package model

import (
	"fmt"
	"time"
)

// GAPoint is one of the eight graduate-attribute rubric categories.
type GAPoint string

const (
	GA1 GAPoint = "GA1"
	GA2 GAPoint = "GA2"
	GA3 GAPoint = "GA3"
	GA4 GAPoint = "GA4"
	GA5 GAPoint = "GA5"
	GA6 GAPoint = "GA6"
	GA7 GAPoint = "GA7"
	GA8 GAPoint = "GA8"
)

// GAPoints lists every category in rubric order.
var GAPoints = [8]GAPoint{GA1, GA2, GA3, GA4, GA5, GA6, GA7, GA8}

// ParseGAPoint returns the category named by s or an error.
func ParseGAPoint(s string) (GAPoint, error) {
	for _, p := range GAPoints {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown GA point %q", s)
}

// Rubric bounds.
const (
	MinGAScore = 0
	MaxGAScore = 3
	MinLevel   = 1
	MaxLevel   = 3
)

// BookingStatusConfirmed is the only status the app writes.
const BookingStatusConfirmed = "confirmed"

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// DefaultRole is pre-filled on the scoring form.
const DefaultRole = "Participant"

// User is the profile document linked to an auth account.
type User struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	StudentID string `json:"student_id"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Avatar    string `json:"avatar"`
}

// DisplayName is what participant lists show for a user.
func (u *User) DisplayName() string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.StudentID != "":
		return u.StudentID
	default:
		return "Unknown"
	}
}

// Event represents a bookable event created by staff.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	GAPoint     GAPoint   `json:"ga_point"`
	Image       string    `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
}

// Booking links a user to an event. Event fields are copied at booking time
// so booking lists render without refetching events.
type Booking struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	EventID       string    `json:"event_id"`
	EventTitle    string    `json:"event_title"`
	EventImage    string    `json:"event_image"`
	EventDate     time.Time `json:"event_date"`
	EventLocation string    `json:"event_location"`
	Capacity      int       `json:"capacity"`
	GAPoint       GAPoint   `json:"ga_point"`
	Status        string    `json:"status"`
	BookingDate   time.Time `json:"booking_date"`
	CreatedAt     time.Time `json:"created_at"`
}

// ActivityScore is a staff-awarded rubric score for one participant of one event.
type ActivityScore struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	EventTitle  string    `json:"event_title"`
	AccountID   string    `json:"account_id"`
	StudentID   string    `json:"student_id"`
	Role        string    `json:"role"`
	GA          [8]int    `json:"ga"`
	Level       int       `json:"level"`
	TotalScore  int       `json:"total_score"`
	DateAwarded time.Time `json:"date_awarded"`
}

// ScoreSummary aggregates a list of activity scores.
type ScoreSummary struct {
	TotalEvents  int     `json:"total_events"`
	TotalScore   int     `json:"total_score"`
	AverageScore float64 `json:"average_score"`
	HighestScore int     `json:"highest_score"`
	LowestScore  int     `json:"lowest_score"`
}

// Video is a promotional post shown on the home feed.
type Video struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Thumbnail string    `json:"thumbnail"`
	VideoURL  string    `json:"video"`
	CreatorID string    `json:"creator_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Account is the auth identity owned by the gateway.
type Account struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an authenticated session issued by the gateway.
type Session struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FileRef describes an uploaded file.
type FileRef struct {
	ID        string    `json:"id"`
	Bucket    string    `json:"bucket"`
	Name      string    `json:"name"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// ─── Request payloads ─────────────────────────────────────────────────────────

// SignUpRequest is the payload for creating an account.
type SignUpRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,passwordbytes"`
	StudentID string `json:"student_id" validate:"required,max=32"`
}

// SignInRequest is the payload for opening a session.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest carries the editable profile fields.
type UpdateProfileRequest struct {
	FullName string `json:"full_name" validate:"max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Address  string `json:"address" validate:"omitempty,max=255"`
}

// CreateEventRequest is the payload for creating a new event. Capacity stays a
// string so non-numeric input is reported as a field error.
type CreateEventRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Capacity    string    `json:"capacity" validate:"required,positiveint"`
	GAPoint     string    `json:"ga_point" validate:"required,gapoint"`
	ImageName   string    `json:"-"`
	Image       []byte    `json:"-" form:"image" validate:"required"`
}

// ScoreRequest is the scoring form. GA values are strings as typed by staff.
type ScoreRequest struct {
	EventID    string    `json:"event_id"`
	EventTitle string    `json:"event_title"`
	AccountID  string    `json:"account_id" validate:"required"`
	StudentID  string    `json:"student_id" validate:"required"`
	Role       string    `json:"role" validate:"required,max=64"`
	GA         [8]string `json:"ga" validate:"dive,gascore"`
	Level      string    `json:"level" validate:"required,galevel"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}
