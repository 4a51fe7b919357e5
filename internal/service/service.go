// Package service implements the app's screen flows, validation, and the
// orchestration between the session store, the registration count cache and
// the gateway.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/regcount"
	"github.com/Shivanand-hulikatti/campus-events/internal/session"
)

var (
	// ErrNotSignedIn is returned by flows that need an identity.
	ErrNotSignedIn = errors.New("sign in required")
	// ErrAccountExists is returned when signing up with a taken email.
	ErrAccountExists = errors.New("an account with this email already exists")
	// ErrInvalidCredentials is returned for a failed sign-in.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEventFull is returned when an event has no remaining capacity.
	ErrEventFull = errors.New("event is fully booked")
	// ErrAlreadyRegistered is returned when the user already holds a booking.
	ErrAlreadyRegistered = errors.New("you are already registered for this event")
	// ErrForbidden is returned when acting on another user's booking.
	ErrForbidden = errors.New("booking belongs to another user")
)

// warmTimeout bounds the background count refresh after sign-in.
const warmTimeout = 10 * time.Second

// Deps are the collaborators shared by every service.
type Deps struct {
	Gateway     *gateway.Gateway
	Session     *session.Store
	Counts      *regcount.Cache
	Log         zerolog.Logger
	LatestLimit int
	Now         func() time.Time
}

// Services groups the app's flows.
type Services struct {
	Auth    *AuthService
	Events  *EventService
	Profile *ProfileService
	Scoring *ScoringService
	Videos  *VideoService
	Files   *FileService
}

// New builds every service and subscribes the session hook that warms the
// registration counts of the signed-in user's bookings.
func New(d Deps) *Services {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.LatestLimit <= 0 {
		d.LatestLimit = 100
	}
	v := NewValidator()
	s := &Services{
		Auth:    &AuthService{deps: d, validate: v},
		Events:  &EventService{deps: d, validate: v},
		Profile: &ProfileService{deps: d, validate: v},
		Scoring: &ScoringService{deps: d, validate: v},
		Videos:  &VideoService{deps: d},
		Files:   &FileService{deps: d},
	}
	d.Session.Subscribe(s.Events.warmCounts)
	return s
}

// currentUser returns the cached identity, resolving it once if needed.
func (d Deps) currentUser(ctx context.Context) (*model.User, error) {
	if u := d.Session.User(); u != nil {
		return u, nil
	}
	if u := d.Session.Current(ctx); u != nil {
		return u, nil
	}
	return nil, ErrNotSignedIn
}
