package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/aggregate"
	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// EventCard is an event as the feed shows it.
type EventCard struct {
	Event      model.Event `json:"event"`
	Registered int         `json:"registered"`
	Remaining  int         `json:"remaining"`
	Full       bool        `json:"full"`
	// CountKnown is false when no fetch of the count has ever succeeded, so
	// Registered is a placeholder 0.
	CountKnown bool        `json:"count_known"`
}

// EventDetails is the event details screen.
type EventDetails struct {
	EventCard
	FillRatio  float64   `json:"fill_ratio"`
	Booked     bool      `json:"booked"`
	BookingID  string    `json:"booking_id,omitempty"`
	ReminderAt time.Time `json:"reminder_at"`
}

// BookingCard is a booking with the current count of its event.
type BookingCard struct {
	Booking    model.Booking `json:"booking"`
	Registered int           `json:"registered"`
	Remaining  int           `json:"remaining"`
	CountKnown bool          `json:"count_known"`
}

// EventService handles the event feed, details, creation and bookings.
type EventService struct {
	deps     Deps
	validate *Validator
	warming  sync.WaitGroup

	mu         sync.Mutex
	warmFor    string
	stopWarmup context.CancelFunc
}

func (s *EventService) card(e model.Event, registered int) EventCard {
	return EventCard{
		Event:      e,
		Registered: registered,
		Remaining:  aggregate.DisplayRemaining(e.Capacity, registered),
		Full:       aggregate.IsFull(e.Capacity, registered),
		CountKnown: s.deps.Counts.Known(e.ID),
	}
}

// Create uploads the event image and stores the event.
func (s *EventService) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.deps.currentUser(ctx); err != nil {
		return nil, err
	}
	point, _ := model.ParseGAPoint(req.GAPoint)

	gw := s.deps.Gateway
	name := req.ImageName
	if name == "" {
		name = "event-image"
	}
	ref, err := gw.Files.Upload(ctx, gw.Collections.Files, name, req.Image)
	if err != nil {
		return nil, fmt.Errorf("upload event image: %w", err)
	}

	e := model.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date.UTC(),
		Location:    req.Location,
		Capacity:    atoi(req.Capacity),
		GAPoint:     point,
		Image:       gw.Files.ViewURL(ref.Bucket, ref.ID),
	}
	doc, err := gw.Documents.Create(ctx, gw.Collections.Events, "", gateway.EventFields(e))
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	created := gateway.DecodeEvent(*doc)
	s.deps.Log.Info().Str("event_id", created.ID).Str("title", created.Title).Msg("event created")
	return &created, nil
}

// Latest lists the newest events with their registration counts. A failed
// listing reads as an empty feed.
func (s *EventService) Latest(ctx context.Context) []EventCard {
	gw := s.deps.Gateway
	docs, err := gw.Documents.List(ctx, gw.Collections.Events,
		gateway.OrderDesc(gateway.FieldCreatedAt),
		gateway.Limit(s.deps.LatestLimit),
	)
	if err != nil {
		s.deps.Log.Error().Err(err).Msg("list latest events")
		return []EventCard{}
	}

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	counts := s.deps.Counts.RefreshAll(ctx, ids)

	cards := make([]EventCard, 0, len(docs))
	for _, d := range docs {
		n, ok := counts[d.ID]
		if !ok {
			n = s.deps.Counts.Count(d.ID)
		}
		cards = append(cards, s.card(gateway.DecodeEvent(d), n))
	}
	return cards
}

// RegistrationCounts returns every cached count by event ID without fetching.
func (s *EventService) RegistrationCounts() map[string]int {
	return s.deps.Counts.Snapshot()
}

// Details loads one event with a fresh count and the caller's booking, if any.
func (s *EventService) Details(ctx context.Context, eventID string) (*EventDetails, error) {
	gw := s.deps.Gateway
	doc, err := gw.Documents.Get(ctx, gw.Collections.Events, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, err)
	}
	e := gateway.DecodeEvent(*doc)

	n, err := s.deps.Counts.Refresh(ctx, eventID)
	if err != nil {
		n = s.deps.Counts.Count(eventID)
	}

	out := &EventDetails{
		EventCard:  s.card(e, n),
		FillRatio:  aggregate.FillRatio(e.Capacity, n),
		ReminderAt: aggregate.ReminderTime(e.Date),
	}
	if user := s.deps.Session.User(); user != nil {
		b, err := s.findBooking(ctx, user.AccountID, eventID)
		if err != nil {
			s.deps.Log.Warn().Err(err).Str("event_id", eventID).Msg("booking lookup")
		} else if b != nil {
			out.Booked = true
			out.BookingID = b.ID
		}
	}
	return out, nil
}

func (s *EventService) findBooking(ctx context.Context, accountID, eventID string) (*model.Booking, error) {
	gw := s.deps.Gateway
	docs, err := gw.Documents.List(ctx, gw.Collections.Bookings,
		gateway.Equal(gateway.FieldUserID, accountID),
		gateway.Equal(gateway.FieldEventID, eventID),
		gateway.Limit(1),
	)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}
	b := gateway.DecodeBooking(docs[0])
	return &b, nil
}

// Register books the signed-in user onto eventID. The duplicate and capacity
// checks read before the write, so two devices racing can both succeed.
func (s *EventService) Register(ctx context.Context, eventID string) (*model.Booking, error) {
	user, err := s.deps.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	gw := s.deps.Gateway

	doc, err := gw.Documents.Get(ctx, gw.Collections.Events, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, err)
	}
	e := gateway.DecodeEvent(*doc)

	existing, err := s.findBooking(ctx, user.AccountID, eventID)
	if err != nil {
		return nil, fmt.Errorf("check existing booking: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	n, err := s.deps.Counts.Refresh(ctx, eventID)
	if err != nil {
		n = s.deps.Counts.Count(eventID)
	}
	if aggregate.IsFull(e.Capacity, n) {
		return nil, ErrEventFull
	}

	b := model.Booking{
		UserID:        user.AccountID,
		EventID:       e.ID,
		EventTitle:    e.Title,
		EventImage:    e.Image,
		EventDate:     e.Date,
		EventLocation: e.Location,
		Capacity:      e.Capacity,
		GAPoint:       e.GAPoint,
		Status:        model.BookingStatusConfirmed,
		BookingDate:   s.deps.Now().UTC(),
	}
	created, err := gw.Documents.Create(ctx, gw.Collections.Bookings, "", gateway.BookingFields(b))
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	_, _ = s.deps.Counts.Refresh(ctx, eventID)

	booking := gateway.DecodeBooking(*created)
	s.deps.Log.Info().Str("event_id", eventID).Str("booking_id", booking.ID).Msg("registered")
	return &booking, nil
}

// Cancel deletes one of the signed-in user's bookings.
func (s *EventService) Cancel(ctx context.Context, bookingID string) error {
	user, err := s.deps.currentUser(ctx)
	if err != nil {
		return err
	}
	gw := s.deps.Gateway
	doc, err := gw.Documents.Get(ctx, gw.Collections.Bookings, bookingID)
	if err != nil {
		return fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	b := gateway.DecodeBooking(*doc)
	if b.UserID != user.AccountID {
		return ErrForbidden
	}
	if err := gw.Documents.Delete(ctx, gw.Collections.Bookings, bookingID); err != nil {
		return fmt.Errorf("delete booking %s: %w", bookingID, err)
	}
	_, _ = s.deps.Counts.Refresh(ctx, b.EventID)
	s.deps.Log.Info().Str("event_id", b.EventID).Str("booking_id", bookingID).Msg("booking cancelled")
	return nil
}

// MyBookings lists the signed-in user's bookings, newest first.
func (s *EventService) MyBookings(ctx context.Context) ([]BookingCard, error) {
	user, err := s.deps.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	bookings, err := s.bookingsOf(ctx, user.AccountID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(bookings))
	for i, b := range bookings {
		ids[i] = b.EventID
	}
	counts := s.deps.Counts.RefreshAll(ctx, ids)

	cards := make([]BookingCard, 0, len(bookings))
	for _, b := range bookings {
		n, ok := counts[b.EventID]
		if !ok {
			n = s.deps.Counts.Count(b.EventID)
		}
		cards = append(cards, BookingCard{
			Booking:    b,
			Registered: n,
			Remaining:  aggregate.DisplayRemaining(b.Capacity, n),
			CountKnown: s.deps.Counts.Known(b.EventID),
		})
	}
	return cards, nil
}

func (s *EventService) bookingsOf(ctx context.Context, accountID string) ([]model.Booking, error) {
	gw := s.deps.Gateway
	docs, err := gw.Documents.List(ctx, gw.Collections.Bookings,
		gateway.Equal(gateway.FieldUserID, accountID),
		gateway.OrderDesc(gateway.FieldBookingDate),
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	out := make([]model.Booking, len(docs))
	for i, d := range docs {
		out[i] = gateway.DecodeBooking(d)
	}
	return out, nil
}

// warmCounts refreshes the counts of the new user's booked events in the
// background after sign-in. Switching or dropping the identity cancels the
// previous warm-up.
func (s *EventService) warmCounts(user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user != nil && user.AccountID == s.warmFor {
		return
	}
	if s.stopWarmup != nil {
		s.stopWarmup()
		s.stopWarmup = nil
	}
	s.warmFor = ""
	if user == nil {
		return
	}
	accountID := user.AccountID
	ctx, cancel := context.WithTimeout(context.Background(), warmTimeout)
	s.warmFor = accountID
	s.stopWarmup = cancel
	s.warming.Add(1)
	go func() {
		defer s.warming.Done()
		defer cancel()
		bookings, err := s.bookingsOf(ctx, accountID)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.deps.Log.Warn().Err(err).Msg("warm registration counts")
			}
			return
		}
		ids := make([]string, len(bookings))
		for i, b := range bookings {
			ids[i] = b.EventID
		}
		s.deps.Counts.RefreshAll(ctx, ids)
	}()
}

// Drain waits for background count refreshes to finish.
func (s *EventService) Drain() {
	s.warming.Wait()
}
