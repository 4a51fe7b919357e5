package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Shivanand-hulikatti/campus-events/internal/aggregate"
	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/regcount"
)

// Participant is a booked user as the scoring tab lists them.
type Participant struct {
	BookingID string `json:"booking_id"`
	AccountID string `json:"account_id"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ScoreID   string `json:"score_id,omitempty"`
}

// ScoringEvent is an event with at least one participant.
type ScoringEvent struct {
	Event        model.Event   `json:"event"`
	Participants []Participant `json:"participants"`
}

// ScoringService backs the scoring tab and the scoring form.
type ScoringService struct {
	deps     Deps
	validate *Validator
}

// Events lists the latest events that have participants, each with its
// participants and their existing score, if any. Events whose participants
// cannot be loaded are left out; a failed event listing reads as empty.
func (s *ScoringService) Events(ctx context.Context) ([]ScoringEvent, error) {
	if _, err := s.deps.currentUser(ctx); err != nil {
		return nil, err
	}
	gw := s.deps.Gateway
	docs, err := gw.Documents.List(ctx, gw.Collections.Events,
		gateway.OrderDesc(gateway.FieldCreatedAt),
		gateway.Limit(s.deps.LatestLimit),
	)
	if err != nil {
		s.deps.Log.Error().Err(err).Msg("list scoring events")
		return []ScoringEvent{}, nil
	}

	results := make([]*ScoringEvent, len(docs))
	g := new(errgroup.Group)
	g.SetLimit(regcount.DefaultParallelism)
	for i, d := range docs {
		i, d := i, d
		g.Go(func() error {
			e := gateway.DecodeEvent(d)
			ps, err := s.participants(ctx, e.ID)
			if err != nil {
				s.deps.Log.Warn().Err(err).Str("event_id", e.ID).Msg("load participants")
				return nil
			}
			if len(ps) == 0 {
				return nil
			}
			results[i] = &ScoringEvent{Event: e, Participants: ps}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]ScoringEvent, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *ScoringService) participants(ctx context.Context, eventID string) ([]Participant, error) {
	gw := s.deps.Gateway
	bookingDocs, err := gw.Documents.List(ctx, gw.Collections.Bookings,
		gateway.Equal(gateway.FieldEventID, eventID),
		gateway.OrderAsc(gateway.FieldCreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	if len(bookingDocs) == 0 {
		return nil, nil
	}

	accountIDs := make([]string, 0, len(bookingDocs))
	seen := make(map[string]bool, len(bookingDocs))
	for _, d := range bookingDocs {
		id := d.Fields.String(gateway.FieldUserID)
		if !seen[id] {
			seen[id] = true
			accountIDs = append(accountIDs, id)
		}
	}

	userDocs, err := gw.Documents.List(ctx, gw.Collections.Users, gateway.Equal(gateway.FieldAccountID, accountIDs...))
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	users := make(map[string]model.User, len(userDocs))
	for _, d := range userDocs {
		u := gateway.DecodeUser(d)
		users[u.AccountID] = u
	}

	scoreDocs, err := gw.Documents.List(ctx, gw.Collections.Scores, gateway.Equal(gateway.FieldEventID, eventID))
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	scored := make(map[string]string, len(scoreDocs))
	for _, d := range scoreDocs {
		scored[d.Fields.String(gateway.FieldAccountID)] = d.ID
	}

	out := make([]Participant, 0, len(bookingDocs))
	delete(seen, "")
	for _, d := range bookingDocs {
		b := gateway.DecodeBooking(d)
		if !seen[b.UserID] {
			continue
		}
		seen[b.UserID] = false
		u, ok := users[b.UserID]
		if !ok {
			u = model.User{AccountID: b.UserID}
		}
		out = append(out, Participant{
			BookingID: b.ID,
			AccountID: b.UserID,
			StudentID: u.StudentID,
			Name:      u.DisplayName(),
			Email:     u.Email,
			ScoreID:   scored[b.UserID],
		})
	}
	return out, nil
}

// Submit records a new score for one participant of eventID.
func (s *ScoringService) Submit(ctx context.Context, eventID string, req model.ScoreRequest) (*model.ActivityScore, error) {
	req.EventID = eventID
	score, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	if _, err := s.deps.currentUser(ctx); err != nil {
		return nil, err
	}

	gw := s.deps.Gateway
	event, err := gw.Documents.Get(ctx, gw.Collections.Events, eventID)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", eventID, err)
	}
	score.EventTitle = event.Fields.String(gateway.FieldTitle)
	score.DateAwarded = s.deps.Now().UTC()

	doc, err := gw.Documents.Create(ctx, gw.Collections.Scores, "", gateway.ScoreFields(score))
	if err != nil {
		return nil, fmt.Errorf("create score: %w", err)
	}
	created := gateway.DecodeScore(*doc)
	s.deps.Log.Info().
		Str("event_id", eventID).
		Str("account_id", created.AccountID).
		Int("total", created.TotalScore).
		Msg("score awarded")
	return &created, nil
}

// Update replaces the rubric values of an existing score. Its event and
// participant never change.
func (s *ScoringService) Update(ctx context.Context, scoreID string, req model.ScoreRequest) (*model.ActivityScore, error) {
	if _, err := s.deps.currentUser(ctx); err != nil {
		return nil, err
	}
	gw := s.deps.Gateway
	doc, err := gw.Documents.Get(ctx, gw.Collections.Scores, scoreID)
	if err != nil {
		return nil, fmt.Errorf("get score %s: %w", scoreID, err)
	}
	existing := gateway.DecodeScore(*doc)

	req.EventID = existing.EventID
	req.EventTitle = existing.EventTitle
	req.AccountID = existing.AccountID
	req.StudentID = existing.StudentID
	score, err := s.parse(req)
	if err != nil {
		return nil, err
	}
	score.DateAwarded = s.deps.Now().UTC()

	doc, err = gw.Documents.Update(ctx, gw.Collections.Scores, scoreID, gateway.ScoreFields(score))
	if err != nil {
		return nil, fmt.Errorf("update score %s: %w", scoreID, err)
	}
	updated := gateway.DecodeScore(*doc)
	return &updated, nil
}

// EventScores lists the scores awarded for eventID, highest total first.
func (s *ScoringService) EventScores(ctx context.Context, eventID string) ([]model.ActivityScore, error) {
	gw := s.deps.Gateway
	docs, err := gw.Documents.List(ctx, gw.Collections.Scores,
		gateway.Equal(gateway.FieldEventID, eventID),
		gateway.OrderDesc(gateway.FieldTotalScore),
	)
	if err != nil {
		return nil, fmt.Errorf("list scores for %s: %w", eventID, err)
	}
	out := make([]model.ActivityScore, len(docs))
	for i, d := range docs {
		out[i] = gateway.DecodeScore(d)
	}
	return out, nil
}

// parse validates the form and converts it. Blank GA cells count as 0.
func (s *ScoringService) parse(req model.ScoreRequest) (model.ActivityScore, error) {
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		req.Role = model.DefaultRole
	}
	for i, v := range req.GA {
		if strings.TrimSpace(v) == "" {
			req.GA[i] = "0"
		}
	}
	if err := s.validate.Struct(req); err != nil {
		return model.ActivityScore{}, err
	}

	score := model.ActivityScore{
		EventID:    req.EventID,
		EventTitle: req.EventTitle,
		AccountID:  req.AccountID,
		StudentID:  req.StudentID,
		Role:       req.Role,
		Level:      atoi(req.Level),
	}
	for i, v := range req.GA {
		score.GA[i] = atoi(v)
	}
	score.TotalScore = aggregate.TotalScore(score.GA)
	return score, nil
}
