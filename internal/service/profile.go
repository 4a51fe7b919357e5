package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Shivanand-hulikatti/campus-events/internal/aggregate"
	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// ProfileScores is the activity section of the profile screen.
type ProfileScores struct {
	Scores   []model.ActivityScore `json:"scores"`
	Summary  model.ScoreSummary    `json:"summary"`
	GATotals [8]int                `json:"ga_totals"`
}

// ProfileService edits the profile and reports the user's scores.
type ProfileService struct {
	deps     Deps
	validate *Validator
}

// Update merges the editable fields into the user's profile document and
// replaces the cached identity.
func (s *ProfileService) Update(ctx context.Context, req model.UpdateProfileRequest) (*model.User, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Address = strings.TrimSpace(req.Address)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	user, err := s.deps.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	gw := s.deps.Gateway
	doc, err := gw.Documents.Update(ctx, gw.Collections.Users, user.ID, gateway.Fields{
		gateway.FieldFullName: req.FullName,
		gateway.FieldEmail:    req.Email,
		gateway.FieldPhone:    req.Phone,
		gateway.FieldAddress:  req.Address,
	})
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	updated := gateway.DecodeUser(*doc)
	s.deps.Session.Set(&updated)
	return &updated, nil
}

// Scores lists the user's activity scores, newest first, with their summary.
func (s *ProfileService) Scores(ctx context.Context) (*ProfileScores, error) {
	user, err := s.deps.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	gw := s.deps.Gateway
	docs, err := gw.Documents.List(ctx, gw.Collections.Scores,
		gateway.Equal(gateway.FieldAccountID, user.AccountID),
		gateway.OrderDesc(gateway.FieldDateAwarded),
	)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	scores := make([]model.ActivityScore, len(docs))
	for i, d := range docs {
		scores[i] = gateway.DecodeScore(d)
	}
	return &ProfileScores{
		Scores:   scores,
		Summary:  aggregate.SummarizeScores(scores),
		GATotals: aggregate.GATotals(scores),
	}, nil
}
