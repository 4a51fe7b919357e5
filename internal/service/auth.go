package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// AuthService handles sign-up, sign-in and sign-out.
type AuthService struct {
	deps     Deps
	validate *Validator
}

// SignUp creates an account and its profile document, then signs in.
func (s *AuthService) SignUp(ctx context.Context, req model.SignUpRequest) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.StudentID = strings.TrimSpace(req.StudentID)
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	gw := s.deps.Gateway
	acc, err := gw.Auth.CreateAccount(ctx, req.Email, req.Password, req.StudentID)
	if err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	profile := model.User{
		AccountID: acc.ID,
		Email:     req.Email,
		StudentID: req.StudentID,
		Avatar:    Initials(req.StudentID),
	}
	if _, err := gw.Documents.Create(ctx, gw.Collections.Users, "", gateway.UserFields(profile)); err != nil {
		return nil, fmt.Errorf("create user document: %w", err)
	}
	s.deps.Log.Info().Str("account_id", acc.ID).Msg("account created")

	return s.SignIn(ctx, model.SignInRequest{Email: req.Email, Password: req.Password})
}

// SignIn opens a session, replacing any session the device already holds.
func (s *AuthService) SignIn(ctx context.Context, req model.SignInRequest) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}
	user, err := s.deps.Session.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}
	return user, nil
}

// SignOut clears the session. Local state is dropped even if the remote
// delete fails; that failure is only logged.
func (s *AuthService) SignOut(ctx context.Context) {
	if err := s.deps.Session.Clear(ctx); err != nil {
		s.deps.Log.Warn().Err(err).Msg("sign out")
	}
}

// Me returns the signed-in user.
func (s *AuthService) Me(ctx context.Context) (*model.User, error) {
	return s.deps.currentUser(ctx)
}

// Initials derives the avatar text from a label: its first two letters or
// digits, upper-cased.
func Initials(label string) string {
	out := make([]rune, 0, 2)
	for _, r := range label {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out = append(out, unicode.ToUpper(r))
			if len(out) == 2 {
				break
			}
		}
	}
	return string(out)
}
