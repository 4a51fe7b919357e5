// Package session holds the signed-in identity for the lifetime of the
// process and tells subscribers when it changes.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/regcount"
)

// ErrNoProfile is returned when an account has no users document.
var ErrNoProfile = errors.New("account has no user profile")

// Listener is called after the identity changes; nil means signed out.
type Listener func(user *model.User)

// Store is the process-wide session holder.
type Store struct {
	auth   gateway.Auth
	docs   gateway.Documents
	users  string
	counts *regcount.Cache
	log    zerolog.Logger

	mu        sync.RWMutex
	token     string
	user      *model.User
	listeners map[int]Listener
	nextID    int
}

// New constructs a signed-out Store. counts is emptied on sign-out.
func New(gw *gateway.Gateway, counts *regcount.Cache, log zerolog.Logger) *Store {
	return &Store{
		auth:      gw.Auth,
		docs:      gw.Documents,
		users:     gw.Collections.Users,
		counts:    counts,
		log:       log,
		listeners: make(map[int]Listener),
	}
}

// Subscribe registers fn and returns a function that unregisters it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Current resolves the identity behind the held session token, caches it and
// returns it. Every failure reads as signed out.
func (s *Store) Current(ctx context.Context) *model.User {
	token := s.Token()
	if token == "" {
		return nil
	}
	user, err := s.resolve(ctx, token)
	if err != nil {
		s.log.Warn().Err(err).Msg("no current session")
		s.Set(nil)
		return nil
	}
	s.Set(user)
	return user
}

func (s *Store) resolve(ctx context.Context, token string) (*model.User, error) {
	acc, err := s.auth.GetAccount(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	docs, err := s.docs.List(ctx, s.users, gateway.Equal(gateway.FieldAccountID, acc.ID), gateway.Limit(1))
	if err != nil {
		return nil, fmt.Errorf("find user for account %s: %w", acc.ID, err)
	}
	if len(docs) == 0 {
		return nil, ErrNoProfile
	}
	u := gateway.DecodeUser(docs[0])
	return &u, nil
}

// Set replaces the cached identity and notifies listeners.
func (s *Store) Set(user *model.User) {
	s.mu.Lock()
	s.user = user
	fns := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}

// SetToken adopts a session token without resolving it.
func (s *Store) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// SignIn drops every existing session of the signed-in account, opens a new
// one and resolves its user.
func (s *Store) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	s.cleanupSessions(ctx)

	sess, err := s.auth.CreateSession(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.SetToken(sess.Token)

	user, err := s.resolve(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	s.Set(user)
	s.log.Info().Str("account_id", user.AccountID).Msg("signed in")
	return user, nil
}

func (s *Store) cleanupSessions(ctx context.Context) {
	token := s.Token()
	if token == "" {
		return
	}
	sessions, err := s.auth.ListSessions(ctx, token)
	if err != nil {
		if !errors.Is(err, gateway.ErrUnauthorized) {
			s.log.Warn().Err(err).Msg("list sessions")
		}
		return
	}
	for _, sess := range sessions {
		if err := s.auth.DeleteSession(ctx, token, sess.ID); err != nil {
			s.log.Warn().Err(err).Str("session_id", sess.ID).Msg("delete session")
		}
	}
}

// Clear signs out: the remote session is deleted (best effort), the identity
// and token are dropped and the registration counts are emptied. The local
// state is cleared even when the remote delete fails; that error is returned.
func (s *Store) Clear(ctx context.Context) error {
	token := s.Token()
	var err error
	if token != "" {
		if err = s.auth.DeleteSession(ctx, token, gateway.CurrentSession); err != nil {
			s.log.Warn().Err(err).Msg("delete current session")
			err = fmt.Errorf("delete session: %w", err)
		}
	}

	s.SetToken("")
	if s.counts != nil {
		s.counts.Clear()
	}
	s.Set(nil)
	return err
}

// User returns the cached identity without contacting the gateway.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the held session token.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}
