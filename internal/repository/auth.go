package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

// CreateAccount inserts an account with a bcrypt password hash.
func (s *Store) CreateAccount(ctx context.Context, email, password, label string) (*model.Account, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acc := &model.Account{
		ID:        uuid.New().String(),
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Label:     label,
		CreatedAt: s.timestamp(),
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO accounts (id, email, password_hash, label, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		acc.ID, acc.Email, hash, acc.Label, acc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, gateway.ErrConflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return acc, nil
}

// CreateSession checks the credentials and records a new session.
func (s *Store) CreateSession(ctx context.Context, email, password string) (*model.Session, error) {
	var accountID, hash string
	err := s.db.QueryRow(ctx,
		`SELECT id, password_hash FROM accounts WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	).Scan(&accountID, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gateway.ErrUnauthorized
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	if !auth.CheckPassword(hash, password) {
		return nil, gateway.ErrUnauthorized
	}

	sess, err := s.signer.NewSession(accountID)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO sessions (id, account_id, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		sess.ID, sess.AccountID, sess.CreatedAt, sess.ExpiresAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// session verifies token and checks that its session row still exists.
func (s *Store) session(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, gateway.ErrUnauthorized
	}
	var n int
	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE id = $1 AND account_id = $2 AND expires_at > $3`,
		claims.ID, claims.AccountID, s.now().UTC(),
	).Scan(&n)
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if n == 0 {
		return nil, gateway.ErrUnauthorized
	}
	return claims, nil
}

// GetAccount resolves the account behind token.
func (s *Store) GetAccount(ctx context.Context, token string) (*model.Account, error) {
	claims, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}
	var acc model.Account
	err = s.db.QueryRow(ctx,
		`SELECT id, email, label, created_at FROM accounts WHERE id = $1`,
		claims.AccountID,
	).Scan(&acc.ID, &acc.Email, &acc.Label, &acc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, gateway.ErrUnauthorized
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &acc, nil
}

// ListSessions returns every live session of the token's account.
func (s *Store) ListSessions(ctx context.Context, token string) ([]model.Session, error) {
	claims, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.Query(ctx,
		`SELECT id, account_id, created_at, expires_at
		 FROM sessions
		 WHERE account_id = $1 AND expires_at > $2
		 ORDER BY created_at ASC`,
		claims.AccountID, s.now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []model.Session
	for rows.Next() {
		var sess model.Session
		if err := rows.Scan(&sess.ID, &sess.AccountID, &sess.CreatedAt, &sess.ExpiresAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// DeleteSession removes one session of the token's account.
func (s *Store) DeleteSession(ctx context.Context, token, sessionID string) error {
	claims, err := s.session(ctx, token)
	if err != nil {
		return err
	}
	if sessionID == gateway.CurrentSession {
		sessionID = claims.ID
	}
	tag, err := s.db.Exec(ctx,
		`DELETE FROM sessions WHERE id = $1 AND account_id = $2`,
		sessionID, claims.AccountID,
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return gateway.ErrNotFound
	}
	return nil
}
