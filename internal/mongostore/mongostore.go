// Package mongostore implements the gateway backend on MongoDB. Each document
// collection maps to a Mongo collection whose documents look like
// {_id, fields: {...}, createdAt, updatedAt}; accounts, sessions and files
// live in the reserved _accounts, _sessions and _files collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

const (
	accountsColl = "_accounts"
	sessionsColl = "_sessions"
	filesColl    = "_files"
)

// Connect opens a client and pings the server.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Store is a gateway.Backend backed by one Mongo database.
type Store struct {
	db        *mongo.Database
	signer    *auth.Signer
	publicURL string
	now       func() time.Time
}

var _ gateway.Backend = (*Store)(nil)

// New constructs a Store over db.
func New(db *mongo.Database, signer *auth.Signer, publicURL string) *Store {
	return &Store{db: db, signer: signer, publicURL: publicURL, now: time.Now}
}

// EnsureIndexes creates the indexes the store relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(accountsColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("accounts index: %w", err)
	}
	_, err = s.db.Collection(sessionsColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "accountId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("sessions index: %w", err)
	}
	return nil
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

type accountDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	Label        string    `bson:"label"`
	CreatedAt    time.Time `bson:"createdAt"`
}

type sessionDoc struct {
	ID        string    `bson:"_id"`
	AccountID string    `bson:"accountId"`
	CreatedAt time.Time `bson:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

func (d sessionDoc) model() model.Session {
	return model.Session{ID: d.ID, AccountID: d.AccountID, CreatedAt: d.CreatedAt.UTC(), ExpiresAt: d.ExpiresAt.UTC()}
}

func (s *Store) CreateAccount(ctx context.Context, email, password, label string) (*model.Account, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	doc := accountDoc{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		Label:        label,
		CreatedAt:    s.timestamp(),
	}
	if _, err := s.db.Collection(accountsColl).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, gateway.ErrConflict
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return &model.Account{ID: doc.ID, Email: doc.Email, Label: doc.Label, CreatedAt: doc.CreatedAt}, nil
}

func (s *Store) CreateSession(ctx context.Context, email, password string) (*model.Session, error) {
	var acc accountDoc
	err := s.db.Collection(accountsColl).
		FindOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}).
		Decode(&acc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, gateway.ErrUnauthorized
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	if !auth.CheckPassword(acc.PasswordHash, password) {
		return nil, gateway.ErrUnauthorized
	}

	sess, err := s.signer.NewSession(acc.ID)
	if err != nil {
		return nil, err
	}
	_, err = s.db.Collection(sessionsColl).InsertOne(ctx, sessionDoc{
		ID:        sess.ID,
		AccountID: sess.AccountID,
		CreatedAt: sess.CreatedAt,
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

func (s *Store) session(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, gateway.ErrUnauthorized
	}
	n, err := s.db.Collection(sessionsColl).CountDocuments(ctx, bson.M{
		"_id":       claims.ID,
		"accountId": claims.AccountID,
		"expiresAt": bson.M{"$gt": s.now().UTC()},
	})
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	if n == 0 {
		return nil, gateway.ErrUnauthorized
	}
	return claims, nil
}

func (s *Store) GetAccount(ctx context.Context, token string) (*model.Account, error) {
	claims, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}
	var acc accountDoc
	if err := s.db.Collection(accountsColl).FindOne(ctx, bson.M{"_id": claims.AccountID}).Decode(&acc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, gateway.ErrUnauthorized
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &model.Account{ID: acc.ID, Email: acc.Email, Label: acc.Label, CreatedAt: acc.CreatedAt.UTC()}, nil
}

func (s *Store) ListSessions(ctx context.Context, token string) ([]model.Session, error) {
	claims, err := s.session(ctx, token)
	if err != nil {
		return nil, err
	}
	cur, err := s.db.Collection(sessionsColl).Find(ctx,
		bson.M{"accountId": claims.AccountID, "expiresAt": bson.M{"$gt": s.now().UTC()}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	var docs []sessionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	out := make([]model.Session, len(docs))
	for i, d := range docs {
		out[i] = d.model()
	}
	return out, nil
}

func (s *Store) DeleteSession(ctx context.Context, token, sessionID string) error {
	claims, err := s.session(ctx, token)
	if err != nil {
		return err
	}
	if sessionID == gateway.CurrentSession {
		sessionID = claims.ID
	}
	res, err := s.db.Collection(sessionsColl).DeleteOne(ctx, bson.M{"_id": sessionID, "accountId": claims.AccountID})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if res.DeletedCount == 0 {
		return gateway.ErrNotFound
	}
	return nil
}
