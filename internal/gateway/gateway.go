// Package gateway defines the contract of the remote backend the app talks to:
// account sessions, schemaless documents grouped in collections, and file
// buckets. Backends live in this package (memory), internal/repository
// (PostgreSQL) and internal/mongostore (MongoDB).
package gateway

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

var (
	// ErrUnauthorized is returned when there is no valid session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a create collides with an existing record.
	ErrConflict = errors.New("already exists")
)

// CurrentSession addresses the session behind the caller's own token.
const CurrentSession = "current"

// Auth manages accounts and sessions.
type Auth interface {
	CreateAccount(ctx context.Context, email, password, label string) (*model.Account, error)
	CreateSession(ctx context.Context, email, password string) (*model.Session, error)
	// GetAccount resolves the account behind token or returns ErrUnauthorized.
	GetAccount(ctx context.Context, token string) (*model.Account, error)
	ListSessions(ctx context.Context, token string) ([]model.Session, error)
	// DeleteSession removes sessionID (or CurrentSession) of the token's account.
	DeleteSession(ctx context.Context, token, sessionID string) error
}

// Documents stores schemaless documents.
type Documents interface {
	// Create stores fields under id; an empty id gets a generated one.
	Create(ctx context.Context, collection, id string, fields Fields) (*Document, error)
	Get(ctx context.Context, collection, id string) (*Document, error)
	List(ctx context.Context, collection string, queries ...Query) ([]Document, error)
	// Update merges fields into the stored document.
	Update(ctx context.Context, collection, id string, fields Fields) (*Document, error)
	Delete(ctx context.Context, collection, id string) error
}

// Files stores opaque blobs in buckets.
type Files interface {
	Upload(ctx context.Context, bucket, name string, data []byte) (*model.FileRef, error)
	Download(ctx context.Context, bucket, id string) (*model.FileRef, []byte, error)
	ViewURL(bucket, id string) string
}

// Backend is everything a gateway implementation provides.
type Backend interface {
	Auth
	Documents
	Files
}

// Collections names the collections and bucket the app uses.
type Collections struct {
	Users    string
	Events   string
	Bookings string
	Scores   string
	Videos   string
	Files    string
}

// DefaultCollections returns the stock collection names.
func DefaultCollections() Collections {
	return Collections{
		Users:    "users",
		Events:   "events",
		Bookings: "bookings",
		Scores:   "activity_scores",
		Videos:   "videos",
		Files:    "files",
	}
}

// Gateway bundles a backend with the collection layout.
type Gateway struct {
	Auth        Auth
	Documents   Documents
	Files       Files
	Collections Collections
}

// New wraps a backend.
func New(b Backend, c Collections) *Gateway {
	return &Gateway{Auth: b, Documents: b, Files: b, Collections: c}
}

// Document is a stored record.
type Document struct {
	ID         string    `json:"id" bson:"_id"`
	Collection string    `json:"collection" bson:"-"`
	CreatedAt  time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updatedAt"`
	Fields     Fields    `json:"fields" bson:"fields"`
}

// FileViewURL is the public URL the app shell serves a file under.
func FileViewURL(publicURL, bucket, id string) string {
	return strings.TrimRight(publicURL, "/") + "/files/" + bucket + "/" + id + "/view"
}

// TimeLayout is the millisecond ISO-8601 layout used for time-valued fields.
// Fixed width keeps lexical and chronological order identical.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// FormatTime renders t in TimeLayout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}
