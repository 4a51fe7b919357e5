package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
)

type memAccount struct {
	account model.Account
	hash    string
}

type memFile struct {
	ref  model.FileRef
	data []byte
}

// Memory is an in-process Backend. It keeps everything in maps guarded by a
// single RWMutex and is used in development and tests.
type Memory struct {
	signer    *auth.Signer
	publicURL string
	now       func() time.Time

	mu       sync.RWMutex
	accounts map[string]*memAccount // by account ID
	emails   map[string]string      // email -> account ID
	sessions map[string]model.Session
	docs     map[string]map[string]Document
	files    map[string]map[string]memFile
	last     time.Time
}

// NewMemory constructs an empty in-memory backend.
func NewMemory(signer *auth.Signer, publicURL string) *Memory {
	return &Memory{
		signer:    signer,
		publicURL: publicURL,
		now:       time.Now,
		accounts:  make(map[string]*memAccount),
		emails:    make(map[string]string),
		sessions:  make(map[string]model.Session),
		docs:      make(map[string]map[string]Document),
		files:     make(map[string]map[string]memFile),
	}
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

// CreateAccount registers a new account with a bcrypt-hashed password.
func (m *Memory) CreateAccount(ctx context.Context, email, password, label string) (*model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.emails[email]; ok {
		return nil, ErrConflict
	}
	acc := model.Account{ID: uuid.New().String(), Email: email, Label: label, CreatedAt: m.now().UTC()}
	m.accounts[acc.ID] = &memAccount{account: acc, hash: hash}
	m.emails[email] = acc.ID
	return &acc, nil
}

// CreateSession checks the credentials and opens a session.
func (m *Memory) CreateSession(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	m.mu.RLock()
	acc, ok := m.accounts[m.emails[email]]
	m.mu.RUnlock()
	if !ok || !auth.CheckPassword(acc.hash, password) {
		return nil, ErrUnauthorized
	}

	sess, err := m.signer.NewSession(acc.account.ID)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[sess.ID] = *sess
	m.mu.Unlock()
	return sess, nil
}

// session resolves token to a live session. Callers hold m.mu.
func (m *Memory) session(token string) (model.Session, error) {
	claims, err := m.signer.Parse(token)
	if err != nil {
		return model.Session{}, ErrUnauthorized
	}
	sess, ok := m.sessions[claims.ID]
	if !ok || sess.AccountID != claims.AccountID {
		return model.Session{}, ErrUnauthorized
	}
	return sess, nil
}

// GetAccount returns the account owning the session behind token.
func (m *Memory) GetAccount(ctx context.Context, token string) (*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, err := m.session(token)
	if err != nil {
		return nil, err
	}
	acc, ok := m.accounts[sess.AccountID]
	if !ok {
		return nil, ErrUnauthorized
	}
	out := acc.account
	return &out, nil
}

// ListSessions lists the live sessions of the account behind token.
func (m *Memory) ListSessions(ctx context.Context, token string) ([]model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cur, err := m.session(token)
	if err != nil {
		return nil, err
	}
	var out []model.Session
	for _, s := range m.sessions {
		if s.AccountID == cur.AccountID {
			s.Token = ""
			out = append(out, s)
		}
	}
	return out, nil
}

// DeleteSession removes sessionID, or the caller's own session for CurrentSession.
func (m *Memory) DeleteSession(ctx context.Context, token, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, err := m.session(token)
	if err != nil {
		return err
	}
	if sessionID == CurrentSession {
		sessionID = cur.ID
	}
	s, ok := m.sessions[sessionID]
	if !ok || s.AccountID != cur.AccountID {
		return ErrNotFound
	}
	delete(m.sessions, sessionID)
	return nil
}

// ─── Documents ────────────────────────────────────────────────────────────────

// Create stores a new document, generating an ID when id is empty.
func (m *Memory) Create(ctx context.Context, collection, id string, fields Fields) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		id = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	doc := Document{ID: id, Collection: collection, CreatedAt: now, UpdatedAt: now, Fields: normalize(fields)}
	coll, ok := m.docs[collection]
	if !ok {
		coll = make(map[string]Document)
		m.docs[collection] = coll
	}
	if _, exists := coll[id]; exists {
		return nil, ErrConflict
	}
	coll[id] = doc
	out := copyDoc(doc)
	return &out, nil
}

// Get returns one document or ErrNotFound.
func (m *Memory) Get(ctx context.Context, collection, id string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	out := copyDoc(doc)
	return &out, nil
}

// List returns the documents of collection that match queries.
func (m *Memory) List(ctx context.Context, collection string, queries ...Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	plan, err := Compile(queries)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	all := make([]Document, 0, len(m.docs[collection]))
	for _, d := range m.docs[collection] {
		all = append(all, copyDoc(d))
	}
	m.mu.RUnlock()
	return plan.Apply(all), nil
}

// Update merges fields into an existing document.
func (m *Memory) Update(ctx context.Context, collection, id string, fields Fields) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	merged := doc.Fields.Clone()
	for k, v := range normalize(fields) {
		merged[k] = v
	}
	doc.Fields = merged
	doc.UpdatedAt = m.tick()
	m.docs[collection][id] = doc
	out := copyDoc(doc)
	return &out, nil
}

// Delete removes one document.
func (m *Memory) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.docs[collection], id)
	return nil
}

// tick returns a strictly increasing millisecond timestamp so creation order
// survives the TimeLayout precision. Callers hold m.mu.
func (m *Memory) tick() time.Time {
	now := m.now().UTC().Truncate(time.Millisecond)
	if !now.After(m.last) {
		now = m.last.Add(time.Millisecond)
	}
	m.last = now
	return now
}

func copyDoc(d Document) Document {
	d.Fields = d.Fields.Clone()
	return d
}

// ─── Files ────────────────────────────────────────────────────────────────────

// Upload stores data in bucket and sniffs its MIME type.
func (m *Memory) Upload(ctx context.Context, bucket, name string, data []byte) (*model.FileRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ref := model.FileRef{
		ID:        uuid.New().String(),
		Bucket:    bucket,
		Name:      name,
		MimeType:  http.DetectContentType(data),
		Size:      int64(len(data)),
		CreatedAt: m.now().UTC(),
	}
	buf := append([]byte(nil), data...)

	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.files[bucket]
	if !ok {
		b = make(map[string]memFile)
		m.files[bucket] = b
	}
	b[ref.ID] = memFile{ref: ref, data: buf}
	return &ref, nil
}

// Download returns a stored file and its bytes.
func (m *Memory) Download(ctx context.Context, bucket, id string) (*model.FileRef, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[bucket][id]
	if !ok {
		return nil, nil, ErrNotFound
	}
	ref := f.ref
	return &ref, append([]byte(nil), f.data...), nil
}

// ViewURL returns the public URL a stored file is served from.
func (m *Memory) ViewURL(bucket, id string) string {
	return FileViewURL(m.publicURL, bucket, id)
}
