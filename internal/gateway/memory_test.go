package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
)

func newMemory(t *testing.T) *Memory {
	t.Helper()
	auth.SetTestCost()
	return NewMemory(auth.NewSigner("test-secret", "test", time.Hour), "http://app.test/")
}

func TestMemoryAuthFlow(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)

	acc, err := m.CreateAccount(ctx, "Ann@Example.com", "password1", "S100")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", acc.Email)

	_, err = m.CreateAccount(ctx, "ann@example.com", "password2", "S101")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = m.CreateSession(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	s1, err := m.CreateSession(ctx, "ann@example.com", "password1")
	require.NoError(t, err)
	s2, err := m.CreateSession(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	got, err := m.GetAccount(ctx, s1.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)

	sessions, err := m.ListSessions(ctx, s1.Token)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	require.NoError(t, m.DeleteSession(ctx, s1.Token, s2.ID))
	_, err = m.GetAccount(ctx, s2.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	require.NoError(t, m.DeleteSession(ctx, s1.Token, CurrentSession))
	_, err = m.GetAccount(ctx, s1.Token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = m.GetAccount(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestMemoryDocuments(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)

	doc, err := m.Create(ctx, "bookings", "", Fields{"eventId": "e1", "userId": "u1"})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)

	_, err = m.Create(ctx, "bookings", doc.ID, Fields{})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = m.Create(ctx, "bookings", "", Fields{"eventId": "e1", "userId": "u2"})
	require.NoError(t, err)
	_, err = m.Create(ctx, "bookings", "", Fields{"eventId": "e2", "userId": "u1"})
	require.NoError(t, err)

	got, err := m.List(ctx, "bookings", Equal("eventId", "e1"))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = m.List(ctx, "bookings", Equal("eventId", "e1"), Equal("userId", "u2"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].Fields.String("userId"))

	got, err = m.List(ctx, "bookings", OrderDesc(FieldCreatedAt), Limit(2))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "e2", got[0].Fields.String("eventId"))

	updated, err := m.Update(ctx, "bookings", doc.ID, Fields{"status": "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "e1", updated.Fields.String("eventId"))
	assert.Equal(t, "confirmed", updated.Fields.String("status"))

	require.NoError(t, m.Delete(ctx, "bookings", doc.ID))
	_, err = m.Get(ctx, "bookings", doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "bookings", doc.ID), ErrNotFound)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	doc, err := m.Create(ctx, "users", "u1", Fields{"fullName": "Ann"})
	require.NoError(t, err)

	doc.Fields["fullName"] = "Mallory"
	got, err := m.Get(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Fields.String("fullName"))
}

func TestMemoryCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := newMemory(t)
	_, err := m.List(ctx, "events")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryFiles(t *testing.T) {
	ctx := context.Background()
	m := newMemory(t)
	png := []byte("\x89PNG\r\n\x1a\n0000")

	ref, err := m.Upload(ctx, "files", "poster.png", png)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ref.MimeType)
	assert.Equal(t, int64(len(png)), ref.Size)
	assert.Equal(t, "http://app.test/files/files/"+ref.ID+"/view", m.ViewURL("files", ref.ID))

	got, data, err := m.Download(ctx, "files", ref.ID)
	require.NoError(t, err)
	assert.Equal(t, ref.ID, got.ID)
	assert.Equal(t, png, data)

	_, _, err = m.Download(ctx, "files", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
