package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/regcount"
)

type fixture struct {
	mem    *gateway.Memory
	gw     *gateway.Gateway
	counts *regcount.Cache
	store  *Store
}

func setup(t *testing.T) fixture {
	t.Helper()
	auth.SetTestCost()
	mem := gateway.NewMemory(auth.NewSigner("s", "test", time.Hour), "http://app.test")
	gw := gateway.New(mem, gateway.DefaultCollections())
	counts := regcount.New(mem, gw.Collections.Bookings)
	return fixture{mem: mem, gw: gw, counts: counts, store: New(gw, counts, zerolog.Nop())}
}

// signUp creates an account plus its users document.
func (f fixture) signUp(t *testing.T, email, studentID string) *model.Account {
	t.Helper()
	ctx := context.Background()
	acc, err := f.mem.CreateAccount(ctx, email, "password1", studentID)
	require.NoError(t, err)
	_, err = f.mem.Create(ctx, f.gw.Collections.Users, "", gateway.UserFields(model.User{
		AccountID: acc.ID,
		Email:     email,
		StudentID: studentID,
	}))
	require.NoError(t, err)
	return acc
}

func TestCurrentWithoutTokenIsNil(t *testing.T) {
	f := setup(t)
	assert.Nil(t, f.store.Current(context.Background()))
	assert.Nil(t, f.store.User())
}

func TestSignInAndCurrent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	acc := f.signUp(t, "ann@example.com", "S100")

	user, err := f.store.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, user.AccountID)
	assert.NotNil(t, f.store.User())
	assert.NotEmpty(t, f.store.Token())

	cur := f.store.Current(ctx)
	require.NotNil(t, cur)
	assert.Equal(t, "S100", cur.StudentID)
}

func TestSignInBadCredentials(t *testing.T) {
	f := setup(t)
	f.signUp(t, "ann@example.com", "S100")

	_, err := f.store.SignIn(context.Background(), "ann@example.com", "nope")
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
	assert.Nil(t, f.store.User())
}

func TestSignInWithoutProfile(t *testing.T) {
	f := setup(t)
	_, err := f.mem.CreateAccount(context.Background(), "bob@example.com", "password1", "S2")
	require.NoError(t, err)

	_, err = f.store.SignIn(context.Background(), "bob@example.com", "password1")
	assert.ErrorIs(t, err, ErrNoProfile)
}

func TestSignInReplacesPreviousSessions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.signUp(t, "ann@example.com", "S100")

	_, err := f.store.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)
	first := f.store.Token()

	_, err = f.store.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	_, err = f.mem.GetAccount(ctx, first)
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
	sessions, err := f.mem.ListSessions(ctx, f.store.Token())
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestCurrentFailsOpenOnRevokedSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.signUp(t, "ann@example.com", "S100")
	_, err := f.store.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, f.mem.DeleteSession(ctx, f.store.Token(), gateway.CurrentSession))

	assert.Nil(t, f.store.Current(ctx))
	assert.Nil(t, f.store.User())
}

func TestClearEmptiesCountsAndNotifies(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.signUp(t, "ann@example.com", "S100")
	_, err := f.store.SignIn(ctx, "ann@example.com", "password1")
	require.NoError(t, err)

	_, err = f.mem.Create(ctx, f.gw.Collections.Bookings, "", gateway.Fields{gateway.FieldEventID: "e1"})
	require.NoError(t, err)
	f.counts.RefreshAll(ctx, []string{"e1", "e2", "e3"})
	require.Len(t, f.counts.Snapshot(), 3)

	var seen []*model.User
	f.store.Subscribe(func(u *model.User) { seen = append(seen, u) })

	token := f.store.Token()
	require.NoError(t, f.store.Clear(ctx))

	assert.Empty(t, f.counts.Snapshot())
	assert.Nil(t, f.store.User())
	assert.Empty(t, f.store.Token())
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0])

	_, err = f.mem.GetAccount(ctx, token)
	assert.ErrorIs(t, err, gateway.ErrUnauthorized)
}

// brokenAuth fails every remote call.
type brokenAuth struct{ gateway.Auth }

func (brokenAuth) DeleteSession(context.Context, string, string) error {
	return errors.New("network down")
}

func TestClearWhenRemoteFails(t *testing.T) {
	f := setup(t)
	f.store.auth = brokenAuth{}
	f.store.SetToken("tok")
	f.store.Set(&model.User{ID: "u1"})
	f.counts.RefreshAll(context.Background(), []string{"e1"})

	err := f.store.Clear(context.Background())
	assert.Error(t, err)
	assert.Empty(t, f.counts.Snapshot())
	assert.Nil(t, f.store.User())
	assert.Empty(t, f.store.Token())
}

func TestSubscribeOrderAndUnsubscribe(t *testing.T) {
	f := setup(t)
	var order []string
	f.store.Subscribe(func(*model.User) { order = append(order, "a") })
	unsub := f.store.Subscribe(func(*model.User) { order = append(order, "b") })
	f.store.Subscribe(func(*model.User) { order = append(order, "c") })

	f.store.Set(&model.User{ID: "u1"})
	assert.Equal(t, []string{"a", "b", "c"}, order)

	unsub()
	order = nil
	f.store.Set(nil)
	assert.Equal(t, []string{"a", "c"}, order)
}
