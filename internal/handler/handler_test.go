package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/campus-events/internal/auth"
	"github.com/Shivanand-hulikatti/campus-events/internal/gateway"
	"github.com/Shivanand-hulikatti/campus-events/internal/model"
	"github.com/Shivanand-hulikatti/campus-events/internal/regcount"
	"github.com/Shivanand-hulikatti/campus-events/internal/service"
	"github.com/Shivanand-hulikatti/campus-events/internal/session"
)

func newServer(t *testing.T, burst int) *httptest.Server {
	t.Helper()
	auth.SetTestCost()
	mem := gateway.NewMemory(auth.NewSigner("s", "test", time.Hour), "http://app.test")
	gw := gateway.New(mem, gateway.DefaultCollections())
	counts := regcount.New(mem, gw.Collections.Bookings)
	store := session.New(gw, counts, zerolog.Nop())
	svc := service.New(service.Deps{Gateway: gw, Session: store, Counts: counts, Log: zerolog.Nop()})
	t.Cleanup(svc.Events.Drain)

	h := New(svc, zerolog.Nop())
	srv := httptest.NewServer(h.Router(RouterConfig{CORSOrigins: []string{"*"}, AuthRPS: 0.001, AuthBurst: burst}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func signUp(t *testing.T, base string) model.User {
	t.Helper()
	resp, body := do(t, http.MethodPost, base+"/auth/sign-up", map[string]string{
		"email": "ann@example.com", "password": "password1", "student_id": "S100",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var u model.User
	require.NoError(t, json.Unmarshal(body, &u))
	return u
}

func createEvent(t *testing.T, base string, capacity string) model.Event {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{
		"title":       "Hack Night",
		"description": "Build things",
		"date":        "2026-11-02T18:00:00Z",
		"location":    "Main Hall",
		"capacity":    capacity,
		"ga_point":    "GA4",
	} {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("image", "poster.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\nrest"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(base+"/events", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var e model.Event
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestHealth(t *testing.T) {
	srv := newServer(t, 10)
	resp, body := do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestMeRequiresSignIn(t *testing.T) {
	srv := newServer(t, 10)
	resp, body := do(t, http.MethodGet, srv.URL+"/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "sign in required")
}

func TestSignUpValidationIs422(t *testing.T) {
	srv := newServer(t, 10)
	resp, body := do(t, http.MethodPost, srv.URL+"/auth/sign-up", map[string]string{"email": "bad"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var er model.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	assert.Contains(t, er.Fields, "email")
	assert.Equal(t, "password is required", er.Fields["password"])
}

func TestSignUpPasswordOverBcryptLimitIs422(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{"ascii", strings.Repeat("p", 73)},
		{"multibyte under rune limit", strings.Repeat("é", 40)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, 10)
			resp, body := do(t, http.MethodPost, srv.URL+"/auth/sign-up", map[string]string{
				"email": "ann@example.com", "password": tt.password, "student_id": "S100",
			})
			require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

			var er model.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &er))
			assert.Equal(t, "password must be at most 72 bytes", er.Fields["password"])
		})
	}
}

func TestUnknownFieldIs400(t *testing.T) {
	srv := newServer(t, 10)
	resp, _ := do(t, http.MethodPost, srv.URL+"/auth/sign-in", map[string]string{"email": "a@b.c", "pwd": "x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSignUpTwiceIs409(t *testing.T) {
	srv := newServer(t, 10)
	signUp(t, srv.URL)
	resp, body := do(t, http.MethodPost, srv.URL+"/auth/sign-up", map[string]string{
		"email": "ann@example.com", "password": "password1", "student_id": "S100",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "already exists")
}

func TestBadCredentialsIs401(t *testing.T) {
	srv := newServer(t, 10)
	signUp(t, srv.URL)
	resp, _ := do(t, http.MethodPost, srv.URL+"/auth/sign-in", map[string]string{
		"email": "ann@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEventRegistrationFlow(t *testing.T) {
	srv := newServer(t, 10)
	signUp(t, srv.URL)
	e := createEvent(t, srv.URL, "1")
	assert.Equal(t, model.GA4, e.GAPoint)

	resp, body := do(t, http.MethodPost, srv.URL+"/events/"+e.ID+"/register", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var b model.Booking
	require.NoError(t, json.Unmarshal(body, &b))

	resp, _ = do(t, http.MethodPost, srv.URL+"/events/"+e.ID+"/register", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/events/"+e.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var d service.EventDetails
	require.NoError(t, json.Unmarshal(body, &d))
	assert.Equal(t, 1, d.Registered)
	assert.Equal(t, 0, d.Remaining)
	assert.True(t, d.Full)
	assert.True(t, d.Booked)

	resp, body = do(t, http.MethodGet, srv.URL+"/me/bookings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cards []service.BookingCard
	require.NoError(t, json.Unmarshal(body, &cards))
	require.Len(t, cards, 1)
	assert.Equal(t, "Hack Night", cards[0].Booking.EventTitle)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/bookings/"+b.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, http.MethodGet, srv.URL+"/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var feed []service.EventCard
	require.NoError(t, json.Unmarshal(body, &feed))
	require.Len(t, feed, 1)
	assert.Equal(t, 0, feed[0].Registered)
	assert.True(t, feed[0].CountKnown)

	resp, body = do(t, http.MethodGet, srv.URL+"/events/registrations", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"`+e.ID+`":0}`, string(body))
}

func TestUnknownEventIs404(t *testing.T) {
	srv := newServer(t, 10)
	resp, _ := do(t, http.MethodGet, srv.URL+"/events/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateEventBadDateIs422(t *testing.T) {
	srv := newServer(t, 10)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("date", "next tuesday"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/events", mw.FormDataContentType(), &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestViewUploadedImage(t *testing.T) {
	srv := newServer(t, 10)
	signUp(t, srv.URL)
	e := createEvent(t, srv.URL, "5")

	path := strings.TrimPrefix(e.Image, "http://app.test")
	resp, body := do(t, http.MethodGet, srv.URL+path, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\nrest"), body)
}

func TestScoringRoutes(t *testing.T) {
	srv := newServer(t, 10)
	u := signUp(t, srv.URL)
	e := createEvent(t, srv.URL, "5")
	resp, _ := do(t, http.MethodPost, srv.URL+"/events/"+e.ID+"/register", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/scoring/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var events []service.ScoringEvent
	require.NoError(t, json.Unmarshal(body, &events))
	require.Len(t, events, 1)
	require.Len(t, events[0].Participants, 1)

	form := map[string]any{
		"account_id": u.AccountID,
		"student_id": u.StudentID,
		"ga":         []string{"3", "3", "2", "0", "0", "1", "0", "0"},
		"level":      "2",
	}
	resp, body = do(t, http.MethodPost, srv.URL+"/events/"+e.ID+"/scores", form)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var s model.ActivityScore
	require.NoError(t, json.Unmarshal(body, &s))
	assert.Equal(t, 9, s.TotalScore)

	form["ga"] = []string{"9"}
	resp, body = do(t, http.MethodPut, srv.URL+"/scores/"+s.ID, form)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, string(body))

	resp, body = do(t, http.MethodGet, srv.URL+"/me/scores", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ps service.ProfileScores
	require.NoError(t, json.Unmarshal(body, &ps))
	assert.Equal(t, 1, ps.Summary.TotalEvents)
	assert.Equal(t, 9, ps.Summary.TotalScore)
}

func TestSignOutThenMe(t *testing.T) {
	srv := newServer(t, 10)
	signUp(t, srv.URL)

	resp, _ := do(t, http.MethodPost, srv.URL+"/auth/sign-out", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, srv.URL+"/me", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthRateLimit(t *testing.T) {
	srv := newServer(t, 2)
	for i := 0; i < 2; i++ {
		resp, _ := do(t, http.MethodPost, srv.URL+"/auth/sign-out", nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
	resp, _ := do(t, http.MethodPost, srv.URL+"/auth/sign-out", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t, 10)
	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://ui.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}
