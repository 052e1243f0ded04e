package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/muffakiribnhamid/Scholarly/internal/docstore"
	"github.com/muffakiribnhamid/Scholarly/internal/flags"
	"github.com/muffakiribnhamid/Scholarly/internal/identity"
	"github.com/muffakiribnhamid/Scholarly/internal/models"
)

type stubUser struct {
	uid         string
	password    string
	displayName string
}

// stubProvider is an in-memory identity.Provider. Tokens are "token-<uid>".
type stubProvider struct {
	users map[string]*stubUser // by email
}

func newStubProvider() *stubProvider {
	return &stubProvider{users: make(map[string]*stubUser)}
}

func (p *stubProvider) CurrentUser(_ context.Context, idToken string) (*identity.Identity, error) {
	uid := strings.TrimPrefix(idToken, "token-")
	if uid == idToken || uid == "" {
		return nil, identity.ErrUnauthenticated
	}
	for email, u := range p.users {
		if u.uid == uid {
			return &identity.Identity{UID: uid, Email: email, DisplayName: u.displayName}, nil
		}
	}
	return nil, identity.ErrUnauthenticated
}

func (p *stubProvider) SignUp(_ context.Context, email, password, displayName string) (*identity.Identity, error) {
	if _, ok := p.users[email]; ok {
		return nil, identity.ErrEmailInUse
	}
	if len(password) < 6 {
		return nil, identity.ErrWeakPassword
	}
	uid := fmt.Sprintf("uid-%d", len(p.users)+1)
	p.users[email] = &stubUser{uid: uid, password: password, displayName: displayName}
	return &identity.Identity{UID: uid, Email: email, DisplayName: displayName}, nil
}

func (p *stubProvider) SignIn(_ context.Context, email, password string) (*identity.Identity, error) {
	u, ok := p.users[email]
	if !ok || u.password != password {
		return nil, identity.ErrInvalidCredentials
	}
	return &identity.Identity{
		UID:         u.uid,
		Email:       email,
		DisplayName: u.displayName,
		IDToken:     "token-" + u.uid,
	}, nil
}

func (p *stubProvider) SignOut(context.Context, string) error { return nil }

func (p *stubProvider) UpdateDisplayName(_ context.Context, uid, name string) error {
	for _, u := range p.users {
		if u.uid == uid {
			u.displayName = name
			return nil
		}
	}
	return errors.New("no such user")
}

type stubCompleter struct {
	reply string
	err   error
}

func (s stubCompleter) Complete(context.Context, string) (string, error) { return s.reply, s.err }

type stubQuotes struct{ quote string }

func (s stubQuotes) Random(context.Context) string { return s.quote }

func newTestServer(t *testing.T) (*Server, *docstore.Memory, *stubProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	flagStore, err := flags.Open(filepath.Join(t.TempDir(), "flags.json"))
	require.NoError(t, err)

	store := docstore.NewMemory()
	ids := newStubProvider()
	srv := New(store, ids, stubCompleter{reply: "try spaced repetition"}, stubQuotes{quote: "keep going"}, flagStore, zap.NewNop())
	return srv, store, ids
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// registerAndSetup walks a fresh user through account creation and student
// setup and returns their bearer token.
func registerAndSetup(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "a@b.com", "password": "secret1", "displayName": "Asha",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[authResponse](t, rec)
	token := resp.User.IDToken
	require.NotEmpty(t, token)

	rec = doJSON(t, srv, http.MethodPost, "/api/setup", token, gin.H{
		"school": "X", "grade": "10th Grade", "country": "India", "subjects": []string{"Math"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return token
}

func TestRegisterSetupFlow(t *testing.T) {
	srv, store, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "a@b.com", "password": "secret1", "displayName": "Asha",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[authResponse](t, rec)
	assert.Equal(t, "/setup-student", resp.Redirect)
	assert.Equal(t, "a@b.com", resp.User.Email)
	token := resp.User.IDToken

	rec = doJSON(t, srv, http.MethodPost, "/api/setup", token, gin.H{
		"school": "X", "grade": "10th Grade", "country": "India", "subjects": []string{"Math"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	setup := decode[setupResponse](t, rec)
	assert.Equal(t, "/dashboard", setup.Redirect)

	var profile models.UserProfile
	found, err := store.Get(context.Background(), usersCollection, resp.User.UID, &profile)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "X", profile.School)
	assert.Equal(t, "10th Grade", profile.Grade)
	assert.Equal(t, "India", profile.Country)
	assert.Equal(t, []string{"Math"}, profile.Subjects)
	assert.NotEmpty(t, profile.CreatedAt)
	assert.NotEmpty(t, profile.UpdatedAt)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	srv, _, _ := newTestServer(t)
	registerAndSetup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "a@b.com", "password": "another1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterWeakPassword(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "a@b.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetupRejectsIncompleteForm(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", gin.H{
		"email": "a@b.com", "password": "secret1",
	})
	token := decode[authResponse](t, rec).User.IDToken

	rec = doJSON(t, srv, http.MethodPost, "/api/setup", token, gin.H{
		"school": "X", "grade": "10th Grade", "country": "India", "subjects": []string{},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please fill in all fields and select at least one subject",
		decode[errorResponse](t, rec).Error)
}

func TestLoginWrongPassword(t *testing.T) {
	srv, _, _ := newTestServer(t)
	registerAndSetup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "a@b.com", "password": "wrong99",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/tasks", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", "token-nobody", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTaskLifecycle(t *testing.T) {
	srv, store, _ := newTestServer(t)
	token := registerAndSetup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", token, gin.H{
		"title": "Read chapter 4", "subject": "Math", "priority": "high",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[models.Task](t, rec)
	assert.NotZero(t, task.ID)
	assert.Equal(t, models.StatusPending, task.Status)

	rec = doJSON(t, srv, http.MethodGet, "/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[tasksResponse](t, rec)
	require.Len(t, list.Tasks, 1)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	after := decode[tasksResponse](t, rec)
	assert.Empty(t, after.Tasks)
	require.Len(t, after.Completed, 1)
	assert.Equal(t, task.ID, after.Completed[0].TaskID)

	var profile models.UserProfile
	_, err := store.Get(context.Background(), usersCollection, "uid-1", &profile)
	require.NoError(t, err)
	assert.Equal(t, int64(1), profile.TotalTasksCompleted)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerAndSetup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", token, gin.H{"subject": "Math"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskSearch(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerAndSetup(t, srv)

	for _, title := range []string{"Read physics notes", "Finish math homework"} {
		rec := doJSON(t, srv, http.MethodPost, "/api/tasks", token, gin.H{"title": title})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodGet, "/api/tasks/search?q=physics+notes", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[searchResponse](t, rec)
	require.NotEmpty(t, res.Matches)
	assert.Equal(t, "Read physics notes", res.Matches[0].Task.Title)
}

func TestTargetLifecycle(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerAndSetup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/targets", token, gin.H{"text": "  revise algebra  "})
	require.Equal(t, http.StatusCreated, rec.Code)
	target := decode[models.Target](t, rec)
	assert.Equal(t, "revise algebra", target.Text)
	assert.False(t, target.Completed)

	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/targets/%d/toggle", target.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	toggled := decode[targetsResponse](t, rec)
	require.Len(t, toggled.Targets, 1)
	assert.True(t, toggled.Targets[0].Completed)
	assert.Equal(t, 1, toggled.Completed)

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/api/targets/%d", target.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[targetsResponse](t, rec).Targets)
}

func TestSettingsDefaultsAndSave(t *testing.T) {
	srv, _, ids := newTestServer(t)
	token := registerAndSetup(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/settings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	settings := decode[models.Settings](t, rec)
	assert.True(t, settings.Notifications.Email)
	assert.Equal(t, models.DefaultFocusTime, settings.Preferences.FocusTime)
	assert.Equal(t, models.DefaultDailyGoal, settings.Preferences.DailyGoal)

	dark := true
	focus := 30
	rec = doJSON(t, srv, http.MethodPut, "/api/settings", token, gin.H{
		"displayName": "Asha R",
		"preferences": models.Preferences{DarkMode: &dark, FocusTime: &focus},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/settings", token, nil)
	saved := decode[models.Settings](t, rec)
	assert.True(t, saved.Preferences.DarkMode)
	assert.Equal(t, 30, saved.Preferences.FocusTime)
	// Fields the update omitted keep their defaults.
	assert.Equal(t, models.DefaultBreakTime, saved.Preferences.BreakTime)
	assert.Equal(t, "Asha R", saved.DisplayName)
	assert.Equal(t, "Asha R", ids.users["a@b.com"].displayName)
}

func TestStatsAfterActivity(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerAndSetup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/tasks", token, gin.H{"title": "essay draft"})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[models.Task](t, rec)
	rec = doJSON(t, srv, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete", task.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/focus-sessions", token, gin.H{"duration": 25})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[statsResponse](t, rec)
	require.Len(t, stats.Weekly, 1)
	assert.Equal(t, 1, stats.Weekly[0].Completed)
	require.Len(t, stats.DailyFocus, 1)
	assert.Equal(t, 25, stats.DailyFocus[0].Minutes)
}

func TestFocusSessionDurationBounds(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerAndSetup(t, srv)

	for _, d := range []int{0, 61} {
		rec := doJSON(t, srv, http.MethodPost, "/api/focus-sessions", token, gin.H{"duration": d})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "duration %d", d)
	}
}

func TestProfileIncludesQuote(t *testing.T) {
	srv, _, _ := newTestServer(t)
	token := registerAndSetup(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[profileResponse](t, rec)
	assert.Equal(t, "X", profile.School)
	assert.Equal(t, "keep going", profile.Quote)
}

func TestAIChatFallsBackOnFailure(t *testing.T) {
	srv, _, _ := newTestServer(t)
	srv.assistant = stubCompleter{err: errors.New("model unavailable")}
	token := registerAndSetup(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/api/ai/chat", token, gin.H{"message": "help me plan"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Sorry, I encountered an error. Please try again.",
		decode[chatResponse](t, rec).Reply)
}

func TestGateProgression(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/gate?current=/", "", nil)
	assert.Equal(t, "/", decode[gateResponse](t, rec).Next)

	rec = doJSON(t, srv, http.MethodPost, "/api/onboard", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/gate?current=/", "", nil)
	assert.Equal(t, "/create-account", decode[gateResponse](t, rec).Next)

	token := registerAndSetup(t, srv)

	rec = doJSON(t, srv, http.MethodGet, "/api/gate?current=/setup-student", token, nil)
	assert.Equal(t, "/dashboard", decode[gateResponse](t, rec).Next)

	// Logout clears the session flags; gated screens bounce to login.
	rec = doJSON(t, srv, http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/gate?current=/dashboard", "", nil)
	assert.Equal(t, "/login", decode[gateResponse](t, rec).Next)
}

func TestHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[healthResponse](t, rec).Status)
}
