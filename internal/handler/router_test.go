package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"dropskills/internal/config"
	"dropskills/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const adminEmail = "boss@dropskills.fr"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testServer struct {
	r   *gin.Engine
	db  *gorm.DB
	cfg config.Config
}

// llmStub answers every chat completion with reply, streamed word by word
// when the request asks for it.
func llmStub(t *testing.T, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Stream bool `json:"stream"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Stream {
			for _, word := range strings.SplitAfter(reply, " ") {
				chunk, _ := json.Marshal(gin.H{"choices": []gin.H{{"delta": gin.H{"content": word}}}})
				fmt.Fprintf(w, "data: %s\n\n", chunk)
			}
			fmt.Fprint(w, "data: [DONE]\n\n")
			return
		}
		json.NewEncoder(w).Encode(gin.H{"choices": []gin.H{{"message": gin.H{"content": reply}}}})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, llmReply string) *testServer {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))

	cfg := &config.Config{
		Server: config.ServerConfig{CORSOrigins: []string{"*"}},
		LLM:    config.LLMConfig{Model: "test-model", TimeoutSeconds: 5},
		Auth: config.AuthConfig{
			JWTSecret: "test-secret", TokenTTLHours: 24, ResetTokenTTLMin: 30,
			AdminEmails: []string{adminEmail}, ExposeResetToken: true,
		},
	}
	if llmReply != "" {
		cfg.LLM.BaseURL = llmStub(t, llmReply).URL
		cfg.LLM.APIKey = "test-key"
	}
	r, err := NewRouter(cfg, db)
	require.NoError(t, err)
	return &testServer{r: r, db: db, cfg: *cfg}
}

// restart rebuilds the router on the same database after edit changes the
// config, as a redeploy would.
func (s *testServer) restart(t *testing.T, edit func(*config.Config)) *testServer {
	t.Helper()
	cfg := s.cfg
	edit(&cfg)
	r, err := NewRouter(&cfg, s.db)
	require.NoError(t, err)
	return &testServer{r: r, db: s.db, cfg: cfg}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

// signup creates an account and returns its token.
func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	w := s.do("POST", "/api/auth/signup", "", gin.H{"email": email, "password": "Secret123", "confirm_password": "Secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, "")
	w := s.do("GET", "/healthz", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["llm"])
	assert.Equal(t, false, body["storage"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = s.do("GET", "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dropskills_http_requests_total")
}

func TestSignupLoginMe(t *testing.T) {
	s := newTestServer(t, "")

	w := s.do("POST", "/api/auth/signup", "", gin.H{"email": "weak@client.fr", "password": "abc", "confirm_password": "abc"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotEmpty(t, decode[map[string]any](t, w)["violations"])

	w = s.do("POST", "/api/auth/signup", "", gin.H{"email": "ana@client.fr", "password": "Secret123", "confirm_password": "Secret124"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, []any{"Les mots de passe ne correspondent pas"}, decode[map[string]any](t, w)["violations"])

	for _, body := range []gin.H{
		{"email": "ana@client.fr"},
		{"email": "ana@client.fr", "password": "Secret123"},
	} {
		w = s.do("POST", "/api/auth/signup", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	w = s.do("POST", "/api/auth/signup", "", gin.H{"email": "Ana <ana@client.fr>", "password": "Secret123", "confirm_password": "Secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	token := s.signup(t, "ana@client.fr")
	w = s.do("POST", "/api/auth/signup", "", gin.H{"email": "ana@client.fr", "password": "Secret123", "confirm_password": "Secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do("POST", "/api/auth/login", "", gin.H{"email": "ana@client.fr", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do("POST", "/api/auth/login", "", gin.H{"email": "ANA@client.fr", "password": "Secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[model.AuthResponse](t, w)
	assert.False(t, login.User.IsAdmin)

	w = s.do("GET", "/api/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[model.UserResponse](t, w)
	assert.Equal(t, "ana@client.fr", me.Email)
	assert.Equal(t, "ana", me.Name)

	assert.Equal(t, http.StatusUnauthorized, s.do("GET", "/api/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do("GET", "/api/me", "garbage", nil).Code)
}

func TestForgotAndResetPassword(t *testing.T) {
	s := newTestServer(t, "")
	s.signup(t, "leo@client.fr")

	w := s.do("POST", "/api/auth/forgot-password", "", gin.H{"email": "ghost@client.fr"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode[map[string]any](t, w), "reset_token")

	w = s.do("POST", "/api/auth/forgot-password", "", gin.H{"email": "leo@client.fr"})
	require.Equal(t, http.StatusOK, w.Code)
	token, _ := decode[map[string]any](t, w)["reset_token"].(string)
	require.NotEmpty(t, token)

	w = s.do("POST", "/api/auth/reset-password", "", gin.H{"token": "bad", "password": "Newpass123", "confirm_password": "Newpass123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do("POST", "/api/auth/reset-password", "", gin.H{"token": token, "password": "Newpass123"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "confirmation is required")
	w = s.do("POST", "/api/auth/reset-password", "", gin.H{"token": token, "password": "Newpass123", "confirm_password": "Newpass123"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do("POST", "/api/auth/login", "", gin.H{"email": "leo@client.fr", "password": "Newpass123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

// captureLogs routes the default slog logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestResetTokenReachesLogWhenNotExposed(t *testing.T) {
	s := newTestServer(t, "")
	s.signup(t, "noa@client.fr")
	s = s.restart(t, func(c *config.Config) { c.Auth.ExposeResetToken = false })
	logs := captureLogs(t)

	w := s.do("POST", "/api/auth/forgot-password", "", gin.H{"email": "noa@client.fr"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, decode[map[string]any](t, w), "reset_token")

	var token string
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		var entry map[string]any
		if json.Unmarshal([]byte(line), &entry) == nil && entry["msg"] == "auth.reset.requested" {
			assert.Equal(t, "noa@client.fr", entry["email"])
			token, _ = entry["reset_token"].(string)
		}
	}
	require.Len(t, token, 64)

	w = s.do("POST", "/api/auth/reset-password", "", gin.H{"token": token, "password": "Newpass123", "confirm_password": "Newpass123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAccountEndpoints(t *testing.T) {
	s := newTestServer(t, "")
	token := s.signup(t, "mia@client.fr")

	w := s.do("PUT", "/api/account/profile", token, gin.H{"name": "Mia", "company": "Studio Mia"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Studio Mia", decode[model.User](t, w).Company)

	w = s.do("GET", "/api/account/preferences", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fr", decode[model.Preferences](t, w).Language)

	w = s.do("PUT", "/api/account/preferences", token, gin.H{"language": "xx"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("PUT", "/api/account/password", token, gin.H{"current_password": "Secret123", "new_password": "Better456", "confirm_password": "Better456"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do("PUT", "/api/account/password", token, gin.H{"current_password": "Secret123", "new_password": "Better789", "confirm_password": "Better789"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do("PUT", "/api/account/password", token, gin.H{"current_password": "Better456", "new_password": "Better789"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	s := newTestServer(t, "")
	user := s.signup(t, "user@client.fr")
	admin := s.signup(t, adminEmail)

	w := s.do("GET", "/api/admin/mentors", user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do("POST", "/api/admin/mentors", user, gin.H{"name": "X"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do("GET", "/api/me", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[model.UserResponse](t, w).IsAdmin)

	w = s.do("POST", "/api/admin/mentors", admin, gin.H{"name": "Coach Ads", "is_active": true, "expertise": []string{"Meta Ads"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	m := decode[model.AIMentor](t, w)
	assert.Contains(t, m.SystemPrompt, "Meta Ads")

	w = s.do("GET", "/api/admin/mentors", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]model.AIMentor](t, w)["mentors"], 1)

	w = s.do("GET", "/api/catalog/mentors", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]model.AIMentor](t, w)["mentors"], 1)

	w = s.do("DELETE", "/api/admin/mentors/"+m.ID, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do("GET", "/api/admin/mentors/"+m.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminAllowListRevocation(t *testing.T) {
	s := newTestServer(t, "")
	admin := s.signup(t, adminEmail)
	require.Equal(t, http.StatusOK, s.do("GET", "/api/admin/tools", admin, nil).Code)

	s = s.restart(t, func(c *config.Config) {
		c.Auth.AdminEmails = nil
		c.Auth.TokenTTLHours = 1
	})
	w := s.do("GET", "/api/admin/tools", admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do("GET", "/api/me", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[model.UserResponse](t, w).IsAdmin)

	w = s.do("POST", "/api/auth/login", "", gin.H{"email": adminEmail, "password": "Secret123"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[model.AuthResponse](t, w)
	assert.False(t, login.User.IsAdmin)
	w = s.do("GET", "/api/me", login.Token, nil)
	renewed := w.Header().Get("X-New-Token")
	require.NotEmpty(t, renewed, "one-hour tokens renew on use")
	assert.Equal(t, http.StatusForbidden, s.do("GET", "/api/admin/tools", renewed, nil).Code)
}

type requestList struct {
	Requests []model.ProductRequest   `json:"requests"`
	Stats    model.ProductRequestStats `json:"stats"`
}

func TestProductRequestBoard(t *testing.T) {
	s := newTestServer(t, "")
	user := s.signup(t, "zoe@client.fr")
	other := s.signup(t, "tom@client.fr")
	admin := s.signup(t, adminEmail)

	w := s.do("POST", "/api/product-requests", user, gin.H{"title": "Formation Pinterest"})
	require.Equal(t, http.StatusCreated, w.Code)
	req := decode[model.ProductRequest](t, w)
	assert.Equal(t, "zoe@client.fr", req.UserEmail)

	w = s.do("POST", "/api/product-requests/"+req.ID+"/vote", other, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[model.ProductRequest](t, w).VotesCount)
	w = s.do("POST", "/api/product-requests/"+req.ID+"/vote", other, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do("PUT", "/api/admin/product-requests/"+req.ID, admin, gin.H{"status": "completed"})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do("PUT", "/api/admin/product-requests/"+req.ID, admin, gin.H{"status": "shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("GET", "/api/product-requests?status=completed", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[requestList](t, w)
	require.Len(t, list.Requests, 1)
	assert.Equal(t, 1, list.Stats.Completed)
	assert.Equal(t, 1, list.Stats.TotalVotes)

	w = s.do("DELETE", "/api/admin/product-requests/"+req.ID, admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
