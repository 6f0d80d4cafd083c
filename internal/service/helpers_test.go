package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"dropskills/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	u, err := NewAuthService(db, time.Hour).Signup(context.Background(), model.SignupRequest{
		Email: email, Password: "Secret123", ConfirmPassword: "Secret123",
	})
	require.NoError(t, err)
	return u
}

// fakeLLM is an OpenAI-compatible chat completions endpoint. reply picks
// the answer from the last user message.
type fakeLLM struct {
	srv   *httptest.Server
	calls atomic.Int32

	mu       sync.Mutex
	reply    func(user string) string
	status   int
	requests []map[string]any
}

func newFakeLLM(t *testing.T, reply func(user string) string) *fakeLLM {
	t.Helper()
	f := &fakeLLM{reply: reply, status: http.StatusOK}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeLLM) serve(w http.ResponseWriter, r *http.Request) {
	f.calls.Add(1)
	var body struct {
		Stream   bool `json:"stream"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	var raw map[string]any
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&raw); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, _ := json.Marshal(raw)
	_ = json.Unmarshal(b, &body)

	f.mu.Lock()
	f.requests = append(f.requests, raw)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, "boom", status)
		return
	}
	user := ""
	if n := len(body.Messages); n > 0 {
		user = body.Messages[n-1].Content
	}
	content := reply(user)

	if body.Stream {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, word := range strings.SplitAfter(content, " ") {
			chunk, _ := json.Marshal(map[string]any{
				"choices": []any{map[string]any{"delta": map[string]string{"content": word}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []any{map[string]any{"message": map[string]string{"content": content}}},
	})
}

func (f *fakeLLM) setStatus(code int) {
	f.mu.Lock()
	f.status = code
	f.mu.Unlock()
}

func (f *fakeLLM) lastRequest() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return nil
	}
	return f.requests[len(f.requests)-1]
}

func (f *fakeLLM) ai() *AIService {
	return NewAIService(f.srv.URL, "test-key", "test-model", 5*time.Second)
}

func constReply(s string) func(string) string {
	return func(string) string { return s }
}
