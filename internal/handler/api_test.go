package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dropskills/internal/export"
	"dropskills/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const calendarReply = `{
  "strategy": "Preuve sociale",
  "pillars": ["Éducation"],
  "posts": [
    {"date": "2026-03-02", "week": 1, "platform": "Instagram", "format": "carrousel", "pillar": "Éducation", "title": "5 erreurs, vraiment", "caption": "..."},
    {"date": "2026-03-12", "week": 2, "platform": "LinkedIn", "format": "post", "pillar": "Éducation", "title": "Mon parcours", "caption": "..."}
  ]
}`

var contentForm = gin.H{
	"niche": "fitness", "targetAudience": "mamans actives", "platforms": []string{"Instagram", "LinkedIn"},
	"postsPerWeek": 2, "weeks": 2, "contentPillars": []string{"Éducation"}, "tone": "motivant",
}

type calendarViews struct {
	Posts  []export.CalendarPost `json:"posts"`
	Counts export.Counts         `json:"counts"`
}

func TestGenerateContentAndExport(t *testing.T) {
	s := newTestServer(t, calendarReply)
	token := s.signup(t, "ines@client.fr")

	w := s.do("POST", "/api/ai/content/generate", token, gin.H{"niche": "fitness"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	invalid := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, invalid["step"])
	assert.Contains(t, invalid["fields"], "targetAudience")

	w = s.do("POST", "/api/ai/nope/generate", token, contentForm)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("POST", "/api/ai/content/generate", token, contentForm)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	gen := decode[generationView](t, w)
	assert.Equal(t, "content", gen.Kind)
	require.Greater(t, len(gen.ID), 8)

	w = s.do("GET", "/api/ai/generations/"+gen.ID+"/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="calendrier-`+gen.ID[:8]+`.csv"`, w.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSuffix(w.Body.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], `"5 erreurs, vraiment"`)

	w = s.do("GET", "/api/ai/generations/"+gen.ID+"/export?format=xlsx", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, 1, f.SheetCount)

	w = s.do("GET", "/api/ai/generations/"+gen.ID+"/export?format=pdf", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("GET", "/api/ai/generations/"+gen.ID+"/calendar", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	grid := decode[export.MonthView](t, w)
	assert.Equal(t, 2026, grid.Year)
	assert.Equal(t, 3, grid.Month)
	assert.Len(t, grid.Weeks, 5)
	assert.Equal(t, 1, grid.Weeks[0][0].Day, "March 2026 starts on a Sunday")
	assert.Len(t, grid.Weeks[0][1].Posts, 1)

	w = s.do("GET", "/api/ai/generations/"+gen.ID+"/calendar?year=2026&month=13", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("GET", "/api/ai/generations/"+gen.ID+"/views?platform=instagram", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	views := decode[calendarViews](t, w)
	require.Len(t, views.Posts, 1)
	assert.Equal(t, 1, views.Counts.ByPlatform["Instagram"])

	w = s.do("GET", "/api/ai/generations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]generationView](t, w)["generations"], 1)

	other := s.signup(t, "other@client.fr")
	w = s.do("GET", "/api/ai/generations/"+gen.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("GET", "/api/wizards/content/draft", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mamans actives")
}

func TestGenerateWithoutProvider(t *testing.T) {
	s := newTestServer(t, "")
	token := s.signup(t, "noai@client.fr")

	w := s.do("POST", "/api/ai/content/generate", token, contentForm)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do("GET", "/api/ideas/trending", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string][]model.Idea](t, w)["ideas"])
}

func TestGenerateIdeasEndpoint(t *testing.T) {
	s := newTestServer(t, `{"ideas": [{"title": "Kit Canva"}, {"title": "Ebook Pinterest"}]}`)
	token := s.signup(t, "idea@client.fr")

	w := s.do("POST", "/api/ideas/generate", token, gin.H{"niche": "design", "count": 1})
	require.Equal(t, http.StatusOK, w.Code)
	ideas := decode[map[string][]model.Idea](t, w)["ideas"]
	require.Len(t, ideas, 1)
	assert.Equal(t, "Kit Canva", ideas[0].Title)

	w = s.do("POST", "/api/ideas/generate", token, gin.H{"niche": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWizardEndpoints(t *testing.T) {
	s := newTestServer(t, "")
	token := s.signup(t, "wiz@client.fr")

	w := s.do("GET", "/api/wizards", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string][]string](t, w)["kinds"], "usp")

	w = s.do("GET", "/api/wizards/usp", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dropskills_usp_form_data")

	w = s.do("POST", "/api/wizards/usp/validate", token, gin.H{"step": 1, "data": gin.H{"productName": "A", "productDescription": "B"}})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[map[string]any](t, w)
	assert.Equal(t, true, res["valid"])
	assert.EqualValues(t, 2, res["next_step"])

	w = s.do("POST", "/api/wizards/usp/validate", token, gin.H{"step": 2, "data": gin.H{}})
	require.Equal(t, http.StatusOK, w.Code)
	res = decode[map[string]any](t, w)
	assert.Equal(t, false, res["valid"])
	assert.EqualValues(t, 2, res["next_step"])
	assert.Contains(t, res["errors"], "painPoints")

	w = s.do("POST", "/api/wizards/usp/validate", token, gin.H{"step": 4, "data": gin.H{"tone": "amical"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode[map[string]any](t, w)["next_step"])

	w = s.do("POST", "/api/wizards/usp/validate", token, gin.H{"step": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("GET", "/api/wizards/usp/draft", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do("PUT", "/api/wizards/usp/draft", token, `{"productName": "Notion"}`)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do("PUT", "/api/wizards/usp/draft", token, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do("GET", "/api/wizards/usp/draft", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Notion")

	w = s.do("GET", "/api/wizards/usp/prefill", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Notion")

	w = s.do("DELETE", "/api/wizards/usp/draft", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do("GET", "/api/wizards/icp/draft", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do("GET", "/api/wizards/horoscope", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVaultEndpoints(t *testing.T) {
	s := newTestServer(t, "")
	token := s.signup(t, "vault@client.fr")

	w := s.do("GET", "/api/vault/items", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decode[map[string][]model.VaultItem](t, w)["items"]
	require.NotEmpty(t, items)

	w = s.do("GET", "/api/vault/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	before := decode[model.VaultStats](t, w)
	assert.Equal(t, len(items), before.Count)

	target := items[0]
	w = s.do("POST", "/api/vault/items/"+target.ID+"/favorite", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, !target.IsFavorite, decode[model.VaultItem](t, w).IsFavorite)

	w = s.do("GET", "/api/vault/stats", token, nil)
	after := decode[model.VaultStats](t, w)
	assert.Equal(t, before.Count, after.Count)
	if target.IsFavorite {
		assert.Equal(t, before.Favorites-1, after.Favorites)
	} else {
		assert.Equal(t, before.Favorites+1, after.Favorites)
	}

	w = s.do("GET", "/api/vault/items?folder=Guides", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, it := range decode[map[string][]model.VaultItem](t, w)["items"] {
		assert.Equal(t, "Guides", it.Folder)
	}

	w = s.do("GET", "/api/vault/folders", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[map[string][]model.VaultFolder](t, w)["folders"])

	other := s.signup(t, "intrus@client.fr")
	w = s.do("DELETE", "/api/vault/items/"+target.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do("DELETE", "/api/vault/items/"+target.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	part.Write([]byte("bonjour"))
	mw.WriteField("tags", "perso, notes")
	require.NoError(t, mw.Close())
	req := httptest.NewRequest("POST", "/api/vault/items", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "uploads need object storage")
}

func TestMentorChatStreams(t *testing.T) {
	s := newTestServer(t, "Commence par une offre simple")
	admin := s.signup(t, adminEmail)
	user := s.signup(t, "eleve@client.fr")

	w := s.do("POST", "/api/admin/mentors", admin, gin.H{"name": "Coach Offre", "is_active": true})
	require.Equal(t, http.StatusCreated, w.Code)
	m := decode[model.AIMentor](t, w)

	w = s.do("POST", "/api/mentors/"+m.ID+"/chat", user, gin.H{
		"message": "Par où commencer ?",
		"history": []gin.H{{"role": "user", "content": "Salut"}, {"role": "assistant", "content": "Bonjour"}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	out := w.Body.String()
	assert.Equal(t, 5, strings.Count(out, "event: token\n"))
	assert.Contains(t, out, `data: {"token":"Commence "}`)
	assert.True(t, strings.HasSuffix(out, "event: done\ndata: {}\n\n"))

	w = s.do("GET", "/api/admin/mentors/"+m.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[model.AIMentor](t, w).ConversationCount)

	w = s.do("POST", "/api/mentors/"+m.ID+"/chat", user, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do("PUT", "/api/admin/mentors/"+m.ID, admin, gin.H{"name": "Coach Offre", "is_active": false})
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do("POST", "/api/mentors/"+m.ID+"/chat", user, gin.H{"message": "encore ?"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminToolTesting(t *testing.T) {
	s := newTestServer(t, `{"usp": "La seule méthode garantie"}`)
	admin := s.signup(t, adminEmail)

	w := s.do("POST", "/api/admin/tools", admin, gin.H{
		"name": "USP", "category": "copywriting", "is_active": true,
		"config":     gin.H{"system_prompt": "sys", "user_prompt": "{{input}}"},
		"test_cases": []gin.H{{"name": "c1", "input": "coaching", "expected_contains": []string{"usp"}}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tool := decode[model.AITool](t, w)

	w = s.do("POST", "/api/admin/tools/"+tool.ID+"/test", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sum := decode[model.ToolTestSummary](t, w)
	assert.Equal(t, 1, sum.Passed)

	w = s.do("POST", "/api/admin/tools/"+tool.ID+"/test", admin, gin.H{"case_id": "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do("POST", "/api/admin/tools/test-all", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]model.ToolTestSummary](t, w)["results"], 1)

	w = s.do("POST", "/api/admin/tools/"+tool.ID+"/duplicate", admin, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "USP (copie)", decode[model.AITool](t, w).Name)

	w = s.do("GET", "/api/catalog/tools", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[map[string][]model.AITool](t, w)["tools"], 1, "duplicates start inactive")
}
