package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"dropskills/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sevenIdeas = `{"ideas": [
	{"title": "1"}, {"title": "2"}, {"title": "3"}, {"title": "4"},
	{"title": "5"}, {"title": "6"}, {"title": "7", "potential_revenue": "1 000 €/mois"}
]}`

func TestGenerateIdeas(t *testing.T) {
	ctx := context.Background()
	llm := newFakeLLM(t, constReply(sevenIdeas))
	svc := NewIdeaService(llm.ai())

	_, err := svc.Generate(ctx, model.IdeaRequest{Niche: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Generate(ctx, model.IdeaRequest{Niche: "yoga", Count: 11})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, llm.calls.Load())

	ideas, err := svc.Generate(ctx, model.IdeaRequest{Niche: "yoga", Skills: []string{"vidéo", "rédaction"}, Count: 3})
	require.NoError(t, err)
	assert.Len(t, ideas, 3)
	msgs := llm.lastRequest()["messages"].([]any)
	user := msgs[len(msgs)-1].(map[string]any)["content"].(string)
	assert.True(t, strings.Contains(user, "Compétences : vidéo, rédaction"))
	assert.True(t, strings.Contains(user, "Nombre d'idées : 3"))

	ideas, err = svc.Generate(ctx, model.IdeaRequest{Niche: "yoga"})
	require.NoError(t, err)
	assert.Len(t, ideas, defaultIdeaCount)

	ideas, err = svc.Generate(ctx, model.IdeaRequest{Niche: "yoga", Count: 10})
	require.NoError(t, err)
	require.Len(t, ideas, 7)
	assert.Equal(t, "1 000 €/mois", ideas[6].PotentialRevenue)
}

func TestGenerateIdeasAcceptsBareArray(t *testing.T) {
	llm := newFakeLLM(t, constReply(`Voici : [{"title": "Kit Canva"}]`))
	ideas, err := NewIdeaService(llm.ai()).Generate(context.Background(), model.IdeaRequest{Niche: "design"})
	require.NoError(t, err)
	require.Len(t, ideas, 1)
	assert.Equal(t, "Kit Canva", ideas[0].Title)
}

func TestGenerateIdeasBadReply(t *testing.T) {
	llm := newFakeLLM(t, constReply(`{"ideas": "aucune"}`))
	_, err := NewIdeaService(llm.ai()).Generate(context.Background(), model.IdeaRequest{Niche: "design"})
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestTrendingCachedForTTL(t *testing.T) {
	ctx := context.Background()
	llm := newFakeLLM(t, constReply(`{"ideas": [{"title": "Tendance"}]}`))
	svc := NewIdeaService(llm.ai())
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	assert.Equal(t, "Tendance", svc.Trending(ctx)[0].Title)
	svc.Trending(ctx)
	assert.EqualValues(t, 1, llm.calls.Load())

	now = now.Add(trendingTTL - time.Minute)
	svc.Trending(ctx)
	assert.EqualValues(t, 1, llm.calls.Load())

	now = now.Add(2 * time.Minute)
	svc.Trending(ctx)
	assert.EqualValues(t, 2, llm.calls.Load())
}

func TestTrendingFallback(t *testing.T) {
	ctx := context.Background()

	off := NewIdeaService(NewAIService("http://unused", "", "m", time.Second))
	assert.Equal(t, fallbackIdeas, off.Trending(ctx))

	llm := newFakeLLM(t, constReply("{}"))
	llm.setStatus(500)
	svc := NewIdeaService(llm.ai())
	assert.Equal(t, fallbackIdeas, svc.Trending(ctx))
	svc.Trending(ctx)
	assert.EqualValues(t, 2, llm.calls.Load(), "fallbacks are not cached")
}
