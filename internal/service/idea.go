package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"dropskills/internal/logger"
	"dropskills/internal/model"
)

const (
	trendingTTL      = 6 * time.Hour
	defaultIdeaCount = 5
	maxIdeaCount     = 10
)

type IdeaService struct {
	ai    *AIService
	cache sync.Map // "trending" -> *ideaCache
	now   func() time.Time
}

type ideaCache struct {
	ideas     []model.Idea
	createdAt time.Time
}

func NewIdeaService(ai *AIService) *IdeaService {
	return &IdeaService{ai: ai, now: time.Now}
}

func (s *IdeaService) Generate(ctx context.Context, req model.IdeaRequest) ([]model.Idea, error) {
	if strings.TrimSpace(req.Niche) == "" {
		return nil, fmt.Errorf("%w: niche", ErrInvalidInput)
	}
	if req.Count == 0 {
		req.Count = defaultIdeaCount
	}
	if req.Count < 1 || req.Count > maxIdeaCount {
		return nil, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidInput, maxIdeaCount)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Niche : %s\n", req.Niche)
	if req.Audience != "" {
		fmt.Fprintf(&b, "Audience : %s\n", req.Audience)
	}
	if len(req.Skills) > 0 {
		fmt.Fprintf(&b, "Compétences : %s\n", strings.Join(req.Skills, ", "))
	}
	if req.Budget != "" {
		fmt.Fprintf(&b, "Budget : %s\n", req.Budget)
	}
	fmt.Fprintf(&b, "Nombre d'idées : %d", req.Count)

	ideas, err := s.ask(ctx, ideasPrompt, b.String())
	if err != nil {
		return nil, err
	}
	if len(ideas) > req.Count {
		ideas = ideas[:req.Count]
	}
	return ideas, nil
}

// Trending returns the cached trending ideas, refreshing them from the LLM
// once the cache is older than trendingTTL. The static list is served when
// the provider is unavailable.
func (s *IdeaService) Trending(ctx context.Context) []model.Idea {
	if v, ok := s.cache.Load("trending"); ok {
		c := v.(*ideaCache)
		if s.now().Sub(c.createdAt) < trendingTTL {
			return c.ideas
		}
	}
	if !s.ai.Configured() {
		return fallbackIdeas
	}
	ideas, err := s.ask(ctx, trendingPrompt, "Donne 6 idées.")
	if err != nil || len(ideas) == 0 {
		logger.Warn("ideas.trending.fallback", "err", err)
		return fallbackIdeas
	}
	s.cache.Store("trending", &ideaCache{ideas: ideas, createdAt: s.now()})
	return ideas
}

func (s *IdeaService) ask(ctx context.Context, system, user string) ([]model.Idea, error) {
	reply, err := s.ai.Complete(ctx, system, user)
	if err != nil {
		return nil, err
	}
	var out struct {
		Ideas []model.Idea `json:"ideas"`
	}
	raw := extractJSON(reply)
	if strings.HasPrefix(raw, "[") {
		err = json.Unmarshal([]byte(raw), &out.Ideas)
	} else {
		err = json.Unmarshal([]byte(raw), &out)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: decode ideas: %v", ErrUpstream, err)
	}
	return out.Ideas, nil
}

var fallbackIdeas = []model.Idea{
	{Title: "Formation ChatGPT pour indépendants", Description: "Apprendre à automatiser prospection, devis et contenu avec l'IA.", Format: "course", Difficulty: "moyen", PotentialRevenue: "2 000 - 8 000 €/mois", Tags: []string{"ia", "productivité"}},
	{Title: "Pack de templates Notion pour créateurs", Description: "Tableaux de bord prêts à l'emploi pour planifier contenu et revenus.", Format: "template", Difficulty: "facile", PotentialRevenue: "500 - 3 000 €/mois", Tags: []string{"notion", "organisation"}},
	{Title: "Ebook : lancer sa boutique en 30 jours", Description: "Méthode pas à pas, de la niche à la première vente.", Format: "ebook", Difficulty: "facile", PotentialRevenue: "300 - 2 000 €/mois", Tags: []string{"e-commerce", "débutant"}},
	{Title: "Masterclass tunnel de vente", Description: "Construire un tunnel qui convertit, avec exemples et scripts.", Format: "video", Difficulty: "moyen", PotentialRevenue: "1 500 - 6 000 €/mois", Tags: []string{"marketing", "vente"}},
	{Title: "Podcast premium sur l'investissement", Description: "Épisodes exclusifs et fiches résumé pour abonnés.", Format: "audio", Difficulty: "difficile", PotentialRevenue: "1 000 - 5 000 €/mois", Tags: []string{"finance", "abonnement"}},
	{Title: "Kit de prompts pour e-commerçants", Description: "200 prompts classés pour fiches produit, emails et publicités.", Format: "pdf", Difficulty: "facile", PotentialRevenue: "400 - 2 500 €/mois", Tags: []string{"ia", "e-commerce"}},
}
