package service

import (
	"context"
	"fmt"

	"dropskills/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SeedResult counts the rows inserted by Seed.
type SeedResult struct {
	Mentors  int `json:"mentors"`
	Tools    int `json:"tools"`
	Products int `json:"products"`
}

// Seed inserts the default catalog into empty tables. Tables that already
// hold rows are left alone.
func Seed(ctx context.Context, db *gorm.DB) (SeedResult, error) {
	var res SeedResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if res.Mentors, err = seedTable(tx, defaultMentors()); err != nil {
			return fmt.Errorf("seed mentors: %w", err)
		}
		if res.Tools, err = seedTable(tx, defaultTools()); err != nil {
			return fmt.Errorf("seed tools: %w", err)
		}
		if res.Products, err = seedTable(tx, defaultProducts()); err != nil {
			return fmt.Errorf("seed products: %w", err)
		}
		return nil
	})
	return res, err
}

func seedTable[T any](tx *gorm.DB, rows []T) (int, error) {
	var n int64
	if err := tx.Model(new(T)).Count(&n).Error; err != nil {
		return 0, err
	}
	if n > 0 || len(rows) == 0 {
		return 0, nil
	}
	if err := tx.Create(&rows).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

func defaultMentors() []model.AIMentor {
	mk := func(name, desc, icon, color string, popular bool, expertise, prompts []string) model.AIMentor {
		return model.AIMentor{
			Name: name, Description: desc, Icon: icon, Color: color,
			Gradient:         "from-" + color + "-500 to-" + color + "-700",
			IsPopular:        popular,
			ResponseTime:     "< 30s",
			Expertise:        expertise,
			SuggestedPrompts: prompts,
			SystemPrompt:     defaultMentorPrompt(name, expertise),
			IsActive:         true,
		}
	}
	return []model.AIMentor{
		mk("Coach Business", "Stratégie, modèle économique et passage à l'échelle de ton activité en ligne.", "briefcase", "blue", true,
			[]string{"stratégie", "pricing", "croissance"},
			[]string{"Comment fixer le prix de ma formation ?", "Quelles sont mes priorités ce trimestre ?"}),
		mk("Expert Marketing", "Acquisition, tunnels de vente et campagnes publicitaires.", "megaphone", "purple", true,
			[]string{"tunnels", "publicité", "emailing"},
			[]string{"Comment améliorer le taux de conversion de ma page de vente ?", "Quel budget pub pour démarrer ?"}),
		mk("Copywriter IA", "Textes de vente, emails et accroches qui convertissent.", "pen", "pink", false,
			[]string{"copywriting", "storytelling"},
			[]string{"Réécris mon titre pour qu'il accroche plus.", "Donne-moi 3 objets d'email pour un lancement."}),
		mk("Mentor Contenu", "Stratégie de contenu sur les réseaux sociaux et création d'audience.", "camera", "orange", false,
			[]string{"instagram", "tiktok", "linkedin"},
			[]string{"Combien de fois publier par semaine ?", "Quels piliers de contenu pour ma niche ?"}),
	}
}

func defaultTools() []model.AITool {
	mk := func(name, desc, category, icon, path, system string, cases []model.ToolTestCase) model.AITool {
		return model.AITool{
			Name: name, Description: desc, Category: category, Icon: icon, Path: path,
			IsActive: true,
			Config: datatypes.NewJSONType(model.ToolConfig{
				Temperature:  0.7,
				MaxTokens:    1500,
				SystemPrompt: system,
				UserPrompt:   "{{input}}",
			}),
			Analytics: datatypes.NewJSONType(model.ToolAnalytics{}),
			TestCases: cases,
		}
	}
	return []model.AITool{
		mk("Générateur d'ICP", "Définis ton client idéal en quelques minutes.", "analyse", "target", "/outils/icp-maker", systemPrompts["icp"],
			[]model.ToolTestCase{{ID: "icp-1", Name: "Formation yoga", Input: "Formation en ligne de yoga pour débutants", ExpectedContains: []string{"persona"}}}),
		mk("Générateur d'USP", "Formule ta proposition de valeur unique.", "copywriting", "sparkles", "/outils/usp", systemPrompts["usp"],
			[]model.ToolTestCase{{ID: "usp-1", Name: "Coaching", Input: "Coaching sportif en ligne pour cadres", ExpectedContains: []string{"usp"}}}),
		mk("Générateur de tunnel", "Construis un tunnel de vente complet.", "vente", "funnel", "/outils/tunnel", systemPrompts["tunnel"],
			[]model.ToolTestCase{{ID: "tunnel-1", Name: "Ebook", Input: "Ebook de recettes à 27€", ExpectedContains: []string{"steps"}}}),
		mk("Séquence d'emails", "Rédige une séquence email de bienvenue ou de lancement.", "emailing", "mail", "/outils/emails", systemPrompts["emails"],
			[]model.ToolTestCase{{ID: "emails-1", Name: "Bienvenue", Input: "Séquence de bienvenue de 3 emails", ExpectedContains: []string{"subject"}}}),
		mk("Calendrier de contenu", "Planifie tes publications sur plusieurs semaines.", "contenu", "calendar", "/outils/content-calendar", systemPrompts["content"],
			[]model.ToolTestCase{{ID: "content-1", Name: "Instagram", Input: "Niche fitness, Instagram, 3 posts par semaine sur 2 semaines", ExpectedContains: []string{"posts"}}}),
		mk("Veille stratégique", "Suis les tendances et les concurrents de ton marché.", "analyse", "radar", "/outils/veille", systemPrompts["veille"], nil),
	}
}

func defaultProducts() []model.Product {
	return []model.Product{
		{Title: "Guide complet du dropshipping", Description: "De la recherche produit à la première vente.", Format: "ebook", Instructor: "Équipe DropSkills", Category: "E-commerce", Rating: 4.7, IsActive: true},
		{Title: "Masterclass Facebook Ads", Description: "Créer des campagnes rentables pas à pas.", Format: "course", IsPremium: true, Instructor: "Sarah Martin", Category: "Publicité", Rating: 4.8, PriceCents: 9700, IsActive: true},
		{Title: "Templates de pages de vente", Description: "10 modèles de pages de vente qui convertissent.", Format: "template", IsPremium: true, Instructor: "Équipe DropSkills", Category: "Copywriting", Rating: 4.6, PriceCents: 4700, IsActive: true},
		{Title: "Podcast : Mindset d'entrepreneur", Description: "Interviews d'entrepreneurs du web.", Format: "audio", Instructor: "Thomas Leroy", Category: "Mindset", Rating: 4.5, IsActive: true},
		{Title: "Checklist lancement produit", Description: "Les 50 étapes à ne pas oublier avant un lancement.", Format: "pdf", Instructor: "Équipe DropSkills", Category: "Lancement", Rating: 4.9, IsActive: true},
		{Title: "Atelier vidéo TikTok", Description: "Tourner et monter des vidéos courtes efficaces.", Format: "video", IsPremium: true, Instructor: "Julie Bernard", Category: "Contenu", Rating: 4.4, PriceCents: 2900, IsActive: true},
	}
}
