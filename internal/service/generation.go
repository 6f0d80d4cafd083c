package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dropskills/internal/export"
	"dropskills/internal/logger"
	"dropskills/internal/metrics"
	"dropskills/internal/model"
	"dropskills/internal/wizard"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const generationTemperature = 0.7

type GenerationService struct {
	db     *gorm.DB
	ai     *AIService
	drafts *DraftService
}

func NewGenerationService(db *gorm.DB, ai *AIService, drafts *DraftService) *GenerationService {
	return &GenerationService{db: db, ai: ai, drafts: drafts}
}

// Generate validates the form data of kind through its wizard, asks the
// LLM for a result and stores it. Form errors come back as
// *wizard.ValidationError before any LLM call.
func (s *GenerationService) Generate(ctx context.Context, userID, kind string, raw json.RawMessage) (*model.Generation, error) {
	form, ok := wizard.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("generator %q: %w", kind, ErrNotFound)
	}
	var gen *model.Generation
	err := form.Run(ctx, raw, s.drafts.For(userID), func(ctx context.Context, data any) error {
		g, err := s.complete(ctx, userID, kind, data)
		if err != nil {
			return err
		}
		gen = g
		return nil
	})
	if err != nil {
		var ve *wizard.ValidationError
		if errors.As(err, &ve) {
			metrics.ObserveGeneration(kind, "invalid", 0)
		}
		return nil, err
	}
	return gen, nil
}

func (s *GenerationService) complete(ctx context.Context, userID, kind string, data any) (*model.Generation, error) {
	input, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode input: %w", err)
	}
	temp := generationTemperature
	start := time.Now()
	reply, err := s.ai.CompleteWith(ctx, ChatOptions{Temperature: &temp},
		systemPrompts[kind], "Données du formulaire :\n"+string(input))
	latency := time.Since(start)
	if err != nil {
		metrics.ObserveGeneration(kind, "upstream_error", latency)
		logger.Error("ai.generate.failed", "kind", kind, "user", userID, "err", err)
		return nil, err
	}

	out := extractJSON(reply)
	if err := checkShape(kind, out); err != nil {
		metrics.ObserveGeneration(kind, "upstream_error", latency)
		logger.Warn("ai.generate.bad_shape", "kind", kind, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	g := &model.Generation{
		UserID:    userID,
		Kind:      kind,
		Input:     datatypes.JSON(input),
		Output:    datatypes.JSON(out),
		Model:     s.ai.Model(),
		LatencyMs: latency.Milliseconds(),
	}
	if err := s.db.WithContext(ctx).Create(g).Error; err != nil {
		return nil, fmt.Errorf("store generation: %w", err)
	}
	metrics.ObserveGeneration(kind, "ok", latency)
	logger.Info("ai.generate.ok", "kind", kind, "user", userID, "id", g.ID, "latency_ms", g.LatencyMs)
	return g, nil
}

// checkShape rejects replies that are not JSON, and result kinds whose
// viewers need a minimum structure.
func checkShape(kind, out string) error {
	if !json.Valid([]byte(out)) {
		return errors.New("reply is not valid JSON")
	}
	switch kind {
	case "content":
		var a export.ContentAnalysis
		if err := json.Unmarshal([]byte(out), &a); err != nil {
			return err
		}
		return a.Validate()
	case "emails":
		var a export.EmailSequenceAnalysis
		if err := json.Unmarshal([]byte(out), &a); err != nil {
			return err
		}
		return a.Validate()
	}
	return nil
}

func (s *GenerationService) List(ctx context.Context, userID, kind string) ([]model.Generation, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var out []model.Generation
	if err := q.Order("created_at DESC").Limit(100).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list generations: %w", err)
	}
	return out, nil
}

func (s *GenerationService) Get(ctx context.Context, userID, id string) (*model.Generation, error) {
	var g model.Generation
	err := s.db.WithContext(ctx).First(&g, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("generation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get generation: %w", err)
	}
	return &g, nil
}

// LatestICP returns the most recent ICP result of the user, if any.
func (s *GenerationService) LatestICP(ctx context.Context, userID string) (wizard.ICPResult, bool, error) {
	var icp wizard.ICPResult
	var g model.Generation
	err := s.db.WithContext(ctx).Where("user_id = ? AND kind = ?", userID, "icp").
		Order("created_at DESC").First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return icp, false, nil
	}
	if err != nil {
		return icp, false, fmt.Errorf("latest icp: %w", err)
	}
	if err := json.Unmarshal(g.Output, &icp); err != nil {
		return icp, false, nil
	}
	return icp, true, nil
}

// Prefill returns the user's draft for kind (or empty form data) with
// blank audience fields completed from the latest ICP result.
func (s *GenerationService) Prefill(ctx context.Context, userID, kind string) (json.RawMessage, error) {
	form, ok := wizard.Lookup(kind)
	if !ok {
		return nil, fmt.Errorf("wizard %q: %w", kind, ErrNotFound)
	}
	var raw json.RawMessage
	if key := form.StorageKey(); key != "" {
		d, err := s.drafts.Get(ctx, userID, key)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		raw = d
	}
	icp, found, err := s.LatestICP(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found && raw != nil {
		return raw, nil
	}
	return form.Prefill(raw, icp)
}

func DecodeContent(g *model.Generation) (export.ContentAnalysis, error) {
	var a export.ContentAnalysis
	if g.Kind != "content" {
		return a, fmt.Errorf("%w: generation %s is %s, not content", ErrInvalidInput, g.ID, g.Kind)
	}
	if err := json.Unmarshal(g.Output, &a); err != nil {
		return a, fmt.Errorf("decode content: %w", err)
	}
	return a, nil
}

func DecodeEmails(g *model.Generation) (export.EmailSequenceAnalysis, error) {
	var a export.EmailSequenceAnalysis
	if g.Kind != "emails" {
		return a, fmt.Errorf("%w: generation %s is %s, not emails", ErrInvalidInput, g.ID, g.Kind)
	}
	if err := json.Unmarshal(g.Output, &a); err != nil {
		return a, fmt.Errorf("decode emails: %w", err)
	}
	return a, nil
}
