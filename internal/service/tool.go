package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dropskills/internal/logger"
	"dropskills/internal/model"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const testAllConcurrency = 4

type ToolFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Active   *bool  `form:"active"`
}

type ToolService struct {
	db *gorm.DB
	ai *AIService
}

func NewToolService(db *gorm.DB, ai *AIService) *ToolService {
	return &ToolService{db: db, ai: ai}
}

func (s *ToolService) List(ctx context.Context, f ToolFilter) ([]model.AITool, error) {
	q := s.db.WithContext(ctx).Model(&model.AITool{})
	q = likeAny(q, f.Search, "name", "description")
	if f.Category != "" && f.Category != "all" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	var out []model.AITool
	if err := q.Order("category, name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}
	return out, nil
}

func (s *ToolService) Get(ctx context.Context, id string) (*model.AITool, error) {
	return findByID[model.AITool](ctx, s.db, id, "tool")
}

func (s *ToolService) Create(ctx context.Context, t *model.AITool) error {
	t.ID = ""
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return fmt.Errorf("%w: name", ErrInvalidInput)
	}
	t.Analytics = datatypes.NewJSONType(model.ToolAnalytics{})
	assignCaseIDs(t.TestCases)
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create tool: %w", err)
	}
	return nil
}

// Update replaces the editable fields of tool id. Analytics are kept.
func (s *ToolService) Update(ctx context.Context, id string, in *model.AITool) (*model.AITool, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name", ErrInvalidInput)
	}
	in.Base = t.Base
	in.Analytics = t.Analytics
	assignCaseIDs(in.TestCases)
	if err := s.db.WithContext(ctx).Model(t).Select("*").Omit("id", "created_at").Updates(in).Error; err != nil {
		return nil, fmt.Errorf("update tool: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *ToolService) Delete(ctx context.Context, id string) error {
	return deleteByID[model.AITool](ctx, s.db, id, "tool")
}

func (s *ToolService) Toggle(ctx context.Context, id string) (*model.AITool, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.IsActive = !t.IsActive
	if err := s.db.WithContext(ctx).Model(t).Update("is_active", t.IsActive).Error; err != nil {
		return nil, fmt.Errorf("toggle tool: %w", err)
	}
	return t, nil
}

// Duplicate copies tool id as an inactive tool with fresh analytics and
// cleared test results.
func (s *ToolService) Duplicate(ctx context.Context, id string) (*model.AITool, error) {
	src, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	cases := make([]model.ToolTestCase, len(src.TestCases))
	for i, c := range src.TestCases {
		c.ID = ""
		c.LastResult = nil
		cases[i] = c
	}
	cp := &model.AITool{
		Name:        src.Name + " (copie)",
		Description: src.Description,
		Category:    src.Category,
		Icon:        src.Icon,
		Path:        src.Path,
		IsActive:    false,
		Config:      src.Config,
		TestCases:   cases,
	}
	if err := s.Create(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// Test runs the test cases of tool id, or only caseID when given, and
// stores the results and updated analytics.
func (s *ToolService) Test(ctx context.Context, id, caseID string) (*model.ToolTestSummary, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if caseID != "" && caseIndex(t.TestCases, caseID) < 0 {
		return nil, fmt.Errorf("test case %s: %w", caseID, ErrNotFound)
	}
	if !s.ai.Configured() {
		return nil, ErrNotConfigured
	}
	results := s.runCases(ctx, t, caseID)
	sum := applyResults(t, results)
	if err := s.saveResults(ctx, t); err != nil {
		return nil, err
	}
	logger.Info("admin.tool.test", "tool", t.ID, "passed", sum.Passed, "failed", sum.Failed)
	return sum, nil
}

// TestAll tests every active tool with bounded concurrency. LLM calls run
// in parallel; results are written one tool at a time.
func (s *ToolService) TestAll(ctx context.Context) ([]model.ToolTestSummary, error) {
	if !s.ai.Configured() {
		return nil, ErrNotConfigured
	}
	active := true
	tools, err := s.List(ctx, ToolFilter{Active: &active})
	if err != nil {
		return nil, err
	}

	results := make([]map[int]model.ToolTestResult, len(tools))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(testAllConcurrency)
	for i := range tools {
		i := i
		g.Go(func() error {
			results[i] = s.runCases(gctx, &tools[i], "")
			return nil
		})
	}
	g.Wait()

	out := make([]model.ToolTestSummary, 0, len(tools))
	for i := range tools {
		t := &tools[i]
		sum := applyResults(t, results[i])
		if len(t.TestCases) == 0 {
			sum.Error = "aucun cas de test"
		} else if err := s.saveResults(ctx, t); err != nil {
			sum.Error = err.Error()
		}
		out = append(out, *sum)
	}
	logger.Info("admin.tool.test_all", "tools", len(tools))
	return out, nil
}

func (s *ToolService) runCases(ctx context.Context, t *model.AITool, caseID string) map[int]model.ToolTestResult {
	cfg := t.Config.Data()
	opts := ChatOptions{Model: cfg.Model, MaxTokens: cfg.MaxTokens}
	if cfg.Temperature > 0 {
		temp := cfg.Temperature
		opts.Temperature = &temp
	}
	out := map[int]model.ToolTestResult{}
	for i, c := range t.TestCases {
		if caseID != "" && c.ID != caseID {
			continue
		}
		start := time.Now()
		reply, err := s.ai.CompleteWith(ctx, opts, cfg.SystemPrompt, renderPrompt(cfg.UserPrompt, c.Input))
		res := model.ToolTestResult{
			Output:    reply,
			LatencyMs: time.Since(start).Milliseconds(),
			RanAt:     time.Now(),
		}
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Passed = containsAll(reply, c.ExpectedContains)
		}
		out[i] = res
	}
	return out
}

func (s *ToolService) saveResults(ctx context.Context, t *model.AITool) error {
	err := s.db.WithContext(ctx).Model(t).Updates(map[string]interface{}{
		"test_cases": t.TestCases,
		"analytics":  t.Analytics,
	}).Error
	if err != nil {
		return fmt.Errorf("save test results: %w", err)
	}
	return nil
}

// applyResults stores results on the tool's cases and folds them into its
// analytics.
func applyResults(t *model.AITool, results map[int]model.ToolTestResult) *model.ToolTestSummary {
	sum := &model.ToolTestSummary{ToolID: t.ID, ToolName: t.Name, Results: []model.ToolTestResult{}}
	a := t.Analytics.Data()
	for i := range t.TestCases {
		res, ok := results[i]
		if !ok {
			continue
		}
		r := res
		t.TestCases[i].LastResult = &r
		sum.Results = append(sum.Results, res)

		total := a.AvgLatencyMs * int64(a.UsageCount)
		a.UsageCount++
		a.AvgLatencyMs = (total + res.LatencyMs) / int64(a.UsageCount)
		ran := res.RanAt
		a.LastUsedAt = &ran
		if res.Passed {
			sum.Passed++
			a.SuccessCount++
		} else {
			sum.Failed++
			a.FailureCount++
		}
	}
	if a.UsageCount > 0 {
		a.SuccessRate = float64(a.SuccessCount) / float64(a.UsageCount) * 100
	}
	t.Analytics = datatypes.NewJSONType(a)
	return sum
}

func renderPrompt(tmpl, input string) string {
	if strings.TrimSpace(tmpl) == "" {
		return input
	}
	if !strings.Contains(tmpl, "{{input}}") {
		return tmpl + "\n\n" + input
	}
	return strings.ReplaceAll(tmpl, "{{input}}", input)
}

func containsAll(s string, subs []string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if !strings.Contains(s, strings.ToLower(sub)) {
			return false
		}
	}
	return true
}

func caseIndex(cases []model.ToolTestCase, id string) int {
	for i, c := range cases {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func assignCaseIDs(cases []model.ToolTestCase) {
	for i := range cases {
		if cases[i].ID == "" {
			cases[i].ID = uuid.NewString()
		}
	}
}
