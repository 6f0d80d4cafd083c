package service

import (
	"context"
	"fmt"
	"strings"

	"dropskills/internal/model"

	"gorm.io/gorm"
)

type MentorFilter struct {
	Search string `form:"search"`
	Active *bool  `form:"active"`
}

type MentorService struct {
	db *gorm.DB
}

func NewMentorService(db *gorm.DB) *MentorService {
	return &MentorService{db: db}
}

func (s *MentorService) List(ctx context.Context, f MentorFilter) ([]model.AIMentor, error) {
	q := s.db.WithContext(ctx).Model(&model.AIMentor{})
	q = likeAny(q, f.Search, "name", "description")
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	var out []model.AIMentor
	if err := q.Order("is_popular DESC, name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	return out, nil
}

func (s *MentorService) Get(ctx context.Context, id string) (*model.AIMentor, error) {
	return findByID[model.AIMentor](ctx, s.db, id, "mentor")
}

func (s *MentorService) Create(ctx context.Context, m *model.AIMentor) error {
	m.ID = ""
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return fmt.Errorf("%w: name", ErrInvalidInput)
	}
	if strings.TrimSpace(m.SystemPrompt) == "" {
		m.SystemPrompt = defaultMentorPrompt(m.Name, m.Expertise)
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create mentor: %w", err)
	}
	return nil
}

// Update replaces the editable fields of mentor id.
func (s *MentorService) Update(ctx context.Context, id string, in *model.AIMentor) (*model.AIMentor, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name", ErrInvalidInput)
	}
	in.Base = m.Base
	in.ConversationCount = m.ConversationCount
	if err := s.db.WithContext(ctx).Model(m).Select("*").Omit("id", "created_at").Updates(in).Error; err != nil {
		return nil, fmt.Errorf("update mentor: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *MentorService) Delete(ctx context.Context, id string) error {
	return deleteByID[model.AIMentor](ctx, s.db, id, "mentor")
}

func (s *MentorService) IncrementConversations(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Model(&model.AIMentor{}).Where("id = ?", id).
		UpdateColumn("conversation_count", gorm.Expr("conversation_count + 1")).Error
}

func defaultMentorPrompt(name string, expertise []string) string {
	p := "Tu es " + name + ", un mentor IA de la plateforme DropSkills. Réponds en français, de façon concrète et actionnable."
	if len(expertise) > 0 {
		p += " Tes domaines d'expertise : " + strings.Join(expertise, ", ") + "."
	}
	return p
}
