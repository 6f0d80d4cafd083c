package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dropskills/internal/model"
	"dropskills/internal/wizard"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DraftService stores the last submitted data of each wizard per user.
type DraftService struct {
	db *gorm.DB
}

func NewDraftService(db *gorm.DB) *DraftService {
	return &DraftService{db: db}
}

func (s *DraftService) Save(ctx context.Context, userID, key string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	d := model.WizardDraft{UserID: userID, Key: key, Data: datatypes.JSON(raw)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&d).Error
	if err != nil {
		return fmt.Errorf("save draft %s: %w", key, err)
	}
	return nil
}

// Get returns the stored draft, or ErrNotFound.
func (s *DraftService) Get(ctx context.Context, userID, key string) (json.RawMessage, error) {
	var d model.WizardDraft
	err := s.db.WithContext(ctx).Where("user_id = ? AND storage_key = ?", userID, key).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return json.RawMessage(d.Data), nil
}

func (s *DraftService) Delete(ctx context.Context, userID, key string) error {
	return s.db.WithContext(ctx).Where("user_id = ? AND storage_key = ?", userID, key).
		Delete(&model.WizardDraft{}).Error
}

// For binds the store to one user.
func (s *DraftService) For(userID string) wizard.DraftStore {
	return userDrafts{s: s, userID: userID}
}

type userDrafts struct {
	s      *DraftService
	userID string
}

func (u userDrafts) SaveDraft(ctx context.Context, key string, data any) error {
	return u.s.Save(ctx, u.userID, key, data)
}
