package service

import (
	"context"
	"fmt"
	"strings"

	"dropskills/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AccountService backs the account settings tabs.
type AccountService struct {
	db   *gorm.DB
	auth *AuthService
}

func NewAccountService(db *gorm.DB, auth *AuthService) *AccountService {
	return &AccountService{db: db, auth: auth}
}

func (s *AccountService) Profile(ctx context.Context, userID string) (*model.User, error) {
	return s.auth.GetUser(ctx, userID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.User, error) {
	u, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	changes := map[string]interface{}{}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name", ErrInvalidInput)
		}
		changes["name"] = name
	}
	if upd.AvatarURL != nil {
		changes["avatar_url"] = strings.TrimSpace(*upd.AvatarURL)
	}
	if upd.Bio != nil {
		changes["bio"] = *upd.Bio
	}
	if upd.Company != nil {
		changes["company"] = strings.TrimSpace(*upd.Company)
	}
	if upd.Website != nil {
		changes["website"] = strings.TrimSpace(*upd.Website)
	}
	if len(changes) == 0 {
		return u, nil
	}
	if err := s.db.WithContext(ctx).Model(u).Updates(changes).Error; err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.auth.GetUser(ctx, userID)
}

func (s *AccountService) Preferences(ctx context.Context, userID string) (model.Preferences, error) {
	u, err := s.auth.GetUser(ctx, userID)
	if err != nil {
		return model.Preferences{}, err
	}
	return u.Preferences.Data(), nil
}

func (s *AccountService) UpdatePreferences(ctx context.Context, userID string, p model.Preferences) (model.Preferences, error) {
	switch p.Language {
	case "", "fr", "en":
	default:
		return p, fmt.Errorf("%w: language", ErrInvalidInput)
	}
	if p.Language == "" {
		p.Language = "fr"
	}
	err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("preferences", datatypes.NewJSONType(p)).Error
	if err != nil {
		return p, fmt.Errorf("update preferences: %w", err)
	}
	return p, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID string, req model.ChangePasswordRequest) error {
	return s.auth.ChangePassword(ctx, userID, req)
}
