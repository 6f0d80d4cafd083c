package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"dropskills/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuthService struct {
	db       *gorm.DB
	resetTTL time.Duration
}

func NewAuthService(db *gorm.DB, resetTTL time.Duration) *AuthService {
	return &AuthService{db: db, resetTTL: resetTTL}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// parseEmail accepts a bare address only. Display-name forms such as
// "Alice <alice@example.fr>" are rejected.
func parseEmail(raw string) (string, error) {
	email := normalizeEmail(raw)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: email", ErrInvalidInput)
	}
	return addr.Address, nil
}

func (s *AuthService) Signup(ctx context.Context, req model.SignupRequest) (*model.User, error) {
	email, err := parseEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := CheckPassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}
	return s.createUser(ctx, email, req.Password, req.Name)
}

// createUser relies on the unique email index; the DB must be opened with
// TranslateError so duplicates surface as gorm.ErrDuplicatedKey.
func (s *AuthService) createUser(ctx context.Context, email, password, name string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	u := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         model.RoleUser,
		Preferences:  datatypes.NewJSONType(model.DefaultPreferences()),
	}
	err = s.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, fmt.Errorf("email %s: %w", email, ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}
	return &u, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := s.db.WithContext(ctx).First(&u, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// Lookup returns the stored role and email of a user.
func (s *AuthService) Lookup(ctx context.Context, id string) (role, email string, err error) {
	u, err := s.GetUser(ctx, id)
	if err != nil {
		return "", "", err
	}
	return u.Role, u.Email, nil
}

// RequestReset issues a reset token for email. Unknown emails yield an
// empty token and no error so callers cannot enumerate accounts.
func (s *AuthService) RequestReset(ctx context.Context, email string) (string, error) {
	var u model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}

	token := genToken()
	reset := model.PasswordReset{
		UserID:    u.ID,
		TokenHash: hashToken(token),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.db.WithContext(ctx).Create(&reset).Error; err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if err := CheckPassword(password, confirm); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reset model.PasswordReset
		err := tx.Where("token_hash = ?", hashToken(token)).First(&reset).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		if err != nil {
			return fmt.Errorf("find reset: %w", err)
		}
		now := time.Now()
		if reset.UsedAt != nil || now.After(reset.ExpiresAt) {
			return ErrInvalidToken
		}
		if err := tx.Model(&model.User{}).Where("id = ?", reset.UserID).Update("password_hash", string(hash)).Error; err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return tx.Model(&reset).Update("used_at", now).Error
	})
}

func (s *AuthService) ChangePassword(ctx context.Context, userID string, req model.ChangePasswordRequest) error {
	u, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)) != nil {
		return ErrUnauthorized
	}
	if err := CheckPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(u).Update("password_hash", string(hash)).Error
}

// CreateAdmin creates or promotes an admin account.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password, name string) (*model.User, error) {
	addr, err := parseEmail(email)
	if err != nil {
		return nil, err
	}
	if err := checkPolicy(password); err != nil {
		return nil, err
	}
	u, err := s.createUser(ctx, addr, password, name)
	if errors.Is(err, ErrConflict) {
		var existing model.User
		if err := s.db.WithContext(ctx).Where("email = ?", addr).First(&existing).Error; err != nil {
			return nil, fmt.Errorf("find user: %w", err)
		}
		u = &existing
	} else if err != nil {
		return nil, err
	}
	u.Role = model.RoleAdmin
	if err := s.db.WithContext(ctx).Model(u).Update("role", model.RoleAdmin).Error; err != nil {
		return nil, fmt.Errorf("promote user: %w", err)
	}
	return u, nil
}

func genToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
