package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Base) BeforeCreate(*gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	Base
	Email        string                          `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string                          `json:"-"`
	Name         string                          `json:"name"`
	Role         string                          `gorm:"size:20;default:user" json:"role"`
	AvatarURL    string                          `json:"avatar_url"`
	Bio          string                          `json:"bio"`
	Company      string                          `json:"company"`
	Website      string                          `json:"website"`
	Preferences  datatypes.JSONType[Preferences] `json:"preferences"`
	VaultSeeded  bool                            `json:"-"`
}

type Preferences struct {
	Language           string `json:"language"`
	Theme              string `json:"theme"`
	Newsletter         bool   `json:"newsletter"`
	ProductUpdates     bool   `json:"product_updates"`
	EmailNotifications bool   `json:"email_notifications"`
}

func DefaultPreferences() Preferences {
	return Preferences{Language: "fr", Theme: "dark", ProductUpdates: true, EmailNotifications: true}
}

type PasswordReset struct {
	Base
	UserID    string     `gorm:"index;size:36" json:"user_id"`
	TokenHash string     `gorm:"uniqueIndex;size:64" json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusRejected   = "rejected"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type ProductRequest struct {
	Base
	Title               string     `json:"title"`
	Description         string     `gorm:"type:text" json:"description"`
	Status              string     `gorm:"size:20;index;default:pending" json:"status"`
	VotesCount          int        `json:"votes_count"`
	UserID              string     `gorm:"size:36;index" json:"user_id"`
	UserEmail           string     `json:"user_email"`
	AdminNotes          string     `gorm:"type:text" json:"admin_notes"`
	Priority            string     `gorm:"size:10;default:medium" json:"priority"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
}

type ProductRequestVote struct {
	Base
	RequestID string `gorm:"size:36;uniqueIndex:uk_request_user" json:"request_id"`
	UserID    string `gorm:"size:36;uniqueIndex:uk_request_user" json:"user_id"`
}

type AIMentor struct {
	Base
	Name              string                      `json:"name"`
	Description       string                      `gorm:"type:text" json:"description"`
	Expertise         datatypes.JSONSlice[string] `json:"expertise"`
	Icon              string                      `json:"icon"`
	Color             string                      `json:"color"`
	Gradient          string                      `json:"gradient"`
	Link              string                      `json:"link"`
	IsPopular         bool                        `json:"is_popular"`
	ResponseTime      string                      `json:"response_time"`
	ConversationCount int                         `json:"conversation_count"`
	SuggestedPrompts  datatypes.JSONSlice[string] `json:"suggested_prompts"`
	SystemPrompt      string                      `gorm:"type:text" json:"system_prompt"`
	IsActive          bool                        `json:"is_active"`
}

type ToolConfig struct {
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	SystemPrompt string  `json:"system_prompt"`
	UserPrompt   string  `json:"user_prompt"` // {{input}} is replaced by the test or user input
}

type ToolAnalytics struct {
	UsageCount   int        `json:"usage_count"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SuccessRate  float64    `json:"success_rate"`
	AvgLatencyMs int64      `json:"avg_latency_ms"`
	LastUsedAt   *time.Time `json:"last_used_at"`
}

type ToolTestCase struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Input            string          `json:"input"`
	ExpectedContains []string        `json:"expected_contains"`
	LastResult       *ToolTestResult `json:"last_result,omitempty"`
}

type ToolTestResult struct {
	Passed    bool      `json:"passed"`
	Output    string    `json:"output"`
	LatencyMs int64     `json:"latency_ms"`
	Error     string    `json:"error,omitempty"`
	RanAt     time.Time `json:"ran_at"`
}

type AITool struct {
	Base
	Name        string                            `json:"name"`
	Description string                            `gorm:"type:text" json:"description"`
	Category    string                            `gorm:"size:50;index" json:"category"`
	Icon        string                            `json:"icon"`
	Path        string                            `json:"path"`
	IsActive    bool                              `json:"is_active"`
	Config      datatypes.JSONType[ToolConfig]    `json:"config"`
	Analytics   datatypes.JSONType[ToolAnalytics] `json:"analytics"`
	TestCases   datatypes.JSONSlice[ToolTestCase] `json:"test_cases"`
}

type Product struct {
	Base
	Title       string  `json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Format      string  `gorm:"size:20;index" json:"format"`
	IsPremium   bool    `json:"is_premium"`
	Downloads   int     `json:"downloads"`
	Rating      float64 `json:"rating"`
	Instructor  string  `json:"instructor"`
	Category    string  `json:"category"`
	Thumbnail   string  `json:"thumbnail"`
	PriceCents  int     `json:"price_cents"`
	IsActive    bool    `json:"is_active"`
}

var ProductFormats = []string{"pdf", "video", "audio", "template", "course", "ebook"}

type VaultItem struct {
	Base
	UserID     string                      `gorm:"size:36;index" json:"user_id"`
	Name       string                      `json:"name"`
	Type       string                      `gorm:"size:20" json:"type"`
	Size       int64                       `json:"size"`
	Folder     string                      `gorm:"size:128;index" json:"folder"`
	IsFavorite bool                        `json:"is_favorite"`
	IsShared   bool                        `json:"is_shared"`
	Tags       datatypes.JSONSlice[string] `json:"tags"`
	AISource   string                      `json:"ai_source,omitempty"`
	ObjectKey  string                      `json:"-"`
}

type WizardDraft struct {
	Base
	UserID string         `gorm:"size:36;uniqueIndex:uk_user_key" json:"user_id"`
	Key    string         `gorm:"column:storage_key;size:64;uniqueIndex:uk_user_key" json:"key"`
	Data   datatypes.JSON `json:"data"`
}

type Generation struct {
	Base
	UserID    string         `gorm:"size:36;index" json:"user_id"`
	Kind      string         `gorm:"size:32;index" json:"kind"`
	Input     datatypes.JSON `json:"input"`
	Output    datatypes.JSON `json:"output"`
	Model     string         `json:"model"`
	LatencyMs int64          `json:"latency_ms"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{}, &PasswordReset{}, &ProductRequest{}, &ProductRequestVote{},
		&AIMentor{}, &AITool{}, &Product{}, &VaultItem{}, &WizardDraft{}, &Generation{},
	}
}

func (User) TableName() string               { return "users" }
func (PasswordReset) TableName() string      { return "password_resets" }
func (ProductRequest) TableName() string     { return "product_requests" }
func (ProductRequestVote) TableName() string { return "product_request_votes" }
func (AIMentor) TableName() string           { return "ai_mentors" }
func (AITool) TableName() string             { return "ai_tools" }
func (Product) TableName() string            { return "products" }
func (VaultItem) TableName() string          { return "vault_items" }
func (WizardDraft) TableName() string        { return "wizard_drafts" }
func (Generation) TableName() string         { return "generations" }
