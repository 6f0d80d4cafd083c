package model

import "time"

type SignupRequest struct {
	Email           string `json:"email" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	Name            string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse(isAdmin bool) UserResponse {
	return UserResponse{
		ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
		AvatarURL: u.AvatarURL, IsAdmin: isAdmin, CreatedAt: u.CreatedAt,
	}
}

type ProfileUpdate struct {
	Name      *string `json:"name"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
	Company   *string `json:"company"`
	Website   *string `json:"website"`
}

type NewProductRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

// ProductRequestUpdate is the admin edit form; nil fields are left as they are.
type ProductRequestUpdate struct {
	Status              *string    `json:"status"`
	AdminNotes          *string    `json:"admin_notes"`
	Priority            *string    `json:"priority"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
}

type ProductRequestStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Rejected   int `json:"rejected"`
	TotalVotes int `json:"total_votes"`
}

type ToolTestSummary struct {
	ToolID   string           `json:"tool_id"`
	ToolName string           `json:"tool_name"`
	Passed   int              `json:"passed"`
	Failed   int              `json:"failed"`
	Results  []ToolTestResult `json:"results"`
	Error    string           `json:"error,omitempty"`
}

type IdeaRequest struct {
	Niche    string   `json:"niche"`
	Audience string   `json:"audience"`
	Skills   []string `json:"skills"`
	Budget   string   `json:"budget"`
	Count    int      `json:"count"`
}

type Idea struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Format           string   `json:"format"`
	Difficulty       string   `json:"difficulty"`
	PotentialRevenue string   `json:"potential_revenue"`
	Tags             []string `json:"tags"`
}

type MentorChatRequest struct {
	Message string        `json:"message" binding:"required"`
	History []HistoryItem `json:"history,omitempty"`
}

type HistoryItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type VaultStats struct {
	Count     int   `json:"count"`
	TotalSize int64 `json:"total_size"`
	Favorites int   `json:"favorites"`
	Shared    int   `json:"shared"`
}

type VaultFolder struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
