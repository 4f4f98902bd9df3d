package app

import "github.com/contactdesk/contact-service/internal/sdk/models"

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login. The user's password hash
// never serializes (models.User tags it json:"-").
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type ContactRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Age            *int   `json:"age"`
	SecondaryPhone string `json:"secondary_phone"`
}

// ContactPatchRequest distinguishes absent fields from empty ones so PUT can
// merge partial updates.
type ContactPatchRequest struct {
	Name           *string `json:"name"`
	Email          *string `json:"email"`
	Phone          *string `json:"phone"`
	Age            *int    `json:"age"`
	SecondaryPhone *string `json:"secondary_phone"`
}

type UserListResponse struct {
	Users      []models.User `json:"users"`
	Total      int           `json:"total"`
	Page       int           `json:"page"`
	TotalPages int           `json:"total_pages"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

type LivenessResponse struct {
	Status     string `json:"status"`
	Host       string `json:"host"`
	GOMAXPROCS int    `json:"gomaxprocs"`
}
