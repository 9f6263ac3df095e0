package dto

import (
	"jsonstore/internal/models"
	"time"
)

type EmailRequest struct {
	EmailAddress string `json:"emailAddress"`
	Username     string `json:"username"`
}

type TokenRequest struct {
	Token string `json:"token"`
}

type RegisterUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// RegisterRequest carries the new account. Fields such as roles or disabled
// are accepted in the body but never applied.
type RegisterRequest struct {
	Token string       `json:"token"`
	User  RegisterUser `json:"user"`
}

type UserResponse struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	Name          string     `json:"name"`
	Disabled      bool       `json:"disabled"`
	Roles         []string   `json:"roles"`
	EmailVerified *time.Time `json:"emailVerified"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func NewUserResponse(user *models.User) UserResponse {
	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		Name:          user.Name,
		Disabled:      user.Disabled,
		Roles:         roles,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}
}
