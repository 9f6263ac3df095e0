package models

import "time"

type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username" validate:"required,max=40"`
	Email         string     `json:"email" validate:"required,email,max=255"`
	Name          string     `json:"name" validate:"max=255"`
	PassHash      []byte     `json:"-"`
	Disabled      bool       `json:"disabled"`
	Roles         []string   `json:"roles"`
	EmailVerified *time.Time `json:"emailVerified,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
