package handler

import (
	"time"

	"github.com/arielspace/listing-board/internal/core/domain"
)

type signupRequest struct {
	Email     string  `json:"email" validate:"required,max=255"`
	Password  string  `json:"password" validate:"required,max=72"`
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=50"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	User *domain.User `json:"user"`
}

type loginSession struct {
	SessionID      string `json:"session_id"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	WarningSeconds int    `json:"warning_seconds"`
}

type loginResponse struct {
	User      *domain.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	Session   loginSession `json:"session"`
}

type sessionResponse struct {
	SessionID        string    `json:"session_id"`
	State            string    `json:"state"`
	LastActivity     time.Time `json:"last_activity"`
	ExpiresAt        time.Time `json:"expires_at"`
	RemainingSeconds int       `json:"remaining_seconds"`
	TimeoutSeconds   int       `json:"timeout_seconds"`
	WarningSeconds   int       `json:"warning_seconds"`
}

type successResponse struct {
	Success bool `json:"success"`
}
