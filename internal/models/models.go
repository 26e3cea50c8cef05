package models

import (
	"encoding/json"
	"errors"

	"github.com/patric-chuzhbe/arrowflix/internal/user"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	Message string          `json:"message"`
	User    user.PublicView `json:"user"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token string          `json:"token"`
	User  user.PublicView `json:"user"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// CatalogPage is an upstream catalog response passed through without decoding.
type CatalogPage = json.RawMessage

const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)

// ErrUserAlreadyExists is returned by storages when the normalized email is taken.
var ErrUserAlreadyExists = errors.New("user with this email already exists")
