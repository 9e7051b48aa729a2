package services

import "errors"

// Sentinel errors the handler layer maps onto HTTP status codes.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrNoRecommendations = errors.New("no recommendations found")
)
