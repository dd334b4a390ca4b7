package services

import "errors"

var (
	ErrEmailInUse          = errors.New("email is already in use")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrTaskNotFound        = errors.New("task not found")
)
