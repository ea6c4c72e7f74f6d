package domain

import "errors"

// Authentication.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionNotFound    = errors.New("session not found")
)

// Authorization.
var (
	ErrAccessDenied   = errors.New("access denied")
	ErrPathTraversal  = errors.New("path escapes base directory")
	ErrFileNotAllowed = errors.New("file not in allow-list")
)

// Lookup.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrAccountNotFound = errors.New("account not found")
	ErrFileNotFound    = errors.New("file not found")
)

// Input.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidFilename = errors.New("invalid filename")
	ErrInvalidEmail    = errors.New("invalid email")
)

// ErrStore wraps record store failures. Its detail is never shown to clients.
var ErrStore = errors.New("store error")
