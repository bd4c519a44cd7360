package services

import "errors"

// Failure taxonomy surfaced to handlers. Login failure deliberately does
// not distinguish "unknown email" from "wrong password" so responses never
// leak whether an account exists.
var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("not found")
)
