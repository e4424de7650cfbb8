package domain

import "errors"

var (
	ErrCredentialNotFound = errors.New("credential not found")
	ErrInvalidGoal        = errors.New("goal must be a positive integer")
)
