package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Giveaway flow errors
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrVerifierUnavailable = errors.New("subscription verifier unavailable")
	ErrCodeAlreadyUsed     = errors.New("promo code already used")
)
