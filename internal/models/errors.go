package models

import (
	"errors"
)

var (
	ErrValidation = errors.New("validation error")

	// ErrRemoteService marks a null or unusable response from an external
	// AI provider. Fatal for the current message; the periodic sweep picks
	// unprocessed content back up.
	ErrRemoteService = errors.New("remote service call failed")
)
