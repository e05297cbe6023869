package services

import "errors"

// Report service errors
var (
	ErrNoSource    = errors.New("no schedule source configured")
	ErrInvalidDate = errors.New("invalid report date")
)
