package types

import "errors"

var (
	// ErrMissingInput means an expected input file does not exist.
	ErrMissingInput = errors.New("input file not found")
	// ErrMalformedInput means a delimited file could not be parsed structurally.
	ErrMalformedInput = errors.New("malformed delimited input")
	// ErrMissingColumns means a stage needs columns the table does not carry.
	ErrMissingColumns = errors.New("required columns missing")

	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidRequest  = errors.New("invalid request")

	ErrMissingChatKey     = errors.New("chat service key not configured")
	ErrWeatherUnavailable = errors.New("weather service unavailable")
	ErrChatFailed         = errors.New("chat completion failed")
)
