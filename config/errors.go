package config

import "errors"

// Configuration errors.
var (
	ErrNotFound     = errors.New("config not found")
	ErrReadFailure  = errors.New("unable to read config")
	ErrParseFailure = errors.New("unable to parse config")
)
