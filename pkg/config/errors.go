package config

import "errors"

var (
	ErrParsingConfig     = errors.New("config.parsing_failed")
	ErrInvalidConfigType = errors.New("config.invalid_type")
	ErrNilPointer        = errors.New("config.nil_pointer")
	ErrLoadingEnvFile    = errors.New("config.env_file")
)
