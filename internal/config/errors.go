package config

import (
	"errors"
	"fmt"
)

// Kind sentinels for ConfigError.
var (
	ErrIO        = errors.New("config io")
	ErrMalformed = errors.New("config malformed")
)

// ConfigError wraps a failure to read or write the servers file.
type ConfigError struct {
	Kind error
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	switch e.Kind {
	case ErrMalformed:
		return fmt.Sprintf("servers file %s is malformed: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("servers file %s: %v", e.Path, e.Err)
	}
}

// Is matches both the kind sentinel and anything in the wrapped chain.
func (e *ConfigError) Is(target error) bool { return target == e.Kind }

func (e *ConfigError) Unwrap() error { return e.Err }

func ioError(path string, err error) error {
	return &ConfigError{Kind: ErrIO, Path: path, Err: err}
}

func malformed(path string, err error) error {
	return &ConfigError{Kind: ErrMalformed, Path: path, Err: err}
}
