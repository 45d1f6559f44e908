package config

import (
	"strings"

	"github.com/thoreinstein/skillctx/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrUnsupportedVersion indicates a version other than 1.
	ErrUnsupportedVersion = errors.New("unsupported config version")

	// ErrInvalidValue indicates a field value outside its allowed range.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidPath indicates a malformed corpus directory.
	ErrInvalidPath = errors.New("invalid path")
)

// FieldError ties a validation error to a config key.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate checks cfg and returns every problem found.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error
	fail := func(field string, err error) {
		errs = append(errs, &FieldError{Field: field, Err: err})
	}

	if cfg.Version != 1 {
		fail("version", errors.Wrapf(ErrUnsupportedVersion, "got %d, want 1", cfg.Version))
	}
	if cfg.Budget <= 0 {
		fail("budget", errors.Wrapf(ErrInvalidValue, "must be positive, got %d", cfg.Budget))
	}
	if cfg.CharsPerToken <= 0 {
		fail("chars_per_token", errors.Wrapf(ErrInvalidValue, "must be positive, got %d", cfg.CharsPerToken))
	}
	if err := cfg.Weights.Validate(); err != nil {
		fail("weights", err)
	}
	if cfg.Cache.MaxEntries < 0 {
		fail("cache.max_entries", errors.Wrapf(ErrInvalidValue, "must not be negative, got %d", cfg.Cache.MaxEntries))
	}
	for _, dir := range cfg.CorpusDirs {
		if strings.TrimSpace(dir) == "" || strings.ContainsRune(dir, '\x00') {
			fail("corpus_dirs", errors.Wrapf(ErrInvalidPath, "%q", dir))
		}
	}
	return errs
}
