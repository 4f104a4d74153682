package domain

import (
	"errors"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Error kinds shared by every layer. Adapters map storage failures onto these
// and transport maps them onto status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("constraint violation")
	ErrDataTooLarge = errors.New("data too large")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError is a field-keyed set of client-correctable failures.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ValidationFromOzzo flattens ozzo's per-field errors. It returns nil when
// errs carries no failures.
func ValidationFromOzzo(errs validation.Errors) *ValidationError {
	fields := make(map[string]string, len(errs))
	for field, err := range errs {
		if err == nil {
			continue
		}
		fields[field] = err.Error()
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
