package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/validation"
)

var (
	// ErrNotFound covers both missing rows and rows owned by someone else.
	ErrNotFound = errors.New("not_found")
	// ErrNoSession is returned when a service is called without a signed-in user.
	ErrNoSession = errors.New("unauthorized")
	// ErrEmailTaken is returned by Signup for an address already registered.
	ErrEmailTaken = errors.New("email_taken")
	// ErrBadCredentials is returned by Authenticate.
	ErrBadCredentials = errors.New("invalid_credentials")
)

// ValidationError carries field-level messages. Nothing is written when it is
// returned.
type ValidationError struct {
	Fields validation.Violations
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
	return fmt.Sprintf("validation failed (%s)", strings.Join(parts, ", "))
}

func invalid(v validation.Violations) error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Fields: v}
}

func requireSession(s auth.Session) error {
	if !s.Valid() {
		return ErrNoSession
	}
	return nil
}
