// Package service holds the product and account rules behind the HTTP handlers.
package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/djenkins26/products-app/internal/repository"
)

var (
	// ErrUnauthenticated means no identity was resolved for the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotOwner means the caller is authenticated but does not own the resource.
	ErrNotOwner = errors.New("not the owner of this resource")
	// ErrInvalidCredentials means an email/password pair did not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken means sign-up used an email that is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNotFound is the store's not-found error, surfaced unchanged.
	ErrNotFound = repository.ErrNotFound
)

// ValidationError lists invalid input fields and what is wrong with each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

type validator map[string]string

func (v validator) required(field, value string) {
	if value == "" {
		v[field] = "is required"
	}
}

func (v validator) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Fields: v}
}
