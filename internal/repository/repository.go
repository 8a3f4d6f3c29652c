// Package repository provides the user and product stores behind the API.
package repository

import (
	"context"
	"errors"

	"github.com/djenkins26/products-app/internal/models"
)

var (
	// ErrNotFound is returned when no record matches the given id or key.
	// Malformed ids are reported the same way.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field (email, token) already exists.
	ErrDuplicate = errors.New("duplicate record")
)

// UserRepository defines the credential store.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByToken(ctx context.Context, token string) (*models.User, error)
	UpdateToken(ctx context.Context, id, token string) error
	UpdatePassword(ctx context.Context, id, hashedPassword string) error
	Count(ctx context.Context) (int64, error)
}

// ProductRepository defines the resource store.
type ProductRepository interface {
	List(ctx context.Context, opts ListOptions) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id string, patch models.ProductPatch) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// ListOptions bounds a product listing. Limit <= 0 means no limit.
type ListOptions struct {
	Limit  int
	Offset int
}

// Pinger is implemented by backends that hold a connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
