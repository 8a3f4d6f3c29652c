package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/djenkins26/products-app/internal/models"
	"github.com/djenkins26/products-app/internal/repository"
	"github.com/rs/zerolog"
)

// ProductInput is the body accepted on create. Owner is never taken from input.
type ProductInput struct {
	Title string
	Text  string
}

// ProductService implements list/get/create/update/delete under the
// ownership policy: only the owner may update or delete a product.
type ProductService struct {
	products repository.ProductRepository
	log      zerolog.Logger
}

// NewProductService creates a ProductService over the given store.
func NewProductService(products repository.ProductRepository, log zerolog.Logger) *ProductService {
	return &ProductService{
		products: products,
		log:      log.With().Str("component", "products").Logger(),
	}
}

func (s *ProductService) List(ctx context.Context, opts repository.ListOptions) ([]models.Product, error) {
	products, err := s.products.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", id, err)
	}
	return product, nil
}

// Create validates input before anything is persisted and records caller as owner.
func (s *ProductService) Create(ctx context.Context, caller *models.User, input ProductInput) (*models.Product, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}

	v := validator{}
	v.required("title", input.Title)
	v.required("text", input.Text)
	if err := v.err(); err != nil {
		return nil, err
	}

	product := &models.Product{
		Title: input.Title,
		Text:  input.Text,
		Owner: models.NormalizeID(caller.ID),
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.log.Debug().Str("product_id", product.ID).Str("owner", product.Owner).Msg("product created")
	return product, nil
}

// Update applies the non-empty fields of patch. A patch with nothing to apply
// is a successful no-op.
func (s *ProductService) Update(ctx context.Context, caller *models.User, id string, patch models.ProductPatch) error {
	if _, err := s.authorize(ctx, caller, id); err != nil {
		return err
	}

	patch = patch.Normalize()
	if patch.IsEmpty() {
		return nil
	}
	if err := s.products.Update(ctx, id, patch); err != nil {
		return fmt.Errorf("update product %q: %w", id, err)
	}
	return nil
}

func (s *ProductService) Delete(ctx context.Context, caller *models.User, id string) error {
	if _, err := s.authorize(ctx, caller, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product %q: %w", id, err)
	}

	s.log.Debug().Str("product_id", id).Msg("product deleted")
	return nil
}

// authorize resolves identity, then existence, then ownership, in that order.
// A missing product has no owner to compare against, so it is reported as not
// found even to callers who would not own it.
func (s *ProductService) authorize(ctx context.Context, caller *models.User, id string) (*models.Product, error) {
	if caller == nil {
		return nil, ErrUnauthenticated
	}

	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("product %q: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load product %q: %w", id, err)
	}

	if !product.OwnedBy(caller.ID) {
		return nil, ErrNotOwner
	}
	return product, nil
}
