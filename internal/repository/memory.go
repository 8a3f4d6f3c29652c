package repository

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/djenkins26/products-app/internal/models"
)

// Memory is an in-process backend holding users and products. It backs the
// "memory" store driver and the HTTP tests.
type Memory struct {
	mu       sync.RWMutex
	nextID   int64
	users    map[string]models.User
	products map[string]models.Product
	order    []string
	now      func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]models.User),
		products: make(map[string]models.Product),
		now:      time.Now,
	}
}

// Users returns the credential store view of m.
func (m *Memory) Users() UserRepository { return memoryUsers{m} }

// Products returns the resource store view of m.
func (m *Memory) Products() ProductRepository { return memoryProducts{m} }

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) newID() string {
	m.nextID++
	return strconv.FormatInt(m.nextID, 10)
}

type memoryUsers struct{ m *Memory }

func (r memoryUsers) Create(_ context.Context, user *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, existing := range r.m.users {
		if strings.ToLower(existing.Email) == email || (user.Token != "" && existing.Token == user.Token) {
			return ErrDuplicate
		}
	}

	now := r.m.now().UTC()
	user.ID = r.m.newID()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.m.users[user.ID] = *user
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	user, ok := r.m.users[models.NormalizeID(id)]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	email = strings.ToLower(email)
	for _, user := range r.m.users {
		if strings.ToLower(user.Email) == email {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) FindByToken(_ context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, user := range r.m.users {
		if user.Token == token {
			found := user
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) UpdateToken(_ context.Context, id, token string) error {
	return r.update(id, func(user *models.User) { user.Token = token })
}

func (r memoryUsers) UpdatePassword(_ context.Context, id, hashedPassword string) error {
	return r.update(id, func(user *models.User) { user.HashedPassword = hashedPassword })
}

func (r memoryUsers) update(id string, mutate func(*models.User)) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	id = models.NormalizeID(id)
	user, ok := r.m.users[id]
	if !ok {
		return ErrNotFound
	}
	mutate(&user)
	user.UpdatedAt = r.m.now().UTC()
	r.m.users[id] = user
	return nil
}

func (r memoryUsers) Count(context.Context) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return int64(len(r.m.users)), nil
}

type memoryProducts struct{ m *Memory }

func (r memoryProducts) List(_ context.Context, opts ListOptions) ([]models.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	ids := r.m.order
	if opts.Offset > 0 {
		if opts.Offset >= len(ids) {
			ids = nil
		} else {
			ids = ids[opts.Offset:]
		}
	}
	if opts.Limit > 0 && len(ids) > opts.Limit {
		ids = ids[:opts.Limit]
	}

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, r.m.products[id])
	}
	return products, nil
}

func (r memoryProducts) FindByID(_ context.Context, id string) (*models.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	product, ok := r.m.products[models.NormalizeID(id)]
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

func (r memoryProducts) Create(_ context.Context, product *models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	now := r.m.now().UTC()
	product.ID = r.m.newID()
	product.Owner = models.NormalizeID(product.Owner)
	product.CreatedAt = now
	product.UpdatedAt = now
	r.m.products[product.ID] = *product
	r.m.order = append(r.m.order, product.ID)
	return nil
}

func (r memoryProducts) Update(_ context.Context, id string, patch models.ProductPatch) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	id = models.NormalizeID(id)
	product, ok := r.m.products[id]
	if !ok {
		return ErrNotFound
	}
	patch.Apply(&product)
	product.UpdatedAt = r.m.now().UTC()
	r.m.products[id] = product
	return nil
}

func (r memoryProducts) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	id = models.NormalizeID(id)
	if _, ok := r.m.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.m.products, id)
	for i, existing := range r.m.order {
		if existing == id {
			r.m.order = append(r.m.order[:i], r.m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r memoryProducts) Count(context.Context) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return int64(len(r.m.products)), nil
}
