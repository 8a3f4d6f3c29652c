package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/djenkins26/products-app/internal/models"
	"github.com/lib/pq"
)

const pqUniqueViolation = "23505"

// Postgres is the relational backend built on database/sql and lib/pq.
type Postgres struct {
	db *sql.DB
}

// NewPostgres wraps an open connection pool.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// Users returns the credential store view of p.
func (p *Postgres) Users() UserRepository { return postgresUsers{p.db} }

// Products returns the resource store view of p.
func (p *Postgres) Products() ProductRepository { return postgresProducts{p.db} }

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// parseSerialID converts a model id into a BIGSERIAL key. Anything that is not
// a positive integer cannot exist in the table.
func parseSerialID(id string) (int64, bool) {
	value, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func formatSerialID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}

type postgresUsers struct{ db *sql.DB }

const userColumns = `id, email, hashed_password, COALESCE(token, ''), created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	var id int64
	if err := row.Scan(&id, &user.Email, &user.HashedPassword, &user.Token, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.ID = formatSerialID(id)
	return &user, nil
}

func (r postgresUsers) Create(ctx context.Context, user *models.User) error {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, hashed_password, token) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		user.Email, user.HashedPassword, user.Token,
	).Scan(&id, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = formatSerialID(id)
	return nil
}

func (r postgresUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	key, ok := parseSerialID(id)
	if !ok {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, key)
}

func (r postgresUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
}

func (r postgresUsers) FindByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE token = $1`, token)
}

func (r postgresUsers) findOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

func (r postgresUsers) UpdateToken(ctx context.Context, id, token string) error {
	return r.exec(ctx, `UPDATE users SET token = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, id, token)
}

func (r postgresUsers) UpdatePassword(ctx context.Context, id, hashedPassword string) error {
	return r.exec(ctx, `UPDATE users SET hashed_password = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`, id, hashedPassword)
}

func (r postgresUsers) exec(ctx context.Context, query, id, value string) error {
	key, ok := parseSerialID(id)
	if !ok {
		return ErrNotFound
	}
	result, err := r.db.ExecContext(ctx, query, value, key)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user %d: %w", key, err)
	}
	return expectAffected(result)
}

func (r postgresUsers) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return total, nil
}

type postgresProducts struct{ db *sql.DB }

const productColumns = `id, title, text, owner_id, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var product models.Product
	var id, owner int64
	if err := row.Scan(&id, &product.Title, &product.Text, &owner, &product.CreatedAt, &product.UpdatedAt); err != nil {
		return nil, err
	}
	product.ID = formatSerialID(id)
	product.Owner = formatSerialID(owner)
	return &product, nil
}

func (r postgresProducts) List(ctx context.Context, opts ListOptions) ([]models.Product, error) {
	// LIMIT NULL is "no limit" in Postgres.
	limit := sql.NullInt64{Int64: int64(opts.Limit), Valid: opts.Limit > 0}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY id ASC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func (r postgresProducts) FindByID(ctx context.Context, id string) (*models.Product, error) {
	key, ok := parseSerialID(id)
	if !ok {
		return nil, ErrNotFound
	}
	product, err := scanProduct(r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, key))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select product %d: %w", key, err)
	}
	return product, nil
}

func (r postgresProducts) Create(ctx context.Context, product *models.Product) error {
	owner, ok := parseSerialID(product.Owner)
	if !ok {
		return fmt.Errorf("insert product: invalid owner id %q", product.Owner)
	}

	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO products (title, text, owner_id) VALUES ($1, $2, $3) RETURNING id, created_at, updated_at`,
		product.Title, product.Text, owner,
	).Scan(&id, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	product.ID = formatSerialID(id)
	product.Owner = formatSerialID(owner)
	return nil
}

func (r postgresProducts) Update(ctx context.Context, id string, patch models.ProductPatch) error {
	key, ok := parseSerialID(id)
	if !ok {
		return ErrNotFound
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET title = COALESCE($1, title), text = COALESCE($2, text), updated_at = CURRENT_TIMESTAMP WHERE id = $3`,
		patch.Title, patch.Text, key,
	)
	if err != nil {
		return fmt.Errorf("update product %d: %w", key, err)
	}
	return expectAffected(result)
}

func (r postgresProducts) Delete(ctx context.Context, id string) error {
	key, ok := parseSerialID(id)
	if !ok {
		return ErrNotFound
	}
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, key)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", key, err)
	}
	return expectAffected(result)
}

func (r postgresProducts) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
