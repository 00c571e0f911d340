package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos/internal/domain"
	"pos/internal/repository"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, price::text, stock`

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	const stmt = `INSERT INTO products (name, price, stock) VALUES ($1, $2::numeric, $3) RETURNING id`
	if err := db(ctx, r.pool).QueryRow(ctx, stmt, p.Name, p.Price.String(), p.Stock).Scan(&p.ID); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetByID locks the row when called inside a transaction, so a stock check and
// the following update cannot interleave with another checkout.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if txFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}
	p, err := scanProduct(db(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1 ORDER BY id LIMIT 1`
	p, err := scanProduct(db(ctx, r.pool).QueryRow(ctx, query, name))
	if err != nil {
		return nil, fmt.Errorf("get product %q: %w", name, err)
	}
	return p, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	const stmt = `UPDATE products SET name = $2, price = $3::numeric, stock = $4 WHERE id = $1`
	tag, err := db(ctx, r.pool).Exec(ctx, stmt, p.ID, p.Name, p.Price.String(), p.Stock)
	if err != nil {
		return fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := db(ctx, r.pool).Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	var (
		where []string
		args  []any
	)
	if f.NameSubstring != "" {
		args = append(args, "%"+f.NameSubstring+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if f.MinPrice != nil {
		args = append(args, f.MinPrice.String())
		where = append(where, fmt.Sprintf("price >= $%d::numeric", len(args)))
	}
	if f.MaxPrice != nil {
		args = append(args, f.MaxPrice.String())
		where = append(where, fmt.Sprintf("price <= $%d::numeric", len(args)))
	}
	query := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &p.Stock); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	var err error
	if p.Price, err = parseDecimal(price); err != nil {
		return nil, err
	}
	return &p, nil
}
