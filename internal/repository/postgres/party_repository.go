package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos/internal/domain"
	"pos/internal/repository"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
}

var _ repository.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		return domain.Validationf("customer id is required")
	}
	if _, err := db(ctx, r.pool).Exec(ctx, `INSERT INTO customers (id, name) VALUES ($1, $2)`, c.ID, c.Name); err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := db(ctx, r.pool).QueryRow(ctx, `SELECT id, name FROM customers WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, notFoundOr(err, "get customer")
	}
	return &c, nil
}

// GetByName matches exactly; with duplicate names the smallest id wins.
func (r *CustomerRepository) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	var c domain.Customer
	err := db(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name FROM customers WHERE name = $1 ORDER BY id LIMIT 1`, name,
	).Scan(&c.ID, &c.Name)
	if err != nil {
		return nil, notFoundOr(err, "get customer by name")
	}
	return &c, nil
}

func (r *CustomerRepository) List(ctx context.Context) ([]domain.Customer, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `SELECT id, name FROM customers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Customer, error) {
		var c domain.Customer
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, "delete customer", `DELETE FROM customers WHERE id = $1`, id)
}

type SalespersonRepository struct {
	pool *pgxpool.Pool
}

var _ repository.SalespersonRepository = (*SalespersonRepository)(nil)

func NewSalespersonRepository(pool *pgxpool.Pool) *SalespersonRepository {
	return &SalespersonRepository{pool: pool}
}

func (r *SalespersonRepository) Create(ctx context.Context, s *domain.Salesperson) error {
	if err := db(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO salespersons (name) VALUES ($1) RETURNING id`, s.Name,
	).Scan(&s.ID); err != nil {
		return fmt.Errorf("create salesperson: %w", err)
	}
	return nil
}

func (r *SalespersonRepository) GetByID(ctx context.Context, id int64) (*domain.Salesperson, error) {
	var s domain.Salesperson
	err := db(ctx, r.pool).QueryRow(ctx, `SELECT id, name FROM salespersons WHERE id = $1`, id).Scan(&s.ID, &s.Name)
	if err != nil {
		return nil, notFoundOr(err, "get salesperson")
	}
	return &s, nil
}

func (r *SalespersonRepository) List(ctx context.Context) ([]domain.Salesperson, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `SELECT id, name FROM salespersons ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list salespersons: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Salesperson, error) {
		var s domain.Salesperson
		err := row.Scan(&s.ID, &s.Name)
		return s, err
	})
}

func (r *SalespersonRepository) Delete(ctx context.Context, id int64) error {
	return execOne(ctx, r.pool, "delete salesperson", `DELETE FROM salespersons WHERE id = $1`, id)
}

func notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func execOne(ctx context.Context, pool *pgxpool.Pool, op, stmt string, args ...any) error {
	tag, err := db(ctx, pool).Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
