package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pos/internal/domain"
	"pos/internal/repository"
)

// TicketRepository stores tickets with their items; items are removed with the ticket.
type TicketRepository struct {
	pool *pgxpool.Pool
	tx   *TxManager
}

var _ repository.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool, tx: NewTxManager(pool)}
}

func (r *TicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	return r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		q := db(ctx, r.pool)
		err := q.QueryRow(ctx, `
INSERT INTO tickets (customer_id, customer_name, salesperson_id, salesperson_name, total, created_at)
VALUES ($1, $2, $3, $4, $5::numeric, $6)
RETURNING id`,
			t.CustomerID, t.CustomerName, t.SalespersonID, t.SalespersonName, t.Total.String(), t.CreatedAt,
		).Scan(&t.ID)
		if err != nil {
			return fmt.Errorf("create ticket: %w", err)
		}

		if len(t.Items) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for i, it := range t.Items {
			batch.Queue(`
INSERT INTO ticket_items (ticket_id, position, product_id, product_name, quantity, unit_price, line_total)
VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric)`,
				t.ID, i, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice.String(), it.LineTotal.String())
		}
		if err := q.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("create ticket items: %w", err)
		}
		return nil
	})
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	t, err := scanTicket(db(ctx, r.pool).QueryRow(ctx, ticketSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundOr(err, "get ticket")
	}
	if t.Items, err = r.items(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TicketRepository) List(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := db(ctx, r.pool).Query(ctx, ticketSelect+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	tickets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Ticket, error) {
		t, err := scanTicket(row)
		if err != nil {
			return domain.Ticket{}, err
		}
		return *t, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	for i := range tickets {
		if tickets[i].Items, err = r.items(ctx, tickets[i].ID); err != nil {
			return nil, err
		}
	}
	return tickets, nil
}

const ticketSelect = `
SELECT id, customer_id, customer_name, salesperson_id, salesperson_name, total::text, created_at
FROM tickets`

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		t     domain.Ticket
		total string
	)
	if err := row.Scan(&t.ID, &t.CustomerID, &t.CustomerName, &t.SalespersonID, &t.SalespersonName, &total, &t.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if t.Total, err = parseDecimal(total); err != nil {
		return nil, err
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return &t, nil
}

func (r *TicketRepository) items(ctx context.Context, ticketID int64) ([]domain.TicketItem, error) {
	rows, err := db(ctx, r.pool).Query(ctx, `
SELECT product_id, product_name, quantity, unit_price::text, line_total::text
FROM ticket_items WHERE ticket_id = $1 ORDER BY position`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list ticket items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TicketItem, error) {
		var (
			it          domain.TicketItem
			unit, total string
		)
		if err := row.Scan(&it.ProductID, &it.ProductName, &it.Quantity, &unit, &total); err != nil {
			return it, err
		}
		var err error
		if it.UnitPrice, err = parseDecimal(unit); err != nil {
			return it, err
		}
		it.LineTotal, err = parseDecimal(total)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("list ticket items: %w", err)
	}
	return items, nil
}

type SaleRepository struct {
	pool *pgxpool.Pool
}

var _ repository.SaleRepository = (*SaleRepository)(nil)

func NewSaleRepository(pool *pgxpool.Pool) *SaleRepository {
	return &SaleRepository{pool: pool}
}

func (r *SaleRepository) Create(ctx context.Context, s *domain.Sale) error {
	err := db(ctx, r.pool).QueryRow(ctx, `
INSERT INTO sales (ticket_id, product_id, quantity, total_price, salesperson_name)
VALUES ($1, $2, $3, $4::numeric, $5)
RETURNING id`,
		s.TicketID, s.ProductID, s.Quantity, s.TotalPrice.String(), s.SalespersonName,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

func (r *SaleRepository) List(ctx context.Context) ([]domain.Sale, error) {
	return r.list(ctx, saleSelect+` ORDER BY id`)
}

func (r *SaleRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Sale, error) {
	return r.list(ctx, saleSelect+` WHERE ticket_id = $1 ORDER BY id`, ticketID)
}

const saleSelect = `SELECT id, ticket_id, product_id, quantity, total_price::text, salesperson_name FROM sales`

func (r *SaleRepository) list(ctx context.Context, query string, args ...any) ([]domain.Sale, error) {
	rows, err := db(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Sale, error) {
		var (
			s     domain.Sale
			total string
		)
		if err := row.Scan(&s.ID, &s.TicketID, &s.ProductID, &s.Quantity, &total, &s.SalespersonName); err != nil {
			return s, err
		}
		var err error
		s.TotalPrice, err = parseDecimal(total)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}
