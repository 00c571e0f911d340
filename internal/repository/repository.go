package repository

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"pos/internal/domain"
)

// ErrNotFound возвращается, когда сущность не найдена
var ErrNotFound = domain.ErrNotFound

// ProductFilter параметры фильтрации списка товаров
type ProductFilter struct {
	NameSubstring string
	MinPrice      *decimal.Decimal
	MaxPrice      *decimal.Decimal
}

// Match reports whether p passes the filter.
func (f ProductFilter) Match(p domain.Product) bool {
	if !containsIgnoreCase(p.Name, f.NameSubstring) {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	return true
}

// ProductRepository интерфейс репозитория товаров
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	GetByName(ctx context.Context, name string) (*domain.Product, error)
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, f ProductFilter) ([]domain.Product, error)
}

// CustomerRepository интерфейс репозитория покупателей
type CustomerRepository interface {
	Create(ctx context.Context, c *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByName(ctx context.Context, name string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Delete(ctx context.Context, id string) error
}

// SalespersonRepository интерфейс репозитория продавцов
type SalespersonRepository interface {
	Create(ctx context.Context, s *domain.Salesperson) error
	GetByID(ctx context.Context, id int64) (*domain.Salesperson, error)
	List(ctx context.Context) ([]domain.Salesperson, error)
	Delete(ctx context.Context, id int64) error
}

// TicketRepository интерфейс репозитория чеков; чек владеет своими позициями
type TicketRepository interface {
	Create(ctx context.Context, t *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context) ([]domain.Ticket, error)
}

// SaleRepository интерфейс журнала продаж
type SaleRepository interface {
	Create(ctx context.Context, s *domain.Sale) error
	List(ctx context.Context) ([]domain.Sale, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Sale, error)
}

// TxManager абстракция транзакции. При ошибке fn изменения не сохраняются.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// helper: case-insensitive contains
func containsIgnoreCase(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
