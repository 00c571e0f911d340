package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product товар на складе точки продаж
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int64           `json:"stock"`
}

// Customer покупатель. Имя используется как ключ поиска, но не уникально в хранилище
type Customer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Salesperson продавец, справочные данные
type Salesperson struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// TicketItem позиция чека с ценой на момент продажи
type TicketItem struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// Ticket завершённая продажа: покупатель, продавец и позиции
type Ticket struct {
	ID              int64           `json:"id"`
	CustomerID      string          `json:"customer_id"`
	CustomerName    string          `json:"customer_name"`
	SalespersonID   int64           `json:"salesperson_id"`
	SalespersonName string          `json:"salesperson_name"`
	Items           []TicketItem    `json:"items"`
	Total           decimal.Decimal `json:"total"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Sale одна строка завершённой продажи
type Sale struct {
	ID              int64           `json:"id"`
	TicketID        int64           `json:"ticket_id"`
	ProductID       int64           `json:"product_id"`
	Quantity        int64           `json:"quantity"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	SalespersonName string          `json:"salesperson_name"`
}

// NewTicketItem builds a line with its total computed from price and quantity.
func NewTicketItem(p Product, quantity int64) TicketItem {
	return TicketItem{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		UnitPrice:   p.Price,
		LineTotal:   p.Price.Mul(decimal.NewFromInt(quantity)),
	}
}

// SumItems returns the grand total of the given lines.
func SumItems(items []TicketItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	return total
}
