package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewTicketItem_LineTotal(t *testing.T) {
	p := Product{ID: 1, Name: "A", Price: decimal.RequireFromString("3.50"), Stock: 4}
	it := NewTicketItem(p, 3)
	if !it.LineTotal.Equal(decimal.RequireFromString("10.50")) {
		t.Fatalf("line total %v", it.LineTotal)
	}
	if it.ProductName != "A" || it.Quantity != 3 {
		t.Fatalf("unexpected item %+v", it)
	}
}

func TestSumItems(t *testing.T) {
	items := []TicketItem{
		NewTicketItem(Product{ID: 1, Price: decimal.RequireFromString("10.00")}, 2),
		NewTicketItem(Product{ID: 2, Price: decimal.RequireFromString("3.50")}, 1),
	}
	if got := SumItems(items); got.StringFixed(2) != "23.50" {
		t.Fatalf("total %s", got.StringFixed(2))
	}
	if got := SumItems(nil); !got.IsZero() {
		t.Fatalf("empty total %v", got)
	}
}

func TestInsufficientStockError_Is(t *testing.T) {
	var err error = &InsufficientStockError{ProductID: 3, ProductName: "C", Requested: 5, Available: 2}
	wrapped := fmt.Errorf("complete: %w", err)
	if !errors.Is(wrapped, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock")
	}
	var se *InsufficientStockError
	if !errors.As(wrapped, &se) || se.ProductName != "C" {
		t.Fatalf("expected typed error, got %v", wrapped)
	}
}

func TestPersistenceError_Unwrap(t *testing.T) {
	base := errors.New("disk full")
	err := &PersistenceError{Op: "save product", Err: base}
	if !errors.Is(err, base) {
		t.Fatalf("unwrap lost cause")
	}
	if err.Error() != "save product: disk full" {
		t.Fatalf("message %q", err.Error())
	}
}

func TestValidationf(t *testing.T) {
	err := Validationf("quantity must be positive, got %d", 0)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation")
	}
}
