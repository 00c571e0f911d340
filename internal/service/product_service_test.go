package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"pos/internal/domain"
	"pos/internal/repository"
)

func setupPS(t *testing.T) *ProductService {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewProductService(store)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProduct_Create_Valid(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	p, err := ps.Create(ctx, domain.Product{Name: " Stapler ", Price: dec("100"), Stock: 10})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if p.ID == 0 {
		t.Fatalf("expected id assigned")
	}
	if p.Name != "Stapler" {
		t.Fatalf("name not trimmed: %q", p.Name)
	}
}

func TestProduct_Create_Invalid(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	if _, err := ps.Create(ctx, domain.Product{Name: "", Price: dec("1"), Stock: 1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error")
	}
	if _, err := ps.Create(ctx, domain.Product{Name: "N", Price: dec("-1"), Stock: 1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error")
	}
	if _, err := ps.Create(ctx, domain.Product{Name: "N", Price: dec("1"), Stock: -1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error")
	}
}

func TestProduct_PriceCents(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	if _, err := ps.Create(ctx, domain.Product{Name: "Eraser", Price: dec("0.125"), Stock: 1}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("sub-cent price must be rejected, got %v", err)
	}
	p, err := ps.Create(ctx, domain.Product{Name: "Eraser", Price: dec("0.120"), Stock: 1})
	if err != nil {
		t.Fatalf("trailing zero is still cents: %v", err)
	}
	p.Price = dec("0.125")
	if _, err := ps.Update(ctx, *p); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("update with sub-cent price must be rejected, got %v", err)
	}
}

func TestProduct_Update_Get_Delete(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	p, _ := ps.Create(ctx, domain.Product{Name: "A", Price: dec("10"), Stock: 5})

	// get
	got, err := ps.GetByID(ctx, p.ID)
	if err != nil || got.ID != p.ID {
		t.Fatalf("get failed: %v", err)
	}
	byName, err := ps.GetByName(ctx, "A")
	if err != nil || byName.ID != p.ID {
		t.Fatalf("get by name failed: %v", err)
	}

	// update
	p.Name = "A+"
	p.Price = dec("12")
	p.Stock = 7
	up, err := ps.Update(ctx, *p)
	if err != nil {
		t.Fatalf("update err: %v", err)
	}
	if up.Name != "A+" || !up.Price.Equal(dec("12")) || up.Stock != 7 {
		t.Fatalf("not updated")
	}

	// delete
	if err := ps.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete err: %v", err)
	}
	if _, err := ps.GetByID(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := ps.Delete(ctx, p.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestProduct_Save_InsertOrUpdate(t *testing.T) {
	ctx := context.Background()
	ps := setupPS(t)
	p, err := ps.Save(ctx, domain.Product{Name: "A", Price: dec("1"), Stock: 1})
	if err != nil || p.ID == 0 {
		t.Fatalf("save insert: %v", err)
	}
	p.Stock = 9
	up, err := ps.Save(ctx, *p)
	if err != nil || up.ID != p.ID || up.Stock != 9 {
		t.Fatalf("save update: %v %+v", err, up)
	}
	if _, err := ps.Save(ctx, domain.Product{ID: 99, Name: "X", Price: dec("1")}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("save of unknown id must be not found, got %v", err)
	}
}

func TestProduct_List_Filtering(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	ps := NewProductService(store)
	must := func(p *domain.Product, err error) *domain.Product {
		if err != nil {
			t.Fatal(err)
		}
		return p
	}
	_ = must(ps.Create(ctx, domain.Product{Name: "Printer paper", Price: dec("100"), Stock: 5}))
	_ = must(ps.Create(ctx, domain.Product{Name: "Pencil", Price: dec("50"), Stock: 5}))
	_ = must(ps.Create(ctx, domain.Product{Name: "Ink cartridge", Price: dec("150"), Stock: 5}))

	// substring
	list, err := ps.List(ctx, repository.ProductFilter{NameSubstring: "in"})
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected two items, got %d", len(list))
	}

	// min price
	min := dec("100")
	list, err = ps.List(ctx, repository.ProductFilter{MinPrice: &min})
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	for _, p := range list {
		if p.Price.LessThan(min) {
			t.Fatalf("price filter failed")
		}
	}

	// max price
	max := dec("100")
	list, err = ps.List(ctx, repository.ProductFilter{MaxPrice: &max})
	if err != nil {
		t.Fatalf("list err: %v", err)
	}
	for _, p := range list {
		if p.Price.GreaterThan(max) {
			t.Fatalf("price filter failed")
		}
	}
}

func TestSalesperson_SeedOnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	ss := NewSalespersonService(repository.NewMemorySalespersons(store))

	n, err := ss.Seed(ctx, []string{"Bob", " ", "Carol"})
	if err != nil || n != 2 {
		t.Fatalf("seed: %d %v", n, err)
	}
	n, err = ss.Seed(ctx, []string{"Dave"})
	if err != nil || n != 0 {
		t.Fatalf("second seed must be a no-op: %d %v", n, err)
	}
	if _, err := ss.Create(ctx, ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank salesperson: %v", err)
	}
}

func TestTicketService_ReceiptNotFound(t *testing.T) {
	f := setupCheckout(t)
	if _, err := f.tickets.Receipt(context.Background(), 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := f.tickets.GetByID(context.Background(), 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
