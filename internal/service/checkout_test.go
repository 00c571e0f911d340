package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"pos/internal/clock"
	"pos/internal/domain"
	"pos/internal/repository"
)

type fixture struct {
	store        *repository.MemoryStore
	products     *ProductService
	salespersons *SalespersonService
	tickets      *TicketService
	customers    repository.CustomerRepository
	checkouts    *CheckoutService
}

func setupCheckout(t *testing.T) *fixture {
	t.Helper()
	return setupCheckoutWith(t, nil)
}

// setupCheckoutWith lets a test wrap the product repository the workflow sees.
func setupCheckoutWith(t *testing.T, wrap func(repository.ProductRepository) repository.ProductRepository) *fixture {
	t.Helper()
	store := repository.NewMemoryStore()
	customers := repository.NewMemoryCustomers(store)
	salespersons := repository.NewMemorySalespersons(store)
	tickets := repository.NewMemoryTickets(store)
	sales := repository.NewMemorySales(store)

	var products repository.ProductRepository = store
	if wrap != nil {
		products = wrap(store)
	}
	return &fixture{
		store:        store,
		products:     NewProductService(store),
		salespersons: NewSalespersonService(salespersons),
		tickets:      NewTicketService(tickets, sales),
		customers:    customers,
		checkouts: NewCheckoutService(CheckoutDeps{
			Products:     products,
			Customers:    customers,
			Salespersons: salespersons,
			Tickets:      tickets,
			Sales:        sales,
			Tx:           repository.NewMemoryTx(store),
			Clock:        clock.NewFixed(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)),
		}),
	}
}

func (f *fixture) mustProduct(t *testing.T, name, price string, stock int64) *domain.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), domain.Product{Name: name, Price: decimal.RequireFromString(price), Stock: stock})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

func (f *fixture) mustSalesperson(t *testing.T, name string) *domain.Salesperson {
	t.Helper()
	sp, err := f.salespersons.Create(context.Background(), name)
	if err != nil {
		t.Fatalf("create salesperson: %v", err)
	}
	return sp
}

func (f *fixture) stock(t *testing.T, id int64) int64 {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	return p.Stock
}

func TestComplete_Success(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)
	a := f.mustProduct(t, "ProductA", "10.00", 5)
	b := f.mustProduct(t, "ProductB", "3.50", 1)
	bob := f.mustSalesperson(t, "Bob")

	co := f.checkouts.NewCheckout()
	if co.State() != StateEmpty {
		t.Fatalf("expected Empty, got %s", co.State())
	}
	if err := co.AddItem(ctx, a.ID, 2); err != nil {
		t.Fatalf("add a: %v", err)
	}
	if co.State() != StateAwaitingCustomer {
		t.Fatalf("expected AwaitingCustomer, got %s", co.State())
	}
	if err := co.AddItem(ctx, b.ID, 1); err != nil {
		t.Fatalf("add b: %v", err)
	}
	if _, _, err := co.SelectCustomer(ctx, "Alice"); err != nil {
		t.Fatalf("customer: %v", err)
	}
	if co.State() != StateAwaitingSalesperson {
		t.Fatalf("expected AwaitingSalesperson, got %s", co.State())
	}
	if _, err := co.SelectSalesperson(ctx, bob.ID); err != nil {
		t.Fatalf("salesperson: %v", err)
	}
	if co.State() != StateReadyToComplete {
		t.Fatalf("expected ReadyToComplete, got %s", co.State())
	}

	done, err := co.Complete(ctx)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if got := f.stock(t, a.ID); got != 3 {
		t.Fatalf("ProductA stock expected 3, got %d", got)
	}
	if got := f.stock(t, b.ID); got != 0 {
		t.Fatalf("ProductB stock expected 0, got %d", got)
	}
	if done.Ticket.Total.StringFixed(2) != "23.50" {
		t.Fatalf("total %s", done.Ticket.Total.StringFixed(2))
	}
	if !domain.SumItems(done.Ticket.Items).Equal(done.Ticket.Total) {
		t.Fatalf("line totals do not add up")
	}
	if done.Ticket.CustomerName != "Alice" || done.Ticket.SalespersonName != "Bob" {
		t.Fatalf("unexpected parties: %+v", done.Ticket)
	}

	doc := string(done.Receipt)
	for _, want := range []string{"Alice", "Bob", "ProductA", "ProductB", "23.50"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("receipt missing %q", want)
		}
	}

	// ticket and one sale per line are stored
	stored, err := f.tickets.GetByID(ctx, done.Ticket.ID)
	if err != nil || len(stored.Items) != 2 {
		t.Fatalf("stored ticket: %v %+v", err, stored)
	}
	sales, err := f.tickets.ListSales(ctx, done.Ticket.ID)
	if err != nil || len(sales) != 2 {
		t.Fatalf("sales: %v %+v", err, sales)
	}

	// reset for the next transaction
	if co.State() != StateEmpty {
		t.Fatalf("expected Empty after completion, got %s", co.State())
	}
	if v := co.View(); len(v.Lines) != 0 || v.Customer != nil || v.Salesperson != nil {
		t.Fatalf("workflow not reset: %+v", v)
	}
}

func TestComplete_InsufficientStock_NoMutation(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)
	a := f.mustProduct(t, "ProductA", "1.00", 10)
	c := f.mustProduct(t, "ProductC", "2.00", 5)
	sp := f.mustSalesperson(t, "Bob")

	co := f.checkouts.NewCheckout()
	if err := co.AddItem(ctx, a.ID, 4); err != nil {
		t.Fatal(err)
	}
	if err := co.AddItem(ctx, c.ID, 5); err != nil {
		t.Fatal(err)
	}
	_, _, _ = co.SelectCustomer(ctx, "Alice")
	_, _ = co.SelectSalesperson(ctx, sp.ID)

	// stock of C drops to 2 after it was put in the cart
	cc := *c
	cc.Stock = 2
	if _, err := f.products.Update(ctx, cc); err != nil {
		t.Fatal(err)
	}

	_, err := co.Complete(ctx)
	if !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	var se *domain.InsufficientStockError
	if !errors.As(err, &se) || se.ProductName != "ProductC" || se.Available != 2 || se.Requested != 5 {
		t.Fatalf("error must name ProductC: %v", err)
	}

	// ProductA was checked first and must not be decremented
	if got := f.stock(t, a.ID); got != 10 {
		t.Fatalf("ProductA stock mutated: %d", got)
	}
	if got := f.stock(t, c.ID); got != 2 {
		t.Fatalf("ProductC stock mutated: %d", got)
	}
	if list, _ := f.tickets.List(ctx); len(list) != 0 {
		t.Fatalf("ticket stored on failure")
	}
	if co.State() != StateBuilding {
		t.Fatalf("expected Building, got %s", co.State())
	}
	if v := co.View(); len(v.Lines) != 2 || !strings.HasPrefix(v.LastError, string(StateAborted)) {
		t.Fatalf("cart must survive a failed completion: %+v", v)
	}
}

func TestComplete_EmptyCart(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)
	sp := f.mustSalesperson(t, "Bob")
	co := f.checkouts.NewCheckout()
	_, _, _ = co.SelectCustomer(ctx, "Alice")
	_, _ = co.SelectSalesperson(ctx, sp.ID)

	if _, err := co.Complete(ctx); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if co.State() != StateBuilding {
		t.Fatalf("expected Building, got %s", co.State())
	}
}

func TestComplete_MissingSelections(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)
	a := f.mustProduct(t, "A", "1", 5)

	co := f.checkouts.NewCheckout()
	_ = co.AddItem(ctx, a.ID, 1)
	if _, err := co.Complete(ctx); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error without customer, got %v", err)
	}
	_, _, _ = co.SelectCustomer(ctx, "Alice")
	if _, err := co.Complete(ctx); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error without salesperson, got %v", err)
	}
	if got := f.stock(t, a.ID); got != 5 {
		t.Fatalf("stock mutated: %d", got)
	}
}

func TestAddItem_Validation(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)
	a := f.mustProduct(t, "A", "1", 2)
	co := f.checkouts.NewCheckout()

	if err := co.AddItem(ctx, a.ID, 0); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("zero quantity: %v", err)
	}
	if err := co.AddItem(ctx, a.ID, 3); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("over stock: %v", err)
	}
	if err := co.AddItem(ctx, 999, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing product: %v", err)
	}
	if v := co.View(); len(v.Lines) != 0 {
		t.Fatalf("cart changed: %+v", v)
	}
	if err := co.RemoveItem(a.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("remove missing line: %v", err)
	}
}

func TestSelectCustomer_FindOrCreate(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)
	co := f.checkouts.NewCheckout()

	if _, _, err := co.SelectCustomer(ctx, "  "); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank name: %v", err)
	}

	first, created, err := co.SelectCustomer(ctx, "NewName")
	if err != nil || !created || first.ID == "" {
		t.Fatalf("create: %v created=%v %+v", err, created, first)
	}
	second, created, err := co.SelectCustomer(ctx, "  NewName ")
	if err != nil || created {
		t.Fatalf("second lookup: %v created=%v", err, created)
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate customer created: %s vs %s", first.ID, second.ID)
	}
	list, _ := f.customers.List(ctx)
	if len(list) != 1 {
		t.Fatalf("expected one stored customer, got %d", len(list))
	}
}

func TestSelectSalesperson_NotFound(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)
	co := f.checkouts.NewCheckout()
	if _, err := co.SelectSalesperson(ctx, 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if co.State() != StateBuilding {
		t.Fatalf("expected Building, got %s", co.State())
	}
}

func TestCancel_ResetsWorkflow(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)
	a := f.mustProduct(t, "A", "1", 2)
	co := f.checkouts.NewCheckout()
	_ = co.AddItem(ctx, a.ID, 1)
	_, _, _ = co.SelectCustomer(ctx, "Alice")
	co.Cancel()
	if co.State() != StateEmpty || len(co.View().Lines) != 0 {
		t.Fatalf("cancel did not reset")
	}
	if got := f.stock(t, a.ID); got != 2 {
		t.Fatalf("cancel touched stock")
	}
}

func TestCheckouts_AreIndependent(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)
	a := f.mustProduct(t, "A", "1", 3)
	one := f.checkouts.NewCheckout()
	two := f.checkouts.NewCheckout()
	_ = one.AddItem(ctx, a.ID, 1)
	if len(two.View().Lines) != 0 {
		t.Fatalf("checkouts share a cart")
	}
}

// failingProducts fails Update for one product id.
type failingProducts struct {
	repository.ProductRepository
	failID int64
}

func (r failingProducts) Update(ctx context.Context, p *domain.Product) error {
	if p.ID == r.failID {
		return errors.New("write failed")
	}
	return r.ProductRepository.Update(ctx, p)
}

func TestComplete_PersistenceErrorRollsBack(t *testing.T) {
	ctx := context.Background()
	f := setupCheckoutWith(t, func(r repository.ProductRepository) repository.ProductRepository {
		return failingProducts{ProductRepository: r, failID: 2}
	})
	a := f.mustProduct(t, "A", "1", 5)
	b := f.mustProduct(t, "B", "1", 5)
	if b.ID != 2 {
		t.Fatalf("unexpected id %d", b.ID)
	}
	sp := f.mustSalesperson(t, "Bob")

	co := f.checkouts.NewCheckout()
	_ = co.AddItem(ctx, a.ID, 1)
	_ = co.AddItem(ctx, b.ID, 1)
	_, _, _ = co.SelectCustomer(ctx, "Alice")
	_, _ = co.SelectSalesperson(ctx, sp.ID)

	_, err := co.Complete(ctx)
	var pe *domain.PersistenceError
	if !errors.As(err, &pe) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if got := f.stock(t, a.ID); got != 5 {
		t.Fatalf("A stock not rolled back: %d", got)
	}
}

func TestComplete_UsesPriceAtTimeOfSale(t *testing.T) {
	ctx := context.Background()
	f := setupCheckout(t)
	a := f.mustProduct(t, "A", "2.00", 5)
	sp := f.mustSalesperson(t, "Bob")
	co := f.checkouts.NewCheckout()
	_ = co.AddItem(ctx, a.ID, 3)
	_, _, _ = co.SelectCustomer(ctx, "Alice")
	_, _ = co.SelectSalesperson(ctx, sp.ID)

	changed := *a
	changed.Price = decimal.RequireFromString("2.50")
	if _, err := f.products.Update(ctx, changed); err != nil {
		t.Fatal(err)
	}
	done, err := co.Complete(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if done.Ticket.Total.StringFixed(2) != "7.50" {
		t.Fatalf("expected 7.50, got %s", done.Ticket.Total.StringFixed(2))
	}
	if !done.Ticket.CreatedAt.Equal(time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("ticket time not from clock: %v", done.Ticket.CreatedAt)
	}
}

// recordingProducts remembers the order of product reads.
type recordingProducts struct {
	repository.ProductRepository
	reads *[]int64
}

func (r recordingProducts) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	*r.reads = append(*r.reads, id)
	return r.ProductRepository.GetByID(ctx, id)
}

func TestComplete_LocksInIDOrderKeepsCartOrder(t *testing.T) {
	ctx := context.Background()
	var reads []int64
	f := setupCheckoutWith(t, func(r repository.ProductRepository) repository.ProductRepository {
		return recordingProducts{ProductRepository: r, reads: &reads}
	})
	a := f.mustProduct(t, "A", "1.00", 5)
	b := f.mustProduct(t, "B", "2.00", 5)
	c := f.mustProduct(t, "C", "3.00", 5)
	sp := f.mustSalesperson(t, "Bob")

	co := f.checkouts.NewCheckout()
	for _, id := range []int64{c.ID, a.ID, b.ID} {
		if err := co.AddItem(ctx, id, 1); err != nil {
			t.Fatal(err)
		}
	}
	_, _, _ = co.SelectCustomer(ctx, "Alice")
	_, _ = co.SelectSalesperson(ctx, sp.ID)

	reads = reads[:0]
	done, err := co.Complete(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(reads) != 3 || reads[0] != a.ID || reads[1] != b.ID || reads[2] != c.ID {
		t.Fatalf("rows read out of id order: %v", reads)
	}
	items := done.Ticket.Items
	if len(items) != 3 || items[0].ProductName != "C" || items[1].ProductName != "A" || items[2].ProductName != "B" {
		t.Fatalf("ticket items must follow cart order: %+v", items)
	}
	for _, id := range []int64{a.ID, b.ID, c.ID} {
		if got := f.stock(t, id); got != 4 {
			t.Fatalf("stock of %d: %d", id, got)
		}
	}
}
