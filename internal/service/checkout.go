package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pos/internal/clock"
	"pos/internal/domain"
	"pos/internal/receipt"
	"pos/internal/repository"
)

// State этап оформления продажи
type State string

const (
	StateEmpty               State = "Empty"
	StateBuilding            State = "Building"
	StateAwaitingCustomer    State = "AwaitingCustomer"
	StateAwaitingSalesperson State = "AwaitingSalesperson"
	StateReadyToComplete     State = "ReadyToComplete"
	StateCompleted           State = "Completed"
	StateAborted             State = "Aborted"
)

// CheckoutService держит общие зависимости и создаёт независимые оформления продаж
type CheckoutService struct {
	products     repository.ProductRepository
	customers    repository.CustomerRepository
	salespersons repository.SalespersonRepository
	tickets      repository.TicketRepository
	sales        repository.SaleRepository
	tx           repository.TxManager
	clock        clock.Clock
	newID        func() string
}

type CheckoutDeps struct {
	Products     repository.ProductRepository
	Customers    repository.CustomerRepository
	Salespersons repository.SalespersonRepository
	Tickets      repository.TicketRepository
	Sales        repository.SaleRepository
	Tx           repository.TxManager
	Clock        clock.Clock
}

func NewCheckoutService(d CheckoutDeps) *CheckoutService {
	clk := d.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &CheckoutService{
		products:     d.Products,
		customers:    d.Customers,
		salespersons: d.Salespersons,
		tickets:      d.Tickets,
		sales:        d.Sales,
		tx:           d.Tx,
		clock:        clk,
		newID:        uuid.NewString,
	}
}

// NewCheckout starts an empty workflow. Each one owns its cart and selections.
func (s *CheckoutService) NewCheckout() *Checkout {
	return &Checkout{svc: s, cart: NewCart(), state: StateEmpty}
}

// Checkout одна продажа в процессе оформления
type Checkout struct {
	svc *CheckoutService

	mu          sync.Mutex
	cart        *Cart
	customer    *domain.Customer
	salesperson *domain.Salesperson
	state       State
	lastErr     string
}

// CompletedTransaction сохранённый чек и его квитанция
type CompletedTransaction struct {
	Ticket  domain.Ticket
	Receipt []byte
}

// CheckoutView снимок состояния для отображения
type CheckoutView struct {
	State       State               `json:"state"`
	Lines       []CartLine          `json:"lines"`
	Customer    *domain.Customer    `json:"customer,omitempty"`
	Salesperson *domain.Salesperson `json:"salesperson,omitempty"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	LastError   string              `json:"last_error,omitempty"`
}

func (c *Checkout) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Checkout) View() CheckoutView {
	c.mu.Lock()
	defer c.mu.Unlock()
	lines := c.cart.Snapshot()
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Product.Price.Mul(decimal.NewFromInt(l.Quantity)))
	}
	v := CheckoutView{State: c.state, Lines: lines, Subtotal: subtotal, LastError: c.lastErr}
	if c.customer != nil {
		cp := *c.customer
		v.Customer = &cp
	}
	if c.salesperson != nil {
		cp := *c.salesperson
		v.Salesperson = &cp
	}
	return v
}

// AddItem loads the product and puts it in the cart with the requested quantity.
func (c *Checkout) AddItem(ctx context.Context, productID, quantity int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if productID <= 0 {
		return c.fail(domain.Validationf("invalid product id %d", productID))
	}
	p, err := c.svc.products.GetByID(ctx, productID)
	if err != nil {
		return c.fail(storeErr(fmt.Sprintf("get product %d", productID), err))
	}
	if err := c.cart.AddItem(*p, quantity); err != nil {
		return c.fail(err)
	}
	c.advance()
	return nil
}

func (c *Checkout) RemoveItem(productID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cart.Remove(productID) {
		return c.fail(domain.NotFoundf("product %d is not in the cart", productID))
	}
	c.advance()
	return nil
}

// SelectCustomer finds a customer by exact name or creates one. created reports
// whether a new record was stored. Two workflows creating the same new name at
// the same moment can both insert; the store does not enforce unique names.
func (c *Checkout) SelectCustomer(ctx context.Context, name string) (customer domain.Customer, created bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Customer{}, false, c.fail(domain.Validationf("customer name is required"))
	}

	found, err := c.svc.customers.GetByName(ctx, name)
	switch {
	case err == nil:
		customer = *found
	case errors.Is(err, domain.ErrNotFound):
		customer = domain.Customer{ID: c.svc.newID(), Name: name}
		if err := c.svc.customers.Create(ctx, &customer); err != nil {
			return domain.Customer{}, false, c.fail(storeErr("create customer", err))
		}
		created = true
		log.Info().Str("customer_id", customer.ID).Str("name", name).Msg("new customer added")
	default:
		return domain.Customer{}, false, c.fail(storeErr("find customer", err))
	}

	c.customer = &customer
	c.advance()
	return customer, created, nil
}

func (c *Checkout) SelectSalesperson(ctx context.Context, id int64) (domain.Salesperson, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sp, err := c.svc.salespersons.GetByID(ctx, id)
	if err != nil {
		return domain.Salesperson{}, c.fail(storeErr(fmt.Sprintf("get salesperson %d", id), err))
	}
	c.salesperson = sp
	c.advance()
	return *sp, nil
}

// Complete checks every cart line against current stock before writing anything,
// then in the same transaction decrements stock, stores the ticket and one sale
// per line. On success the workflow is reset for the next transaction.
func (c *Checkout) Complete(ctx context.Context) (*CompletedTransaction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.cart.Len() == 0:
		return nil, c.fail(domain.Validationf("cart is empty"))
	case c.customer == nil:
		return nil, c.fail(domain.Validationf("customer is not selected"))
	case c.salesperson == nil:
		return nil, c.fail(domain.Validationf("salesperson is not selected"))
	}

	lines := c.cart.Snapshot()
	customer, salesperson := *c.customer, *c.salesperson

	// product rows are locked in id order; ticket items keep cart order
	locking := slices.Clone(lines)
	slices.SortFunc(locking, func(a, b CartLine) int { return cmp.Compare(a.Product.ID, b.Product.ID) })

	var ticket domain.Ticket
	err := c.svc.tx.WithTransaction(ctx, func(ctx context.Context) error {
		current := make(map[int64]domain.Product, len(locking))
		for _, l := range locking {
			p, err := c.svc.products.GetByID(ctx, l.Product.ID)
			if err != nil {
				return storeErr(fmt.Sprintf("get product %d", l.Product.ID), err)
			}
			if p.Stock < l.Quantity {
				return &domain.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   l.Quantity,
					Available:   p.Stock,
				}
			}
			current[p.ID] = *p
		}

		for _, l := range locking {
			p := current[l.Product.ID]
			p.Stock -= l.Quantity
			if err := c.svc.products.Update(ctx, &p); err != nil {
				return storeErr(fmt.Sprintf("save product %d", p.ID), err)
			}
		}

		items := make([]domain.TicketItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, domain.NewTicketItem(current[l.Product.ID], l.Quantity))
		}

		ticket = domain.Ticket{
			CustomerID:      customer.ID,
			CustomerName:    customer.Name,
			SalespersonID:   salesperson.ID,
			SalespersonName: salesperson.Name,
			Items:           items,
			Total:           domain.SumItems(items),
			CreatedAt:       c.svc.clock.Now(),
		}
		if err := c.svc.tickets.Create(ctx, &ticket); err != nil {
			return storeErr("create ticket", err)
		}
		for _, it := range items {
			sale := domain.Sale{
				TicketID:        ticket.ID,
				ProductID:       it.ProductID,
				Quantity:        it.Quantity,
				TotalPrice:      it.LineTotal,
				SalespersonName: salesperson.Name,
			}
			if err := c.svc.sales.Create(ctx, &sale); err != nil {
				return storeErr("create sale", err)
			}
		}
		return nil
	})
	if err != nil {
		log.Warn().Err(err).Str("customer", customer.Name).Msg("transaction aborted")
		return nil, c.fail(err)
	}

	c.state = StateCompleted
	log.Info().
		Int64("ticket_id", ticket.ID).
		Str("customer", customer.Name).
		Str("salesperson", salesperson.Name).
		Str("total", ticket.Total.StringFixed(2)).
		Msg("transaction completed")

	body, err := receipt.Render(receipt.FromTicket(ticket))
	c.reset()
	if err != nil {
		// ticket is stored; the receipt can be rendered again from it
		return &CompletedTransaction{Ticket: ticket}, err
	}
	return &CompletedTransaction{Ticket: ticket, Receipt: body}, nil
}

// Cancel abandons the transaction in progress.
func (c *Checkout) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Checkout) reset() {
	c.cart.Clear()
	c.customer = nil
	c.salesperson = nil
	c.state = StateEmpty
	c.lastErr = ""
}

// advance recomputes the state after a successful step.
func (c *Checkout) advance() {
	c.lastErr = ""
	switch {
	case c.cart.Len() == 0:
		c.state = StateBuilding
	case c.customer == nil:
		c.state = StateAwaitingCustomer
	case c.salesperson == nil:
		c.state = StateAwaitingSalesperson
	default:
		c.state = StateReadyToComplete
	}
}

// fail marks the step aborted and drops the workflow back to Building.
func (c *Checkout) fail(err error) error {
	c.lastErr = string(StateAborted) + ": " + err.Error()
	c.state = StateBuilding
	return err
}
