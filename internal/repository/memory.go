package repository

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"

	"pos/internal/domain"
)

type idSeq struct {
	product, salesperson, ticket, sale int64
}

// MemoryStore объединённое in-memory хранилище и простой генератор ID
type MemoryStore struct {
	mu               sync.RWMutex
	seq              idSeq
	productsByID     map[int64]domain.Product
	customersByID    map[string]domain.Customer
	salespersonsByID map[int64]domain.Salesperson
	ticketsByID      map[int64]domain.Ticket
	salesByID        map[int64]domain.Sale
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		productsByID:     make(map[int64]domain.Product),
		customersByID:    make(map[string]domain.Customer),
		salespersonsByID: make(map[int64]domain.Salesperson),
		ticketsByID:      make(map[int64]domain.Ticket),
		salesByID:        make(map[int64]domain.Sale),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var (
	_ ProductRepository     = (*MemoryStore)(nil)
	_ CustomerRepository    = (*MemoryCustomers)(nil)
	_ SalespersonRepository = (*MemorySalespersons)(nil)
	_ TicketRepository      = (*MemoryTickets)(nil)
	_ SaleRepository        = (*MemorySales)(nil)
	_ TxManager             = (*MemoryTx)(nil)
)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	m.seq.product++
	p.ID = m.seq.product
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

// GetByName returns the product with the lowest id among exact name matches.
func (m *MemoryStore) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	var found *domain.Product
	for _, p := range m.productsByID {
		if p.Name != name {
			continue
		}
		if found == nil || p.ID < found.ID {
			cp := p
			found = &cp
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[p.ID]; !ok {
		return ErrNotFound
	}
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.productsByID, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range m.productsByID {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Product) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// MemoryCustomers CustomerRepository поверх общего хранилища
type MemoryCustomers struct{ store *MemoryStore }

func NewMemoryCustomers(store *MemoryStore) *MemoryCustomers { return &MemoryCustomers{store: store} }

// Create stores c under its own id; the caller generates it.
func (mc *MemoryCustomers) Create(ctx context.Context, c *domain.Customer) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if c.ID == "" {
		return domain.Validationf("customer id is required")
	}
	mc.store.customersByID[c.ID] = *c
	return nil
}

func (mc *MemoryCustomers) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	c, ok := mc.store.customersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (mc *MemoryCustomers) GetByName(ctx context.Context, name string) (*domain.Customer, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	var found *domain.Customer
	for _, c := range mc.store.customersByID {
		if c.Name != name {
			continue
		}
		// several rows may share a name; pick a stable one
		if found == nil || c.ID < found.ID {
			cp := c
			found = &cp
		}
	}
	if found == nil {
		return nil, ErrNotFound
	}
	return found, nil
}

func (mc *MemoryCustomers) List(ctx context.Context) ([]domain.Customer, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := slices.Collect(maps.Values(mc.store.customersByID))
	slices.SortFunc(out, func(a, b domain.Customer) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (mc *MemoryCustomers) Delete(ctx context.Context, id string) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.customersByID[id]; !ok {
		return ErrNotFound
	}
	delete(mc.store.customersByID, id)
	return nil
}

// MemorySalespersons SalespersonRepository поверх общего хранилища
type MemorySalespersons struct{ store *MemoryStore }

func NewMemorySalespersons(store *MemoryStore) *MemorySalespersons {
	return &MemorySalespersons{store: store}
}

func (ms *MemorySalespersons) Create(ctx context.Context, s *domain.Salesperson) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	ms.store.seq.salesperson++
	s.ID = ms.store.seq.salesperson
	ms.store.salespersonsByID[s.ID] = *s
	return nil
}

func (ms *MemorySalespersons) GetByID(ctx context.Context, id int64) (*domain.Salesperson, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	s, ok := ms.store.salespersonsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (ms *MemorySalespersons) List(ctx context.Context) ([]domain.Salesperson, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	out := slices.Collect(maps.Values(ms.store.salespersonsByID))
	slices.SortFunc(out, func(a, b domain.Salesperson) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (ms *MemorySalespersons) Delete(ctx context.Context, id int64) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	if _, ok := ms.store.salespersonsByID[id]; !ok {
		return ErrNotFound
	}
	delete(ms.store.salespersonsByID, id)
	return nil
}

// MemoryTickets TicketRepository поверх общего хранилища
type MemoryTickets struct{ store *MemoryStore }

func NewMemoryTickets(store *MemoryStore) *MemoryTickets { return &MemoryTickets{store: store} }

func (mt *MemoryTickets) Create(ctx context.Context, t *domain.Ticket) error {
	mt.store.wlock(ctx)
	defer mt.store.wunlock(ctx)
	mt.store.seq.ticket++
	t.ID = mt.store.seq.ticket
	cp := *t
	cp.Items = slices.Clone(t.Items)
	mt.store.ticketsByID[t.ID] = cp
	return nil
}

func (mt *MemoryTickets) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	t, ok := mt.store.ticketsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	t.Items = slices.Clone(t.Items)
	return &t, nil
}

func (mt *MemoryTickets) List(ctx context.Context) ([]domain.Ticket, error) {
	mt.store.rlock(ctx)
	defer mt.store.runlock(ctx)
	out := make([]domain.Ticket, 0, len(mt.store.ticketsByID))
	for _, t := range mt.store.ticketsByID {
		t.Items = slices.Clone(t.Items)
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b domain.Ticket) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

// MemorySales SaleRepository поверх общего хранилища
type MemorySales struct{ store *MemoryStore }

func NewMemorySales(store *MemoryStore) *MemorySales { return &MemorySales{store: store} }

func (ms *MemorySales) Create(ctx context.Context, s *domain.Sale) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	ms.store.seq.sale++
	s.ID = ms.store.seq.sale
	ms.store.salesByID[s.ID] = *s
	return nil
}

func (ms *MemorySales) List(ctx context.Context) ([]domain.Sale, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	return ms.collect(func(domain.Sale) bool { return true }), nil
}

func (ms *MemorySales) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Sale, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	return ms.collect(func(s domain.Sale) bool { return s.TicketID == ticketID }), nil
}

func (ms *MemorySales) collect(keep func(domain.Sale) bool) []domain.Sale {
	out := make([]domain.Sale, 0)
	for _, s := range ms.store.salesByID {
		if keep(s) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b domain.Sale) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// MemoryTx эмулирует транзакцию: глобальная блокировка записи и откат к снимку при ошибке
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if isTx(ctx) {
		return fn(ctx)
	}
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	snap := tx.store.snapshot()
	ctx = context.WithValue(ctx, txKey{}, true)
	if err := fn(ctx); err != nil {
		tx.store.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	seq          idSeq
	products     map[int64]domain.Product
	customers    map[string]domain.Customer
	salespersons map[int64]domain.Salesperson
	tickets      map[int64]domain.Ticket
	sales        map[int64]domain.Sale
}

// snapshot must be called with mu held. Ticket items are never mutated in place,
// so a shallow map clone is enough.
func (m *MemoryStore) snapshot() memorySnapshot {
	return memorySnapshot{
		seq:          m.seq,
		products:     maps.Clone(m.productsByID),
		customers:    maps.Clone(m.customersByID),
		salespersons: maps.Clone(m.salespersonsByID),
		tickets:      maps.Clone(m.ticketsByID),
		sales:        maps.Clone(m.salesByID),
	}
}

func (m *MemoryStore) restore(s memorySnapshot) {
	m.seq = s.seq
	m.productsByID = s.products
	m.customersByID = s.customers
	m.salespersonsByID = s.salespersons
	m.ticketsByID = s.tickets
	m.salesByID = s.sales
}
