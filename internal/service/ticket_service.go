package service

import (
	"context"

	"pos/internal/domain"
	"pos/internal/receipt"
	"pos/internal/repository"
)

// TicketService чтение сохранённых чеков и журнала продаж
type TicketService struct {
	tickets repository.TicketRepository
	sales   repository.SaleRepository
}

func NewTicketService(tickets repository.TicketRepository, sales repository.SaleRepository) *TicketService {
	return &TicketService{tickets: tickets, sales: sales}
}

func (s *TicketService) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	if id <= 0 {
		return nil, domain.Validationf("invalid ticket id %d", id)
	}
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get ticket", err)
	}
	return t, nil
}

func (s *TicketService) List(ctx context.Context) ([]domain.Ticket, error) {
	list, err := s.tickets.List(ctx)
	if err != nil {
		return nil, storeErr("list tickets", err)
	}
	return list, nil
}

// Receipt renders the receipt of a stored ticket again.
func (s *TicketService) Receipt(ctx context.Context, id int64) ([]byte, error) {
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return receipt.Render(receipt.FromTicket(*t))
}

// ListSales returns the sales ledger, limited to one ticket when ticketID > 0.
func (s *TicketService) ListSales(ctx context.Context, ticketID int64) ([]domain.Sale, error) {
	var (
		list []domain.Sale
		err  error
	)
	if ticketID > 0 {
		list, err = s.sales.ListByTicket(ctx, ticketID)
	} else {
		list, err = s.sales.List(ctx)
	}
	if err != nil {
		return nil, storeErr("list sales", err)
	}
	return list, nil
}
