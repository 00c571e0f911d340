package service

import (
	"context"
	"strings"

	"pos/internal/domain"
	"pos/internal/repository"
)

// CustomerService просмотр и удаление покупателей; создаются они при оформлении продажи
type CustomerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) *CustomerService {
	return &CustomerService{repo: repo}
}

func (s *CustomerService) List(ctx context.Context) ([]domain.Customer, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list customers", err)
	}
	return list, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Validationf("customer id is required")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get customer", err)
	}
	return c, nil
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Validationf("customer id is required")
	}
	return storeErr("delete customer", s.repo.Delete(ctx, id))
}

// SalespersonService справочник продавцов
type SalespersonService struct {
	repo repository.SalespersonRepository
}

func NewSalespersonService(repo repository.SalespersonRepository) *SalespersonService {
	return &SalespersonService{repo: repo}
}

func (s *SalespersonService) Create(ctx context.Context, name string) (*domain.Salesperson, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("salesperson name is required")
	}
	sp := domain.Salesperson{Name: name}
	if err := s.repo.Create(ctx, &sp); err != nil {
		return nil, storeErr("create salesperson", err)
	}
	return &sp, nil
}

func (s *SalespersonService) GetByID(ctx context.Context, id int64) (*domain.Salesperson, error) {
	if id <= 0 {
		return nil, domain.Validationf("invalid salesperson id %d", id)
	}
	sp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get salesperson", err)
	}
	return sp, nil
}

func (s *SalespersonService) List(ctx context.Context) ([]domain.Salesperson, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list salespersons", err)
	}
	return list, nil
}

func (s *SalespersonService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.Validationf("invalid salesperson id %d", id)
	}
	return storeErr("delete salesperson", s.repo.Delete(ctx, id))
}

// Seed creates the named salespersons when none exist yet. It returns how many were created.
func (s *SalespersonService) Seed(ctx context.Context, names []string) (int, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}
	n := 0
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, err := s.Create(ctx, name); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
