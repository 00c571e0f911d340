package service

import (
	"context"
	"strings"

	"pos/internal/domain"
	"pos/internal/repository"
)

// ProductService инкапсулирует бизнес-логику вокруг товаров
type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func validateProduct(p *domain.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	switch {
	case p.Name == "":
		return domain.Validationf("product name is required")
	case p.Price.IsNegative():
		return domain.Validationf("price must not be negative")
	case !p.Price.Equal(p.Price.Round(2)):
		return domain.Validationf("price %s has more than 2 decimal places", p.Price)
	case p.Stock < 0:
		return domain.Validationf("stock must not be negative")
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	cp := p
	cp.ID = 0
	if err := validateProduct(&cp); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &cp); err != nil {
		return nil, storeErr("create product", err)
	}
	return &cp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.Validationf("invalid product id %d", id)
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("get product", err)
	}
	return p, nil
}

func (s *ProductService) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Validationf("product name is required")
	}
	p, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, storeErr("get product by name", err)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID <= 0 {
		return nil, domain.Validationf("invalid product id %d", p.ID)
	}
	cp := p
	if err := validateProduct(&cp); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &cp); err != nil {
		return nil, storeErr("update product", err)
	}
	return &cp, nil
}

// Save inserts p when it has no id yet and updates it otherwise.
func (s *ProductService) Save(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == 0 {
		return s.Create(ctx, p)
	}
	return s.Update(ctx, p)
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.Validationf("invalid product id %d", id)
	}
	return storeErr("delete product", s.repo.Delete(ctx, id))
}

func (s *ProductService) List(ctx context.Context, f repository.ProductFilter) ([]domain.Product, error) {
	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	return list, nil
}
