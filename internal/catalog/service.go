package catalog

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RepositoryPort abstracts product persistence.
type RepositoryPort interface {
	List(ctx context.Context) ([]Product, error)
	Search(ctx context.Context, query string) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, p Product) error
	Update(ctx context.Context, p Product) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	SalesByProduct(ctx context.Context, productID string) ([]ProductSale, error)
}

// Service holds product business rules.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	now    func() time.Time
}

// NewService wires a catalog service.
func NewService(logger *slog.Logger, repo RepositoryPort) *Service {
	return &Service{logger: logger, repo: repo, now: time.Now}
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	ID            string  `json:"productId"`
	Name          string  `json:"name" validate:"required"`
	Code          string  `json:"code"`
	Price         float64 `json:"price" validate:"gte=0"`
	StockQuantity float64 `json:"stockQuantity" validate:"gte=0"`
	TypeTax       TaxType `json:"typeTax" validate:"required"`
	ValueTax      float64 `json:"valueTax"`
	IncludeTax    bool    `json:"includeTax"`
}

func (s *Service) validateTax(in ProductInput) error {
	if !in.TypeTax.Valid() {
		return ErrInvalidTaxType
	}
	if math.Abs(in.ValueTax-in.TypeTax.Rate()) > 1e-9 {
		return ErrTaxMismatch
	}
	return nil
}

// List returns all products.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Search matches name or code case-insensitively.
func (s *Service) Search(ctx context.Context, query string) ([]Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.repo.List(ctx)
	}
	return s.repo.Search(ctx, query)
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a product. The tax value must match the canonical rate of
// the chosen category.
func (s *Service) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := s.validateTax(in); err != nil {
		return Product{}, err
	}
	now := s.now().UTC()
	p := Product{
		ID:            in.ID,
		Name:          strings.TrimSpace(in.Name),
		Code:          strings.TrimSpace(in.Code),
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		TypeTax:       in.TypeTax,
		ValueTax:      in.ValueTax,
		IncludeTax:    in.IncludeTax,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return Product{}, err
	}
	s.logger.Info("product created", "id", p.ID, "code", p.Code)
	return p, nil
}

// Update rewrites a product's fields.
func (s *Service) Update(ctx context.Context, id string, in ProductInput) (Product, error) {
	if err := s.validateTax(in); err != nil {
		return Product{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	current.Name = strings.TrimSpace(in.Name)
	current.Code = strings.TrimSpace(in.Code)
	current.Price = in.Price
	current.StockQuantity = in.StockQuantity
	current.TypeTax = in.TypeTax
	current.ValueTax = in.ValueTax
	current.IncludeTax = in.IncludeTax
	current.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, current); err != nil {
		return Product{}, err
	}
	return current, nil
}

// ApplyTaxType reclassifies a product and reprices it: moving into IGV
// grosses the price up by the rate, moving out nets it back down, staying on
// the same side leaves it untouched. Repeated toggling drifts by floating
// point, which mirrors how the price fields behave on receipts.
func (s *Service) ApplyTaxType(ctx context.Context, id string, newType TaxType) (Product, error) {
	if !newType.Valid() {
		return Product{}, ErrInvalidTaxType
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	switch {
	case newType == TaxIGV && p.TypeTax != TaxIGV:
		p.Price = p.Price * (1 + TaxIGV.Rate())
	case newType != TaxIGV && p.TypeTax == TaxIGV:
		p.Price = p.Price / (1 + TaxIGV.Rate())
	}
	p.TypeTax = newType
	p.ValueTax = newType.Rate()
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

// DeleteMany removes a batch of products.
func (s *Service) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrProductNotFound
	}
	deleted, err := s.repo.DeleteMany(ctx, ids)
	if err != nil {
		return 0, err
	}
	s.logger.Info("products deleted", "requested", len(ids), "deleted", deleted)
	return deleted, nil
}

// SalesByProduct lists the sales that included the product.
func (s *Service) SalesByProduct(ctx context.Context, productID string) ([]ProductSale, error) {
	return s.repo.SalesByProduct(ctx, productID)
}
