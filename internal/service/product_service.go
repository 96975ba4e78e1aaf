package service

import (
	"context"
	"errors"
	"fmt"

	"steelpricing/internal/dto"
	"steelpricing/internal/model"
	"steelpricing/internal/pricing"
	"steelpricing/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when an operation references a product id
// with no matching catalog row. Handlers map it to 404.
var ErrProductNotFound = errors.New("product not found")

// ProductService defines the business logic contract for the catalog.
type ProductService interface {
	Create(ctx context.Context, req dto.SaveProductRequest) (*dto.ProductResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.SaveProductRequest) (*dto.ProductResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

// applyBasisRules validates the persisted basis against the category's
// allowed set and falls back to the category default when missing or not
// allowed. Weight-priced bases require a recorded unit weight.
func applyBasisRules(category, requested string, unitWeight decimal.Decimal) (string, error) {
	basis := pricing.Basis(requested)
	if requested == "" {
		basis = pricing.DefaultBasis(category)
	} else {
		allowed := false
		for _, b := range pricing.AllowedBases(category) {
			if b == basis {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", fmt.Errorf("basis %s is not allowed for category %s", requested, category)
		}
	}
	if pricing.RequiresWeight(basis) && unitWeight.IsZero() {
		return "", fmt.Errorf("basis %s requires a unit weight", basis)
	}
	return string(basis), nil
}

func (s *productService) Create(ctx context.Context, req dto.SaveProductRequest) (*dto.ProductResponse, error) {
	weight := decimal.Zero
	if req.UnitWeightKg != nil {
		weight = *req.UnitWeightKg
	}
	basis, err := applyBasisRules(req.Category, req.PricingBasis, weight)
	if err != nil {
		return nil, err
	}

	vat := req.VATTreatment
	if vat == "" {
		vat = "standard"
	}

	p := &model.Product{
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		PricingBasis: basis,
		UnitWeightKg: weight,
		CostPrice:    req.CostPrice,
		SellingPrice: req.SellingPrice,
		VATTreatment: vat,
		Active:       true,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *productToResponse(&products[i]))
	}
	return &dto.ProductListResponse{
		Products: out,
		Total:    total,
		Page:     filter.Page,
		Limit:    filter.Limit,
	}, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.SaveProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	weight := p.UnitWeightKg
	if req.UnitWeightKg != nil {
		weight = *req.UnitWeightKg
	}
	category := p.Category
	if req.Category != "" {
		category = req.Category
	}
	requested := p.PricingBasis
	if req.PricingBasis != "" {
		requested = req.PricingBasis
	}
	basis, err := applyBasisRules(category, requested, weight)
	if err != nil {
		return nil, err
	}

	p.Code = req.Code
	p.Name = req.Name
	p.Description = req.Description
	p.Category = category
	p.PricingBasis = basis
	p.UnitWeightKg = weight
	p.CostPrice = req.CostPrice
	p.SellingPrice = req.SellingPrice
	if req.VATTreatment != "" {
		p.VATTreatment = req.VATTreatment
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	return s.repo.SoftDelete(ctx, id)
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID.String(),
		Code:         p.Code,
		Name:         p.Name,
		Description:  p.Description,
		Category:     p.Category,
		PricingBasis: p.PricingBasis,
		BasisLabel:   pricing.BasisLabel(pricing.Basis(p.PricingBasis)),
		UnitWeightKg: p.UnitWeightKg,
		CostPrice:    p.CostPrice,
		SellingPrice: p.SellingPrice,
		Margin:       pricing.CalculateMargin(p.SellingPrice, p.CostPrice),
		VATTreatment: p.VATTreatment,
		Active:       p.Active,
	}
}
