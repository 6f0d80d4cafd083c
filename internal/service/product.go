package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"dropskills/internal/model"

	"gorm.io/gorm"
)

type ProductFilter struct {
	Search  string `form:"search"`
	Format  string `form:"format"`
	Premium *bool  `form:"premium"`
	Active  *bool  `form:"active"`
}

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) List(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	q := s.db.WithContext(ctx).Model(&model.Product{})
	q = likeAny(q, f.Search, "title", "description", "instructor")
	if f.Format != "" && f.Format != "all" {
		q = q.Where("format = ?", f.Format)
	}
	if f.Premium != nil {
		q = q.Where("is_premium = ?", *f.Premium)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	var out []model.Product
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*model.Product, error) {
	return findByID[model.Product](ctx, s.db, id, "product")
}

func validateProduct(p *model.Product) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return fmt.Errorf("%w: title", ErrInvalidInput)
	}
	if !slices.Contains(model.ProductFormats, p.Format) {
		return fmt.Errorf("%w: format %q", ErrInvalidInput, p.Format)
	}
	if p.Rating < 0 || p.Rating > 5 {
		return fmt.Errorf("%w: rating", ErrInvalidInput)
	}
	if p.PriceCents < 0 {
		return fmt.Errorf("%w: price", ErrInvalidInput)
	}
	return nil
}

func (s *ProductService) Create(ctx context.Context, p *model.Product) error {
	p.ID = ""
	if err := validateProduct(p); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (s *ProductService) Update(ctx context.Context, id string, in *model.Product) (*model.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateProduct(in); err != nil {
		return nil, err
	}
	in.Base = p.Base
	if err := s.db.WithContext(ctx).Model(p).Select("*").Omit("id", "created_at").Updates(in).Error; err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return deleteByID[model.Product](ctx, s.db, id, "product")
}
