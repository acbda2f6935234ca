package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"gorm.io/gorm"
)

type catalogStore interface {
	ListShops(ctx context.Context) ([]models.Shop, error)
	FindShop(ctx context.Context, id int64) (*models.Shop, error)
	CreateShop(ctx context.Context, shop *models.Shop) error
	UpdateShop(ctx context.Context, shop *models.Shop) error
	DeleteShop(ctx context.Context, id int64) error
	ListActiveProductsByShop(ctx context.Context, shopID int64) ([]models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	FindProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// Service exposes storefront browsing and the admin catalogue operations.
type Service interface {
	ListShops(ctx context.Context) ([]ShopDTO, error)
	GetShop(ctx context.Context, id int64) (*ShopDTO, error)
	CreateShop(ctx context.Context, input ShopInput) (*ShopDTO, error)
	UpdateShop(ctx context.Context, id int64, input ShopInput) (*ShopDTO, error)
	DeleteShop(ctx context.Context, id int64) error

	ListShopProducts(ctx context.Context, shopID int64) ([]ProductDTO, error)
	ListProducts(ctx context.Context) ([]ProductDTO, error)
	GetProduct(ctx context.Context, id int64) (*ProductDTO, error)
	CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, id int64, input ProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type service struct {
	repo catalogStore
}

// NewService builds the catalogue service.
func NewService(repo catalogStore) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListShops(ctx context.Context) ([]ShopDTO, error) {
	rows, err := s.repo.ListShops(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shops")
	}
	out := make([]ShopDTO, 0, len(rows))
	for i := range rows {
		out = append(out, shopFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetShop(ctx context.Context, id int64) (*ShopDTO, error) {
	shop, err := s.repo.FindShop(ctx, id)
	if err != nil {
		return nil, mapShopError(err, "load shop")
	}
	dto := shopFromModel(shop)
	return &dto, nil
}

func (s *service) CreateShop(ctx context.Context, input ShopInput) (*ShopDTO, error) {
	shop, err := input.toModel()
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateShop(ctx, shop); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create shop")
	}
	dto := shopFromModel(shop)
	return &dto, nil
}

func (s *service) UpdateShop(ctx context.Context, id int64, input ShopInput) (*ShopDTO, error) {
	shop, err := input.toModel()
	if err != nil {
		return nil, err
	}
	shop.ID = id
	if err := s.repo.UpdateShop(ctx, shop); err != nil {
		return nil, mapShopError(err, "update shop")
	}
	return s.GetShop(ctx, id)
}

func (s *service) DeleteShop(ctx context.Context, id int64) error {
	if err := s.repo.DeleteShop(ctx, id); err != nil {
		return mapShopError(err, "delete shop")
	}
	return nil
}

func (s *service) ListShopProducts(ctx context.Context, shopID int64) ([]ProductDTO, error) {
	if _, err := s.repo.FindShop(ctx, shopID); err != nil {
		return nil, mapShopError(err, "load shop")
	}
	rows, err := s.repo.ListActiveProductsByShop(ctx, shopID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list shop products")
	}
	return productsFromModels(rows), nil
}

func (s *service) ListProducts(ctx context.Context) ([]ProductDTO, error) {
	rows, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return productsFromModels(rows), nil
}

func (s *service) GetProduct(ctx context.Context, id int64) (*ProductDTO, error) {
	product, err := s.repo.FindProduct(ctx, id)
	if err != nil {
		return nil, mapProductError(err, "load product")
	}
	dto := productFromModel(product)
	return &dto, nil
}

func (s *service) CreateProduct(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	product, err := s.productModel(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	dto := productFromModel(product)
	return &dto, nil
}

func (s *service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*ProductDTO, error) {
	product, err := s.productModel(ctx, input)
	if err != nil {
		return nil, err
	}
	product.ID = id
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return nil, mapProductError(err, "update product")
	}
	return s.GetProduct(ctx, id)
}

func (s *service) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return mapProductError(err, "delete product")
	}
	return nil
}

func (s *service) productModel(ctx context.Context, input ProductInput) (*models.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fieldError("name", "Product name is required.")
	}
	if input.PriceCents < 0 {
		return nil, fieldError("price_cents", "Price cannot be negative.")
	}
	if input.PriceCents > pricing.MaxUnitPriceCents {
		return nil, fieldError("price_cents", fmt.Sprintf("Price cannot exceed %d.", pricing.MaxUnitPriceCents))
	}
	if input.ShopID <= 0 {
		return nil, fieldError("shop_id", "Shop is required.")
	}
	if _, err := s.repo.FindShop(ctx, input.ShopID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fieldError("shop_id", "Shop not found.")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load shop")
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	return &models.Product{
		ShopID:      input.ShopID,
		Name:        name,
		Description: trimOptional(input.Description),
		PriceCents:  input.PriceCents,
		Photo:       trimOptional(input.Photo),
		Active:      active,
	}, nil
}

func (in ShopInput) toModel() (*models.Shop, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fieldError("name", "Shop name is required.")
	}
	return &models.Shop{
		Name:    name,
		Address: trimOptional(in.Address),
		Photo:   trimOptional(in.Photo),
	}, nil
}

func productsFromModels(rows []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, productFromModel(&rows[i]))
	}
	return out
}

func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func fieldError(field, message string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(map[string]any{"field": field})
}

func mapShopError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Shop not found.")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func mapProductError(err error, action string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Product not found.")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}
