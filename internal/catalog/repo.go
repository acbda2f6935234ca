package catalog

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists shops and products.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// ListShops returns every shop, newest first.
func (r *Repository) ListShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// FindShop loads a shop by id.
func (r *Repository) FindShop(ctx context.Context, id int64) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// CreateShop inserts a shop.
func (r *Repository) CreateShop(ctx context.Context, shop *models.Shop) error {
	return r.db.WithContext(ctx).Create(shop).Error
}

// UpdateShop overwrites the mutable shop columns.
func (r *Repository) UpdateShop(ctx context.Context, shop *models.Shop) error {
	shop.UpdatedAt = time.Now().UTC()
	return updateRow(r.db.WithContext(ctx).Model(&models.Shop{}).Where("id = ?", shop.ID).
		Select("name", "address", "photo", "updated_at").Updates(shop))
}

// DeleteShop removes a shop together with its products.
func (r *Repository) DeleteShop(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		return updateRow(tx.Where("id = ?", id).Delete(&models.Shop{}))
	})
}

// ListActiveProductsByShop returns a shop's active products, newest first.
func (r *Repository) ListActiveProductsByShop(ctx context.Context, shopID int64) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND active = ?", shopID, true).
		Order("id DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// ListProducts returns every product with its shop preloaded, newest first.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Preload("Shop").Order("id DESC").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindProduct loads a product by id.
func (r *Repository) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ProductExists reports whether a product row exists.
func (r *Repository) ProductExists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateProduct inserts a product.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Shop").Create(product).Error
}

// UpdateProduct overwrites the mutable product columns.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now().UTC()
	return updateRow(r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).
		Select("shop_id", "name", "description", "price_cents", "photo", "active", "updated_at").Updates(product))
}

// DeleteProduct removes a product by id.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	return updateRow(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{}))
}

func updateRow(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
