package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/storefront-backend/internal/pricing"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the cart store. Prices are never stored on cart rows; they are
// joined from products on every read.
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

type lineRow struct {
	ProductID  int64
	Quantity   int64
	PriceCents int64
	Name       string
	Photo      *string
}

// GetLines returns the user's cart joined with current product prices, in the
// order the lines were first added.
func (r *Repository) GetLines(ctx context.Context, userID int64) ([]Line, error) {
	var rows []lineRow
	err := r.db.WithContext(ctx).
		Table("cart_items").
		Select("cart_items.product_id, cart_items.quantity, products.price_cents, products.name, products.photo").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, Line{
			Line: pricing.Line{
				ProductID:      row.ProductID,
				Quantity:       row.Quantity,
				UnitPriceCents: row.PriceCents,
			},
			Name:  row.Name,
			Photo: row.Photo,
		})
	}
	return lines, nil
}

// AddQuantity inserts the line or increments an existing one in a single
// statement, so concurrent adds for the same product never lose an update.
func (r *Repository) AddQuantity(ctx context.Context, userID, productID, delta int64) error {
	now := time.Now().UTC()
	item := models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  delta,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return r.db.WithContext(ctx).
		Omit("User", "Product").
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
				"updated_at": now,
			}),
		}).
		Create(&item).Error
}

// CapQuantity lowers a line to max when it has grown past it.
func (r *Repository) CapQuantity(ctx context.Context, userID, productID, max int64) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ? AND quantity > ?", userID, productID, max).
		Updates(map[string]any{"quantity": max, "updated_at": time.Now().UTC()}).Error
}

// SetQuantity overwrites the quantity of an existing line. A quantity of zero
// or less removes the line.
func (r *Repository) SetQuantity(ctx context.Context, userID, productID, qty int64) error {
	if qty <= 0 {
		return r.Remove(ctx, userID, productID)
	}
	res := r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Updates(map[string]any{"quantity": qty, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Remove deletes one line. Removing a missing line is not an error.
func (r *Repository) Remove(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

// Clear deletes every line for the user.
func (r *Repository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
