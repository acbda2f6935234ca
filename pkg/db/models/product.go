package models

import "time"

// Product is a catalogue entry. PriceCents is the unit price in the minor unit
// of the settlement currency and is the only price the cart ever reads.
type Product struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ShopID      int64     `gorm:"column:shop_id;not null;index:idx_products_shop_active,priority:1"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	PriceCents  int64     `gorm:"column:price_cents;not null;check:chk_products_price_non_negative,price_cents >= 0"`
	Photo       *string   `gorm:"column:photo"`
	Active      bool      `gorm:"column:active;not null;index:idx_products_shop_active,priority:2"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	Shop *Shop `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE"`
}
