package models

import "time"

// PromoCode is an admin-managed discount. Code is stored upper-cased and is
// unique. At least one of PercentOff and AmountOffCents is set. A nil ProductID
// scopes the promo to the whole cart; nil window bounds are open-ended.
type PromoCode struct {
	ID             int64      `gorm:"column:id;primaryKey;autoIncrement"`
	Code           string     `gorm:"column:code;not null;uniqueIndex:idx_promo_codes_code"`
	PercentOff     *int64     `gorm:"column:percent_off"`
	AmountOffCents *int64     `gorm:"column:amount_off_cents"`
	ProductID      *int64     `gorm:"column:product_id"`
	StartsAt       *time.Time `gorm:"column:starts_at"`
	EndsAt         *time.Time `gorm:"column:ends_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&User{},
		&Shop{},
		&Product{},
		&CartItem{},
		&PromoCode{},
	}
}
