package catalog

import "github.com/angelmondragon/storefront-backend/pkg/db/models"

// ShopDTO is the public view of a shop.
type ShopDTO struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Address *string `json:"address"`
	Photo   *string `json:"photo"`
}

// ProductDTO is the public view of a product. ShopName is only filled on the
// admin listing.
type ProductDTO struct {
	ID          int64   `json:"id"`
	ShopID      int64   `json:"shop_id"`
	ShopName    string  `json:"shop_name,omitempty"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	PriceCents  int64   `json:"price_cents"`
	Photo       *string `json:"photo"`
	Active      bool    `json:"active"`
}

// ShopInput is the admin payload for a shop.
type ShopInput struct {
	Name    string
	Address *string
	Photo   *string
}

// ProductInput is the admin payload for a product.
type ProductInput struct {
	ShopID      int64
	Name        string
	Description *string
	PriceCents  int64
	Photo       *string
	Active      *bool
}

func shopFromModel(m *models.Shop) ShopDTO {
	return ShopDTO{ID: m.ID, Name: m.Name, Address: m.Address, Photo: m.Photo}
}

func productFromModel(m *models.Product) ProductDTO {
	dto := ProductDTO{
		ID:          m.ID,
		ShopID:      m.ShopID,
		Name:        m.Name,
		Description: m.Description,
		PriceCents:  m.PriceCents,
		Photo:       m.Photo,
		Active:      m.Active,
	}
	if m.Shop != nil {
		dto.ShopName = m.Shop.Name
	}
	return dto
}
