package dto

import "github.com/dropDatabas3/comandero/internal/domain/types"

// CreateDrinkRequest da de alta una bebida en la carta.
type CreateDrinkRequest struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	Available   *bool  `json:"available,omitempty"` // nil = true
}

// UpdateDrinkRequest actualiza campos de una bebida. Punteros nil = sin cambio.
type UpdateDrinkRequest struct {
	Name        *string `json:"name,omitempty"`
	Category    *string `json:"category,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int64  `json:"price_cents,omitempty"`
	Available   *bool   `json:"available,omitempty"`
}

// DrinkListResponse pagina la carta.
type DrinkListResponse struct {
	Drinks []types.Drink `json:"drinks"`
	Count  int           `json:"count"`
}
