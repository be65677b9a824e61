package dto

import "github.com/dropDatabas3/comandero/internal/domain/types"

// CreateTableRequest da de alta una mesa.
type CreateTableRequest struct {
	Number int `json:"number"`
	Seats  int `json:"seats"`
}

// SetTableOccupiedRequest marca/libera una mesa.
type SetTableOccupiedRequest struct {
	Occupied bool `json:"occupied"`
}

// TableListResponse lista las mesas del salón.
type TableListResponse struct {
	Tables []types.Table `json:"tables"`
	Count  int           `json:"count"`
}
