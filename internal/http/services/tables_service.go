package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/domain/types"
	"github.com/dropDatabas3/comandero/internal/http/dto"
)

// =================================================================================
// TABLES SERVICE
// =================================================================================

var (
	ErrTableNotFound = fmt.Errorf("table not found")
	ErrInvalidTable  = fmt.Errorf("table number and seats must be positive")
)

// TablesService administra las mesas del salón.
type TablesService interface {
	List(ctx context.Context, page repository.Page) ([]types.Table, error)
	Get(ctx context.Context, id string) (*types.Table, error)
	Create(ctx context.Context, in dto.CreateTableRequest) (*types.Table, error)
	SetOccupied(ctx context.Context, id string, occupied bool) error
	Delete(ctx context.Context, id string) error
}

type TablesDeps struct {
	Tables repository.TableRepository
}

type tablesService struct {
	deps TablesDeps
}

func NewTablesService(deps TablesDeps) TablesService {
	return &tablesService{deps: deps}
}

func (s *tablesService) List(ctx context.Context, page repository.Page) ([]types.Table, error) {
	return s.deps.Tables.List(ctx, page)
}

func (s *tablesService) Get(ctx context.Context, id string) (*types.Table, error) {
	t, err := s.deps.Tables.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *tablesService) Create(ctx context.Context, in dto.CreateTableRequest) (*types.Table, error) {
	if in.Number <= 0 || in.Seats <= 0 {
		return nil, ErrInvalidTable
	}

	t := &types.Table{
		ID:     uuid.NewString(),
		Number: in.Number,
		Seats:  in.Seats,
	}
	if err := s.deps.Tables.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tablesService) SetOccupied(ctx context.Context, id string, occupied bool) error {
	if err := s.deps.Tables.SetOccupied(ctx, id, occupied); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTableNotFound
		}
		return err
	}
	return nil
}

func (s *tablesService) Delete(ctx context.Context, id string) error {
	if err := s.deps.Tables.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTableNotFound
		}
		return err
	}
	return nil
}
