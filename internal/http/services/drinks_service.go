package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/domain/types"
	"github.com/dropDatabas3/comandero/internal/http/dto"
)

// =================================================================================
// DRINKS SERVICE
// =================================================================================

var (
	ErrDrinkNotFound = fmt.Errorf("drink not found")
	ErrInvalidPrice  = fmt.Errorf("price must be positive")
)

// DrinksService maneja la carta. La lectura es pública; las escrituras
// quedan detrás de RequireAdmin en el router.
type DrinksService interface {
	List(ctx context.Context, f repository.DrinkFilter, page repository.Page) ([]types.Drink, error)
	Get(ctx context.Context, id string) (*types.Drink, error)
	Create(ctx context.Context, in dto.CreateDrinkRequest) (*types.Drink, error)
	Update(ctx context.Context, id string, in dto.UpdateDrinkRequest) (*types.Drink, error)
	Delete(ctx context.Context, id string) error
}

type DrinksDeps struct {
	Drinks repository.DrinkRepository
}

type drinksService struct {
	deps DrinksDeps
}

func NewDrinksService(deps DrinksDeps) DrinksService {
	return &drinksService{deps: deps}
}

func (s *drinksService) List(ctx context.Context, f repository.DrinkFilter, page repository.Page) ([]types.Drink, error) {
	return s.deps.Drinks.List(ctx, f, page)
}

func (s *drinksService) Get(ctx context.Context, id string) (*types.Drink, error) {
	d, err := s.deps.Drinks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDrinkNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *drinksService) Create(ctx context.Context, in dto.CreateDrinkRequest) (*types.Drink, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	if in.Name == "" || in.Category == "" {
		return nil, ErrMissingFields
	}
	if in.PriceCents <= 0 {
		return nil, ErrInvalidPrice
	}

	available := true
	if in.Available != nil {
		available = *in.Available
	}

	d := &types.Drink{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Category:    in.Category,
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		Available:   available,
	}
	if err := s.deps.Drinks.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *drinksService) Update(ctx context.Context, id string, in dto.UpdateDrinkRequest) (*types.Drink, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		d.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		d.Category = strings.TrimSpace(*in.Category)
	}
	if in.Description != nil {
		d.Description = strings.TrimSpace(*in.Description)
	}
	if in.PriceCents != nil {
		if *in.PriceCents <= 0 {
			return nil, ErrInvalidPrice
		}
		d.PriceCents = *in.PriceCents
	}
	if in.Available != nil {
		d.Available = *in.Available
	}

	if err := s.deps.Drinks.Update(ctx, d); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDrinkNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *drinksService) Delete(ctx context.Context, id string) error {
	if err := s.deps.Drinks.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDrinkNotFound
		}
		return err
	}
	return nil
}
