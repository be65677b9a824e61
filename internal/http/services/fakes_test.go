package services

import (
	"context"
	"strings"
	"sync"

	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/domain/types"
)

// Fakes en memoria para los tests de services. Implementan los contratos
// de repository sin base de datos.

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*types.User // por email
}

func newFakeUsers(seed ...*types.User) *fakeUsers {
	f := &fakeUsers{users: make(map[string]*types.User)}
	for _, u := range seed {
		f.users[strings.ToLower(u.Email)] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[strings.ToLower(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) List(_ context.Context, _ repository.Page) ([]types.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUsers) Create(_ context.Context, u *types.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[strings.ToLower(u.Email)] = u
	return nil
}

func (f *fakeUsers) Update(_ context.Context, u *types.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[strings.ToLower(u.Email)] = u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, u := range f.users {
		if u.ID == id {
			delete(f.users, k)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, email, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[strings.ToLower(email)]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type fakeDrinks struct {
	mu     sync.Mutex
	drinks map[string]*types.Drink
}

func newFakeDrinks(seed ...*types.Drink) *fakeDrinks {
	f := &fakeDrinks{drinks: make(map[string]*types.Drink)}
	for _, d := range seed {
		f.drinks[d.ID] = d
	}
	return f
}

func (f *fakeDrinks) List(_ context.Context, _ repository.DrinkFilter, _ repository.Page) ([]types.Drink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.Drink, 0, len(f.drinks))
	for _, d := range f.drinks {
		out = append(out, *d)
	}
	return out, nil
}

func (f *fakeDrinks) Get(_ context.Context, id string) (*types.Drink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.drinks[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDrinks) Create(_ context.Context, d *types.Drink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drinks[d.ID] = d
	return nil
}

func (f *fakeDrinks) Update(_ context.Context, d *types.Drink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.drinks[d.ID]; !ok {
		return repository.ErrNotFound
	}
	f.drinks[d.ID] = d
	return nil
}

func (f *fakeDrinks) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.drinks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.drinks, id)
	return nil
}

type fakeTables struct {
	mu     sync.Mutex
	tables map[string]*types.Table
}

func newFakeTables(seed ...*types.Table) *fakeTables {
	f := &fakeTables{tables: make(map[string]*types.Table)}
	for _, t := range seed {
		f.tables[t.ID] = t
	}
	return f
}

func (f *fakeTables) List(_ context.Context, _ repository.Page) ([]types.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]types.Table, 0, len(f.tables))
	for _, t := range f.tables {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTables) Get(_ context.Context, id string) (*types.Table, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.tables[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeTables) Create(_ context.Context, t *types.Table) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[t.ID] = t
	return nil
}

func (f *fakeTables) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tables[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.tables, id)
	return nil
}

func (f *fakeTables) SetOccupied(_ context.Context, id string, occupied bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tables[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.Occupied = occupied
	return nil
}

type fakeOrders struct {
	mu     sync.Mutex
	orders map[string]*types.Order
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{orders: make(map[string]*types.Order)}
}

func (f *fakeOrders) Create(_ context.Context, o *types.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrders) Get(_ context.Context, id string) (*types.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if o, ok := f.orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeOrders) List(_ context.Context, fl repository.OrderFilter, _ repository.Page) ([]types.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []types.Order
	for _, o := range f.orders {
		if fl.UserEmail != "" && o.UserEmail != fl.UserEmail {
			continue
		}
		if fl.TableID != "" && o.TableID != fl.TableID {
			continue
		}
		if fl.Status != "" && o.Status != fl.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id string, status types.OrderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	o.Status = status
	return nil
}

// fakeNotifier acumula los eventos publicados.
type fakeNotifier struct {
	mu      sync.Mutex
	created []string
	changed []string
}

func (f *fakeNotifier) OrderCreated(o *types.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, o.ID)
}

func (f *fakeNotifier) OrderStatusChanged(o *types.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changed = append(f.changed, o.ID)
}
