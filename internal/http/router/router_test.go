package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/comandero/internal/auth"
	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/domain/types"
	"github.com/dropDatabas3/comandero/internal/http/controllers"
	"github.com/dropDatabas3/comandero/internal/http/services"
	"github.com/dropDatabas3/comandero/internal/security/envelope"
	"github.com/dropDatabas3/comandero/internal/security/password"
)

// memUsers implementa repository.UserRepository para el test de rutas.
type memUsers struct {
	byEmail map[string]*types.User
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*types.User, error) {
	if u, ok := m.byEmail[strings.ToLower(email)]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByID(_ context.Context, id string) (*types.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) List(_ context.Context, _ repository.Page) ([]types.User, error) {
	out := make([]types.User, 0, len(m.byEmail))
	for _, u := range m.byEmail {
		out = append(out, *u)
	}
	return out, nil
}

func (m *memUsers) Create(_ context.Context, u *types.User) error {
	m.byEmail[strings.ToLower(u.Email)] = u
	return nil
}

func (m *memUsers) Update(_ context.Context, u *types.User) error {
	m.byEmail[strings.ToLower(u.Email)] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id string) error {
	for k, u := range m.byEmail {
		if u.ID == id {
			delete(m.byEmail, k)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memUsers) UpdatePassword(_ context.Context, email, hash string) error {
	u, ok := m.byEmail[strings.ToLower(email)]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

// memDrinks implementa repository.DrinkRepository con una carta fija.
type memDrinks struct {
	drinks []types.Drink
}

func (m *memDrinks) List(_ context.Context, _ repository.DrinkFilter, _ repository.Page) ([]types.Drink, error) {
	return m.drinks, nil
}

func (m *memDrinks) Get(_ context.Context, id string) (*types.Drink, error) {
	for i := range m.drinks {
		if m.drinks[i].ID == id {
			return &m.drinks[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memDrinks) Create(_ context.Context, d *types.Drink) error {
	m.drinks = append(m.drinks, *d)
	return nil
}

func (m *memDrinks) Update(_ context.Context, _ *types.Drink) error { return nil }
func (m *memDrinks) Delete(_ context.Context, _ string) error       { return nil }

func newTestServer(t *testing.T) *httptest.Server {
	return newTestServerWithToken(t, "Authorization", "Bearer ")
}

func newTestServerWithToken(t *testing.T, header, prefix string) *httptest.Server {
	t.Helper()

	adminHash, err := password.Hash("admin-pass-1")
	require.NoError(t, err)
	userHash, err := password.Hash("mesero-pass-1")
	require.NoError(t, err)

	users := &memUsers{byEmail: map[string]*types.User{
		"admin@bar.test":  {ID: "u-admin", Email: "admin@bar.test", Name: "Admin", PasswordHash: adminHash, Roles: []string{auth.RoleAdmin}},
		"mesero@bar.test": {ID: "u-mesero", Email: "mesero@bar.test", Name: "Mesero", PasswordHash: userHash, Roles: []string{auth.RoleUser}},
	}}
	drinks := &memDrinks{drinks: []types.Drink{
		{ID: "d-1", Name: "Fernet con coca", Category: "aperitivo", PriceCents: 450000, Available: true},
	}}

	opts := envelope.Options{Secret: "router-secret-0123456789", Issuer: "comandero", TTL: time.Hour}
	issuer := envelope.NewIssuer(opts)

	loginSvc := services.NewLoginService(services.LoginDeps{Users: users, Issuer: issuer})
	resetSvc := services.NewResetService(services.ResetDeps{Users: users, Secret: "reset-secret", DebugEchoLinks: true})

	h := New(Deps{
		Auth:        controllers.NewAuthController(loginSvc, resetSvc, header, prefix),
		Users:       controllers.NewUsersController(services.NewUsersService(services.UsersDeps{Users: users})),
		Drinks:      controllers.NewDrinksController(services.NewDrinksService(services.DrinksDeps{Drinks: drinks})),
		Tables:      controllers.NewTablesController(nil),
		Orders:      controllers.NewOrdersController(nil),
		Verifier:    envelope.NewVerifier(opts),
		TokenHeader: header,
		TokenPrefix: prefix,
	})

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server, email, pass string) string {
	t.Helper()
	body := strings.NewReader(`{"email":"` + email + `","password":"` + pass + `"}`)
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	header := resp.Header.Get("Authorization")
	require.True(t, strings.HasPrefix(header, "Bearer "), "token esperado en el header Authorization")
	return header
}

func get(t *testing.T, srv *httptest.Server, path, authHeader string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	require.NoError(t, err)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestPublicRoutes_NoTokenNeeded(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/healthz", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp2 := get(t, srv, "/api/drinks", "")
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestLoginThenMe(t *testing.T) {
	srv := newTestServer(t)

	header := login(t, srv, "mesero@bar.test", "mesero-pass-1")

	resp := get(t, srv, "/api/auth/me", header)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var me map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&me))
	assert.Equal(t, "mesero@bar.test", me["email"])
}

func TestAdminRoutes_Gating(t *testing.T) {
	srv := newTestServer(t)

	// Anónimo: 401
	resp := get(t, srv, "/api/users", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// USER: 403
	userHeader := login(t, srv, "mesero@bar.test", "mesero-pass-1")
	resp2 := get(t, srv, "/api/users", userHeader)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp2.StatusCode)

	// ADMIN: 200
	adminHeader := login(t, srv, "admin@bar.test", "admin-pass-1")
	resp3 := get(t, srv, "/api/users", adminHeader)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}

func TestCustomTokenHeader_RoundTrip(t *testing.T) {
	srv := newTestServerWithToken(t, "X-Auth-Token", "Token ")

	// El login deja el token en el header configurado, no en Authorization
	body := strings.NewReader(`{"email":"mesero@bar.test","password":"mesero-pass-1"}`)
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Empty(t, resp.Header.Get("Authorization"))
	echoed := resp.Header.Get("X-Auth-Token")
	require.True(t, strings.HasPrefix(echoed, "Token "), "token esperado en X-Auth-Token")

	// Y el filtro lo lee exactamente de ahí
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/auth/me", nil)
	require.NoError(t, err)
	req.Header.Set("X-Auth-Token", echoed)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestUserRoutes_SelfOrAdmin(t *testing.T) {
	srv := newTestServer(t)
	userHeader := login(t, srv, "mesero@bar.test", "mesero-pass-1")

	// El dueño puede ver su propia cuenta.
	resp := get(t, srv, "/api/users/u-mesero", userHeader)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Pero no la de otro.
	resp2 := get(t, srv, "/api/users/u-admin", userHeader)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp2.StatusCode)

	// Un admin ve cualquiera.
	adminHeader := login(t, srv, "admin@bar.test", "admin-pass-1")
	resp3 := get(t, srv, "/api/users/u-mesero", adminHeader)
	defer resp3.Body.Close()
	assert.Equal(t, http.StatusOK, resp3.StatusCode)
}

func TestBadTokenRejectedEvenOnPublicRoute(t *testing.T) {
	srv := newTestServer(t)

	resp := get(t, srv, "/api/drinks", "Bearer basura")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "InvalidTokenError", body["error"])
}

func TestLoginBadCredentials(t *testing.T) {
	srv := newTestServer(t)

	body := strings.NewReader(`{"email":"mesero@bar.test","password":"nope-nope"}`)
	resp, err := http.Post(srv.URL+"/api/auth/login", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Authorization"))
}
