package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/food_order/internal/db"
	"github.com/Skotchmaster/food_order/internal/feed"
	loggingmw "github.com/Skotchmaster/food_order/internal/middleware/logging"
	"github.com/Skotchmaster/food_order/internal/models"
	"github.com/Skotchmaster/food_order/internal/repo"
	"github.com/Skotchmaster/food_order/internal/search"
	"github.com/Skotchmaster/food_order/internal/service"
	"github.com/Skotchmaster/food_order/internal/session"
	"github.com/Skotchmaster/food_order/internal/tokens"
)

type testServer struct {
	e    *echo.Echo
	repo *repo.GormRepo
	auth *service.AuthService
	hub  *feed.Hub
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerCSRF(t, false)
}

func newTestServerCSRF(t *testing.T, csrfOn bool) *testServer {
	t.Helper()
	ctx := context.Background()

	gdb, err := db.Open(ctx, "", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	_, err = db.Seed(ctx, gdb, db.DefaultMenu)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	rp := repo.New(gdb)
	hub := feed.NewHub()
	authSvc := &service.AuthService{Repo: rp, JWTSecret: []byte("jwt"), RefreshSecret: []byte("refresh")}
	menuSvc := &service.MenuService{Repo: rp, Search: search.NewDBSearcher(rp)}
	cartSvc := &service.CartService{Repo: rp, Sessions: session.NewMemoryStore(), Notifier: hub}
	orderSvc := &service.OrderService{Repo: rp, Notifier: hub}

	e := echo.New()
	e.Use(loggingmw.RequestLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	Register(e, &Deps{
		AuthHandler:  &AuthHTTP{Svc: authSvc},
		MenuHandler:  &MenuHTTP{Svc: menuSvc},
		CartHandler:  &CartHTTP{Svc: cartSvc},
		OrderHandler: &OrderHTTP{Svc: orderSvc, Hub: hub},
		AdminHandler: &AdminHTTP{Auth: authSvc, Menu: menuSvc, Orders: orderSvc},
		JWTSecret:    authSvc.JWTSecret,
		Refresher:    authSvc,
		Roles:        authSvc,
		CSRF:         csrfOn,
		Ready:        func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})
	return &testServer{e: e, repo: rp, auth: authSvc, hub: hub}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	return s.doWith(t, method, path, body, cookies, nil)
}

func (s *testServer) doWith(t *testing.T, method, path, body string, cookies []*http.Cookie, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// signup registers and logs in email, returning the auth cookies.
func (s *testServer) signup(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	creds := `{"email":"` + email + `","password":"secret"}`
	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", creds, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", creds, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	return cookies
}

func (s *testServer) promote(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	s.signup(t, email)
	user, err := s.repo.GetUserByEmail(context.Background(), email)
	require.NoError(t, err)
	_, err = s.auth.SetAdmin(context.Background(), user.ID, true)
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"`+email+`","password":"secret"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Result().Cookies()
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type cartBody struct {
	Items []struct {
		ID       int     `json:"id"`
		Name     string  `json:"name"`
		Price    float64 `json:"price"`
		Quantity int     `json:"quantity"`
	} `json:"items"`
	Total float64 `json:"total"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/live", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health/ready", "", nil).Code)
}

func TestCSRFProtectedRoutes(t *testing.T) {
	s := newTestServerCSRF(t, true)
	auth := s.signup(t, "ana@example.com")
	sameOrigin := map[string]string{"Origin": "http://example.com"}

	rec := s.doWith(t, http.MethodPost, "/api/v1/cart", `{"id":1}`, auth, sameOrigin)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", "", auth)
	require.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)
	var xsrf *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "XSRF-TOKEN" {
			xsrf = c
		}
	}
	require.NotNil(t, xsrf)
	assert.Equal(t, token, xsrf.Value)

	withToken := append(append([]*http.Cookie{}, auth...), xsrf)
	rec = s.doWith(t, http.MethodPost, "/api/v1/cart", `{"id":1}`, withToken, map[string]string{
		"Origin":       "http://example.com",
		"X-CSRF-Token": token,
	})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.doWith(t, http.MethodPost, "/api/v1/cart", `{"id":1}`, withToken, map[string]string{
		"Origin":       "http://evil.test",
		"X-CSRF-Token": token,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.doWith(t, http.MethodPost, "/api/v1/cart", `{"id":1}`, withToken, map[string]string{
		"Origin":       "http://example.com",
		"X-CSRF-Token": "forged",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var refresh *http.Cookie
	for _, c := range auth {
		if c.Name == tokens.RefreshCookie {
			refresh = c
		}
	}
	require.NotNil(t, refresh)
	rec = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", []*http.Cookie{refresh})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"","password":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"nope","password":"x"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	cookies := s.signup(t, "ana@example.com")

	rec = s.do(t, http.MethodPost, "/api/v1/auth/register", `{"email":"ana@example.com","password":"x"}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/login", `{"email":"ana@example.com","password":"bad"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/auth/me", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "ana@example.com", me["email"])
	assert.Equal(t, false, me["is_admin"])
	assert.Equal(t, []any{"user"}, me["roles"])

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/auth/me", "", nil).Code)

	var refresh *http.Cookie
	for _, c := range cookies {
		if c.Name == tokens.RefreshCookie {
			refresh = c
		}
	}
	require.NotNil(t, refresh)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", []*http.Cookie{refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := rec.Result().Cookies()
	require.Len(t, rotated, 2)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", []*http.Cookie{refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/auth/logout", "", rotated)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Empty(t, c.Value)
	}

	rec = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", rotated[1:])
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMenuEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/menu?page=2&size=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Items []models.MenuItem `json:"items"`
		Total int64             `json:"total"`
		Meta  map[string]any    `json:"meta"`
	}](t, rec)
	assert.EqualValues(t, 5, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Items[0].ID)
	assert.Equal(t, true, page.Meta["has_next"])

	rec = s.do(t, http.MethodGet, "/api/v1/menu/1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	item := decode[models.MenuItem](t, rec)
	assert.Equal(t, "Hamburguesa de Pollo", item.Name)
	assert.Equal(t, 40, item.Quantity)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/menu/99", "", nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/menu/abc", "", nil).Code)

	rec = s.do(t, http.MethodGet, "/api/v1/menu/1/quote?quantity=3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	quote := decode[map[string]any](t, rec)
	assert.EqualValues(t, 3, quote["quantity"])
	assert.EqualValues(t, 72, quote["total"])

	rec = s.do(t, http.MethodGet, "/api/v1/menu/1/quote?quantity=-2", "", nil)
	quote = decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, quote["quantity"])

	rec = s.do(t, http.MethodGet, "/api/v1/menu/search?q=pollo", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[map[string]any](t, rec)
	assert.EqualValues(t, 2, found["total"])

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/menu/search", "", nil).Code)
}

func TestCartFlow(t *testing.T) {
	s := newTestServer(t)
	cookies := s.signup(t, "ana@example.com")

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/cart", "", nil).Code)

	rec := s.do(t, http.MethodPost, "/api/v1/cart", `{"id":1,"quantity":3}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart := decode[cartBody](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, float64(72), cart.Total)

	rec = s.do(t, http.MethodPost, "/api/v1/cart", `{"id":1,"quantity":2}`, cookies)
	cart = decode[cartBody](t, rec)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, float64(120), cart.Total)

	rec = s.do(t, http.MethodGet, "/api/v1/cart/menu", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	menu := decode[[]map[string]any](t, rec)
	assert.EqualValues(t, 35, menu[0]["quantity"])

	rec = s.do(t, http.MethodPost, "/api/v1/cart", `{"id":2,"quantity":"abc"}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart = decode[cartBody](t, rec)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 1, cart.Items[1].Quantity)

	rec = s.do(t, http.MethodPost, "/api/v1/cart", `{"id":2,"quantity":"3"}`, cookies)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	cart = decode[cartBody](t, rec)
	assert.Equal(t, 4, cart.Items[1].Quantity)

	rec = s.do(t, http.MethodPost, "/api/v1/cart", `{"id":404,"quantity":1}`, cookies)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/v1/cart", `{"quantity":1}`, cookies)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/3", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[cartBody](t, rec).Items, 2)

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/2", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[cartBody](t, rec).Items, 1)

	rec = s.do(t, http.MethodDelete, "/api/v1/cart/1", "", cookies)
	require.Equal(t, http.StatusOK, rec.Code)
	cart = decode[cartBody](t, rec)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.Total)

	rec = s.do(t, http.MethodGet, "/api/v1/cart/menu", "", cookies)
	menu = decode[[]map[string]any](t, rec)
	assert.EqualValues(t, 40, menu[0]["quantity"])
}

func TestCheckoutAndOrders(t *testing.T) {
	s := newTestServer(t)
	ana := s.signup(t, "ana@example.com")
	bob := s.signup(t, "bob@example.com")

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/cart/checkout", "", ana).Code)

	s.do(t, http.MethodPost, "/api/v1/cart", `{"id":1,"quantity":3}`, ana)
	rec := s.do(t, http.MethodPost, "/api/v1/cart/checkout", "", ana)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, float64(72), order.Total)

	item, err := s.repo.GetMenuItem(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 37, item.Quantity)

	rec = s.do(t, http.MethodGet, "/api/v1/cart", "", ana)
	assert.Empty(t, decode[cartBody](t, rec).Items)

	rec = s.do(t, http.MethodGet, "/api/v1/orders", "", ana)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Items []models.Order `json:"items"`
		Total int64          `json:"total"`
	}](t, rec)
	assert.EqualValues(t, 1, list.Total)
	require.Len(t, list.Items[0].Items, 1)
	assert.Equal(t, 1, list.Items[0].Items[0].MenuItemID)

	rec = s.do(t, http.MethodGet, "/api/v1/orders", "", bob)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["total"])

	path := "/api/v1/orders/" + jsonNumber(order.ID)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, path+"/pay", "", bob).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, "", bob).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/api/v1/orders/x", "", ana).Code)

	rec = s.do(t, http.MethodDelete, path, "", ana)
	require.Equal(t, http.StatusNoContent, rec.Code)
	item, err = s.repo.GetMenuItem(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 40, item.Quantity)

	s.do(t, http.MethodPost, "/api/v1/cart", `{"id":2,"quantity":1}`, ana)
	rec = s.do(t, http.MethodPost, "/api/v1/cart/checkout", "", ana)
	order = decode[models.Order](t, rec)
	rec = s.do(t, http.MethodPost, "/api/v1/orders/"+jsonNumber(order.ID)+"/pay", "", ana)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusPaid, decode[models.Order](t, rec).Status)
}

func TestCheckoutRefreshesSessionMenu(t *testing.T) {
	s := newTestServer(t)
	ana := s.signup(t, "ana@example.com")
	admin := s.promote(t, "boss@example.com")

	s.do(t, http.MethodPost, "/api/v1/cart", `{"id":1,"quantity":3}`, ana)
	rec := s.do(t, http.MethodPatch, "/api/v1/admin/menu/1", `{"quantity":100}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/cart/checkout", "", ana)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	item, err := s.repo.GetMenuItem(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 97, item.Quantity)

	rec = s.do(t, http.MethodGet, "/api/v1/cart/menu", "", ana)
	require.Equal(t, http.StatusOK, rec.Code)
	menu := decode[[]map[string]any](t, rec)
	assert.EqualValues(t, 97, menu[0]["quantity"])
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}

func TestAdminGates(t *testing.T) {
	s := newTestServer(t)
	user := s.signup(t, "ana@example.com")
	admin := s.promote(t, "boss@example.com")

	for _, path := range []string{"/api/v1/admin/stock", "/api/v1/admin/orders", "/api/v1/admin/users"} {
		assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, path, "", user).Code, path)
		assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, path, "", nil).Code, path)
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, path, "", admin).Code, path)
	}

	rec := s.do(t, http.MethodPatch, "/api/v1/admin/menu/3", `{"quantity":100}`, user)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPatch, "/api/v1/admin/menu/3", `{"quantity":100,"desc":"grandes"}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	item := decode[models.MenuItem](t, rec)
	assert.Equal(t, 100, item.Quantity)
	assert.Equal(t, "grandes", item.Description)

	rec = s.do(t, http.MethodPatch, "/api/v1/admin/menu/3", `{"quantity":-1}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(t, http.MethodPatch, "/api/v1/admin/menu/99", `{"quantity":1}`, admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRevokedBeforeTokenExpiry(t *testing.T) {
	s := newTestServer(t)
	boss := s.promote(t, "boss@example.com")
	root := s.promote(t, "root@example.com")
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/admin/stock", "", boss).Code)

	user, err := s.repo.GetUserByEmail(context.Background(), "boss@example.com")
	require.NoError(t, err)
	rec := s.do(t, http.MethodPatch, "/api/v1/admin/users/"+user.ID.String()+"/admin", `{"is_admin":false}`, root)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/api/v1/admin/stock", "", boss).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/v1/admin/stock", "", root).Code)
}

func TestAdminUserManagement(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "ana@example.com")
	admin := s.promote(t, "boss@example.com")

	ana, err := s.repo.GetUserByEmail(context.Background(), "ana@example.com")
	require.NoError(t, err)
	base := "/api/v1/admin/users/" + ana.ID.String()

	rec := s.do(t, http.MethodPatch, base+"/admin", `{"is_admin":true}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode[map[string]any](t, rec)["is_admin"])

	rec = s.do(t, http.MethodPut, base+"/roles", `{"roles":[]}`, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"user"}, decode[map[string]any](t, rec)["roles"])

	rec = s.do(t, http.MethodPut, base+"/roles", `{"roles":["chef"]}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPut, "/api/v1/admin/users/not-a-uuid/roles", `{"roles":[]}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/admin/users", "", admin)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)
}

func TestOrderStream(t *testing.T) {
	s := newTestServer(t)
	ana := s.signup(t, "ana@example.com")

	srv := httptest.NewServer(s.e)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/orders/stream", nil)
	require.NoError(t, err)
	for _, c := range ana {
		req.AddCookie(c)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get(echo.HeaderContentType))

	reader := bufio.NewReader(res.Body)
	readEvent := func() []models.Order {
		t.Helper()
		var data string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimRight(line, "\n")
			if line == "" && data != "" {
				break
			}
			if strings.HasPrefix(line, "data: ") {
				data = strings.TrimPrefix(line, "data: ")
			}
		}
		var orders []models.Order
		require.NoError(t, json.Unmarshal([]byte(data), &orders))
		return orders
	}

	assert.Empty(t, readEvent())

	s.do(t, http.MethodPost, "/api/v1/cart", `{"id":5,"quantity":2}`, ana)
	rec := s.do(t, http.MethodPost, "/api/v1/cart/checkout", "", ana)
	require.Equal(t, http.StatusCreated, rec.Code)

	orders := readEvent()
	require.Len(t, orders, 1)
	assert.Equal(t, float64(10), orders[0].Total)
}
