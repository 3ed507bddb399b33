package server_test

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-catalog-server/catalog"
	imagefakehost "github.com/jrsteele09/go-catalog-server/images/fakehost"
	"github.com/jrsteele09/go-catalog-server/internal/config"
	"github.com/jrsteele09/go-catalog-server/kvcache/memkv"
	"github.com/jrsteele09/go-catalog-server/products"
	productrepofake "github.com/jrsteele09/go-catalog-server/products/repofake"
	"github.com/jrsteele09/go-catalog-server/server"
	"github.com/jrsteele09/go-catalog-server/token"
	"github.com/jrsteele09/go-catalog-server/users"
	"github.com/stretchr/testify/require"
)

const secretStr = "1234"

// testFixture holds all test dependencies
type testFixture struct {
	repo    *productrepofake.FakeProductRepo
	images  *imagefakehost.FakeHost
	signer  token.Signer
	handler http.Handler
}

type brokenRepo struct {
	*productrepofake.FakeProductRepo
}

func (brokenRepo) List(context.Context) ([]products.Product, error) {
	return nil, errors.New("connection reset")
}

func setupTestFixture(t *testing.T, opts ...server.Option) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")

	cache, err := memkv.New(16)
	require.NoError(t, err)

	f := &testFixture{
		repo:   productrepofake.NewFakeProductRepo(),
		images: imagefakehost.NewFakeHost(),
		signer: token.NewSharedSecret(secretStr),
	}
	service := catalog.NewService(f.repo, cache, f.images)
	f.handler = server.New(config.New(), service, token.NewVerifier(f.signer), opts...)
	return f
}

func (f *testFixture) token(t *testing.T, role users.RoleType) string {
	t.Helper()
	raw, err := token.Issue(f.signer, "user-1", role, time.Hour)
	require.NoError(t, err)
	return raw
}

func (f *testFixture) do(t *testing.T, method, path, body, accessToken string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if accessToken != "" {
		req.AddCookie(&http.Cookie{Name: "accessToken", Value: accessToken})
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *testFixture) addProduct(t *testing.T, p products.Product) products.Product {
	t.Helper()
	require.NoError(t, f.repo.Create(context.Background(), &p))
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

type productList struct {
	Products []products.Product `json:"products"`
}

type message struct {
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors"`
}

func TestAuthentication(t *testing.T) {
	f := setupTestFixture(t)

	expired := func() string {
		previous := token.NowTimeFunc
		token.NowTimeFunc = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		defer func() { token.NowTimeFunc = previous }()
		return f.token(t, users.RoleAdmin)
	}()
	foreign, err := token.Issue(token.NewSharedSecret("other-secret"), "user-1", users.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name        string
		accessToken string
		wantStatus  int
		wantMessage string
	}{
		{"missing token", "", http.StatusUnauthorized, "Unauthorized - No access token provided"},
		{"expired token", expired, http.StatusUnauthorized, "Unauthorized - Access token expired"},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized, "Unauthorized - Invalid access token"},
		{"wrong secret", foreign, http.StatusUnauthorized, "Unauthorized - Invalid access token"},
		{"customer", f.token(t, users.RoleCustomer), http.StatusForbidden, "Access denied - Admin only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, server.RouteProducts, "", tt.accessToken)
			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, tt.wantMessage, decode[message](t, rec).Message)
		})
	}

	rec := f.do(t, http.MethodGet, server.RouteProducts, "", f.token(t, users.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"products":[]}`, rec.Body.String())
}

func TestBearerToken(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodGet, server.RouteRecommendations, nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, users.RoleCustomer))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFeaturedProducts(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, server.RouteFeaturedProducts, "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "No featured products found", decode[message](t, rec).Message)

	f.addProduct(t, products.Product{Name: "Jeans", Category: "jeans", IsFeatured: true})

	miss := f.do(t, http.MethodGet, server.RouteFeaturedProducts, "", "")
	require.Equal(t, http.StatusOK, miss.Code)
	hit := f.do(t, http.MethodGet, server.RouteFeaturedProducts, "", "")
	require.Equal(t, http.StatusOK, hit.Code)
	require.JSONEq(t, miss.Body.String(), hit.Body.String())
	require.Len(t, decode[productList](t, hit).Products, 1)
}

func TestProductsByCategory(t *testing.T) {
	f := setupTestFixture(t)
	f.addProduct(t, products.Product{Name: "Jeans", Category: "jeans"})
	f.addProduct(t, products.Product{Name: "Shoes", Category: "shoes"})

	rec := f.do(t, http.MethodGet, "/products/category/shoes", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[productList](t, rec).Products
	require.Len(t, got, 1)
	require.Equal(t, "Shoes", got[0].Name)

	rec = f.do(t, http.MethodGet, "/products/category/hats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"products":[]}`, rec.Body.String())
}

func TestRecommendations(t *testing.T) {
	f := setupTestFixture(t)
	for _, name := range []string{"a", "b", "c", "d"} {
		f.addProduct(t, products.Product{Name: name, Description: "d", Price: 5, Category: "misc", IsFeatured: true})
	}

	rec := f.do(t, http.MethodGet, server.RouteRecommendations, "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, server.RouteRecommendations, "", f.token(t, users.RoleCustomer))
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Products []map[string]any `json:"products"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Products, 3)
	for _, p := range got.Products {
		require.ElementsMatch(t, []string{"id", "name", "description", "image", "price"}, keys(p))
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestCreateProduct(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.token(t, users.RoleAdmin)

	rec := f.do(t, http.MethodPost, server.RouteProducts, `{"name":"Jeans","description":"Blue","price":49.5,"image":"data:image/png;base64,AAAA","category":"jeans"}`, admin)
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decode[products.Product](t, rec)
	require.NotEmpty(t, created.ID)
	require.Equal(t, "https://images.test/products/img1.png", created.Image)
	require.Equal(t, 49.5, created.Price)
	require.False(t, created.IsFeatured)

	stored, err := f.repo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, "Jeans", stored.Name)
}

func TestCreateProductRejectsInvalidInput(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.token(t, users.RoleAdmin)

	rec := f.do(t, http.MethodPost, server.RouteProducts, `{"name":"Jeans","price":-3}`, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	got := decode[message](t, rec)
	require.Equal(t, "Invalid product", got.Message)
	require.Contains(t, got.Errors, "description")
	require.Contains(t, got.Errors, "category")
	require.Equal(t, "price must be at least 0", got.Errors["price"])

	rec = f.do(t, http.MethodPost, server.RouteProducts, `{"name":`, admin)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Invalid request body", decode[message](t, rec).Message)

	require.Empty(t, f.images.Uploads())
}

func TestCreateProductRejectsOversizedBody(t *testing.T) {
	f := setupTestFixture(t)

	body := `{"name":"Jeans","description":"Blue","price":1,"category":"jeans","image":"` + strings.Repeat("A", 11<<20) + `"}`
	rec := f.do(t, http.MethodPost, server.RouteProducts, body, f.token(t, users.RoleAdmin))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	require.Equal(t, "Request body too large", decode[message](t, rec).Message)
	require.Empty(t, f.images.Uploads())
}

func TestDeleteProduct(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.token(t, users.RoleAdmin)
	p := f.addProduct(t, products.Product{Name: "Jeans", Image: "https://res.example.com/v1/products/abc123.png", IsFeatured: true})

	rec := f.do(t, http.MethodDelete, "/products/"+p.ID, "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Product deleted successfully", decode[message](t, rec).Message)
	require.Equal(t, []string{"products/abc123"}, f.images.Deletes())

	rec = f.do(t, http.MethodDelete, "/products/"+p.ID, "", admin)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Product not found", decode[message](t, rec).Message)

	rec = f.do(t, http.MethodGet, server.RouteFeaturedProducts, "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleFeatured(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.token(t, users.RoleAdmin)
	p := f.addProduct(t, products.Product{Name: "Jeans"})

	rec := f.do(t, http.MethodPatch, "/products/"+p.ID, "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[products.Product](t, rec).IsFeatured)

	rec = f.do(t, http.MethodGet, server.RouteFeaturedProducts, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[productList](t, rec).Products, 1)

	rec = f.do(t, http.MethodPatch, "/products/missing", "", admin)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPatch, "/products/"+p.ID, "", f.token(t, users.RoleCustomer))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServerError(t *testing.T) {
	f := setupTestFixture(t)
	service := catalog.NewService(brokenRepo{f.repo}, f.mustCache(t), f.images)
	handler := server.New(config.New(), service, token.NewVerifier(f.signer))

	req := httptest.NewRequest(http.MethodGet, server.RouteProducts, nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: f.token(t, users.RoleAdmin)})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	got := decode[message](t, rec)
	require.Equal(t, "Server error", got.Message)
	require.Contains(t, got.Error, "connection reset")
}

func (f *testFixture) mustCache(t *testing.T) *memkv.Cache {
	t.Helper()
	cache, err := memkv.New(4)
	require.NoError(t, err)
	return cache
}

func TestCors(t *testing.T) {
	f := setupTestFixture(t)

	req := httptest.NewRequest(http.MethodOptions, server.RouteProducts, nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, server.RouteFeaturedProducts, nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	f := setupTestFixture(t)
	rec := f.do(t, http.MethodGet, server.RouteHealth, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	f = setupTestFixture(t,
		server.WithHealthCheck("cache", func(context.Context) error { return nil }),
		server.WithHealthCheck("store", func(context.Context) error { return errors.New("dial tcp: refused") }),
	)
	rec = f.do(t, http.MethodGet, server.RouteHealth, "", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.JSONEq(t, `{"status":"degraded","checks":{"cache":"ok","store":"dial tcp: refused"}}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	f := setupTestFixture(t)
	f.do(t, http.MethodGet, server.RouteFeaturedProducts, "", "")

	rec := f.do(t, http.MethodGet, server.RouteMetrics, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "catalog_http_request_duration_seconds")
}

func TestRecoverMiddleware(t *testing.T) {
	f := setupTestFixture(t)
	s := f.handler.(*server.Server)

	handler := server.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, s.RecoverMiddleware)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "panic: boom", decode[message](t, rec).Error)
}

func TestRecoverMiddlewareOnCompressedRoute(t *testing.T) {
	f := setupTestFixture(t)
	s := f.handler.(*server.Server)

	handler := server.ChainMiddleware(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}, s.APIMiddleware(s.CompressionMiddleware)...)

	req := httptest.NewRequest(http.MethodGet, server.RouteProducts, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Empty(t, rec.Header().Get("Content-Encoding"))
	got := decode[message](t, rec)
	require.Equal(t, "Server error", got.Message)
	require.Equal(t, "panic: boom", got.Error)
}

func TestCompressedListResponse(t *testing.T) {
	f := setupTestFixture(t)
	f.addProduct(t, products.Product{Name: "Jeans", IsFeatured: true})

	req := httptest.NewRequest(http.MethodGet, server.RouteFeaturedProducts, nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	reader, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	var got productList
	require.NoError(t, json.NewDecoder(reader).Decode(&got))
	require.Len(t, got.Products, 1)
}
