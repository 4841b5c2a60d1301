package inventory

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/config"
	"github.com/talentotech/storefront/internal/domain"
	pkgerrors "github.com/talentotech/storefront/pkg/errors"
)

type staticTokens struct {
	token string
}

func (s staticTokens) AccessToken() string { return s.token }

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.InventoryConfig{BaseURL: server.URL, TimeoutSeconds: 5}, zap.NewNop())
	return client, server
}

func TestListProducts_Envelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/productos/", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "9", r.URL.Query().Get("page_size"))
		assert.Equal(t, "empanada", r.URL.Query().Get("search"))
		w.Write([]byte(`{"count": 19, "results": [
			{"id": 1, "nombre": "Empanada", "precio": "1200.00", "stock": 5, "categoria": {"id": 2, "nombre": "Comida"}},
			{"id": 2, "nombre": "Sopaipilla", "precio": 500, "stock": 12, "categoria": "Frituras"}
		]}`))
	}))

	page, err := client.ListProducts(context.Background(), ListParams{Page: 2, PageSize: 9, Search: "empanada"})
	require.NoError(t, err)

	assert.Equal(t, 19, page.Count)
	assert.Equal(t, 3, page.TotalPages())
	require.Len(t, page.Results, 2)
	assert.Equal(t, domain.FlexFloat(1200), page.Results[0].Price)
	assert.Equal(t, "Comida", page.Results[0].Category.Name)
	assert.Equal(t, "Frituras", page.Results[1].Category.Name)
}

func TestListProducts_BareArray(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id": 1, "nombre": "Empanada", "precio": 1200, "stock": 5}]`))
	}))

	page, err := client.ListProducts(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Count)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Empanada", page.Results[0].Name)
}

func TestListProducts_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	client.SetTokenSource(staticTokens{token: "tok123"})

	_, err := client.ListProducts(context.Background(), ListParams{})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
}

func TestUnauthorizedFiresSessionExpiredHook(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	client.SetTokenSource(staticTokens{token: "stale"})

	expired := false
	client.OnSessionExpired(func() { expired = true })

	_, err := client.ListProducts(context.Background(), ListParams{})
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.True(t, expired)
}

func TestUnauthorizedWithoutTokenDoesNotFireHook(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "no autorizado"}`))
	}))

	expired := false
	client.OnSessionExpired(func() { expired = true })

	_, err := client.ListProducts(context.Background(), ListParams{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionExpired)
	assert.False(t, expired)
}

func TestPurchase_Success(t *testing.T) {
	var gotBody string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/comprar/", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"mensaje": "Compra realizada"}`))
	}))

	err := client.Purchase(context.Background(), []domain.PurchaseItem{
		{ID: 7, Quantity: 3},
		{ID: 9, Quantity: 1},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":[{"id":7,"cantidad":3},{"id":9,"cantidad":1}]}`, gotBody)
}

func TestPurchase_RejectionWithDetails(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "stock insuficiente", "detalles": ["Empanada: quedan 2", "Sopaipilla: quedan 0"]}`))
	}))

	err := client.Purchase(context.Background(), []domain.PurchaseItem{{ID: 7, Quantity: 3}})
	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "Empanada: quedan 2\nSopaipilla: quedan 0", rejection.Reason())
}

func TestPurchase_RejectionWithMessageOnly(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "stock insuficiente"}`))
	}))

	err := client.Purchase(context.Background(), []domain.PurchaseItem{{ID: 7, Quantity: 3}})
	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "stock insuficiente", rejection.Reason())
}

func TestPurchase_OpaqueErrorBodyFallsBack(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>boom</html>`))
	}))

	err := client.Purchase(context.Background(), []domain.PurchaseItem{{ID: 7, Quantity: 3}})
	var rejection *RejectionError
	require.ErrorAs(t, err, &rejection)
	assert.Equal(t, "purchase rejected", rejection.Reason())
}

func TestPurchase_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing is listening anymore

	client := NewClient(config.InventoryConfig{BaseURL: server.URL, TimeoutSeconds: 1}, zap.NewNop())
	err := client.Purchase(context.Background(), []domain.PurchaseItem{{ID: 1, Quantity: 1}})
	assert.ErrorIs(t, err, ErrConnection)
}

func TestLogin_Success(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/token/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"access": "acc", "refresh": "ref"}`))
	}))
	// A stale token must not leak into the login call.
	client.SetTokenSource(staticTokens{token: "stale"})

	tokens, err := client.Login(context.Background(), "ana", "secret")
	require.NoError(t, err)
	assert.Equal(t, "acc", tokens.Access)
	assert.Equal(t, "ref", tokens.Refresh)
}

func TestLogin_BadCredentials(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	expired := false
	client.OnSessionExpired(func() { expired = true })

	_, err := client.Login(context.Background(), "ana", "wrong")
	var unauthorized *pkgerrors.ErrUnauthorized
	require.ErrorAs(t, err, &unauthorized)
	assert.False(t, expired)
}

func TestCreateProduct(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/productos/crear/", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 42, "nombre": "Pastel de Choclo", "precio": "4500", "stock": 10}`))
	}))

	product, err := client.CreateProduct(context.Background(), ProductInput{
		Name:  "Pastel de Choclo",
		Price: 4500,
		Stock: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), product.ID)
	assert.Equal(t, domain.FlexFloat(4500), product.Price)
}

func TestDeleteProduct(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/productos/42/eliminar/", r.URL.Path)
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, client.DeleteProduct(context.Background(), 42))
}

func TestListCategories(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categorias/", r.URL.Path)
		w.Write([]byte(`{"results": [{"id": 1, "nombre": "Comida Chilena"}]}`))
	}))

	categories, err := client.ListCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "Comida Chilena", categories[0].Name)
}
