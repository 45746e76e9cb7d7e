package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/itsneelabh/storefront/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", WithHTTPClient(srv.Client()))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth, gotType, gotRequestID string
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotRequestID = r.Header.Get("X-Request-ID")
		assert.Equal(t, "/cart/", r.URL.Path)
		writeJSON(w, http.StatusOK, Cart{Items: []CartItem{{ProductID: 1, Price: 10, Quantity: 2}}, TotalAmount: 20})
	})

	cart, err := client.WithToken("tok-123").GetCart(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotType)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, 20.0, cart.TotalAmount)
	assert.Empty(t, client.Token(), "WithToken does not modify the receiver")
}

func TestClientAnonymousSendsNoAuthorization(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "laptop", r.URL.Query().Get("search"))
		assert.Equal(t, "3", r.URL.Query().Get("category_id"))
		assert.Equal(t, "/products/", r.URL.Path)
		writeJSON(w, http.StatusOK, []Product{{ID: 1, Name: "Laptop"}})
	})

	products, err := client.ListProducts(context.Background(), ProductQuery{Search: "laptop", CategoryID: 3})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Laptop", products[0].Name)
}

func TestClientErrorKinds(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindUnauthenticated},
		{http.StatusForbidden, KindForbidden},
		{http.StatusNotFound, KindNotFound},
		{http.StatusBadRequest, KindValidation},
		{http.StatusConflict, KindValidation},
		{http.StatusUnprocessableEntity, KindValidation},
		{http.StatusInternalServerError, KindServer},
		{http.StatusBadGateway, KindServer},
		{http.StatusTeapot, KindServer},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			_, err := client.AdminUsers(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, "AdminUsers", apiErr.Op)
			assert.Equal(t, http.StatusText(tt.status), apiErr.Message, "status text is the fallback message")
			assert.True(t, errors.Is(err, core.ErrRequestFailed))
		})
	}
}

func TestClientErrorDetail(t *testing.T) {
	t.Run("string detail", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Cannot demote yourself"})
		})
		err := client.UpdateUserRole(context.Background(), 1, RoleCustomer)
		require.Error(t, err)
		assert.Equal(t, "Cannot demote yourself", err.Error())
		assert.True(t, IsValidation(err))
	})

	t.Run("validation list", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"detail": []map[string]interface{}{
					{"loc": []interface{}{"body", "rating"}, "msg": "ensure this value is less than or equal to 5"},
					{"loc": []interface{}{"body", "product_id"}, "msg": "field required"},
				},
			})
		})
		_, err := client.CreateReview(context.Background(), ReviewInput{ProductID: 1, Rating: 9})
		require.Error(t, err)
		assert.Equal(t, "rating: ensure this value is less than or equal to 5; product_id: field required", err.Error())
	})

	t.Run("non-json body", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte("<html>nope</html>"))
		})
		_, err := client.AdminDashboard(context.Background())
		require.Error(t, err)
		assert.Equal(t, "Forbidden", err.Error())
		assert.True(t, IsForbidden(err))
	})
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	origin := srv.URL
	srv.Close()

	client := NewClient(origin)
	_, err := client.ListCategories(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, 0, StatusOf(err))
	assert.True(t, errors.Is(err, core.ErrConnectionFailed))
	assert.Equal(t, "could not reach the server", err.Error())
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := NewClient(srv.URL, WithHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond))
	_, err := client.ListOrders(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, "request timed out", err.Error())
}

func TestClientDecodeError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": "not-a-number"}`))
	})
	_, err := client.GetProduct(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, KindDecode, KindOf(err))
}

func TestClientEmptySuccessBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/cart/clear", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	assert.NoError(t, client.ClearCart(context.Background()))
}

func TestLoginPostsForm(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "ada@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": "jwt",
			"token_type":   "bearer",
			"user":         map[string]interface{}{"id": 4, "email": "ada@example.com", "role": "merchant", "is_active": true},
		})
	})

	tok, err := client.Login(context.Background(), "ada@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt", tok.AccessToken)
	require.NotNil(t, tok.User)
	assert.Equal(t, RoleMerchant, tok.User.Role)
}

func TestAdminQueryParameters(t *testing.T) {
	var calls int32
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		switch r.URL.Path {
		case "/admin/orders/9/status":
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Equal(t, "shipped", r.URL.Query().Get("new_status"))
		case "/admin/products/3/featured":
			assert.Equal(t, "true", r.URL.Query().Get("is_featured"))
		case "/admin/categories":
			assert.Equal(t, "Toys", r.URL.Query().Get("name"))
			writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Category created", "id": 12})
			return
		case "/admin/users/5/role":
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"role":"admin"}`, string(body))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		writeJSON(w, http.StatusOK, Message{Message: "ok"})
	})
	ctx := context.Background()

	require.NoError(t, client.UpdateOrderStatus(ctx, 9, OrderShipped))
	require.NoError(t, client.ToggleFeatured(ctx, 3, true))
	id, err := client.CreateCategory(ctx, CategoryInput{Name: "Toys"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)
	require.NoError(t, client.UpdateUserRole(ctx, 5, RoleAdmin))

	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestInvalidEnumsAreRejectedLocally(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s %s", r.Method, r.URL.Path)
	})
	ctx := context.Background()

	assert.True(t, IsValidation(client.UpdateUserRole(ctx, 1, Role("superuser"))))
	assert.True(t, IsValidation(client.UpdateOrderStatus(ctx, 1, OrderStatus("lost"))))
}

func TestCheckoutEndpoints(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		switch r.URL.Path {
		case "/payment/create-intent":
			assert.JSONEq(t, `{"amount":25.5}`, string(body))
			writeJSON(w, http.StatusOK, PaymentIntent{ClientSecret: "pi_1_secret", PaymentIntentID: "pi_1"})
		case "/orders/checkout":
			assert.JSONEq(t, `{"payment_intent_id":"pi_1"}`, string(body))
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"id": 77, "user_id": 1, "total_amount": 25.5, "status": "paid",
				"created_at": "2024-05-01T10:00:00.123456", "items": []interface{}{},
			})
		}
	})
	ctx := context.Background()

	intent, err := client.CreatePaymentIntent(ctx, 25.499999)
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", intent.ClientSecret)

	order, err := client.ConfirmCheckout(ctx, intent.PaymentIntentID)
	require.NoError(t, err)
	assert.Equal(t, OrderPaid, order.Status)
	assert.Equal(t, 2024, order.CreatedAt.Year())
}
