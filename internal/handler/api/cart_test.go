package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rivermark/aqualink/internal/cart"
)

// mockPlacer implements cart.OrderPlacer for testing
type mockPlacer struct {
	placeOrderFunc func(ctx context.Context, req cart.CheckoutRequest) (*cart.CheckoutResult, error)
}

func (m *mockPlacer) PlaceOrder(ctx context.Context, req cart.CheckoutRequest) (*cart.CheckoutResult, error) {
	if m.placeOrderFunc != nil {
		return m.placeOrderFunc(ctx, req)
	}
	return &cart.CheckoutResult{OrderID: "o-1", OrderNumber: "ORD-20260829-TEST"}, nil
}

func newCartServer(placer cart.OrderPlacer) *echo.Echo {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := cart.NewRegistry(cart.NewMemoryStorage(), placer, logger)
	handler := NewCartHandler(registry, false)

	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(logger)
	e.GET("/api/cart", handler.View)
	e.POST("/api/cart/items", handler.AddItem)
	e.PUT("/api/cart/items/:productID", handler.SetQuantity)
	e.DELETE("/api/cart/items/:productID", handler.RemoveItem)
	e.DELETE("/api/cart", handler.Clear)
	e.POST("/api/cart/checkout", handler.Checkout)
	return e
}

func doJSON(e *echo.Echo, method, path, body, session string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if session != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session})
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid cart response: %v: %s", err, rec.Body.String())
	}
	return resp
}

func TestCartHandler_ViewMintsSessionCookie(t *testing.T) {
	e := newCartServer(&mockPlacer{})

	rec := doJSON(e, http.MethodGet, "/api/cart", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var minted bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookieName && cookie.Value != "" {
			minted = true
		}
	}
	if !minted {
		t.Error("expected a session cookie to be set")
	}

	resp := decodeCart(t, rec)
	if resp.Items == nil || len(resp.Items) != 0 {
		t.Errorf("items = %v, want empty array", resp.Items)
	}
}

func TestCartHandler_AddAndTotals(t *testing.T) {
	e := newCartServer(&mockPlacer{})

	rec := doJSON(e, http.MethodPost, "/api/cart/items",
		`{"productId": "aqua-5g", "name": "5 Gallon Jug", "unitPrice": 500, "quantity": 2}`, "sess-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(e, http.MethodPost, "/api/cart/items",
		`{"productId": "filter-std", "name": "Standard Filter", "unitPrice": 300}`, "sess-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeCart(t, rec)
	if resp.ItemCount != 3 || resp.TotalPrice != 1300 {
		t.Errorf("totals = %d items / %d, want 3 / 1300", resp.ItemCount, resp.TotalPrice)
	}

	// Another session sees its own empty cart
	rec = doJSON(e, http.MethodGet, "/api/cart", "", "sess-2")
	resp = decodeCart(t, rec)
	if resp.ItemCount != 0 {
		t.Errorf("other session itemCount = %d, want 0", resp.ItemCount)
	}
}

func TestCartHandler_AddRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing product id", body: `{"quantity": 1}`},
		{name: "negative quantity", body: `{"productId": "aqua-5g", "quantity": -2}`},
		{name: "negative price", body: `{"productId": "aqua-5g", "unitPrice": -10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newCartServer(&mockPlacer{})
			rec := doJSON(e, http.MethodPost, "/api/cart/items", tt.body, "sess-1")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCartHandler_SetQuantityZeroRemoves(t *testing.T) {
	e := newCartServer(&mockPlacer{})

	doJSON(e, http.MethodPost, "/api/cart/items",
		`{"productId": "aqua-5g", "unitPrice": 500, "quantity": 2}`, "sess-1")

	rec := doJSON(e, http.MethodPut, "/api/cart/items/aqua-5g", `{"quantity": 0}`, "sess-1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeCart(t, rec)
	if len(resp.Items) != 0 {
		t.Errorf("items = %v, want empty after zero quantity", resp.Items)
	}
}

func TestCartHandler_Checkout(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		e := newCartServer(&mockPlacer{})
		rec := doJSON(e, http.MethodPost, "/api/cart/checkout", `{"name": "Amina"}`, "sess-1")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		if resp.Error.Code != "empty_cart" {
			t.Errorf("code = %q, want empty_cart", resp.Error.Code)
		}
	})

	t.Run("placer failure keeps cart", func(t *testing.T) {
		e := newCartServer(&mockPlacer{
			placeOrderFunc: func(_ context.Context, _ cart.CheckoutRequest) (*cart.CheckoutResult, error) {
				return nil, errors.New("order service down")
			},
		})
		doJSON(e, http.MethodPost, "/api/cart/items",
			`{"productId": "aqua-5g", "unitPrice": 500, "quantity": 2}`, "sess-1")

		rec := doJSON(e, http.MethodPost, "/api/cart/checkout", `{"name": "Amina"}`, "sess-1")
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("status = %d, want 500", rec.Code)
		}

		rec = doJSON(e, http.MethodGet, "/api/cart", "", "sess-1")
		resp := decodeCart(t, rec)
		if resp.ItemCount != 2 {
			t.Errorf("itemCount = %d after failed checkout, want 2", resp.ItemCount)
		}
	})

	t.Run("success clears cart", func(t *testing.T) {
		var got cart.CheckoutRequest
		e := newCartServer(&mockPlacer{
			placeOrderFunc: func(_ context.Context, req cart.CheckoutRequest) (*cart.CheckoutResult, error) {
				got = req
				return &cart.CheckoutResult{OrderID: "o-1", OrderNumber: "ORD-20260829-TEST"}, nil
			},
		})
		doJSON(e, http.MethodPost, "/api/cart/items",
			`{"productId": "aqua-5g", "unitPrice": 500, "quantity": 2}`, "sess-1")

		body := `{"name": "Amina Diallo", "phone": "+233 24 555 0199", "address": "12 Harbor Rd"}`
		rec := doJSON(e, http.MethodPost, "/api/cart/checkout", body, "sess-1")
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}

		var result cart.CheckoutResult
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("invalid response: %v", err)
		}
		if result.OrderNumber != "ORD-20260829-TEST" {
			t.Errorf("orderNumber = %q", result.OrderNumber)
		}
		if got.Customer.Name != "Amina Diallo" || len(got.Items) != 1 {
			t.Errorf("collaborator request = %+v", got)
		}

		rec = doJSON(e, http.MethodGet, "/api/cart", "", "sess-1")
		resp := decodeCart(t, rec)
		if resp.ItemCount != 0 {
			t.Errorf("itemCount = %d after checkout, want 0", resp.ItemCount)
		}
	})
}
