package api

import (
	"context"
	"fmt"
	"net/http"
)

type cartLine struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// GetCart returns the caller's cart
func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var out Cart
	if err := c.do(ctx, "GetCart", http.MethodGet, "/cart/", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AddToCart increments a product's quantity in the cart
func (c *Client) AddToCart(ctx context.Context, productID int64, quantity int) error {
	return c.do(ctx, "AddToCart", http.MethodPost, "/cart/add", cartLine{productID, quantity}, nil)
}

// UpdateCartItem sets a line's quantity
func (c *Client) UpdateCartItem(ctx context.Context, productID int64, quantity int) error {
	return c.do(ctx, "UpdateCartItem", http.MethodPut, "/cart/update", cartLine{productID, quantity}, nil)
}

// RemoveFromCart drops a line
func (c *Client) RemoveFromCart(ctx context.Context, productID int64) error {
	return c.do(ctx, "RemoveFromCart", http.MethodDelete, fmt.Sprintf("/cart/remove/%d", productID), nil, nil)
}

// ClearCart empties the cart
func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, "ClearCart", http.MethodDelete, "/cart/clear", nil, nil)
}

// CreatePaymentIntent asks the backend to open a payment for amount
// (in dollars)
func (c *Client) CreatePaymentIntent(ctx context.Context, amount float64) (*PaymentIntent, error) {
	in := struct {
		Amount float64 `json:"amount"`
	}{RoundCents(amount)}
	var out PaymentIntent
	if err := c.do(ctx, "CreatePaymentIntent", http.MethodPost, "/payment/create-intent", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmCheckout turns the cart into an order once the payment succeeded
func (c *Client) ConfirmCheckout(ctx context.Context, paymentIntentID string) (*Order, error) {
	in := struct {
		PaymentIntentID string `json:"payment_intent_id"`
	}{paymentIntentID}
	var out Order
	if err := c.do(ctx, "ConfirmCheckout", http.MethodPost, "/orders/checkout", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns the caller's order history
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var out []Order
	if err := c.do(ctx, "ListOrders", http.MethodGet, "/orders/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
