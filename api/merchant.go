package api

import (
	"context"
	"fmt"
	"net/http"
)

// MerchantDashboard returns the caller's store statistics
func (c *Client) MerchantDashboard(ctx context.Context) (*MerchantDashboard, error) {
	var out MerchantDashboard
	if err := c.do(ctx, "MerchantDashboard", http.MethodGet, "/merchant/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MerchantProducts lists the caller's own products
func (c *Client) MerchantProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, "MerchantProducts", http.MethodGet, "/merchant/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MerchantOrders lists orders containing the caller's products
func (c *Client) MerchantOrders(ctx context.Context) ([]MerchantOrder, error) {
	var out []MerchantOrder
	if err := c.do(ctx, "MerchantOrders", http.MethodGet, "/merchant/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMerchantProduct adds a product owned by the caller
func (c *Client) CreateMerchantProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var out Product
	if err := c.do(ctx, "CreateMerchantProduct", http.MethodPost, "/merchant/products", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMerchantProduct edits one of the caller's products
func (c *Client) UpdateMerchantProduct(ctx context.Context, id int64, in ProductUpdate) (*Product, error) {
	var out Product
	if err := c.do(ctx, "UpdateMerchantProduct", http.MethodPut, fmt.Sprintf("/merchant/products/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMerchantProduct removes one of the caller's products
func (c *Client) DeleteMerchantProduct(ctx context.Context, id int64) error {
	return c.do(ctx, "DeleteMerchantProduct", http.MethodDelete, fmt.Sprintf("/merchant/products/%d", id), nil, nil)
}
