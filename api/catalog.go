package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// ListProducts returns the public catalog, optionally searched and
// narrowed to one category
func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.CategoryID != 0 {
		params.Set("category_id", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.Skip > 0 {
		params.Set("skip", strconv.Itoa(q.Skip))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	var out []Product
	if err := c.doQuery(ctx, "ListProducts", http.MethodGet, "/products/", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct returns one product
func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var out Product
	if err := c.do(ctx, "GetProduct", http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProduct adds a product to the public catalog
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	var out Product
	if err := c.do(ctx, "CreateProduct", http.MethodPost, "/products/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProduct applies a partial update to a catalog product
func (c *Client) UpdateProduct(ctx context.Context, id int64, in ProductUpdate) (*Product, error) {
	var out Product
	if err := c.do(ctx, "UpdateProduct", http.MethodPut, fmt.Sprintf("/products/%d", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategories returns every category
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, "ListCategories", http.MethodGet, "/categories/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
