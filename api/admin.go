package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// AdminDashboard returns platform statistics
func (c *Client) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	var out AdminDashboard
	if err := c.do(ctx, "AdminDashboard", http.MethodGet, "/admin/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AdminUsers lists every account
func (c *Client) AdminUsers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, "AdminUsers", http.MethodGet, "/admin/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateUserRole changes an account's role
func (c *Client) UpdateUserRole(ctx context.Context, userID int64, role Role) error {
	if !role.Valid() {
		return &APIError{Op: "UpdateUserRole", Kind: KindValidation, Message: fmt.Sprintf("invalid role %q", role)}
	}
	in := struct {
		Role Role `json:"role"`
	}{role}
	return c.do(ctx, "UpdateUserRole", http.MethodPut, fmt.Sprintf("/admin/users/%d/role", userID), in, nil)
}

// DeleteUser removes an account
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return c.do(ctx, "DeleteUser", http.MethodDelete, fmt.Sprintf("/admin/users/%d", userID), nil, nil)
}

// AdminOrders lists every order, newest first
func (c *Client) AdminOrders(ctx context.Context) ([]AdminOrder, error) {
	var out []AdminOrder
	if err := c.do(ctx, "AdminOrders", http.MethodGet, "/admin/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateOrderStatus moves an order to a new status
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID int64, status OrderStatus) error {
	if !status.Valid() {
		return &APIError{Op: "UpdateOrderStatus", Kind: KindValidation, Message: fmt.Sprintf("invalid order status %q", status)}
	}
	q := url.Values{"new_status": {string(status)}}
	return c.doQuery(ctx, "UpdateOrderStatus", http.MethodPut, fmt.Sprintf("/admin/orders/%d/status", orderID), q, nil)
}

// AdminProducts lists every product
func (c *Client) AdminProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, "AdminProducts", http.MethodGet, "/admin/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ToggleFeatured sets whether a product is featured on the home page
func (c *Client) ToggleFeatured(ctx context.Context, productID int64, featured bool) error {
	q := url.Values{"is_featured": {strconv.FormatBool(featured)}}
	return c.doQuery(ctx, "ToggleFeatured", http.MethodPut, fmt.Sprintf("/admin/products/%d/featured", productID), q, nil)
}

// AdminCategories lists categories with product counts
func (c *Client) AdminCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, "AdminCategories", http.MethodGet, "/admin/categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCategory adds a category and returns its id. The admin endpoint
// takes its fields as query parameters.
func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (int64, error) {
	q := url.Values{"name": {in.Name}}
	if in.Description != "" {
		q.Set("description", in.Description)
	}
	if in.ImageURL != "" {
		q.Set("image_url", in.ImageURL)
	}
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.doQuery(ctx, "CreateCategory", http.MethodPost, "/admin/categories", q, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// AdminReviews lists reviews for moderation
func (c *Client) AdminReviews(ctx context.Context) ([]AdminReview, error) {
	var out []AdminReview
	if err := c.do(ctx, "AdminReviews", http.MethodGet, "/admin/reviews", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteReview removes a review
func (c *Client) DeleteReview(ctx context.Context, reviewID int64) error {
	return c.do(ctx, "DeleteReview", http.MethodDelete, fmt.Sprintf("/admin/reviews/%d", reviewID), nil, nil)
}

// AdminWishlistItems lists saved products across all users
func (c *Client) AdminWishlistItems(ctx context.Context) ([]AdminWishlistItem, error) {
	var out []AdminWishlistItem
	if err := c.do(ctx, "AdminWishlistItems", http.MethodGet, "/admin/wishlist-items", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WishlistStats summarizes wishlists platform-wide
func (c *Client) WishlistStats(ctx context.Context) (*WishlistStats, error) {
	var out WishlistStats
	if err := c.do(ctx, "WishlistStats", http.MethodGet, "/admin/wishlist-stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
