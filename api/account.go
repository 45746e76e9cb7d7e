package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Login exchanges credentials for a bearer token. The API expects an
// OAuth2 password form with the email in the username field.
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var out Token
	if err := c.doForm(ctx, "Login", "/auth/login", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Signup registers an account and returns its profile
func (c *Client) Signup(ctx context.Context, in SignupRequest) (*User, error) {
	var out User
	if err := c.do(ctx, "Signup", http.MethodPost, "/auth/signup", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetWishlist returns the caller's saved products
func (c *Client) GetWishlist(ctx context.Context) ([]WishlistItem, error) {
	var out []WishlistItem
	if err := c.do(ctx, "GetWishlist", http.MethodGet, "/wishlist/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddToWishlist saves a product
func (c *Client) AddToWishlist(ctx context.Context, productID int64) error {
	return c.do(ctx, "AddToWishlist", http.MethodPost, fmt.Sprintf("/wishlist/%d", productID), nil, nil)
}

// RemoveFromWishlist unsaves a product
func (c *Client) RemoveFromWishlist(ctx context.Context, productID int64) error {
	return c.do(ctx, "RemoveFromWishlist", http.MethodDelete, fmt.Sprintf("/wishlist/%d", productID), nil, nil)
}

// CheckWishlist reports whether the caller saved a product
func (c *Client) CheckWishlist(ctx context.Context, productID int64) (bool, error) {
	var out struct {
		InWishlist bool `json:"in_wishlist"`
	}
	if err := c.do(ctx, "CheckWishlist", http.MethodGet, fmt.Sprintf("/wishlist/check/%d", productID), nil, &out); err != nil {
		return false, err
	}
	return out.InWishlist, nil
}

// ListReviews returns a product's reviews, newest first
func (c *Client) ListReviews(ctx context.Context, productID int64) ([]Review, error) {
	var out []Review
	if err := c.do(ctx, "ListReviews", http.MethodGet, fmt.Sprintf("/reviews/product/%d", productID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReviewStats returns a product's rating summary
func (c *Client) GetReviewStats(ctx context.Context, productID int64) (*ReviewStats, error) {
	var out ReviewStats
	if err := c.do(ctx, "GetReviewStats", http.MethodGet, fmt.Sprintf("/reviews/product/%d/stats", productID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateReview submits a review as the caller
func (c *Client) CreateReview(ctx context.Context, in ReviewInput) (*Review, error) {
	var out Review
	if err := c.do(ctx, "CreateReview", http.MethodPost, "/reviews/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarkReviewHelpful increments a review's helpful count and returns the
// new count
func (c *Client) MarkReviewHelpful(ctx context.Context, reviewID int64) (int, error) {
	var out struct {
		HelpfulCount int `json:"helpful_count"`
	}
	if err := c.do(ctx, "MarkReviewHelpful", http.MethodPost, fmt.Sprintf("/reviews/%d/helpful", reviewID), nil, &out); err != nil {
		return 0, err
	}
	return out.HelpfulCount, nil
}
