package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Timestamp decodes the API's datetimes, which may omit the zone
// ("2024-05-01T10:00:00.123456") and are then taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Role is a user's account role
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// Roles lists every role in display order
var Roles = []Role{RoleCustomer, RoleMerchant, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleMerchant, RoleAdmin:
		return true
	}
	return false
}

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status in lifecycle order
var OrderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// ParseOrderStatus normalizes and validates a status string
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("invalid order status %q", s)
	}
	return status, nil
}

// User is the account profile returned at login and by the admin listing
type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name,omitempty"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"is_active"`
	StoreName string     `json:"store_name,omitempty"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// DisplayName prefers the full name and falls back to the email
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// Token is the login response
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user,omitempty"`
}

// SignupRequest registers a new account
type SignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FullName  string `json:"full_name,omitempty"`
	Role      Role   `json:"role,omitempty"`
	StoreName string `json:"store_name,omitempty"`
}

// Category groups products
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	ProductCount int    `json:"product_count,omitempty"`
}

// CategoryInput creates a category
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Product is a catalog entry. The merchant and admin listings return a
// subset of these fields plus CategoryName.
type Product struct {
	ID             int64                  `json:"id"`
	Name           string                 `json:"name"`
	Description    string                 `json:"description,omitempty"`
	Price          float64                `json:"price"`
	CompareAtPrice *float64               `json:"compare_at_price,omitempty"`
	Stock          int                    `json:"stock"`
	Brand          string                 `json:"brand,omitempty"`
	SKU            string                 `json:"sku,omitempty"`
	Tags           []string               `json:"tags,omitempty"`
	Specifications map[string]interface{} `json:"specifications,omitempty"`
	ImageURL       string                 `json:"image_url,omitempty"`
	CategoryID     *int64                 `json:"category_id,omitempty"`
	Category       *Category              `json:"category,omitempty"`
	CategoryName   string                 `json:"category_name,omitempty"`
	AverageRating  float64                `json:"average_rating,omitempty"`
	ReviewCount    int                    `json:"review_count,omitempty"`
	IsFeatured     bool                   `json:"is_featured"`
	IsActive       bool                   `json:"is_active"`
	MerchantID     *int64                 `json:"merchant_id,omitempty"`
	CreatedAt      Timestamp              `json:"created_at"`
	UpdatedAt      *Timestamp             `json:"updated_at,omitempty"`
}

// InStock reports whether at least one unit is available
func (p Product) InStock() bool {
	return p.Stock > 0
}

// OnSale reports a compare-at price above the current price
func (p Product) OnSale() bool {
	return p.CompareAtPrice != nil && *p.CompareAtPrice > p.Price
}

// CategoryLabel resolves the category's display name from whichever
// representation the endpoint returned
func (p Product) CategoryLabel() string {
	if p.Category != nil {
		return p.Category.Name
	}
	return p.CategoryName
}

// ProductInput creates a product
type ProductInput struct {
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Price          float64  `json:"price"`
	CompareAtPrice *float64 `json:"compare_at_price,omitempty"`
	Stock          int      `json:"stock"`
	Brand          string   `json:"brand,omitempty"`
	SKU            string   `json:"sku,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	ImageURL       string   `json:"image_url,omitempty"`
	CategoryID     *int64   `json:"category_id,omitempty"`
}

// ProductUpdate is a partial update; nil fields are left unchanged
type ProductUpdate struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
	ImageURL    *string  `json:"image_url,omitempty"`
	CategoryID  *int64   `json:"category_id,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// Apply returns p with the non-nil fields of u written over it
func (u ProductUpdate) Apply(p Product) Product {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.CategoryID != nil {
		id := *u.CategoryID
		p.CategoryID = &id
	}
	if u.IsActive != nil {
		p.IsActive = *u.IsActive
	}
	return p
}

// ProductQuery filters the public product listing
type ProductQuery struct {
	Search     string
	CategoryID int64
	Skip       int
	Limit      int
}

// CartItem is one line of the cart
type CartItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url,omitempty"`
	Quantity  int     `json:"quantity"`
}

// LineTotal is price times quantity
func (i CartItem) LineTotal() float64 {
	return RoundCents(i.Price * float64(i.Quantity))
}

// Cart is the authenticated user's cart
type Cart struct {
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"total_amount"`
}

// Subtotal sums price times quantity over every line, rounded to cents
func (c Cart) Subtotal() float64 {
	var sum float64
	for _, item := range c.Items {
		sum += item.Price * float64(item.Quantity)
	}
	return RoundCents(sum)
}

// Total is the backend's total when it sent one, else the subtotal
func (c Cart) Total() float64 {
	if c.TotalAmount > 0 {
		return c.TotalAmount
	}
	return c.Subtotal()
}

// Empty reports a cart with no lines
func (c Cart) Empty() bool {
	return len(c.Items) == 0
}

// ItemCount sums quantities
func (c Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// RoundCents rounds an amount to two decimal places
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// PaymentIntent is issued before the payment widget is shown
type PaymentIntent struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// OrderItem is a purchased line with its price frozen at checkout
type OrderItem struct {
	ProductID       int64   `json:"product_id"`
	Quantity        int     `json:"quantity"`
	PriceAtPurchase float64 `json:"price_at_purchase"`
	ProductName     string  `json:"product_name"`
}

// Order is a placed order as seen by its owner
type Order struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   Timestamp   `json:"created_at"`
	Items       []OrderItem `json:"items"`
}

// AdminOrder is a row of the admin order listing
type AdminOrder struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	Status      OrderStatus `json:"status"`
	CreatedAt   Timestamp   `json:"created_at"`
	UserEmail   string      `json:"user_email"`
	ItemsCount  int         `json:"items_count"`
}

// MerchantOrderItem is a merchant's own product within an order
type MerchantOrderItem struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// MerchantOrder groups a merchant's lines of one order
type MerchantOrder struct {
	ID            int64               `json:"id"`
	Status        OrderStatus         `json:"status"`
	CreatedAt     Timestamp           `json:"created_at"`
	CustomerEmail string              `json:"customer_email,omitempty"`
	Items         []MerchantOrderItem `json:"items"`
}

// Review is a customer's rating of a product
type Review struct {
	ID               int64      `json:"id"`
	UserID           int64      `json:"user_id"`
	ProductID        int64      `json:"product_id"`
	Rating           int        `json:"rating"`
	Title            string     `json:"title,omitempty"`
	Comment          string     `json:"comment,omitempty"`
	HelpfulCount     int        `json:"helpful_count"`
	VerifiedPurchase bool       `json:"verified_purchase"`
	CreatedAt        Timestamp  `json:"created_at"`
	UpdatedAt        *Timestamp `json:"updated_at,omitempty"`
	UserName         string     `json:"user_name,omitempty"`
}

// ReviewInput submits a review
type ReviewInput struct {
	ProductID int64  `json:"product_id"`
	Rating    int    `json:"rating"`
	Title     string `json:"title,omitempty"`
	Comment   string `json:"comment,omitempty"`
}

// ReviewStats aggregates a product's ratings. RatingDistribution is keyed
// by star count as a string ("1" through "5").
type ReviewStats struct {
	AverageRating      float64        `json:"average_rating"`
	TotalReviews       int            `json:"total_reviews"`
	RatingDistribution map[string]int `json:"rating_distribution"`
}

// AdminReview is a row of the moderation listing
type AdminReview struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	UserEmail   string    `json:"user_email"`
	Rating      int       `json:"rating"`
	Title       string    `json:"title,omitempty"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   Timestamp `json:"created_at"`
}

// WishlistItem associates a user with a saved product
type WishlistItem struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ProductID int64     `json:"product_id"`
	CreatedAt Timestamp `json:"created_at"`
	Product   *Product  `json:"product,omitempty"`
}

// AdminWishlistItem is a row of the admin wishlist listing
type AdminWishlistItem struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	UserEmail   string    `json:"user_email"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	CreatedAt   Timestamp `json:"created_at"`
}

// WishlistStats summarizes wishlists across all users
type WishlistStats struct {
	TotalWishlistItems    int `json:"total_wishlist_items"`
	TopWishlistedProducts []struct {
		ProductID int64  `json:"product_id"`
		Name      string `json:"name"`
		ImageURL  string `json:"image_url,omitempty"`
		Count     int    `json:"count"`
	} `json:"top_wishlisted_products"`
	UsersWithMostItems []struct {
		UserID    int64  `json:"user_id"`
		Email     string `json:"email"`
		ItemCount int    `json:"item_count"`
	} `json:"users_with_most_items"`
}

// MerchantDashboard holds a merchant's store statistics
type MerchantDashboard struct {
	StoreName        string  `json:"store_name"`
	TotalProducts    int     `json:"total_products"`
	ActiveProducts   int     `json:"active_products"`
	TotalOrders      int     `json:"total_orders"`
	TotalSales       float64 `json:"total_sales"`
	LowStockProducts int     `json:"low_stock_products"`
}

// AdminDashboard holds platform-wide statistics
type AdminDashboard struct {
	TotalUsers    int     `json:"total_users"`
	TotalProducts int     `json:"total_products"`
	TotalOrders   int     `json:"total_orders"`
	TotalReviews  int     `json:"total_reviews"`
	TotalRevenue  float64 `json:"total_revenue"`
	UserBreakdown struct {
		Customers int `json:"customers"`
		Merchants int `json:"merchants"`
		Admins    int `json:"admins"`
	} `json:"user_breakdown"`
}

// Message is the acknowledgement body most mutations return
type Message struct {
	Message string `json:"message"`
}
