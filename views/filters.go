package views

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/itsneelabh/storefront/api"
)

// Filters here are pure: they never modify their input and keep the input
// order unless a sort is asked for.

// SortOrder names a product ordering
type SortOrder string

const (
	SortDefault   SortOrder = ""
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortRating    SortOrder = "rating"
	SortName      SortOrder = "name"
)

// SortOrders lists the choices offered in the sort select
var SortOrders = []SortOrder{SortDefault, SortNewest, SortPriceAsc, SortPriceDesc, SortRating, SortName}

func (s SortOrder) Label() string {
	switch s {
	case SortNewest:
		return "Newest"
	case SortPriceAsc:
		return "Price: Low to High"
	case SortPriceDesc:
		return "Price: High to Low"
	case SortRating:
		return "Top Rated"
	case SortName:
		return "Name"
	default:
		return "Featured"
	}
}

// ProductFilter is the catalog's local filter state. Zero fields are
// inactive.
type ProductFilter struct {
	Search     string
	CategoryID int64
	Brand      string
	MinPrice   float64
	MaxPrice   float64
	MinRating  float64
	InStock    bool
	Sort       SortOrder
}

// ProductFilterFromQuery reads the filter from catalog query parameters.
// Malformed numbers are ignored.
func ProductFilterFromQuery(q url.Values) ProductFilter {
	f := ProductFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Brand:  q.Get("brand"),
		Sort:   SortOrder(q.Get("sort")),
	}
	if v, err := strconv.ParseInt(q.Get("category_id"), 10, 64); err == nil && v > 0 {
		f.CategoryID = v
	}
	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil && v > 0 {
		f.MinPrice = v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil && v > 0 {
		f.MaxPrice = v
	}
	if v, err := strconv.ParseFloat(q.Get("min_rating"), 64); err == nil && v > 0 {
		f.MinRating = v
	}
	f.InStock = q.Get("in_stock") == "true"
	return f
}

// ActiveCount is the number of filters in effect, sort excluded
func (f ProductFilter) ActiveCount() int {
	n := 0
	for _, on := range []bool{
		f.Search != "", f.CategoryID != 0, f.Brand != "",
		f.MinPrice > 0, f.MaxPrice > 0, f.MinRating > 0, f.InStock,
	} {
		if on {
			n++
		}
	}
	return n
}

// Match reports whether p passes every active filter
func (f ProductFilter) Match(p api.Product) bool {
	if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Brand, f.Search) {
		return false
	}
	if f.CategoryID != 0 && (p.CategoryID == nil || *p.CategoryID != f.CategoryID) {
		return false
	}
	if f.Brand != "" && p.Brand != f.Brand {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if f.MinRating > 0 && p.AverageRating < f.MinRating {
		return false
	}
	if f.InStock && !p.InStock() {
		return false
	}
	return true
}

// FilterProducts returns the matching products in a new slice, sorted by
// f.Sort. Ties keep their input order.
func FilterProducts(products []api.Product, f ProductFilter) []api.Product {
	out := filter(products, f.Match)
	switch f.Sort {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt.Time) })
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].AverageRating > out[j].AverageRating })
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}

// Brands lists the distinct non-empty brands, sorted
func Brands(products []api.Product) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range products {
		if p.Brand == "" {
			continue
		}
		if _, ok := seen[p.Brand]; ok {
			continue
		}
		seen[p.Brand] = struct{}{}
		out = append(out, p.Brand)
	}
	sort.Strings(out)
	return out
}

// DefaultMaxPrice bounds the price slider when there is nothing to measure
const DefaultMaxPrice = 1000

// MaxPrice is the highest price rounded up to the slider's step of 10
func MaxPrice(products []api.Product) float64 {
	var max float64
	for _, p := range products {
		if p.Price > max {
			max = p.Price
		}
	}
	if max == 0 {
		return DefaultMaxPrice
	}
	return math.Ceil(max/10) * 10
}

// UserFilter narrows the admin user table
type UserFilter struct {
	Search string
	Role   api.Role
}

// FilterUsers matches Search against email and full name, and Role exactly
func FilterUsers(users []api.User, f UserFilter) []api.User {
	return filter(users, func(u api.User) bool {
		if f.Search != "" && !containsFold(u.Email, f.Search) && !containsFold(u.FullName, f.Search) {
			return false
		}
		return f.Role == "" || u.Role == f.Role
	})
}

// OrderFilter narrows an order table by status
type OrderFilter struct {
	Status api.OrderStatus
	Search string
}

// FilterOrders filters a customer's own orders
func FilterOrders(orders []api.Order, f OrderFilter) []api.Order {
	return filter(orders, func(o api.Order) bool {
		return f.Status == "" || o.Status == f.Status
	})
}

// FilterAdminOrders also matches Search against the customer email
func FilterAdminOrders(orders []api.AdminOrder, f OrderFilter) []api.AdminOrder {
	return filter(orders, func(o api.AdminOrder) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		return f.Search == "" || containsFold(o.UserEmail, f.Search)
	})
}

// ReviewFilter narrows the moderation table
type ReviewFilter struct {
	MinRating int
	MaxRating int
	Search    string
}

// FilterReviews matches Search against product name, email, title and
// comment
func FilterReviews(reviews []api.AdminReview, f ReviewFilter) []api.AdminReview {
	return filter(reviews, func(r api.AdminReview) bool {
		if f.MinRating > 0 && r.Rating < f.MinRating {
			return false
		}
		if f.MaxRating > 0 && r.Rating > f.MaxRating {
			return false
		}
		if f.Search == "" {
			return true
		}
		for _, field := range []string{r.ProductName, r.UserEmail, r.Title, r.Comment} {
			if containsFold(field, f.Search) {
				return true
			}
		}
		return false
	})
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
