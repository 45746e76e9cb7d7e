package views

import (
	"context"
	"sort"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/resource"
)

// OrdersView is the order history
type OrdersView struct {
	host   *Host
	Filter OrderFilter
	Orders resource.Resource[[]api.Order]
}

func NewOrdersView(h *Host, f OrderFilter) *OrdersView {
	return &OrdersView{host: h, Filter: f}
}

// Load fetches the orders and puts the newest first
func (v *OrdersView) Load(ctx context.Context) error {
	if !v.host.requireLogin("Please login to view your orders") {
		return errNotSignedIn
	}
	err := v.Orders.Load(ctx, func(ctx context.Context) ([]api.Order, error) {
		orders, err := v.host.client().ListOrders(ctx)
		if err != nil {
			return nil, err
		}
		return newestFirst(orders), nil
	})
	if err != nil {
		v.host.surface(ctx, "ListOrders", err)
	}
	return err
}

// Filtered applies the status filter
func (v *OrdersView) Filtered() []api.Order {
	return FilterOrders(v.Orders.Value(), v.Filter)
}

// newestFirst copies and sorts by creation time, then ID, descending
func newestFirst(orders []api.Order) []api.Order {
	out := append([]api.Order(nil), orders...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.After(out[j].CreatedAt.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// DashboardView is the customer's account overview
type DashboardView struct {
	host     *Host
	Orders   resource.Resource[[]api.Order]
	Wishlist resource.Resource[[]api.WishlistItem]
}

func NewDashboardView(h *Host) *DashboardView {
	return &DashboardView{host: h}
}

// Load fetches orders and wishlist together. Each side falls back to an
// empty list on its own failure.
func (v *DashboardView) Load(ctx context.Context) error {
	if !v.host.requireLogin("Please login to view your dashboard") {
		return errNotSignedIn
	}
	c := v.host.client()
	return resource.LoadAll(ctx,
		resource.Bind(&v.Orders, func(ctx context.Context) ([]api.Order, error) {
			orders, err := c.ListOrders(ctx)
			if err != nil {
				v.host.surface(ctx, "ListOrders", err)
				return []api.Order{}, nil
			}
			return newestFirst(orders), nil
		}),
		resource.Bind(&v.Wishlist, func(ctx context.Context) ([]api.WishlistItem, error) {
			items, err := c.GetWishlist(ctx)
			if err != nil {
				v.host.surface(ctx, "GetWishlist", err)
				return []api.WishlistItem{}, nil
			}
			return items, nil
		}),
	)
}

// RecentOrders is the latest three orders
func (v *DashboardView) RecentOrders() []api.Order {
	orders := v.Orders.Value()
	if len(orders) > 3 {
		orders = orders[:3]
	}
	return orders
}

// OpenOrders counts orders not yet shipped
func (v *DashboardView) OpenOrders() int {
	n := 0
	for _, o := range v.Orders.Value() {
		if o.Status == api.OrderPending || o.Status == api.OrderPaid {
			n++
		}
	}
	return n
}

func (v *DashboardView) WishlistCount() int {
	return len(v.Wishlist.Value())
}

// Greeting is the user's first name, or "there"
func (v *DashboardView) Greeting() string {
	if u := v.host.Session.CurrentUser(); u != nil {
		if first := firstWord(u.FullName); first != "" {
			return first
		}
	}
	return "there"
}

func firstWord(s string) string {
	for i, r := range s {
		if r == ' ' {
			return s[:i]
		}
	}
	return s
}

// WishlistView is the saved products page
type WishlistView struct {
	host  *Host
	Items resource.Resource[[]api.WishlistItem]
}

func NewWishlistView(h *Host) *WishlistView {
	return &WishlistView{host: h}
}

func (v *WishlistView) Load(ctx context.Context) error {
	if !v.host.requireLogin("Please login to view your wishlist") {
		return errNotSignedIn
	}
	err := v.Items.Load(ctx, v.host.client().GetWishlist)
	if err != nil {
		v.host.surface(ctx, "GetWishlist", err)
	}
	return err
}

// Remove unsaves a product
func (v *WishlistView) Remove(ctx context.Context, productID int64) error {
	err := v.Items.Mutate(ctx,
		func(ctx context.Context) error {
			return v.host.client().RemoveFromWishlist(ctx, productID)
		},
		func(items []api.WishlistItem) []api.WishlistItem {
			return resource.Remove(items, func(i api.WishlistItem) bool { return i.ProductID == productID })
		},
	)
	if err != nil {
		v.host.surface(ctx, "RemoveFromWishlist", err)
		v.host.Notifier.Error("Failed to remove item")
		return err
	}
	v.host.Notifier.Success("Removed from wishlist")
	return nil
}

// AddToCart puts one of a saved product in the cart. The item stays saved.
func (v *WishlistView) AddToCart(ctx context.Context, productID int64) error {
	name := "Item"
	for _, item := range v.Items.Value() {
		if item.ProductID != productID || item.Product == nil {
			continue
		}
		if !item.Product.InStock() {
			v.host.Notifier.Error("Out of Stock")
			return invalid("product", "Out of Stock")
		}
		name = item.Product.Name
	}

	if err := v.host.client().AddToCart(ctx, productID, 1); err != nil {
		v.host.surface(ctx, "AddToCart", err)
		v.host.Notifier.Error("Failed to add to cart")
		return err
	}
	core.LogInfo(ctx, v.host.logger(), "Wishlist item added to cart", map[string]interface{}{"product_id": productID})
	v.host.Notifier.Success(name + " added to cart")
	return nil
}
