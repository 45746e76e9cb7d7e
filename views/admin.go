package views

import (
	"context"
	"strings"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/resource"
)

// Admin tabs
const (
	TabUsers      = "users"
	TabProducts   = "products"
	TabOrders     = "orders"
	TabCategories = "categories"
	TabReviews    = "reviews"
	TabWishlists  = "wishlists"
)

// AdminTabs lists the tabs in display order
var AdminTabs = []string{TabUsers, TabProducts, TabOrders, TabCategories, TabReviews, TabWishlists}

// AdminView is the platform administration page
type AdminView struct {
	host *Host
	Tab  string

	UserFilter   UserFilter
	OrderFilter  OrderFilter
	ReviewFilter ReviewFilter

	Dashboard  resource.Resource[api.AdminDashboard]
	Users      resource.Resource[[]api.User]
	Orders     resource.Resource[[]api.AdminOrder]
	Products   resource.Resource[[]api.Product]
	Categories resource.Resource[[]api.Category]
	Reviews    resource.Resource[[]api.AdminReview]
	Wishlists  resource.Resource[[]api.AdminWishlistItem]
	// WishlistStats backs the summary above the wishlists table
	WishlistStats resource.Resource[api.WishlistStats]
}

func NewAdminView(h *Host, tab string) *AdminView {
	v := &AdminView{host: h, Tab: TabUsers}
	for _, t := range AdminTabs {
		if t == tab {
			v.Tab = tab
		}
	}
	return v
}

// Load fetches every table one after another. A 403 sends the user home;
// any other failure keeps them on the page.
func (v *AdminView) Load(ctx context.Context) error {
	if !v.host.requireLogin("Please login to continue") {
		return errNotSignedIn
	}
	c := v.host.client()
	err := resource.LoadSequence(ctx,
		resource.Bind(&v.Dashboard, func(ctx context.Context) (api.AdminDashboard, error) {
			d, err := c.AdminDashboard(ctx)
			if err != nil {
				return api.AdminDashboard{}, err
			}
			return *d, nil
		}),
		resource.Bind(&v.Users, c.AdminUsers),
		resource.Bind(&v.Orders, c.AdminOrders),
		resource.Bind(&v.Products, c.AdminProducts),
		resource.Bind(&v.Categories, c.AdminCategories),
		resource.Bind(&v.Reviews, c.AdminReviews),
		resource.Bind(&v.Wishlists, c.AdminWishlistItems),
		resource.Bind(&v.WishlistStats, func(ctx context.Context) (api.WishlistStats, error) {
			st, err := c.WishlistStats(ctx)
			if err != nil {
				return api.WishlistStats{}, err
			}
			return *st, nil
		}),
	)
	if err == nil {
		return nil
	}

	v.host.surface(ctx, "AdminView.Load", err)
	if api.IsForbidden(err) {
		core.LogWarn(ctx, v.host.logger(), "Admin page denied", map[string]interface{}{"status": api.StatusOf(err)})
		v.host.Notifier.Error("Access Denied: Admin only")
		v.host.Navigator.Redirect(HomePath)
		return err
	}
	v.host.Notifier.Error("Failed to load admin data")
	return err
}

func (v *AdminView) FilteredUsers() []api.User {
	return FilterUsers(v.Users.Value(), v.UserFilter)
}

func (v *AdminView) FilteredOrders() []api.AdminOrder {
	return FilterAdminOrders(v.Orders.Value(), v.OrderFilter)
}

func (v *AdminView) FilteredReviews() []api.AdminReview {
	return FilterReviews(v.Reviews.Value(), v.ReviewFilter)
}

// UpdateUserRole changes one user's role. Only that row changes, and only
// after the API accepts it.
func (v *AdminView) UpdateUserRole(ctx context.Context, userID int64, role api.Role) error {
	err := v.Users.Mutate(ctx,
		func(ctx context.Context) error {
			return v.host.client().UpdateUserRole(ctx, userID, role)
		},
		func(users []api.User) []api.User {
			return resource.Patch(users,
				func(u api.User) bool { return u.ID == userID },
				func(u api.User) api.User { u.Role = role; return u },
			)
		},
	)
	if err != nil {
		v.host.surface(ctx, "UpdateUserRole", err)
		v.host.Notifier.Error("Failed to update user role")
		return err
	}
	v.host.Notifier.Success("User role updated to " + string(role))
	return nil
}

// DeleteUser removes an account after confirmation
func (v *AdminView) DeleteUser(ctx context.Context, userID int64) error {
	if !v.host.confirm("Are you sure you want to delete this user?") {
		return nil
	}
	err := v.Users.Mutate(ctx,
		func(ctx context.Context) error {
			return v.host.client().DeleteUser(ctx, userID)
		},
		func(users []api.User) []api.User {
			return resource.Remove(users, func(u api.User) bool { return u.ID == userID })
		},
	)
	if err != nil {
		v.host.surface(ctx, "DeleteUser", err)
		v.host.Notifier.Error("Failed to delete user")
		return err
	}
	v.host.Notifier.Success("User deleted")
	return nil
}

// UpdateOrderStatus moves one order to status
func (v *AdminView) UpdateOrderStatus(ctx context.Context, orderID int64, status api.OrderStatus) error {
	err := v.Orders.Mutate(ctx,
		func(ctx context.Context) error {
			return v.host.client().UpdateOrderStatus(ctx, orderID, status)
		},
		func(orders []api.AdminOrder) []api.AdminOrder {
			return resource.Patch(orders,
				func(o api.AdminOrder) bool { return o.ID == orderID },
				func(o api.AdminOrder) api.AdminOrder { o.Status = status; return o },
			)
		},
	)
	if err != nil {
		v.host.surface(ctx, "UpdateOrderStatus", err)
		v.host.Notifier.Error("Failed to update order status")
		return err
	}
	v.host.Notifier.Success("Order status updated")
	return nil
}

// ToggleFeatured flips a product's featured flag
func (v *AdminView) ToggleFeatured(ctx context.Context, productID int64) error {
	featured := true
	for _, p := range v.Products.Value() {
		if p.ID == productID {
			featured = !p.IsFeatured
		}
	}

	err := v.Products.Mutate(ctx,
		func(ctx context.Context) error {
			return v.host.client().ToggleFeatured(ctx, productID, featured)
		},
		func(products []api.Product) []api.Product {
			return resource.Patch(products,
				func(p api.Product) bool { return p.ID == productID },
				func(p api.Product) api.Product { p.IsFeatured = featured; return p },
			)
		},
	)
	if err != nil {
		v.host.surface(ctx, "ToggleFeatured", err)
		v.host.Notifier.Error("Failed to update product")
		return err
	}
	if featured {
		v.host.Notifier.Success("Product featured")
	} else {
		v.host.Notifier.Success("Product unfeatured")
	}
	return nil
}

// CreateCategory adds a category and appends it to the table
func (v *AdminView) CreateCategory(ctx context.Context, in api.CategoryInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		err := invalid("name", "Category name is required")
		v.host.Notifier.Error(err.Message)
		return err
	}

	var id int64
	err := v.Categories.Mutate(ctx,
		func(ctx context.Context) error {
			created, err := v.host.client().CreateCategory(ctx, in)
			id = created
			return err
		},
		func(cats []api.Category) []api.Category {
			return resource.Append(cats, api.Category{
				ID:          id,
				Name:        in.Name,
				Description: in.Description,
				ImageURL:    in.ImageURL,
			})
		},
	)
	if err != nil {
		v.host.surface(ctx, "CreateCategory", err)
		v.host.Notifier.Error("Failed to create category")
		return err
	}
	v.host.Notifier.Success("Category created")
	return nil
}

// DeleteReview removes a review after confirmation
func (v *AdminView) DeleteReview(ctx context.Context, reviewID int64) error {
	if !v.host.confirm("Are you sure you want to delete this review?") {
		return nil
	}
	err := v.Reviews.Mutate(ctx,
		func(ctx context.Context) error {
			return v.host.client().DeleteReview(ctx, reviewID)
		},
		func(reviews []api.AdminReview) []api.AdminReview {
			return resource.Remove(reviews, func(r api.AdminReview) bool { return r.ID == reviewID })
		},
	)
	if err != nil {
		v.host.surface(ctx, "DeleteReview", err)
		v.host.Notifier.Error("Failed to delete review")
		return err
	}
	v.host.Notifier.Success("Review deleted")
	return nil
}
