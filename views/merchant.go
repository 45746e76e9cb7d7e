package views

import (
	"context"
	"strings"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/resource"
)

const merchantPreview = 5

// MerchantView is a seller's dashboard over their own products and orders
type MerchantView struct {
	host     *Host
	Stats    resource.Resource[api.MerchantDashboard]
	Products resource.Resource[[]api.Product]
	Orders   resource.Resource[[]api.MerchantOrder]
}

func NewMerchantView(h *Host) *MerchantView {
	return &MerchantView{host: h}
}

// Load fetches stats, products and orders concurrently
func (v *MerchantView) Load(ctx context.Context) error {
	if !v.host.requireLogin("Please login to manage your store") {
		return errNotSignedIn
	}
	c := v.host.client()
	err := resource.LoadAll(ctx,
		resource.Bind(&v.Stats, func(ctx context.Context) (api.MerchantDashboard, error) {
			d, err := c.MerchantDashboard(ctx)
			if err != nil {
				return api.MerchantDashboard{}, err
			}
			return *d, nil
		}),
		resource.Bind(&v.Products, c.MerchantProducts),
		resource.Bind(&v.Orders, c.MerchantOrders),
	)
	if err != nil {
		v.host.surface(ctx, "MerchantView.Load", err)
	}
	return err
}

// StoreName falls back to a generic heading
func (v *MerchantView) StoreName() string {
	if name := v.Stats.Value().StoreName; name != "" {
		return name
	}
	return "Seller Dashboard"
}

// TopProducts is the first five products
func (v *MerchantView) TopProducts() []api.Product {
	p := v.Products.Value()
	if len(p) > merchantPreview {
		p = p[:merchantPreview]
	}
	return p
}

// RecentOrders is the first five orders
func (v *MerchantView) RecentOrders() []api.MerchantOrder {
	o := v.Orders.Value()
	if len(o) > merchantPreview {
		o = o[:merchantPreview]
	}
	return o
}

// ValidateProduct checks a product form before it is sent
func ValidateProduct(in api.ProductInput) *ValidationError {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "Product name is required")
	}
	if in.Price <= 0 {
		return invalid("price", "Price must be greater than zero")
	}
	if in.Stock < 0 {
		return invalid("stock", "Stock cannot be negative")
	}
	if in.CompareAtPrice != nil && *in.CompareAtPrice < in.Price {
		return invalid("compare_at_price", "Compare-at price must not be below the price")
	}
	return nil
}

// CreateProduct lists a new product and shows it first
func (v *MerchantView) CreateProduct(ctx context.Context, in api.ProductInput) error {
	if verr := ValidateProduct(in); verr != nil {
		v.host.Notifier.Error(verr.Message)
		return verr
	}
	in.Name = strings.TrimSpace(in.Name)

	var created *api.Product
	err := v.Products.Mutate(ctx,
		func(ctx context.Context) error {
			p, err := v.host.client().CreateMerchantProduct(ctx, in)
			created = p
			return err
		},
		func(products []api.Product) []api.Product {
			return resource.Append([]api.Product{*created}, products...)
		},
	)
	if err != nil {
		v.host.surface(ctx, "CreateMerchantProduct", err)
		v.host.Notifier.Error("Failed to create product")
		return err
	}
	v.host.Notifier.Success("Product created")
	return nil
}

// UpdateProduct changes the given fields of one of the merchant's products
func (v *MerchantView) UpdateProduct(ctx context.Context, id int64, upd api.ProductUpdate) error {
	if upd.Price != nil && *upd.Price <= 0 {
		err := invalid("price", "Price must be greater than zero")
		v.host.Notifier.Error(err.Message)
		return err
	}
	if upd.Stock != nil && *upd.Stock < 0 {
		err := invalid("stock", "Stock cannot be negative")
		v.host.Notifier.Error(err.Message)
		return err
	}

	err := v.Products.Mutate(ctx,
		func(ctx context.Context) error {
			_, err := v.host.client().UpdateMerchantProduct(ctx, id, upd)
			return err
		},
		func(products []api.Product) []api.Product {
			return resource.Patch(products,
				func(p api.Product) bool { return p.ID == id },
				upd.Apply,
			)
		},
	)
	if err != nil {
		v.host.surface(ctx, "UpdateMerchantProduct", err)
		v.host.Notifier.Error("Failed to update product")
		return err
	}
	v.host.Notifier.Success("Product updated")
	return nil
}

// DeleteProduct removes a product after confirmation
func (v *MerchantView) DeleteProduct(ctx context.Context, id int64) error {
	if !v.host.confirm("Are you sure you want to delete this product?") {
		return nil
	}
	err := v.Products.Mutate(ctx,
		func(ctx context.Context) error {
			return v.host.client().DeleteMerchantProduct(ctx, id)
		},
		func(products []api.Product) []api.Product {
			return resource.Remove(products, func(p api.Product) bool { return p.ID == id })
		},
	)
	if err != nil {
		v.host.surface(ctx, "DeleteMerchantProduct", err)
		v.host.Notifier.Error("Failed to delete product")
		return err
	}
	v.host.Notifier.Success("Product deleted")
	return nil
}
