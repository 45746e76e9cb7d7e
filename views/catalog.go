package views

import (
	"context"
	"strings"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/resource"
)

const (
	featuredLimit    = 8
	categoryTeaser   = 4
	newArrivalsLimit = 8
)

// HomeView is the landing page: featured products and a category teaser
type HomeView struct {
	host       *Host
	Products   resource.Resource[[]api.Product]
	Categories resource.Resource[[]api.Category]
}

func NewHomeView(h *Host) *HomeView {
	return &HomeView{host: h}
}

// Load fetches products and categories together. The landing page never
// shows an error; failures are only logged.
func (v *HomeView) Load(ctx context.Context) error {
	c := v.host.client()
	err := resource.LoadAll(ctx,
		resource.Bind(&v.Products, func(ctx context.Context) ([]api.Product, error) {
			return c.ListProducts(ctx, api.ProductQuery{})
		}),
		resource.Bind(&v.Categories, c.ListCategories),
	)
	if err != nil {
		core.LogWarn(ctx, v.host.logger(), "Home page load incomplete", map[string]interface{}{"error": err.Error()})
	}
	return err
}

// Featured returns up to eight featured products, or the first eight
// products when none is featured
func (v *HomeView) Featured() []api.Product {
	all := v.Products.Value()
	featured := filter(all, func(p api.Product) bool { return p.IsFeatured })
	if len(featured) == 0 {
		featured = all
	}
	if len(featured) > featuredLimit {
		featured = featured[:featuredLimit]
	}
	return featured
}

// TrendingCategories is the first few categories
func (v *HomeView) TrendingCategories() []api.Category {
	cats := v.Categories.Value()
	if len(cats) > categoryTeaser {
		cats = cats[:categoryTeaser]
	}
	return cats
}

// ProductsView is the catalog with its filter panel
type ProductsView struct {
	host       *Host
	Filter     ProductFilter
	Products   resource.Resource[[]api.Product]
	Categories resource.Resource[[]api.Category]
	debounce   *Debouncer
}

func NewProductsView(h *Host, f ProductFilter) *ProductsView {
	return &ProductsView{host: h, Filter: f, debounce: NewDebouncer(DefaultDebounce)}
}

// Load fetches the catalog and the categories concurrently. Filtering is
// done locally over the full listing.
func (v *ProductsView) Load(ctx context.Context) error {
	c := v.host.client()
	err := resource.LoadAll(ctx,
		resource.Bind(&v.Products, func(ctx context.Context) ([]api.Product, error) {
			return c.ListProducts(ctx, api.ProductQuery{})
		}),
		resource.Bind(&v.Categories, c.ListCategories),
	)
	if err != nil {
		v.host.surface(ctx, "ProductsView.Load", err)
	}
	return err
}

// Search sets the search term and refetches the listing for it once the
// input has been quiet for the debounce delay. Only the last term of a
// burst reaches the API; done, when set, receives that fetch's outcome.
//
// It serves hosts that keep one view alive across keystrokes. The web host
// builds a view per request, so it debounces in the browser with
// SearchDelayMillis instead and never calls Search.
func (v *ProductsView) Search(ctx context.Context, term string, done func(error)) {
	term = strings.TrimSpace(term)
	v.Filter.Search = term
	v.debounce.Trigger(func() {
		err := v.Products.Load(ctx, func(ctx context.Context) ([]api.Product, error) {
			return v.host.client().ListProducts(ctx, api.ProductQuery{Search: term})
		})
		if err != nil {
			v.host.surface(ctx, "ProductsView.Search", err)
		}
		if done != nil {
			done(err)
		}
	})
}

// Filtered is the product grid for the current filter
func (v *ProductsView) Filtered() []api.Product {
	return FilterProducts(v.Products.Value(), v.Filter)
}

func (v *ProductsView) Brands() []string {
	return Brands(v.Products.Value())
}

func (v *ProductsView) MaxPrice() float64 {
	return MaxPrice(v.Products.Value())
}

// SearchDelayMillis is the debounce applied to the search box
func (v *ProductsView) SearchDelayMillis() int64 {
	return v.debounce.Delay().Milliseconds()
}

// CategoryName resolves the selected category for the page heading
func (v *ProductsView) CategoryName() string {
	if v.Filter.CategoryID == 0 {
		return ""
	}
	for _, c := range v.Categories.Value() {
		if c.ID == v.Filter.CategoryID {
			return c.Name
		}
	}
	return ""
}

// NewArrivalsView lists the most recently added products
type NewArrivalsView struct {
	host     *Host
	Products resource.Resource[[]api.Product]
}

func NewNewArrivalsView(h *Host) *NewArrivalsView {
	return &NewArrivalsView{host: h}
}

func (v *NewArrivalsView) Load(ctx context.Context) error {
	c := v.host.client()
	err := v.Products.Load(ctx, func(ctx context.Context) ([]api.Product, error) {
		return c.ListProducts(ctx, api.ProductQuery{})
	})
	if err != nil {
		v.host.surface(ctx, "NewArrivalsView.Load", err)
	}
	return err
}

// Arrivals is the last eight products of the listing, newest first
func (v *NewArrivalsView) Arrivals() []api.Product {
	all := v.Products.Value()
	start := len(all) - newArrivalsLimit
	if start < 0 {
		start = 0
	}
	out := make([]api.Product, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		out = append(out, all[i])
	}
	return out
}

// CategoriesView lists every category
type CategoriesView struct {
	host       *Host
	Categories resource.Resource[[]api.Category]
}

func NewCategoriesView(h *Host) *CategoriesView {
	return &CategoriesView{host: h}
}

func (v *CategoriesView) Load(ctx context.Context) error {
	err := v.Categories.Load(ctx, v.host.client().ListCategories)
	if err != nil {
		core.LogWarn(ctx, v.host.logger(), "Failed to load categories", map[string]interface{}{"error": err.Error()})
	}
	return err
}
