package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/resource"
)

// ProductView is a product detail page with its reviews
type ProductView struct {
	host     *Host
	ID       int64
	Quantity int

	Product resource.Resource[api.Product]
	Reviews resource.Resource[[]api.Review]
	Stats   resource.Resource[api.ReviewStats]
	Saved   resource.Resource[bool]
}

func NewProductView(h *Host, id int64) *ProductView {
	return &ProductView{host: h, ID: id, Quantity: 1}
}

// Load fetches the product, its reviews and rating summary, and whether the
// signed-in user saved it, all at once. Only a failure to load the product
// itself is reported to the user.
func (v *ProductView) Load(ctx context.Context) error {
	c := v.host.client()
	loaders := []resource.Loader{
		resource.Bind(&v.Product, func(ctx context.Context) (api.Product, error) {
			p, err := c.GetProduct(ctx, v.ID)
			if err != nil {
				return api.Product{}, err
			}
			return *p, nil
		}),
		resource.Bind(&v.Reviews, func(ctx context.Context) ([]api.Review, error) {
			return c.ListReviews(ctx, v.ID)
		}),
		resource.Bind(&v.Stats, func(ctx context.Context) (api.ReviewStats, error) {
			s, err := c.GetReviewStats(ctx, v.ID)
			if err != nil {
				return api.ReviewStats{}, err
			}
			return *s, nil
		}),
	}
	if v.host.Session.IsAuthenticated() {
		loaders = append(loaders, resource.Bind(&v.Saved, func(ctx context.Context) (bool, error) {
			return c.CheckWishlist(ctx, v.ID)
		}))
	}

	err := resource.LoadAll(ctx, loaders...)
	if perr := v.Product.Err(); perr != nil {
		v.host.surface(ctx, "GetProduct", perr)
		v.host.Notifier.Error("Failed to load product details")
		return perr
	}
	if err != nil {
		core.LogWarn(ctx, v.host.logger(), "Product extras failed to load", map[string]interface{}{
			"product_id": v.ID,
			"error":      err.Error(),
		})
	}
	return nil
}

// Found reports whether there is a product to render
func (v *ProductView) Found() bool {
	return v.Product.Ready()
}

// AddToCart puts qty of the product in the cart. Anonymous users are sent
// to the login page.
func (v *ProductView) AddToCart(ctx context.Context, qty int) error {
	if !v.host.Session.IsAuthenticated() {
		v.host.Notifier.Error("Please login to add items to cart")
		v.host.Navigator.Redirect(LoginPath)
		return errNotSignedIn
	}
	if qty < 1 {
		qty = 1
	}
	p := v.Product.Value()
	if v.Product.Ready() && p.Stock > 0 && qty > p.Stock {
		err := invalid("quantity", fmt.Sprintf("Only %d left in stock", p.Stock))
		v.host.Notifier.Error(err.Message)
		return err
	}

	if err := v.host.client().AddToCart(ctx, v.ID, qty); err != nil {
		v.host.surface(ctx, "AddToCart", err)
		return err
	}
	v.Quantity = qty
	v.host.Notifier.Success("Added to cart")
	return nil
}

// ToggleWishlist saves or unsaves the product
func (v *ProductView) ToggleWishlist(ctx context.Context) error {
	if !v.host.requireLogin("Please login to use your wishlist") {
		return errNotSignedIn
	}
	c := v.host.client()
	saved := v.Saved.Value()

	err := v.Saved.Mutate(ctx,
		func(ctx context.Context) error {
			if saved {
				return c.RemoveFromWishlist(ctx, v.ID)
			}
			return c.AddToWishlist(ctx, v.ID)
		},
		func(bool) bool { return !saved },
	)
	if err != nil {
		v.host.surface(ctx, "ToggleWishlist", err)
		v.host.Notifier.Error("Failed to update wishlist")
		return err
	}
	if saved {
		v.host.Notifier.Success("Removed from wishlist")
	} else {
		v.host.Notifier.Success("Added to wishlist")
	}
	return nil
}

// SubmitReview posts a review and, once accepted, shows it first in the
// list and refreshes the rating summary
func (v *ProductView) SubmitReview(ctx context.Context, in api.ReviewInput) error {
	if in.Rating == 0 {
		v.host.Notifier.Error("Please select a rating")
		return invalid("rating", "Please select a rating")
	}
	if in.Rating < 1 || in.Rating > 5 {
		v.host.Notifier.Error("Rating must be between 1 and 5")
		return invalid("rating", "Rating must be between 1 and 5")
	}
	if !v.host.Session.IsAuthenticated() {
		v.host.Notifier.Error("Please log in to submit a review")
		return errNotSignedIn
	}
	in.ProductID = v.ID
	in.Title = strings.TrimSpace(in.Title)
	in.Comment = strings.TrimSpace(in.Comment)

	c := v.host.client()
	var created *api.Review
	err := v.Reviews.Mutate(ctx,
		func(ctx context.Context) error {
			r, err := c.CreateReview(ctx, in)
			created = r
			return err
		},
		func(reviews []api.Review) []api.Review {
			r := *created
			if u := v.host.Session.CurrentUser(); u != nil && r.UserName == "" {
				r.UserName = u.DisplayName()
			}
			return resource.Append([]api.Review{r}, reviews...)
		},
	)
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Failed to submit review"
		}
		v.host.Notifier.Error(msg)
		return err
	}
	v.host.Notifier.Success("Review submitted successfully!")

	if err := v.Stats.Load(ctx, func(ctx context.Context) (api.ReviewStats, error) {
		s, err := c.GetReviewStats(ctx, v.ID)
		if err != nil {
			return api.ReviewStats{}, err
		}
		return *s, nil
	}); err != nil {
		core.LogWarn(ctx, v.host.logger(), "Failed to refresh review stats", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

// MarkHelpful records a helpful vote and takes the server's new count
func (v *ProductView) MarkHelpful(ctx context.Context, reviewID int64) error {
	c := v.host.client()
	var count int
	err := v.Reviews.Mutate(ctx,
		func(ctx context.Context) error {
			n, err := c.MarkReviewHelpful(ctx, reviewID)
			count = n
			return err
		},
		func(reviews []api.Review) []api.Review {
			return resource.Patch(reviews,
				func(r api.Review) bool { return r.ID == reviewID },
				func(r api.Review) api.Review { r.HelpfulCount = count; return r },
			)
		},
	)
	if err != nil {
		v.host.surface(ctx, "MarkReviewHelpful", err)
		return err
	}
	return nil
}

// RatingBars is the distribution as percentages for stars 5 down to 1
func (v *ProductView) RatingBars() []RatingBar {
	stats := v.Stats.Value()
	bars := make([]RatingBar, 0, 5)
	for stars := 5; stars >= 1; stars-- {
		n := stats.RatingDistribution[fmt.Sprint(stars)]
		pct := 0
		if stats.TotalReviews > 0 {
			pct = n * 100 / stats.TotalReviews
		}
		bars = append(bars, RatingBar{Stars: stars, Count: n, Percent: pct})
	}
	return bars
}

// RatingBar is one row of the rating distribution
type RatingBar struct {
	Stars   int
	Count   int
	Percent int
}
