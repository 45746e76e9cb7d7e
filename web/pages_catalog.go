package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/views"
)

func (s *Server) home(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewHomeView(r.host())
	r.loadFailed("home", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "home.html", "Home", v)
}

func (s *Server) products(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewProductsView(r.host(), views.ProductFilterFromQuery(c.Request.URL.Query()))
	r.loadFailed("products", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "products.html", "Shop", productsPage{ProductsView: v, Sorts: views.SortOrders})
}

type productsPage struct {
	*views.ProductsView
	Sorts []views.SortOrder
}

func (s *Server) product(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Product not found")
		return
	}
	v := views.NewProductView(r.host(), id)
	err := v.Load(c.Request.Context())
	r.loadFailed("product", err)

	status := http.StatusOK
	if api.IsNotFound(err) {
		status = http.StatusNotFound
	}
	title := "Product"
	if v.Found() {
		title = v.Product.Value().Name
	}
	r.render(status, "product.html", title, v)
}

func productPath(id int64) string {
	return fmt.Sprintf("/products/%d", id)
}

func (s *Server) productAddToCart(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Product not found")
		return
	}
	v := views.NewProductView(r.host(), id)
	_ = v.AddToCart(c.Request.Context(), formInt(c, "quantity"))
	r.finish(productPath(id))
}

func (s *Server) productToggleWishlist(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Product not found")
		return
	}
	v := views.NewProductView(r.host(), id)
	v.Saved.Set(formBool(c, "saved"))
	_ = v.ToggleWishlist(c.Request.Context())
	r.finish(productPath(id))
}

func (s *Server) productSubmitReview(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Product not found")
		return
	}
	v := views.NewProductView(r.host(), id)
	_ = v.SubmitReview(c.Request.Context(), api.ReviewInput{
		Rating:  formInt(c, "rating"),
		Title:   c.PostForm("title"),
		Comment: c.PostForm("comment"),
	})
	r.finish(productPath(id) + "#reviews")
}

func (s *Server) productMarkHelpful(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	reviewID, rok := paramID(c, "reviewID")
	if !ok || !rok {
		s.renderError(c, http.StatusNotFound, "Review not found")
		return
	}
	v := views.NewProductView(r.host(), id)
	_ = v.MarkHelpful(c.Request.Context(), reviewID)
	r.finish(productPath(id) + "#reviews")
}

func (s *Server) categories(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewCategoriesView(r.host())
	r.loadFailed("categories", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "categories.html", "Categories", v)
}

func (s *Server) newArrivals(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewNewArrivalsView(r.host())
	r.loadFailed("new_arrivals", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "new_arrivals.html", "New Arrivals", v)
}

func (s *Server) cart(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewCartView(r.host())
	r.loadFailed("cart", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "cart.html", "Cart", v)
}

func (s *Server) cartUpdate(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewCartView(r.host())
	_ = v.UpdateQuantity(c.Request.Context(), formInt64(c, "product_id"), formInt(c, "quantity"))
	r.finish(views.CartPath)
}

func (s *Server) cartRemove(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewCartView(r.host())
	_ = v.Remove(c.Request.Context(), formInt64(c, "product_id"))
	r.finish(views.CartPath)
}

func (s *Server) cartClear(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewCartView(r.host())
	_ = v.Clear(c.Request.Context())
	r.finish(views.CartPath)
}

func (s *Server) checkout(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewCheckoutView(r.host(), s.cfg.PublishableKey)
	r.loadFailed("checkout", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "checkout.html", "Checkout", v)
}

// checkoutComplete is where the payment widget lands after confirming,
// either by redirect (payment_intent and redirect_status in the query) or
// by form post (payment_intent_id)
func (s *Server) checkoutComplete(c *gin.Context) {
	r := requestFrom(c)
	id := strings.TrimSpace(c.PostForm("payment_intent_id"))
	if id == "" {
		id = strings.TrimSpace(c.Query("payment_intent"))
	}
	if status := c.Query("redirect_status"); status != "" && status != "succeeded" {
		r.Error("Payment was not completed")
		r.finish("/checkout")
		return
	}

	v := views.NewCheckoutView(r.host(), s.cfg.PublishableKey)
	claimed := id != "" && r.sess.IsAuthenticated()
	if claimed && !s.payments.claim(id) {
		r.Info("Your order is already being processed")
		r.finish(views.OrdersPath)
		return
	}
	if err := v.PaymentSucceeded(c.Request.Context(), id); err != nil && claimed {
		s.payments.release(id)
	}
	r.finish("/checkout")
}
