package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/views"
)

func (s *Server) orders(c *gin.Context) {
	r := requestFrom(c)
	status, _ := api.ParseOrderStatus(c.Query("status"))
	v := views.NewOrdersView(r.host(), views.OrderFilter{Status: status})
	r.loadFailed("orders", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "orders.html", "Orders", ordersPage{OrdersView: v, Statuses: api.OrderStatuses})
}

type ordersPage struct {
	*views.OrdersView
	Statuses []api.OrderStatus
}

func (s *Server) dashboard(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewDashboardView(r.host())
	r.loadFailed("dashboard", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "dashboard.html", "Dashboard", v)
}

func (s *Server) wishlist(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewWishlistView(r.host())
	r.loadFailed("wishlist", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "wishlist.html", "Wishlist", v)
}

func (s *Server) wishlistRemove(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Product not found")
		return
	}
	_ = views.NewWishlistView(r.host()).Remove(c.Request.Context(), id)
	r.finish("/dashboard/wishlist")
}

// wishlistAddToCart reloads the wishlist first so the stock check and the
// product name in the notification reflect the current listing
func (s *Server) wishlistAddToCart(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Product not found")
		return
	}
	ctx := c.Request.Context()
	v := views.NewWishlistView(r.host())
	if err := v.Load(ctx); err == nil {
		_ = v.AddToCart(ctx, id)
	}
	r.finish("/dashboard/wishlist")
}

func (s *Server) loginPage(c *gin.Context) {
	r := requestFrom(c)
	if r.sess.IsAuthenticated() {
		r.finish(views.HomeFor(r.sess.Role()))
		return
	}
	v := views.NewLoginView(r.host(), c.Query("registered") == "true")
	r.render(http.StatusOK, "login.html", "Login", v)
}

func (s *Server) login(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewLoginView(r.host(), false)
	if err := v.Submit(c.Request.Context(), c.PostForm("email"), c.PostForm("password")); err != nil {
		status := http.StatusUnauthorized
		var verr *views.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusUnprocessableEntity
		}
		r.render(status, "login.html", "Login", v)
		return
	}
	r.rotate()
	r.finish(views.HomePath)
}

func (s *Server) signupPage(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewSignupView(r.host())
	v.Form.Role = api.RoleCustomer
	r.render(http.StatusOK, "signup.html", "Sign up", v)
}

func (s *Server) signup(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewSignupView(r.host())
	form := views.SignupForm{
		FullName:        c.PostForm("full_name"),
		Email:           c.PostForm("email"),
		Password:        c.PostForm("password"),
		ConfirmPassword: c.PostForm("confirm_password"),
		Role:            api.Role(c.DefaultPostForm("role", string(api.RoleCustomer))),
		StoreName:       c.PostForm("store_name"),
	}
	if err := v.Submit(c.Request.Context(), form); err != nil {
		status := http.StatusBadRequest
		var verr *views.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusUnprocessableEntity
		}
		// never echo the password back into the form
		v.Form.Password, v.Form.ConfirmPassword = "", ""
		r.render(status, "signup.html", "Sign up", v)
		return
	}
	r.finish(views.LoginPath)
}

func (s *Server) logout(c *gin.Context) {
	r := requestFrom(c)
	views.NewNavShell(r.host()).Logout(c.Request.Context())
	r.finish(views.HomePath)
}
