package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/views"
)

func (s *Server) merchant(c *gin.Context) {
	r := requestFrom(c)
	v := views.NewMerchantView(r.host())
	r.loadFailed("merchant", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "merchant.html", v.StoreName(), v)
}

func (s *Server) merchantCreateProduct(c *gin.Context) {
	r := requestFrom(c)
	_ = views.NewMerchantView(r.host()).CreateProduct(c.Request.Context(), productInput(c))
	r.finish(views.MerchantPath)
}

func (s *Server) merchantUpdateProduct(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Product not found")
		return
	}
	_ = views.NewMerchantView(r.host()).UpdateProduct(c.Request.Context(), id, productUpdate(c))
	r.finish(views.MerchantPath)
}

func (s *Server) merchantDeleteProduct(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Product not found")
		return
	}
	_ = views.NewMerchantView(r.host()).DeleteProduct(c.Request.Context(), id)
	r.finish(views.MerchantPath)
}

type adminPage struct {
	*views.AdminView
	Tabs     []string
	Roles    []api.Role
	Statuses []api.OrderStatus
}

func (s *Server) admin(c *gin.Context) {
	r := requestFrom(c)
	q := c.Request.URL.Query()
	v := views.NewAdminView(r.host(), q.Get("tab"))
	v.UserFilter = views.UserFilter{Search: strings.TrimSpace(q.Get("search")), Role: api.Role(q.Get("role"))}
	v.OrderFilter.Search = strings.TrimSpace(q.Get("search"))
	if status, err := api.ParseOrderStatus(q.Get("status")); err == nil {
		v.OrderFilter.Status = status
	}
	v.ReviewFilter.Search = strings.TrimSpace(q.Get("search"))

	r.loadFailed("admin", v.Load(c.Request.Context()))
	r.render(http.StatusOK, "admin.html", "Admin", adminPage{
		AdminView: v,
		Tabs:      views.AdminTabs,
		Roles:     api.Roles,
		Statuses:  api.OrderStatuses,
	})
}

// adminReturn goes back to the tab the form was posted from
func adminReturn(c *gin.Context, fallbackTab string) string {
	tab := c.PostForm("tab")
	if tab == "" {
		tab = fallbackTab
	}
	return views.AdminPath + "?tab=" + url.QueryEscape(tab)
}

func (s *Server) adminUpdateRole(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "User not found")
		return
	}
	_ = views.NewAdminView(r.host(), views.TabUsers).UpdateUserRole(c.Request.Context(), id, api.Role(c.PostForm("role")))
	r.finish(adminReturn(c, views.TabUsers))
}

func (s *Server) adminDeleteUser(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "User not found")
		return
	}
	_ = views.NewAdminView(r.host(), views.TabUsers).DeleteUser(c.Request.Context(), id)
	r.finish(adminReturn(c, views.TabUsers))
}

func (s *Server) adminUpdateOrderStatus(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Order not found")
		return
	}
	status, err := api.ParseOrderStatus(c.PostForm("status"))
	if err != nil {
		r.Error("Invalid order status")
		r.finish(adminReturn(c, views.TabOrders))
		return
	}
	_ = views.NewAdminView(r.host(), views.TabOrders).UpdateOrderStatus(c.Request.Context(), id, status)
	r.finish(adminReturn(c, views.TabOrders))
}

// adminToggleFeatured takes the product's current flag from the form
func (s *Server) adminToggleFeatured(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Product not found")
		return
	}
	v := views.NewAdminView(r.host(), views.TabProducts)
	v.Products.Set([]api.Product{{ID: id, IsFeatured: formBool(c, "featured")}})
	_ = v.ToggleFeatured(c.Request.Context(), id)
	r.finish(adminReturn(c, views.TabProducts))
}

func (s *Server) adminCreateCategory(c *gin.Context) {
	r := requestFrom(c)
	_ = views.NewAdminView(r.host(), views.TabCategories).CreateCategory(c.Request.Context(), api.CategoryInput{
		Name:        c.PostForm("name"),
		Description: strings.TrimSpace(c.PostForm("description")),
		ImageURL:    strings.TrimSpace(c.PostForm("image_url")),
	})
	r.finish(adminReturn(c, views.TabCategories))
}

func (s *Server) adminDeleteReview(c *gin.Context) {
	r := requestFrom(c)
	id, ok := paramID(c, "id")
	if !ok {
		s.renderError(c, http.StatusNotFound, "Review not found")
		return
	}
	_ = views.NewAdminView(r.host(), views.TabReviews).DeleteReview(c.Request.Context(), id)
	r.finish(adminReturn(c, views.TabReviews))
}
