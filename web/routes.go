package web

import "github.com/gin-gonic/gin"

func (s *Server) routes(r *gin.RouterGroup) {
	r.GET("/", s.home)
	r.GET("/products", s.products)
	r.GET("/products/:id", s.product)
	r.POST("/products/:id/cart", s.productAddToCart)
	r.POST("/products/:id/wishlist", s.productToggleWishlist)
	r.POST("/products/:id/reviews", s.productSubmitReview)
	r.POST("/products/:id/reviews/:reviewID/helpful", s.productMarkHelpful)
	r.GET("/categories", s.categories)
	r.GET("/new-arrivals", s.newArrivals)

	r.GET("/cart", s.cart)
	r.POST("/cart/update", s.cartUpdate)
	r.POST("/cart/remove", s.cartRemove)
	r.POST("/cart/clear", s.cartClear)

	r.GET("/checkout", s.checkout)
	r.GET("/checkout/complete", s.checkoutComplete)
	r.POST("/checkout/complete", s.checkoutComplete)

	r.GET("/orders", s.orders)
	r.GET("/dashboard", s.dashboard)
	r.GET("/dashboard/wishlist", s.wishlist)
	r.POST("/dashboard/wishlist/:id/remove", s.wishlistRemove)
	r.POST("/dashboard/wishlist/:id/cart", s.wishlistAddToCart)

	r.GET("/auth/login", s.loginPage)
	r.POST("/auth/login", s.login)
	r.GET("/auth/signup", s.signupPage)
	r.POST("/auth/signup", s.signup)
	r.POST("/auth/logout", s.logout)

	r.GET("/merchant", s.merchant)
	r.POST("/merchant/products", s.merchantCreateProduct)
	r.POST("/merchant/products/:id", s.merchantUpdateProduct)
	r.POST("/merchant/products/:id/delete", s.merchantDeleteProduct)

	r.GET("/admin", s.admin)
	r.POST("/admin/users/:id/role", s.adminUpdateRole)
	r.POST("/admin/users/:id/delete", s.adminDeleteUser)
	r.POST("/admin/orders/:id/status", s.adminUpdateOrderStatus)
	r.POST("/admin/products/:id/featured", s.adminToggleFeatured)
	r.POST("/admin/categories", s.adminCreateCategory)
	r.POST("/admin/reviews/:id/delete", s.adminDeleteReview)
}
