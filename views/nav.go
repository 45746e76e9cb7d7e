package views

import (
	"context"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
)

// Link is a navigation entry
type Link struct {
	Label string
	Href  string
}

// NavShell decides which links the header shows. It has no say over
// access; the API enforces that.
type NavShell struct {
	host *Host
}

func NewNavShell(h *Host) *NavShell {
	return &NavShell{host: h}
}

// Links are the main navigation entries for the current user
func (n *NavShell) Links() []Link {
	links := []Link{
		{Label: "Shop", Href: "/products"},
		{Label: "Categories", Href: "/categories"},
		{Label: "New Arrivals", Href: "/new-arrivals"},
	}
	switch n.host.Session.Role() {
	case api.RoleAdmin:
		links = append(links, Link{Label: "Merchant", Href: MerchantPath}, Link{Label: "Admin", Href: AdminPath})
	case api.RoleMerchant:
		links = append(links, Link{Label: "Merchant", Href: MerchantPath})
	}
	return links
}

// AccountLinks are the account menu entries
func (n *NavShell) AccountLinks() []Link {
	if !n.host.Session.IsAuthenticated() {
		return []Link{
			{Label: "Login", Href: LoginPath},
			{Label: "Sign up", Href: "/auth/signup"},
		}
	}
	return []Link{
		{Label: "Dashboard", Href: "/dashboard"},
		{Label: "Wishlist", Href: "/dashboard/wishlist"},
		{Label: "Orders", Href: OrdersPath},
	}
}

// User is the signed-in user, or nil
func (n *NavShell) User() *api.User {
	return n.host.Session.CurrentUser()
}

func (n *NavShell) Authenticated() bool {
	return n.host.Session.IsAuthenticated()
}

// Logout clears the token and user snapshot together and goes home
func (n *NavShell) Logout(ctx context.Context) {
	if u := n.host.Session.CurrentUser(); u != nil {
		core.LogInfo(ctx, n.host.logger(), "User signed out", map[string]interface{}{"user_id": u.ID})
	}
	n.host.Session.SignOut()
	n.host.Navigator.Redirect(HomePath)
}
