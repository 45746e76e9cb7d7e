package views

import (
	"context"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/resource"
)

// CartView is the shopping cart
type CartView struct {
	host *Host
	Cart resource.Resource[api.Cart]
}

func NewCartView(h *Host) *CartView {
	return &CartView{host: h}
}

func (v *CartView) Load(ctx context.Context) error {
	if !v.host.requireLogin("Please login to view your cart") {
		return errNotSignedIn
	}
	err := v.Cart.Load(ctx, func(ctx context.Context) (api.Cart, error) {
		cart, err := v.host.client().GetCart(ctx)
		if err != nil {
			return api.Cart{}, err
		}
		return *cart, nil
	})
	if err != nil {
		v.host.surface(ctx, "GetCart", err)
		v.host.Notifier.Error("Failed to load cart")
	}
	return err
}

// Subtotal is Σ price×quantity over the lines, to the cent
func (v *CartView) Subtotal() float64 {
	return v.Cart.Value().Subtotal()
}

func (v *CartView) Empty() bool {
	return v.Cart.Value().Empty()
}

// UpdateQuantity sets a line's quantity. Quantities below one are ignored.
func (v *CartView) UpdateQuantity(ctx context.Context, productID int64, qty int) error {
	if qty < 1 {
		return nil
	}
	err := v.Cart.Mutate(ctx,
		func(ctx context.Context) error {
			return v.host.client().UpdateCartItem(ctx, productID, qty)
		},
		func(cart api.Cart) api.Cart {
			cart.Items = resource.Patch(cart.Items,
				func(i api.CartItem) bool { return i.ProductID == productID },
				func(i api.CartItem) api.CartItem { i.Quantity = qty; return i },
			)
			cart.TotalAmount = cart.Subtotal()
			return cart
		},
	)
	if err != nil {
		v.host.surface(ctx, "UpdateCartItem", err)
		v.host.Notifier.Error("Failed to update quantity")
		return err
	}
	v.host.Notifier.Success("Cart updated")
	return nil
}

// Remove drops a line
func (v *CartView) Remove(ctx context.Context, productID int64) error {
	err := v.Cart.Mutate(ctx,
		func(ctx context.Context) error {
			return v.host.client().RemoveFromCart(ctx, productID)
		},
		func(cart api.Cart) api.Cart {
			cart.Items = resource.Remove(cart.Items, func(i api.CartItem) bool { return i.ProductID == productID })
			cart.TotalAmount = cart.Subtotal()
			return cart
		},
	)
	if err != nil {
		v.host.surface(ctx, "RemoveFromCart", err)
		v.host.Notifier.Error("Failed to remove item")
		return err
	}
	v.host.Notifier.Success("Item removed")
	return nil
}

// Clear empties the cart after confirmation. Declining is not an error.
func (v *CartView) Clear(ctx context.Context) error {
	if !v.host.confirm("Are you sure you want to clear your cart?") {
		return nil
	}
	err := v.Cart.Mutate(ctx,
		v.host.client().ClearCart,
		func(api.Cart) api.Cart { return api.Cart{Items: []api.CartItem{}} },
	)
	if err != nil {
		v.host.surface(ctx, "ClearCart", err)
		v.host.Notifier.Error("Failed to clear cart")
		return err
	}
	v.host.Notifier.Success("Cart cleared")
	return nil
}
