package views

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
	"github.com/itsneelabh/storefront/resource"
)

// CheckoutView runs the three checkout steps: check the cart, open a
// payment intent for its total, and confirm the order once the payment
// widget reports success.
type CheckoutView struct {
	host           *Host
	PublishableKey string

	Cart   resource.Resource[api.Cart]
	Intent resource.Resource[api.PaymentIntent]
	Order  resource.Resource[api.Order]

	mu        sync.Mutex
	confirmed map[string]bool
}

func NewCheckoutView(h *Host, publishableKey string) *CheckoutView {
	return &CheckoutView{host: h, PublishableKey: publishableKey, confirmed: make(map[string]bool)}
}

// Load performs steps one and two. An empty cart sends the user back to
// the cart page before any payment intent is requested.
func (v *CheckoutView) Load(ctx context.Context) error {
	if !v.host.requireLogin("Please login to checkout") {
		return errNotSignedIn
	}
	c := v.host.client()

	err := resource.LoadSequence(ctx,
		resource.Bind(&v.Cart, func(ctx context.Context) (api.Cart, error) {
			cart, err := c.GetCart(ctx)
			if err != nil {
				return api.Cart{}, err
			}
			return *cart, nil
		}),
		func(ctx context.Context) error {
			if v.Cart.Value().Empty() {
				return errEmptyCart
			}
			return nil
		},
		resource.Bind(&v.Intent, func(ctx context.Context) (api.PaymentIntent, error) {
			intent, err := c.CreatePaymentIntent(ctx, v.Total())
			if err != nil {
				return api.PaymentIntent{}, err
			}
			return *intent, nil
		}),
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errEmptyCart):
		v.host.Notifier.Error("Your cart is empty")
		v.host.Navigator.Redirect(CartPath)
	default:
		v.host.surface(ctx, "Checkout.Load", err)
		v.host.Notifier.Error("Failed to initialize checkout")
	}
	return err
}

var errEmptyCart = &core.OpError{Op: "Checkout.Load", Kind: "checkout", Message: "cart is empty"}

// Total is the amount charged
func (v *CheckoutView) Total() float64 {
	return v.Cart.Value().Total()
}

// ClientSecret is handed to the payment widget
func (v *CheckoutView) ClientSecret() string {
	return v.Intent.Value().ClientSecret
}

// Ready reports whether the payment widget can be shown
func (v *CheckoutView) Ready() bool {
	return v.ClientSecret() != ""
}

// PaymentSucceeded is step three. A payment intent is confirmed
// successfully at most once for the life of the view; a failed
// confirmation can be retried.
func (v *CheckoutView) PaymentSucceeded(ctx context.Context, paymentIntentID string) error {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if paymentIntentID == "" {
		err := invalid("payment_intent", "Missing payment confirmation")
		v.host.Notifier.Error(err.Message)
		return err
	}
	if !v.host.requireLogin("Please login to checkout") {
		return errNotSignedIn
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.confirmed[paymentIntentID] {
		v.host.Navigator.Redirect(OrdersPath)
		return nil
	}

	err := v.Order.Load(ctx, func(ctx context.Context) (api.Order, error) {
		order, err := v.host.client().ConfirmCheckout(ctx, paymentIntentID)
		if err != nil {
			return api.Order{}, err
		}
		return *order, nil
	})
	if err != nil {
		v.host.surface(ctx, "ConfirmCheckout", err)
		v.host.Notifier.Error("Failed to confirm order. Please contact support.")
		return err
	}

	v.confirmed[paymentIntentID] = true
	core.LogInfo(ctx, v.host.logger(), "Order placed", map[string]interface{}{
		"order_id":          v.Order.Value().ID,
		"payment_intent_id": paymentIntentID,
	})
	v.host.Notifier.Success("Order placed successfully!")
	v.host.Navigator.Redirect(OrdersPath)
	return nil
}
