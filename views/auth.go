package views

import (
	"context"
	"net/mail"
	"strings"

	"github.com/itsneelabh/storefront/api"
	"github.com/itsneelabh/storefront/core"
)

// MinPasswordLength matches the signup form's minlength
const MinPasswordLength = 4

// LoginView signs a user in
type LoginView struct {
	host *Host
	// Registered is set when arriving from a successful signup
	Registered bool
	Email      string
}

func NewLoginView(h *Host, registered bool) *LoginView {
	return &LoginView{host: h, Registered: registered}
}

// Submit exchanges credentials for a token, stores it with the user
// snapshot, and sends the user to their role's landing page
func (v *LoginView) Submit(ctx context.Context, email, password string) error {
	v.Email = strings.TrimSpace(email)
	if v.Email == "" || password == "" {
		err := invalid("email", "Email and password are required")
		v.host.Notifier.Error(err.Message)
		return err
	}

	tok, err := v.host.Client.Login(ctx, v.Email, password)
	if err != nil {
		core.LogWarn(ctx, v.host.logger(), "Login failed", map[string]interface{}{
			"kind":   api.KindOf(err).String(),
			"status": api.StatusOf(err),
		})
		v.host.Notifier.Error("Invalid credentials")
		return err
	}

	v.host.Session.SignIn(tok.AccessToken, tok.User)
	var role api.Role
	if tok.User != nil {
		role = tok.User.Role
	}
	core.LogInfo(ctx, v.host.logger(), "User signed in", map[string]interface{}{"role": string(role)})
	v.host.Notifier.Success("Logged in successfully")
	v.host.Navigator.Redirect(HomeFor(role))
	return nil
}

// SignupForm is what the signup page posts
type SignupForm struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	Role            api.Role
	StoreName       string
}

// Validate checks the form before anything is sent
func (f SignupForm) Validate() *ValidationError {
	if strings.TrimSpace(f.FullName) == "" {
		return invalid("full_name", "Full name is required")
	}
	if strings.TrimSpace(f.Email) == "" {
		return invalid("email", "Email is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(f.Email)); err != nil {
		return invalid("email", "Enter a valid email address")
	}
	if len(f.Password) < MinPasswordLength {
		return invalid("password", "Password must be at least 4 characters")
	}
	if f.Password != f.ConfirmPassword {
		return invalid("confirm_password", "Passwords do not match")
	}
	if f.Role != "" && f.Role != api.RoleCustomer && f.Role != api.RoleMerchant {
		return invalid("role", "Choose a customer or merchant account")
	}
	if f.Role == api.RoleMerchant && strings.TrimSpace(f.StoreName) == "" {
		return invalid("store_name", "Store name is required for merchant accounts")
	}
	return nil
}

// SignupView registers an account
type SignupView struct {
	host *Host
	Form SignupForm
	// Err is shown inline above the form
	Err string
}

func NewSignupView(h *Host) *SignupView {
	return &SignupView{host: h}
}

// Submit validates the form locally, then registers the account and sends
// the user to the login page
func (v *SignupView) Submit(ctx context.Context, f SignupForm) error {
	v.Form = f
	v.Err = ""
	if verr := f.Validate(); verr != nil {
		v.Err = verr.Message
		return verr
	}

	req := api.SignupRequest{
		Email:    strings.TrimSpace(f.Email),
		Password: f.Password,
		FullName: strings.TrimSpace(f.FullName),
		Role:     f.Role,
	}
	if f.Role == api.RoleMerchant {
		req.StoreName = strings.TrimSpace(f.StoreName)
	}

	if _, err := v.host.Client.Signup(ctx, req); err != nil {
		msg := err.Error()
		if api.KindOf(err) == api.KindTransport || msg == "" {
			msg = "Signup failed"
		}
		v.Err = msg
		v.host.Notifier.Error(msg)
		return err
	}

	v.host.Notifier.Success("Account created successfully")
	v.host.Navigator.Redirect(LoginPath + "?registered=true")
	return nil
}
