package booking

import (
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type Role string

const (
	RoleCustomer       Role = "customer"
	RoleProvider       Role = "provider"
	RolePaymentGateway Role = "payment_gateway"
	RoleAdmin          Role = "admin"
	RoleSystem         Role = "system"
)

// Actor is whoever asks for a transition.
type Actor struct {
	Role       Role
	UserID     uint
	ProviderID uint
}

func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

func (a Actor) privileged() bool {
	return a.Role == RoleAdmin || a.Role == RoleSystem
}

// AuthorizePayment: payment moves come from the customer side or the gateway.
func AuthorizePayment(a Actor, b *models.Booking) error {
	switch {
	case a.privileged(), a.Role == RolePaymentGateway:
		return nil
	case a.Role == RoleCustomer && a.UserID == b.CustomerID:
		return nil
	}
	return httperr.ErrBusiness(httperr.CodeForbiddenActor)
}

// AuthorizeProvider allows the provider itself and privileged actors to
// manage the provider's calendar.
func AuthorizeProvider(a Actor, providerID uint) error {
	if a.privileged() || (a.Role == RoleProvider && a.ProviderID == providerID) {
		return nil
	}
	return httperr.ErrBusiness(httperr.CodeForbiddenActor)
}

// AuthorizeApproval: only the booked provider decides.
func AuthorizeApproval(a Actor, b *models.Booking) error {
	return AuthorizeProvider(a, b.ProviderID)
}

// AuthorizeView lets both parties of a booking read it.
func AuthorizeView(a Actor, b *models.Booking) error {
	if AuthorizeCancel(a, b) == nil || AuthorizeProvider(a, b.ProviderID) == nil {
		return nil
	}
	return httperr.ErrBusiness(httperr.CodeForbiddenActor)
}

func AuthorizeCancel(a Actor, b *models.Booking) error {
	if a.privileged() || (a.Role == RoleCustomer && a.UserID == b.CustomerID) {
		return nil
	}
	return httperr.ErrBusiness(httperr.CodeForbiddenActor)
}

func AuthorizeFulfilment(a Actor, b *models.Booking) error {
	return AuthorizeApproval(a, b)
}
