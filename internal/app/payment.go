package app

import (
	"context"

	"github.com/cimillas/ultimate-ticket/services/inventory/internal/domain"
)

// PaymentGateway charges a user for one ticket.
type PaymentGateway interface {
	Charge(ctx context.Context, user string, amount int) bool
}

// ApproveAll accepts every charge.
type ApproveAll struct{}

func (ApproveAll) Charge(context.Context, string, int) bool { return true }

// PurchaseNotifier is told about committed purchases.
type PurchaseNotifier interface {
	TicketPurchased(ctx context.Context, purchase domain.Purchase) error
}

// NopNotifier drops every notification.
type NopNotifier struct{}

func (NopNotifier) TicketPurchased(context.Context, domain.Purchase) error { return nil }
