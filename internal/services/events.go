package services

import "context"

// Wallet event types published after state changes commit.
const (
	EventPurchaseCreated  = "purchase.created"
	EventAccrualCompleted = "accrual.completed"
	EventWalletOverridden = "wallet.overridden"
)

// EventPublisher announces committed wallet changes. Implementations must not
// block the caller on broker failures.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, any) {}

func publisherOrNop(p EventPublisher) EventPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
