// Package notify delivers queue mutation events to external real-time
// channels. Delivery is best-effort and fire-and-forget: failures are
// logged and never reach the mutation's caller, and each committed
// mutation produces exactly one outbound message per notifier, in
// commit order.
package notify

import "context"

// Event is the wire shape of a broadcast message.
type Event struct {
	Deck    int    `json:"deck"`
	Action  string `json:"action"`
	Payload any    `json:"payload"`
}

// Notifier matches the engine's broadcast interface.
type Notifier interface {
	Publish(ctx context.Context, deckID int, action string, payload any)
}

// Multi fans an event out to several notifiers in order.
type Multi []Notifier

func (m Multi) Publish(ctx context.Context, deckID int, action string, payload any) {
	for _, n := range m {
		n.Publish(ctx, deckID, action, payload)
	}
}
