// Package services orchestrates operations that span the store and the
// external collaborators.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"billkeep/internal/core"
	"billkeep/internal/push"
	"billkeep/internal/store"
)

// Notifier selects a month's upcoming bills and relays them to the push
// gateway. It is shared by the HTTP handler and the reminder scheduler.
type Notifier struct {
	store *store.Store
	push  *push.Client
}

func NewNotifier(st *store.Store, pc *push.Client) *Notifier {
	return &Notifier{store: st, push: pc}
}

// SendResult is the outcome of one send attempt. Reason is set on the
// short-circuit paths, Tickets on actual delivery.
type SendResult struct {
	Sent    int           `json:"sent"`
	Reason  string        `json:"reason,omitempty"`
	Tickets []push.Ticket `json:"tickets,omitempty"`
}

// SendUpcoming notifies every deliverable token about the month's unpaid
// bills due within the next seven days. With nothing due or no deliverable
// tokens it short-circuits without an outbound call.
func (n *Notifier) SendUpcoming(ctx context.Context, monthKey string, now time.Time) (SendResult, error) {
	projected := n.store.ProjectMonth(monthKey)
	upcoming := core.SelectUpcoming(projected, now)
	if len(upcoming) == 0 {
		return SendResult{Sent: 0, Reason: "no bills due"}, nil
	}

	deliverable := push.FilterDeliverable(n.store.Tokens())
	if len(deliverable) == 0 {
		return SendResult{Sent: 0, Reason: "no valid tokens"}, nil
	}

	title, body := push.Summarize(upcoming)
	batch := push.BuildBatch(deliverable, monthKey, title, body)
	tickets, err := n.push.Send(ctx, batch)
	if err != nil {
		return SendResult{}, fmt.Errorf("send push batch: %w", err)
	}

	slog.InfoContext(ctx, "Upcoming-bill notifications sent",
		"month", monthKey,
		"bills", len(upcoming),
		"recipients", len(batch))
	return SendResult{Sent: len(batch), Tickets: tickets}, nil
}
