// Package notify delivers staff notifications raised by the signature flow.
package notify

import (
	"context"
	"log/slog"
	"time"
)

type Kind string

const (
	KindBookingConfirmed  Kind = "booking.confirmed"
	KindContractSigned    Kind = "signature.signed"
	KindSignatureDeclined Kind = "signature.declined"
)

type Notification struct {
	Kind       Kind      `json:"kind"`
	BookingID  int64     `json:"booking_id,omitempty"`
	EnvelopeID string    `json:"envelope_id"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the log. It is used when no broker
// is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.log.Info("staff notification",
		slog.String("kind", string(n.Kind)),
		slog.Int64("booking_id", n.BookingID),
		slog.String("envelope_id", n.EnvelopeID),
		slog.String("message", n.Message),
	)
	return nil
}
