// Package signature couples booking confirmation to the e-signature
// provider. Requests go out when a booking is created and come back as
// webhook events or reconciliation queries.
package signature

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"studioBooker/internal/clients/esign"
	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/models"
	"studioBooker/internal/notify"
	"studioBooker/internal/storage"
)

const HeaderName = "X-Signature-256"

var ErrUnauthenticated = errors.New("webhook signature is missing or invalid")

type EventType string

const (
	EventCompleted EventType = "envelope-completed"
	EventViewed    EventType = "recipient-viewed"
	EventDeclined  EventType = "envelope-declined"
)

// Target maps an event to the signature status it moves to. ok is false
// for event types the gate ignores.
func (e EventType) Target() (models.SignatureStatus, bool) {
	switch e {
	case EventCompleted:
		return models.SignatureSigned, true
	case EventViewed:
		return models.SignatureViewed, true
	case EventDeclined:
		return models.SignatureDeclined, true
	}
	return "", false
}

type Event struct {
	EnvelopeID string    `json:"envelope_id" validate:"required"`
	EventType  EventType `json:"event_type" validate:"required"`
	DeliveryID string    `json:"delivery_id,omitempty"`
}

// Outcome describes what handling an event did.
type Outcome struct {
	Known            bool                   `json:"known"`
	Changed          bool                   `json:"changed"`
	BookingConfirmed bool                   `json:"booking_confirmed"`
	Duplicate        bool                   `json:"duplicate,omitempty"`
	Status           models.SignatureStatus `json:"signature_status,omitempty"`
}

type Provider interface {
	CreateEnvelope(ctx context.Context, req esign.EnvelopeRequest) (string, error)
	EnvelopeStatus(ctx context.Context, envelopeID string) (models.SignatureStatus, error)
}

type Store interface {
	CreateSignatureRequest(ctx context.Context, req *models.SignatureRequest) (int64, error)
	TransitionSignature(ctx context.Context, envelopeID string, to models.SignatureStatus) (storage.SignatureTransition, error)
	StaleSignatureRequests(ctx context.Context, before time.Time, limit int) ([]models.SignatureRequest, error)
}

// Claimer drops concurrent duplicate deliveries before they reach the store.
type Claimer interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

type Options struct {
	WebhookSecret string
	// AllowUnsigned accepts webhooks without validation when no secret is
	// configured. Without it such webhooks are rejected.
	AllowUnsigned  bool
	RequestTimeout time.Duration
	ReconcileAfter time.Duration
	ReconcileBatch int
}

type Gate struct {
	log      *slog.Logger
	store    Store
	provider Provider
	notifier notify.Notifier
	claimer  Claimer
	opts     Options
	now      func() time.Time

	wg sync.WaitGroup
}

func NewGate(log *slog.Logger, store Store, provider Provider, notifier notify.Notifier, opts Options) *Gate {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.ReconcileAfter <= 0 {
		opts.ReconcileAfter = 30 * time.Minute
	}
	if opts.ReconcileBatch <= 0 {
		opts.ReconcileBatch = 50
	}

	return &Gate{
		log:      log,
		store:    store,
		provider: provider,
		notifier: notifier,
		opts:     opts,
		now:      time.Now,
	}
}

// WithClaimer enables delivery-id deduplication.
func (g *Gate) WithClaimer(c Claimer) *Gate {
	g.claimer = c
	return g
}

// RequestForBooking starts a signature request in the background when the
// booking carries a client email. It never fails the caller.
func (g *Gate) RequestForBooking(ctx context.Context, b models.Booking) {
	if b.ClientEmail == "" || g.provider == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, g.opts.RequestTimeout)
		defer cancel()

		if err := g.requestSignature(ctx, b); err != nil {
			g.log.Error("failed to request signature",
				slog.Int64("booking_id", b.ID),
				sl.Err(err),
			)
		}
	}()
}

// Wait blocks until background signature requests have finished.
func (g *Gate) Wait() {
	g.wg.Wait()
}

func (g *Gate) requestSignature(ctx context.Context, b models.Booking) error {
	const op = "services.signature.requestSignature"

	envelopeID, err := g.provider.CreateEnvelope(ctx, esign.EnvelopeRequest{
		BookingID:      b.ID,
		RecipientName:  b.ClientName,
		RecipientEmail: b.ClientEmail,
		Title:          b.DisplayTitle(),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	bookingID := b.ID
	req := &models.SignatureRequest{
		BookingID:      &bookingID,
		EnvelopeID:     envelopeID,
		Status:         models.SignatureSent,
		RecipientName:  b.ClientName,
		RecipientEmail: b.ClientEmail,
	}
	if _, err = g.store.CreateSignatureRequest(ctx, req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	g.log.Info("signature requested",
		slog.Int64("booking_id", b.ID),
		slog.String("envelope_id", envelopeID),
	)

	return nil
}

// Verify checks the HMAC-SHA256 of the raw body against the header value,
// which may carry a "sha256=" prefix.
func (g *Gate) Verify(body []byte, header string) error {
	if g.opts.WebhookSecret == "" {
		if g.opts.AllowUnsigned {
			g.log.Warn("webhook secret is not configured, accepting unsigned webhook")
			return nil
		}
		return ErrUnauthenticated
	}

	sig := strings.TrimPrefix(strings.TrimSpace(header), "sha256=")
	if sig == "" {
		return ErrUnauthenticated
	}

	got, err := hex.DecodeString(sig)
	if err != nil {
		return ErrUnauthenticated
	}

	if !hmac.Equal(got, Sign(g.opts.WebhookSecret, body)) {
		return ErrUnauthenticated
	}

	return nil
}

// Sign returns the raw HMAC-SHA256 of body.
func Sign(secret string, body []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return mac.Sum(nil)
}

// HandleEvent applies a webhook event. Unknown envelopes and event types are
// successful no-ops. Replays of an applied event change nothing and notify
// nobody.
func (g *Gate) HandleEvent(ctx context.Context, ev Event) (Outcome, error) {
	const op = "services.signature.HandleEvent"

	log := g.log.With(
		slog.String("op", op),
		slog.String("envelope_id", ev.EnvelopeID),
		slog.String("event_type", string(ev.EventType)),
	)

	to, ok := ev.EventType.Target()
	if !ok {
		log.Info("ignoring webhook event type")
		return Outcome{}, nil
	}

	if g.claimer != nil && ev.DeliveryID != "" {
		claimed, err := g.claimer.Claim(ctx, ev.DeliveryID)
		switch {
		case err != nil:
			log.Warn("delivery claim failed, processing anyway", sl.Err(err))
		case !claimed:
			log.Info("duplicate delivery dropped", slog.String("delivery_id", ev.DeliveryID))
			return Outcome{Duplicate: true}, nil
		}
	}

	out, err := g.apply(ctx, log, ev.EnvelopeID, to)
	if err != nil {
		if g.claimer != nil && ev.DeliveryID != "" {
			if rerr := g.claimer.Release(context.WithoutCancel(ctx), ev.DeliveryID); rerr != nil {
				log.Warn("failed to release delivery claim", sl.Err(rerr))
			}
		}
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

// Reconcile asks the provider about requests that have not moved for a
// while and applies whatever changed. It returns how many requests moved.
func (g *Gate) Reconcile(ctx context.Context) (int, error) {
	const op = "services.signature.Reconcile"

	log := g.log.With(slog.String("op", op))

	if g.provider == nil {
		return 0, nil
	}

	stale, err := g.store.StaleSignatureRequests(ctx, g.now().Add(-g.opts.ReconcileAfter), g.opts.ReconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	moved := 0
	for _, req := range stale {
		if err := ctx.Err(); err != nil {
			return moved, fmt.Errorf("%s: %w", op, err)
		}

		current, err := g.provider.EnvelopeStatus(ctx, req.EnvelopeID)
		if err != nil {
			log.Warn("failed to query envelope status", slog.String("envelope_id", req.EnvelopeID), sl.Err(err))
			continue
		}

		if current == req.Status || current == models.SignaturePending || current == models.SignatureSent {
			continue
		}

		out, err := g.apply(ctx, log.With(slog.String("envelope_id", req.EnvelopeID)), req.EnvelopeID, current)
		if err != nil {
			log.Warn("failed to apply envelope status", slog.String("envelope_id", req.EnvelopeID), sl.Err(err))
			continue
		}
		if out.Changed {
			moved++
		}
	}

	if moved > 0 {
		log.Info("reconciled signature requests", slog.Int("moved", moved))
	}

	return moved, nil
}

func (g *Gate) apply(ctx context.Context, log *slog.Logger, envelopeID string, to models.SignatureStatus) (Outcome, error) {
	tr, err := g.store.TransitionSignature(ctx, envelopeID, to)
	if errors.Is(err, storage.ErrNotFound) {
		log.Info("no signature request for envelope")
		return Outcome{}, nil
	}
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		Known:            true,
		Changed:          tr.Changed,
		BookingConfirmed: tr.BookingConfirmed,
		Status:           tr.Request.Status,
	}

	if !tr.Changed {
		log.Debug("signature already in target state")
		return out, nil
	}

	log.Info("signature status changed",
		slog.String("status", string(to)),
		slog.Bool("booking_confirmed", tr.BookingConfirmed),
	)

	if n, ok := notificationFor(tr, envelopeID, to); ok {
		n.OccurredAt = g.now().UTC()
		if err := g.notifier.Notify(ctx, n); err != nil {
			log.Error("failed to send notification", sl.Err(err))
		}
	}

	return out, nil
}

func notificationFor(tr storage.SignatureTransition, envelopeID string, to models.SignatureStatus) (notify.Notification, bool) {
	var bookingID int64
	if tr.Request.BookingID != nil {
		bookingID = *tr.Request.BookingID
	}

	switch to {
	case models.SignatureSigned:
		if tr.BookingConfirmed {
			return notify.Notification{
				Kind:       notify.KindBookingConfirmed,
				BookingID:  bookingID,
				EnvelopeID: envelopeID,
				Message:    fmt.Sprintf("Contract signed by %s, booking %d confirmed", tr.Request.RecipientEmail, bookingID),
			}, true
		}
		return notify.Notification{
			Kind:       notify.KindContractSigned,
			BookingID:  bookingID,
			EnvelopeID: envelopeID,
			Message:    fmt.Sprintf("Contract signed by %s, booking left unchanged", tr.Request.RecipientEmail),
		}, true
	case models.SignatureDeclined:
		return notify.Notification{
			Kind:       notify.KindSignatureDeclined,
			BookingID:  bookingID,
			EnvelopeID: envelopeID,
			Message:    fmt.Sprintf("Contract declined by %s", tr.Request.RecipientEmail),
		}, true
	case models.SignaturePending, models.SignatureSent, models.SignatureViewed:
		return notify.Notification{}, false
	}
	return notify.Notification{}, false
}
