package signatureWebhook

import (
	"bytes"
	"context"
	"errors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"io"
	"log/slog"
	"net/http"
	"studioBooker/internal/lib/api/response"
	"studioBooker/internal/lib/logger/sl"
	"studioBooker/internal/services/signature"
)

const maxBodyBytes = 1 << 20

type WebhookResponse struct {
	response.Response
	signature.Outcome
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=WebhookGate
type WebhookGate interface {
	Verify(body []byte, header string) error
	HandleEvent(ctx context.Context, ev signature.Event) (signature.Outcome, error)
}

// New accepts e-signature provider callbacks. The body is authenticated
// before it is parsed; unknown envelopes are acknowledged with 200 so the
// provider stops retrying.
func New(log *slog.Logger, gate WebhookGate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.webhook.signatureWebhook.New"

		log := log.With(slog.String("op", op))

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			log.Error("failed to read request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to read request"))
			return
		}

		if err = gate.Verify(body, r.Header.Get(signature.HeaderName)); err != nil {
			log.Warn("rejected webhook", sl.Err(err))
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid webhook signature"))
			return
		}

		var ev signature.Event

		err = render.DecodeJSON(bytes.NewReader(body), &ev)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err = validator.New().Struct(ev); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}
		}

		out, err := gate.HandleEvent(r.Context(), ev)
		if err != nil {
			log.Error("failed to handle webhook event", slog.String("envelope_id", ev.EnvelopeID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to handle webhook event"))
			return
		}

		render.JSON(w, r, WebhookResponse{
			Response: response.OK(),
			Outcome:  out,
		})
	}
}
