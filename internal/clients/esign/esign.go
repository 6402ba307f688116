// Package esign talks to the e-signature provider over its JSON API.
package esign

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"studioBooker/internal/models"

	"github.com/google/uuid"
)

var ErrUnknownStatus = errors.New("unknown envelope status")

type EnvelopeRequest struct {
	BookingID      int64
	RecipientName  string
	RecipientEmail string
	Title          string
}

type createEnvelopeBody struct {
	TemplateID     string            `json:"template_id,omitempty"`
	IdempotencyKey string            `json:"idempotency_key"`
	Subject        string            `json:"subject"`
	Recipient      recipient         `json:"recipient"`
	Metadata       map[string]string `json:"metadata"`
}

type recipient struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type envelopeResponse struct {
	EnvelopeID string `json:"envelope_id"`
	Status     string `json:"status"`
}

type Client struct {
	BaseURL    string
	APIKey     string
	TemplateID string
	HTTP       *http.Client
}

func New(baseURL, apiKey, templateID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		TemplateID: templateID,
		HTTP: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        20,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		},
	}
}

// CreateEnvelope sends the contract to the recipient and returns the
// provider's envelope id.
func (c *Client) CreateEnvelope(ctx context.Context, req EnvelopeRequest) (string, error) {
	body, err := json.Marshal(createEnvelopeBody{
		TemplateID:     c.TemplateID,
		IdempotencyKey: uuid.NewString(),
		Subject:        req.Title,
		Recipient:      recipient{Name: req.RecipientName, Email: req.RecipientEmail},
		Metadata:       map[string]string{"booking_id": fmt.Sprintf("%d", req.BookingID)},
	})
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}

	var out envelopeResponse
	if err = c.do(ctx, http.MethodPost, c.BaseURL+"/envelopes", body, &out); err != nil {
		return "", err
	}
	if out.EnvelopeID == "" {
		return "", errors.New("provider returned no envelope id")
	}

	return out.EnvelopeID, nil
}

// EnvelopeStatus queries the provider for the current state of an envelope.
func (c *Client) EnvelopeStatus(ctx context.Context, envelopeID string) (models.SignatureStatus, error) {
	var out envelopeResponse
	if err := c.do(ctx, http.MethodGet, c.BaseURL+"/envelopes/"+url.PathEscape(envelopeID), nil, &out); err != nil {
		return "", err
	}

	return MapStatus(out.Status)
}

// MapStatus converts a provider status word to a signature status.
func MapStatus(s string) (models.SignatureStatus, error) {
	switch strings.ToLower(s) {
	case "created", "pending":
		return models.SignaturePending, nil
	case "sent":
		return models.SignatureSent, nil
	case "delivered", "viewed":
		return models.SignatureViewed, nil
	case "completed", "signed":
		return models.SignatureSigned, nil
	case "declined", "voided":
		return models.SignatureDeclined, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

func (c *Client) do(ctx context.Context, method, u string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("esign %s %s: status %d: %s", method, u, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode esign response: %w", err)
	}

	return nil
}
