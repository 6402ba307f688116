package models

import "time"

type SignatureStatus string

const (
	SignaturePending  SignatureStatus = "pending"
	SignatureSent     SignatureStatus = "sent"
	SignatureViewed   SignatureStatus = "viewed"
	SignatureSigned   SignatureStatus = "signed"
	SignatureDeclined SignatureStatus = "declined"
)

func (s SignatureStatus) Valid() bool {
	switch s {
	case SignaturePending, SignatureSent, SignatureViewed, SignatureSigned, SignatureDeclined:
		return true
	}
	return false
}

// Terminal statuses never change again.
func (s SignatureStatus) Terminal() bool {
	switch s {
	case SignatureSigned, SignatureDeclined:
		return true
	case SignaturePending, SignatureSent, SignatureViewed:
		return false
	}
	return false
}

type SignatureRequest struct {
	ID             int64           `json:"id"`
	BookingID      *int64          `json:"booking_id,omitempty"`
	EnvelopeID     string          `json:"envelope_id"`
	Status         SignatureStatus `json:"status"`
	RecipientName  string          `json:"recipient_name"`
	RecipientEmail string          `json:"recipient_email"`
	SupersededAt   *time.Time      `json:"superseded_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
