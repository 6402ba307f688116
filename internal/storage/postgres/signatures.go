package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studioBooker/internal/models"
	"studioBooker/internal/storage"

	"github.com/lib/pq"
)

const signatureColumns = `
	id, booking_id, envelope_id, status, recipient_name, recipient_email,
	superseded_at, created_at, updated_at`

func scanSignature(row rowScanner) (models.SignatureRequest, error) {
	var (
		req          models.SignatureRequest
		bookingID    sql.NullInt64
		supersededAt sql.NullTime
	)

	err := row.Scan(
		&req.ID,
		&bookingID,
		&req.EnvelopeID,
		&req.Status,
		&req.RecipientName,
		&req.RecipientEmail,
		&supersededAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return models.SignatureRequest{}, err
	}

	if bookingID.Valid {
		id := bookingID.Int64
		req.BookingID = &id
	}
	if supersededAt.Valid {
		t := supersededAt.Time
		req.SupersededAt = &t
	}

	return req, nil
}

// CreateSignatureRequest stores a new request and supersedes any earlier
// live request for the same booking.
func (s *Storage) CreateSignatureRequest(ctx context.Context, req *models.SignatureRequest) (int64, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if req.BookingID != nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE signature_requests SET superseded_at = NOW(), updated_at = NOW()
			WHERE booking_id = $1 AND superseded_at IS NULL`, *req.BookingID)
		if err != nil {
			return 0, fmt.Errorf("failed to supersede signature requests: %w", err)
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO signature_requests (booking_id, envelope_id, status, recipient_name, recipient_email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		nullInt64(req.BookingID), req.EnvelopeID, req.Status, req.RecipientName, req.RecipientEmail,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create signature request: %w", mapWriteErr(err))
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit signature request: %w", err)
	}

	return req.ID, nil
}

func (s *Storage) SignatureRequestByEnvelope(ctx context.Context, envelopeID string) (*models.SignatureRequest, error) {
	req, err := scanSignature(s.DB.QueryRowContext(ctx,
		`SELECT`+signatureColumns+` FROM signature_requests WHERE envelope_id = $1`, envelopeID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get signature request: %w", err)
	}

	return &req, nil
}

// TransitionSignature moves a request to status only if it is currently in
// one of the statuses that may precede it. Reaching signed also confirms a
// pending, non-held booking that this request still governs. Replaying the
// same event finds nothing to update and reports Changed=false.
func (s *Storage) TransitionSignature(ctx context.Context, envelopeID string, to models.SignatureStatus) (storage.SignatureTransition, error) {
	from := predecessors(to)
	if len(from) == 0 {
		return storage.SignatureTransition{}, fmt.Errorf("no transition leads to signature status %q", to)
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return storage.SignatureTransition{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	req, err := scanSignature(tx.QueryRowContext(ctx, `
		UPDATE signature_requests SET status = $2, updated_at = NOW()
		WHERE envelope_id = $1 AND status = ANY($3)
		RETURNING`+signatureColumns,
		envelopeID, to, pq.Array(from),
	))
	if errors.Is(err, sql.ErrNoRows) {
		current, err := scanSignature(tx.QueryRowContext(ctx,
			`SELECT`+signatureColumns+` FROM signature_requests WHERE envelope_id = $1`, envelopeID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.SignatureTransition{}, storage.ErrNotFound
			}
			return storage.SignatureTransition{}, fmt.Errorf("failed to get signature request: %w", err)
		}
		return storage.SignatureTransition{Request: current}, nil
	}
	if err != nil {
		return storage.SignatureTransition{}, fmt.Errorf("failed to update signature request: %w", err)
	}

	result := storage.SignatureTransition{Request: req, Changed: true}

	if to == models.SignatureSigned && req.BookingID != nil && req.SupersededAt == nil {
		res, err := tx.ExecContext(ctx, `
			UPDATE bookings SET status = 'confirmed', updated_at = NOW()
			WHERE id = $1 AND status = 'pending' AND NOT is_blocked`, *req.BookingID)
		if err != nil {
			return storage.SignatureTransition{}, fmt.Errorf("failed to confirm booking: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storage.SignatureTransition{}, fmt.Errorf("failed to confirm booking: %w", err)
		}
		result.BookingConfirmed = n == 1
	}

	if err = tx.Commit(); err != nil {
		return storage.SignatureTransition{}, fmt.Errorf("failed to commit signature transition: %w", err)
	}

	return result, nil
}

// StaleSignatureRequests lists live, unfinished requests untouched since before.
func (s *Storage) StaleSignatureRequests(ctx context.Context, before time.Time, limit int) ([]models.SignatureRequest, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT`+signatureColumns+`
		FROM signature_requests
		WHERE status IN ('pending', 'sent', 'viewed') AND superseded_at IS NULL AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2`, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale signature requests: %w", err)
	}
	defer rows.Close()

	out := make([]models.SignatureRequest, 0)
	for rows.Next() {
		req, err := scanSignature(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signature request: %w", err)
		}
		out = append(out, req)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signature requests: %w", err)
	}

	return out, nil
}

func predecessors(to models.SignatureStatus) []string {
	switch to {
	case models.SignatureSent:
		return []string{string(models.SignaturePending)}
	case models.SignatureViewed:
		return []string{string(models.SignaturePending), string(models.SignatureSent)}
	case models.SignatureSigned, models.SignatureDeclined:
		return []string{string(models.SignaturePending), string(models.SignatureSent), string(models.SignatureViewed)}
	case models.SignaturePending:
		return nil
	}
	return nil
}
