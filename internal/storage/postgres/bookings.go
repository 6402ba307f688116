package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
	"studioBooker/internal/scheduling/conflict"
	"studioBooker/internal/scheduling/reservation"
	"studioBooker/internal/storage"
)

const bookingColumns = `
	id, booking_date, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
	kind, status, is_blocked, client_id, title, notes, client_name, client_email,
	created_at, updated_at`

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b          models.Booking
		start, end string
		clientID   sql.NullInt64
	)

	err := row.Scan(
		&b.ID,
		&b.Date,
		&start,
		&end,
		&b.Kind,
		&b.Status,
		&b.IsBlocked,
		&clientID,
		&b.Title,
		&b.Notes,
		&b.ClientName,
		&b.ClientEmail,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return models.Booking{}, err
	}

	if b.Start, err = parseClock(start); err != nil {
		return models.Booking{}, err
	}
	if b.End, err = parseClock(end); err != nil {
		return models.Booking{}, err
	}

	b.Date = timeslot.DateOnly(b.Date)
	if clientID.Valid {
		id := clientID.Int64
		b.ClientID = &id
	}

	return b, nil
}

func queryBookings(ctx context.Context, q queryer, query string, args ...any) ([]models.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

func (s *Storage) BookingsByDate(ctx context.Context, date time.Time) ([]models.Booking, error) {
	return bookingsByDate(ctx, s.DB, date)
}

func bookingsByDate(ctx context.Context, q queryer, date time.Time) ([]models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE booking_date = $1
		ORDER BY start_time ASC, id ASC`

	return queryBookings(ctx, q, query, formatDate(date))
}

// BookingsInRange returns bookings whose day lies within [from, to].
func (s *Storage) BookingsInRange(ctx context.Context, from, to time.Time) ([]models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE booking_date BETWEEN $1 AND $2
		ORDER BY booking_date ASC, start_time ASC, id ASC`

	return queryBookings(ctx, s.DB, query, formatDate(from), formatDate(to))
}

func (s *Storage) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	query := `SELECT` + bookingColumns + `
		FROM bookings
		WHERE id = $1`

	b, err := scanBooking(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return &b, nil
}

// CreateBooking re-runs the overlap checks under a per-day lock and inserts
// the booking with its equipment reservations in one transaction.
func (s *Storage) CreateBooking(ctx context.Context, b *models.Booking, equipmentIDs []int64) (int64, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err = lockDays(ctx, tx, b.Date); err != nil {
		return 0, err
	}

	if err = checkSlot(ctx, tx, b, 0, equipmentIDs); err != nil {
		return 0, err
	}

	insertQuery := `
		INSERT INTO bookings (
			booking_date, start_time, end_time, kind, status, is_blocked,
			client_id, title, notes, client_name, client_email
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, insertQuery,
		formatDate(b.Date),
		b.Start.String(),
		b.End.String(),
		b.Kind,
		b.Status,
		b.IsBlocked,
		nullInt64(b.ClientID),
		b.Title,
		b.Notes,
		b.ClientName,
		b.ClientEmail,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to create booking: %w", mapWriteErr(err))
	}

	if err = insertReservations(ctx, tx, b, equipmentIDs); err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit booking: %w", mapWriteErr(err))
	}

	return b.ID, nil
}

// UpdateBooking rewrites the schedule and descriptive fields of a booking and
// replaces its reservations. Status and the hold flag are left alone.
func (s *Storage) UpdateBooking(ctx context.Context, b *models.Booking, equipmentIDs []int64) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var oldDate time.Time
	err = tx.QueryRowContext(ctx, `SELECT booking_date FROM bookings WHERE id = $1`, b.ID).Scan(&oldDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to get booking: %w", err)
	}

	if err = lockDays(ctx, tx, oldDate, b.Date); err != nil {
		return err
	}

	current, err := scanBooking(tx.QueryRowContext(ctx, `SELECT`+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, b.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("failed to lock booking: %w", err)
	}

	b.Status = current.Status
	b.IsBlocked = current.IsBlocked

	if err = checkSlot(ctx, tx, b, b.ID, equipmentIDs); err != nil {
		return err
	}

	updateQuery := `
		UPDATE bookings
		SET booking_date = $2, start_time = $3, end_time = $4, kind = $5,
			client_id = $6, title = $7, notes = $8, client_name = $9, client_email = $10,
			updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, updateQuery,
		b.ID,
		formatDate(b.Date),
		b.Start.String(),
		b.End.String(),
		b.Kind,
		nullInt64(b.ClientID),
		b.Title,
		b.Notes,
		b.ClientName,
		b.ClientEmail,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", mapWriteErr(err))
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM reservations WHERE booking_id = $1`, b.ID); err != nil {
		return fmt.Errorf("failed to release reservations: %w", err)
	}

	if err = insertReservations(ctx, tx, b, equipmentIDs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit booking: %w", mapWriteErr(err))
	}

	return nil
}

// SetBookingStatus applies a staff transition. Moving to blocked marks the
// hold flag and drops the booking's reservations.
func (s *Storage) SetBookingStatus(ctx context.Context, id int64, to models.BookingStatus) (storage.StatusChange, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return storage.StatusChange{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanBooking(tx.QueryRowContext(ctx, `SELECT`+bookingColumns+` FROM bookings WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.StatusChange{}, storage.ErrNotFound
		}
		return storage.StatusChange{}, fmt.Errorf("failed to lock booking: %w", err)
	}

	if !current.Status.CanTransitionTo(to) {
		return storage.StatusChange{}, &storage.InvalidTransitionError{From: current.Status, To: to}
	}

	if current.Status == to && current.IsBlocked == (to == models.StatusBlocked) {
		return storage.StatusChange{Booking: current}, nil
	}

	blocked := to == models.StatusBlocked
	err = tx.QueryRowContext(ctx, `
		UPDATE bookings SET status = $2, is_blocked = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`, id, to, blocked).Scan(&current.UpdatedAt)
	if err != nil {
		return storage.StatusChange{}, fmt.Errorf("failed to update booking status: %w", err)
	}

	if blocked {
		if _, err = tx.ExecContext(ctx, `DELETE FROM reservations WHERE booking_id = $1`, id); err != nil {
			return storage.StatusChange{}, fmt.Errorf("failed to release reservations: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return storage.StatusChange{}, fmt.Errorf("failed to commit status: %w", err)
	}

	current.Status = to
	current.IsBlocked = blocked

	return storage.StatusChange{Booking: current, Changed: true}, nil
}

func (s *Storage) DeleteBooking(ctx context.Context, id int64) error {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// checkSlot is the write-time repeat of the conflict and equipment checks.
func checkSlot(ctx context.Context, tx *sql.Tx, b *models.Booking, excludeID int64, equipmentIDs []int64) error {
	existing, err := bookingsByDate(ctx, tx, b.Date)
	if err != nil {
		return err
	}

	res := conflict.Detect(existing, conflict.Candidate{Date: b.Date, Window: b.Window(), ExcludeID: excludeID})
	if res.HasConflict {
		return &storage.SlotTakenError{Titles: res.Conflicting}
	}

	if len(equipmentIDs) == 0 {
		return nil
	}

	reservations, err := reservationsByDate(ctx, tx, b.Date)
	if err != nil {
		return err
	}

	if taken := reservation.Unavailable(reservations, b.Date, b.Window(), equipmentIDs, excludeID); len(taken) > 0 {
		return &storage.EquipmentTakenError{IDs: taken}
	}

	return nil
}

func insertReservations(ctx context.Context, tx *sql.Tx, b *models.Booking, equipmentIDs []int64) error {
	seen := make(map[int64]bool, len(equipmentIDs))

	for _, equipmentID := range equipmentIDs {
		if seen[equipmentID] {
			continue
		}
		seen[equipmentID] = true

		_, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (booking_id, equipment_id, booking_date, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5)`,
			b.ID, equipmentID, formatDate(b.Date), b.Start.String(), b.End.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to reserve equipment %d: %w", equipmentID, mapWriteErr(err))
		}
	}

	return nil
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
