package postgres

import (
	"context"
	"fmt"
	"time"

	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
)

const reservationColumns = `
	r.id, r.booking_id, r.equipment_id, e.name, r.booking_date,
	to_char(r.start_time, 'HH24:MI'), to_char(r.end_time, 'HH24:MI')`

func (s *Storage) ListEquipment(ctx context.Context) ([]models.EquipmentItem, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, category, status
		FROM equipment
		ORDER BY category ASC, name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	defer rows.Close()

	items := make([]models.EquipmentItem, 0)
	for rows.Next() {
		var item models.EquipmentItem
		if err = rows.Scan(&item.ID, &item.Name, &item.Category, &item.Status); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating equipment: %w", err)
	}

	return items, nil
}

func (s *Storage) CreateEquipment(ctx context.Context, item *models.EquipmentItem) (int64, error) {
	err := s.DB.QueryRowContext(ctx, `
		INSERT INTO equipment (name, category, status)
		VALUES ($1, $2, $3)
		RETURNING id`, item.Name, item.Category, item.Status).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to create equipment: %w", err)
	}

	return item.ID, nil
}

func (s *Storage) ReservationsByDate(ctx context.Context, date time.Time) ([]models.Reservation, error) {
	return reservationsByDate(ctx, s.DB, date)
}

func reservationsByDate(ctx context.Context, q queryer, date time.Time) ([]models.Reservation, error) {
	query := `SELECT` + reservationColumns + `
		FROM reservations r
		JOIN equipment e ON e.id = r.equipment_id
		WHERE r.booking_date = $1
		ORDER BY r.start_time ASC, r.id ASC`

	return queryReservations(ctx, q, query, formatDate(date))
}

func (s *Storage) ReservationsByBooking(ctx context.Context, bookingID int64) ([]models.Reservation, error) {
	query := `SELECT` + reservationColumns + `
		FROM reservations r
		JOIN equipment e ON e.id = r.equipment_id
		WHERE r.booking_id = $1
		ORDER BY e.name ASC`

	return queryReservations(ctx, s.DB, query, bookingID)
}

func (s *Storage) ReservationsInRange(ctx context.Context, from, to time.Time) ([]models.Reservation, error) {
	query := `SELECT` + reservationColumns + `
		FROM reservations r
		JOIN equipment e ON e.id = r.equipment_id
		WHERE r.booking_date BETWEEN $1 AND $2
		ORDER BY r.booking_date ASC, r.start_time ASC, r.id ASC`

	return queryReservations(ctx, s.DB, query, formatDate(from), formatDate(to))
}

func queryReservations(ctx context.Context, q queryer, query string, args ...any) ([]models.Reservation, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservations: %w", err)
	}
	defer rows.Close()

	reservations := make([]models.Reservation, 0)
	for rows.Next() {
		var (
			r          models.Reservation
			start, end string
		)
		err = rows.Scan(&r.ID, &r.BookingID, &r.EquipmentID, &r.EquipmentName, &r.Date, &start, &end)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation: %w", err)
		}

		if r.Start, err = parseClock(start); err != nil {
			return nil, err
		}
		if r.End, err = parseClock(end); err != nil {
			return nil, err
		}
		r.Date = timeslot.DateOnly(r.Date)

		reservations = append(reservations, r)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservations: %w", err)
	}

	return reservations, nil
}
