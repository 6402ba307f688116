package calendar

import (
	"context"
	"fmt"
	"time"

	"studioBooker/internal/models"
	"studioBooker/internal/scheduling/status"
)

type BookingReader interface {
	BookingsInRange(ctx context.Context, from, to time.Time) ([]models.Booking, error)
	ReservationsInRange(ctx context.Context, from, to time.Time) ([]models.Reservation, error)
}

type ProjectReader interface {
	ProjectsDueBetween(ctx context.Context, from, to time.Time) ([]models.Project, error)
}

type TaskReader interface {
	TasksDueBetween(ctx context.Context, from, to time.Time, assignee string) ([]models.Task, error)
}

// StudioSource maps bookings to editable events annotated with the
// equipment they hold and their display status.
type StudioSource struct {
	store    BookingReader
	resolver *status.Resolver
}

func NewStudioSource(store BookingReader, resolver *status.Resolver) *StudioSource {
	return &StudioSource{store: store, resolver: resolver}
}

func (s *StudioSource) Kind() models.EventSource { return models.SourceStudio }

func (s *StudioSource) Events(ctx context.Context, r Range) ([]models.CalendarEvent, error) {
	bookings, err := s.store.BookingsInRange(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}

	reservations, err := s.store.ReservationsInRange(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}

	equipment := make(map[int64][]string)
	for _, res := range reservations {
		equipment[res.BookingID] = append(equipment[res.BookingID], res.EquipmentName)
	}

	events := make([]models.CalendarEvent, 0, len(bookings))
	for _, b := range bookings {
		start, end := b.Start, b.End
		resolved := s.resolver.Resolve(b)

		blocked := equipment[b.ID]
		if blocked == nil {
			blocked = []string{}
		}

		events = append(events, models.CalendarEvent{
			ID:       fmt.Sprintf("booking-%d", b.ID),
			Title:    b.DisplayTitle(),
			Date:     b.Date,
			Start:    &start,
			End:      &end,
			Source:   models.SourceStudio,
			Color:    b.Kind.Color(),
			Editable: true,
			Payload: map[string]any{
				"booking_id":        b.ID,
				"kind":              b.Kind,
				"status":            b.Status,
				"display_status":    resolved.Display,
				"is_upcoming":       resolved.IsUpcoming,
				"is_past":           resolved.IsPast,
				"is_blocked":        b.Blocked(),
				"equipment_blocked": blocked,
			},
		})
	}

	return events, nil
}

// ProjectSource surfaces each project only as a milestone on its due date.
type ProjectSource struct {
	store ProjectReader
}

func NewProjectSource(store ProjectReader) *ProjectSource {
	return &ProjectSource{store: store}
}

func (s *ProjectSource) Kind() models.EventSource { return models.SourceProject }

func (s *ProjectSource) Events(ctx context.Context, r Range) ([]models.CalendarEvent, error) {
	projects, err := s.store.ProjectsDueBetween(ctx, r.From, r.To)
	if err != nil {
		return nil, err
	}

	events := make([]models.CalendarEvent, 0, len(projects))
	for _, p := range projects {
		if p.DueDate == nil {
			continue
		}
		events = append(events, models.CalendarEvent{
			ID:     fmt.Sprintf("project-%d", p.ID),
			Title:  p.Name + " due",
			Date:   *p.DueDate,
			Source: models.SourceProject,
			Color:  models.SourceProject.Color(),
			Payload: map[string]any{
				"project_id":  p.ID,
				"client_name": p.ClientName,
				"milestone":   true,
			},
		})
	}

	return events, nil
}

// TaskSource surfaces open tasks on their due date. An empty assignee
// means all tasks.
type TaskSource struct {
	store    TaskReader
	assignee string
}

func NewTaskSource(store TaskReader, assignee string) *TaskSource {
	return &TaskSource{store: store, assignee: assignee}
}

func (s *TaskSource) Kind() models.EventSource { return models.SourceTask }

func (s *TaskSource) Events(ctx context.Context, r Range) ([]models.CalendarEvent, error) {
	tasks, err := s.store.TasksDueBetween(ctx, r.From, r.To, s.assignee)
	if err != nil {
		return nil, err
	}

	events := make([]models.CalendarEvent, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		events = append(events, models.CalendarEvent{
			ID:     fmt.Sprintf("task-%d", t.ID),
			Title:  t.Title,
			Date:   *t.DueDate,
			Source: models.SourceTask,
			Color:  models.SourceTask.Color(),
			Payload: map[string]any{
				"task_id":  t.ID,
				"priority": t.Priority,
				"assignee": t.Assignee,
			},
		})
	}

	return events, nil
}
