package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studioBooker/internal/lib/timeslot"
	"studioBooker/internal/models"
)

// ProjectsDueBetween returns projects with a due date inside [from, to].
func (s *Storage) ProjectsDueBetween(ctx context.Context, from, to time.Time) ([]models.Project, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, name, client_name, due_date
		FROM projects
		WHERE due_date BETWEEN $1 AND $2
		ORDER BY due_date ASC, id ASC`, formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}
	defer rows.Close()

	projects := make([]models.Project, 0)
	for rows.Next() {
		var (
			p   models.Project
			due sql.NullTime
		)
		if err = rows.Scan(&p.ID, &p.Name, &p.ClientName, &due); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if due.Valid {
			d := timeslot.DateOnly(due.Time)
			p.DueDate = &d
		}
		projects = append(projects, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// TasksDueBetween returns open tasks due inside [from, to]. An empty
// assignee returns everyone's tasks.
func (s *Storage) TasksDueBetween(ctx context.Context, from, to time.Time, assignee string) ([]models.Task, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, title, assignee, priority, due_date, done
		FROM tasks
		WHERE due_date BETWEEN $1 AND $2
			AND NOT done
			AND ($3 = '' OR assignee = $3)
		ORDER BY due_date ASC, id ASC`, formatDate(from), formatDate(to), assignee)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		var (
			t   models.Task
			due sql.NullTime
		)
		if err = rows.Scan(&t.ID, &t.Title, &t.Assignee, &t.Priority, &due, &t.Done); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if due.Valid {
			d := timeslot.DateOnly(due.Time)
			t.DueDate = &d
		}
		tasks = append(tasks, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}
