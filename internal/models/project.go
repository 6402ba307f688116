package models

import "time"

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Project struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	ClientName string     `json:"client_name,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
}

type Task struct {
	ID       int64        `json:"id"`
	Title    string       `json:"title"`
	Assignee string       `json:"assignee,omitempty"`
	Priority TaskPriority `json:"priority"`
	DueDate  *time.Time   `json:"due_date,omitempty"`
	Done     bool         `json:"done"`
}
