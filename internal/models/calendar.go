package models

import (
	"encoding/json"
	"time"

	"studioBooker/internal/lib/timeslot"
)

type EventSource string

const (
	SourceStudio   EventSource = "studio"
	SourceProject  EventSource = "project"
	SourceTask     EventSource = "task"
	SourceExternal EventSource = "external"
)

// Sources is the fixed order in which calendar sources are merged.
var Sources = []EventSource{SourceStudio, SourceProject, SourceTask, SourceExternal}

func (s EventSource) Valid() bool {
	switch s {
	case SourceStudio, SourceProject, SourceTask, SourceExternal:
		return true
	}
	return false
}

// Rank is the position of the source in Sources.
func (s EventSource) Rank() int {
	switch s {
	case SourceStudio:
		return 0
	case SourceProject:
		return 1
	case SourceTask:
		return 2
	case SourceExternal:
		return 3
	}
	return len(Sources)
}

func (s EventSource) Color() string {
	switch s {
	case SourceStudio:
		return "#6366f1"
	case SourceProject:
		return "#0ea5e9"
	case SourceTask:
		return "#f97316"
	case SourceExternal:
		return "#9ca3af"
	}
	return "#9ca3af"
}

// CalendarEvent is a read-only projection built fresh on every calendar read.
type CalendarEvent struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Date     time.Time       `json:"-"`
	Start    *timeslot.Clock `json:"start_time,omitempty"`
	End      *timeslot.Clock `json:"end_time,omitempty"`
	Source   EventSource     `json:"source"`
	Color    string          `json:"color"`
	Editable bool            `json:"editable"`
	Payload  map[string]any  `json:"payload,omitempty"`
}

// DateString exposes the day in YYYY-MM-DD for JSON payloads.
func (e CalendarEvent) DateString() string {
	return timeslot.FormatDate(e.Date)
}

func (e CalendarEvent) MarshalJSON() ([]byte, error) {
	type alias CalendarEvent
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias: alias(e), Date: e.DateString()})
}
