package domain

import (
	"context"
	"io"
	"time"
)

// EventType is the fixed marker stored in the type field of every event record.
const EventType = "event"

// Event represents one record of the events collection.
// swagger:model Event
type Event struct {
	ID          string      `json:"_id"`
	Type        string      `json:"type"`
	Name        string      `json:"name"`
	Tagline     string      `json:"tagline"`
	Schedule    time.Time   `json:"schedule"`
	Description string      `json:"description"`
	Files       *EventFiles `json:"files"`
	Moderator   string      `json:"moderator"`
	Category    string      `json:"category"`
	SubCategory string      `json:"sub_category"`
	RigorRank   int         `json:"rigor_rank"`
	Attendees   []string    `json:"attendees"`
}

// EventFiles holds references to files uploaded alongside an event.
type EventFiles struct {
	Image string `json:"image"`
}

// NewEvent returns a new Event with the type marker set and an empty attendee list.
// ID is set by the repository on create.
func NewEvent(name, tagline string, schedule time.Time, description, moderator, category, subCategory string, rigorRank int) *Event {
	return &Event{
		Type:        EventType,
		Name:        name,
		Tagline:     tagline,
		Schedule:    schedule,
		Description: description,
		Moderator:   moderator,
		Category:    category,
		SubCategory: subCategory,
		RigorRank:   rigorRank,
		Attendees:   []string{},
	}
}

// EventUpdate describes a partial update. Nil fields are left untouched.
type EventUpdate struct {
	Name        *string
	Tagline     *string
	Schedule    *time.Time
	Description *string
	Moderator   *string
	Category    *string
	SubCategory *string
	RigorRank   *int
	Files       *EventFiles
}

// IsEmpty reports whether the update carries no fields.
func (u EventUpdate) IsEmpty() bool {
	return u.Name == nil && u.Tagline == nil && u.Schedule == nil && u.Description == nil &&
		u.Moderator == nil && u.Category == nil && u.SubCategory == nil && u.RigorRank == nil &&
		u.Files == nil
}

// Apply merges the supplied fields of u into e.
func (u EventUpdate) Apply(e *Event) {
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Tagline != nil {
		e.Tagline = *u.Tagline
	}
	if u.Schedule != nil {
		e.Schedule = *u.Schedule
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.Moderator != nil {
		e.Moderator = *u.Moderator
	}
	if u.Category != nil {
		e.Category = *u.Category
	}
	if u.SubCategory != nil {
		e.SubCategory = *u.SubCategory
	}
	if u.RigorRank != nil {
		e.RigorRank = *u.RigorRank
	}
	if u.Files != nil {
		files := *u.Files
		e.Files = &files
	}
}

// Upload is a file received with a request, not yet persisted.
type Upload struct {
	Filename string
	Content  io.Reader
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	ListLatest(ctx context.Context, params PaginationParams) ([]*Event, error)
	Update(ctx context.Context, id string, update EventUpdate) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// EventService is the application boundary used by the HTTP controllers.
type EventService interface {
	GetEvent(ctx context.Context, id string) (*Event, error)
	ListLatestEvents(ctx context.Context, params PaginationParams) ([]*Event, error)
	CreateEvent(ctx context.Context, event *Event, image *Upload) error
	UpdateEvent(ctx context.Context, id string, update EventUpdate, image *Upload) error
	DeleteEvent(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// FileStorage persists uploaded files and returns a reference to store on the record.
type FileStorage interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
	Remove(ctx context.Context, ref string) error
}
