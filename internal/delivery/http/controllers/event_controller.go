package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"eventsapi/internal/delivery/http/helpers"
	"eventsapi/internal/domain"
)

// scheduleLayouts are the accepted schedule formats, tried in order. Zoneless values are UTC.
var scheduleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseSchedule(s string) (time.Time, error) {
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("schedule %q is not a valid date", s)
}

func parseRigorRank(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("rigor_rank %q is not an integer", s)
	}
	return n, nil
}

// CreateEventRequest is the body for POST /events. Every field is required.
type CreateEventRequest struct {
	Name        string `json:"name"`
	Tagline     string `json:"tagline"`
	Schedule    string `json:"schedule" example:"2024-01-01"`
	Description string `json:"description"`
	Moderator   string `json:"moderator"`
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
	RigorRank   string `json:"rigor_rank" example:"3"`

	schedule  time.Time
	rigorRank int
}

func (c *CreateEventRequest) bind(f *helpers.Form) {
	c.Name = f.Get("name")
	c.Tagline = f.Get("tagline")
	c.Schedule = f.Get("schedule")
	c.Description = f.Get("description")
	c.Moderator = f.Get("moderator")
	c.Category = f.Get("category")
	c.SubCategory = f.Get("sub_category")
	c.RigorRank = f.Get("rigor_rank")
}

// Validate implements helpers.Validator. Missing fields are reported together;
// schedule and rigor_rank are parsed only when present.
func (c *CreateEventRequest) Validate() []string {
	var missing []string
	for _, field := range []struct{ name, value string }{
		{"name", c.Name},
		{"tagline", c.Tagline},
		{"schedule", c.Schedule},
		{"description", c.Description},
		{"moderator", c.Moderator},
		{"category", c.Category},
		{"sub_category", c.SubCategory},
		{"rigor_rank", c.RigorRank},
	} {
		if field.value == "" {
			missing = append(missing, field.name)
		}
	}
	if len(missing) > 0 {
		return []string{fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", "))}
	}

	var errs []string
	var err error
	if c.schedule, err = parseSchedule(c.Schedule); err != nil {
		errs = append(errs, err.Error())
	}
	if c.rigorRank, err = parseRigorRank(c.RigorRank); err != nil {
		errs = append(errs, err.Error())
	}
	return errs
}

func (c *CreateEventRequest) event() *domain.Event {
	return domain.NewEvent(c.Name, c.Tagline, c.schedule, c.Description, c.Moderator, c.Category, c.SubCategory, c.rigorRank)
}

// UpdateEventRequest is the body for PUT /events/{id}. Every field is optional;
// empty values count as absent.
type UpdateEventRequest struct {
	Name        string `json:"name,omitempty"`
	Tagline     string `json:"tagline,omitempty"`
	Schedule    string `json:"schedule,omitempty"`
	Description string `json:"description,omitempty"`
	Moderator   string `json:"moderator,omitempty"`
	Category    string `json:"category,omitempty"`
	SubCategory string `json:"sub_category,omitempty"`
	RigorRank   string `json:"rigor_rank,omitempty"`

	update domain.EventUpdate
}

func (u *UpdateEventRequest) bind(f *helpers.Form) {
	u.Name = f.Get("name")
	u.Tagline = f.Get("tagline")
	u.Schedule = f.Get("schedule")
	u.Description = f.Get("description")
	u.Moderator = f.Get("moderator")
	u.Category = f.Get("category")
	u.SubCategory = f.Get("sub_category")
	u.RigorRank = f.Get("rigor_rank")
}

// Validate implements helpers.Validator and builds the domain update from the supplied fields.
func (u *UpdateEventRequest) Validate() []string {
	u.update = domain.EventUpdate{
		Name:        optional(u.Name),
		Tagline:     optional(u.Tagline),
		Description: optional(u.Description),
		Moderator:   optional(u.Moderator),
		Category:    optional(u.Category),
		SubCategory: optional(u.SubCategory),
	}
	var errs []string
	if u.Schedule != "" {
		t, err := parseSchedule(u.Schedule)
		if err != nil {
			errs = append(errs, err.Error())
		} else {
			u.update.Schedule = &t
		}
	}
	if u.RigorRank != "" {
		n, err := parseRigorRank(u.RigorRank)
		if err != nil {
			errs = append(errs, err.Error())
		} else {
			u.update.RigorRank = &n
		}
	}
	return errs
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

type EventController struct {
	Logger    *slog.Logger
	Service   domain.EventService
	MaxMemory int64
}

func NewEventController(logger *slog.Logger, svc domain.EventService, maxMemory int64) *EventController {
	return &EventController{
		Logger:    logger,
		Service:   svc,
		MaxMemory: maxMemory,
	}
}

// GetEvents godoc
// @Summary Look up an event or list the latest events
// @Description With id, returns that event. Otherwise type=latest lists events by schedule, newest first.
// @Tags events
// @Produce json
// @Param id query string false "Event ID (24 hex characters)"
// @Param type query string false "Listing selector; only latest is supported"
// @Param limit query int false "Page size" default(5)
// @Param page query int false "Page number, 1-indexed" default(1)
// @Success 200 {object} domain.Event "single event when id is given, otherwise an array of events"
// @Failure 400 {object} helpers.APIError "code: bad_request"
// @Failure 404 {object} helpers.APIError "code: not_found"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /events [get]
func (c *EventController) GetEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if id := q.Get("id"); id != "" {
		c.getEvent(w, r, id)
		return
	}
	if q.Has("type") {
		c.listLatest(w, r, q.Get("type"))
		return
	}
	helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "event id is required", "")
}

// GetEventByID godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param id path string true "Event ID (24 hex characters)"
// @Success 200 {object} domain.Event
// @Failure 400 {object} helpers.APIError "code: bad_request"
// @Failure 404 {object} helpers.APIError "code: not_found"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /events/{id} [get]
func (c *EventController) GetEventByID(w http.ResponseWriter, r *http.Request) {
	c.getEvent(w, r, r.PathValue("id"))
}

func (c *EventController) getEvent(w http.ResponseWriter, r *http.Request, id string) {
	event, err := c.Service.GetEvent(r.Context(), id)
	if err != nil {
		c.writeServiceError(w, r, err, "Failed to fetch event")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, event)
}

func (c *EventController) listLatest(w http.ResponseWriter, r *http.Request, listType string) {
	if listType != "latest" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "unsupported type", fmt.Sprintf("type %q is not supported; use latest", listType))
		return
	}
	params, err := helpers.ParsePagination(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error(), "")
		return
	}
	events, err := c.Service.ListLatestEvents(r.Context(), params)
	if err != nil {
		c.writeServiceError(w, r, err, "Failed to fetch events")
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSON(w, http.StatusOK, events)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Accepts multipart/form-data, urlencoded or JSON. An optional image goes in the files[image] field.
// @Tags events
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param event body CreateEventRequest true "Event fields"
// @Param files[image] formData file false "Event image"
// @Success 200 {object} helpers.CreatedResponse
// @Failure 400 {object} helpers.APIError "code: bad_request"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	form := helpers.ParseAndValidate(w, r, c.MaxMemory, &req, req.bind)
	if form == nil {
		return
	}
	upload, closeUpload, ok := c.openUpload(w, form)
	if !ok {
		return
	}
	defer closeUpload()

	event := req.event()
	if err := c.Service.CreateEvent(r.Context(), event, upload); err != nil {
		c.writeServiceError(w, r, err, "Failed to create event")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.CreatedResponse{EventID: event.ID})
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Merges the supplied fields into the event. Empty values are ignored. An uploaded image replaces files.
// @Tags events
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param id path string true "Event ID (24 hex characters)"
// @Param event body UpdateEventRequest false "Fields to change"
// @Param files[image] formData file false "Replacement image"
// @Success 200 {object} helpers.MessageResponse
// @Failure 400 {object} helpers.APIError "code: bad_request"
// @Failure 404 {object} helpers.APIError "code: not_found"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /events/{id} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req UpdateEventRequest
	form := helpers.ParseAndValidate(w, r, c.MaxMemory, &req, req.bind)
	if form == nil {
		return
	}
	upload, closeUpload, ok := c.openUpload(w, form)
	if !ok {
		return
	}
	defer closeUpload()

	if err := c.Service.UpdateEvent(r.Context(), id, req.update, upload); err != nil {
		c.writeServiceError(w, r, err, "Failed to update event")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.MessageResponse{Message: "Event updated successfully"})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Removes the event. Uploaded images are left in storage.
// @Tags events
// @Produce json
// @Param id path string true "Event ID (24 hex characters)"
// @Success 200 {object} helpers.MessageResponse
// @Failure 400 {object} helpers.APIError "code: bad_request"
// @Failure 404 {object} helpers.APIError "code: not_found"
// @Failure 500 {object} helpers.APIError "code: internal_error"
// @Router /events/{id} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
		c.writeServiceError(w, r, err, "Failed to delete event")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, helpers.MessageResponse{Message: "Event deleted successfully"})
}

// Health godoc
// @Summary Liveness and store connectivity
// @Tags health
// @Produce json
// @Success 200 {object} controllers.HealthResponse
// @Failure 503 {object} helpers.APIError "code: service_unavailable"
// @Router /health [get]
func (c *EventController) Health(w http.ResponseWriter, r *http.Request) {
	if err := c.Service.Ping(r.Context()); err != nil {
		c.Logger.WarnContext(r.Context(), "health check failed", "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeServiceUnavailable, "store unavailable", err.Error())
		return
	}
	helpers.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// openUpload opens the form's image, if any. On failure it writes a 400 and returns ok=false.
func (c *EventController) openUpload(w http.ResponseWriter, form *helpers.Form) (*domain.Upload, func(), bool) {
	if form.Image == nil {
		return nil, func() {}, true
	}
	file, err := form.Image.Open()
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid image upload", err.Error())
		return nil, nil, false
	}
	upload := &domain.Upload{Filename: form.Image.Filename, Content: file}
	return upload, func() { _ = file.Close() }, true
}

func (c *EventController) writeServiceError(w http.ResponseWriter, r *http.Request, err error, message string) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid event id", "")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error(), "")
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "Event not found", "")
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, message, err.Error())
	}
}
