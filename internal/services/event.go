package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"eventsapi/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	storage        domain.FileStorage
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	storage domain.FileStorage,
	logger *slog.Logger,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		storage:        storage,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	if !domain.ValidID(id) {
		return nil, domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListLatestEvents(ctx context.Context, params domain.PaginationParams) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.ListLatest(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*domain.Event{}
	}
	return events, nil
}

// CreateEvent stores the optional image, then inserts the event. event.ID is set on success.
func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event, image *domain.Upload) error {
	if missing := missingFields(event); len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event.Type = domain.EventType
	if event.Attendees == nil {
		event.Attendees = []string{}
	}

	ref, err := s.saveImage(ctx, image)
	if err != nil {
		return err
	}
	if ref != "" {
		event.Files = &domain.EventFiles{Image: ref}
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.discardImage(ctx, ref)
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id string, update domain.EventUpdate, image *domain.Upload) error {
	if !domain.ValidID(id) {
		return domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	ref, err := s.saveImage(ctx, image)
	if err != nil {
		return err
	}
	if ref != "" {
		update.Files = &domain.EventFiles{Image: ref}
	}

	if err := s.eventRepo.Update(ctx, id, update); err != nil {
		s.discardImage(ctx, ref)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id string) error {
	if !domain.ValidID(id) {
		return domain.ErrInvalidID
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (s *eventService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.Ping(ctx)
}

func (s *eventService) saveImage(ctx context.Context, image *domain.Upload) (string, error) {
	if image == nil {
		return "", nil
	}
	ref, err := s.storage.Save(ctx, image.Filename, image.Content)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return ref, nil
}

// discardImage removes a file stored for a request whose write failed.
func (s *eventService) discardImage(ctx context.Context, ref string) {
	if ref == "" {
		return
	}
	// the request context may already be done; cleanup gets its own deadline
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.contextTimeout)
	defer cancel()
	if err := s.storage.Remove(cleanupCtx, ref); err != nil {
		s.logger.WarnContext(ctx, "remove orphaned upload", "ref", ref, "err", err)
	}
}

func missingFields(e *domain.Event) []string {
	var missing []string
	check := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	check("name", e.Name)
	check("tagline", e.Tagline)
	if e.Schedule.IsZero() {
		missing = append(missing, "schedule")
	}
	check("description", e.Description)
	check("moderator", e.Moderator)
	check("category", e.Category)
	check("sub_category", e.SubCategory)
	return missing
}
