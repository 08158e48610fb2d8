package event

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/familyhub/familyhub/internal/event_bus"
	"github.com/familyhub/familyhub/internal/utils"
	"github.com/familyhub/familyhub/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultUpcomingLimit = 5
	MaxUpcomingLimit     = 100
	upcomingHorizon      = 365 * 24 * time.Hour
)

type Service interface {
	Create(ctx context.Context, event Event) (Event, error)
	Get(ctx context.Context, uid string) (Event, error)
	Update(ctx context.Context, event Event) (Event, error)
	Delete(ctx context.Context, uid string) error
	// List returns the occurrences overlapping [from, to) in the user's time zone.
	List(ctx context.Context, from, to time.Time) ([]Occurrence, error)
	// GetUpcoming returns the next occurrences starting from now, at most limit of them.
	GetUpcoming(ctx context.Context, limit int) ([]Occurrence, error)
	// Import stores events coming from another calendar. Events are matched by ExternalId;
	// all of them are stored in one transaction.
	Import(ctx context.Context, events []Event) (ImportResult, error)
}

type ImportResult struct {
	Created int
	Updated int
	Skipped int
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	s := &ServiceImpl{repo: repo, eventBus: eventBus, clock: utils.SystemClock{}}
	event_bus.SubscribeTyped[event_bus.FamilyMemberDeleted](eventBus, event_bus.FamilyMemberDeletedType,
		func(e event_bus.EventT[event_bus.FamilyMemberDeleted]) error {
			return s.unassignMember(e.Context(), e.Data.Uid)
		})
	return s
}

func (s *ServiceImpl) Create(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	event = normalize(event)
	if err := event.Validate(); err != nil {
		return Event{}, err
	}
	event.UID = uuid.NewString()

	created, err := s.repo.Create(ctx, userId, event)
	if err != nil {
		return Event{}, err
	}
	s.publishChange(ctx, event_bus.ChangeCreated, created)
	return created, nil
}

func (s *ServiceImpl) Get(ctx context.Context, uid string) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := uuid.Parse(uid); err != nil {
		return Event{}, ErrEventNotFound
	}
	return s.repo.Get(ctx, userId, uid)
}

func (s *ServiceImpl) Update(ctx context.Context, event Event) (Event, error) {
	if _, err := s.Get(ctx, event.UID); err != nil {
		return Event{}, err
	}
	event = normalize(event)
	if err := event.Validate(); err != nil {
		return Event{}, err
	}
	userId, _ := user.CurrentId(ctx)

	updated, err := s.repo.Update(ctx, userId, event)
	if err != nil {
		return Event{}, err
	}
	s.publishChange(ctx, event_bus.ChangeUpdated, updated)
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, uid string) error {
	event, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	userId, _ := user.CurrentId(ctx)
	if err := s.repo.Delete(ctx, userId, uid); err != nil {
		return err
	}
	s.publishChange(ctx, event_bus.ChangeDeleted, event)
	return nil
}

func (s *ServiceImpl) List(ctx context.Context, from, to time.Time) ([]Occurrence, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if !to.After(from) {
		return []Occurrence{}, nil
	}

	events, err := s.repo.FindInRange(ctx, currentUser.Id, from, to)
	if err != nil {
		return nil, err
	}
	return expandAll(events, from, to, currentUser.Settings.Location()), nil
}

func (s *ServiceImpl) GetUpcoming(ctx context.Context, limit int) ([]Occurrence, error) {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	limit = min(limit, MaxUpcomingLimit)

	now := s.clock.Now()
	occurrences, err := s.List(ctx, now, now.Add(upcomingHorizon))
	if err != nil {
		return nil, err
	}

	upcoming := make([]Occurrence, 0, limit)
	for _, occurrence := range occurrences {
		if occurrence.Start.Before(now) {
			continue
		}
		upcoming = append(upcoming, occurrence)
		if len(upcoming) == limit {
			break
		}
	}
	return upcoming, nil
}

func (s *ServiceImpl) Import(ctx context.Context, events []Event) (ImportResult, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("failed to get current user: %w", err)
	}

	var result ImportResult
	var changes []event_bus.CalendarEventChanged
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		result = ImportResult{}
		changes = changes[:0]
		for _, event := range events {
			event = normalize(event)
			if err := event.Validate(); err != nil || event.ExternalId == "" {
				log.Debugf("skipping imported event %q: %v", event.Title, err)
				result.Skipped++
				continue
			}

			existing, err := repo.GetByExternalId(ctx, userId, event.ExternalId)
			switch {
			case errors.Is(err, ErrEventNotFound):
				event.UID = uuid.NewString()
				created, err := repo.Create(ctx, userId, event)
				if err != nil {
					return err
				}
				result.Created++
				changes = append(changes, changeOf(event_bus.ChangeCreated, created))
			case err != nil:
				return err
			default:
				event.UID = existing.UID
				// the assignee set in this calendar survives a new import
				if event.AssignedTo == "" {
					event.AssignedTo = existing.AssignedTo
				}
				updated, err := repo.Update(ctx, userId, event)
				if err != nil {
					return err
				}
				result.Updated++
				changes = append(changes, changeOf(event_bus.ChangeUpdated, updated))
			}
		}
		return nil
	})
	if err != nil {
		log.Errorf("failed to import events: %v", err)
		return ImportResult{}, fmt.Errorf("failed to import events: %w", err)
	}

	for _, change := range changes {
		s.publish(ctx, change)
	}
	log.Infof("imported events: %d created, %d updated, %d skipped", result.Created, result.Updated, result.Skipped)
	return result, nil
}

func (s *ServiceImpl) unassignMember(ctx context.Context, memberUid string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	count, err := s.repo.UnassignMember(ctx, userId, memberUid)
	if err != nil {
		return err
	}
	log.Debugf("unassigned %d events from family member %s", count, memberUid)
	return nil
}

func (s *ServiceImpl) publishChange(ctx context.Context, kind event_bus.ChangeKind, event Event) {
	s.publish(ctx, changeOf(kind, event))
}

func (s *ServiceImpl) publish(ctx context.Context, change event_bus.CalendarEventChanged) {
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.CalendarEventChangedType, change))
	if err != nil {
		log.Errorf("failed to publish change of event %s: %v", change.UID, err)
	}
}

func changeOf(kind event_bus.ChangeKind, event Event) event_bus.CalendarEventChanged {
	return event_bus.CalendarEventChanged{
		Kind:       kind,
		UID:        event.UID,
		Title:      event.Title,
		StartTime:  event.StartTime,
		EndTime:    event.EndTime,
		AssignedTo: event.AssignedTo,
	}
}

func normalize(event Event) Event {
	event.Title = strings.TrimSpace(event.Title)
	event.Description = strings.TrimSpace(event.Description)
	event.Location = strings.TrimSpace(event.Location)
	event.AssignedTo = strings.TrimSpace(event.AssignedTo)
	event.Recurrence = strings.TrimSpace(event.Recurrence)
	return event
}
