package google

import (
	"context"
	"fmt"
	"time"

	"github.com/familyhub/familyhub/pkg/event"
	"github.com/familyhub/familyhub/pkg/user"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type CalendarItem struct {
	ID      string
	Summary string
	Primary bool
}

type Service interface {
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	// ImportEvents copies the events of a Google calendar in [from, to) into the family calendar.
	// Events imported before are updated.
	ImportEvents(ctx context.Context, calendarId string, from, to time.Time) (event.ImportResult, error)
}

// EventImporter stores imported events, matching them by their external id.
type EventImporter func(ctx context.Context, events []event.Event) (event.ImportResult, error)

type ServiceImpl struct {
	auth     *GoogleAuth
	importer EventImporter
	// endpoint overrides the Google Calendar API address when set.
	endpoint string
}

func NewService(auth *GoogleAuth, importer EventImporter) *ServiceImpl {
	return &ServiceImpl{
		auth:     auth,
		importer: importer,
	}
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	googleService, err := s.prepareGoogleService(ctx, userId)
	if err != nil {
		return nil, err
	}
	calendars, err := googleService.CalendarList.List().Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %w", err)
		log.Error(err)
		return nil, err
	}
	googleCalendars := make([]CalendarItem, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		googleCalendars = append(googleCalendars, CalendarItem{
			ID:      cal.Id,
			Summary: cal.Summary,
			Primary: cal.Primary,
		})
	}
	return googleCalendars, nil
}

func (s *ServiceImpl) ImportEvents(ctx context.Context, calendarId string, from, to time.Time) (event.ImportResult, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return event.ImportResult{}, fmt.Errorf("failed to get current user: %w", err)
	}

	googleService, err := s.prepareGoogleService(ctx, currentUser.Id)
	if err != nil {
		return event.ImportResult{}, err
	}
	events, err := newGoogleCalendar(googleService, calendarId).GetEvents(ctx, from, to, currentUser.Settings.Location())
	if err != nil {
		return event.ImportResult{}, err
	}

	result, err := s.importer(ctx, events)
	if err != nil {
		return event.ImportResult{}, err
	}
	log.Infof("Imported Google calendar %s: %d created, %d updated, %d skipped", calendarId, result.Created, result.Updated, result.Skipped)
	return result, nil
}

func (s *ServiceImpl) prepareGoogleService(ctx context.Context, userId int) (*calendar.Service, error) {
	client, err := s.auth.getClient(ctx, userId)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Google auth client: %w", err)
		log.Error(err)
		return nil, err
	}
	if client == nil {
		log.Debug("user is unauthenticated, authentication is required")
		return nil, ErrUnathenticated
	}

	options := []option.ClientOption{option.WithHTTPClient(client)}
	if s.endpoint != "" {
		options = append(options, option.WithEndpoint(s.endpoint))
	}
	service, err := calendar.NewService(ctx, options...)
	if err != nil {
		err := fmt.Errorf("unable to retrieve Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}

	return service, nil
}
