package ical

import (
	"context"
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/familyhub/familyhub/internal/event_bus"
	"github.com/familyhub/familyhub/internal/test_utils"
	"github.com/familyhub/familyhub/internal/utils"
	"github.com/familyhub/familyhub/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "time/tzdata"
)

var warsaw, _ = time.LoadLocation("Europe/Warsaw")

var familyCalendar = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//School//Timetable//EN",
	"BEGIN:VEVENT",
	"UID:swim-1",
	"DTSTAMP:20240301T100000Z",
	"DTSTART:20240305T160000Z",
	"DTEND:20240305T170000Z",
	"SUMMARY:Swimming",
	"LOCATION:Pool",
	"RRULE:FREQ=WEEKLY;COUNT=4",
	"X-FAMILYHUB-ASSIGNED-TO:Emma",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:holiday-1",
	"DTSTAMP:20240301T100000Z",
	"DTSTART;VALUE=DATE:20240308",
	"DTEND;VALUE=DATE:20240310",
	"SUMMARY:Long weekend",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:swim-1",
	"DTSTAMP:20240301T100000Z",
	"RECURRENCE-ID:20240312T160000Z",
	"DTSTART:20240312T170000Z",
	"DTEND:20240312T180000Z",
	"SUMMARY:Swimming (late)",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:broken-1",
	"DTSTAMP:20240301T100000Z",
	"SUMMARY:No start",
	"END:VEVENT",
	"END:VCALENDAR",
	"",
}, "\r\n")

func setupService() (context.Context, *Service, event.Service) {
	events := event.NewService(event.NewRepositoryStub(), event_bus.NewEventBus())
	service := NewService(events)
	service.clock = &utils.MockClock{FixedNow: time.Date(2024, 3, 6, 12, 0, 0, 0, warsaw)}
	return test_utils.TestUserContext(), service, events
}

func findBySummary(t *testing.T, cal *ics.Calendar, summary string) *ics.VEvent {
	for _, ve := range cal.Events() {
		if propertyValue(ve, ics.ComponentPropertySummary) == summary {
			return ve
		}
	}
	t.Fatalf("event %q not exported", summary)
	return nil
}

func TestService_Import(t *testing.T) {

	t.Run("should store timed, recurring and all-day events", func(t *testing.T) {
		// given
		ctx, service, events := setupService()

		// when
		result, err := service.Import(ctx, strings.NewReader(familyCalendar))

		// then
		require.NoError(t, err)
		assert.Equal(t, event.ImportResult{Created: 2, Updated: 0, Skipped: 2}, result)

		occurrences, err := events.List(ctx, time.Date(2024, 3, 4, 0, 0, 0, 0, warsaw), time.Date(2024, 3, 11, 0, 0, 0, 0, warsaw))
		require.NoError(t, err)
		require.Len(t, occurrences, 2)

		swimming := occurrences[0].Event
		assert.Equal(t, "Swimming", swimming.Title)
		assert.Equal(t, "Pool", swimming.Location)
		assert.Equal(t, "Emma", swimming.AssignedTo)
		assert.Equal(t, "FREQ=WEEKLY;COUNT=4", swimming.Recurrence)
		assert.Equal(t, "ical:swim-1", swimming.ExternalId)
		assert.True(t, time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC).Equal(occurrences[0].Start))

		holiday := occurrences[1]
		assert.Equal(t, "Long weekend", holiday.Event.Title)
		assert.True(t, time.Date(2024, 3, 8, 0, 0, 0, 0, warsaw).Equal(holiday.Start))
		assert.True(t, time.Date(2024, 3, 10, 0, 0, 0, 0, warsaw).Equal(holiday.End))
	})

	t.Run("should update events when the same calendar is imported again", func(t *testing.T) {
		// given
		ctx, service, _ := setupService()
		_, err := service.Import(ctx, strings.NewReader(familyCalendar))
		require.NoError(t, err)

		// when
		result, err := service.Import(ctx, strings.NewReader(strings.ReplaceAll(familyCalendar, "LOCATION:Pool", "LOCATION:City pool")))

		// then
		require.NoError(t, err)
		assert.Equal(t, event.ImportResult{Created: 0, Updated: 2, Skipped: 2}, result)
	})

	t.Run("should reject a file that is not a calendar", func(t *testing.T) {
		ctx, service, _ := setupService()

		_, err := service.Import(ctx, strings.NewReader("this is not a calendar"))

		assert.ErrorIs(t, err, ErrInvalidCalendar)
	})

	t.Run("should require a user in context", func(t *testing.T) {
		_, service, _ := setupService()

		_, err := service.Import(context.Background(), strings.NewReader(familyCalendar))

		assert.Error(t, err)
	})
}

func TestService_Export(t *testing.T) {

	t.Run("should export recurring events once with their rule", func(t *testing.T) {
		// given
		ctx, service, events := setupService()
		start := time.Date(2024, 3, 4, 17, 0, 0, 0, warsaw)
		_, err := events.Create(ctx, event.Event{
			Title:      "Piano",
			StartTime:  start,
			EndTime:    start.Add(time.Hour),
			AssignedTo: "Sarah",
			Recurrence: "weekly",
		})
		require.NoError(t, err)
		_, err = events.Create(ctx, event.Event{
			Title:       "Dentist",
			Description: "Bring the card",
			StartTime:   time.Date(2024, 3, 6, 10, 0, 0, 0, warsaw),
			EndTime:     time.Date(2024, 3, 6, 10, 30, 0, 0, warsaw),
			Color:       "#FF6B6B",
		})
		require.NoError(t, err)

		// when
		exported, err := service.Export(ctx, time.Date(2024, 3, 4, 0, 0, 0, 0, warsaw), time.Date(2024, 3, 18, 0, 0, 0, 0, warsaw))

		// then
		require.NoError(t, err)
		cal, err := ics.ParseCalendar(strings.NewReader(exported))
		require.NoError(t, err)
		require.Len(t, cal.Events(), 2)

		piano := findBySummary(t, cal, "Piano")
		assert.Equal(t, "FREQ=WEEKLY", propertyValue(piano, ics.ComponentPropertyRrule))
		assert.Equal(t, "Sarah", propertyValue(piano, assigneeProperty))
		pianoStart, err := piano.GetStartAt()
		require.NoError(t, err)
		assert.True(t, start.Equal(pianoStart))
		dtStart := piano.GetProperty(ics.ComponentPropertyDtStart)
		require.NotNil(t, dtStart)
		assert.Equal(t, "20240304T170000", dtStart.Value)
		assert.Equal(t, []string{"Europe/Warsaw"}, dtStart.ICalParameters[string(ics.ParameterTzid)])
		assert.Contains(t, exported, "DTSTART;TZID=Europe/Warsaw:20240304T170000")

		dentist := findBySummary(t, cal, "Dentist")
		assert.Equal(t, "Bring the card", propertyValue(dentist, ics.ComponentPropertyDescription))
		assert.Equal(t, "#FF6B6B", propertyValue(dentist, colorProperty))
		assert.Empty(t, propertyValue(dentist, ics.ComponentPropertyRrule))
		assert.Equal(t, "20240306T090000Z", propertyValue(dentist, ics.ComponentPropertyDtStart))
	})

	t.Run("should keep the uid of imported events", func(t *testing.T) {
		// given
		ctx, service, _ := setupService()
		_, err := service.Import(ctx, strings.NewReader(familyCalendar))
		require.NoError(t, err)

		// when
		exported, err := service.Export(ctx, time.Date(2024, 3, 4, 0, 0, 0, 0, warsaw), time.Date(2024, 3, 11, 0, 0, 0, 0, warsaw))

		// then
		require.NoError(t, err)
		cal, err := ics.ParseCalendar(strings.NewReader(exported))
		require.NoError(t, err)
		assert.Equal(t, "swim-1", propertyValue(findBySummary(t, cal, "Swimming"), ics.ComponentPropertyUniqueId))
		assert.Equal(t, "holiday-1", propertyValue(findBySummary(t, cal, "Long weekend"), ics.ComponentPropertyUniqueId))
	})

	t.Run("should export an empty calendar when there are no events", func(t *testing.T) {
		ctx, service, _ := setupService()

		exported, err := service.Export(ctx, time.Date(2024, 3, 4, 0, 0, 0, 0, warsaw), time.Date(2024, 3, 11, 0, 0, 0, 0, warsaw))

		require.NoError(t, err)
		assert.Contains(t, exported, "BEGIN:VCALENDAR")
		assert.NotContains(t, exported, "BEGIN:VEVENT")
	})

	t.Run("should require a user in context", func(t *testing.T) {
		_, service, _ := setupService()

		_, err := service.Export(context.Background(), time.Date(2024, 3, 4, 0, 0, 0, 0, warsaw), time.Date(2024, 3, 11, 0, 0, 0, 0, warsaw))

		assert.Error(t, err)
	})
}
