package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/familyhub/familyhub/internal/event_bus"
	"github.com/familyhub/familyhub/internal/test_utils"
	"github.com/familyhub/familyhub/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var warsaw, _ = time.LoadLocation("Europe/Warsaw")

func setupService(t *testing.T) (context.Context, *ServiceImpl, *RepositoryStub, *event_bus.EventBus, *[]event_bus.CalendarEventChanged) {
	repo := NewRepositoryStub()
	bus := event_bus.NewEventBus()
	service := NewService(repo, bus)
	service.clock = &utils.MockClock{FixedNow: time.Date(2024, 3, 6, 12, 0, 0, 0, warsaw)}

	changes := &[]event_bus.CalendarEventChanged{}
	event_bus.SubscribeTyped[event_bus.CalendarEventChanged](bus, event_bus.CalendarEventChangedType,
		func(e event_bus.EventT[event_bus.CalendarEventChanged]) error {
			*changes = append(*changes, e.Data)
			return nil
		})
	return test_utils.TestUserContext(), service, repo, bus, changes
}

func newEvent(title string, start time.Time, duration time.Duration) Event {
	return Event{Title: title, StartTime: start, EndTime: start.Add(duration)}
}

func TestServiceImpl_Create(t *testing.T) {

	t.Run("should store the event and publish the change", func(t *testing.T) {
		// given
		ctx, service, _, _, changes := setupService(t)

		// when
		created, err := service.Create(ctx, newEvent(" Dentist ", time.Date(2024, 3, 7, 10, 0, 0, 0, warsaw), time.Hour))

		// then
		require.NoError(t, err)
		_, err = uuid.Parse(created.UID)
		assert.NoError(t, err)
		assert.Equal(t, "Dentist", created.Title)
		require.Len(t, *changes, 1)
		assert.Equal(t, event_bus.ChangeCreated, (*changes)[0].Kind)
		assert.Equal(t, created.UID, (*changes)[0].UID)
	})

	t.Run("should reject invalid events", func(t *testing.T) {
		ctx, service, _, _, changes := setupService(t)

		_, err := service.Create(ctx, newEvent("Dentist", time.Date(2024, 3, 7, 10, 0, 0, 0, warsaw), -time.Hour))

		assert.ErrorIs(t, err, ErrInvalidEvent)
		assert.Empty(t, *changes)
	})

	t.Run("should require a user in context", func(t *testing.T) {
		_, service, _, _, _ := setupService(t)

		_, err := service.Create(context.Background(), newEvent("Dentist", time.Now(), time.Hour))

		assert.Error(t, err)
	})
}

func TestServiceImpl_Update(t *testing.T) {

	t.Run("should update the event", func(t *testing.T) {
		// given
		ctx, service, _, _, changes := setupService(t)
		created, err := service.Create(ctx, newEvent("Dentist", time.Date(2024, 3, 7, 10, 0, 0, 0, warsaw), time.Hour))
		require.NoError(t, err)
		created.Title = "Doctor"
		created.Recurrence = "monthly"

		// when
		updated, err := service.Update(ctx, created)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Doctor", updated.Title)
		assert.Equal(t, "monthly", updated.Recurrence)
		require.Len(t, *changes, 2)
		assert.Equal(t, event_bus.ChangeUpdated, (*changes)[1].Kind)
	})

	t.Run("should fail for unknown events", func(t *testing.T) {
		ctx, service, _, _, _ := setupService(t)
		e := newEvent("Doctor", time.Now(), time.Hour)
		e.UID = uuid.NewString()

		_, err := service.Update(ctx, e)

		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	// given
	ctx, service, _, _, changes := setupService(t)
	created, err := service.Create(ctx, newEvent("Dentist", time.Date(2024, 3, 7, 10, 0, 0, 0, warsaw), time.Hour))
	require.NoError(t, err)

	// when
	err = service.Delete(ctx, created.UID)

	// then
	require.NoError(t, err)
	_, err = service.Get(ctx, created.UID)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.Equal(t, event_bus.ChangeDeleted, (*changes)[len(*changes)-1].Kind)
	assert.ErrorIs(t, service.Delete(ctx, created.UID), ErrEventNotFound)
}

func TestServiceImpl_List(t *testing.T) {
	// given
	ctx, service, _, _, _ := setupService(t)
	_, err := service.Create(ctx, newEvent("Dentist", time.Date(2024, 3, 7, 10, 0, 0, 0, warsaw), time.Hour))
	require.NoError(t, err)
	breakfast := newEvent("Family Breakfast", time.Date(2024, 3, 4, 7, 0, 0, 0, warsaw), 45*time.Minute)
	breakfast.Recurrence = "daily"
	_, err = service.Create(ctx, breakfast)
	require.NoError(t, err)
	_, err = service.Create(ctx, newEvent("Next week", time.Date(2024, 3, 12, 10, 0, 0, 0, warsaw), time.Hour))
	require.NoError(t, err)

	// when
	occurrences, err := service.List(ctx, time.Date(2024, 3, 7, 0, 0, 0, 0, warsaw), time.Date(2024, 3, 9, 0, 0, 0, 0, warsaw))

	// then
	require.NoError(t, err)
	titles := make([]string, 0, len(occurrences))
	for _, occurrence := range occurrences {
		titles = append(titles, occurrence.Event.Title)
	}
	assert.Equal(t, []string{"Family Breakfast", "Dentist", "Family Breakfast"}, titles)
	assert.Equal(t, "Europe/Warsaw", occurrences[1].Start.Location().String())
}

func TestServiceImpl_GetUpcoming(t *testing.T) {
	// given
	ctx, service, _, _, _ := setupService(t)
	_, err := service.Create(ctx, newEvent("Yesterday", time.Date(2024, 3, 5, 10, 0, 0, 0, warsaw), time.Hour))
	require.NoError(t, err)
	_, err = service.Create(ctx, newEvent("Running", time.Date(2024, 3, 6, 11, 0, 0, 0, warsaw), 2*time.Hour))
	require.NoError(t, err)
	standup := newEvent("School run", time.Date(2024, 3, 1, 8, 0, 0, 0, warsaw), 30*time.Minute)
	standup.Recurrence = "daily"
	_, err = service.Create(ctx, standup)
	require.NoError(t, err)
	_, err = service.Create(ctx, newEvent("Party", time.Date(2024, 3, 6, 18, 0, 0, 0, warsaw), 3*time.Hour))
	require.NoError(t, err)

	// when
	upcoming, err := service.GetUpcoming(ctx, 3)

	// then
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.Equal(t, "Party", upcoming[0].Event.Title)
	assert.Equal(t, "School run", upcoming[1].Event.Title)
	assert.True(t, time.Date(2024, 3, 7, 8, 0, 0, 0, warsaw).Equal(upcoming[1].Start))
	assert.Equal(t, "School run", upcoming[2].Event.Title)
}

func TestServiceImpl_UnassignsDeletedFamilyMember(t *testing.T) {
	// given
	ctx, service, _, bus, _ := setupService(t)
	memberUid := uuid.NewString()
	assigned := newEvent("Piano lesson", time.Date(2024, 3, 7, 16, 0, 0, 0, warsaw), time.Hour)
	assigned.AssignedTo = memberUid
	created, err := service.Create(ctx, assigned)
	require.NoError(t, err)
	other := newEvent("Football", time.Date(2024, 3, 7, 16, 0, 0, 0, warsaw), time.Hour)
	other.AssignedTo = "Everyone"
	otherCreated, err := service.Create(ctx, other)
	require.NoError(t, err)

	// when
	err = bus.Publish(event_bus.NewEvent(ctx, event_bus.FamilyMemberDeletedType,
		event_bus.FamilyMemberDeleted{Uid: memberUid, Name: "Sarah"}))

	// then
	require.NoError(t, err)
	stored, err := service.Get(ctx, created.UID)
	require.NoError(t, err)
	assert.Empty(t, stored.AssignedTo)
	stored, err = service.Get(ctx, otherCreated.UID)
	require.NoError(t, err)
	assert.Equal(t, "Everyone", stored.AssignedTo)
}

type failingRepository struct {
	*RepositoryStub
	createsBeforeFailure int
}

func (f *failingRepository) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	return f.RepositoryStub.WithTransaction(ctx, func(Repository) error { return fn(f) })
}

func (f *failingRepository) Create(ctx context.Context, userId int, event Event) (Event, error) {
	if f.createsBeforeFailure == 0 {
		return Event{}, errors.New("connection lost")
	}
	f.createsBeforeFailure--
	return f.RepositoryStub.Create(ctx, userId, event)
}

func TestServiceImpl_Import(t *testing.T) {
	imported := func(externalId, title string) Event {
		e := newEvent(title, time.Date(2024, 3, 7, 16, 0, 0, 0, warsaw), time.Hour)
		e.ExternalId = externalId
		return e
	}

	t.Run("should create new and update known events", func(t *testing.T) {
		// given
		ctx, service, _, _, changes := setupService(t)
		_, err := service.Import(ctx, []Event{imported("google:1", "Swimming")})
		require.NoError(t, err)
		occurrences, err := service.List(ctx, time.Date(2024, 3, 7, 0, 0, 0, 0, warsaw), time.Date(2024, 3, 8, 0, 0, 0, 0, warsaw))
		require.NoError(t, err)
		require.Len(t, occurrences, 1)
		assignee := occurrences[0].Event
		assignee.AssignedTo = "Sarah"
		_, err = service.Update(ctx, assignee)
		require.NoError(t, err)

		// when
		result, err := service.Import(ctx, []Event{
			imported("google:1", "Swimming lesson"),
			imported("google:2", "Dinner"),
			imported("", "No external id"),
			imported("google:3", ""),
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, ImportResult{Created: 1, Updated: 1, Skipped: 2}, result)
		stored, err := service.Get(ctx, assignee.UID)
		require.NoError(t, err)
		assert.Equal(t, "Swimming lesson", stored.Title)
		assert.Equal(t, "Sarah", stored.AssignedTo)
		assert.Len(t, *changes, 4)
	})

	t.Run("should roll back all events when storing one fails", func(t *testing.T) {
		// given
		ctx, _, _, bus, changes := setupService(t)
		repo := &failingRepository{RepositoryStub: NewRepositoryStub(), createsBeforeFailure: 1}
		service := NewService(repo, bus)

		// when
		_, err := service.Import(ctx, []Event{imported("google:1", "Swimming"), imported("google:2", "Dinner")})

		// then
		assert.Error(t, err)
		stored, err := repo.FindInRange(ctx, test_utils.TestUserId, time.Date(2024, 3, 1, 0, 0, 0, 0, warsaw), time.Date(2024, 4, 1, 0, 0, 0, 0, warsaw))
		require.NoError(t, err)
		assert.Empty(t, stored)
		assert.Empty(t, *changes)
	})
}
