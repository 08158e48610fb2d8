package event

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu      sync.Mutex
	events  map[string]Event // uid -> event
	userIds map[string]int   // uid -> userId
	nextId  int
	err     error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		events:  make(map[string]Event),
		userIds: make(map[string]int),
		nextId:  1,
	}
}

// WithTransaction runs fn on a copy of the stored events and keeps the changes only when fn succeeds.
func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	events := maps.Clone(r.events)
	userIds := maps.Clone(r.userIds)
	nextId := r.nextId
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.events = events
		r.userIds = userIds
		r.nextId = nextId
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) Create(ctx context.Context, userId int, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Event{}, r.err
	}

	event.Id = r.nextId
	r.nextId++
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	r.events[event.UID] = event
	r.userIds[event.UID] = userId
	return event, nil
}

func (r *RepositoryStub) Get(ctx context.Context, userId int, uid string) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Event{}, r.err
	}

	event, ok := r.events[uid]
	if !ok || r.userIds[uid] != userId {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *RepositoryStub) GetByExternalId(ctx context.Context, userId int, externalId string) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Event{}, r.err
	}

	for uid, event := range r.events {
		if event.ExternalId == externalId && r.userIds[uid] == userId {
			return event, nil
		}
	}
	return Event{}, ErrEventNotFound
}

func (r *RepositoryStub) Update(ctx context.Context, userId int, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return Event{}, r.err
	}

	stored, ok := r.events[event.UID]
	if !ok || r.userIds[event.UID] != userId {
		return Event{}, ErrEventNotFound
	}
	event.Id = stored.Id
	event.ExternalId = stored.ExternalId
	event.CreatedAt = stored.CreatedAt
	event.UpdatedAt = time.Now()
	r.events[event.UID] = event
	return event, nil
}

func (r *RepositoryStub) Delete(ctx context.Context, userId int, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	if _, ok := r.events[uid]; !ok || r.userIds[uid] != userId {
		return ErrEventNotFound
	}
	delete(r.events, uid)
	delete(r.userIds, uid)
	return nil
}

func (r *RepositoryStub) FindInRange(ctx context.Context, userId int, from, to time.Time) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}

	result := make([]Event, 0)
	for uid, event := range r.events {
		if r.userIds[uid] != userId || !event.StartTime.Before(to) {
			continue
		}
		if event.EndTime.After(from) || event.IsRecurring() {
			result = append(result, event)
		}
	}
	slices.SortFunc(result, func(a, b Event) int { return a.Id - b.Id })
	return result, nil
}

func (r *RepositoryStub) UnassignMember(ctx context.Context, userId int, memberUid string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}

	count := 0
	for uid, event := range r.events {
		if r.userIds[uid] == userId && event.AssignedTo == memberUid {
			event.AssignedTo = ""
			r.events[uid] = event
			count++
		}
	}
	return count, nil
}

// SetError makes every following call fail with err, nil restores normal behavior.
func (r *RepositoryStub) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = make(map[string]Event)
	r.userIds = make(map[string]int)
	r.nextId = 1
	r.err = nil
}
