package family

import (
	"context"
	"slices"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	members map[string]FamilyMember // uid -> member
	userIds map[string]int          // uid -> userId
	nextId  int
	err     error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		members: make(map[string]FamilyMember),
		userIds: make(map[string]int),
		nextId:  1,
	}
}

func (r *RepositoryStub) List(ctx context.Context, userId int) ([]FamilyMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return nil, r.err
	}

	result := make([]FamilyMember, 0, len(r.members))
	for uid, member := range r.members {
		if r.userIds[uid] == userId {
			result = append(result, member)
		}
	}
	slices.SortFunc(result, func(a, b FamilyMember) int { return a.Id - b.Id })
	return result, nil
}

func (r *RepositoryStub) Get(ctx context.Context, userId int, uid string) (FamilyMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.err != nil {
		return FamilyMember{}, r.err
	}

	member, ok := r.members[uid]
	if !ok || r.userIds[uid] != userId {
		return FamilyMember{}, ErrMemberNotFound
	}
	return member, nil
}

func (r *RepositoryStub) Create(ctx context.Context, userId int, member FamilyMember) (FamilyMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return FamilyMember{}, r.err
	}

	member.Id = r.nextId
	r.nextId++
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt
	r.members[member.Uid] = member
	r.userIds[member.Uid] = userId
	return member, nil
}

func (r *RepositoryStub) Update(ctx context.Context, userId int, member FamilyMember) (FamilyMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return FamilyMember{}, r.err
	}

	stored, ok := r.members[member.Uid]
	if !ok || r.userIds[member.Uid] != userId {
		return FamilyMember{}, ErrMemberNotFound
	}
	stored.Name = member.Name
	stored.Color = member.Color
	stored.Role = member.Role
	stored.UpdatedAt = time.Now()
	r.members[member.Uid] = stored
	return stored, nil
}

func (r *RepositoryStub) SetAvatarUrl(ctx context.Context, userId int, uid string, avatarUrl string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.members[uid]
	if !ok || r.userIds[uid] != userId {
		return ErrMemberNotFound
	}
	stored.AvatarUrl = avatarUrl
	r.members[uid] = stored
	return nil
}

func (r *RepositoryStub) Delete(ctx context.Context, userId int, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}

	if _, ok := r.members[uid]; !ok || r.userIds[uid] != userId {
		return ErrMemberNotFound
	}
	delete(r.members, uid)
	delete(r.userIds, uid)
	return nil
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
	r.members = make(map[string]FamilyMember)
	r.userIds = make(map[string]int)
	r.nextId = 1
	r.err = nil
}
