package family

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/familyhub/familyhub/internal/event_bus"
	"github.com/familyhub/familyhub/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const MaxAvatarSize = 3 << 20

var ErrAvatarTooLarge = errors.New("avatar is too large")
var ErrAvatarNotImage = errors.New("avatar is not an image")

type Service interface {
	List(ctx context.Context) ([]FamilyMember, error)
	Get(ctx context.Context, uid string) (FamilyMember, error)
	Create(ctx context.Context, member FamilyMember) (FamilyMember, error)
	Update(ctx context.Context, member FamilyMember) (FamilyMember, error)
	Delete(ctx context.Context, uid string) error
	UploadAvatar(ctx context.Context, uid string, image []byte) (FamilyMember, error)
	GetAvatar(ctx context.Context, uid string) ([]byte, error)
	DeleteAvatar(ctx context.Context, uid string) error
}

type ServiceImpl struct {
	repo     Repository
	avatars  AvatarStore
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, avatars AvatarStore, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, avatars: avatars, eventBus: eventBus}
}

func (s *ServiceImpl) List(ctx context.Context) ([]FamilyMember, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.List(ctx, userId)
}

func (s *ServiceImpl) Get(ctx context.Context, uid string) (FamilyMember, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return FamilyMember{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if _, err := uuid.Parse(uid); err != nil {
		return FamilyMember{}, ErrMemberNotFound
	}
	return s.repo.Get(ctx, userId, uid)
}

func (s *ServiceImpl) Create(ctx context.Context, member FamilyMember) (FamilyMember, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return FamilyMember{}, fmt.Errorf("failed to get current user: %w", err)
	}
	member.Name = strings.TrimSpace(member.Name)
	if err := member.Validate(); err != nil {
		return FamilyMember{}, err
	}
	member.Uid = uuid.NewString()
	member.AvatarUrl = ""

	created, err := s.repo.Create(ctx, userId, member)
	if err != nil {
		return FamilyMember{}, err
	}
	log.Debugf("created family member %s (%s)", created.Name, created.Uid)
	return created, nil
}

func (s *ServiceImpl) Update(ctx context.Context, member FamilyMember) (FamilyMember, error) {
	current, err := s.Get(ctx, member.Uid)
	if err != nil {
		return FamilyMember{}, err
	}
	member.Name = strings.TrimSpace(member.Name)
	if err := member.Validate(); err != nil {
		return FamilyMember{}, err
	}
	userId, _ := user.CurrentId(ctx)
	member.AvatarUrl = current.AvatarUrl
	return s.repo.Update(ctx, userId, member)
}

// Delete removes the member together with its avatar and publishes FamilyMemberDeleted,
// so that events assigned to the member can be released.
func (s *ServiceImpl) Delete(ctx context.Context, uid string) error {
	member, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	userId, _ := user.CurrentId(ctx)
	if err := s.repo.Delete(ctx, userId, uid); err != nil {
		return err
	}
	if err := s.avatars.Delete(uid); err != nil {
		log.Warnf("failed to delete avatar of family member %s: %v", uid, err)
	}

	event := event_bus.NewEvent(ctx, event_bus.FamilyMemberDeletedType, event_bus.FamilyMemberDeleted{
		Uid:  member.Uid,
		Name: member.Name,
	})
	if err := s.eventBus.Publish(event); err != nil {
		log.Errorf("failed to publish deletion of family member %s: %v", uid, err)
		return fmt.Errorf("family member deleted, but cleanup failed: %w", err)
	}
	return nil
}

func (s *ServiceImpl) UploadAvatar(ctx context.Context, uid string, image []byte) (FamilyMember, error) {
	member, err := s.Get(ctx, uid)
	if err != nil {
		return FamilyMember{}, err
	}
	if len(image) > MaxAvatarSize {
		return FamilyMember{}, ErrAvatarTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(image), "image/") {
		return FamilyMember{}, ErrAvatarNotImage
	}

	if err := s.avatars.Save(uid, image); err != nil {
		log.Errorf("failed to store avatar of family member %s: %v", uid, err)
		return FamilyMember{}, err
	}
	userId, _ := user.CurrentId(ctx)
	member.AvatarUrl = avatarUrl(uid)
	if err := s.repo.SetAvatarUrl(ctx, userId, uid, member.AvatarUrl); err != nil {
		return FamilyMember{}, err
	}
	return member, nil
}

func (s *ServiceImpl) GetAvatar(ctx context.Context, uid string) ([]byte, error) {
	if _, err := s.Get(ctx, uid); err != nil {
		return nil, err
	}
	return s.avatars.Load(uid)
}

func (s *ServiceImpl) DeleteAvatar(ctx context.Context, uid string) error {
	if _, err := s.Get(ctx, uid); err != nil {
		return err
	}
	if err := s.avatars.Delete(uid); err != nil {
		return err
	}
	userId, _ := user.CurrentId(ctx)
	return s.repo.SetAvatarUrl(ctx, userId, uid, "")
}

func avatarUrl(uid string) string {
	return "/api/family/member/" + uid + "/avatar"
}
