package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

var ErrUserDataInvalid = errors.New("invalid user data")
var ErrUsernameTaken = errors.New("username is already taken")

type Service interface {
	GetCurrentUser(ctx context.Context) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	CreateUser(ctx context.Context, user User) (User, error)
	UpdateUser(ctx context.Context, user User) (User, error)
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
}

type UserServiceImpl struct {
	repo Repo
}

func NewUserService(repo Repo) *UserServiceImpl {
	return &UserServiceImpl{repo: repo}
}

func (u *UserServiceImpl) GetCurrentUser(ctx context.Context) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return u.repo.GetUser(ctx, userId)
}

func (u *UserServiceImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	return u.repo.GetUserByUid(ctx, uid)
}

// CreateUser completes the onboarding of a new user.
func (u *UserServiceImpl) CreateUser(ctx context.Context, user User) (User, error) {
	if err := validate(user); err != nil {
		return User{}, err
	}
	if user.Uid == "" {
		return User{}, fmt.Errorf("%w: uid is required", ErrUserDataInvalid)
	}
	available, err := u.repo.IsUsernameAvailable(ctx, user.Username)
	if err != nil {
		return User{}, err
	}
	if !available {
		return User{}, ErrUsernameTaken
	}

	userId, err := u.repo.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.Id = userId
	log.Infof("created user %s (%d)", user.Username, user.Id)
	return user, nil
}

func (u *UserServiceImpl) UpdateUser(ctx context.Context, user User) (User, error) {
	userId, err := CurrentId(ctx)
	if err != nil {
		return User{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if err := validate(user); err != nil {
		return User{}, err
	}
	return u.repo.UpdateUser(ctx, userId, user)
}

func (u *UserServiceImpl) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	return u.repo.IsUsernameAvailable(ctx, username)
}

func validate(user User) error {
	if user.Username == "" {
		return fmt.Errorf("%w: username is required", ErrUserDataInvalid)
	}
	if user.DisplayName == "" {
		return fmt.Errorf("%w: display name is required", ErrUserDataInvalid)
	}
	if user.Settings.Timezone != "" {
		if _, err := time.LoadLocation(user.Settings.Timezone); err != nil {
			return fmt.Errorf("%w: unknown timezone %s", ErrUserDataInvalid, user.Settings.Timezone)
		}
	}
	return nil
}
