package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	CreateUser(ctx context.Context, user User) (int, error)
	GetUser(ctx context.Context, id int) (User, error)
	GetUserByUid(ctx context.Context, uid string) (User, error)
	UpdateUser(ctx context.Context, userId int, user User) (User, error)
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
}

type UserRepoImpl struct {
	db *pgxpool.Pool
}

func NewUserRepo(db *pgxpool.Pool) *UserRepoImpl {
	return &UserRepoImpl{db: db}
}

func (u *UserRepoImpl) CreateUser(ctx context.Context, user User) (int, error) {
	query := `INSERT INTO users (uid, username, display_name, timezone, week_first_day)
				VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := u.db.QueryRow(ctx, query,
		user.Uid,
		user.Username,
		user.DisplayName,
		user.Settings.Timezone,
		int(user.Settings.WeekFirstDay),
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to create user: %v", err)
		return 0, err
	}
	return id, nil
}

func (u *UserRepoImpl) GetUser(ctx context.Context, id int) (User, error) {
	query := `SELECT id, uid, username, display_name, timezone, week_first_day FROM users WHERE id = $1`
	return u.getOne(ctx, query, id)
}

func (u *UserRepoImpl) GetUserByUid(ctx context.Context, uid string) (User, error) {
	query := `SELECT id, uid, username, display_name, timezone, week_first_day FROM users WHERE uid = $1`
	return u.getOne(ctx, query, uid)
}

func (u *UserRepoImpl) getOne(ctx context.Context, query string, arg any) (User, error) {
	var user User
	var weekFirstDay int
	err := u.db.QueryRow(ctx, query, arg).Scan(
		&user.Id,
		&user.Uid,
		&user.Username,
		&user.DisplayName,
		&user.Settings.Timezone,
		&weekFirstDay,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Debugf("user %v not found", arg)
		return User{}, ErrUserNotFound
	} else if err != nil {
		log.Errorf("failed to get user: %v", err)
		return User{}, err
	}
	user.Settings.WeekFirstDay = weekday(weekFirstDay)
	return user, nil
}

func (u *UserRepoImpl) UpdateUser(ctx context.Context, userId int, user User) (User, error) {
	query := `UPDATE users SET display_name = $1, timezone = $2, week_first_day = $3 WHERE id = $4
				RETURNING id, uid, username, display_name, timezone, week_first_day`
	var updated User
	var weekFirstDay int
	err := u.db.QueryRow(ctx, query,
		user.DisplayName,
		user.Settings.Timezone,
		int(user.Settings.WeekFirstDay),
		userId,
	).Scan(
		&updated.Id,
		&updated.Uid,
		&updated.Username,
		&updated.DisplayName,
		&updated.Settings.Timezone,
		&weekFirstDay,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		log.Infof("no rows affected of updating user %d", userId)
		return User{}, ErrUserNotFound
	} else if err != nil {
		return User{}, fmt.Errorf("could not update user: %w", err)
	}
	updated.Settings.WeekFirstDay = weekday(weekFirstDay)
	return updated, nil
}

func (u *UserRepoImpl) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	query := `SELECT COUNT(*) FROM users WHERE username = $1`
	var count int
	err := u.db.QueryRow(ctx, query, username).Scan(&count)
	if err != nil {
		log.Errorf("failed to check username availability: %v", err)
		return false, err
	}
	return count == 0, nil
}

func weekday(day int) time.Weekday {
	if day < int(time.Sunday) || day > int(time.Saturday) {
		return time.Monday
	}
	return time.Weekday(day)
}
