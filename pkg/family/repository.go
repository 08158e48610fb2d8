package family

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrMemberNotFound = errors.New("family member not found")

type Repository interface {
	List(ctx context.Context, userId int) ([]FamilyMember, error)
	Get(ctx context.Context, userId int, uid string) (FamilyMember, error)
	Create(ctx context.Context, userId int, member FamilyMember) (FamilyMember, error)
	Update(ctx context.Context, userId int, member FamilyMember) (FamilyMember, error)
	SetAvatarUrl(ctx context.Context, userId int, uid string, avatarUrl string) error
	Delete(ctx context.Context, userId int, uid string) error
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const memberColumns = `id, uid, name, color, role, avatar_url, created_at, updated_at`

func scanMember(row pgx.Row) (FamilyMember, error) {
	var member FamilyMember
	var role string
	err := row.Scan(
		&member.Id,
		&member.Uid,
		&member.Name,
		&member.Color,
		&role,
		&member.AvatarUrl,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	member.Role = Role(role)
	return member, err
}

func (r *RepositoryImpl) List(ctx context.Context, userId int) ([]FamilyMember, error) {
	query := `SELECT ` + memberColumns + ` FROM family_member WHERE user_id = $1 ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		err := fmt.Errorf("could not query family members: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	members := make([]FamilyMember, 0, 8)
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return members, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, uid string) (FamilyMember, error) {
	query := `SELECT ` + memberColumns + ` FROM family_member WHERE user_id = $1 AND uid = $2`
	member, err := scanMember(r.db.QueryRow(ctx, query, userId, uid))
	if errors.Is(err, pgx.ErrNoRows) {
		return FamilyMember{}, ErrMemberNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get family member: %w", err)
		log.Error(err)
		return FamilyMember{}, err
	}
	return member, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, userId int, member FamilyMember) (FamilyMember, error) {
	query := `INSERT INTO family_member (uid, user_id, name, color, role, avatar_url)
				VALUES ($1, $2, $3, $4, $5, $6) RETURNING ` + memberColumns
	created, err := scanMember(r.db.QueryRow(ctx, query,
		member.Uid,
		userId,
		member.Name,
		member.Color,
		string(member.Role),
		member.AvatarUrl,
	))
	if err != nil {
		err := fmt.Errorf("could not create family member: %w", err)
		log.Error(err)
		return FamilyMember{}, err
	}
	return created, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, member FamilyMember) (FamilyMember, error) {
	query := `UPDATE family_member SET name = $1, color = $2, role = $3, updated_at = now()
				WHERE user_id = $4 AND uid = $5 RETURNING ` + memberColumns
	updated, err := scanMember(r.db.QueryRow(ctx, query,
		member.Name,
		member.Color,
		string(member.Role),
		userId,
		member.Uid,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return FamilyMember{}, ErrMemberNotFound
	} else if err != nil {
		err := fmt.Errorf("could not update family member: %w", err)
		log.Error(err)
		return FamilyMember{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) SetAvatarUrl(ctx context.Context, userId int, uid string, avatarUrl string) error {
	query := `UPDATE family_member SET avatar_url = $1, updated_at = now() WHERE user_id = $2 AND uid = $3`
	result, err := r.db.Exec(ctx, query, avatarUrl, userId, uid)
	if err != nil {
		err := fmt.Errorf("could not update avatar url: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, uid string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM family_member WHERE user_id = $1 AND uid = $2`, userId, uid)
	if err != nil {
		err := fmt.Errorf("could not delete family member: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrMemberNotFound
	}
	return nil
}
