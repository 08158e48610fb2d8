package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("event not found")

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	Create(ctx context.Context, userId int, event Event) (Event, error)
	Get(ctx context.Context, userId int, uid string) (Event, error)
	GetByExternalId(ctx context.Context, userId int, externalId string) (Event, error)
	Update(ctx context.Context, userId int, event Event) (Event, error)
	Delete(ctx context.Context, userId int, uid string) error
	// FindInRange returns single events overlapping [from, to) and recurring events
	// starting before to. Occurrences are expanded by the caller.
	FindInRange(ctx context.Context, userId int, from, to time.Time) ([]Event, error)
	// UnassignMember clears the assignee of all events assigned to the member.
	UnassignMember(ctx context.Context, userId int, memberUid string) (int, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
	tx pgx.Tx
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

// getQueryer returns the appropriate database interface for queries (either tx or db)
func (r *RepositoryImpl) getQueryer() interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op when the transaction was already committed
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&RepositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const eventColumns = `id, uid, title, description, location, start_time, end_time, assigned_to, color,
			recurrence, external_id, created_at, updated_at`

func scanEvent(row pgx.Row) (Event, error) {
	var event Event
	err := row.Scan(
		&event.Id,
		&event.UID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.StartTime,
		&event.EndTime,
		&event.AssignedTo,
		&event.Color,
		&event.Recurrence,
		&event.ExternalId,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	return event, err
}

func (r *RepositoryImpl) Create(ctx context.Context, userId int, event Event) (Event, error) {
	query := `INSERT INTO calendar_event (uid, user_id, title, description, location, start_time, end_time,
					assigned_to, color, recurrence, external_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
				RETURNING ` + eventColumns
	created, err := scanEvent(r.getQueryer().QueryRow(ctx, query,
		event.UID,
		userId,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.AssignedTo,
		event.Color,
		event.Recurrence,
		event.ExternalId,
	))
	if err != nil {
		err := fmt.Errorf("could not create event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return created, nil
}

func (r *RepositoryImpl) Get(ctx context.Context, userId int, uid string) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_event WHERE user_id = $1 AND uid = $2`
	return r.getOne(ctx, query, userId, uid)
}

func (r *RepositoryImpl) GetByExternalId(ctx context.Context, userId int, externalId string) (Event, error) {
	query := `SELECT ` + eventColumns + ` FROM calendar_event WHERE user_id = $1 AND external_id = $2`
	return r.getOne(ctx, query, userId, externalId)
}

func (r *RepositoryImpl) getOne(ctx context.Context, query string, args ...any) (Event, error) {
	event, err := scanEvent(r.getQueryer().QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		err := fmt.Errorf("could not get event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return event, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, userId int, event Event) (Event, error) {
	query := `UPDATE calendar_event SET
					title = $1,
					description = $2,
					location = $3,
					start_time = $4,
					end_time = $5,
					assigned_to = $6,
					color = $7,
					recurrence = $8,
					updated_at = now()
				WHERE user_id = $9 AND uid = $10
				RETURNING ` + eventColumns
	updated, err := scanEvent(r.getQueryer().QueryRow(ctx, query,
		event.Title,
		event.Description,
		event.Location,
		event.StartTime,
		event.EndTime,
		event.AssignedTo,
		event.Color,
		event.Recurrence,
		userId,
		event.UID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Event{}, ErrEventNotFound
	} else if err != nil {
		err := fmt.Errorf("could not update event: %w", err)
		log.Error(err)
		return Event{}, err
	}
	return updated, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, userId int, uid string) error {
	result, err := r.getQueryer().Exec(ctx, `DELETE FROM calendar_event WHERE user_id = $1 AND uid = $2`, userId, uid)
	if err != nil {
		err := fmt.Errorf("could not delete event: %w", err)
		log.Error(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

func (r *RepositoryImpl) FindInRange(ctx context.Context, userId int, from, to time.Time) ([]Event, error) {
	query := `SELECT ` + eventColumns + `
			  FROM calendar_event
			  WHERE user_id = $1
			    AND start_time < $3
			    AND (end_time > $2 OR recurrence <> '')
			  ORDER BY start_time, end_time, id`
	rows, err := r.getQueryer().Query(ctx, query, userId, from, to)
	if err != nil {
		err := fmt.Errorf("could not query events: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0, 16)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return events, nil
}

func (r *RepositoryImpl) UnassignMember(ctx context.Context, userId int, memberUid string) (int, error) {
	query := `UPDATE calendar_event SET assigned_to = '', updated_at = now() WHERE user_id = $1 AND assigned_to = $2`
	result, err := r.getQueryer().Exec(ctx, query, userId, memberUid)
	if err != nil {
		err := fmt.Errorf("could not unassign family member: %w", err)
		log.Error(err)
		return 0, err
	}
	return int(result.RowsAffected()), nil
}
