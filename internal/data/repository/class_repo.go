package repository

import (
	"context"
	"errors"
	"fmt"

	"gym-booking/internal/data/entity"
	"gym-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ClassRepository interface {
	Create(ctx context.Context, class *entity.ClassSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.ClassSession, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.ClassSession, error)
	ListByDate(ctx context.Context, date string) ([]*entity.ClassSummary, error)
	CountByDate(ctx context.Context, date string) (int64, error)
	Update(ctx context.Context, class *entity.ClassSession, scheduleChanged bool) (int64, error)
	DeleteCascade(ctx context.Context, id uuid.UUID) (int64, error)
}

type classRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewClassRepository(db database.PgxIface, log *zap.Logger) ClassRepository {
	return &classRepository{
		db:  db,
		log: log.With(zap.String("repository", "class")),
	}
}

const classColumns = `c.id, c.title, c.coach_name,
		       to_char(c.class_date, 'YYYY-MM-DD'), to_char(c.class_time, 'HH24:MI'),
		       c.capacity, c.created_by, c.sessions, c.created_at, c.updated_at`

func classDest(class *entity.ClassSession) []any {
	return []any{
		&class.ID,
		&class.Title,
		&class.CoachName,
		&class.Date,
		&class.Time,
		&class.Capacity,
		&class.CreatedBy,
		&class.Sessions,
		&class.CreatedAt,
		&class.UpdatedAt,
	}
}

func segmentsOrEmpty(s []entity.WorkoutSegment) []entity.WorkoutSegment {
	if s == nil {
		return []entity.WorkoutSegment{}
	}
	return s
}

func (r *classRepository) Create(ctx context.Context, class *entity.ClassSession) error {
	query := `
		INSERT INTO classes (id, title, coach_name, class_date, class_time, capacity,
		                     created_by, sessions, created_at, updated_at)
		VALUES ($1, $2, $3, $4::text::date, $5::text::time, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		class.ID,
		class.Title,
		class.CoachName,
		class.Date,
		class.Time,
		class.Capacity,
		class.CreatedBy,
		segmentsOrEmpty(class.Sessions),
		class.CreatedAt,
		class.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create class",
			zap.Error(err),
			zap.String("date", class.Date),
			zap.String("time", class.Time),
		)
		return fmt.Errorf("create class: %w", err)
	}

	return nil
}

func (r *classRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.ClassSession, error) {
	query := `SELECT ` + classColumns + ` FROM classes c WHERE c.id = $1`

	var class entity.ClassSession
	err := r.db.QueryRow(ctx, query, id).Scan(classDest(&class)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find class", zap.Error(err), zap.String("class_id", id.String()))
		return nil, fmt.Errorf("find class %s: %w", id.String(), err)
	}

	return &class, nil
}

// FindByIDs loads several classes at once; ids without a class are absent from the map
func (r *classRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*entity.ClassSession, error) {
	classes := make(map[uuid.UUID]*entity.ClassSession, len(ids))
	if len(ids) == 0 {
		return classes, nil
	}

	query := `SELECT ` + classColumns + ` FROM classes c WHERE c.id = ANY($1)`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.log.Error("Failed to find classes", zap.Error(err), zap.Int("count", len(ids)))
		return nil, fmt.Errorf("find classes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var class entity.ClassSession
		if err := rows.Scan(classDest(&class)...); err != nil {
			return nil, fmt.Errorf("scan class row: %w", err)
		}
		classes[class.ID] = &class
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class rows: %w", err)
	}

	return classes, nil
}

// ListByDate returns the classes of one day ordered by start time, with their booked count
func (r *classRepository) ListByDate(ctx context.Context, date string) ([]*entity.ClassSummary, error) {
	query := `
		SELECT ` + classColumns + `,
		       (SELECT COUNT(*) FROM reservations res WHERE res.class_id = c.id) AS booked
		FROM classes c
		WHERE c.class_date = $1::text::date
		ORDER BY c.class_time ASC, c.title ASC
	`

	rows, err := r.db.Query(ctx, query, date)
	if err != nil {
		r.log.Error("Failed to list classes", zap.Error(err), zap.String("date", date))
		return nil, fmt.Errorf("list classes for %s: %w", date, err)
	}
	defer rows.Close()

	classes := make([]*entity.ClassSummary, 0)
	for rows.Next() {
		var summary entity.ClassSummary
		dest := append(classDest(&summary.ClassSession), &summary.Booked)
		if err := rows.Scan(dest...); err != nil {
			r.log.Error("Failed to scan class row", zap.Error(err))
			return nil, fmt.Errorf("scan class row: %w", err)
		}
		classes = append(classes, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate class rows: %w", err)
	}

	return classes, nil
}

func (r *classRepository) CountByDate(ctx context.Context, date string) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM classes WHERE class_date = $1::text::date`, date).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count classes", zap.Error(err), zap.String("date", date))
		return 0, fmt.Errorf("count classes for %s: %w", date, err)
	}
	return count, nil
}

// Update writes the class row. When scheduleChanged is true it also rewrites
// class_date/class_time on every BOOKED reservation of the class in the same
// transaction; CHECKED_IN and NO_SHOW rows keep the schedule they were taken on.
// The reservation copy is only correct while every class update goes through here.
// Returns the number of reservations re-synced.
func (r *classRepository) Update(ctx context.Context, class *entity.ClassSession, scheduleChanged bool) (int64, error) {
	var resynced int64

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE classes
			SET title = $2, coach_name = $3, class_date = $4::text::date,
			    class_time = $5::text::time, capacity = $6, sessions = $7, updated_at = $8
			WHERE id = $1
		`,
			class.ID,
			class.Title,
			class.CoachName,
			class.Date,
			class.Time,
			class.Capacity,
			segmentsOrEmpty(class.Sessions),
			class.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("update class row: %w", err)
		}
		if result.RowsAffected() == 0 {
			return fmt.Errorf("class %s: %w", class.ID.String(), ErrNotFound)
		}

		if !scheduleChanged {
			return nil
		}

		result, err = tx.Exec(ctx, `
			UPDATE reservations
			SET class_date = $2::text::date, class_time = $3::text::time
			WHERE class_id = $1 AND status = 'BOOKED'
		`, class.ID, class.Date, class.Time)
		if err != nil {
			return fmt.Errorf("resync reservations: %w", err)
		}
		resynced = result.RowsAffected()
		return nil
	})

	if errors.Is(err, ErrNotFound) {
		return 0, err
	}
	if err != nil {
		r.log.Error("Failed to update class", zap.Error(err), zap.String("class_id", class.ID.String()))
		return 0, fmt.Errorf("update class %s: %w", class.ID.String(), err)
	}

	return resynced, nil
}

// DeleteCascade removes the class and all of its reservations, whatever their
// status, in one transaction. Returns the number of reservations removed.
func (r *classRepository) DeleteCascade(ctx context.Context, id uuid.UUID) (int64, error) {
	var removed int64

	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM classes WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("class %s: %w", id.String(), ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock class: %w", err)
		}

		result, err := tx.Exec(ctx, `DELETE FROM reservations WHERE class_id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete reservations: %w", err)
		}
		removed = result.RowsAffected()

		if _, err := tx.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete class row: %w", err)
		}
		return nil
	})

	if errors.Is(err, ErrNotFound) {
		return 0, err
	}
	if err != nil {
		r.log.Error("Failed to delete class", zap.Error(err), zap.String("class_id", id.String()))
		return 0, fmt.Errorf("delete class %s: %w", id.String(), err)
	}

	r.log.Info("Class deleted",
		zap.String("class_id", id.String()),
		zap.Int64("reservations_removed", removed),
	)
	return removed, nil
}
