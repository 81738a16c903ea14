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

type PersonalRecordRepository interface {
	Create(ctx context.Context, record *entity.PersonalRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PersonalRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.PersonalRecord, error)
	Update(ctx context.Context, record *entity.PersonalRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type personalRecordRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPersonalRecordRepository(db database.PgxIface, log *zap.Logger) PersonalRecordRepository {
	return &personalRecordRepository{
		db:  db,
		log: log.With(zap.String("repository", "personal_record")),
	}
}

func (r *personalRecordRepository) Create(ctx context.Context, record *entity.PersonalRecord) error {
	query := `
		INSERT INTO personal_records (id, user_id, movement, value, unit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.UserID,
		record.Movement,
		record.Value,
		record.Unit,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create personal record", zap.Error(err), zap.String("user_id", record.UserID.String()))
		return fmt.Errorf("create personal record: %w", err)
	}

	return nil
}

func (r *personalRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PersonalRecord, error) {
	query := `
		SELECT id, user_id, movement, value, unit, created_at, updated_at
		FROM personal_records
		WHERE id = $1
	`

	var record entity.PersonalRecord
	err := r.db.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.UserID,
		&record.Movement,
		&record.Value,
		&record.Unit,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find personal record", zap.Error(err), zap.String("id", id.String()))
		return nil, fmt.Errorf("find personal record %s: %w", id.String(), err)
	}

	return &record, nil
}

// ListByUser returns the member's records, newest first
func (r *personalRecordRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.PersonalRecord, error) {
	query := `
		SELECT id, user_id, movement, value, unit, created_at, updated_at
		FROM personal_records
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("Failed to list personal records", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("list personal records: %w", err)
	}
	defer rows.Close()

	records := make([]*entity.PersonalRecord, 0)
	for rows.Next() {
		var record entity.PersonalRecord
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Movement,
			&record.Value,
			&record.Unit,
			&record.CreatedAt,
			&record.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan personal record row: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate personal record rows: %w", err)
	}

	return records, nil
}

func (r *personalRecordRepository) Update(ctx context.Context, record *entity.PersonalRecord) error {
	query := `
		UPDATE personal_records
		SET value = $2, unit = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, record.ID, record.Value, record.Unit, record.UpdatedAt)
	if err != nil {
		r.log.Error("Failed to update personal record", zap.Error(err), zap.String("id", record.ID.String()))
		return fmt.Errorf("update personal record %s: %w", record.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("personal record %s: %w", record.ID.String(), ErrNotFound)
	}

	return nil
}

func (r *personalRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM personal_records WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete personal record", zap.Error(err), zap.String("id", id.String()))
		return fmt.Errorf("delete personal record %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("personal record %s: %w", id.String(), ErrNotFound)
	}

	return nil
}
