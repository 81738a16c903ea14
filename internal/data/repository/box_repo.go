package repository

import (
	"context"
	"errors"
	"fmt"

	"gym-booking/internal/data/entity"
	"gym-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BoxRepository interface {
	Find(ctx context.Context) (*entity.Box, error)
	Bootstrap(ctx context.Context, box *entity.Box, owner *entity.User) error
}

type boxRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBoxRepository(db database.PgxIface, log *zap.Logger) BoxRepository {
	return &boxRepository{
		db:  db,
		log: log.With(zap.String("repository", "box")),
	}
}

func (r *boxRepository) Find(ctx context.Context) (*entity.Box, error) {
	query := `
		SELECT id, name, address, owner_id, created_at, updated_at
		FROM boxes
		LIMIT 1
	`

	var box entity.Box
	err := r.db.QueryRow(ctx, query).Scan(
		&box.ID,
		&box.Name,
		&box.Address,
		&box.OwnerID,
		&box.CreatedAt,
		&box.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find box", zap.Error(err))
		return nil, fmt.Errorf("find box: %w", err)
	}

	return &box, nil
}

// Bootstrap creates the owner account and the box together. The singleton
// constraint on boxes makes a second bootstrap fail with ErrBoxExists.
func (r *boxRepository) Bootstrap(ctx context.Context, box *entity.Box, owner *entity.User) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		// serialize concurrent bootstraps on the singleton key
		if _, err := tx.Exec(ctx, `LOCK TABLE boxes IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("lock boxes: %w", err)
		}

		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM boxes)`).Scan(&exists); err != nil {
			return fmt.Errorf("check box: %w", err)
		}
		if exists {
			return ErrBoxExists
		}

		if err := insertUser(ctx, tx, owner); err != nil {
			return err
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO boxes (id, name, address, owner_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, box.ID, box.Name, box.Address, box.OwnerID, box.CreatedAt, box.UpdatedAt)
		if database.IsUniqueViolation(err, "boxes_singleton_key") {
			return ErrBoxExists
		}
		return err
	})

	if errors.Is(err, ErrBoxExists) || errors.Is(err, ErrEmailTaken) {
		return err
	}
	if err != nil {
		r.log.Error("Failed to bootstrap box", zap.Error(err), zap.String("name", box.Name))
		return fmt.Errorf("bootstrap box: %w", err)
	}

	r.log.Info("Box bootstrapped",
		zap.String("box_id", box.ID.String()),
		zap.String("owner_id", owner.ID.String()),
	)
	return nil
}
