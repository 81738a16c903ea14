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

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context, filter entity.MemberFilter) ([]*entity.User, error)
	Count(ctx context.Context, filter entity.MemberFilter) (int64, error)
	CountByRole(ctx context.Context, role entity.UserRole) (int64, error)
	Update(ctx context.Context, user *entity.User) error
	DeleteCascade(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewUserRepository(db database.PgxIface, log *zap.Logger) UserRepository {
	return &userRepository{
		db:  db,
		log: log.With(zap.String("repository", "user")),
	}
}

const userColumns = `id, name, email, password, role, phone,
		       to_char(birth_date, 'YYYY-MM-DD'), plan, enrollment_active,
		       created_at, updated_at`

func scanUser(row scanner) (*entity.User, error) {
	var user entity.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Phone,
		&user.BirthDate,
		&user.Plan,
		&user.EnrollmentActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func insertUser(ctx context.Context, q database.Querier, user *entity.User) error {
	query := `
		INSERT INTO users (id, name, email, password, role, phone, birth_date,
		                   plan, enrollment_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::text::date, $8, $9, $10, $11)
	`

	_, err := q.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Phone,
		user.BirthDate,
		user.Plan,
		user.EnrollmentActive,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if database.IsUniqueViolation(err, "users_email_key") {
		return ErrEmailTaken
	}
	return err
}

// Create inserts a new user record into the database
func (ur *userRepository) Create(ctx context.Context, user *entity.User) error {
	err := insertUser(ctx, ur.db, user)
	if errors.Is(err, ErrEmailTaken) {
		return err
	}
	if err != nil {
		ur.log.Error("Failed to create user",
			zap.Error(err),
			zap.String("email", user.Email),
		)
		return fmt.Errorf("create user %s: %w", user.Email, err)
	}

	return nil
}

func (ur *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(ur.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by ID",
			zap.Error(err),
			zap.String("user_id", id.String()),
		)
		return nil, fmt.Errorf("find user by ID %s: %w", id.String(), err)
	}

	return user, nil
}

func (ur *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	user, err := scanUser(ur.db.QueryRow(ctx, query, email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		ur.log.Error("Failed to find user by email",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email %s: %w", email, err)
	}

	return user, nil
}

// List returns members matching the filter ordered by name
// memberFilterWhere binds $1 role, $2 enrollment, $3 plan
const memberFilterWhere = `
		WHERE ($1::text = '' OR role = $1::text)
		  AND ($2::boolean IS NULL OR enrollment_active = $2)
		  AND ($3::text = '' OR plan = $3::text)`

func (ur *userRepository) List(ctx context.Context, filter entity.MemberFilter) ([]*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users` + memberFilterWhere + `
		ORDER BY name ASC, id ASC
		LIMIT $4 OFFSET $5
	`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := ur.db.Query(ctx, query, string(filter.Role), filter.Active, filter.Plan, limit, filter.Offset)
	if err != nil {
		ur.log.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			ur.log.Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		ur.log.Error("Rows iteration error", zap.Error(err))
		return nil, fmt.Errorf("iterate users rows: %w", err)
	}

	return users, nil
}

func (ur *userRepository) Count(ctx context.Context, filter entity.MemberFilter) (int64, error) {
	query := `SELECT COUNT(*) FROM users` + memberFilterWhere

	var count int64
	if err := ur.db.QueryRow(ctx, query, string(filter.Role), filter.Active, filter.Plan).Scan(&count); err != nil {
		ur.log.Error("Database error counting members", zap.Error(err))
		return 0, fmt.Errorf("count members: %w", err)
	}

	return count, nil
}

func (ur *userRepository) CountByRole(ctx context.Context, role entity.UserRole) (int64, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = $1`

	var count int64
	if err := ur.db.QueryRow(ctx, query, role).Scan(&count); err != nil {
		ur.log.Error("Database error counting users", zap.Error(err), zap.String("role", string(role)))
		return 0, fmt.Errorf("count users with role %s: %w", role, err)
	}

	return count, nil
}

func (ur *userRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, birth_date = $4::text::date, plan = $5,
		    role = $6, enrollment_active = $7, updated_at = $8
		WHERE id = $1
	`

	result, err := ur.db.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Phone,
		user.BirthDate,
		user.Plan,
		user.Role,
		user.EnrollmentActive,
		user.UpdatedAt,
	)
	if err != nil {
		ur.log.Error("Failed to update user",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return fmt.Errorf("update user %s: %w", user.ID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID.String(), ErrNotFound)
	}

	return nil
}

// DeleteCascade removes the user with every reservation, personal record and
// session it owns in one transaction. Nothing is removed when any step fails.
func (ur *userRepository) DeleteCascade(ctx context.Context, id uuid.UUID) error {
	err := database.WithTx(ctx, ur.db, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %s: %w", id.String(), ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		steps := []struct {
			name  string
			query string
		}{
			{"reservations", `DELETE FROM reservations WHERE user_id = $1`},
			{"personal records", `DELETE FROM personal_records WHERE user_id = $1`},
			{"sessions", `DELETE FROM sessions WHERE user_id = $1`},
			{"user", `DELETE FROM users WHERE id = $1`},
		}
		for _, step := range steps {
			if _, err := tx.Exec(ctx, step.query, id); err != nil {
				return fmt.Errorf("delete %s: %w", step.name, err)
			}
		}
		return nil
	})

	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		ur.log.Error("Failed to delete user",
			zap.Error(err),
			zap.String("id", id.String()),
		)
		return fmt.Errorf("delete user %s: %w", id.String(), err)
	}

	ur.log.Info("User deleted", zap.String("id", id.String()))
	return nil
}
