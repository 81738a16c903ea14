package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gym-booking/internal/data/entity"
	"gym-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ActivePredicate decides whether a BOOKED reservation still blocks a new booking
type ActivePredicate func(res *entity.Reservation) bool

type ReservationRepository interface {
	Reserve(ctx context.Context, res *entity.Reservation, isActive ActivePredicate) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error)
	FindByUserAndClass(ctx context.Context, userID, classID uuid.UUID) (*entity.Reservation, error)
	CountByClass(ctx context.Context, classID uuid.UUID) (int, error)
	ListBookedByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Reservation, error)
	ListByClass(ctx context.Context, classID uuid.UUID) ([]*entity.RosterEntry, error)
	ListPastByUser(ctx context.Context, userID uuid.UUID, today string, limit int, after *entity.HistoryCursor) ([]*entity.Reservation, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	CheckIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	ForceCheckIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	ListNoShowCandidates(ctx context.Context, today string, limit int) ([]*entity.Reservation, error)
	MarkNoShow(ctx context.Context, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error)
	MarkNoShowOne(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
}

type reservationRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReservationRepository(db database.PgxIface, log *zap.Logger) ReservationRepository {
	return &reservationRepository{
		db:  db,
		log: log.With(zap.String("repository", "reservation")),
	}
}

const reservationColumns = `r.id, r.user_id, r.class_id, r.status,
		       to_char(r.class_date, 'YYYY-MM-DD'), to_char(r.class_time, 'HH24:MI'),
		       r.checked_in_at, r.no_show_at, r.created_at`

func reservationDest(res *entity.Reservation) []any {
	return []any{
		&res.ID,
		&res.UserID,
		&res.ClassID,
		&res.Status,
		&res.ClassDate,
		&res.ClassTime,
		&res.CheckedInAt,
		&res.NoShowAt,
		&res.CreatedAt,
	}
}

func collectReservations(rows pgx.Rows) ([]*entity.Reservation, error) {
	defer rows.Close()

	list := make([]*entity.Reservation, 0)
	for rows.Next() {
		var res entity.Reservation
		if err := rows.Scan(reservationDest(&res)...); err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		list = append(list, &res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}
	return list, nil
}

// Reserve books a class in one transaction. The user row lock serializes a
// member's concurrent bookings (single active booking) and the class row lock
// serializes bookings of one class (capacity). Checks run in this order:
// duplicate pair, active booking, capacity. The reservation's class date/time
// are copied from the locked class row.
func (r *reservationRepository) Reserve(ctx context.Context, res *entity.Reservation, isActive ActivePredicate) error {
	err := database.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		var userID uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, res.UserID).Scan(&userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("user %s: %w", res.UserID.String(), ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock user: %w", err)
		}

		var exists bool
		err = tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM reservations WHERE user_id = $1 AND class_id = $2)`,
			res.UserID, res.ClassID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}
		if exists {
			return ErrDuplicateReservation
		}

		rows, err := tx.Query(ctx, `
			SELECT `+reservationColumns+`
			FROM reservations r
			WHERE r.user_id = $1 AND r.status = 'BOOKED'
		`, res.UserID)
		if err != nil {
			return fmt.Errorf("load booked reservations: %w", err)
		}
		booked, err := collectReservations(rows)
		if err != nil {
			return err
		}
		for _, b := range booked {
			if isActive(b) {
				return ErrActiveBookingExists
			}
		}

		var (
			capacity  int
			classDate string
			classTime string
		)
		err = tx.QueryRow(ctx, `
			SELECT capacity, to_char(class_date, 'YYYY-MM-DD'), to_char(class_time, 'HH24:MI')
			FROM classes
			WHERE id = $1
			FOR UPDATE
		`, res.ClassID).Scan(&capacity, &classDate, &classTime)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("class %s: %w", res.ClassID.String(), ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("lock class: %w", err)
		}

		var count int
		err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE class_id = $1`, res.ClassID).Scan(&count)
		if err != nil {
			return fmt.Errorf("count reservations: %w", err)
		}
		if count >= capacity {
			return ErrClassFull
		}

		res.ClassDate = &classDate
		res.ClassTime = &classTime

		_, err = tx.Exec(ctx, `
			INSERT INTO reservations (id, user_id, class_id, status, class_date, class_time, created_at)
			VALUES ($1, $2, $3, $4, $5::text::date, $6::text::time, $7)
		`, res.ID, res.UserID, res.ClassID, res.Status, res.ClassDate, res.ClassTime, res.CreatedAt)
		if database.IsUniqueViolation(err, "reservations_user_class_key") {
			return ErrDuplicateReservation
		}
		if err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
		return nil
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrDuplicateReservation),
		errors.Is(err, ErrActiveBookingExists),
		errors.Is(err, ErrClassFull),
		errors.Is(err, ErrNotFound):
		return err
	default:
		r.log.Error("Failed to reserve class",
			zap.Error(err),
			zap.String("user_id", res.UserID.String()),
			zap.String("class_id", res.ClassID.String()),
		)
		return fmt.Errorf("reserve class %s: %w", res.ClassID.String(), err)
	}
}

func (r *reservationRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Reservation, error) {
	var res entity.Reservation
	err := r.db.QueryRow(ctx, query, args...).Scan(reservationDest(&res)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *reservationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Reservation, error) {
	res, err := r.findOne(ctx, `SELECT `+reservationColumns+` FROM reservations r WHERE r.id = $1`, id)
	if err != nil {
		r.log.Error("Failed to find reservation", zap.Error(err), zap.String("reservation_id", id.String()))
		return nil, fmt.Errorf("find reservation %s: %w", id.String(), err)
	}
	return res, nil
}

func (r *reservationRepository) FindByUserAndClass(ctx context.Context, userID, classID uuid.UUID) (*entity.Reservation, error) {
	res, err := r.findOne(ctx,
		`SELECT `+reservationColumns+` FROM reservations r WHERE r.user_id = $1 AND r.class_id = $2`,
		userID, classID,
	)
	if err != nil {
		r.log.Error("Failed to find reservation for user and class",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("class_id", classID.String()),
		)
		return nil, fmt.Errorf("find reservation for user %s class %s: %w", userID.String(), classID.String(), err)
	}
	return res, nil
}

// CountByClass counts reservations of every status
func (r *reservationRepository) CountByClass(ctx context.Context, classID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE class_id = $1`, classID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reservations", zap.Error(err), zap.String("class_id", classID.String()))
		return 0, fmt.Errorf("count reservations for class %s: %w", classID.String(), err)
	}
	return count, nil
}

func (r *reservationRepository) ListBookedByUser(ctx context.Context, userID uuid.UUID) ([]*entity.Reservation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		WHERE r.user_id = $1 AND r.status = 'BOOKED'
		ORDER BY r.class_date ASC NULLS FIRST, r.class_time ASC NULLS FIRST
	`, userID)
	if err != nil {
		r.log.Error("Failed to list booked reservations", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("list booked reservations for %s: %w", userID.String(), err)
	}
	return collectReservations(rows)
}

// ListByClass returns the class roster with member names
func (r *reservationRepository) ListByClass(ctx context.Context, classID uuid.UUID) ([]*entity.RosterEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reservationColumns+`, u.name, u.email
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.class_id = $1
		ORDER BY r.created_at ASC
	`, classID)
	if err != nil {
		r.log.Error("Failed to list class roster", zap.Error(err), zap.String("class_id", classID.String()))
		return nil, fmt.Errorf("list roster for class %s: %w", classID.String(), err)
	}
	defer rows.Close()

	roster := make([]*entity.RosterEntry, 0)
	for rows.Next() {
		var entry entity.RosterEntry
		dest := append(reservationDest(&entry.Reservation), &entry.MemberName, &entry.MemberEmail)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan roster row: %w", err)
		}
		roster = append(roster, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster rows: %w", err)
	}
	return roster, nil
}

// ListPastByUser pages a member's reservations with class_date <= today, newest
// first, using (class_date, id) as the keyset. Only the date is filtered here;
// classes later today are the caller's to drop.
func (r *reservationRepository) ListPastByUser(ctx context.Context, userID uuid.UUID, today string, limit int, after *entity.HistoryCursor) ([]*entity.Reservation, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if after == nil {
		rows, err = r.db.Query(ctx, `
			SELECT `+reservationColumns+`
			FROM reservations r
			WHERE r.user_id = $1 AND r.class_date <= $2::text::date
			ORDER BY r.class_date DESC, r.id DESC
			LIMIT $3
		`, userID, today, limit)
	} else {
		rows, err = r.db.Query(ctx, `
			SELECT `+reservationColumns+`
			FROM reservations r
			WHERE r.user_id = $1 AND r.class_date <= $2::text::date
			  AND (r.class_date, r.id) < ($4::text::date, $5)
			ORDER BY r.class_date DESC, r.id DESC
			LIMIT $3
		`, userID, today, limit, after.ClassDate, after.ID)
	}
	if err != nil {
		r.log.Error("Failed to list past reservations", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, fmt.Errorf("list past reservations for %s: %w", userID.String(), err)
	}
	return collectReservations(rows)
}

// Delete removes the reservation whatever its status. Deleting a missing id is not an error.
func (r *reservationRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete reservation", zap.Error(err), zap.String("reservation_id", id.String()))
		return false, fmt.Errorf("delete reservation %s: %w", id.String(), err)
	}
	return result.RowsAffected() > 0, nil
}

// CheckIn moves a BOOKED reservation to CHECKED_IN. False means it was not BOOKED (or is gone).
func (r *reservationRepository) CheckIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE reservations
		SET status = 'CHECKED_IN', checked_in_at = $2
		WHERE id = $1 AND status = 'BOOKED'
	`, id, at)
	if err != nil {
		r.log.Error("Failed to check in", zap.Error(err), zap.String("reservation_id", id.String()))
		return false, fmt.Errorf("check in reservation %s: %w", id.String(), err)
	}
	return result.RowsAffected() > 0, nil
}

// ForceCheckIn sets CHECKED_IN from any status. False means the reservation does not exist.
func (r *reservationRepository) ForceCheckIn(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE reservations
		SET status = 'CHECKED_IN', checked_in_at = $2
		WHERE id = $1
	`, id, at)
	if err != nil {
		r.log.Error("Failed to force check in", zap.Error(err), zap.String("reservation_id", id.String()))
		return false, fmt.Errorf("force check in reservation %s: %w", id.String(), err)
	}
	return result.RowsAffected() > 0, nil
}

// ListNoShowCandidates returns at most limit BOOKED reservations with class_date <= today,
// oldest first. Rows without a class_date never qualify and are left for repair.
// Rows missing class_time cannot be evaluated and sort after every evaluable row,
// otherwise enough of them would fill each batch and starve real no-shows.
func (r *reservationRepository) ListNoShowCandidates(ctx context.Context, today string, limit int) ([]*entity.Reservation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations r
		WHERE r.status = 'BOOKED' AND r.class_date <= $1::text::date
		ORDER BY (r.class_time IS NULL) ASC, r.class_date ASC, r.class_time ASC, r.id ASC
		LIMIT $2
	`, today, limit)
	if err != nil {
		r.log.Error("Failed to list no-show candidates", zap.Error(err), zap.String("today", today))
		return nil, fmt.Errorf("list no-show candidates: %w", err)
	}
	return collectReservations(rows)
}

// MarkNoShow transitions the given reservations that are still BOOKED and returns the ids it changed
func (r *reservationRepository) MarkNoShow(ctx context.Context, ids []uuid.UUID, at time.Time) ([]uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, `
		UPDATE reservations
		SET status = 'NO_SHOW', no_show_at = $2
		WHERE id = ANY($1) AND status = 'BOOKED'
		RETURNING id
	`, ids, at)
	if err != nil {
		return nil, fmt.Errorf("mark no-show batch: %w", err)
	}
	defer rows.Close()

	marked := make([]uuid.UUID, 0, len(ids))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan marked id: %w", err)
		}
		marked = append(marked, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mark no-show batch: %w", err)
	}
	return marked, nil
}

func (r *reservationRepository) MarkNoShowOne(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result, err := r.db.Exec(ctx, `
		UPDATE reservations
		SET status = 'NO_SHOW', no_show_at = $2
		WHERE id = $1 AND status = 'BOOKED'
	`, id, at)
	if err != nil {
		return false, fmt.Errorf("mark no-show %s: %w", id.String(), err)
	}
	return result.RowsAffected() > 0, nil
}
