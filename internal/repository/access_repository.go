package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccessRepository interface {
	Create(ctx context.Context, req *domain.CreateAccessRequest, loggedByUserID int64, entryTime time.Time) (*domain.Access, error)
	GetByID(ctx context.Context, id int64) (*domain.Access, error)
	GetViewByID(ctx context.Context, id int64) (*domain.AccessView, error)
	List(ctx context.Context, filters domain.AccessFilters) ([]domain.AccessView, error)
	Update(ctx context.Context, id int64, patch domain.AccessPatch) (*domain.Access, error)
	MarkExit(ctx context.Context, id int64) (*domain.Access, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type accessRepository struct {
	pool *pgxpool.Pool
}

func NewAccessRepository(pool *pgxpool.Pool) AccessRepository {
	return &accessRepository{pool: pool}
}

const accessCols = `id, venue_id, visitor_id, id_card_type_id, id_card_number_at_access,
logged_by_user_id, entry_time, exit_time, access_reason, department, is_recurrent,
status, created_at, updated_at`

// View rows join the names the front desk displays, so reads stay a single
// flat projection instead of lazy relationship traversal.
const accessViewSelect = `SELECT
	a.id, a.venue_id, a.visitor_id, a.id_card_type_id, a.id_card_number_at_access,
	a.logged_by_user_id, a.entry_time, a.exit_time, a.access_reason, a.department,
	a.is_recurrent, a.status, a.created_at, a.updated_at,
	vi.name, vi.last_name, ve.name, ict.name, u.name
FROM accesses a
JOIN visitors vi ON vi.id = a.visitor_id
JOIN venues ve ON ve.id = a.venue_id
JOIN id_card_types ict ON ict.id = a.id_card_type_id
JOIN users u ON u.id = a.logged_by_user_id`

func scanAccess(row pgx.Row) (*domain.Access, error) {
	var a domain.Access
	err := row.Scan(
		&a.ID, &a.VenueID, &a.VisitorID, &a.IDCardTypeID, &a.IDCardNumberAtAccess,
		&a.LoggedByUserID, &a.EntryTime, &a.ExitTime, &a.Reason, &a.Department,
		&a.IsRecurrent, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAccessView(row pgx.Row) (*domain.AccessView, error) {
	var v domain.AccessView
	err := row.Scan(
		&v.ID, &v.VenueID, &v.VisitorID, &v.IDCardTypeID, &v.IDCardNumberAtAccess,
		&v.LoggedByUserID, &v.EntryTime, &v.ExitTime, &v.Reason, &v.Department,
		&v.IsRecurrent, &v.Status, &v.CreatedAt, &v.UpdatedAt,
		&v.VisitorName, &v.VisitorLastName, &v.VenueName, &v.IDCardTypeName, &v.LoggedByName,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *accessRepository) Create(ctx context.Context, req *domain.CreateAccessRequest, loggedByUserID int64, entryTime time.Time) (*domain.Access, error) {
	const q = `INSERT INTO accesses (
		venue_id, visitor_id, id_card_type_id, id_card_number_at_access,
		logged_by_user_id, entry_time, access_reason, department, is_recurrent, status
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,'active')
	RETURNING ` + accessCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAccess(r.pool.QueryRow(ctx, q,
		req.VenueID, req.VisitorID, req.IDCardTypeID, req.IDCardNumberAtAccess,
		loggedByUserID, entryTime, req.Reason, req.Department, req.IsRecurrent,
	))
}

func (r *accessRepository) GetByID(ctx context.Context, id int64) (*domain.Access, error) {
	const q = `SELECT ` + accessCols + ` FROM accesses WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAccess(r.pool.QueryRow(ctx, q, id))
}

func (r *accessRepository) GetViewByID(ctx context.Context, id int64) (*domain.AccessView, error) {
	q := accessViewSelect + ` WHERE a.id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAccessView(r.pool.QueryRow(ctx, q, id))
}

func (r *accessRepository) List(ctx context.Context, filters domain.AccessFilters) ([]domain.AccessView, error) {
	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	q := accessViewSelect + ` WHERE 1=1`
	args := []any{}

	if filters.VenueID != nil {
		args = append(args, *filters.VenueID)
		q += fmt.Sprintf(` AND a.venue_id=$%d`, len(args))
	}
	if filters.DateExact != nil {
		// Match the calendar day of the entry timestamp, not a string compare.
		args = append(args, *filters.DateExact)
		q += fmt.Sprintf(` AND a.entry_time::date = $%d::date`, len(args))
	}
	if filters.IDCardSubstring != "" {
		args = append(args, "%"+filters.IDCardSubstring+"%")
		q += fmt.Sprintf(` AND a.id_card_number_at_access ILIKE $%d`, len(args))
	}

	args = append(args, limit, offset)
	q += fmt.Sprintf(` ORDER BY a.entry_time DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []domain.AccessView
	for rows.Next() {
		var v domain.AccessView
		if err := rows.Scan(
			&v.ID, &v.VenueID, &v.VisitorID, &v.IDCardTypeID, &v.IDCardNumberAtAccess,
			&v.LoggedByUserID, &v.EntryTime, &v.ExitTime, &v.Reason, &v.Department,
			&v.IsRecurrent, &v.Status, &v.CreatedAt, &v.UpdatedAt,
			&v.VisitorName, &v.VisitorLastName, &v.VenueName, &v.IDCardTypeName, &v.LoggedByName,
		); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

func (r *accessRepository) Update(ctx context.Context, id int64, patch domain.AccessPatch) (*domain.Access, error) {
	const q = `
		UPDATE accesses
		SET
			access_reason = COALESCE($2, access_reason),
			department    = COALESCE($3, department),
			is_recurrent  = COALESCE($4, is_recurrent),
			updated_at    = now()
		WHERE id=$1
		RETURNING ` + accessCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAccess(r.pool.QueryRow(ctx, q, id, patch.Reason, patch.Department, patch.IsRecurrent))
}

// MarkExit closes an access. The status predicate makes the transition a
// single atomic statement: of two concurrent exits only one row matches, the
// other sees no rows and the caller reports the illegal transition.
func (r *accessRepository) MarkExit(ctx context.Context, id int64) (*domain.Access, error) {
	const q = `
		UPDATE accesses
		SET exit_time=now(), status='closed', updated_at=now()
		WHERE id=$1 AND status='active'
		RETURNING ` + accessCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanAccess(r.pool.QueryRow(ctx, q, id))
}

func (r *accessRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM accesses WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
