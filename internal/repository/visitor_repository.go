package repository

import (
	"context"
	"time"

	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VisitorRepository interface {
	Create(ctx context.Context, req *domain.CreateVisitorRequest) (*domain.Visitor, error)
	FindByID(ctx context.Context, id int64) (*domain.Visitor, error)
	FindByIDCardNumber(ctx context.Context, number string) (*domain.Visitor, error)
	Update(ctx context.Context, id int64, patch domain.VisitorPatch) (*domain.Visitor, error)
	List(ctx context.Context, limit, offset int) ([]domain.Visitor, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type visitorRepository struct {
	pool *pgxpool.Pool
}

func NewVisitorRepository(pool *pgxpool.Pool) VisitorRepository {
	return &visitorRepository{pool: pool}
}

const visitorCols = `id, name, last_name, id_card_number, phone, email,
id_card_type_id, registration_venue_id, created_at, updated_at`

func scanVisitor(row pgx.Row) (*domain.Visitor, error) {
	var v domain.Visitor
	err := row.Scan(
		&v.ID, &v.Name, &v.LastName, &v.IDCardNumber, &v.Phone, &v.Email,
		&v.IDCardTypeID, &v.RegistrationVenueID, &v.CreatedAt, &v.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new visitor. Dedup by document number is enforced by the
// unique constraint on id_card_number, not by a prior read, so concurrent
// first sightings stay correct: the loser gets ErrConflict.
func (r *visitorRepository) Create(ctx context.Context, req *domain.CreateVisitorRequest) (*domain.Visitor, error) {
	const q = `INSERT INTO visitors (
		name, last_name, id_card_number, phone, email,
		id_card_type_id, registration_venue_id
	) VALUES ($1,$2,$3,$4,$5,$6,$7)
	RETURNING ` + visitorCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v, err := scanVisitor(r.pool.QueryRow(ctx, q,
		req.Name, req.LastName, req.IDCardNumber, req.Phone, req.Email,
		req.IDCardTypeID, req.RegistrationVenueID,
	))
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	return v, err
}

func (r *visitorRepository) FindByID(ctx context.Context, id int64) (*domain.Visitor, error) {
	const q = `SELECT ` + visitorCols + ` FROM visitors WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanVisitor(r.pool.QueryRow(ctx, q, id))
}

func (r *visitorRepository) FindByIDCardNumber(ctx context.Context, number string) (*domain.Visitor, error) {
	const q = `SELECT ` + visitorCols + ` FROM visitors WHERE id_card_number=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanVisitor(r.pool.QueryRow(ctx, q, number))
}

func (r *visitorRepository) Update(ctx context.Context, id int64, patch domain.VisitorPatch) (*domain.Visitor, error) {
	const q = `
		UPDATE visitors
		SET
			name       = COALESCE($2, name),
			last_name  = COALESCE($3, last_name),
			phone      = COALESCE($4, phone),
			email      = COALESCE($5, email),
			updated_at = now()
		WHERE id=$1
		RETURNING ` + visitorCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanVisitor(r.pool.QueryRow(ctx, q, id, patch.Name, patch.LastName, patch.Phone, patch.Email))
}

func (r *visitorRepository) List(ctx context.Context, limit, offset int) ([]domain.Visitor, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + visitorCols + ` FROM visitors ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visitors []domain.Visitor
	for rows.Next() {
		var v domain.Visitor
		if err := rows.Scan(
			&v.ID, &v.Name, &v.LastName, &v.IDCardNumber, &v.Phone, &v.Email,
			&v.IDCardTypeID, &v.RegistrationVenueID, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, err
		}
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}

func (r *visitorRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM visitors WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
