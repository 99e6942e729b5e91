package repository

import (
	"context"
	"time"

	"github.com/entrada-hq/entrada/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Reference-data repositories: venues, role records, identification-document
// types. Plain lookup/create/update/delete consumed by the visit workflow.

type VenueRepository interface {
	Create(ctx context.Context, v *domain.Venue) (*domain.Venue, error)
	GetByID(ctx context.Context, id int64) (*domain.Venue, error)
	Update(ctx context.Context, id int64, patch domain.VenuePatch) (*domain.Venue, error)
	List(ctx context.Context, limit, offset int) ([]domain.Venue, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type venueRepository struct {
	pool *pgxpool.Pool
}

func NewVenueRepository(pool *pgxpool.Pool) VenueRepository {
	return &venueRepository{pool: pool}
}

const venueCols = `id, name, address, city, country, phone, timezone, supervisor_id`

func scanVenue(row pgx.Row) (*domain.Venue, error) {
	var v domain.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.Country, &v.Phone, &v.Timezone, &v.SupervisorID)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *venueRepository) Create(ctx context.Context, v *domain.Venue) (*domain.Venue, error) {
	const q = `INSERT INTO venues (name, address, city, country, phone, timezone, supervisor_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING ` + venueCols
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanVenue(r.pool.QueryRow(ctx, q, v.Name, v.Address, v.City, v.Country, v.Phone, v.Timezone, v.SupervisorID))
}

func (r *venueRepository) GetByID(ctx context.Context, id int64) (*domain.Venue, error) {
	const q = `SELECT ` + venueCols + ` FROM venues WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanVenue(r.pool.QueryRow(ctx, q, id))
}

func (r *venueRepository) Update(ctx context.Context, id int64, patch domain.VenuePatch) (*domain.Venue, error) {
	const q = `
		UPDATE venues
		SET
			name          = COALESCE($2, name),
			address       = COALESCE($3, address),
			city          = COALESCE($4, city),
			country       = COALESCE($5, country),
			phone         = COALESCE($6, phone),
			timezone      = COALESCE($7, timezone),
			supervisor_id = COALESCE($8, supervisor_id)
		WHERE id=$1
		RETURNING ` + venueCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return scanVenue(r.pool.QueryRow(ctx, q, id,
		patch.Name, patch.Address, patch.City, patch.Country, patch.Phone, patch.Timezone, patch.SupervisorID))
}

func (r *venueRepository) List(ctx context.Context, limit, offset int) ([]domain.Venue, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	const q = `SELECT ` + venueCols + ` FROM venues ORDER BY id LIMIT $1 OFFSET $2`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var venues []domain.Venue
	for rows.Next() {
		var v domain.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.City, &v.Country, &v.Phone, &v.Timezone, &v.SupervisorID); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func (r *venueRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM venues WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

type RoleRepository interface {
	Create(ctx context.Context, name string) (*domain.RoleRecord, error)
	List(ctx context.Context) ([]domain.RoleRecord, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) Create(ctx context.Context, name string) (*domain.RoleRecord, error) {
	const q = `INSERT INTO roles (name) VALUES ($1) RETURNING id, name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var rec domain.RoleRecord
	err := r.pool.QueryRow(ctx, q, name).Scan(&rec.ID, &rec.Name)
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.RoleRecord, error) {
	const q = `SELECT id, name FROM roles ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.RoleRecord
	for rows.Next() {
		var rec domain.RoleRecord
		if err := rows.Scan(&rec.ID, &rec.Name); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *roleRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM roles WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}

type IDCardTypeRepository interface {
	Create(ctx context.Context, name string) (*domain.IDCardType, error)
	GetByID(ctx context.Context, id int64) (*domain.IDCardType, error)
	List(ctx context.Context) ([]domain.IDCardType, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type idCardTypeRepository struct {
	pool *pgxpool.Pool
}

func NewIDCardTypeRepository(pool *pgxpool.Pool) IDCardTypeRepository {
	return &idCardTypeRepository{pool: pool}
}

func (r *idCardTypeRepository) Create(ctx context.Context, name string) (*domain.IDCardType, error) {
	const q = `INSERT INTO id_card_types (name) VALUES ($1) RETURNING id, name`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.IDCardType
	err := r.pool.QueryRow(ctx, q, name).Scan(&t.ID, &t.Name)
	if isUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *idCardTypeRepository) GetByID(ctx context.Context, id int64) (*domain.IDCardType, error) {
	const q = `SELECT id, name FROM id_card_types WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var t domain.IDCardType
	err := r.pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *idCardTypeRepository) List(ctx context.Context) ([]domain.IDCardType, error) {
	const q = `SELECT id, name FROM id_card_types ORDER BY id`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []domain.IDCardType
	for rows.Next() {
		var t domain.IDCardType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (r *idCardTypeRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM id_card_types WHERE id=$1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
