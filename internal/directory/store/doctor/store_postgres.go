package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"careport/internal/directory/models"
	id "careport/pkg/domain"
	"careport/pkg/platform/sentinel"
)

// PostgresStore persists doctors in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed doctor store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, d *models.Doctor) error {
	if d == nil {
		return fmt.Errorf("doctor is required")
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO doctors (slug, full_name, specialty, status, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		d.Slug.String(), d.FullName, d.Specialty, string(d.Status), d.CreatedAt,
	).Scan(&d.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create doctor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug id.DoctorSlug) (*models.Doctor, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, slug, full_name, specialty, status, created_at
		 FROM doctors WHERE slug = $1`,
		slug.String(),
	)

	var d models.Doctor
	var rawSlug, status string
	err := row.Scan(&d.ID, &rawSlug, &d.FullName, &d.Specialty, &status, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find doctor: %w", err)
	}
	d.Slug = id.DoctorSlug(rawSlug)
	d.Status = models.TenantStatus(status)
	return &d, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
