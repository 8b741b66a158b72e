package hospital

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

// PostgresStore persists hospitals in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed hospital store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Create(ctx context.Context, h *models.Hospital) error {
	if h == nil {
		return fmt.Errorf("hospital is required")
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO hospitals (name, subdomain, status, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		h.Name, h.Subdomain, string(h.Status), h.CreatedAt,
	).Scan(&h.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create hospital: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, hospitalID id.HospitalID) (*models.Hospital, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, name, subdomain, status, created_at
		 FROM hospitals WHERE id = $1`,
		int64(hospitalID),
	))
}

func (s *PostgresStore) FindBySubdomain(ctx context.Context, subdomain string) (*models.Hospital, error) {
	return s.scanOne(s.pool.QueryRow(ctx,
		`SELECT id, name, subdomain, status, created_at
		 FROM hospitals WHERE subdomain = $1`,
		subdomain,
	))
}

func (s *PostgresStore) scanOne(row pgx.Row) (*models.Hospital, error) {
	var h models.Hospital
	var status string
	err := row.Scan(&h.ID, &h.Name, &h.Subdomain, &status, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find hospital: %w", err)
	}
	h.Status = models.TenantStatus(status)
	return &h, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
