package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/penguin-works/kouji-backend/internal/kouji/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS kouji_dates (
    path         TEXT NOT NULL,
    project_id   TEXT NOT NULL,
    project_name TEXT NOT NULL DEFAULT '',
    description  TEXT NOT NULL DEFAULT '',
    start_date   DATE NOT NULL,
    end_date     DATE NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (path, project_id)
);
`

const datesColumnList = `path, project_id, project_name, description, start_date, end_date, updated_at`

// PostgresStore keeps ranges in the kouji_dates table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the table when it does not exist yet.
func (r *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create kouji_dates: %w", err)
	}
	return nil
}

// List returns the ranges stored for path, or for every path when path is
// empty.
func (r *PostgresStore) List(ctx context.Context, path string) ([]domain.StoredDates, error) {
	q := `SELECT ` + datesColumnList + `
FROM kouji_dates
ORDER BY path, project_id DESC;`
	args := []any{}
	if path != "" {
		q = `SELECT ` + datesColumnList + `
FROM kouji_dates
WHERE path = $1
ORDER BY project_id DESC;`
		args = append(args, path)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored dates: %w", err)
	}
	defer rows.Close()

	out := make([]domain.StoredDates, 0, 16)
	for rows.Next() {
		d, err := scanDates(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresStore) Get(ctx context.Context, path, projectID string) (domain.StoredDates, error) {
	q := `SELECT ` + datesColumnList + `
FROM kouji_dates
WHERE path = $1 AND project_id = $2;`
	d, err := scanDates(r.db.QueryRowContext(ctx, q, path, projectID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.StoredDates{}, domain.ErrDatesNotFound
	}
	return d, err
}

func (r *PostgresStore) Put(ctx context.Context, d domain.StoredDates) error {
	return r.PutAll(ctx, []domain.StoredDates{d})
}

func (r *PostgresStore) PutAll(ctx context.Context, ds []domain.StoredDates) error {
	if len(ds) == 0 {
		return nil
	}
	const q = `
INSERT INTO kouji_dates (path, project_id, project_name, description, start_date, end_date, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (path, project_id) DO UPDATE SET
    project_name = EXCLUDED.project_name,
    description  = EXCLUDED.description,
    start_date   = EXCLUDED.start_date,
    end_date     = EXCLUDED.end_date,
    updated_at   = EXCLUDED.updated_at;
`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, d := range ds {
		if _, err := tx.ExecContext(ctx, q,
			d.Path, d.ProjectID, d.ProjectName, d.Description,
			d.StartDate.String(), d.EndDate.String(), d.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to store dates %s/%s: %w", d.Path, d.ProjectID, err)
		}
	}
	return tx.Commit()
}

func (r *PostgresStore) Delete(ctx context.Context, keys ...domain.DatesKey) error {
	if len(keys) == 0 {
		return nil
	}
	paths := make([]string, len(keys))
	ids := make([]string, len(keys))
	for i, k := range keys {
		paths[i], ids[i] = k.Path, k.ProjectID
	}

	const q = `
DELETE FROM kouji_dates AS d
USING unnest($1::text[], $2::text[]) AS k(path, project_id)
WHERE d.path = k.path AND d.project_id = k.project_id;
`
	if _, err := r.db.ExecContext(ctx, q, pq.Array(paths), pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to delete dates: %w", err)
	}
	return nil
}

func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDates(row rowScanner) (domain.StoredDates, error) {
	var (
		d          domain.StoredDates
		start, end time.Time
	)
	if err := row.Scan(&d.Path, &d.ProjectID, &d.ProjectName, &d.Description, &start, &end, &d.UpdatedAt); err != nil {
		return domain.StoredDates{}, err
	}
	d.StartDate = domain.NewDate(start.Year(), start.Month(), start.Day(), time.UTC)
	d.EndDate = domain.NewDate(end.Year(), end.Month(), end.Day(), time.UTC)
	return d, nil
}
