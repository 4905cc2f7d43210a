package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

// PostgresRepository stores one row per project with the full record as a
// JSONB document. Alternative backend to Redis, selected by config.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the projects table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS projects (
    id         text PRIMARY KEY,
    doc        jsonb NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT now()
);`
	if _, err := r.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Save(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		return fmt.Errorf("project id required")
	}

	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	const q = `
INSERT INTO projects (id, doc, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (id) DO UPDATE
  SET doc = EXCLUDED.doc,
      updated_at = now();`
	if _, err := r.pool.Exec(ctx, q, p.ID, doc); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Load(ctx context.Context, id string) (*domain.Project, error) {
	const q = `SELECT doc FROM projects WHERE id = $1;`

	var doc []byte
	err := r.pool.QueryRow(ctx, q, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}

	var p domain.Project
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) LoadAll(ctx context.Context) ([]domain.Project, error) {
	const q = `SELECT doc FROM projects ORDER BY doc->>'date' DESC, doc->>'created_at' DESC;`

	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var p domain.Project
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("unmarshal project: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM projects WHERE id = $1;`
	if _, err := r.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}
