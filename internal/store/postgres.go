package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/counselops/clearance/internal/core/model"
)

// PostgresStore persists conflict records in Postgres via pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Create(ctx context.Context, rec model.ConflictRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO conflicts (
			id, firm_id, subject_id, subject_kind, conflict_type, severity,
			description, entity_id, entity_kind, case_id, created_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)`,
		rec.ID, rec.FirmID, rec.SubjectID, rec.SubjectKind, rec.Type, rec.Score,
		rec.Description, rec.EntityID, rec.EntityKind, rec.CaseID, rec.CreatedBy, rec.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert conflict record: %w", err)
	}
	return rec.ID, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (model.ConflictRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, firm_id, subject_id, subject_kind, conflict_type, severity,
			description, entity_id, entity_kind, COALESCE(case_id, ''),
			created_by, created_at, COALESCE(resolution, ''),
			COALESCE(resolved_by, ''), resolved_at
		FROM conflicts WHERE id = $1`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ConflictRecord{}, ErrNotFound
	}
	if err != nil {
		return model.ConflictRecord{}, fmt.Errorf("failed to load conflict record: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) UpdateResolution(ctx context.Context, id string, resolution model.Resolution, resolverID string, at time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE conflicts
		SET resolution = $2, resolved_by = $3, resolved_at = $4
		WHERE id = $1`,
		id, resolution, resolverID, at,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update resolution: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStore) ListUnresolved(ctx context.Context, firmID, userID string, since time.Time) ([]model.ConflictRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, firm_id, subject_id, subject_kind, conflict_type, severity,
			description, entity_id, entity_kind, COALESCE(case_id, ''),
			created_by, created_at, COALESCE(resolution, ''),
			COALESCE(resolved_by, ''), resolved_at
		FROM conflicts
		WHERE firm_id = $1 AND created_by = $2 AND resolution IS NULL AND created_at > $3
		ORDER BY created_at DESC`,
		firmID, userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved conflicts: %w", err)
	}
	defer rows.Close()

	var out []model.ConflictRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conflict record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (model.ConflictRecord, error) {
	var rec model.ConflictRecord
	err := row.Scan(
		&rec.ID, &rec.FirmID, &rec.SubjectID, &rec.SubjectKind, &rec.Type,
		&rec.Score, &rec.Description, &rec.EntityID, &rec.EntityKind,
		&rec.CaseID, &rec.CreatedBy, &rec.CreatedAt, &rec.Resolution,
		&rec.ResolvedBy, &rec.ResolvedAt,
	)
	return rec, err
}
