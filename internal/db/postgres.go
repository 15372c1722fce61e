package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/jonathan/job-matcher/internal/types"
)

// PostgresStore is a Store backed by a PostgreSQL connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres establishes a connection pool and applies migrations.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDBFromPool(pool)
	defer func() { _ = sqlDB.Close() }()
	if err := migrate(ctx, goose.DialectPostgres, "migrations/postgres", sqlDB); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// GetProfile returns the profile, creating an empty one on first use.
func (s *PostgresStore) GetProfile(ctx context.Context) (*types.Profile, error) {
	if _, err := s.pool.Exec(ctx, `INSERT INTO profile (id) VALUES (1) ON CONFLICT (id) DO NOTHING`); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	var p types.Profile
	err := s.pool.QueryRow(ctx,
		`SELECT name, email, summary, updated_at FROM profile WHERE id = 1`,
	).Scan(&p.Name, &p.Email, &p.Summary, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// SaveProfile stores the trimmed profile fields.
func (s *PostgresStore) SaveProfile(ctx context.Context, p *types.Profile) error {
	normalizeProfile(p)
	err := s.pool.QueryRow(ctx,
		`INSERT INTO profile (id, name, email, summary, updated_at)
		 VALUES (1, $1, $2, $3, NOW())
		 ON CONFLICT (id) DO UPDATE SET name = $1, email = $2, summary = $3, updated_at = NOW()
		 RETURNING updated_at`,
		p.Name, p.Email, p.Summary,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// ListSkills returns the skills ordered by name.
func (s *PostgresStore) ListSkills(ctx context.Context) ([]types.Skill, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, created_at FROM skills ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer rows.Close()

	skills := []types.Skill{}
	for rows.Next() {
		var sk types.Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		skills = append(skills, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	return skills, nil
}

// AddSkill inserts a skill. Blank names are rejected with ErrEmptySkillName.
func (s *PostgresStore) AddSkill(ctx context.Context, name string) (*types.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptySkillName
	}

	sk := types.Skill{Name: name}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO skills (name) VALUES ($1) RETURNING id, created_at`,
		name,
	).Scan(&sk.ID, &sk.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add skill: %w", err)
	}
	return &sk, nil
}

// DeleteSkill removes a skill by ID.
func (s *PostgresStore) DeleteSkill(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete skill %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveAnalysis stores an analysis record, assigning an ID when unset.
// Saving an ID that already exists keeps the stored record.
func (s *PostgresStore) SaveAnalysis(ctx context.Context, rec *types.AnalysisRecord) error {
	prepareAnalysis(rec)

	skillsJSON, err := json.Marshal(rec.UserSkills)
	if err != nil {
		return fmt.Errorf("failed to marshal user skills: %w", err)
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO analyses (id, job_text, job_url, cv_text, user_skills, result, final_score)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING
		 RETURNING created_at`,
		rec.ID, rec.JobText, rec.JobURL, rec.CVText, skillsJSON, resultJSON, rec.Result.FinalScore,
	).Scan(&rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// An existing row with the same ID is kept as is.
		err = s.pool.QueryRow(ctx,
			`SELECT created_at FROM analyses WHERE id = $1`, rec.ID,
		).Scan(&rec.CreatedAt)
	}
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// GetAnalysis returns an analysis by ID.
func (s *PostgresStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*types.AnalysisRecord, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, job_text, job_url, cv_text, user_skills, result, created_at
		 FROM analyses WHERE id = $1`,
		id,
	)
	rec, err := scanPostgresAnalysis(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return rec, nil
}

// ListAnalyses returns the newest analyses first.
func (s *PostgresStore) ListAnalyses(ctx context.Context, limit int) ([]types.AnalysisRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_text, job_url, cv_text, user_skills, result, created_at
		 FROM analyses ORDER BY created_at DESC, id LIMIT $1`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	records := []types.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanPostgresAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return records, nil
}

func scanPostgresAnalysis(row pgx.Row) (*types.AnalysisRecord, error) {
	var rec types.AnalysisRecord
	var skillsJSON, resultJSON []byte
	if err := row.Scan(&rec.ID, &rec.JobText, &rec.JobURL, &rec.CVText, &skillsJSON, &resultJSON, &rec.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(skillsJSON, &rec.UserSkills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user skills: %w", err)
	}
	if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &rec, nil
}
