package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/jonathan/job-matcher/internal/types"
)

// timeLayout is fixed width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore is a Store backed by a local SQLite file.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path and applies migrations.
// Use ":memory:" for a throwaway database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite: single writer, and ":memory:" is per connection.
	sqlDB.SetMaxOpenConns(1)

	if _, err := sqlDB.ExecContext(ctx, `PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to configure sqlite: %w", err)
	}

	if err := migrate(ctx, goose.DialectSQLite3, "migrations/sqlite", sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &SQLiteStore{db: sqlDB, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	t, err := time.Parse(timeLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", v, err)
	}
	return t, nil
}

// GetProfile returns the profile, creating an empty one on first use.
func (s *SQLiteStore) GetProfile(ctx context.Context) (*types.Profile, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO profile (id, updated_at) VALUES (1, ?)`, s.timestamp(),
	); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	var p types.Profile
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, email, summary, updated_at FROM profile WHERE id = 1`,
	).Scan(&p.Name, &p.Email, &p.Summary, &updated)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProfile stores the trimmed profile fields.
func (s *SQLiteStore) SaveProfile(ctx context.Context, p *types.Profile) error {
	normalizeProfile(p)
	now := s.timestamp()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile (id, name, email, summary, updated_at) VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, email = excluded.email,
		 summary = excluded.summary, updated_at = excluded.updated_at`,
		p.Name, p.Email, p.Summary, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	p.UpdatedAt, _ = parseTime(now)
	return nil
}

// ListSkills returns the skills ordered by name.
func (s *SQLiteStore) ListSkills(ctx context.Context) ([]types.Skill, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM skills ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	defer func() { _ = rows.Close() }()

	skills := []types.Skill{}
	for rows.Next() {
		var sk types.Skill
		var created string
		if err := rows.Scan(&sk.ID, &sk.Name, &created); err != nil {
			return nil, fmt.Errorf("failed to scan skill: %w", err)
		}
		if sk.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		skills = append(skills, sk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list skills: %w", err)
	}
	return skills, nil
}

// AddSkill inserts a skill. Blank names are rejected with ErrEmptySkillName.
func (s *SQLiteStore) AddSkill(ctx context.Context, name string) (*types.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptySkillName
	}

	now := s.timestamp()
	res, err := s.db.ExecContext(ctx, `INSERT INTO skills (name, created_at) VALUES (?, ?)`, name, now)
	if err != nil {
		return nil, fmt.Errorf("failed to add skill: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read skill id: %w", err)
	}
	created, _ := parseTime(now)
	return &types.Skill{ID: id, Name: name, CreatedAt: created}, nil
}

// DeleteSkill removes a skill by ID.
func (s *SQLiteStore) DeleteSkill(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM skills WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete skill %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete skill %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveAnalysis stores an analysis record, assigning an ID when unset.
// Saving an ID that already exists keeps the stored record.
func (s *SQLiteStore) SaveAnalysis(ctx context.Context, rec *types.AnalysisRecord) error {
	prepareAnalysis(rec)

	skillsJSON, err := json.Marshal(rec.UserSkills)
	if err != nil {
		return fmt.Errorf("failed to marshal user skills: %w", err)
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO analyses (id, job_text, job_url, cv_text, user_skills, result, final_score, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.JobText, rec.JobURL, rec.CVText, string(skillsJSON), string(resultJSON), rec.Result.FinalScore, s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	// An existing row with the same ID is kept as is.
	var created string
	if err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM analyses WHERE id = ?`, rec.ID.String(),
	).Scan(&created); err != nil {
		return fmt.Errorf("failed to read saved analysis: %w", err)
	}
	rec.CreatedAt, err = parseTime(created)
	return err
}

// GetAnalysis returns an analysis by ID.
func (s *SQLiteStore) GetAnalysis(ctx context.Context, id uuid.UUID) (*types.AnalysisRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, job_text, job_url, cv_text, user_skills, result, created_at
		 FROM analyses WHERE id = ?`,
		id.String(),
	)
	rec, err := scanSQLiteAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analysis %s: %w", id, err)
	}
	return rec, nil
}

// ListAnalyses returns the newest analyses first.
func (s *SQLiteStore) ListAnalyses(ctx context.Context, limit int) ([]types.AnalysisRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, job_text, job_url, cv_text, user_skills, result, created_at
		 FROM analyses ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		clampLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []types.AnalysisRecord{}
	for rows.Next() {
		rec, err := scanSQLiteAnalysis(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteAnalysis(row rowScanner) (*types.AnalysisRecord, error) {
	var rec types.AnalysisRecord
	var id, skillsJSON, resultJSON, created string
	if err := row.Scan(&id, &rec.JobText, &rec.JobURL, &rec.CVText, &skillsJSON, &resultJSON, &created); err != nil {
		return nil, err
	}

	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid stored analysis id %q: %w", id, err)
	}
	if err := json.Unmarshal([]byte(skillsJSON), &rec.UserSkills); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user skills: %w", err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	if rec.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &rec, nil
}
