// Package db persists the candidate profile, its skills and the analysis history.
// PostgreSQL is used when a connection URL is configured, SQLite otherwise.
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/jonathan/job-matcher/internal/types"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrEmptySkillName is returned when adding a skill whose name is blank.
	ErrEmptySkillName = errors.New("skill name is empty")
)

// Analysis history page sizes.
const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// Store is the persistence interface used by the API and the CLI.
type Store interface {
	// GetProfile returns the profile, creating an empty one on first use.
	GetProfile(ctx context.Context) (*types.Profile, error)
	SaveProfile(ctx context.Context, p *types.Profile) error

	// ListSkills returns the skills ordered by name.
	ListSkills(ctx context.Context) ([]types.Skill, error)
	AddSkill(ctx context.Context, name string) (*types.Skill, error)
	DeleteSkill(ctx context.Context, id int64) error

	SaveAnalysis(ctx context.Context, rec *types.AnalysisRecord) error
	GetAnalysis(ctx context.Context, id uuid.UUID) (*types.AnalysisRecord, error)
	// ListAnalyses returns the newest analyses first.
	ListAnalyses(ctx context.Context, limit int) ([]types.AnalysisRecord, error)

	Close() error
}

// Open connects to PostgreSQL when databaseURL is set and to the SQLite file
// at sqlitePath otherwise, then applies pending migrations.
func Open(ctx context.Context, databaseURL, sqlitePath string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return OpenPostgres(ctx, databaseURL)
	}
	if strings.TrimSpace(sqlitePath) == "" {
		return nil, fmt.Errorf("no database configured: set DATABASE_URL or SQLITE_PATH")
	}
	return OpenSQLite(ctx, sqlitePath)
}

// migrate applies the embedded migrations for dialect.
func migrate(ctx context.Context, dialect goose.Dialect, dir string, sqlDB *sql.DB) error {
	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations %s: %w", dir, err)
	}
	provider, err := goose.NewProvider(dialect, sqlDB, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// normalizeProfile trims the profile fields in place.
func normalizeProfile(p *types.Profile) {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Summary = strings.TrimSpace(p.Summary)
}

// clampLimit maps non-positive limits to the default and caps large ones.
func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// prepareAnalysis fills the ID and normalizes nil slices before insert.
func prepareAnalysis(rec *types.AnalysisRecord) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.UserSkills == nil {
		rec.UserSkills = []string{}
	}
}
