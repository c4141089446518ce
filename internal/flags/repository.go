package flags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository loads and saves flag sets.
type Repository interface {
	Load(ctx context.Context, key string) (Flags, error)
	Save(ctx context.Context, key string, f Flags) (Flags, error)
}

// SQLiteRepository stores flag sets in the feature_flags table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a repository on an open, migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Load returns the flags stored under key, or all-off flags when nothing
// has been saved yet.
func (r *SQLiteRepository) Load(ctx context.Context, key string) (Flags, error) {
	if key == "" {
		return Flags{}, ErrInvalidKey
	}

	var (
		f         Flags
		updatedAt string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT global_enabled, system_enabled, audit_enabled, access_enabled,
		        security_enabled, hardware_enabled, updated_at
		   FROM feature_flags WHERE flags_key = ?`, key,
	).Scan(&f.Global, &f.System, &f.Audit, &f.Access, &f.Security, &f.Hardware, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Flags{}, nil
	}
	if err != nil {
		return Flags{}, fmt.Errorf("loading flags %q: %w", key, err)
	}

	f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt) //nolint:errcheck // Format is controlled
	return f, nil
}

// Save upserts the flags under key and returns them with UpdatedAt set.
func (r *SQLiteRepository) Save(ctx context.Context, key string, f Flags) (Flags, error) {
	if key == "" {
		return Flags{}, ErrInvalidKey
	}

	f.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO feature_flags (flags_key, global_enabled, system_enabled, audit_enabled,
		                            access_enabled, security_enabled, hardware_enabled, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(flags_key) DO UPDATE SET
		     global_enabled   = excluded.global_enabled,
		     system_enabled   = excluded.system_enabled,
		     audit_enabled    = excluded.audit_enabled,
		     access_enabled   = excluded.access_enabled,
		     security_enabled = excluded.security_enabled,
		     hardware_enabled = excluded.hardware_enabled,
		     updated_at       = excluded.updated_at`,
		key, f.Global, f.System, f.Audit, f.Access, f.Security, f.Hardware,
		f.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return Flags{}, fmt.Errorf("saving flags %q: %w", key, err)
	}
	return f, nil
}
