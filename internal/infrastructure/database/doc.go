// Package database provides the bridge's local SQLite store.
//
// The store is small: it holds the review-event feature flags and the
// schema_migrations bookkeeping table. It is opened with WAL mode and a
// busy timeout so the API and the bridge can read while a flag update is
// being written.
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migration Strategy:
//
// Migrations are embedded SQL files named
// YYYYMMDD_HHMMSS_description.up.sql with an optional matching .down.sql.
// They are additive: new columns must be NULLABLE or carry a DEFAULT.
package database
