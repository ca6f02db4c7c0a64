package playlist

import (
	"context"
)

// Migrate creates the playlists table.
func Migrate(ctx context.Context, db DB) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS playlists (
			id         uuid PRIMARY KEY,
			owner_id   TEXT NOT NULL,
			name       TEXT NOT NULL,
			cover      TEXT NOT NULL DEFAULT '',
			songs      JSONB NOT NULL DEFAULT '[]',
			is_public  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	return err
}
