package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upSeedSettings, downSeedSettings)
}

// Seeds the global election circuit-breaker so public handlers always find a row.
func upSeedSettings(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO settings (setting_key, setting_value, updated_at)
		VALUES ('election_closed', 'false', now())
		ON CONFLICT (setting_key) DO NOTHING
	`)
	return err
}

func downSeedSettings(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM settings WHERE setting_key = 'election_closed'`)
	return err
}
