// Package postgres implements the durable cleaned-record sink on
// PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/user/event-pipeline/internal/domain"
)

const tempTableName = "clean_events_import"

// CleanedRecordStore implements domain.CleanedRecordStore for
// PostgreSQL.
type CleanedRecordStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewCleanedRecordStore creates a new PostgreSQL cleaned-record store.
func NewCleanedRecordStore(db *sql.DB, logger *slog.Logger) *CleanedRecordStore {
	return &CleanedRecordStore{db: db, logger: logger.With("component", "postgres_clean_store")}
}

// WriteRecords bulk-loads records with the COPY protocol into a temp
// table, then merges into clean_events with ON CONFLICT DO NOTHING on
// event_id. Re-running the pipeline over the same input is therefore a
// no-op, matching the pipeline's deduplication contract.
func (s *CleanedRecordStore) WriteRecords(ctx context.Context, records []domain.CleanedRecord) error {
	if len(records) == 0 {
		return nil
	}

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback() // Rollback is a no-op if Commit() is called

	_, err = txn.ExecContext(ctx, `CREATE TEMP TABLE `+tempTableName+` (LIKE clean_events INCLUDING DEFAULTS) ON COMMIT DROP;`)
	if err != nil {
		return fmt.Errorf("create staging table: %w", err)
	}

	stmt, err := txn.Prepare(pq.CopyIn(tempTableName,
		"event_id", "event_name", "event_time", "event_ts", "event_date",
		"user_id", "session_id", "platform", "schema_version", "properties_json"))
	if err != nil {
		return err
	}

	for _, r := range records {
		_, err = stmt.ExecContext(ctx, r.EventID, r.EventName, r.EventTime, r.EventTS, r.EventDate,
			r.UserID, r.SessionID, r.Platform, r.SchemaVersion, r.PropertiesJSON)
		if err != nil {
			_ = stmt.Close()
			return err
		}
	}

	if err := stmt.Close(); err != nil {
		return err
	}

	mergeQuery := `
		INSERT INTO clean_events (event_id, event_name, event_time, event_ts, event_date,
			user_id, session_id, platform, schema_version, properties_json)
		SELECT event_id, event_name, event_time, event_ts, event_date,
			user_id, session_id, platform, schema_version, properties_json
		FROM ` + tempTableName + `
		ON CONFLICT (event_id) DO NOTHING;
	`
	if _, err := txn.ExecContext(ctx, mergeQuery); err != nil {
		return fmt.Errorf("merge staging table: %w", err)
	}

	if err := txn.Commit(); err != nil {
		return err
	}

	s.logger.Debug("wrote cleaned records", "records", len(records))
	return nil
}
