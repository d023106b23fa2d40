// Package database opens the Postgres connection pool and owns the schema.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/lib/pq"
)

// NewPostgresConnection opens a pooled connection and verifies it with a ping
func NewPostgresConnection(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// LockGroup takes the transaction-scoped advisory lock that serializes ledger
// writes to one group across every API instance. It is released on commit or
// rollback.
func LockGroup(ctx context.Context, tx *sql.Tx, groupID string) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, groupID); err != nil {
		return fmt.Errorf("failed to lock group %s: %w", groupID, err)
	}
	return nil
}

// MissingMembers returns the ids that are not members of the group, sorted.
// Call it after LockGroup so the answer holds until commit.
func MissingMembers(ctx context.Context, tx *sql.Tx, groupID string, ids []string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT member_id FROM group_members
		WHERE group_id = $1 AND member_id = ANY($2)
	`, groupID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to check members: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to check members: %w", err)
	}

	var missing []string
	for _, id := range ids {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	slices.Sort(missing)
	return slices.Compact(missing), nil
}
