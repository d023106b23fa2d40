package settlement

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/fkhayef/groupledger/internal/database"
	"github.com/fkhayef/groupledger/internal/ledger"
)

// Repository persists settlements in Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectSettlement = `
	SELECT id, group_id, from_member_id, to_member_id, amount, settlement_date, notes, created_at
	FROM settlements
`

type scanner interface {
	Scan(dest ...any) error
}

func scanSettlement(row scanner) (*ledger.Settlement, error) {
	s := &ledger.Settlement{}
	err := row.Scan(
		&s.ID,
		&s.GroupID,
		&s.FromID,
		&s.ToID,
		&s.Amount,
		&s.Date,
		&s.Notes,
		&s.CreatedAt,
	)
	return s, err
}

// ListSettlements retrieves every settlement of a group
func (r *Repository) ListSettlements(ctx context.Context, groupID string) ([]*ledger.Settlement, error) {
	rows, err := r.db.QueryContext(ctx, selectSettlement+` WHERE group_id = $1 ORDER BY id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	settlements := make([]*ledger.Settlement, 0)
	for rows.Next() {
		s, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	return settlements, nil
}

// GetSettlement retrieves a settlement by its ID
func (r *Repository) GetSettlement(ctx context.Context, id string) (*ledger.Settlement, error) {
	s, err := scanSettlement(r.db.QueryRowContext(ctx, selectSettlement+` WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}
	return s, nil
}

// SaveSettlement inserts a settlement under the group's advisory lock
func (r *Repository) SaveSettlement(ctx context.Context, s *ledger.Settlement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := database.LockGroup(ctx, tx, s.GroupID); err != nil {
		return err
	}
	missing, err := database.MissingMembers(ctx, tx, s.GroupID, []string{s.FromID, s.ToID})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ledger.ErrUnknownMember, strings.Join(missing, ", "))
	}

	query := `
		INSERT INTO settlements (id, group_id, from_member_id, to_member_id, amount, settlement_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, query,
		s.ID,
		s.GroupID,
		s.FromID,
		s.ToID,
		s.Amount,
		s.Date,
		s.Notes,
		s.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement: %w", err)
	}
	return nil
}

// DeleteSettlement removes a settlement under the group's advisory lock
func (r *Repository) DeleteSettlement(ctx context.Context, id string) error {
	var groupID string
	err := r.db.QueryRowContext(ctx, `SELECT group_id FROM settlements WHERE id = $1`, id).Scan(&groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: settlement %s", ledger.ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete settlement: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := database.LockGroup(ctx, tx, groupID); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM settlements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: settlement %s", ledger.ErrNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settlement delete: %w", err)
	}
	return nil
}

// CountMemberSettlements counts the settlements memberID sent or received
func (r *Repository) CountMemberSettlements(ctx context.Context, groupID, memberID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM settlements
		WHERE group_id = $1 AND (from_member_id = $2 OR to_member_id = $2)
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, groupID, memberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count member settlements: %w", err)
	}
	return count, nil
}

var _ ledger.SettlementStore = (*Repository)(nil)
