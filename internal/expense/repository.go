package expense

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fkhayef/groupledger/internal/database"
	"github.com/fkhayef/groupledger/internal/expense/split"
	"github.com/fkhayef/groupledger/internal/ledger"
)

// Repository persists expenses and their weights in Postgres. Every write
// runs in a transaction holding the group's advisory lock.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectExpense = `
	SELECT id, group_id, description, amount, payer_id, expense_date, split_method, created_at
	FROM expenses
`

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*ledger.Expense, error) {
	e := &ledger.Expense{Weights: split.Weights{}}
	err := row.Scan(
		&e.ID,
		&e.GroupID,
		&e.Description,
		&e.Amount,
		&e.PayerID,
		&e.Date,
		&e.Method,
		&e.CreatedAt,
	)
	return e, err
}

// ListExpenses retrieves every expense of a group with its weights
func (r *Repository) ListExpenses(ctx context.Context, groupID string) ([]*ledger.Expense, error) {
	rows, err := r.db.QueryContext(ctx, selectExpense+` WHERE group_id = $1 ORDER BY id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*ledger.Expense, 0)
	byID := make(map[string]*ledger.Expense)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	weightRows, err := r.db.QueryContext(ctx, `
		SELECT expense_id, member_id, weight
		FROM expense_weights
		WHERE group_id = $1
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense weights: %w", err)
	}
	defer weightRows.Close()

	for weightRows.Next() {
		var expenseID, memberID string
		var weight decimal.Decimal
		if err := weightRows.Scan(&expenseID, &memberID, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan expense weight: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Weights[memberID] = weight
		}
	}
	if err := weightRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list expense weights: %w", err)
	}

	return expenses, nil
}

// GetExpense retrieves an expense by its ID
func (r *Repository) GetExpense(ctx context.Context, id string) (*ledger.Expense, error) {
	e, err := scanExpense(r.db.QueryRowContext(ctx, selectExpense+` WHERE id = $1`, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT member_id, weight FROM expense_weights WHERE expense_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense weights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID string
		var weight decimal.Decimal
		if err := rows.Scan(&memberID, &weight); err != nil {
			return nil, fmt.Errorf("failed to scan expense weight: %w", err)
		}
		e.Weights[memberID] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get expense weights: %w", err)
	}

	return e, nil
}

// SaveExpense inserts an expense and its weights in one transaction
func (r *Repository) SaveExpense(ctx context.Context, e *ledger.Expense) error {
	return r.inGroupTx(ctx, e.GroupID, func(tx *sql.Tx) error {
		return insertExpense(ctx, tx, e)
	})
}

// ReplaceExpense deletes oldID and inserts e atomically
func (r *Repository) ReplaceExpense(ctx context.Context, oldID string, e *ledger.Expense) error {
	return r.inGroupTx(ctx, e.GroupID, func(tx *sql.Tx) error {
		if err := deleteExpense(ctx, tx, oldID); err != nil {
			return err
		}
		return insertExpense(ctx, tx, e)
	})
}

// DeleteExpense removes an expense; its weights cascade
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	var groupID string
	err := r.db.QueryRowContext(ctx, `SELECT group_id FROM expenses WHERE id = $1`, id).Scan(&groupID)
	if err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: expense %s", ledger.ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	return r.inGroupTx(ctx, groupID, func(tx *sql.Tx) error {
		return deleteExpense(ctx, tx, id)
	})
}

// CountMemberExpenses counts the expenses memberID paid or carries a weight in
func (r *Repository) CountMemberExpenses(ctx context.Context, groupID, memberID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM expenses e
		WHERE e.group_id = $1 AND (
			e.payer_id = $2 OR EXISTS (
				SELECT 1 FROM expense_weights w WHERE w.expense_id = e.id AND w.member_id = $2
			)
		)
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, groupID, memberID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count member expenses: %w", err)
	}
	return count, nil
}

func (r *Repository) inGroupTx(ctx context.Context, groupID string, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := database.LockGroup(ctx, tx, groupID); err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense: %w", err)
	}
	return nil
}

func insertExpense(ctx context.Context, tx *sql.Tx, e *ledger.Expense) error {
	ids := []string{e.PayerID}
	for id := range e.Weights {
		ids = append(ids, id)
	}
	missing, err := database.MissingMembers(ctx, tx, e.GroupID, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ledger.ErrUnknownMember, strings.Join(missing, ", "))
	}

	query := `
		INSERT INTO expenses (id, group_id, description, amount, payer_id, expense_date, split_method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, query,
		e.ID,
		e.GroupID,
		e.Description,
		e.Amount,
		e.PayerID,
		e.Date,
		e.Method,
		e.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	for memberID, weight := range e.Weights {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO expense_weights (expense_id, group_id, member_id, weight)
			VALUES ($1, $2, $3, $4)
		`, e.ID, e.GroupID, memberID, weight); err != nil {
			return fmt.Errorf("failed to create expense weight: %w", err)
		}
	}
	return nil
}

func deleteExpense(ctx context.Context, tx *sql.Tx, id string) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: expense %s", ledger.ErrNotFound, id)
	}
	return nil
}

var _ ledger.ExpenseStore = (*Repository)(nil)
