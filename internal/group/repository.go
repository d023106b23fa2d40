package group

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fkhayef/groupledger/internal/database"
)

// Store persists groups and their members. Getters return nil, nil when
// the record does not exist.
type Store interface {
	CreateGroup(ctx context.Context, g *Group, members []*Member) error
	GetGroup(ctx context.Context, id string) (*Group, error)
	ListGroups(ctx context.Context, memberID string, limit, offset int) ([]*Group, int, error)
	UpdateGroup(ctx context.Context, g *Group) error
	DeleteGroup(ctx context.Context, id string) error

	AddMember(ctx context.Context, m *Member) error
	GetMember(ctx context.Context, groupID, memberID string) (*Member, error)
	ListMembers(ctx context.Context, groupID string) ([]*Member, error)
	UpdateMember(ctx context.Context, m *Member) error
	RemoveMember(ctx context.Context, groupID, memberID string) error
}

// Repository handles group data persistence in Postgres
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateGroup inserts a group and its initial members in one transaction
func (r *Repository) CreateGroup(ctx context.Context, g *Group, members []*Member) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO groups (id, name, description, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, g.ID, g.Name, g.Description, g.Currency, g.CreatedAt); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	for _, m := range members {
		if err := insertMember(ctx, tx, m); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by its ID
func (r *Repository) GetGroup(ctx context.Context, id string) (*Group, error) {
	query := `
		SELECT id, name, description, currency, created_at
		FROM groups
		WHERE id = $1
	`

	g := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.Currency,
		&g.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return g, nil
}

// ListGroups retrieves groups, newest first. A non-empty memberID restricts
// the list to the groups that member belongs to.
func (r *Repository) ListGroups(ctx context.Context, memberID string, limit, offset int) ([]*Group, int, error) {
	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM groups g
		WHERE $1::text = '' OR EXISTS (
			SELECT 1 FROM group_members gm WHERE gm.group_id = g.id AND gm.member_id = $1
		)
	`
	if err := r.db.QueryRowContext(ctx, countQuery, memberID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT g.id, g.name, g.description, g.currency, g.created_at
		FROM groups g
		WHERE $1::text = '' OR EXISTS (
			SELECT 1 FROM group_members gm WHERE gm.group_id = g.id AND gm.member_id = $1
		)
		ORDER BY g.created_at DESC, g.id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, memberID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*Group, 0)
	for rows.Next() {
		g := &Group{}
		if err := rows.Scan(
			&g.ID,
			&g.Name,
			&g.Description,
			&g.Currency,
			&g.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}

	return groups, total, nil
}

// UpdateGroup stores the group's name and description
func (r *Repository) UpdateGroup(ctx context.Context, g *Group) error {
	query := `UPDATE groups SET name = $2, description = $3 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, g.ID, g.Name, g.Description)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return expectOneRow(result, ErrGroupNotFound)
}

// DeleteGroup removes a group; members and records cascade
func (r *Repository) DeleteGroup(ctx context.Context, id string) error {
	query := `DELETE FROM groups WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return expectOneRow(result, ErrGroupNotFound)
}

// AddMember adds a member to a group
func (r *Repository) AddMember(ctx context.Context, m *Member) error {
	return insertMember(ctx, r.db, m)
}

// GetMember retrieves a specific member from a group
func (r *Repository) GetMember(ctx context.Context, groupID, memberID string) (*Member, error) {
	query := `
		SELECT group_id, member_id, display_name, joined_at
		FROM group_members
		WHERE group_id = $1 AND member_id = $2
	`

	m := &Member{}
	err := r.db.QueryRowContext(ctx, query, groupID, memberID).Scan(
		&m.GroupID,
		&m.ID,
		&m.DisplayName,
		&m.JoinedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return m, nil
}

// ListMembers retrieves all members of a group in joining order
func (r *Repository) ListMembers(ctx context.Context, groupID string) ([]*Member, error) {
	query := `
		SELECT group_id, member_id, display_name, joined_at
		FROM group_members
		WHERE group_id = $1
		ORDER BY joined_at, member_id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	members := make([]*Member, 0)
	for rows.Next() {
		m := &Member{}
		if err := rows.Scan(
			&m.GroupID,
			&m.ID,
			&m.DisplayName,
			&m.JoinedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}

	return members, nil
}

// UpdateMember stores a member's display name
func (r *Repository) UpdateMember(ctx context.Context, m *Member) error {
	query := `UPDATE group_members SET display_name = $3 WHERE group_id = $1 AND member_id = $2`

	result, err := r.db.ExecContext(ctx, query, m.GroupID, m.ID, m.DisplayName)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return expectOneRow(result, ErrMemberNotFound)
}

// RemoveMember removes a member with no recorded activity. It holds the
// group's ledger lock so no write on another instance can reference the
// member between the check and the delete.
func (r *Repository) RemoveMember(ctx context.Context, groupID, memberID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := database.LockGroup(ctx, tx, groupID); err != nil {
		return err
	}

	var referenced bool
	activity := `
		SELECT EXISTS (SELECT 1 FROM expenses WHERE group_id = $1 AND payer_id = $2)
			OR EXISTS (SELECT 1 FROM expense_weights WHERE group_id = $1 AND member_id = $2)
			OR EXISTS (SELECT 1 FROM settlements WHERE group_id = $1 AND (from_member_id = $2 OR to_member_id = $2))
	`
	if err := tx.QueryRowContext(ctx, activity, groupID, memberID).Scan(&referenced); err != nil {
		return fmt.Errorf("failed to check member activity: %w", err)
	}
	if referenced {
		return fmt.Errorf("%w: %s", ErrMemberHasActivity, memberID)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = $1 AND member_id = $2`, groupID, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if err := expectOneRow(result, ErrMemberNotFound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit member removal: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertMember(ctx context.Context, db execer, m *Member) error {
	query := `
		INSERT INTO group_members (group_id, member_id, display_name, joined_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := db.ExecContext(ctx, query, m.GroupID, m.ID, m.DisplayName, m.JoinedAt); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}

var _ Store = (*Repository)(nil)
