package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Feaman/elven-keep-server/internal/models"
)

const noteColumns = `id, user_id, title, text, type_id, status_id, "order",
	is_completed_list_expanded, is_countable, is_show_checked_checkboxes, created, updated`

// PostgresNoteRepository stores notes in PostgreSQL.
type PostgresNoteRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresNoteRepository creates a PostgresNoteRepository over db.
func NewPostgresNoteRepository(db *sql.DB) *PostgresNoteRepository {
	return &PostgresNoteRepository{DB: db}
}

func scanNote(row interface{ Scan(...any) error }, n *models.Note) error {
	return row.Scan(
		&n.ID, &n.UserID, &n.Title, &n.Text, &n.TypeID, &n.StatusID, &n.Order,
		&n.IsCompletedListExpanded, &n.IsCountable, &n.IsShowCheckedCheckboxes,
		&n.Created, &n.Updated,
	)
}

// accessClause renders f as a WHERE fragment whose placeholders continue after
// the arguments already in args.
func accessClause(f models.NoteFilter, args []any) (string, []any) {
	args = append(args, f.UserID, ids(f.SharedNoteIDs))
	clause := fmt.Sprintf("(user_id = $%d OR id = ANY($%d))", len(args)-1, len(args))
	if f.StatusID != 0 {
		args = append(args, f.StatusID)
		clause += fmt.Sprintf(" AND status_id = $%d", len(args))
	}
	return clause, args
}

// List returns every note matching f, newest first, or by manual order when
// f.ByOrder is set. Equal orders fall back to creation time.
func (r *PostgresNoteRepository) List(ctx context.Context, f models.NoteFilter) ([]models.Note, error) {
	where, args := accessClause(f, nil)
	orderBy := `created DESC, id DESC`
	if f.ByOrder {
		orderBy = `"order" ASC, created ASC, id ASC`
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE `+where+` ORDER BY `+orderBy, args...)
	if err != nil {
		return nil, storeErr("list notes", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		var n models.Note
		if err := scanNote(rows, &n); err != nil {
			return nil, storeErr("scan note", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list notes", err)
	}
	return notes, nil
}

// GetByID returns note id if it matches f. A note that exists but fails f is
// reported exactly like a missing one.
func (r *PostgresNoteRepository) GetByID(ctx context.Context, id int64, f models.NoteFilter) (*models.Note, error) {
	where, args := accessClause(f, []any{id})

	var n models.Note
	row := r.DB.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1 AND `+where, args...)
	if err := scanNote(row, &n); err != nil {
		return nil, storeErr(fmt.Sprintf("get note %d", id), err)
	}
	return &n, nil
}

// Create inserts n at the end of its owner's order and then each of its list
// items, all in one transaction. Ids, orders and timestamps are written back.
func (r *PostgresNoteRepository) Create(ctx context.Context, n *models.Note) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin tx", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO notes (user_id, title, text, type_id, status_id, "order",
			is_completed_list_expanded, is_countable, is_show_checked_checkboxes)
		VALUES ($1, $2, $3, $4, $5,
			(SELECT COALESCE(MAX("order"), 0) + 1 FROM notes WHERE user_id = $1),
			$6, $7, $8)
		RETURNING id, "order", created, updated
	`, n.UserID, n.Title, n.Text, n.TypeID, n.StatusID,
		n.IsCompletedListExpanded, n.IsCountable, n.IsShowCheckedCheckboxes,
	).Scan(&n.ID, &n.Order, &n.Created, &n.Updated)
	if err != nil {
		return storeErr("create note", err)
	}

	for i := range n.List {
		item := &n.List[i]
		item.NoteID = n.ID
		if err := insertListItem(ctx, tx, item); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	return nil
}

// Update writes the editable columns of n. Owner, order and status are left
// untouched; status only changes through UpdateStatus.
func (r *PostgresNoteRepository) Update(ctx context.Context, n *models.Note) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE notes SET title = $1, text = $2, type_id = $3,
			is_completed_list_expanded = $4, is_countable = $5, is_show_checked_checkboxes = $6,
			updated = now()
		WHERE id = $7
		RETURNING updated
	`, n.Title, n.Text, n.TypeID,
		n.IsCompletedListExpanded, n.IsCountable, n.IsShowCheckedCheckboxes, n.ID,
	).Scan(&n.Updated)
	if err != nil {
		return storeErr(fmt.Sprintf("update note %d", n.ID), err)
	}
	return nil
}

// UpdateStatus flips the status of note id.
func (r *PostgresNoteRepository) UpdateStatus(ctx context.Context, id, statusID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE notes SET status_id = $1, updated = now() WHERE id = $2`, statusID, id)
	if err != nil {
		return storeErr("update note status", err)
	}
	return expectOneRow("update note status", res)
}

// UpdateOrders persists the given note id to order assignments atomically.
func (r *PostgresNoteRepository) UpdateOrders(ctx context.Context, orders map[int64]int) error {
	return updateOrders(ctx, r.DB, "notes", orders)
}
