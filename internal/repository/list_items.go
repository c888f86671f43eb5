package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Feaman/elven-keep-server/internal/models"
)

const listItemColumns = `id, note_id, text, checked, completed, status_id, "order", created, updated`

// PostgresListItemRepository stores list items in PostgreSQL.
type PostgresListItemRepository struct {
	DB *sql.DB
}

// NewPostgresListItemRepository creates a PostgresListItemRepository over db.
func NewPostgresListItemRepository(db *sql.DB) *PostgresListItemRepository {
	return &PostgresListItemRepository{DB: db}
}

func scanListItem(row interface{ Scan(...any) error }, li *models.ListItem) error {
	return row.Scan(&li.ID, &li.NoteID, &li.Text, &li.Checked, &li.Completed, &li.StatusID, &li.Order, &li.Created, &li.Updated)
}

// insertListItem appends li to its note's order when li.Order is zero.
func insertListItem(ctx context.Context, q querier, li *models.ListItem) error {
	err := q.QueryRowContext(ctx, `
		INSERT INTO list_items (note_id, text, checked, completed, status_id, "order")
		VALUES ($1, $2, $3, $4, $5,
			COALESCE(NULLIF($6, 0), (SELECT COALESCE(MAX("order"), 0) + 1 FROM list_items WHERE note_id = $1)))
		RETURNING id, "order", created, updated
	`, li.NoteID, li.Text, li.Checked, li.Completed, li.StatusID, li.Order,
	).Scan(&li.ID, &li.Order, &li.Created, &li.Updated)
	if err != nil {
		return storeErr("create list item", err)
	}
	return nil
}

// ListByNoteIDs returns the items of every note in noteIDs with statusID,
// grouped by note and sorted by order. onlyUncompleted drops completed items.
func (r *PostgresListItemRepository) ListByNoteIDs(ctx context.Context, noteIDs []int64, statusID int64, onlyUncompleted bool) ([]models.ListItem, error) {
	query := `SELECT ` + listItemColumns + ` FROM list_items WHERE note_id = ANY($1) AND status_id = $2`
	if onlyUncompleted {
		query += ` AND completed = FALSE`
	}
	query += ` ORDER BY note_id, "order" ASC, created ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query, ids(noteIDs), statusID)
	if err != nil {
		return nil, storeErr("list items", err)
	}
	defer rows.Close()

	var items []models.ListItem
	for rows.Next() {
		var li models.ListItem
		if err := scanListItem(rows, &li); err != nil {
			return nil, storeErr("scan list item", err)
		}
		items = append(items, li)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list items", err)
	}
	return items, nil
}

// GetByID fetches one item. A zero statusID matches every status.
func (r *PostgresListItemRepository) GetByID(ctx context.Context, id, statusID int64) (*models.ListItem, error) {
	query := `SELECT ` + listItemColumns + ` FROM list_items WHERE id = $1`
	args := []any{id}
	if statusID != 0 {
		query += ` AND status_id = $2`
		args = append(args, statusID)
	}

	var li models.ListItem
	if err := scanListItem(r.DB.QueryRowContext(ctx, query, args...), &li); err != nil {
		return nil, storeErr(fmt.Sprintf("get list item %d", id), err)
	}
	return &li, nil
}

// Create inserts li at the end of its note's order.
func (r *PostgresListItemRepository) Create(ctx context.Context, li *models.ListItem) error {
	return insertListItem(ctx, r.DB, li)
}

// Update writes text and flags of li. Status only changes through UpdateStatus.
func (r *PostgresListItemRepository) Update(ctx context.Context, li *models.ListItem) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE list_items SET text = $1, checked = $2, completed = $3, updated = now()
		WHERE id = $4
		RETURNING updated
	`, li.Text, li.Checked, li.Completed, li.ID).Scan(&li.Updated)
	if err != nil {
		return storeErr(fmt.Sprintf("update list item %d", li.ID), err)
	}
	return nil
}

// UpdateStatus flips the status of item id.
func (r *PostgresListItemRepository) UpdateStatus(ctx context.Context, id, statusID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE list_items SET status_id = $1, updated = now() WHERE id = $2`, statusID, id)
	if err != nil {
		return storeErr("update list item status", err)
	}
	return expectOneRow("update list item status", res)
}

// UpdateOrders persists the given item id to order assignments atomically.
func (r *PostgresListItemRepository) UpdateOrders(ctx context.Context, orders map[int64]int) error {
	return updateOrders(ctx, r.DB, "list_items", orders)
}

// CompleteChecked marks every checked, not yet completed item of the note as
// completed and reports how many rows changed.
func (r *PostgresListItemRepository) CompleteChecked(ctx context.Context, noteID, statusID int64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE list_items SET completed = TRUE, updated = now()
		WHERE note_id = $1 AND status_id = $2 AND checked = TRUE AND completed = FALSE
	`, noteID, statusID)
	if err != nil {
		return 0, storeErr("complete list items", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("complete list items", err)
	}
	return n, nil
}
