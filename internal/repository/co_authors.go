package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Feaman/elven-keep-server/internal/models"
)

const coAuthorColumns = `id, note_id, user_id, status_id, created, updated`

// PostgresCoAuthorRepository stores note co-author grants in PostgreSQL.
type PostgresCoAuthorRepository struct {
	DB *sql.DB
}

// NewPostgresCoAuthorRepository creates a PostgresCoAuthorRepository over db.
func NewPostgresCoAuthorRepository(db *sql.DB) *PostgresCoAuthorRepository {
	return &PostgresCoAuthorRepository{DB: db}
}

func scanCoAuthor(row interface{ Scan(...any) error }, c *models.NoteCoAuthor) error {
	return row.Scan(&c.ID, &c.NoteID, &c.UserID, &c.StatusID, &c.Created, &c.Updated)
}

// ListByUser returns the grants with statusID whose target is userID, that is
// the notes shared to that user.
func (r *PostgresCoAuthorRepository) ListByUser(ctx context.Context, userID, statusID int64) ([]models.NoteCoAuthor, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+coAuthorColumns+` FROM note_co_authors WHERE user_id = $1 AND status_id = $2 ORDER BY id`,
		userID, statusID)
	if err != nil {
		return nil, storeErr("list co-authors by user", err)
	}
	defer rows.Close()

	var grants []models.NoteCoAuthor
	for rows.Next() {
		var c models.NoteCoAuthor
		if err := scanCoAuthor(rows, &c); err != nil {
			return nil, storeErr("scan co-author", err)
		}
		grants = append(grants, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list co-authors by user", err)
	}
	return grants, nil
}

// ListByNoteIDs returns the grants with statusID on every note in noteIDs,
// each with its target user's public profile attached.
func (r *PostgresCoAuthorRepository) ListByNoteIDs(ctx context.Context, noteIDs []int64, statusID int64) ([]models.NoteCoAuthor, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT c.id, c.note_id, c.user_id, c.status_id, c.created, c.updated,
			u.first_name, u.second_name, u.email
		FROM note_co_authors c
		INNER JOIN users u ON u.id = c.user_id
		WHERE c.note_id = ANY($1) AND c.status_id = $2
		ORDER BY c.note_id, c.id
	`, ids(noteIDs), statusID)
	if err != nil {
		return nil, storeErr("list co-authors by notes", err)
	}
	defer rows.Close()

	var grants []models.NoteCoAuthor
	for rows.Next() {
		var (
			c models.NoteCoAuthor
			u models.User
		)
		if err := rows.Scan(&c.ID, &c.NoteID, &c.UserID, &c.StatusID, &c.Created, &c.Updated,
			&u.FirstName, &u.SecondName, &u.Email); err != nil {
			return nil, storeErr("scan co-author", err)
		}
		u.ID = c.UserID
		c.User = &u
		grants = append(grants, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list co-authors by notes", err)
	}
	return grants, nil
}

// GetByID fetches one grant in any status.
func (r *PostgresCoAuthorRepository) GetByID(ctx context.Context, id int64) (*models.NoteCoAuthor, error) {
	var c models.NoteCoAuthor
	row := r.DB.QueryRowContext(ctx, `SELECT `+coAuthorColumns+` FROM note_co_authors WHERE id = $1`, id)
	if err := scanCoAuthor(row, &c); err != nil {
		return nil, storeErr(fmt.Sprintf("get co-author %d", id), err)
	}
	return &c, nil
}

// GetByNoteAndUser fetches the grant of noteID to userID in any status.
func (r *PostgresCoAuthorRepository) GetByNoteAndUser(ctx context.Context, noteID, userID int64) (*models.NoteCoAuthor, error) {
	var c models.NoteCoAuthor
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+coAuthorColumns+` FROM note_co_authors WHERE note_id = $1 AND user_id = $2`, noteID, userID)
	if err := scanCoAuthor(row, &c); err != nil {
		return nil, storeErr("get co-author by note and user", err)
	}
	return &c, nil
}

// Create inserts grant c and fills its id and timestamps.
func (r *PostgresCoAuthorRepository) Create(ctx context.Context, c *models.NoteCoAuthor) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO note_co_authors (note_id, user_id, status_id)
		VALUES ($1, $2, $3)
		RETURNING id, created, updated
	`, c.NoteID, c.UserID, c.StatusID).Scan(&c.ID, &c.Created, &c.Updated)
	if isUniqueViolation(err) {
		return fmt.Errorf("create co-author: %w", models.NewValidationError("user is already a co-author"))
	}
	if err != nil {
		return storeErr("create co-author", err)
	}
	return nil
}

// UpdateStatus flips the status of grant id.
func (r *PostgresCoAuthorRepository) UpdateStatus(ctx context.Context, id, statusID int64) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE note_co_authors SET status_id = $1, updated = now() WHERE id = $2`, statusID, id)
	if err != nil {
		return storeErr("update co-author status", err)
	}
	return expectOneRow("update co-author status", res)
}
