package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Feaman/elven-keep-server/internal/models"
)

const userColumns = `id, first_name, second_name, email, password_hash, created, updated`

// PostgresUserRepository stores users in PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a PostgresUserRepository over db.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func scanUser(row interface{ Scan(...any) error }, u *models.User) error {
	return row.Scan(&u.ID, &u.FirstName, &u.SecondName, &u.Email, &u.PasswordHash, &u.Created, &u.Updated)
}

// Create inserts u and fills its id and timestamps. A duplicate email is
// reported as models.ErrValidationFailed.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (first_name, second_name, email, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created, updated
	`, u.FirstName, u.SecondName, u.Email, u.PasswordHash).Scan(&u.ID, &u.Created, &u.Updated)
	if isUniqueViolation(err) {
		return fmt.Errorf("create user: %w", models.NewValidationError("email is already registered"))
	}
	if err != nil {
		return storeErr("create user", err)
	}
	return nil
}

// GetByID fetches a single user.
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err := scanUser(row, &u); err != nil {
		return nil, storeErr("get user", err)
	}
	return &u, nil
}

// GetByEmail fetches a single user by email.
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err := scanUser(row, &u); err != nil {
		return nil, storeErr("get user by email", err)
	}
	return &u, nil
}

// GetByIDs fetches every user whose id is in userIDs. Unknown ids are skipped.
func (r *PostgresUserRepository) GetByIDs(ctx context.Context, userIDs []int64) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids(userIDs))
	if err != nil {
		return nil, storeErr("get users", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, storeErr("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("get users", err)
	}
	return users, nil
}

// Update writes the profile fields of u.
func (r *PostgresUserRepository) Update(ctx context.Context, u *models.User) error {
	err := r.DB.QueryRowContext(ctx, `
		UPDATE users SET first_name = $1, second_name = $2, email = $3, updated = now()
		WHERE id = $4
		RETURNING updated
	`, u.FirstName, u.SecondName, u.Email, u.ID).Scan(&u.Updated)
	if isUniqueViolation(err) {
		return fmt.Errorf("update user: %w", models.NewValidationError("email is already registered"))
	}
	if err != nil {
		return storeErr("update user", err)
	}
	return nil
}
