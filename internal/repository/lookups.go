package repository

import (
	"context"
	"database/sql"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// PostgresLookupRepository reads the statuses and types reference tables.
type PostgresLookupRepository struct {
	DB *sql.DB
}

// NewPostgresLookupRepository creates a PostgresLookupRepository over db.
func NewPostgresLookupRepository(db *sql.DB) *PostgresLookupRepository {
	return &PostgresLookupRepository{DB: db}
}

// ListStatuses returns every status row.
func (r *PostgresLookupRepository) ListStatuses(ctx context.Context) ([]models.Status, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM statuses ORDER BY id`)
	if err != nil {
		return nil, storeErr("list statuses", err)
	}
	defer rows.Close()

	var statuses []models.Status
	for rows.Next() {
		var s models.Status
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, storeErr("scan status", err)
		}
		statuses = append(statuses, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list statuses", err)
	}
	return statuses, nil
}

// ListTypes returns every note type row.
func (r *PostgresLookupRepository) ListTypes(ctx context.Context) ([]models.Type, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM types ORDER BY id`)
	if err != nil {
		return nil, storeErr("list types", err)
	}
	defer rows.Close()

	var types []models.Type
	for rows.Next() {
		var t models.Type
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, storeErr("scan type", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list types", err)
	}
	return types, nil
}
