// Package repository provides the Postgres persistence layer for users,
// lookup tables, notes, list items and co-author grants.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// storeErr maps a driver error to the model taxonomy: missing rows become
// models.ErrNotFound, everything else models.ErrStore.
func storeErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, models.ErrStore, err)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// ids normalizes a nil slice so pq.Array renders '{}' instead of NULL.
func ids(in []int64) any {
	if in == nil {
		in = []int64{}
	}
	return pq.Array(in)
}

// expectOneRow turns a zero rows-affected update into models.ErrNotFound.
func expectOneRow(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storeErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

// updateOrders writes the "order" column of table for every id in orders
// inside one transaction. Ids are written in ascending order so concurrent
// reorders lock rows in the same sequence.
func updateOrders(ctx context.Context, db *sql.DB, table string, orders map[int64]int) error {
	if len(orders) == 0 {
		return nil
	}

	keys := make([]int64, 0, len(orders))
	for id := range orders {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin tx", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(`UPDATE %s SET "order" = $1, updated = now() WHERE id = $2`, table)
	for _, id := range keys {
		res, err := tx.ExecContext(ctx, query, orders[id], id)
		if err != nil {
			return storeErr("update order", err)
		}
		if err := expectOneRow("update order", res); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	return nil
}
