package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// sqlTable implements the collection contract over one Postgres table.
type sqlTable[T any] struct {
	db         *sqlx.DB
	noun       string
	selectAll  string
	selectByID string
	insert     string
	update     string
	remove     string
}

// List returns every row.
func (t *sqlTable[T]) List(ctx context.Context) ([]T, error) {
	var rows []T
	if err := t.db.SelectContext(ctx, &rows, t.selectAll); err != nil {
		return nil, fmt.Errorf("list %s: %w", t.noun, err)
	}
	return rows, nil
}

// FindByID returns the row with the given id.
func (t *sqlTable[T]) FindByID(ctx context.Context, id string) (*T, error) {
	var row T
	if err := t.db.GetContext(ctx, &row, t.selectByID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find %s by id: %w", t.noun, err)
	}
	return &row, nil
}

// Create inserts a new row.
func (t *sqlTable[T]) Create(ctx context.Context, record *T) error {
	if _, err := t.db.NamedExecContext(ctx, t.insert, record); err != nil {
		return t.wrap("create", err)
	}
	return nil
}

// Update rewrites the row sharing record's id.
func (t *sqlTable[T]) Update(ctx context.Context, record *T) error {
	res, err := t.db.NamedExecContext(ctx, t.update, record)
	if err != nil {
		return t.wrap("update", err)
	}
	return requireAffected(res)
}

// Modify locks the row with SELECT ... FOR UPDATE, applies fn and rewrites it in the
// same transaction. An error from fn rolls back and is returned as is.
func (t *sqlTable[T]) Modify(ctx context.Context, id string, fn func(*T) error) (_ *T, err error) {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin %s update: %w", t.noun, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var row T
	if err = tx.GetContext(ctx, &row, t.selectByID+" FOR UPDATE", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("lock %s: %w", t.noun, err)
	}
	if err = fn(&row); err != nil {
		return nil, err
	}
	res, err := tx.NamedExecContext(ctx, t.update, &row)
	if err != nil {
		return nil, t.wrap("update", err)
	}
	if err = requireAffected(res); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit %s update: %w", t.noun, err)
	}
	return &row, nil
}

// Delete removes the row with the given id.
func (t *sqlTable[T]) Delete(ctx context.Context, id string) error {
	res, err := t.db.ExecContext(ctx, t.remove, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.noun, err)
	}
	return requireAffected(res)
}

// AppendBatch inserts every record inside one transaction.
func (t *sqlTable[T]) AppendBatch(ctx context.Context, records []T) (err error) {
	if len(records) == 0 {
		return nil
	}
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s batch: %w", t.noun, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := range records {
		if _, err = tx.NamedExecContext(ctx, t.insert, &records[i]); err != nil {
			return t.wrap("append", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s batch: %w", t.noun, err)
	}
	return nil
}

func (t *sqlTable[T]) wrap(verb string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s %s: %w", verb, t.noun, ErrDuplicateKey)
	}
	return fmt.Errorf("%s %s: %w", verb, t.noun, err)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
