// Package repository contains data access logic separated from HTTP handlers.
// This file implements the SQL-backed TheaterStore.  The same queries serve
// MySQL and SQLite since both accept `?` placeholders and report
// LastInsertId.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"       // errors is used to unwrap driver errors
	"fmt"

	"github.com/go-sql-driver/mysql" // mysql exposes MySQLError for error number checks

	"github.com/iliyamo/theater-service/internal/model"
)

// mysqlErrDataTooLong is ER_DATA_TOO_LONG, raised in strict mode when a
// value exceeds its column width.
const mysqlErrDataTooLong = 1406

// TheaterRepo encapsulates all database queries related to theaters.  It
// depends on a sql.DB connection which should be configured elsewhere and
// keeps the changes staged since the last SaveChanges.
type TheaterRepo struct {
	db      *sql.DB     // db is the underlying database connection pool
	pending []pendingOp // staged changes, applied in order by SaveChanges
}

// NewTheaterRepo constructs a TheaterRepo with the provided DB handle.
func NewTheaterRepo(db *sql.DB) *TheaterRepo {
	return &TheaterRepo{db: db}
}

// NewSQLStoreFactory returns a StoreFactory that opens a TheaterRepo over
// the shared pool for every request.
func NewSQLStoreFactory(db *sql.DB) StoreFactory {
	return func() TheaterStore { return NewTheaterRepo(db) }
}

// FindByID fetches a theater by its ID.  It returns ErrTheaterNotFound if no
// row is found.
func (r *TheaterRepo) FindByID(ctx context.Context, id int64) (*model.Theater, error) {
	const q = "SELECT id, name, location, notes FROM theaters WHERE id = ?"
	var (
		t     model.Theater
		notes sql.NullString
	)
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Location, &notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTheaterNotFound
		}
		return nil, err
	}
	t.Notes = nullableString(notes)
	return &t, nil
}

// ListAll returns all theaters ordered by id.
func (r *TheaterRepo) ListAll(ctx context.Context) ([]*model.Theater, error) {
	const q = `SELECT id, name, location, notes FROM theaters ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Theater
	for rows.Next() {
		var notes sql.NullString
		t := new(model.Theater)
		if err := rows.Scan(&t.ID, &t.Name, &t.Location, &notes); err != nil {
			return nil, err
		}
		t.Notes = nullableString(notes)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Add stages an insert.  The theater's ID is populated by SaveChanges.
func (r *TheaterRepo) Add(t *model.Theater) { r.stage(opAdd, t) }

// Update stages an update of name, location and notes for t.ID.
func (r *TheaterRepo) Update(t *model.Theater) { r.stage(opUpdate, t) }

// Remove stages a delete of t.ID.
func (r *TheaterRepo) Remove(t *model.Theater) { r.stage(opRemove, t) }

func (r *TheaterRepo) stage(kind opKind, t *model.Theater) {
	r.pending = append(r.pending, pendingOp{kind: kind, theater: t})
}

// SaveChanges applies the staged changes inside one transaction.  An update
// or delete that affects no row aborts the whole batch with
// ErrTheaterNotFound.  Generated ids are written back only after commit.
func (r *TheaterRepo) SaveChanges(ctx context.Context) (err error) {
	ops := r.pending
	r.pending = nil
	if len(ops) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ids := make(map[*model.Theater]int64)
	for _, op := range ops {
		t := op.theater
		switch op.kind {
		case opAdd:
			const q = "INSERT INTO theaters (name, location, notes) VALUES (?, ?, ?)"
			res, execErr := tx.ExecContext(ctx, q, t.Name, t.Location, t.Notes)
			if execErr != nil {
				return translate(execErr)
			}
			id, idErr := res.LastInsertId()
			if idErr != nil {
				return idErr
			}
			ids[t] = id
		case opUpdate:
			const q = "UPDATE theaters SET name = ?, location = ?, notes = ? WHERE id = ?"
			if err = execAffecting(ctx, tx, q, t.Name, t.Location, t.Notes, t.ID); err != nil {
				return err
			}
		case opRemove:
			if err = execAffecting(ctx, tx, "DELETE FROM theaters WHERE id = ?", t.ID); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown staged operation %d", op.kind)
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	for t, id := range ids {
		t.ID = id
	}
	return nil
}

// execAffecting runs q and returns ErrTheaterNotFound when no row matched.
// MySQL connections are opened with clientFoundRows so an update that
// changes nothing still counts its matched row.
func execAffecting(ctx context.Context, tx *sql.Tx, q string, args ...any) error {
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTheaterNotFound
	}
	return nil
}

// translate maps driver errors onto repository sentinels.
func translate(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlErrDataTooLong {
		return fmt.Errorf("%w: %s", ErrValueTooLong, myErr.Message)
	}
	return err
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
