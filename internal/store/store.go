package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/burritos/internal/calendar"
	"github.com/Simplici0/burritos/internal/events"
)

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Publisher receives committed changes.
type Publisher interface {
	Publish(events.Change)
}

// Queries runs every statement against either the pool or a transaction.
type Queries struct {
	db   DBTX
	emit func(events.Change)
}

// Store owns the database handle. Its embedded Queries run outside any
// transaction; WithTx hands out transaction-bound Queries.
type Store struct {
	*Queries
	db  *sql.DB
	pub Publisher
	log *zap.Logger
}

// New wraps an open database. pub and log may be nil.
func New(db *sql.DB, pub Publisher, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Store{db: db, pub: pub, log: log}
	s.Queries = &Queries{db: db, emit: s.publish}
	return s
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn inside one transaction. Changes recorded by fn are published
// only after the commit succeeds. fn must not use the Store's own Queries:
// the pool holds a single connection.
func (s *Store) WithTx(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	var pending []events.Change
	q := &Queries{db: tx, emit: func(c events.Change) { pending = append(pending, c) }}

	if err := fn(q); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	for _, c := range pending {
		s.publish(c)
	}
	return nil
}

func (s *Store) publish(c events.Change) {
	if s.pub == nil {
		return
	}
	if c.At.IsZero() {
		c.At = time.Now()
	}
	s.log.Debug("change committed",
		zap.String("entity", string(c.Entity)),
		zap.String("op", string(c.Op)),
		zap.Int64("id", c.ID),
	)
	s.pub.Publish(c)
}

func (q *Queries) changed(entity events.Entity, op events.Op, id int64) {
	if q.emit != nil {
		q.emit(events.Change{Entity: entity, Op: op, ID: id})
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func requireAffected(result sql.Result, what string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", what, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: calendar.FormatDate(*t), Valid: true}
}

func datePtr(n sql.NullString) (*time.Time, error) {
	if !n.Valid || n.String == "" {
		return nil, nil
	}
	t, err := calendar.ParseDate(n.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// placeholders renders "?, ?, ?" for an IN clause of n values.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
