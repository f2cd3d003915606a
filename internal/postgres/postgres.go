// Package postgres provides an entity store backend in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/evcraddock/domaindeck/internal/store"
)

// Postgres provides record storage in PostgreSQL.
type Postgres struct {
	bun *bun.DB
}

// Connect connects to the database, pings it to ensure the connection is
// working, and creates the entities table if needed.
func Connect(ctx context.Context, connStr string) (*Postgres, error) {
	sqlDB := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(connStr)))
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db := bun.NewDB(sqlDB, pgdialect.New())

	if _, err := db.NewCreateTable().Model((*entity)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	if _, err := db.NewCreateIndex().
		Model((*entity)(nil)).
		Index("entities_kind_seq").
		IfNotExists().
		Column("kind", "seq").
		Exec(ctx); err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &Postgres{bun: db}, nil
}

// Insert stores a new record.
func (pg *Postgres) Insert(ctx context.Context, kind, id string, data []byte) error {
	e := &entity{Kind: kind, ID: id, Data: string(data)}
	res, err := pg.bun.NewInsert().
		Model(e).
		ExcludeColumn("seq", "created_at", "updated_at").
		On("CONFLICT (kind, id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrExists
	}
	return nil
}

// Get loads a record.
func (pg *Postgres) Get(ctx context.Context, kind, id string) ([]byte, error) {
	var e entity
	err := pg.bun.NewSelect().
		Model(&e).
		Column("data").
		Where("kind = ?", kind).
		Where("id = ?", id).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	return []byte(e.Data), nil
}

// List returns all records of kind in insertion order.
func (pg *Postgres) List(ctx context.Context, kind string) ([][]byte, error) {
	var rows []entity
	if err := pg.bun.NewSelect().
		Model(&rows).
		Column("data").
		Where("kind = ?", kind).
		Order("seq ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	out := make([][]byte, len(rows))
	for i, e := range rows {
		out[i] = []byte(e.Data)
	}
	return out, nil
}

// Update locks the row with SELECT ... FOR UPDATE, applies fn, and writes the
// result in the same transaction.
func (pg *Postgres) Update(ctx context.Context, kind, id string, fn store.UpdateFunc) error {
	return pg.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var e entity
		err := tx.NewSelect().
			Model(&e).
			Column("data").
			Where("kind = ?", kind).
			Where("id = ?", id).
			For("UPDATE").
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("select for update: %w", err)
		}

		next, err := fn([]byte(e.Data))
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}

		if _, err := tx.NewUpdate().
			Model((*entity)(nil)).
			Set("data = ?", string(next)).
			Set("updated_at = ?", time.Now().UTC()).
			Where("kind = ?", kind).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("update: %w", err)
		}
		return nil
	})
}

// Delete removes a record.
func (pg *Postgres) Delete(ctx context.Context, kind, id string) error {
	res, err := pg.bun.NewDelete().
		Model((*entity)(nil)).
		Where("kind = ?", kind).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (pg *Postgres) Close() error {
	return pg.bun.Close()
}
