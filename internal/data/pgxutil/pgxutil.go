// Package pgxutil runs pgx-native calls on connections borrowed from a
// database/sql pool opened with the "pgx" driver.
package pgxutil

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
)

// DriverName is the database/sql driver registered by pgx's stdlib package.
const DriverName = "pgx"

// Conn pins one pooled connection and hands fn its *pgx.Conn. The connection
// returns to the pool when fn does; fn must not retain it.
func Conn(ctx context.Context, db *sql.DB, fn func(*pgx.Conn) error) (err error) {
	sqlConn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire conn: %w", err)
	}
	defer func() {
		if cerr := sqlConn.Close(); cerr != nil && !errors.Is(cerr, sql.ErrConnDone) {
			err = errors.Join(err, fmt.Errorf("release conn: %w", cerr))
		}
	}()

	return sqlConn.Raw(func(driverConn any) error {
		std, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("driver conn is %T, want *stdlib.Conn", driverConn)
		}
		return fn(std.Conn())
	})
}

// Tx runs fn in a transaction on a pinned connection. The transaction
// commits when fn returns nil and rolls back otherwise.
func Tx(ctx context.Context, db *sql.DB, opts pgx.TxOptions, fn func(pgx.Tx) error) error {
	return Conn(ctx, db, func(conn *pgx.Conn) error {
		return pgx.BeginTxFunc(ctx, conn, opts, fn)
	})
}
