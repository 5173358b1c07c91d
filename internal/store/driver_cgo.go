//go:build cgo

package store

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3_notes"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc(foldFunc, fold, true)
		},
	})
}

// Transactions take the write lock up front, so a read-check-write transaction
// waits for a concurrent writer instead of failing on upgrade.
func dataSource(path string) string {
	return path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate"
}
