//go:build !cgo

package store

import (
	"database/sql/driver"
	"fmt"

	"modernc.org/sqlite"
)

const driverName = "sqlite"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case nil:
				return nil, nil
			case string:
				return fold(v), nil
			case []byte:
				return fold(string(v)), nil
			default:
				return nil, fmt.Errorf("%s: unsupported argument %T", foldFunc, v)
			}
		})
}

// Transactions take the write lock up front, so a read-check-write transaction
// waits for a concurrent writer instead of failing on upgrade.
func dataSource(path string) string {
	return "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_txlock=immediate"
}
