// Package repository holds the MySQL-backed stores for rooms, reservations,
// payments and customer profiles.  Repositories return the sentinel values below so higher
// layers can tell "no such row" and "constraint violated" apart from
// connectivity failures, which are returned unchanged.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert, update or delete violates a
// uniqueness or foreign-key constraint, such as renaming a room to an
// existing name or deleting a room that still has reservations.
var ErrConflict = errors.New("conflict")

// MySQL server error numbers mapped to ErrConflict.
const (
	mysqlDuplicateEntry   = 1062
	mysqlRowIsReferenced  = 1451
	mysqlRowIsReferenced2 = 1217
	mysqlNoReferencedRow  = 1452
)

// classify turns constraint violations into ErrConflict and leaves every
// other error untouched.
func classify(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry, mysqlRowIsReferenced, mysqlRowIsReferenced2, mysqlNoReferencedRow:
			return ErrConflict
		}
	}
	return err
}
