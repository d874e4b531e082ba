// Package repository defines the MySQL data access layer and the error
// values shared across repositories.  Sentinel errors let handlers tell
// failure scenarios apart: ErrForbidden indicates the caller does not own the
// resource, while ErrConflict signals that an operation cannot proceed
// because of existing state (e.g. a duplicate room number).
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with existing data.
// Handlers translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether err is a MySQL duplicate key violation (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}
