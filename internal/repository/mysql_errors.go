package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers this package reacts to.
const (
	errDupEntry         = 1062
	errLockWaitTimeout  = 1205
	errDeadlock         = 1213
	errRowIsReferenced  = 1451
	errRowIsReferenced0 = 1217
)

func mysqlErrNumber(err error) (uint16, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number, true
	}
	return 0, false
}

// IsTransient reports whether err is an infrastructure failure that may
// succeed on retry: lock wait timeout, deadlock victim, a dropped
// connection or an expired deadline.  Business rejections are never
// transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}
	if n, ok := mysqlErrNumber(err); ok {
		return n == errLockWaitTimeout || n == errDeadlock
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// duplicateKey returns the index name of a 1062 error, e.g.
// "bookings.uq_bookings_code", and whether err was a duplicate at all.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != errDupEntry {
		return "", false
	}
	msg := me.Message
	if i := strings.LastIndex(msg, "for key '"); i >= 0 {
		return strings.TrimSuffix(msg[i+len("for key '"):], "'"), true
	}
	return "", true
}

func isRowReferenced(err error) bool {
	n, ok := mysqlErrNumber(err)
	return ok && (n == errRowIsReferenced || n == errRowIsReferenced0)
}
