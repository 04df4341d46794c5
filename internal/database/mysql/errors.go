package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/druscope/druscope/internal/errs"
)

// MySQL server error numbers this layer cares about.
const (
	errAccessDenied    = 1045
	errConnRefused     = 2003
	errUnknownDatabase = 1049
	errBadFieldError   = 1054
	errParseError      = 1064
	errNoSuchTable     = 1146
)

// mapError translates driver-level failures into the unified error kinds.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	if errors.Is(err, mysql.ErrInvalidConn) || errors.Is(err, sql.ErrConnDone) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case errAccessDenied:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case errConnRefused, errUnknownDatabase:
			return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
		case errBadFieldError, errParseError, errNoSuchTable:
			return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
		}
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
