package mssql

import (
	"context"
	"database/sql"
	"errors"

	mssqldb "github.com/microsoft/go-mssqldb"

	"github.com/druscope/druscope/internal/errs"
)

// SQL Server error numbers this layer cares about.
const (
	errCannotOpenDatabase = 4060
	errLoginFailed        = 18456
	errSyntaxError        = 102
	errInvalidColumn      = 207
	errInvalidObjectName  = 208
)

// mapError translates go-mssqldb failures into the unified error kinds.
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
	if errors.Is(err, sql.ErrConnDone) {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	var srvErr mssqldb.Error
	if errors.As(err, &srvErr) {
		switch srvErr.Number {
		case errLoginFailed:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case errCannotOpenDatabase:
			return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
		case errSyntaxError, errInvalidColumn, errInvalidObjectName:
			return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
		}
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
