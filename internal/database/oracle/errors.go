package oracle

import (
	"context"
	"database/sql"
	"errors"

	"github.com/godror/godror"

	"github.com/druscope/druscope/internal/errs"
)

// ORA error codes this layer cares about.
const (
	errInvalidCredentials = 1017  // ORA-01017 invalid username/password
	errNoListener         = 12541 // ORA-12541 TNS no listener
	errConnectTimeout     = 12170 // ORA-12170 TNS connect timeout
	errTableNotFound      = 942   // ORA-00942 table or view does not exist
	errInvalidIdentifier  = 904   // ORA-00904 invalid identifier
)

// mapError translates godror failures into the unified error kinds.
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

	var oraErr *godror.OraErr
	if errors.As(err, &oraErr) {
		switch oraErr.Code() {
		case errInvalidCredentials:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case errNoListener, errConnectTimeout:
			return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
		case errTableNotFound, errInvalidIdentifier:
			return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
		}
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
