package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/druscope/druscope/internal/errs"
)

// mapError translates pgx failures into the unified error kinds using
// SQLSTATE classes: 08 = connection exception, 28 = invalid authorization,
// 42 = syntax error or access rule violation.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"):
			return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
		case strings.HasPrefix(pgErr.Code, "28"):
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case strings.HasPrefix(pgErr.Code, "42"):
			return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
		}
	}
	if pgconn.Timeout(err) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}
	// Dial-level failures surface as plain net errors from pgconn.
	if strings.Contains(err.Error(), "failed to connect") {
		return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindQueryFailed, msg, err)
}
