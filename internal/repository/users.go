package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/internal/errs"
	"github.com/lendinglab/lending-service/internal/model"
)

const userColumns = "id, username, email, total_fines_owed, is_restricted, restriction_reason, restricted_at"

func (r *repository) GetUser(ctx context.Context, id string) (model.User, error) {
	return r.getUserBy(ctx, sq.Eq{"id": id})
}

func (r *repository) GetUserByName(ctx context.Context, username string) (model.User, error) {
	return r.getUserBy(ctx, sq.Eq{"username": username})
}

func (r *repository) getUserBy(ctx context.Context, pred sq.Eq) (model.User, error) {
	q, args, err := qb.Select(userColumns).
		From(usersTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return model.User{}, err
	}
	var u model.User
	if err := sqlx.GetContext(ctx, r.ext, &u, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, errs.ErrNotFound
		}
		return model.User{}, err
	}
	return u, nil
}

// AddToFinesOwed increments the aggregate balance in a single statement; the
// current value is never read into application memory first.
func (r *repository) AddToFinesOwed(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	q := `
	update users set total_fines_owed = total_fines_owed + $2
	where id = $1
	returning total_fines_owed`

	var total decimal.Decimal
	if err := r.ext.QueryRowxContext(ctx, q, userID, delta).Scan(&total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, errs.ErrNotFound
		}
		return decimal.Zero, err
	}
	return total, nil
}

// PayDownFinesOwed decrements the aggregate balance, clamped at zero.
func (r *repository) PayDownFinesOwed(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	q := `
	update users set total_fines_owed = greatest(total_fines_owed - $2, 0)
	where id = $1
	returning total_fines_owed`

	var total decimal.Decimal
	if err := r.ext.QueryRowxContext(ctx, q, userID, amount).Scan(&total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, errs.ErrNotFound
		}
		return decimal.Zero, err
	}
	return total, nil
}

func (r *repository) SetRestriction(ctx context.Context, userID, reason string, at time.Time) error {
	q := `
	update users set is_restricted = true, restriction_reason = $2, restricted_at = $3
	where id = $1 and not is_restricted`

	_, err := r.ext.ExecContext(ctx, q, userID, reason, at)
	return err
}

func (r *repository) ClearRestriction(ctx context.Context, userID string) error {
	q := `
	update users set is_restricted = false, restriction_reason = null, restricted_at = null
	where id = $1 and is_restricted`

	_, err := r.ext.ExecContext(ctx, q, userID)
	return err
}

// RestrictionCandidates returns users whose restriction flag disagrees with
// their balance relative to the threshold. Used by the batch sweep; users
// already in the correct state are not returned, so re-running is a no-op.
func (r *repository) RestrictionCandidates(ctx context.Context, threshold decimal.Decimal) ([]model.User, error) {
	q := `
	select ` + userColumns + ` from users
	where (total_fines_owed > $1 and not is_restricted)
	   or (total_fines_owed <= $1 and is_restricted)`

	var users []model.User
	if err := sqlx.SelectContext(ctx, r.ext, &users, q, threshold); err != nil {
		return nil, err
	}
	r.log.Debug("restriction candidates", zap.Int("count", len(users)))
	return users, nil
}
