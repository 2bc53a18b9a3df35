package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/internal/errs"
	"github.com/lendinglab/lending-service/internal/model"
)

const fineColumns = "id, user_id, book_id, borrow_record_id, fine_type, amount, paid_amount, status, days_overdue, is_book_lost, description, created_at"

// CreateFine inserts at most one fine per borrow record; the unique
// constraint turns a concurrent duplicate into ErrDuplicateRequest so
// overlapping sweep runs cannot double-charge.
func (r *repository) CreateFine(ctx context.Context, f model.Fine) (model.Fine, error) {
	q, args, err := qb.Insert(finesTableName).
		Columns("id", "user_id", "book_id", "borrow_record_id", "fine_type", "amount", "status", "days_overdue", "is_book_lost", "description").
		Values(uuid.New(), f.UserID, f.BookID, f.BorrowRecordID, f.FineType, f.Amount, model.FinePending, f.DaysOverdue, f.IsBookLost, f.Description).
		Suffix("returning " + fineColumns).
		ToSql()
	if err != nil {
		return model.Fine{}, err
	}
	var res model.Fine
	if err := sqlx.GetContext(ctx, r.ext, &res, q, args...); err != nil {
		if isUniqueViolation(err) {
			return model.Fine{}, errs.ErrDuplicateRequest
		}
		r.log.Error("CreateFine", zap.String("q", q), zap.Any("args", args))
		return model.Fine{}, err
	}
	return res, nil
}

func (r *repository) ListFinesByIDs(ctx context.Context, ids []string) ([]model.Fine, error) {
	q, args, err := qb.Select(fineColumns).
		From(finesTableName).
		Where(sq.Eq{"id": ids}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	var fines []model.Fine
	if err := sqlx.SelectContext(ctx, r.ext, &fines, q, args...); err != nil {
		return nil, err
	}
	return fines, nil
}

func (r *repository) ListFinesByUser(ctx context.Context, userID string) ([]model.Fine, error) {
	q, args, err := qb.Select(fineColumns).
		From(finesTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	var fines []model.Fine
	if err := sqlx.SelectContext(ctx, r.ext, &fines, q, args...); err != nil {
		return nil, err
	}
	return fines, nil
}

// RecordFinePayment appends the immutable ledger entry and advances the fine
// totals in one statement each; the status derives from the updated amounts
// inside the update itself, not from a value read earlier.
func (r *repository) RecordFinePayment(ctx context.Context, fp model.FinePayment) (model.Fine, error) {
	insert, args, err := qb.Insert(finePaymentsTableName).
		Columns("id", "fine_id", "user_id", "amount", "payment_reference").
		Values(uuid.New(), fp.FineID, fp.UserID, fp.Amount, fp.PaymentReference).
		ToSql()
	if err != nil {
		return model.Fine{}, err
	}
	if _, err := r.ext.ExecContext(ctx, insert, args...); err != nil {
		return model.Fine{}, err
	}

	q := `
	update fines
	set paid_amount = paid_amount + $2,
	    status = case when paid_amount + $2 >= amount then 'PAID' else 'PARTIAL_PAID' end
	where id = $1
	returning ` + fineColumns

	var f model.Fine
	if err := sqlx.GetContext(ctx, r.ext, &f, q, fp.FineID, fp.Amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Fine{}, errs.ErrNotFound
		}
		return model.Fine{}, err
	}
	return f, nil
}
