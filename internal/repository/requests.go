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

const borrowRequestColumns = "id, user_id, book_id, status, idempotency_key, reserved_on_create, borrow_record_id, due_date, processed_by, processing_notes, created_at"

func (r *repository) CreateBorrowRequest(ctx context.Context, req model.BorrowRequest) (model.BorrowRequest, error) {
	q, args, err := qb.Insert(borrowRequestsTableName).
		Columns("id", "user_id", "book_id", "status", "idempotency_key", "reserved_on_create").
		Values(uuid.New(), req.UserID, req.BookID, model.StatusPending, req.IdempotencyKey, req.ReservedOnCreate).
		Suffix("returning " + borrowRequestColumns).
		ToSql()
	if err != nil {
		return model.BorrowRequest{}, err
	}
	var res model.BorrowRequest
	if err := sqlx.GetContext(ctx, r.ext, &res, q, args...); err != nil {
		if isUniqueViolation(err) {
			return model.BorrowRequest{}, errs.ErrDuplicateRequest
		}
		r.log.Error("CreateBorrowRequest", zap.String("q", q), zap.Any("args", args))
		return model.BorrowRequest{}, err
	}
	return res, nil
}

func (r *repository) GetBorrowRequest(ctx context.Context, id string) (model.BorrowRequest, error) {
	return r.getBorrowRequestBy(ctx, sq.Eq{"id": id})
}

func (r *repository) GetBorrowRequestByKey(ctx context.Context, key string) (model.BorrowRequest, error) {
	return r.getBorrowRequestBy(ctx, sq.Eq{"idempotency_key": key})
}

func (r *repository) getBorrowRequestBy(ctx context.Context, pred sq.Eq) (model.BorrowRequest, error) {
	q, args, err := qb.Select(borrowRequestColumns).
		From(borrowRequestsTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return model.BorrowRequest{}, err
	}
	var req model.BorrowRequest
	if err := sqlx.GetContext(ctx, r.ext, &req, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowRequest{}, errs.ErrNotFound
		}
		return model.BorrowRequest{}, err
	}
	return req, nil
}

func (r *repository) ListBorrowRequestsByUser(ctx context.Context, userID string) ([]model.BorrowRequest, error) {
	return r.listBorrowRequests(ctx, sq.Eq{"user_id": userID})
}

func (r *repository) ListPendingBorrowRequests(ctx context.Context) ([]model.BorrowRequest, error) {
	return r.listBorrowRequests(ctx, sq.Eq{"status": model.StatusPending})
}

func (r *repository) listBorrowRequests(ctx context.Context, pred sq.Eq) ([]model.BorrowRequest, error) {
	q, args, err := qb.Select(borrowRequestColumns).
		From(borrowRequestsTableName).
		Where(pred).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.BorrowRequest
	if err := sqlx.SelectContext(ctx, r.ext, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// FinishBorrowRequest moves a request out of PENDING. The status guard is in
// the statement itself: a second approval matches zero rows and reports
// ErrAlreadyProcessed instead of repeating side effects.
func (r *repository) FinishBorrowRequest(ctx context.Context, p FinishBorrowRequestParams) error {
	q := `
	update borrow_requests
	set status = $2, borrow_record_id = $3, due_date = $4, processed_by = $5, processing_notes = $6
	where id = $1 and status = 'PENDING'`

	res, err := r.ext.ExecContext(ctx, q, p.ID, p.Status, p.BorrowRecordID, p.DueDate, p.AdminID, p.Notes)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrAlreadyProcessed
	}
	return nil
}

const returnRequestColumns = "id, user_id, book_id, borrow_record_id, status, processed_by, processing_notes, created_at"

func (r *repository) CreateReturnRequest(ctx context.Context, rr model.ReturnRequest) (model.ReturnRequest, error) {
	q, args, err := qb.Insert(returnRequestsTableName).
		Columns("id", "user_id", "book_id", "borrow_record_id", "status").
		Values(uuid.New(), rr.UserID, rr.BookID, rr.BorrowRecordID, model.StatusPending).
		Suffix("returning " + returnRequestColumns).
		ToSql()
	if err != nil {
		return model.ReturnRequest{}, err
	}
	var res model.ReturnRequest
	if err := sqlx.GetContext(ctx, r.ext, &res, q, args...); err != nil {
		if isUniqueViolation(err) {
			return model.ReturnRequest{}, errs.ErrDuplicateRequest
		}
		return model.ReturnRequest{}, err
	}
	return res, nil
}

func (r *repository) GetReturnRequest(ctx context.Context, id string) (model.ReturnRequest, error) {
	q, args, err := qb.Select(returnRequestColumns).
		From(returnRequestsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.ReturnRequest{}, err
	}
	var rr model.ReturnRequest
	if err := sqlx.GetContext(ctx, r.ext, &rr, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ReturnRequest{}, errs.ErrNotFound
		}
		return model.ReturnRequest{}, err
	}
	return rr, nil
}

func (r *repository) ListPendingReturnRequests(ctx context.Context) ([]model.ReturnRequest, error) {
	q, args, err := qb.Select(returnRequestColumns).
		From(returnRequestsTableName).
		Where(sq.Eq{"status": model.StatusPending}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.ReturnRequest
	if err := sqlx.SelectContext(ctx, r.ext, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FinishReturnRequest(ctx context.Context, id string, status model.RequestStatus, adminID, notes string) error {
	q := `
	update return_requests
	set status = $2, processed_by = $3, processing_notes = $4
	where id = $1 and status = 'PENDING'`

	res, err := r.ext.ExecContext(ctx, q, id, status, adminID, notes)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrAlreadyProcessed
	}
	return nil
}
