package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/lendinglab/lending-service/internal/errs"
	"github.com/lendinglab/lending-service/internal/model"
)

const borrowRecordColumns = "id, user_id, book_id, status, borrow_date, due_date, return_date, due_soon_notified, overdue_notified"

func (r *repository) CreateBorrowRecord(ctx context.Context, rec model.BorrowRecord) (model.BorrowRecord, error) {
	q, args, err := qb.Insert(borrowRecordsTableName).
		Columns("id", "user_id", "book_id", "status", "borrow_date", "due_date").
		Values(uuid.New(), rec.UserID, rec.BookID, model.StatusBorrowed, rec.BorrowDate, rec.DueDate).
		Suffix("returning " + borrowRecordColumns).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}
	var res model.BorrowRecord
	if err := sqlx.GetContext(ctx, r.ext, &res, q, args...); err != nil {
		return model.BorrowRecord{}, err
	}
	return res, nil
}

func (r *repository) GetBorrowRecord(ctx context.Context, id string) (model.BorrowRecord, error) {
	q, args, err := qb.Select(borrowRecordColumns).
		From(borrowRecordsTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.BorrowRecord{}, err
	}
	var rec model.BorrowRecord
	if err := sqlx.GetContext(ctx, r.ext, &rec, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.BorrowRecord{}, errs.ErrNotFound
		}
		return model.BorrowRecord{}, err
	}
	return rec, nil
}

func (r *repository) HasActiveBorrow(ctx context.Context, userID, bookID string) (bool, error) {
	q := `
	select exists(
		select 1 from borrow_records
		where user_id = $1 and book_id = $2 and status = 'BORROWED')`

	var exists bool
	if err := r.ext.QueryRowxContext(ctx, q, userID, bookID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repository) ListActiveBorrowsByUser(ctx context.Context, userID string) ([]model.BorrowRecord, error) {
	q, args, err := qb.Select(borrowRecordColumns).
		From(borrowRecordsTableName).
		Where(sq.Eq{"user_id": userID, "status": model.StatusBorrowed}).
		OrderBy("borrow_date").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.BorrowRecord
	if err := sqlx.SelectContext(ctx, r.ext, &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}

// CloseBorrowRecord marks the loan returned. Guarded on BORROWED so a loan
// closes exactly once.
func (r *repository) CloseBorrowRecord(ctx context.Context, id string, returnedAt time.Time) error {
	q := `
	update borrow_records set status = 'RETURNED', return_date = $2
	where id = $1 and status = 'BORROWED'`

	res, err := r.ext.ExecContext(ctx, q, id, returnedAt)
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

// OverdueUnfinedLoans lists overdue open loans that have no fine row yet.
// The anti-join makes the fine sweep idempotent across overlapping runs.
func (r *repository) OverdueUnfinedLoans(ctx context.Context, asOf time.Time) ([]OverdueLoan, error) {
	q := `
	select r.id, r.user_id, r.book_id, r.status, r.borrow_date, r.due_date, r.return_date,
	       r.due_soon_notified, r.overdue_notified, b.title, b.price
	from borrow_records r
	join books b on b.id = r.book_id
	left join fines f on f.borrow_record_id = r.id
	where r.status = 'BORROWED' and r.due_date < $1 and f.id is null`

	rows, err := r.ext.QueryxContext(ctx, q, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []OverdueLoan
	for rows.Next() {
		var l OverdueLoan
		if err := rows.Scan(
			&l.Record.ID, &l.Record.UserID, &l.Record.BookID, &l.Record.Status,
			&l.Record.BorrowDate, &l.Record.DueDate, &l.Record.ReturnDate,
			&l.Record.DueSoonNotified, &l.Record.OverdueNotified,
			&l.Title, &l.Price,
		); err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

func (r *repository) DueSoonNotices(ctx context.Context, from, until time.Time) ([]LoanNotice, error) {
	q := `
	select r.id as record_id, r.user_id, u.email, b.title, r.due_date
	from borrow_records r
	join users u on u.id = r.user_id
	join books b on b.id = r.book_id
	where r.status = 'BORROWED' and not r.due_soon_notified
	  and r.due_date >= $1 and r.due_date <= $2`

	var notices []LoanNotice
	if err := sqlx.SelectContext(ctx, r.ext, &notices, q, from, until); err != nil {
		return nil, err
	}
	return notices, nil
}

func (r *repository) OverdueNotices(ctx context.Context, asOf time.Time) ([]LoanNotice, error) {
	q := `
	select r.id as record_id, r.user_id, u.email, b.title, r.due_date
	from borrow_records r
	join users u on u.id = r.user_id
	join books b on b.id = r.book_id
	where r.status = 'BORROWED' and not r.overdue_notified and r.due_date < $1`

	var notices []LoanNotice
	if err := sqlx.SelectContext(ctx, r.ext, &notices, q, asOf); err != nil {
		return nil, err
	}
	return notices, nil
}

// ClaimDueSoonNotice flips the notified flag, guarded so that overlapping
// sweep runs claim each record at most once.
func (r *repository) ClaimDueSoonNotice(ctx context.Context, recordID string) (bool, error) {
	return r.claimNotice(ctx, recordID, "due_soon_notified")
}

func (r *repository) ClaimOverdueNotice(ctx context.Context, recordID string) (bool, error) {
	return r.claimNotice(ctx, recordID, "overdue_notified")
}

func (r *repository) claimNotice(ctx context.Context, recordID, column string) (bool, error) {
	q := `update borrow_records set ` + column + ` = true where id = $1 and not ` + column

	res, err := r.ext.ExecContext(ctx, q, recordID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
