package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/lendinglab/lending-service/internal/errs"
	"github.com/lendinglab/lending-service/internal/model"
)

const bookColumns = "id, title, author, total_copies, available_copies, reserve_on_request, price"

func (r *repository) GetBook(ctx context.Context, id string) (model.Book, error) {
	q, args, err := qb.Select(bookColumns).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}
	var b model.Book
	if err := sqlx.GetContext(ctx, r.ext, &b, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return b, nil
}

func (r *repository) ListBooks(ctx context.Context) ([]model.Book, error) {
	q, args, err := qb.Select(bookColumns).
		From(booksTableName).
		OrderBy("title").
		ToSql()
	if err != nil {
		return nil, err
	}
	var books []model.Book
	if err := sqlx.SelectContext(ctx, r.ext, &books, q, args...); err != nil {
		return nil, err
	}
	return books, nil
}

// Reserve holds one copy. The guard and the decrement live in the same
// statement, so two racing callers for the last copy cannot both win: the
// loser's update matches zero rows and gets ErrNotAvailable.
func (r *repository) Reserve(ctx context.Context, bookID string) (int, error) {
	q := `
	update books set available_copies = available_copies - 1
	where id = $1 and available_copies > 0
	returning available_copies`

	var count int
	if err := r.ext.QueryRowxContext(ctx, q, bookID).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errs.ErrNotAvailable
		}
		return 0, err
	}
	return count, nil
}

// Release puts a copy back. Unconditional: rejections and returns always
// restore inventory.
func (r *repository) Release(ctx context.Context, bookID string) (int, error) {
	q := `
	update books set available_copies = available_copies + 1
	where id = $1
	returning available_copies`

	var count int
	if err := r.ext.QueryRowxContext(ctx, q, bookID).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, err
	}
	return count, nil
}
