package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/internal/model"
)

type Repository interface {
	// users
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByName(ctx context.Context, username string) (model.User, error)
	AddToFinesOwed(ctx context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error)
	PayDownFinesOwed(ctx context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error)
	SetRestriction(ctx context.Context, userID, reason string, at time.Time) error
	ClearRestriction(ctx context.Context, userID string) error
	RestrictionCandidates(ctx context.Context, threshold decimal.Decimal) ([]model.User, error)

	// books / inventory ledger
	GetBook(ctx context.Context, id string) (model.Book, error)
	ListBooks(ctx context.Context) ([]model.Book, error)
	Reserve(ctx context.Context, bookID string) (int, error)
	Release(ctx context.Context, bookID string) (int, error)

	// borrow requests
	CreateBorrowRequest(ctx context.Context, req model.BorrowRequest) (model.BorrowRequest, error)
	GetBorrowRequest(ctx context.Context, id string) (model.BorrowRequest, error)
	GetBorrowRequestByKey(ctx context.Context, key string) (model.BorrowRequest, error)
	ListBorrowRequestsByUser(ctx context.Context, userID string) ([]model.BorrowRequest, error)
	ListPendingBorrowRequests(ctx context.Context) ([]model.BorrowRequest, error)
	FinishBorrowRequest(ctx context.Context, p FinishBorrowRequestParams) error

	// borrow records
	CreateBorrowRecord(ctx context.Context, rec model.BorrowRecord) (model.BorrowRecord, error)
	GetBorrowRecord(ctx context.Context, id string) (model.BorrowRecord, error)
	HasActiveBorrow(ctx context.Context, userID, bookID string) (bool, error)
	ListActiveBorrowsByUser(ctx context.Context, userID string) ([]model.BorrowRecord, error)
	CloseBorrowRecord(ctx context.Context, id string, returnedAt time.Time) error
	OverdueUnfinedLoans(ctx context.Context, asOf time.Time) ([]OverdueLoan, error)
	DueSoonNotices(ctx context.Context, from, until time.Time) ([]LoanNotice, error)
	OverdueNotices(ctx context.Context, asOf time.Time) ([]LoanNotice, error)
	ClaimDueSoonNotice(ctx context.Context, recordID string) (bool, error)
	ClaimOverdueNotice(ctx context.Context, recordID string) (bool, error)

	// return requests
	CreateReturnRequest(ctx context.Context, rr model.ReturnRequest) (model.ReturnRequest, error)
	GetReturnRequest(ctx context.Context, id string) (model.ReturnRequest, error)
	ListPendingReturnRequests(ctx context.Context) ([]model.ReturnRequest, error)
	FinishReturnRequest(ctx context.Context, id string, status model.RequestStatus, adminID, notes string) error

	// fines & payments
	CreateFine(ctx context.Context, f model.Fine) (model.Fine, error)
	ListFinesByIDs(ctx context.Context, ids []string) ([]model.Fine, error)
	ListFinesByUser(ctx context.Context, userID string) ([]model.Fine, error)
	RecordFinePayment(ctx context.Context, fp model.FinePayment) (model.Fine, error)

	// notification preferences
	Subscribe(ctx context.Context, userID, bookID string) (model.NotificationPreference, error)
	ClaimNextSubscriber(ctx context.Context, bookID string) (model.User, bool, error)

	// Atomic runs fn against a repository bound to one transaction. When the
	// backing store cannot open a transaction, fn runs once against the plain
	// connection instead: same business logic, reduced atomicity, logged.
	Atomic(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}

type FinishBorrowRequestParams struct {
	ID             string
	Status         model.RequestStatus
	BorrowRecordID *string
	DueDate        *time.Time
	AdminID        string
	Notes          string
}

// OverdueLoan is a borrow record joined with the book fields the fine
// engine needs.
type OverdueLoan struct {
	Record model.BorrowRecord
	Title  string
	Price  decimal.NullDecimal
}

// LoanNotice is a borrow record joined with recipient fields for the
// notification sweeps.
type LoanNotice struct {
	RecordID string    `db:"record_id"`
	UserID   string    `db:"user_id"`
	Email    string    `db:"email"`
	Title    string    `db:"title"`
	DueDate  time.Time `db:"due_date"`
}

type repository struct {
	db  *sqlx.DB        // root handle; nil inside a transaction scope
	ext sqlx.ExtContext // db or tx
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		ext: db,
		log: log.Named("repo"),
	}, nil
}

const (
	usersTableName          = `users`
	booksTableName          = `books`
	borrowRequestsTableName = `borrow_requests`
	borrowRecordsTableName  = `borrow_records`
	returnRequestsTableName = `return_requests`
	finesTableName          = `fines`
	finePaymentsTableName   = `fine_payments`
	prefsTableName          = `notification_preferences`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) Atomic(ctx context.Context, fn func(ctx context.Context, r Repository) error) error {
	if r.db == nil {
		// already inside a transaction
		return fn(ctx, r)
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		// fallback: run the same sequence once without transactional cover
		r.log.Warn("transactions unavailable, running non-transactionally", zap.Error(err))
		return fn(ctx, &repository{ext: r.ext, log: r.log})
	}
	txRepo := &repository{ext: tx, log: r.log}
	if err := fn(ctx, txRepo); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
