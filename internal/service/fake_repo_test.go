package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lendinglab/lending-service/internal/errs"
	"github.com/lendinglab/lending-service/internal/model"
	"github.com/lendinglab/lending-service/internal/repository"
)

// fakeRepo mirrors the SQL guards of the real repository in memory: the
// conditional inventory decrement, the PENDING-only transitions and the
// one-fine-per-record constraint all behave like their statements do.
type fakeRepo struct {
	mu sync.Mutex

	users          map[string]*model.User
	books          map[string]*model.Book
	borrowRequests map[string]*model.BorrowRequest
	borrowRecords  map[string]*model.BorrowRecord
	returnRequests map[string]*model.ReturnRequest
	fines          map[string]*model.Fine
	payments       []model.FinePayment
	prefs          map[string]*model.NotificationPreference
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:          make(map[string]*model.User),
		books:          make(map[string]*model.Book),
		borrowRequests: make(map[string]*model.BorrowRequest),
		borrowRecords:  make(map[string]*model.BorrowRecord),
		returnRequests: make(map[string]*model.ReturnRequest),
		fines:          make(map[string]*model.Fine),
		prefs:          make(map[string]*model.NotificationPreference),
	}
}

var _ repository.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) addUser(username string) *model.User {
	u := &model.User{ID: uuid.NewString(), Username: username, Email: username + "@lib.test"}
	f.users[u.ID] = u
	return u
}

func (f *fakeRepo) addBook(title string, copies int, reserveOnRequest bool, price decimal.NullDecimal) *model.Book {
	b := &model.Book{
		ID: uuid.NewString(), Title: title,
		TotalCopies: copies, AvailableCopies: copies,
		ReserveOnRequest: reserveOnRequest, Price: price,
	}
	f.books[b.ID] = b
	return b
}

func (f *fakeRepo) GetUser(_ context.Context, id string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return model.User{}, errs.ErrNotFound
	}
	return *u, nil
}

func (f *fakeRepo) GetUserByName(_ context.Context, username string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			return *u, nil
		}
	}
	return model.User{}, errs.ErrNotFound
}

func (f *fakeRepo) AddToFinesOwed(_ context.Context, userID string, delta decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return decimal.Zero, errs.ErrNotFound
	}
	u.TotalFinesOwed = u.TotalFinesOwed.Add(delta)
	return u.TotalFinesOwed, nil
}

func (f *fakeRepo) PayDownFinesOwed(_ context.Context, userID string, amount decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return decimal.Zero, errs.ErrNotFound
	}
	u.TotalFinesOwed = decimal.Max(u.TotalFinesOwed.Sub(amount), decimal.Zero)
	return u.TotalFinesOwed, nil
}

func (f *fakeRepo) SetRestriction(_ context.Context, userID, reason string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	if !u.IsRestricted {
		u.IsRestricted = true
		u.RestrictionReason = &reason
		u.RestrictedAt = &at
	}
	return nil
}

func (f *fakeRepo) ClearRestriction(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	u.IsRestricted = false
	u.RestrictionReason = nil
	u.RestrictedAt = nil
	return nil
}

func (f *fakeRepo) RestrictionCandidates(_ context.Context, threshold decimal.Decimal) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		over := u.TotalFinesOwed.GreaterThan(threshold)
		if (over && !u.IsRestricted) || (!over && u.IsRestricted) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeRepo) GetBook(_ context.Context, id string) (model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[id]
	if !ok {
		return model.Book{}, errs.ErrNotFound
	}
	return *b, nil
}

func (f *fakeRepo) ListBooks(_ context.Context) ([]model.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Book
	for _, b := range f.books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeRepo) Reserve(_ context.Context, bookID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[bookID]
	if !ok || b.AvailableCopies <= 0 {
		return 0, errs.ErrNotAvailable
	}
	b.AvailableCopies--
	return b.AvailableCopies, nil
}

func (f *fakeRepo) Release(_ context.Context, bookID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[bookID]
	if !ok {
		return 0, errs.ErrNotFound
	}
	b.AvailableCopies++
	return b.AvailableCopies, nil
}

func (f *fakeRepo) CreateBorrowRequest(_ context.Context, req model.BorrowRequest) (model.BorrowRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.borrowRequests {
		if existing.UserID == req.UserID && existing.BookID == req.BookID && existing.Status == model.StatusPending {
			return model.BorrowRequest{}, errs.ErrDuplicateRequest
		}
		if req.IdempotencyKey != nil && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *req.IdempotencyKey {
			return model.BorrowRequest{}, errs.ErrDuplicateRequest
		}
	}
	req.ID = uuid.NewString()
	req.Status = model.StatusPending
	req.CreatedAt = time.Now().UTC()
	f.borrowRequests[req.ID] = &req
	return req, nil
}

func (f *fakeRepo) GetBorrowRequest(_ context.Context, id string) (model.BorrowRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.borrowRequests[id]
	if !ok {
		return model.BorrowRequest{}, errs.ErrNotFound
	}
	return *r, nil
}

func (f *fakeRepo) GetBorrowRequestByKey(_ context.Context, key string) (model.BorrowRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.borrowRequests {
		if r.IdempotencyKey != nil && *r.IdempotencyKey == key {
			return *r, nil
		}
	}
	return model.BorrowRequest{}, errs.ErrNotFound
}

func (f *fakeRepo) ListBorrowRequestsByUser(_ context.Context, userID string) ([]model.BorrowRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.BorrowRequest
	for _, r := range f.borrowRequests {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPendingBorrowRequests(_ context.Context) ([]model.BorrowRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.BorrowRequest
	for _, r := range f.borrowRequests {
		if r.Status == model.StatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) FinishBorrowRequest(_ context.Context, p repository.FinishBorrowRequestParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.borrowRequests[p.ID]
	if !ok || r.Status != model.StatusPending {
		return errs.ErrAlreadyProcessed
	}
	r.Status = p.Status
	r.BorrowRecordID = p.BorrowRecordID
	r.DueDate = p.DueDate
	r.ProcessedBy = &p.AdminID
	r.ProcessingNotes = &p.Notes
	return nil
}

func (f *fakeRepo) CreateBorrowRecord(_ context.Context, rec model.BorrowRecord) (model.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = uuid.NewString()
	rec.Status = model.StatusBorrowed
	f.borrowRecords[rec.ID] = &rec
	return rec, nil
}

func (f *fakeRepo) GetBorrowRecord(_ context.Context, id string) (model.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.borrowRecords[id]
	if !ok {
		return model.BorrowRecord{}, errs.ErrNotFound
	}
	return *r, nil
}

func (f *fakeRepo) HasActiveBorrow(_ context.Context, userID, bookID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.borrowRecords {
		if r.UserID == userID && r.BookID == bookID && r.Status == model.StatusBorrowed {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) ListActiveBorrowsByUser(_ context.Context, userID string) ([]model.BorrowRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.BorrowRecord
	for _, r := range f.borrowRecords {
		if r.UserID == userID && r.Status == model.StatusBorrowed {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) CloseBorrowRecord(_ context.Context, id string, returnedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.borrowRecords[id]
	if !ok || r.Status != model.StatusBorrowed {
		return errs.ErrAlreadyProcessed
	}
	r.Status = model.StatusReturned
	r.ReturnDate = &returnedAt
	return nil
}

func (f *fakeRepo) OverdueUnfinedLoans(_ context.Context, asOf time.Time) ([]repository.OverdueLoan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fined := make(map[string]bool)
	for _, fine := range f.fines {
		fined[fine.BorrowRecordID] = true
	}
	var out []repository.OverdueLoan
	for _, r := range f.borrowRecords {
		if r.Status == model.StatusBorrowed && r.DueDate.Before(asOf) && !fined[r.ID] {
			b := f.books[r.BookID]
			out = append(out, repository.OverdueLoan{Record: *r, Title: b.Title, Price: b.Price})
		}
	}
	return out, nil
}

func (f *fakeRepo) DueSoonNotices(_ context.Context, from, until time.Time) ([]repository.LoanNotice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.LoanNotice
	for _, r := range f.borrowRecords {
		if r.Status == model.StatusBorrowed && !r.DueSoonNotified &&
			!r.DueDate.Before(from) && !r.DueDate.After(until) {
			out = append(out, f.noticeLocked(r))
		}
	}
	return out, nil
}

func (f *fakeRepo) OverdueNotices(_ context.Context, asOf time.Time) ([]repository.LoanNotice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.LoanNotice
	for _, r := range f.borrowRecords {
		if r.Status == model.StatusBorrowed && !r.OverdueNotified && r.DueDate.Before(asOf) {
			out = append(out, f.noticeLocked(r))
		}
	}
	return out, nil
}

func (f *fakeRepo) noticeLocked(r *model.BorrowRecord) repository.LoanNotice {
	return repository.LoanNotice{
		RecordID: r.ID,
		UserID:   r.UserID,
		Email:    f.users[r.UserID].Email,
		Title:    f.books[r.BookID].Title,
		DueDate:  r.DueDate,
	}
}

func (f *fakeRepo) ClaimDueSoonNotice(_ context.Context, recordID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.borrowRecords[recordID]
	if !ok || r.DueSoonNotified {
		return false, nil
	}
	r.DueSoonNotified = true
	return true, nil
}

func (f *fakeRepo) ClaimOverdueNotice(_ context.Context, recordID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.borrowRecords[recordID]
	if !ok || r.OverdueNotified {
		return false, nil
	}
	r.OverdueNotified = true
	return true, nil
}

func (f *fakeRepo) CreateReturnRequest(_ context.Context, rr model.ReturnRequest) (model.ReturnRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.returnRequests {
		if existing.BorrowRecordID == rr.BorrowRecordID && existing.Status == model.StatusPending {
			return model.ReturnRequest{}, errs.ErrDuplicateRequest
		}
	}
	rr.ID = uuid.NewString()
	rr.Status = model.StatusPending
	rr.CreatedAt = time.Now().UTC()
	f.returnRequests[rr.ID] = &rr
	return rr, nil
}

func (f *fakeRepo) GetReturnRequest(_ context.Context, id string) (model.ReturnRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.returnRequests[id]
	if !ok {
		return model.ReturnRequest{}, errs.ErrNotFound
	}
	return *r, nil
}

func (f *fakeRepo) ListPendingReturnRequests(_ context.Context) ([]model.ReturnRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.ReturnRequest
	for _, r := range f.returnRequests {
		if r.Status == model.StatusPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) FinishReturnRequest(_ context.Context, id string, status model.RequestStatus, adminID, notes string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.returnRequests[id]
	if !ok || r.Status != model.StatusPending {
		return errs.ErrAlreadyProcessed
	}
	r.Status = status
	r.ProcessedBy = &adminID
	r.ProcessingNotes = &notes
	return nil
}

func (f *fakeRepo) CreateFine(_ context.Context, fine model.Fine) (model.Fine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.fines {
		if existing.BorrowRecordID == fine.BorrowRecordID {
			return model.Fine{}, errs.ErrDuplicateRequest
		}
	}
	fine.ID = uuid.NewString()
	fine.Status = model.FinePending
	fine.PaidAmount = decimal.Zero
	fine.CreatedAt = time.Now().UTC()
	f.fines[fine.ID] = &fine
	return fine, nil
}

func (f *fakeRepo) ListFinesByIDs(_ context.Context, ids []string) ([]model.Fine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Fine
	for _, id := range ids {
		if fine, ok := f.fines[id]; ok {
			out = append(out, *fine)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListFinesByUser(_ context.Context, userID string) ([]model.Fine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Fine
	for _, fine := range f.fines {
		if fine.UserID == userID {
			out = append(out, *fine)
		}
	}
	return out, nil
}

func (f *fakeRepo) RecordFinePayment(_ context.Context, fp model.FinePayment) (model.Fine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fine, ok := f.fines[fp.FineID]
	if !ok {
		return model.Fine{}, errs.ErrNotFound
	}
	fp.ID = uuid.NewString()
	fp.CreatedAt = time.Now().UTC()
	f.payments = append(f.payments, fp)
	fine.PaidAmount = fine.PaidAmount.Add(fp.Amount)
	if fine.PaidAmount.GreaterThanOrEqual(fine.Amount) {
		fine.Status = model.FinePaid
	} else {
		fine.Status = model.FinePartialPaid
	}
	return *fine, nil
}

func (f *fakeRepo) Subscribe(_ context.Context, userID, bookID string) (model.NotificationPreference, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.prefs {
		if p.UserID == userID && p.BookID == bookID {
			p.Enabled = true
			return *p, nil
		}
	}
	p := &model.NotificationPreference{
		ID: uuid.NewString(), UserID: userID, BookID: bookID,
		Enabled: true, CreatedAt: time.Now().UTC(),
	}
	f.prefs[p.ID] = p
	return *p, nil
}

func (f *fakeRepo) ClaimNextSubscriber(_ context.Context, bookID string) (model.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest *model.NotificationPreference
	for _, p := range f.prefs {
		if p.BookID == bookID && p.Enabled {
			if oldest == nil || p.CreatedAt.Before(oldest.CreatedAt) {
				oldest = p
			}
		}
	}
	if oldest == nil {
		return model.User{}, false, nil
	}
	oldest.Enabled = false
	return *f.users[oldest.UserID], true, nil
}

func (f *fakeRepo) Atomic(ctx context.Context, fn func(ctx context.Context, r repository.Repository) error) error {
	return fn(ctx, f)
}
