package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/internal/errs"
	"github.com/lendinglab/lending-service/internal/model"
	"github.com/lendinglab/lending-service/internal/repository"
)

// caller-displayed one-time confirmation codes look like "A3F9KQ"
var confirmationCodeRe = regexp.MustCompile(`^[A-Z0-9]{6}$`)

func confirmationMatches(text, title string) bool {
	text = strings.TrimSpace(text)
	if confirmationCodeRe.MatchString(text) {
		return true
	}
	if strings.EqualFold(text, "confirm") {
		return true
	}
	lowText, lowTitle := strings.ToLower(text), strings.ToLower(title)
	return lowText != "" && (strings.Contains(lowTitle, lowText) || strings.Contains(lowText, lowTitle))
}

// CreateBorrowRequest runs the borrow-side intake: restriction check, book
// lookup, confirmation validation, optional early reservation, then the
// PENDING insert. With an idempotency key, resubmission returns the original
// request.
func (s *Service) CreateBorrowRequest(ctx context.Context, req model.CreateBorrowRequestRequest) (model.BorrowRequest, error) {
	user, err := s.repo.GetUserByName(ctx, req.Username)
	if err != nil {
		return model.BorrowRequest{}, err
	}
	if user.IsRestricted {
		return model.BorrowRequest{}, errs.ErrRestricted
	}

	book, err := s.repo.GetBook(ctx, req.BookID)
	if err != nil {
		return model.BorrowRequest{}, err
	}

	if !confirmationMatches(req.ConfirmationText, book.Title) {
		return model.BorrowRequest{}, errs.Validationf(
			"confirmation text %q does not match the book title %q", req.ConfirmationText, book.Title)
	}

	if req.IdempotencyKey != "" {
		var cached model.BorrowRequest
		if ok, _ := s.cache.Check(ctx, req.IdempotencyKey, &cached); ok {
			return cached, nil
		}
	}

	active, err := s.repo.HasActiveBorrow(ctx, user.ID, book.ID)
	if err != nil {
		return model.BorrowRequest{}, err
	}
	if active {
		return model.BorrowRequest{}, errs.ErrActiveLoan
	}

	// reserve early when either the global or the per-book flag says so
	reserveNow := s.features.ReserveOnRequest || book.ReserveOnRequest

	var created model.BorrowRequest
	err = s.repo.Atomic(ctx, func(ctx context.Context, r repository.Repository) error {
		if reserveNow {
			count, err := r.Reserve(ctx, book.ID)
			if err != nil {
				return err
			}
			s.checkInventory(ctx, book.ID, count)
		}
		toInsert := model.BorrowRequest{
			UserID:           user.ID,
			BookID:           book.ID,
			ReservedOnCreate: reserveNow,
		}
		if req.IdempotencyKey != "" {
			toInsert.IdempotencyKey = &req.IdempotencyKey
		}
		created, err = r.CreateBorrowRequest(ctx, toInsert)
		return err
	})
	if err != nil {
		if errors.Is(err, errs.ErrDuplicateRequest) && req.IdempotencyKey != "" {
			// unique key backstop: another submission with this key won
			if existing, lookupErr := s.repo.GetBorrowRequestByKey(ctx, req.IdempotencyKey); lookupErr == nil {
				return existing, nil
			}
		}
		return model.BorrowRequest{}, err
	}

	s.cache.Store(ctx, req.IdempotencyKey, created, idempotencyTTL)
	s.record(ctx, "borrow_request_created", created.ID, user.ID, map[string]any{
		"bookId":      book.ID,
		"reservedNow": reserveNow,
	})
	return created, nil
}

func (s *Service) GetBorrowRequests(ctx context.Context, username string) ([]model.BorrowRequest, error) {
	user, err := s.repo.GetUserByName(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBorrowRequestsByUser(ctx, user.ID)
}

func (s *Service) GetPendingBorrowRequests(ctx context.Context) ([]model.BorrowRequest, error) {
	return s.repo.ListPendingBorrowRequests(ctx)
}

// ApproveBorrowRequest opens the loan: borrow record, due date seven days
// out, reservation if it did not happen at creation time. A request that has
// left PENDING reports ErrAlreadyProcessed without further side effects.
func (s *Service) ApproveBorrowRequest(ctx context.Context, requestID string, p model.ProcessRequestRequest) (model.BorrowRequest, error) {
	req, err := s.repo.GetBorrowRequest(ctx, requestID)
	if err != nil {
		return model.BorrowRequest{}, err
	}
	if req.Status != model.StatusPending {
		return model.BorrowRequest{}, errs.ErrAlreadyProcessed
	}
	admin, err := s.repo.GetUserByName(ctx, p.Username)
	if err != nil {
		return model.BorrowRequest{}, err
	}

	due := s.clock.Now().Add(loanPeriod)
	err = s.repo.Atomic(ctx, func(ctx context.Context, r repository.Repository) error {
		record, err := r.CreateBorrowRecord(ctx, model.BorrowRecord{
			UserID:     req.UserID,
			BookID:     req.BookID,
			BorrowDate: s.clock.Now(),
			DueDate:    due,
		})
		if err != nil {
			return err
		}
		if err := r.FinishBorrowRequest(ctx, repository.FinishBorrowRequestParams{
			ID:             req.ID,
			Status:         model.StatusApproved,
			BorrowRecordID: &record.ID,
			DueDate:        &due,
			AdminID:        admin.ID,
			Notes:          p.Notes,
		}); err != nil {
			return err
		}
		if !req.ReservedOnCreate {
			count, err := r.Reserve(ctx, req.BookID)
			if err != nil {
				return err
			}
			s.checkInventory(ctx, req.BookID, count)
		}
		return nil
	})
	if err != nil {
		return model.BorrowRequest{}, err
	}

	approved, err := s.repo.GetBorrowRequest(ctx, req.ID)
	if err != nil {
		return model.BorrowRequest{}, err
	}

	s.record(ctx, "borrow_request_approved", req.ID, req.UserID, map[string]any{
		"adminId": admin.ID,
		"dueDate": due,
	})
	if borrower, err := s.repo.GetUser(ctx, req.UserID); err == nil {
		s.notify(ctx, model.Notification{
			RecipientEmail: borrower.Email,
			Subject:        "Borrow request approved",
			BodyTemplate:   "borrow_approved",
			TemplateData:   map[string]any{"dueDate": due.Format("2006-01-02")},
		})
	}
	return approved, nil
}

// RejectBorrowRequest closes the request and, when a copy was reserved at
// creation time, puts it back.
func (s *Service) RejectBorrowRequest(ctx context.Context, requestID string, p model.ProcessRequestRequest) error {
	req, err := s.repo.GetBorrowRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.Status != model.StatusPending {
		return errs.ErrAlreadyProcessed
	}
	admin, err := s.repo.GetUserByName(ctx, p.Username)
	if err != nil {
		return err
	}

	err = s.repo.Atomic(ctx, func(ctx context.Context, r repository.Repository) error {
		if err := r.FinishBorrowRequest(ctx, repository.FinishBorrowRequestParams{
			ID:      req.ID,
			Status:  model.StatusRejected,
			AdminID: admin.ID,
			Notes:   p.Notes,
		}); err != nil {
			return err
		}
		if req.ReservedOnCreate {
			if _, err := r.Release(ctx, req.BookID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.record(ctx, "borrow_request_rejected", req.ID, req.UserID, map[string]any{"adminId": admin.ID})
	if borrower, err := s.repo.GetUser(ctx, req.UserID); err == nil {
		s.notify(ctx, model.Notification{
			RecipientEmail: borrower.Email,
			Subject:        "Borrow request rejected",
			BodyTemplate:   "borrow_rejected",
			TemplateData:   map[string]any{"notes": p.Notes},
		})
	}
	return nil
}

// checkInventory is the data-integrity alarm for the conditional decrement.
// The guard makes a negative count unreachable; seeing one means the ledger
// was corrupted outside this code path. Alarm, never fail the caller.
func (s *Service) checkInventory(ctx context.Context, bookID string, count int) {
	if count >= 0 {
		return
	}
	s.log.Error("INVENTORY_VIOLATION: negative available copies",
		zap.String("bookId", bookID), zap.Int("count", count))
	s.record(ctx, "inventory_violation", bookID, "", map[string]any{"count": count})
}
