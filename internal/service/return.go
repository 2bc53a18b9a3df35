package service

import (
	"context"

	"github.com/lendinglab/lending-service/internal/errs"
	"github.com/lendinglab/lending-service/internal/model"
	"github.com/lendinglab/lending-service/internal/repository"
)

// CreateReturnRequest needs an open loan owned by the caller. Restricted
// users may still return books; only borrowing is locked.
func (s *Service) CreateReturnRequest(ctx context.Context, req model.CreateReturnRequestRequest) (model.ReturnRequest, error) {
	user, err := s.repo.GetUserByName(ctx, req.Username)
	if err != nil {
		return model.ReturnRequest{}, err
	}
	record, err := s.repo.GetBorrowRecord(ctx, req.BorrowRecordID)
	if err != nil {
		return model.ReturnRequest{}, err
	}
	if record.UserID != user.ID {
		return model.ReturnRequest{}, errs.ErrNotOwner
	}
	if record.Status != model.StatusBorrowed {
		return model.ReturnRequest{}, errs.ErrAlreadyProcessed
	}

	created, err := s.repo.CreateReturnRequest(ctx, model.ReturnRequest{
		UserID:         user.ID,
		BookID:         record.BookID,
		BorrowRecordID: record.ID,
	})
	if err != nil {
		return model.ReturnRequest{}, err
	}

	s.record(ctx, "return_request_created", created.ID, user.ID, map[string]any{
		"borrowRecordId": record.ID,
	})
	return created, nil
}

func (s *Service) GetPendingReturnRequests(ctx context.Context) ([]model.ReturnRequest, error) {
	return s.repo.ListPendingReturnRequests(ctx)
}

// ApproveReturnRequest closes the loan, stamps the return date and puts the
// copy back, then offers it to the first "now available" subscriber.
func (s *Service) ApproveReturnRequest(ctx context.Context, requestID string, p model.ProcessRequestRequest) error {
	rr, err := s.repo.GetReturnRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if rr.Status != model.StatusPending {
		return errs.ErrAlreadyProcessed
	}
	admin, err := s.repo.GetUserByName(ctx, p.Username)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	err = s.repo.Atomic(ctx, func(ctx context.Context, r repository.Repository) error {
		if err := r.FinishReturnRequest(ctx, rr.ID, model.StatusApproved, admin.ID, p.Notes); err != nil {
			return err
		}
		if err := r.CloseBorrowRecord(ctx, rr.BorrowRecordID, now); err != nil {
			return err
		}
		_, err := r.Release(ctx, rr.BookID)
		return err
	})
	if err != nil {
		return err
	}

	s.record(ctx, "return_request_approved", rr.ID, rr.UserID, map[string]any{
		"adminId":        admin.ID,
		"borrowRecordId": rr.BorrowRecordID,
	})
	if book, err := s.repo.GetBook(ctx, rr.BookID); err == nil {
		s.notifyBookAvailable(ctx, book.ID, book.Title)
	}
	return nil
}

// RejectReturnRequest leaves the loan open; a reason is mandatory.
func (s *Service) RejectReturnRequest(ctx context.Context, requestID string, p model.ProcessRequestRequest) error {
	if p.Notes == "" {
		return errs.ErrEmptyNotes
	}
	rr, err := s.repo.GetReturnRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if rr.Status != model.StatusPending {
		return errs.ErrAlreadyProcessed
	}
	admin, err := s.repo.GetUserByName(ctx, p.Username)
	if err != nil {
		return err
	}

	if err := s.repo.FinishReturnRequest(ctx, rr.ID, model.StatusRejected, admin.ID, p.Notes); err != nil {
		return err
	}
	s.record(ctx, "return_request_rejected", rr.ID, rr.UserID, map[string]any{"adminId": admin.ID})
	return nil
}

func (s *Service) GetLoans(ctx context.Context, username string) ([]model.BorrowRecord, error) {
	user, err := s.repo.GetUserByName(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListActiveBorrowsByUser(ctx, user.ID)
}
