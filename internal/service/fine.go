package service

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/internal/errs"
	"github.com/lendinglab/lending-service/internal/model"
	"github.com/lendinglab/lending-service/internal/repository"
)

const (
	graceDays     = 7
	lostAfterDays = 15
)

var (
	lateFlatFee    = decimal.New(1000, -2) // 10.00 at day 8
	lateDailyFee   = decimal.New(50, -2)   // 0.50 per day beyond day 8
	lostMultiplier = decimal.New(13, -1)   // price + 30%
)

type fineAssessment struct {
	amount      decimal.Decimal
	fineType    model.FineType
	isBookLost  bool
	description string
}

// assessFine applies the tier table. The lost-book tier supersedes the
// flat and daily fees entirely; it is not additive.
func assessFine(daysOverdue int, title string, price decimal.NullDecimal) (fineAssessment, bool) {
	if daysOverdue <= graceDays {
		return fineAssessment{}, false
	}
	if daysOverdue >= lostAfterDays {
		bookPrice := decimal.Zero
		if price.Valid {
			bookPrice = price.Decimal
		}
		return fineAssessment{
			amount:     bookPrice.Mul(lostMultiplier).Round(2),
			fineType:   model.FineLostBook,
			isBookLost: true,
			description: fmt.Sprintf("%q overdue %d days, considered lost: replacement cost plus 30%% penalty",
				title, daysOverdue),
		}, true
	}

	daily := lateDailyFee.Mul(decimal.NewFromInt(int64(daysOverdue - graceDays - 1)))
	return fineAssessment{
		amount:   lateFlatFee.Add(daily),
		fineType: model.FineLateReturn,
		description: fmt.Sprintf("%q overdue %d days: flat fee %s plus daily fees %s",
			title, daysOverdue, lateFlatFee.StringFixed(2), daily.StringFixed(2)),
	}, true
}

// SweepFines assesses every open overdue loan without a fine. Safe to run
// repeatedly and concurrently: assessed records are skipped by the query,
// and the one-fine-per-record constraint absorbs races between runs.
func (s *Service) SweepFines(ctx context.Context) (int, error) {
	if !s.features.OverdueDetectionEnabled {
		return 0, nil
	}
	now := s.clock.Now()
	loans, err := s.repo.OverdueUnfinedLoans(ctx, now)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, loan := range loans {
		daysOverdue := int(now.Sub(loan.Record.DueDate).Hours() / 24)
		assessment, ok := assessFine(daysOverdue, loan.Title, loan.Price)
		if !ok {
			continue
		}

		var fine model.Fine
		err := s.repo.Atomic(ctx, func(ctx context.Context, r repository.Repository) error {
			var err error
			fine, err = r.CreateFine(ctx, model.Fine{
				UserID:         loan.Record.UserID,
				BookID:         loan.Record.BookID,
				BorrowRecordID: loan.Record.ID,
				FineType:       assessment.fineType,
				Amount:         assessment.amount,
				DaysOverdue:    daysOverdue,
				IsBookLost:     assessment.isBookLost,
				Description:    assessment.description,
			})
			if err != nil {
				return err
			}
			_, err = r.AddToFinesOwed(ctx, loan.Record.UserID, assessment.amount)
			return err
		})
		if err != nil {
			if errors.Is(err, errs.ErrDuplicateRequest) {
				// a concurrent sweep got there first
				continue
			}
			return created, err
		}
		created++

		s.record(ctx, "fine_created", fine.ID, fine.UserID, map[string]any{
			"amount":      fine.Amount,
			"daysOverdue": daysOverdue,
			"isBookLost":  fine.IsBookLost,
		})
		if err := s.EvaluateRestriction(ctx, fine.UserID); err != nil {
			s.log.Warn("restriction re-evaluation", zap.String("userId", fine.UserID), zap.Error(err))
		}
	}
	return created, nil
}

func (s *Service) GetFines(ctx context.Context, username string) ([]model.Fine, error) {
	user, err := s.repo.GetUserByName(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.repo.ListFinesByUser(ctx, user.ID)
}
