package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lendinglab/lending-service/internal/errs"
	"github.com/lendinglab/lending-service/internal/idempotency"
	"github.com/lendinglab/lending-service/internal/model"
	"github.com/lendinglab/lending-service/internal/repository"
)

// PaymentResult reports how a payment landed across the selected fines.
type PaymentResult struct {
	AmountApplied  decimal.Decimal `json:"amountApplied"`
	TotalFinesOwed decimal.Decimal `json:"totalFinesOwed"`
	Fines          []model.Fine    `json:"fines"`
}

// ApplyPayment distributes the amount equally across the given fines, capped
// per fine at its outstanding balance. The share is floored to cents so the
// applied sum never exceeds the amount paid. Excess from an over-cap fine is
// not redistributed; this intentionally mirrors the gateway's checkout split
// and can under-pay a large fine paired with small ones.
func (s *Service) ApplyPayment(ctx context.Context, userID string, fineIDs []string, total decimal.Decimal, reference string) (PaymentResult, error) {
	if len(fineIDs) == 0 || !total.IsPositive() {
		return PaymentResult{}, errs.Validationf("payment needs a positive amount and at least one fine")
	}
	fines, err := s.repo.ListFinesByIDs(ctx, uniqueIDs(fineIDs))
	if err != nil {
		return PaymentResult{}, err
	}
	if len(fines) == 0 {
		return PaymentResult{}, errs.ErrNotFound
	}
	for _, f := range fines {
		if f.UserID != userID {
			return PaymentResult{}, errs.ErrNotOwner
		}
	}

	share := total.Div(decimal.NewFromInt(int64(len(fines)))).Truncate(2)

	var result PaymentResult
	err = s.repo.Atomic(ctx, func(ctx context.Context, r repository.Repository) error {
		applied := decimal.Zero
		updated := make([]model.Fine, 0, len(fines))
		for _, f := range fines {
			pay := decimal.Min(share, f.Outstanding())
			if !pay.IsPositive() {
				updated = append(updated, f)
				continue
			}
			after, err := r.RecordFinePayment(ctx, model.FinePayment{
				FineID:           f.ID,
				UserID:           userID,
				Amount:           pay,
				PaymentReference: reference,
			})
			if err != nil {
				return err
			}
			applied = applied.Add(pay)
			updated = append(updated, after)
		}

		newTotal := decimal.Zero
		if applied.IsPositive() {
			var err error
			newTotal, err = r.PayDownFinesOwed(ctx, userID, applied)
			if err != nil {
				return err
			}
		} else {
			u, err := r.GetUser(ctx, userID)
			if err != nil {
				return err
			}
			newTotal = u.TotalFinesOwed
		}
		result = PaymentResult{
			AmountApplied:  applied,
			TotalFinesOwed: newTotal,
			Fines:          updated,
		}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}

	s.record(ctx, "payment_applied", userID, userID, map[string]any{
		"amountApplied": result.AmountApplied,
		"reference":     reference,
	})
	if err := s.EvaluateRestriction(ctx, userID); err != nil {
		s.log.Warn("restriction re-evaluation", zap.String("userId", userID), zap.Error(err))
	}
	return result, nil
}

// uniqueIDs collapses repeats, keeping order. Gateway metadata may list the
// same fine twice; it still gets exactly one share.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// HandlePaymentWebhook reconciles a gateway confirmation. The gateway may
// redeliver; the transaction id routes through the idempotency cache so a
// retry replays the stored result instead of paying twice.
func (s *Service) HandlePaymentWebhook(ctx context.Context, wh model.PaymentWebhook) (PaymentResult, error) {
	if !strings.EqualFold(wh.Status, "paid") {
		return PaymentResult{}, nil
	}
	amount := decimal.NewFromInt(wh.AmountPaidCents).Div(decimal.NewFromInt(100))
	key := idempotency.DeriveKey("payment", wh.Metadata.TransactionID)

	return idempotency.ExecuteIdempotent(ctx, s.cache, key, idempotencyTTL,
		func(ctx context.Context) (PaymentResult, error) {
			return s.ApplyPayment(ctx, wh.Metadata.UserID, wh.Metadata.FineIDs, amount, wh.Metadata.TransactionID)
		})
}
