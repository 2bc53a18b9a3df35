package service

import (
	"context"
	"fmt"
)

// EvaluateRestriction applies the threshold rule to one user. Edge-triggered:
// callers invoke it after anything that moves totalFinesOwed.
func (s *Service) EvaluateRestriction(ctx context.Context, userID string) error {
	u, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	over := u.TotalFinesOwed.GreaterThan(restrictionThreshold)
	switch {
	case over && !u.IsRestricted:
		reason := fmt.Sprintf("outstanding fines %s exceed limit %s",
			u.TotalFinesOwed.StringFixed(2), restrictionThreshold.StringFixed(2))
		if err := s.repo.SetRestriction(ctx, u.ID, reason, s.clock.Now()); err != nil {
			return err
		}
		s.record(ctx, "user_restricted", u.ID, u.ID, map[string]any{"totalFinesOwed": u.TotalFinesOwed})
	case !over && u.IsRestricted:
		if err := s.repo.ClearRestriction(ctx, u.ID); err != nil {
			return err
		}
		s.record(ctx, "user_unrestricted", u.ID, u.ID, nil)
	}
	return nil
}

// SweepRestrictions re-evaluates every user whose flag disagrees with their
// balance. Users already in the correct state are untouched, so the sweep
// can run as often as needed.
func (s *Service) SweepRestrictions(ctx context.Context) (int, error) {
	users, err := s.repo.RestrictionCandidates(ctx, restrictionThreshold)
	if err != nil {
		return 0, err
	}
	for _, u := range users {
		if err := s.EvaluateRestriction(ctx, u.ID); err != nil {
			return 0, err
		}
	}
	return len(users), nil
}
