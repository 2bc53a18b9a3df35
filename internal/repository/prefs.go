package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/lendinglab/lending-service/internal/model"
)

const prefColumns = "id, user_id, book_id, enabled, created_at"

func (r *repository) Subscribe(ctx context.Context, userID, bookID string) (model.NotificationPreference, error) {
	q, args, err := qb.Insert(prefsTableName).
		Columns("id", "user_id", "book_id", "enabled").
		Values(uuid.New(), userID, bookID, true).
		Suffix(`on conflict (user_id, book_id) do update set enabled = true
		returning ` + prefColumns).
		ToSql()
	if err != nil {
		return model.NotificationPreference{}, err
	}
	var p model.NotificationPreference
	if err := sqlx.GetContext(ctx, r.ext, &p, q, args...); err != nil {
		return model.NotificationPreference{}, err
	}
	return p, nil
}

// ClaimNextSubscriber disables and returns the earliest enabled subscription
// for the book. Claim and disable are one statement, so a copy freed
// concurrently notifies each subscriber at most once (first subscriber
// served, one-shot).
func (r *repository) ClaimNextSubscriber(ctx context.Context, bookID string) (model.User, bool, error) {
	q := `
	update notification_preferences np set enabled = false
	where np.id = (
		select id from notification_preferences
		where book_id = $1 and enabled
		order by created_at
		limit 1
		for update skip locked)
	returning np.user_id`

	var userID string
	if err := r.ext.QueryRowxContext(ctx, q, bookID).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, false, nil
		}
		return model.User{}, false, err
	}
	u, err := r.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, false, err
	}
	return u, true, nil
}
