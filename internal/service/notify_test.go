package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lendinglab/lending-service/internal/model"
)

func TestSweepDueNotifications(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(allFeatures())
	user := env.repo.addUser("alice")
	book := env.repo.addBook("Dune", 3, false, price("40.00"))

	addLoan := func(due time.Time) model.BorrowRecord {
		rec, err := env.repo.CreateBorrowRecord(ctx, model.BorrowRecord{
			UserID: user.ID, BookID: book.ID, DueDate: due,
		})
		require.NoError(t, err)
		return rec
	}

	addLoan(testNow.Add(24 * time.Hour))  // due soon
	addLoan(testNow.Add(-2 * time.Hour))  // overdue
	addLoan(testNow.Add(96 * time.Hour))  // outside the window

	require.NoError(t, env.svc.SweepDueNotifications(ctx))

	subjects := env.dispatcher.subjects()
	assert.ElementsMatch(t, []string{"Book due soon", "Book overdue"}, subjects)

	// subsequent runs find everything already claimed
	require.NoError(t, env.svc.SweepDueNotifications(ctx))
	assert.Len(t, env.dispatcher.sent, 2)
}

func TestSweepDueNotificationsDisabled(t *testing.T) {
	ctx := context.Background()
	features := allFeatures()
	features.NotificationsEnabled = false
	env := newTestEnv(features)
	user := env.repo.addUser("alice")
	book := env.repo.addBook("Dune", 1, false, price("40.00"))
	rec, err := env.repo.CreateBorrowRecord(ctx, model.BorrowRecord{
		UserID: user.ID, BookID: book.ID, DueDate: testNow.Add(-2 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.SweepDueNotifications(ctx))
	assert.Empty(t, env.dispatcher.sent)

	// the notice flags stay unset, so the overdue notice still goes out
	// once the flag is turned back on
	got, err := env.repo.GetBorrowRecord(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.OverdueNotified)
	assert.False(t, got.DueSoonNotified)
}

func TestSubscribe(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(allFeatures())
	user := env.repo.addUser("alice")
	book := env.repo.addBook("Dune", 1, false, price("40.00"))

	pref, err := env.svc.Subscribe(ctx, "alice", book.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, pref.UserID)
	assert.True(t, pref.Enabled)

	// resubscribing keeps a single enabled preference
	again, err := env.svc.Subscribe(ctx, "alice", book.ID)
	require.NoError(t, err)
	assert.Equal(t, pref.ID, again.ID)
}

func TestNotifyFailureIsBestEffort(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(allFeatures())
	env.dispatcher.fail = assert.AnError

	env.repo.addUser("alice")
	env.repo.addUser("admin")
	book := env.repo.addBook("Dune", 1, false, price("40.00"))

	created, err := env.svc.CreateBorrowRequest(ctx, model.CreateBorrowRequestRequest{
		BookID: book.ID, ConfirmationText: "confirm", Username: "alice",
	})
	require.NoError(t, err)

	// approval succeeds even though every dispatch fails
	approved, err := env.svc.ApproveBorrowRequest(ctx, created.ID, model.ProcessRequestRequest{Username: "admin"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, approved.Status)
	assert.Contains(t, env.audit.names(), "notification_failed")
}
