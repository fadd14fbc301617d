package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "roster/pkg/domain"
	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/audit/store/memory"
)

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error { return errors.New("disk full") }

func TestEmit(t *testing.T) {
	fixed := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	store := memory.NewInMemoryStore()
	pub := New(store, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	t.Run("derives category and timestamp", func(t *testing.T) {
		actor := id.NewUserID()
		require.NoError(t, pub.Emit(ctx, audit.Event{
			UserID:  actor,
			Subject: "profile-1",
			Action:  string(audit.EventPartialAccount),
		}))
		events, err := store.ListBySubject(ctx, "profile-1")
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.CategorySecurity, events[0].Category)
		assert.Equal(t, fixed, events[0].Timestamp)
		assert.Equal(t, actor, events[0].UserID)
	})

	t.Run("action is required", func(t *testing.T) {
		assert.Error(t, pub.Emit(ctx, audit.Event{Subject: "x"}))
	})

	t.Run("store failure is returned", func(t *testing.T) {
		err := New(failingStore{}).Emit(ctx, audit.Event{Action: string(audit.EventAccountCreated)})
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("unknown actions are operations", func(t *testing.T) {
		assert.Equal(t, audit.CategoryOperations, audit.AuditEvent("whatever").Category())
		assert.Equal(t, audit.CategoryCompliance, audit.EventAffiliateDeleted.Category())
	})
}
