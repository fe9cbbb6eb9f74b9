package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nexolend/internal/scoring/ledger"
	id "nexolend/pkg/domain"
)

func newEvent(userID id.UserID, eventType ledger.EventType, createdAt time.Time) *ledger.Event {
	return &ledger.Event{
		ID:          id.NewEventID(),
		UserID:      userID,
		Type:        eventType,
		Description: eventType.Description(),
		Impact:      eventType.Impact(),
		ProcessedBy: "SYSTEM",
		CreatedAt:   createdAt,
	}
}

func TestInMemoryStore_AppendAndList(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	now := time.Now()

	require.NoError(t, store.Append(ctx, newEvent(userID, ledger.EventInitialScore, now)))
	require.NoError(t, store.Append(ctx, newEvent(userID, ledger.EventRepaymentOnTime, now.Add(time.Hour))))
	require.NoError(t, store.Append(ctx, newEvent(userID, ledger.EventRepaymentEarly, now.Add(2*time.Hour))))

	events, err := store.ListByUser(ctx, userID, 0, 0)
	require.NoError(t, err)
	require.Len(t, events, 3)
	// Newest first
	assert.Equal(t, ledger.EventRepaymentEarly, events[0].Type)
	assert.Equal(t, ledger.EventInitialScore, events[2].Type)
}

func TestInMemoryStore_Pagination(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	now := time.Now()

	for i := range 5 {
		require.NoError(t, store.Append(ctx, newEvent(userID, ledger.EventRepaymentOnTime, now.Add(time.Duration(i)*time.Minute))))
	}

	page, err := store.ListByUser(ctx, userID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	page, err = store.ListByUser(ctx, userID, 2, 4)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	page, err = store.ListByUser(ctx, userID, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	count, err := store.CountByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestInMemoryStore_SumImpactSince(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	userID := id.UserID(uuid.New())
	now := time.Now()

	// Outside the window
	require.NoError(t, store.Append(ctx, newEvent(userID, ledger.EventLoanDefaulted, now.Add(-40*24*time.Hour))))
	// Inside the window: +15 and +25
	require.NoError(t, store.Append(ctx, newEvent(userID, ledger.EventRepaymentOnTime, now.Add(-5*24*time.Hour))))
	require.NoError(t, store.Append(ctx, newEvent(userID, ledger.EventRepaymentEarly, now.Add(-time.Hour))))

	sum, err := store.SumImpactSince(ctx, userID, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 40, sum)
}

func TestInMemoryStore_IsolatesUsers(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	alice := id.UserID(uuid.New())
	bob := id.UserID(uuid.New())

	require.NoError(t, store.Append(ctx, newEvent(alice, ledger.EventRepaymentOnTime, time.Now())))

	events, err := store.ListByUser(ctx, bob, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, events)
}
