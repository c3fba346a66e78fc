package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"swap_store/internal/ledger"
	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"
	"swap_store/internal/swap"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newUser(t *testing.T, m *Memory) uuid.UUID {
	t.Helper()
	user, err := m.EnsureUser(context.Background(), uuid.New(), models.RoleUser, now)
	require.NoError(t, err)
	return user.ID
}

func newItem(t *testing.T, m *Memory, owner uuid.UUID, mutate func(req *models.CreateItemRequest)) *models.Item {
	t.Helper()
	req := models.CreateItemRequest{
		Title:       "Denim jacket",
		Description: "Light wash, barely worn",
		Category:    models.CategoryClothing,
		Size:        models.SizeM,
		Condition:   models.ConditionGood,
		Color:       "blue",
		Images:      []string{"https://img.example/1.jpg"},
	}
	if mutate != nil {
		mutate(&req)
	}
	item, err := ledger.NewItem(owner, req, now)
	require.NoError(t, err)
	require.NoError(t, m.CreateItem(context.Background(), item))
	return item
}

func pointsOffer(points int) models.CreateSwapRequest {
	return models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: points}
}

func TestMemoryEnsureUser(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	id := uuid.New()

	user, err := m.EnsureUser(ctx, id, "", now)
	require.NoError(t, err)
	assert.Equal(t, ledger.StartingPoints, user.Points)
	assert.Equal(t, models.RoleUser, user.Role)

	_, err = m.AdjustPoints(ctx, id, 50, now)
	require.NoError(t, err)

	again, err := m.EnsureUser(ctx, id, models.RoleUser, now)
	require.NoError(t, err)
	assert.Equal(t, 150, again.Points)

	_, err = m.AdjustPoints(ctx, id, -151, now)
	assert.ErrorIs(t, err, apperr.ErrInsufficientPoints)

	_, err = m.GetUser(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMemoryItemLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := newUser(t, m)
	viewer := newUser(t, m)
	item := newItem(t, m, owner, nil)

	user, err := m.GetUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 1, user.Statistics.ItemsListed)

	viewed, err := m.RecordView(ctx, item.ID, &owner)
	require.NoError(t, err)
	assert.Equal(t, 0, viewed.Views)
	viewed, err = m.RecordView(ctx, item.ID, &viewer)
	require.NoError(t, err)
	assert.Equal(t, 1, viewed.Views)
	viewed, err = m.RecordView(ctx, item.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, viewed.Views)

	title := "Vintage denim jacket"
	_, err = m.UpdateItem(ctx, item.ID, models.Actor{ID: viewer}, models.UpdateItemRequest{Title: &title}, now)
	assert.ErrorIs(t, err, apperr.ErrPermission)
	updated, err := m.UpdateItem(ctx, item.ID, models.Actor{ID: owner}, models.UpdateItemRequest{Title: &title}, now)
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)

	added, err := m.ToggleFavorite(ctx, viewer, item.ID)
	require.NoError(t, err)
	assert.True(t, added)
	favorites, err := m.ListFavorites(ctx, viewer)
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, 1, favorites[0].Favorited)

	added, err = m.ToggleFavorite(ctx, viewer, item.ID)
	require.NoError(t, err)
	assert.False(t, added)
	stored, err := m.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.Favorited)

	require.NoError(t, m.DeleteItem(ctx, item.ID, models.Actor{ID: owner}, now))
	_, err = m.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	user, err = m.GetUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 0, user.Statistics.ItemsListed)
}

func TestMemoryDeleteDeclinesPendingRequests(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := newUser(t, m)
	requester := newUser(t, m)
	item := newItem(t, m, owner, nil)

	request, err := m.CreateSwapRequest(ctx, requester, item.ID, pointsOffer(30), now)
	require.NoError(t, err)

	require.NoError(t, m.DeleteItem(ctx, item.ID, models.Actor{ID: owner}, now))

	stored, err := m.GetSwapRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapDeclined, stored.Status)
	assert.Equal(t, swap.CascadeDeclineMessage, stored.ResponseMessage)
}

func TestMemoryListItems(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := newUser(t, m)

	jacket := newItem(t, m, owner, func(req *models.CreateItemRequest) {
		req.Tags = []string{"winter"}
		req.Location = models.Location{City: "Austin", State: "TX"}
	})
	boots := newItem(t, m, owner, func(req *models.CreateItemRequest) {
		req.Title = "Leather boots"
		req.Category = models.CategoryShoes
		req.Size = models.SizeOther
		req.Condition = models.ConditionNew
	})
	book := newItem(t, m, owner, func(req *models.CreateItemRequest) {
		req.Title = "Cookbook"
		req.Category = models.CategoryBooks
		req.Size = ""
		req.Condition = models.ConditionFair
	})

	tests := []struct {
		name     string
		query    models.ItemQuery
		expected []uuid.UUID
		total    int
	}{
		{
			name:     "points descending",
			query:    models.ItemQuery{Sort: models.SortPointsDesc},
			expected: []uuid.UUID{boots.ID, jacket.ID, book.ID},
			total:    3,
		},
		{
			name:     "points ascending second page",
			query:    models.ItemQuery{Sort: models.SortPointsAsc, Page: 2, PageSize: 2},
			expected: []uuid.UUID{boots.ID},
			total:    3,
		},
		{
			name:     "search matches tags case-insensitively",
			query:    models.ItemQuery{Filter: models.ItemFilter{Search: "WINTER"}},
			expected: []uuid.UUID{jacket.ID},
			total:    1,
		},
		{
			name:     "city filter",
			query:    models.ItemQuery{Filter: models.ItemFilter{City: "austin"}},
			expected: []uuid.UUID{jacket.ID},
			total:    1,
		},
		{
			name: "points range",
			query: models.ItemQuery{Filter: models.ItemFilter{MinPoints: intPtr(20), MaxPoints: intPtr(40)}},
			expected: []uuid.UUID{jacket.ID},
			total:    1,
		},
		{
			name:     "title order",
			query:    models.ItemQuery{Sort: models.SortTitle},
			expected: []uuid.UUID{book.ID, jacket.ID, boots.ID},
			total:    3,
		},
		{
			name:     "page past the end",
			query:    models.ItemQuery{Page: 5, PageSize: 2},
			expected: []uuid.UUID{},
			total:    3,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			page, err := m.ListItems(ctx, test.query)
			require.NoError(t, err)
			assert.Equal(t, test.total, page.Total)

			ids := make([]uuid.UUID, 0, len(page.Items))
			for _, item := range page.Items {
				ids = append(ids, item.ID)
			}
			assert.Equal(t, test.expected, ids)
		})
	}
}

func intPtr(v int) *int {
	return &v
}

func TestMemoryCategoryStats(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := newUser(t, m)
	newItem(t, m, owner, nil)
	newItem(t, m, owner, func(req *models.CreateItemRequest) {
		req.Condition = models.ConditionNew
		req.Size = models.SizeL
	})
	newItem(t, m, owner, func(req *models.CreateItemRequest) {
		req.Category = models.CategoryBooks
	})

	stats, err := m.CategoryStats(ctx, models.CategoryClothing)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, 42.5, stats.AvgPoints)
	assert.Equal(t, map[models.Condition]int{models.ConditionGood: 1, models.ConditionNew: 1}, stats.Conditions)
	assert.Equal(t, map[models.Size]int{models.SizeM: 1, models.SizeL: 1}, stats.Sizes)

	itemStats, err := m.ItemStats(ctx)
	require.NoError(t, err)
	require.Len(t, itemStats.CategoryStats, 2)
	assert.Equal(t, models.CategoryClothing, itemStats.CategoryStats[0].Category)
	assert.Equal(t, []models.StatusCount{{Status: models.ItemAvailable, Count: 3}}, itemStats.StatusStats)
}

func TestMemorySwapScenario(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := newUser(t, m)
	first := newUser(t, m)
	second := newUser(t, m)
	item := newItem(t, m, owner, nil)
	require.Equal(t, 35, item.PointsValue)

	accepted, err := m.CreateSwapRequest(ctx, first, item.ID, pointsOffer(28), now)
	require.NoError(t, err)
	other, err := m.CreateSwapRequest(ctx, second, item.ID, pointsOffer(30), now)
	require.NoError(t, err)

	_, err = m.CreateSwapRequest(ctx, first, item.ID, pointsOffer(30), now)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	transition, err := m.RespondSwapRequest(ctx, accepted.ID, owner, models.RespondRequest{Action: models.ActionAccept}, now)
	require.NoError(t, err)
	assert.Equal(t, models.SwapAccepted, transition.Request.Status)
	require.Len(t, transition.Cascaded, 1)
	assert.Equal(t, other.ID, transition.Cascaded[0].ID)

	declined, err := m.GetSwapRequest(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapDeclined, declined.Status)
	assert.Equal(t, swap.CascadeDeclineMessage, declined.ResponseMessage)

	reserved, err := m.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemReserved, reserved.Status)

	assert.ErrorIs(t, m.DeleteItem(ctx, item.ID, models.Actor{ID: owner}, now), apperr.ErrConflict)

	received, err := m.ListSwapRequests(ctx, owner, models.DirectionReceived)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, accepted.ID, received[0].ID)

	completed, err := m.CompleteSwapRequest(ctx, accepted.ID, first, models.CompleteRequest{Rating: 5}, now)
	require.NoError(t, err)
	assert.Equal(t, models.SwapCompleted, completed.Status)

	_, err = m.CompleteSwapRequest(ctx, accepted.ID, first, models.CompleteRequest{}, now)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	swapped, err := m.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemSwapped, swapped.Status)
	assert.Equal(t, first, swapped.Owner)

	requester, err := m.GetUser(ctx, first)
	require.NoError(t, err)
	seller, err := m.GetUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 72, requester.Points)
	assert.Equal(t, 128, seller.Points)
	assert.Equal(t, 1, seller.Statistics.Rating.Count)

	stats, err := m.UserSwapStats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, models.SwapStats{models.SwapCompleted: 1, models.SwapDeclined: 1}, stats)

	received, err = m.ListSwapRequests(ctx, owner, models.DirectionReceived)
	require.NoError(t, err)
	assert.Empty(t, received)
	sent, err := m.ListSwapRequests(ctx, first, models.DirectionSent)
	require.NoError(t, err)
	assert.Len(t, sent, 1)
}

func TestMemoryReceivedListsOpenRequests(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := newUser(t, m)
	requester := newUser(t, m)
	first := newItem(t, m, owner, nil)
	second := newItem(t, m, owner, nil)

	open, err := m.CreateSwapRequest(ctx, requester, first.ID, pointsOffer(30), now)
	require.NoError(t, err)
	closed, err := m.CreateSwapRequest(ctx, requester, second.ID, pointsOffer(30), now.Add(time.Minute))
	require.NoError(t, err)
	_, err = m.RespondSwapRequest(ctx, closed.ID, owner, models.RespondRequest{Action: models.ActionDecline}, now)
	require.NoError(t, err)

	received, err := m.ListSwapRequests(ctx, owner, models.DirectionReceived)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, open.ID, received[0].ID)

	sent, err := m.ListSwapRequests(ctx, requester, models.DirectionSent)
	require.NoError(t, err)
	require.Len(t, sent, 2)
	assert.Equal(t, closed.ID, sent[0].ID)
	assert.Equal(t, models.SwapDeclined, sent[0].Status)
}

func TestMemoryFailedTransitionLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := newUser(t, m)
	requester := newUser(t, m)
	item := newItem(t, m, owner, nil)

	request, err := m.CreateSwapRequest(ctx, requester, item.ID, pointsOffer(30), now)
	require.NoError(t, err)
	_, err = m.RespondSwapRequest(ctx, request.ID, owner, models.RespondRequest{Action: models.ActionAccept}, now)
	require.NoError(t, err)

	_, err = m.AdjustPoints(ctx, requester, -90, now)
	require.NoError(t, err)

	_, err = m.CompleteSwapRequest(ctx, request.ID, owner, models.CompleteRequest{Rating: 5}, now)
	assert.ErrorIs(t, err, apperr.ErrInsufficientPoints)

	stored, err := m.GetSwapRequest(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SwapAccepted, stored.Status)
	storedItem, err := m.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemReserved, storedItem.Status)
	assert.Equal(t, owner, storedItem.Owner)
	seller, err := m.GetUser(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 100, seller.Points)
	assert.Equal(t, 0, seller.Statistics.TotalSwaps)
}

func TestMemoryConcurrentAccepts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := newUser(t, m)
	item := newItem(t, m, owner, nil)

	const requesters = 8
	ids := make([]uuid.UUID, requesters)
	for i := range ids {
		request, err := m.CreateSwapRequest(ctx, newUser(t, m), item.ID, pointsOffer(30), now)
		require.NoError(t, err)
		ids[i] = request.ID
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			_, err := m.RespondSwapRequest(ctx, id, owner, models.RespondRequest{Action: models.ActionAccept}, now)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if apperr.KindOf(err) == apperr.KindConflict {
				conflicts++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, requesters-1, conflicts)

	stats, err := m.UserSwapStats(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, models.SwapStats{models.SwapAccepted: 1, models.SwapDeclined: requesters - 1}, stats)
}

func TestMemoryFindAndExpire(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	owner := newUser(t, m)
	requester := newUser(t, m)
	item := newItem(t, m, owner, nil)

	request, err := m.CreateSwapRequest(ctx, requester, item.ID, pointsOffer(30), now)
	require.NoError(t, err)

	expired, err := m.FindExpired(ctx, now.Add(time.Hour), 10)
	require.NoError(t, err)
	assert.Empty(t, expired)

	later := now.Add(swap.RequestTTL + time.Minute)
	expired, err = m.FindExpired(ctx, later, 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)

	_, err = m.RespondSwapRequest(ctx, request.ID, owner, models.RespondRequest{Action: models.ActionAccept}, later)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = m.RespondSwapRequest(ctx, request.ID, owner, models.RespondRequest{Action: models.ActionDecline}, later)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	declined, err := m.ExpireSwapRequest(ctx, request.ID, later)
	require.NoError(t, err)
	assert.Equal(t, models.SwapDeclined, declined.Status)
	assert.Equal(t, swap.ExpiredMessage, declined.ResponseMessage)

	expired, err = m.FindExpired(ctx, later, 10)
	require.NoError(t, err)
	assert.Empty(t, expired)
}
