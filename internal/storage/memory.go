package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"swap_store/internal/ledger"
	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"
	"swap_store/internal/swap"

	"github.com/google/uuid"
)

// Memory implements the Storage interface in process memory.
// It is not wired into cmd/store or cmd/sweep; tests use it as a stand-in for PostgreSQL.
// A single mutex serializes every operation; transitions work on copies of the stored
// records and write them back only when the swap state machine succeeds.
type Memory struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*models.User
	items     map[uuid.UUID]*models.Item
	requests  map[uuid.UUID]*models.SwapRequest
	favorites map[uuid.UUID]map[uuid.UUID]time.Time
	clock     int64
}

// NewMemory returns an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[uuid.UUID]*models.User),
		items:     make(map[uuid.UUID]*models.Item),
		requests:  make(map[uuid.UUID]*models.SwapRequest),
		favorites: make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

// Close is a no-op.
func (m *Memory) Close() {}

// EnsureUser returns the user with the given id, provisioning it with the starting balance
// on first sight.
func (m *Memory) EnsureUser(_ context.Context, id uuid.UUID, role models.Role, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, ok := m.users[id]; ok {
		return user.Clone(), nil
	}
	user := ledger.NewUser(id, role, now)
	m.users[id] = user
	return user.Clone(), nil
}

// GetUser returns the user with the given id.
func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, err := m.user(id)
	if err != nil {
		return nil, err
	}
	return user.Clone(), nil
}

// AdjustPoints credits a positive amount or debits a negative one.
func (m *Memory) AdjustPoints(_ context.Context, id uuid.UUID, amount int, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.user(id)
	if err != nil {
		return nil, err
	}
	user := stored.Clone()
	if err := adjust(user, amount); err != nil {
		return nil, err
	}
	user.UpdatedAt = now
	m.users[id] = user
	return user.Clone(), nil
}

// UserSwapStats counts the requests the user takes part in, by status.
func (m *Memory) UserSwapStats(_ context.Context, id uuid.UUID) (models.SwapStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := make(models.SwapStats)
	for _, request := range m.requests {
		if request.Requester == id || request.ItemOwner == id {
			stats[request.Status]++
		}
	}
	return stats, nil
}

// CreateItem stores a new item and counts it on the owner's itemsListed.
func (m *Memory) CreateItem(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, err := m.user(item.Owner)
	if err != nil {
		return err
	}
	if _, ok := m.items[item.ID]; ok {
		return apperr.Conflict("item %s already exists", item.ID)
	}
	m.items[item.ID] = m.stamp(item.Clone())
	owner.Statistics.ItemsListed++
	return nil
}

// GetItem returns the item with the given id.
func (m *Memory) GetItem(_ context.Context, id uuid.UUID) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.item(id)
	if err != nil {
		return nil, err
	}
	return item.Clone(), nil
}

// UpdateItem applies patch to the item when actor may modify it.
func (m *Memory) UpdateItem(_ context.Context, id uuid.UUID, actor models.Actor, patch models.UpdateItemRequest, now time.Time) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, err := m.item(id)
	if err != nil {
		return nil, err
	}
	item := stored.Clone()
	if err := ledger.CheckModifiable(item, actor, "update"); err != nil {
		return nil, err
	}
	if err := ledger.ApplyPatch(item, patch, now); err != nil {
		return nil, err
	}
	m.items[id] = item
	return item.Clone(), nil
}

// DeleteItem removes the item when actor may modify it. Pending requests naming the item
// are declined and its favorites are dropped.
func (m *Memory) DeleteItem(_ context.Context, id uuid.UUID, actor models.Actor, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.item(id)
	if err != nil {
		return err
	}
	if err := ledger.CheckModifiable(item, actor, "delete"); err != nil {
		return err
	}

	for requestID, request := range m.requests {
		if request.Status != models.SwapPending {
			continue
		}
		if request.RequestedItem == id || (request.OfferedItem != nil && *request.OfferedItem == id) {
			declined := request.Clone()
			swap.AutoDecline(declined, now)
			m.requests[requestID] = declined
		}
	}
	for _, favorites := range m.favorites {
		delete(favorites, id)
	}
	if owner, ok := m.users[item.Owner]; ok && owner.Statistics.ItemsListed > 0 {
		owner.Statistics.ItemsListed--
	}
	delete(m.items, id)
	return nil
}

// RecordView increments the view counter unless viewer owns the item.
func (m *Memory) RecordView(_ context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.item(id)
	if err != nil {
		return nil, err
	}
	if ledger.ShouldCountView(item, viewer) {
		item.Views++
	}
	return item.Clone(), nil
}

// FindSimilar returns up to limit available items sharing item's category and size.
func (m *Memory) FindSimilar(_ context.Context, item *models.Item, limit int) ([]models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return ledger.Similar(m.itemValues(), item, limit), nil
}

// ToggleFavorite adds or removes the item from the user's favorites and reports whether it
// was added.
func (m *Memory) ToggleFavorite(_ context.Context, userID, itemID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.item(itemID)
	if err != nil {
		return false, err
	}
	favorites, ok := m.favorites[userID]
	if !ok {
		favorites = make(map[uuid.UUID]time.Time)
		m.favorites[userID] = favorites
	}
	if _, ok := favorites[itemID]; ok {
		delete(favorites, itemID)
		if item.Favorited > 0 {
			item.Favorited--
		}
		return false, nil
	}
	favorites[itemID] = m.tick()
	item.Favorited++
	return true, nil
}

// ListItems returns one page of items matching the query.
func (m *Memory) ListItems(_ context.Context, query models.ItemQuery) (*models.ItemPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]models.Item, 0)
	for _, item := range m.itemValues() {
		if matchesFilter(&item, query.Filter) {
			matched = append(matched, item)
		}
	}
	sortItems(matched, query.Sort)

	page := &models.ItemPage{Total: len(matched), Page: query.Page, PageSize: query.PageSize, Items: []models.Item{}}
	offset := query.Offset()
	if offset >= len(matched) {
		return page, nil
	}
	end := len(matched)
	if query.PageSize > 0 && offset+query.PageSize < end {
		end = offset + query.PageSize
	}
	page.Items = matched[offset:end]
	return page, nil
}

// ListUserItems returns every item the user owns, newest first.
func (m *Memory) ListUserItems(_ context.Context, owner uuid.UUID) ([]models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := make([]models.Item, 0)
	for _, item := range m.itemValues() {
		if item.Owner == owner {
			items = append(items, item)
		}
	}
	ledger.SortNewestFirst(items)
	return items, nil
}

// ListFavorites returns the user's favorite items, most recently favorited first.
func (m *Memory) ListFavorites(_ context.Context, userID uuid.UUID) ([]models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	favorites := m.favorites[userID]
	ids := make([]uuid.UUID, 0, len(favorites))
	for id := range favorites {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return favorites[ids[i]].After(favorites[ids[j]])
	})

	items := make([]models.Item, 0, len(ids))
	for _, id := range ids {
		if item, ok := m.items[id]; ok {
			items = append(items, *item.Clone())
		}
	}
	return items, nil
}

// CategoryStats aggregates the available items of a category.
func (m *Memory) CategoryStats(_ context.Context, category models.Category) (*models.CategoryStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats := &models.CategoryStats{
		Conditions: make(map[models.Condition]int),
		Sizes:      make(map[models.Size]int),
	}
	total := 0
	for _, item := range m.items {
		if item.Category != category || item.Status != models.ItemAvailable {
			continue
		}
		stats.TotalItems++
		total += item.PointsValue
		stats.Conditions[item.Condition]++
		if item.Size != "" {
			stats.Sizes[item.Size]++
		}
	}
	stats.AvgPoints = average(total, stats.TotalItems)
	return stats, nil
}

// ItemStats breaks every item down by category and by status.
func (m *Memory) ItemStats(_ context.Context) (*models.ItemStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	type categoryTotals struct {
		count, points, views int
	}
	byCategory := make(map[models.Category]*categoryTotals)
	byStatus := make(map[models.ItemStatus]int)
	for _, item := range m.items {
		totals, ok := byCategory[item.Category]
		if !ok {
			totals = &categoryTotals{}
			byCategory[item.Category] = totals
		}
		totals.count++
		totals.points += item.PointsValue
		totals.views += item.Views
		byStatus[item.Status]++
	}

	stats := &models.ItemStats{
		CategoryStats: make([]models.CategoryCount, 0, len(byCategory)),
		StatusStats:   make([]models.StatusCount, 0, len(byStatus)),
	}
	for category, totals := range byCategory {
		stats.CategoryStats = append(stats.CategoryStats, models.CategoryCount{
			Category:   category,
			Count:      totals.count,
			AvgPoints:  average(totals.points, totals.count),
			TotalViews: totals.views,
		})
	}
	for status, count := range byStatus {
		stats.StatusStats = append(stats.StatusStats, models.StatusCount{Status: status, Count: count})
	}
	sortItemStats(stats)
	return stats, nil
}

// CreateSwapRequest validates and stores a new pending request for itemID.
func (m *Memory) CreateSwapRequest(_ context.Context, requesterID uuid.UUID, itemID uuid.UUID, in models.CreateSwapRequest, now time.Time) (*models.SwapRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	requested, err := m.item(itemID)
	if err != nil {
		return nil, err
	}
	requester, err := m.user(requesterID)
	if err != nil {
		return nil, err
	}
	var offered *models.Item
	if in.OfferedItemID != nil {
		offered = m.items[*in.OfferedItemID]
	}

	hasPending := false
	for _, request := range m.requests {
		if request.Requester == requesterID && request.RequestedItem == itemID && request.Status == models.SwapPending {
			hasPending = true
			break
		}
	}

	request, err := swap.New(requester, in, requested, offered, hasPending, now)
	if err != nil {
		return nil, err
	}
	m.requests[request.ID] = request
	return request.Clone(), nil
}

// GetSwapRequest returns the request with the given id.
func (m *Memory) GetSwapRequest(_ context.Context, id uuid.UUID) (*models.SwapRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	request, err := m.request(id)
	if err != nil {
		return nil, err
	}
	return request.Clone(), nil
}

// ListSwapRequests returns the requests received or sent by the user, newest first.
func (m *Memory) ListSwapRequests(_ context.Context, userID uuid.UUID, direction models.Direction) ([]models.SwapRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	requests := make([]models.SwapRequest, 0)
	for _, request := range m.requests {
		party, open := request.ItemOwner, receivedOpen(request.Status)
		if direction == models.DirectionSent {
			party, open = request.Requester, true
		}
		if party == userID && open {
			requests = append(requests, *request.Clone())
		}
	}
	sort.Slice(requests, func(i, j int) bool {
		if !requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].CreatedAt.After(requests[j].CreatedAt)
		}
		return requests[i].ID.String() < requests[j].ID.String()
	})
	return requests, nil
}

func receivedOpen(status models.SwapStatus) bool {
	return status == models.SwapPending || status == models.SwapAccepted
}

// RespondSwapRequest accepts or declines a pending request. Accepting declines every other
// pending request for the same item.
func (m *Memory) RespondSwapRequest(_ context.Context, id, actor uuid.UUID, in models.RespondRequest, now time.Time) (*Transition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.snapshot(id, false)
	if err != nil {
		return nil, err
	}

	transition := &Transition{Request: s.Request}
	switch in.Action {
	case models.ActionAccept:
		if err := swap.Accept(s, actor, in.ResponseMessage, now); err != nil {
			return nil, err
		}
		candidates := make([]*models.SwapRequest, 0)
		for _, other := range m.requests {
			if other.ID != id && other.RequestedItem == s.Request.RequestedItem && other.Status == models.SwapPending {
				candidates = append(candidates, other.Clone())
			}
		}
		for _, declined := range swap.Cascade(s.Request, candidates, now) {
			m.requests[declined.ID] = declined
			transition.Cascaded = append(transition.Cascaded, *declined.Clone())
		}
	case models.ActionDecline:
		if err := swap.Decline(s, actor, in.ResponseMessage, now); err != nil {
			return nil, err
		}
	default:
		return nil, apperr.Validation("action must be one of: accept, decline")
	}

	m.commit(s)
	transition.Request = s.Request.Clone()
	return transition, nil
}

// CancelSwapRequest withdraws a pending request on behalf of its requester.
func (m *Memory) CancelSwapRequest(_ context.Context, id, actor uuid.UUID, now time.Time) (*models.SwapRequest, error) {
	return m.transition(id, false, func(s *swap.Swap) error {
		return swap.Cancel(s, actor, now)
	})
}

// CompleteSwapRequest finishes an accepted swap.
func (m *Memory) CompleteSwapRequest(_ context.Context, id, actor uuid.UUID, in models.CompleteRequest, now time.Time) (*models.SwapRequest, error) {
	return m.transition(id, true, func(s *swap.Swap) error {
		return swap.Complete(s, actor, in.Rating, in.Review, now)
	})
}

// ExpireSwapRequest declines a pending request whose expiry has passed.
func (m *Memory) ExpireSwapRequest(_ context.Context, id uuid.UUID, now time.Time) (*models.SwapRequest, error) {
	return m.transition(id, false, func(s *swap.Swap) error {
		return swap.Expire(s, now)
	})
}

// FindExpired returns up to limit pending requests past their expiry, oldest expiry first.
func (m *Memory) FindExpired(_ context.Context, now time.Time, limit int) ([]models.SwapRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expired := make([]models.SwapRequest, 0)
	for _, request := range m.requests {
		if swap.IsExpired(request, now) {
			expired = append(expired, *request.Clone())
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		if !expired[i].ExpiresAt.Equal(expired[j].ExpiresAt) {
			return expired[i].ExpiresAt.Before(expired[j].ExpiresAt)
		}
		return expired[i].ID.String() < expired[j].ID.String()
	})
	if limit > 0 && len(expired) > limit {
		expired = expired[:limit]
	}
	return expired, nil
}

func (m *Memory) transition(id uuid.UUID, withUsers bool, apply func(s *swap.Swap) error) (*models.SwapRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.snapshot(id, withUsers)
	if err != nil {
		return nil, err
	}
	if err := apply(s); err != nil {
		return nil, err
	}
	m.commit(s)
	return s.Request.Clone(), nil
}

// snapshot copies every record a transition on request id may touch.
func (m *Memory) snapshot(id uuid.UUID, withUsers bool) (*swap.Swap, error) {
	request, err := m.request(id)
	if err != nil {
		return nil, err
	}
	requested, err := m.item(request.RequestedItem)
	if err != nil {
		return nil, err
	}

	s := &swap.Swap{Request: request.Clone(), Requested: requested.Clone()}
	if request.OfferedItem != nil {
		offered, err := m.item(*request.OfferedItem)
		if err != nil {
			return nil, err
		}
		s.Offered = offered.Clone()
	}
	if withUsers {
		requester, err := m.user(request.Requester)
		if err != nil {
			return nil, err
		}
		owner, err := m.user(request.ItemOwner)
		if err != nil {
			return nil, err
		}
		s.Requester = requester.Clone()
		s.Owner = owner.Clone()
	}
	return s, nil
}

func (m *Memory) commit(s *swap.Swap) {
	m.requests[s.Request.ID] = s.Request
	m.items[s.Requested.ID] = s.Requested
	if s.Offered != nil {
		m.items[s.Offered.ID] = s.Offered
	}
	if s.Requester != nil {
		m.users[s.Requester.ID] = s.Requester
	}
	if s.Owner != nil {
		m.users[s.Owner.ID] = s.Owner
	}
}

func (m *Memory) user(id uuid.UUID) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

func (m *Memory) item(id uuid.UUID) (*models.Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("Item not found")
	}
	return item, nil
}

func (m *Memory) request(id uuid.UUID) (*models.SwapRequest, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, apperr.NotFound("Swap request not found")
	}
	return request, nil
}

func (m *Memory) itemValues() []models.Item {
	items := make([]models.Item, 0, len(m.items))
	for _, item := range m.items {
		items = append(items, *item.Clone())
	}
	return items
}

// stamp gives items created within the same instant distinct creation times so that
// newest-first ordering follows insertion order.
func (m *Memory) stamp(item *models.Item) *models.Item {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = m.tick()
		item.UpdatedAt = item.CreatedAt
	}
	return item
}

func (m *Memory) tick() time.Time {
	m.clock++
	return time.Unix(0, m.clock).UTC()
}

func adjust(user *models.User, amount int) error {
	switch {
	case amount > 0:
		return ledger.Credit(user, amount)
	case amount < 0:
		return ledger.Debit(user, -amount)
	default:
		return apperr.Validation("amount must not be zero")
	}
}

func matchesFilter(item *models.Item, filter models.ItemFilter) bool {
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, item.Status) {
		return false
	}
	if filter.Owner != nil && item.Owner != *filter.Owner {
		return false
	}
	if filter.Category != "" && item.Category != filter.Category {
		return false
	}
	if filter.Size != "" && item.Size != filter.Size {
		return false
	}
	if filter.Condition != "" && item.Condition != filter.Condition {
		return false
	}
	if filter.City != "" && !strings.EqualFold(item.Location.City, filter.City) {
		return false
	}
	if filter.State != "" && !strings.EqualFold(item.Location.State, filter.State) {
		return false
	}
	if filter.MinPoints != nil && item.PointsValue < *filter.MinPoints {
		return false
	}
	if filter.MaxPoints != nil && item.PointsValue > *filter.MaxPoints {
		return false
	}
	if filter.Search != "" && !matchesSearch(item, filter.Search) {
		return false
	}
	return true
}

func matchesSearch(item *models.Item, search string) bool {
	search = strings.ToLower(search)
	fields := append([]string{item.Title, item.Description, item.Brand}, item.Tags...)
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}

func containsStatus(statuses []models.ItemStatus, status models.ItemStatus) bool {
	for _, candidate := range statuses {
		if candidate == status {
			return true
		}
	}
	return false
}

func sortItems(items []models.Item, key models.SortKey) {
	var compare func(a, b *models.Item) int
	switch key {
	case models.SortOldest:
		compare = func(a, b *models.Item) int { return compareTime(a.CreatedAt, b.CreatedAt) }
	case models.SortPointsAsc:
		compare = func(a, b *models.Item) int { return a.PointsValue - b.PointsValue }
	case models.SortPointsDesc:
		compare = func(a, b *models.Item) int { return b.PointsValue - a.PointsValue }
	case models.SortMostViewed:
		compare = func(a, b *models.Item) int { return b.Views - a.Views }
	case models.SortMostFavorite:
		compare = func(a, b *models.Item) int { return b.Favorited - a.Favorited }
	case models.SortTitle:
		compare = func(a, b *models.Item) int { return strings.Compare(a.Title, b.Title) }
	default:
		compare = func(a, b *models.Item) int { return compareTime(b.CreatedAt, a.CreatedAt) }
	}
	sort.SliceStable(items, func(i, j int) bool {
		if c := compare(&items[i], &items[j]); c != 0 {
			return c < 0
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func sortItemStats(stats *models.ItemStats) {
	sort.Slice(stats.CategoryStats, func(i, j int) bool {
		a, b := stats.CategoryStats[i], stats.CategoryStats[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})
	sort.Slice(stats.StatusStats, func(i, j int) bool {
		return stats.StatusStats[i].Status < stats.StatusStats[j].Status
	})
}
