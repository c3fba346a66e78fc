package swap

import (
	"errors"
	"testing"
	"time"

	"swap_store/internal/ledger"
	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	requester *models.User
	owner     *models.User
	requested *models.Item
	offered   *models.Item
}

func newFixture() *fixture {
	requester := ledger.NewUser(uuid.New(), models.RoleUser, now)
	owner := ledger.NewUser(uuid.New(), models.RoleUser, now)
	return &fixture{
		requester: requester,
		owner:     owner,
		requested: &models.Item{
			ID:          uuid.New(),
			Owner:       owner.ID,
			Category:    models.CategoryClothing,
			Condition:   models.ConditionGood,
			PointsValue: 35,
			Status:      models.ItemAvailable,
		},
		offered: &models.Item{
			ID:          uuid.New(),
			Owner:       requester.ID,
			Category:    models.CategoryShoes,
			Condition:   models.ConditionGood,
			PointsValue: 42,
			Status:      models.ItemAvailable,
		},
	}
}

func (f *fixture) pointsRequest(t *testing.T, points int) *Swap {
	t.Helper()
	request, err := New(f.requester, models.CreateSwapRequest{
		SwapType:      models.SwapPointsForItem,
		PointsOffered: points,
	}, f.requested, nil, false, now)
	require.NoError(t, err)
	return &Swap{Request: request, Requested: f.requested, Requester: f.requester, Owner: f.owner}
}

func (f *fixture) itemRequest(t *testing.T) *Swap {
	t.Helper()
	offeredID := f.offered.ID
	request, err := New(f.requester, models.CreateSwapRequest{
		SwapType:      models.SwapItemForItem,
		OfferedItemID: &offeredID,
	}, f.requested, f.offered, false, now)
	require.NoError(t, err)
	return &Swap{Request: request, Requested: f.requested, Offered: f.offered, Requester: f.requester, Owner: f.owner}
}

func TestNew(t *testing.T) {
	type expectedData struct {
		kind apperr.Kind
	}

	stranger := uuid.New()

	tests := []struct {
		name     string
		prepare  func(f *fixture) (models.CreateSwapRequest, *models.Item, bool)
		expected expectedData
	}{
		{
			name: "points offer at the minimum",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				return models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: 28}, nil, false
			},
		},
		{
			name: "points offer below the minimum",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				return models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: 27}, nil, false
			},
			expected: expectedData{kind: apperr.KindValidation},
		},
		{
			name: "points offer above the balance",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				return models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: 101}, nil, false
			},
			expected: expectedData{kind: apperr.KindInsufficientPoints},
		},
		{
			name: "zero points",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				return models.CreateSwapRequest{SwapType: models.SwapPointsForItem}, nil, false
			},
			expected: expectedData{kind: apperr.KindValidation},
		},
		{
			name: "points offer naming an item",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				offeredID := f.offered.ID
				return models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: 30, OfferedItemID: &offeredID}, f.offered, false
			},
			expected: expectedData{kind: apperr.KindValidation},
		},
		{
			name: "item offer",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				offeredID := f.offered.ID
				return models.CreateSwapRequest{SwapType: models.SwapItemForItem, OfferedItemID: &offeredID}, f.offered, false
			},
		},
		{
			name: "item offer without an item",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				return models.CreateSwapRequest{SwapType: models.SwapItemForItem}, nil, false
			},
			expected: expectedData{kind: apperr.KindValidation},
		},
		{
			name: "offered item not found",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				missing := uuid.New()
				return models.CreateSwapRequest{SwapType: models.SwapItemForItem, OfferedItemID: &missing}, nil, false
			},
			expected: expectedData{kind: apperr.KindNotFound},
		},
		{
			name: "offered item owned by someone else",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				f.offered.Owner = stranger
				offeredID := f.offered.ID
				return models.CreateSwapRequest{SwapType: models.SwapItemForItem, OfferedItemID: &offeredID}, f.offered, false
			},
			expected: expectedData{kind: apperr.KindValidation},
		},
		{
			name: "offered item reserved",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				f.offered.Status = models.ItemReserved
				offeredID := f.offered.ID
				return models.CreateSwapRequest{SwapType: models.SwapItemForItem, OfferedItemID: &offeredID}, f.offered, false
			},
			expected: expectedData{kind: apperr.KindConflict},
		},
		{
			name: "requested item reserved",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				f.requested.Status = models.ItemReserved
				return models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: 30}, nil, false
			},
			expected: expectedData{kind: apperr.KindConflict},
		},
		{
			name: "own item",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				f.requested.Owner = f.requester.ID
				return models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: 30}, nil, false
			},
			expected: expectedData{kind: apperr.KindValidation},
		},
		{
			name: "duplicate pending request",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				return models.CreateSwapRequest{SwapType: models.SwapPointsForItem, PointsOffered: 30}, nil, true
			},
			expected: expectedData{kind: apperr.KindConflict},
		},
		{
			name: "unknown swap type",
			prepare: func(f *fixture) (models.CreateSwapRequest, *models.Item, bool) {
				return models.CreateSwapRequest{SwapType: "gift"}, nil, false
			},
			expected: expectedData{kind: apperr.KindValidation},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture()
			in, offered, hasPending := test.prepare(f)

			request, err := New(f.requester, in, f.requested, offered, hasPending, now)
			if test.expected.kind != "" {
				require.Error(t, err)
				assert.Equal(t, test.expected.kind, apperr.KindOf(err))
				assert.Nil(t, request)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, models.SwapPending, request.Status)
			assert.Equal(t, f.owner.ID, request.ItemOwner)
			assert.Equal(t, now.Add(RequestTTL), request.ExpiresAt)
			assert.Equal(t, models.ItemAvailable, f.requested.Status)
			assert.Equal(t, 100, f.requester.Points)
		})
	}
}

func TestAccept(t *testing.T) {
	f := newFixture()
	s := f.itemRequest(t)

	err := Accept(s, f.requester.ID, "", now)
	assert.ErrorIs(t, err, apperr.ErrPermission)

	require.NoError(t, Accept(s, f.owner.ID, "deal", now.Add(time.Hour)))
	assert.Equal(t, models.SwapAccepted, s.Request.Status)
	assert.Equal(t, "deal", s.Request.ResponseMessage)
	require.NotNil(t, s.Request.AcceptedAt)
	assert.Equal(t, models.ItemReserved, f.requested.Status)
	assert.Equal(t, models.ItemReserved, f.offered.Status)

	err = Accept(s, f.owner.ID, "", now.Add(time.Hour))
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestAcceptExpired(t *testing.T) {
	f := newFixture()
	s := f.pointsRequest(t, 30)

	err := Accept(s, f.owner.ID, "", now.Add(RequestTTL))
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, models.SwapPending, s.Request.Status)
	assert.Equal(t, models.ItemAvailable, f.requested.Status)
}

func TestAcceptUnavailableItem(t *testing.T) {
	f := newFixture()
	s := f.itemRequest(t)
	f.offered.Status = models.ItemReserved

	err := Accept(s, f.owner.ID, "", now)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, models.SwapPending, s.Request.Status)
	assert.Equal(t, models.ItemAvailable, f.requested.Status)
}

func TestCascade(t *testing.T) {
	f := newFixture()
	accepted := f.pointsRequest(t, 30).Request

	sameItem := accepted.Clone()
	sameItem.ID = uuid.New()
	sameItem.Requester = uuid.New()

	otherItem := accepted.Clone()
	otherItem.ID = uuid.New()
	otherItem.RequestedItem = uuid.New()

	cancelled := accepted.Clone()
	cancelled.ID = uuid.New()
	cancelled.Status = models.SwapCancelled

	require.NoError(t, Accept(&Swap{Request: accepted, Requested: f.requested}, f.owner.ID, "", now))

	declined := Cascade(accepted, []*models.SwapRequest{accepted, sameItem, otherItem, cancelled}, now)
	require.Len(t, declined, 1)
	assert.Equal(t, sameItem.ID, declined[0].ID)
	assert.Equal(t, models.SwapDeclined, sameItem.Status)
	assert.Equal(t, CascadeDeclineMessage, sameItem.ResponseMessage)
	assert.Equal(t, models.SwapPending, otherItem.Status)
	assert.Equal(t, models.SwapCancelled, cancelled.Status)
	assert.Equal(t, models.SwapAccepted, accepted.Status)
}

func TestDecline(t *testing.T) {
	f := newFixture()
	s := f.itemRequest(t)

	assert.ErrorIs(t, Decline(s, f.requester.ID, "", now), apperr.ErrPermission)

	require.NoError(t, Decline(s, f.owner.ID, "not my style", now))
	assert.Equal(t, models.SwapDeclined, s.Request.Status)
	assert.Equal(t, "not my style", s.Request.ResponseMessage)
	assert.Equal(t, models.ItemAvailable, f.requested.Status)
	assert.Equal(t, models.ItemAvailable, f.offered.Status)

	err := Decline(s, f.owner.ID, "", now)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestDeclineExpired(t *testing.T) {
	f := newFixture()
	s := f.itemRequest(t)
	expiredAt := now.Add(RequestTTL + time.Second)

	err := Decline(s, f.owner.ID, "too late", expiredAt)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, "This swap request has expired", err.Error())
	assert.Equal(t, models.SwapPending, s.Request.Status)
	assert.Empty(t, s.Request.ResponseMessage)

	require.NoError(t, Expire(s, expiredAt))
	assert.Equal(t, models.SwapDeclined, s.Request.Status)
	assert.Equal(t, ExpiredMessage, s.Request.ResponseMessage)
}

func TestDeclineKeepsOtherReservation(t *testing.T) {
	f := newFixture()
	s := f.pointsRequest(t, 30)
	f.requested.Status = models.ItemReserved

	require.NoError(t, Decline(s, f.owner.ID, "", now))
	assert.Equal(t, models.ItemReserved, f.requested.Status)
}

func TestCancelReleasesPendingItems(t *testing.T) {
	f := newFixture()
	s := f.itemRequest(t)
	f.requested.Status = models.ItemPending
	f.offered.Status = models.ItemPending

	require.NoError(t, Cancel(s, f.requester.ID, now))
	assert.Equal(t, models.ItemAvailable, f.requested.Status)
	assert.Equal(t, models.ItemAvailable, f.offered.Status)
}

func TestCancel(t *testing.T) {
	f := newFixture()
	s := f.pointsRequest(t, 30)

	assert.ErrorIs(t, Cancel(s, f.owner.ID, now), apperr.ErrPermission)

	require.NoError(t, Cancel(s, f.requester.ID, now))
	assert.Equal(t, models.SwapCancelled, s.Request.Status)

	assert.ErrorIs(t, Cancel(s, f.requester.ID, now), apperr.ErrConflict)
}

func TestCancelAccepted(t *testing.T) {
	f := newFixture()
	s := f.pointsRequest(t, 30)
	require.NoError(t, Accept(s, f.owner.ID, "", now))

	assert.ErrorIs(t, Cancel(s, f.requester.ID, now), apperr.ErrConflict)
	assert.Equal(t, models.SwapAccepted, s.Request.Status)
}

func TestExpire(t *testing.T) {
	f := newFixture()
	s := f.pointsRequest(t, 30)

	assert.ErrorIs(t, Expire(s, now.Add(time.Hour)), apperr.ErrConflict)
	assert.False(t, IsExpired(s.Request, now.Add(time.Hour)))
	assert.True(t, IsExpired(s.Request, now.Add(RequestTTL)))

	require.NoError(t, Expire(s, now.Add(RequestTTL)))
	assert.Equal(t, models.SwapDeclined, s.Request.Status)
	assert.Equal(t, ExpiredMessage, s.Request.ResponseMessage)
	assert.False(t, IsExpired(s.Request, now.Add(RequestTTL)))

	assert.ErrorIs(t, Expire(s, now.Add(RequestTTL)), apperr.ErrConflict)
}

func TestCompletePoints(t *testing.T) {
	f := newFixture()
	s := f.pointsRequest(t, 28)
	require.NoError(t, Accept(s, f.owner.ID, "", now))
	total := f.requester.Points + f.owner.Points

	require.NoError(t, Complete(s, f.requester.ID, 4, "great jacket", now.Add(time.Hour)))

	assert.Equal(t, models.SwapCompleted, s.Request.Status)
	assert.Equal(t, "great jacket", s.Request.Review)
	require.NotNil(t, s.Request.CompletedAt)
	assert.Equal(t, 72, f.requester.Points)
	assert.Equal(t, 128, f.owner.Points)
	assert.Equal(t, total, f.requester.Points+f.owner.Points)
	assert.Equal(t, 28, f.requester.Statistics.PointsSpent)
	assert.Equal(t, 28, f.owner.Statistics.PointsEarned)

	assert.Equal(t, models.ItemSwapped, f.requested.Status)
	assert.Equal(t, f.requester.ID, f.requested.Owner)

	for _, user := range []*models.User{f.requester, f.owner} {
		assert.Equal(t, 1, user.Statistics.TotalSwaps)
		assert.Equal(t, 1, user.Statistics.SuccessfulSwaps)
	}
	assert.Equal(t, models.Rating{Average: 4, Count: 1}, f.owner.Statistics.Rating)
	assert.Equal(t, models.Rating{Average: 5, Count: 0}, f.requester.Statistics.Rating)

	err := Complete(s, f.requester.ID, 0, "", now.Add(time.Hour))
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestCompleteItems(t *testing.T) {
	f := newFixture()
	s := f.itemRequest(t)
	require.NoError(t, Accept(s, f.owner.ID, "", now))

	require.NoError(t, Complete(s, f.owner.ID, 2, "", now))

	assert.Equal(t, f.requester.ID, f.requested.Owner)
	assert.Equal(t, f.owner.ID, f.offered.Owner)
	assert.Equal(t, models.ItemSwapped, f.requested.Status)
	assert.Equal(t, models.ItemSwapped, f.offered.Status)
	assert.Equal(t, 100, f.requester.Points)
	assert.Equal(t, 100, f.owner.Points)
	assert.Equal(t, models.Rating{Average: 2, Count: 1}, f.requester.Statistics.Rating)
}

func TestCompleteInsufficientPoints(t *testing.T) {
	f := newFixture()
	s := f.pointsRequest(t, 30)
	require.NoError(t, Accept(s, f.owner.ID, "", now))
	f.requester.Points = 10

	err := Complete(s, f.requester.ID, 0, "", now)
	assert.ErrorIs(t, err, apperr.ErrInsufficientPoints)
	assert.Equal(t, models.SwapAccepted, s.Request.Status)
	assert.Equal(t, 100, f.owner.Points)
	assert.Equal(t, models.ItemReserved, f.requested.Status)
}

func TestCompleteRejections(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(f *fixture, s *Swap) (uuid.UUID, int)
		target  error
	}{
		{
			name: "outsider",
			prepare: func(f *fixture, s *Swap) (uuid.UUID, int) {
				return uuid.New(), 0
			},
			target: apperr.ErrPermission,
		},
		{
			name: "pending request",
			prepare: func(f *fixture, s *Swap) (uuid.UUID, int) {
				s.Request.Status = models.SwapPending
				return f.owner.ID, 0
			},
			target: apperr.ErrConflict,
		},
		{
			name: "rating out of range",
			prepare: func(f *fixture, s *Swap) (uuid.UUID, int) {
				return f.requester.ID, 6
			},
			target: apperr.ErrValidation,
		},
		{
			name: "requested item no longer reserved",
			prepare: func(f *fixture, s *Swap) (uuid.UUID, int) {
				f.requested.Status = models.ItemAvailable
				return f.requester.ID, 0
			},
			target: apperr.ErrConflict,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture()
			s := f.pointsRequest(t, 30)
			require.NoError(t, Accept(s, f.owner.ID, "", now))
			actor, rating := test.prepare(f, s)

			err := Complete(s, actor, rating, "", now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, test.target))
			assert.Equal(t, 100, f.requester.Points)
			assert.Equal(t, 0, f.owner.Statistics.TotalSwaps)
		})
	}
}

func TestPredicates(t *testing.T) {
	f := newFixture()
	s := f.pointsRequest(t, 30)

	assert.True(t, CanBeAccepted(s.Request, now))
	assert.False(t, CanBeAccepted(s.Request, now.Add(RequestTTL)))
	assert.False(t, CanBeCompleted(s.Request))

	require.NoError(t, Accept(s, f.owner.ID, "", now))
	assert.False(t, CanBeAccepted(s.Request, now))
	assert.True(t, CanBeCompleted(s.Request))
}
