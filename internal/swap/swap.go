// Package swap implements the swap-request state machine.
//
//	pending ──accept──▶ accepted ──complete──▶ completed
//	   │
//	   ├──decline / expire──▶ declined
//	   └──cancel──▶ cancelled
//
// Each transition takes a Swap snapshot of every record it touches, checks its
// preconditions and applies all side effects to the snapshot in place: request status,
// item statuses and ownership, point balances and user statistics. The storage layer loads
// the snapshot under lock, runs the transition and persists the snapshot in the same
// transaction. When a transition returns an error the snapshot may be partially modified
// and must be discarded.
package swap

import (
	"strings"
	"time"

	"swap_store/internal/ledger"
	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"

	"github.com/google/uuid"
)

const (
	// RequestTTL is how long a pending request can be accepted.
	RequestTTL = 7 * 24 * time.Hour

	// CascadeDeclineMessage is the response given to requests auto-declined when another
	// request for the same item is accepted.
	CascadeDeclineMessage = "Item no longer available"

	// ExpiredMessage is the response given to requests declined by the expiry sweep.
	ExpiredMessage = "Request expired"

	maxMessageLength = 500
)

// Swap is the set of records read and written by one transition.
// Offered is nil for points-for-item requests. Requester and Owner are only required by Complete.
type Swap struct {
	Request   *models.SwapRequest
	Requested *models.Item
	Offered   *models.Item
	Requester *models.User
	Owner     *models.User
}

// CanBeAccepted reports whether the request is pending and not yet expired.
func CanBeAccepted(request *models.SwapRequest, now time.Time) bool {
	return request.Status == models.SwapPending && now.Before(request.ExpiresAt)
}

// CanBeCompleted reports whether the request has been accepted.
func CanBeCompleted(request *models.SwapRequest) bool {
	return request.Status == models.SwapAccepted
}

// IsExpired reports whether the request is still pending past its expiry.
func IsExpired(request *models.SwapRequest, now time.Time) bool {
	return request.Status == models.SwapPending && !now.Before(request.ExpiresAt)
}

// New validates a create payload against the requested item, the optional offered item and
// the requester, and returns the pending request. hasPending reports whether the requester
// already has a pending request for the same item. offered is nil when the payload names no
// item or the named item does not exist.
func New(requester *models.User, in models.CreateSwapRequest, requested, offered *models.Item, hasPending bool, now time.Time) (*models.SwapRequest, error) {
	if requested.Status != models.ItemAvailable {
		return nil, apperr.Conflict("This item is no longer available for swap")
	}
	if requested.Owner == requester.ID {
		return nil, apperr.Validation("You cannot request to swap your own item")
	}
	if hasPending {
		return nil, apperr.Conflict("You already have a pending request for this item")
	}
	if len([]rune(in.Message)) > maxMessageLength {
		return nil, apperr.Validation("Message cannot exceed %d characters", maxMessageLength)
	}

	request := &models.SwapRequest{
		ID:            uuid.New(),
		Requester:     requester.ID,
		ItemOwner:     requested.Owner,
		RequestedItem: requested.ID,
		SwapType:      in.SwapType,
		Message:       strings.TrimSpace(in.Message),
		Status:        models.SwapPending,
		ExpiresAt:     now.Add(RequestTTL),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	switch in.SwapType {
	case models.SwapItemForItem:
		if in.PointsOffered != 0 {
			return nil, apperr.Validation("Points cannot be offered in an item-for-item swap")
		}
		if in.OfferedItemID == nil {
			return nil, apperr.Validation("Please specify the item you want to offer")
		}
		if offered == nil || offered.ID != *in.OfferedItemID {
			return nil, apperr.NotFound("Offered item not found")
		}
		if offered.Owner != requester.ID {
			return nil, apperr.Validation("You can only offer items you own")
		}
		if offered.Status != models.ItemAvailable {
			return nil, apperr.Conflict("Your offered item is not available for swap")
		}
		offeredID := offered.ID
		request.OfferedItem = &offeredID

	case models.SwapPointsForItem:
		if in.OfferedItemID != nil {
			return nil, apperr.Validation("An item cannot be offered in a points-for-item swap")
		}
		if in.PointsOffered < 1 {
			return nil, apperr.Validation("Please specify valid points amount")
		}
		if requester.Points < in.PointsOffered {
			return nil, apperr.InsufficientPoints("Insufficient points")
		}
		if minimum := ledger.MinimumOffer(requested.PointsValue); in.PointsOffered < minimum {
			return nil, apperr.Validation("Minimum %d points required", minimum)
		}
		request.PointsOffered = in.PointsOffered

	default:
		return nil, apperr.Validation("swapType must be one of: item-for-item, points-for-item")
	}

	return request, nil
}

// Accept moves a pending request to accepted and reserves the items it names.
// Only the item owner may accept, and only before the request expires. The caller must
// cascade-decline the other pending requests for the same item (see Cascade).
func Accept(s *Swap, actor uuid.UUID, responseMessage string, now time.Time) error {
	request := s.Request
	if actor != request.ItemOwner {
		return apperr.Permission("You can only respond to requests for your own items")
	}
	if request.Status != models.SwapPending {
		return apperr.Conflict("This swap request has already been responded to")
	}
	if !CanBeAccepted(request, now) {
		return apperr.Conflict("This swap request has expired")
	}
	if err := validateMessage(responseMessage); err != nil {
		return err
	}
	if s.Requested.Status != models.ItemAvailable {
		return apperr.Conflict("Item is no longer available")
	}
	if request.SwapType == models.SwapItemForItem {
		if s.Offered == nil || s.Offered.Status != models.ItemAvailable || s.Offered.Owner != request.Requester {
			return apperr.Conflict("The offered item is no longer available")
		}
	}

	request.Status = models.SwapAccepted
	request.AcceptedAt = timePtr(now)
	request.ResponseMessage = strings.TrimSpace(responseMessage)
	request.UpdatedAt = now

	ledger.SetStatus(s.Requested, models.ItemReserved, now)
	if s.Offered != nil {
		ledger.SetStatus(s.Offered, models.ItemReserved, now)
	}
	return nil
}

// Cascade declines every other pending request for the item accepted names and returns
// the requests it changed.
func Cascade(accepted *models.SwapRequest, candidates []*models.SwapRequest, now time.Time) []*models.SwapRequest {
	var declined []*models.SwapRequest
	for _, other := range candidates {
		if other.ID == accepted.ID || other.RequestedItem != accepted.RequestedItem {
			continue
		}
		if other.Status != models.SwapPending {
			continue
		}
		AutoDecline(other, now)
		declined = append(declined, other)
	}
	return declined
}

// AutoDecline declines a pending request because its item was promised to another request.
func AutoDecline(request *models.SwapRequest, now time.Time) {
	request.Status = models.SwapDeclined
	request.ResponseMessage = CascadeDeclineMessage
	request.UpdatedAt = now
}

// Decline moves a pending request to declined. Only the item owner may decline, and only
// before the request expires; expired requests are declined by Expire.
func Decline(s *Swap, actor uuid.UUID, responseMessage string, now time.Time) error {
	request := s.Request
	if actor != request.ItemOwner {
		return apperr.Permission("You can only respond to requests for your own items")
	}
	if request.Status != models.SwapPending {
		return apperr.Conflict("This swap request has already been responded to")
	}
	if !CanBeAccepted(request, now) {
		return apperr.Conflict("This swap request has expired")
	}
	if err := validateMessage(responseMessage); err != nil {
		return err
	}

	request.Status = models.SwapDeclined
	request.ResponseMessage = strings.TrimSpace(responseMessage)
	request.UpdatedAt = now
	release(s, now)
	return nil
}

// Cancel moves a pending request to cancelled. Only the requester may cancel, and an
// accepted request can no longer be cancelled.
func Cancel(s *Swap, actor uuid.UUID, now time.Time) error {
	request := s.Request
	if actor != request.Requester {
		return apperr.Permission("Only the requester can cancel a swap request")
	}
	if request.Status != models.SwapPending {
		return apperr.Conflict("Only pending swap requests can be cancelled")
	}

	request.Status = models.SwapCancelled
	request.UpdatedAt = now
	release(s, now)
	return nil
}

// Expire declines a pending request whose expiry has passed. It is driven by the sweep job,
// not by a user, and fails with a ConflictError when a racing transition got there first.
func Expire(s *Swap, now time.Time) error {
	request := s.Request
	if request.Status != models.SwapPending {
		return apperr.Conflict("This swap request has already been responded to")
	}
	if !IsExpired(request, now) {
		return apperr.Conflict("This swap request has not expired")
	}

	request.Status = models.SwapDeclined
	request.ResponseMessage = ExpiredMessage
	request.UpdatedAt = now
	release(s, now)
	return nil
}

// Complete finishes an accepted swap: ownership of the requested item passes to the
// requester, and either the offered item passes to the owner or the offered points move
// from requester to owner. Both parties get a successful swap counted, and a non-zero
// rating from the completer is recorded on the other party.
func Complete(s *Swap, actor uuid.UUID, rating int, review string, now time.Time) error {
	request := s.Request
	isRequester := actor == request.Requester
	isOwner := actor == request.ItemOwner
	if !isRequester && !isOwner {
		return apperr.Permission("You are not part of this swap")
	}
	if !CanBeCompleted(request) {
		return apperr.Conflict("Only accepted swaps can be completed")
	}
	if rating != 0 && (rating < 1 || rating > 5) {
		return apperr.Validation("rating must be between 1 and 5")
	}
	if err := validateMessage(review); err != nil {
		return err
	}
	if s.Requested.Status != models.ItemReserved {
		return apperr.Conflict("The requested item is not reserved for this swap")
	}
	if request.SwapType == models.SwapItemForItem && (s.Offered == nil || s.Offered.Status != models.ItemReserved) {
		return apperr.Conflict("The offered item is not reserved for this swap")
	}

	if request.SwapType == models.SwapPointsForItem {
		if err := ledger.Debit(s.Requester, request.PointsOffered); err != nil {
			return err
		}
		if err := ledger.Credit(s.Owner, request.PointsOffered); err != nil {
			return err
		}
	}

	ledger.TransferOwnership(s.Requested, request.Requester, now)
	if request.SwapType == models.SwapItemForItem {
		ledger.TransferOwnership(s.Offered, request.ItemOwner, now)
	}

	ledger.RecordSwapOutcome(s.Requester, true)
	ledger.RecordSwapOutcome(s.Owner, true)

	if rating != 0 {
		rated := s.Requester
		if isRequester {
			rated = s.Owner
		}
		if err := ledger.RecordRating(rated, rating); err != nil {
			return err
		}
	}

	request.Status = models.SwapCompleted
	request.CompletedAt = timePtr(now)
	request.Review = strings.TrimSpace(review)
	request.UpdatedAt = now
	return nil
}

// release returns items held by a request that leaves the pending state. A pending request
// never holds a reservation, so only items still marked pending are freed; an item reserved
// by another, accepted request keeps its claim.
func release(s *Swap, now time.Time) {
	for _, item := range []*models.Item{s.Requested, s.Offered} {
		if item != nil && item.Status == models.ItemPending {
			ledger.SetStatus(item, models.ItemAvailable, now)
		}
	}
}

func validateMessage(message string) error {
	if len([]rune(message)) > maxMessageLength {
		return apperr.Validation("Message cannot exceed %d characters", maxMessageLength)
	}
	return nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
