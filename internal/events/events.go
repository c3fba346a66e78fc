// Package events announces swap-request transitions to other services.
package events

import (
	"context"
	"time"

	"swap_store/internal/models"

	"github.com/google/uuid"
)

// Subjects published for swap-request transitions.
const (
	SubjectSwapCreated   = "swap.created"
	SubjectSwapAccepted  = "swap.accepted"
	SubjectSwapDeclined  = "swap.declined"
	SubjectSwapCancelled = "swap.cancelled"
	SubjectSwapCompleted = "swap.completed"
	SubjectSwapExpired   = "swap.expired"
)

//go:generate mockgen -source=events.go -destination=mocks/mock_publisher.go -package=mocks

// Publisher publishes a JSON-encodable payload on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// SwapEvent is the payload of every swap subject.
type SwapEvent struct {
	RequestID       uuid.UUID         `json:"requestId"`
	Requester       uuid.UUID         `json:"requester"`
	ItemOwner       uuid.UUID         `json:"itemOwner"`
	RequestedItem   uuid.UUID         `json:"requestedItem"`
	OfferedItem     *uuid.UUID        `json:"offeredItem,omitempty"`
	SwapType        models.SwapType   `json:"swapType"`
	PointsOffered   int               `json:"pointsOffered,omitempty"`
	Status          models.SwapStatus `json:"status"`
	ResponseMessage string            `json:"responseMessage,omitempty"`
	OccurredAt      time.Time         `json:"occurredAt"`
}

// NewSwapEvent describes request as of its last update.
func NewSwapEvent(request *models.SwapRequest) SwapEvent {
	return SwapEvent{
		RequestID:       request.ID,
		Requester:       request.Requester,
		ItemOwner:       request.ItemOwner,
		RequestedItem:   request.RequestedItem,
		OfferedItem:     request.OfferedItem,
		SwapType:        request.SwapType,
		PointsOffered:   request.PointsOffered,
		Status:          request.Status,
		ResponseMessage: request.ResponseMessage,
		OccurredAt:      request.UpdatedAt,
	}
}

// Nop discards every event.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, string, any) error { return nil }

// Close does nothing.
func (Nop) Close() {}
