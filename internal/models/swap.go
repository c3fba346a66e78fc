package models

import (
	"time"

	"github.com/google/uuid"
)

// SwapType is the kind of consideration offered for the requested item.
type SwapType string

// Supported swap types.
const (
	SwapItemForItem   SwapType = "item-for-item"
	SwapPointsForItem SwapType = "points-for-item"
)

// Valid reports whether t is a supported swap type.
func (t SwapType) Valid() bool {
	return t == SwapItemForItem || t == SwapPointsForItem
}

// SwapStatus is the lifecycle state of a swap request.
type SwapStatus string

// Swap request states. Pending is initial; declined, cancelled and completed are terminal.
const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapDeclined  SwapStatus = "declined"
	SwapCancelled SwapStatus = "cancelled"
	SwapCompleted SwapStatus = "completed"
)

// Terminal reports whether no further transition can leave the status.
func (s SwapStatus) Terminal() bool {
	return s == SwapDeclined || s == SwapCancelled || s == SwapCompleted
}

// SwapRequest is a proposal to exchange an item for another item or for points.
// Exactly one of OfferedItem and PointsOffered is set, matching SwapType.
type SwapRequest struct {
	ID              uuid.UUID  `json:"id"`
	Requester       uuid.UUID  `json:"requester"`
	ItemOwner       uuid.UUID  `json:"itemOwner"`
	RequestedItem   uuid.UUID  `json:"requestedItem"`
	SwapType        SwapType   `json:"swapType"`
	OfferedItem     *uuid.UUID `json:"offeredItem,omitempty"`
	PointsOffered   int        `json:"pointsOffered,omitempty"`
	Message         string     `json:"message,omitempty"`
	ResponseMessage string     `json:"responseMessage,omitempty"`
	Review          string     `json:"review,omitempty"`
	Status          SwapStatus `json:"status"`
	ExpiresAt       time.Time  `json:"expiresAt"`
	AcceptedAt      *time.Time `json:"acceptedAt,omitempty"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of the request.
func (request SwapRequest) Clone() *SwapRequest {
	clone := request
	if request.OfferedItem != nil {
		offered := *request.OfferedItem
		clone.OfferedItem = &offered
	}
	if request.AcceptedAt != nil {
		acceptedAt := *request.AcceptedAt
		clone.AcceptedAt = &acceptedAt
	}
	if request.CompletedAt != nil {
		completedAt := *request.CompletedAt
		clone.CompletedAt = &completedAt
	}
	return &clone
}

// CreateSwapRequest is the payload of POST /items/{itemId}/swap-request.
type CreateSwapRequest struct {
	SwapType      SwapType   `json:"swapType"`
	OfferedItemID *uuid.UUID `json:"offeredItemId,omitempty"`
	PointsOffered int        `json:"pointsOffered,omitempty"`
	Message       string     `json:"message"`
}

// Respond actions accepted by PATCH /swap-requests/{requestId}/respond.
const (
	ActionAccept  = "accept"
	ActionDecline = "decline"
)

// RespondRequest is the payload of PATCH /swap-requests/{requestId}/respond.
type RespondRequest struct {
	Action          string `json:"action"`
	ResponseMessage string `json:"responseMessage"`
}

// CompleteRequest is the payload of PATCH /swap-requests/{requestId}/complete.
// A zero rating means no rating was submitted.
type CompleteRequest struct {
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

// Direction tags a listed request relative to the caller.
type Direction string

// Request directions.
const (
	DirectionReceived Direction = "received"
	DirectionSent     Direction = "sent"
)

// SwapRequestView is a swap request tagged with its direction.
type SwapRequestView struct {
	SwapRequest
	Direction Direction `json:"direction"`
}

// SwapRequestsResponse is the JSON envelope of swap-request listings.
type SwapRequestsResponse struct {
	Results      int               `json:"results"`
	SwapRequests []SwapRequestView `json:"swapRequests"`
}

// SwapStats counts the requests a user takes part in, by status.
type SwapStats map[SwapStatus]int

// SweepResult reports one expiry sweep pass.
type SweepResult struct {
	Expired int `json:"expired"`
	Skipped int `json:"skipped"`
}
