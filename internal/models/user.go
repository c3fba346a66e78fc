package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role supplied by the authentication layer.
type Role string

// Known roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Rating is a running average of ratings received from swap partners.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Statistics holds the counters kept for every user.
type Statistics struct {
	TotalSwaps      int    `json:"totalSwaps"`
	SuccessfulSwaps int    `json:"successfulSwaps"`
	ItemsListed     int    `json:"itemsListed"`
	PointsEarned    int    `json:"pointsEarned"`
	PointsSpent     int    `json:"pointsSpent"`
	Rating          Rating `json:"rating"`
}

// User is a points-bearing identity.
type User struct {
	ID         uuid.UUID  `json:"id"`
	Role       Role       `json:"role"`
	Points     int        `json:"points"`
	Statistics Statistics `json:"statistics"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Clone returns a copy of the user.
func (user User) Clone() *User {
	clone := user
	return &clone
}

// Level is a display-only rank derived from the points balance.
type Level struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// UserProfile is the response of GET /users/me.
type UserProfile struct {
	*User
	Level     Level     `json:"level"`
	SwapStats SwapStats `json:"swapStats"`
}

// AdjustPointsRequest is the payload of PATCH /users/{id}/points.
// A positive amount credits the user, a negative amount debits.
type AdjustPointsRequest struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}
