package ledger

import (
	"time"

	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// StartingPoints is the balance of a newly provisioned user.
	StartingPoints = 100
	// DefaultRatingAverage is the rating shown before any rating was received.
	DefaultRatingAverage = 5.0

	minRating = 1
	maxRating = 5
)

var minimumOfferRatio = decimal.RequireFromString("0.8")

// NewUser returns a user with the starting balance and empty statistics.
func NewUser(id uuid.UUID, role models.Role, now time.Time) *models.User {
	if role == "" {
		role = models.RoleUser
	}
	return &models.User{
		ID:     id,
		Role:   role,
		Points: StartingPoints,
		Statistics: models.Statistics{
			Rating: models.Rating{Average: DefaultRatingAverage},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Credit adds amount to the balance and to pointsEarned.
func Credit(user *models.User, amount int) error {
	if amount <= 0 {
		return apperr.Validation("credit amount must be positive")
	}
	user.Points += amount
	user.Statistics.PointsEarned += amount
	return nil
}

// Debit subtracts amount from the balance and adds it to pointsSpent.
// It fails with InsufficientPoints rather than driving the balance negative.
func Debit(user *models.User, amount int) error {
	if amount <= 0 {
		return apperr.Validation("debit amount must be positive")
	}
	if user.Points < amount {
		return apperr.InsufficientPoints("Insufficient points: balance %d, required %d", user.Points, amount)
	}
	user.Points -= amount
	user.Statistics.PointsSpent += amount
	return nil
}

// RecordRating folds rating into the running average, rounded to one decimal place.
func RecordRating(user *models.User, rating int) error {
	if rating < minRating || rating > maxRating {
		return apperr.Validation("rating must be between %d and %d", minRating, maxRating)
	}
	current := user.Statistics.Rating
	count := decimal.NewFromInt(int64(current.Count))
	average := decimal.NewFromFloat(current.Average).
		Mul(count).
		Add(decimal.NewFromInt(int64(rating))).
		Div(count.Add(decimal.NewFromInt(1))).
		Round(1)

	user.Statistics.Rating.Average = average.InexactFloat64()
	user.Statistics.Rating.Count = current.Count + 1
	return nil
}

// RecordSwapOutcome counts a finished swap for user.
func RecordSwapOutcome(user *models.User, successful bool) {
	user.Statistics.TotalSwaps++
	if successful {
		user.Statistics.SuccessfulSwaps++
	}
}

// MinimumOffer is the smallest points offer accepted for an item worth pointsValue:
// ceil(0.8 × pointsValue), computed exactly.
func MinimumOffer(pointsValue int) int {
	return int(decimal.NewFromInt(int64(pointsValue)).Mul(minimumOfferRatio).Ceil().IntPart())
}

type levelThreshold struct {
	below int
	level models.Level
}

var levels = []levelThreshold{
	{below: 100, level: models.Level{Name: "Newbie", Icon: "🌱"}},
	{below: 500, level: models.Level{Name: "Swapper", Icon: "🔄"}},
	{below: 1000, level: models.Level{Name: "Trader", Icon: "💼"}},
	{below: 2500, level: models.Level{Name: "Expert", Icon: "⭐"}},
	{below: 5000, level: models.Level{Name: "Master", Icon: "👑"}},
}

var topLevel = models.Level{Name: "Legend", Icon: "🏆"}

// LevelFor derives the display level of a balance. It is never persisted.
func LevelFor(points int) models.Level {
	for _, threshold := range levels {
		if points < threshold.below {
			return threshold.level
		}
	}
	return topLevel
}
