// Package ledger holds the pure rules of the item ledger and the user points ledger.
// Nothing here touches storage: the storage layer loads records, applies these functions
// to them and persists the result inside one transaction.
package ledger

import (
	"sort"
	"strings"
	"time"

	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	maxTitleLength       = 100
	maxDescriptionLength = 1000

	// SimilarLimit is the default number of similar items returned with an item.
	SimilarLimit = 6

	defaultCountry = "US"
)

var categoryBasePoints = map[models.Category]int64{
	models.CategoryClothing:    50,
	models.CategoryShoes:       60,
	models.CategoryAccessories: 30,
	models.CategoryBags:        70,
	models.CategoryJewelry:     40,
	models.CategoryElectronics: 100,
	models.CategoryBooks:       20,
	models.CategoryHome:        80,
	models.CategoryOther:       30,
}

var conditionMultiplier = map[models.Condition]decimal.Decimal{
	models.ConditionNew:     decimal.RequireFromString("1.0"),
	models.ConditionLikeNew: decimal.RequireFromString("0.9"),
	models.ConditionGood:    decimal.RequireFromString("0.7"),
	models.ConditionFair:    decimal.RequireFromString("0.5"),
	models.ConditionVintage: decimal.RequireFromString("0.8"),
}

var (
	fallbackBasePoints = int64(30)
	fallbackMultiplier = decimal.RequireFromString("0.5")
)

// PointsValue returns the default valuation of an item: the category base points times the
// condition multiplier, rounded to the nearest integer. Unknown values fall back to 30 and 0.5.
func PointsValue(category models.Category, condition models.Condition) int {
	base, ok := categoryBasePoints[category]
	if !ok {
		base = fallbackBasePoints
	}
	multiplier, ok := conditionMultiplier[condition]
	if !ok {
		multiplier = fallbackMultiplier
	}
	return int(decimal.NewFromInt(base).Mul(multiplier).Round(0).IntPart())
}

// ValidateNewItem checks the required fields and enumerations of a create payload.
func ValidateNewItem(req models.CreateItemRequest) error {
	if err := validateText("title", req.Title, maxTitleLength); err != nil {
		return err
	}
	if err := validateText("description", req.Description, maxDescriptionLength); err != nil {
		return err
	}
	if !req.Category.Valid() {
		return apperr.Validation("Category must be one of: clothing, shoes, accessories, bags, jewelry, electronics, books, home, other")
	}
	if !req.Condition.Valid() {
		return apperr.Validation("Condition must be one of: new, like-new, good, fair, vintage")
	}
	if !req.Size.Valid() {
		return apperr.Validation("invalid size %q", req.Size)
	}
	if strings.TrimSpace(req.Color) == "" {
		return apperr.Validation("Please specify the color")
	}
	if err := validateImages(req.Images); err != nil {
		return err
	}
	if req.PointsValue != nil && *req.PointsValue < 0 {
		return apperr.Validation("pointsValue cannot be negative")
	}
	return nil
}

// NewItem builds an available item owned by owner from a validated payload.
func NewItem(owner uuid.UUID, req models.CreateItemRequest, now time.Time) (*models.Item, error) {
	if err := ValidateNewItem(req); err != nil {
		return nil, err
	}

	points := PointsValue(req.Category, req.Condition)
	if req.PointsValue != nil {
		points = *req.PointsValue
	}

	location := req.Location
	if location.Country == "" {
		location.Country = defaultCountry
	}

	return &models.Item{
		ID:          uuid.New(),
		Owner:       owner,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Type:        req.Type,
		Size:        req.Size,
		Condition:   req.Condition,
		Color:       strings.TrimSpace(req.Color),
		Brand:       req.Brand,
		Tags:        normalizeTags(req.Tags),
		Images:      append([]string(nil), req.Images...),
		PointsValue: points,
		Status:      models.ItemAvailable,
		Location:    location,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CheckModifiable returns a PermissionError unless actor owns the item or is an admin, and a
// ConflictError while the item is in an active swap or already swapped. verb names the
// attempted operation in the message ("update", "delete").
func CheckModifiable(item *models.Item, actor models.Actor, verb string) error {
	if item.Owner != actor.ID && !actor.IsAdmin() {
		return apperr.Permission("You do not have permission to %s this item", verb)
	}
	if item.Status.InActiveSwap() {
		return apperr.Conflict("Cannot %s item while it is in an active swap", verb)
	}
	if item.Status == models.ItemSwapped {
		return apperr.Conflict("Cannot %s item that has already been swapped", verb)
	}
	return nil
}

// ApplyPatch validates and applies the non-nil fields of patch to item.
// The stored pointsValue only changes when the patch sets it explicitly.
func ApplyPatch(item *models.Item, patch models.UpdateItemRequest, now time.Time) error {
	if patch.Title != nil {
		if err := validateText("title", *patch.Title, maxTitleLength); err != nil {
			return err
		}
		item.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		if err := validateText("description", *patch.Description, maxDescriptionLength); err != nil {
			return err
		}
		item.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Category != nil {
		if !patch.Category.Valid() {
			return apperr.Validation("invalid category %q", *patch.Category)
		}
		item.Category = *patch.Category
	}
	if patch.Condition != nil {
		if !patch.Condition.Valid() {
			return apperr.Validation("invalid condition %q", *patch.Condition)
		}
		item.Condition = *patch.Condition
	}
	if patch.Size != nil {
		if !patch.Size.Valid() {
			return apperr.Validation("invalid size %q", *patch.Size)
		}
		item.Size = *patch.Size
	}
	if patch.Color != nil {
		if strings.TrimSpace(*patch.Color) == "" {
			return apperr.Validation("color cannot be empty")
		}
		item.Color = strings.TrimSpace(*patch.Color)
	}
	if patch.Images != nil {
		if err := validateImages(*patch.Images); err != nil {
			return err
		}
		item.Images = append([]string(nil), (*patch.Images)...)
	}
	if patch.PointsValue != nil {
		if *patch.PointsValue < 0 {
			return apperr.Validation("pointsValue cannot be negative")
		}
		item.PointsValue = *patch.PointsValue
	}
	if patch.Type != nil {
		item.Type = *patch.Type
	}
	if patch.Brand != nil {
		item.Brand = *patch.Brand
	}
	if patch.Tags != nil {
		item.Tags = normalizeTags(*patch.Tags)
	}
	if patch.Location != nil {
		item.Location = *patch.Location
	}
	item.UpdatedAt = now
	return nil
}

// ShouldCountView reports whether a view by viewer increments the counter.
// Anonymous views count; the owner's own views do not.
func ShouldCountView(item *models.Item, viewer *uuid.UUID) bool {
	return viewer == nil || *viewer != item.Owner
}

// SetStatus moves item to status. Only the swap state machine calls it.
func SetStatus(item *models.Item, status models.ItemStatus, now time.Time) {
	item.Status = status
	item.UpdatedAt = now
}

// TransferOwnership marks item swapped and hands it to owner.
func TransferOwnership(item *models.Item, owner uuid.UUID, now time.Time) {
	item.Owner = owner
	SetStatus(item, models.ItemSwapped, now)
}

// Similar returns up to limit available items from candidates that share item's category
// and size, excluding item itself. Results are ordered most recent first, ties broken by id.
func Similar(candidates []models.Item, item *models.Item, limit int) []models.Item {
	if limit <= 0 {
		limit = SimilarLimit
	}
	similar := make([]models.Item, 0, limit)
	for _, candidate := range candidates {
		if candidate.ID == item.ID || candidate.Status != models.ItemAvailable {
			continue
		}
		if candidate.Category != item.Category || candidate.Size != item.Size {
			continue
		}
		similar = append(similar, candidate)
	}
	SortNewestFirst(similar)
	if len(similar) > limit {
		similar = similar[:limit]
	}
	return similar
}

// SortNewestFirst orders items by creation time descending, then by id.
func SortNewestFirst(items []models.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}

func validateText(field, value string, maxLength int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return apperr.Validation("An item must have a %s", field)
	}
	if len([]rune(value)) > maxLength {
		return apperr.Validation("%s cannot exceed %d characters", field, maxLength)
	}
	return nil
}

func validateImages(images []string) error {
	if len(images) == 0 {
		return apperr.Validation("At least one image is required")
	}
	for _, image := range images {
		if strings.TrimSpace(image) == "" {
			return apperr.Validation("image URLs cannot be empty")
		}
	}
	return nil
}

func normalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized
}
