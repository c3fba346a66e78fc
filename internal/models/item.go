package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is the catalogue section an item is listed under.
type Category string

// Supported item categories.
const (
	CategoryClothing    Category = "clothing"
	CategoryShoes       Category = "shoes"
	CategoryAccessories Category = "accessories"
	CategoryBags        Category = "bags"
	CategoryJewelry     Category = "jewelry"
	CategoryElectronics Category = "electronics"
	CategoryBooks       Category = "books"
	CategoryHome        Category = "home"
	CategoryOther       Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryClothing, CategoryShoes, CategoryAccessories, CategoryBags, CategoryJewelry,
	CategoryElectronics, CategoryBooks, CategoryHome, CategoryOther,
}

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Condition describes the wear of an item.
type Condition string

// Supported item conditions.
const (
	ConditionNew     Condition = "new"
	ConditionLikeNew Condition = "like-new"
	ConditionGood    Condition = "good"
	ConditionFair    Condition = "fair"
	ConditionVintage Condition = "vintage"
)

// Conditions lists every valid condition.
var Conditions = []Condition{ConditionNew, ConditionLikeNew, ConditionGood, ConditionFair, ConditionVintage}

// Valid reports whether c is one of the supported conditions.
func (c Condition) Valid() bool {
	for _, known := range Conditions {
		if c == known {
			return true
		}
	}
	return false
}

// Size is the label size of an item. An empty size means the owner did not specify one.
type Size string

// Supported sizes.
const (
	SizeXXS     Size = "XXS"
	SizeXS      Size = "XS"
	SizeS       Size = "S"
	SizeM       Size = "M"
	SizeL       Size = "L"
	SizeXL      Size = "XL"
	SizeXXL     Size = "XXL"
	SizeXXXL    Size = "XXXL"
	SizeOneSize Size = "One Size"
	SizeOther   Size = "Other"
)

// Sizes lists every valid size.
var Sizes = []Size{SizeXXS, SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL, SizeOneSize, SizeOther}

// Valid reports whether s is empty or one of the supported sizes.
func (s Size) Valid() bool {
	if s == "" {
		return true
	}
	for _, known := range Sizes {
		if s == known {
			return true
		}
	}
	return false
}

// ItemStatus is the availability state of an item.
type ItemStatus string

// Item availability states.
const (
	ItemAvailable ItemStatus = "available"
	ItemPending   ItemStatus = "pending"
	ItemReserved  ItemStatus = "reserved"
	ItemSwapped   ItemStatus = "swapped"
)

// InActiveSwap reports whether the status ties the item to a non-terminal swap request.
func (s ItemStatus) InActiveSwap() bool {
	return s == ItemPending || s == ItemReserved
}

// Location is where an item can be picked up.
type Location struct {
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// Item is a listing owned by exactly one user.
type Item struct {
	ID          uuid.UUID  `json:"id"`
	Owner       uuid.UUID  `json:"owner"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	Type        string     `json:"type,omitempty"`
	Size        Size       `json:"size,omitempty"`
	Condition   Condition  `json:"condition"`
	Color       string     `json:"color"`
	Brand       string     `json:"brand,omitempty"`
	Tags        []string   `json:"tags"`
	Images      []string   `json:"images"`
	PointsValue int        `json:"pointsValue"`
	Status      ItemStatus `json:"status"`
	Views       int        `json:"views"`
	Favorited   int        `json:"favorited"`
	Location    Location   `json:"location"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of the item.
func (item Item) Clone() *Item {
	clone := item
	clone.Tags = append([]string(nil), item.Tags...)
	clone.Images = append([]string(nil), item.Images...)
	return &clone
}

// CreateItemRequest is the payload of POST /items.
// PointsValue is optional; when omitted it is derived from category and condition.
type CreateItemRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    Category  `json:"category"`
	Type        string    `json:"type"`
	Size        Size      `json:"size"`
	Condition   Condition `json:"condition"`
	Color       string    `json:"color"`
	Brand       string    `json:"brand"`
	Tags        []string  `json:"tags"`
	Images      []string  `json:"images"`
	PointsValue *int      `json:"pointsValue"`
	Location    Location  `json:"location"`
}

// UpdateItemRequest is the payload of PATCH /items/{id}. Nil fields are left untouched.
type UpdateItemRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Category    *Category  `json:"category"`
	Type        *string    `json:"type"`
	Size        *Size      `json:"size"`
	Condition   *Condition `json:"condition"`
	Color       *string    `json:"color"`
	Brand       *string    `json:"brand"`
	Tags        *[]string  `json:"tags"`
	Images      *[]string  `json:"images"`
	PointsValue *int       `json:"pointsValue"`
	Location    *Location  `json:"location"`
}

// ItemDetail is the response of GET /items/{id}.
type ItemDetail struct {
	Item         *Item  `json:"item"`
	SimilarItems []Item `json:"similarItems"`
}

// FavoriteResponse is the response of PATCH /items/{id}/favorite.
type FavoriteResponse struct {
	Action    string `json:"action"`
	Favorited bool   `json:"favorited"`
}

// Favorite toggle outcomes.
const (
	FavoriteAdded   = "added"
	FavoriteRemoved = "removed"
)

// CategoryStats aggregates the available items of one category.
type CategoryStats struct {
	TotalItems int               `json:"totalItems"`
	AvgPoints  float64           `json:"avgPoints"`
	Conditions map[Condition]int `json:"conditions"`
	Sizes      map[Size]int      `json:"sizes"`
}

// CategoryView is the response of GET /items/category/{category}.
type CategoryView struct {
	Items []Item        `json:"items"`
	Stats CategoryStats `json:"stats"`
}

// CategoryCount is one row of the admin category breakdown.
type CategoryCount struct {
	Category   Category `json:"category"`
	Count      int      `json:"count"`
	AvgPoints  float64  `json:"avgPoints"`
	TotalViews int      `json:"totalViews"`
}

// StatusCount is one row of the admin status breakdown.
type StatusCount struct {
	Status ItemStatus `json:"status"`
	Count  int        `json:"count"`
}

// ItemStats is the response of GET /items/admin/stats.
type ItemStats struct {
	CategoryStats []CategoryCount `json:"categoryStats"`
	StatusStats   []StatusCount   `json:"statusStats"`
}
