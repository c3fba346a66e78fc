package models

import "github.com/google/uuid"

// SortKey orders listing results. A leading '-' means descending.
type SortKey string

// Supported sort keys.
const (
	SortNewest       SortKey = "-createdAt"
	SortOldest       SortKey = "createdAt"
	SortPointsAsc    SortKey = "pointsValue"
	SortPointsDesc   SortKey = "-pointsValue"
	SortMostViewed   SortKey = "-views"
	SortTitle        SortKey = "title"
	SortMostFavorite SortKey = "-favorited"
)

// SortKeys lists every supported sort key.
var SortKeys = []SortKey{SortNewest, SortOldest, SortPointsAsc, SortPointsDesc, SortMostViewed, SortTitle, SortMostFavorite}

// Valid reports whether k is a supported sort key.
func (k SortKey) Valid() bool {
	for _, known := range SortKeys {
		if k == known {
			return true
		}
	}
	return false
}

// ItemFilter narrows a listing. Zero values mean "no constraint".
type ItemFilter struct {
	Search    string
	Category  Category
	Size      Size
	Condition Condition
	City      string
	State     string
	MinPoints *int
	MaxPoints *int
	Owner     *uuid.UUID
	Statuses  []ItemStatus
}

// ItemQuery is the typed set of listing options consumed by the listing service.
type ItemQuery struct {
	Filter   ItemFilter
	Sort     SortKey
	Page     int
	PageSize int
	Fields   []string
}

// Offset returns the number of rows skipped before the requested page.
func (q ItemQuery) Offset() int {
	if q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// ItemPage is one page of listing results.
type ItemPage struct {
	Items    []Item
	Total    int
	Page     int
	PageSize int
}

// ItemsResponse is the JSON envelope of listing endpoints.
// Items holds either full items or field projections.
type ItemsResponse struct {
	Results    int   `json:"results"`
	TotalItems int   `json:"totalItems"`
	Page       int   `json:"page,omitempty"`
	Items      []any `json:"items"`
}
