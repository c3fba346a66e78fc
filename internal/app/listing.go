package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"
)

// Listing defaults.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NormalizeQuery validates query and fills in the default sort and paging.
func NormalizeQuery(query models.ItemQuery) (models.ItemQuery, error) {
	if query.Sort == "" {
		query.Sort = models.SortNewest
	}
	if !query.Sort.Valid() {
		return query, apperr.Validation("Invalid sort: %s", query.Sort)
	}
	if query.Page < 1 {
		query.Page = 1
	}
	switch {
	case query.PageSize <= 0:
		query.PageSize = DefaultPageSize
	case query.PageSize > MaxPageSize:
		query.PageSize = MaxPageSize
	}

	filter := query.Filter
	if filter.Category != "" && !filter.Category.Valid() {
		return query, apperr.Validation("Invalid category: %s", filter.Category)
	}
	if filter.Condition != "" && !filter.Condition.Valid() {
		return query, apperr.Validation("Invalid condition: %s", filter.Condition)
	}
	if !filter.Size.Valid() {
		return query, apperr.Validation("Invalid size: %s", filter.Size)
	}
	if filter.MinPoints != nil && filter.MaxPoints != nil && *filter.MinPoints > *filter.MaxPoints {
		return query, apperr.Validation("minPoints must not exceed maxPoints")
	}
	query.Filter.Search = strings.TrimSpace(filter.Search)
	return query, nil
}

// Project reduces every item to the requested JSON fields. The id is always kept.
// With no fields the items are returned whole.
func Project(items []models.Item, fields []string) ([]any, error) {
	projected := make([]any, 0, len(items))
	if len(fields) == 0 {
		for i := range items {
			projected = append(projected, items[i])
		}
		return projected, nil
	}

	keep := map[string]bool{"id": true}
	for _, field := range fields {
		if field = strings.TrimSpace(field); field != "" {
			keep[field] = true
		}
	}

	for i := range items {
		raw, err := json.Marshal(items[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode item %s: %w", items[i].ID, err)
		}
		var full map[string]json.RawMessage
		if err := json.Unmarshal(raw, &full); err != nil {
			return nil, fmt.Errorf("failed to decode item %s: %w", items[i].ID, err)
		}
		view := make(map[string]json.RawMessage, len(keep))
		for field, value := range full {
			if keep[field] {
				view[field] = value
			}
		}
		projected = append(projected, view)
	}
	return projected, nil
}
