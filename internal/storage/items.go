package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"swap_store/internal/ledger"
	"swap_store/internal/models"
	"swap_store/internal/swap"

	"github.com/google/uuid"
)

const (
	itemColumns = `id, owner_id, title, description, category, type, size, condition, color, brand, tags, images, points_value, status, views, favorited, city, state, country, created_at, updated_at`

	createItemQuery = `INSERT INTO items (` + itemColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);`
	getItemQuery    = `SELECT ` + itemColumns + ` FROM items WHERE id = $1;`
	lockItemQuery   = `SELECT ` + itemColumns + ` FROM items WHERE id = $1 FOR UPDATE;`
	lockItemsQuery  = `SELECT ` + itemColumns + ` FROM items WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE;`
	updateItemQuery = `UPDATE items SET owner_id = $2, title = $3, description = $4, category = $5, type = $6, size = $7, condition = $8, color = $9, brand = $10, tags = $11, images = $12, points_value = $13, status = $14, city = $15, state = $16, country = $17, updated_at = $18 WHERE id = $1;`
	deleteItemQuery = `DELETE FROM items WHERE id = $1;`
	recordViewQuery = `UPDATE items SET views = views + 1 WHERE id = $1 RETURNING ` + itemColumns + `;`

	declineRequestsForItemQuery = `UPDATE swap_requests SET status = 'declined', response_message = $2, updated_at = $3 WHERE status = 'pending' AND (requested_item_id = $1 OR offered_item_id = $1);`

	findSimilarQuery = `SELECT ` + itemColumns + ` FROM items WHERE status = 'available' AND category = $1 AND size = $2 AND id <> $3 ORDER BY created_at DESC, id ASC LIMIT $4;`
	userItemsQuery   = `SELECT ` + itemColumns + ` FROM items WHERE owner_id = $1 ORDER BY created_at DESC, id ASC;`
	favoritesQuery   = `SELECT ` + prefixedItemColumns + ` FROM favorites f JOIN items i ON i.id = f.item_id WHERE f.user_id = $1 ORDER BY f.created_at DESC, i.id ASC;`

	deleteFavoriteQuery    = `DELETE FROM favorites WHERE user_id = $1 AND item_id = $2;`
	insertFavoriteQuery    = `INSERT INTO favorites (user_id, item_id, created_at) VALUES ($1, $2, NOW());`
	incFavoritedQuery      = `UPDATE items SET favorited = favorited + 1 WHERE id = $1;`
	decFavoritedQuery      = `UPDATE items SET favorited = GREATEST(favorited - 1, 0) WHERE id = $1;`
	categoryTotalsQuery    = `SELECT COUNT(*), COALESCE(SUM(points_value), 0) FROM items WHERE category = $1 AND status = 'available';`
	categoryConditionQuery = `SELECT condition, COUNT(*) FROM items WHERE category = $1 AND status = 'available' GROUP BY condition;`
	categorySizeQuery      = `SELECT size, COUNT(*) FROM items WHERE category = $1 AND status = 'available' AND size <> '' GROUP BY size;`
	statsByCategoryQuery   = `SELECT category, COUNT(*), COALESCE(SUM(points_value), 0), COALESCE(SUM(views), 0) FROM items GROUP BY category ORDER BY COUNT(*) DESC, category ASC;`
	statsByStatusQuery     = `SELECT status, COUNT(*) FROM items GROUP BY status ORDER BY status ASC;`
)

const prefixedItemColumns = `i.id, i.owner_id, i.title, i.description, i.category, i.type, i.size, i.condition, i.color, i.brand, i.tags, i.images, i.points_value, i.status, i.views, i.favorited, i.city, i.state, i.country, i.created_at, i.updated_at`

var itemOrder = map[models.SortKey]string{
	models.SortNewest:       "created_at DESC",
	models.SortOldest:       "created_at ASC",
	models.SortPointsAsc:    "points_value ASC",
	models.SortPointsDesc:   "points_value DESC",
	models.SortMostViewed:   "views DESC",
	models.SortTitle:        "title ASC",
	models.SortMostFavorite: "favorited DESC",
}

func (postgresql *PostgreSQL) scanItem(row rowScanner) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(
		&item.ID,
		&item.Owner,
		&item.Title,
		&item.Description,
		&item.Category,
		&item.Type,
		&item.Size,
		&item.Condition,
		&item.Color,
		&item.Brand,
		postgresql.typeMap.SQLScanner(&item.Tags),
		postgresql.typeMap.SQLScanner(&item.Images),
		&item.PointsValue,
		&item.Status,
		&item.Views,
		&item.Favorited,
		&item.Location.City,
		&item.Location.State,
		&item.Location.Country,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item, err
}

func (postgresql *PostgreSQL) scanItems(rows *sql.Rows, method string) ([]models.Item, error) {
	defer rows.Close()

	items := make([]models.Item, 0)
	for rows.Next() {
		item, err := postgresql.scanItem(rows)
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to scan item in %s method: %s", method, err)
			return nil, err
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		postgresql.log.Sugar().Errorf("The last error encountered by Rows.Scan in %s method: %s", method, err)
		return items, err
	}
	return items, nil
}

// CreateItem stores a new item and counts it on the owner's itemsListed.
func (postgresql *PostgreSQL) CreateItem(ctx context.Context, item *models.Item) error {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, createItemQuery,
		item.ID,
		item.Owner,
		item.Title,
		item.Description,
		item.Category,
		item.Type,
		item.Size,
		item.Condition,
		item.Color,
		item.Brand,
		item.Tags,
		item.Images,
		item.PointsValue,
		item.Status,
		item.Views,
		item.Favorited,
		item.Location.City,
		item.Location.State,
		item.Location.Country,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query createItemQuery: %s", err)
		return classify(err, "User not found")
	}

	if _, err := tx.ExecContext(ctx, incItemsListedQuery, item.Owner); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query incItemsListedQuery: %s", err)
		return err
	}

	return postgresql.commit(tx)
}

// GetItem returns the item with the given id.
func (postgresql *PostgreSQL) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := postgresql.scanItem(postgresql.db.QueryRowContext(ctx, getItemQuery, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			postgresql.log.Sugar().Errorf("Failed to execute a query getItemQuery: %s", err)
		}
		return nil, classify(err, "Item not found")
	}
	return item, nil
}

// UpdateItem applies patch to the item when actor may modify it.
func (postgresql *PostgreSQL) UpdateItem(ctx context.Context, id uuid.UUID, actor models.Actor, patch models.UpdateItemRequest, now time.Time) (*models.Item, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	item, err := postgresql.scanItem(tx.QueryRowContext(ctx, lockItemQuery, id))
	if err != nil {
		return nil, classify(err, "Item not found")
	}
	if err := ledger.CheckModifiable(item, actor, "update"); err != nil {
		return nil, err
	}
	if err := ledger.ApplyPatch(item, patch, now); err != nil {
		return nil, err
	}

	if err := postgresql.updateItem(ctx, tx, item); err != nil {
		return nil, err
	}
	if err := postgresql.commit(tx); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes the item when actor may modify it. Pending requests naming the item
// are declined and its favorites are dropped.
func (postgresql *PostgreSQL) DeleteItem(ctx context.Context, id uuid.UUID, actor models.Actor, now time.Time) error {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	item, err := postgresql.scanItem(tx.QueryRowContext(ctx, lockItemQuery, id))
	if err != nil {
		return classify(err, "Item not found")
	}
	if err := ledger.CheckModifiable(item, actor, "delete"); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, declineRequestsForItemQuery, id, swap.CascadeDeclineMessage, now); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query declineRequestsForItemQuery: %s", err)
		return classify(err, "Item not found")
	}
	if _, err := tx.ExecContext(ctx, deleteItemQuery, id); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query deleteItemQuery: %s", err)
		return classify(err, "Item not found")
	}
	if _, err := tx.ExecContext(ctx, decItemsListedQuery, item.Owner); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query decItemsListedQuery: %s", err)
		return err
	}

	return postgresql.commit(tx)
}

// RecordView increments the view counter unless viewer owns the item.
func (postgresql *PostgreSQL) RecordView(ctx context.Context, id uuid.UUID, viewer *uuid.UUID) (*models.Item, error) {
	item, err := postgresql.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ledger.ShouldCountView(item, viewer) {
		return item, nil
	}

	item, err = postgresql.scanItem(postgresql.db.QueryRowContext(ctx, recordViewQuery, id))
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query recordViewQuery: %s", err)
		return nil, classify(err, "Item not found")
	}
	return item, nil
}

// FindSimilar returns up to limit available items sharing item's category and size,
// most recent first.
func (postgresql *PostgreSQL) FindSimilar(ctx context.Context, item *models.Item, limit int) ([]models.Item, error) {
	if limit <= 0 {
		limit = ledger.SimilarLimit
	}
	rows, err := postgresql.db.QueryContext(ctx, findSimilarQuery, item.Category, item.Size, item.ID, limit)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query findSimilarQuery: %s", err)
		return nil, err
	}
	return postgresql.scanItems(rows, "FindSimilar")
}

// ToggleFavorite adds or removes the item from the user's favorites and reports whether it
// was added.
func (postgresql *PostgreSQL) ToggleFavorite(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	if _, err := postgresql.scanItem(tx.QueryRowContext(ctx, lockItemQuery, itemID)); err != nil {
		return false, classify(err, "Item not found")
	}

	result, err := tx.ExecContext(ctx, deleteFavoriteQuery, userID, itemID)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query deleteFavoriteQuery: %s", err)
		return false, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute RowsAffected in deleteFavoriteQuery: %s", err)
		return false, err
	}

	counterQuery := decFavoritedQuery
	if removed == 0 {
		if _, err := tx.ExecContext(ctx, insertFavoriteQuery, userID, itemID); err != nil {
			postgresql.log.Sugar().Errorf("Failed to execute a query insertFavoriteQuery: %s", err)
			return false, classify(err, "User not found")
		}
		counterQuery = incFavoritedQuery
	}
	if _, err := tx.ExecContext(ctx, counterQuery, itemID); err != nil {
		postgresql.log.Sugar().Errorf("Failed to update favorited counter: %s", err)
		return false, err
	}

	if err := postgresql.commit(tx); err != nil {
		return false, err
	}
	return removed == 0, nil
}

// ListItems returns one page of items matching the query.
func (postgresql *PostgreSQL) ListItems(ctx context.Context, query models.ItemQuery) (*models.ItemPage, error) {
	where, args := itemFilterClause(query.Filter)

	page := &models.ItemPage{Page: query.Page, PageSize: query.PageSize}
	if err := postgresql.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`+where, args...).Scan(&page.Total); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query countItemsQuery: %s", err)
		return nil, err
	}

	order, ok := itemOrder[query.Sort]
	if !ok {
		order = itemOrder[models.SortNewest]
	}
	listQuery := `SELECT ` + itemColumns + ` FROM items` + where + ` ORDER BY ` + order + `, id ASC`
	if query.PageSize > 0 {
		args = append(args, query.PageSize, query.Offset())
		listQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := postgresql.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query listItemsQuery: %s", err)
		return nil, err
	}
	page.Items, err = postgresql.scanItems(rows, "ListItems")
	if err != nil {
		return nil, err
	}
	return page, nil
}

// itemFilterClause renders filter as a WHERE clause with positional arguments.
func itemFilterClause(filter models.ItemFilter) (string, []any) {
	var (
		clause strings.Builder
		args   []any
	)
	add := func(condition string, arg any) {
		args = append(args, arg)
		clause.WriteString(" AND ")
		clause.WriteString(strings.ReplaceAll(condition, "?", fmt.Sprintf("$%d", len(args))))
	}

	clause.WriteString(" WHERE 1=1")
	if len(filter.Statuses) > 0 {
		add("status = ANY(?::text[])", toStrings(filter.Statuses))
	}
	if filter.Owner != nil {
		add("owner_id = ?", *filter.Owner)
	}
	if filter.Category != "" {
		add("category = ?", string(filter.Category))
	}
	if filter.Size != "" {
		add("size = ?", string(filter.Size))
	}
	if filter.Condition != "" {
		add("condition = ?", string(filter.Condition))
	}
	if filter.City != "" {
		add("LOWER(city) = LOWER(?)", filter.City)
	}
	if filter.State != "" {
		add("LOWER(state) = LOWER(?)", filter.State)
	}
	if filter.MinPoints != nil {
		add("points_value >= ?", *filter.MinPoints)
	}
	if filter.MaxPoints != nil {
		add("points_value <= ?", *filter.MaxPoints)
	}
	if filter.Search != "" {
		add("(title ILIKE ? OR description ILIKE ? OR brand ILIKE ? OR array_to_string(tags, ' ') ILIKE ?)", "%"+escapeLike(filter.Search)+"%")
	}
	return clause.String(), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListUserItems returns every item the user owns, newest first.
func (postgresql *PostgreSQL) ListUserItems(ctx context.Context, owner uuid.UUID) ([]models.Item, error) {
	rows, err := postgresql.db.QueryContext(ctx, userItemsQuery, owner)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query userItemsQuery: %s", err)
		return nil, err
	}
	return postgresql.scanItems(rows, "ListUserItems")
}

// ListFavorites returns the user's favorite items, most recently favorited first.
func (postgresql *PostgreSQL) ListFavorites(ctx context.Context, userID uuid.UUID) ([]models.Item, error) {
	rows, err := postgresql.db.QueryContext(ctx, favoritesQuery, userID)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query favoritesQuery: %s", err)
		return nil, err
	}
	return postgresql.scanItems(rows, "ListFavorites")
}

// CategoryStats aggregates the available items of a category.
func (postgresql *PostgreSQL) CategoryStats(ctx context.Context, category models.Category) (*models.CategoryStats, error) {
	stats := &models.CategoryStats{
		Conditions: make(map[models.Condition]int),
		Sizes:      make(map[models.Size]int),
	}

	var total int
	if err := postgresql.db.QueryRowContext(ctx, categoryTotalsQuery, category).Scan(&stats.TotalItems, &total); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query categoryTotalsQuery: %s", err)
		return nil, err
	}
	stats.AvgPoints = average(total, stats.TotalItems)

	if err := postgresql.countBy(ctx, categoryConditionQuery, category, func(key string, count int) {
		stats.Conditions[models.Condition(key)] = count
	}); err != nil {
		return nil, err
	}
	if err := postgresql.countBy(ctx, categorySizeQuery, category, func(key string, count int) {
		stats.Sizes[models.Size(key)] = count
	}); err != nil {
		return nil, err
	}
	return stats, nil
}

// ItemStats breaks every item down by category and by status.
func (postgresql *PostgreSQL) ItemStats(ctx context.Context) (*models.ItemStats, error) {
	stats := &models.ItemStats{
		CategoryStats: make([]models.CategoryCount, 0),
		StatusStats:   make([]models.StatusCount, 0),
	}

	rows, err := postgresql.db.QueryContext(ctx, statsByCategoryQuery)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query statsByCategoryQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			row    models.CategoryCount
			points int
		)
		if err := rows.Scan(&row.Category, &row.Count, &points, &row.TotalViews); err != nil {
			postgresql.log.Sugar().Errorf("Failed to scan category stats in ItemStats method: %s", err)
			return nil, err
		}
		row.AvgPoints = average(points, row.Count)
		stats.CategoryStats = append(stats.CategoryStats, row)
	}
	if err := rows.Err(); err != nil {
		postgresql.log.Sugar().Errorf("The last error encountered by Rows.Scan in ItemStats method: %s", err)
		return nil, err
	}

	if err := postgresql.countBy(ctx, statsByStatusQuery, nil, func(key string, count int) {
		stats.StatusStats = append(stats.StatusStats, models.StatusCount{Status: models.ItemStatus(key), Count: count})
	}); err != nil {
		return nil, err
	}
	return stats, nil
}

// countBy runs a two-column (key, count) grouping query. A nil arg runs it without arguments.
func (postgresql *PostgreSQL) countBy(ctx context.Context, query string, arg any, collect func(key string, count int)) error {
	var args []any
	if arg != nil {
		args = append(args, arg)
	}
	rows, err := postgresql.db.QueryContext(ctx, query, args...)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a grouping query: %s", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			postgresql.log.Sugar().Errorf("Failed to scan grouping row: %s", err)
			return err
		}
		collect(key, count)
	}
	return rows.Err()
}

func (postgresql *PostgreSQL) updateItem(ctx context.Context, tx *sql.Tx, item *models.Item) error {
	_, err := tx.ExecContext(ctx, updateItemQuery,
		item.ID,
		item.Owner,
		item.Title,
		item.Description,
		item.Category,
		item.Type,
		item.Size,
		item.Condition,
		item.Color,
		item.Brand,
		item.Tags,
		item.Images,
		item.PointsValue,
		item.Status,
		item.Location.City,
		item.Location.State,
		item.Location.Country,
		item.UpdatedAt,
	)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query updateItemQuery: %s", err)
		return classify(err, "Item not found")
	}
	return nil
}

// lockItems locks the given items in id order and returns them keyed by id.
func (postgresql *PostgreSQL) lockItems(ctx context.Context, tx *sql.Tx, ids ...uuid.UUID) (map[uuid.UUID]*models.Item, error) {
	rows, err := tx.QueryContext(ctx, lockItemsQuery, uuidStrings(ids))
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query lockItemsQuery: %s", err)
		return nil, classify(err, "Item not found")
	}
	items, err := postgresql.scanItems(rows, "lockItems")
	if err != nil {
		return nil, classify(err, "Item not found")
	}

	locked := make(map[uuid.UUID]*models.Item, len(items))
	for i := range items {
		locked[items[i].ID] = &items[i]
	}
	return locked, nil
}
