package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"swap_store/internal/ledger"
	"swap_store/internal/models"

	"github.com/google/uuid"
)

const (
	userColumns = `id, role, points, total_swaps, successful_swaps, items_listed, points_earned, points_spent, rating_average, rating_count, created_at, updated_at`

	ensureUserQuery     = `INSERT INTO users (id, role, points, rating_average, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $5) ON CONFLICT (id) DO NOTHING;`
	getUserQuery        = `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	lockUserQuery       = `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE;`
	lockUsersQuery      = `SELECT ` + userColumns + ` FROM users WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE;`
	updateUserQuery     = `UPDATE users SET points = $2, total_swaps = $3, successful_swaps = $4, items_listed = $5, points_earned = $6, points_spent = $7, rating_average = $8, rating_count = $9, updated_at = $10 WHERE id = $1;`
	incItemsListedQuery = `UPDATE users SET items_listed = items_listed + 1 WHERE id = $1;`
	decItemsListedQuery = `UPDATE users SET items_listed = GREATEST(items_listed - 1, 0) WHERE id = $1;`
	userSwapStatsQuery  = `SELECT status, COUNT(*) FROM swap_requests WHERE requester_id = $1 OR item_owner_id = $1 GROUP BY status;`
)

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Role,
		&user.Points,
		&user.Statistics.TotalSwaps,
		&user.Statistics.SuccessfulSwaps,
		&user.Statistics.ItemsListed,
		&user.Statistics.PointsEarned,
		&user.Statistics.PointsSpent,
		&user.Statistics.Rating.Average,
		&user.Statistics.Rating.Count,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

// EnsureUser returns the user with the given id, provisioning it with the starting balance
// on first sight.
func (postgresql *PostgreSQL) EnsureUser(ctx context.Context, id uuid.UUID, role models.Role, now time.Time) (*models.User, error) {
	fresh := ledger.NewUser(id, role, now)

	_, err := postgresql.db.ExecContext(ctx, ensureUserQuery, fresh.ID, fresh.Role, fresh.Points, fresh.Statistics.Rating.Average, now)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query ensureUserQuery: %s", err)
		return nil, classify(err, "User not found")
	}

	return postgresql.GetUser(ctx, id)
}

// GetUser returns the user with the given id.
func (postgresql *PostgreSQL) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := scanUser(postgresql.db.QueryRowContext(ctx, getUserQuery, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			postgresql.log.Sugar().Errorf("Failed to execute a query getUserQuery: %s", err)
		}
		return nil, classify(err, "User not found")
	}
	return user, nil
}

// AdjustPoints credits a positive amount or debits a negative one.
func (postgresql *PostgreSQL) AdjustPoints(ctx context.Context, id uuid.UUID, amount int, now time.Time) (*models.User, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user, err := scanUser(tx.QueryRowContext(ctx, lockUserQuery, id))
	if err != nil {
		return nil, classify(err, "User not found")
	}
	if err := adjust(user, amount); err != nil {
		return nil, err
	}
	user.UpdatedAt = now

	if err := postgresql.updateUser(ctx, tx, user); err != nil {
		return nil, err
	}
	if err := postgresql.commit(tx); err != nil {
		return nil, err
	}
	return user, nil
}

// UserSwapStats counts the requests the user takes part in, by status.
func (postgresql *PostgreSQL) UserSwapStats(ctx context.Context, id uuid.UUID) (models.SwapStats, error) {
	rows, err := postgresql.db.QueryContext(ctx, userSwapStatsQuery, id)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query userSwapStatsQuery: %s", err)
		return nil, err
	}
	defer rows.Close()

	stats := make(models.SwapStats)
	for rows.Next() {
		var status models.SwapStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			postgresql.log.Sugar().Errorf("Failed to scan swap stats in UserSwapStats method: %s", err)
			return nil, err
		}
		stats[status] = count
	}

	if err := rows.Err(); err != nil {
		postgresql.log.Sugar().Errorf("The last error encountered by Rows.Scan in UserSwapStats method: %s", err)
		return stats, err
	}
	return stats, nil
}

func (postgresql *PostgreSQL) updateUser(ctx context.Context, tx *sql.Tx, user *models.User) error {
	stats := user.Statistics
	_, err := tx.ExecContext(ctx, updateUserQuery,
		user.ID,
		user.Points,
		stats.TotalSwaps,
		stats.SuccessfulSwaps,
		stats.ItemsListed,
		stats.PointsEarned,
		stats.PointsSpent,
		stats.Rating.Average,
		stats.Rating.Count,
		user.UpdatedAt,
	)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query updateUserQuery: %s", err)
		return classify(err, "User not found")
	}
	return nil
}

// lockUsers locks the given users in id order and returns them keyed by id.
func (postgresql *PostgreSQL) lockUsers(ctx context.Context, tx *sql.Tx, ids ...uuid.UUID) (map[uuid.UUID]*models.User, error) {
	rows, err := tx.QueryContext(ctx, lockUsersQuery, uuidStrings(ids))
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query lockUsersQuery: %s", err)
		return nil, classify(err, "User not found")
	}
	defer rows.Close()

	users := make(map[uuid.UUID]*models.User, len(ids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to scan user in lockUsers method: %s", err)
			return nil, err
		}
		users[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err, "User not found")
	}
	return users, nil
}

func uuidStrings(ids []uuid.UUID) []string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	return strs
}
