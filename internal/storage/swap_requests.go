package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"swap_store/internal/models"
	"swap_store/internal/pkg/apperr"
	"swap_store/internal/swap"

	"github.com/google/uuid"
)

const (
	requestColumns = `id, requester_id, item_owner_id, requested_item_id, swap_type, offered_item_id, points_offered, message, response_message, review, status, expires_at, accepted_at, completed_at, created_at, updated_at`

	createRequestQuery    = `INSERT INTO swap_requests (` + requestColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);`
	getRequestQuery       = `SELECT ` + requestColumns + ` FROM swap_requests WHERE id = $1;`
	lockRequestQuery      = `SELECT ` + requestColumns + ` FROM swap_requests WHERE id = $1 FOR UPDATE;`
	hasPendingQuery       = `SELECT EXISTS (SELECT 1 FROM swap_requests WHERE requester_id = $1 AND requested_item_id = $2 AND status = 'pending');`
	receivedRequestsQuery = `SELECT ` + requestColumns + ` FROM swap_requests WHERE item_owner_id = $1 AND status IN ('pending', 'accepted') ORDER BY created_at DESC, id ASC;`
	sentRequestsQuery     = `SELECT ` + requestColumns + ` FROM swap_requests WHERE requester_id = $1 ORDER BY created_at DESC, id ASC;`
	expiredRequestsQuery  = `SELECT ` + requestColumns + ` FROM swap_requests WHERE status = 'pending' AND expires_at <= $1 ORDER BY expires_at ASC, id ASC LIMIT NULLIF($2::int, 0);`

	// updateRequestQuery only applies while the stored status is still the one the
	// transition started from.
	updateRequestQuery = `UPDATE swap_requests SET status = $2, response_message = $3, review = $4, accepted_at = $5, completed_at = $6, updated_at = $7 WHERE id = $1 AND status = $8;`

	cascadeDeclineQuery = `UPDATE swap_requests SET status = 'declined', response_message = $3, updated_at = $4 WHERE requested_item_id = $1 AND id <> $2 AND status = 'pending' RETURNING ` + requestColumns + `;`
)

func scanRequest(row rowScanner) (*models.SwapRequest, error) {
	var (
		request     models.SwapRequest
		offeredItem uuid.NullUUID
		acceptedAt  sql.NullTime
		completedAt sql.NullTime
	)
	err := row.Scan(
		&request.ID,
		&request.Requester,
		&request.ItemOwner,
		&request.RequestedItem,
		&request.SwapType,
		&offeredItem,
		&request.PointsOffered,
		&request.Message,
		&request.ResponseMessage,
		&request.Review,
		&request.Status,
		&request.ExpiresAt,
		&acceptedAt,
		&completedAt,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if offeredItem.Valid {
		request.OfferedItem = &offeredItem.UUID
	}
	if acceptedAt.Valid {
		request.AcceptedAt = &acceptedAt.Time
	}
	if completedAt.Valid {
		request.CompletedAt = &completedAt.Time
	}
	return &request, nil
}

func (postgresql *PostgreSQL) scanRequests(rows *sql.Rows, method string) ([]models.SwapRequest, error) {
	defer rows.Close()

	requests := make([]models.SwapRequest, 0)
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to scan swap request in %s method: %s", method, err)
			return nil, err
		}
		requests = append(requests, *request)
	}

	if err := rows.Err(); err != nil {
		postgresql.log.Sugar().Errorf("The last error encountered by Rows.Scan in %s method: %s", method, err)
		return requests, err
	}
	return requests, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// CreateSwapRequest validates and stores a new pending request for itemID.
func (postgresql *PostgreSQL) CreateSwapRequest(ctx context.Context, requesterID uuid.UUID, itemID uuid.UUID, in models.CreateSwapRequest, now time.Time) (*models.SwapRequest, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Row locks on the items serialise this insert with accepts of the same item.
	ids := []uuid.UUID{itemID}
	if in.OfferedItemID != nil {
		ids = append(ids, *in.OfferedItemID)
	}
	items, err := postgresql.lockItems(ctx, tx, ids...)
	if err != nil {
		return nil, err
	}
	requested, ok := items[itemID]
	if !ok {
		return nil, apperr.NotFound("Item not found")
	}
	requester, err := scanUser(tx.QueryRowContext(ctx, getUserQuery, requesterID))
	if err != nil {
		return nil, classify(err, "User not found")
	}

	var offered *models.Item
	if in.OfferedItemID != nil {
		offered = items[*in.OfferedItemID]
	}

	var hasPending bool
	if err := tx.QueryRowContext(ctx, hasPendingQuery, requesterID, itemID).Scan(&hasPending); err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query hasPendingQuery: %s", err)
		return nil, err
	}

	request, err := swap.New(requester, in, requested, offered, hasPending, now)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, createRequestQuery,
		request.ID,
		request.Requester,
		request.ItemOwner,
		request.RequestedItem,
		request.SwapType,
		nullUUID(request.OfferedItem),
		request.PointsOffered,
		request.Message,
		request.ResponseMessage,
		request.Review,
		request.Status,
		request.ExpiresAt,
		nullTime(request.AcceptedAt),
		nullTime(request.CompletedAt),
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query createRequestQuery: %s", err)
		return nil, classify(err, "Item not found")
	}

	if err := postgresql.commit(tx); err != nil {
		return nil, err
	}
	return request, nil
}

// GetSwapRequest returns the request with the given id.
func (postgresql *PostgreSQL) GetSwapRequest(ctx context.Context, id uuid.UUID) (*models.SwapRequest, error) {
	request, err := scanRequest(postgresql.db.QueryRowContext(ctx, getRequestQuery, id))
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			postgresql.log.Sugar().Errorf("Failed to execute a query getRequestQuery: %s", err)
		}
		return nil, classify(err, "Swap request not found")
	}
	return request, nil
}

// ListSwapRequests returns the requests received or sent by the user, newest first.
// Received requests are limited to those still awaiting the owner: pending or accepted.
func (postgresql *PostgreSQL) ListSwapRequests(ctx context.Context, userID uuid.UUID, direction models.Direction) ([]models.SwapRequest, error) {
	query := receivedRequestsQuery
	if direction == models.DirectionSent {
		query = sentRequestsQuery
	}

	rows, err := postgresql.db.QueryContext(ctx, query, userID)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query listSwapRequests(%s): %s", direction, err)
		return nil, err
	}
	return postgresql.scanRequests(rows, "ListSwapRequests")
}

// FindExpired returns up to limit pending requests past their expiry, oldest expiry first.
func (postgresql *PostgreSQL) FindExpired(ctx context.Context, now time.Time, limit int) ([]models.SwapRequest, error) {
	rows, err := postgresql.db.QueryContext(ctx, expiredRequestsQuery, now, limit)
	if err != nil {
		postgresql.log.Sugar().Errorf("Failed to execute a query expiredRequestsQuery: %s", err)
		return nil, err
	}
	return postgresql.scanRequests(rows, "FindExpired")
}

// RespondSwapRequest accepts or declines a pending request. Accepting declines every other
// pending request for the same item in the same transaction.
func (postgresql *PostgreSQL) RespondSwapRequest(ctx context.Context, id, actor uuid.UUID, in models.RespondRequest, now time.Time) (*Transition, error) {
	var apply func(s *swap.Swap) error
	switch in.Action {
	case models.ActionAccept:
		apply = func(s *swap.Swap) error { return swap.Accept(s, actor, in.ResponseMessage, now) }
	case models.ActionDecline:
		apply = func(s *swap.Swap) error { return swap.Decline(s, actor, in.ResponseMessage, now) }
	default:
		return nil, apperr.Validation("action must be one of: accept, decline")
	}

	transition := &Transition{}
	request, err := postgresql.transition(ctx, id, false, apply, func(tx *sql.Tx, s *swap.Swap) error {
		if s.Request.Status != models.SwapAccepted {
			return nil
		}
		rows, err := tx.QueryContext(ctx, cascadeDeclineQuery, s.Request.RequestedItem, s.Request.ID, swap.CascadeDeclineMessage, now)
		if err != nil {
			postgresql.log.Sugar().Errorf("Failed to execute a query cascadeDeclineQuery: %s", err)
			return classify(err, "Swap request not found")
		}
		transition.Cascaded, err = postgresql.scanRequests(rows, "RespondSwapRequest")
		return err
	})
	if err != nil {
		return nil, err
	}
	transition.Request = request
	return transition, nil
}

// CancelSwapRequest withdraws a pending request on behalf of its requester.
func (postgresql *PostgreSQL) CancelSwapRequest(ctx context.Context, id, actor uuid.UUID, now time.Time) (*models.SwapRequest, error) {
	return postgresql.transition(ctx, id, false, func(s *swap.Swap) error {
		return swap.Cancel(s, actor, now)
	}, nil)
}

// CompleteSwapRequest finishes an accepted swap, moving ownership and points.
func (postgresql *PostgreSQL) CompleteSwapRequest(ctx context.Context, id, actor uuid.UUID, in models.CompleteRequest, now time.Time) (*models.SwapRequest, error) {
	return postgresql.transition(ctx, id, true, func(s *swap.Swap) error {
		return swap.Complete(s, actor, in.Rating, in.Review, now)
	}, nil)
}

// ExpireSwapRequest declines a pending request whose expiry has passed.
func (postgresql *PostgreSQL) ExpireSwapRequest(ctx context.Context, id uuid.UUID, now time.Time) (*models.SwapRequest, error) {
	return postgresql.transition(ctx, id, false, func(s *swap.Swap) error {
		return swap.Expire(s, now)
	}, nil)
}

// transition runs one swap transition in a transaction. Items are locked first in id order,
// then the request, then (withUsers) both parties, so concurrent transitions on the same
// item serialize instead of deadlocking. The request update is conditioned on the status
// read under lock; after runs inside the transaction once the snapshot is persisted.
func (postgresql *PostgreSQL) transition(
	ctx context.Context,
	id uuid.UUID,
	withUsers bool,
	apply func(s *swap.Swap) error,
	after func(tx *sql.Tx, s *swap.Swap) error,
) (*models.SwapRequest, error) {
	tx, err := postgresql.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	s, err := postgresql.lockSwap(ctx, tx, id, withUsers)
	if err != nil {
		return nil, err
	}
	previous := s.Request.Status

	if err := apply(s); err != nil {
		return nil, err
	}

	if err := postgresql.persistSwap(ctx, tx, s, previous); err != nil {
		return nil, err
	}
	if after != nil {
		if err := after(tx, s); err != nil {
			return nil, err
		}
	}

	if err := postgresql.commit(tx); err != nil {
		return nil, err
	}
	return s.Request, nil
}

func (postgresql *PostgreSQL) lockSwap(ctx context.Context, tx *sql.Tx, id uuid.UUID, withUsers bool) (*swap.Swap, error) {
	unlocked, err := scanRequest(tx.QueryRowContext(ctx, getRequestQuery, id))
	if err != nil {
		return nil, classify(err, "Swap request not found")
	}

	itemIDs := []uuid.UUID{unlocked.RequestedItem}
	if unlocked.OfferedItem != nil {
		itemIDs = append(itemIDs, *unlocked.OfferedItem)
	}
	items, err := postgresql.lockItems(ctx, tx, itemIDs...)
	if err != nil {
		return nil, err
	}

	request, err := scanRequest(tx.QueryRowContext(ctx, lockRequestQuery, id))
	if err != nil {
		return nil, classify(err, "Swap request not found")
	}

	s := &swap.Swap{Request: request}
	if s.Requested = items[request.RequestedItem]; s.Requested == nil {
		return nil, apperr.NotFound("Item not found")
	}
	if request.OfferedItem != nil {
		if s.Offered = items[*request.OfferedItem]; s.Offered == nil {
			return nil, apperr.NotFound("Offered item not found")
		}
	}

	if withUsers {
		users, err := postgresql.lockUsers(ctx, tx, request.Requester, request.ItemOwner)
		if err != nil {
			return nil, err
		}
		s.Requester, s.Owner = users[request.Requester], users[request.ItemOwner]
		if s.Requester == nil || s.Owner == nil {
			return nil, apperr.NotFound("User not found")
		}
	}
	return s, nil
}

func (postgresql *PostgreSQL) persistSwap(ctx context.Context, tx *sql.Tx, s *swap.Swap, previous models.SwapStatus) error {
	request := s.Request
	err := postgresql.execOne(ctx, tx, "updateRequestQuery", updateRequestQuery,
		"This swap request has already been responded to",
		request.ID,
		request.Status,
		request.ResponseMessage,
		request.Review,
		nullTime(request.AcceptedAt),
		nullTime(request.CompletedAt),
		request.UpdatedAt,
		previous,
	)
	if err != nil {
		return err
	}

	for _, item := range []*models.Item{s.Requested, s.Offered} {
		if item == nil {
			continue
		}
		if err := postgresql.updateItem(ctx, tx, item); err != nil {
			return err
		}
	}
	for _, user := range []*models.User{s.Requester, s.Owner} {
		if user == nil {
			continue
		}
		if err := postgresql.updateUser(ctx, tx, user); err != nil {
			return err
		}
	}
	return nil
}
