package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"swap_store/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSwapEvent(t *testing.T) {
	offered := uuid.New()
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	request := &models.SwapRequest{
		ID:            uuid.New(),
		Requester:     uuid.New(),
		ItemOwner:     uuid.New(),
		RequestedItem: uuid.New(),
		OfferedItem:   &offered,
		SwapType:      models.SwapItemForItem,
		Status:        models.SwapAccepted,
		UpdatedAt:     updated,
	}

	event := NewSwapEvent(request)
	assert.Equal(t, request.ID, event.RequestID)
	assert.Equal(t, models.SwapAccepted, event.Status)
	assert.Equal(t, updated, event.OccurredAt)

	data, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"offeredItem":"`+offered.String()+`"`)
	assert.NotContains(t, string(data), "pointsOffered")
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), SubjectSwapCreated, SwapEvent{}))
	p.Close()
}
