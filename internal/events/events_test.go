package events

import (
	"encoding/json"
	"testing"

	"github.com/WeBuildTech-AI/maintenance/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	evt := NewEvent(domain.WorkOrderCompleted, "wo-1")
	body, err := json.Marshal(evt)
	require.NoError(t, err)

	got, err := Decode(body)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkOrderCompleted, got.Type)
	assert.Equal(t, "wo-1", got.WorkOrderID)
	assert.True(t, evt.OccurredAt.Equal(got.OccurredAt))
}

func TestDecode_Invalid(t *testing.T) {
	_, err := Decode([]byte("not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"type":"work_order_archived","workOrderID":"wo-1"}`))
	assert.ErrorIs(t, err, ErrUnknownEventType)

	_, err = Decode([]byte(`{"type":"work_order_created"}`))
	assert.ErrorIs(t, err, ErrMissingWorkOrderID)
}
