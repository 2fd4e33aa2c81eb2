package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	data  []byte
	attrs map[string]string
	err   error
	ctx   context.Context
}

func (r *recordingSender) Send(ctx context.Context, data []byte, attrs map[string]string) error {
	r.ctx = ctx
	r.data = data
	r.attrs = attrs
	return r.err
}

func TestPubSubGatewayPublishesEvent(t *testing.T) {
	sender := &recordingSender{}
	gw := newPubSubGateway(sender, time.Second)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	gw.now = func() time.Time { return fixed }

	listingID := uuid.New()
	require.NoError(t, gw.ListingApproved(context.Background(), listingID))

	var event Event
	require.NoError(t, json.Unmarshal(sender.data, &event))
	assert.Equal(t, listingID, event.ListingID)
	assert.Equal(t, EventListingApproved, event.EventType)
	assert.True(t, event.OccurredAt.Equal(fixed))
	assert.Equal(t, EventListingApproved, sender.attrs["event_type"])

	deadline, ok := sender.ctx.Deadline()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
}

func TestPubSubGatewayWrapsSendError(t *testing.T) {
	sender := &recordingSender{err: errors.New("unavailable")}
	gw := newPubSubGateway(sender, 0)

	err := gw.ListingApproved(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")

	require.Error(t, gw.ListingApproved(context.Background(), uuid.Nil))
}

func TestLogGatewayNeverFails(t *testing.T) {
	buf := &bytes.Buffer{}
	gw := NewLogGateway(logger.New(logger.Options{ServiceName: "test", Output: buf}))
	require.NoError(t, gw.ListingApproved(context.Background(), uuid.New()))
	assert.Contains(t, buf.String(), "notification dispatched")
}
