package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hapi-protocol/hapi-core/internal/indexer"
)

func expectMessage(t *testing.T, sub *Subscription, want StateMessage) {
	t.Helper()
	expected, err := json.Marshal(want)
	require.NoError(t, err)
	select {
	case data := <-sub.send:
		assert.JSONEq(t, string(expected), string(data))
	case <-time.After(2 * time.Second):
		t.Fatal("no message queued")
	}
}

func TestAddDeliversTransitionRacingRegistration(t *testing.T) {
	m := NewSubscriptionManager(zap.NewNop())
	processing := indexer.Processing(indexer.BlockCursor(42))
	waiting := indexer.Waiting(indexer.BlockCursor(43), 100)

	broadcasted := make(chan struct{})
	sub, err := m.Add(nil, func() StateMessage {
		// the transition lands while the current state is being read
		go func() {
			m.Broadcast(StateMessage{From: &processing, To: waiting})
			close(broadcasted)
		}()
		return StateMessage{To: processing}
	})
	require.NoError(t, err)
	<-broadcasted

	expectMessage(t, sub, StateMessage{To: processing})
	expectMessage(t, sub, StateMessage{From: &processing, To: waiting})
}

func TestBroadcastDropsSlowClient(t *testing.T) {
	m := NewSubscriptionManager(zap.NewNop())
	sub, err := m.Add(nil, func() StateMessage { return StateMessage{To: indexer.Init()} })
	require.NoError(t, err)

	for i := 0; i < sendBuffer; i++ {
		m.Broadcast(StateMessage{To: indexer.Processing(indexer.BlockCursor(uint64(i)))})
	}
	assert.Equal(t, 0, m.Count())
	select {
	case <-sub.done:
	default:
		t.Fatal("slow client was not closed")
	}
}
