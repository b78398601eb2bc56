package indexer

import (
	"context"
	"time"
)

// RunHeartbeat reports the cursor every HeartbeatInterval until ctx is done
// or the indexer stops. Failed calls are logged and retried on the next tick.
func (ix *Indexer) RunHeartbeat(ctx context.Context) {
	interval := ix.opts.HeartbeatInterval
	if interval <= 0 {
		ix.logger.Warn("heartbeat disabled")
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if ix.State().Kind == StateStopped {
			ix.logger.Info("indexer stopped, heartbeat ends")
			return
		}
		ix.beat(ctx)
	}
}

func (ix *Indexer) beat(ctx context.Context) {
	cursor := ix.Cursor()
	if err := ix.pusher.Heartbeat(ctx, cursor); err != nil {
		ix.logger.Errorf("heartbeat failed: %v", err)
		return
	}
	ix.logger.Debugf("heartbeat sent, cursor %s", cursor)
}
