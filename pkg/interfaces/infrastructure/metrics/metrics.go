// Package metrics defines what the indexer reports to monitoring.
package metrics

// Recorder receives indexer measurements
type Recorder interface {
	// SetState marks name as the current state
	SetState(name string)
	// JobProcessed counts a handled job by kind and outcome
	JobProcessed(kind string, err error)
	// WebhookPushed counts a webhook call by event name and outcome
	WebhookPushed(event string, err error)
	// SetCursorHeight records the block height of the cursor
	SetCursorHeight(height uint64)
	// SetQueueLength records the number of pending jobs
	SetQueueLength(n int)
}
