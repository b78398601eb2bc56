// Package indexer follows HAPI Core contract activity on one network and
// pushes entity snapshots to a webhook.
package indexer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	coremetrics "github.com/hapi-protocol/hapi-core/internal/core/infrastructure/metrics"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/event"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/log"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/metrics"
	"github.com/hapi-protocol/hapi-core/pkg/interfaces/infrastructure/storage"
	"github.com/hapi-protocol/hapi-core/pkg/types"
)

// ErrorMessage is the stop message after a failed handler
const ErrorMessage = "Error occured"

// Pusher delivers payloads and heartbeats; *Webhook implements it
type Pusher interface {
	Push(ctx context.Context, payload PushPayload) error
	Heartbeat(ctx context.Context, cursor Cursor) error
}

// Options tunes the indexing loop
type Options struct {
	Network types.Network
	ChainID uint64
	ID      uuid.UUID

	// WaitInterval is the sleep between deadline checks while waiting
	WaitInterval time.Duration
	// FetchingDelay is the pause after each fetch
	FetchingDelay time.Duration
	// IdleWait is how long to wait when a fetch found nothing
	IdleWait time.Duration
	// HeartbeatInterval is the period of heartbeat calls
	HeartbeatInterval time.Duration
	// CacheTTL bounds how long a pushed event is remembered
	CacheTTL time.Duration
}

const defaultIdleWait = 10 * time.Second

// Indexer runs the state machine Init → CheckForUpdates → Processing ⇄ Waiting → Stopped
type Indexer struct {
	opts     Options
	source   Source
	store    storage.Store
	pusher   Pusher
	cache    *pushCache
	bus      event.EventBus
	recorder metrics.Recorder
	logger   log.Logger
	now      func() time.Time

	mu     sync.RWMutex
	state  State
	cursor Cursor
	jobs   []Job
	cancel context.CancelFunc
}

// New builds an indexer in the Init state
func New(opts Options, source Source, store storage.Store, pusher Pusher, bus event.EventBus, recorder metrics.Recorder, logger log.Logger) (*Indexer, error) {
	if opts.IdleWait <= 0 {
		opts.IdleWait = defaultIdleWait
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	cache, err := newPushCache(context.Background(), opts.CacheTTL)
	if err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = coremetrics.Nop{}
	}
	logger.Infof("initializing indexer network=%s id=%s", opts.Network, opts.ID)
	ix := &Indexer{
		opts:     opts,
		source:   source,
		store:    store,
		pusher:   pusher,
		cache:    cache,
		bus:      bus,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
		state:    Init(),
	}
	recorder.SetState(StateInit.String())
	return ix, nil
}

// State returns the current state
func (ix *Indexer) State() State {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.state
}

// Cursor returns the last known cursor, kept after the indexer stops
func (ix *Indexer) Cursor() Cursor {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.cursor
}

// QueueLength returns the number of pending jobs
func (ix *Indexer) QueueLength() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.jobs)
}

// Stop moves the indexer to Stopped and interrupts the running handler
func (ix *Indexer) Stop(message string) {
	ix.transition(Stopped(message))
	ix.mu.RLock()
	cancel := ix.cancel
	ix.mu.RUnlock()
	if cancel != nil {
		cancel()
	}
}

// Run drives the state machine until the indexer stops or ctx is done
func (ix *Indexer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ix.mu.Lock()
	ix.cancel = cancel
	ix.mu.Unlock()

	for {
		current := ix.State()
		if current.Kind == StateStopped {
			return nil
		}
		next, err := ix.handle(ctx, current)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			ix.logger.Errorf("state handling error in %s: %v", current.Kind, err)
			next = Stopped(ErrorMessage)
		}
		if !ix.transition(next) {
			return nil
		}
	}
}

// Close releases the push cache
func (ix *Indexer) Close() error {
	return ix.cache.Close()
}

func (ix *Indexer) handle(ctx context.Context, s State) (State, error) {
	switch s.Kind {
	case StateInit:
		return ix.handleInit(ctx)
	case StateCheckForUpdates:
		return ix.handleCheckForUpdates(ctx, s.Cursor)
	case StateProcessing:
		return ix.handleProcess(ctx, s.Cursor)
	case StateWaiting:
		return ix.handleWaiting(ctx, s.Cursor, s.Until)
	default:
		return s, fmt.Errorf("no handler for %s", s.Kind)
	}
}

func (ix *Indexer) transition(next State) bool {
	ix.mu.Lock()
	prev := ix.state
	ok, changed := ix.state.transition(next)
	cursorMoved := false
	if ok && next.Kind != StateStopped && next.Kind != StateInit && next.Cursor != ix.cursor {
		ix.cursor = next.Cursor
		cursorMoved = true
	}
	ix.mu.Unlock()

	if cursorMoved {
		if next.Cursor.Kind == CursorBlock {
			ix.recorder.SetCursorHeight(next.Cursor.Block)
		}
		ix.publish(event.EventTypeCursorMoved, next.Cursor)
	}
	if changed {
		ix.logger.Infof("State change from %s to %s", prev, next)
		ix.recorder.SetState(next.Kind.String())
		ix.publish(event.EventTypeStateChanged, prev, next)
	}
	return ok
}

func (ix *Indexer) publish(topic event.EventType, args ...interface{}) {
	if ix.bus != nil {
		ix.bus.Publish(topic, args...)
	}
}

func (ix *Indexer) handleInit(ctx context.Context) (State, error) {
	data, err := ix.store.Get(ctx, storage.StateKey)
	if errors.Is(err, storage.ErrNotFound) {
		ix.logger.Info("no persisted state, starting from the beginning")
		return CheckForUpdates(NoCursor), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load state: %w", err)
	}

	var persisted PersistedState
	if err := json.Unmarshal(data, &persisted); err != nil {
		ix.logger.Warnf("ignoring unreadable persisted state: %v", err)
		return CheckForUpdates(NoCursor), nil
	}
	ix.logger.Info("found persisted state")
	if len(persisted.Jobs) > 0 {
		ix.logger.Infof("found %d jobs in the queue", len(persisted.Jobs))
		ix.mu.Lock()
		ix.jobs = persisted.Jobs
		ix.mu.Unlock()
		ix.recorder.SetQueueLength(len(persisted.Jobs))
	}
	if persisted.Cursor.Kind != CursorNone {
		ix.logger.Infof("found cursor %s", persisted.Cursor)
	}
	return CheckForUpdates(persisted.Cursor), nil
}

func (ix *Indexer) handleCheckForUpdates(ctx context.Context, cursor Cursor) (State, error) {
	jobs, next, err := ix.source.Fetch(ctx, cursor)
	if err != nil {
		return State{}, err
	}
	if err := sleep(ctx, ix.opts.FetchingDelay); err != nil {
		return State{}, err
	}

	ix.mu.Lock()
	ix.jobs = append(ix.jobs, jobs...)
	queued := len(ix.jobs)
	ix.mu.Unlock()

	if queued == 0 {
		if next != cursor {
			if err := ix.persist(ctx, next); err != nil {
				return State{}, err
			}
		}
		ix.logger.Debug("no new events found, waiting")
		return Waiting(next, ix.now().Add(ix.opts.IdleWait).Unix()), nil
	}

	ix.recorder.SetQueueLength(queued)
	ix.logger.Infof("queued %d new jobs, %d pending", len(jobs), queued)
	return Processing(next), nil
}

func (ix *Indexer) handleProcess(ctx context.Context, cursor Cursor) (State, error) {
	ix.mu.Lock()
	if len(ix.jobs) == 0 {
		ix.mu.Unlock()
		return CheckForUpdates(cursor), nil
	}
	job := ix.jobs[0]
	ix.mu.Unlock()

	err := ix.processJob(ctx, job)
	ix.recorder.JobProcessed(string(job.Kind()), err)
	ix.publish(event.EventTypeJobProcessed, job, err)
	if err != nil {
		return State{}, fmt.Errorf("process %s: %w", job, err)
	}

	ix.mu.Lock()
	ix.jobs = ix.jobs[1:]
	queued := len(ix.jobs)
	ix.mu.Unlock()
	ix.recorder.SetQueueLength(queued)

	if err := ix.persist(ctx, cursor); err != nil {
		return State{}, err
	}
	return Processing(cursor), nil
}

func (ix *Indexer) processJob(ctx context.Context, job Job) error {
	payloads, err := ix.source.Process(ctx, job)
	if err != nil {
		return err
	}
	for _, p := range payloads {
		p.NetworkData = ix.networkData()
		if ix.cache.Seen(p) {
			ix.logger.Debugf("skipping repeated %s for %s", p.Event.Name, p.Data.Key())
			continue
		}
		err := ix.pusher.Push(ctx, p)
		ix.recorder.WebhookPushed(p.Event.Name.String(), err)
		ix.publish(event.EventTypeWebhookPushed, p, err)
		if err != nil {
			return fmt.Errorf("push %s: %w", p.Event.Name, err)
		}
		if err := ix.cache.Remember(p); err != nil {
			ix.logger.Warnf("push cache: %v", err)
		}
	}
	return nil
}

func (ix *Indexer) handleWaiting(ctx context.Context, cursor Cursor, until int64) (State, error) {
	if ix.now().Unix() > until {
		return CheckForUpdates(cursor), nil
	}
	if err := sleep(ctx, ix.opts.WaitInterval); err != nil {
		return State{}, err
	}
	return Waiting(cursor, until), nil
}

func (ix *Indexer) networkData() NetworkData {
	nd := NetworkData{Network: ix.opts.Network, IndexerID: ix.opts.ID}
	if ix.opts.ChainID != 0 {
		id := ix.opts.ChainID
		nd.ChainID = &id
	}
	return nd
}

// persist saves the cursor and the pending jobs
func (ix *Indexer) persist(ctx context.Context, cursor Cursor) error {
	ix.mu.RLock()
	state := PersistedState{Cursor: cursor, Jobs: append([]Job{}, ix.jobs...)}
	ix.mu.RUnlock()

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := ix.store.Set(ctx, storage.StateKey, data); err != nil {
		return fmt.Errorf("persist state: %w", err)
	}
	return nil
}
