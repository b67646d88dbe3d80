package outbox

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RemoteStore is the opaque persistence collaborator. A returned error means
// the write was not acknowledged; the mutation stays owed.
type RemoteStore interface {
	SubmitMutation(ctx context.Context, m Mutation) error
}

// Notifier receives sync-status events for a player. *stream.Hub satisfies it.
type Notifier interface {
	Broadcast(playerID string, payload []byte)
}

// Queue is the durable at-least-once buffer between the decision procedure
// and the remote store. Backed by a redis list so pending mutations, their
// ids and attempt counts survive a restart; without redis it degrades to an
// in-memory buffer that survives only the process. Queues are caller-owned
// handles, never process globals.
type Queue struct {
	redis  *redis.Client
	remote RemoteStore
	hub    Notifier
	key    string

	online atomic.Bool

	mu  sync.Mutex // guards a drain pass and the memory fallback
	mem [][]byte
}

func NewQueue(redisClient *redis.Client, remote RemoteStore, hub Notifier, keyPrefix string) *Queue {
	if keyPrefix == "" {
		keyPrefix = "territorio"
	}
	q := &Queue{
		redis:  redisClient,
		remote: remote,
		hub:    hub,
		key:    keyPrefix + ":mutations",
	}
	q.online.Store(true)
	return q
}

// SetOnline records the connectivity signal pushed by the caller.
func (q *Queue) SetOnline(online bool) {
	q.online.Store(online)
}

func (q *Queue) Online() bool {
	return q.online.Load()
}

// Submit attempts the mutation against the remote store immediately and
// buffers it on any failure. Remote failure is never an error to the caller;
// only a malformed mutation is.
func (q *Queue) Submit(ctx context.Context, m Mutation) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.EnqueuedAtMillis == 0 {
		m.EnqueuedAtMillis = time.Now().UnixMilli()
	}
	if err := m.Validate(); err != nil {
		return err
	}

	if q.online.Load() {
		if err := q.remote.SubmitMutation(ctx, m); err == nil {
			q.notify(ctx, m, "delivered", 0)
			return nil
		} else {
			log.Printf("mutation %s submit failed, buffering: %v", m.ID, err)
		}
	}

	if err := q.push(ctx, m); err != nil {
		return err
	}
	pending, _ := q.PendingCount(ctx)
	q.notify(ctx, m, "queued", pending)
	return nil
}

// Drain replays buffered mutations in FIFO order. The first failed item
// aborts the pass; mutations appended while a drain runs are seen on the
// next pass. Returns how many mutations were delivered.
func (q *Queue) Drain(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.online.Load() {
		return 0, nil
	}

	drained := 0
	for {
		raw, ok, err := q.peekHead(ctx)
		if err != nil {
			return drained, err
		}
		if !ok {
			return drained, nil
		}

		var m Mutation
		if err := json.Unmarshal(raw, &m); err != nil {
			// An unreadable entry would wedge the queue forever; drop it.
			log.Printf("dropping corrupt queued mutation: %v", err)
			if err := q.popHead(ctx); err != nil {
				return drained, err
			}
			continue
		}

		m.AttemptCount++
		if err := q.setHead(ctx, m); err != nil {
			return drained, err
		}

		if err := q.remote.SubmitMutation(ctx, m); err != nil {
			log.Printf("mutation %s replay attempt %d failed: %v", m.ID, m.AttemptCount, err)
			return drained, nil
		}
		if err := q.popHead(ctx); err != nil {
			return drained, err
		}
		drained++
		pending, _ := q.pendingLocked(ctx)
		q.notify(ctx, m, "delivered", pending)
	}
}

// PendingCount is the number of buffered mutations awaiting acknowledgement.
func (q *Queue) PendingCount(ctx context.Context) (int64, error) {
	if q.redis == nil {
		q.mu.Lock()
		defer q.mu.Unlock()
	}
	return q.pendingLocked(ctx)
}

func (q *Queue) pendingLocked(ctx context.Context) (int64, error) {
	if q.redis == nil {
		return int64(len(q.mem)), nil
	}
	return q.redis.LLen(ctx, q.key).Result()
}

func (q *Queue) push(ctx context.Context, m Mutation) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if q.redis == nil {
		q.mu.Lock()
		q.mem = append(q.mem, raw)
		q.mu.Unlock()
		return nil
	}
	return q.redis.RPush(ctx, q.key, raw).Err()
}

func (q *Queue) peekHead(ctx context.Context) ([]byte, bool, error) {
	if q.redis == nil {
		if len(q.mem) == 0 {
			return nil, false, nil
		}
		return q.mem[0], true, nil
	}
	raw, err := q.redis.LIndex(ctx, q.key, 0).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (q *Queue) setHead(ctx context.Context, m Mutation) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	if q.redis == nil {
		q.mem[0] = raw
		return nil
	}
	return q.redis.LSet(ctx, q.key, 0, raw).Err()
}

func (q *Queue) popHead(ctx context.Context) error {
	if q.redis == nil {
		q.mem = q.mem[1:]
		return nil
	}
	return q.redis.LPop(ctx, q.key).Err()
}

type syncEvent struct {
	Event      string `json:"event"`
	MutationID string `json:"mutation_id"`
	Kind       Kind   `json:"kind"`
	Pending    int64  `json:"pending"`
}

func (q *Queue) notify(_ context.Context, m Mutation, event string, pending int64) {
	if q.hub == nil {
		return
	}
	playerID := m.PlayerID()
	if playerID == "" {
		return
	}
	payload, _ := json.Marshal(syncEvent{
		Event:      event,
		MutationID: m.ID,
		Kind:       m.Kind,
		Pending:    pending,
	})
	q.hub.Broadcast(playerID, payload)
}
