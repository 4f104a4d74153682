package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/folio-dev/folio/internal/domain/event"
	porteventbus "github.com/folio-dev/folio/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*EventBus)(nil)

// Pause before re-listening after a failure, doubling up to the max.
const (
	listenBackoff    = time.Second
	maxListenBackoff = 30 * time.Second
)

// EventBus fans domain events across replicas with Postgres LISTEN/NOTIFY.
type EventBus struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func New(pool *pgxpool.Pool) *EventBus {
	return &EventBus{
		pool: pool,
		subs: make(map[*subscription]struct{}),
	}
}

// Publish sends an event via Postgres NOTIFY on the domain channel for the event type.
func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)
	if ch == "" {
		return fmt.Errorf("publish: no channel for event type %q", e.Type)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	channel := channelName(ch)
	if _, err := eb.pool.Exec(ctx, "SELECT pg_notify($1, $2)", channel, string(payload)); err != nil {
		return fmt.Errorf("publishing event on channel %s: %w", channel, err)
	}
	return nil
}

// Subscribe holds one pooled connection in LISTEN mode on ch and invokes
// handler for every event until ctx is cancelled or Unsubscribe is called.
// A connection that fails is discarded and LISTEN is re-issued on a fresh one;
// events published while no connection is listening are lost.
func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	channel := channelName(ch)
	conn, err := eb.listen(ctx, channel)
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}

	eb.mu.Lock()
	eb.subs[sub] = struct{}{}
	eb.mu.Unlock()

	go func() {
		defer func() {
			if conn != nil {
				conn.Exec(context.Background(), "UNLISTEN "+channel) //nolint:errcheck
				conn.Release()
			}
			eb.mu.Lock()
			delete(eb.subs, sub)
			eb.mu.Unlock()
			close(sub.done)
		}()

		backoff := listenBackoff
		for {
			if conn == nil {
				select {
				case <-subCtx.Done():
					return
				case <-time.After(backoff):
				}
				backoff = min(2*backoff, maxListenBackoff)

				fresh, err := eb.listen(subCtx, channel)
				if err != nil {
					if subCtx.Err() != nil {
						return
					}
					slog.WarnContext(subCtx, "eventbus: re-listen failed", "channel", channel, "error", err)
					continue
				}
				conn = fresh
				slog.InfoContext(subCtx, "eventbus: listening again", "channel", channel)
			}

			n, err := conn.Conn().WaitForNotification(subCtx)
			if err != nil {
				if subCtx.Err() != nil {
					return
				}
				slog.WarnContext(subCtx, "eventbus: listen connection lost", "channel", channel, "error", err)
				discard(conn)
				conn = nil
				continue
			}
			backoff = listenBackoff

			var e event.Event
			if err := json.Unmarshal([]byte(n.Payload), &e); err != nil {
				slog.WarnContext(subCtx, "eventbus: dropping malformed payload", "channel", channel, "error", err)
				continue
			}
			handler(subCtx, e)
		}
	}()

	return sub, nil
}

// listen acquires a connection and puts it in LISTEN mode on channel.
func (eb *EventBus) listen(ctx context.Context, channel string) (*pgxpool.Conn, error) {
	conn, err := eb.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring connection for LISTEN: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		discard(conn)
		return nil, fmt.Errorf("executing LISTEN on channel %s: %w", channel, err)
	}
	return conn, nil
}

// discard closes the underlying connection so the pool destroys it on
// release instead of handing it to another caller.
func discard(conn *pgxpool.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	conn.Conn().Close(ctx) //nolint:errcheck
	conn.Release()
}

// Close stops every live subscription and waits for their connections to return.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	subs := make([]*subscription, 0, len(eb.subs))
	for s := range eb.subs {
		subs = append(subs, s)
	}
	eb.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

// channelName converts a domain Channel to a safe Postgres channel identifier.
func channelName(ch event.Channel) string {
	return "folio_" + string(ch)
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
