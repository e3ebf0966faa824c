package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SubmissionChannel is the NOTIFY channel fed by the job_submissions trigger.
const SubmissionChannel = "submission_changes"

const EventSubmissionsChanged = "submissions_changed"

// OpResync tells clients to re-fetch because notifications may have been lost.
const OpResync = "RESYNC"

type SubmissionChange struct {
	Op     string    `json:"op"`
	ID     uuid.UUID `json:"id"`
	UserID uuid.UUID `json:"user_id"`
	JobID  uuid.UUID `json:"job_id"`
	Status string    `json:"status"`
}

type Event struct {
	Type       string           `json:"type"`
	Submission SubmissionChange `json:"submission"`
}

// Publisher is satisfied by *Hub.
type Publisher interface {
	Publish(userID uuid.UUID, payload []byte)
	Broadcast(payload []byte)
}

// Listener relays submission row changes from Postgres to the owning
// user's websocket connections.
type Listener struct {
	dsn       string
	publisher Publisher
	logger    *log.Logger

	minReconnect time.Duration
	maxReconnect time.Duration
	idlePing     time.Duration
}

func NewListener(dsn string, publisher Publisher, logger *log.Logger) *Listener {
	if logger == nil {
		logger = log.Default()
	}
	return &Listener{
		dsn:          dsn,
		publisher:    publisher,
		logger:       logger,
		minReconnect: 10 * time.Second,
		maxReconnect: time.Minute,
		idlePing:     90 * time.Second,
	}
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	listener := pq.NewListener(l.dsn, l.minReconnect, l.maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			l.logger.Printf("[Realtime] listener event=%d error=%v", ev, err)
		}
	})
	defer listener.Close()

	if err := listener.Listen(SubmissionChannel); err != nil {
		return err
	}
	l.logger.Printf("[Realtime] listening channel=%s", SubmissionChannel)

	for {
		select {
		case <-ctx.Done():
			return nil

		case n := <-listener.Notify:
			// nil after a reconnect; changes during the gap are not replayed.
			if n == nil {
				l.Resync()
				continue
			}
			l.Dispatch([]byte(n.Extra))

		case <-time.After(l.idlePing):
			go func() {
				if err := listener.Ping(); err != nil {
					l.logger.Printf("[Realtime] ping failed error=%v", err)
				}
			}()
		}
	}
}

// Dispatch decodes one notification payload and publishes it to its owner.
func (l *Listener) Dispatch(payload []byte) bool {
	var change SubmissionChange
	if err := json.Unmarshal(payload, &change); err != nil {
		l.logger.Printf("[Realtime] bad payload error=%v", err)
		return false
	}
	if change.UserID == uuid.Nil {
		return false
	}

	msg, err := json.Marshal(Event{Type: EventSubmissionsChanged, Submission: change})
	if err != nil {
		return false
	}
	l.publisher.Publish(change.UserID, msg)
	return true
}

// Resync asks every connected client to re-fetch its submissions.
func (l *Listener) Resync() {
	msg, err := json.Marshal(Event{Type: EventSubmissionsChanged, Submission: SubmissionChange{Op: OpResync}})
	if err != nil {
		return
	}
	l.logger.Printf("[Realtime] reconnected, broadcasting resync")
	l.publisher.Broadcast(msg)
}
