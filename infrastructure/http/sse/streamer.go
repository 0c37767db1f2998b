package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
	"github.com/labtrack/labtrack/internal/domain"
	"github.com/labtrack/labtrack/internal/ports"
)

// EventAccessLog is the event name of a streamed audit entry
const EventAccessLog = "access_log"

// Config tunes the streamer
type Config struct {
	HeartbeatInterval time.Duration
	ClientBufferSize  int
}

// Streamer fans audit entries out to Server-Sent Events subscribers. The
// client set is owned by the hub goroutine started with Start.
type Streamer struct {
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	count      int64

	heartbeat time.Duration
	buffer    int
	log       logger.Logger
}

type client struct {
	id string
	ch chan []byte
}

// Event is the payload of every data line
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
	Time int64       `json:"time"`
}

var _ ports.AuditPublisher = (*Streamer)(nil)

// NewStreamer creates a new SSE streamer
func NewStreamer(config Config, log logger.Logger) *Streamer {
	if config.HeartbeatInterval <= 0 {
		config.HeartbeatInterval = 15 * time.Second
	}
	if config.ClientBufferSize <= 0 {
		config.ClientBufferSize = 64
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Streamer{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		heartbeat:  config.HeartbeatInterval,
		buffer:     config.ClientBufferSize,
		log:        log,
	}
}

// Start runs the hub until ctx is cancelled
func (s *Streamer) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Streamer) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			for c := range s.clients {
				s.drop(c)
			}
			return

		case c := <-s.register:
			s.clients[c] = struct{}{}
			atomic.StoreInt64(&s.count, int64(len(s.clients)))

		case c := <-s.unregister:
			if _, ok := s.clients[c]; ok {
				s.drop(c)
			}

		case message := <-s.broadcast:
			for c := range s.clients {
				select {
				case c.ch <- message:
				default:
					// slow subscriber
					s.drop(c)
					s.log.Warn(ctx, "dropped slow SSE client", map[string]interface{}{
						"client_id": c.id,
					})
				}
			}
		}
	}
}

func (s *Streamer) drop(c *client) {
	delete(s.clients, c)
	close(c.ch)
	atomic.StoreInt64(&s.count, int64(len(s.clients)))
}

// Publish queues an audit entry for every connected client. It never blocks.
func (s *Streamer) Publish(entry *domain.AccessLogEntry) {
	message, err := json.Marshal(Event{Type: EventAccessLog, Data: entry, Time: entry.At.Unix()})
	if err != nil {
		return
	}
	select {
	case s.broadcast <- message:
	case <-s.done:
	default:
		s.log.Warn(context.Background(), "SSE broadcast channel is full", map[string]interface{}{
			"action": entry.Action,
		})
	}
}

// ClientCount returns the number of connected clients
func (s *Streamer) ClientCount() int {
	return int(atomic.LoadInt64(&s.count))
}

// ServeHTTP streams audit entries until the client goes away
func (s *Streamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// streams outlive the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := &client{id: uuid.NewString(), ch: make(chan []byte, s.buffer)}
	select {
	case s.register <- c:
	case <-s.done:
		http.Error(w, "event stream closed", http.StatusServiceUnavailable)
		return
	case <-r.Context().Done():
		return
	}
	defer func() {
		select {
		case s.unregister <- c:
		case <-s.done:
		}
	}()

	connected, _ := json.Marshal(Event{Type: "connected", Data: map[string]string{"client_id": c.id}, Time: time.Now().Unix()})
	if err := writeEvent(w, "connected", connected); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		s.log.Error(r.Context(), "SSE flush unsupported", err, nil)
		return
	}

	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case message, ok := <-c.ch:
			if !ok {
				return
			}
			if err := writeEvent(w, EventAccessLog, message); err != nil {
				return
			}

		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, eventType string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, data)
	return err
}
