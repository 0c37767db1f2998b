package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/domain"
)

// nextEvent reads lines until a complete event has been received
func nextEvent(t *testing.T, r *bufio.Reader) (string, string) {
	t.Helper()
	var event, data string
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && event != "":
			return event, data
		}
	}
}

func TestStreamer_DeliversPublishedEntries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewStreamer(Config{HeartbeatInterval: time.Hour}, nil)
	s.Start(ctx)
	srv := httptest.NewServer(s)
	defer srv.Close()

	reqCtx, stop := context.WithCancel(ctx)
	defer stop()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	reader := bufio.NewReader(resp.Body)

	event, _ := nextEvent(t, reader)
	require.Equal(t, "connected", event)
	assert.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	s.Publish(&domain.AccessLogEntry{ID: 4, UserID: 1, At: time.Now(), Action: domain.ActionReservationBooked, Detail: "reservation 9"})

	event, data := nextEvent(t, reader)
	require.Equal(t, EventAccessLog, event)

	var got struct {
		Type string                `json:"type"`
		Data domain.AccessLogEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &got))
	assert.Equal(t, EventAccessLog, got.Type)
	assert.Equal(t, domain.ActionReservationBooked, got.Data.Action)
	assert.Equal(t, "reservation 9", got.Data.Detail)
}

func TestStreamer_UnregistersOnDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewStreamer(Config{HeartbeatInterval: time.Hour}, nil)
	s.Start(ctx)
	srv := httptest.NewServer(s)
	defer srv.Close()

	reqCtx, stop := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	event, _ := nextEvent(t, bufio.NewReader(resp.Body))
	require.Equal(t, "connected", event)
	require.Eventually(t, func() bool { return s.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	stop()
	resp.Body.Close()

	assert.Eventually(t, func() bool { return s.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStreamer_PublishWithoutClientsDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStreamer(Config{}, nil)
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			s.Publish(&domain.AccessLogEntry{Action: domain.ActionUserLogin})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestStreamer_ClosedHubRejectsClients(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewStreamer(Config{}, nil)
	s.Start(ctx)
	cancel()
	<-s.done

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
