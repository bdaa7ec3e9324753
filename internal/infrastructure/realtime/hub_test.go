package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/johnquangdev/script-workspace/internal/domain/entities"
)

func dial(t *testing.T, hub *Hub, current entities.WorkspaceView) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, current)
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial failed: %v", err)
	}
	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("invalid event %s: %v", data, err)
	}
	return event
}

func waitForSubscribers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers got %d", n, hub.Subscribers())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_InitialViewThenUpdates(t *testing.T) {
	hub := NewHub([]string{"*"}, nil)
	defer hub.Close()

	initial := entities.WorkspaceView{WorkspaceSnapshot: entities.WorkspaceSnapshot{Transcript: "first"}, Revision: 1}
	conn, cleanup := dial(t, hub, initial)
	defer cleanup()

	event := readEvent(t, conn)
	if event.Type != EventWorkspace || event.Data.Transcript != "first" {
		t.Fatalf("unexpected initial event %+v", event)
	}

	waitForSubscribers(t, hub, 1)
	hub.Publish(entities.WorkspaceView{WorkspaceSnapshot: entities.WorkspaceSnapshot{Transcript: "second"}, Revision: 2})

	event = readEvent(t, conn)
	if event.Data.Transcript != "second" || event.Data.Revision != 2 {
		t.Fatalf("unexpected update %+v", event)
	}
}

func TestHub_DropsOlderRevision(t *testing.T) {
	hub := NewHub(nil, nil)
	defer hub.Close()

	conn, cleanup := dial(t, hub, entities.WorkspaceView{})
	defer cleanup()
	readEvent(t, conn)
	waitForSubscribers(t, hub, 1)

	hub.Publish(entities.WorkspaceView{WorkspaceSnapshot: entities.WorkspaceSnapshot{Transcript: "new"}, Revision: 5})
	hub.Publish(entities.WorkspaceView{WorkspaceSnapshot: entities.WorkspaceSnapshot{Transcript: "stale"}, Revision: 3})

	if event := readEvent(t, conn); event.Data.Transcript != "new" {
		t.Fatalf("expected the newest view got %+v", event.Data)
	}

	_ = conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("stale view must not be delivered")
	}
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	hub := NewHub([]string{"http://allowed.test"}, nil)
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, entities.WorkspaceView{})
	}))
	defer srv.Close()

	header := http.Header{"Origin": []string{"http://evil.test"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 got %v", resp)
	}
}

func TestHub_CloseDisconnects(t *testing.T) {
	hub := NewHub(nil, nil)
	conn, cleanup := dial(t, hub, entities.WorkspaceView{})
	defer cleanup()
	readEvent(t, conn)
	waitForSubscribers(t, hub, 1)

	hub.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected the connection to close")
	}
	if hub.Subscribers() != 0 {
		t.Fatalf("expected no subscribers after close")
	}
}
