package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bus-tracker/internal/models"

	"github.com/gorilla/websocket"
)

func newWSServer(t *testing.T, router *Router) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		session := NewSession(conn, nil, router, 16)
		go session.WritePump()
		go session.ReadPump()
	}))
}

func wsDial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial ws: %v", err)
	}
	return conn
}

func wsSend(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func wsRecv(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return envelope
}

// waitForMembers polls until the room reaches the expected size, since
// joins are processed on the session's read goroutine.
func waitForMembers(t *testing.T, router *Router, routeID, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if router.registry.Count(routeID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %d never reached %d members", routeID, want)
}

func TestWebSocketPositionFlow(t *testing.T) {
	router := newTestRouter(newFakeStore())
	ts := newWSServer(t, router)
	defer ts.Close()

	rider := wsDial(t, ts)
	defer rider.Close()
	driver := wsDial(t, ts)
	defer driver.Close()

	wsSend(t, rider, `{"event":"join_room","data":{"route_id":5}}`)
	waitForMembers(t, router, 5, 1)
	router.Drain() // empty-cache fallback lookup must settle first

	wsSend(t, driver, `{"event":"driver_position_update","data":{"route_id":5,"vehicle_id":42,"latitude":-24.19,"longitude":-46.78}}`)

	envelope := wsRecv(t, rider)
	if envelope.Event != EventPositionBroadcast {
		t.Fatalf("expected %s, got %s", EventPositionBroadcast, envelope.Event)
	}
	var record models.PositionRecord
	if err := json.Unmarshal(envelope.Data, &record); err != nil {
		t.Fatalf("unmarshal record: %v", err)
	}
	if record.VehicleID != 42 || record.RouteID != 5 {
		t.Errorf("unexpected record: %+v", record)
	}

	// a fresh connection joining the room gets the snapshot
	late := wsDial(t, ts)
	defer late.Close()
	wsSend(t, late, `{"event":"join_room","data":{"route_id":5}}`)

	envelope = wsRecv(t, late)
	if envelope.Event != EventPositionSnapshot {
		t.Fatalf("expected %s, got %s", EventPositionSnapshot, envelope.Event)
	}
	var snapshot []models.PositionRecord
	if err := json.Unmarshal(envelope.Data, &snapshot); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	if len(snapshot) != 1 || snapshot[0].VehicleID != 42 {
		t.Errorf("unexpected snapshot: %+v", snapshot)
	}
}

func TestWebSocketChatFlow(t *testing.T) {
	router := newTestRouter(newFakeStore())
	ts := newWSServer(t, router)
	defer ts.Close()

	sender := wsDial(t, ts)
	defer sender.Close()
	receiver := wsDial(t, ts)
	defer receiver.Close()

	wsSend(t, sender, `{"event":"join_room","data":{"route_id":5}}`)
	wsSend(t, receiver, `{"event":"join_room","data":{"route_id":5}}`)
	waitForMembers(t, router, 5, 2)

	wsSend(t, sender, `{"event":"send_message","data":{"route_id":5,"client_id":"c1","text":"oi"}}`)

	envelope := wsRecv(t, sender)
	if envelope.Event != EventMessageAck {
		t.Fatalf("expected %s, got %s", EventMessageAck, envelope.Event)
	}
	var ack MessageAck
	if err := json.Unmarshal(envelope.Data, &ack); err != nil {
		t.Fatalf("unmarshal ack: %v", err)
	}
	if !ack.Accepted || ack.ClientID != "c1" {
		t.Errorf("unexpected ack: %+v", ack)
	}

	envelope = wsRecv(t, receiver)
	if envelope.Event != EventMessageReceived {
		t.Fatalf("expected %s, got %s", EventMessageReceived, envelope.Event)
	}
	var message models.ChatMessage
	if err := json.Unmarshal(envelope.Data, &message); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}
	if message.Text != "oi" || message.ClientID != "c1" {
		t.Errorf("unexpected message: %+v", message)
	}
}

func TestWebSocketDisconnectCleansRoom(t *testing.T) {
	router := newTestRouter(newFakeStore())
	ts := newWSServer(t, router)
	defer ts.Close()

	rider := wsDial(t, ts)
	wsSend(t, rider, `{"event":"join_room","data":{"route_id":5}}`)
	waitForMembers(t, router, 5, 1)

	rider.Close()
	waitForMembers(t, router, 5, 0)
}
