package realtime

import "encoding/json"

// Event names carried in the envelope. Client-to-server events are
// dispatched by the router; server-to-client events are what sessions
// receive on their connection.
const (
	EventJoinRoom       = "join_room"
	EventLeaveRoom      = "leave_room"
	EventPositionUpdate = "driver_position_update"
	EventSendMessage    = "send_message"
	EventRequestLatest  = "request_latest"

	EventPositionSnapshot  = "position_snapshot"
	EventPositionBroadcast = "position_update"
	EventMessageReceived   = "message_received"
	EventMessageAck        = "message_ack"
)

// Envelope is the wire frame: a tagged event name plus its payload.
// Unknown or malformed frames are dropped at the router boundary.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type RoomPayload struct {
	RouteID int `json:"route_id"`
}

// PositionPayload uses pointers for the required fields so a missing
// field is distinguishable from a zero value; updates missing any of
// them are dropped silently.
type PositionPayload struct {
	RouteID    *int     `json:"route_id"`
	VehicleID  *int     `json:"vehicle_id"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Speed      *float64 `json:"speed"`
	Heading    *float64 `json:"heading"`
	Accuracy   *float64 `json:"accuracy"`
	ObservedAt *int64   `json:"observed_at"`
}

type MessagePayload struct {
	RouteID  int    `json:"route_id"`
	ClientID string `json:"client_id"`
	Text     string `json:"text"`
}

// MessageAck is sent only to the originating session; Accepted false
// carries the rejection reason.
type MessageAck struct {
	ClientID string `json:"client_id"`
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// Encode wraps a payload in an envelope frame ready to queue on a
// session's outbound channel.
func Encode(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
