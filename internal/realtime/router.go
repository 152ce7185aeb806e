package realtime

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"bus-tracker/internal/models"
	"bus-tracker/pkg/logger"
)

// Router is the protocol state machine. It owns the position cache and
// the room registry; no other component mutates them. Handlers run on
// the calling session's read goroutine, so events from one session are
// processed in order while different sessions proceed concurrently.
type Router struct {
	cache    *PositionCache
	registry *RoomRegistry
	gateway  *Gateway

	// profane is the external predicate applied to chat text.
	profane            func(string) bool
	allowAnonymousChat bool

	// wg tracks in-flight fallback snapshot lookups.
	wg sync.WaitGroup
}

func NewRouter(cache *PositionCache, registry *RoomRegistry, gateway *Gateway, profane func(string) bool, allowAnonymousChat bool) *Router {
	return &Router{
		cache:              cache,
		registry:           registry,
		gateway:            gateway,
		profane:            profane,
		allowAnonymousChat: allowAnonymousChat,
	}
}

// Dispatch decodes one inbound frame and routes it by event name.
// Malformed frames and unknown events are dropped without disturbing
// the session; telemetry senders repeat frequently enough that a lost
// event is immaterial.
func (r *Router) Dispatch(session *Session, frame []byte) {
	var envelope Envelope
	if err := json.Unmarshal(frame, &envelope); err != nil {
		logger.Debug("Dropping malformed frame from session %s: %v", session.ID, err)
		return
	}

	switch envelope.Event {
	case EventJoinRoom:
		var payload RoomPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			logger.Debug("Dropping malformed %s from session %s: %v", envelope.Event, session.ID, err)
			return
		}
		r.JoinRoom(session, payload.RouteID)

	case EventLeaveRoom:
		var payload RoomPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			logger.Debug("Dropping malformed %s from session %s: %v", envelope.Event, session.ID, err)
			return
		}
		r.LeaveRoom(session, payload.RouteID)

	case EventPositionUpdate:
		var payload PositionPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			logger.Debug("Dropping malformed %s from session %s: %v", envelope.Event, session.ID, err)
			return
		}
		r.PositionUpdate(session, &payload)

	case EventSendMessage:
		var payload MessagePayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			logger.Debug("Dropping malformed %s from session %s: %v", envelope.Event, session.ID, err)
			return
		}
		r.SendMessage(session, &payload)

	case EventRequestLatest:
		var payload RoomPayload
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			logger.Debug("Dropping malformed %s from session %s: %v", envelope.Event, session.ID, err)
			return
		}
		r.RequestLatest(session, payload.RouteID)

	default:
		logger.Debug("Unknown event %q from session %s", envelope.Event, session.ID)
	}
}

// JoinRoom subscribes the session to a route and answers it with a
// snapshot of the cached positions for that route. Nothing is
// broadcast to the other members. A session occupies one room at a
// time: joining while in another room leaves that room first.
func (r *Router) JoinRoom(session *Session, routeID int) {
	if routeID <= 0 {
		return
	}

	if session.room != 0 && session.room != routeID {
		r.registry.Leave(session.room, session)
	}

	r.registry.Join(routeID, session)
	session.room = routeID

	r.sendSnapshot(session, routeID)
}

// LeaveRoom is idempotent; leaving a room the session is not in does
// nothing.
func (r *Router) LeaveRoom(session *Session, routeID int) {
	if routeID <= 0 {
		return
	}

	r.registry.Leave(routeID, session)
	if session.room == routeID {
		session.room = 0
	}
}

// PositionUpdate upserts the cache, records the position in the
// background, and fans the new record out to the route's room. The
// sender gets no acknowledgment; this is a fire-and-forget telemetry
// channel.
func (r *Router) PositionUpdate(session *Session, payload *PositionPayload) {
	if payload.RouteID == nil || payload.VehicleID == nil || payload.Latitude == nil || payload.Longitude == nil {
		logger.Debug("Dropping position update with missing fields from session %s", session.ID)
		return
	}
	if *payload.RouteID <= 0 || *payload.VehicleID <= 0 {
		logger.Debug("Dropping position update with invalid identifiers from session %s", session.ID)
		return
	}

	record := &models.PositionRecord{
		VehicleID:  *payload.VehicleID,
		RouteID:    *payload.RouteID,
		Latitude:   *payload.Latitude,
		Longitude:  *payload.Longitude,
		Speed:      payload.Speed,
		Heading:    payload.Heading,
		Accuracy:   payload.Accuracy,
		ObservedAt: time.Now().UnixMilli(),
	}
	if payload.ObservedAt != nil {
		record.ObservedAt = *payload.ObservedAt
	}

	prev := r.cache.Upsert(record)
	r.gateway.SavePosition(record, prev)
	r.broadcastEvent(record.RouteID, EventPositionBroadcast, record, nil)
}

// SendMessage validates the text, persists it best-effort, broadcasts
// it to every other room member, and acks the sender. Validation
// failures are reported to the sender only.
func (r *Router) SendMessage(session *Session, payload *MessagePayload) {
	if payload.RouteID <= 0 {
		session.queueEvent(EventMessageAck, MessageAck{ClientID: payload.ClientID, Accepted: false, Reason: "route is required"})
		return
	}

	text := strings.TrimSpace(payload.Text)
	if text == "" {
		session.queueEvent(EventMessageAck, MessageAck{ClientID: payload.ClientID, Accepted: false, Reason: "message is empty"})
		return
	}

	if !r.allowAnonymousChat && !session.Authenticated() {
		session.queueEvent(EventMessageAck, MessageAck{ClientID: payload.ClientID, Accepted: false, Reason: "authentication required"})
		return
	}

	if r.profane != nil && r.profane(text) {
		session.queueEvent(EventMessageAck, MessageAck{ClientID: payload.ClientID, Accepted: false, Reason: "message contains inappropriate language"})
		return
	}

	message := &models.ChatMessage{
		ClientID:  payload.ClientID,
		AuthorID:  session.UserID,
		RouteID:   payload.RouteID,
		Text:      text,
		CreatedAt: time.Now(),
	}

	r.gateway.SaveMessage(message)
	r.broadcastEvent(message.RouteID, EventMessageReceived, message, session)
	session.queueEvent(EventMessageAck, MessageAck{ClientID: payload.ClientID, Accepted: true})
}

// RequestLatest answers the requesting session with the same snapshot
// computation used on join.
func (r *Router) RequestLatest(session *Session, routeID int) {
	if routeID <= 0 {
		return
	}
	r.sendSnapshot(session, routeID)
}

// Disconnect removes the session from its room and releases its
// outbound queue. Safe to call more than once.
func (r *Router) Disconnect(session *Session) {
	if session.room != 0 {
		r.registry.Leave(session.room, session)
		session.room = 0
	}
	session.close()
}

// Drain waits for in-flight fallback snapshot lookups. Called on
// shutdown once no new sessions are accepted.
func (r *Router) Drain() {
	r.wg.Wait()
}

// sendSnapshot answers with the cached positions for the route. When
// the cache has nothing, the last persisted positions are fetched in
// the background so the lookup never delays the caller; the fallback
// snapshot is sent only if something was found.
func (r *Router) sendSnapshot(session *Session, routeID int) {
	snapshot := r.cache.Snapshot(routeID)
	if len(snapshot) > 0 {
		session.queueEvent(EventPositionSnapshot, snapshot)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		records := r.gateway.LastPositions(routeID)
		if len(records) > 0 {
			session.queueEvent(EventPositionSnapshot, records)
		}
	}()
}

// broadcastEvent fans one event out to the room, skipping except when
// set. Members whose outbound queue is full are dropped from the room;
// their pumps shut the connection down from there.
func (r *Router) broadcastEvent(routeID int, event string, data interface{}, except *Session) {
	members := r.registry.Members(routeID)
	if len(members) == 0 {
		return
	}

	frame, err := Encode(event, data)
	if err != nil {
		logger.Error("Error encoding %s broadcast: %v", event, err)
		return
	}

	for _, member := range members {
		if member == except {
			continue
		}
		if !member.queue(frame) {
			logger.Info("Dropping slow session %s from room %d", member.ID, routeID)
			r.registry.Leave(routeID, member)
			member.close()
		}
	}
}
