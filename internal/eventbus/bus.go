package eventbus

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Scope distinguishes the two kinds of subscription a connection can
// carry: mission progress, or a writing-session.
type Scope string

const (
	ScopeMission Scope = "research"
	ScopeSession Scope = "writing_session"
)

const (
	heartbeatInterval = 30 * time.Second
	heartbeatTimeout  = 120 * time.Second
)

// CloseReason is attached to a connection's Closed channel value so a
// transport layer can choose a WebSocket close code.
type CloseReason string

const (
	CloseNormal    CloseReason = "normal"
	CloseDuplicate CloseReason = "duplicate_connection"
	CloseTimeout   CloseReason = "heartbeat_timeout"
)

// Connection is one subscriber. Sends are serialized per connection (a
// connection has its own lock), matching spec §5's "per-connection locks
// so concurrent sends to one connection are serialized."
type Connection struct {
	ID     string
	UserID string
	Scope  Scope

	mu            sync.Mutex
	out           chan Event
	subscriptions map[string]bool // mission_id or session_id -> subscribed
	lastHeartbeat time.Time
	closed        bool
	closeReason   CloseReason
}

// Out returns the channel a transport layer should drain to deliver
// events to this connection, in send order.
func (c *Connection) Out() <-chan Event { return c.out }

// Closed reports whether this connection has been torn down, and why.
func (c *Connection) Closed() (bool, CloseReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.closeReason
}

func (c *Connection) touch() {
	c.mu.Lock()
	c.lastHeartbeat = time.Now()
	c.mu.Unlock()
}

func (c *Connection) send(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- e:
	default:
		// Buffer full: drop rather than block a slow subscriber, matching
		// the teacher's non-blocking publish in internal/events.Bus.
	}
}

func (c *Connection) subscribedTo(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subscriptions[id]
}

// Bus is the process-wide Event Bus singleton (spec §9: "the Event Bus is
// a process-wide component; all subscription maps belong to it"). The map
// of connections is guarded by one mutex; each connection guards its own
// sends, matching the teacher's internal/events.Bus shape generalized
// with connection identity.
type Bus struct {
	mu          sync.Mutex
	connections map[string]*Connection
	byDedupeKey map[string]string // dedupeKey -> connection id
	bufferSize  int
}

// New constructs an empty Bus.
func New(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &Bus{
		connections: make(map[string]*Connection),
		byDedupeKey: make(map[string]string),
		bufferSize:  bufferSize,
	}
}

func dedupeKey(userID string, scope Scope, sessionID string) string {
	return string(scope) + "|" + userID + "|" + sessionID
}

// Connect establishes a new connection for (user_id, scope). Per spec
// §4.10/I: a new connection matching (user_id, scope, session_id?) closes
// the older one. sessionID may be empty for mission-scoped connections
// that haven't subscribed yet.
func (b *Bus) Connect(userID string, scope Scope, sessionID string) *Connection {
	conn := &Connection{
		ID:            uuid.New().String(),
		UserID:        userID,
		Scope:         scope,
		out:           make(chan Event, b.bufferSize),
		subscriptions: make(map[string]bool),
		lastHeartbeat: time.Now(),
	}

	b.mu.Lock()
	key := dedupeKey(userID, scope, sessionID)
	if oldID, ok := b.byDedupeKey[key]; ok {
		if old, ok := b.connections[oldID]; ok {
			b.closeLocked(old, CloseDuplicate)
		}
	}
	b.connections[conn.ID] = conn
	b.byDedupeKey[key] = conn.ID
	b.mu.Unlock()

	return conn
}

// Subscribe adds a mission or session id to a connection's subscription
// set.
func (b *Bus) Subscribe(connectionID, id string) {
	b.mu.Lock()
	conn, ok := b.connections[connectionID]
	b.mu.Unlock()
	if !ok {
		return
	}
	conn.mu.Lock()
	conn.subscriptions[id] = true
	conn.mu.Unlock()
}

// Unsubscribe removes an id from a connection's subscription set.
func (b *Bus) Unsubscribe(connectionID, id string) {
	b.mu.Lock()
	conn, ok := b.connections[connectionID]
	b.mu.Unlock()
	if !ok {
		return
	}
	conn.mu.Lock()
	delete(conn.subscriptions, id)
	conn.mu.Unlock()
}

// SendToMission delivers payload to every connection subscribed to
// missionID.
func (b *Bus) SendToMission(missionID string, e Event) {
	e.MissionID = missionID
	b.broadcastTo(missionID, e)
}

// SendToSession delivers payload to every connection subscribed to
// sessionID.
func (b *Bus) SendToSession(sessionID string, e Event) {
	e.SessionID = sessionID
	b.broadcastTo(sessionID, e)
}

func (b *Bus) broadcastTo(id string, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	b.mu.Lock()
	conns := make([]*Connection, 0, len(b.connections))
	for _, c := range b.connections {
		conns = append(conns, c)
	}
	b.mu.Unlock()

	for _, c := range conns {
		if c.subscribedTo(id) {
			c.send(e)
		}
	}
}

// SendToUser delivers payload to every connection owned by userID,
// regardless of subscription.
func (b *Bus) SendToUser(userID string, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	b.mu.Lock()
	conns := make([]*Connection, 0)
	for _, c := range b.connections {
		if c.UserID == userID {
			conns = append(conns, c)
		}
	}
	b.mu.Unlock()
	for _, c := range conns {
		c.send(e)
	}
}

// Disconnect removes a connection from every subscription and closes it.
// Per testable property 3: a subsequent send_to_mission does not raise
// and does not deliver to the closed connection.
func (b *Bus) Disconnect(connectionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conn, ok := b.connections[connectionID]
	if !ok {
		return
	}
	b.closeLocked(conn, CloseNormal)
}

// closeLocked must be called with b.mu held.
func (b *Bus) closeLocked(conn *Connection, reason CloseReason) {
	conn.mu.Lock()
	if !conn.closed {
		conn.closed = true
		conn.closeReason = reason
		close(conn.out)
	}
	conn.mu.Unlock()
	delete(b.connections, conn.ID)
	for k, id := range b.byDedupeKey {
		if id == conn.ID {
			delete(b.byDedupeKey, k)
		}
	}
}

// Heartbeat records that a connection is alive.
func (b *Bus) Heartbeat(connectionID string) {
	b.mu.Lock()
	conn, ok := b.connections[connectionID]
	b.mu.Unlock()
	if ok {
		conn.touch()
	}
}

// SweepStaleConnections closes any connection that has missed heartbeats
// for more than heartbeatTimeout. Intended to run on a heartbeatInterval
// ticker from the transport layer.
func (b *Bus) SweepStaleConnections(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, conn := range b.connections {
		conn.mu.Lock()
		stale := now.Sub(conn.lastHeartbeat) > heartbeatTimeout
		conn.mu.Unlock()
		if stale {
			b.closeLocked(conn, CloseTimeout)
		}
	}
}

// ConnectionCount returns the number of active connections (test/ops use).
func (b *Bus) ConnectionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.connections)
}
