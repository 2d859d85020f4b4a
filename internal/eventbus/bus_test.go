package eventbus

import (
	"testing"
	"time"
)

func TestConnectDuplicateClosesOlder(t *testing.T) {
	bus := New(8)
	first := bus.Connect("user1", ScopeMission, "mission1")
	second := bus.Connect("user1", ScopeMission, "mission1")

	closed, reason := first.Closed()
	if !closed || reason != CloseDuplicate {
		t.Fatalf("expected first connection closed as duplicate, got closed=%v reason=%v", closed, reason)
	}
	if closed2, _ := second.Closed(); closed2 {
		t.Fatal("second connection should remain open")
	}
	if bus.ConnectionCount() != 1 {
		t.Fatalf("expected 1 live connection, got %d", bus.ConnectionCount())
	}
}

func TestDisconnectRemovesFromSubscriptionsAndSendDoesNotPanic(t *testing.T) {
	bus := New(8)
	conn := bus.Connect("user1", ScopeMission, "mission1")
	bus.Subscribe(conn.ID, "mission1")

	bus.Disconnect(conn.ID)

	// Per testable property: subsequent send_to_mission does not raise and
	// does not deliver to the closed connection.
	bus.SendToMission("mission1", Event{Type: KindStatusUpdate})

	select {
	case _, open := <-conn.Out():
		if open {
			t.Fatal("expected no event delivered to a disconnected connection")
		}
	default:
	}

	if bus.ConnectionCount() != 0 {
		t.Fatalf("expected 0 live connections after disconnect, got %d", bus.ConnectionCount())
	}
}

func TestSendToMissionDeliversOnlyToSubscribed(t *testing.T) {
	bus := New(8)
	subscribed := bus.Connect("user1", ScopeMission, "mission1")
	bus.Subscribe(subscribed.ID, "missionA")
	other := bus.Connect("user2", ScopeMission, "mission2")
	bus.Subscribe(other.ID, "missionB")

	bus.SendToMission("missionA", Event{Type: KindStatusUpdate, Fields: map[string]any{"status": "running"}})

	select {
	case e := <-subscribed.Out():
		if e.MissionID != "missionA" {
			t.Fatalf("expected missionA event, got %q", e.MissionID)
		}
	default:
		t.Fatal("expected subscribed connection to receive event")
	}

	select {
	case e := <-other.Out():
		t.Fatalf("expected no event for unrelated subscriber, got %+v", e)
	default:
	}
}

func TestSendToUserIgnoresSubscriptions(t *testing.T) {
	bus := New(8)
	conn := bus.Connect("user1", ScopeMission, "")

	bus.SendToUser("user1", Event{Type: KindStatsUpdate})

	select {
	case e := <-conn.Out():
		if e.Type != KindStatsUpdate {
			t.Fatalf("unexpected event type %v", e.Type)
		}
	default:
		t.Fatal("expected user-targeted event regardless of subscription")
	}
}

func TestSweepStaleConnectionsClosesTimedOutConnection(t *testing.T) {
	bus := New(8)
	conn := bus.Connect("user1", ScopeSession, "sess1")

	bus.SweepStaleConnections(time.Now().Add(heartbeatTimeout + time.Second))

	closed, reason := conn.Closed()
	if !closed || reason != CloseTimeout {
		t.Fatalf("expected connection closed for heartbeat timeout, got closed=%v reason=%v", closed, reason)
	}
}

func TestHeartbeatPreventsSweep(t *testing.T) {
	bus := New(8)
	conn := bus.Connect("user1", ScopeSession, "sess1")

	bus.Heartbeat(conn.ID)
	bus.SweepStaleConnections(time.Now().Add(heartbeatInterval))

	if closed, _ := conn.Closed(); closed {
		t.Fatal("expected recently-heartbeating connection to survive sweep")
	}
}
