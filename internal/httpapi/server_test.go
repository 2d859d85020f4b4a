package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"maestro/internal/domain"
	"maestro/internal/eventbus"
)

type memStore struct {
	missions map[string]*domain.Mission
}

func (s *memStore) Load(missionID string) (*domain.Mission, error) {
	m, ok := s.missions[missionID]
	if !ok {
		return nil, http.ErrNoLocation
	}
	return m, nil
}

func (s *memStore) Save(m *domain.Mission) error {
	s.missions[m.ID] = m
	return nil
}

type alwaysAuth struct{}

func (alwaysAuth) AuthenticateToken(ctx context.Context, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	return "user-" + token, true
}

func newTestServer(m *domain.Mission) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	bus := eventbus.New(8)
	store := &memStore{missions: map[string]*domain.Mission{m.ID: m}}
	srv := New(bus, alwaysAuth{}, nil, store, nil)
	r := gin.New()
	srv.Routes(r)
	return srv, r
}

func TestPauseTransitionPersistsStatus(t *testing.T) {
	m := domain.NewMission("test")
	_, r := newTestServer(m)

	req := httptest.NewRequest(http.MethodPost, "/missions/"+m.ID+"/pause", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if m.Status != domain.MissionPaused {
		t.Errorf("expected mission paused, got %s", m.Status)
	}
}

func TestStopTransitionOnUnknownMissionReturns404(t *testing.T) {
	m := domain.NewMission("test")
	_, r := newTestServer(m)

	req := httptest.NewRequest(http.MethodPost, "/missions/unknown-id/stop", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestResumeTransitionSetsRunning(t *testing.T) {
	m := domain.NewMission("test")
	m.Status = domain.MissionPaused
	_, r := newTestServer(m)

	req := httptest.NewRequest(http.MethodPost, "/missions/"+m.ID+"/resume", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if m.Status != domain.MissionRunning {
		t.Errorf("expected mission running, got %s", m.Status)
	}
}

func TestParseInboundRoundTrips(t *testing.T) {
	msg, err := parseInbound([]byte(`{"kind":"subscribe","id":"mission-1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != "subscribe" || msg.ID != "mission-1" {
		t.Errorf("got %+v", msg)
	}
}

func TestAuthenticatorRejectsEmptyToken(t *testing.T) {
	a := alwaysAuth{}
	if _, ok := a.AuthenticateToken(context.Background(), ""); ok {
		t.Error("expected empty token to fail authentication")
	}
	if _, ok := a.AuthenticateToken(context.Background(), "abc"); !ok {
		t.Error("expected non-empty token to authenticate")
	}
}
