package missioncontroller

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maestro/internal/domain"
	"maestro/internal/eventbus"
	"maestro/internal/merrors"
	"maestro/internal/outline"
	"maestro/internal/taskmanager"
)

type memStore struct {
	missions map[string]*domain.Mission
	logs     map[string][]domain.LogEntry
}

func newMemStore(m *domain.Mission) *memStore {
	return &memStore{
		missions: map[string]*domain.Mission{m.ID: m},
		logs:     make(map[string][]domain.LogEntry),
	}
}

func (s *memStore) Load(missionID string) (*domain.Mission, error) {
	m, ok := s.missions[missionID]
	if !ok {
		return nil, merrors.New(merrors.StorageUnavailable, "not found")
	}
	return m, nil
}

func (s *memStore) Save(m *domain.Mission) error {
	s.missions[m.ID] = m
	return nil
}

func (s *memStore) AppendLogEntry(missionID string, entry domain.LogEntry) error {
	s.logs[missionID] = append(s.logs[missionID], entry)
	return nil
}

func samplePlan() *domain.Plan {
	return &domain.Plan{ReportOutline: []*domain.ReportSection{
		{SectionID: "s1", Title: "Intro", ResearchStrategy: domain.StrategyResearchBased},
	}}
}

func TestRunCompletesAllPhasesInOrder(t *testing.T) {
	m := domain.NewMission("test request")
	m.Plan = samplePlan()
	store := newMemStore(m)
	bus := eventbus.New(8)
	tasks := taskmanager.New(zap.NewNop())
	v := outline.New(5)

	var ranPhases []string
	record := func(name string) PhaseFunc {
		return func(ctx context.Context, mm *domain.Mission) error {
			ranPhases = append(ranPhases, name)
			return nil
		}
	}

	c := New(Config{
		Store:              store,
		Tasks:              tasks,
		Bus:                bus,
		Validator:          v,
		Plan:               record("plan"),
		InitialExploration: record("explore"),
		StructuredResearch: record("research"),
		Replan:             record("replan"),
		NoteAssignment:     record("notes"),
		Write:              record("write"),
		Finalize:           record("finalize"),
	})

	require.NoError(t, c.Run(context.Background(), m.ID))

	want := []string{"plan", "explore", "research", "replan", "notes", "write", "finalize"}
	assert.Equal(t, want, ranPhases)
	assert.Equal(t, domain.MissionCompleted, m.Status)
}

func TestRunSkipsReplanWhenConfigured(t *testing.T) {
	m := domain.NewMission("test request")
	m.Plan = samplePlan()
	store := newMemStore(m)
	tasks := taskmanager.New(zap.NewNop())

	replanCalled := false
	c := New(Config{
		Store:               store,
		Tasks:               tasks,
		Replan:              func(ctx context.Context, mm *domain.Mission) error { replanCalled = true; return nil },
		SkipFinalReplanning: true,
	})

	require.NoError(t, c.Run(context.Background(), m.ID))
	assert.False(t, replanCalled, "expected replan to be skipped")
}

func TestRunFailsMissionOnPhaseError(t *testing.T) {
	m := domain.NewMission("test request")
	store := newMemStore(m)
	tasks := taskmanager.New(zap.NewNop())

	wantErr := errors.New("planning exploded")
	c := New(Config{
		Store: store,
		Tasks: tasks,
		Plan:  func(ctx context.Context, mm *domain.Mission) error { return wantErr },
	})

	err := c.Run(context.Background(), m.ID)
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, domain.MissionFailed, m.Status)
	if assert.Len(t, store.logs[m.ID], 1) {
		assert.Equal(t, domain.LogFailure, store.logs[m.ID][0].Status)
	}
}

func TestRunStopsWhenMissionAlreadyStopped(t *testing.T) {
	m := domain.NewMission("test request")
	m.Status = domain.MissionStopped
	store := newMemStore(m)
	tasks := taskmanager.New(zap.NewNop())

	planCalled := false
	c := New(Config{
		Store: store,
		Tasks: tasks,
		Plan:  func(ctx context.Context, mm *domain.Mission) error { planCalled = true; return nil },
	})

	err := c.Run(context.Background(), m.ID)
	assert.True(t, merrors.OfKind(err, merrors.Cancelled), "expected cancelled error, got %v", err)
	assert.False(t, planCalled, "expected no phase to run once mission is stopped")
	assert.Equal(t, domain.MissionStopped, m.Status)
}

func TestRunPausesBetweenPhases(t *testing.T) {
	m := domain.NewMission("test request")
	m.Plan = samplePlan()
	store := newMemStore(m)
	tasks := taskmanager.New(zap.NewNop())

	c := New(Config{
		Store: store,
		Tasks: tasks,
		Plan: func(ctx context.Context, mm *domain.Mission) error {
			mm.Status = domain.MissionPaused
			return nil
		},
		InitialExploration: func(ctx context.Context, mm *domain.Mission) error {
			t.Fatal("exploration should not run after a pause")
			return nil
		},
	})

	err := c.Run(context.Background(), m.ID)
	assert.True(t, merrors.OfKind(err, merrors.Cancelled), "expected cancelled error, got %v", err)
	assert.Equal(t, domain.MissionPaused, m.Status)
}

func TestRunFailsFinalizationWhenNoResearchBasedSectionSurvives(t *testing.T) {
	m := domain.NewMission("test request")
	m.Plan = &domain.Plan{ReportOutline: []*domain.ReportSection{
		{SectionID: "s1", Title: "Intro", ResearchStrategy: domain.StrategyContentBased},
	}}
	store := newMemStore(m)
	tasks := taskmanager.New(zap.NewNop())
	v := outline.New(5)

	c := New(Config{
		Store:     store,
		Tasks:     tasks,
		Validator: v,
		Finalize:  func(ctx context.Context, mm *domain.Mission) error { t.Fatal("finalize should not run"); return nil },
	})

	err := c.Run(context.Background(), m.ID)
	assert.True(t, merrors.OfKind(err, merrors.OutlineInvalid), "expected outline_invalid error, got %v", err)
	assert.Equal(t, domain.MissionFailed, m.Status)
}
