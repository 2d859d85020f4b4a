// Package taskmanager centralizes cancellation for the goroutines a
// mission spawns, so pausing or stopping a mission cancels everything it
// has in flight without leaking goroutines. It is a direct port of the
// original AsyncTaskManager's registry-per-mission model, swapping
// Python's weakref-cleaned task set for Go's context.CancelFunc: a
// goroutine that returns removes itself via a deferred call instead of
// being garbage-collected out of a weak set.
package taskmanager

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// handle is one registered cancellable goroutine.
type handle struct {
	id     uint64
	cancel context.CancelFunc
	done   bool
}

// Manager tracks cancellable goroutines grouped by mission id.
type Manager struct {
	mu     sync.Mutex
	tasks  map[string][]*handle
	nextID uint64
	log    *zap.Logger
}

// New constructs an empty Manager.
func New(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{tasks: make(map[string][]*handle), log: log}
}

// Spawn derives a cancellable context from ctx, registers it under
// missionID, and runs fn in a new goroutine. The registration is removed
// automatically when fn returns, mirroring the Python manager's
// weakref-triggered cleanup callback.
func (m *Manager) Spawn(ctx context.Context, missionID string, fn func(context.Context)) {
	child, cancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.nextID++
	h := &handle{id: m.nextID, cancel: cancel}
	m.tasks[missionID] = append(m.tasks[missionID], h)
	m.mu.Unlock()

	go func() {
		defer m.cleanup(missionID, h)
		fn(child)
	}()
}

func (m *Manager) cleanup(missionID string, h *handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.done = true
	list := m.tasks[missionID]
	for i, cand := range list {
		if cand == h {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(m.tasks, missionID)
	} else {
		m.tasks[missionID] = list
	}
}

// CancelMissionTasks cancels every task registered for missionID and
// returns how many were still running. Matches the Python
// cancel_mission_tasks contract, including "no tasks" logging at the
// call site rather than inside the lock.
func (m *Manager) CancelMissionTasks(missionID string) int {
	m.mu.Lock()
	list := m.tasks[missionID]
	delete(m.tasks, missionID)
	m.mu.Unlock()

	cancelled := 0
	for _, h := range list {
		if !h.done {
			h.cancel()
			cancelled++
		}
	}
	if cancelled == 0 {
		m.log.Debug("no tasks to cancel for mission", zap.String("mission_id", missionID))
	} else {
		m.log.Info("cancelled tasks for mission", zap.String("mission_id", missionID), zap.Int("count", cancelled))
	}
	return cancelled
}

// ActiveTaskCount reports how many registered tasks for missionID have
// not yet returned.
func (m *Manager) ActiveTaskCount(missionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, h := range m.tasks[missionID] {
		if !h.done {
			count++
		}
	}
	return count
}

// GatherCancellable runs each fn concurrently under missionID's
// registry, waiting for all to finish (or for ctx to be cancelled) and
// returning the first non-nil error. It is the Go analog of
// gather_cancellable: if the parent context is cancelled mid-flight, the
// remaining goroutines observe cancellation through their derived
// contexts and this call returns ctx.Err() without waiting further.
func (m *Manager) GatherCancellable(ctx context.Context, missionID string, fns ...func(context.Context) error) error {
	type outcome struct {
		err error
	}
	results := make(chan outcome, len(fns))

	for _, fn := range fns {
		fn := fn
		m.Spawn(ctx, missionID, func(taskCtx context.Context) {
			results <- outcome{err: fn(taskCtx)}
		})
	}

	var firstErr error
	received := 0
	for received < len(fns) {
		select {
		case <-ctx.Done():
			m.log.Info("gather cancelled for mission", zap.String("mission_id", missionID))
			m.CancelMissionTasks(missionID)
			return ctx.Err()
		case res := <-results:
			received++
			if res.err != nil && firstErr == nil {
				firstErr = res.err
			}
		}
	}
	return firstErr
}

// MissionScope runs fn and guarantees CancelMissionTasks runs afterward,
// the Go equivalent of the Python async context manager mission_scope.
func (m *Manager) MissionScope(missionID string, fn func() error) error {
	defer m.CancelMissionTasks(missionID)
	return fn()
}
