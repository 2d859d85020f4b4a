// Package missioncontroller implements the Mission Controller (H2): the
// top-level phase sequencer driving a mission from pending through
// completion, checking the cancel signal at every suspension point and
// reporting progress via the Event Bus.
package missioncontroller

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"

	"maestro/internal/domain"
	"maestro/internal/eventbus"
	"maestro/internal/merrors"
	"maestro/internal/outline"
	"maestro/internal/taskmanager"
)

const tracerName = "maestro/missioncontroller"

// Phase names, also used as LogEntry.Action values.
const (
	PhasePlanning           = "planning"
	PhaseInitialExploration = "initial_exploration"
	PhaseStructuredResearch = "structured_research"
	PhaseOptionalReplan     = "optional_replan"
	PhaseNoteAssignment     = "note_assignment"
	PhaseWriting            = "writing"
	PhaseFinalization       = "finalization"
)

// Store is the narrow Mission Context Store dependency the controller
// needs: load/save missions and append log entries.
type Store interface {
	Load(missionID string) (*domain.Mission, error)
	Save(m *domain.Mission) error
	AppendLogEntry(missionID string, entry domain.LogEntry) error
}

// PhaseFunc runs one phase and returns the mission mutated in place,
// whether a pause/stop was observed, and any hard failure.
type PhaseFunc func(ctx context.Context, m *domain.Mission) error

// Controller sequences a mission through its phases.
type Controller struct {
	store     Store
	tasks     *taskmanager.Manager
	bus       *eventbus.Bus
	validator *outline.Validator

	plan               PhaseFunc
	initialExploration PhaseFunc
	structuredResearch PhaseFunc
	replan             PhaseFunc
	noteAssignment     PhaseFunc
	write              PhaseFunc
	finalize           PhaseFunc

	skipFinalReplanning bool
}

// Config wires every phase implementation and controller-level options.
type Config struct {
	Store               Store
	Tasks               *taskmanager.Manager
	Bus                 *eventbus.Bus
	Validator           *outline.Validator
	Plan                PhaseFunc
	InitialExploration  PhaseFunc
	StructuredResearch  PhaseFunc
	Replan              PhaseFunc
	NoteAssignment      PhaseFunc
	Write               PhaseFunc
	Finalize            PhaseFunc
	SkipFinalReplanning bool
}

// New constructs a Controller from a Config.
func New(cfg Config) *Controller {
	return &Controller{
		store:               cfg.Store,
		tasks:               cfg.Tasks,
		bus:                 cfg.Bus,
		validator:           cfg.Validator,
		plan:                cfg.Plan,
		initialExploration:  cfg.InitialExploration,
		structuredResearch:  cfg.StructuredResearch,
		replan:               cfg.Replan,
		noteAssignment:       cfg.NoteAssignment,
		write:                cfg.Write,
		finalize:             cfg.Finalize,
		skipFinalReplanning:  cfg.SkipFinalReplanning,
	}
}

// cancelState is what the cancel-signal check at each suspension point
// reports.
type cancelState int

const (
	cancelNone cancelState = iota
	cancelPause
	cancelStop
)

func checkCancel(m *domain.Mission) cancelState {
	switch m.Status {
	case domain.MissionPaused:
		return cancelPause
	case domain.MissionStopped:
		return cancelStop
	default:
		return cancelNone
	}
}

// Run drives missionID through every phase in order, per spec §4.9:
// pending -> planning -> initial_exploration -> structured_research ->
// [optional replan] -> note_assignment -> writing -> finalization ->
// completed. Any phase error marks the mission failed; pause/stop at a
// suspension point exits cleanly, persisting whatever was produced so
// far.
func (c *Controller) Run(ctx context.Context, missionID string) error {
	defer c.tasks.CancelMissionTasks(missionID)

	m, err := c.store.Load(missionID)
	if err != nil {
		return err
	}

	phases := []struct {
		name string
		fn   PhaseFunc
	}{
		{PhasePlanning, c.plan},
		{PhaseInitialExploration, c.initialExploration},
		{PhaseStructuredResearch, c.structuredResearch},
		{PhaseOptionalReplan, c.maybeReplan},
		{PhaseNoteAssignment, c.noteAssignment},
		{PhaseWriting, c.write},
		{PhaseFinalization, c.validateThenFinalize},
	}

	for _, phase := range phases {
		if state := checkCancel(m); state != cancelNone {
			return c.handleSuspension(m, state)
		}

		m.Status = domain.MissionRunning
		c.emitStatus(m, phase.name, "running")

		spanCtx, span := otel.Tracer(tracerName).Start(ctx, "mission."+phase.name)
		var phaseErr error
		if phase.fn != nil {
			phaseErr = phase.fn(spanCtx, m)
		}
		span.End()

		if phaseErr != nil {
			m.Status = domain.MissionFailed
			c.appendLog(m.ID, phase.name, domain.LogFailure, phaseErr.Error())
			c.emitStatus(m, phase.name, "failed")
			_ = c.store.Save(m)
			return phaseErr
		}

		c.appendLog(m.ID, phase.name, domain.LogSuccess, "")
		if err := c.store.Save(m); err != nil {
			return err
		}

		if state := checkCancel(m); state != cancelNone {
			return c.handleSuspension(m, state)
		}
	}

	m.Status = domain.MissionCompleted
	c.emitStatus(m, "completed", "completed")
	return c.store.Save(m)
}

func (c *Controller) maybeReplan(ctx context.Context, m *domain.Mission) error {
	if c.skipFinalReplanning || c.replan == nil {
		return nil
	}
	return c.replan(ctx, m)
}

func (c *Controller) validateThenFinalize(ctx context.Context, m *domain.Mission) error {
	if c.validator != nil && m.Plan != nil {
		report := c.validator.Validate(m.Plan, true)
		if !report.HasResearchBased {
			return merrors.New(merrors.OutlineInvalid, "no research_based section survived validation")
		}
	}
	if c.finalize == nil {
		return nil
	}
	return c.finalize(ctx, m)
}

func (c *Controller) handleSuspension(m *domain.Mission, state cancelState) error {
	if state == cancelStop {
		m.Status = domain.MissionStopped
		c.tasks.CancelMissionTasks(m.ID)
		c.emitStatus(m, "stopped", "stopped")
	} else {
		c.emitStatus(m, "paused", "paused")
	}
	if err := c.store.Save(m); err != nil {
		return err
	}
	return merrors.New(merrors.Cancelled, fmt.Sprintf("mission %s suspended", m.ID))
}

func (c *Controller) appendLog(missionID, action string, status domain.LogStatus, errMsg string) {
	if c.store == nil {
		return
	}
	_ = c.store.AppendLogEntry(missionID, domain.LogEntry{
		Timestamp:    time.Now(),
		AgentName:    "mission_controller",
		Action:       action,
		Status:       status,
		ErrorMessage: errMsg,
	})
}

func (c *Controller) emitStatus(m *domain.Mission, phase, status string) {
	if c.bus == nil {
		return
	}
	c.bus.SendToMission(m.ID, eventbus.Event{
		Type:      eventbus.KindStatusUpdate,
		Timestamp: time.Now(),
		Fields:    map[string]any{"phase": phase, "status": status},
	})
}
