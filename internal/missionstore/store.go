package missionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"maestro/internal/domain"
	"maestro/internal/merrors"
)

// Store is the Mission Context Store: the single place mission state is
// read from and written to, so every component (search pipeline,
// reflection manager, writing manager, report generator, controller)
// observes the same committed state instead of passing a live struct
// around by pointer, matching the teacher's "Store.Save/Load is the only
// path to disk" discipline in internal/session.
type Store struct {
	db *gorm.DB
}

// New wraps an already-opened gorm.DB (sqlite, per SPEC_FULL.md) and
// ensures its schema is migrated.
func New(db *gorm.DB) (*Store, error) {
	if err := AutoMigrate(db); err != nil {
		return nil, merrors.Wrap(merrors.StorageUnavailable, "migrate mission store", err)
	}
	return &Store{db: db}, nil
}

func marshalAny(v any) (string, error) {
	if v == nil {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalInto(raw string, v any) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), v)
}

// Save upserts the whole mission row, matching the teacher's
// serialize-the-aggregate approach.
func (s *Store) Save(m *domain.Mission) error {
	plan, err := marshalAny(m.Plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	notes, err := marshalAny(m.Notes)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}
	report, err := marshalAny(m.ReportContent)
	if err != nil {
		return fmt.Errorf("marshal report content: %w", err)
	}
	stats, err := marshalAny(m.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	goals, err := marshalAny(m.Goals)
	if err != nil {
		return fmt.Errorf("marshal goals: %w", err)
	}
	thoughts, err := marshalAny(m.Thoughts)
	if err != nil {
		return fmt.Errorf("marshal thoughts: %w", err)
	}
	metadata, err := marshalAny(m.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	row := missionRow{
		ID:           m.ID,
		UserRequest:  m.UserRequest,
		Status:       string(m.Status),
		PlanJSON:     plan,
		NotesJSON:    notes,
		ReportJSON:   report,
		StatsJSON:    stats,
		Scratchpad:   m.Scratchpad,
		GoalsJSON:    goals,
		ThoughtsJSON: thoughts,
		MetadataJSON: metadata,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}

	if err := s.db.Save(&row).Error; err != nil {
		return merrors.Wrap(merrors.StorageUnavailable, "save mission", err)
	}
	return nil
}

// Load reconstructs a domain.Mission from its persisted row.
func (s *Store) Load(missionID string) (*domain.Mission, error) {
	var row missionRow
	err := s.db.First(&row, "id = ?", missionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, merrors.New(merrors.StorageUnavailable, fmt.Sprintf("mission %s not found", missionID))
	}
	if err != nil {
		return nil, merrors.Wrap(merrors.StorageUnavailable, "load mission", err)
	}

	m := &domain.Mission{
		ID:          row.ID,
		UserRequest: row.UserRequest,
		Status:      domain.MissionStatus(row.Status),
		Scratchpad:  row.Scratchpad,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}

	var plan domain.Plan
	if err := unmarshalInto(row.PlanJSON, &plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	if row.PlanJSON != "" {
		m.Plan = &plan
	}

	notes := make(map[string]*domain.Note)
	if err := unmarshalInto(row.NotesJSON, &notes); err != nil {
		return nil, fmt.Errorf("unmarshal notes: %w", err)
	}
	m.Notes = notes

	report := make(map[string]string)
	if err := unmarshalInto(row.ReportJSON, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report content: %w", err)
	}
	m.ReportContent = report

	var stats domain.Stats
	if err := unmarshalInto(row.StatsJSON, &stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	m.Stats = stats

	var goals []domain.Goal
	if err := unmarshalInto(row.GoalsJSON, &goals); err != nil {
		return nil, fmt.Errorf("unmarshal goals: %w", err)
	}
	m.Goals = goals

	var thoughts []domain.Thought
	if err := unmarshalInto(row.ThoughtsJSON, &thoughts); err != nil {
		return nil, fmt.Errorf("unmarshal thoughts: %w", err)
	}
	m.Thoughts = thoughts

	metadata := make(map[string]any)
	if err := unmarshalInto(row.MetadataJSON, &metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	m.Metadata = metadata

	var logRows []executionLogRow
	if err := s.db.Where("mission_id = ?", missionID).Order("id asc").Find(&logRows).Error; err != nil {
		return nil, merrors.Wrap(merrors.StorageUnavailable, "load execution log", err)
	}
	m.ExecutionLog = make([]domain.LogEntry, 0, len(logRows))
	for _, lr := range logRows {
		var details map[string]any
		if err := unmarshalInto(lr.ModelDetailsJSON, &details); err != nil {
			return nil, fmt.Errorf("unmarshal log entry model details: %w", err)
		}
		m.ExecutionLog = append(m.ExecutionLog, domain.LogEntry{
			Timestamp:     lr.Timestamp,
			AgentName:     lr.AgentName,
			Action:        lr.Action,
			Status:        domain.LogStatus(lr.Status),
			InputSummary:  lr.InputSummary,
			OutputSummary: lr.OutputSummary,
			ErrorMessage:  lr.ErrorMessage,
			ModelDetails:  details,
			Cost:          lr.Cost,
			Tokens:        lr.Tokens,
		})
	}

	return m, nil
}

// AppendLogEntry inserts one execution-log row without touching the rest
// of the mission, so high-frequency agent-action logging never requires
// re-serializing the whole mission.
func (s *Store) AppendLogEntry(missionID string, entry domain.LogEntry) error {
	details, err := marshalAny(entry.ModelDetails)
	if err != nil {
		return fmt.Errorf("marshal log entry model details: %w", err)
	}
	row := executionLogRow{
		MissionID:        missionID,
		Timestamp:        entry.Timestamp,
		AgentName:        entry.AgentName,
		Action:           entry.Action,
		Status:           string(entry.Status),
		InputSummary:     entry.InputSummary,
		OutputSummary:    entry.OutputSummary,
		ErrorMessage:     entry.ErrorMessage,
		ModelDetailsJSON: details,
		Cost:             entry.Cost,
		Tokens:           entry.Tokens,
	}
	if err := s.db.Create(&row).Error; err != nil {
		return merrors.Wrap(merrors.StorageUnavailable, "append execution log entry", err)
	}
	return nil
}

// Delete removes a mission and its execution log.
func (s *Store) Delete(missionID string) error {
	if err := s.db.Where("mission_id = ?", missionID).Delete(&executionLogRow{}).Error; err != nil {
		return merrors.Wrap(merrors.StorageUnavailable, "delete execution log", err)
	}
	if err := s.db.Delete(&missionRow{}, "id = ?", missionID).Error; err != nil {
		return merrors.Wrap(merrors.StorageUnavailable, "delete mission", err)
	}
	return nil
}

// ListSummaries returns lightweight rows for a mission list view, sorted
// newest first, matching the teacher's session.Store.List contract.
func (s *Store) ListSummaries() ([]Summary, error) {
	var rows []missionRow
	if err := s.db.Order("updated_at desc").Find(&rows).Error; err != nil {
		return nil, merrors.Wrap(merrors.StorageUnavailable, "list missions", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		var stats domain.Stats
		_ = unmarshalInto(r.StatsJSON, &stats)
		out = append(out, Summary{
			ID:          r.ID,
			UserRequest: r.UserRequest,
			Status:      domain.MissionStatus(r.Status),
			TotalCost:   stats.TotalCost,
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return out, nil
}

// Summary is a lightweight mission representation for list views.
type Summary struct {
	ID          string
	UserRequest string
	Status      domain.MissionStatus
	TotalCost   float64
	UpdatedAt   time.Time
}
