// Package domain holds the entities shared by every mission-pipeline
// component: Mission, Plan, ReportSection, Note, Stats, and the small
// memory structures (goals, thoughts, log entries) a mission carries.
package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MissionStatus is the phase/lifecycle state of a Mission.
type MissionStatus string

const (
	MissionPending   MissionStatus = "pending"
	MissionPlanning  MissionStatus = "planning"
	MissionRunning   MissionStatus = "running"
	MissionPaused    MissionStatus = "paused"
	MissionStopped   MissionStatus = "stopped"
	MissionCompleted MissionStatus = "completed"
	MissionFailed    MissionStatus = "failed"
)

// Mission is the authoritative, persistable unit of research work.
// Mutated only through the Mission Context Store (internal/missionstore).
type Mission struct {
	ID            string
	UserRequest   string
	Status        MissionStatus
	Plan          *Plan
	Notes         map[string]*Note // keyed by NoteID
	ReportContent map[string]string // section_id -> text
	Stats         Stats
	Scratchpad    string
	Goals         []Goal
	Thoughts      []Thought // bounded ring, most recent N
	Metadata      map[string]any
	ExecutionLog  []LogEntry
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewMission constructs a pending mission for a user request.
func NewMission(userRequest string) *Mission {
	now := time.Now()
	return &Mission{
		ID:            uuid.New().String(),
		UserRequest:   userRequest,
		Status:        MissionPending,
		Notes:         make(map[string]*Note),
		ReportContent: make(map[string]string),
		Metadata:      make(map[string]any),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// PushThought appends a thought, evicting the oldest once limit is exceeded.
func (m *Mission) PushThought(t Thought, limit int) {
	m.Thoughts = append(m.Thoughts, t)
	if limit > 0 && len(m.Thoughts) > limit {
		m.Thoughts = m.Thoughts[len(m.Thoughts)-limit:]
	}
}

// Goal is a short, timestamped statement of intent from an agent.
type Goal struct {
	Text      string
	Agent     string
	Timestamp time.Time
}

// Thought is a short, timestamped scratch note from an agent.
type Thought struct {
	Text      string
	Agent     string
	Timestamp time.Time
}

// LogStatus is the outcome recorded against a LogEntry.
type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogFailure LogStatus = "failure"
	LogWarning LogStatus = "warning"
	LogRunning LogStatus = "running"
)

// LogEntry records one agent action for the mission's execution log.
type LogEntry struct {
	Timestamp     time.Time
	AgentName     string
	Action        string
	Status        LogStatus
	InputSummary  string
	OutputSummary string
	ErrorMessage  string
	ModelDetails  map[string]any
	Cost          float64
	Tokens        int
}

// SourceType classifies where a Note or Source came from.
type SourceType string

const (
	SourceDocument SourceType = "document"
	SourceWeb      SourceType = "web"
	SourceInternal SourceType = "internal"
)

// Note is a citable fragment attributed to a source.
type Note struct {
	NoteID         string
	Content        string
	SourceType     SourceType
	SourceID       string
	SourceMetadata map[string]any
}

// RefID derives the stable 8-hex reference id for a Note per spec §3:
// document -> first 8 hex of the doc id; web -> first 8 hex of
// SHA1(url); internal -> the source id itself.
func (n *Note) RefID() string {
	return RefIDFor(n.SourceType, n.SourceID)
}

// RefIDFor computes the stable ref_id for a given source type/id pair.
func RefIDFor(st SourceType, sourceID string) string {
	switch st {
	case SourceWeb:
		sum := sha1.Sum([]byte(sourceID))
		return hex.EncodeToString(sum[:])[:8]
	case SourceInternal:
		return sourceID
	default: // document
		if len(sourceID) >= 8 {
			return sourceID[:8]
		}
		return sourceID
	}
}

// Stats are cumulative, delta-updated counters for a mission.
type Stats struct {
	TotalCost         float64
	PromptTokens      int
	CompletionTokens  int
	NativeTokens      int
	WebSearches       int
	DocumentSearches  int
}

// Add merges another Stats delta into this one.
func (s *Stats) Add(delta Stats) {
	s.TotalCost += delta.TotalCost
	s.PromptTokens += delta.PromptTokens
	s.CompletionTokens += delta.CompletionTokens
	s.NativeTokens += delta.NativeTokens
	s.WebSearches += delta.WebSearches
	s.DocumentSearches += delta.DocumentSearches
}

// Clear zeros every counter (used by clear_writing_session_stats).
func (s *Stats) Clear() { *s = Stats{} }

// Source is produced by search pipelines and carries a stable ref_id.
type Source struct {
	Type     SourceType
	RefID    string
	Title    string
	URL      string
	DocID    string
	Page     int
	Provider string

	// Citation metadata, populated when available; APA-like formatting in
	// internal/report falls back to explicit placeholders when sparse.
	Authors string
	Year    string
	Journal string
}

// ChangeSuggestion is a writing-reflection edit proposal for a section.
type ChangeSuggestion struct {
	SectionID    string
	EditKind     string
	Rationale    string
	ProposedEdit string
}

// WritingSession is the assistant-mode counterpart to a Mission.
type WritingSession struct {
	ID               string
	ChatID           string
	DocumentGroupID  string
	UseWebSearch     bool
	CurrentDraftID   string
	Settings         map[string]any
	Stats            Stats
	Drafts           []Draft
	References       []Reference
}

// Draft is one version of a writing session's markdown output.
type Draft struct {
	ID        string
	Title     string
	Content   string
	Version   int
	IsCurrent bool
}

// ReferenceKind distinguishes document- and web-origin references.
type ReferenceKind string

const (
	ReferenceDocument ReferenceKind = "document"
	ReferenceWeb      ReferenceKind = "web"
)

// Reference ties a draft to one resolved citation.
type Reference struct {
	DraftID      string
	RefID        string
	Kind         ReferenceKind
	CitationText string
	Context      string
}

// fmtID is a small helper kept for readable ids in tests and logs.
func fmtID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.New().String()[:8])
}
