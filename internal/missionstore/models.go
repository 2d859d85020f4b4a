// Package missionstore is the Mission Context Store (L7): gorm-backed
// persistence for missions, generalizing the teacher's session.Store
// (JSON-file-per-session) and core/domain aggregate event log into a
// relational schema with an explicit append-only execution-log table.
package missionstore

import (
	"time"

	"gorm.io/gorm"
)

// missionRow is the gorm model backing domain.Mission. Large nested
// structures (plan, notes, report content, goals, thoughts, metadata)
// are stored as JSON blobs, matching the teacher's "serialize the whole
// aggregate" approach in session.Store.Save rather than normalizing every
// nested field into its own table.
type missionRow struct {
	ID            string `gorm:"primaryKey"`
	UserRequest   string
	Status        string
	PlanJSON      string
	NotesJSON     string
	ReportJSON    string
	StatsJSON     string
	Scratchpad    string
	GoalsJSON     string
	ThoughtsJSON  string
	MetadataJSON  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (missionRow) TableName() string { return "missions" }

// executionLogRow is one append-only entry in a mission's execution log.
// Kept as its own table (rather than folded into missionRow's JSON) so it
// can be appended to without re-writing the whole mission row, and so it
// can be queried/paginated independently.
type executionLogRow struct {
	ID            uint `gorm:"primaryKey;autoIncrement"`
	MissionID     string `gorm:"index"`
	Timestamp     time.Time
	AgentName     string
	Action        string
	Status        string
	InputSummary  string
	OutputSummary string
	ErrorMessage  string
	ModelDetailsJSON string
	Cost          float64
	Tokens        int
}

func (executionLogRow) TableName() string { return "mission_execution_log" }

// writingSessionRow backs domain.WritingSession.
type writingSessionRow struct {
	ID              string `gorm:"primaryKey"`
	ChatID          string
	DocumentGroupID string
	UseWebSearch    bool
	CurrentDraftID  string
	SettingsJSON    string
	StatsJSON       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (writingSessionRow) TableName() string { return "writing_sessions" }

// draftRow backs domain.Draft.
type draftRow struct {
	ID               uint `gorm:"primaryKey;autoIncrement"`
	WritingSessionID string `gorm:"index"`
	Title            string
	Content          string
	Version          int
	IsCurrent        bool
	CreatedAt        time.Time
}

func (draftRow) TableName() string { return "writing_session_drafts" }

// referenceRow backs domain.Reference.
type referenceRow struct {
	ID               uint `gorm:"primaryKey;autoIncrement"`
	WritingSessionID string `gorm:"index"`
	DraftID          string
	RefID            string
	Kind             string
	CitationText     string
	Context          string
}

func (referenceRow) TableName() string { return "writing_session_references" }

// AutoMigrate creates/updates every table this store owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&missionRow{},
		&executionLogRow{},
		&writingSessionRow{},
		&draftRow{},
		&referenceRow{},
	)
}
