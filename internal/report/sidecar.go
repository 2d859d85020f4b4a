package report

import (
	"time"

	"gopkg.in/yaml.v3"

	"maestro/internal/domain"
)

// Sidecar is the YAML frontmatter-style metadata document written next to
// a mission's rendered report artifact. It mirrors the teacher's Obsidian
// frontmatter fields (query, status, cost, timestamps) without the vault
// loader/template machinery that had no callsite once missions write a
// single artifact instead of a note vault.
type Sidecar struct {
	MissionID    string    `yaml:"mission_id"`
	Query        string    `yaml:"query"`
	Title        string    `yaml:"title"`
	Status       string    `yaml:"status"`
	SourceCount  int       `yaml:"source_count"`
	TotalCostUSD float64   `yaml:"total_cost_usd"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// BuildSidecar derives a report's metadata sidecar from the mission and the
// artifact generated from it.
func BuildSidecar(mission *domain.Mission, artifact Artifact) Sidecar {
	return Sidecar{
		MissionID:    mission.ID,
		Query:        mission.UserRequest,
		Title:        artifact.Title,
		Status:       string(mission.Status),
		SourceCount:  len(artifact.Sources),
		TotalCostUSD: mission.Stats.TotalCost,
		CreatedAt:    mission.CreatedAt,
		UpdatedAt:    mission.UpdatedAt,
	}
}

// Marshal renders the sidecar as a YAML document.
func (s Sidecar) Marshal() ([]byte, error) {
	return yaml.Marshal(s)
}
