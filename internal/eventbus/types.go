// Package eventbus implements the Event Bus (L5): subscribe/fan-out of
// progress events keyed by mission or writing-session, enforcing at most
// one active connection per (user_id, scope, session_id?). Generalized
// from the teacher's internal/events.Bus (a channel-based pub/sub with no
// connection identity) into the spec's connection/subscription model.
package eventbus

import "time"

// Kind enumerates the event kinds emitted by the core, per spec §4.10.
type Kind string

const (
	KindStatusUpdate        Kind = "status_update"
	KindLogsUpdate          Kind = "logs_update"
	KindNotesUpdate         Kind = "notes_update"
	KindPlanUpdate          Kind = "plan_update"
	KindDraftUpdate         Kind = "draft_update"
	KindGoalPadUpdate       Kind = "goal_pad_update"
	KindThoughtPadUpdate    Kind = "thought_pad_update"
	KindScratchpadUpdate    Kind = "scratchpad_update"
	KindContextUpdate       Kind = "context_update"
	KindAgentStatus         Kind = "agent_status"
	KindStreamingChunk      Kind = "streaming_chunk"
	KindDraftContentUpdate  Kind = "draft_content_update"
	KindChatTitleUpdate     Kind = "chat_title_update"
	KindStatsUpdate         Kind = "stats_update"
	KindWebSearchComplete   Kind = "web_search_complete"
	KindWebSearchError      Kind = "web_search_error"
	KindArxivFetchStart     Kind = "arxiv_fetch_start"
	KindArxivFetchComplete  Kind = "arxiv_fetch_complete"
)

// Event is one outgoing payload. MissionID or SessionID is set depending
// on scope; Fields carries the domain-specific payload.
type Event struct {
	Type      Kind
	MissionID string
	SessionID string
	Timestamp time.Time
	Fields    map[string]any
}

// ToJSON renders the event via a recursive converter that turns
// unsupported types into their string forms, per spec §4.10. json.Marshal
// already does this for the types the core ever puts in Fields (numbers,
// strings, bools, slices, maps); anything else falls back to fmt.Sprintf
// through the jsonSafe wrapper in marshal.go.
