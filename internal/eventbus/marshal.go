package eventbus

import (
	"encoding/json"
	"fmt"
)

// jsonSafe recursively converts a value into one json.Marshal can always
// handle, turning anything it doesn't recognize into its string form —
// the "recursive converter" spec §4.10 requires for outgoing payloads.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case nil, bool, string, int, int32, int64, float32, float64:
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonSafe(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonSafe(val)
		}
		return out
	default:
		if _, err := json.Marshal(t); err == nil {
			return t
		}
		return fmt.Sprintf("%v", t)
	}
}

// MarshalEvent serializes an Event to JSON using jsonSafe on its Fields.
func MarshalEvent(e Event) ([]byte, error) {
	payload := map[string]any{
		"type":      string(e.Type),
		"timestamp": e.Timestamp,
	}
	if e.MissionID != "" {
		payload["mission_id"] = e.MissionID
	}
	if e.SessionID != "" {
		payload["session_id"] = e.SessionID
	}
	for k, v := range e.Fields {
		payload[k] = jsonSafe(v)
	}
	return json.Marshal(payload)
}
