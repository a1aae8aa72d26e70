package dispatch

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JSONSafe recursively converts values handlers commonly return into their
// JSON-native form: uuid.UUID, time.Time and other Stringer values become
// strings, maps and slices are walked. Everything else passes through for
// encoding/json to handle.
func JSONSafe(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = JSONSafe(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = JSONSafe(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = JSONSafe(item)
		}
		return out
	case uuid.UUID:
		return val.String()
	case time.Time:
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}
