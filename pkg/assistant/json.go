package assistant

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeModelJSON parses a JSON object out of a model reply. Models often
// wrap JSON in markdown fences or pad it with prose, so we cut down to the
// outermost braces before unmarshalling.
func decodeModelJSON(raw string, out interface{}) error {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("no JSON object in model output")
	}

	return json.Unmarshal([]byte(s[start:end+1]), out)
}
