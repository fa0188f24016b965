package llmutils

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/kaptinlin/jsonrepair"
)

// RepairJSON returns a valid JSON document produced from the model output.
// Markdown fences and text around the document are removed,
// then malformed JSON (single quotes, trailing commas, missing brackets)
// is repaired.
// The second value reports if the document had to be changed.
// Empty input is an empty object.
func RepairJSON(text string) (string, bool, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "{}", false, nil
	}
	if json.Valid([]byte(s)) {
		return s, false, nil
	}

	s = strings.TrimSpace(string(BytesTrimBackticks([]byte(s))))
	if start := strings.IndexAny(s, "{["); start > 0 {
		s = s[start:]
	}
	if s == "" {
		return "{}", true, nil
	}
	if json.Valid([]byte(s)) {
		return s, true, nil
	}

	// a complete document followed by text
	cleaned := string(CleanJSON([]byte(s)))
	if json.Valid([]byte(cleaned)) {
		return cleaned, true, nil
	}

	// the truncated document is repaired as a whole,
	// cutting at the last bracket would drop the trailing keys
	repaired, err := jsonrepair.JSONRepair(s)
	if err == nil && json.Valid([]byte(repaired)) {
		return repaired, true, nil
	}
	if cleaned != s {
		if repaired, cerr := jsonrepair.JSONRepair(cleaned); cerr == nil && json.Valid([]byte(repaired)) {
			return repaired, true, nil
		}
	}
	if err == nil {
		err = errors.New("invalid JSON")
	}
	return "", false, errors.Wrap(err, "unable to repair JSON")
}
