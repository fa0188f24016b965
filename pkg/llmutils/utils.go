package llmutils

import (
	"bytes"
	"encoding/json"
	"strings"
)

var fence = []byte("```")

// CleanJSON returns the JSON document found in the model output,
// without the text before the first and after the last bracket,
// as the model can produce arguments like `Sure: {json}`.
func CleanJSON(bs []byte) []byte {
	start := bytes.IndexAny(bs, "{[")
	if start == -1 {
		return bs
	}
	bs = bs[start:]

	end := bytes.LastIndexAny(bs, "}]")
	if end == -1 {
		return bs
	}
	return bs[:end+1]
}

// TrimBackticks removes the markdown fence, like ```json, around the text.
func TrimBackticks(text string) string {
	return string(BytesTrimBackticks([]byte(text)))
}

// BytesTrimBackticks removes the markdown fence, like ```json, around the document.
// The document is returned as is, if it has no fence.
func BytesTrimBackticks(bs []byte) []byte {
	open := bytes.Index(bs, fence)
	if open == -1 {
		return bs
	}
	body := bs[open+len(fence):]

	// skip the language tag, unless the document starts on the fence line
	if nl := bytes.IndexByte(body, '\n'); nl != -1 {
		if bytes.IndexAny(body[:nl], "{[") == -1 {
			body = body[nl+1:]
		}
	}

	if closing := bytes.LastIndex(body, fence); closing != -1 {
		body = body[:closing]
	} else {
		return body
	}
	return bytes.TrimSpace(body)
}

// ToJSON returns compact JSON of the value.
func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

// ToJSONIndent returns JSON of the value, indented with tabs.
func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

// Stringer is implemented by the function results with custom content.
type Stringer interface {
	String() string
}

// Stringify returns the text form of the value used as tool content:
// Stringer and string values as is, scalars as JSON,
// objects and arrays as fenced JSON.
func Stringify(s any) string {
	switch v := s.(type) {
	case Stringer:
		return v.String()
	case string:
		return v
	}

	js, _ := json.MarshalIndent(s, "", "\t")
	if len(js) == 0 || (js[0] != '{' && js[0] != '[') {
		return string(js)
	}
	return "\n```json\n" + strings.TrimSpace(string(js)) + "\n```\n"
}
