package stream

import "encoding/json"

// Fragment is the interpreted form of one chunk. Interpretation is total:
// every chunk produces a Fragment, never an error.
type Fragment struct {
	// Text is the extracted answer text for this chunk.
	Text string
	// Structured reports whether the chunk decoded as JSON. When false,
	// Text is the chunk verbatim.
	Structured bool
}

// Interpret decodes one chunk of upstream output. Some DeepWiki deployments
// send plain text, others send JSON objects per chunk; a chunk may also be a
// partial JSON value when upstream framing does not align with transport
// chunk boundaries. The probe order is fixed: a "text" field, then
// "content", then "delta.content"; an object matching none of these is
// stringified whole. Anything that does not decode passes through verbatim.
// Partial fragments therefore degrade to verbatim text for that fragment
// only; there is no cross-chunk reassembly.
func Interpret(chunk string) Fragment {
	var v any
	if err := json.Unmarshal([]byte(chunk), &v); err != nil {
		return Fragment{Text: chunk}
	}
	if obj, ok := v.(map[string]any); ok {
		if text, ok := fieldText(obj, "text"); ok {
			return Fragment{Text: text, Structured: true}
		}
		if text, ok := fieldText(obj, "content"); ok {
			return Fragment{Text: text, Structured: true}
		}
		if delta, ok := obj["delta"].(map[string]any); ok {
			if text, ok := fieldText(delta, "content"); ok {
				return Fragment{Text: text, Structured: true}
			}
		}
	}
	return Fragment{Text: stringify(v), Structured: true}
}

// fieldText extracts m[key] as text. Presence of the key decides the match;
// a non-string value is stringified rather than skipped, so the probe order
// stays a pure precedence over field names.
func fieldText(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return stringify(v), true
}

func stringify(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
