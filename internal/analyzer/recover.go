package analyzer

import (
	"encoding/json"
	"strings"
)

// RecoverObject turns a raw model reply into a parsed JSON object. Strict
// parsing is tried first; when the model wraps the object in prose despite
// instructions, the first parseable balanced object is extracted instead.
// recovered reports that the extraction path was taken.
func RecoverObject(raw string) (obj map[string]any, recovered bool, err error) {
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return obj, false, nil
	}
	if obj, ok := firstParseableObject(raw); ok {
		return obj, true, nil
	}
	return nil, false, ErrMalformedReply
}

// firstParseableObject scans for balanced {...} candidates and returns the
// first one that parses. The scan tracks string and escape state, so braces
// inside details text do not close the object early and stray braces in
// trailing prose do not extend it.
func firstParseableObject(s string) (map[string]any, bool) {
	for off := 0; off < len(s); {
		rel := strings.IndexByte(s[off:], '{')
		if rel < 0 {
			return nil, false
		}
		start := off + rel
		end, ok := matchBrace(s, start)
		if !ok {
			off = start + 1
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(s[start:end+1]), &obj); err == nil {
			return obj, true
		}
		off = start + 1
	}
	return nil, false
}

// matchBrace returns the index of the brace closing the one at start.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
