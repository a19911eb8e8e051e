package llm

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrUndecodable is the sentinel for a response that could not be decoded
// by any strategy. Callers treat it as "no augmentation", never as a
// pipeline failure.
var ErrUndecodable = errors.New("llm: response not decodable as JSON")

// DecodeObject decodes an LLM response expected to contain one JSON object
// into v. It tries three strategies in order: strict parse, fence-stripped
// parse, then brace-scan substring parse. On total failure it returns
// ErrUndecodable; it never panics and never surfaces a raw syntax error.
func DecodeObject(text string, v any) error {
	return decode(text, v, extractJSONObject)
}

// DecodeArray is DecodeObject for responses expected to contain one JSON
// array.
func DecodeArray(text string, v any) error {
	return decode(text, v, extractJSONArray)
}

func decode(text string, v any, extract func(string) string) error {
	// Attempt 1: strict parse of the raw response.
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	// Attempt 2: strip markdown code fences.
	cleaned := CleanJSONBlock(text)
	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	// Attempt 3: scan for the payload inside surrounding prose.
	if candidate := extract(cleaned); candidate != "" {
		if err := json.Unmarshal([]byte(candidate), v); err == nil {
			return nil
		}
	}

	return ErrUndecodable
}

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// Models often wrap JSON in ```json ... ``` blocks even when instructed not
// to, or preface it with conversational text.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a language identifier on the first line.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Preamble/trailing prose: cut down to the outermost object or array.
	if start := strings.IndexAny(text, "{["); start > 0 || hasTrailingProse(text) {
		if start >= 0 {
			var candidate string
			if text[start] == '{' {
				candidate = extractJSONObject(text[start:])
			} else {
				candidate = extractJSONArray(text[start:])
			}
			if candidate != "" {
				return candidate
			}
		}
	}

	return text
}

// hasTrailingProse reports whether text starts with a JSON payload but has
// trailing non-JSON content.
func hasTrailingProse(text string) bool {
	if len(text) == 0 {
		return false
	}
	switch text[0] {
	case '{':
		extracted := extractJSONObject(text)
		return extracted != "" && len(extracted) < len(text)
	case '[':
		extracted := extractJSONArray(text)
		return extracted != "" && len(extracted) < len(text)
	}
	return false
}

// extractJSONObject returns the balanced {...} prefix of text, or "".
// Braces inside JSON strings are ignored.
func extractJSONObject(text string) string {
	return extractBalanced(text, '{', '}')
}

// extractJSONArray returns the balanced [...] prefix of text, or "".
func extractJSONArray(text string) string {
	return extractBalanced(text, '[', ']')
}

func extractBalanced(text string, open, close byte) string {
	if len(text) == 0 || text[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return text[:i+1]
			}
		}
	}
	return ""
}
