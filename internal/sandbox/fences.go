package sandbox

import "strings"

// StripFences removes an enclosing markdown code fence that a model may
// have wrapped around generated source, with or without a language tag.
// Text without fences is returned trimmed but otherwise untouched.
// The function is idempotent.
func StripFences(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		// Drop the opening fence line, including any language tag.
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			text = text[idx+1:]
		} else {
			// A lone fence line with no body.
			text = strings.TrimPrefix(text, "```")
		}
	}

	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-3]
	}

	return strings.TrimSpace(text)
}
