package core

import "strings"

// MaxSourceFragmentLength is the widest fragment, in runes, shown in messages.
const MaxSourceFragmentLength = 100

const ellipsis = "…"

// GetSourceFragment clips sourceLine to a window of at most
// MaxSourceFragmentLength runes around column (1-based). Clipped sides are
// marked with an ellipsis and surrounding whitespace is trimmed.
func GetSourceFragment(sourceLine string, column int) string {
	return GetSourceFragmentWithLength(sourceLine, column, MaxSourceFragmentLength)
}

func GetSourceFragmentWithLength(sourceLine string, column, maxLength int) string {
	if strings.TrimSpace(sourceLine) == "" {
		return ""
	}
	runes := []rune(sourceLine)
	lineLength := len(runes)
	if maxLength <= 0 || lineLength <= maxLength {
		return strings.TrimSpace(sourceLine)
	}

	start := column - maxLength/2 - 1
	if start > 0 {
		if lineLength-start < maxLength {
			start = lineLength - maxLength
		}
	} else {
		start = 0
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(strings.TrimSpace(string(runes[start : start+maxLength])))
	if start+maxLength < lineLength {
		b.WriteString(ellipsis)
	}
	return b.String()
}

// SourceLine returns the 1-based line of source, or "" when out of range.
func SourceLine(source string, line int) string {
	if line <= 0 || source == "" {
		return ""
	}
	current := 1
	for {
		idx := strings.IndexByte(source, '\n')
		if current == line {
			if idx < 0 {
				return strings.TrimSuffix(source, "\r")
			}
			return strings.TrimSuffix(source[:idx], "\r")
		}
		if idx < 0 {
			return ""
		}
		source = source[idx+1:]
		current++
	}
}
