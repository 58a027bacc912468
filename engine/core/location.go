package core

import (
	"regexp"
	"strconv"
	"strings"
)

// ErrorLocationItem is one parsed stack frame.
type ErrorLocationItem struct {
	FunctionName string
	DocumentName string
	LineNumber   int
	ColumnNumber int
	// SourceFragment holds the raw source line until the normalizer clips it.
	SourceFragment string
}

// LocationParser turns an engine's location block into ordered frames.
// The first item is the error site; the rest form the call stack.
type LocationParser interface {
	ParseLocation(block string) []ErrorLocationItem
}

// LocationParserFunc adapts a function to LocationParser.
type LocationParserFunc func(block string) []ErrorLocationItem

func (f LocationParserFunc) ParseLocation(block string) []ErrorLocationItem {
	return f(block)
}

const (
	jsNamePattern       = `[$_\p{L}][$_\p{L}\p{Nd}]*`
	jsFullNamePattern   = jsNamePattern + `(?:\.` + jsNamePattern + `)*`
	documentNamePattern = `[^\s*?"|][^\t\n\r*?"|]*?`
)

// frameRegex accepts
//
//	at document:line[:column]
//	at function (document:line[:column])
//	at function (document:line:column(pc))
//	... -> source line
var frameRegex = regexp.MustCompile(
	`^at (?:(?P<function>[^()\t\n\r]+?) \()?` +
		`(?P<document>` + documentNamePattern + `):(?P<line>\d+)(?::(?P<column>\d+))?(?:\(\d+\))?\)?` +
		`(?: -> (?P<source>.*))?$`,
)

// DefaultLocationParser understands the "at document:line:column" grammar shared
// by V8-style engines. A line following a frame that is not itself a frame is
// taken as that frame's source line.
type DefaultLocationParser struct {
	// AnonymousDocuments lists placeholder names an engine prints for unnamed
	// scripts; they are reported as an empty document name.
	AnonymousDocuments []string
}

func (p DefaultLocationParser) ParseLocation(block string) []ErrorLocationItem {
	if strings.TrimSpace(block) == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	items := make([]ErrorLocationItem, 0, len(lines))
	lastHasSource := true
	for _, raw := range lines {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "at ") {
			item, ok := p.parseFrame(trimmed)
			if !ok {
				// native or otherwise unlocatable frame
				lastHasSource = true
				continue
			}
			items = append(items, item)
			lastHasSource = item.SourceFragment != ""
			continue
		}
		if !lastHasSource && len(items) > 0 {
			items[len(items)-1].SourceFragment = strings.TrimRight(raw, "\r\n")
			lastHasSource = true
		}
	}
	return items
}

func (p DefaultLocationParser) parseFrame(line string) (ErrorLocationItem, bool) {
	match := frameRegex.FindStringSubmatch(line)
	if match == nil {
		return ErrorLocationItem{}, false
	}
	item := ErrorLocationItem{
		FunctionName:   strings.TrimSpace(match[frameRegex.SubexpIndex("function")]),
		DocumentName:   p.documentName(match[frameRegex.SubexpIndex("document")]),
		SourceFragment: match[frameRegex.SubexpIndex("source")],
	}
	item.LineNumber, _ = strconv.Atoi(match[frameRegex.SubexpIndex("line")])
	if col := match[frameRegex.SubexpIndex("column")]; col != "" {
		item.ColumnNumber, _ = strconv.Atoi(col)
	}
	return item, true
}

func (p DefaultLocationParser) documentName(name string) string {
	for _, anonymous := range p.AnonymousDocuments {
		if name == anonymous {
			return ""
		}
	}
	return name
}

// ParseErrorLocation parses block with the default grammar.
func ParseErrorLocation(block string) []ErrorLocationItem {
	return DefaultLocationParser{}.ParseLocation(block)
}

// StringifyErrorLocationItems renders frames one per line. The terse form
// omits source fragments and is used for call stacks.
func StringifyErrorLocationItems(items []ErrorLocationItem, withoutSourceFragment bool) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for i, item := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("   at ")
		if item.FunctionName != "" {
			b.WriteString(item.FunctionName)
			b.WriteString(" (")
		}
		writePosition(&b, item.DocumentName, item.LineNumber, item.ColumnNumber)
		if item.FunctionName != "" {
			b.WriteByte(')')
		}
		if !withoutSourceFragment && item.SourceFragment != "" {
			b.WriteString(" -> ")
			b.WriteString(item.SourceFragment)
		}
	}
	return b.String()
}

func writePosition(b *strings.Builder, documentName string, line, column int) {
	b.WriteString(documentName)
	if line > 0 {
		if documentName != "" {
			b.WriteByte(':')
		}
		b.WriteString(strconv.Itoa(line))
		if column > 0 {
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(column))
		}
	}
}

// GenerateErrorMessage composes "Type: description" followed by a single
// location line when document or line is known.
func GenerateErrorMessage(
	errType, description, documentName string,
	line, column int,
	sourceFragment string,
) string {
	var b strings.Builder
	writeTypeAndDescription(&b, errType, description)
	if strings.TrimSpace(documentName) != "" || line > 0 {
		b.WriteString("\n   at ")
		writePosition(&b, documentName, line, column)
		if sourceFragment != "" {
			b.WriteString(" -> ")
			b.WriteString(sourceFragment)
		}
	}
	return b.String()
}

// GenerateErrorMessageWithCallStack composes "Type: description" followed by
// a rendered call stack.
func GenerateErrorMessageWithCallStack(errType, description, callStack string) string {
	var b strings.Builder
	writeTypeAndDescription(&b, errType, description)
	if callStack != "" {
		b.WriteByte('\n')
		b.WriteString(callStack)
	}
	return b.String()
}

func writeTypeAndDescription(b *strings.Builder, errType, description string) {
	if errType != "" {
		b.WriteString(errType)
		b.WriteString(": ")
	}
	b.WriteString(description)
}
