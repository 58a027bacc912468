package core

import "regexp"

var (
	// "file: Line L:C message", produced by the ECMAScript parsers of the pure
	// Go engines.
	parserErrorRegex = regexp.MustCompile(
		`^(?:SyntaxError: )*(?P<document>[^\t\n\r]*?): Line (?P<line>\d+):(?P<column>\d+) (?P<message>[\s\S]+)$`,
	)
	// "message at file:L:C", produced by early errors found while compiling.
	compilerErrorRegex = regexp.MustCompile(
		`^(?:SyntaxError: )*(?P<message>[^\n]+?) at (?P<document>` + documentNamePattern + `):(?P<line>\d+):(?P<column>\d+)$`,
	)
)

// ParserErrorDiagnostic rewrites a parser or compiler error into a SyntaxError
// diagnostic whose location block uses the default grammar. ok is false when
// raw carries no parser position.
func ParserErrorDiagnostic(raw string, cause error) (d Diagnostic, ok bool) {
	for _, re := range []*regexp.Regexp{parserErrorRegex, compilerErrorRegex} {
		match := re.FindStringSubmatch(raw)
		if match == nil {
			continue
		}
		message := SyntaxErrorType + ": " + match[re.SubexpIndex("message")]
		location := "at " + match[re.SubexpIndex("document")] + ":" +
			match[re.SubexpIndex("line")] + ":" +
			match[re.SubexpIndex("column")]
		return Diagnostic{
			Message: message,
			Details: message + "\n" + location,
			Cause:   cause,
		}, true
	}
	return Diagnostic{}, false
}
