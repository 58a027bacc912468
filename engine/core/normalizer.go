package core

import (
	"fmt"
	"regexp"
	"strings"
)

// SyntaxErrorType is the JS error type reported as a compilation failure.
const SyntaxErrorType = "SyntaxError"

// Diagnostic is the raw failure an adapter extracts from its engine before
// normalization.
type Diagnostic struct {
	// Message is the flat "Type: description" text.
	Message string
	// Details is Message followed by a location block, when the engine has one.
	Details string
	// Fatal marks unrecoverable engine state, such as running out of memory.
	Fatal bool
	// Interrupted marks an execution stopped by an interrupt request.
	Interrupted bool
	Cause       error
}

var (
	messageWithTypeRegex = regexp.MustCompile(
		`^(?P<type>` + jsFullNamePattern + `):\s+(?P<description>[\s\S]+?)$`,
	)
	nativeLibraryLoadErrorRegex = regexp.MustCompile(
		`^Cannot load (?P<engine>.+?) (?:interface assembly|native library)\. ` +
			`Load failure information for (?P<file>` + documentNamePattern + `):`,
	)
)

// Normalizer turns engine diagnostics into *Error values. One normalizer is
// configured per engine family; only Parser differs between engines.
type Normalizer struct {
	EngineName    string
	EngineVersion string
	// MemoryLimitMessage is the fatal message the engine uses when a
	// configured memory ceiling is hit; it is reported as a runtime error.
	MemoryLimitMessage string
	Parser             LocationParser
	// Sources supplies source lines for frames the engine printed without one.
	Sources *SourceCache
}

func (n *Normalizer) newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{
		Kind:          kind,
		EngineName:    n.EngineName,
		EngineVersion: n.EngineVersion,
		Message:       message,
		Description:   message,
		Cause:         cause,
	}
}

// Normalize classifies d and extracts type, location and call stack.
func (n *Normalizer) Normalize(d Diagnostic) *Error {
	if d.Interrupted {
		return n.newError(KindInterrupted, MsgScriptInterrupted, d.Cause)
	}

	message := d.Message
	if d.Fatal {
		if n.MemoryLimitMessage != "" && message == n.MemoryLimitMessage {
			return n.newError(KindRuntime, message, d.Cause)
		}
		return n.newError(KindFatal, message, d.Cause)
	}

	match := messageWithTypeRegex.FindStringSubmatch(message)
	if match == nil {
		return n.newError(KindGeneric, message, d.Cause)
	}
	errType := match[messageWithTypeRegex.SubexpIndex("type")]
	description := match[messageWithTypeRegex.SubexpIndex("description")]

	var items []ErrorLocationItem
	if len(message) < len(d.Details) {
		block := strings.TrimLeft(strings.TrimPrefix(d.Details, message), "\r\n")
		items = n.parseLocation(block)
	}

	var documentName, sourceFragment string
	var line, column int
	if len(items) > 0 {
		first := &items[0]
		documentName = first.DocumentName
		line = first.LineNumber
		column = first.ColumnNumber
		sourceFragment = GetSourceFragment(first.SourceFragment, column)
		first.SourceFragment = sourceFragment
	}

	var out *Error
	if errType == SyntaxErrorType {
		composed := GenerateErrorMessage(errType, description, documentName, line, column, sourceFragment)
		out = n.newError(KindCompilation, composed, d.Cause)
	} else {
		callStack := StringifyErrorLocationItems(items, true)
		composed := GenerateErrorMessageWithCallStack(errType, description, StringifyErrorLocationItems(items, false))
		out = n.newError(KindRuntime, composed, d.Cause)
		out.CallStack = callStack
	}
	out.Description = description
	out.Type = errType
	out.DocumentName = documentName
	out.LineNumber = line
	out.ColumnNumber = column
	out.SourceFragment = sourceFragment
	return out
}

func (n *Normalizer) parseLocation(block string) []ErrorLocationItem {
	parser := n.Parser
	if parser == nil {
		parser = DefaultLocationParser{}
	}
	items := parser.ParseLocation(block)
	if n.Sources == nil {
		return items
	}
	for i := range items {
		if items[i].SourceFragment != "" {
			continue
		}
		if text, ok := n.Sources.Line(items[i].DocumentName, items[i].LineNumber); ok {
			items[i].SourceFragment = text
		}
	}
	return items
}

// WrapLoadError reports a failure to load the engine's native component.
// remedies maps a native file name to the package that provides it.
func (n *Normalizer) WrapLoadError(err error, remedies map[string]string) *Error {
	original := ""
	if err != nil {
		original = err.Error()
	}
	notLoaded := fmt.Sprintf(MsgEngineNotLoaded, n.EngineName)

	var b strings.Builder
	b.WriteString(notLoaded)
	b.WriteByte(' ')
	if match := nativeLibraryLoadErrorRegex.FindStringSubmatch(original); match != nil {
		file := match[nativeLibraryLoadErrorRegex.SubexpIndex("file")]
		b.WriteString(fmt.Sprintf(MsgNativeLibraryNotFound, file))
		b.WriteByte(' ')
		if remedy, ok := remedies[file]; ok {
			b.WriteString(fmt.Sprintf(MsgInstallationRequired, remedy))
		} else {
			b.WriteString(fmt.Sprintf(MsgSeeOriginalErrorMessage, original))
		}
	} else {
		b.WriteString(fmt.Sprintf(MsgSeeOriginalErrorMessage, original))
	}
	return n.newError(KindEngineLoad, b.String(), err)
}

// WrapUnknownLoadError reports any other construction failure.
func (n *Normalizer) WrapUnknownLoadError(err error) *Error {
	original := ""
	if err != nil {
		original = err.Error()
	}
	message := fmt.Sprintf(MsgEngineNotLoaded, n.EngineName) + " " + fmt.Sprintf(MsgSeeMoreDetails, original)
	return n.newError(KindEngineLoad, message, err)
}

// NewRuntimeError builds a runtime error that did not come from the engine
// itself, such as an unsupported host value.
func (n *Normalizer) NewRuntimeError(message string, cause error) *Error {
	return n.newError(KindRuntime, message, cause)
}

// NewTypeConversionError stamps the engine identity on a failed conversion.
func (n *Normalizer) NewTypeConversionError(from, to string, cause error) *Error {
	ce := NewTypeConversionError(from, to, cause)
	ce.EngineName = n.EngineName
	ce.EngineVersion = n.EngineVersion
	return ce
}

// NewLoadError builds an engine_load error with a composed message.
func (n *Normalizer) NewLoadError(message string, cause error) *Error {
	return n.newError(KindEngineLoad, message, cause)
}

// FromPanic reports a Go panic that escaped the engine library as fatal.
func (n *Normalizer) FromPanic(recovered any) *Error {
	cause, ok := recovered.(error)
	if !ok {
		cause = fmt.Errorf("%v", recovered)
	}
	return n.newError(KindFatal, cause.Error(), cause)
}
