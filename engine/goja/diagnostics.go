package goja

import (
	"errors"
	"strings"

	"github.com/compozy/jsswitch/engine/core"
	gj "github.com/dop251/goja"
)

// anonymousDocuments are the names goja prints for scripts run without one.
var anonymousDocuments = []string{"<eval>", "(anonymous)"}

// exception is satisfied by *goja.Exception and the error types embedding it.
type exception interface {
	error
	Value() gj.Value
	String() string
}

func diagnose(err error) core.Diagnostic {
	var interrupted *gj.InterruptedError
	if errors.As(err, &interrupted) {
		return core.Diagnostic{Message: interrupted.Error(), Interrupted: true, Cause: err}
	}
	var ex exception
	if errors.As(err, &ex) {
		message := ex.Error()
		if v := ex.Value(); v != nil {
			message = v.String()
		}
		if strings.HasPrefix(message, core.SyntaxErrorType+": ") {
			if d, ok := core.ParserErrorDiagnostic(message, err); ok {
				return d
			}
		}
		return core.Diagnostic{Message: message, Details: ex.String(), Cause: err}
	}
	if d, ok := core.ParserErrorDiagnostic(err.Error(), err); ok {
		return d
	}
	return core.Diagnostic{Message: err.Error(), Cause: err}
}
