package otto

import (
	"errors"
	"strings"

	"github.com/compozy/jsswitch/engine/core"
	ot "github.com/robertkrimen/otto"
)

// anonymousDocuments are the names otto prints for scripts run without one.
var anonymousDocuments = []string{"<anonymous>", "(anonymous)"}

func diagnose(err error) core.Diagnostic {
	var oe *ot.Error
	if errors.As(err, &oe) {
		message := oe.Error()
		if strings.HasPrefix(message, core.SyntaxErrorType+": ") {
			if d, ok := core.ParserErrorDiagnostic(message, err); ok {
				return d
			}
		}
		return core.Diagnostic{Message: message, Details: oe.String(), Cause: err}
	}
	// Parser errors are not *otto.Error and carry only a position.
	if d, ok := core.ParserErrorDiagnostic(err.Error(), err); ok {
		return d
	}
	return core.Diagnostic{Message: err.Error(), Cause: err}
}
