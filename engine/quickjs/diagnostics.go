package quickjs

import (
	"errors"

	"github.com/compozy/jsswitch/engine/core"
)

var (
	anonymousDocuments = []string{"<input>", "<eval>", "<anonymous>", "(anonymous)"}
	// QuickJS names top-level code after the evaluation entry point.
	anonymousFunctions = map[string]struct{}{"<eval>": {}, "<anonymous>": {}}
)

// locationParser reads QuickJS stack text, which omits the column on older
// runtimes and names top-level frames <eval>.
type locationParser struct {
	core.DefaultLocationParser
}

func newLocationParser() locationParser {
	return locationParser{core.DefaultLocationParser{AnonymousDocuments: anonymousDocuments}}
}

func (p locationParser) ParseLocation(block string) []core.ErrorLocationItem {
	items := p.DefaultLocationParser.ParseLocation(block)
	for i := range items {
		if _, ok := anonymousFunctions[items[i].FunctionName]; ok {
			items[i].FunctionName = ""
		}
	}
	return items
}

func diagnose(err error) core.Diagnostic {
	var se *scriptError
	if !errors.As(err, &se) {
		return core.Diagnostic{Message: err.Error(), Cause: err}
	}
	switch {
	case se.interrupted:
		return core.Diagnostic{Message: se.message, Interrupted: true, Cause: err}
	case se.outOfMemory:
		return core.Diagnostic{Message: MemoryLimitMessage, Fatal: true, Cause: err}
	}
	d := core.Diagnostic{Message: se.message, Cause: err}
	if se.stack != "" {
		d.Details = se.message + "\n" + se.stack
	}
	return d
}
