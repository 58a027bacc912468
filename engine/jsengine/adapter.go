package jsengine

import "reflect"

// Adapter is implemented once per engine family. An adapter owns exactly one
// runtime and returns *core.Error for every failure. Arguments reaching an
// adapter have already been validated by Engine.
type Adapter interface {
	Name() string
	Version() string
	SupportsScriptInterruption() bool
	SupportsGarbageCollection() bool

	// Evaluate runs expression in global scope; an empty documentName is an
	// anonymous script.
	Evaluate(expression, documentName string) (any, error)
	Execute(code, documentName string) error
	CallFunction(name string, args []any) (any, error)

	HasVariable(name string) (bool, error)
	GetVariable(name string) (any, error)
	SetVariable(name string, value any) error
	RemoveVariable(name string) error

	EmbedHostObject(name string, value any) error
	// EmbedHostType exposes typ as a global constructor returning a new zero value.
	EmbedHostType(name string, typ reflect.Type) error

	// Interrupt may be called from any goroutine while another is executing.
	Interrupt()
	CollectGarbage()
	// Dispose releases the runtime. Engine guarantees a single call.
	Dispose()
}

// HasVariableExpression is the guard evaluated by adapters without a native
// lookup primitive.
func HasVariableExpression(name string) string {
	return "(typeof " + name + " !== 'undefined');"
}
