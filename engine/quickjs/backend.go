package quickjs

// runtimeBackend is the minimal surface the adapter needs from a QuickJS
// runtime. Every other operation is expressed as a generated script.
type runtimeBackend interface {
	// Eval runs code in global scope and exports the completion value.
	// JavaScript undefined is returned as core.Undefined.
	Eval(code, documentName string) (any, error)
	// Interrupt may be called from any goroutine.
	Interrupt()
	RunGC()
	Close()
}

// Provided by backend_quickjs.go or backend_noquickjs.go.
var (
	probeBackend      func() error
	newRuntimeBackend func(c constraints) (runtimeBackend, error)
)

// scriptError is the raw failure reported by a backend.
type scriptError struct {
	message     string
	stack       string
	interrupted bool
	outOfMemory bool
	cause       error
}

func (e *scriptError) Error() string {
	return e.message
}

func (e *scriptError) Unwrap() error {
	return e.cause
}
