package jsengine

import "github.com/compozy/jsswitch/engine/core"

// Evaluate evaluates expression and converts the result to T.
func Evaluate[T any](e *Engine, expression, documentName string) (T, error) {
	raw, err := e.Evaluate(expression, documentName)
	if err != nil {
		var zero T
		return zero, err
	}
	return convertResult[T](e, raw)
}

// CallFunction calls a global function and converts the result to T.
func CallFunction[T any](e *Engine, name string, args ...any) (T, error) {
	raw, err := e.CallFunction(name, args...)
	if err != nil {
		var zero T
		return zero, err
	}
	return convertResult[T](e, raw)
}

// GetVariable reads a global and converts it to T.
func GetVariable[T any](e *Engine, name string) (T, error) {
	raw, err := e.GetVariable(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return convertResult[T](e, raw)
}

func convertResult[T any](e *Engine, raw any) (T, error) {
	out, err := core.ConvertTo[T](raw)
	if err != nil {
		if ce, ok := err.(*core.Error); ok {
			ce.EngineName = e.Name()
			ce.EngineVersion = e.Version()
		}
		return out, err
	}
	return out, nil
}
