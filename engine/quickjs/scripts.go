package quickjs

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"github.com/compozy/jsswitch/engine/core"
)

const disableEvalScript = "delete globalThis.eval;"

// literal renders a host value as a JavaScript expression. Values cross the
// boundary as JSON, so host objects arrive as plain data.
func literal(v any) (string, error) {
	switch {
	case v == nil:
		return "null", nil
	case core.IsUndefined(v):
		return "undefined", nil
	}
	if lit, ok := numberLiteral(v); ok {
		return lit, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// numberLiteral covers the floats JSON cannot carry.
func numberLiteral(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Float32 && rv.Kind() != reflect.Float64 {
		return "", false
	}
	f := rv.Float()
	switch {
	case math.IsNaN(f):
		return "NaN", true
	case math.IsInf(f, 1):
		return "Infinity", true
	case math.IsInf(f, -1):
		return "-Infinity", true
	case f == 0 && math.Signbit(f):
		return "-0", true
	}
	return "", false
}

func getScript(name string) string {
	return "(typeof " + name + " === 'undefined' ? undefined : " + name + ");"
}

func setScript(name string, value any) (string, error) {
	lit, err := literal(value)
	if err != nil {
		return "", err
	}
	return "globalThis." + name + " = " + lit + ";", nil
}

// removeScript deletes the global, or clears it when the binding is not
// configurable.
func removeScript(name string) string {
	return "if (!(delete globalThis." + name + ") || typeof " + name + " !== 'undefined') { " +
		name + " = undefined; }"
}

func isFunctionScript(name string) string {
	return "(typeof " + name + " === 'function');"
}

func callScript(name string, args []any) (string, error) {
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('(')
	for i, arg := range args {
		lit, err := literal(arg)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(lit)
	}
	b.WriteString(");")
	return b.String(), nil
}

// hostTypeScript defines a constructor returning a fresh zero value of typ.
func hostTypeScript(name string, typ reflect.Type) (string, error) {
	lit, err := literal(reflect.New(typ).Interface())
	if err != nil {
		return "", err
	}
	return "globalThis." + name + " = function " + name + "() { return " + lit + "; };", nil
}
