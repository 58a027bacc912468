package core

// UndefinedValue is the type of the host-side undefined sentinel.
type UndefinedValue struct{}

func (UndefinedValue) String() string {
	return "undefined"
}

// Undefined stands for JavaScript undefined on the host side. nil stands for
// null.
var Undefined = UndefinedValue{}

func IsUndefined(v any) bool {
	switch v.(type) {
	case UndefinedValue, *UndefinedValue:
		return true
	default:
		return false
	}
}
