package core

import (
	"fmt"
	"math"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// ConvertTo converts an engine result to T. Direct assignments and lossless
// numeric conversions are handled first; anything else goes through a weakly
// typed mapstructure decode so objects and arrays can land in structs and
// typed slices.
func ConvertTo[T any](value any) (T, error) {
	var zero T
	if typed, ok := value.(T); ok {
		return typed, nil
	}
	target := reflect.TypeOf((*T)(nil)).Elem()

	if value == nil || IsUndefined(value) {
		return convertNullish[T](value, target)
	}

	source := reflect.ValueOf(value)
	if isNumericKind(source.Kind()) && isNumericKind(target.Kind()) {
		converted, err := convertNumber(source, target)
		if err != nil {
			return zero, NewTypeConversionError(typeName(value), target.String(), err)
		}
		return converted.Interface().(T), nil
	}
	if target.Kind() == reflect.String && (isNumericKind(source.Kind()) || source.Kind() == reflect.Bool) {
		out := reflect.New(target).Elem()
		out.SetString(fmt.Sprint(value))
		return out.Interface().(T), nil
	}

	var out T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return zero, NewTypeConversionError(typeName(value), target.String(), err)
	}
	if err := decoder.Decode(value); err != nil {
		return zero, NewTypeConversionError(typeName(value), target.String(), err)
	}
	return out, nil
}

func convertNullish[T any](value any, target reflect.Type) (T, error) {
	var zero T
	switch target.Kind() {
	case reflect.Interface:
		if value == nil {
			return zero, nil
		}
		if reflect.TypeOf(value).Implements(target) {
			return reflect.ValueOf(value).Interface().(T), nil
		}
		return zero, nil
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return zero, nil
	case reflect.String:
		text := "null"
		if value != nil {
			text = Undefined.String()
		}
		out := reflect.New(target).Elem()
		out.SetString(text)
		return out.Interface().(T), nil
	default:
		return zero, &Error{
			Kind:        KindTypeConversion,
			Message:     MsgNullToValueType,
			Description: MsgNullToValueType,
		}
	}
}

func convertNumber(source reflect.Value, target reflect.Type) (reflect.Value, error) {
	out := reflect.New(target).Elem()
	switch {
	case isFloatKind(source.Kind()):
		f := source.Float()
		switch {
		case isFloatKind(target.Kind()):
			if out.OverflowFloat(f) {
				return out, fmt.Errorf("value %v overflows %s", f, target)
			}
			out.SetFloat(f)
		case isIntKind(target.Kind()):
			// Range-check before converting; out-of-range float conversions are
			// implementation-defined. NaN fails the Trunc comparison.
			if f != math.Trunc(f) || f < math.MinInt64 || f >= 1<<63 || out.OverflowInt(int64(f)) {
				return out, fmt.Errorf("value %v is not representable as %s", f, target)
			}
			out.SetInt(int64(f))
		default:
			if f != math.Trunc(f) || f < 0 || f >= 1<<64 || out.OverflowUint(uint64(f)) {
				return out, fmt.Errorf("value %v is not representable as %s", f, target)
			}
			out.SetUint(uint64(f))
		}
	case isIntKind(source.Kind()):
		i := source.Int()
		switch {
		case isFloatKind(target.Kind()):
			out.SetFloat(float64(i))
		case isIntKind(target.Kind()):
			if out.OverflowInt(i) {
				return out, fmt.Errorf("value %d overflows %s", i, target)
			}
			out.SetInt(i)
		default:
			if i < 0 || out.OverflowUint(uint64(i)) {
				return out, fmt.Errorf("value %d is not representable as %s", i, target)
			}
			out.SetUint(uint64(i))
		}
	default:
		u := source.Uint()
		switch {
		case isFloatKind(target.Kind()):
			out.SetFloat(float64(u))
		case isIntKind(target.Kind()):
			if u > math.MaxInt64 || out.OverflowInt(int64(u)) {
				return out, fmt.Errorf("value %d overflows %s", u, target)
			}
			out.SetInt(int64(u))
		default:
			if out.OverflowUint(u) {
				return out, fmt.Errorf("value %d overflows %s", u, target)
			}
			out.SetUint(u)
		}
	}
	return out, nil
}

func isNumericKind(k reflect.Kind) bool {
	return isIntKind(k) || isUintKind(k) || isFloatKind(k)
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUintKind(k reflect.Kind) bool {
	switch k {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isFloatKind(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func typeName(v any) string {
	if v == nil {
		return "null"
	}
	return reflect.TypeOf(v).String()
}
