package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("Should append the engine identity", func(t *testing.T) {
		err := &core.Error{Kind: core.KindRuntime, EngineName: "Goja", EngineVersion: "1.2", Message: "Error: x"}
		assert.Equal(t, "Error: x (engine: Goja 1.2)", err.Error())
	})
	t.Run("Should print the bare message without an engine", func(t *testing.T) {
		err := core.NewArgumentError(core.MsgParameterEmpty, "expression")
		assert.Equal(t, "The parameter 'expression' must be a non-empty string.", err.Error())
	})
	t.Run("Should be discoverable through wrapping", func(t *testing.T) {
		cause := errors.New("root")
		err := fmt.Errorf("outer: %w", &core.Error{Kind: core.KindFatal, Cause: cause})
		assert.True(t, core.IsKind(err, core.KindFatal))
		assert.False(t, core.IsKind(err, core.KindRuntime))
		kind, ok := core.KindOf(err)
		assert.True(t, ok)
		assert.Equal(t, core.KindFatal, kind)
		assert.ErrorIs(t, err, cause)
	})
	t.Run("Should report no kind for foreign errors", func(t *testing.T) {
		_, ok := core.KindOf(errors.New("plain"))
		assert.False(t, ok)
	})
	t.Run("Should describe disposed engines", func(t *testing.T) {
		err := core.NewDisposedError("Otto")
		assert.Equal(t, core.KindDisposed, err.Kind)
		assert.Contains(t, err.Error(), "disposed Otto engine")
	})
	t.Run("Should report location presence", func(t *testing.T) {
		assert.False(t, (&core.Error{}).HasLocation())
		assert.True(t, (&core.Error{LineNumber: 1}).HasLocation())
	})
}

func TestValidateNames(t *testing.T) {
	t.Run("Should accept plain identifiers", func(t *testing.T) {
		for _, name := range []string{"x", "$el", "_private", "café", "n42"} {
			assert.NoError(t, core.ValidateVariableName(name), name)
		}
	})
	t.Run("Should reject malformed identifiers", func(t *testing.T) {
		for _, name := range []string{"1x", "a.b", "a-b", "a b", "x()"} {
			err := core.ValidateFunctionName(name)
			assert.True(t, core.IsKind(err, core.KindArgument), name)
		}
	})
	t.Run("Should report empty names as empty parameters", func(t *testing.T) {
		err := core.ValidateItemName("")
		assert.EqualError(t, err, "The parameter 'itemName' must be a non-empty string.")
	})
	t.Run("Should name the invalid identifier", func(t *testing.T) {
		err := core.ValidateVariableName("9lives")
		assert.EqualError(t, err, "The variable name '9lives' has incorrect format.")
	})
}
