package core_test

import (
	"math"
	"testing"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertTo(t *testing.T) {
	t.Run("Should pass matching types through", func(t *testing.T) {
		got, err := core.ConvertTo[string]("hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", got)
	})
	t.Run("Should convert integral floats to ints", func(t *testing.T) {
		got, err := core.ConvertTo[int](float64(42))
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})
	t.Run("Should widen ints to floats", func(t *testing.T) {
		got, err := core.ConvertTo[float64](int64(7))
		require.NoError(t, err)
		assert.Equal(t, 7.0, got)
	})
	t.Run("Should reject fractional values for int targets", func(t *testing.T) {
		_, err := core.ConvertTo[int](3.5)
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
	})
	t.Run("Should reject overflow", func(t *testing.T) {
		_, err := core.ConvertTo[int8](int64(300))
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
		_, err = core.ConvertTo[uint](int64(-1))
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
	})
	t.Run("Should reject floats beyond the 64-bit range", func(t *testing.T) {
		_, err := core.ConvertTo[int64](1e19)
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
		_, err = core.ConvertTo[int](9.3e18)
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
		_, err = core.ConvertTo[int64](-1e19)
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
		_, err = core.ConvertTo[uint64](1e20)
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
		_, err = core.ConvertTo[int](math.Inf(1))
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
		_, err = core.ConvertTo[uint32](math.NaN())
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
	})
	t.Run("Should accept floats at the edge of the range", func(t *testing.T) {
		got, err := core.ConvertTo[int64](-9223372036854775808.0)
		require.NoError(t, err)
		assert.Equal(t, int64(math.MinInt64), got)
		u, err := core.ConvertTo[uint64](float64(1 << 63))
		require.NoError(t, err)
		assert.Equal(t, uint64(1<<63), u)
	})
	t.Run("Should stringify numbers and booleans", func(t *testing.T) {
		got, err := core.ConvertTo[string](true)
		require.NoError(t, err)
		assert.Equal(t, "true", got)
		got, err = core.ConvertTo[string](int64(5))
		require.NoError(t, err)
		assert.Equal(t, "5", got)
	})
	t.Run("Should decode objects into structs", func(t *testing.T) {
		type point struct {
			X int    `json:"x"`
			Y int    `json:"y"`
			L string `json:"label"`
		}
		got, err := core.ConvertTo[point](map[string]any{"x": float64(1), "y": int64(2), "label": "p"})
		require.NoError(t, err)
		assert.Equal(t, point{X: 1, Y: 2, L: "p"}, got)
	})
	t.Run("Should decode arrays into typed slices", func(t *testing.T) {
		got, err := core.ConvertTo[[]int]([]any{int64(1), float64(2), "3"})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, got)
	})
	t.Run("Should map null and undefined to nillable zero values", func(t *testing.T) {
		got, err := core.ConvertTo[map[string]any](nil)
		require.NoError(t, err)
		assert.Nil(t, got)
		anyValue, err := core.ConvertTo[any](core.Undefined)
		require.NoError(t, err)
		assert.True(t, core.IsUndefined(anyValue))
	})
	t.Run("Should stringify null and undefined", func(t *testing.T) {
		got, err := core.ConvertTo[string](core.Undefined)
		require.NoError(t, err)
		assert.Equal(t, "undefined", got)
		got, err = core.ConvertTo[string](nil)
		require.NoError(t, err)
		assert.Equal(t, "null", got)
	})
	t.Run("Should refuse null for value types", func(t *testing.T) {
		_, err := core.ConvertTo[int](nil)
		assert.EqualError(t, err, core.MsgNullToValueType)
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
	})
	t.Run("Should report undecodable values", func(t *testing.T) {
		_, err := core.ConvertTo[int]("abc")
		assert.True(t, core.IsKind(err, core.KindTypeConversion))
	})
}
