//go:build quickjs

package quickjs

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/compozy/jsswitch/engine/jsengine"
	"github.com/compozy/jsswitch/engine/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newNativeEngine(t *testing.T, s settings.Settings) *jsengine.Engine {
	t.Helper()
	e, err := jsengine.New(context.Background(), RegistryName, s)
	require.NoError(t, err)
	t.Cleanup(e.Dispose)
	return e
}

func TestQuickJS_NativeBackend(t *testing.T) {
	t.Run("Should evaluate and round-trip variables", func(t *testing.T) {
		e := newNativeEngine(t, settings.Default())
		require.NoError(t, e.SetVariable("point", map[string]any{"x": 1, "y": 2}))
		got, err := jsengine.Evaluate[int](e, "point.x + point.y", "sum.js")
		require.NoError(t, err)
		assert.Equal(t, 3, got)
		undefined, err := e.Evaluate("void 0", "")
		require.NoError(t, err)
		assert.True(t, core.IsUndefined(undefined))
	})
	t.Run("Should report thrown errors", func(t *testing.T) {
		e := newNativeEngine(t, settings.Default())
		err := e.Execute("null.x", "broken.js")
		requireKind(t, err, core.KindRuntime)
	})
	t.Run("Should stop a running loop on interrupt", func(t *testing.T) {
		e := newNativeEngine(t, settings.Default())
		go func() {
			time.Sleep(50 * time.Millisecond)
			e.Interrupt()
		}()
		err := e.Execute("for (;;) {}", "")
		requireKind(t, err, core.KindInterrupted)
	})
	t.Run("Should keep non-finite numbers and negative zero", func(t *testing.T) {
		e := newNativeEngine(t, settings.Default())
		inf, err := e.Evaluate("1 / 0", "")
		require.NoError(t, err)
		assert.True(t, math.IsInf(inf.(float64), 1))
		nan, err := e.Evaluate("0 / 0", "")
		require.NoError(t, err)
		assert.True(t, math.IsNaN(nan.(float64)))
		require.NoError(t, e.SetVariable("negZero", math.Copysign(0, -1)))
		isNegZero, err := e.Evaluate("Object.is(negZero, -0)", "")
		require.NoError(t, err)
		assert.Equal(t, true, isNegZero)
		require.NoError(t, e.SetVariable("limit", math.Inf(-1)))
		got, err := e.GetVariable("limit")
		require.NoError(t, err)
		assert.True(t, math.IsInf(got.(float64), -1))
	})
	t.Run("Should report thrown non-error values", func(t *testing.T) {
		e := newNativeEngine(t, settings.Default())
		err := e.Execute("throw 'plain';", "")
		ce := requireKind(t, err, core.KindGeneric)
		assert.Equal(t, uncaughtMessage, ce.Message)
	})
	t.Run("Should report out of memory as a runtime error", func(t *testing.T) {
		s := settings.Default()
		s.MaxHeapSize = 4 << 20
		e := newNativeEngine(t, s)
		err := e.Execute("new ArrayBuffer(64 * 1024 * 1024);", "oom.js")
		ce := requireKind(t, err, core.KindRuntime)
		assert.Equal(t, MemoryLimitMessage, ce.Message)
		got, err := jsengine.Evaluate[int](e, "40 + 2", "")
		require.NoError(t, err)
		assert.Equal(t, 42, got)
	})
	t.Run("Should remove eval when disabled", func(t *testing.T) {
		s := settings.Default()
		s.DisableEval = true
		e := newNativeEngine(t, s)
		ok, err := e.HasVariable("eval")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
