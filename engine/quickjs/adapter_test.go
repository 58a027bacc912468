package quickjs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/compozy/jsswitch/engine/jsengine"
	"github.com/compozy/jsswitch/engine/settings"
	"github.com/compozy/jsswitch/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu          sync.Mutex
	scripts     []string
	eval        func(code, documentName string) (any, error)
	interrupts  int
	collections int
	closed      bool
}

func (b *fakeBackend) Eval(code, documentName string) (any, error) {
	b.mu.Lock()
	b.scripts = append(b.scripts, code)
	eval := b.eval
	b.mu.Unlock()
	if eval == nil {
		return core.Undefined, nil
	}
	return eval(code, documentName)
}

func (b *fakeBackend) Interrupt() { b.interrupts++ }
func (b *fakeBackend) RunGC()     { b.collections++ }
func (b *fakeBackend) Close()     { b.closed = true }

func (b *fakeBackend) last() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.scripts) == 0 {
		return ""
	}
	return b.scripts[len(b.scripts)-1]
}

func readyInitializer() *jsengine.Initializer {
	return jsengine.NewInitializer("quickjs-test", func() error { return nil })
}

func newFakeEngine(t *testing.T, backend *fakeBackend, opts ...Option) *jsengine.Engine {
	t.Helper()
	ctx := logger.ContextWithLogger(context.Background(), logger.NewLogger(logger.TestConfig()))
	opts = append([]Option{
		WithInitializer(readyInitializer()),
		withBackend(func(constraints) (runtimeBackend, error) { return backend, nil }),
	}, opts...)
	e, err := New(ctx, settings.Default(), opts...)
	require.NoError(t, err)
	t.Cleanup(e.Dispose)
	return e
}

func requireKind(t *testing.T, err error, kind core.ErrorKind) *core.Error {
	t.Helper()
	var ce *core.Error
	require.ErrorAs(t, err, &ce)
	require.Equal(t, kind, ce.Kind, ce.Message)
	return ce
}

func TestQuickJS_Construct(t *testing.T) {
	t.Run("Should expose engine capabilities", func(t *testing.T) {
		e := newFakeEngine(t, &fakeBackend{})
		assert.Equal(t, EngineName, e.Name())
		assert.True(t, e.SupportsScriptInterruption())
		assert.True(t, e.SupportsGarbageCollection())
	})
	t.Run("Should report a missing native library with a remedy", func(t *testing.T) {
		failing := jsengine.NewInitializer("quickjs-missing", func() error {
			return fmt.Errorf("Cannot load QuickJS native library. Load failure information for %s: not linked", nativeLibrary)
		})
		_, err := New(context.Background(), settings.Default(), WithInitializer(failing))
		ce := requireKind(t, err, core.KindEngineLoad)
		assert.Equal(t,
			"During loading of QuickJS error has occurred. Assembly or native library `libquickjs.a` not found. "+
				"Try to install the QuickJS cgo backend (build with -tags quickjs).",
			ce.Message,
		)
	})
	t.Run("Should wrap backend creation failures", func(t *testing.T) {
		_, err := NewAdapter(settings.Default(),
			WithInitializer(readyInitializer()),
			withBackend(func(constraints) (runtimeBackend, error) { return nil, errors.New("no memory") }),
		)
		ce := requireKind(t, err, core.KindEngineLoad)
		assert.Contains(t, ce.Message, "See the original error message: no memory")
	})
	t.Run("Should reject settings QuickJS cannot express", func(t *testing.T) {
		s := settings.Default()
		s.EnableDebugging = true
		s.MaxOldSpaceSize = 1 << 20
		_, err := NewAdapter(s, WithInitializer(readyInitializer()))
		ce := requireKind(t, err, core.KindEngineLoad)
		assert.True(t, errors.Is(err, settings.ErrUnsupportedSetting))
		assert.Equal(t,
			"The QuickJS engine does not support the following settings: MaxOldSpaceSize, EnableDebugging.",
			ce.Message,
		)
	})
	t.Run("Should hand memory and stack limits to the backend", func(t *testing.T) {
		s := settings.Default()
		s.MemoryLimit = 32 << 20
		s.MaxStackUsage = 256 << 10
		s.DisableEval = true
		var got constraints
		_, err := NewAdapter(s,
			WithInitializer(readyInitializer()),
			withBackend(func(c constraints) (runtimeBackend, error) {
				got = c
				return &fakeBackend{}, nil
			}),
		)
		require.NoError(t, err)
		assert.Equal(t, constraints{memoryLimit: 32 << 20, maxStackSize: 256 << 10, disableEval: true}, got)
	})
}

func TestQuickJS_Constraints(t *testing.T) {
	t.Run("Should prefer the heap ceiling over the memory limit", func(t *testing.T) {
		s := settings.Default()
		s.MaxHeapSize = 8 << 20
		s.MemoryLimit = 16 << 20
		assert.Equal(t, uint64(8<<20), toConstraints(s).memoryLimit)
	})
	t.Run("Should leave the runtime unlimited by default", func(t *testing.T) {
		assert.Zero(t, toConstraints(settings.Default()).memoryLimit)
	})
}

func TestQuickJS_Scripts(t *testing.T) {
	t.Run("Should render host values as literals", func(t *testing.T) {
		cases := []struct {
			in   any
			want string
		}{
			{nil, "null"},
			{core.Undefined, "undefined"},
			{"a\"b", `"a\"b"`},
			{3.5, "3.5"},
			{map[string]any{"x": 1}, `{"x":1}`},
			{math.NaN(), "NaN"},
			{math.Inf(1), "Infinity"},
			{float32(math.Inf(-1)), "-Infinity"},
			{math.Copysign(0, -1), "-0"},
			{0.0, "0"},
		}
		for _, tc := range cases {
			got, err := literal(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		}
	})
	t.Run("Should fail on values without a JSON form", func(t *testing.T) {
		_, err := literal(make(chan int))
		assert.Error(t, err)
	})
	t.Run("Should build a call with literal arguments", func(t *testing.T) {
		script, err := callScript("add", []any{1, "x", nil})
		require.NoError(t, err)
		assert.Equal(t, `add(1, "x", null);`, script)
	})
}

func TestQuickJS_Values(t *testing.T) {
	t.Run("Should return backend values", func(t *testing.T) {
		backend := &fakeBackend{eval: func(string, string) (any, error) { return float64(42), nil }}
		e := newFakeEngine(t, backend)
		got, err := jsengine.Evaluate[int](e, "6 * 7", "calc.js")
		require.NoError(t, err)
		assert.Equal(t, 42, got)
		assert.Equal(t, "6 * 7", backend.last())
	})
	t.Run("Should set variables through generated scripts", func(t *testing.T) {
		backend := &fakeBackend{}
		e := newFakeEngine(t, backend)
		require.NoError(t, e.SetVariable("cfg", map[string]any{"debug": true}))
		assert.Equal(t, `globalThis.cfg = {"debug":true};`, backend.last())
		require.NoError(t, e.RemoveVariable("cfg"))
		assert.Contains(t, backend.last(), "delete globalThis.cfg")
	})
	t.Run("Should set non-finite numbers as JavaScript literals", func(t *testing.T) {
		backend := &fakeBackend{}
		e := newFakeEngine(t, backend)
		require.NoError(t, e.SetVariable("x", math.Inf(1)))
		assert.Equal(t, "globalThis.x = Infinity;", backend.last())
		require.NoError(t, e.SetVariable("y", math.NaN()))
		assert.Equal(t, "globalThis.y = NaN;", backend.last())
	})
	t.Run("Should reject variables without a JSON form", func(t *testing.T) {
		e := newFakeEngine(t, &fakeBackend{})
		err := e.SetVariable("ch", make(chan int))
		ce := requireKind(t, err, core.KindRuntime)
		assert.Equal(t, "The variable 'ch' has a type `chan int`, which is not supported.", ce.Message)
	})
	t.Run("Should call functions with literal arguments", func(t *testing.T) {
		backend := &fakeBackend{eval: func(code, _ string) (any, error) {
			if code == isFunctionScript("add") {
				return true, nil
			}
			return float64(3), nil
		}}
		e := newFakeEngine(t, backend)
		got, err := jsengine.CallFunction[int](e, "add", 1, 2)
		require.NoError(t, err)
		assert.Equal(t, 3, got)
		assert.Equal(t, "add(1, 2);", backend.last())
	})
	t.Run("Should report missing functions", func(t *testing.T) {
		backend := &fakeBackend{eval: func(string, string) (any, error) { return false, nil }}
		e := newFakeEngine(t, backend)
		_, err := e.CallFunction("nope")
		ce := requireKind(t, err, core.KindRuntime)
		assert.Equal(t, "The function with the name 'nope' does not exist.", ce.Message)
	})
	t.Run("Should answer variable checks", func(t *testing.T) {
		backend := &fakeBackend{eval: func(string, string) (any, error) { return true, nil }}
		e := newFakeEngine(t, backend)
		ok, err := e.HasVariable("x")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, jsengine.HasVariableExpression("x"), backend.last())
	})
	t.Run("Should name the engine when a variable check is not boolean", func(t *testing.T) {
		backend := &fakeBackend{eval: func(string, string) (any, error) { return "yes", nil }}
		e := newFakeEngine(t, backend)
		_, err := e.HasVariable("x")
		ce := requireKind(t, err, core.KindTypeConversion)
		assert.Equal(t, EngineName, ce.EngineName)
		assert.Contains(t, ce.Error(), "(engine: "+EngineName)
	})
}

func TestQuickJS_Errors(t *testing.T) {
	t.Run("Should keep the anonymous source across generated scripts", func(t *testing.T) {
		backend := &fakeBackend{}
		backend.eval = func(code, _ string) (any, error) {
			switch code {
			case jsengine.HasVariableExpression("y"):
				return false, nil
			case isFunctionScript("f"):
				return true, nil
			case "f();":
				return nil, &scriptError{
					message: "TypeError: cannot read property 'x' of null",
					stack:   "    at f (<input>:1:23)\n    at <eval> (<input>:1:1)\n",
				}
			}
			return core.Undefined, nil
		}
		e := newFakeEngine(t, backend)
		require.NoError(t, e.Execute("function f() { return null.x; }", ""))
		ok, err := e.HasVariable("y")
		require.NoError(t, err)
		assert.False(t, ok)
		_, err = e.CallFunction("f")
		ce := requireKind(t, err, core.KindRuntime)
		assert.Empty(t, ce.DocumentName)
		assert.Equal(t, "function f() { return null.x; }", ce.SourceFragment)
	})
	t.Run("Should normalize runtime errors with a call stack", func(t *testing.T) {
		backend := &fakeBackend{eval: func(string, string) (any, error) {
			return nil, &scriptError{
				message: "TypeError: not a function",
				stack:   "    at f (app.js:2:3)\n    at <eval> (app.js:4:1)\n",
			}
		}}
		e := newFakeEngine(t, backend)
		err := e.Execute("function f() {\n  x();\n}\nf();", "app.js")
		ce := requireKind(t, err, core.KindRuntime)
		assert.Equal(t, "TypeError", ce.Type)
		assert.Equal(t, "not a function", ce.Description)
		assert.Equal(t, "app.js", ce.DocumentName)
		assert.Equal(t, 2, ce.LineNumber)
		assert.Equal(t, 3, ce.ColumnNumber)
		assert.Equal(t, "x();", ce.SourceFragment)
		assert.Equal(t, "   at f (app.js:2:3)\n   at app.js:4:1", ce.CallStack)
	})
	t.Run("Should classify syntax errors as compilation errors", func(t *testing.T) {
		backend := &fakeBackend{eval: func(string, string) (any, error) {
			return nil, &scriptError{
				message: "SyntaxError: unexpected token in expression: ')'",
				stack:   "    at <input>:1:5\n",
			}
		}}
		e := newFakeEngine(t, backend)
		_, err := e.Evaluate("1 + )", "")
		ce := requireKind(t, err, core.KindCompilation)
		assert.Empty(t, ce.DocumentName)
		assert.Equal(t, 1, ce.LineNumber)
		assert.Equal(t, 5, ce.ColumnNumber)
	})
	t.Run("Should report out of memory as a runtime error", func(t *testing.T) {
		backend := &fakeBackend{eval: func(string, string) (any, error) {
			return nil, &scriptError{message: "InternalError: out of memory", outOfMemory: true}
		}}
		e := newFakeEngine(t, backend)
		err := e.Execute("for (;;) a.push(1)", "")
		ce := requireKind(t, err, core.KindRuntime)
		assert.Equal(t, MemoryLimitMessage, ce.Message)
	})
	t.Run("Should report interruption", func(t *testing.T) {
		backend := &fakeBackend{eval: func(string, string) (any, error) {
			return nil, &scriptError{message: "InternalError: interrupted", interrupted: true}
		}}
		e := newFakeEngine(t, backend)
		err := e.Execute("for (;;) {}", "")
		requireKind(t, err, core.KindInterrupted)
	})
	t.Run("Should turn backend panics into fatal errors", func(t *testing.T) {
		backend := &fakeBackend{eval: func(string, string) (any, error) { panic("corrupted heap") }}
		e := newFakeEngine(t, backend)
		err := e.Execute("1", "")
		ce := requireKind(t, err, core.KindFatal)
		assert.Contains(t, ce.Message, "corrupted heap")
	})
}

func TestQuickJS_Lifecycle(t *testing.T) {
	t.Run("Should forward interrupt, collection and disposal", func(t *testing.T) {
		backend := &fakeBackend{}
		e := newFakeEngine(t, backend)
		e.Interrupt()
		e.CollectGarbage()
		e.Dispose()
		assert.Equal(t, 1, backend.interrupts)
		assert.Equal(t, 1, backend.collections)
		assert.True(t, backend.closed)
		assert.True(t, e.IsDisposed())
	})
}
