//go:build quickjs

package quickjs

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/compozy/jsswitch/engine/core"

	bq "github.com/buke/quickjs-go"
)

// anonymousDocumentName is passed to QuickJS for scripts without a name.
const anonymousDocumentName = "<input>"

// uncaughtMessage stands in when the thrown value is not an Error object.
const uncaughtMessage = "uncaught exception"

type nativeBackend struct {
	runtime     *bq.Runtime
	ctx         *bq.Context
	interrupted atomic.Bool
}

func init() {
	probeBackend = probeNative
	newRuntimeBackend = func(c constraints) (runtimeBackend, error) {
		return newNativeBackend(c)
	}
}

func probeNative() error {
	rt := bq.NewRuntime()
	if rt == nil {
		return fmt.Errorf("Cannot load %s native library. Load failure information for %s: runtime allocation failed",
			EngineName, nativeLibrary)
	}
	defer rt.Close()
	ctx := rt.NewContext()
	if ctx == nil {
		return fmt.Errorf("Cannot load %s native library. Load failure information for %s: context allocation failed",
			EngineName, nativeLibrary)
	}
	defer ctx.Close()
	v, err := ctx.Eval("1 + 1")
	defer v.Free()
	if err != nil {
		return fmt.Errorf("Cannot load %s native library. Load failure information for %s: %w",
			EngineName, nativeLibrary, err)
	}
	if !v.IsNumber() || v.ToInt32() != 2 {
		return errors.New("quickjs returned an unexpected probe result")
	}
	return nil
}

func newNativeBackend(c constraints) (*nativeBackend, error) {
	opts := make([]bq.Option, 0, 2)
	if c.memoryLimit > 0 {
		opts = append(opts, bq.WithMemoryLimit(c.memoryLimit))
	}
	if c.maxStackSize > 0 {
		opts = append(opts, bq.WithMaxStackSize(c.maxStackSize))
	}
	rt := bq.NewRuntime(opts...)
	if rt == nil {
		return nil, errors.New("failed to create QuickJS runtime")
	}
	ctx := rt.NewContext()
	if ctx == nil {
		rt.Close()
		return nil, errors.New("failed to create QuickJS context")
	}
	b := &nativeBackend{runtime: rt, ctx: ctx}
	rt.SetInterruptHandler(func() int {
		if b.interrupted.Load() {
			return 1
		}
		return 0
	})
	if c.disableEval {
		if _, err := b.Eval(disableEvalScript, ""); err != nil {
			b.Close()
			return nil, err
		}
	}
	return b, nil
}

func (b *nativeBackend) Eval(code, documentName string) (any, error) {
	if documentName == "" {
		documentName = anonymousDocumentName
	}
	v, err := b.ctx.Eval(code, bq.EvalFlagGlobal(true), bq.EvalFileName(documentName))
	defer v.Free()
	// Eval reports a nil error when the thrown value is not an Error object.
	if err != nil || v.IsException() {
		return nil, b.scriptError(err)
	}
	return exportValue(v), nil
}

func (b *nativeBackend) scriptError(err error) error {
	se := &scriptError{
		message:     uncaughtMessage,
		interrupted: b.interrupted.Swap(false),
		cause:       err,
	}
	if err == nil {
		return se
	}
	se.message = err.Error()
	var qe *bq.Error
	if errors.As(err, &qe) {
		se.stack = qe.Stack
		se.outOfMemory = qe.Name == "InternalError" && strings.Contains(qe.Message, "out of memory")
	}
	return se
}

// exportValue converts numbers directly so NaN, the infinities and negative
// zero survive; everything else crosses as JSON.
func exportValue(v bq.Value) any {
	switch {
	case v.IsUndefined():
		return core.Undefined
	case v.IsNull():
		return nil
	case v.IsNumber():
		return v.ToFloat64()
	case v.IsBool():
		return v.ToBool()
	case v.IsString():
		return v.ToString()
	}
	var out any
	if err := json.Unmarshal([]byte(v.JSONStringify()), &out); err != nil {
		return v.ToString()
	}
	return out
}

func (b *nativeBackend) Interrupt() {
	b.interrupted.Store(true)
}

func (b *nativeBackend) RunGC() {
	b.runtime.RunGC()
}

func (b *nativeBackend) Close() {
	if b.ctx != nil {
		b.ctx.Close()
		b.ctx = nil
	}
	if b.runtime != nil {
		b.runtime.Close()
		b.runtime = nil
	}
}
