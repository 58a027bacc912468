package jsengine

import (
	"context"
	"fmt"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/compozy/jsswitch/pkg/logger"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
)

// Engine is the caller-facing surface shared by every engine family. It
// validates arguments, guards disposal and records logs and metrics before
// delegating to its Adapter.
//
// An Engine is not safe for concurrent use, except for Interrupt and Dispose.
type Engine struct {
	adapter  Adapter
	id       string
	disposed atomic.Bool
	log      logger.Logger
	metrics  *engineMetrics
}

type Option func(*Engine)

// WithLogger overrides the logger taken from the construction context.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMeterProvider records metrics on mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) {
		if mp != nil {
			e.metrics = newEngineMetrics(mp.Meter(meterName))
		}
	}
}

// NewEngine wraps a constructed adapter.
func NewEngine(ctx context.Context, adapter Adapter, opts ...Option) *Engine {
	e := &Engine{
		adapter: adapter,
		id:      uuid.NewString(),
		log:     logger.FromContext(ctx),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = defaultRecorder()
	}
	e.log = e.log.With("engine", adapter.Name(), "engine_id", e.id)
	e.log.Debug("Engine created", "version", adapter.Version())
	return e
}

func (e *Engine) ID() string      { return e.id }
func (e *Engine) Name() string    { return e.adapter.Name() }
func (e *Engine) Version() string { return e.adapter.Version() }

func (e *Engine) SupportsScriptInterruption() bool {
	return e.adapter.SupportsScriptInterruption()
}

func (e *Engine) SupportsGarbageCollection() bool {
	return e.adapter.SupportsGarbageCollection()
}

func (e *Engine) IsDisposed() bool {
	return e.disposed.Load()
}

func (e *Engine) Evaluate(expression, documentName string) (result any, err error) {
	defer e.observe("evaluate", time.Now(), &err)
	if err := e.checkDisposed(); err != nil {
		return nil, err
	}
	if expression == "" {
		return nil, core.NewEmptyParameterError("expression")
	}
	if err := core.ValidateDocumentName(documentName); err != nil {
		return nil, err
	}
	return e.adapter.Evaluate(expression, documentName)
}

func (e *Engine) Execute(code, documentName string) (err error) {
	defer e.observe("execute", time.Now(), &err)
	if err := e.checkDisposed(); err != nil {
		return err
	}
	if code == "" {
		return core.NewEmptyParameterError("code")
	}
	if err := core.ValidateDocumentName(documentName); err != nil {
		return err
	}
	return e.adapter.Execute(code, documentName)
}

func (e *Engine) CallFunction(name string, args ...any) (result any, err error) {
	defer e.observe("call_function", time.Now(), &err)
	if err := e.checkDisposed(); err != nil {
		return nil, err
	}
	if err := core.ValidateFunctionName(name); err != nil {
		return nil, err
	}
	return e.adapter.CallFunction(name, args)
}

func (e *Engine) HasVariable(name string) (exists bool, err error) {
	defer e.observe("has_variable", time.Now(), &err)
	if err := e.checkDisposed(); err != nil {
		return false, err
	}
	if err := core.ValidateVariableName(name); err != nil {
		return false, err
	}
	return e.adapter.HasVariable(name)
}

func (e *Engine) GetVariable(name string) (value any, err error) {
	defer e.observe("get_variable", time.Now(), &err)
	if err := e.checkDisposed(); err != nil {
		return nil, err
	}
	if err := core.ValidateVariableName(name); err != nil {
		return nil, err
	}
	return e.adapter.GetVariable(name)
}

// SetVariable assigns a global. nil becomes null and core.Undefined becomes
// undefined.
func (e *Engine) SetVariable(name string, value any) (err error) {
	defer e.observe("set_variable", time.Now(), &err)
	if err := e.checkDisposed(); err != nil {
		return err
	}
	if err := core.ValidateVariableName(name); err != nil {
		return err
	}
	return e.adapter.SetVariable(name, value)
}

func (e *Engine) RemoveVariable(name string) (err error) {
	defer e.observe("remove_variable", time.Now(), &err)
	if err := e.checkDisposed(); err != nil {
		return err
	}
	if err := core.ValidateVariableName(name); err != nil {
		return err
	}
	return e.adapter.RemoveVariable(name)
}

// EmbedHostObject exposes a Go value under a global name. Primitive values
// belong in SetVariable.
func (e *Engine) EmbedHostObject(itemName string, value any) (err error) {
	defer e.observe("embed_host_object", time.Now(), &err)
	if err := e.checkDisposed(); err != nil {
		return err
	}
	if err := core.ValidateItemName(itemName); err != nil {
		return err
	}
	if value == nil {
		return core.NewNilParameterError("value")
	}
	if isPrimitive(reflect.TypeOf(value)) {
		return core.NewArgumentError(core.MsgHostObjectNotSupported, itemName, reflect.TypeOf(value).String())
	}
	return e.adapter.EmbedHostObject(itemName, value)
}

// EmbedHostType exposes a struct type as a global constructor.
func (e *Engine) EmbedHostType(itemName string, typ reflect.Type) (err error) {
	defer e.observe("embed_host_type", time.Now(), &err)
	if err := e.checkDisposed(); err != nil {
		return err
	}
	if err := core.ValidateItemName(itemName); err != nil {
		return err
	}
	if typ == nil {
		return core.NewNilParameterError("type")
	}
	if typ.Kind() != reflect.Struct {
		return core.NewArgumentError(core.MsgHostTypeNotSupported, typ.String())
	}
	return e.adapter.EmbedHostType(itemName, typ)
}

// Interrupt asks a running script to stop. It is a no-op on engines without
// interruption support and on disposed engines.
func (e *Engine) Interrupt() {
	if e.disposed.Load() || !e.adapter.SupportsScriptInterruption() {
		return
	}
	e.log.Debug("Interrupting script execution")
	e.adapter.Interrupt()
}

func (e *Engine) CollectGarbage() {
	if e.disposed.Load() || !e.adapter.SupportsGarbageCollection() {
		return
	}
	e.adapter.CollectGarbage()
}

// Dispose releases the engine. Only the first call has any effect.
func (e *Engine) Dispose() {
	if !e.disposed.CompareAndSwap(false, true) {
		return
	}
	e.adapter.Dispose()
	e.log.Debug("Engine disposed")
}

func (e *Engine) checkDisposed() error {
	if e.disposed.Load() {
		return core.NewDisposedError(e.adapter.Name())
	}
	return nil
}

func (e *Engine) observe(operation string, started time.Time, errp *error) {
	err := *errp
	e.metrics.recordOperation(context.Background(), e.adapter.Name(), operation, time.Since(started), err)
	if err == nil {
		return
	}
	kind, _ := core.KindOf(err)
	e.log.Debug("Engine operation failed", "operation", operation, "kind", kind, "error", err)
}

func isPrimitive(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

func (e *Engine) String() string {
	return fmt.Sprintf("%s %s (%s)", e.adapter.Name(), e.adapter.Version(), e.id)
}
