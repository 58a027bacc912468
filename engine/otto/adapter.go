package otto

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/compozy/jsswitch/engine/jsengine"
	"github.com/compozy/jsswitch/engine/settings"
	ot "github.com/robertkrimen/otto"
)

// errHalt is panicked from the interrupt channel and recovered at the adapter
// boundary.
var errHalt = errors.New(core.MsgScriptInterrupted)

// Adapter runs scripts on one otto interpreter.
type Adapter struct {
	vm         *ot.Otto
	normalizer *core.Normalizer
}

var _ jsengine.Adapter = (*Adapter)(nil)

type options struct {
	initializer   *jsengine.Initializer
	engineOptions []jsengine.Option
	sourceCache   int
}

type Option func(*options)

func WithInitializer(i *jsengine.Initializer) Option {
	return func(o *options) {
		o.initializer = i
	}
}

func WithEngineOptions(opts ...jsengine.Option) Option {
	return func(o *options) {
		o.engineOptions = append(o.engineOptions, opts...)
	}
}

func WithSourceCacheSize(size int) Option {
	return func(o *options) {
		o.sourceCache = size
	}
}

// New constructs an otto-backed engine.
func New(ctx context.Context, s settings.Settings, opts ...Option) (*jsengine.Engine, error) {
	o := &options{initializer: initializer}
	for _, opt := range opts {
		opt(o)
	}
	adapter, err := newAdapter(s, o)
	if err != nil {
		return nil, err
	}
	return jsengine.NewEngine(ctx, adapter, o.engineOptions...), nil
}

func newAdapter(s settings.Settings, o *options) (adapter *Adapter, err error) {
	n := &core.Normalizer{
		EngineName: EngineName,
		Parser:     core.DefaultLocationParser{AnonymousDocuments: anonymousDocuments},
	}
	if err := o.initializer.EnsureInitialized(); err != nil {
		return nil, n.WrapLoadError(err, nil)
	}
	n.EngineVersion = engineVersion
	if err := jsengine.CheckSettings(n, s, supportedFeatures...); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			adapter, err = nil, n.WrapUnknownLoadError(n.FromPanic(r))
		}
	}()

	c := toConstraints(s)
	vm := ot.New()
	vm.Interrupt = make(chan func(), 1)
	if c.stackDepthLimit > 0 {
		vm.SetStackDepthLimit(c.stackDepthLimit)
	}
	if c.disableEval {
		if err := vm.Set("eval", undefinedValue); err != nil {
			return nil, n.WrapUnknownLoadError(err)
		}
	}
	n.Sources = core.NewSourceCache(o.sourceCache)
	return &Adapter{vm: vm, normalizer: n}, nil
}

func (a *Adapter) Name() string                     { return EngineName }
func (a *Adapter) Version() string                  { return a.normalizer.EngineVersion }
func (a *Adapter) SupportsScriptInterruption() bool { return true }
func (a *Adapter) SupportsGarbageCollection() bool  { return false }

func (a *Adapter) Evaluate(expression, documentName string) (result any, err error) {
	defer a.recoverPanic(&err)
	a.normalizer.Sources.Remember(documentName, expression)
	value, runErr := a.run(expression, documentName)
	if runErr != nil {
		return nil, runErr
	}
	return exportValue(value), nil
}

func (a *Adapter) Execute(code, documentName string) (err error) {
	defer a.recoverPanic(&err)
	a.normalizer.Sources.Remember(documentName, code)
	if _, runErr := a.run(code, documentName); runErr != nil {
		return runErr
	}
	return nil
}

// run leaves the source cache to the caller; guard expressions must not
// replace the user's anonymous script.
func (a *Adapter) run(code, documentName string) (ot.Value, error) {
	script, err := a.vm.Compile(documentName, code)
	if err != nil {
		return undefinedValue, a.normalizer.Normalize(diagnose(err))
	}
	value, err := a.vm.Run(script)
	if err != nil {
		return undefinedValue, a.normalizer.Normalize(diagnose(err))
	}
	return value, nil
}

func (a *Adapter) CallFunction(name string, args []any) (result any, err error) {
	defer a.recoverPanic(&err)
	fn, getErr := a.vm.Get(name)
	if getErr != nil {
		return nil, a.normalizer.Normalize(diagnose(getErr))
	}
	if !fn.IsFunction() {
		return nil, a.normalizer.NewRuntimeError(fmt.Sprintf(core.MsgFunctionNotFound, name), nil)
	}
	mapped := make([]any, len(args))
	for i, arg := range args {
		mapped[i] = toValue(arg)
	}
	value, callErr := fn.Call(undefinedValue, mapped...)
	if callErr != nil {
		return nil, a.normalizer.Normalize(diagnose(callErr))
	}
	return exportValue(value), nil
}

func (a *Adapter) HasVariable(name string) (exists bool, err error) {
	defer a.recoverPanic(&err)
	value, runErr := a.run(jsengine.HasVariableExpression(name), "")
	if runErr != nil {
		return false, runErr
	}
	exists, convErr := value.ToBoolean()
	if convErr != nil {
		return false, a.normalizer.NewTypeConversionError(value.Class(), "bool", convErr)
	}
	return exists, nil
}

func (a *Adapter) GetVariable(name string) (result any, err error) {
	defer a.recoverPanic(&err)
	value, getErr := a.vm.Get(name)
	if getErr != nil {
		return nil, a.normalizer.Normalize(diagnose(getErr))
	}
	return exportValue(value), nil
}

func (a *Adapter) SetVariable(name string, value any) (err error) {
	defer a.recoverPanic(&err)
	if setErr := a.vm.Set(name, toValue(value)); setErr != nil {
		return a.normalizer.Normalize(diagnose(setErr))
	}
	return nil
}

// RemoveVariable assigns undefined; otto has no way to delete a global binding.
func (a *Adapter) RemoveVariable(name string) error {
	return a.SetVariable(name, core.Undefined)
}

func (a *Adapter) EmbedHostObject(name string, value any) (err error) {
	defer a.recoverPanic(&err)
	if setErr := a.vm.Set(name, value); setErr != nil {
		return a.normalizer.NewRuntimeError(
			fmt.Sprintf(core.MsgHostObjectNotSupported, name, reflect.TypeOf(value).String()),
			setErr,
		)
	}
	return nil
}

func (a *Adapter) EmbedHostType(name string, typ reflect.Type) (err error) {
	defer a.recoverPanic(&err)
	vm := a.vm
	ctor := func(ot.FunctionCall) ot.Value {
		value, toErr := vm.ToValue(reflect.New(typ).Interface())
		if toErr != nil {
			panic(vm.MakeTypeError(toErr.Error()))
		}
		return value
	}
	if setErr := vm.Set(name, ctor); setErr != nil {
		return a.normalizer.NewRuntimeError(fmt.Sprintf(core.MsgHostTypeNotSupported, typ.String()), setErr)
	}
	return nil
}

// Interrupt queues a halting callback. otto drains it between statements; a
// request made while idle halts the next script instead.
func (a *Adapter) Interrupt() {
	select {
	case a.vm.Interrupt <- func() { panic(errHalt) }:
	default:
	}
}

func (a *Adapter) CollectGarbage() {}

func (a *Adapter) Dispose() {
	a.Interrupt()
	a.normalizer.Sources.Purge()
}

func (a *Adapter) recoverPanic(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	if err, ok := r.(error); ok && errors.Is(err, errHalt) {
		a.drainInterrupts()
		*errp = a.normalizer.Normalize(core.Diagnostic{Interrupted: true, Cause: err})
		return
	}
	*errp = a.normalizer.FromPanic(r)
}

func (a *Adapter) drainInterrupts() {
	for {
		select {
		case <-a.vm.Interrupt:
		default:
			return
		}
	}
}

func toValue(v any) any {
	switch {
	case v == nil:
		return ot.NullValue()
	case core.IsUndefined(v):
		return undefinedValue
	}
	return v
}

func exportValue(v ot.Value) any {
	switch {
	case v.IsUndefined():
		return core.Undefined
	case v.IsNull():
		return nil
	}
	exported, err := v.Export()
	if err != nil {
		return v.String()
	}
	return exported
}
