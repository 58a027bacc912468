package goja

import (
	"context"
	"fmt"
	"reflect"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/compozy/jsswitch/engine/jsengine"
	"github.com/compozy/jsswitch/engine/settings"
	gj "github.com/dop251/goja"
)

// errInterrupted is the value handed to Runtime.Interrupt.
var errInterrupted = fmt.Errorf("%s", core.MsgScriptInterrupted)

// Adapter runs scripts on one goja runtime.
type Adapter struct {
	vm         *gj.Runtime
	normalizer *core.Normalizer
}

var _ jsengine.Adapter = (*Adapter)(nil)

type options struct {
	initializer   *jsengine.Initializer
	engineOptions []jsengine.Option
	sourceCache   int
}

type Option func(*options)

// WithInitializer replaces the package-wide lifecycle coordinator.
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

// WithSourceCacheSize bounds how many documents are kept for source fragments.
func WithSourceCacheSize(size int) Option {
	return func(o *options) {
		o.sourceCache = size
	}
}

// New constructs a goja-backed engine.
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

// NewAdapter constructs the bare adapter without the Engine wrapper.
func NewAdapter(s settings.Settings, opts ...Option) (*Adapter, error) {
	o := &options{initializer: initializer}
	for _, opt := range opts {
		opt(o)
	}
	return newAdapter(s, o)
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
	vm := gj.New()
	vm.SetFieldNameMapper(gj.TagFieldNameMapper("json", true))
	if c.maxCallStackSize > 0 {
		vm.SetMaxCallStackSize(c.maxCallStackSize)
	}
	if c.disableEval {
		if err := vm.GlobalObject().Delete("eval"); err != nil {
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
func (a *Adapter) run(code, documentName string) (gj.Value, error) {
	value, err := a.vm.RunScript(documentName, code)
	if err != nil {
		return nil, a.normalize(err)
	}
	return value, nil
}

func (a *Adapter) CallFunction(name string, args []any) (result any, err error) {
	defer a.recoverPanic(&err)
	fn, ok := gj.AssertFunction(a.vm.Get(name))
	if !ok {
		return nil, a.normalizer.NewRuntimeError(fmt.Sprintf(core.MsgFunctionNotFound, name), nil)
	}
	values := make([]gj.Value, len(args))
	for i, arg := range args {
		values[i] = a.toValue(arg)
	}
	value, callErr := fn(undefinedValue, values...)
	if callErr != nil {
		return nil, a.normalize(callErr)
	}
	return exportValue(value), nil
}

func (a *Adapter) HasVariable(name string) (exists bool, err error) {
	defer a.recoverPanic(&err)
	value, runErr := a.run(jsengine.HasVariableExpression(name), "")
	if runErr != nil {
		return false, runErr
	}
	return value.ToBoolean(), nil
}

func (a *Adapter) GetVariable(name string) (result any, err error) {
	defer a.recoverPanic(&err)
	return exportValue(a.vm.Get(name)), nil
}

func (a *Adapter) SetVariable(name string, value any) (err error) {
	defer a.recoverPanic(&err)
	if setErr := a.vm.Set(name, a.toValue(value)); setErr != nil {
		return a.normalize(setErr)
	}
	return nil
}

// RemoveVariable deletes the global property, falling back to assigning
// undefined for non-configurable bindings.
func (a *Adapter) RemoveVariable(name string) (err error) {
	defer a.recoverPanic(&err)
	global := a.vm.GlobalObject()
	if delErr := global.Delete(name); delErr == nil && global.Get(name) == nil {
		return nil
	}
	if setErr := a.vm.Set(name, undefinedValue); setErr != nil {
		return a.normalize(setErr)
	}
	return nil
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
	ctor := func(gj.ConstructorCall) *gj.Object {
		return vm.ToValue(reflect.New(typ).Interface()).ToObject(vm)
	}
	if setErr := vm.Set(name, ctor); setErr != nil {
		return a.normalizer.NewRuntimeError(fmt.Sprintf(core.MsgHostTypeNotSupported, typ.String()), setErr)
	}
	return nil
}

// Interrupt stops the running script. A request made while idle stops the
// next script instead.
func (a *Adapter) Interrupt() {
	a.vm.Interrupt(errInterrupted)
}

func (a *Adapter) CollectGarbage() {}

func (a *Adapter) Dispose() {
	a.vm.Interrupt(errInterrupted)
	a.normalizer.Sources.Purge()
}

func (a *Adapter) normalize(err error) error {
	d := diagnose(err)
	if d.Interrupted {
		a.vm.ClearInterrupt()
	}
	return a.normalizer.Normalize(d)
}

func (a *Adapter) recoverPanic(errp *error) {
	if r := recover(); r != nil {
		*errp = a.normalizer.FromPanic(r)
	}
}

func (a *Adapter) toValue(v any) gj.Value {
	switch {
	case v == nil:
		return gj.Null()
	case core.IsUndefined(v):
		return undefinedValue
	}
	if value, ok := v.(gj.Value); ok {
		return value
	}
	return a.vm.ToValue(v)
}

func exportValue(v gj.Value) any {
	switch {
	case v == nil, gj.IsUndefined(v):
		return core.Undefined
	case gj.IsNull(v):
		return nil
	}
	return v.Export()
}
