package quickjs

import (
	"context"
	"fmt"
	"reflect"

	"github.com/compozy/jsswitch/engine/core"
	"github.com/compozy/jsswitch/engine/jsengine"
	"github.com/compozy/jsswitch/engine/settings"
)

// Adapter runs scripts on one QuickJS runtime and context.
type Adapter struct {
	backend    runtimeBackend
	normalizer *core.Normalizer
}

var _ jsengine.Adapter = (*Adapter)(nil)

type options struct {
	initializer   *jsengine.Initializer
	engineOptions []jsengine.Option
	sourceCache   int
	newBackend    func(constraints) (runtimeBackend, error)
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

// New constructs a QuickJS-backed engine. Binaries built without the
// quickjs tag fail here with an engine_load error.
func New(ctx context.Context, s settings.Settings, opts ...Option) (*jsengine.Engine, error) {
	o := &options{initializer: initializer, newBackend: newRuntimeBackend}
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
	o := &options{initializer: initializer, newBackend: newRuntimeBackend}
	for _, opt := range opts {
		opt(o)
	}
	return newAdapter(s, o)
}

// withBackend swaps the runtime factory.
func withBackend(factory func(constraints) (runtimeBackend, error)) Option {
	return func(o *options) {
		o.newBackend = factory
	}
}

func newAdapter(s settings.Settings, o *options) (adapter *Adapter, err error) {
	n := &core.Normalizer{
		EngineName:         EngineName,
		MemoryLimitMessage: MemoryLimitMessage,
		Parser:             newLocationParser(),
	}
	if err := o.initializer.EnsureInitialized(); err != nil {
		return nil, n.WrapLoadError(err, loadRemedies)
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
	backend, err := o.newBackend(toConstraints(s))
	if err != nil {
		return nil, n.WrapLoadError(err, loadRemedies)
	}
	n.Sources = core.NewSourceCache(o.sourceCache)
	return &Adapter{backend: backend, normalizer: n}, nil
}

func (a *Adapter) Name() string                     { return EngineName }
func (a *Adapter) Version() string                  { return a.normalizer.EngineVersion }
func (a *Adapter) SupportsScriptInterruption() bool { return true }
func (a *Adapter) SupportsGarbageCollection() bool  { return true }

func (a *Adapter) Evaluate(expression, documentName string) (result any, err error) {
	defer a.recoverPanic(&err)
	a.normalizer.Sources.Remember(documentName, expression)
	return a.eval(expression, documentName)
}

func (a *Adapter) Execute(code, documentName string) (err error) {
	defer a.recoverPanic(&err)
	a.normalizer.Sources.Remember(documentName, code)
	_, err = a.eval(code, documentName)
	return err
}

// eval runs code without recording it as a document source, so generated
// scripts never shadow the caller's anonymous script.
func (a *Adapter) eval(code, documentName string) (any, error) {
	value, err := a.backend.Eval(code, documentName)
	if err != nil {
		return nil, a.normalizer.Normalize(diagnose(err))
	}
	return value, nil
}

func (a *Adapter) CallFunction(name string, args []any) (result any, err error) {
	defer a.recoverPanic(&err)
	isFunction, err := a.evalBool(isFunctionScript(name))
	if err != nil {
		return nil, err
	}
	if !isFunction {
		return nil, a.normalizer.NewRuntimeError(fmt.Sprintf(core.MsgFunctionNotFound, name), nil)
	}
	for _, arg := range args {
		if _, litErr := literal(arg); litErr != nil {
			return nil, a.normalizer.NewRuntimeError(
				fmt.Sprintf(core.MsgArgumentNotSupported, name, reflect.TypeOf(arg).String()),
				litErr,
			)
		}
	}
	script, err := callScript(name, args)
	if err != nil {
		return nil, a.normalizer.NewRuntimeError(err.Error(), err)
	}
	return a.eval(script, "")
}

func (a *Adapter) HasVariable(name string) (exists bool, err error) {
	defer a.recoverPanic(&err)
	return a.evalBool(jsengine.HasVariableExpression(name))
}

func (a *Adapter) GetVariable(name string) (result any, err error) {
	defer a.recoverPanic(&err)
	return a.eval(getScript(name), "")
}

func (a *Adapter) SetVariable(name string, value any) (err error) {
	defer a.recoverPanic(&err)
	script, litErr := setScript(name, value)
	if litErr != nil {
		return a.normalizer.NewRuntimeError(
			fmt.Sprintf(core.MsgVariableNotSupported, name, reflect.TypeOf(value).String()),
			litErr,
		)
	}
	_, err = a.eval(script, "")
	return err
}

func (a *Adapter) RemoveVariable(name string) (err error) {
	defer a.recoverPanic(&err)
	_, err = a.eval(removeScript(name), "")
	return err
}

// EmbedHostObject copies the object's exported data into the global; QuickJS
// holds no reference to Go memory.
func (a *Adapter) EmbedHostObject(name string, value any) (err error) {
	defer a.recoverPanic(&err)
	script, litErr := setScript(name, value)
	if litErr != nil {
		return a.normalizer.NewRuntimeError(
			fmt.Sprintf(core.MsgHostObjectNotSupported, name, reflect.TypeOf(value).String()),
			litErr,
		)
	}
	_, err = a.eval(script, "")
	return err
}

func (a *Adapter) EmbedHostType(name string, typ reflect.Type) (err error) {
	defer a.recoverPanic(&err)
	script, litErr := hostTypeScript(name, typ)
	if litErr != nil {
		return a.normalizer.NewRuntimeError(fmt.Sprintf(core.MsgHostTypeNotSupported, typ.String()), litErr)
	}
	_, err = a.eval(script, "")
	return err
}

func (a *Adapter) Interrupt() {
	a.backend.Interrupt()
}

func (a *Adapter) CollectGarbage() {
	a.backend.RunGC()
}

func (a *Adapter) Dispose() {
	a.backend.Close()
	a.normalizer.Sources.Purge()
}

func (a *Adapter) evalBool(script string) (bool, error) {
	value, err := a.eval(script, "")
	if err != nil {
		return false, err
	}
	b, ok := value.(bool)
	if !ok {
		return false, a.normalizer.NewTypeConversionError(fmt.Sprintf("%T", value), "bool", nil)
	}
	return b, nil
}

func (a *Adapter) recoverPanic(errp *error) {
	if r := recover(); r != nil {
		*errp = a.normalizer.FromPanic(r)
	}
}
