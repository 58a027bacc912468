package settings

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultDebugPort is the TCP port used for remote debugging when none is set.
const DefaultDebugPort = 9222

// Is64BitProcess reports whether the host process uses 64-bit pointers.
const Is64BitProcess = bits.UintSize == 64

// ErrUnsupportedSetting is wrapped by construction errors caused by settings
// the selected engine cannot express.
var ErrUnsupportedSetting = errors.New("unsupported engine setting")

// Settings holds engine-independent construction options. Values are copied
// into an engine when it is constructed and never read again afterwards.
type Settings struct {
	// Memory ceilings in bytes. Zero means the engine default.
	MaxNewSpaceSize uint64 `koanf:"max_new_space_size" json:"max_new_space_size" yaml:"max_new_space_size"`
	MaxOldSpaceSize uint64 `koanf:"max_old_space_size" json:"max_old_space_size" yaml:"max_old_space_size"`
	MaxHeapSize     uint64 `koanf:"max_heap_size"      json:"max_heap_size"      yaml:"max_heap_size"`
	// MemoryLimit is the hard allocation limit; the default is the platform maximum.
	MemoryLimit uint64 `koanf:"memory_limit" json:"memory_limit" yaml:"memory_limit"`
	// MaxStackUsage bounds the call stack. Interpreters read it as a depth in frames.
	MaxStackUsage          uint64        `koanf:"max_stack_usage"           json:"max_stack_usage"           yaml:"max_stack_usage"`
	HeapSizeSampleInterval time.Duration `koanf:"heap_size_sample_interval" json:"heap_size_sample_interval" yaml:"heap_size_sample_interval" validate:"min=0"`

	EnableDebugging                 bool `koanf:"enable_debugging"                   json:"enable_debugging"                   yaml:"enable_debugging"`
	EnableRemoteDebugging           bool `koanf:"enable_remote_debugging"            json:"enable_remote_debugging"            yaml:"enable_remote_debugging"`
	AwaitDebuggerAndPauseOnStart    bool `koanf:"await_debugger_and_pause_on_start"  json:"await_debugger_and_pause_on_start"  yaml:"await_debugger_and_pause_on_start"`
	DisableGlobalMembers            bool `koanf:"disable_global_members"             json:"disable_global_members"             yaml:"disable_global_members"`
	DisableEval                     bool `koanf:"disable_eval"                       json:"disable_eval"                       yaml:"disable_eval"`
	DisableNativeCodeGeneration     bool `koanf:"disable_native_code_generation"     json:"disable_native_code_generation"     yaml:"disable_native_code_generation"`
	DisableExecutablePageAllocation bool `koanf:"disable_executable_page_allocation" json:"disable_executable_page_allocation" yaml:"disable_executable_page_allocation"`
	DisableBackgroundWork           bool `koanf:"disable_background_work"            json:"disable_background_work"            yaml:"disable_background_work"`
	DisableFatalOnOOM               bool `koanf:"disable_fatal_on_oom"               json:"disable_fatal_on_oom"               yaml:"disable_fatal_on_oom"`
	EnableExperimentalFeatures      bool `koanf:"enable_experimental_features"       json:"enable_experimental_features"       yaml:"enable_experimental_features"`

	DebugPort int `koanf:"debug_port" json:"debug_port" yaml:"debug_port" validate:"min=0,max=65535"`
}

// DefaultMemoryLimit returns the platform maximum used as "no limit".
func DefaultMemoryLimit() uint64 {
	if Is64BitProcess {
		return math.MaxUint64
	}
	return math.MaxUint32
}

// Default returns settings with every option at its engine-neutral default.
func Default() Settings {
	return Settings{
		MemoryLimit: DefaultMemoryLimit(),
		DebugPort:   DefaultDebugPort,
	}
}

// HasMemoryLimit reports whether MemoryLimit differs from the platform default.
func (s Settings) HasMemoryLimit() bool {
	return s.MemoryLimit != 0 && s.MemoryLimit != DefaultMemoryLimit()
}

// Validate checks field ranges.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid engine settings: %s", strings.Join(msgs, ", "))
		}
		return fmt.Errorf("invalid engine settings: %w", err)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())
