//go:build !quickjs

package quickjs

import "fmt"

func init() {
	probeBackend = func() error {
		return errNativeUnavailable()
	}
	newRuntimeBackend = func(constraints) (runtimeBackend, error) {
		return nil, errNativeUnavailable()
	}
}

func errNativeUnavailable() error {
	return fmt.Errorf(
		"Cannot load %s native library. Load failure information for %s: the binary was built without cgo QuickJS support",
		EngineName, nativeLibrary,
	)
}
