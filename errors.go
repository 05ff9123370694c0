package stacktrim

import "fmt"

// ConfigError reports a failure to load pruner configuration from a file.
//
// Pruning itself never fails: a Pruner with broken configuration falls back
// to its defaults, and read errors during pruning are emitted into the
// output rather than returned. ConfigError is therefore the only error type
// the package produces besides write errors passed through by PruneTo.
type ConfigError struct {
	Path string // File the configuration was loaded from
	Err  error  // Underlying cause
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("stacktrim: loading config %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying cause, for errors.Is and errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
