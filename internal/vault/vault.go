// Package vault protects provider secrets at rest on a best-effort basis.
//
// Protect and Reveal never fail the caller: when the platform mechanism is
// missing or an operation fails, the input comes back unchanged and the
// Result is marked Degraded. Secrets may therefore end up stored in
// plaintext, and a corrupted sealed value is treated as plaintext.
package vault

import (
	"errors"
	"path/filepath"

	"go.uber.org/zap"
)

// ErrNotSealed is reported by Reveal for values that carry no envelope of this vault.
var ErrNotSealed = errors.New("value is not sealed by this vault")

// Result is the outcome of a vault operation. Value is always usable.
type Result struct {
	Value    string
	Degraded bool  // Value is the unmodified input
	Err      error // why the operation degraded; nil otherwise
}

func passthrough(in string, err error) Result {
	return Result{Value: in, Degraded: true, Err: err}
}

// Vault is a reversible secret transform.
type Vault interface {
	Protect(plain string) Result
	Reveal(opaque string) Result
	Name() string
}

// Noop stores secrets as-is. Used when no protection mechanism is available.
type Noop struct{}

func (Noop) Name() string { return "none" }

func (Noop) Protect(plain string) Result {
	if plain == "" {
		return Result{}
	}
	return passthrough(plain, nil)
}

func (Noop) Reveal(opaque string) Result {
	if opaque == "" {
		return Result{}
	}
	return passthrough(opaque, nil)
}

// Open selects the platform vault, falling back to Noop when it cannot be initialised.
// dir holds any key material the platform vault needs.
func Open(dir string, logger *zap.Logger) Vault {
	if logger == nil {
		logger = zap.NewNop()
	}
	v, err := openPlatform(filepath.Clean(dir))
	if err != nil {
		logger.Warn("secret protection unavailable; secrets will be stored in plaintext", zap.Error(err))
		return Noop{}
	}
	logger.Debug("secret protection enabled", zap.String("vault", v.Name()))
	return v
}
