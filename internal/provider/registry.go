package provider

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/snapetech/strmsync/internal/vault"
)

var (
	// ErrNameRequired is returned by Upsert for a provider without a name.
	ErrNameRequired = errors.New("provider name is required")
	// ErrNotFound is returned when no provider has the requested name.
	ErrNotFound = errors.New("provider not found")
)

// Provider is a named remote catalog account. Secret holds the vault-protected form.
type Provider struct {
	Name          string `json:"name"`
	ServerBaseURL string `json:"server"`
	Username      string `json:"username"`
	Secret        string `json:"password"`
}

// Credentials is a provider with its secret revealed, ready for catalog requests.
type Credentials struct {
	Name     string
	Server   string // trailing slash trimmed
	Username string
	Secret   string
}

// Registry owns the provider list. Edits happen one at a time; it is not safe for concurrent use.
type Registry struct {
	providers []Provider
	vault     vault.Vault
	logger    *zap.Logger
}

// NewRegistry wraps an existing (already protected) provider list.
func NewRegistry(providers []Provider, v vault.Vault, logger *zap.Logger) *Registry {
	if v == nil {
		v = vault.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		providers: append([]Provider(nil), providers...),
		vault:     v,
		logger:    logger,
	}
}

// List returns a copy of the providers in insertion order.
func (r *Registry) List() []Provider {
	return append([]Provider(nil), r.providers...)
}

// Names returns provider names in insertion order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		out = append(out, p.Name)
	}
	return out
}

// Get returns the stored provider named name.
func (r *Registry) Get(name string) (Provider, bool) {
	i := r.index(name)
	if i < 0 {
		return Provider{}, false
	}
	return r.providers[i], true
}

// Upsert inserts or replaces the provider keyed by p.Name. p.Secret is the plaintext
// secret as entered; an empty secret keeps whatever was stored for that name before.
// Only the name is validated.
func (r *Registry) Upsert(p Provider) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return ErrNameRequired
	}
	p.ServerBaseURL = strings.TrimSpace(p.ServerBaseURL)
	p.Username = strings.TrimSpace(p.Username)

	i := r.index(p.Name)
	switch {
	case p.Secret != "":
		res := r.vault.Protect(p.Secret)
		if res.Degraded && res.Err != nil {
			r.logger.Warn("secret protection failed; storing plaintext",
				zap.String("provider", p.Name), zap.Error(res.Err))
		}
		p.Secret = res.Value
	case i >= 0:
		p.Secret = r.providers[i].Secret
	}

	if i >= 0 {
		r.providers[i] = p
	} else {
		r.providers = append(r.providers, p)
	}
	return nil
}

// Delete removes the provider named name and reports whether it existed.
func (r *Registry) Delete(name string) bool {
	i := r.index(strings.TrimSpace(name))
	if i < 0 {
		return false
	}
	r.providers = append(r.providers[:i], r.providers[i+1:]...)
	return true
}

// Credentials resolves name and reveals its secret.
func (r *Registry) Credentials(name string) (Credentials, error) {
	p, ok := r.Get(strings.TrimSpace(name))
	if !ok {
		return Credentials{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	res := r.vault.Reveal(p.Secret)
	if res.Degraded && res.Err != nil && p.Secret != "" {
		r.logger.Debug("secret not revealed; using stored value as-is",
			zap.String("provider", p.Name), zap.Error(res.Err))
	}
	return Credentials{
		Name:     p.Name,
		Server:   strings.TrimRight(p.ServerBaseURL, "/"),
		Username: p.Username,
		Secret:   res.Value,
	}, nil
}

func (r *Registry) index(name string) int {
	for i, p := range r.providers {
		if p.Name == name {
			return i
		}
	}
	return -1
}
