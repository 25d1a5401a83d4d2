package vault

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const (
	keyFileName   = "vault.key"
	keyfilePrefix = "enc:v1:"
)

// Keyfile seals secrets with XChaCha20-Poly1305 under a per-user key file.
type Keyfile struct {
	key []byte
}

// OpenKeyfile loads dir/vault.key, creating it (0600) on first use.
func OpenKeyfile(dir string) (*Keyfile, error) {
	path := filepath.Join(dir, keyFileName)
	key, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		key, err = createKey(dir, path)
	}
	if err != nil {
		return nil, err
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("vault key %s: want %d bytes, got %d", path, chacha20poly1305.KeySize, len(key))
	}
	return &Keyfile{key: key}, nil
}

func createKey(dir, path string) ([]byte, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("vault key dir: %w", err)
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("vault key: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			// Lost a creation race with another process; use its key.
			return os.ReadFile(path)
		}
		return nil, fmt.Errorf("vault key: %w", err)
	}
	if _, err := f.Write(key); err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("vault key: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("vault key: %w", err)
	}
	return key, nil
}

func (k *Keyfile) Name() string { return "keyfile" }

func (k *Keyfile) Protect(plain string) Result {
	if plain == "" {
		return Result{}
	}
	aead, err := chacha20poly1305.NewX(k.key)
	if err != nil {
		return passthrough(plain, err)
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return passthrough(plain, err)
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return Result{Value: keyfilePrefix + base64.StdEncoding.EncodeToString(sealed)}
}

func (k *Keyfile) Reveal(opaque string) Result {
	if opaque == "" {
		return Result{}
	}
	enc, ok := strings.CutPrefix(opaque, keyfilePrefix)
	if !ok {
		return passthrough(opaque, ErrNotSealed)
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return passthrough(opaque, fmt.Errorf("decode sealed value: %w", err))
	}
	aead, err := chacha20poly1305.NewX(k.key)
	if err != nil {
		return passthrough(opaque, err)
	}
	if len(raw) < aead.NonceSize() {
		return passthrough(opaque, errors.New("sealed value too short"))
	}
	plain, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], nil)
	if err != nil {
		return passthrough(opaque, fmt.Errorf("open sealed value: %w", err))
	}
	return Result{Value: string(plain)}
}
