package wallet

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
	"golang.org/x/crypto/blake2b"
)

const keychainService = "raisin"

// PasswordCache remembers key file passwords between runs in the OS keychain.
// Items are named by a hash of the key file's absolute path.
type PasswordCache struct {
	ring keyring.Keyring
}

// OpenPasswordCache opens the OS keychain. On Linux without a desktop
// session it falls back to an encrypted file under dir.
func OpenPasswordCache(dir string) (*PasswordCache, error) {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  filepath.Join(dir, "keyring"),
		FilePasswordFunc:         keyring.TerminalPrompt,
	}

	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
		if ring, err = keyring.Open(cfg); err != nil {
			return nil, fmt.Errorf("opening keychain: %w", err)
		}
	}
	return NewPasswordCache(ring), nil
}

// NewPasswordCache wraps ring.
func NewPasswordCache(ring keyring.Keyring) *PasswordCache {
	return &PasswordCache{ring: ring}
}

// Get returns the cached password for the key file at path.
func (c *PasswordCache) Get(path string) (string, bool) {
	item, err := c.ring.Get(itemKey(path))
	if err != nil {
		return "", false
	}
	return string(item.Data), true
}

// Put caches password for the key file at path.
func (c *PasswordCache) Put(path, password string) error {
	err := c.ring.Set(keyring.Item{
		Key:         itemKey(path),
		Data:        []byte(password),
		Label:       "raisin key " + filepath.Base(path),
		Description: absPath(path),
	})
	if err != nil {
		return fmt.Errorf("keychain store: %w", err)
	}
	return nil
}

// Remove forgets the password for path. Forgetting an unknown path is not an
// error.
func (c *PasswordCache) Remove(path string) error {
	err := c.ring.Remove(itemKey(path))
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("keychain remove: %w", err)
	}
	return nil
}

// Clear forgets every cached password and returns how many were removed.
func (c *PasswordCache) Clear() (int, error) {
	keys, err := c.ring.Keys()
	if err != nil {
		return 0, fmt.Errorf("keychain list: %w", err)
	}
	n := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, keychainService+".") {
			continue
		}
		if err := c.ring.Remove(k); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return n, fmt.Errorf("keychain remove: %w", err)
		}
		n++
	}
	return n, nil
}

func itemKey(path string) string {
	sum := blake2b.Sum256([]byte(absPath(path)))
	return keychainService + "." + hex.EncodeToString(sum[:16])
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
