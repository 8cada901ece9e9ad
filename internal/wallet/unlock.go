package wallet

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Mohsinsiddi/raisin/internal/config"
	"github.com/ethereum/go-ethereum/log"
)

// Unlocker turns a key file into a Signer. Passwords are tried in order from
// the keychain cache, the RAISIN_PASSWORD environment variable and finally
// an interactive prompt.
type Unlocker struct {
	Cache    *PasswordCache // optional
	Getenv   func(string) string
	Read     PasswordReader // nil disables prompting
	Remember bool
	Log      log.Logger
}

// Unlock decrypts the key file at path.
func (u *Unlocker) Unlock(path string) (*Signer, error) {
	logger := u.Log
	if logger == nil {
		logger = log.Root()
	}
	name := filepath.Base(path)

	if u.Cache != nil {
		if pw, ok := u.Cache.Get(path); ok {
			s, err := LoadKeyFile(path, pw)
			if err == nil {
				logger.Debug("Key unlocked from keychain", "key", name, "address", s.Address())
				return s, nil
			}
			if !errors.Is(err, ErrWrongPassword) {
				return nil, err
			}
			logger.Warn("Cached password is stale, forgetting it", "key", name)
			if err := u.Cache.Remove(path); err != nil {
				logger.Warn("Could not clear cached password", "key", name, "err", err)
			}
		}
	}

	if u.Getenv != nil {
		if pw := u.Getenv(config.EnvPassword); pw != "" {
			s, err := LoadKeyFile(path, pw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", config.EnvPassword, err)
			}
			logger.Debug("Key unlocked from environment", "key", name, "address", s.Address())
			u.remember(path, pw, logger)
			return s, nil
		}
	}

	if u.Read == nil {
		return nil, fmt.Errorf("%w: no password available for %s (set %s)", ErrWrongPassword, name, config.EnvPassword)
	}
	pw, err := u.Read(fmt.Sprintf("Password for %s: ", name))
	if err != nil {
		return nil, err
	}
	s, err := LoadKeyFile(path, pw)
	if err != nil {
		return nil, err
	}
	logger.Debug("Key unlocked", "key", name, "address", s.Address())
	u.remember(path, pw, logger)
	return s, nil
}

func (u *Unlocker) remember(path, pw string, logger log.Logger) {
	if !u.Remember || u.Cache == nil {
		return
	}
	if err := u.Cache.Put(path, pw); err != nil {
		logger.Warn("Could not cache password", "err", err)
		return
	}
	logger.Info("Password cached in keychain", "key", filepath.Base(path))
}
