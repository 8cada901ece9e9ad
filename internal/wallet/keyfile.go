package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

// Errors.
var (
	ErrKeyExists     = errors.New("key file already exists")
	ErrKeyNotFound   = errors.New("key file not found")
	ErrWrongPassword = errors.New("could not decrypt key with given password")
	ErrInvalidKey    = errors.New("invalid key file")
)

// scrypt cost of newly written key files.
var (
	scryptN = keystore.StandardScryptN
	scryptP = keystore.StandardScryptP
)

// KeyFilePath returns where a key called name lives under dir. A name that
// already ends in .json is used as is.
func KeyFilePath(dir, name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}
	return filepath.Join(dir, name)
}

// CreateKeyFile generates a fresh secp256k1 key, encrypts it with password in
// the Web3 Secret Storage format and writes it to path. It never overwrites.
func CreateKeyFile(path, password string) (common.Address, error) {
	if password == "" {
		return common.Address{}, ErrEmptyPassword
	}
	priv, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, fmt.Errorf("generating key: %w", err)
	}
	id, err := uuid.NewRandom()
	if err != nil {
		return common.Address{}, fmt.Errorf("generating key id: %w", err)
	}
	key := &keystore.Key{
		Id:         id,
		Address:    crypto.PubkeyToAddress(priv.PublicKey),
		PrivateKey: priv,
	}
	data, err := keystore.EncryptKey(key, password, scryptN, scryptP)
	if err != nil {
		return common.Address{}, fmt.Errorf("encrypting key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return common.Address{}, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return common.Address{}, fmt.Errorf("%w: %s", ErrKeyExists, path)
	}
	if err != nil {
		return common.Address{}, err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return common.Address{}, err
	}
	if err := f.Close(); err != nil {
		return common.Address{}, err
	}
	return key.Address, nil
}

// LoadKeyFile decrypts the key file at path.
func LoadKeyFile(path, password string) (*Signer, error) {
	data, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey(data, password)
	if errors.Is(err, keystore.ErrDecrypt) {
		return nil, fmt.Errorf("%w: %s", ErrWrongPassword, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidKey, path, err)
	}
	return NewSigner(key.PrivateKey), nil
}

// KeyFileAddress reads the plaintext address of a key file without
// decrypting it.
func KeyFileAddress(path string) (common.Address, error) {
	data, err := readKeyFile(path)
	if err != nil {
		return common.Address{}, err
	}
	var header struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return common.Address{}, fmt.Errorf("%w: %s: %v", ErrInvalidKey, path, err)
	}
	if !common.IsHexAddress(header.Address) {
		return common.Address{}, fmt.Errorf("%w: %s: no address", ErrInvalidKey, path)
	}
	return common.HexToAddress(header.Address), nil
}

func readKeyFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	return data, err
}
