package wallet

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/99designs/keyring"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	scryptN, scryptP = keystore.LightScryptN, keystore.LightScryptP
	os.Exit(m.Run())
}

func newKey(t *testing.T, password string) (string, common.Address) {
	t.Helper()
	path := KeyFilePath(t.TempDir(), "alice")
	addr, err := CreateKeyFile(path, password)
	require.NoError(t, err)
	return path, addr
}

// ---------------------------------------------------------------------------
// key files
// ---------------------------------------------------------------------------

func TestKeyFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("keys", "alice.json"), KeyFilePath("keys", "alice"))
	assert.Equal(t, filepath.Join("keys", "alice.json"), KeyFilePath("keys", " alice.json "))
}

func TestCreateAndLoadKeyFile(t *testing.T) {
	path, addr := newKey(t, "hunter2")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	s, err := LoadKeyFile(path, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, addr, s.Address())

	fromHeader, err := KeyFileAddress(path)
	require.NoError(t, err)
	assert.Equal(t, addr, fromHeader)
}

func TestCreateKeyFileRefusesOverwrite(t *testing.T) {
	path, addr := newKey(t, "pw")
	_, err := CreateKeyFile(path, "other")
	require.ErrorIs(t, err, ErrKeyExists)

	s, err := LoadKeyFile(path, "pw")
	require.NoError(t, err)
	assert.Equal(t, addr, s.Address(), "original key must survive")
}

func TestCreateKeyFileRejectsEmptyPassword(t *testing.T) {
	_, err := CreateKeyFile(filepath.Join(t.TempDir(), "k.json"), "")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestLoadKeyFileErrors(t *testing.T) {
	path, _ := newKey(t, "right")

	_, err := LoadKeyFile(path, "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = LoadKeyFile(filepath.Join(t.TempDir(), "missing.json"), "pw")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	junk := filepath.Join(t.TempDir(), "junk.json")
	require.NoError(t, os.WriteFile(junk, []byte("{not json"), 0600))
	_, err = LoadKeyFile(junk, "pw")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = KeyFileAddress(junk)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

// ---------------------------------------------------------------------------
// signer
// ---------------------------------------------------------------------------

func TestSignerSignsForChain(t *testing.T) {
	path, addr := newKey(t, "pw")
	s, err := LoadKeyFile(path, "pw")
	require.NoError(t, err)

	chainID := big.NewInt(5)
	to := common.HexToAddress("0x7e37Cd627C75DB9b76331F484449E5d98D5C82c5")
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     3,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(100),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1),
	})
	signed, err := s.SignTx(tx, chainID)
	require.NoError(t, err)

	from, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	assert.Equal(t, addr, from)
}

// ---------------------------------------------------------------------------
// password cache
// ---------------------------------------------------------------------------

func TestPasswordCache(t *testing.T) {
	ring := keyring.NewArrayKeyring(nil)
	c := NewPasswordCache(ring)
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")

	_, ok := c.Get(a)
	assert.False(t, ok)

	require.NoError(t, c.Put(a, "pa"))
	require.NoError(t, c.Put(b, "pb"))
	pw, ok := c.Get(a)
	require.True(t, ok)
	assert.Equal(t, "pa", pw)

	keys, err := ring.Keys()
	require.NoError(t, err)
	for _, k := range keys {
		assert.True(t, strings.HasPrefix(k, "raisin."), k)
		assert.NotContains(t, k, "a.json", "item names must not leak paths")
	}

	require.NoError(t, c.Remove(a))
	require.NoError(t, c.Remove(a))
	_, ok = c.Get(a)
	assert.False(t, ok)

	require.NoError(t, ring.Set(keyring.Item{Key: "other-app", Data: []byte("x")}))
	n, err := c.Clear()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, ok = c.Get(b)
	assert.False(t, ok)
	_, err = ring.Get("other-app")
	assert.NoError(t, err, "foreign items are left alone")
}

func TestPasswordCacheKeysByAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	c := NewPasswordCache(keyring.NewArrayKeyring(nil))

	require.NoError(t, c.Put("k.json", "pw"))
	pw, ok := c.Get(filepath.Join(dir, "k.json"))
	require.True(t, ok)
	assert.Equal(t, "pw", pw)
}

// ---------------------------------------------------------------------------
// prompting
// ---------------------------------------------------------------------------

func TestNewPassword(t *testing.T) {
	var out strings.Builder
	pw, err := NewPassword(LinePasswordReader(strings.NewReader("s3cret\ns3cret\n"), &out))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pw)
	assert.Equal(t, "New password: Repeat password: ", out.String())
}

func TestNewPasswordMismatch(t *testing.T) {
	_, err := NewPassword(LinePasswordReader(strings.NewReader("one\ntwo\n"), &strings.Builder{}))
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestNewPasswordEmpty(t *testing.T) {
	_, err := NewPassword(LinePasswordReader(strings.NewReader("\n"), &strings.Builder{}))
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestLinePasswordReaderLastLineWithoutNewline(t *testing.T) {
	read := LinePasswordReader(strings.NewReader("pw\r\nlast"), &strings.Builder{})
	first, err := read("")
	require.NoError(t, err)
	assert.Equal(t, "pw", first)
	second, err := read("")
	require.NoError(t, err)
	assert.Equal(t, "last", second)
	_, err = read("")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// unlock
// ---------------------------------------------------------------------------

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func reads(answers ...string) (PasswordReader, *int) {
	calls := 0
	return func(string) (string, error) {
		if calls >= len(answers) {
			return "", errors.New("no more input")
		}
		calls++
		return answers[calls-1], nil
	}, &calls
}

func quiet() log.Logger { return log.NewLogger(log.DiscardHandler()) }

func TestUnlockPrefersCache(t *testing.T) {
	path, addr := newKey(t, "pw")
	cache := NewPasswordCache(keyring.NewArrayKeyring(nil))
	require.NoError(t, cache.Put(path, "pw"))

	read, calls := reads()
	u := &Unlocker{Cache: cache, Getenv: env(nil), Read: read, Log: quiet()}
	s, err := u.Unlock(path)
	require.NoError(t, err)
	assert.Equal(t, addr, s.Address())
	assert.Zero(t, *calls)
}

func TestUnlockDropsStaleCacheEntry(t *testing.T) {
	path, _ := newKey(t, "pw")
	cache := NewPasswordCache(keyring.NewArrayKeyring(nil))
	require.NoError(t, cache.Put(path, "old"))

	read, calls := reads("pw")
	u := &Unlocker{Cache: cache, Getenv: env(nil), Read: read, Log: quiet()}
	_, err := u.Unlock(path)
	require.NoError(t, err)
	assert.Equal(t, 1, *calls)

	_, ok := cache.Get(path)
	assert.False(t, ok)
}

func TestUnlockFromEnvironment(t *testing.T) {
	path, addr := newKey(t, "pw")
	read, calls := reads()
	u := &Unlocker{Getenv: env(map[string]string{"RAISIN_PASSWORD": "pw"}), Read: read, Log: quiet()}
	s, err := u.Unlock(path)
	require.NoError(t, err)
	assert.Equal(t, addr, s.Address())
	assert.Zero(t, *calls)

	u.Getenv = env(map[string]string{"RAISIN_PASSWORD": "nope"})
	_, err = u.Unlock(path)
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.Contains(t, err.Error(), "RAISIN_PASSWORD")
}

func TestUnlockPromptsAndRemembers(t *testing.T) {
	path, _ := newKey(t, "pw")
	cache := NewPasswordCache(keyring.NewArrayKeyring(nil))
	read, _ := reads("pw")
	u := &Unlocker{Cache: cache, Getenv: env(nil), Read: read, Remember: true, Log: quiet()}
	_, err := u.Unlock(path)
	require.NoError(t, err)

	pw, ok := cache.Get(path)
	require.True(t, ok)
	assert.Equal(t, "pw", pw)
}

func TestUnlockWithoutAnySource(t *testing.T) {
	path, _ := newKey(t, "pw")
	u := &Unlocker{Getenv: env(nil), Log: quiet()}
	_, err := u.Unlock(path)
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestUnlockWrongPrompt(t *testing.T) {
	path, _ := newKey(t, "pw")
	cache := NewPasswordCache(keyring.NewArrayKeyring(nil))
	read, _ := reads("bad")
	u := &Unlocker{Cache: cache, Getenv: env(nil), Read: read, Remember: true, Log: quiet()}
	_, err := u.Unlock(path)
	assert.ErrorIs(t, err, ErrWrongPassword)
	_, ok := cache.Get(path)
	assert.False(t, ok, "wrong passwords are never cached")
}
