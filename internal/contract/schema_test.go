package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const approveOnly = `[{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"s","type":"address"},{"name":"v","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuiltinsSatisfyRequiredInterfaces(t *testing.T) {
	require.NoError(t, builtin(t, "raisin").Require(RaisinSignatures...))
	require.NoError(t, builtin(t, "erc20").Require(TokenSignatures...))
	require.NoError(t, builtin(t, "testtoken").Require(TokenSignatures...))
	require.NoError(t, builtin(t, "testtoken").Require(MintSignature))

	err := builtin(t, "erc20").Require(MintSignature)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestAllBuiltinsSortedAndParse(t *testing.T) {
	all := AllBuiltins()
	ids := make([]string, len(all))
	for i, b := range all {
		ids[i] = b.ID
		_, err := ParseSchema(b.ID, []byte(b.ABI))
		require.NoError(t, err, b.ID)
	}
	assert.Equal(t, []string{"erc20", "raisin", "testtoken"}, ids)
}

func TestBuiltinSchemaUnknown(t *testing.T) {
	_, err := BuiltinSchema("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown builtin")
}

func TestLoadSchemaRawArray(t *testing.T) {
	path := writeFile(t, "abi.json", approveOnly)
	s, err := LoadSchema("token", path)
	require.NoError(t, err)
	assert.Equal(t, "token", s.Name())
	assert.Equal(t, []string{"approve(address,uint256)"}, s.Signatures())
}

func TestLoadSchemaArtifact(t *testing.T) {
	path := writeFile(t, "Token.json", `{"contractName":"Token","abi":`+approveOnly+`,"bytecode":"0x6080"}`)
	s, err := LoadSchema("token", path)
	require.NoError(t, err)
	_, ok := s.Method("approve")
	assert.True(t, ok)
}

func TestLoadSchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "  \n", "empty"},
		{"object without abi", `{"bytecode":"0x00"}`, "\"abi\" key"},
		{"not json", `hello`, "invalid ABI JSON"},
		{"events only", `[{"type":"event","name":"E","inputs":[]}]`, "no functions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSchema("x", writeFile(t, "abi.json", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadSchemaMissingFile(t *testing.T) {
	_, err := LoadSchema("x", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot read ABI file")
}

func TestRequireReportsEveryProblem(t *testing.T) {
	s, err := ParseSchema("token", []byte(`[
		{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"s","type":"address"},{"name":"v","type":"uint128"}],"outputs":[]},
		{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
	]`))
	require.NoError(t, err)

	err = s.Require(TokenSignatures...)
	require.ErrorIs(t, err, ErrSchemaMismatch)
	msg := err.Error()
	assert.Contains(t, msg, "want approve(address,uint256), have approve(address,uint128)")
	assert.Contains(t, msg, "decimals() returns (uint256), want (uint8)")
	assert.Contains(t, msg, "missing balanceOf(address)")
	assert.Contains(t, msg, "missing transfer(address,uint256)")
}

func TestRequireOutputsWithSpaces(t *testing.T) {
	s := builtin(t, "raisin")
	require.NoError(t, s.Require("raisins(uint256) returns ( uint256, uint256, address, address, address, uint64 )"))
	require.NoError(t, s.Require("endFund(uint256) returns ()"))
}
