package contract

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientChecksSchemas(t *testing.T) {
	b := newFakeBackend()

	_, err := NewClient(b, raisinAddr, builtin(t, "erc20"), builtin(t, "erc20"), nil)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = NewClient(b, raisinAddr, builtin(t, "raisin"), builtin(t, "raisin"), nil)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	c, err := NewClient(b, raisinAddr, builtin(t, "raisin"), builtin(t, "erc20"), nil)
	require.NoError(t, err)
	assert.Equal(t, raisinAddr, c.RaisinAddress())
	assert.Equal(t, common.Address{}, c.Account())
}

func TestClientWithoutSignerCannotSubmit(t *testing.T) {
	c, err := NewClient(newFakeBackend(), raisinAddr, builtin(t, "raisin"), builtin(t, "erc20"), nil)
	require.NoError(t, err)

	call, err := c.RaisinCall("endFund", big.NewInt(1))
	require.NoError(t, err)
	_, err = c.Submit(context.Background(), call)
	assert.ErrorIs(t, err, ErrSubmission)
}

func TestClientRoundTrip(t *testing.T) {
	b := newFakeBackend()
	signer := newKeySigner(t)
	c, err := NewClient(b, raisinAddr, builtin(t, "raisin"), builtin(t, "testtoken"), signer, WithPollInterval(time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, signer.Address(), c.Account())

	call, err := c.TokenCall(tokenAddr, "mint")
	require.NoError(t, err)
	tx, err := c.Submit(context.Background(), call)
	require.NoError(t, err)

	b.mine(tx.Hash, 100, types.ReceiptStatusSuccessful)
	b.autoMine = true
	receipt, err := c.AwaitConfirmation(context.Background(), tx, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), receipt.Confirmations)

	fund, err := c.RaisinCall("raisins", big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, raisinAddr, fund.To())

	transfer := c.ValueTransfer(holder, big.NewInt(5))
	assert.Equal(t, big.NewInt(5), transfer.Value())
}
