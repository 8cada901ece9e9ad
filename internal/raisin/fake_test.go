package raisin

import (
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/raisin/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/require"
)

var (
	raisinAddr = common.HexToAddress("0x7e37Cd627C75DB9b76331F484449E5d98D5C82c5")
	usdc       = common.HexToAddress("0x1111111111111111111111111111111111111111")
	dai        = common.HexToAddress("0x2222222222222222222222222222222222222222")
	alice      = common.HexToAddress("0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	bob        = common.HexToAddress("0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

// fakeClient is a ContractClient that encodes calls with the real builtin
// interfaces and records every interaction in order.
type fakeClient struct {
	funds  *contract.Builder
	tokens *contract.Builder

	decimals    map[common.Address]uint8
	balances    map[common.Address]*big.Int
	fund        []interface{}
	fundErr     error
	submitErr   map[string]error // by step key, see key()
	awaitErr    map[string]error
	depths      []uint64
	submitted   []*contract.Call
	interaction []string
}

func newFakeClient(t *testing.T) *fakeClient {
	t.Helper()
	funds, err := contract.BuiltinSchema("raisin")
	require.NoError(t, err)
	tokens, err := contract.BuiltinSchema("testtoken")
	require.NoError(t, err)
	return &fakeClient{
		funds:     contract.NewBuilder(funds),
		tokens:    contract.NewBuilder(tokens),
		decimals:  map[common.Address]uint8{usdc: 6, dai: 18},
		balances:  map[common.Address]*big.Int{},
		submitErr: map[string]error{},
		awaitErr:  map[string]error{},
	}
}

// key names a call: its method, plus the target for token calls.
func key(call *contract.Call) string {
	switch {
	case call.Method() == "":
		return "value"
	case call.To() == raisinAddr:
		return call.Method()
	default:
		return call.Method() + "@" + call.To().Hex()[:6]
	}
}

func (f *fakeClient) RaisinAddress() common.Address { return raisinAddr }
func (f *fakeClient) Account() common.Address       { return alice }

func (f *fakeClient) RaisinCall(method string, args ...interface{}) (*contract.Call, error) {
	return f.funds.Build(raisinAddr, method, args...)
}

func (f *fakeClient) TokenCall(token common.Address, method string, args ...interface{}) (*contract.Call, error) {
	return f.tokens.Build(token, method, args...)
}

func (f *fakeClient) ValueTransfer(to common.Address, wei *big.Int) *contract.Call {
	return contract.NewValueTransfer(to, wei)
}

func (f *fakeClient) CallReadonly(_ context.Context, call *contract.Call) ([]interface{}, error) {
	f.interaction = append(f.interaction, "read "+key(call))
	switch call.Method() {
	case "decimals":
		d, ok := f.decimals[call.To()]
		if !ok {
			return nil, fmt.Errorf("execution reverted")
		}
		return []interface{}{d}, nil
	case "balanceOf":
		holder := call.Args()[0].(common.Address)
		if b, ok := f.balances[holder]; ok {
			return []interface{}{b}, nil
		}
		return []interface{}{big.NewInt(0)}, nil
	case "raisins":
		if f.fundErr != nil {
			return nil, f.fundErr
		}
		return f.fund, nil
	}
	return nil, fmt.Errorf("unexpected read %s", call.Signature())
}

func (f *fakeClient) Submit(_ context.Context, call *contract.Call) (*contract.PendingTx, error) {
	k := key(call)
	f.interaction = append(f.interaction, "submit "+k)
	if err := f.submitErr[k]; err != nil {
		return nil, err
	}
	f.submitted = append(f.submitted, call)
	return &contract.PendingTx{
		Hash: crypto.Keccak256Hash([]byte(fmt.Sprintf("%d", len(f.submitted)))),
		Call: call,
	}, nil
}

func (f *fakeClient) AwaitConfirmation(_ context.Context, tx *contract.PendingTx, depth uint64) (*contract.Receipt, error) {
	k := key(tx.Call)
	f.interaction = append(f.interaction, "confirm "+k)
	f.depths = append(f.depths, depth)
	if err := f.awaitErr[k]; err != nil {
		return nil, err
	}
	return &contract.Receipt{Hash: tx.Hash, BlockNumber: 100, Confirmations: depth}, nil
}

func newService(f *fakeClient, opts ...Option) *Service {
	opts = append([]Option{WithLogger(log.NewLogger(log.DiscardHandler()))}, opts...)
	return New(f, opts...)
}

func tokenKey(method string, token common.Address) string {
	return method + "@" + token.Hex()[:6]
}
