package contract

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// ErrCallConsumed is returned when a Call is submitted a second time.
var ErrCallConsumed = errors.New("call already submitted")

// Call is a fully-encoded contract invocation. It is immutable once built:
// accessors return copies. A state-mutating Call can be submitted once.
type Call struct {
	to     common.Address
	method *abi.Method // nil for a plain value transfer
	args   []interface{}
	data   []byte
	value  *big.Int

	consumed atomic.Bool
}

// To returns the target address.
func (c *Call) To() common.Address { return c.to }

// Method returns the method name, or "" for a value transfer.
func (c *Call) Method() string {
	if c.method == nil {
		return ""
	}
	return c.method.Name
}

// Signature returns the canonical method signature, e.g. "approve(address,uint256)".
func (c *Call) Signature() string {
	if c.method == nil {
		return ""
	}
	return c.method.Sig
}

// Args returns a copy of the arguments the call was built with.
func (c *Call) Args() []interface{} {
	out := make([]interface{}, len(c.args))
	for i, a := range c.args {
		out[i] = copyArg(a)
	}
	return out
}

// Data returns a copy of the calldata (selector + packed arguments).
func (c *Call) Data() []byte { return common.CopyBytes(c.data) }

// Value returns a copy of the native value attached to the call.
func (c *Call) Value() *big.Int { return new(big.Int).Set(c.value) }

// ReadOnly reports whether the method is declared view or pure.
func (c *Call) ReadOnly() bool {
	return c.method != nil && c.method.IsConstant()
}

// Decode unpacks return data according to the method's outputs.
func (c *Call) Decode(output []byte) ([]interface{}, error) {
	if c.method == nil {
		return nil, nil
	}
	out, err := c.method.Outputs.Unpack(output)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", c.method.Sig, err)
	}
	return out, nil
}

// String renders the call as a one-line preview.
func (c *Call) String() string {
	if c.method == nil {
		return fmt.Sprintf("transfer %s wei → %s", c.value, c.to.Hex())
	}
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = formatArg(a)
	}
	return fmt.Sprintf("%s.%s(%s)", c.to.Hex(), c.method.Name, strings.Join(parts, ", "))
}

// consume marks the call as submitted. It fails if it already was.
func (c *Call) consume() error {
	if !c.consumed.CompareAndSwap(false, true) {
		return ErrCallConsumed
	}
	return nil
}

// Builder builds Calls against one contract interface. It does no I/O.
type Builder struct {
	schema *Schema
}

// NewBuilder returns a Builder for schema.
func NewBuilder(schema *Schema) *Builder {
	return &Builder{schema: schema}
}

// Schema returns the interface the builder encodes against.
func (b *Builder) Schema() *Schema { return b.schema }

// Build validates args against the declared method and packs the calldata.
// Uints are *big.Int, addresses common.Address, arrays Go slices of those.
func (b *Builder) Build(to common.Address, method string, args ...interface{}) (*Call, error) {
	m, ok := b.schema.Method(method)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no method %q", ErrMethodNotFound, b.schema.Name(), method)
	}
	if len(args) != len(m.Inputs) {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrSchemaMismatch, m.Sig, len(m.Inputs), len(args))
	}
	for i, a := range args {
		if err := checkInts(a, m.Inputs[i].Type); err != nil {
			return nil, fmt.Errorf("%w: %s argument %d (%s): %v", ErrSchemaMismatch, m.Sig, i, m.Inputs[i].Type, err)
		}
	}

	packed, err := m.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("%w: packing %s: %v", ErrSchemaMismatch, m.Sig, err)
	}

	data := make([]byte, 0, len(m.ID)+len(packed))
	data = append(data, m.ID...)
	data = append(data, packed...)

	call := &Call{
		to:     to,
		method: &m,
		args:   make([]interface{}, len(args)),
		data:   data,
		value:  new(big.Int),
	}
	for i, a := range args {
		call.args[i] = copyArg(a)
	}
	return call, nil
}

// NewValueTransfer describes a plain native-currency transfer of wei to to.
func NewValueTransfer(to common.Address, wei *big.Int) *Call {
	value := new(big.Int)
	if wei != nil {
		value.Set(wei)
	}
	return &Call{to: to, value: value}
}

// checkInts rejects integers the ABI packer would silently wrap.
func checkInts(a interface{}, typ abi.Type) error {
	unsigned := typ.T == abi.UintTy || (typ.Elem != nil && typ.Elem.T == abi.UintTy)
	switch v := a.(type) {
	case *big.Int:
		return checkInt(v, unsigned)
	case []*big.Int:
		for _, x := range v {
			if err := checkInt(x, unsigned); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkInt(x *big.Int, unsigned bool) error {
	switch {
	case x == nil:
		return errors.New("nil integer")
	case unsigned && x.Sign() < 0:
		return fmt.Errorf("negative integer %s", x)
	case x.BitLen() > 256:
		return fmt.Errorf("integer %s wider than 256 bits", x)
	}
	return nil
}

func copyArg(a interface{}) interface{} {
	switch v := a.(type) {
	case *big.Int:
		return new(big.Int).Set(v)
	case []*big.Int:
		out := make([]*big.Int, len(v))
		for i, x := range v {
			out[i] = new(big.Int).Set(x)
		}
		return out
	case []common.Address:
		out := make([]common.Address, len(v))
		copy(out, v)
		return out
	case []byte:
		return common.CopyBytes(v)
	default:
		return a
	}
}

func formatArg(a interface{}) string {
	switch v := a.(type) {
	case common.Address:
		return v.Hex()
	case []common.Address:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = x.Hex()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return fmt.Sprint(a)
	}
}
