package contract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	// ErrSchemaMismatch means a contract interface does not declare what
	// raisin needs, or a call does not match its declaration.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrMethodNotFound is the ErrSchemaMismatch for an undeclared method.
	ErrMethodNotFound = fmt.Errorf("%w: method not found", ErrSchemaMismatch)
)

// RaisinSignatures is the interface the crowdfunding contract must declare.
var RaisinSignatures = []string{
	"initFund(uint256,address,address)",
	"donateToken(address,uint256,uint256)",
	"batchTokenDonate(address[],uint256[],uint256[])",
	"endFund(uint256)",
	"fundWithdraw(uint256)",
	"refund(uint256)",
	"raisins(uint256) returns (uint256,uint256,address,address,address,uint64)",
}

// TokenSignatures is the ERC-20 subset raisin relies on.
var TokenSignatures = []string{
	"decimals() returns (uint8)",
	"balanceOf(address) returns (uint256)",
	"approve(address,uint256)",
	"transfer(address,uint256)",
}

// MintSignature is the faucet method of the test token.
const MintSignature = "mint()"

// Schema is a parsed contract interface.
type Schema struct {
	name string
	abi  abi.ABI
}

// LoadSchema loads an ABI from a local file that is either:
//   - a raw ABI JSON array: [{"type":"function",...}, ...]
//   - a Hardhat/Foundry artifact: {"abi":[...],"bytecode":"0x...",...}
//
// Both formats are detected automatically.
func LoadSchema(name, path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read ABI file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("ABI file is empty: %s", path)
	}
	s, err := ParseSchema(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSchema parses raw ABI JSON or an artifact holding an "abi" array.
func ParseSchema(name string, data []byte) (*Schema, error) {
	data = bytes.TrimSpace(data)

	var artifact struct {
		ABI json.RawMessage `json:"abi"`
	}
	if len(data) > 0 && data[0] == '{' {
		if err := json.Unmarshal(data, &artifact); err != nil {
			return nil, fmt.Errorf("invalid artifact JSON: %w", err)
		}
		if len(artifact.ABI) < 2 || artifact.ABI[0] != '[' {
			return nil, fmt.Errorf("file is a JSON object, not an ABI array; a Hardhat/Foundry artifact must have an \"abi\" key")
		}
		data = artifact.ABI
	}

	parsed, err := abi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid ABI JSON: %w", err)
	}
	if len(parsed.Methods) == 0 {
		return nil, fmt.Errorf("ABI declares no functions")
	}
	return &Schema{name: name, abi: parsed}, nil
}

// Name returns the label the schema was loaded under.
func (s *Schema) Name() string { return s.name }

// ABI returns the parsed interface.
func (s *Schema) ABI() abi.ABI { return s.abi }

// Method looks up a method by name.
func (s *Schema) Method(name string) (abi.Method, bool) {
	m, ok := s.abi.Methods[name]
	return m, ok
}

// Signatures lists every declared method signature, sorted.
func (s *Schema) Signatures() []string {
	out := make([]string, 0, len(s.abi.Methods))
	for _, m := range s.abi.Methods {
		out = append(out, m.Sig)
	}
	sort.Strings(out)
	return out
}

// Require checks that every signature is declared. A signature may carry an
// output list: "decimals() returns (uint8)".
func (s *Schema) Require(signatures ...string) error {
	var missing []string
	for _, want := range signatures {
		if err := s.require(want); err != nil {
			missing = append(missing, err.Error())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s: %s", ErrSchemaMismatch, s.name, strings.Join(missing, "; "))
	}
	return nil
}

func (s *Schema) require(want string) error {
	sig, outputs, hasOutputs := strings.Cut(want, " returns ")
	sig = strings.TrimSpace(sig)

	var found *abi.Method
	var sameName []string
	name, _, _ := strings.Cut(sig, "(")
	for _, m := range s.abi.Methods {
		if m.Sig == sig {
			found = &m
			break
		}
		if m.RawName == name {
			sameName = append(sameName, m.Sig)
		}
	}
	if found == nil {
		if len(sameName) > 0 {
			sort.Strings(sameName)
			return fmt.Errorf("want %s, have %s", sig, strings.Join(sameName, ", "))
		}
		return fmt.Errorf("missing %s", sig)
	}
	if !hasOutputs {
		return nil
	}
	if got := outputList(found.Outputs); got != normalizeList(outputs) {
		return fmt.Errorf("%s returns %s, want %s", sig, got, normalizeList(outputs))
	}
	return nil
}

func outputList(args abi.Arguments) string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.Type.String()
	}
	return "(" + strings.Join(types, ",") + ")"
}

func normalizeList(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 1 && parts[0] == "" {
		return "()"
	}
	return "(" + strings.Join(parts, ",") + ")"
}
