package contract

import (
	"fmt"
	"sort"
)

// BuiltinKind describes a contract interface whose ABI is embedded in the
// binary. New built-ins register themselves via init() in their own file:
// create internal/contract/<name>_abi.go and call RegisterBuiltin().
type BuiltinKind struct {
	ID          string // machine key, e.g. "raisin", "erc20"
	Name        string // human label, e.g. "Raisin crowdfunding"
	Description string // one-line summary shown by `raisin config builtins`
	ABI         string // ABI JSON array
}

var builtinRegistry = map[string]BuiltinKind{}

// RegisterBuiltin adds a built-in ABI to the global registry.
// Call this from init() in the file that defines the ABI.
func RegisterBuiltin(b BuiltinKind) {
	builtinRegistry[b.ID] = b
}

// GetBuiltin returns a built-in by ID. ok is false if not found.
func GetBuiltin(id string) (BuiltinKind, bool) {
	b, ok := builtinRegistry[id]
	return b, ok
}

// AllBuiltins returns all registered built-ins sorted by ID.
func AllBuiltins() []BuiltinKind {
	out := make([]BuiltinKind, 0, len(builtinRegistry))
	for _, b := range builtinRegistry {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BuiltinSchema parses the embedded ABI registered under id.
func BuiltinSchema(id string) (*Schema, error) {
	b, ok := GetBuiltin(id)
	if !ok {
		return nil, fmt.Errorf("unknown builtin ABI %q", id)
	}
	return ParseSchema(b.ID, []byte(b.ABI))
}
