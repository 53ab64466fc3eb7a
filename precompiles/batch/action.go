package batch

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
)

// Action selects how failures of individual sub-calls affect the rest of the
// batch. It is fixed for the whole invocation by the entry selector.
type Action uint8

const (
	// BatchSome attempts every position and ignores failed sub-calls.
	BatchSome Action = iota
	// BatchSomeUntilFailure stops at the first failed sub-call but still
	// succeeds, keeping the effects of the sub-calls that did succeed.
	BatchSomeUntilFailure
	// BatchAll aborts the whole batch on the first failed sub-call.
	BatchAll
)

const batchArgs = "(address[],uint256[],bytes[],uint64[])"

var (
	actionNames = [...]string{
		BatchSome:             "batchSome",
		BatchSomeUntilFailure: "batchSomeUntilFailure",
		BatchAll:              "batchAll",
	}

	// Topic0 of the logs emitted for each resolved position.
	SubcallSucceededTopic = crypto.Keccak256Hash([]byte("SubcallSucceeded(uint256)"))
	SubcallFailedTopic    = crypto.Keccak256Hash([]byte("SubcallFailed(uint256)"))
)

// Actions lists every action in selector order.
var Actions = []Action{BatchSome, BatchSomeUntilFailure, BatchAll}

// String returns the Solidity function name bound to the action.
func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

// Signature returns the canonical function signature of the action.
func (a Action) Signature() string {
	return a.String() + batchArgs
}

// Selector returns the 4-byte function selector of the action.
func (a Action) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], crypto.Keccak256([]byte(a.Signature())))
	return sel
}

// ParseAction maps a function selector to its action.
func ParseAction(selector []byte) (Action, bool) {
	if len(selector) != 4 {
		return 0, false
	}
	for _, a := range Actions {
		if sel := a.Selector(); string(sel[:]) == string(selector) {
			return a, true
		}
	}
	return 0, false
}

// ActionByName resolves an action from its function name, case-insensitively.
func ActionByName(name string) (Action, bool) {
	for _, a := range Actions {
		if strings.EqualFold(a.String(), name) {
			return a, true
		}
	}
	return 0, false
}

const batchABIJSON = `[
  {"type":"function","name":"batchSome","stateMutability":"nonpayable","inputs":[
    {"name":"to","type":"address[]"},{"name":"value","type":"uint256[]"},
    {"name":"callData","type":"bytes[]"},{"name":"gasLimit","type":"uint64[]"}],"outputs":[]},
  {"type":"function","name":"batchSomeUntilFailure","stateMutability":"nonpayable","inputs":[
    {"name":"to","type":"address[]"},{"name":"value","type":"uint256[]"},
    {"name":"callData","type":"bytes[]"},{"name":"gasLimit","type":"uint64[]"}],"outputs":[]},
  {"type":"function","name":"batchAll","stateMutability":"nonpayable","inputs":[
    {"name":"to","type":"address[]"},{"name":"value","type":"uint256[]"},
    {"name":"callData","type":"bytes[]"},{"name":"gasLimit","type":"uint64[]"}],"outputs":[]},
  {"type":"event","name":"SubcallSucceeded","anonymous":false,"inputs":[
    {"name":"index","type":"uint256","indexed":false}]},
  {"type":"event","name":"SubcallFailed","anonymous":false,"inputs":[
    {"name":"index","type":"uint256","indexed":false}]}
]`

// ABI is the Solidity interface of the batch precompile.
var ABI = mustParseABI(batchABIJSON)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}
