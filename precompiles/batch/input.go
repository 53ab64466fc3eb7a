package batch

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/clydemeng/batchvm/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Input holds the four decoded argument arrays of a batch invocation. The
// arrays are aligned by position but may have different lengths.
type Input struct {
	To       []common.Address
	Value    []*uint256.Int
	Data     [][]byte
	GasLimit []uint64
}

// Item is the resolved view of one batch position.
type Item struct {
	Index    int
	To       common.Address
	Value    *uint256.Int
	Data     []byte
	GasLimit uint64 // 0 forwards all remaining gas
}

// Len returns the number of sub-calls of the batch, which is the length of
// the address array.
func (in *Input) Len() int {
	return len(in.To)
}

// Item returns position i. Values, payloads and gas limits missing from
// their shorter arrays default to zero, empty and unbounded respectively.
func (in *Input) Item(i int) Item {
	item := Item{Index: i, To: in.To[i], Value: new(uint256.Int)}
	if i < len(in.Value) && in.Value[i] != nil {
		item.Value = in.Value[i]
	}
	if i < len(in.Data) {
		item.Data = in.Data[i]
	}
	if i < len(in.GasLimit) {
		item.GasLimit = in.GasLimit[i]
	}
	return item
}

// DecodeInput decodes the arguments of action from data, which must not
// include the selector, and enforces the array and payload limits.
func DecodeInput(action Action, data []byte) (*Input, error) {
	method, ok := ABI.Methods[action.String()]
	if !ok {
		return nil, errUnknownSelector
	}
	args, err := method.Inputs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	if len(args) != 4 {
		return nil, fmt.Errorf("invalid input: expected 4 arguments, got %d", len(args))
	}
	to, ok1 := args[0].([]common.Address)
	values, ok2 := args[1].([]*big.Int)
	calls, ok3 := args[2].([][]byte)
	gas, ok4 := args[3].([]uint64)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, errors.New("invalid input: unexpected argument types")
	}
	if err := checkArrayLen("to", len(to)); err != nil {
		return nil, err
	}
	if err := checkArrayLen("value", len(values)); err != nil {
		return nil, err
	}
	if err := checkArrayLen("callData", len(calls)); err != nil {
		return nil, err
	}
	if err := checkArrayLen("gasLimit", len(gas)); err != nil {
		return nil, err
	}
	for i, blob := range calls {
		if len(blob) > params.BatchCallDataLimit {
			return nil, fmt.Errorf("invalid input: callData[%d] exceeds %d bytes", i, params.BatchCallDataLimit)
		}
	}
	in := &Input{
		To:       to,
		Value:    make([]*uint256.Int, len(values)),
		Data:     calls,
		GasLimit: gas,
	}
	for i, v := range values {
		// Values were decoded from 32-byte words, they cannot overflow.
		in.Value[i], _ = uint256.FromBig(v)
	}
	return in, nil
}

func checkArrayLen(name string, n int) error {
	if n > params.BatchArrayLimit {
		return fmt.Errorf("invalid input: %s array exceeds %d entries", name, params.BatchArrayLimit)
	}
	return nil
}

// EncodeInput builds the call payload, selector included, invoking action
// with the given arrays. The arrays may have different lengths.
func EncodeInput(action Action, to []common.Address, values []*uint256.Int, data [][]byte, gasLimits []uint64) ([]byte, error) {
	bigs := make([]*big.Int, len(values))
	for i, v := range values {
		if v == nil {
			bigs[i] = new(big.Int)
		} else {
			bigs[i] = v.ToBig()
		}
	}
	if to == nil {
		to = []common.Address{}
	}
	if data == nil {
		data = [][]byte{}
	}
	if gasLimits == nil {
		gasLimits = []uint64{}
	}
	return ABI.Pack(action.String(), to, bigs, data, gasLimits)
}

// Call is one entry of a batch as written by a client.
type Call struct {
	To       common.Address
	Value    *uint256.Int
	Data     []byte
	GasLimit uint64
}

// EncodeCalls builds the call payload for a list of fully specified calls.
func EncodeCalls(action Action, calls []Call) ([]byte, error) {
	var (
		to     = make([]common.Address, len(calls))
		values = make([]*uint256.Int, len(calls))
		data   = make([][]byte, len(calls))
		gas    = make([]uint64, len(calls))
	)
	for i, c := range calls {
		to[i], values[i], data[i], gas[i] = c.To, c.Value, c.Data, c.GasLimit
		if data[i] == nil {
			data[i] = []byte{}
		}
	}
	return EncodeInput(action, to, values, data, gas)
}
