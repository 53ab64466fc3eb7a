package vm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// CallMetadata carries the fields an Executor needs to perform one message
// call on the underlying VM backend. The batch host builds one per sub-call
// and the state processor one per plain message.
type CallMetadata struct {
	From     common.Address // Caller seen by the target, also the value source
	To       common.Address // Recipient
	Data     []byte         // Calldata
	Value    *uint256.Int   // Wei transferred, nil means zero
	GasLimit uint64         // Gas forwarded to the call
}

// value returns the transferred amount, never nil.
func (m *CallMetadata) value() *uint256.Int {
	if m.Value == nil {
		return new(uint256.Int)
	}
	return m.Value
}
