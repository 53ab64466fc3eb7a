package core

import (
	"encoding/binary"

	"github.com/clydemeng/batchvm/params"
	"github.com/clydemeng/batchvm/precompiles/batch"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// Message is a call issued by an externally owned account. Messages sent to
// the batch precompile address are dispatched to the batch precompile, all
// others are plain message calls.
type Message struct {
	From     common.Address
	To       common.Address
	Data     []byte
	Value    *uint256.Int
	GasLimit uint64
}

// NewBatchMessage builds a message from sender invoking action over calls.
func NewBatchMessage(from common.Address, action batch.Action, calls []batch.Call, gasLimit uint64) (*Message, error) {
	input, err := batch.EncodeCalls(action, calls)
	if err != nil {
		return nil, err
	}
	return &Message{
		From:     from,
		To:       params.BatchPrecompileAddress,
		Data:     input,
		GasLimit: gasLimit,
	}, nil
}

// IsBatch reports whether the message targets the batch precompile.
func (m *Message) IsBatch() bool {
	return m.To == params.BatchPrecompileAddress
}

// Hash identifies the message at position index of the block with the given
// number. Logs and receipts are keyed by it.
func (m *Message) Hash(number uint64, index int) common.Hash {
	var pos [16]byte
	binary.BigEndian.PutUint64(pos[:8], number)
	binary.BigEndian.PutUint64(pos[8:], uint64(index))

	var word [32]byte
	if m.Value != nil {
		word = m.Value.Bytes32()
	}
	var gas [8]byte
	binary.BigEndian.PutUint64(gas[:], m.GasLimit)

	return crypto.Keccak256Hash(pos[:], m.From.Bytes(), m.To.Bytes(), word[:], gas[:], m.Data)
}

func (m *Message) value() *uint256.Int {
	if m.Value == nil {
		return new(uint256.Int)
	}
	return m.Value
}
