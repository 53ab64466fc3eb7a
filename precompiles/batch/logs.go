package batch

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

// SubcallSucceededLog builds the log emitted by address after the sub-call at
// index succeeded.
func SubcallSucceededLog(address common.Address, index int) *types.Log {
	return indexLog(address, SubcallSucceededTopic, index)
}

// SubcallFailedLog builds the log emitted by address after the sub-call at
// index reverted, errored or could not be attempted.
func SubcallFailedLog(address common.Address, index int) *types.Log {
	return indexLog(address, SubcallFailedTopic, index)
}

func indexLog(address common.Address, topic common.Hash, index int) *types.Log {
	word := uint256.NewInt(uint64(index)).Bytes32()
	return &types.Log{
		Address: address,
		Topics:  []common.Hash{topic},
		Data:    word[:],
	}
}

// LogCost returns the gas charged for emitting log.
func LogCost(log *types.Log) uint64 {
	return params.LogGas +
		params.LogTopicGas*uint64(len(log.Topics)) +
		params.LogDataGas*uint64(len(log.Data))
}

// ParseIndex extracts the position carried by a sub-call log. The boolean
// reports whether the sub-call succeeded; ok is false for foreign logs.
func ParseIndex(log *types.Log) (index uint64, succeeded bool, ok bool) {
	if len(log.Topics) != 1 || len(log.Data) != 32 {
		return 0, false, false
	}
	switch log.Topics[0] {
	case SubcallSucceededTopic:
		succeeded = true
	case SubcallFailedTopic:
	default:
		return 0, false, false
	}
	v := new(uint256.Int).SetBytes(log.Data)
	if !v.IsUint64() {
		return 0, false, false
	}
	return v.Uint64(), succeeded, true
}
