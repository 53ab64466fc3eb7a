package batch

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestSelectors(t *testing.T) {
	tests := []struct {
		action Action
		sig    string
		sel    string
	}{
		{BatchSome, "batchSome(address[],uint256[],bytes[],uint64[])", "0x79df4b9c"},
		{BatchSomeUntilFailure, "batchSomeUntilFailure(address[],uint256[],bytes[],uint64[])", "0xcf0491c7"},
		{BatchAll, "batchAll(address[],uint256[],bytes[],uint64[])", "0x96e292b8"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.sig, tt.action.Signature())
		sel := tt.action.Selector()
		require.Equal(t, common.FromHex(tt.sel), sel[:], tt.sig)
		require.Equal(t, ABI.Methods[tt.action.String()].ID, sel[:])

		parsed, ok := ParseAction(sel[:])
		require.True(t, ok)
		require.Equal(t, tt.action, parsed)

		named, ok := ActionByName(tt.action.String())
		require.True(t, ok)
		require.Equal(t, tt.action, named)
	}
	_, ok := ParseAction([]byte{0x79, 0xdf, 0x4b})
	require.False(t, ok)
	_, ok = ActionByName("batchNone")
	require.False(t, ok)
	require.Equal(t, "unknown", Action(7).String())
}

func TestLogShape(t *testing.T) {
	l := SubcallFailedLog(precompileAddr, 300)
	require.Equal(t, precompileAddr, l.Address)
	require.Equal(t, []common.Hash{crypto.Keccak256Hash([]byte("SubcallFailed(uint256)"))}, l.Topics)
	require.Equal(t, common.LeftPadBytes([]byte{0x01, 0x2c}, 32), l.Data)
	require.Equal(t, ABI.Events["SubcallFailed"].ID, l.Topics[0])

	l = SubcallSucceededLog(precompileAddr, 0)
	require.Equal(t, ABI.Events["SubcallSucceeded"].ID, l.Topics[0])
	require.Equal(t, make([]byte, 32), l.Data)
}

func TestLogCost(t *testing.T) {
	// LOG1 base + one topic + 32 data bytes.
	require.Equal(t, uint64(375+375+8*32), LogCost(SubcallFailedLog(precompileAddr, 0)))
	require.Equal(t, LogCost(SubcallFailedLog(precompileAddr, 0)), LogCost(SubcallFailedLog(precompileAddr, 511)))
	require.Equal(t, LogCost(SubcallFailedLog(precompileAddr, 0)), LogCost(SubcallSucceededLog(precompileAddr, 3)))
}

func TestParseIndex(t *testing.T) {
	index, ok1, ok := ParseIndex(SubcallSucceededLog(precompileAddr, 42))
	require.True(t, ok)
	require.True(t, ok1)
	require.Equal(t, uint64(42), index)

	index, ok1, ok = ParseIndex(SubcallFailedLog(precompileAddr, 7))
	require.True(t, ok)
	require.False(t, ok1)
	require.Equal(t, uint64(7), index)

	_, _, ok = ParseIndex(&types.Log{Topics: []common.Hash{{0x01}}, Data: make([]byte, 32)})
	require.False(t, ok)

	huge := new(uint256.Int).Lsh(uint256.NewInt(1), 100).Bytes32()
	_, _, ok = ParseIndex(&types.Log{Topics: []common.Hash{SubcallFailedTopic}, Data: huge[:]})
	require.False(t, ok)
}

func TestCallCost(t *testing.T) {
	zero := new(uint256.Int)
	one := uint256.NewInt(1)

	tests := []struct {
		name     string
		schedule CostSchedule
		value    *uint256.Int
		want     uint64
	}{
		{"berlin/no-value", CostSchedule{IncreaseStateAccessGas: true}, zero, 2600},
		{"berlin/nil-value", CostSchedule{IncreaseStateAccessGas: true}, nil, 2600},
		{"berlin/value", CostSchedule{IncreaseStateAccessGas: true}, one, 2600 + 9000 + 25000},
		{"tangerine/no-value", CostSchedule{CallGas: 700}, zero, 700},
		{"tangerine/value", CostSchedule{CallGas: 700}, one, 700 + 9000 + 25000},
		{"frontier/no-value", CostSchedule{CallGas: 40, EmptyConsideredExists: true}, zero, 40 + 25000},
		{"frontier/value", CostSchedule{CallGas: 40, EmptyConsideredExists: true}, one, 40 + 9000 + 25000},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, CallCost(tt.value, tt.schedule), tt.name)
	}
}

func TestEncodeRevert(t *testing.T) {
	payload := EncodeRevert("not callable by smart contracts")
	require.Equal(t, common.FromHex("0x08c379a0"), payload[:4])
	require.Zero(t, (len(payload)-4)%32)
}
