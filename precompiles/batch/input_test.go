package batch

import (
	"testing"

	"github.com/clydemeng/batchvm/params"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, action Action, input []byte) (*Input, error) {
	t.Helper()
	sel := action.Selector()
	require.Equal(t, sel[:], input[:4])
	return DecodeInput(action, input[4:])
}

func TestDecodeRoundTrip(t *testing.T) {
	to := []common.Address{bob, charlie}
	values := []*uint256.Int{uint256.NewInt(1), new(uint256.Int).Lsh(uint256.NewInt(1), 255)}
	data := [][]byte{{0xca, 0xfe}}
	gas := []uint64{0, 21_000, 7}

	in, err := decode(t, BatchSomeUntilFailure, mustEncode(t, BatchSomeUntilFailure, to, values, data, gas))
	require.NoError(t, err)
	require.Equal(t, 2, in.Len())
	require.Equal(t, to, in.To)
	require.Len(t, in.Value, 2)
	require.True(t, values[1].Eq(in.Value[1]))
	require.Equal(t, gas, in.GasLimit)
}

func TestInputItemDefaults(t *testing.T) {
	in := &Input{
		To:       []common.Address{bob, charlie, david},
		Value:    []*uint256.Int{uint256.NewInt(9)},
		Data:     [][]byte{{0x01}, {0x02}},
		GasLimit: []uint64{500},
	}
	first := in.Item(0)
	require.Equal(t, Item{Index: 0, To: bob, Value: uint256.NewInt(9), Data: []byte{0x01}, GasLimit: 500}, first)

	second := in.Item(1)
	require.Equal(t, charlie, second.To)
	require.True(t, second.Value.IsZero())
	require.Equal(t, []byte{0x02}, second.Data)
	require.Zero(t, second.GasLimit)

	third := in.Item(2)
	require.Equal(t, 2, third.Index)
	require.True(t, third.Value.IsZero())
	require.Empty(t, third.Data)
	require.Zero(t, third.GasLimit)
}

func TestDecodeArrayLimit(t *testing.T) {
	atLimit := make([]common.Address, params.BatchArrayLimit)
	_, err := decode(t, BatchSome, mustEncode(t, BatchSome, atLimit, nil, nil, nil))
	require.NoError(t, err)

	over := make([]common.Address, params.BatchArrayLimit+1)
	_, err = decode(t, BatchSome, mustEncode(t, BatchSome, over, nil, nil, nil))
	require.ErrorContains(t, err, "to array exceeds 512 entries")

	gas := make([]uint64, params.BatchArrayLimit+1)
	_, err = decode(t, BatchAll, mustEncode(t, BatchAll, nil, nil, nil, gas))
	require.ErrorContains(t, err, "gasLimit array exceeds 512 entries")
}

func TestDecodeCallDataLimit(t *testing.T) {
	ok := [][]byte{make([]byte, params.BatchCallDataLimit)}
	_, err := decode(t, BatchAll, mustEncode(t, BatchAll, []common.Address{bob}, nil, ok, nil))
	require.NoError(t, err)

	tooBig := [][]byte{{}, make([]byte, params.BatchCallDataLimit+1)}
	_, err = decode(t, BatchAll, mustEncode(t, BatchAll, []common.Address{bob}, nil, tooBig, nil))
	require.ErrorContains(t, err, "callData[1] exceeds 65536 bytes")
}

func TestOversizedInputRevertsBeforeSubcalls(t *testing.T) {
	over := make([]common.Address, params.BatchArrayLimit+1)
	h := newMockHandle(t, mustEncode(t, BatchSome, over, nil, nil, nil), 10_000_000)
	_, err := New(DefaultConfig).Execute(h)
	requireFailure(t, err, ExitRevert)
	require.Empty(t, h.calls)
	h.expectLogs()
}

func TestEncodeCalls(t *testing.T) {
	calls := []Call{
		{To: bob, Value: uint256.NewInt(3), Data: []byte{0x01}, GasLimit: 100},
		{To: charlie},
	}
	input, err := EncodeCalls(BatchAll, calls)
	require.NoError(t, err)

	in, err := decode(t, BatchAll, input)
	require.NoError(t, err)
	require.Equal(t, 2, in.Len())
	require.Equal(t, Item{Index: 0, To: bob, Value: uint256.NewInt(3), Data: []byte{0x01}, GasLimit: 100}, in.Item(0))
	require.True(t, in.Item(1).Value.IsZero())
	require.Empty(t, in.Item(1).Data)
}
