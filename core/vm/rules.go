package vm

import (
	"math/big"

	"github.com/clydemeng/batchvm/precompiles/batch"
	"github.com/ethereum/go-ethereum/params"
)

// ScheduleFor extracts the call pricing parameters of the given fork rules.
func ScheduleFor(rules params.Rules) batch.CostSchedule {
	s := batch.CostSchedule{
		IncreaseStateAccessGas: rules.IsBerlin,
		EmptyConsideredExists:  !rules.IsEIP158,
		CallGas:                params.CallGasFrontier,
	}
	if rules.IsEIP150 {
		s.CallGas = params.CallGasEIP150
	}
	return s
}

// ForkName returns the name of the latest fork of cfg active at the given
// block number and timestamp.
func ForkName(cfg *params.ChainConfig, num uint64, ts uint64) string {
	bn := new(big.Int).SetUint64(num)
	switch {
	case cfg.IsPrague(bn, ts):
		return "prague"
	case cfg.IsCancun(bn, ts):
		return "cancun"
	case cfg.IsShanghai(bn, ts):
		return "shanghai"
	case cfg.IsLondon(bn):
		return "london"
	case cfg.IsBerlin(bn):
		return "berlin"
	case cfg.IsIstanbul(bn):
		return "istanbul"
	case cfg.IsPetersburg(bn):
		return "petersburg"
	case cfg.IsConstantinople(bn):
		return "constantinople"
	case cfg.IsByzantium(bn):
		return "byzantium"
	case cfg.IsEIP158(bn):
		return "spuriousdragon"
	case cfg.IsEIP150(bn):
		return "tangerinewhistle"
	case cfg.IsHomestead(bn):
		return "homestead"
	default:
		return "frontier"
	}
}
