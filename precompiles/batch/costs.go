package batch

import (
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

// CostSchedule is the part of the fork's gas schedule relevant to pricing a
// sub-call issued by the dispatcher.
type CostSchedule struct {
	// IncreaseStateAccessGas prices account access by warmth (EIP-2929)
	// instead of the flat CALL base gas.
	IncreaseStateAccessGas bool
	// EmptyConsideredExists is true before EIP-158: calling an absent
	// account pays the new-account surcharge even without value.
	EmptyConsideredExists bool
	// CallGas is the flat CALL base gas used without EIP-2929.
	CallGas uint64
}

// CallCost returns the worst-case intrinsic cost of a CALL carrying value: a
// cold target that does not exist yet.
func CallCost(value *uint256.Int, s CostSchedule) uint64 {
	transfersValue := value != nil && !value.IsZero()

	cost := s.CallGas
	if s.IncreaseStateAccessGas {
		cost = params.ColdAccountAccessCostEIP2929
	}
	if transfersValue {
		cost += params.CallValueTransferGas
	}
	if transfersValue || s.EmptyConsideredExists {
		cost += params.CallNewAccountGas
	}
	return cost
}
