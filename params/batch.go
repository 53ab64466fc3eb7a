// Copyright 2024 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package params holds the protocol constants of the batch precompile.
package params

import "github.com/ethereum/go-ethereum/common"

const (
	BatchArrayLimit    = 1 << 9  // Maximum number of entries in each batch argument array
	BatchCallDataLimit = 1 << 16 // Maximum size in bytes of a single sub-call payload

	// BatchCodeReadGas is charged once per invocation for loading the code
	// stored at the caller's address.
	BatchCodeReadGas uint64 = 1000
)

// BatchPrecompileAddress is where the batch precompile is installed.
var BatchPrecompileAddress = common.HexToAddress("0x0000000000000000000000000000000000000808")

// CallPermitMarkerCode is the placeholder code stored at precompile addresses
// (PUSH1 0x00 PUSH1 0x00 REVERT). A caller carrying exactly this code is a
// trusted forwarding precompile rather than a user contract.
var CallPermitMarkerCode = []byte{0x60, 0x00, 0x60, 0x00, 0xfd}
