package batch

import (
	"bytes"

	"github.com/clydemeng/batchvm/params"
	"github.com/clydemeng/batchvm/tracing"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Config holds the tunables of the batch precompile.
type Config struct {
	// CodeReadGas is charged before loading the caller's code.
	CodeReadGas uint64

	// TrustedCallerCode lists the exact code blobs a caller may carry and
	// still use the batch. Callers without code are always accepted.
	TrustedCallerCode []hexutil.Bytes

	Hooks *tracing.Hooks `toml:"-"`
}

// DefaultConfig contains the protocol defaults.
var DefaultConfig = Config{
	CodeReadGas:       params.BatchCodeReadGas,
	TrustedCallerCode: []hexutil.Bytes{params.CallPermitMarkerCode},
}

func (c *Config) trustedCaller(code []byte) bool {
	if len(code) == 0 {
		return true
	}
	for _, marker := range c.TrustedCallerCode {
		if bytes.Equal(code, marker) {
			return true
		}
	}
	return false
}
