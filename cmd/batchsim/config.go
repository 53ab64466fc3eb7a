package main

import (
	"bufio"
	"errors"
	"fmt"
	"math/big"
	"os"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"github.com/clydemeng/batchvm/core"
	bvm "github.com/clydemeng/batchvm/core/vm"
	"github.com/clydemeng/batchvm/precompiles/batch"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
	"github.com/naoina/toml"
)

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

const (
	defaultFork = "london"
	defaultGas  = 1_000_000

	// neverBlock is a block number no simulation reaches.
	neverBlock = 1 << 62
)

// scenario is the TOML description of a simulation: a prestate and the
// batches applied on top of it, in order, within a single block.
type scenario struct {
	Fork       string
	Gas        uint64
	Precompile batch.Config
	Alloc      map[string]account
	Batches    []batchSpec
}

type account struct {
	Balance *math.HexOrDecimal256
	Code    hexutil.Bytes
	Storage map[string]string
}

type batchSpec struct {
	Action string
	From   common.Address
	Gas    uint64
	Value  *math.HexOrDecimal256
	Calls  []callSpec
}

type callSpec struct {
	To       common.Address
	Value    *math.HexOrDecimal256
	Data     hexutil.Bytes
	GasLimit uint64
}

func defaultScenario() *scenario {
	return &scenario{
		Fork:       defaultFork,
		Gas:        defaultGas,
		Precompile: batch.DefaultConfig,
	}
}

func loadScenario(file string) (*scenario, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	s := defaultScenario()
	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(s)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// forks lists the supported rule sets, oldest first.
var forks = []string{
	"frontier",
	"homestead",
	"tangerinewhistle",
	"spuriousdragon",
	"byzantium",
	"constantinople",
	"petersburg",
	"istanbul",
	"berlin",
	"london",
	"shanghai",
	"cancun",
	"prague",
}

// chainConfig returns a configuration with every fork up to and including
// fork active from genesis. Merged reports whether fork is post-merge.
func chainConfig(fork string) (cfg *params.ChainConfig, merged bool, err error) {
	idx := slices.Index(forks, strings.ToLower(fork))
	if idx < 0 {
		return nil, false, fmt.Errorf("unknown fork %q, want one of %s", fork, strings.Join(forks, ", "))
	}
	var (
		zero = big.NewInt(0)
		t0   = uint64(0)
	)
	cfg = &params.ChainConfig{ChainID: big.NewInt(1337)}
	activate := []func(){
		func() {},
		func() { cfg.HomesteadBlock = zero },
		func() { cfg.EIP150Block = zero },
		func() { cfg.EIP155Block, cfg.EIP158Block = zero, zero },
		func() { cfg.ByzantiumBlock = zero },
		func() { cfg.ConstantinopleBlock, cfg.PetersburgBlock = zero, big.NewInt(neverBlock) },
		func() { cfg.PetersburgBlock = zero },
		func() { cfg.IstanbulBlock, cfg.MuirGlacierBlock = zero, zero },
		func() { cfg.BerlinBlock = zero },
		func() { cfg.LondonBlock, cfg.ArrowGlacierBlock, cfg.GrayGlacierBlock = zero, zero, zero },
		func() { cfg.TerminalTotalDifficulty, cfg.MergeNetsplitBlock, cfg.ShanghaiTime = zero, zero, &t0 },
		func() { cfg.CancunTime = &t0 },
		func() { cfg.PragueTime = &t0 },
	}
	for _, f := range activate[:idx+1] {
		f()
	}
	return cfg, idx >= slices.Index(forks, "shanghai"), nil
}

// simulation is a scenario ready to be processed.
type simulation struct {
	config  *params.ChainConfig
	header  *types.Header
	statedb *state.StateDB
	msgs    []*core.Message
	actions []batch.Action
}

func (s *scenario) simulation() (*simulation, error) {
	config, merged, err := chainConfig(s.Fork)
	if err != nil {
		return nil, err
	}
	statedb, err := state.New(types.EmptyRootHash, state.NewDatabaseForTesting())
	if err != nil {
		return nil, err
	}
	for key, acc := range s.Alloc {
		if !common.IsHexAddress(key) {
			return nil, fmt.Errorf("invalid alloc address %q", key)
		}
		addr := common.HexToAddress(key)
		if acc.Balance != nil {
			balance, overflow := uint256.FromBig((*big.Int)(acc.Balance))
			if overflow {
				return nil, fmt.Errorf("balance of %s overflows", addr)
			}
			statedb.SetBalance(addr, balance, tracing.BalanceChangeUnspecified)
		}
		if len(acc.Code) > 0 {
			statedb.SetCode(addr, acc.Code)
		}
		for slot, value := range acc.Storage {
			statedb.SetState(addr, common.HexToHash(slot), common.HexToHash(value))
		}
	}
	statedb.Finalise(true)

	sim := &simulation{
		config:  config,
		statedb: statedb,
		header: &types.Header{
			Number:     big.NewInt(1),
			GasLimit:   params.MaxGasLimit,
			Time:       1,
			Difficulty: big.NewInt(1),
			BaseFee:    big.NewInt(0),
		},
	}
	if merged {
		sim.header.Difficulty = new(big.Int)
	}
	for i, b := range s.Batches {
		action, ok := batch.ActionByName(b.Action)
		if !ok {
			return nil, fmt.Errorf("batch %d: unknown action %q", i, b.Action)
		}
		calls, err := b.calls()
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		gas := b.Gas
		if gas == 0 {
			gas = s.Gas
		}
		msg, err := core.NewBatchMessage(b.From, action, calls, gas)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		if msg.Value, err = toUint256(b.Value); err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		sim.msgs = append(sim.msgs, msg)
		sim.actions = append(sim.actions, action)
	}
	return sim, nil
}

// fork names the rules the simulation runs under.
func (sim *simulation) fork() string {
	return bvm.ForkName(sim.config, sim.header.Number.Uint64(), sim.header.Time)
}

func (b *batchSpec) calls() ([]batch.Call, error) {
	calls := make([]batch.Call, len(b.Calls))
	for i, c := range b.Calls {
		value, err := toUint256(c.Value)
		if err != nil {
			return nil, fmt.Errorf("call %d: %w", i, err)
		}
		calls[i] = batch.Call{To: c.To, Value: value, Data: c.Data, GasLimit: c.GasLimit}
	}
	return calls, nil
}

func toUint256(v *math.HexOrDecimal256) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if (*big.Int)(v).Sign() < 0 {
		return nil, errors.New("negative value")
	}
	out, overflow := uint256.FromBig((*big.Int)(v))
	if overflow {
		return nil, errors.New("value overflows 256 bits")
	}
	return out, nil
}
