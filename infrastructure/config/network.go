package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dposnet/dposd/domain/dposconfig"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Simnet             bool   `long:"simnet" description:"Use the simulation test network"`
	Devnet             bool   `long:"devnet" description:"Use the development network"`
	OverrideParamsFile string `long:"override-params-file" description:"Overrides network params (allowed only on devnet)"`

	ActiveNetParams *dposconfig.Params
}

type overrideParamsConfig struct {
	BlockTime               *int64  `json:"blockTime"`
	MaxTransactionsPerBlock *uint32 `json:"maxTransactionsPerBlock"`
	MaxPayloadLength        *uint32 `json:"maxPayloadLength"`
	MaxClockSkewSlots       *int64  `json:"maxClockSkewSlots"`
	RoundSnapshotHistory    *uint64 `json:"roundSnapshotHistory"`
}

// ResolveNetwork parses the network command line argument and sets
// ActiveNetParams accordingly. It returns error if more than one network
// was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	// Multiple networks can't be selected simultaneously.
	numNets := 0
	networkName := ""
	if networkFlags.Simnet {
		numNets++
		networkName = dposconfig.SimnetParams.Name
	}
	if networkFlags.Devnet {
		numNets++
		networkName = dposconfig.DevnetParams.Name
	}
	if numNets > 1 {
		message := "Multiple networks parameters (simnet, devnet) cannot be used " +
			"together. Please choose only one network"
		err := errors.Errorf(message)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return err
	}
	if numNets == 0 {
		return errors.Errorf("No network was selected, use --devnet or --simnet")
	}

	registeredParams, err := dposconfig.ParamsForNetwork(networkName)
	if err != nil {
		return err
	}
	// The registered params are shared, overrides go to a copy
	params := *registeredParams
	networkFlags.ActiveNetParams = &params

	return networkFlags.overrideParams()
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *dposconfig.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overrideParams() error {
	if networkFlags.OverrideParamsFile == "" {
		return nil
	}

	if !networkFlags.Devnet {
		return errors.Errorf("override-params-file is allowed only when using devnet")
	}

	overrideParamsFile, err := os.Open(networkFlags.OverrideParamsFile)
	if err != nil {
		return err
	}
	defer overrideParamsFile.Close()

	decoder := json.NewDecoder(overrideParamsFile)
	decoder.DisallowUnknownFields()
	config := &overrideParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return errors.Wrapf(err, "couldn't parse %s", networkFlags.OverrideParamsFile)
	}

	params := networkFlags.ActiveNetParams
	if config.BlockTime != nil {
		if *config.BlockTime < 1 {
			return errors.Errorf("blockTime must be at least 1 second")
		}
		params.BlockTime = *config.BlockTime
	}

	if config.MaxTransactionsPerBlock != nil {
		params.MaxTransactionsPerBlock = *config.MaxTransactionsPerBlock
	}

	if config.MaxPayloadLength != nil {
		params.MaxPayloadLength = *config.MaxPayloadLength
	}

	if config.MaxClockSkewSlots != nil {
		params.MaxClockSkewSlots = *config.MaxClockSkewSlots
	}

	if config.RoundSnapshotHistory != nil {
		params.RoundSnapshotHistory = *config.RoundSnapshotHistory
	}

	return nil
}
