// Copyright (c) 2014-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dposconfig

import (
	"time"

	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

// Fees holds the protocol fee of every transaction type
type Fees struct {
	Send      uint64
	Signature uint64
	Delegate  uint64
	Vote      uint64

	// Multisignature is charged once per keysgroup member plus once for
	// the registering account
	Multisignature uint64
}

// Params defines a DPoS network by its parameters. These parameters may be
// used by applications to differentiate networks as well as addresses
// and keys for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Epoch is the wall-clock time of timestamp 0
	Epoch time.Time

	// BlockTime is the duration of a forging slot in seconds
	BlockTime int64

	// ActiveDelegates is the number of delegates forging in every round,
	// and so the number of blocks in a round
	ActiveDelegates uint64

	// BlockVersion is the only block version accepted
	BlockVersion uint32

	// MaxTransactionsPerBlock is the maximum number of transactions a
	// block may include
	MaxTransactionsPerBlock uint32

	// MaxPayloadLength is the maximum length in bytes of the serialized
	// transactions of a block
	MaxPayloadLength uint32

	// MaxClockSkewSlots is the number of slots a block may be ahead of
	// the local clock
	MaxClockSkewSlots int64

	// MaxVotesPerAccount is the maximum number of delegates an account may
	// vote for at the same time
	MaxVotesPerAccount int

	// MaxVotesPerTransaction is the maximum number of added and removed
	// votes in a single vote transaction
	MaxVotesPerTransaction int

	// MaxKeysgroupSize is the maximum number of cosigners of a
	// multisignature account
	MaxKeysgroupSize int

	// MaxMultisignatureLifetime is the maximum time in hours a
	// multisignature transaction may wait for its cosigners
	MaxMultisignatureLifetime uint32

	// RewardOffset is the first height that is rewarded
	RewardOffset uint64

	// RewardDistance is the number of heights between reward milestones
	RewardDistance uint64

	// RewardMilestones are the consecutive block rewards. The last one
	// is kept forever.
	RewardMilestones []uint64

	// Fees are the protocol transaction fees
	Fees Fees

	// RoundSnapshotHistory is the number of past rounds whose snapshots are
	// kept, which bounds how deep the chain can be rolled back
	RoundSnapshotHistory uint64

	// GenesisDelegates is the number of delegates registered by the
	// genesis block
	GenesisDelegates int

	// GenesisDelegateStake is the balance the genesis block gives its
	// lowest-ranked delegate. Delegate i of n receives (n-i) times this.
	GenesisDelegateStake uint64

	// GenesisSupply is the total amount issued by the genesis block
	GenesisSupply uint64

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *externalapi.DomainBlock
}

// Reward returns the block reward at the given height
func (p *Params) Reward(height uint64) uint64 {
	if height < p.RewardOffset || len(p.RewardMilestones) == 0 {
		return 0
	}
	milestone := (height - p.RewardOffset) / p.RewardDistance
	if milestone >= uint64(len(p.RewardMilestones)) {
		milestone = uint64(len(p.RewardMilestones)) - 1
	}
	return p.RewardMilestones[milestone]
}

// Fee returns the protocol fee of the given transaction
func (p *Params) Fee(transaction *externalapi.DomainTransaction) uint64 {
	switch transaction.Type {
	case externalapi.TransactionTypeSend:
		return p.Fees.Send
	case externalapi.TransactionTypeSignature:
		return p.Fees.Signature
	case externalapi.TransactionTypeDelegate:
		return p.Fees.Delegate
	case externalapi.TransactionTypeVote:
		return p.Fees.Vote
	case externalapi.TransactionTypeMultisignature:
		keysgroupSize := 0
		if transaction.Asset.Multisignature != nil {
			keysgroupSize = len(transaction.Asset.Multisignature.Keysgroup)
		}
		return p.Fees.Multisignature * uint64(keysgroupSize+1)
	}
	return 0
}

const coin = 100000000

var defaultFees = Fees{
	Send:           coin / 10,
	Signature:      5 * coin,
	Delegate:       25 * coin,
	Vote:           1 * coin,
	Multisignature: 5 * coin,
}

var networkEpoch = time.Date(2016, 5, 24, 17, 0, 0, 0, time.UTC)

// DevnetParams defines the network parameters for the development network.
var DevnetParams = Params{
	Name:                      "devnet",
	Epoch:                     networkEpoch,
	BlockTime:                 10,
	ActiveDelegates:           101,
	BlockVersion:              0,
	MaxTransactionsPerBlock:   25,
	MaxPayloadLength:          1024 * 1024,
	MaxClockSkewSlots:         1,
	MaxVotesPerAccount:        1,
	MaxVotesPerTransaction:    2,
	MaxKeysgroupSize:          15,
	MaxMultisignatureLifetime: 72,
	RewardOffset:              2160,
	RewardDistance:            3000000,
	RewardMilestones:          []uint64{5 * coin, 4 * coin, 3 * coin, 2 * coin, 1 * coin},
	Fees:                      defaultFees,
	RoundSnapshotHistory:      101,
	GenesisDelegates:          101,
	GenesisDelegateStake:      1000 * coin,
	GenesisSupply:             100000000 * coin,
}

// SimnetParams defines the network parameters for the simulation test
// network. It has few active delegates and rewards every block, which makes
// rounds close quickly.
var SimnetParams = Params{
	Name:                      "simnet",
	Epoch:                     networkEpoch,
	BlockTime:                 10,
	ActiveDelegates:           5,
	BlockVersion:              0,
	MaxTransactionsPerBlock:   25,
	MaxPayloadLength:          1024 * 1024,
	MaxClockSkewSlots:         1,
	MaxVotesPerAccount:        1,
	MaxVotesPerTransaction:    2,
	MaxKeysgroupSize:          15,
	MaxMultisignatureLifetime: 72,
	RewardOffset:              2,
	RewardDistance:            100,
	RewardMilestones:          []uint64{5 * coin, 4 * coin, 3 * coin},
	Fees:                      defaultFees,
	RoundSnapshotHistory:      10,
	GenesisDelegates:          7,
	GenesisDelegateStake:      1000 * coin,
	GenesisSupply:             100000000 * coin,
}

// ErrUnknownNetwork describes an error where the requested network is not
// one of the known networks.
var ErrUnknownNetwork = errors.New("unknown network")

var registeredNets = map[string]*Params{}

func mustRegister(params *Params) {
	if _, ok := registeredNets[params.Name]; ok {
		panic("failed to register network: duplicate network " + params.Name)
	}
	registeredNets[params.Name] = params
}

// ParamsForNetwork returns the parameters of the network with the given name
func ParamsForNetwork(name string) (*Params, error) {
	params, ok := registeredNets[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownNetwork, "network %s", name)
	}
	return params, nil
}

func init() {
	DevnetParams.GenesisBlock = mustBuildGenesisBlock(&DevnetParams)
	SimnetParams.GenesisBlock = mustBuildGenesisBlock(&SimnetParams)

	mustRegister(&DevnetParams)
	mustRegister(&SimnetParams)
}
