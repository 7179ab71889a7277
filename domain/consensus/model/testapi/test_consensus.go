package testapi

import (
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/utils/slots"
	"github.com/dposnet/dposd/domain/dposconfig"
	"github.com/dposnet/dposd/util/mstime"
)

// TestConsensus wraps the Consensus interface with some methods that are needed by tests only
type TestConsensus interface {
	externalapi.Consensus

	Params() *dposconfig.Params
	DatabaseContext() model.DBManager
	SlotClock() *slots.Clock
	WallClock() *mstime.ManualClock

	// ForgerKeyPair returns the key pair of the delegate with the given
	// public key. The genesis delegates are known from the start.
	ForgerKeyPair(publicKey string) (*externalapi.KeyPair, error)
	AddForgerKeyPair(keyPair *externalapi.KeyPair)

	// NextBlock builds a block for the first forging slot after the chain
	// tip, signed by the delegate that owns the slot, and moves the wall
	// clock to that slot
	NextBlock(transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)

	// AddBlock builds the next block with NextBlock and applies it
	AddBlock(transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error)

	// AddEmptyBlocks applies count blocks without transactions
	AddEmptyBlocks(count int) error

	AccountStore() model.AccountStore
	BlockStore() model.BlockStore
	MutationLogStore() model.MutationLogStore
	RoundStore() model.RoundStore
	TransactionStore() model.TransactionStore

	BlockBuilder() TestBlockBuilder
	BlockProcessor() model.BlockProcessor
	BlockValidator() model.BlockValidator
	DelegateListBuilder() model.DelegateListBuilder
	RoundAccountant() model.RoundAccountant
	TransactionApplier() model.TransactionApplier
	TransactionValidator() model.TransactionValidator
}
