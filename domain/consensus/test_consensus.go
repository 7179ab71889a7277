package consensus

import (
	"context"

	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/model/testapi"
	"github.com/dposnet/dposd/domain/consensus/processes/blockbuilder"
	"github.com/dposnet/dposd/domain/consensus/utils/slots"
	"github.com/dposnet/dposd/domain/dposconfig"
	"github.com/dposnet/dposd/util/mstime"
	"github.com/pkg/errors"
)

type testConsensus struct {
	*consensus
	testBlockBuilder testapi.TestBlockBuilder
	wallClock        *mstime.ManualClock
	forgerKeyPairs   map[string]*externalapi.KeyPair
}

func newTestConsensus(c *consensus, wallClock *mstime.ManualClock) (*testConsensus, error) {
	delegateKeyPairs, err := c.params.GenesisDelegateKeyPairs()
	if err != nil {
		return nil, err
	}
	tc := &testConsensus{
		consensus:        c,
		testBlockBuilder: blockbuilder.NewTestBlockBuilder(c.blockBuilder),
		wallClock:        wallClock,
		forgerKeyPairs:   make(map[string]*externalapi.KeyPair, len(delegateKeyPairs)),
	}
	for _, keyPair := range delegateKeyPairs {
		tc.AddForgerKeyPair(keyPair)
	}
	return tc, nil
}

func (tc *testConsensus) Params() *dposconfig.Params {
	return tc.params
}

func (tc *testConsensus) DatabaseContext() model.DBManager {
	return tc.databaseContext
}

func (tc *testConsensus) SlotClock() *slots.Clock {
	return tc.slotClock
}

func (tc *testConsensus) WallClock() *mstime.ManualClock {
	return tc.wallClock
}

func (tc *testConsensus) ForgerKeyPair(publicKey string) (*externalapi.KeyPair, error) {
	keyPair, ok := tc.forgerKeyPairs[publicKey]
	if !ok {
		return nil, errors.Errorf("no key pair for delegate %s", publicKey)
	}
	return keyPair, nil
}

func (tc *testConsensus) AddForgerKeyPair(keyPair *externalapi.KeyPair) {
	tc.forgerKeyPairs[keyPair.PublicKey] = keyPair
}

func (tc *testConsensus) NextBlock(transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {
	tip, err := tc.LastBlock()
	if err != nil {
		return nil, err
	}
	delegates, err := tc.GenerateDelegateList(tip.Height + 1)
	if err != nil {
		return nil, err
	}
	slot := tc.slotClock.SlotNumber(tip.Timestamp) + 1
	keyPair, err := tc.ForgerKeyPair(delegates[tc.slotClock.ForgerIndex(slot)])
	if err != nil {
		return nil, err
	}

	timestamp := tc.slotClock.SlotTime(slot)
	tc.wallClock.Set(tc.slotClock.RealTime(timestamp))
	return tc.BuildBlock(keyPair, timestamp, transactions)
}

func (tc *testConsensus) AddBlock(transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {
	block, err := tc.NextBlock(transactions)
	if err != nil {
		return nil, err
	}
	err = tc.ApplyBlock(context.Background(), block, externalapi.ApplyOptions{Persist: true})
	if err != nil {
		return nil, err
	}
	return block, nil
}

func (tc *testConsensus) AddEmptyBlocks(count int) error {
	for i := 0; i < count; i++ {
		_, err := tc.AddBlock(nil)
		if err != nil {
			return err
		}
	}
	return nil
}

func (tc *testConsensus) AccountStore() model.AccountStore {
	return tc.accountStore
}

func (tc *testConsensus) BlockStore() model.BlockStore {
	return tc.blockStore
}

func (tc *testConsensus) MutationLogStore() model.MutationLogStore {
	return tc.mutationLogStore
}

func (tc *testConsensus) RoundStore() model.RoundStore {
	return tc.roundStore
}

func (tc *testConsensus) TransactionStore() model.TransactionStore {
	return tc.transactionStore
}

func (tc *testConsensus) BlockBuilder() testapi.TestBlockBuilder {
	return tc.testBlockBuilder
}

func (tc *testConsensus) BlockProcessor() model.BlockProcessor {
	return tc.blockProcessor
}

func (tc *testConsensus) BlockValidator() model.BlockValidator {
	return tc.blockValidator
}

func (tc *testConsensus) DelegateListBuilder() model.DelegateListBuilder {
	return tc.delegateListBuilder
}

func (tc *testConsensus) RoundAccountant() model.RoundAccountant {
	return tc.roundAccountant
}

func (tc *testConsensus) TransactionApplier() model.TransactionApplier {
	return tc.transactionApplier
}

func (tc *testConsensus) TransactionValidator() model.TransactionValidator {
	return tc.transactionValidator
}
