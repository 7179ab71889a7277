package consensus

import (
	"context"
	"sync"

	"github.com/dposnet/dposd/domain/consensus/database"
	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/processes/sequencer"
	"github.com/dposnet/dposd/domain/consensus/utils/slots"
	"github.com/dposnet/dposd/domain/dposconfig"
)

type consensus struct {
	lock            *sync.RWMutex
	params          *dposconfig.Params
	databaseContext model.DBManager
	slotClock       *slots.Clock
	sequencer       *sequencer.Sequencer

	blockProcessor       model.BlockProcessor
	blockBuilder         model.BlockBuilder
	blockValidator       model.BlockValidator
	transactionValidator model.TransactionValidator
	transactionApplier   model.TransactionApplier
	delegateListBuilder  model.DelegateListBuilder
	roundAccountant      model.RoundAccountant

	accountStore     model.AccountStore
	blockStore       model.BlockStore
	transactionStore model.TransactionStore
	mutationLogStore model.MutationLogStore
	roundStore       model.RoundStore
}

// execute runs f as a sequenced ledger job. Readers are excluded while f
// runs. The observer calls f queued run after the lock is released, even
// when f failed after committing part of its work.
func (s *consensus) execute(ctx context.Context, name string, f func(state *model.NodeState) error) error {
	return s.sequencer.Execute(ctx, name, func(state *model.NodeState) error {
		err := s.executeLocked(state, f)
		state.RunNotifications()
		return err
	})
}

func (s *consensus) executeLocked(state *model.NodeState, f func(state *model.NodeState) error) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return f(state)
}

// Init applies the genesis block to an empty database, or loads the chain
// tip of an existing one
func (s *consensus) Init(ctx context.Context) error {
	return s.execute(ctx, "Init", func(state *model.NodeState) error {
		return s.blockProcessor.ApplyGenesisBlock(state)
	})
}

func (s *consensus) Stop() {
	s.sequencer.Stop()
}

// ApplyBlock verifies the given block and, if valid, applies it on top of
// the chain tip
func (s *consensus) ApplyBlock(ctx context.Context, block *externalapi.DomainBlock,
	options externalapi.ApplyOptions) error {

	return s.execute(ctx, "ApplyBlock", func(state *model.NodeState) error {
		return s.blockProcessor.ApplyBlock(state, block, options)
	})
}

func (s *consensus) DeleteLastBlock(ctx context.Context) (*externalapi.DomainBlock, error) {
	var deleted *externalapi.DomainBlock
	err := s.execute(ctx, "DeleteLastBlock", func(state *model.NodeState) error {
		var err error
		deleted, err = s.blockProcessor.DeleteLastBlock(state)
		return err
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *consensus) DeleteAfterBlock(ctx context.Context, height uint64) error {
	return s.execute(ctx, "DeleteAfterBlock", func(state *model.NodeState) error {
		return s.blockProcessor.DeleteAfterBlock(state, height)
	})
}

func (s *consensus) SetSyncing(ctx context.Context, isSyncing bool) error {
	return s.execute(ctx, "SetSyncing", func(state *model.NodeState) error {
		if state.Syncing != isSyncing {
			log.Infof("Syncing set to %t", isSyncing)
		}
		state.Syncing = isSyncing
		return nil
	})
}

func (s *consensus) VerifyReceipt(block *externalapi.DomainBlock) *externalapi.VerificationResult {
	return s.blockValidator.VerifyReceipt(block)
}

func (s *consensus) VerifyBlock(block *externalapi.DomainBlock) (*externalapi.VerificationResult, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.blockValidator.VerifyBlock(stagingArea, block)
}

// BuildBlock builds and signs a block on top of the chain tip with the
// candidate transactions that can be applied
func (s *consensus) BuildBlock(keyPair *externalapi.KeyPair, timestamp int64,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.blockBuilder.BuildBlock(keyPair, timestamp, transactions)
}

func (s *consensus) ValidateTransactionInIsolation(transaction *externalapi.DomainTransaction) error {
	return s.transactionValidator.ValidateTransactionInIsolation(transaction)
}

func (s *consensus) ValidateTransactionInContext(transaction *externalapi.DomainTransaction) error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.transactionValidator.ValidateTransactionInContext(stagingArea, transaction)
}

// GenerateDelegateList returns the forging order of the round containing
// height
func (s *consensus) GenerateDelegateList(height uint64) ([]string, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.delegateListBuilder.DelegateList(stagingArea, s.slotClock.RoundOf(height))
}

func (s *consensus) GetRound(height uint64) (*externalapi.Round, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.roundAccountant.Round(stagingArea, height)
}

func (s *consensus) GetRoundSnapshot(round uint64) (*externalapi.RoundSnapshot, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.roundStore.RoundSnapshot(s.databaseContext, stagingArea, round)
}

// GetAccount returns the account at address, or nil if there is none
func (s *consensus) GetAccount(address string) (*externalapi.Account, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	account, err := s.accountStore.Account(s.databaseContext, stagingArea, address)
	if database.IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (s *consensus) GetAccounts() ([]*externalapi.Account, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.accountStore.Accounts(s.databaseContext, stagingArea)
}

func (s *consensus) GetBlock(blockID *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.blockStore.Block(s.databaseContext, stagingArea, blockID)
}

func (s *consensus) GetBlockByHeight(height uint64) (*externalapi.DomainBlock, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.blockStore.BlockByHeight(s.databaseContext, stagingArea, height)
}

func (s *consensus) LastBlock() (*externalapi.DomainBlock, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.blockStore.Tip(s.databaseContext, stagingArea)
}

func (s *consensus) TransactionExists(transactionID *externalapi.DomainHash) (bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.transactionStore.Has(s.databaseContext, stagingArea, transactionID)
}

// LedgerCommitment returns the MuHash commitment over all accounts
func (s *consensus) LedgerCommitment() (*externalapi.DomainHash, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	stagingArea := model.NewStagingArea()
	return s.accountStore.Commitment(s.databaseContext, stagingArea)
}

func (s *consensus) RegisterBlockAppliedObserver(observer externalapi.BlockAppliedObserver) {
	s.blockProcessor.RegisterBlockAppliedObserver(observer)
}

func (s *consensus) RegisterTransactionsSavedObserver(observer externalapi.TransactionsSavedObserver) {
	s.blockProcessor.RegisterTransactionsSavedObserver(observer)
}

func (s *consensus) SetTransactionPoolUpdater(updater externalapi.TransactionPoolUpdater) {
	s.blockProcessor.SetTransactionPoolUpdater(updater)
}
