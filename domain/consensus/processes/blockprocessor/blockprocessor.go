package blockprocessor

import (
	"sync"

	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/dposconfig"
)

// blockProcessor is responsible for applying blocks to the ledger and
// rolling them back
type blockProcessor struct {
	params          *dposconfig.Params
	databaseContext model.DBManager

	blockValidator       model.BlockValidator
	transactionValidator model.TransactionValidator
	transactionApplier   model.TransactionApplier
	roundAccountant      model.RoundAccountant

	accountStore     model.AccountStore
	blockStore       model.BlockStore
	transactionStore model.TransactionStore
	mutationLogStore model.MutationLogStore

	observersLock              sync.RWMutex
	blockAppliedObservers      []externalapi.BlockAppliedObserver
	transactionsSavedObservers []externalapi.TransactionsSavedObserver
	transactionPoolUpdater     externalapi.TransactionPoolUpdater
}

// New instantiates a new BlockProcessor
func New(
	params *dposconfig.Params,
	databaseContext model.DBManager,

	blockValidator model.BlockValidator,
	transactionValidator model.TransactionValidator,
	transactionApplier model.TransactionApplier,
	roundAccountant model.RoundAccountant,

	accountStore model.AccountStore,
	blockStore model.BlockStore,
	transactionStore model.TransactionStore,
	mutationLogStore model.MutationLogStore) model.BlockProcessor {

	return &blockProcessor{
		params:          params,
		databaseContext: databaseContext,

		blockValidator:       blockValidator,
		transactionValidator: transactionValidator,
		transactionApplier:   transactionApplier,
		roundAccountant:      roundAccountant,

		accountStore:     accountStore,
		blockStore:       blockStore,
		transactionStore: transactionStore,
		mutationLogStore: mutationLogStore,
	}
}

func (bp *blockProcessor) RegisterBlockAppliedObserver(observer externalapi.BlockAppliedObserver) {
	bp.observersLock.Lock()
	defer bp.observersLock.Unlock()

	bp.blockAppliedObservers = append(bp.blockAppliedObservers, observer)
}

func (bp *blockProcessor) RegisterTransactionsSavedObserver(observer externalapi.TransactionsSavedObserver) {
	bp.observersLock.Lock()
	defer bp.observersLock.Unlock()

	bp.transactionsSavedObservers = append(bp.transactionsSavedObservers, observer)
}

func (bp *blockProcessor) SetTransactionPoolUpdater(updater externalapi.TransactionPoolUpdater) {
	bp.observersLock.Lock()
	defer bp.observersLock.Unlock()

	bp.transactionPoolUpdater = updater
}

func (bp *blockProcessor) commit(stagingArea *model.StagingArea) error {
	dbTx, err := bp.databaseContext.Begin()
	if err != nil {
		return err
	}
	defer dbTx.RollbackUnlessClosed()

	err = stagingArea.Commit(dbTx)
	if err != nil {
		return err
	}
	return dbTx.Commit()
}
