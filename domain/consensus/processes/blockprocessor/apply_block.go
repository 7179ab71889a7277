package blockprocessor

import (
	"time"

	"github.com/dposnet/dposd/domain/consensus/model"
	"github.com/dposnet/dposd/domain/consensus/model/externalapi"
	"github.com/dposnet/dposd/domain/consensus/processes/blockprocessor/blocklogger"
	"github.com/dposnet/dposd/domain/consensus/ruleerrors"
	"github.com/dposnet/dposd/infrastructure/logger"
	"github.com/dposnet/dposd/infrastructure/metrics"
	"github.com/pkg/errors"
)

// ApplyBlock verifies block against the chain tip, applies its
// transactions and closes its round when it is the last block of one.
// Unless options.Persist is false, everything is committed in a single
// database transaction and block becomes the new chain tip.
func (bp *blockProcessor) ApplyBlock(state *model.NodeState, block *externalapi.DomainBlock,
	options externalapi.ApplyOptions) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ApplyBlock")
	defer onEnd()

	started := time.Now()
	err := bp.applyBlock(state, block, options)
	if err != nil {
		logBlockState(block, externalapi.BlockStateRejected)
		metrics.ObserveBlockRejected(err)
		if kind, ok := ruleerrors.KindOf(err); ok && kind == ruleerrors.KindConsistency {
			log.Criticalf("Applying block %s at height %d left the ledger inconsistent: %+v",
				block.ID, block.Height, err)
		}
		return err
	}
	if !options.Persist {
		return nil
	}

	metrics.ObserveBlockApplied(block, started)
	blocklogger.LogBlock(block)
	bp.notifyBlockApplied(state, block, options)
	return nil
}

func (bp *blockProcessor) applyBlock(state *model.NodeState, block *externalapi.DomainBlock,
	options externalapi.ApplyOptions) error {

	if !state.Loaded {
		return errors.Wrapf(ruleerrors.ErrNotLoaded, "can not apply block %s", block.ID)
	}
	logBlockState(block, externalapi.BlockStateReceived)

	stagingArea := model.NewStagingArea()
	result, err := bp.blockValidator.VerifyBlock(stagingArea, block)
	if err != nil {
		return err
	}
	if !result.Verified {
		return result.FirstError()
	}
	logBlockState(block, externalapi.BlockStateVerified)

	logBlockState(block, externalapi.BlockStateApplying)
	err = bp.checkSenders(stagingArea, block)
	if err != nil {
		return err
	}
	ops, err := bp.applyTransactions(stagingArea, block)
	if err != nil {
		return err
	}

	bp.blockStore.Stage(stagingArea, block)
	state.Ticking = true
	_, err = bp.roundAccountant.Tick(stagingArea, block)
	state.Ticking = false
	if err != nil {
		return err
	}

	if !options.Persist {
		log.Debugf("Dry run of block %s at height %d succeeded", block.ID, block.Height)
		return nil
	}

	for _, tx := range block.Transactions {
		bp.transactionStore.Stage(stagingArea, tx.ID, block.Height)
	}
	bp.mutationLogStore.Stage(stagingArea, block.Height, ops)
	bp.blockStore.StageTip(stagingArea, block.Height)

	err = bp.commit(stagingArea)
	if err != nil {
		return err
	}
	state.LastBlock = block
	logBlockState(block, externalapi.BlockStateCommitted)
	return nil
}

// checkSenders resolves every sender of block in a single read and checks
// each transaction is covered by its sender's balance at its position in
// the block. Senders credited earlier in the same block count as resolved.
func (bp *blockProcessor) checkSenders(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	if len(block.Transactions) == 0 {
		return nil
	}
	addresses := make([]string, len(block.Transactions))
	for i, tx := range block.Transactions {
		addresses[i] = tx.SenderID
	}
	senders, err := bp.accountStore.AccountsByAddress(bp.databaseContext, stagingArea, addresses)
	if err != nil {
		return err
	}

	balances := make(map[string]uint64, len(senders))
	for address, sender := range senders {
		balances[address] = sender.Balance
	}
	for _, tx := range block.Transactions {
		balance, ok := balances[tx.SenderID]
		if !ok {
			return errors.Wrapf(ruleerrors.ErrMissingAccount, "sender %s of transaction %s of block %s",
				tx.SenderID, tx.ID, block.ID)
		}
		spent := tx.Amount + tx.Fee
		if spent < tx.Amount {
			return errors.Wrapf(ruleerrors.ErrInvalidAmount, "transaction %s spends %d with fee %d",
				tx.ID, tx.Amount, tx.Fee)
		}
		if balance < spent {
			return errors.Wrapf(ruleerrors.ErrInsufficientBalance, "account %s has balance %d and "+
				"transaction %s of block %s spends %d", tx.SenderID, balance, tx.ID, block.ID, spent)
		}
		balances[tx.SenderID] = balance - spent
		if tx.Type == externalapi.TransactionTypeSend {
			balances[tx.RecipientID] += tx.Amount
		}
	}
	return nil
}

// applyTransactions applies the transactions of block in order and
// returns the ledger ops they produced
func (bp *blockProcessor) applyTransactions(stagingArea *model.StagingArea,
	block *externalapi.DomainBlock) ([]*externalapi.LedgerOp, error) {

	var ops []*externalapi.LedgerOp
	for _, tx := range block.Transactions {
		err := bp.transactionValidator.ValidateTransactionInContext(stagingArea, tx)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s of block %s", tx.ID, block.ID)
		}
		txOps, err := bp.transactionApplier.ApplyTransaction(stagingArea, tx)
		if err != nil {
			return nil, errors.Wrapf(err, "transaction %s of block %s", tx.ID, block.ID)
		}
		ops = append(ops, txOps...)
	}
	return ops, nil
}

// notifyBlockApplied queues the pool update and the observer calls of a
// committed block
func (bp *blockProcessor) notifyBlockApplied(state *model.NodeState, block *externalapi.DomainBlock,
	options externalapi.ApplyOptions) {

	bp.observersLock.RLock()
	transactionPoolUpdater := bp.transactionPoolUpdater
	blockAppliedObservers := append([]externalapi.BlockAppliedObserver(nil), bp.blockAppliedObservers...)
	transactionsSavedObservers := append([]externalapi.TransactionsSavedObserver(nil),
		bp.transactionsSavedObservers...)
	bp.observersLock.RUnlock()

	broadcast := options.Broadcast && !state.Syncing
	state.QueueNotification(func() {
		if transactionPoolUpdater != nil && len(block.Transactions) > 0 {
			transactionIDs := make([]*externalapi.DomainHash, len(block.Transactions))
			for i, tx := range block.Transactions {
				transactionIDs[i] = tx.ID
			}
			transactionPoolUpdater.RemoveConfirmedTransactions(transactionIDs)
		}

		for _, observer := range blockAppliedObservers {
			err := observer.OnBlockApplied(block, broadcast)
			if err != nil {
				log.Warnf("Block applied observer failed on block %s: %s", block.ID, err)
			}
		}
		if len(block.Transactions) == 0 {
			return
		}
		for _, observer := range transactionsSavedObservers {
			err := observer.OnTransactionsSaved(block.Transactions)
			if err != nil {
				log.Warnf("Transactions saved observer failed on block %s: %s", block.ID, err)
			}
		}
	})
}

func logBlockState(block *externalapi.DomainBlock, state externalapi.BlockApplyState) {
	log.Tracef("Block %s at height %d is %s", block.ID, block.Height, state)
}
